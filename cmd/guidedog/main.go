// Guidedog - audio guidance for visually impaired pedestrians.
// Camera frames drive obstacle alerts; a phone companion app pushes GPS
// fixes for turn-by-turn navigation. All speech goes through one
// priority-arbitrated scheduler so safety always wins the audio channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dlaveaga/go-guidedog/internal/config"
	"github.com/dlaveaga/go-guidedog/internal/log"
	"github.com/dlaveaga/go-guidedog/pkg/assistant"
	"github.com/dlaveaga/go-guidedog/pkg/feedback"
	"github.com/dlaveaga/go-guidedog/pkg/sources"
)

func main() {
	camera := flag.Int("camera", config.DefaultCameraDevice, "Camera device index")
	locationURL := flag.String("location-url", "", "Companion app websocket URL (overrides GUIDEDOG_LOCATION_URL)")
	port := flag.String("port", "", "Dashboard port (overrides GUIDEDOG_DASHBOARD_PORT)")
	noDashboard := flag.Bool("no-dashboard", false, "Disable the web dashboard")
	profilePath := flag.String("profile", "guidedog.yaml", "Tuning profile path")
	speechBinary := flag.String("speech", "", "Speech synthesizer binary (default espeak-ng)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	profile, err := config.LoadProfile(*profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		os.Exit(1)
	}

	obstacleSrc, err := sources.NewHOGDetector(*camera, log.L())
	if err != nil {
		fmt.Fprintf(os.Stderr, "camera: %v\n", err)
		os.Exit(1)
	}

	cfg := assistant.DefaultConfig()
	cfg.ObstacleSource = obstacleSrc
	cfg.Renderer = feedback.NewEspeakRenderer(*speechBinary, log.L())
	cfg.Profile = profile
	cfg.Logger = log.L()

	url := *locationURL
	if url == "" {
		url = config.LocationURL()
	}
	if url != "" {
		cfg.LocationSource = sources.NewWSLocationClient(url, log.L())
	}

	if !*noDashboard {
		cfg.DashboardPort = *port
		if cfg.DashboardPort == "" {
			cfg.DashboardPort = config.DashboardPort()
		}
		if _, err := strconv.Atoi(cfg.DashboardPort); err != nil {
			fmt.Fprintf(os.Stderr, "invalid dashboard port %q\n", cfg.DashboardPort)
			os.Exit(1)
		}
	}

	app, err := assistant.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "runtime: %v\n", err)
		os.Exit(1)
	}
}
