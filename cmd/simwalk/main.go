// Simwalk replays a scripted walk through the full pipeline with a console
// renderer: an obstacle approaches while the user navigates a short route,
// so the priority arbitration is audible (visible) end to end without any
// hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/dlaveaga/go-guidedog/internal/log"
	"github.com/dlaveaga/go-guidedog/pkg/assistant"
	"github.com/dlaveaga/go-guidedog/pkg/feedback"
	"github.com/dlaveaga/go-guidedog/pkg/hazard"
	"github.com/dlaveaga/go-guidedog/pkg/nav"
	"github.com/dlaveaga/go-guidedog/pkg/sources"
)

const degPerMeter = 1.0 / 111194.9

// consoleRenderer prints each utterance and completes it after a reading
// delay proportional to its length.
type consoleRenderer struct {
	mu    sync.Mutex
	timer *time.Timer
}

func (r *consoleRenderer) Render(req feedback.Request, done func()) error {
	marker := " "
	switch req.Tone {
	case feedback.ToneWarning:
		marker = "!"
	case feedback.ToneCritical:
		marker = "!!"
	}
	fmt.Printf("%s  SPEAK%-2s %s\n", time.Now().Format("15:04:05.000"), marker, req.Text)
	if len(req.Vibration) > 0 {
		fmt.Printf("%s  BUZZ   %v\n", time.Now().Format("15:04:05.000"), req.Vibration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.timer = time.AfterFunc(40*time.Millisecond*time.Duration(1+len(req.Text)/10), done)
	return nil
}

func (r *consoleRenderer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil && r.timer.Stop() {
		fmt.Printf("%s  CUT    (preempted)\n", time.Now().Format("15:04:05.000"))
	}
	r.timer = nil
}

// approachFrames scripts a pedestrian walking straight at the camera: the
// box grows from distant to looming over ~5 seconds of frames.
func approachFrames(framesPerStage int) []sources.ScriptFrame {
	heights := []float64{14, 38, 96, 168, 216}
	var frames []sources.ScriptFrame
	for _, h := range heights {
		box := hazard.Obstacle{
			Left: 320 - 40, Top: 300 - h, Right: 320 + 40, Bottom: 300,
			Label: "person",
		}
		for i := 0; i < framesPerStage; i++ {
			frames = append(frames, sources.ScriptFrame{
				Obstacles: []hazard.Obstacle{box},
				Width:     640,
				Height:    480,
			})
		}
	}
	return frames
}

// walkFixes scripts the user walking north along the route.
func walkFixes() []sources.Fix {
	var fixes []sources.Fix
	for m := 0.0; m <= 220; m += 10 {
		fixes = append(fixes, sources.Fix{Lat: m * degPerMeter, Lon: 0, HeadingDeg: 0})
	}
	return fixes
}

func main() {
	duration := flag.Duration("duration", 12*time.Second, "How long to run the simulation")
	port := flag.String("port", "", "Dashboard port (empty disables)")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	route := nav.NewRoute("the library", []nav.Waypoint{
		{Lat: 100 * degPerMeter, Lon: 0, Name: "the corner", Instruction: "Continue straight at the corner", DistanceToNext: 100},
		{Lat: 200 * degPerMeter, Lon: 0, Name: "the library", DistanceToNext: 0},
	})
	provider := &nav.StaticRouteProvider{Routes: map[string]*nav.Route{
		"the library": route,
	}}

	cfg := assistant.DefaultConfig()
	cfg.ObstacleSource = sources.NewScriptObstacleSource(approachFrames(10))
	cfg.LocationSource = sources.NewScriptLocationSource(walkFixes(), 500*time.Millisecond)
	cfg.Renderer = &consoleRenderer{}
	cfg.RouteProvider = provider
	cfg.DashboardPort = *port
	cfg.Logger = log.L()

	app, err := assistant.New(cfg)
	if err != nil {
		fmt.Println("startup:", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	go func() {
		time.Sleep(300 * time.Millisecond)
		if _, err := app.HandleCommand(ctx, "navigate to the library"); err != nil {
			fmt.Println("command:", err)
		}
	}()

	app.Run(ctx)

	snap := app.Scheduler().Snapshot()
	stats := app.AnalyzerStats()
	fmt.Println()
	fmt.Printf("frames analyzed:  %d\n", stats.FramesAnalyzed)
	fmt.Printf("rendered:         %d\n", snap.Rendered)
	fmt.Printf("preempted:        %d\n", snap.Preempted)
	fmt.Printf("throttled:        %d\n", snap.Throttled)
	fmt.Printf("expired:          %d\n", snap.Expired)
}
