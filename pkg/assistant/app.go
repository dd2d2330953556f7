// Package assistant composes the full pipeline: obstacle frames flow through
// the hazard analyzer into the feedback scheduler, location fixes drive the
// navigation manager, and an optional dashboard mirrors it all. The safety
// loop and the navigation loop are independent; stopping navigation never
// touches obstacle alerting.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dlaveaga/go-guidedog/pkg/feedback"
	"github.com/dlaveaga/go-guidedog/pkg/hazard"
	"github.com/dlaveaga/go-guidedog/pkg/nav"
	"github.com/dlaveaga/go-guidedog/pkg/sources"
	"github.com/dlaveaga/go-guidedog/pkg/web"
)

// App owns the running subsystems.
type App struct {
	cfg    Config
	logger *slog.Logger

	analyzer  *hazard.Analyzer
	scheduler *feedback.Scheduler
	navman    *nav.Manager
	dashboard *web.Server // nil when disabled

	levelMu   sync.Mutex
	lastLevel hazard.Level

	stopFrame chan struct{}
	stopNav   chan struct{}
	wg        sync.WaitGroup

	shutdownOnce sync.Once
}

// New validates the config and wires all subsystems. The feedback scheduler
// starts accepting messages immediately; the periodic loops start in Run.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyProfile()
	logger := cfg.Logger.With("component", "assistant")

	var classifierOpts []hazard.ClassifierOption
	schedCfg := feedback.DefaultConfig()
	navCfg := nav.DefaultManagerConfig()
	if p := cfg.Profile; p != nil {
		if v := p.Classifier.CriticalHeightRatio; v > 0 {
			classifierOpts = append(classifierOpts, hazard.WithCriticalHeightRatio(v))
		}
		if v := p.Classifier.SafeHeightRatio; v > 0 {
			classifierOpts = append(classifierOpts, hazard.WithSafeHeightRatio(v))
		}
		if v := p.Classifier.CenterFraction; v > 0 {
			classifierOpts = append(classifierOpts, hazard.WithCenterFraction(v))
		}
		if v := p.Scheduler.SystemTTL.Std(); v > 0 {
			schedCfg.SystemTTL = v
		}
		if v := p.Scheduler.WarningThrottle.Std(); v > 0 {
			schedCfg.WarningThrottle = v
		}
		if v := p.Navigation.WaypointReachedMeters; v > 0 {
			navCfg.WaypointReachedMeters = v
		}
		if v := p.Navigation.InstructionCooldown.Std(); v > 0 {
			navCfg.InstructionCooldown = v
		}
		if v := p.Navigation.StraightReconfirmAfter.Std(); v > 0 {
			navCfg.StraightReconfirmAfter = v
		}
	}
	schedCfg.Logger = cfg.Logger
	navCfg.Logger = cfg.Logger

	a := &App{
		cfg:       cfg,
		logger:    logger,
		analyzer:  hazard.NewAnalyzer(hazard.NewClassifier(classifierOpts...)),
		scheduler: feedback.NewScheduler(cfg.Renderer, schedCfg),
		stopFrame: make(chan struct{}),
		stopNav:   make(chan struct{}),
	}
	a.navman = nav.NewManager(a.scheduler, cfg.RouteProvider, navCfg)

	if cfg.DashboardPort != "" {
		a.dashboard = web.NewServer(cfg.DashboardPort, cfg.Logger)
		a.dashboard.OnCommand = a.HandleCommand
	}
	return a, nil
}

// Run starts the loops and blocks until ctx is cancelled, then shuts down.
func (a *App) Run(ctx context.Context) error {
	if a.dashboard != nil {
		a.dashboard.StartAsync()
	}

	a.wg.Add(2)
	go a.frameLoop(ctx)
	go a.navLoop()
	if a.cfg.LocationSource != nil {
		a.wg.Add(1)
		go a.locationLoop()
	}
	a.logger.Info("assistant running",
		"frame_interval", a.cfg.FrameInterval,
		"nav_tick", a.cfg.NavTickInterval,
		"dashboard", a.cfg.DashboardPort != "",
	)

	<-ctx.Done()
	a.Shutdown()
	return nil
}

// frameLoop is the safety producer: one frame per tick through the analyzer
// into the scheduler.
func (a *App) frameLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopFrame:
			return
		case <-ticker.C:
			a.processFrame(ctx)
		}
	}
}

func (a *App) processFrame(ctx context.Context) {
	obstacles, w, h, err := a.cfg.ObstacleSource.Frame(ctx)
	if err != nil {
		if errors.Is(err, sources.ErrSourceClosed) || errors.Is(err, context.Canceled) {
			return
		}
		a.logger.Debug("frame unavailable", "error", err)
		return
	}

	result := a.analyzer.Analyze(obstacles, float64(w), float64(h))
	a.publishLevel(result)

	if err := a.scheduler.AlertSafety(result); err != nil && !errors.Is(err, feedback.ErrStopped) {
		a.logger.Warn("safety alert failed", "error", err)
	}
}

// publishLevel logs and broadcasts hazard level transitions.
func (a *App) publishLevel(result hazard.Result) {
	a.levelMu.Lock()
	changed := result.Level != a.lastLevel
	a.lastLevel = result.Level
	a.levelMu.Unlock()

	if !changed {
		return
	}
	a.logger.Info("hazard level changed",
		"level", result.Level,
		"obstacles", len(result.Obstacles),
		"latency", result.ProcessingLatency,
	)
	if a.dashboard != nil {
		a.dashboard.AddEvent("hazard", fmt.Sprintf("level %s with %d obstacle(s)",
			result.Level, len(result.Obstacles)))
		a.pushStatus()
	}
}

// navLoop drives the navigation manager's periodic re-evaluation and keeps
// the dashboard status fresh.
func (a *App) navLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.NavTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopNav:
			return
		case <-ticker.C:
			a.navman.Tick()
			a.pushStatus()
		}
	}
}

// locationLoop feeds fixes into the navigation manager until the source
// closes its channel.
func (a *App) locationLoop() {
	defer a.wg.Done()
	for fix := range a.cfg.LocationSource.Fixes() {
		a.navman.OnLocation(fix.Lat, fix.Lon, fix.HeadingDeg)
	}
}

func (a *App) pushStatus() {
	if a.dashboard == nil {
		return
	}
	a.levelMu.Lock()
	level := a.lastLevel
	a.levelMu.Unlock()

	a.dashboard.UpdateStatus(web.Status{
		HazardLevel: level.String(),
		Navigation:  a.navman.Snapshot(),
		Scheduler:   a.scheduler.Snapshot(),
	})
}

// HandleCommand parses and executes a voice command, returning the parsed
// kind for the caller's response.
func (a *App) HandleCommand(ctx context.Context, text string) (string, error) {
	cmd := nav.ParseCommand(text)
	a.logger.Info("voice command", "kind", cmd.Kind, "text", text)
	err := a.navman.HandleCommand(ctx, cmd)
	return cmd.Kind.String(), err
}

// Navigator exposes the navigation manager, mainly for demos and tests.
func (a *App) Navigator() *nav.Manager {
	return a.navman
}

// Scheduler exposes the feedback scheduler.
func (a *App) Scheduler() *feedback.Scheduler {
	return a.scheduler
}

// AnalyzerStats returns cumulative frame analysis counters.
func (a *App) AnalyzerStats() hazard.AnalyzerStats {
	return a.analyzer.Stats()
}

// Shutdown stops the loops, flushes the scheduler and closes the sources.
// Safe to call more than once; Run calls it on context cancellation.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		close(a.stopFrame)
		close(a.stopNav)
		if a.cfg.LocationSource != nil {
			a.cfg.LocationSource.Close()
		}
		a.wg.Wait()

		a.scheduler.Stop()
		if err := a.cfg.ObstacleSource.Close(); err != nil {
			a.logger.Warn("obstacle source close failed", "error", err)
		}
		if a.dashboard != nil {
			if err := a.dashboard.Shutdown(); err != nil {
				a.logger.Warn("dashboard shutdown failed", "error", err)
			}
		}
		a.logger.Info("assistant stopped")
	})
}
