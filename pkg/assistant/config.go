package assistant

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dlaveaga/go-guidedog/internal/config"
	"github.com/dlaveaga/go-guidedog/pkg/feedback"
	"github.com/dlaveaga/go-guidedog/pkg/nav"
	"github.com/dlaveaga/go-guidedog/pkg/sources"
)

// DefaultFrameInterval paces the safety loop at roughly 10 frames per second.
const DefaultFrameInterval = 100 * time.Millisecond

// Config wires the assistant's collaborators and timing.
type Config struct {
	// Required.
	ObstacleSource sources.ObstacleSource
	Renderer       feedback.Renderer

	// Optional.
	LocationSource sources.LocationSource
	RouteProvider  nav.RouteProvider

	FrameInterval   time.Duration
	NavTickInterval time.Duration

	// DashboardPort enables the web dashboard when non-empty.
	DashboardPort string

	// Profile overlays tuning values onto package defaults.
	Profile *config.Profile

	Logger *slog.Logger
}

// DefaultConfig returns the production timing defaults. Sources and renderer
// still have to be filled in.
func DefaultConfig() Config {
	return Config{
		FrameInterval:   DefaultFrameInterval,
		NavTickInterval: nav.DefaultTickInterval,
	}
}

// Validate checks that the required collaborators are present.
func (c *Config) Validate() error {
	if c.ObstacleSource == nil {
		return errors.New("assistant: obstacle source is required")
	}
	if c.Renderer == nil {
		return errors.New("assistant: renderer is required")
	}
	return nil
}

// applyProfile folds profile values over the zero fields.
func (c *Config) applyProfile() {
	if c.Profile != nil {
		if v := c.Profile.Safety.FrameInterval.Std(); v > 0 {
			c.FrameInterval = v
		}
		if v := c.Profile.Navigation.TickInterval.Std(); v > 0 {
			c.NavTickInterval = v
		}
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.NavTickInterval <= 0 {
		c.NavTickInterval = nav.DefaultTickInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
