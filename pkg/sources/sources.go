// Package sources holds the upstream producer boundaries: where obstacle
// frames and location fixes enter the system. Adapters here do no hazard
// interpretation of their own; they only produce raw observations for the
// analyzer and the navigation manager.
package sources

import (
	"context"
	"errors"
	"time"

	"github.com/dlaveaga/go-guidedog/pkg/hazard"
)

// Sentinel errors.
var (
	ErrSourceClosed     = errors.New("sources: source closed")
	ErrFrameUnavailable = errors.New("sources: no frame available")
)

// Fix is a single position and heading observation, typically pushed from a
// phone companion app.
type Fix struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	HeadingDeg float64   `json:"heading"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ObstacleSource produces one obstacle frame per call, pull-style. Frame
// returns the detected obstacles plus the frame dimensions the boxes are
// expressed in.
type ObstacleSource interface {
	Frame(ctx context.Context) (obstacles []hazard.Obstacle, width, height int, err error)
	Close() error
}

// LocationSource pushes position fixes as they arrive. The channel is closed
// when the source shuts down.
type LocationSource interface {
	Fixes() <-chan Fix
	Close() error
}
