// Package nav provides turn-by-turn pedestrian guidance: the waypoint state
// machine, the clock-hour tactical direction helper, and the voice command
// vocabulary. It produces messages for the feedback scheduler; it never talks
// to audio hardware itself.
package nav

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors.
var (
	ErrNoRoute       = errors.New("nav: no route for destination")
	ErrEmptyRoute    = errors.New("nav: route has no waypoints")
	ErrNotNavigating = errors.New("nav: not navigating")
	ErrNoProvider    = errors.New("nav: no route provider configured")
)

// Waypoint is a single point along a route.
type Waypoint struct {
	Lat, Lon       float64
	Name           string
	Instruction    string
	DistanceToNext float64 // meters to the following waypoint; 0 for the last
}

// Route is an ordered list of waypoints toward a destination.
// Immutable once navigation starts.
type Route struct {
	ID                uuid.UUID
	Destination       string
	Waypoints         []Waypoint
	TotalDistance     float64 // meters
	EstimatedDuration time.Duration
}

// NewRoute assembles a route and assigns it an ID.
func NewRoute(destination string, waypoints []Waypoint) *Route {
	var total float64
	for _, wp := range waypoints {
		total += wp.DistanceToNext
	}
	return &Route{
		ID:            uuid.New(),
		Destination:   destination,
		Waypoints:     waypoints,
		TotalDistance: total,
		// Walking pace ~1.2 m/s
		EstimatedDuration: time.Duration(total/1.2) * time.Second,
	}
}

// RouteProvider supplies a route for a spoken destination.
// Geocoding and routing are external; this is only the boundary.
type RouteProvider interface {
	Route(ctx context.Context, destination string) (*Route, error)
}

// StaticRouteProvider serves routes from a fixed map, for tests and demos.
type StaticRouteProvider struct {
	Routes map[string]*Route
}

// Route implements RouteProvider.
func (p *StaticRouteProvider) Route(_ context.Context, destination string) (*Route, error) {
	if r, ok := p.Routes[destination]; ok {
		return r, nil
	}
	return nil, ErrNoRoute
}

// Verify interface satisfaction at compile time.
var _ RouteProvider = (*StaticRouteProvider)(nil)
