package nav

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dlaveaga/go-guidedog/pkg/feedback"
	"github.com/dlaveaga/go-guidedog/pkg/geo"
)

// Default manager tunables.
const (
	// DefaultWaypointReachedMeters: within this distance a waypoint counts
	// as reached and guidance advances.
	DefaultWaypointReachedMeters = 15.0

	// DefaultInstructionCooldown: minimum spacing between turn instructions.
	DefaultInstructionCooldown = 5 * time.Second

	// DefaultStraightReconfirm: after this long of unbroken on-course travel
	// the manager re-confirms "continue straight" so the user knows guidance
	// is still alive.
	DefaultStraightReconfirm = 15 * time.Second

	// DefaultTickInterval is the producer tick driving periodic re-emission.
	DefaultTickInterval = 3 * time.Second
)

// State is the navigation lifecycle state.
type State int

const (
	Stopped State = iota
	Navigating
	Arrived
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Navigating:
		return "navigating"
	case Arrived:
		return "arrived"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Speaker is the narrow boundary to the feedback scheduler.
type Speaker interface {
	Speak(text string, priority feedback.Priority) error
}

// Config holds manager tunables.
type Config struct {
	WaypointReachedMeters  float64
	InstructionCooldown    time.Duration
	StraightReconfirmAfter time.Duration
	Logger                 *slog.Logger
}

// DefaultManagerConfig returns production defaults.
func DefaultManagerConfig() Config {
	return Config{
		WaypointReachedMeters:  DefaultWaypointReachedMeters,
		InstructionCooldown:    DefaultInstructionCooldown,
		StraightReconfirmAfter: DefaultStraightReconfirm,
	}
}

// Status is a point-in-time view of manager state for diagnostics.
type Status struct {
	State           State   `json:"-"`
	StateName       string  `json:"state"`
	Destination     string  `json:"destination,omitempty"`
	WaypointIndex   int     `json:"waypoint_index"`
	WaypointCount   int     `json:"waypoint_count"`
	DistanceToNext  float64 `json:"distance_to_next_m"`
	CurrentBearing  float64 `json:"current_bearing"`
	TargetBearing   float64 `json:"target_bearing"`
	LastInstruction string  `json:"last_instruction,omitempty"`
}

type lastFix struct {
	lat, lon, heading float64
	valid             bool
}

// Manager owns the waypoint-advance and arrival state machine.
// It consumes location updates and emits guidance through the Speaker; all
// state is guarded by one mutex and mutated only here.
type Manager struct {
	cfg      Config
	speaker  Speaker
	provider RouteProvider
	logger   *slog.Logger

	mu                sync.Mutex
	state             State
	route             *Route
	waypointIdx       int
	distanceToNext    float64
	currentBearing    float64
	targetBearing     float64
	fix               lastFix
	lastInstruction   string
	lastInstructionAt time.Time
}

// NewManager creates a navigation manager. provider may be nil when routes
// are always started explicitly via StartNavigation.
func NewManager(speaker Speaker, provider RouteProvider, cfg Config) *Manager {
	if cfg.WaypointReachedMeters <= 0 {
		cfg.WaypointReachedMeters = DefaultWaypointReachedMeters
	}
	if cfg.InstructionCooldown <= 0 {
		cfg.InstructionCooldown = DefaultInstructionCooldown
	}
	if cfg.StraightReconfirmAfter <= 0 {
		cfg.StraightReconfirmAfter = DefaultStraightReconfirm
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		speaker:  speaker,
		provider: provider,
		logger:   logger.With("component", "nav.manager"),
	}
}

// StartNavigation begins guiding along the route. The route is read-only from
// here on; any in-progress navigation is replaced.
func (m *Manager) StartNavigation(route *Route) error {
	if route == nil || len(route.Waypoints) == 0 {
		return ErrEmptyRoute
	}

	m.mu.Lock()
	m.state = Navigating
	m.route = route
	m.waypointIdx = 0
	m.distanceToNext = 0
	m.lastInstruction = ""
	m.lastInstructionAt = time.Time{}
	m.mu.Unlock()

	m.logger.Info("navigation started",
		"destination", route.Destination,
		"waypoints", len(route.Waypoints),
		"total_m", route.TotalDistance,
	)
	m.speakNav(fmt.Sprintf("Starting navigation to %s, %s total",
		route.Destination, PhraseDistance(route.TotalDistance)))
	return nil
}

// StopNavigation resets the state machine. Calling it while already stopped
// is not an error; teardown paths call it unconditionally.
func (m *Manager) StopNavigation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Stopped {
		return
	}
	m.state = Stopped
	m.route = nil
	m.waypointIdx = 0
	m.distanceToNext = 0
	m.currentBearing = 0
	m.targetBearing = 0
	m.lastInstruction = ""
	m.lastInstructionAt = time.Time{}
	m.logger.Info("navigation stopped")
}

// OnLocation feeds a position/heading update into the state machine.
// Ignored unless navigating.
func (m *Manager) OnLocation(lat, lon, headingDeg float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fix = lastFix{lat: lat, lon: lon, heading: headingDeg, valid: true}
	if m.state != Navigating {
		return
	}
	m.evaluateLocked()
}

// Tick is the periodic producer pass: it re-evaluates guidance from the last
// known fix, re-issuing the current instruction when the cooldown allows.
// A preempted instruction comes back through here, spoken fresh.
func (m *Manager) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Navigating || !m.fix.valid {
		return
	}
	m.evaluateLocked()
}

// evaluateLocked runs one guidance step. Caller holds m.mu.
func (m *Manager) evaluateLocked() {
	wp := m.route.Waypoints[m.waypointIdx]
	dist := geo.Distance(m.fix.lat, m.fix.lon, wp.Lat, wp.Lon)
	target := geo.Bearing(m.fix.lat, m.fix.lon, wp.Lat, wp.Lon)

	m.distanceToNext = dist
	m.currentBearing = geo.NormalizeAbsolute(m.fix.heading)
	m.targetBearing = target

	if dist < m.cfg.WaypointReachedMeters {
		m.advanceLocked()
		return
	}

	rel := geo.NormalizeRelative(target - m.fix.heading)
	now := time.Now()

	if cat := ClassifyTurn(rel); cat == TurnContinue {
		if !m.lastInstructionAt.IsZero() && now.Sub(m.lastInstructionAt) >= m.cfg.StraightReconfirmAfter {
			m.speakNavLocked(fmt.Sprintf("Continue straight, %s to %s",
				PhraseDistance(dist), waypointName(wp)))
		}
	} else if m.lastInstructionAt.IsZero() || now.Sub(m.lastInstructionAt) >= m.cfg.InstructionCooldown {
		m.speakNavLocked(fmt.Sprintf("%s, %s to %s",
			cat.Instruction(), PhraseDistance(dist), waypointName(wp)))
	}
}

// advanceLocked moves to the next waypoint or arrives. Caller holds m.mu.
func (m *Manager) advanceLocked() {
	m.waypointIdx++
	if m.waypointIdx >= len(m.route.Waypoints) {
		m.state = Arrived
		m.logger.Info("arrived", "destination", m.route.Destination)
		m.speakNavLocked(fmt.Sprintf("You have arrived at %s", m.route.Destination))
		return
	}

	wp := m.route.Waypoints[m.waypointIdx]
	text := wp.Instruction
	if text == "" {
		text = fmt.Sprintf("Continue to %s", waypointName(wp))
	}
	m.logger.Debug("waypoint reached", "index", m.waypointIdx-1, "next", waypointName(wp))
	m.speakNavLocked(text)
}

// HandleCommand reacts to a parsed voice command.
func (m *Manager) HandleCommand(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case CmdNavigateTo:
		return m.handleNavigateTo(ctx, cmd.Destination)

	case CmdStop:
		m.StopNavigation()
		m.speakSystem("Navigation stopped")
		return nil

	case CmdRepeat:
		m.mu.Lock()
		last := m.lastInstruction
		m.mu.Unlock()
		if last == "" {
			m.speakSystem("No active guidance")
			return nil
		}
		m.speak(last, feedback.Navigation)
		return nil

	case CmdWhereAmI:
		m.speakSystem(m.describePosition())
		return nil

	case CmdHelp:
		m.speakSystem("You can say: navigate to a destination, stop, repeat, or where am I")
		return nil

	case CmdUnknown:
		m.speakSystem(fmt.Sprintf("Sorry, I didn't understand %q", cmd.Raw))
		return nil

	default:
		return fmt.Errorf("nav: unhandled command kind %v", cmd.Kind)
	}
}

func (m *Manager) handleNavigateTo(ctx context.Context, destination string) error {
	if m.provider == nil {
		m.speakSystem("No route service is available")
		return ErrNoProvider
	}
	route, err := m.provider.Route(ctx, destination)
	if err != nil {
		m.speakSystem(fmt.Sprintf("Could not find a route to %s", destination))
		return err
	}
	m.speakSystem(fmt.Sprintf("Route calculated: %s via %d waypoints",
		PhraseDistance(route.TotalDistance), len(route.Waypoints)))
	return m.StartNavigation(route)
}

// describePosition answers "where am I" from the last fix.
func (m *Manager) describePosition() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.fix.valid {
		return "Position unknown"
	}
	if m.state == Navigating {
		wp := m.route.Waypoints[m.waypointIdx]
		dir := ComputeDirection(m.fix.heading, m.fix.lat, m.fix.lon, wp.Lat, wp.Lon)
		return fmt.Sprintf("Next waypoint %s at %s", waypointName(wp), dir.SpokenText())
	}
	return fmt.Sprintf("You are at latitude %.5f, longitude %.5f", m.fix.lat, m.fix.lon)
}

// Snapshot returns the current manager state for diagnostics.
func (m *Manager) Snapshot() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		State:           m.state,
		StateName:       m.state.String(),
		WaypointIndex:   m.waypointIdx,
		DistanceToNext:  m.distanceToNext,
		CurrentBearing:  m.currentBearing,
		TargetBearing:   m.targetBearing,
		LastInstruction: m.lastInstruction,
	}
	if m.route != nil {
		st.Destination = m.route.Destination
		st.WaypointCount = len(m.route.Waypoints)
	}
	return st
}

func (m *Manager) speakNav(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speakNavLocked(text)
}

// speakNavLocked emits a navigation utterance and stamps the cooldown clock.
// Caller holds m.mu.
func (m *Manager) speakNavLocked(text string) {
	m.lastInstruction = text
	m.lastInstructionAt = time.Now()
	if err := m.speaker.Speak(text, feedback.Navigation); err != nil {
		m.logger.Warn("speak failed", "error", err, "text", text)
	}
}

func (m *Manager) speakSystem(text string) {
	m.speak(text, feedback.System)
}

func (m *Manager) speak(text string, priority feedback.Priority) {
	if err := m.speaker.Speak(text, priority); err != nil {
		m.logger.Warn("speak failed", "error", err, "text", text)
	}
}

func waypointName(wp Waypoint) string {
	if wp.Name != "" {
		return wp.Name
	}
	return "the next waypoint"
}
