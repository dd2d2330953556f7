package feedback

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dlaveaga/go-guidedog/pkg/hazard"
)

// Default scheduler tunables.
const (
	// DefaultSystemTTL: a SYSTEM message still queued after this long is
	// stale ("route calculated" must not interrupt live guidance later).
	DefaultSystemTTL = 3 * time.Second

	// DefaultWarningThrottle: minimum spacing between WARNING-level safety
	// alerts, to avoid beep-spam from a hovering obstacle. CRITICAL alerts
	// are exempt.
	DefaultWarningThrottle = 300 * time.Millisecond

	// DefaultSweepInterval: how often the expiry sweep runs. Arbitration
	// itself is event-driven and never waits for the sweep.
	DefaultSweepInterval = 500 * time.Millisecond
)

// Config holds scheduler tunables.
type Config struct {
	SystemTTL       time.Duration
	WarningThrottle time.Duration
	SweepInterval   time.Duration
	Logger          *slog.Logger
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		SystemTTL:       DefaultSystemTTL,
		WarningThrottle: DefaultWarningThrottle,
		SweepInterval:   DefaultSweepInterval,
	}
}

// Snapshot is a point-in-time view of scheduler state for diagnostics.
type Snapshot struct {
	Rendering       bool     `json:"rendering"`
	CurrentText     string   `json:"current_text,omitempty"`
	CurrentPriority Priority `json:"current_priority,omitempty"`

	SafetyQueued     int `json:"safety_queued"`
	NavigationQueued int `json:"navigation_queued"`
	SystemQueued     int `json:"system_queued"`

	Rendered       uint64 `json:"rendered"`
	Preempted      uint64 `json:"preempted"`
	Expired        uint64 `json:"expired"`
	Throttled      uint64 `json:"throttled"`
	RenderFailures uint64 `json:"render_failures"`
}

type eventKind int

const (
	evEnqueue eventKind = iota
	evDone
)

type event struct {
	kind eventKind

	// evEnqueue
	msg          Message
	throttleable bool

	// evDone
	renderID uuid.UUID
}

// Scheduler owns the three priority queues, the render slot, and the
// arbitration state machine.
//
// All state is confined to a single goroutine fed by an event channel, so
// queue mutations and the Idle/Rendering transition form one serialized
// critical section; there is no lock ordering between enqueue and completion
// call sites. Every enqueue is processed as soon as the actor picks it up, so
// a SAFETY message never waits for a tick; the ticker only sweeps SYSTEM TTL.
type Scheduler struct {
	renderer Renderer
	cfg      Config
	logger   *slog.Logger

	events  chan event
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	snapMu sync.RWMutex
	snap   Snapshot
}

// schedLoop is the actor-confined mutable state.
type schedLoop struct {
	s *Scheduler

	// queues[p] is the FIFO queue for priority p. Index 0 unused.
	queues [4][]Message

	current         *Message
	currentRenderID uuid.UUID

	lastSafetyEmission time.Time

	rendered       uint64
	preempted      uint64
	expired        uint64
	throttled      uint64
	renderFailures uint64
}

// NewScheduler creates and starts a scheduler driving the given renderer.
// Call Stop to shut it down; Stop is idempotent.
func NewScheduler(renderer Renderer, cfg Config) *Scheduler {
	if cfg.SystemTTL <= 0 {
		cfg.SystemTTL = DefaultSystemTTL
	}
	if cfg.WarningThrottle <= 0 {
		cfg.WarningThrottle = DefaultWarningThrottle
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		renderer: renderer,
		cfg:      cfg,
		logger:   logger.With("component", "feedback.scheduler"),
		events:   make(chan event, 256),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Speak enqueues an interruptible spoken message at the given priority.
func (s *Scheduler) Speak(text string, priority Priority) error {
	return s.Enqueue(NewMessage(text, priority))
}

// Enqueue submits a message for arbitration. It never blocks for longer than
// it takes the actor to drain its inbound buffer.
func (s *Scheduler) Enqueue(msg Message) error {
	if !msg.Priority.Valid() {
		return ErrInvalidPriority
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = time.Now()
	}
	return s.send(event{kind: evEnqueue, msg: msg})
}

// AlertSafety converts an analysis result into a SAFETY message.
// Safe results are ignored. WARNING alerts are subject to the warning
// throttle; CRITICAL alerts always go through and carry the alarm tone plus a
// vibration burst.
func (s *Scheduler) AlertSafety(res hazard.Result) error {
	if !res.RequiresAlert() {
		return nil
	}

	msg := NewMessage(res.Level.AnnouncementText(), Safety)
	throttleable := false
	switch res.Level {
	case hazard.Warning:
		msg.Tone = ToneWarning
		throttleable = true
	case hazard.Critical:
		msg.Tone = ToneCritical
	}

	return s.send(event{kind: evEnqueue, msg: msg, throttleable: throttleable})
}

// Stop cancels any in-progress render, flushes all queues, and shuts the
// actor down. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.quit)
	})
	<-s.stopped
}

// Snapshot returns the latest published scheduler state.
func (s *Scheduler) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

func (s *Scheduler) send(ev event) error {
	select {
	case <-s.quit:
		return ErrStopped
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.quit:
		return ErrStopped
	}
}

// run is the actor loop. It is the only goroutine that touches schedLoop.
func (s *Scheduler) run() {
	defer close(s.stopped)

	loop := &schedLoop{s: s}
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			loop.shutdown()
			return
		case ev := <-s.events:
			switch ev.kind {
			case evEnqueue:
				loop.handleEnqueue(ev.msg, ev.throttleable)
			case evDone:
				loop.handleDone(ev.renderID)
			}
			loop.publish()
		case <-ticker.C:
			loop.sweepExpired()
			loop.publish()
		}
	}
}

func (l *schedLoop) handleEnqueue(msg Message, throttleable bool) {
	now := time.Now()

	if msg.Priority == Safety {
		if throttleable && !l.lastSafetyEmission.IsZero() &&
			now.Sub(l.lastSafetyEmission) < l.s.cfg.WarningThrottle {
			l.throttled++
			return
		}
		l.lastSafetyEmission = now
	}

	l.queues[msg.Priority] = append(l.queues[msg.Priority], msg)

	if l.current == nil {
		l.startNext()
		return
	}

	// Preempt only on strictly higher priority; equal priority queues FIFO so
	// a second critical alert never cuts off the first.
	if msg.Priority > l.current.Priority && l.current.Interruptible {
		l.s.renderer.Cancel()
		l.s.logger.Debug("preempted",
			"was", l.current.Priority.String(),
			"text", l.current.Text,
			"by", msg.Priority.String(),
		)
		l.preempted++
		l.current = nil
		l.currentRenderID = uuid.Nil
		l.startNext()
	}
}

func (l *schedLoop) handleDone(renderID uuid.UUID) {
	// Completion of a render we already cancelled or replaced: a natural
	// completion can race our Cancel. The generation ID fences it off so a
	// stale completion never tears down the next message's render.
	if l.current == nil || renderID != l.currentRenderID {
		return
	}
	l.rendered++
	l.current = nil
	l.currentRenderID = uuid.Nil
	l.startNext()
}

// startNext dequeues the highest-priority pending message and renders it.
// Render failures are surfaced and skipped so a dead renderer never blocks
// the queue.
func (l *schedLoop) startNext() {
	if l.current != nil {
		// Unreachable by construction: all transitions happen on the actor
		// goroutine. If it fires, state is corrupt and silent recovery could
		// mask exactly the bug that lets chatter drown out a collision
		// warning.
		panic("feedback: render slot already occupied")
	}

	for {
		msg, ok := l.dequeue()
		if !ok {
			return
		}

		id := uuid.New()
		req := Request{Text: msg.Text, Tone: msg.Tone}
		if msg.Tone == ToneCritical {
			req.Vibration = []time.Duration{400 * time.Millisecond, 100 * time.Millisecond, 400 * time.Millisecond}
		}

		done := func() {
			ev := event{kind: evDone, renderID: id}
			select {
			case l.s.events <- ev:
			case <-l.s.quit:
			}
		}

		if err := l.s.renderer.Render(req, done); err != nil {
			l.renderFailures++
			l.s.logger.Warn("render failed, skipping message",
				"error", &RenderError{MessageText: msg.Text, Priority: msg.Priority, Err: err})
			continue
		}

		m := msg
		l.current = &m
		l.currentRenderID = id
		return
	}
}

// dequeue pops the head of the highest non-empty queue, SAFETY first.
// Expired SYSTEM messages are dropped before being considered.
func (l *schedLoop) dequeue() (Message, bool) {
	for p := Safety; p >= System; p-- {
		if p == System {
			l.dropExpiredSystem(time.Now())
		}
		q := l.queues[p]
		if len(q) == 0 {
			continue
		}
		msg := q[0]
		l.queues[p] = q[1:]
		return msg, true
	}
	return Message{}, false
}

func (l *schedLoop) sweepExpired() {
	l.dropExpiredSystem(time.Now())
}

func (l *schedLoop) dropExpiredSystem(now time.Time) {
	q := l.queues[System]
	if len(q) == 0 {
		return
	}
	kept := q[:0]
	for _, msg := range q {
		if now.Sub(msg.EnqueuedAt) > l.s.cfg.SystemTTL {
			l.expired++
			l.s.logger.Debug("system message expired unrendered", "text", msg.Text)
			continue
		}
		kept = append(kept, msg)
	}
	l.queues[System] = kept
}

func (l *schedLoop) shutdown() {
	if l.current != nil {
		l.s.renderer.Cancel()
		l.current = nil
		l.currentRenderID = uuid.Nil
	}
	for p := System; p <= Safety; p++ {
		l.queues[p] = nil
	}
	l.publish()
}

// publish copies the loop state into the read-side snapshot.
func (l *schedLoop) publish() {
	snap := Snapshot{
		SafetyQueued:     len(l.queues[Safety]),
		NavigationQueued: len(l.queues[Navigation]),
		SystemQueued:     len(l.queues[System]),
		Rendered:         l.rendered,
		Preempted:        l.preempted,
		Expired:          l.expired,
		Throttled:        l.throttled,
		RenderFailures:   l.renderFailures,
	}
	if l.current != nil {
		snap.Rendering = true
		snap.CurrentText = l.current.Text
		snap.CurrentPriority = l.current.Priority
	}

	l.s.snapMu.Lock()
	l.s.snap = snap
	l.s.snapMu.Unlock()
}
