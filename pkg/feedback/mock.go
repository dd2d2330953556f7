package feedback

import (
	"sync"
	"time"
)

// MockRenderer implements Renderer for testing.
// Renders complete after a configurable duration; Cancel suppresses the
// pending completion, matching the platform contract.
type MockRenderer struct {
	// RenderFunc, if set, replaces the default behavior entirely. The
	// implementation is responsible for invoking done.
	RenderFunc func(req Request, done func()) error

	// Duration, if set, is used for every render. Otherwise the duration is
	// derived from text length (~20ms per character, roughly speech pacing).
	Duration time.Duration

	mu      sync.Mutex
	calls   []MockRenderCall
	cancels int
	active  *mockActive
}

// MockRenderCall records a render invocation for verification.
type MockRenderCall struct {
	Request Request
	Time    time.Time
}

type mockActive struct {
	timer     *time.Timer
	cancelled bool
}

// NewMockRenderer creates a mock with natural speech pacing.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

// NewMockRendererWithDuration creates a mock with a fixed render duration.
func NewMockRendererWithDuration(d time.Duration) *MockRenderer {
	return &MockRenderer{Duration: d}
}

// Render records the call and schedules completion.
func (m *MockRenderer) Render(req Request, done func()) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockRenderCall{Request: req, Time: time.Now()})
	fn := m.RenderFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(req, done)
	}

	d := m.Duration
	if d == 0 {
		d = time.Duration(len(req.Text)) * 20 * time.Millisecond
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	active := &mockActive{}
	active.timer = time.AfterFunc(d, func() {
		m.mu.Lock()
		cancelled := active.cancelled
		if m.active == active {
			m.active = nil
		}
		m.mu.Unlock()
		if !cancelled {
			done()
		}
	})
	m.active = active
	return nil
}

// Cancel suppresses the pending completion, if any.
func (m *MockRenderer) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
	if m.active != nil {
		m.active.cancelled = true
		m.active.timer.Stop()
		m.active = nil
	}
}

// Calls returns all recorded render calls.
func (m *MockRenderer) Calls() []MockRenderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockRenderCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Texts returns the rendered texts in order.
func (m *MockRenderer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Request.Text
	}
	return out
}

// CancelCount returns how many times Cancel was invoked.
func (m *MockRenderer) CancelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// Reset clears recorded calls and cancels.
func (m *MockRenderer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.cancels = 0
}

// FailingRenderer returns a mock whose renders are always rejected with err.
func FailingRenderer(err error) *MockRenderer {
	return &MockRenderer{
		RenderFunc: func(req Request, done func()) error {
			return err
		},
	}
}

// Verify MockRenderer implements Renderer at compile time.
var _ Renderer = (*MockRenderer)(nil)
