package feedback_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dlaveaga/go-guidedog/pkg/feedback"
	"github.com/dlaveaga/go-guidedog/pkg/hazard"
)

// eventually polls cond until it returns true or the timeout elapses.
func eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

func criticalResult() hazard.Result {
	return hazard.Result{
		Level:     hazard.Critical,
		Obstacles: []hazard.Obstacle{{Left: 220, Top: 84, Right: 420, Bottom: 300}},
	}
}

func warningResult() hazard.Result {
	return hazard.Result{
		Level:     hazard.Warning,
		Obstacles: []hazard.Obstacle{{Left: 0, Top: 84, Right: 200, Bottom: 300}},
	}
}

func TestSchedulerIdleRendersImmediately(t *testing.T) {
	mock := feedback.NewMockRendererWithDuration(50 * time.Millisecond)
	s := feedback.NewScheduler(mock, feedback.DefaultConfig())
	defer s.Stop()

	if err := s.Speak("turn left", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eventually(t, time.Second, func() bool {
		return s.Snapshot().Rendering
	}, "message should start rendering from idle")

	eventually(t, time.Second, func() bool {
		return s.Snapshot().Rendered == 1 && !s.Snapshot().Rendering
	}, "message should complete and return to idle")

	texts := mock.Texts()
	if len(texts) != 1 || texts[0] != "turn left" {
		t.Errorf("unexpected render calls: %v", texts)
	}
}

func TestSafetyPreemptsNavigation(t *testing.T) {
	mock := feedback.NewMockRendererWithDuration(600 * time.Millisecond)
	s := feedback.NewScheduler(mock, feedback.DefaultConfig())
	defer s.Stop()

	if err := s.Speak("Turn left in 20 meters", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		snap := s.Snapshot()
		return snap.Rendering && snap.CurrentPriority == feedback.Navigation
	}, "navigation should be rendering")

	if err := s.AlertSafety(criticalResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cancellation must be effectively immediate, not after the nav utterance.
	eventually(t, 150*time.Millisecond, func() bool {
		snap := s.Snapshot()
		return snap.Rendering && snap.CurrentPriority == feedback.Safety
	}, "safety should preempt navigation")

	if mock.CancelCount() != 1 {
		t.Errorf("expected 1 cancel, got %d", mock.CancelCount())
	}
	snap := s.Snapshot()
	if snap.Preempted != 1 {
		t.Errorf("expected 1 preemption, got %d", snap.Preempted)
	}

	// The preempted navigation message is discarded, never re-rendered.
	eventually(t, 2*time.Second, func() bool {
		return !s.Snapshot().Rendering
	}, "safety render should complete")

	navRenders := 0
	for _, text := range mock.Texts() {
		if text == "Turn left in 20 meters" {
			navRenders++
		}
	}
	if navRenders != 1 {
		t.Errorf("preempted message rendered %d times, expected exactly 1 start", navRenders)
	}
}

func TestNavigationWaitsBehindSafety(t *testing.T) {
	mock := feedback.NewMockRendererWithDuration(200 * time.Millisecond)
	s := feedback.NewScheduler(mock, feedback.DefaultConfig())
	defer s.Stop()

	if err := s.AlertSafety(criticalResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		return s.Snapshot().Rendering
	}, "safety should be rendering")

	if err := s.Speak("continue straight", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Navigation must queue, not disturb the safety render.
	time.Sleep(50 * time.Millisecond)
	snap := s.Snapshot()
	if snap.CurrentPriority != feedback.Safety {
		t.Errorf("expected safety still rendering, got %v", snap.CurrentPriority)
	}
	if snap.NavigationQueued != 1 {
		t.Errorf("expected navigation queued, got %d", snap.NavigationQueued)
	}
	if mock.CancelCount() != 0 {
		t.Errorf("expected no cancels, got %d", mock.CancelCount())
	}

	eventually(t, time.Second, func() bool {
		return s.Snapshot().Rendered == 2
	}, "navigation should render after safety completes")

	texts := mock.Texts()
	if len(texts) != 2 || texts[1] != "continue straight" {
		t.Errorf("unexpected render order: %v", texts)
	}
}

func TestSafetyOnSafetyQueuesFIFO(t *testing.T) {
	mock := feedback.NewMockRendererWithDuration(100 * time.Millisecond)
	s := feedback.NewScheduler(mock, feedback.DefaultConfig())
	defer s.Stop()

	for _, text := range []string{"first", "second", "third"} {
		if err := s.Enqueue(feedback.NewMessage(text, feedback.Safety)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	eventually(t, 2*time.Second, func() bool {
		return s.Snapshot().Rendered == 3
	}, "all three safety messages should render")

	// A second critical alert never cuts off the first: no cancels, FIFO order.
	if mock.CancelCount() != 0 {
		t.Errorf("expected no cancels among equal-priority messages, got %d", mock.CancelCount())
	}
	texts := mock.Texts()
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if texts[i] != w {
			t.Errorf("render %d: expected %q, got %q", i, w, texts[i])
		}
	}
}

func TestSystemMessageExpires(t *testing.T) {
	mock := feedback.NewMockRendererWithDuration(500 * time.Millisecond)
	cfg := feedback.DefaultConfig()
	cfg.SystemTTL = 150 * time.Millisecond
	cfg.SweepInterval = 25 * time.Millisecond
	s := feedback.NewScheduler(mock, cfg)
	defer s.Stop()

	// Occupy the render slot so the system message has to wait past its TTL.
	if err := s.Speak("turn right", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		return s.Snapshot().Rendering
	}, "navigation should be rendering")

	if err := s.Speak("route calculated", feedback.System); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eventually(t, time.Second, func() bool {
		return s.Snapshot().Expired == 1
	}, "stale system message should expire unrendered")

	eventually(t, 2*time.Second, func() bool {
		return !s.Snapshot().Rendering
	}, "navigation should complete")

	for _, text := range mock.Texts() {
		if text == "route calculated" {
			t.Error("expired system message must never render")
		}
	}
}

func TestWarningThrottle(t *testing.T) {
	mock := feedback.NewMockRendererWithDuration(20 * time.Millisecond)
	cfg := feedback.DefaultConfig()
	cfg.WarningThrottle = 300 * time.Millisecond
	s := feedback.NewScheduler(mock, cfg)
	defer s.Stop()

	if err := s.AlertSafety(warningResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AlertSafety(warningResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eventually(t, time.Second, func() bool {
		return s.Snapshot().Throttled == 1
	}, "second warning inside the throttle window should be dropped")

	// CRITICAL is exempt from the throttle and always renders.
	if err := s.AlertSafety(criticalResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		for _, text := range mock.Texts() {
			if text == hazard.Critical.AnnouncementText() {
				return true
			}
		}
		return false
	}, "critical alert should bypass the throttle")
}

func TestSafeResultIsIgnored(t *testing.T) {
	mock := feedback.NewMockRenderer()
	s := feedback.NewScheduler(mock, feedback.DefaultConfig())
	defer s.Stop()

	if err := s.AlertSafety(hazard.Result{Level: hazard.Safe}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if len(mock.Calls()) != 0 {
		t.Error("safe result must not produce a render")
	}
}

func TestStaleCompletionIsFenced(t *testing.T) {
	// A renderer whose completions are driven manually, so we can deliver a
	// late completion for a render the scheduler already cancelled.
	var mu sync.Mutex
	var dones []func()
	mock := &feedback.MockRenderer{
		RenderFunc: func(req feedback.Request, done func()) error {
			mu.Lock()
			dones = append(dones, done)
			mu.Unlock()
			return nil
		},
	}

	s := feedback.NewScheduler(mock, feedback.DefaultConfig())
	defer s.Stop()

	if err := s.Speak("nav instruction", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(dones) == 1
	}, "navigation render should start")

	if err := s.Speak("obstacle", feedback.Safety); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(dones) == 2
	}, "safety render should start after preemption")

	// Deliver the cancelled navigation render's completion late. It must not
	// tear down the safety render.
	mu.Lock()
	staleDone := dones[0]
	mu.Unlock()
	staleDone()

	time.Sleep(50 * time.Millisecond)
	snap := s.Snapshot()
	if !snap.Rendering || snap.CurrentText != "obstacle" {
		t.Errorf("stale completion disturbed the current render: %+v", snap)
	}

	// The genuine completion still drives the Idle transition.
	mu.Lock()
	liveDone := dones[1]
	mu.Unlock()
	liveDone()

	eventually(t, time.Second, func() bool {
		return !s.Snapshot().Rendering
	}, "genuine completion should reach idle")
}

func TestRenderFailureDoesNotBlockQueue(t *testing.T) {
	failing := feedback.FailingRenderer(feedback.ErrRendererUnavailable)
	s := feedback.NewScheduler(failing, feedback.DefaultConfig())
	defer s.Stop()

	if err := s.Speak("one", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Speak("two", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eventually(t, time.Second, func() bool {
		snap := s.Snapshot()
		return snap.RenderFailures == 2 && !snap.Rendering && snap.NavigationQueued == 0
	}, "failed renders should be surfaced and skipped")
}

func TestStopIsIdempotent(t *testing.T) {
	mock := feedback.NewMockRendererWithDuration(500 * time.Millisecond)
	s := feedback.NewScheduler(mock, feedback.DefaultConfig())

	if err := s.Speak("long instruction", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Speak("queued", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		return s.Snapshot().Rendering
	}, "render should start")

	s.Stop()
	s.Stop() // second call must not panic or hang

	snap := s.Snapshot()
	if snap.Rendering {
		t.Error("stop should cancel the in-progress render")
	}
	if snap.NavigationQueued != 0 {
		t.Error("stop should flush all queues")
	}
	if mock.CancelCount() != 1 {
		t.Errorf("expected 1 cancel on stop, got %d", mock.CancelCount())
	}

	if err := s.Speak("after stop", feedback.Navigation); !errors.Is(err, feedback.ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestInvalidPriorityRejected(t *testing.T) {
	s := feedback.NewScheduler(feedback.NewMockRenderer(), feedback.DefaultConfig())
	defer s.Stop()

	err := s.Enqueue(feedback.Message{Text: "bad", Priority: 0})
	if !errors.Is(err, feedback.ErrInvalidPriority) {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}
}

// TestGuidanceInterruptionScenario reproduces the end-to-end arbitration
// sequence: navigation starts speaking, a safety alert lands mid-utterance and
// takes over, and after the alert the navigation producer issues a fresh
// instruction rather than resuming the interrupted one.
func TestGuidanceInterruptionScenario(t *testing.T) {
	mock := feedback.NewMockRendererWithDuration(600 * time.Millisecond)
	s := feedback.NewScheduler(mock, feedback.DefaultConfig())
	defer s.Stop()

	if err := s.Speak("Turn left", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		return s.Snapshot().Rendering
	}, "navigation should start")

	time.Sleep(160 * time.Millisecond) // mid-utterance
	if err := s.Speak("Obstacle", feedback.Safety); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eventually(t, 100*time.Millisecond, func() bool {
		return s.Snapshot().CurrentText == "Obstacle"
	}, "safety should be rendering within one tick of the alert")

	eventually(t, 2*time.Second, func() bool {
		return !s.Snapshot().Rendering
	}, "safety should complete")

	// The navigation producer's next tick issues a fresh instruction.
	if err := s.Speak("Turn left", feedback.Navigation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eventually(t, time.Second, func() bool {
		return s.Snapshot().Rendered == 2
	}, "fresh navigation instruction should render")
}
