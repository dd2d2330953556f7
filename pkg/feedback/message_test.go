package feedback_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dlaveaga/go-guidedog/pkg/feedback"
)

func TestPriorityOrdering(t *testing.T) {
	if !(feedback.System < feedback.Navigation && feedback.Navigation < feedback.Safety) {
		t.Error("priorities must be totally ordered SYSTEM < NAVIGATION < SAFETY")
	}
}

func TestPriorityString(t *testing.T) {
	tests := []struct {
		p    feedback.Priority
		want string
	}{
		{feedback.System, "SYSTEM"},
		{feedback.Navigation, "NAVIGATION"},
		{feedback.Safety, "SAFETY"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []feedback.Priority{feedback.System, feedback.Navigation, feedback.Safety} {
		if !p.Valid() {
			t.Errorf("%v should be valid", p)
		}
	}
	for _, p := range []feedback.Priority{0, 4, -1} {
		if p.Valid() {
			t.Errorf("%v should be invalid", p)
		}
	}
}

func TestNewMessage(t *testing.T) {
	msg := feedback.NewMessage("hello", feedback.Navigation)

	if msg.ID == uuid.Nil {
		t.Error("expected a message ID")
	}
	if !msg.Interruptible {
		t.Error("messages default to interruptible")
	}
	if msg.EnqueuedAt.IsZero() {
		t.Error("expected an enqueue timestamp")
	}
	if msg.Tone != feedback.ToneNone {
		t.Error("plain speech carries no tone")
	}
}
