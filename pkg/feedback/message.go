// Package feedback provides the priority-based audio/haptic arbitration engine.
//
// Two independently-clocked producers (the obstacle safety pipeline and the
// navigation pipeline) push messages into a single Scheduler, which decides
// what is allowed to be rendered at any instant and guarantees that a
// higher-priority message always preempts a lower-priority one in progress.
package feedback

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority orders messages for arbitration. A message may preempt only a
// currently-rendering message of strictly lower priority.
type Priority int

const (
	// System carries confirmations and status replies ("route calculated").
	System Priority = 1
	// Navigation carries turn-by-turn guidance.
	Navigation Priority = 2
	// Safety carries obstacle alerts and always wins.
	Safety Priority = 3
)

func (p Priority) String() string {
	switch p {
	case System:
		return "SYSTEM"
	case Navigation:
		return "NAVIGATION"
	case Safety:
		return "SAFETY"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Valid reports whether p is one of the three defined priorities.
func (p Priority) Valid() bool {
	return p >= System && p <= Safety
}

// Tone identifies a non-speech audio cue rendered alongside or instead of text.
type Tone int

const (
	ToneNone Tone = iota
	ToneWarning
	ToneCritical
)

// Message is a single utterance waiting for, or holding, the render slot.
// A message lives in exactly one queue or in the render slot, and is destroyed
// after rendering completes, it is preempted, or (SYSTEM only) it expires.
type Message struct {
	ID         uuid.UUID
	Text       string
	Tone       Tone
	Priority   Priority
	EnqueuedAt time.Time

	// Interruptible messages are discarded when preempted; they are never
	// resumed or re-queued. Defaults to true.
	Interruptible bool
}

// NewMessage creates an interruptible message with the given text and priority.
func NewMessage(text string, priority Priority) Message {
	return Message{
		ID:            uuid.New(),
		Text:          text,
		Priority:      priority,
		EnqueuedAt:    time.Now(),
		Interruptible: true,
	}
}
