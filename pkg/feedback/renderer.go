package feedback

import "time"

// Request is what the scheduler hands to the output capability: an utterance,
// an optional tone, and an optional vibration pattern.
type Request struct {
	Text      string
	Tone      Tone
	Vibration []time.Duration // alternating on/off durations; nil for none
}

// Renderer is the narrow capability boundary to the TTS/tone/vibration
// subsystem. The scheduler depends on nothing else about audio output.
//
// Contract: done must be called exactly once per accepted render, from any
// goroutine, when playback finishes naturally. A render interrupted by Cancel
// must NOT call done. A renderer that accepts a render and then never signals
// completion wedges the scheduler: there is no internal watchdog, by contract
// with the platform audio engine.
type Renderer interface {
	// Render starts playback and returns immediately. A non-nil error means
	// the render was not accepted and done will never fire.
	Render(req Request, done func()) error

	// Cancel stops the in-progress render, if any, effectively immediately.
	// The cancelled render's done callback is suppressed.
	Cancel()
}
