package feedback

import (
	"log/slog"
	"os/exec"
	"sync"
)

// EspeakRenderer speaks through the espeak-ng binary, one utterance at a
// time. Vibration patterns are logged only; haptic hardware attaches through
// its own Renderer implementation.
type EspeakRenderer struct {
	binary string
	logger *slog.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
	gen int // bumped on Cancel so a killed process never reports done
}

// NewEspeakRenderer uses the given binary, or espeak-ng when empty.
func NewEspeakRenderer(binary string, logger *slog.Logger) *EspeakRenderer {
	if binary == "" {
		binary = "espeak-ng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EspeakRenderer{
		binary: binary,
		logger: logger.With("component", "feedback.espeak"),
	}
}

// Render implements Renderer. done fires when the process exits, unless the
// render was cancelled first.
func (e *EspeakRenderer) Render(req Request, done func()) error {
	args := []string{}
	if req.Tone == ToneCritical {
		// Faster, louder delivery for critical alerts.
		args = append(args, "-s", "200", "-a", "200")
	}
	args = append(args, req.Text)

	cmd := exec.Command(e.binary, args...)

	e.mu.Lock()
	if err := cmd.Start(); err != nil {
		e.mu.Unlock()
		return &RenderError{MessageText: req.Text, Err: ErrRendererUnavailable}
	}
	e.cmd = cmd
	gen := e.gen
	e.mu.Unlock()

	if len(req.Vibration) > 0 {
		e.logger.Debug("vibration pattern requested", "pulses", len(req.Vibration))
	}

	go func() {
		err := cmd.Wait()

		e.mu.Lock()
		cancelled := gen != e.gen
		if e.cmd == cmd {
			e.cmd = nil
		}
		e.mu.Unlock()

		if cancelled {
			return
		}
		if err != nil {
			e.logger.Warn("espeak exited with error", "error", err)
		}
		done()
	}()
	return nil
}

// Cancel implements Renderer by killing the in-flight process.
func (e *EspeakRenderer) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd == nil {
		return
	}
	e.gen++
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
	e.cmd = nil
}

var _ Renderer = (*EspeakRenderer)(nil)
