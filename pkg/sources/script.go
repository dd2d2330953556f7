package sources

import (
	"context"
	"sync"
	"time"

	"github.com/dlaveaga/go-guidedog/pkg/hazard"
)

// ScriptFrame is one pre-recorded obstacle frame.
type ScriptFrame struct {
	Obstacles []hazard.Obstacle
	Width     int
	Height    int
}

// ScriptObstacleSource replays a fixed sequence of frames, for tests and the
// simulation binary. After the script runs out it keeps serving empty frames
// at the last frame's dimensions.
type ScriptObstacleSource struct {
	mu     sync.Mutex
	frames []ScriptFrame
	idx    int
	closed bool
}

// NewScriptObstacleSource builds a source over the given frames.
func NewScriptObstacleSource(frames []ScriptFrame) *ScriptObstacleSource {
	return &ScriptObstacleSource{frames: frames}
}

// Frame implements ObstacleSource.
func (s *ScriptObstacleSource) Frame(ctx context.Context) ([]hazard.Obstacle, int, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, 0, 0, ErrSourceClosed
	}
	if len(s.frames) == 0 {
		return nil, 640, 480, nil
	}
	if s.idx >= len(s.frames) {
		last := s.frames[len(s.frames)-1]
		return nil, last.Width, last.Height, nil
	}

	f := s.frames[s.idx]
	s.idx++
	return f.Obstacles, f.Width, f.Height, nil
}

// Exhausted reports whether the script has been fully played.
func (s *ScriptObstacleSource) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx >= len(s.frames)
}

// Close implements ObstacleSource.
func (s *ScriptObstacleSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ScriptLocationSource replays a fixed sequence of fixes at a steady
// interval, then leaves the channel open until Close.
type ScriptLocationSource struct {
	fixes     chan Fix
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewScriptLocationSource starts playback immediately.
func NewScriptLocationSource(script []Fix, interval time.Duration) *ScriptLocationSource {
	s := &ScriptLocationSource{
		fixes: make(chan Fix, len(script)+1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.play(script, interval)
	return s
}

func (s *ScriptLocationSource) play(script []Fix, interval time.Duration) {
	defer close(s.done)
	for _, fix := range script {
		if fix.Timestamp.IsZero() {
			fix.Timestamp = time.Now()
		}
		select {
		case s.fixes <- fix:
		case <-s.quit:
			return
		}
		select {
		case <-time.After(interval):
		case <-s.quit:
			return
		}
	}
}

// Fixes implements LocationSource.
func (s *ScriptLocationSource) Fixes() <-chan Fix {
	return s.fixes
}

// Close implements LocationSource. Safe to call more than once.
func (s *ScriptLocationSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
		close(s.fixes)
	})
	return nil
}

var (
	_ ObstacleSource = (*ScriptObstacleSource)(nil)
	_ LocationSource = (*ScriptLocationSource)(nil)
)
