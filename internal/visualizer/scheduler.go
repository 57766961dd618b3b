package visualizer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/olivier-w/rhalza/internal/render"
)

// Renderer draws a single frame and reports whether anything was drawn.
type Renderer interface {
	Render(dst render.Surface) bool
}

// Scheduler gates and paces frames. Hosts with their own refresh callback
// call Step from it; headless hosts use Run.
type Scheduler struct {
	r       Renderer
	playing atomic.Bool
	frames  atomic.Uint64
}

// NewScheduler returns a scheduler in the playing state.
func NewScheduler(r Renderer) *Scheduler {
	s := &Scheduler{r: r}
	s.playing.Store(true)
	return s
}

// SetPlaying opens or closes the gate. While paused, frames are skipped and
// the surface keeps its last image.
func (s *Scheduler) SetPlaying(playing bool) { s.playing.Store(playing) }

// Playing reports the gate state.
func (s *Scheduler) Playing() bool { return s.playing.Load() }

// Toggle flips the gate and returns the new state.
func (s *Scheduler) Toggle() bool {
	for {
		cur := s.playing.Load()
		if s.playing.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}

// Frames returns how many frames have been drawn.
func (s *Scheduler) Frames() uint64 { return s.frames.Load() }

// Step renders one frame if playing.
func (s *Scheduler) Step(dst render.Surface) bool {
	if !s.playing.Load() {
		return false
	}
	if !s.r.Render(dst) {
		return false
	}
	s.frames.Add(1)
	return true
}

// Run steps at fps until ctx is done. after, if non-nil, is called with the
// result of every step.
func (s *Scheduler) Run(ctx context.Context, dst render.Surface, fps int, after func(drawn bool)) {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drawn := s.Step(dst)
			if after != nil {
				after(drawn)
			}
		}
	}
}
