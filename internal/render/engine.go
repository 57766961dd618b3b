// Package render turns a frequency snapshot into draw commands for one of
// the visual styles and paints them, together with the particle overlay,
// onto a Surface.
package render

import (
	"github.com/olivier-w/rhalza/internal/particles"
	"github.com/olivier-w/rhalza/internal/settings"
)

// Engine renders frames. It is not safe for concurrent use; frames are
// rendered from a single goroutine.
type Engine struct {
	particles *particles.System
	last      Marker
}

// NewEngine creates an engine that overlays ps on every frame.
func NewEngine(ps *particles.System) *Engine {
	if ps == nil {
		ps = particles.New(nil)
	}
	return &Engine{particles: ps}
}

// Render draws one frame of data onto dst using s, then advances and draws
// the particles. It returns the centre image placeholder for the frame and
// whether anything was drawn. An empty surface is left alone and the previous
// marker is returned.
func (e *Engine) Render(dst Surface, data []byte, s settings.Settings) (Marker, bool) {
	w, h := dst.Size()
	if w <= 0 || h <= 0 {
		return e.last, false
	}

	g := Compute(Input{Data: data, Settings: s, W: w, H: h})
	Replay(dst, g.Commands)

	for _, sp := range g.Spawns {
		e.particles.Spawn(sp.X, sp.Y, sp.Count)
	}
	e.particles.Tick(w, h)
	e.particles.Draw(dst, w, h, s.SpectrumColor)

	e.last = g.Marker
	return g.Marker, true
}

// Particles exposes the overlay system.
func (e *Engine) Particles() *particles.System { return e.particles }
