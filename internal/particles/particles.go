// Package particles implements the short-lived accents spawned by loud bass
// bars.
package particles

import (
	"image/color"
	"math/rand"
)

const (
	MaxSpeed = 1.5
	Decay    = 0.02
	Size     = 2.0
)

// Particle is a single accent. Life runs from 1 down to 0 and doubles as its
// opacity.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Life   float64
}

// Painter is the drawing surface particles are drawn onto.
type Painter interface {
	FillRect(x, y, w, h float64, c color.NRGBA)
}

// System owns the live particles.
type System struct {
	rng  *rand.Rand
	live []Particle
}

// New creates a system drawing velocities from rng. A nil rng is seeded with 1.
func New(rng *rand.Rand) *System {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &System{rng: rng}
}

// Spawn adds count particles at (x, y) with random velocities in
// [-MaxSpeed, MaxSpeed] on both axes.
func (s *System) Spawn(x, y float64, count int) {
	for i := 0; i < count; i++ {
		s.live = append(s.live, Particle{
			X:    x,
			Y:    y,
			VX:   (s.rng.Float64()*2 - 1) * MaxSpeed,
			VY:   (s.rng.Float64()*2 - 1) * MaxSpeed,
			Life: 1,
		})
	}
}

// Tick advances every particle by one frame and drops the ones that expired
// or left the w×h canvas.
func (s *System) Tick(w, h float64) {
	kept := make([]Particle, 0, len(s.live))
	for _, p := range s.live {
		p.X += p.VX
		p.Y += p.VY
		p.Life -= Decay
		if p.Life <= 0 || p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			continue
		}
		kept = append(kept, p)
	}
	s.live = kept
}

// Draw paints each particle as a small square in c with alpha scaled by its
// remaining life. Squares are clipped to the w×h canvas.
func (s *System) Draw(dst Painter, w, h float64, c color.NRGBA) {
	for _, p := range s.live {
		pc := c
		pc.A = uint8(float64(c.A) * p.Life)
		dst.FillRect(p.X, p.Y, min(Size, w-p.X), min(Size, h-p.Y), pc)
	}
}

// Len returns the number of live particles.
func (s *System) Len() int { return len(s.live) }

// Particles returns a copy of the live particles.
func (s *System) Particles() []Particle {
	out := make([]Particle, len(s.live))
	copy(out, s.live)
	return out
}

// Clear removes every particle.
func (s *System) Clear() { s.live = nil }
