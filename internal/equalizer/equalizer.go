// Package equalizer implements the ten band peaking equalizer that sits
// between the audio source and the analyser.
package equalizer

import (
	"math"
	"strconv"
	"sync/atomic"

	"github.com/gopxl/beep"
)

const (
	BandCount = 10
	MinGain   = -12.0
	MaxGain   = 12.0
	Q         = 1.41
)

// Frequencies are the centre frequencies of the bands in Hz.
var Frequencies = [BandCount]float64{60, 170, 310, 600, 1000, 3000, 6000, 12000, 14000, 16000}

// Gains holds one gain in dB per band.
type Gains [BandCount]float64

// Label returns the short display name of band i, e.g. "310" or "3k".
func Label(i int) string {
	if i < 0 || i >= BandCount {
		return ""
	}
	f := Frequencies[i]
	if f < 1000 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f/1000, 'f', -1, 64) + "k"
}

// ClampGain limits db to [MinGain, MaxGain].
func ClampGain(db float64) float64 {
	switch {
	case math.IsNaN(db):
		return 0
	case db < MinGain:
		return MinGain
	case db > MaxGain:
		return MaxGain
	}
	return db
}

// Chain runs a stream through the ten peaking filters in series. Gains may be
// changed from any goroutine; Stream picks them up on its next call.
type Chain struct {
	s          beep.Streamer
	sampleRate float64

	gains   atomic.Pointer[Gains]
	applied *Gains
	filters [BandCount]biquad
}

// NewChain wraps s. Initial gains are clamped.
func NewChain(s beep.Streamer, sr beep.SampleRate, initial Gains) *Chain {
	c := &Chain{s: s, sampleRate: float64(sr)}
	for i := range initial {
		initial[i] = ClampGain(initial[i])
	}
	c.gains.Store(&initial)
	return c
}

// Stream implements beep.Streamer.
func (c *Chain) Stream(samples [][2]float64) (int, bool) {
	if c.s == nil {
		return 0, false
	}
	n, ok := c.s.Stream(samples)
	c.Process(samples[:n])
	return n, ok
}

// Err implements beep.Streamer.
func (c *Chain) Err() error {
	if c.s == nil {
		return nil
	}
	return c.s.Err()
}

// Process filters frames in place.
func (c *Chain) Process(frames [][2]float64) {
	if g := c.gains.Load(); g != c.applied {
		for i := range c.filters {
			c.filters[i].setPeaking(c.sampleRate, Frequencies[i], Q, g[i])
		}
		c.applied = g
	}
	for i := range frames {
		l, r := frames[i][0], frames[i][1]
		for b := range c.filters {
			l = c.filters[b].process(0, l)
			r = c.filters[b].process(1, r)
		}
		frames[i][0], frames[i][1] = l, r
	}
}

// SetGain sets band i to db, clamped to [MinGain, MaxGain], and returns the
// stored value. Out-of-range bands are ignored and report 0.
func (c *Chain) SetGain(i int, db float64) float64 {
	if i < 0 || i >= BandCount {
		return 0
	}
	db = ClampGain(db)
	for {
		cur := c.gains.Load()
		next := *cur
		next[i] = db
		if c.gains.CompareAndSwap(cur, &next) {
			return db
		}
	}
}

// ApplyPreset replaces all gains with the named preset in one step. Unknown
// names leave the chain untouched and report false.
func (c *Chain) ApplyPreset(name string) bool {
	p, ok := Preset(name)
	if !ok {
		return false
	}
	c.gains.Store(&p)
	return true
}

// Gains returns a copy of the current gains.
func (c *Chain) Gains() Gains {
	return *c.gains.Load()
}
