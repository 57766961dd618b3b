package source

import (
	"math"
	"math/rand"

	"github.com/gopxl/beep"
)

// oscillator renders f(t) forever, t in seconds.
type oscillator struct {
	rate float64
	n    int
	f    func(t float64) float64
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := o.f(float64(o.n) / o.rate)
		samples[i] = [2]float64{v, v}
		o.n++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// Demo returns an endless synthetic signal: a kick drum on every beat, a slow
// logarithmic sine sweep and noise hats on the off-beats. bpm <= 0 uses 120.
func Demo(rate beep.SampleRate, bpm float64) beep.Streamer {
	if bpm <= 0 {
		bpm = 120
	}
	beat := 60 / bpm
	sr := float64(rate)
	rng := rand.New(rand.NewSource(1))

	kick := &oscillator{rate: sr, f: func(t float64) float64 {
		p := math.Mod(t, beat)
		freq := 50 + 90*math.Exp(-p*30)
		return 0.8 * math.Exp(-p*8) * math.Sin(2*math.Pi*freq*p)
	}}

	const sweepPeriod = 8.0
	sweep := &oscillator{rate: sr, f: func(t float64) float64 {
		p := math.Mod(t, sweepPeriod) / sweepPeriod
		// integral of 200*20^p for a continuous phase
		phase := 200 * sweepPeriod * (math.Pow(20, p) - 1) / math.Log(20)
		return 0.25 * math.Sin(2*math.Pi*phase)
	}}

	hats := &oscillator{rate: sr, f: func(t float64) float64 {
		p := math.Mod(t+beat/2, beat)
		return 0.15 * math.Exp(-p*60) * (rng.Float64()*2 - 1)
	}}

	return beep.Mix(kick, sweep, hats)
}
