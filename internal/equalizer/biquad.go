package equalizer

import "math"

// biquad is a peaking filter in transposed direct form II, with separate
// state for the left and right channels.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     [2]float64
}

// setPeaking computes RBJ cookbook peaking coefficients.
func (f *biquad) setPeaking(sampleRate, freq, q, gainDb float64) {
	a := math.Pow(10, gainDb/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha/a
	f.b0 = (1 + alpha*a) / a0
	f.b1 = -2 * cosw / a0
	f.b2 = (1 - alpha*a) / a0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha/a) / a0
}

func (f *biquad) process(ch int, x float64) float64 {
	y := f.b0*x + f.z1[ch]
	f.z1[ch] = f.b1*x - f.a1*y + f.z2[ch]
	f.z2[ch] = f.b2*x - f.a2*y
	return y
}
