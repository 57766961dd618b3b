// Package analyser turns the PCM flowing through the audio graph into byte
// frequency snapshots, and sizes those snapshots from the current settings.
package analyser

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/gopxl/beep"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	MinFFTSize = 2
	MaxFFTSize = 1 << 15

	DefaultFFTSize   = 2048
	DefaultSmoothing = 0.8

	minDecibels = -100.0
	maxDecibels = -30.0
)

// ErrBufferResize is returned when a requested analysis resolution cannot be
// allocated. The previous resolution stays in effect.
var ErrBufferResize = errors.New("analyser buffer resize failed")

// Analyser taps a stereo stream, keeps the most recent samples as a mono mix
// and computes a smoothed magnitude spectrum on demand.
type Analyser struct {
	s beep.Streamer

	mu   sync.Mutex
	ring []float64
	pos  int

	fftSize   int
	smoothing float64
	fft       *fourier.FFT
	window    []float64
	in        []float64
	coeffs    []complex128
	prev      []float64
}

// New wraps s. A nil streamer is allowed; frames can then be pushed with Write.
func New(s beep.Streamer) *Analyser {
	a := &Analyser{
		s:         s,
		ring:      make([]float64, MaxFFTSize),
		smoothing: DefaultSmoothing,
	}
	a.resize(DefaultFFTSize)
	return a
}

// Stream passes audio through while capturing it.
func (a *Analyser) Stream(samples [][2]float64) (int, bool) {
	if a.s == nil {
		return 0, false
	}
	n, ok := a.s.Stream(samples)
	a.Write(samples[:n])
	return n, ok
}

// Err returns the wrapped streamer's error.
func (a *Analyser) Err() error {
	if a.s == nil {
		return nil
	}
	return a.s.Err()
}

// Write appends frames to the capture ring.
func (a *Analyser) Write(frames [][2]float64) {
	a.mu.Lock()
	for _, f := range frames {
		a.ring[a.pos] = (f[0] + f[1]) / 2
		a.pos = (a.pos + 1) % len(a.ring)
	}
	a.mu.Unlock()
}

// FFTSize returns the current analysis window length.
func (a *Analyser) FFTSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fftSize
}

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int {
	return a.FFTSize() / 2
}

// SetFFTSize changes the analysis window. n must be a power of two within
// [MinFFTSize, MaxFFTSize].
func (a *Analyser) SetFFTSize(n int) error {
	if n < MinFFTSize || n > MaxFFTSize || n&(n-1) != 0 {
		return errors.Wrapf(ErrBufferResize, "fft size %d", n)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if n != a.fftSize {
		a.resize(n)
	}
	return nil
}

// SetSmoothing sets the temporal smoothing constant, clamped to [0, 1].
func (a *Analyser) SetSmoothing(tau float64) {
	if math.IsNaN(tau) {
		tau = DefaultSmoothing
	}
	tau = math.Max(0, math.Min(1, tau))
	a.mu.Lock()
	a.smoothing = tau
	a.mu.Unlock()
}

func (a *Analyser) resize(n int) {
	a.fftSize = n
	a.fft = fourier.NewFFT(n)
	a.window = blackman(n)
	a.in = make([]float64, n)
	a.coeffs = make([]complex128, n/2+1)
	a.prev = make([]float64, n/2)
}

// ByteFrequencyData writes up to FrequencyBinCount magnitudes into dst, each
// mapped from [-100, -30] dB onto [0, 255]. It returns the number of bins
// written.
func (a *Analyser) ByteFrequencyData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.fftSize
	start := a.pos - n
	if start < 0 {
		start += len(a.ring)
	}
	for i := range a.in {
		a.in[i] = a.ring[(start+i)%len(a.ring)] * a.window[i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.in)

	bins := min(len(dst), n/2)
	scale := 1 / float64(n)
	tau := a.smoothing
	for i := range a.prev {
		mag := cmplx.Abs(a.coeffs[i]) * scale
		a.prev[i] = tau*a.prev[i] + (1-tau)*mag
	}
	for i := 0; i < bins; i++ {
		dst[i] = toByte(a.prev[i])
	}
	return bins
}

func toByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := 255 / (maxDecibels - minDecibels) * (db - minDecibels)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}

func blackman(n int) []float64 {
	const (
		a0 = 0.42
		a1 = 0.5
		a2 = 0.08
	)
	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}
