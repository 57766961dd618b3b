package analyser

import (
	"github.com/olivier-w/rhalza/internal/settings"
	"github.com/pkg/errors"
)

// MonstercatFFTSize is the fixed resolution used by the monstercat style.
const MonstercatFFTSize = 2048

// Configurator keeps an analyser's resolution and smoothing in step with the
// settings, and owns the snapshot buffer the renderer reads every frame.
type Configurator struct {
	an      *Analyser
	fftSize int
	buf     []byte
}

// NewConfigurator returns a configurator sized for the default resolution.
func NewConfigurator() *Configurator {
	return &Configurator{
		fftSize: DefaultFFTSize,
		buf:     make([]byte, DefaultFFTSize/2),
	}
}

// NextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// TargetFFTSize is the resolution s asks for.
func TargetFFTSize(s settings.Settings) int {
	if s.VisualStyle == settings.Monstercat {
		return MonstercatFFTSize
	}
	return NextPowerOfTwo(s.BarCount * 2)
}

// Bind attaches a freshly built analyser and pushes s into it. A nil analyser
// detaches.
func (c *Configurator) Bind(a *Analyser, s settings.Settings) error {
	c.an = a
	if a == nil {
		return nil
	}
	// force SetFFTSize on the new analyser even if the size is unchanged
	prev := c.fftSize
	c.fftSize = a.FFTSize()
	if err := c.Apply(s); err != nil {
		if c.fftSize != prev {
			_ = a.SetFFTSize(prev)
			c.fftSize = prev
		}
		return err
	}
	return nil
}

// Apply re-derives smoothing and resolution from s. When the new resolution
// cannot be used the previous one is kept and an error wrapping
// ErrBufferResize is returned.
func (c *Configurator) Apply(s settings.Settings) error {
	if c.an != nil {
		c.an.SetSmoothing(s.TemporalSmoothing)
	}

	size := TargetFFTSize(s)
	if size == c.fftSize && len(c.buf) == size/2 {
		return nil
	}
	if size < MinFFTSize || size > MaxFFTSize {
		return errors.Wrapf(ErrBufferResize, "%d bars need fft size %d (max %d)", s.BarCount, size, MaxFFTSize)
	}
	if c.an != nil {
		if err := c.an.SetFFTSize(size); err != nil {
			return err
		}
	}
	c.fftSize = size
	c.buf = make([]byte, size/2)
	return nil
}

// FFTSize returns the resolution currently in effect.
func (c *Configurator) FFTSize() int { return c.fftSize }

// Buffer returns the snapshot buffer. Its length is FFTSize()/2 and it is
// overwritten in place every frame.
func (c *Configurator) Buffer() []byte { return c.buf }
