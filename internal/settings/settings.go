// Package settings holds the user-tunable visualization record and the store
// that serializes changes to it.
package settings

import (
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Style selects one of the geometric render modes.
type Style int

const (
	RingBars Style = iota
	RingSmooth
	BarBars
	BarSmooth
	Monstercat
	LinearMirrorBars
	LinearMirrorSmooth

	// StyleCount is the number of styles. Tables indexed by Style use it as length.
	StyleCount
)

var styleNames = [StyleCount]string{
	RingBars:           "ring_bars",
	RingSmooth:         "ring_smooth",
	BarBars:            "bar_bars",
	BarSmooth:          "bar_smooth",
	Monstercat:         "monstercat",
	LinearMirrorBars:   "linear_mirror_bars",
	LinearMirrorSmooth: "linear_mirror_smooth",
}

func (s Style) String() string {
	if s < 0 || s >= StyleCount {
		return "unknown"
	}
	return styleNames[s]
}

// Next returns the following style, wrapping around.
func (s Style) Next() Style {
	return (s + 1) % StyleCount
}

// IsRing reports whether the style is drawn around the centre disc.
func (s Style) IsRing() bool {
	return s == RingBars || s == RingSmooth
}

// ParseStyle maps a style name to its Style.
func ParseStyle(name string) (Style, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range styleNames {
		if n == name {
			return Style(i), nil
		}
	}
	return 0, errors.Errorf("unknown visual style %q", name)
}

// FillType controls how the centre disc of ring styles is painted.
type FillType int

const (
	FillImage FillType = iota
	FillHollow
	FillSpectrum
	FillCustom

	fillCount
)

var fillNames = [fillCount]string{
	FillImage:    "image",
	FillHollow:   "hollow",
	FillSpectrum: "spectrum_color",
	FillCustom:   "custom_color",
}

func (f FillType) String() string {
	if f < 0 || f >= fillCount {
		return "unknown"
	}
	return fillNames[f]
}

// Next returns the following fill type, wrapping around.
func (f FillType) Next() FillType {
	return (f + 1) % fillCount
}

// ParseFill maps a fill name to its FillType.
func ParseFill(name string) (FillType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range fillNames {
		if n == name {
			return FillType(i), nil
		}
	}
	return 0, errors.Errorf("unknown center fill %q", name)
}

// ParseColor parses a #RRGGBB string.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "parse color %q", hex)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Hex formats a color as #rrggbb.
func Hex(c color.NRGBA) string {
	cc, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	return cc.Hex()
}

const (
	MinBarCount = 1
	// MaxBarCount keeps 2*barCount within the largest analysis window (1<<15).
	MaxBarCount = 1 << 14

	minPositive = 0.01
)

// Settings is a snapshot of the visualization configuration.
type Settings struct {
	VisualStyle       Style
	CenterFill        FillType
	CustomColor       color.NRGBA
	SpectrumColor     color.NRGBA
	BackgroundColor   color.NRGBA
	TemporalSmoothing float64
	BarCount          int
	Sensitivity       float64
	Size              float64
}

// Defaults returns the initial configuration.
func Defaults() Settings {
	return Settings{
		VisualStyle:       Monstercat,
		CenterFill:        FillImage,
		CustomColor:       color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff},
		SpectrumColor:     color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		BackgroundColor:   color.NRGBA{A: 0xff},
		TemporalSmoothing: 0.8,
		BarCount:          256,
		Sensitivity:       2.5,
		Size:              1.0,
	}
}

// ErrInvalidSettings is returned alongside a sanitized record when some
// values had to be clamped.
var ErrInvalidSettings = errors.New("invalid settings")

// Sanitize clamps every field into its valid range. The returned slice names
// the fields that were changed.
func (s *Settings) Sanitize() []string {
	var fixed []string
	def := Defaults()

	if s.VisualStyle < 0 || s.VisualStyle >= StyleCount {
		s.VisualStyle = def.VisualStyle
		fixed = append(fixed, "visualStyle")
	}
	if s.CenterFill < 0 || s.CenterFill >= fillCount {
		s.CenterFill = def.CenterFill
		fixed = append(fixed, "centerFill")
	}

	switch {
	case math.IsNaN(s.TemporalSmoothing):
		s.TemporalSmoothing = def.TemporalSmoothing
		fixed = append(fixed, "temporalSmoothing")
	case s.TemporalSmoothing < 0:
		s.TemporalSmoothing = 0
		fixed = append(fixed, "temporalSmoothing")
	case s.TemporalSmoothing > 1:
		s.TemporalSmoothing = 1
		fixed = append(fixed, "temporalSmoothing")
	}

	switch {
	case s.BarCount < MinBarCount:
		s.BarCount = MinBarCount
		fixed = append(fixed, "barCount")
	case s.BarCount > MaxBarCount:
		s.BarCount = MaxBarCount
		fixed = append(fixed, "barCount")
	}

	if v, ok := clampPositive(s.Sensitivity, def.Sensitivity); ok {
		s.Sensitivity = v
		fixed = append(fixed, "sensitivity")
	}
	if v, ok := clampPositive(s.Size, def.Size); ok {
		s.Size = v
		fixed = append(fixed, "size")
	}

	return fixed
}

func clampPositive(v, fallback float64) (float64, bool) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fallback, true
	case v < minPositive:
		return minPositive, true
	}
	return v, false
}
