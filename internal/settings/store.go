package settings

import (
	"image/color"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	VisualStyle       *Style
	CenterFill        *FillType
	CustomColor       *color.NRGBA
	SpectrumColor     *color.NRGBA
	BackgroundColor   *color.NRGBA
	TemporalSmoothing *float64
	BarCount          *int
	Sensitivity       *float64
	Size              *float64
}

// Change is a bit set of the fields a patch modified.
type Change uint16

const (
	ChangedStyle Change = 1 << iota
	ChangedFill
	ChangedColors
	ChangedSmoothing
	ChangedBarCount
	ChangedSensitivity
	ChangedSize
)

// Resolution reports whether the change affects analyser sizing.
func (c Change) Resolution() bool {
	return c&(ChangedStyle|ChangedBarCount|ChangedSmoothing) != 0
}

// Store owns the live Settings record.
type Store struct {
	mu  sync.RWMutex
	cur Settings
}

// NewStore creates a store seeded with initial, sanitized.
func NewStore(initial Settings) *Store {
	initial.Sanitize()
	return &Store{cur: initial}
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Apply merges p into the current record. Out-of-range values are clamped and
// reported through an error wrapping ErrInvalidSettings; the clamped record is
// still stored.
func (s *Store) Apply(p Patch) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur
	if p.VisualStyle != nil {
		next.VisualStyle = *p.VisualStyle
	}
	if p.CenterFill != nil {
		next.CenterFill = *p.CenterFill
	}
	if p.CustomColor != nil {
		next.CustomColor = *p.CustomColor
	}
	if p.SpectrumColor != nil {
		next.SpectrumColor = *p.SpectrumColor
	}
	if p.BackgroundColor != nil {
		next.BackgroundColor = *p.BackgroundColor
	}
	if p.TemporalSmoothing != nil {
		next.TemporalSmoothing = *p.TemporalSmoothing
	}
	if p.BarCount != nil {
		next.BarCount = *p.BarCount
	}
	if p.Sensitivity != nil {
		next.Sensitivity = *p.Sensitivity
	}
	if p.Size != nil {
		next.Size = *p.Size
	}

	fixed := next.Sanitize()
	changed := diff(s.cur, next)
	s.cur = next

	if len(fixed) > 0 {
		return changed, errors.Wrapf(ErrInvalidSettings, "clamped %s", strings.Join(fixed, ", "))
	}
	return changed, nil
}

func diff(a, b Settings) Change {
	var c Change
	if a.VisualStyle != b.VisualStyle {
		c |= ChangedStyle
	}
	if a.CenterFill != b.CenterFill {
		c |= ChangedFill
	}
	if a.CustomColor != b.CustomColor || a.SpectrumColor != b.SpectrumColor || a.BackgroundColor != b.BackgroundColor {
		c |= ChangedColors
	}
	if a.TemporalSmoothing != b.TemporalSmoothing {
		c |= ChangedSmoothing
	}
	if a.BarCount != b.BarCount {
		c |= ChangedBarCount
	}
	if a.Sensitivity != b.Sensitivity {
		c |= ChangedSensitivity
	}
	if a.Size != b.Size {
		c |= ChangedSize
	}
	return c
}
