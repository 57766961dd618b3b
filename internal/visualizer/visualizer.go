// Package visualizer ties the settings, the audio graph, the analyser and the
// render engine together and drives them frame by frame.
package visualizer

import (
	"strings"

	"github.com/olivier-w/rhalza/internal/analyser"
	"github.com/olivier-w/rhalza/internal/audiograph"
	"github.com/olivier-w/rhalza/internal/equalizer"
	"github.com/olivier-w/rhalza/internal/particles"
	"github.com/olivier-w/rhalza/internal/render"
	"github.com/olivier-w/rhalza/internal/settings"
	"github.com/pkg/errors"
)

// Visualizer is the entry point hosts talk to. Its methods are meant to be
// called from the host's UI goroutine.
type Visualizer struct {
	store  *settings.Store
	graph  *audiograph.Manager
	conf   *analyser.Configurator
	engine *render.Engine
	center *placeholder
}

// Option customizes a Visualizer.
type Option func(*Visualizer)

// WithParticles uses ps for the particle overlay.
func WithParticles(ps *particles.System) Option {
	return func(v *Visualizer) { v.engine = render.NewEngine(ps) }
}

// WithPlaceholderFPS tunes the centre placeholder animation to the host's
// frame rate.
func WithPlaceholderFPS(fps int) Option {
	return func(v *Visualizer) { v.center = newPlaceholder(fps) }
}

// New creates a visualizer around graph, starting from initial. The visualizer
// is always usable; a non-nil error is a warning like the ones ApplySettings
// returns, reporting clamped fields or a resolution that could not be served.
func New(graph *audiograph.Manager, initial settings.Settings, opts ...Option) (*Visualizer, error) {
	var err error
	if fixed := initial.Sanitize(); len(fixed) > 0 {
		err = errors.Wrapf(settings.ErrInvalidSettings, "clamped %s", strings.Join(fixed, ", "))
	}

	v := &Visualizer{
		store:  settings.NewStore(initial),
		graph:  graph,
		conf:   analyser.NewConfigurator(),
		engine: render.NewEngine(nil),
		center: newPlaceholder(60),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, combine(err, v.conf.Apply(v.store.Snapshot()))
}

// Settings returns the current settings.
func (v *Visualizer) Settings() settings.Settings { return v.store.Snapshot() }

// Connect wires src into the audio graph and sizes the new analyser. A
// destination failure is returned but the visuals keep running on silence.
func (v *Visualizer) Connect(src audiograph.Source) error {
	err := v.graph.Connect(src)
	if bindErr := v.conf.Bind(v.graph.Analyser(), v.store.Snapshot()); bindErr != nil && err == nil {
		err = bindErr
	}
	return err
}

// Disconnect tears the graph down. Rendering stops until the next Connect.
func (v *Visualizer) Disconnect() {
	v.graph.Disconnect()
	v.conf.Bind(nil, v.store.Snapshot())
	v.engine.Particles().Clear()
}

// ApplySettings merges p into the settings and re-sizes the analyser when
// needed. The returned error is a warning: the patch is applied either way,
// with out-of-range values clamped.
func (v *Visualizer) ApplySettings(p settings.Patch) error {
	changed, err := v.store.Apply(p)
	if !changed.Resolution() {
		return err
	}
	return combine(err, v.conf.Apply(v.store.Snapshot()))
}

// combine folds a resize failure into a clamping warning, keeping the resize
// error as the cause.
func combine(warn, confErr error) error {
	if confErr == nil {
		return warn
	}
	if warn != nil {
		return errors.Wrap(confErr, warn.Error())
	}
	return confErr
}

// SetEqualizerGain sets one band and returns the clamped gain.
func (v *Visualizer) SetEqualizerGain(band int, db float64) float64 {
	return v.graph.SetEqualizerGain(band, db)
}

// ApplyPreset switches the equalizer to a named preset.
func (v *Visualizer) ApplyPreset(name string) bool {
	return v.graph.ApplyPreset(name)
}

// EqualizerGains returns the current band gains.
func (v *Visualizer) EqualizerGains() equalizer.Gains {
	return v.graph.EqualizerGains()
}

// FFTSize returns the analysis resolution in effect.
func (v *Visualizer) FFTSize() int { return v.conf.FFTSize() }

// Render draws one frame onto dst. It does nothing and reports false when no
// analyser is connected or dst is empty, leaving the previous frame on screen.
func (v *Visualizer) Render(dst render.Surface) bool {
	s := v.store.Snapshot()
	if !v.graph.ReadSnapshot(v.conf.Buffer()) {
		return false
	}
	marker, drawn := v.engine.Render(dst, v.conf.Buffer(), s)
	if !drawn {
		return false
	}
	v.center.draw(dst, marker, s)
	return true
}
