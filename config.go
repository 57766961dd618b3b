package main

import (
	"path/filepath"
	"time"

	"github.com/olivier-w/rhalza/internal/settings"
	"github.com/olivier-w/rhalza/internal/source"
	"github.com/pkg/errors"
)

type config struct {
	file   string
	output string

	style           string
	fill            string
	customColor     string
	spectrumColor   string
	backgroundColor string
	smoothing       float64
	bars            int
	sensitivity     float64
	size            float64
	preset          string

	fps      int
	volume   float64
	mute     bool
	bpm      float64
	width    int
	height   int
	pngPath  string
	duration time.Duration
	logPath  string
}

func newZeroConfig() config {
	def := settings.Defaults()
	return config{
		output:          "tui",
		style:           def.VisualStyle.String(),
		fill:            def.CenterFill.String(),
		customColor:     settings.Hex(def.CustomColor),
		spectrumColor:   settings.Hex(def.SpectrumColor),
		backgroundColor: settings.Hex(def.BackgroundColor),
		smoothing:       def.TemporalSmoothing,
		bars:            def.BarCount,
		sensitivity:     def.Sensitivity,
		size:            def.Size,
		fps:             30,
		volume:          1,
		bpm:             120,
		width:           800,
		height:          400,
		pngPath:         AppName + ".png",
		duration:        2 * time.Second,
	}
}

func (c config) validate() error {
	switch c.output {
	case "tui", "window", "png":
	default:
		return errors.Errorf("output %q must be tui, window or png", c.output)
	}
	if c.fps <= 0 {
		return errors.Errorf("fps %d must be positive", c.fps)
	}
	if c.width <= 0 || c.height <= 0 {
		return errors.Errorf("size %dx%d must be positive", c.width, c.height)
	}
	if c.volume < 0 || c.volume > 1 {
		return errors.Errorf("volume %.2f out of range [0, 1]", c.volume)
	}
	if c.bpm <= 0 {
		return errors.Errorf("bpm %.1f must be positive", c.bpm)
	}
	if c.file != "" && !source.IsSupportedExt(filepath.Ext(c.file)) {
		return errors.Errorf("%s: unsupported format (supported: %s)", c.file, source.SupportedExtsList())
	}
	if c.output == "png" && c.duration <= 0 {
		return errors.New("png output needs a positive duration")
	}
	return nil
}

// settings builds the initial record from the flags. Range problems are left
// to Sanitize; only unparsable names and colours fail here.
func (c config) settings() (settings.Settings, error) {
	s := settings.Defaults()

	var err error
	if s.VisualStyle, err = settings.ParseStyle(c.style); err != nil {
		return s, err
	}
	if s.CenterFill, err = settings.ParseFill(c.fill); err != nil {
		return s, err
	}
	if s.CustomColor, err = settings.ParseColor(c.customColor); err != nil {
		return s, errors.Wrap(err, "custom color")
	}
	if s.SpectrumColor, err = settings.ParseColor(c.spectrumColor); err != nil {
		return s, errors.Wrap(err, "spectrum color")
	}
	if s.BackgroundColor, err = settings.ParseColor(c.backgroundColor); err != nil {
		return s, errors.Wrap(err, "background color")
	}

	s.TemporalSmoothing = c.smoothing
	s.BarCount = c.bars
	s.Sensitivity = c.sensitivity
	s.Size = c.size
	return s, nil
}
