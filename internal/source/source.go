// Package source provides PCM streams for the audio graph: decoded files and
// a synthetic demo signal.
package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/pkg/errors"
)

const resampleQuality = 4

var openers = map[string]func(*os.File) (decoder, error){
	".mp3":  newMP3Decoder,
	".wav":  newWAVDecoder,
	".flac": newFLACDecoder,
	".ogg":  newOGGDecoder,
}

// IsSupportedExt reports whether files with this extension can be opened.
func IsSupportedExt(ext string) bool {
	_, ok := openers[strings.ToLower(ext)]
	return ok
}

// SupportedExtsList returns a human-readable list of supported formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}

// Patterns returns glob patterns for file pickers.
func Patterns() []string {
	return []string{"*.mp3", "*.wav", "*.flac", "*.ogg"}
}

// Track is a decoded file resampled to the graph rate.
type Track struct {
	Name string

	file *os.File
	s    beep.Streamer
}

// Open decodes path and resamples it to rate.
func Open(path string, rate beep.SampleRate) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	open, ok := openers[ext]
	if !ok {
		return nil, errors.Errorf("unsupported format %s (supported: %s)", ext, SupportedExtsList())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open source")
	}
	dec, err := open(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "open %s", filepath.Base(path))
	}

	return &Track{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		file: f,
		s:    resampled(dec, rate),
	}, nil
}

func resampled(dec decoder, rate beep.SampleRate) beep.Streamer {
	native := beep.SampleRate(dec.SampleRate())
	if native <= 0 || native == rate {
		return dec
	}
	return beep.Resample(resampleQuality, native, rate, dec)
}

// Stream implements beep.Streamer.
func (t *Track) Stream(samples [][2]float64) (int, bool) { return t.s.Stream(samples) }

// Err implements beep.Streamer.
func (t *Track) Err() error { return t.s.Err() }

// Close releases the underlying file.
func (t *Track) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
