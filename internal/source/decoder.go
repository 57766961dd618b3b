package source

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/pkg/errors"
)

// decoder is a beep.Streamer that also knows its native sample rate.
type decoder interface {
	Stream(samples [][2]float64) (int, bool)
	Err() error
	SampleRate() int
}

// pcmStream converts little-endian integer PCM from r into stereo frames.
type pcmStream struct {
	r        io.Reader
	rate     int
	channels int
	bitDepth int
	raw      []byte
	err      error
}

func (d *pcmStream) SampleRate() int { return d.rate }
func (d *pcmStream) Err() error      { return d.err }

func (d *pcmStream) Stream(samples [][2]float64) (int, bool) {
	if d.err != nil {
		return 0, false
	}
	width := d.bitDepth / 8
	frameSize := width * d.channels
	need := len(samples) * frameSize
	if cap(d.raw) < need {
		d.raw = make([]byte, need)
	}
	buf := d.raw[:need]

	n, err := io.ReadFull(d.r, buf)
	frames := n / frameSize
	for i := 0; i < frames; i++ {
		off := i * frameSize
		l := pcmSample(buf[off:], d.bitDepth)
		r := l
		if d.channels > 1 {
			r = pcmSample(buf[off+width:], d.bitDepth)
		}
		samples[i] = [2]float64{l, r}
	}

	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return frames, frames > 0
	case err != nil:
		d.err = err
		return frames, frames > 0
	}
	return frames, true
}

// pcmSample decodes one little-endian sample into [-1, 1). 8-bit PCM is
// unsigned.
func pcmSample(b []byte, bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return float64(int(b[0])-128) / 128
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / (1 << 15)
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF
		}
		return float64(s) / (1 << 23)
	case 32:
		return float64(int32(binary.LittleEndian.Uint32(b))) / (1 << 31)
	}
	return 0
}

func newMP3Decoder(f *os.File) (decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding MP3")
	}
	// go-mp3 always yields 16-bit stereo
	return &pcmStream{r: dec, rate: dec.SampleRate(), channels: 2, bitDepth: 16}, nil
}

func newWAVDecoder(f *os.File) (decoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Wrap(err, "reading WAV PCM data")
	}
	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, errors.Errorf("unsupported WAV bit depth: %d", depth)
	}
	if dec.NumChans == 0 {
		return nil, errors.New("WAV file has no channels")
	}
	pcm := io.LimitReader(f, dec.PCMLen())
	return &pcmStream{r: pcm, rate: int(dec.SampleRate), channels: int(dec.NumChans), bitDepth: depth}, nil
}

type flacDecoder struct {
	stream *flac.Stream
	frame  [][]int32
	pos    int
	scale  float64
	err    error
}

func newFLACDecoder(f *os.File) (decoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding FLAC")
	}
	bps := int(stream.Info.BitsPerSample)
	return &flacDecoder{stream: stream, scale: float64(int64(1) << (bps - 1))}, nil
}

func (d *flacDecoder) SampleRate() int { return int(d.stream.Info.SampleRate) }
func (d *flacDecoder) Err() error      { return d.err }

func (d *flacDecoder) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) {
		if len(d.frame) == 0 || d.pos >= len(d.frame[0]) {
			if !d.next() {
				break
			}
		}
		left := d.frame[0]
		right := left
		if len(d.frame) > 1 {
			right = d.frame[1]
		}
		for ; n < len(samples) && d.pos < len(left); n++ {
			samples[n] = [2]float64{float64(left[d.pos]) / d.scale, float64(right[d.pos]) / d.scale}
			d.pos++
		}
	}
	return n, n > 0
}

func (d *flacDecoder) next() bool {
	if d.err != nil {
		return false
	}
	frame, err := d.stream.ParseNext()
	if err != nil {
		if err != io.EOF {
			d.err = err
		}
		return false
	}
	d.frame = d.frame[:0]
	for _, sub := range frame.Subframes {
		d.frame = append(d.frame, sub.Samples)
	}
	d.pos = 0
	return len(d.frame) > 0
}

type oggDecoder struct {
	reader *oggvorbis.Reader
	buf    []float32
	err    error
}

func newOGGDecoder(f *os.File) (decoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding OGG")
	}
	return &oggDecoder{reader: reader}, nil
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) Err() error      { return d.err }

func (d *oggDecoder) Stream(samples [][2]float64) (int, bool) {
	if d.err != nil {
		return 0, false
	}
	ch := d.reader.Channels()
	need := len(samples) * ch
	if cap(d.buf) < need {
		d.buf = make([]float32, need)
	}
	buf := d.buf[:need]

	read := 0
	for read < need {
		n, err := d.reader.Read(buf[read:])
		read += n
		if err != nil {
			if err != io.EOF {
				d.err = err
			}
			break
		}
		if n == 0 {
			break
		}
	}

	frames := read / ch
	for i := 0; i < frames; i++ {
		l := float64(buf[i*ch])
		r := l
		if ch > 1 {
			r = float64(buf[i*ch+1])
		}
		samples[i] = [2]float64{l, r}
	}
	return frames, frames > 0
}
