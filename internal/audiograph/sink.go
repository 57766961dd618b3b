package audiograph

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
	"github.com/pkg/errors"
)

// Sink is the destination node. It pulls audio through the graph.
type Sink interface {
	Open(s beep.Streamer, rate beep.SampleRate) error
	SetPaused(paused bool)
	Close() error
}

var (
	globalOtoCtx  *oto.Context
	globalOtoRate int
	otoOnce       sync.Once
	otoInitErr    error
)

// initOto creates the process-wide oto context. oto allows a single context,
// so the first rate wins.
func initOto(rate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			globalOtoRate = rate
		}
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if globalOtoRate != rate {
		return nil, errors.Errorf("audio device already opened at %d Hz", globalOtoRate)
	}
	return globalOtoCtx, nil
}

// pcmReader renders a streamer as interleaved signed 16-bit stereo.
type pcmReader struct {
	s   beep.Streamer
	buf [][2]float64
}

func (r *pcmReader) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	n, ok := r.s.Stream(buf)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(p[i*4:], uint16(toInt16(buf[i][0])))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(toInt16(buf[i][1])))
	}
	if !ok && n == 0 {
		return 0, io.EOF
	}
	return n * 4, nil
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(v * 32767)
}

// OtoSink plays the graph on the default audio device.
type OtoSink struct {
	mu     sync.Mutex
	player *oto.Player
	volume float64
}

// NewOtoSink returns a sink playing at volume (0-1).
func NewOtoSink(volume float64) *OtoSink {
	return &OtoSink{volume: math.Max(0, math.Min(1, volume))}
}

func (s *OtoSink) Open(st beep.Streamer, rate beep.SampleRate) error {
	ctx, err := initOto(int(rate))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Pause()
	}
	s.player = ctx.NewPlayer(&pcmReader{s: st})
	s.player.SetVolume(s.volume)
	s.player.Play()
	return nil
}

func (s *OtoSink) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return
	}
	if paused {
		s.player.Pause()
	} else {
		s.player.Play()
	}
}

func (s *OtoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return nil
	}
	s.player.Pause()
	err := s.player.Err()
	s.player = nil
	return err
}

// ClockSink discards audio but pulls it in real time, so the analyser sees
// the signal without an audio device.
type ClockSink struct {
	interval time.Duration
	paused   atomic.Bool
	stop     chan struct{}
	done     chan struct{}
}

// NewClockSink pulls a block of audio every interval.
func NewClockSink(interval time.Duration) *ClockSink {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &ClockSink{interval: interval}
}

func (s *ClockSink) Open(st beep.Streamer, rate beep.SampleRate) error {
	s.Close()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(st, rate.N(s.interval), s.stop, s.done)
	return nil
}

func (s *ClockSink) run(st beep.Streamer, frames int, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	buf := make([][2]float64, max(frames, 1))
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.paused.Load() {
				continue
			}
			if _, ok := st.Stream(buf); !ok {
				return
			}
		}
	}
}

func (s *ClockSink) SetPaused(paused bool) { s.paused.Store(paused) }

func (s *ClockSink) Close() error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
	return nil
}
