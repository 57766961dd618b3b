// Package audiograph owns the processing chain between an audio source and
// the output device: source → equalizer → analyser → destination.
package audiograph

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/olivier-w/rhalza/internal/analyser"
	"github.com/olivier-w/rhalza/internal/equalizer"
	"github.com/pkg/errors"
)

// SampleRate is the rate the whole graph runs at.
const SampleRate = beep.SampleRate(44100)

// ErrMediaUnavailable means the destination could not be opened. The chain
// is still built, but nothing pulls audio through it.
var ErrMediaUnavailable = errors.New("media unavailable")

// Source is anything that produces stereo frames at SampleRate.
type Source = beep.Streamer

// Manager builds the graph at most once per connection.
type Manager struct {
	mu    sync.Mutex
	sink  Sink
	rate  beep.SampleRate
	gains equalizer.Gains

	src beep.Streamer
	eq  *equalizer.Chain
	an  *analyser.Analyser
}

// NewManager returns a disconnected manager that plays into sink.
func NewManager(sink Sink) *Manager {
	return &Manager{sink: sink, rate: SampleRate}
}

// Connect wires src into a new chain. It is a no-op while a chain exists. If
// the destination cannot be opened the chain and analyser are kept and an
// error wrapping ErrMediaUnavailable is returned.
func (m *Manager) Connect(src Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.an != nil {
		return nil
	}
	if src == nil {
		return errors.New("connect: nil source")
	}

	m.src = src
	m.eq = equalizer.NewChain(src, m.rate, m.gains)
	m.an = analyser.New(m.eq)

	if m.sink == nil {
		return errors.Wrap(ErrMediaUnavailable, "no destination")
	}
	if err := m.sink.Open(m.an, m.rate); err != nil {
		return errors.Wrapf(ErrMediaUnavailable, "open destination: %v", err)
	}
	return nil
}

// Disconnect tears the chain down. A later Connect builds a fresh one.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.an == nil {
		return
	}
	if m.sink != nil {
		m.sink.Close()
	}
	m.gains = m.eq.Gains()
	m.src, m.eq, m.an = nil, nil, nil
}

// Connected reports whether a chain exists.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.an != nil
}

// Analyser returns the live analyser, or nil when disconnected.
func (m *Manager) Analyser() *analyser.Analyser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.an
}

// Equalizer returns the live filter chain, or nil when disconnected.
func (m *Manager) Equalizer() *equalizer.Chain {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eq
}

// ReadSnapshot fills dst with the analyser's byte frequency data and zeroes
// the unused tail. It reports false when disconnected.
func (m *Manager) ReadSnapshot(dst []byte) bool {
	an := m.Analyser()
	if an == nil {
		return false
	}
	n := an.ByteFrequencyData(dst)
	clear(dst[n:])
	return true
}

// Topology lists the nodes from source to destination. It is empty when
// disconnected.
func (m *Manager) Topology() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.an == nil {
		return nil
	}
	nodes := make([]string, 0, equalizer.BandCount+3)
	nodes = append(nodes, "source")
	for i := 0; i < equalizer.BandCount; i++ {
		nodes = append(nodes, "eq:"+equalizer.Label(i))
	}
	return append(nodes, "analyser", "destination")
}

// SetEqualizerGain sets one band and returns the clamped gain. The value is
// remembered across reconnects.
func (m *Manager) SetEqualizerGain(band int, db float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if band < 0 || band >= equalizer.BandCount {
		return 0
	}
	db = equalizer.ClampGain(db)
	m.gains[band] = db
	if m.eq != nil {
		m.eq.SetGain(band, db)
	}
	return db
}

// ApplyPreset switches every band to a named preset. Unknown names are
// ignored and report false.
func (m *Manager) ApplyPreset(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := equalizer.Preset(name)
	if !ok {
		return false
	}
	m.gains = p
	if m.eq != nil {
		m.eq.ApplyPreset(name)
	}
	return true
}

// EqualizerGains returns the current band gains.
func (m *Manager) EqualizerGains() equalizer.Gains {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eq != nil {
		return m.eq.Gains()
	}
	return m.gains
}

// SetPaused pauses or resumes the destination.
func (m *Manager) SetPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sink != nil {
		m.sink.SetPaused(paused)
	}
}
