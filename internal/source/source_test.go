package source

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
)

func writeWAV(t *testing.T, rate, channels int, samples []int16) string {
	t.Helper()
	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+data.Len()))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(data.Len()))
	b.Write(data.Bytes())

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestOpenWAVUpmixesMono(t *testing.T) {
	path := writeWAV(t, 44100, 1, []int16{16384, -16384, 0, 32767})
	tr, err := Open(path, 44100)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	if tr.Name != "tone" {
		t.Fatalf("Name = %q, want tone", tr.Name)
	}
	frames := drain(tr)
	if len(frames) != 4 {
		t.Fatalf("got %d frames, want 4", len(frames))
	}
	if frames[0] != [2]float64{0.5, 0.5} || frames[1] != [2]float64{-0.5, -0.5} {
		t.Fatalf("frames = %v", frames[:2])
	}
}

func TestOpenWAVResamplesToGraphRate(t *testing.T) {
	const n = 22050
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(10000 * math.Sin(2*math.Pi*440*float64(i)/22050))
	}
	path := writeWAV(t, 22050, 1, samples)
	tr, err := Open(path, 44100)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tr.Close()

	got := len(drain(tr))
	if got < 2*n-64 || got > 2*n+64 {
		t.Fatalf("resampled length = %d, want about %d", got, 2*n)
	}
}

func TestOpenRejectsUnsupported(t *testing.T) {
	if _, err := Open("song.xm", 44100); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if IsSupportedExt(".aac") {
		t.Fatal(".aac should not be supported")
	}
	if !IsSupportedExt(".FLAC") {
		t.Fatal(".FLAC should be supported regardless of case")
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.mp3"), 44100); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPCMSampleDepths(t *testing.T) {
	tests := []struct {
		name  string
		b     []byte
		depth int
		want  float64
	}{
		{"8-bit midpoint", []byte{128}, 8, 0},
		{"16-bit min", []byte{0x00, 0x80}, 16, -1},
		{"24-bit half", []byte{0x00, 0x00, 0x40}, 24, 0.5},
		{"32-bit negative half", []byte{0x00, 0x00, 0x00, 0xc0}, 32, -0.5},
	}
	for _, tt := range tests {
		if got := pcmSample(tt.b, tt.depth); got != tt.want {
			t.Fatalf("%s: pcmSample = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDemoIsAudibleAndEndless(t *testing.T) {
	s := Demo(44100, 120)
	buf := make([][2]float64, 44100)
	for round := 0; round < 3; round++ {
		n, ok := s.Stream(buf)
		if n != len(buf) || !ok {
			t.Fatalf("round %d: Stream = (%d, %v)", round, n, ok)
		}
	}
	var peak float64
	for _, f := range buf {
		peak = math.Max(peak, math.Abs(f[0]))
	}
	if peak < 0.1 {
		t.Fatalf("demo peak = %v, want audible", peak)
	}
}
