package visualizer

import (
	"context"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/olivier-w/rhalza/internal/analyser"
	"github.com/olivier-w/rhalza/internal/audiograph"
	"github.com/olivier-w/rhalza/internal/render"
	"github.com/olivier-w/rhalza/internal/settings"
	"github.com/pkg/errors"
)

type recorder struct {
	w, h    float64
	clears  int
	rects   int
	strokes int
}

func (r *recorder) Size() (float64, float64)                            { return r.w, r.h }
func (r *recorder) Clear(color.NRGBA)                                   { r.clears++ }
func (r *recorder) FillRect(x, y, w, h float64, c color.NRGBA)          { r.rects++ }
func (r *recorder) StrokeLine(x0, y0, x1, y1, w float64, c color.NRGBA) {}
func (r *recorder) FillCircle(cx, cy, rad float64, c color.NRGBA)       {}
func (r *recorder) FillPath(pts []render.Point, c color.NRGBA)          {}
func (r *recorder) StrokePath(pts []render.Point, closed bool, w float64, c color.NRGBA) {
	r.strokes++
}

type nopSink struct{ current beep.Streamer }

func (s *nopSink) Open(st beep.Streamer, _ beep.SampleRate) error { s.current = st; return nil }
func (s *nopSink) SetPaused(bool)                                  {}
func (s *nopSink) Close() error                                    { return nil }

type toneSource struct{ n int }

func (s *toneSource) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * 100 * float64(s.n) / float64(audiograph.SampleRate))
		samples[i] = [2]float64{v, v}
		s.n++
	}
	return len(samples), true
}

func (s *toneSource) Err() error { return nil }

func newTestVisualizer(t *testing.T) (*Visualizer, *nopSink) {
	t.Helper()
	sink := &nopSink{}
	v, err := New(audiograph.NewManager(sink), settings.Defaults())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v, sink
}

func TestRenderWithoutGraphIsNoop(t *testing.T) {
	v, _ := newTestVisualizer(t)
	rec := &recorder{w: 100, h: 100}
	if v.Render(rec) {
		t.Fatal("Render reported a frame without an analyser")
	}
	if rec.clears != 0 {
		t.Fatal("Render touched the surface without an analyser")
	}
}

func TestConnectBindsAnalyserAtCurrentResolution(t *testing.T) {
	v, sink := newTestVisualizer(t)
	bars := 100
	style := settings.BarBars
	v.ApplySettings(settings.Patch{VisualStyle: &style, BarCount: &bars})

	if err := v.Connect(&toneSource{}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := v.graph.Analyser().FFTSize(); got != 256 {
		t.Fatalf("analyser fft size = %d, want 256", got)
	}

	sink.current.Stream(make([][2]float64, 2048))
	rec := &recorder{w: 200, h: 100}
	if !v.Render(rec) {
		t.Fatal("Render skipped a connected frame")
	}
	if rec.clears != 1 || rec.rects < 100 {
		t.Fatalf("clears=%d rects=%d, want 1 clear and 100 bars", rec.clears, rec.rects)
	}
}

func TestApplySettingsResizesOnlyWhenNeeded(t *testing.T) {
	v, _ := newTestVisualizer(t)
	v.Connect(&toneSource{})
	if v.FFTSize() != analyser.MonstercatFFTSize {
		t.Fatalf("fft size = %d, want %d", v.FFTSize(), analyser.MonstercatFFTSize)
	}

	style := settings.RingBars
	if err := v.ApplySettings(settings.Patch{VisualStyle: &style}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if v.FFTSize() != 512 {
		t.Fatalf("fft size = %d, want 512 for 256 bars", v.FFTSize())
	}

	bars := 20000
	err := v.ApplySettings(settings.Patch{BarCount: &bars})
	if !errors.Is(err, settings.ErrInvalidSettings) {
		t.Fatalf("ApplySettings error = %v, want ErrInvalidSettings", err)
	}
	if errors.Is(err, analyser.ErrBufferResize) {
		t.Fatalf("clamped bar count still failed to resize: %v", err)
	}
	if got := v.Settings().BarCount; got != settings.MaxBarCount {
		t.Fatalf("bar count = %d, want %d", got, settings.MaxBarCount)
	}
	if want := analyser.NextPowerOfTwo(2 * settings.MaxBarCount); v.FFTSize() != want {
		t.Fatalf("fft size = %d, want %d", v.FFTSize(), want)
	}
}

func TestApplySettingsReportsClamping(t *testing.T) {
	v, _ := newTestVisualizer(t)
	size := -1.0
	if err := v.ApplySettings(settings.Patch{Size: &size}); !errors.Is(err, settings.ErrInvalidSettings) {
		t.Fatalf("ApplySettings error = %v, want ErrInvalidSettings", err)
	}
}

func TestNewReportsClampedInitialSettings(t *testing.T) {
	initial := settings.Defaults()
	initial.VisualStyle = settings.BarBars
	initial.BarCount = 20000

	v, err := New(audiograph.NewManager(&nopSink{}), initial)
	if !errors.Is(err, settings.ErrInvalidSettings) {
		t.Fatalf("New error = %v, want ErrInvalidSettings", err)
	}
	if v.Settings().BarCount != settings.MaxBarCount {
		t.Fatalf("bar count = %d, want %d", v.Settings().BarCount, settings.MaxBarCount)
	}
	if v.FFTSize() != analyser.MaxFFTSize {
		t.Fatalf("fft size = %d, want %d", v.FFTSize(), analyser.MaxFFTSize)
	}
}

func TestCombineKeepsResizeCause(t *testing.T) {
	warn := errors.Wrap(settings.ErrInvalidSettings, "clamped barCount")
	resize := errors.Wrap(analyser.ErrBufferResize, "too many bars")

	err := combine(warn, resize)
	if !errors.Is(err, analyser.ErrBufferResize) {
		t.Fatalf("combine = %v, want ErrBufferResize", err)
	}
	if !strings.Contains(err.Error(), "clamped barCount") {
		t.Fatalf("combine = %q, lost the clamping warning", err)
	}
	if combine(warn, nil) != warn || combine(nil, resize) != resize || combine(nil, nil) != nil {
		t.Fatal("combine altered a lone error")
	}
}

func TestRenderEmptySurfaceIsNotAFrame(t *testing.T) {
	v, sink := newTestVisualizer(t)
	v.Connect(&toneSource{})
	sink.current.Stream(make([][2]float64, 4096))

	sched := NewScheduler(v)
	rec := &recorder{}
	if sched.Step(rec) {
		t.Fatal("Step reported a frame on an empty surface")
	}
	if sched.Frames() != 0 {
		t.Fatalf("Frames() = %d, want 0", sched.Frames())
	}
	if rec.clears != 0 || rec.rects != 0 {
		t.Fatalf("clears=%d rects=%d on an empty surface", rec.clears, rec.rects)
	}

	rec.w, rec.h = 64, 64
	if !sched.Step(rec) || sched.Frames() != 1 {
		t.Fatalf("Frames() = %d after a sized step, want 1", sched.Frames())
	}
}

func TestEqualizerForwarding(t *testing.T) {
	v, _ := newTestVisualizer(t)
	if got := v.SetEqualizerGain(1, -99); got != -12 {
		t.Fatalf("SetEqualizerGain = %v, want -12", got)
	}
	if !v.ApplyPreset("flat") {
		t.Fatal("flat preset rejected")
	}
	for i, g := range v.EqualizerGains() {
		if g != 0 {
			t.Fatalf("band %d = %v after flat", i, g)
		}
	}
}

func TestPlaceholderEasesTowardRingDiameter(t *testing.T) {
	p := newPlaceholder(60)
	s := settings.Defaults()
	m := render.Marker{Ring: true, Diameter: 80}

	var d float64
	for i := 0; i < 240; i++ {
		d = p.step(m, s)
	}
	if math.Abs(d-80) > 0.5 {
		t.Fatalf("diameter settled at %v, want 80", d)
	}

	s.CenterFill = settings.FillHollow
	for i := 0; i < 240; i++ {
		d = p.step(m, s)
	}
	if d > 0.5 {
		t.Fatalf("diameter = %v with hollow fill, want 0", d)
	}
}

func TestSchedulerGate(t *testing.T) {
	v, sink := newTestVisualizer(t)
	v.Connect(&toneSource{})
	sink.current.Stream(make([][2]float64, 4096))

	sched := NewScheduler(v)
	rec := &recorder{w: 64, h: 64}
	if !sched.Step(rec) {
		t.Fatal("Step did not draw while playing")
	}

	sched.SetPlaying(false)
	if sched.Step(rec) {
		t.Fatal("Step drew while paused")
	}
	if rec.clears != 1 {
		t.Fatalf("surface cleared %d times, want 1", rec.clears)
	}
	if sched.Toggle() != true || !sched.Playing() {
		t.Fatal("Toggle did not resume")
	}
	if sched.Frames() != 1 {
		t.Fatalf("Frames() = %d, want 1", sched.Frames())
	}
}

type countingRenderer struct{ n int }

func (c *countingRenderer) Render(render.Surface) bool { c.n++; return true }

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	r := &countingRenderer{}
	sched := NewScheduler(r)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sched.Run(ctx, &recorder{w: 1, h: 1}, 200, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if r.n == 0 {
		t.Fatal("Run never rendered")
	}
}
