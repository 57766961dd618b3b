package render

import (
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/olivier-w/rhalza/internal/particles"
	"github.com/olivier-w/rhalza/internal/settings"
)

type recorder struct {
	w, h float64
	cmds []Command
}

func (r *recorder) Size() (float64, float64) { return r.w, r.h }
func (r *recorder) Clear(c color.NRGBA) {
	r.cmds = append(r.cmds, Command{Op: OpClear, Color: c})
}
func (r *recorder) FillRect(x, y, w, h float64, c color.NRGBA) {
	r.cmds = append(r.cmds, Command{Op: OpFillRect, X: x, Y: y, W: w, H: h, Color: c})
}
func (r *recorder) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	r.cmds = append(r.cmds, Command{Op: OpStrokeLine, X: x0, Y: y0, X1: x1, Y1: y1, Width: width, Color: c})
}
func (r *recorder) FillCircle(cx, cy, rad float64, c color.NRGBA) {
	r.cmds = append(r.cmds, Command{Op: OpFillCircle, X: cx, Y: cy, R: rad, Color: c})
}
func (r *recorder) FillPath(pts []Point, c color.NRGBA) {
	r.cmds = append(r.cmds, Command{Op: OpFillPath, Points: pts, Color: c})
}
func (r *recorder) StrokePath(pts []Point, closed bool, width float64, c color.NRGBA) {
	r.cmds = append(r.cmds, Command{Op: OpStrokePath, Points: pts, Closed: closed, Width: width, Color: c})
}

func (r *recorder) ops(op Op) []Command {
	var out []Command
	for _, c := range r.cmds {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func styled(style settings.Style, bars int) settings.Settings {
	s := settings.Defaults()
	s.VisualStyle = style
	s.BarCount = bars
	s.Sensitivity = 1
	return s
}

func TestEveryStyleHasGeometry(t *testing.T) {
	for style := settings.Style(0); style < settings.StyleCount; style++ {
		if geometries[style] == nil {
			t.Fatalf("style %v has no geometry function", style)
		}
		g := Compute(Input{Data: make([]byte, 128), Settings: styled(style, 32), W: 200, H: 100})
		if len(g.Commands) < 2 {
			t.Fatalf("style %v produced %d commands", style, len(g.Commands))
		}
		if g.Commands[0].Op != OpClear {
			t.Fatalf("style %v does not clear first", style)
		}
	}
}

func TestBarBarsScenario(t *testing.T) {
	data := []byte{255, 0, 255, 0, 255, 0, 255, 0}
	rec := &recorder{w: 800, h: 400}
	e := NewEngine(nil)
	e.Render(rec, data, styled(settings.BarBars, 8))

	rects := rec.ops(OpFillRect)
	if len(rects) != 8 {
		t.Fatalf("drew %d bars, want 8", len(rects))
	}
	for i, r := range rects {
		if r.W != 100 {
			t.Fatalf("bar %d width = %v, want 100", i, r.W)
		}
		want := 360.0
		if i%2 == 1 {
			want = minBarHeight
		}
		if r.H != want {
			t.Fatalf("bar %d height = %v, want %v", i, r.H, want)
		}
		if r.Y+r.H != 400 {
			t.Fatalf("bar %d not anchored at the bottom: y=%v h=%v", i, r.Y, r.H)
		}
		if r.X != float64(i)*100 {
			t.Fatalf("bar %d x = %v, want %v", i, r.X, float64(i)*100)
		}
	}
}

func TestBarHeightClampedToCanvas(t *testing.T) {
	s := styled(settings.BarBars, 4)
	s.Size = 3
	g := Compute(Input{Data: []byte{255, 255, 255, 255}, Settings: s, W: 400, H: 100})
	for _, c := range g.Commands[1:] {
		if c.H > 100 {
			t.Fatalf("bar height %v exceeds canvas", c.H)
		}
	}
}

func TestHeightsMonotonicInMagnitude(t *testing.T) {
	for _, sens := range []float64{0.5, 1, 2.5, 4} {
		s := styled(settings.BarBars, 1)
		s.Sensitivity = sens
		prev := -1.0
		for m := 0; m <= 255; m++ {
			g := Compute(Input{Data: []byte{byte(m)}, Settings: s, W: 100, H: 300})
			h := g.Commands[1].H
			if h < prev {
				t.Fatalf("sensitivity %v: height %v at m=%d below %v at m=%d", sens, h, m, prev, m-1)
			}
			prev = h
		}
	}
}

func TestMonstercatSpawnScenario(t *testing.T) {
	data := make([]byte, 1024)
	idx := 3 * len(data) / monstercatBars
	data[idx] = 210

	ps := particles.New(rand.New(rand.NewSource(9)))
	e := NewEngine(ps)
	rec := &recorder{w: 640, h: 480}

	s := settings.Defaults()
	g := Compute(Input{Data: data, Settings: s, W: 640, H: 480})
	if len(g.Spawns) != 1 {
		t.Fatalf("spawns = %d, want 1", len(g.Spawns))
	}
	sp := g.Spawns[0]
	if sp.Count != 5 || sp.X != 3*640.0/monstercatBars || sp.Y != 240 {
		t.Fatalf("spawn = %+v, want 5 at (%v, 240)", sp, 3*640.0/monstercatBars)
	}

	before := ps.Len()
	e.Render(rec, data, s)
	if ps.Len() != before+5 {
		t.Fatalf("particles = %d, want %d", ps.Len(), before+5)
	}
	for _, p := range ps.Particles() {
		if math.Abs(p.X-sp.X) > particles.MaxSpeed || math.Abs(p.Y-240) > particles.MaxSpeed {
			t.Fatalf("particle at (%v, %v) did not start from the bar", p.X, p.Y)
		}
	}
}

func TestMonstercatIgnoresQuietAndHighBars(t *testing.T) {
	data := make([]byte, 1024)
	data[3*len(data)/monstercatBars] = 200
	data[20*len(data)/monstercatBars] = 255

	g := Compute(Input{Data: data, Settings: settings.Defaults(), W: 640, H: 480})
	if len(g.Spawns) != 0 {
		t.Fatalf("spawns = %+v, want none", g.Spawns)
	}

	rects := 0
	for _, c := range g.Commands {
		if c.Op == OpFillRect {
			rects++
			if c.H < monstercatMinHeight {
				t.Fatalf("monstercat bar height %v below floor", c.H)
			}
			if math.Abs((c.Y+c.H/2)-240) > 1e-9 {
				t.Fatalf("monstercat bar not centred: y=%v h=%v", c.Y, c.H)
			}
		}
	}
	if rects != monstercatBars {
		t.Fatalf("monstercat drew %d bars, want %d", rects, monstercatBars)
	}
}

func TestRingFillAndMarker(t *testing.T) {
	s := styled(settings.RingBars, 16)
	s.CenterFill = settings.FillCustom

	g := Compute(Input{Data: make([]byte, 16), Settings: s, W: 400, H: 200})
	base := 200 * baseRadiusFactor
	if !g.Marker.Ring || g.Marker.Diameter != 2*base {
		t.Fatalf("marker = %+v, want ring with diameter %v", g.Marker, 2*base)
	}
	disc := g.Commands[1]
	if disc.Op != OpFillCircle || disc.R != base || disc.Color != s.CustomColor {
		t.Fatalf("centre disc = %+v", disc)
	}

	lines := 0
	for _, c := range g.Commands {
		if c.Op == OpStrokeLine {
			lines++
			if c.Width != ringLineWidth {
				t.Fatalf("ring line width = %v", c.Width)
			}
		}
	}
	if lines != 16 {
		t.Fatalf("ring lines = %d, want 16", lines)
	}

	s.CenterFill = settings.FillHollow
	g = Compute(Input{Data: make([]byte, 16), Settings: s, W: 400, H: 200})
	for _, c := range g.Commands {
		if c.Op == OpFillCircle {
			t.Fatal("hollow fill drew a disc")
		}
	}

	s.VisualStyle = settings.BarBars
	g = Compute(Input{Data: make([]byte, 16), Settings: s, W: 400, H: 200})
	if g.Marker.Ring || g.Marker.Diameter != 0 {
		t.Fatalf("bar style marker = %+v, want zero", g.Marker)
	}
}

func TestRingSmoothIsClosedPath(t *testing.T) {
	g := Compute(Input{Data: make([]byte, 64), Settings: styled(settings.RingSmooth, 64), W: 300, H: 300})
	last := g.Commands[len(g.Commands)-1]
	if last.Op != OpStrokePath || !last.Closed || len(last.Points) != 64 {
		t.Fatalf("ring smooth command = op %v closed %v points %d", last.Op, last.Closed, len(last.Points))
	}
}

func TestMirrorSmoothIsSymmetric(t *testing.T) {
	data := []byte{10, 200, 90, 255}
	g := Compute(Input{Data: data, Settings: styled(settings.LinearMirrorSmooth, 4), W: 400, H: 200})
	path := g.Commands[len(g.Commands)-1].Points
	if len(path) != 2*4+2 {
		t.Fatalf("lobe has %d points, want 10", len(path))
	}
	for i := 0; i < 4; i++ {
		top := path[1+i]
		bottom := path[len(path)-1-i]
		if top.X != bottom.X || math.Abs((top.Y+bottom.Y)/2-100) > 1e-9 {
			t.Fatalf("points %v and %v are not mirrored about the centre line", top, bottom)
		}
	}
}

func TestMirrorBarsStraddleCentre(t *testing.T) {
	g := Compute(Input{Data: []byte{255, 128}, Settings: styled(settings.LinearMirrorBars, 2), W: 200, H: 100})
	for _, c := range g.Commands[1:] {
		if math.Abs(c.Y+c.H/2-50) > 1e-9 {
			t.Fatalf("bar y=%v h=%v does not straddle y=50", c.Y, c.H)
		}
	}
}

func TestRenderSkipsEmptySurface(t *testing.T) {
	e := NewEngine(nil)
	s := styled(settings.RingBars, 8)
	prev, drawn := e.Render(&recorder{w: 200, h: 200}, make([]byte, 8), s)
	if !drawn {
		t.Fatal("sized surface not drawn")
	}

	rec := &recorder{}
	m, drawn := e.Render(rec, make([]byte, 8), s)
	if drawn {
		t.Fatal("empty surface reported as drawn")
	}
	if m != prev {
		t.Fatalf("marker = %+v, want previous %+v", m, prev)
	}
	if len(rec.cmds) != 0 {
		t.Fatalf("drew %d commands on a zero-sized surface", len(rec.cmds))
	}
}

func TestParticlesDrawnOverGeometry(t *testing.T) {
	data := make([]byte, 1024)
	for b := 0; b < 4; b++ {
		data[b*len(data)/monstercatBars] = 230
	}
	s := settings.Defaults()
	ps := particles.New(rand.New(rand.NewSource(3)))
	e := NewEngine(ps)
	rec := &recorder{w: 640, h: 480}

	g := Compute(Input{Data: data, Settings: s, W: 640, H: 480})
	if len(g.Spawns) == 0 {
		t.Fatal("no bars loud enough to spawn particles")
	}
	if _, drawn := e.Render(rec, data, s); !drawn {
		t.Fatal("frame not drawn")
	}
	if ps.Len() == 0 {
		t.Fatal("no live particles after render")
	}

	if len(rec.cmds) != len(g.Commands)+ps.Len() {
		t.Fatalf("recorded %d commands, want %d geometry + %d particles", len(rec.cmds), len(g.Commands), ps.Len())
	}
	for i, c := range g.Commands {
		if rec.cmds[i].Op != c.Op {
			t.Fatalf("command %d = op %v, want geometry op %v", i, rec.cmds[i].Op, c.Op)
		}
	}
	for i, c := range rec.cmds[len(g.Commands):] {
		if c.Op != OpFillRect || c.W > particles.Size || c.H > particles.Size {
			t.Fatalf("command %d after geometry is %+v, want a particle rect", len(g.Commands)+i, c)
		}
	}
}
