package render

import (
	"math"

	"github.com/olivier-w/rhalza/internal/settings"
)

const (
	baseRadiusFactor = 0.18
	ringOffset       = 1.1
	ringExtent       = 0.2
	barExtent        = 0.9

	ringLineWidth   = 3
	smoothLineWidth = 2
	minBarHeight    = 2

	monstercatBars      = 64
	monstercatFill      = 0.7
	monstercatMinHeight = 1
	spawnBars           = 10
	spawnThreshold      = 200
	spawnCount          = 5
)

// Input is everything one frame of geometry depends on.
type Input struct {
	Data     []byte
	Settings settings.Settings
	W, H     float64
}

// Center returns the canvas centre.
func (in Input) Center() (float64, float64) { return in.W / 2, in.H / 2 }

// BaseRadius is the radius of the centre disc of ring styles.
func (in Input) BaseRadius() float64 {
	return math.Min(in.W, in.H) * baseRadiusFactor * in.Settings.Size
}

// Level is the gamma-shaped bar level for bin i, in [0, 1]. Bins past the
// end of the snapshot read as silence.
func (in Input) Level(i int) float64 {
	if i < 0 || i >= len(in.Data) {
		return 0
	}
	return math.Pow(float64(in.Data[i])/255, in.Settings.Sensitivity)
}

// Spawn asks the particle system for Count particles at (X, Y).
type Spawn struct {
	X, Y  float64
	Count int
}

// Marker describes the centre image placeholder for the host.
type Marker struct {
	Ring     bool
	Diameter float64
}

// Geometry is the output of one frame: commands to replay and particles to
// spawn.
type Geometry struct {
	Commands []Command
	Spawns   []Spawn
	Marker   Marker
}

func (g *Geometry) add(c Command) { g.Commands = append(g.Commands, c) }

type geometryFunc func(in Input, g *Geometry)

var geometries = [settings.StyleCount]geometryFunc{
	settings.RingBars:           ringBars,
	settings.RingSmooth:         ringSmooth,
	settings.BarBars:            barBars,
	settings.BarSmooth:          barSmooth,
	settings.Monstercat:         monstercat,
	settings.LinearMirrorBars:   mirrorBars,
	settings.LinearMirrorSmooth: mirrorSmooth,
}

// Compute builds the geometry for one frame.
func Compute(in Input) Geometry {
	var g Geometry
	s := in.Settings
	g.add(Command{Op: OpClear, Color: s.BackgroundColor})

	if s.VisualStyle.IsRing() {
		r := in.BaseRadius()
		g.Marker = Marker{Ring: true, Diameter: 2 * r}
		cx, cy := in.Center()
		switch s.CenterFill {
		case settings.FillSpectrum:
			g.add(Command{Op: OpFillCircle, X: cx, Y: cy, R: r, Color: s.SpectrumColor})
		case settings.FillCustom:
			g.add(Command{Op: OpFillCircle, X: cx, Y: cy, R: r, Color: s.CustomColor})
		}
	}

	if s.VisualStyle >= 0 && s.VisualStyle < settings.StyleCount {
		geometries[s.VisualStyle](in, &g)
	}
	return g
}

func ringPoint(cx, cy, theta, r float64) (float64, float64) {
	return cx + math.Cos(theta)*r, cy + math.Sin(theta)*r
}

func ringBars(in Input, g *Geometry) {
	cx, cy := in.Center()
	r := in.BaseRadius() * ringOffset
	n := in.Settings.BarCount
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		ext := in.Level(i) * in.H * ringExtent
		x0, y0 := ringPoint(cx, cy, theta, r)
		x1, y1 := ringPoint(cx, cy, theta, r+ext)
		g.add(Command{Op: OpStrokeLine, X: x0, Y: y0, X1: x1, Y1: y1, Width: ringLineWidth, Color: in.Settings.SpectrumColor})
	}
}

func ringSmooth(in Input, g *Geometry) {
	cx, cy := in.Center()
	r := in.BaseRadius() * ringOffset
	n := in.Settings.BarCount
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		x, y := ringPoint(cx, cy, theta, r+in.Level(i)*in.H*ringExtent)
		pts[i] = Point{x, y}
	}
	g.add(Command{Op: OpStrokePath, Points: pts, Closed: true, Width: smoothLineWidth, Color: in.Settings.SpectrumColor})
}

// barHeight is the linear bar length for bin i, clamped to [floor, H].
func (in Input) barHeight(i int, floor float64) float64 {
	h := in.Level(i) * in.H * barExtent * in.Settings.Size
	return math.Min(math.Max(h, floor), in.H)
}

func barBars(in Input, g *Geometry) {
	n := in.Settings.BarCount
	bw := in.W / float64(n)
	for i := 0; i < n; i++ {
		h := in.barHeight(i, minBarHeight)
		g.add(Command{Op: OpFillRect, X: float64(i) * bw, Y: in.H - h, W: bw, H: h, Color: in.Settings.SpectrumColor})
	}
}

func barSmooth(in Input, g *Geometry) {
	n := in.Settings.BarCount
	bw := in.W / float64(n)
	pts := make([]Point, 0, n+2)
	pts = append(pts, Point{0, in.H})
	for i := 0; i < n; i++ {
		pts = append(pts, Point{float64(i)*bw + bw/2, in.H - in.barHeight(i, 0)})
	}
	pts = append(pts, Point{in.W, in.H})
	g.add(Command{Op: OpFillPath, Points: pts, Closed: true, Color: in.Settings.SpectrumColor})
}

func mirrorBars(in Input, g *Geometry) {
	cx, cy := in.Center()
	n := in.Settings.BarCount
	bw := in.W / float64(n)
	x0 := cx - bw*float64(n)/2
	for i := 0; i < n; i++ {
		h := in.barHeight(i, minBarHeight)
		g.add(Command{Op: OpFillRect, X: x0 + float64(i)*bw, Y: cy - h/2, W: bw, H: h, Color: in.Settings.SpectrumColor})
	}
}

func mirrorSmooth(in Input, g *Geometry) {
	cx, cy := in.Center()
	n := in.Settings.BarCount
	bw := in.W / float64(n)
	x0 := cx - bw*float64(n)/2

	half := make([]float64, n)
	for i := 0; i < n; i++ {
		half[i] = in.barHeight(i, 0) / 2
	}

	pts := make([]Point, 0, 2*n+2)
	pts = append(pts, Point{x0, cy})
	for i := 0; i < n; i++ {
		pts = append(pts, Point{x0 + float64(i)*bw + bw/2, cy - half[i]})
	}
	pts = append(pts, Point{x0 + float64(n)*bw, cy})
	for i := n - 1; i >= 0; i-- {
		pts = append(pts, Point{x0 + float64(i)*bw + bw/2, cy + half[i]})
	}
	g.add(Command{Op: OpFillPath, Points: pts, Closed: true, Color: in.Settings.SpectrumColor})
}

func monstercat(in Input, g *Geometry) {
	_, cy := in.Center()
	slot := in.W / monstercatBars
	bw := slot * monstercatFill
	for i := 0; i < monstercatBars; i++ {
		idx := i * len(in.Data) / monstercatBars
		x := float64(i) * slot
		h := in.barHeight(idx, monstercatMinHeight)
		g.add(Command{Op: OpFillRect, X: x, Y: cy - h/2, W: bw, H: h, Color: in.Settings.SpectrumColor})

		if i < spawnBars && idx < len(in.Data) && in.Data[idx] > spawnThreshold {
			g.Spawns = append(g.Spawns, Spawn{X: x, Y: cy, Count: spawnCount})
		}
	}
}
