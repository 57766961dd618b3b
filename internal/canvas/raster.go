// Package canvas provides a software Surface backed by an RGBA image.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/olivier-w/rhalza/internal/render"
	"golang.org/x/image/vector"
)

const circleSegments = 64

// Raster rasterizes draw commands into an *image.RGBA.
type Raster struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// NewRaster creates a w×h canvas.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

// Resize reallocates the canvas. Contents are discarded.
func (r *Raster) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if r.img != nil && r.img.Rect.Dx() == w && r.img.Rect.Dy() == h {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	r.z = vector.NewRasterizer(w, h)
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (float64, float64) {
	b := r.img.Rect
	return float64(b.Dx()), float64(b.Dy())
}

func (r *Raster) Clear(c color.NRGBA) {
	draw.Draw(r.img, r.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) FillRect(x, y, w, h float64, c color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	r.fill(c, []render.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}})
}

func (r *Raster) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	r.begin()
	r.segment(render.Point{X: x0, Y: y0}, render.Point{X: x1, Y: y1}, width)
	r.flush(c)
}

func (r *Raster) FillCircle(cx, cy, rad float64, c color.NRGBA) {
	if rad <= 0 {
		return
	}
	pts := make([]render.Point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = render.Point{X: cx + math.Cos(a)*rad, Y: cy + math.Sin(a)*rad}
	}
	r.fill(c, pts)
}

func (r *Raster) FillPath(pts []render.Point, c color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	r.fill(c, pts)
}

func (r *Raster) StrokePath(pts []render.Point, closed bool, width float64, c color.NRGBA) {
	if len(pts) < 2 {
		return
	}
	r.begin()
	for i := 1; i < len(pts); i++ {
		r.segment(pts[i-1], pts[i], width)
	}
	if closed {
		r.segment(pts[len(pts)-1], pts[0], width)
	}
	r.flush(c)
}

func (r *Raster) begin() {
	b := r.img.Rect
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}

func (r *Raster) flush(c color.NRGBA) {
	r.z.Draw(r.img, r.img.Rect, image.NewUniform(c), image.Point{})
}

func (r *Raster) fill(c color.NRGBA, pts []render.Point) {
	r.begin()
	r.polygon(pts)
	r.flush(c)
}

func (r *Raster) polygon(pts []render.Point) {
	r.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.z.LineTo(float32(p.X), float32(p.Y))
	}
	r.z.ClosePath()
}

// segment adds a line of the given width as a quad. Quads are wound the same
// way so overlapping joints do not cancel out.
func (r *Raster) segment(a, b render.Point, width float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	r.polygon([]render.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	})
}
