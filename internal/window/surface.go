package window

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/olivier-w/rhalza/internal/render"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// surface draws render commands onto the screen image handed to Draw.
type surface struct {
	dst *ebiten.Image

	path     vector.Path
	vertices []ebiten.Vertex
	indices  []uint16
}

func (s *surface) Size() (float64, float64) {
	b := s.dst.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (s *surface) Clear(c color.NRGBA) {
	s.dst.Fill(c)
}

func (s *surface) FillRect(x, y, w, h float64, c color.NRGBA) {
	vector.DrawFilledRect(s.dst, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (s *surface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	vector.StrokeLine(s.dst, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}

func (s *surface) FillCircle(cx, cy, r float64, c color.NRGBA) {
	vector.DrawFilledCircle(s.dst, float32(cx), float32(cy), float32(r), c, true)
}

func (s *surface) FillPath(pts []render.Point, c color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	s.trace(pts, true)
	s.vertices, s.indices = s.path.AppendVerticesAndIndicesForFilling(s.vertices[:0], s.indices[:0])
	s.drawTriangles(c, ebiten.NonZero)
}

func (s *surface) StrokePath(pts []render.Point, closed bool, width float64, c color.NRGBA) {
	if len(pts) < 2 {
		return
	}
	s.trace(pts, closed)
	opts := &vector.StrokeOptions{Width: float32(width), LineJoin: vector.LineJoinRound}
	s.vertices, s.indices = s.path.AppendVerticesAndIndicesForStroke(s.vertices[:0], s.indices[:0], opts)
	s.drawTriangles(c, ebiten.FillAll)
}

func (s *surface) trace(pts []render.Point, closed bool) {
	s.path = vector.Path{}
	s.path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		s.path.LineTo(float32(p.X), float32(p.Y))
	}
	if closed {
		s.path.Close()
	}
}

func (s *surface) drawTriangles(c color.NRGBA, rule ebiten.FillRule) {
	r, g, b, a := float32(c.R)/0xff, float32(c.G)/0xff, float32(c.B)/0xff, float32(c.A)/0xff
	for i := range s.vertices {
		v := &s.vertices[i]
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = r, g, b, a
	}
	s.dst.DrawTriangles(s.vertices, s.indices, whiteSubImage, &ebiten.DrawTrianglesOptions{
		FillRule:  rule,
		AntiAlias: true,
	})
}
