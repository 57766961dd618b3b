package render

import "image/color"

// Point is a vertex in canvas pixels.
type Point struct{ X, Y float64 }

// Surface is the 2D canvas frames are drawn onto.
type Surface interface {
	Size() (w, h float64)
	Clear(c color.NRGBA)
	FillRect(x, y, w, h float64, c color.NRGBA)
	StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA)
	FillCircle(cx, cy, r float64, c color.NRGBA)
	FillPath(pts []Point, c color.NRGBA)
	StrokePath(pts []Point, closed bool, width float64, c color.NRGBA)
}

// Op identifies a drawing primitive.
type Op uint8

const (
	OpClear Op = iota
	OpFillRect
	OpStrokeLine
	OpFillCircle
	OpFillPath
	OpStrokePath
)

// Command is one drawing primitive. Only the fields relevant to Op are set:
// rects use X, Y, W, H; lines use X, Y to X1, Y1; circles use X, Y and R;
// paths use Points and Closed.
type Command struct {
	Op     Op
	X, Y   float64
	X1, Y1 float64
	W, H   float64
	R      float64
	Points []Point
	Closed bool
	Width  float64
	Color  color.NRGBA
}

// Replay draws cmds onto s in order.
func Replay(s Surface, cmds []Command) {
	for i := range cmds {
		c := &cmds[i]
		switch c.Op {
		case OpClear:
			s.Clear(c.Color)
		case OpFillRect:
			s.FillRect(c.X, c.Y, c.W, c.H, c.Color)
		case OpStrokeLine:
			s.StrokeLine(c.X, c.Y, c.X1, c.Y1, c.Width, c.Color)
		case OpFillCircle:
			s.FillCircle(c.X, c.Y, c.R, c.Color)
		case OpFillPath:
			s.FillPath(c.Points, c.Color)
		case OpStrokePath:
			s.StrokePath(c.Points, c.Closed, c.Width, c.Color)
		}
	}
}
