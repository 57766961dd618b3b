package visualizer

import (
	"image/color"
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/rhalza/internal/render"
	"github.com/olivier-w/rhalza/internal/settings"
)

const placeholderSegments = 48

// placeholder outlines where the cover image sits on ring styles. Its
// diameter follows the target on a spring so style and size changes ease in.
type placeholder struct {
	spring   harmonica.Spring
	diameter float64
	velocity float64
	pts      []render.Point
}

func newPlaceholder(fps int) *placeholder {
	if fps <= 0 {
		fps = 60
	}
	return &placeholder{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6, 0.8),
		pts:    make([]render.Point, placeholderSegments),
	}
}

// step advances the spring toward marker and returns the diameter to draw.
func (p *placeholder) step(m render.Marker, s settings.Settings) float64 {
	target := 0.0
	if m.Ring && s.CenterFill == settings.FillImage {
		target = m.Diameter
	}
	p.diameter, p.velocity = p.spring.Update(p.diameter, p.velocity, target)
	if p.diameter < 0 {
		p.diameter = 0
	}
	return p.diameter
}

func (p *placeholder) draw(dst render.Surface, m render.Marker, s settings.Settings) {
	d := p.step(m, s)
	if d < 1 {
		return
	}
	w, h := dst.Size()
	cx, cy, r := w/2, h/2, d/2
	for i := range p.pts {
		a := 2 * math.Pi * float64(i) / placeholderSegments
		p.pts[i] = render.Point{X: cx + math.Cos(a)*r, Y: cy + math.Sin(a)*r}
	}
	dst.StrokePath(p.pts, true, 1.5, placeholderColor(s))
}

// placeholderColor sits halfway between background and spectrum colours.
func placeholderColor(s settings.Settings) color.NRGBA {
	bg, _ := colorful.MakeColor(s.BackgroundColor)
	fg, _ := colorful.MakeColor(s.SpectrumColor)
	r, g, b := bg.BlendLab(fg, 0.5).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
