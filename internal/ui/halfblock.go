package ui

import (
	"fmt"
	"image"
	"math"
	"os"
	"strings"
	"sync"
)

type colorProfile uint8

const (
	colorNone colorProfile = iota
	colorANSI16
	colorANSI256
	colorTrueColor
)

type colorRGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	profileOnce sync.Once
	profile     colorProfile
	seqCache    sync.Map
)

func currentColorProfile() colorProfile {
	profileOnce.Do(func() {
		if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
			profile = colorNone
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		colorTerm := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
			profile = colorTrueColor
		case strings.Contains(term, "256color"):
			profile = colorANSI256
		case term == "", term == "dumb":
			profile = colorNone
		default:
			profile = colorANSI16
		}
	})
	return profile
}

var ansi16 = []colorRGB{
	{R: 0, G: 0, B: 0},
	{R: 205, G: 49, B: 49},
	{R: 13, G: 188, B: 121},
	{R: 229, G: 229, B: 16},
	{R: 36, G: 114, B: 200},
	{R: 188, G: 63, B: 188},
	{R: 17, G: 168, B: 205},
	{R: 229, G: 229, B: 229},
}

// colorSequence returns the SGR sequence selecting c as the foreground, or
// as the background when bg is set.
func colorSequence(p colorProfile, c colorRGB, bg bool) string {
	key := uint32(p)<<25 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	if bg {
		key |= 1 << 24
	}
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	layer := 38
	base := 30
	if bg {
		layer = 48
		base = 40
	}

	var seq string
	switch p {
	case colorTrueColor:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", layer, c.R, c.G, c.B)
	case colorANSI256:
		r := int(c.R) * 5 / 255
		g := int(c.G) * 5 / 255
		b := int(c.B) * 5 / 255
		seq = fmt.Sprintf("\x1b[%d;5;%dm", layer, 16+36*r+6*g+b)
	case colorANSI16:
		best := 0
		bestDist := math.MaxFloat64
		for i, q := range ansi16 {
			dr := float64(c.R) - float64(q.R)
			dg := float64(c.G) - float64(q.G)
			db := float64(c.B) - float64(q.B)
			if d := dr*dr + dg*dg + db*db; d < bestDist {
				bestDist = d
				best = i
			}
		}
		seq = fmt.Sprintf("\x1b[%dm", base+best)
	}

	seqCache.Store(key, seq)
	return seq
}

// ansiState suppresses repeated colour sequences within a line.
type ansiState struct {
	profile colorProfile
	fg, bg  uint32
}

const noColor = ^uint32(0)

func newANSIState(p colorProfile) ansiState {
	return ansiState{profile: p, fg: noColor, bg: noColor}
}

func (s *ansiState) set(sb *strings.Builder, fg, bg colorRGB) {
	if k := rgbKey(fg); k != s.fg {
		sb.WriteString(colorSequence(s.profile, fg, false))
		s.fg = k
	}
	if k := rgbKey(bg); k != s.bg {
		sb.WriteString(colorSequence(s.profile, bg, true))
		s.bg = k
	}
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.fg == noColor && s.bg == noColor {
		return
	}
	sb.WriteString("\x1b[0m")
	s.fg, s.bg = noColor, noColor
}

func rgbKey(c colorRGB) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func luma(c colorRGB) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// renderHalfBlocks turns img into terminal text, two pixel rows per line:
// the upper half block takes the top pixel as foreground and the bottom
// pixel as background.
func renderHalfBlocks(img *image.RGBA, p colorProfile) string {
	b := img.Bounds()
	var sb strings.Builder
	sb.Grow(b.Dx() * b.Dy() * 4)

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		st := newANSIState(p)
		for x := b.Min.X; x < b.Max.X; x++ {
			top := pixel(img, x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = pixel(img, x, y+1)
			}
			if p == colorNone {
				sb.WriteRune(monoBlock(top, bottom))
				continue
			}
			st.set(&sb, top, bottom)
			sb.WriteRune('▀')
		}
		st.reset(&sb)
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func pixel(img *image.RGBA, x, y int) colorRGB {
	c := img.RGBAAt(x, y)
	return colorRGB{R: c.R, G: c.G, B: c.B}
}

func monoBlock(top, bottom colorRGB) rune {
	const threshold = 96
	t, b := luma(top) > threshold, luma(bottom) > threshold
	switch {
	case t && b:
		return '█'
	case t:
		return '▀'
	case b:
		return '▄'
	}
	return ' '
}
