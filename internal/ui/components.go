package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/olivier-w/rhalza/internal/equalizer"
)

// renderEqualizer draws one gain meter per band. Meters fill from -12 dB on
// the left to +12 dB on the right.
func renderEqualizer(bar progress.Model, gains equalizer.Gains, selected int) string {
	var sb strings.Builder
	for i, g := range gains {
		label := bandStyle
		if i == selected {
			label = selectedBandStyle
		}
		pct := (g - equalizer.MinGain) / (equalizer.MaxGain - equalizer.MinGain)
		fmt.Fprintf(&sb, "  %s %s %+5.1f dB", label.Render(equalizer.Label(i)), bar.ViewAs(pct), g)
		if i < len(gains)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
