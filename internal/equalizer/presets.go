package equalizer

var presets = map[string]Gains{
	"flat":      {},
	"rock":      {5, 3, -2, -3, -1, 2, 4, 5, 6, 6},
	"pop":       {-2, -1, 0, 2, 4, 4, 2, 0, -1, -2},
	"classical": {5, 4, 3, 2, -2, -2, 0, 2, 3, 4},
	"dance":     {6, 5, 2, 0, -2, -3, 0, 2, 4, 5},
}

var presetOrder = []string{"flat", "rock", "pop", "classical", "dance"}

// Presets lists the preset names in display order.
func Presets() []string {
	out := make([]string, len(presetOrder))
	copy(out, presetOrder)
	return out
}

// Preset returns the gains of a named preset.
func Preset(name string) (Gains, bool) {
	g, ok := presets[name]
	return g, ok
}

// NextPreset returns the preset after name in display order, wrapping around.
// Unknown names start from the first preset.
func NextPreset(name string) string {
	for i, n := range presetOrder {
		if n == name {
			return presetOrder[(i+1)%len(presetOrder)]
		}
	}
	return presetOrder[0]
}
