package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause     key.Binding
	Style     key.Binding
	Fill      key.Binding
	SensUp    key.Binding
	SensDown  key.Binding
	SizeUp    key.Binding
	SizeDown  key.Binding
	MoreBars  key.Binding
	FewerBars key.Binding
	Equalizer key.Binding
	Preset    key.Binding
	BandLeft  key.Binding
	BandRight key.Binding
	GainUp    key.Binding
	GainDown  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pause:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Style:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "style")),
		Fill:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fill")),
		SensUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "sensitivity")),
		SensDown:  key.NewBinding(key.WithKeys("-", "_")),
		SizeUp:    key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "size")),
		SizeDown:  key.NewBinding(key.WithKeys("[")),
		MoreBars:  key.NewBinding(key.WithKeys(">", "."), key.WithHelp("</>", "bars")),
		FewerBars: key.NewBinding(key.WithKeys("<", ",")),
		Equalizer: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "equalizer")),
		Preset:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preset")),
		BandLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "band")),
		BandRight: key.NewBinding(key.WithKeys("right", "l")),
		GainUp:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "gain")),
		GainDown:  key.NewBinding(key.WithKeys("down", "j")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Style, k.Fill, k.Equalizer, k.Preset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Style, k.Fill},
		{k.SensUp, k.SizeUp, k.MoreBars},
		{k.Equalizer, k.Preset, k.BandLeft, k.GainUp},
		{k.Help, k.Quit},
	}
}
