package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/rhalza/internal/canvas"
	"github.com/olivier-w/rhalza/internal/equalizer"
	"github.com/olivier-w/rhalza/internal/settings"
	"github.com/olivier-w/rhalza/internal/visualizer"
)

// Pauser pauses and resumes audio output alongside the frame gate.
type Pauser interface {
	SetPaused(paused bool)
}

const (
	statusTTL    = 3 * time.Second
	sensStep     = 0.1
	sizeStep     = 0.1
	gainStep     = 1.0
	chromeRows   = 3
	defaultWidth = 80
)

// Model is the Bubbletea model for the terminal host.
type Model struct {
	vis    *visualizer.Visualizer
	sched  *visualizer.Scheduler
	pauser Pauser
	raster *canvas.Raster
	frame  string
	title  string
	fps    int

	width    int
	height   int
	profile  colorProfile
	keys     keyMap
	help     help.Model
	eqBar    progress.Model
	showEQ   bool
	preset   string
	band     int
	quitting bool

	status     string // transient status message
	statusWarn bool
	statusTime time.Time
}

// New creates a Model drawing vis through sched at fps frames per second.
// pauser may be nil.
func New(vis *visualizer.Visualizer, sched *visualizer.Scheduler, pauser Pauser, title string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 24
	return Model{
		vis:     vis,
		sched:   sched,
		pauser:  pauser,
		raster:  canvas.NewRaster(0, 0),
		title:   title,
		fps:     fps,
		profile: currentColorProfile(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		eqBar:   bar,
		preset:  "flat",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(m.fps), tea.SetWindowTitle(windowTitle(m.title, false)))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case frameMsg:
		if m.quitting {
			return m, nil
		}
		if m.sched.Step(m.raster) {
			m.frame = renderHalfBlocks(m.raster.Image(), m.profile)
		}
		if m.status != "" && time.Since(m.statusTime) > statusTTL {
			m.status = ""
		}
		return m, frameCmd(m.fps)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.vis.Settings()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		playing := m.sched.Toggle()
		if m.pauser != nil {
			m.pauser.SetPaused(!playing)
		}
		return m, tea.SetWindowTitle(windowTitle(m.title, !playing))

	case key.Matches(msg, m.keys.Style):
		next := s.VisualStyle.Next()
		m.apply(settings.Patch{VisualStyle: &next}, "style "+next.String())

	case key.Matches(msg, m.keys.Fill):
		next := s.CenterFill.Next()
		m.apply(settings.Patch{CenterFill: &next}, "fill "+next.String())

	case key.Matches(msg, m.keys.SensUp), key.Matches(msg, m.keys.SensDown):
		v := s.Sensitivity + sensStep
		if key.Matches(msg, m.keys.SensDown) {
			v = s.Sensitivity - sensStep
		}
		m.apply(settings.Patch{Sensitivity: &v}, fmt.Sprintf("sensitivity %.2f", v))

	case key.Matches(msg, m.keys.SizeUp), key.Matches(msg, m.keys.SizeDown):
		v := s.Size + sizeStep
		if key.Matches(msg, m.keys.SizeDown) {
			v = s.Size - sizeStep
		}
		m.apply(settings.Patch{Size: &v}, fmt.Sprintf("size %.2f", v))

	case key.Matches(msg, m.keys.MoreBars):
		n := s.BarCount * 2
		m.apply(settings.Patch{BarCount: &n}, fmt.Sprintf("bars %d", n))

	case key.Matches(msg, m.keys.FewerBars):
		n := s.BarCount / 2
		m.apply(settings.Patch{BarCount: &n}, fmt.Sprintf("bars %d", n))

	case key.Matches(msg, m.keys.Equalizer):
		m.showEQ = !m.showEQ
		m.resize()

	case key.Matches(msg, m.keys.Preset):
		m.preset = equalizer.NextPreset(m.preset)
		if m.vis.ApplyPreset(m.preset) {
			m.setStatus("preset "+m.preset, false)
		}

	case key.Matches(msg, m.keys.BandLeft):
		if m.showEQ && m.band > 0 {
			m.band--
		}

	case key.Matches(msg, m.keys.BandRight):
		if m.showEQ && m.band < equalizer.BandCount-1 {
			m.band++
		}

	case key.Matches(msg, m.keys.GainUp), key.Matches(msg, m.keys.GainDown):
		if !m.showEQ {
			break
		}
		delta := gainStep
		if key.Matches(msg, m.keys.GainDown) {
			delta = -gainStep
		}
		g := m.vis.EqualizerGains()[m.band]
		got := m.vis.SetEqualizerGain(m.band, g+delta)
		m.setStatus(fmt.Sprintf("%s %+.1f dB", equalizer.Label(m.band), got), false)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	}
	return m, nil
}

// apply pushes a settings patch. Clamping and resize failures surface as a
// warning in the status line; the patch itself is kept.
func (m *Model) apply(p settings.Patch, label string) {
	if err := m.vis.ApplySettings(p); err != nil {
		log.Printf("settings: %v", err)
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(label, false)
}

func (m *Model) setStatus(s string, warn bool) {
	m.status = s
	m.statusWarn = warn
	m.statusTime = time.Now()
}

// resize fits the raster to the rows left after the header, help and
// equalizer panel. Each text row holds two pixel rows. The last frame stays
// on screen until the next drawn step.
func (m *Model) resize() {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	rows := m.height - m.chromeHeight()
	if rows < 0 {
		rows = 0
	}
	m.raster.Resize(w, rows*2)
}

func (m Model) chromeHeight() int {
	h := chromeRows
	if m.help.ShowAll {
		h += len(m.keys.FullHelp()) - 1
	}
	if m.showEQ {
		h += equalizer.BandCount
	}
	return h
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	s := m.vis.Settings()
	state := "▶"
	if !m.sched.Playing() {
		state = "⏸"
	}
	header := fmt.Sprintf(" %s %s", state, titleStyle.Render(m.title))
	info := headerStyle.Render(fmt.Sprintf("%s · %s · %d bars · fft %d ",
		s.VisualStyle, s.CenterFill, s.BarCount, m.vis.FFTSize()))
	b.WriteString(header)
	if gap := m.width - lipgloss.Width(header) - lipgloss.Width(info); gap > 0 {
		b.WriteString(spaces(gap))
		b.WriteString(info)
	}
	b.WriteString("\n")

	b.WriteString(m.frame)
	b.WriteString("\n")

	if m.showEQ {
		b.WriteString(renderEqualizer(m.eqBar, m.vis.EqualizerGains(), m.band))
		b.WriteString("\n")
	}

	status := ""
	if m.status != "" {
		if m.statusWarn {
			status = warnStyle.Render(" " + m.status)
		} else {
			status = statusStyle.Render(" " + m.status)
		}
	}
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(" " + m.help.View(m.keys))

	return b.String()
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title
	}
	return "▶ " + title
}
