// Package window hosts the visualizer in a desktop window.
package window

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"
	"github.com/olivier-w/rhalza/internal/equalizer"
	"github.com/olivier-w/rhalza/internal/settings"
	"github.com/olivier-w/rhalza/internal/source"
	"github.com/olivier-w/rhalza/internal/visualizer"
	"github.com/pkg/errors"
)

// Pauser pauses and resumes audio output alongside the frame gate.
type Pauser interface {
	SetPaused(paused bool)
}

// Config describes the window and what it drives.
type Config struct {
	Title  string
	Width  int
	Height int

	Vis    *visualizer.Visualizer
	Sched  *visualizer.Scheduler
	Pauser Pauser

	// Load opens path and connects it to the visualizer. When nil the open
	// key is disabled.
	Load func(path string) error
}

type action int

const (
	actionPause action = iota
	actionStyle
	actionFill
	actionPreset
	actionOpen
	actionHelp
	actionQuit
)

var bindings = []struct {
	key ebiten.Key
	act action
}{
	{ebiten.KeySpace, actionPause},
	{ebiten.KeyV, actionStyle},
	{ebiten.KeyF, actionFill},
	{ebiten.KeyP, actionPreset},
	{ebiten.KeyO, actionOpen},
	{ebiten.KeyH, actionHelp},
	{ebiten.KeyEscape, actionQuit},
	{ebiten.KeyQ, actionQuit},
}

// Game implements ebiten.Game.
type Game struct {
	cfg      Config
	surface  *surface
	preset   string
	showHelp bool
	status   string
	lastErr  error
}

// NewGame prepares a game for cfg.
func NewGame(cfg Config) *Game {
	return &Game{cfg: cfg, surface: &surface{}, preset: "flat"}
}

// Run opens the window and blocks until it is closed.
func Run(cfg Config) error {
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)

	if err := ebiten.RunGame(NewGame(cfg)); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (g *Game) Update() error {
	for _, b := range bindings {
		if !inpututil.IsKeyJustPressed(b.key) {
			continue
		}
		if err := g.do(b.act); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) do(act action) error {
	vis := g.cfg.Vis
	s := vis.Settings()
	switch act {
	case actionQuit:
		return ebiten.Termination

	case actionPause:
		playing := g.cfg.Sched.Toggle()
		if g.cfg.Pauser != nil {
			g.cfg.Pauser.SetPaused(!playing)
		}

	case actionStyle:
		next := s.VisualStyle.Next()
		g.apply(settings.Patch{VisualStyle: &next}, "style "+next.String())

	case actionFill:
		next := s.CenterFill.Next()
		g.apply(settings.Patch{CenterFill: &next}, "fill "+next.String())

	case actionPreset:
		g.preset = equalizer.NextPreset(g.preset)
		if vis.ApplyPreset(g.preset) {
			g.status = "preset " + g.preset
		}

	case actionOpen:
		if g.cfg.Load == nil {
			return nil
		}
		if err := g.openFileDialog(); err != nil {
			log.Printf("open: %v", err)
			g.lastErr = err
		}

	case actionHelp:
		g.showHelp = !g.showHelp
	}
	return nil
}

func (g *Game) apply(p settings.Patch, label string) {
	if err := g.cfg.Vis.ApplySettings(p); err != nil {
		log.Printf("settings: %v", err)
		g.lastErr = err
		return
	}
	g.lastErr = nil
	g.status = label
}

func (g *Game) openFileDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: source.Patterns(),
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	if err := g.cfg.Load(filename); err != nil {
		return err
	}
	g.lastErr = nil
	g.status = "playing " + filename
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.dst = screen
	if !g.cfg.Sched.Step(g.surface) {
		return
	}

	msg := g.status
	if g.lastErr != nil {
		msg = "error: " + g.lastErr.Error()
	}
	if g.showHelp {
		msg += "\nspace pause  v style  f fill  p preset  o open  q quit"
		msg += fmt.Sprintf("\nfft %d  bars %d", g.cfg.Vis.FFTSize(), g.cfg.Vis.Settings().BarCount)
	}
	if msg != "" {
		ebitenutil.DebugPrintAt(screen, msg, 8, 8)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
