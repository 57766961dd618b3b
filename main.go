package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/integrii/flaggy"
	"github.com/olivier-w/rhalza/internal/audiograph"
	"github.com/olivier-w/rhalza/internal/canvas"
	"github.com/olivier-w/rhalza/internal/equalizer"
	"github.com/olivier-w/rhalza/internal/particles"
	"github.com/olivier-w/rhalza/internal/settings"
	"github.com/olivier-w/rhalza/internal/source"
	"github.com/olivier-w/rhalza/internal/ui"
	"github.com/olivier-w/rhalza/internal/visualizer"
	"github.com/olivier-w/rhalza/internal/window"
	"github.com/pkg/errors"
)

// AppName is the app name
const AppName = "rhalza"

// AppDesc is the app description
const AppDesc = "Audio-reactive spectrum visualizer"

var version = "unknown"

func main() {
	log.SetFlags(0)

	cfg := newZeroConfig()
	if doFlags(&cfg) {
		return
	}
	chk(cfg.validate(), "invalid config")

	initial, err := cfg.settings()
	chk(err, "invalid settings")

	var sink audiograph.Sink
	if cfg.mute || cfg.output == "png" {
		sink = audiograph.NewClockSink(0)
	} else {
		sink = audiograph.NewOtoSink(cfg.volume)
	}
	graph := audiograph.NewManager(sink)

	vis, err := visualizer.New(graph, initial,
		visualizer.WithParticles(particles.New(rand.New(rand.NewSource(time.Now().UnixNano())))),
		visualizer.WithPlaceholderFPS(cfg.fps),
	)
	if err != nil {
		log.Printf("settings: %v", err)
	}
	if cfg.preset != "" && !vis.ApplyPreset(cfg.preset) {
		chk(errors.Errorf("unknown preset %q (have: %s)", cfg.preset, strings.Join(equalizer.Presets(), ", ")), "invalid config")
	}

	deck := &deck{vis: vis, bpm: cfg.bpm}
	defer deck.close()
	chk(deck.load(cfg.file), "failed to open source")

	sched := visualizer.NewScheduler(vis)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	switch cfg.output {
	case "window":
		err = window.Run(window.Config{
			Title:  AppName + " - " + deck.title,
			Width:  cfg.width,
			Height: cfg.height,
			Vis:    vis,
			Sched:  sched,
			Pauser: graph,
			Load:   deck.load,
		})
	case "png":
		err = renderPNG(ctx, cfg, sched)
	default:
		err = runTUI(cfg, vis, sched, graph, deck.title)
	}
	vis.Disconnect()
	chk(err, "failed to run "+cfg.output)
}

// deck owns the track currently feeding the graph.
type deck struct {
	vis   *visualizer.Visualizer
	bpm   float64
	track *source.Track
	title string
}

// load swaps the graph input to path, or to the demo signal when path is
// empty. An unavailable audio device is logged and the visuals keep going.
func (d *deck) load(path string) error {
	var src audiograph.Source
	var track *source.Track
	title := "demo"
	if path == "" {
		src = source.Demo(audiograph.SampleRate, d.bpm)
	} else {
		t, err := source.Open(path, audiograph.SampleRate)
		if err != nil {
			return err
		}
		src, track, title = t, t, t.Name
	}

	d.vis.Disconnect()
	d.close()
	d.track, d.title = track, title

	err := d.vis.Connect(src)
	if errors.Is(err, audiograph.ErrMediaUnavailable) {
		log.Printf("audio output unavailable, visualizing silently: %v", err)
		return nil
	}
	return err
}

func (d *deck) close() {
	if d.track != nil {
		d.track.Close()
		d.track = nil
	}
}

func runTUI(cfg config, vis *visualizer.Visualizer, sched *visualizer.Scheduler, p ui.Pauser, title string) error {
	if cfg.logPath != "" {
		f, err := tea.LogToFile(cfg.logPath, AppName)
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	program := tea.NewProgram(ui.New(vis, sched, p, title, cfg.fps), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// renderPNG runs the scheduler off-screen for the configured duration and
// writes the last frame.
func renderPNG(ctx context.Context, cfg config, sched *visualizer.Scheduler) error {
	raster := canvas.NewRaster(cfg.width, cfg.height)

	ctx, cancel := context.WithTimeout(ctx, cfg.duration)
	defer cancel()
	sched.Run(ctx, raster, cfg.fps, nil)

	if sched.Frames() == 0 {
		return errors.New("no frame rendered")
	}

	f, err := os.Create(cfg.pngPath)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := png.Encode(f, raster.Image()); err != nil {
		f.Close()
		return errors.Wrap(err, "encode frame")
	}
	log.Printf("wrote %s after %d frames", cfg.pngPath, sched.Frames())
	return f.Close()
}

func doFlags(cfg *config) bool {
	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.Version = version

	var list bool
	parser.Bool(&list, "L", "list", "list styles, fill types and equalizer presets")
	parser.AddPositionalValue(&cfg.file, "file", 1, false, "audio file ("+source.SupportedExtsList()+"); plays a demo signal when omitted")

	parser.String(&cfg.output, "o", "output", "host: tui, window or png")
	parser.String(&cfg.style, "s", "style", "visual style (see --list)")
	parser.String(&cfg.fill, "c", "fill", "center fill (see --list)")
	parser.String(&cfg.customColor, "cc", "custom-color", "custom center colour (#RRGGBB)")
	parser.String(&cfg.spectrumColor, "fg", "spectrum-color", "spectrum colour (#RRGGBB)")
	parser.String(&cfg.backgroundColor, "bg", "background-color", "background colour (#RRGGBB)")
	parser.Float64(&cfg.smoothing, "sf", "smoothing", "temporal smoothing [0, 1]")
	parser.Int(&cfg.bars, "n", "bars", "bar count")
	parser.Float64(&cfg.sensitivity, "e", "sensitivity", "response curve exponent")
	parser.Float64(&cfg.size, "z", "size", "size multiplier")
	parser.String(&cfg.preset, "p", "preset", "equalizer preset (see --list)")
	parser.Int(&cfg.fps, "f", "fps", "frame rate")
	parser.Float64(&cfg.volume, "vol", "volume", "output volume [0, 1]")
	parser.Bool(&cfg.mute, "m", "mute", "analyse without an audio device")
	parser.Float64(&cfg.bpm, "b", "bpm", "tempo of the demo signal")
	parser.Int(&cfg.width, "W", "width", "window or image width")
	parser.Int(&cfg.height, "H", "height", "window or image height")
	parser.String(&cfg.pngPath, "w", "png", "png output path")
	parser.Duration(&cfg.duration, "d", "duration", "how long to run before writing the png")
	parser.String(&cfg.logPath, "l", "log", "log file for the terminal host")

	chk(parser.Parse(), "failed to parse arguments")

	if list {
		var styles []string
		for s := settings.Style(0); s < settings.StyleCount; s++ {
			styles = append(styles, s.String())
		}
		var fills []string
		for f := settings.FillImage; f <= settings.FillCustom; f++ {
			fills = append(fills, f.String())
		}
		fmt.Printf("styles:  %s\n", strings.Join(styles, ", "))
		fmt.Printf("fills:   %s\n", strings.Join(fills, ", "))
		fmt.Printf("presets: %s\n", strings.Join(equalizer.Presets(), ", "))
		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
