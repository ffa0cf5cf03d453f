// Command termview renders a scene into the terminal with tcell.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/Garsondee/Flight-Scope/internal/canvas"
	"github.com/Garsondee/Flight-Scope/internal/compose"
	"github.com/Garsondee/Flight-Scope/internal/config"
	"github.com/Garsondee/Flight-Scope/internal/input"
	"github.com/Garsondee/Flight-Scope/internal/logging"
	"github.com/Garsondee/Flight-Scope/internal/loop"
	"github.com/Garsondee/Flight-Scope/internal/render"
	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/telemetry"
)

func main() {
	fs := pflag.CommandLine
	config.Flags(fs)
	pflag.Parse()

	if err := run(fs); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(fs *pflag.FlagSet) error {
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}
	v := config.New()
	if err := config.BindFlags(v, fs); err != nil {
		return err
	}
	path, _ := fs.GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		return err
	}

	// The screen owns the terminal, so logs only go to a file when one is set.
	logger := zerolog.Nop()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger, _ = logging.Setup(logging.Options{Level: cfg.LogLevel, Out: f, NoColor: true})
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vw := newViewer(cfg, screen, logger)
	if err := vw.load(cfg.Scene); err != nil {
		return err
	}
	go vw.pollEvents(cancel)

	clock := loop.NewTickerClock(cfg.RefreshHz)
	defer clock.Stop()
	for {
		err := loop.Run(ctx, vw.session, clock, loop.SinkFunc(vw.frame))
		if errors.Is(err, errNextScene) {
			if err := vw.load(vw.nextScene()); err != nil {
				return err
			}
			continue
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

var errNextScene = errors.New("next scene")

// viewer holds the terminal-side state shared by the event goroutine and the
// frame loop.
type viewer struct {
	cfg    config.Config
	screen tcell.Screen
	term   *canvas.Terminal
	logger zerolog.Logger

	mu      sync.Mutex
	hold    *input.HoldTracker
	resized bool
	switchq bool

	scene    string
	session  *loop.Session
	composer *compose.Composer
}

func newViewer(cfg config.Config, screen tcell.Screen, logger zerolog.Logger) *viewer {
	return &viewer{
		cfg:    cfg,
		screen: screen,
		term:   canvas.NewTerminal(screen, 8, 16),
		logger: logger,
		hold:   input.NewHoldTracker(cfg.HoldWindow),
	}
}

func (v *viewer) load(name string) error {
	sc, ok := v.cfg.Scenes[name]
	if !ok {
		return fmt.Errorf("%w: %q", config.ErrUnknownScene, name)
	}
	mapper, err := sc.Mapper()
	if err != nil {
		return err
	}
	layout, err := sc.Layout()
	if err != nil {
		return err
	}
	scene, err := sc.Scene(name)
	if err != nil {
		return err
	}
	port, err := sim.New(sc.Model)
	if err != nil {
		return err
	}

	s := loop.NewSession(name, port, mapper, v.flags, v.cfg.Quantum)
	s.Scheduler.MaxFrame = v.cfg.MaxFrame
	s.Logger = v.logger
	if metrics, err := telemetry.Global(); err == nil {
		s.Metrics = metrics
	}
	v.scene, v.session = name, s
	v.composer = compose.New(layout, render.Renderer{Scene: scene})
	return nil
}

func (v *viewer) nextScene() string {
	names := v.cfg.SceneNames()
	for i, n := range names {
		if n == v.scene {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func (v *viewer) flags() input.Flags {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hold.Flags(time.Now())
}

// keyDirection maps arrow keys and WASD to a direction.
func keyDirection(ev *tcell.EventKey) input.Direction {
	switch ev.Key() {
	case tcell.KeyUp:
		return input.DirUp
	case tcell.KeyDown:
		return input.DirDown
	case tcell.KeyLeft:
		return input.DirLeft
	case tcell.KeyRight:
		return input.DirRight
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return input.DirUp
		case 's', 'S':
			return input.DirDown
		case 'a', 'A':
			return input.DirLeft
		case 'd', 'D':
			return input.DirRight
		}
	}
	return input.DirNone
}

func isQuit(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return true
	}
	return ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')
}

func (v *viewer) handle(ev tcell.Event, now time.Time) (quit bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev) {
			return true
		}
		if ev.Key() == tcell.KeyTab {
			v.switchq = true
			return false
		}
		v.hold.Press(keyDirection(ev), now)
	case *tcell.EventResize:
		v.resized = true
	}
	return false
}

func (v *viewer) pollEvents(cancel context.CancelFunc) {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			cancel()
			return
		}
		if v.handle(ev, time.Now()) {
			cancel()
			return
		}
	}
}

func (v *viewer) frame(_ context.Context, f loop.Frame) error {
	v.mu.Lock()
	resized, next := v.resized, v.switchq
	v.resized, v.switchq = false, false
	v.mu.Unlock()

	if resized {
		v.screen.Sync()
		v.term.Resize()
	}
	if err := v.composer.Draw(v.term, f.Snapshot); err != nil {
		v.logger.Warn().Err(err).Str("scene", v.scene).Msg("draw failed")
	}
	drawStatus(v.screen, v.scene, f)
	v.screen.Show()
	if next {
		return errNextScene
	}
	return nil
}

func drawStatus(s tcell.Screen, scene string, f loop.Frame) {
	line := fmt.Sprintf(" %s  t=%.2fs  steps=%d  [arrows/wasd] fly  [tab] scene  [q] quit ",
		scene, f.Snapshot.SimTime, f.Snapshot.Steps)
	style := tcell.StyleDefault.Reverse(true)
	for i, r := range line {
		s.SetContent(i, 0, r, nil, style)
	}
}
