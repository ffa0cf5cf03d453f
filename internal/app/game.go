// Package app is the interactive desktop viewer built on Ebiten.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

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

// Game implements ebiten.Game. Update is the display callback: it samples
// the keyboard once and advances the session by the elapsed wall time.
type Game struct {
	cfg      config.Config
	scenes   []string
	sceneIdx int

	session  *loop.Session
	composer *compose.Composer
	frame    loop.Frame
	keys     input.Flags

	inspector Inspector
	events    EventLog
	showHUD   bool

	deviceScale float64
	text        *textDrawer

	metrics *telemetry.Metrics
	logger  zerolog.Logger
	warn    zerolog.Logger
	copy    func(string) error
	now     func() time.Time
}

// New builds the viewer and initialises the configured scene. An init
// failure is returned and must be treated as fatal.
func New(cfg config.Config, logger zerolog.Logger, metrics *telemetry.Metrics) (*Game, error) {
	g := &Game{
		cfg:         cfg,
		scenes:      cfg.SceneNames(),
		inspector:   Inspector{selected: -1},
		showHUD:     true,
		deviceScale: 1,
		metrics:     metrics,
		logger:      logger,
		warn:        logging.Sampled(logger),
		copy:        clipboard.WriteAll,
		now:         time.Now,
	}
	g.text = newTextDrawer(g.deviceScale)
	for i, s := range g.scenes {
		if s == cfg.Scene {
			g.sceneIdx = i
		}
	}
	if err := g.loadScene(g.scenes[g.sceneIdx]); err != nil {
		return nil, err
	}
	return g, nil
}

// loadScene replaces the session with a fresh one for scene name.
func (g *Game) loadScene(name string) error {
	sc, ok := g.cfg.Scenes[name]
	if !ok {
		return fmt.Errorf("%w: %q", config.ErrUnknownScene, name)
	}
	port, err := sim.New(sc.Model)
	if err != nil {
		return err
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

	s := loop.NewSession(name, port, mapper, func() input.Flags { return g.keys }, g.cfg.Quantum)
	s.Scheduler.MaxFrame = g.cfg.MaxFrame
	s.Metrics = g.metrics
	s.Logger = g.logger
	if err := s.Init(); err != nil {
		return err
	}

	g.session = s
	g.composer = compose.New(layout, render.Renderer{Scene: scene})
	g.frame = loop.Frame{Snapshot: s.Snapshot()}
	g.inspector.selected = -1
	g.events.Add(s.State().Steps, "init", fmt.Sprintf("%s: %d entities, dt=%.3fs", name, port.EntityCount(), g.cfg.Quantum))
	return nil
}

// Scene is the active scene name.
func (g *Game) Scene() string { return g.scenes[g.sceneIdx] }

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}
	g.keys = sampleKeys()
	g.handleInput()

	f, err := g.session.Tick(context.Background(), g.now())
	if err != nil {
		return fmt.Errorf("tick %s: %w", g.Scene(), err)
	}
	g.frame = f
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.nextScene()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyReadout()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		g.clickAt(float64(mx)/g.deviceScale, float64(my)/g.deviceScale)
	}
}

// surface is the logical drawing size.
func (g *Game) surface() (float64, float64) {
	return float64(g.cfg.Window.Width), float64(g.cfg.Window.Height)
}

func (g *Game) clickAt(x, y float64) {
	w, h := g.surface()
	v, ok := topView(g.composer.Views(w, h, g.frame.Snapshot), x, y)
	if !ok {
		g.inspector.selected = -1
		return
	}
	if g.inspector.click(v.Projection, g.frame.Snapshot, x, y) {
		g.logger.Debug().Int("entity", g.inspector.selected).Msg("entity selected")
	}
}

func (g *Game) nextScene() {
	if len(g.scenes) < 2 {
		return
	}
	next := (g.sceneIdx + 1) % len(g.scenes)
	prev := g.sceneIdx
	leftAt := g.frame.Snapshot.Steps
	g.sceneIdx = next
	if err := g.loadScene(g.scenes[next]); err != nil {
		g.sceneIdx = prev
		g.logger.Error().Err(err).Str("scene", g.scenes[next]).Msg("scene switch failed")
		g.events.Add(g.frame.Snapshot.Steps, "error", "switch failed: "+err.Error())
		return
	}
	g.logger.Info().Str("scene", g.Scene()).Msg("scene switched")
	g.events.Add(leftAt, "scene", fmt.Sprintf("%s -> %s", g.scenes[prev], g.Scene()))
}

func (g *Game) copyReadout() {
	txt := readout(g.Scene(), g.frame)
	if err := g.copy(txt); err != nil {
		g.logger.Warn().Err(err).Msg("clipboard write failed")
		g.events.Add(g.frame.Snapshot.Steps, "error", "clipboard unavailable")
		return
	}
	g.events.Add(g.frame.Snapshot.Steps, "copy", fmt.Sprintf("copied %d entities", len(g.frame.Snapshot.Entities)))
}

func (g *Game) Draw(screen *ebiten.Image) {
	cv := canvas.NewEbiten(screen, g.deviceScale)
	if err := g.composer.Draw(cv, g.frame.Snapshot); err != nil {
		g.warn.Warn().Err(err).Str("scene", g.Scene()).Msg("view failed")
	}
	w, h := g.surface()
	g.drawInsetLabels(screen, w, h)
	if g.showHUD {
		g.drawHUD(screen, w)
	}
	g.inspector.draw(screen, g.text, g.frame, w)
	g.events.Draw(screen, g.text, h, g.deviceScale)
}

func (g *Game) drawInsetLabels(screen *ebiten.Image, w, h float64) {
	for _, v := range g.composer.Views(w, h, g.frame.Snapshot) {
		if !v.Inset {
			continue
		}
		vp := v.Projection.Viewport
		g.text.draw(screen, v.Name, vp.X+3, vp.Y+vp.H-14, hudDim)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image, w float64) {
	f := g.frame
	lines := []string{
		fmt.Sprintf("%s  fps %.0f  tps %.0f", g.Scene(), ebiten.ActualFPS(), ebiten.ActualTPS()),
		fmt.Sprintf("t %.2fs  steps %d (+%d)  carry %.1fms", f.Snapshot.SimTime, f.Snapshot.Steps, f.Steps, f.Carry*1000),
		fmt.Sprintf("axes %+.2f %+.2f", f.Axes.Axis1, f.Axes.Axis2),
		"[Tab] scene  [C] copy  [H] hud  [click] inspect",
	}
	y := 8.0
	for i, l := range lines {
		x := w - g.text.width(l) - 8
		c := hudText
		if i == len(lines)-1 {
			c = hudDim
		}
		g.text.draw(screen, l, x, y+float64(i*14), c)
	}
}

// Layout reports the backing-store size in device pixels so drawing stays
// sharp on HiDPI displays. Logical sizes come from the window config.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	ds := 1.0
	if m := ebiten.Monitor(); m != nil {
		ds = m.DeviceScaleFactor()
	}
	if ds <= 0 {
		ds = 1
	}
	if ds != g.deviceScale {
		g.deviceScale = ds
		g.text = newTextDrawer(ds)
	}
	g.cfg.Window.Width, g.cfg.Window.Height = outsideWidth, outsideHeight
	return int(float64(outsideWidth) * ds), int(float64(outsideHeight) * ds)
}

// ErrQuit is returned from Update to end the run loop cleanly.
var ErrQuit = errors.New("quit")
