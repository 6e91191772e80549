package main

import (
	"fmt"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/gridstep/config"
	"github.com/milk9111/gridstep/ecs"
	"github.com/milk9111/gridstep/ecs/system"
	"github.com/milk9111/gridstep/prefabs"
	"github.com/milk9111/gridstep/sim"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = 320
	baseHeight = 180
)

type Game struct {
	cfg     *config.Config
	log     *zap.Logger
	session *sim.Session
	mirror  *system.DebugMirror
	watcher *prefabs.Watcher

	paused    bool
	stepOnce  bool
	clipboard bool
	events    []ecs.CollisionEvent
	status    string

	ui *ebitenui.UI
}

func NewGame(cfg *config.Config, session *sim.Session, log *zap.Logger, clipboardOK bool) *Game {
	g := &Game{
		cfg:       cfg,
		log:       log,
		session:   session,
		mirror:    system.NewDebugMirror(),
		clipboard: clipboardOK,
	}
	if cfg.Scene.Watch {
		w, err := prefabs.NewWatcher(prefabs.DefaultWatchDirs()...)
		if err != nil {
			log.Warn("scene watcher disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	g.ui = NewPauseUI(g)
	return g
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.drainWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copySnapshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reload()
	}
	if g.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
			g.stepOnce = true
		}
		g.ui.Update()
	}

	if !g.paused || g.stepOnce {
		g.stepOnce = false
		g.events = g.session.Step()
		for _, evt := range g.events {
			if evt.Kind == ecs.CollisionEventCrushed {
				g.log.Debug("crushed",
					zap.Stringer("entity", evt.Entity),
					zap.Stringer("by", evt.Other),
					zap.String("direction", evt.Direction))
			}
		}
	}

	if g.cfg.View.Debug {
		g.mirror.Sync(g.session.World)
	}
	return nil
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			next, err := g.session.Apply(path)
			if err != nil {
				g.log.Error("reload failed", zap.String("path", path), zap.Error(err))
				g.status = "reload failed: " + err.Error()
				continue
			}
			if next != g.session {
				g.session = next
				g.mirror = system.NewDebugMirror()
			}
			g.status = "reloaded " + path
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("watcher error", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (g *Game) reload() {
	next, err := sim.Load(g.session.Name(), g.log)
	if err != nil {
		g.log.Error("reload failed", zap.String("scene", g.session.Name()), zap.Error(err))
		g.status = "reload failed: " + err.Error()
		return
	}
	g.session = next
	g.mirror = system.NewDebugMirror()
	g.status = "restarted " + next.Name()
}

func (g *Game) copySnapshot() {
	out, err := g.session.SnapshotYAML()
	if err != nil {
		g.log.Error("snapshot", zap.Error(err))
		return
	}
	if !g.clipboard {
		g.status = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, out)
	g.status = fmt.Sprintf("copied tick %d", g.session.World.Tick())
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.View.Debug {
		DrawMirror(g.mirror, screen, g.cfg.View.Scale)
	}

	state := "running"
	if g.paused {
		state = "paused"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  tick %d  %s\nbodies %d  pairs %d  events %d  FPS %.1f\n%s",
		g.session.Name(), g.session.World.Tick(), state,
		g.mirror.Len(), g.session.Sweep.Pairs(), len(g.events), ebiten.ActualFPS(), g.status))

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth * g.cfg.View.Scale, baseHeight * g.cfg.View.Scale
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
