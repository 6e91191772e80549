package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gridstep/config"
	"github.com/milk9111/gridstep/sim"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
)

func main() {
	configPath := flag.String("config", "", "TOML config file (defaults are used when empty)")
	sceneName := flag.String("scene", "", "scene file in prefabs/ (overrides the config)")
	debug := flag.Bool("debug", false, "draw the collision mirror")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if *sceneName != "" {
		cfg.Scene.Path = *sceneName
	}
	if *debug {
		cfg.View.Debug = true
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	session, err := sim.Load(cfg.Scene.Path, logger)
	if err != nil {
		logger.Fatal("load scene", zap.String("scene", cfg.Scene.Path), zap.Error(err))
	}

	clipboardOK := true
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", zap.Error(err))
		clipboardOK = false
	}

	ebiten.SetTPS(cfg.Sim.TickRate)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(baseWidth*cfg.View.Scale), int(baseHeight*cfg.View.Scale))
	ebiten.SetWindowTitle("gridstep")

	game := NewGame(cfg, session, logger, clipboardOK)
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}
