// Command stepper loads a scene, runs it headless for a fixed number of ticks
// and prints the collision events and the final body snapshot as YAML.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/milk9111/gridstep/config"
	"github.com/milk9111/gridstep/ecs/system"
	"github.com/milk9111/gridstep/sim"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type eventRecord struct {
	Tick      uint64 `yaml:"tick"`
	Kind      string `yaml:"kind"`
	Entity    string `yaml:"entity"`
	Other     string `yaml:"other,omitempty"`
	Direction string `yaml:"direction,omitempty"`
}

type report struct {
	Scene     string            `yaml:"scene"`
	Ticks     int               `yaml:"ticks"`
	Events    []eventRecord     `yaml:"events,omitempty"`
	Snapshots []system.Snapshot `yaml:"snapshots,omitempty"`
	Final     system.Snapshot   `yaml:"final"`
}

type options struct {
	configPath string
	scene      string
	ticks      int
	every      int
	events     bool
	level      string
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("stepper", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "TOML config file")
	fs.StringVar(&opts.scene, "scene", "", "scene file in prefabs/ (overrides the config)")
	fs.IntVar(&opts.ticks, "ticks", -1, "ticks to run (overrides the config)")
	fs.IntVar(&opts.every, "every", 0, "also snapshot every N ticks")
	fs.BoolVar(&opts.events, "events", true, "include collision events")
	fs.StringVar(&opts.level, "log", "", "log level (overrides the config)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.every < 0 {
		return opts, errors.New("-every must not be negative")
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.scene != "" {
		cfg.Scene.Path = opts.scene
	}
	if opts.ticks >= 0 {
		cfg.Sim.Ticks = opts.ticks
	}
	if opts.level != "" {
		cfg.Logging.Level = opts.level
	}
	return cfg, nil
}

func run(cfg *config.Config, opts options, logger *zap.Logger, out io.Writer) error {
	session, err := sim.Load(cfg.Scene.Path, logger)
	if err != nil {
		return err
	}

	rep := report{Scene: session.Scene.Name, Ticks: cfg.Sim.Ticks}
	for i := 0; i < cfg.Sim.Ticks; i++ {
		tick := session.World.Tick()
		events := session.Step()
		if opts.events {
			for _, evt := range events {
				rec := eventRecord{Tick: tick, Kind: string(evt.Kind), Entity: evt.Entity.String(), Direction: evt.Direction}
				if evt.Other.Valid() {
					rec.Other = evt.Other.String()
				}
				rep.Events = append(rep.Events, rec)
			}
		}
		if opts.every > 0 && (i+1)%opts.every == 0 {
			rep.Snapshots = append(rep.Snapshots, session.Snapshot())
		}
	}
	rep.Final = session.Snapshot()

	logger.Info("run finished",
		zap.String("scene", rep.Scene),
		zap.Int("ticks", rep.Ticks),
		zap.Int("events", len(rep.Events)),
		zap.Int("bodies", len(rep.Final.Bodies)))

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, opts, logger, os.Stdout); err != nil {
		logger.Fatal("stepper failed", zap.Error(err))
	}
}
