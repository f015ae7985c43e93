package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *backendFlag != "" {
		cfg.Solver.Backend = *backendFlag
		if err := cfg.validate(); err != nil {
			log.Fatalf("Configuration error: %v", err)
		}
	}

	if *cpuProfileFlag != "" {
		stop, err := startCPUProfile(*cpuProfileFlag)
		if err != nil {
			log.Fatalf("CPU profile: %v", err)
		}
		defer stop()
	}

	d, err := newDriver(cfg)
	if err != nil {
		log.Fatalf("Solver initialization failed: %v", err)
	}
	log.Printf("Solver enabled (%s), grid %dx%d", d.solver.Name(), cfg.Grid.Width, cfg.Grid.Height)

	if *headlessFlag {
		if err := runHeadless(cfg, d, *stepsFlag); err != nil {
			log.Fatalf("Headless run failed: %v", err)
		}
		return
	}

	game := newGame(cfg, d, d.solver.Name())
	defer d.Stop()
	ebiten.SetWindowSize(cfg.Grid.Width*windowScale, cfg.Grid.Height*windowScale)
	ebiten.SetWindowTitle("Wave Field Solver")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("Render loop failed: %v", err)
	}
}

// runHeadless advances the simulation a fixed number of ticks without a
// window, exporting frames at the configured interval and a telemetry CSV at
// the end. The driver is stepped while paused so the tick count is exact.
func runHeadless(cfg *Config, d *driver, steps int) error {
	defer d.Stop()

	field := make([]float32, cfg.Grid.Width*cfg.Grid.Height)
	telemetry := &energyLog{}

	snapshot := func() error {
		t, err := d.SnapshotInto(field)
		if err != nil {
			return err
		}
		telemetry.record(t, field)
		if cfg.Export.Every > 0 {
			if path, err := exportFrame(cfg, field, t); err != nil {
				return err
			} else if t%uint64(cfg.Export.Every*10) == 0 {
				log.Printf("Wrote %s", path)
			}
		}
		return nil
	}

	// Initial, not yet evolved field.
	if err := snapshot(); err != nil {
		return err
	}

	interval := cfg.Export.Every
	if interval <= 0 {
		interval = steps
	}
	for done := 0; done < steps; {
		n := interval
		if done+n > steps {
			n = steps - done
		}
		if err := d.Step(n); err != nil {
			return err
		}
		done += n
		if err := snapshot(); err != nil {
			return err
		}
	}

	mean, stddev := telemetry.summary()
	log.Printf("Ran %d ticks; energy mean %.4g, stddev %.4g", steps, mean, stddev)
	return telemetry.writeCSV(cfg.Export.Dir)
}
