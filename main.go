// main.go - Main entry point for CreakEngine
//
// Polls the hinge angle sensor on a ~16 ms control tick, feeds the active
// synthesis engine, and renders audio until interrupted.

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func boilerPlate() {
	fmt.Println("CreakEngine - hinge motion synthesizer")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/CreakEngine")
	fmt.Println("License: GPLv3 or later")
}

func buildSensor(cfg SensorConfig) (AngleSensor, error) {
	if cfg.Simulated {
		return NewSweepSensor(10, 170, 8*time.Second), nil
	}
	return NewIIOAngleSensor(cfg.Path, cfg.Scale)
}

// buildEngines constructs every engine the config allows. A creak engine
// whose sample asset is missing is reported unavailable rather than fatal;
// the theremin needs no assets.
func buildEngines(cfg Config, out AudioOutput) map[string]SynthEngine {
	engines := make(map[string]SynthEngine)

	samples, rate, err := LoadWAV(cfg.Creak.SamplePath)
	if err != nil {
		slog.Warn("creak engine unavailable", "error", err)
	} else {
		creak, err := NewCreakEngine(cfg.Creak.toCreakConfig(), samples, rate, out)
		if err != nil {
			slog.Warn("creak engine unavailable", "error", err)
		} else {
			engines[creak.Name()] = creak
		}
	}

	theremin, err := NewThereminEngine(cfg.Theremin.toThereminConfig(), out)
	if err != nil {
		slog.Warn("theremin engine unavailable", "error", err)
	} else {
		engines[theremin.Name()] = theremin
	}

	return engines
}

func main() {
	configPath := flag.String("config", "creakengine.yaml", "path to YAML config")
	engineName := flag.String("engine", "", "engine to start (creak or theremin, overrides config)")
	simulate := flag.Bool("simulate", false, "use a simulated lid-sweep sensor")
	logLevel := flag.String("log-level", "", "log level (error, warn, info, debug, overrides config)")
	flag.Parse()

	boilerPlate()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}
	if *simulate {
		cfg.Sensor.Simulated = true
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	level, _ := parseLogLevel(cfg.Logging.Level)
	slog.SetDefault(setupLogger(level))

	sensor, err := buildSensor(cfg.Sensor)
	if err != nil {
		slog.Error("sensor unavailable", "error", err)
		os.Exit(1)
	}

	output, err := NewAudioOutput(SAMPLE_RATE)
	if err != nil {
		slog.Error("audio subsystem failed to initialize", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	engines := buildEngines(cfg, output)
	engine, ok := engines[cfg.Engine]
	if !ok {
		slog.Error("selected engine uninitialized", "engine", cfg.Engine)
		os.Exit(1)
	}

	selector := NewEngineSelector()
	if !selector.SwitchTo(engine) {
		slog.Error("engine failed to activate", "engine", cfg.Engine)
		os.Exit(1)
	}
	defer selector.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(CONTROL_TICK_MS * time.Millisecond)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ticker.C:
			angle, err := sensor.ReadAngle()
			if err != nil {
				// A bad read never advances the estimator; the engines'
				// own decay handles the gap on the next good sample.
				slog.Debug("sensor read failed", "error", err)
				continue
			}
			selector.Update(angle)

			tick++
			if tick%60 == 0 {
				if status := selector.Status(); status != "" {
					slog.Debug(status)
				}
			}
		case <-sig:
			slog.Info("shutting down")
			return
		}
	}
}
