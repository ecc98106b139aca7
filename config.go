// config.go - YAML configuration for sensor, engines, and logging
//
// The config file is the primary tuning surface; flags only override the
// small operational knobs. The two engines keep separate motion and mapping
// sections because their constants were tuned independently for each sound
// character.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration.
type Config struct {
	// Engine selects the active engine at startup: "creak" or "theremin".
	Engine string `yaml:"engine"`

	Sensor SensorConfig `yaml:"sensor"`

	Creak    CreakFileConfig    `yaml:"creak"`
	Theremin ThereminFileConfig `yaml:"theremin"`

	Logging LoggingConfig `yaml:"logging"`
}

type SensorConfig struct {
	// Path of the IIO angle attribute, e.g.
	// /sys/bus/iio/devices/iio:device0/in_angl_raw.
	Path string `yaml:"path"`
	// Scale converts raw readings to degrees (1.0 = already degrees).
	Scale float64 `yaml:"scale"`
	// Simulated replaces the hardware sensor with a lid-sweep simulation.
	Simulated bool `yaml:"simulated"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MotionFileConfig is the YAML representation of MotionConfig
// (milliseconds instead of durations).
type MotionFileConfig struct {
	AngleSmoothing       float64 `yaml:"angle_smoothing"`
	MovementThresholdDeg float64 `yaml:"movement_threshold_deg"`
	VelocitySmoothing    float64 `yaml:"velocity_smoothing"`
	VelocityDecay        float64 `yaml:"velocity_decay"`
	TimeoutDecay         float64 `yaml:"timeout_decay"`
	MovementTimeoutMS    int     `yaml:"movement_timeout_ms"`
}

func (m MotionFileConfig) toMotionConfig() MotionConfig {
	return MotionConfig{
		AngleSmoothing:    m.AngleSmoothing,
		MovementThreshold: m.MovementThresholdDeg,
		VelocitySmoothing: m.VelocitySmoothing,
		VelocityDecay:     m.VelocityDecay,
		TimeoutDecay:      m.TimeoutDecay,
		MovementTimeout:   time.Duration(m.MovementTimeoutMS) * time.Millisecond,
	}
}

func motionFileConfig(m MotionConfig) MotionFileConfig {
	return MotionFileConfig{
		AngleSmoothing:       m.AngleSmoothing,
		MovementThresholdDeg: m.MovementThreshold,
		VelocitySmoothing:    m.VelocitySmoothing,
		VelocityDecay:        m.VelocityDecay,
		TimeoutDecay:         m.TimeoutDecay,
		MovementTimeoutMS:    int(m.MovementTimeout / time.Millisecond),
	}
}

// CreakFileConfig maps 1:1 to CreakConfig plus the sample asset path.
type CreakFileConfig struct {
	SamplePath string `yaml:"sample_path"`

	Motion MotionFileConfig `yaml:"motion"`

	VelocityDeadzone float64 `yaml:"velocity_deadzone"`
	VelocityFull     float64 `yaml:"velocity_full"`
	VelocityQuiet    float64 `yaml:"velocity_quiet"`
	MinRate          float64 `yaml:"min_rate"`
	MaxRate          float64 `yaml:"max_rate"`
	GainRampMS       float64 `yaml:"gain_ramp_ms"`
	RateRampMS       float64 `yaml:"rate_ramp_ms"`
}

func (c CreakFileConfig) toCreakConfig() CreakConfig {
	return CreakConfig{
		Motion:           c.Motion.toMotionConfig(),
		VelocityDeadzone: c.VelocityDeadzone,
		VelocityFull:     c.VelocityFull,
		VelocityQuiet:    c.VelocityQuiet,
		MinRate:          c.MinRate,
		MaxRate:          c.MaxRate,
		GainRampMS:       c.GainRampMS,
		RateRampMS:       c.RateRampMS,
	}
}

// ThereminFileConfig maps 1:1 to ThereminConfig.
type ThereminFileConfig struct {
	Motion MotionFileConfig `yaml:"motion"`

	MinAngle       float64 `yaml:"min_angle"`
	MaxAngle       float64 `yaml:"max_angle"`
	MinFrequency   float64 `yaml:"min_frequency"`
	MaxFrequency   float64 `yaml:"max_frequency"`
	FrequencyCurve float64 `yaml:"frequency_curve"`
	BaseVolume     float64 `yaml:"base_volume"`
	VelocityBoost  float64 `yaml:"velocity_boost"`
	VelocityQuiet  float64 `yaml:"velocity_quiet"`
	VibratoHz      float64 `yaml:"vibrato_hz"`
	VibratoDepth   float64 `yaml:"vibrato_depth"`
	FreqRampMS     float64 `yaml:"freq_ramp_ms"`
	VolRampMS      float64 `yaml:"vol_ramp_ms"`
}

func (c ThereminFileConfig) toThereminConfig() ThereminConfig {
	return ThereminConfig{
		Motion:         c.Motion.toMotionConfig(),
		MinAngle:       c.MinAngle,
		MaxAngle:       c.MaxAngle,
		MinFrequency:   c.MinFrequency,
		MaxFrequency:   c.MaxFrequency,
		FrequencyCurve: c.FrequencyCurve,
		BaseVolume:     c.BaseVolume,
		VelocityBoost:  c.VelocityBoost,
		VelocityQuiet:  c.VelocityQuiet,
		VibratoHz:      c.VibratoHz,
		VibratoDepth:   c.VibratoDepth,
		FreqRampMS:     c.FreqRampMS,
		VolRampMS:      c.VolRampMS,
	}
}

// DefaultConfig returns a fully-populated Config mirroring the engines'
// built-in defaults.
func DefaultConfig() Config {
	creak := DefaultCreakConfig()
	theremin := DefaultThereminConfig()
	return Config{
		Engine: "creak",
		Sensor: SensorConfig{
			Path:      "/sys/bus/iio/devices/iio:device0/in_angl_raw",
			Scale:     1.0,
			Simulated: false,
		},
		Creak: CreakFileConfig{
			SamplePath:       "assets/creak_loop.wav",
			Motion:           motionFileConfig(creak.Motion),
			VelocityDeadzone: creak.VelocityDeadzone,
			VelocityFull:     creak.VelocityFull,
			VelocityQuiet:    creak.VelocityQuiet,
			MinRate:          creak.MinRate,
			MaxRate:          creak.MaxRate,
			GainRampMS:       creak.GainRampMS,
			RateRampMS:       creak.RateRampMS,
		},
		Theremin: ThereminFileConfig{
			Motion:         motionFileConfig(theremin.Motion),
			MinAngle:       theremin.MinAngle,
			MaxAngle:       theremin.MaxAngle,
			MinFrequency:   theremin.MinFrequency,
			MaxFrequency:   theremin.MaxFrequency,
			FrequencyCurve: theremin.FrequencyCurve,
			BaseVolume:     theremin.BaseVolume,
			VelocityBoost:  theremin.VelocityBoost,
			VelocityQuiet:  theremin.VelocityQuiet,
			VibratoHz:      theremin.VibratoHz,
			VibratoDepth:   theremin.VibratoDepth,
			FreqRampMS:     theremin.FreqRampMS,
			VolRampMS:      theremin.VolRampMS,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error;
// the defaults stand.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Engine {
	case "creak", "theremin":
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Creak.VelocityQuiet <= c.Creak.VelocityFull {
		return fmt.Errorf("creak: velocity_quiet (%g) must exceed velocity_full (%g)",
			c.Creak.VelocityQuiet, c.Creak.VelocityFull)
	}
	if c.Creak.VelocityDeadzone < 0 {
		return fmt.Errorf("creak: velocity_deadzone %g must not be negative", c.Creak.VelocityDeadzone)
	}
	if c.Creak.MinRate <= 0 || c.Creak.MaxRate < c.Creak.MinRate {
		return fmt.Errorf("creak: invalid rate window [%g, %g]", c.Creak.MinRate, c.Creak.MaxRate)
	}
	if c.Theremin.MaxAngle <= c.Theremin.MinAngle {
		return fmt.Errorf("theremin: invalid angle window [%g, %g]", c.Theremin.MinAngle, c.Theremin.MaxAngle)
	}
	if c.Theremin.MaxFrequency <= c.Theremin.MinFrequency {
		return fmt.Errorf("theremin: invalid frequency window [%g, %g]",
			c.Theremin.MinFrequency, c.Theremin.MaxFrequency)
	}
	for _, m := range []struct {
		name string
		cfg  MotionFileConfig
	}{{"creak", c.Creak.Motion}, {"theremin", c.Theremin.Motion}} {
		if m.cfg.AngleSmoothing <= 0 || m.cfg.AngleSmoothing > 1 {
			return fmt.Errorf("%s: angle_smoothing %g outside (0, 1]", m.name, m.cfg.AngleSmoothing)
		}
		if m.cfg.VelocitySmoothing <= 0 || m.cfg.VelocitySmoothing > 1 {
			return fmt.Errorf("%s: velocity_smoothing %g outside (0, 1]", m.name, m.cfg.VelocitySmoothing)
		}
		if m.cfg.MovementThresholdDeg < 0 {
			return fmt.Errorf("%s: movement_threshold_deg %g must not be negative", m.name, m.cfg.MovementThresholdDeg)
		}
		// A negative timeout would make the timeout decay fire on every
		// tick, collapsing the two decay stages into one.
		if m.cfg.MovementTimeoutMS < 0 {
			return fmt.Errorf("%s: movement_timeout_ms %d must not be negative", m.name, m.cfg.MovementTimeoutMS)
		}
		if m.cfg.VelocityDecay <= 0 || m.cfg.VelocityDecay >= 1 {
			return fmt.Errorf("%s: velocity_decay %g outside (0, 1)", m.name, m.cfg.VelocityDecay)
		}
		if m.cfg.TimeoutDecay <= 0 || m.cfg.TimeoutDecay >= 1 {
			return fmt.Errorf("%s: timeout_decay %g outside (0, 1)", m.name, m.cfg.TimeoutDecay)
		}
	}
	return nil
}
