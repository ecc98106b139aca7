// sensor.go - Hinge angle sensor suppliers
//
// The physical sensor is an external collaborator: the core only consumes a
// pull-based ReadAngle call once per control tick. A read error is a
// distinguished condition the caller skips; it never advances the motion
// estimator.

package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Degree range accepted from a sensor. Anything outside is a misread.
const (
	MIN_SENSOR_ANGLE = 0.0
	MAX_SENSOR_ANGLE = 360.0
)

// AngleSensor supplies one hinge angle reading in degrees per call.
type AngleSensor interface {
	ReadAngle() (float64, error)
}

// IIOAngleSensor reads a Linux industrial-IO angle attribute, e.g.
// /sys/bus/iio/devices/iio:device0/in_angl_raw as exposed by the
// cros-ec-lid-angle driver. Raw readings are multiplied by Scale to yield
// degrees (1.0 for drivers that already report degrees).
type IIOAngleSensor struct {
	Path  string
	Scale float64
}

func NewIIOAngleSensor(path string, scale float64) (*IIOAngleSensor, error) {
	if scale == 0 {
		scale = 1.0
	}
	s := &IIOAngleSensor{Path: path, Scale: scale}
	if _, err := s.ReadAngle(); err != nil {
		return nil, fmt.Errorf("iio sensor probe: %w", err)
	}
	return s, nil
}

func (s *IIOAngleSensor) ReadAngle() (float64, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.Path, err)
	}
	raw, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	angle := raw * s.Scale
	if angle < MIN_SENSOR_ANGLE || angle > MAX_SENSOR_ANGLE || math.IsNaN(angle) {
		return 0, fmt.Errorf("angle %g out of range", angle)
	}
	return angle, nil
}

// SweepSensor simulates a lid being opened and closed: the angle follows a
// slow sinusoid between Min and Max. Used for demos and benches on machines
// without a hinge sensor.
type SweepSensor struct {
	Min    float64
	Max    float64
	Period time.Duration
	start  time.Time
}

func NewSweepSensor(min, max float64, period time.Duration) *SweepSensor {
	if period <= 0 {
		period = 8 * time.Second
	}
	return &SweepSensor{Min: min, Max: max, Period: period, start: time.Now()}
}

func (s *SweepSensor) ReadAngle() (float64, error) {
	t := time.Since(s.start).Seconds() / s.Period.Seconds()
	mid := (s.Min + s.Max) / 2
	amp := (s.Max - s.Min) / 2
	return mid + amp*math.Sin(2*math.Pi*t), nil
}
