package sim

import (
	"fmt"
	"strings"
	"time"
)

// PhaseUnit selects how the reference phase difference is reported.
type PhaseUnit string

const (
	// PhaseRadians divides the mid-to-edge displacement by λ/2π.
	PhaseRadians PhaseUnit = "radians"
	// PhaseFemtometres reports the raw displacement.
	PhaseFemtometres PhaseUnit = "fm"
)

// ParsePhaseUnit accepts "radians"/"rad" and "fm"/"femtometres". An empty
// string selects radians.
func ParsePhaseUnit(s string) (PhaseUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "radians", "rad":
		return PhaseRadians, nil
	case "fm", "femtometres", "femtometers":
		return PhaseFemtometres, nil
	}
	return "", fmt.Errorf("unknown phase unit %q (want radians or fm)", s)
}

// Clock is the engine's time bookkeeping.
type Clock struct {
	Elapsed         float64
	PhaseDifference float64
	Steps           int
	// Wall is the time spent computing the most recent step.
	Wall time.Duration
}

// Positions is a copy of one wavefront's samples.
type Positions struct {
	Xs []float64 `json:"xs"`
	Ys []float64 `json:"ys"`
}

// Observer is notified after every completed step. It runs outside the
// engine lock and may call the query methods.
type Observer interface {
	OnStep(c Clock)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Clock)

func (f ObserverFunc) OnStep(c Clock) { f(c) }

// Result is the outcome of a headless Run.
type Result struct {
	Times     []float64
	Phases    []float64
	Clock     Clock
	Positions []Positions
	Stopped   bool
}
