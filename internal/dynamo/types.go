package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Frame is a read-only view of the particle set after a tick. Slices are
// owned by the frame and reused between snapshots.
type Frame struct {
	Tick         int
	Time         float64
	Positions    []r2.Vec
	Velocities   []r2.Vec
	Masses       []float64
	Temperatures []float64
	// Reducer is the velocity-scaling factor in effect, needed to turn
	// rendered speeds back into physical ones.
	Reducer float64
}

func (f *Frame) Len() int { return len(f.Positions) }

// Speeds appends the velocity magnitudes to dst[:0].
func (f *Frame) Speeds(dst []float64) []float64 {
	dst = dst[:0]
	for _, v := range f.Velocities {
		dst = append(dst, r2.Norm(v))
	}
	return dst
}

func (f *Frame) IsValid() bool {
	for i := range f.Positions {
		p, v := f.Positions[i], f.Velocities[i]
		if !finite(p.X) || !finite(p.Y) || !finite(v.X) || !finite(v.Y) {
			return false
		}
	}
	for _, t := range f.Temperatures {
		if !finite(t) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// StepStats counts what happened during one tick.
type StepStats struct {
	WallHits   int
	Candidates int
	Resolved   int
	Separating int
	Degenerate int
	Clamped    int
	// Confined counts particles pulled back onto a wall's inner face.
	Confined int
}

func (s StepStats) Add(o StepStats) StepStats {
	return StepStats{
		WallHits:   s.WallHits + o.WallHits,
		Candidates: s.Candidates + o.Candidates,
		Resolved:   s.Resolved + o.Resolved,
		Separating: s.Separating + o.Separating,
		Degenerate: s.Degenerate + o.Degenerate,
		Clamped:    s.Clamped + o.Clamped,
		Confined:   s.Confined + o.Confined,
	}
}

type System interface {
	Step(dt float64) (StepStats, error)
	Snapshot(f *Frame)
}

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f *Frame, stats StepStats)
}

// RunState is the two-state run control for interactive drivers. When
// Paused no tick executes and particle state is frozen.
type RunState uint8

const (
	Running RunState = iota
	Paused
)

func (s RunState) Toggle() RunState {
	if s == Running {
		return Paused
	}
	return Running
}

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("RunState(%d)", uint8(s))
	}
}

type Config struct {
	Dt       float64
	Duration float64
	// SampleEvery records metric series every n ticks (1 when zero).
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60.0,
		Duration:      10.0,
		SampleEvery:   6,
		ValidateState: true,
	}
}

type Result struct {
	Times      []float64
	Series     map[string][]float64
	Metrics    map[string]float64
	Stats      StepStats
	StepsTaken int
	Errors     []error
	Final      *Frame
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
