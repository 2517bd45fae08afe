package sim

import (
	"github.com/san-kum/meshsim/internal/controller"
)

// Metric accumulates a measurement over the frames of a run.
type Metric interface {
	Name() string
	Observe(c *controller.Controller, t float64)
	Value() float64
	Reset()
}

// Observer is told about every frame after it is ticked. positions is the
// controller's buffer and is only valid during the call.
type Observer interface {
	OnFrame(frame int, t float64, positions []float32)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(frame int, t float64, positions []float32)

func (f ObserverFunc) OnFrame(frame int, t float64, positions []float32) { f(frame, t, positions) }

type RunConfig struct {
	Dt          float32
	Frames      int
	RecordEvery int // 0 records nothing but the initial and final frames
}

// Frame is a recorded snapshot of every vertex position.
type Frame struct {
	Index     int       `json:"frame"`
	Time      float64   `json:"time"`
	Positions []float32 `json:"positions"`
}

type Result struct {
	Frames     []Frame
	Energy     []float64 // total energy after every tick
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded frame.
func (r *Result) Final() (Frame, bool) {
	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}
