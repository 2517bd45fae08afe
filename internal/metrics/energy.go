package metrics

import (
	"math"

	"github.com/san-kum/meshsim/internal/controller"
)

// Energy reports the total energy seen at the last observed frame.
type Energy struct {
	name    string
	last    float64
	samples int
}

func NewEnergy() *Energy { return &Energy{name: "energy"} }

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(c *controller.Controller, t float64) {
	e.last = c.Energy().Total
	e.samples++
}

func (e *Energy) Value() float64 { return e.last }

func (e *Energy) Reset() {
	e.last = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure from the first observed
// total energy. A dragged vertex pumps energy in, so the value is only
// meaningful for free runs.
type EnergyDrift struct {
	name    string
	initial float64
	drift   float64
	samples int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{name: "energy_drift"} }

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(c *controller.Controller, t float64) {
	energy := c.Energy().Total
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		e.drift = math.Max(e.drift, math.Abs(energy-e.initial)/math.Abs(e.initial))
	}
}

func (e *EnergyDrift) Value() float64 { return e.drift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.drift = 0
	e.samples = 0
}
