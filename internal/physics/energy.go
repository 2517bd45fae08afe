package physics

import (
	"math"

	"github.com/san-kum/meshsim/internal/mesh"
)

// EnergyReport splits the mesh energy into its parts.
type EnergyReport struct {
	Kinetic   float64
	Elastic   float64
	Potential float64 // gravitational, relative to the rest pose
	Total     float64
}

// Energy estimates the energy of m using the Verlet velocity (p-old)/dt.
func (e *Engine) Energy(m *mesh.Mesh) EnergyReport {
	var r EnergyReport
	dt := float64(e.TimeStep)

	for _, v := range m.Vertices {
		if v.Mass == 0 {
			continue
		}
		mass := float64(v.Mass)
		if dt > 0 {
			vel := v.Velocity()
			speed2 := float64(vel.Dot(vel)) / (dt * dt)
			r.Kinetic += 0.5 * mass * speed2
		}
		r.Potential -= mass * float64(e.Gravity.Dot(v.Position.Sub(v.Rest)))
	}

	for _, s := range e.Springs {
		d := m.Vertices[s.A].Position.Sub(m.Vertices[s.B].Position).Len()
		stretch := float64(d - s.RestLength)
		r.Elastic += 0.5 * float64(s.Stiffness) * stretch * stretch
	}

	r.Total = r.Kinetic + r.Elastic + r.Potential
	return r
}

// MaxStretch returns the largest |stretch|/rest over all springs.
// Springs with zero rest length are ignored.
func (e *Engine) MaxStretch(m *mesh.Mesh) float64 {
	max := 0.0
	for _, s := range e.Springs {
		if s.RestLength <= Epsilon {
			continue
		}
		d := m.Vertices[s.A].Position.Sub(m.Vertices[s.B].Position).Len()
		strain := math.Abs(float64(d-s.RestLength)) / float64(s.RestLength)
		if strain > max {
			max = strain
		}
	}
	return max
}

// Valid reports whether every position is finite.
func Valid(m *mesh.Mesh) bool {
	for _, v := range m.Vertices {
		for _, c := range v.Position {
			f := float64(c)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return false
			}
		}
	}
	return true
}
