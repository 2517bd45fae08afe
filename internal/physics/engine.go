package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/meshsim/internal/mesh"
)

const (
	DefaultTimeStep  float32 = 0.01
	DefaultStiffness float32 = 1000.0
	DefaultDamping   float32 = 10.0

	// Epsilon is the spring length below which no force is applied.
	Epsilon float32 = 1e-6
)

// DefaultGravity points down the Y axis.
var DefaultGravity = mgl32.Vec3{0, -9.81, 0}

// ErrUnknownParam indicates a parameter name the engine does not expose.
var ErrUnknownParam = errors.New("physics: unknown parameter")

// Drag names the vertex currently driven from outside, if any.
type Drag struct {
	Index  int
	Active bool
}

// NoDrag means every vertex takes part in the simulation.
var NoDrag = Drag{}

// Dragging marks vertex i as externally controlled.
func Dragging(i int) Drag { return Drag{Index: i, Active: true} }

func (d Drag) is(i int) bool { return d.Active && d.Index == i }

// Engine advances a mesh using springs, damping and gravity.
// It holds configuration only; simulation time belongs to the caller.
type Engine struct {
	Springs  []Spring
	TimeStep float32
	Gravity  mgl32.Vec3

	// Defaults for springs created by InitSprings.
	Stiffness float32
	Damping   float32
}

type Option func(*Engine)

func WithTimeStep(dt float32) Option      { return func(e *Engine) { e.TimeStep = dt } }
func WithGravity(g mgl32.Vec3) Option     { return func(e *Engine) { e.Gravity = g } }
func WithStiffness(k float32) Option      { return func(e *Engine) { e.Stiffness = k } }
func WithDamping(c float32) Option        { return func(e *Engine) { e.Damping = c } }
func WithSprings(springs []Spring) Option { return func(e *Engine) { e.Springs = springs } }

func New(opts ...Option) *Engine {
	e := &Engine{
		TimeStep:  DefaultTimeStep,
		Gravity:   DefaultGravity,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Update advances m by one time step: gravity, then spring forces, then
// Verlet integration. The dragged vertex is neither forced nor integrated,
// and pinned vertices never move.
func (e *Engine) Update(m *mesh.Mesh, drag Drag) {
	verts := m.Vertices

	for i := range verts {
		if drag.is(i) {
			continue
		}
		verts[i].Acceleration = e.Gravity
	}

	for _, s := range e.Springs {
		a, b := verts[s.A], verts[s.B]

		delta := a.Position.Sub(b.Position)
		distance := delta.Len()
		if distance <= Epsilon {
			continue
		}

		direction := delta.Mul(1 / distance)
		stretch := distance - s.RestLength
		springForce := direction.Mul(s.Stiffness * stretch)

		relVel := a.Position.Sub(a.OldPosition).Sub(b.Position.Sub(b.OldPosition))
		dampingForce := direction.Mul(s.Damping * relVel.Dot(direction))

		force := springForce.Add(dampingForce)

		if !drag.is(s.A) && a.Mass > 0 {
			verts[s.A].Acceleration = verts[s.A].Acceleration.Sub(force.Mul(1 / a.Mass))
		}
		if !drag.is(s.B) && b.Mass > 0 {
			verts[s.B].Acceleration = verts[s.B].Acceleration.Add(force.Mul(1 / b.Mass))
		}
	}

	dt2 := e.TimeStep * e.TimeStep
	for i := range verts {
		v := &verts[i]
		if drag.is(i) || v.Mass == 0 {
			continue
		}
		prev := v.Position
		v.Position = v.Position.Add(v.Position.Sub(v.OldPosition)).Add(v.Acceleration.Mul(dt2))
		v.OldPosition = prev
	}
}

// Params implements the configurable-model contract used by sweeps and the viewer.
func (e *Engine) Params() map[string]float64 {
	return map[string]float64{
		"dt":        float64(e.TimeStep),
		"gravity":   float64(e.Gravity.Y()),
		"stiffness": float64(e.Stiffness),
		"damping":   float64(e.Damping),
	}
}

// SetParam changes one parameter. Stiffness and damping are also written
// through to every existing spring.
func (e *Engine) SetParam(name string, value float64) error {
	v := float32(value)
	switch name {
	case "dt":
		e.TimeStep = v
	case "gravity":
		e.Gravity = mgl32.Vec3{0, v, 0}
	case "stiffness":
		e.Stiffness = v
		for i := range e.Springs {
			e.Springs[i].Stiffness = v
		}
	case "damping":
		e.Damping = v
		for i := range e.Springs {
			e.Springs[i].Damping = v
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}
