// Package controller couples a mesh, its physics engine and the drag state
// of a single interactive session.
package controller

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/san-kum/meshsim/internal/mesh"
	"github.com/san-kum/meshsim/internal/physics"
)

// ReleaseMode decides what velocity a dragged vertex carries when released.
type ReleaseMode int

const (
	// ReleaseHold keeps OldPosition equal to Position during a drag, so the
	// vertex is released at rest.
	ReleaseHold ReleaseMode = iota
	// ReleaseThrow keeps OldPosition one move behind, so the vertex is
	// released with the displacement of the last move as its per-step velocity.
	ReleaseThrow
)

func (r ReleaseMode) String() string {
	switch r {
	case ReleaseHold:
		return "hold"
	case ReleaseThrow:
		return "throw"
	default:
		return fmt.Sprintf("ReleaseMode(%d)", int(r))
	}
}

// ParseReleaseMode accepts "hold" or "throw".
func ParseReleaseMode(s string) (ReleaseMode, error) {
	switch s {
	case "hold", "":
		return ReleaseHold, nil
	case "throw":
		return ReleaseThrow, nil
	default:
		return 0, fmt.Errorf("unknown release mode: %s", s)
	}
}

// Controller owns one mesh and one engine. It is not safe for concurrent use;
// a session drives it from a single goroutine.
type Controller struct {
	mesh      *mesh.Mesh
	engine    *physics.Engine
	positions []float32
	drag      physics.Drag
	release   ReleaseMode
	log       *zap.Logger
}

type config struct {
	engineOpts []physics.Option
	release    ReleaseMode
	pins       []uint32
	log        *zap.Logger
}

type Option func(*config)

// WithEngine passes options to the physics engine.
func WithEngine(opts ...physics.Option) Option {
	return func(c *config) { c.engineOpts = append(c.engineOpts, opts...) }
}

func WithReleaseMode(r ReleaseMode) Option { return func(c *config) { c.release = r } }

// WithPins gives the listed vertices zero mass before springs are built.
func WithPins(ids ...uint32) Option {
	return func(c *config) { c.pins = append(c.pins, ids...) }
}

func WithLogger(l *zap.Logger) Option { return func(c *config) { c.log = l } }

// New builds the mesh, derives springs from its triangles and caches the
// initial position buffer.
func New(positions []float32, indices []uint32, opts ...Option) (*Controller, error) {
	cfg := config{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := mesh.New(positions, indices)
	if err != nil {
		return nil, err
	}
	for _, id := range cfg.pins {
		if err := m.Pin(int(id)); err != nil {
			return nil, fmt.Errorf("pin: %w", err)
		}
	}

	eng := physics.New(cfg.engineOpts...)
	eng.InitSprings(m)

	c := &Controller{
		mesh:      m,
		engine:    eng,
		positions: m.FlattenedPositions(),
		release:   cfg.release,
		log:       cfg.log,
	}
	c.log.Debug("controller ready",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("springs", len(eng.Springs)),
		zap.Int("pinned", len(cfg.pins)),
		zap.Stringer("release", cfg.release),
	)
	return c, nil
}

// Tick advances the simulation by dt seconds and refreshes the position buffer.
func (c *Controller) Tick(dt float32) {
	c.engine.TimeStep = dt
	c.engine.Update(c.mesh, c.drag)
	c.positions = c.mesh.AppendPositions(c.positions[:0])
	if ce := c.log.Check(zap.DebugLevel, "tick"); ce != nil {
		ce.Write(zap.Float32("dt", dt), zap.Bool("dragging", c.drag.Active))
	}
}

// DragStart grabs vertex id and moves it to (x, y, z). OldPosition is left
// alone, so the jump counts as velocity if the vertex is released unmoved.
func (c *Controller) DragStart(id uint32, x, y, z float32) error {
	if err := c.mesh.SetPosition(int(id), mgl32.Vec3{x, y, z}); err != nil {
		return err
	}
	c.drag = physics.Dragging(int(id))
	c.log.Debug("drag start", zap.Uint32("vertex", id), zap.Float32s("at", []float32{x, y, z}))
	return nil
}

// DragMove moves the grabbed vertex, if any.
func (c *Controller) DragMove(x, y, z float32) {
	if !c.drag.Active {
		return
	}
	v := &c.mesh.Vertices[c.drag.Index]
	next := mgl32.Vec3{x, y, z}
	switch c.release {
	case ReleaseThrow:
		v.OldPosition = v.Position
	default:
		v.OldPosition = next
	}
	v.Position = next
	if ce := c.log.Check(zap.DebugLevel, "drag move"); ce != nil {
		ce.Write(zap.Int("vertex", c.drag.Index), zap.Float32s("to", []float32{x, y, z}))
	}
}

// DragEnd releases the grabbed vertex; it rejoins the simulation on the next Tick.
func (c *Controller) DragEnd() {
	if c.drag.Active {
		c.log.Debug("drag end", zap.Int("vertex", c.drag.Index))
	}
	c.drag = physics.NoDrag
}

// Dragged returns the grabbed vertex id.
func (c *Controller) Dragged() (uint32, bool) {
	return uint32(c.drag.Index), c.drag.Active
}

func (c *Controller) VertexCount() int { return c.mesh.VertexCount() }
func (c *Controller) SpringCount() int { return len(c.engine.Springs) }

// Positions returns the cached x,y,z buffer. It is overwritten by the next Tick.
func (c *Controller) Positions() []float32 { return c.positions }

func (c *Controller) Mesh() *mesh.Mesh             { return c.mesh }
func (c *Controller) Engine() *physics.Engine      { return c.engine }
func (c *Controller) Release() ReleaseMode         { return c.release }
func (c *Controller) Energy() physics.EnergyReport { return c.engine.Energy(c.mesh) }

// Reset drops any drag and returns the mesh to its rest pose.
func (c *Controller) Reset() {
	c.drag = physics.NoDrag
	c.mesh.Reset()
	c.positions = c.mesh.AppendPositions(c.positions[:0])
}

// Nearest returns the vertex closest to p.
func (c *Controller) Nearest(x, y, z float32) (uint32, bool) {
	p := mgl32.Vec3{x, y, z}
	best, found := 0, false
	var bestDist float32
	for i, v := range c.mesh.Vertices {
		d := v.Position.Sub(p)
		dist := d.Dot(d)
		if !found || dist < bestDist {
			best, bestDist, found = i, dist, true
		}
	}
	return uint32(best), found
}
