package viz

import (
	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
)

// Cursor eases a 3D drag target with one harmonica spring per axis.
type Cursor struct {
	spring harmonica.Spring
	pos    [3]float64
	vel    [3]float64
	Target mgl32.Vec3
}

func NewCursor(fps int, frequency, damping float64) *Cursor {
	return &Cursor{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// Jump puts the cursor and its target at p with no motion.
func (c *Cursor) Jump(p mgl32.Vec3) {
	c.Target = p
	for i := range c.pos {
		c.pos[i] = float64(p[i])
		c.vel[i] = 0
	}
}

func (c *Cursor) Nudge(d mgl32.Vec3) { c.Target = c.Target.Add(d) }

// Step advances the springs one frame toward Target and returns the position.
func (c *Cursor) Step() mgl32.Vec3 {
	for i := range c.pos {
		c.pos[i], c.vel[i] = c.spring.Update(c.pos[i], c.vel[i], float64(c.Target[i]))
	}
	return c.Position()
}

func (c *Cursor) Position() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.pos[0]), float32(c.pos[1]), float32(c.pos[2])}
}
