package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minZoom = 0.1
	maxZoom = 10
)

// Camera projects mesh coordinates onto the canvas. Points are first
// normalised into the unit sphere around the fitted centre, then rotated,
// zoomed and put through a mild perspective.
type Camera struct {
	Center     mgl32.Vec3
	Radius     float32
	RotX, RotY float32
	Zoom       float32
	Distance   float32
}

func NewCamera() *Camera {
	return &Camera{Radius: 1, Zoom: 1, Distance: 4}
}

// Fit centres the camera on the box [min, max].
func (c *Camera) Fit(min, max mgl32.Vec3) {
	c.Center = min.Add(max).Mul(0.5)
	c.Radius = max.Sub(min).Len() / 2
	if c.Radius < 1e-6 {
		c.Radius = 1
	}
}

func (c *Camera) RotateX(a float32) { c.RotX += a }
func (c *Camera) RotateY(a float32) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = float32(math.Min(maxZoom, float64(c.Zoom)*1.2)) }
func (c *Camera) ZoomOut()          { c.Zoom = float32(math.Max(minZoom, float64(c.Zoom)/1.2)) }

func (c *Camera) rotation() mgl32.Mat3 {
	return mgl32.Rotate3DX(c.RotX).Mul3(mgl32.Rotate3DY(c.RotY))
}

// Project maps p to dot coordinates on a w x h dot canvas. It also returns
// the view depth and whether the point lands on screen.
func (c *Camera) Project(p mgl32.Vec3, w, h int) (int, int, float32, bool) {
	q := c.rotation().Mul3x1(p.Sub(c.Center).Mul(1 / c.Radius)).Mul(c.Zoom)
	if q.Z() >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - q.Z())
	half := float32(w)
	if h < w {
		half = float32(h)
	}
	half /= 2.2

	sx := int(q.X()*scale*half) + w/2
	sy := int(-q.Y()*scale*half) + h/2
	return sx, sy, q.Z(), sx >= 0 && sx < w && sy >= 0 && sy < h
}
