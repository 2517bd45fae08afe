package metrics

import (
	"github.com/san-kum/meshsim/internal/controller"
)

// Stretch is the largest spring strain seen over the run.
type Stretch struct {
	name string
	max  float64
}

func NewStretch() *Stretch { return &Stretch{name: "max_stretch"} }

func (s *Stretch) Name() string { return s.name }

func (s *Stretch) Observe(c *controller.Controller, t float64) {
	if v := c.Engine().MaxStretch(c.Mesh()); v > s.max {
		s.max = v
	}
}

func (s *Stretch) Value() float64 { return s.max }
func (s *Stretch) Reset()         { s.max = 0 }

// Displacement averages, over frames, the mean distance of vertices from
// their rest positions.
type Displacement struct {
	name    string
	sum     float64
	samples int
}

func NewDisplacement() *Displacement { return &Displacement{name: "displacement"} }

func (d *Displacement) Name() string { return d.name }

func (d *Displacement) Observe(c *controller.Controller, t float64) {
	verts := c.Mesh().Vertices
	if len(verts) == 0 {
		return
	}
	var total float64
	for _, v := range verts {
		total += float64(v.Position.Sub(v.Rest).Len())
	}
	d.sum += total / float64(len(verts))
	d.samples++
}

func (d *Displacement) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

func (d *Displacement) Reset() {
	d.sum = 0
	d.samples = 0
}
