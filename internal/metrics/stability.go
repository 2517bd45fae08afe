package metrics

import (
	"github.com/san-kum/meshsim/internal/controller"
)

// Stability is the fraction of frames in which every vertex stayed within
// threshold of its rest position.
type Stability struct {
	name       string
	threshold  float32
	violations int
	samples    int
}

func NewStability(threshold float32) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(c *controller.Controller, t float64) {
	s.samples++
	for _, v := range c.Mesh().Vertices {
		if v.Position.Sub(v.Rest).Len() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
