package physics

import (
	"github.com/san-kum/meshsim/internal/mesh"
)

// Spring connects vertices A < B.
type Spring struct {
	A, B       int
	RestLength float32
	Stiffness  float32
	Damping    float32
}

type edge struct{ a, b uint32 }

func canonical(v1, v2 uint32) edge {
	if v1 < v2 {
		return edge{v1, v2}
	}
	return edge{v2, v1}
}

// InitSprings replaces the spring set with one spring per distinct triangle
// edge of m, in the order edges are first seen. Rest lengths come from the
// current vertex positions.
func (e *Engine) InitSprings(m *mesh.Mesh) {
	n := m.TriangleCount()
	seen := make(map[edge]struct{}, n*3/2)
	springs := make([]Spring, 0, n*3/2)

	for t := 0; t < n; t++ {
		a, b, c := m.Triangle(t)
		for _, ed := range [3]edge{canonical(a, b), canonical(b, c), canonical(c, a)} {
			if _, ok := seen[ed]; ok {
				continue
			}
			seen[ed] = struct{}{}

			pa := m.Vertices[ed.a].Position
			pb := m.Vertices[ed.b].Position
			springs = append(springs, Spring{
				A:          int(ed.a),
				B:          int(ed.b),
				RestLength: pa.Sub(pb).Len(),
				Stiffness:  e.Stiffness,
				Damping:    e.Damping,
			})
		}
	}

	e.Springs = springs
}
