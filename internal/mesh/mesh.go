package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMass is the mass every vertex starts with.
const DefaultMass float32 = 1.0

// Vertex is the per-vertex kinematic state.
type Vertex struct {
	Position     mgl32.Vec3
	OldPosition  mgl32.Vec3
	Acceleration mgl32.Vec3
	Rest         mgl32.Vec3 // position at construction
	Mass         float32
}

// Pinned reports whether forces are unable to move the vertex.
func (v Vertex) Pinned() bool { return v.Mass == 0 }

// Velocity is the one-step displacement implied by Verlet state.
func (v Vertex) Velocity() mgl32.Vec3 { return v.Position.Sub(v.OldPosition) }

// Mesh is an ordered vertex list plus triangle indices.
//
// Vertices is exported so the physics engine can walk it by index; its length
// must not shrink, since indices were validated against it.
type Mesh struct {
	Vertices []Vertex
	indices  []uint32
}

// New builds a mesh from flat xyz positions and triangle indices.
func New(positions []float32, indices []uint32) (*Mesh, error) {
	if len(positions)%3 != 0 || len(indices)%3 != 0 {
		return nil, ErrInvalidTopology
	}

	n := len(positions) / 3
	vertices := make([]Vertex, n)
	for i := 0; i < n; i++ {
		p := mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
		vertices[i] = Vertex{
			Position:    p,
			OldPosition: p,
			Rest:        p,
			Mass:        DefaultMass,
		}
	}

	for _, idx := range indices {
		if int(idx) >= n {
			return nil, &IndexError{Index: int(idx), Count: n}
		}
	}

	idx := make([]uint32, len(indices))
	copy(idx, indices)

	return &Mesh{Vertices: vertices, indices: idx}, nil
}

func (m *Mesh) VertexCount() int   { return len(m.Vertices) }
func (m *Mesh) TriangleCount() int { return len(m.indices) / 3 }

// Triangle returns the vertex ids of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	t := m.indices[i*3 : i*3+3]
	return t[0], t[1], t[2]
}

// Indices returns a copy of the triangle index list.
func (m *Mesh) Indices() []uint32 {
	out := make([]uint32, len(m.indices))
	copy(out, m.indices)
	return out
}

// FlattenedPositions returns x,y,z for every vertex in index order.
func (m *Mesh) FlattenedPositions() []float32 {
	return m.AppendPositions(make([]float32, 0, len(m.Vertices)*3))
}

// AppendPositions appends x,y,z for every vertex to dst.
func (m *Mesh) AppendPositions(dst []float32) []float32 {
	for i := range m.Vertices {
		p := m.Vertices[i].Position
		dst = append(dst, p[0], p[1], p[2])
	}
	return dst
}

func (m *Mesh) check(i int) error {
	if i < 0 || i >= len(m.Vertices) {
		return &IndexError{Index: i, Count: len(m.Vertices)}
	}
	return nil
}

// Vertex returns a copy of vertex i.
func (m *Mesh) Vertex(i int) (Vertex, error) {
	if err := m.check(i); err != nil {
		return Vertex{}, err
	}
	return m.Vertices[i], nil
}

// SetPosition moves vertex i without touching OldPosition.
func (m *Mesh) SetPosition(i int, p mgl32.Vec3) error {
	if err := m.check(i); err != nil {
		return err
	}
	m.Vertices[i].Position = p
	return nil
}

func (m *Mesh) SetOldPosition(i int, p mgl32.Vec3) error {
	if err := m.check(i); err != nil {
		return err
	}
	m.Vertices[i].OldPosition = p
	return nil
}

func (m *Mesh) SetMass(i int, mass float32) error {
	if err := m.check(i); err != nil {
		return err
	}
	if mass < 0 {
		return ErrInvalidMass
	}
	m.Vertices[i].Mass = mass
	return nil
}

// Pin sets the mass of vertex i to zero.
func (m *Mesh) Pin(i int) error {
	return m.SetMass(i, 0)
}

// ApplyForce adds f to the acceleration of vertex i. The next physics update
// resets accelerations, so this only matters between updates.
func (m *Mesh) ApplyForce(i int, f mgl32.Vec3) error {
	if err := m.check(i); err != nil {
		return err
	}
	m.Vertices[i].Acceleration = m.Vertices[i].Acceleration.Add(f)
	return nil
}

// Reset returns every vertex to its rest position at zero velocity.
func (m *Mesh) Reset() {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = v.Rest
		v.OldPosition = v.Rest
		v.Acceleration = mgl32.Vec3{}
	}
}

// Bounds returns the axis-aligned box around current positions.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v.Position[k] < min[k] {
				min[k] = v.Position[k]
			}
			if v.Position[k] > max[k] {
				max[k] = v.Position[k]
			}
		}
	}
	return
}
