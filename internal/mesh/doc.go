// Package mesh holds the kinematic state and topology of a deformable
// triangle mesh.
//
// A [Mesh] owns its vertices by value and addresses them by index; nothing
// outside the package holds a reference to an individual vertex. Each vertex
// carries the state Verlet integration needs:
//
//   - Position: where the vertex is now
//   - OldPosition: where it was one step ago (implicit velocity)
//   - Acceleration: force per unit mass, rebuilt every step
//   - Mass: zero marks a pinned vertex
//
// Triangle indices are validated against the vertex count at construction,
// so later code may index the vertex slice without bounds surprises.
//
// # Example
//
//	m, err := mesh.New(positions, indices)
//	if errors.Is(err, mesh.ErrInvalidTopology) {
//	    // positions or indices not a multiple of 3
//	}
//	buf := m.AppendPositions(buf[:0])
package mesh
