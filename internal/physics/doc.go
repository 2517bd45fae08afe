// Package physics turns mesh topology into a spring network and advances a
// [mesh.Mesh] one step at a time.
//
// Each call to [Engine.Update] runs three phases in order:
//
//   - gravity: every free vertex starts from Acceleration = Gravity
//   - springs: Hooke force plus velocity damping along each spring axis
//   - Verlet: p' = p + (p - old) + a*dt²
//
// Springs come from [Engine.InitSprings], one per distinct triangle edge.
// Coincident spring endpoints (length at most [Epsilon]) produce no force.
//
// # Example
//
//	eng := physics.New(physics.WithGravity(mgl32.Vec3{0, -10, 0}))
//	eng.InitSprings(m)
//	for frame := 0; frame < 60; frame++ {
//	    eng.Update(m, physics.NoDrag)
//	}
package physics
