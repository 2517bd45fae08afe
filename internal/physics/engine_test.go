package physics_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/meshsim/internal/mesh"
	"github.com/san-kum/meshsim/internal/physics"
)

func newMesh(positions []float32, indices []uint32) *mesh.Mesh {
	m, err := mesh.New(positions, indices)
	Expect(err).NotTo(HaveOccurred())
	return m
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}

var _ = Describe("Engine", func() {
	It("starts with the documented defaults", func() {
		eng := physics.New()
		Expect(eng.Springs).To(BeEmpty())
		Expect(eng.TimeStep).To(Equal(float32(0.01)))
		Expect(eng.Gravity).To(Equal(mgl32.Vec3{0, -9.81, 0}))
		Expect(eng.Stiffness).To(Equal(float32(1000)))
		Expect(eng.Damping).To(Equal(float32(10)))
	})

	It("applies options", func() {
		eng := physics.New(
			physics.WithTimeStep(0.5),
			physics.WithGravity(mgl32.Vec3{}),
			physics.WithStiffness(5),
			physics.WithDamping(1),
		)
		Expect(eng.TimeStep).To(Equal(float32(0.5)))
		Expect(eng.Gravity).To(Equal(mgl32.Vec3{}))
		Expect(eng.Stiffness).To(Equal(float32(5)))
		Expect(eng.Damping).To(Equal(float32(1)))
	})

	Describe("InitSprings", func() {
		It("creates one spring per edge of a single triangle", func() {
			m := newMesh([]float32{0, 0, 0, 3, 0, 0, 0, 4, 0}, []uint32{0, 1, 2})
			eng := physics.New()
			eng.InitSprings(m)

			Expect(eng.Springs).To(HaveLen(3))
			Expect(eng.Springs[0]).To(Equal(physics.Spring{A: 0, B: 1, RestLength: 3, Stiffness: 1000, Damping: 10}))
			Expect(eng.Springs[1].A).To(Equal(1))
			Expect(eng.Springs[1].B).To(Equal(2))
			Expect(eng.Springs[1].RestLength).To(BeNumerically("~", 5, 1e-6))
			Expect(eng.Springs[2]).To(Equal(physics.Spring{A: 0, B: 2, RestLength: 4, Stiffness: 1000, Damping: 10}))
		})

		It("deduplicates a shared edge", func() {
			m := newMesh([]float32{
				0, 0, 0,
				1, 0, 0,
				0, 1, 0,
				1, 1, 0,
			}, []uint32{0, 1, 2, 0, 3, 1})
			eng := physics.New()
			eng.InitSprings(m)

			Expect(eng.Springs).To(HaveLen(5))
			pairs := make([][2]int, 0, len(eng.Springs))
			for _, s := range eng.Springs {
				Expect(s.A).To(BeNumerically("<", s.B))
				pairs = append(pairs, [2]int{s.A, s.B})
			}
			Expect(pairs).To(Equal([][2]int{{0, 1}, {1, 2}, {0, 2}, {0, 3}, {1, 3}}))
		})

		It("uses the engine stiffness and damping", func() {
			m := newMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{2, 1, 0})
			eng := physics.New(physics.WithStiffness(42), physics.WithDamping(0.5))
			eng.InitSprings(m)
			for _, s := range eng.Springs {
				Expect(s.Stiffness).To(Equal(float32(42)))
				Expect(s.Damping).To(Equal(float32(0.5)))
			}
		})

		It("replaces springs from a previous call", func() {
			m := newMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2})
			eng := physics.New()
			eng.InitSprings(m)
			eng.InitSprings(m)
			Expect(eng.Springs).To(HaveLen(3))
		})
	})

	Describe("Update", func() {
		It("pulls a stretched pair together", func() {
			m := newMesh([]float32{0, 0, 0, 1, 0, 0}, nil)
			eng := physics.New(physics.WithSprings([]physics.Spring{
				{A: 0, B: 1, RestLength: 0.5, Stiffness: 100},
			}))

			eng.Update(m, physics.NoDrag)

			Expect(m.Vertices[0].Position.X()).To(BeNumerically(">", 0))
			Expect(m.Vertices[1].Position.X()).To(BeNumerically("<", 1))
		})

		It("accumulates Hooke acceleration with the right sign", func() {
			m := newMesh([]float32{0, 0, 0, 2, 0, 0}, nil)
			eng := physics.New(
				physics.WithGravity(mgl32.Vec3{}),
				physics.WithSprings([]physics.Spring{{A: 0, B: 1, RestLength: 1, Stiffness: 100}}),
			)

			eng.Update(m, physics.NoDrag)

			Expect(m.Vertices[0].Acceleration.X()).To(BeNumerically("~", 100, 1e-3))
			Expect(m.Vertices[1].Acceleration.X()).To(BeNumerically("~", -100, 1e-3))
		})

		It("divides spring force by mass", func() {
			m := newMesh([]float32{0, 0, 0, 2, 0, 0}, nil)
			Expect(m.SetMass(1, 4)).To(Succeed())
			eng := physics.New(
				physics.WithGravity(mgl32.Vec3{}),
				physics.WithSprings([]physics.Spring{{A: 0, B: 1, RestLength: 1, Stiffness: 100}}),
			)

			eng.Update(m, physics.NoDrag)

			Expect(m.Vertices[1].Acceleration.X()).To(BeNumerically("~", -25, 1e-3))
		})

		It("damps relative velocity along the spring axis", func() {
			m := newMesh([]float32{0, 0, 0, 1, 0, 0}, nil)
			// B moving away from A at 0.1 per step, spring at rest length.
			Expect(m.SetOldPosition(1, mgl32.Vec3{0.9, 0, 0})).To(Succeed())
			eng := physics.New(
				physics.WithGravity(mgl32.Vec3{}),
				physics.WithSprings([]physics.Spring{{A: 0, B: 1, RestLength: 1, Damping: 10}}),
			)

			eng.Update(m, physics.NoDrag)

			// direction = (-1,0,0), vrel = (-0.1,0,0), force = 10*0.1*(-1,0,0)
			Expect(m.Vertices[0].Acceleration.X()).To(BeNumerically("~", 1, 1e-5))
			Expect(m.Vertices[1].Acceleration.X()).To(BeNumerically("~", -1, 1e-5))
		})

		It("skips coincident endpoints without producing NaN", func() {
			m := newMesh([]float32{0, 0, 0, 0, 0, 0}, nil)
			eng := physics.New(physics.WithSprings([]physics.Spring{
				{A: 0, B: 1, RestLength: 0.5, Stiffness: 100},
			}))

			eng.Update(m, physics.NoDrag)

			for _, v := range m.Vertices {
				Expect(finite(v.Position)).To(BeTrue())
				Expect(v.Position.X()).To(Equal(float32(0)))
				Expect(v.Acceleration).To(Equal(eng.Gravity))
			}
			Expect(physics.Valid(m)).To(BeTrue())
		})

		It("never moves a zero-mass vertex but moves its neighbour", func() {
			m := newMesh([]float32{0, 0, 0, 1, 0, 0}, nil)
			Expect(m.Pin(0)).To(Succeed())
			eng := physics.New(physics.WithSprings([]physics.Spring{
				{A: 0, B: 1, RestLength: 0.5, Stiffness: 100},
			}))

			for i := 0; i < 20; i++ {
				eng.Update(m, physics.NoDrag)
			}

			Expect(m.Vertices[0].Position).To(Equal(mgl32.Vec3{0, 0, 0}))
			Expect(m.Vertices[0].OldPosition).To(Equal(mgl32.Vec3{0, 0, 0}))
			Expect(m.Vertices[1].Position).NotTo(Equal(mgl32.Vec3{1, 0, 0}))
		})

		It("follows the Verlet recurrence under constant gravity", func() {
			m := newMesh([]float32{0, 0, 0}, nil)
			eng := physics.New(
				physics.WithTimeStep(0.1),
				physics.WithGravity(mgl32.Vec3{0, -10, 0}),
			)

			eng.Update(m, physics.NoDrag)
			Expect(m.Vertices[0].Position.Y()).To(BeNumerically("~", -0.1, 1e-6))
			Expect(m.Vertices[0].OldPosition.Y()).To(BeNumerically("~", 0, 1e-6))

			eng.Update(m, physics.NoDrag)
			Expect(m.Vertices[0].Position.Y()).To(BeNumerically("~", -0.3, 1e-6))
			Expect(m.Vertices[0].OldPosition.Y()).To(BeNumerically("~", -0.1, 1e-6))

			// y(n) = 2y(n-1) - y(n-2) + g*dt²
			prev, cur := float32(-0.1), float32(-0.3)
			for n := 3; n <= 10; n++ {
				eng.Update(m, physics.NoDrag)
				next := 2*cur - prev - 0.1
				Expect(m.Vertices[0].Position.Y()).To(BeNumerically("~", next, 1e-4))
				prev, cur = cur, next
			}
			// closed form: -g dt² n(n+1)/2
			Expect(cur).To(BeNumerically("~", -0.1*10*11/2, 1e-3))
		})

		It("leaves the dragged vertex alone", func() {
			m := newMesh([]float32{0, 0, 0, 1, 0, 0}, nil)
			m.Vertices[0].Acceleration = mgl32.Vec3{7, 7, 7}
			eng := physics.New(physics.WithSprings([]physics.Spring{
				{A: 0, B: 1, RestLength: 0.5, Stiffness: 100, Damping: 10},
			}))

			eng.Update(m, physics.Dragging(0))

			Expect(m.Vertices[0].Position).To(Equal(mgl32.Vec3{0, 0, 0}))
			Expect(m.Vertices[0].Acceleration).To(Equal(mgl32.Vec3{7, 7, 7}))
			Expect(m.Vertices[1].Position.X()).To(BeNumerically("<", 1))
			Expect(m.Vertices[1].Position.Y()).To(BeNumerically("<", 0))
		})
	})

	Describe("parameters", func() {
		It("exposes and writes through stiffness and damping", func() {
			m := newMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2})
			eng := physics.New()
			eng.InitSprings(m)

			Expect(eng.SetParam("stiffness", 12)).To(Succeed())
			Expect(eng.SetParam("damping", 0.25)).To(Succeed())
			Expect(eng.SetParam("dt", 0.02)).To(Succeed())
			Expect(eng.SetParam("gravity", -1)).To(Succeed())

			for _, s := range eng.Springs {
				Expect(s.Stiffness).To(Equal(float32(12)))
				Expect(s.Damping).To(Equal(float32(0.25)))
			}
			params := eng.Params()
			Expect(params).To(HaveKeyWithValue("stiffness", 12.0))
			Expect(params["dt"]).To(BeNumerically("~", 0.02, 1e-6))
			Expect(eng.Gravity).To(Equal(mgl32.Vec3{0, -1, 0}))
		})

		It("rejects unknown names", func() {
			Expect(physics.New().SetParam("mass", 1)).To(MatchError(physics.ErrUnknownParam))
		})
	})

	Describe("Energy", func() {
		It("is zero at rest without gravity", func() {
			m := newMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2})
			eng := physics.New(physics.WithGravity(mgl32.Vec3{}))
			eng.InitSprings(m)
			Expect(eng.Energy(m).Total).To(BeNumerically("~", 0, 1e-9))
			Expect(eng.MaxStretch(m)).To(BeNumerically("~", 0, 1e-9))
		})

		It("counts elastic, kinetic and potential parts", func() {
			m := newMesh([]float32{0, 0, 0, 2, 0, 0}, nil)
			Expect(m.SetPosition(1, mgl32.Vec3{2, -1, 0})).To(Succeed())
			eng := physics.New(
				physics.WithTimeStep(1),
				physics.WithGravity(mgl32.Vec3{0, -10, 0}),
				physics.WithSprings([]physics.Spring{{A: 0, B: 1, RestLength: 2, Stiffness: 2}}),
			)

			r := eng.Energy(m)
			Expect(r.Kinetic).To(BeNumerically("~", 0.5, 1e-6))
			Expect(r.Potential).To(BeNumerically("~", -10, 1e-5))
			stretch := math.Sqrt(5) - 2
			Expect(r.Elastic).To(BeNumerically("~", stretch*stretch, 1e-5))
			Expect(r.Total).To(BeNumerically("~", r.Kinetic+r.Elastic+r.Potential, 1e-9))
			Expect(eng.MaxStretch(m)).To(BeNumerically("~", stretch/2, 1e-5))
		})
	})
})
