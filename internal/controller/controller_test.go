package controller_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/meshsim/internal/controller"
	"github.com/san-kum/meshsim/internal/mesh"
	"github.com/san-kum/meshsim/internal/physics"
)

func TestController(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Controller Suite")
}

// quad is two triangles sharing the 0-1 edge.
var (
	quadPositions = []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0}
	quadIndices   = []uint32{0, 1, 2, 0, 3, 1}
)

func vertex(c *controller.Controller, i int) mesh.Vertex {
	v, err := c.Mesh().Vertex(i)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Controller", func() {
	Describe("New", func() {
		It("builds the mesh, springs and position buffer", func() {
			c, err := controller.New(quadPositions, quadIndices)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.VertexCount()).To(Equal(4))
			Expect(c.SpringCount()).To(Equal(5))
			Expect(c.Positions()).To(Equal(quadPositions))
			_, dragging := c.Dragged()
			Expect(dragging).To(BeFalse())
			Expect(c.Release()).To(Equal(controller.ReleaseHold))
		})

		It("propagates invalid topology", func() {
			c, err := controller.New([]float32{0, 0}, nil)
			Expect(err).To(MatchError(mesh.ErrInvalidTopology))
			Expect(c).To(BeNil())
		})

		It("propagates out-of-range indices", func() {
			_, err := controller.New(quadPositions, []uint32{0, 1, 9})
			Expect(err).To(MatchError(mesh.ErrIndexOutOfRange))
		})

		It("pins vertices and rejects bad pins", func() {
			c, err := controller.New(quadPositions, quadIndices, controller.WithPins(2, 3))
			Expect(err).NotTo(HaveOccurred())
			Expect(vertex(c, 2).Pinned()).To(BeTrue())
			Expect(vertex(c, 0).Pinned()).To(BeFalse())

			_, err = controller.New(quadPositions, quadIndices, controller.WithPins(4))
			Expect(err).To(MatchError(mesh.ErrIndexOutOfRange))
		})

		It("logs construction at debug level", func() {
			core, logs := observer.New(zap.DebugLevel)
			_, err := controller.New(quadPositions, quadIndices, controller.WithLogger(zap.New(core)))
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.FilterMessage("controller ready").Len()).To(Equal(1))
		})

		It("logs ticks and drag moves at debug level only", func() {
			core, logs := observer.New(zap.DebugLevel)
			c, err := controller.New(quadPositions, quadIndices, controller.WithLogger(zap.New(core)))
			Expect(err).NotTo(HaveOccurred())

			Expect(c.DragStart(3, 1, 1, 0)).To(Succeed())
			c.DragMove(1.5, 1, 0)
			c.Tick(0.01)
			c.Tick(0.01)
			c.DragEnd()

			Expect(logs.FilterMessage("drag start").Len()).To(Equal(1))
			Expect(logs.FilterMessage("drag move").Len()).To(Equal(1))
			Expect(logs.FilterMessage("tick").Len()).To(Equal(2))
			Expect(logs.FilterMessage("drag end").Len()).To(Equal(1))

			quiet, quietLogs := observer.New(zap.InfoLevel)
			c, err = controller.New(quadPositions, quadIndices, controller.WithLogger(zap.New(quiet)))
			Expect(err).NotTo(HaveOccurred())
			c.Tick(0.01)
			Expect(quietLogs.Len()).To(BeZero())
		})
	})

	Describe("Tick", func() {
		It("uses the given dt and refreshes the buffer in place", func() {
			c, err := controller.New([]float32{0, 0, 0}, nil,
				controller.WithEngine(physics.WithGravity(mgl32.Vec3{0, -10, 0})))
			Expect(err).NotTo(HaveOccurred())

			view := c.Positions()
			c.Tick(0.1)
			Expect(c.Engine().TimeStep).To(Equal(float32(0.1)))
			Expect(c.Positions()[1]).To(BeNumerically("~", -0.1, 1e-6))
			Expect(view[1]).To(BeNumerically("~", -0.1, 1e-6))

			c.Tick(0.1)
			Expect(c.Positions()[1]).To(BeNumerically("~", -0.3, 1e-6))
			Expect(c.Positions()).To(HaveLen(3))
		})
	})

	Describe("dragging", func() {
		var c *controller.Controller

		BeforeEach(func() {
			var err error
			c, err = controller.New(quadPositions, quadIndices)
			Expect(err).NotTo(HaveOccurred())
		})

		It("moves the vertex on start without touching OldPosition", func() {
			Expect(c.DragStart(3, 2, 2, 0)).To(Succeed())

			id, ok := c.Dragged()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(uint32(3)))
			v := vertex(c, 3)
			Expect(v.Position).To(Equal(mgl32.Vec3{2, 2, 0}))
			Expect(v.OldPosition).To(Equal(mgl32.Vec3{1, 1, 0}))
		})

		It("rejects an unknown vertex and keeps drag state", func() {
			Expect(c.DragStart(4, 0, 0, 0)).To(MatchError(mesh.ErrIndexOutOfRange))
			_, ok := c.Dragged()
			Expect(ok).To(BeFalse())
		})

		It("ignores moves while idle", func() {
			c.DragMove(5, 5, 5)
			for i := 0; i < c.VertexCount(); i++ {
				Expect(vertex(c, i).Position).To(Equal(vertex(c, i).Rest))
			}
		})

		It("tracks move coordinates exactly and ignores forces while held", func() {
			Expect(c.DragStart(0, 0, 0, 0)).To(Succeed())
			targets := []mgl32.Vec3{{0.5, 0, 0}, {0.5, 3, 0}, {-2, 3, 1}}
			for _, p := range targets {
				c.DragMove(p[0], p[1], p[2])
				for i := 0; i < 5; i++ {
					c.Tick(0.016)
					Expect(vertex(c, 0).Position).To(Equal(p))
					Expect(c.Positions()[0:3]).To(Equal([]float32{p[0], p[1], p[2]}))
				}
			}
		})

		It("clears the drag on end", func() {
			Expect(c.DragStart(1, 1, 0, 0)).To(Succeed())
			c.DragEnd()
			_, ok := c.Dragged()
			Expect(ok).To(BeFalse())
			c.DragEnd()
		})

		It("resets to the rest pose", func() {
			Expect(c.DragStart(1, 4, 4, 4)).To(Succeed())
			c.Tick(0.01)
			c.Reset()
			_, ok := c.Dragged()
			Expect(ok).To(BeFalse())
			Expect(c.Positions()).To(Equal(quadPositions))
		})
	})

	Describe("release", func() {
		newFree := func(mode controller.ReleaseMode) *controller.Controller {
			c, err := controller.New([]float32{0, 0, 0}, nil,
				controller.WithReleaseMode(mode),
				controller.WithEngine(physics.WithGravity(mgl32.Vec3{})))
			Expect(err).NotTo(HaveOccurred())
			return c
		}

		It("releases at rest in hold mode", func() {
			c := newFree(controller.ReleaseHold)
			Expect(c.DragStart(0, 0, 0, 0)).To(Succeed())
			c.DragMove(1, 0, 0)
			c.DragMove(2, 0, 0)
			c.DragEnd()

			c.Tick(0.01)
			Expect(vertex(c, 0).Position).To(Equal(mgl32.Vec3{2, 0, 0}))
		})

		It("keeps the last move as velocity in throw mode", func() {
			c := newFree(controller.ReleaseThrow)
			Expect(c.DragStart(0, 0, 0, 0)).To(Succeed())
			c.DragMove(1, 0, 0)
			c.DragMove(1.5, 0, 0)
			c.DragEnd()

			c.Tick(0.01)
			Expect(vertex(c, 0).Position.X()).To(BeNumerically("~", 2, 1e-6))
			c.Tick(0.01)
			Expect(vertex(c, 0).Position.X()).To(BeNumerically("~", 2.5, 1e-6))
		})

		It("turns the start jump into velocity when released unmoved", func() {
			c := newFree(controller.ReleaseHold)
			Expect(c.DragStart(0, 1, 0, 0)).To(Succeed())
			c.DragEnd()

			c.Tick(0.01)
			Expect(vertex(c, 0).Position.X()).To(BeNumerically("~", 2, 1e-6))
		})

		It("resumes spring physics on the next tick without a spike", func() {
			c, err := controller.New(quadPositions, quadIndices,
				controller.WithEngine(physics.WithGravity(mgl32.Vec3{})))
			Expect(err).NotTo(HaveOccurred())

			Expect(c.DragStart(3, 1, 1, 0)).To(Succeed())
			c.DragMove(1.1, 1.1, 0)
			c.DragEnd()
			before := vertex(c, 3).Position

			c.Tick(0.001)
			after := vertex(c, 3).Position
			Expect(after).NotTo(Equal(before))
			// stretch is ~0.14 on two springs of k=1000: a*dt² stays well under 1e-3
			Expect(after.Sub(before).Len()).To(BeNumerically("<", 1e-3))
			Expect(physics.Valid(c.Mesh())).To(BeTrue())
		})
	})

	Describe("Nearest", func() {
		It("finds the closest vertex", func() {
			c, err := controller.New(quadPositions, quadIndices)
			Expect(err).NotTo(HaveOccurred())
			id, ok := c.Nearest(0.9, 1.2, 0)
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(uint32(3)))
		})

		It("reports an empty mesh", func() {
			c, err := controller.New(nil, nil)
			Expect(err).NotTo(HaveOccurred())
			_, ok := c.Nearest(0, 0, 0)
			Expect(ok).To(BeFalse())
		})
	})

	It("parses release modes", func() {
		m, err := controller.ParseReleaseMode("throw")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(controller.ReleaseThrow))
		Expect(m.String()).To(Equal("throw"))

		m, err = controller.ParseReleaseMode("")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(controller.ReleaseHold))

		_, err = controller.ParseReleaseMode("yeet")
		Expect(err).To(HaveOccurred())
	})
})
