package main

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/meshsim/internal/sim"
)

func TestUniformSpacing(t *testing.T) {
	g := NewWithT(t)

	frames := []sim.Frame{{Time: 0}, {Time: 0.1}, {Time: 0.2}, {Time: 0.25}}
	dt, n := uniformSpacing(frames)
	g.Expect(dt).To(BeNumerically("~", 0.1, 1e-9))
	g.Expect(n).To(Equal(3), "short trailing frame is dropped")

	dt, n = uniformSpacing(frames[:3])
	g.Expect(dt).To(BeNumerically("~", 0.1, 1e-9))
	g.Expect(n).To(Equal(3))

	_, n = uniformSpacing(frames[:1])
	g.Expect(n).To(Equal(1))
}

func TestAxisIndex(t *testing.T) {
	g := NewWithT(t)
	for i, axis := range []string{"x", "y", "z"} {
		got, err := axisIndex(axis)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(got).To(Equal(i))
	}
	_, err := axisIndex("w")
	g.Expect(err).To(HaveOccurred())
}
