package meshgen

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/meshsim/internal/mesh"
)

func TestGrid(t *testing.T) {
	g := NewWithT(t)

	src, err := Grid(3, 4, 0.5)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(src.VertexCount()).To(Equal(12))
	g.Expect(src.TriangleCount()).To(Equal(12))

	// first vertex sits at the top-left corner, last at bottom-right
	g.Expect(src.Positions[0:3]).To(Equal([]float32{-0.75, 0, 0}))
	g.Expect(src.Positions[33:36]).To(Equal([]float32{0.75, -1, 0}))

	m, err := mesh.New(src.Positions, src.Indices)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(m.TriangleCount()).To(Equal(12))
}

func TestGridRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		spacing    float32
	}{
		{"single row", 1, 4, 1},
		{"single column", 4, 1, 1},
		{"zero spacing", 3, 3, 0},
		{"negative spacing", 3, 3, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			_, err := Grid(tt.rows, tt.cols, tt.spacing)
			g.Expect(err).To(HaveOccurred())
		})
	}
}

func TestTopRow(t *testing.T) {
	g := NewWithT(t)
	g.Expect(TopRow(3)).To(Equal([]uint32{0, 1, 2}))
}

func TestDisc(t *testing.T) {
	g := NewWithT(t)

	src, err := Disc(2, 6, 1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(src.VertexCount()).To(Equal(13))
	g.Expect(src.TriangleCount()).To(Equal(18))
	g.Expect(src.Pins).To(HaveLen(6))
	for _, p := range src.Pins {
		g.Expect(p).To(BeNumerically(">=", 7))
	}

	_, err = mesh.New(src.Positions, src.Indices)
	g.Expect(err).NotTo(HaveOccurred())

	_, err = Disc(0, 6, 1)
	g.Expect(err).To(HaveOccurred())
	_, err = Disc(1, 2, 1)
	g.Expect(err).To(HaveOccurred())
}

func TestSaveAndLoad(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "tri.yaml")

	src := Source{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
		Pins:      []uint32{2},
	}
	g.Expect(Save(path, src)).To(Succeed())

	got, err := LoadFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal(src))
}

func TestLoadJSON(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "tri.json")
	doc := `{"positions": [0, 0, 0, 3, 0, 0, 0, 4, 0], "indices": [0, 1, 2]}`
	g.Expect(os.WriteFile(path, []byte(doc), 0644)).To(Succeed())

	got, err := LoadFile(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got.Positions).To(Equal([]float32{0, 0, 0, 3, 0, 0, 0, 4, 0}))
	g.Expect(got.Indices).To(Equal([]uint32{0, 1, 2}))
	g.Expect(got.Pins).To(BeEmpty())
}

func TestLoadMissing(t *testing.T) {
	g := NewWithT(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	g.Expect(err).To(HaveOccurred())
}

func TestBuild(t *testing.T) {
	g := NewWithT(t)

	src, err := Build(Spec{Kind: "grid", Rows: 2, Cols: 3, Spacing: 1, PinTop: true})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(src.Pins).To(Equal([]uint32{0, 1, 2}))

	src, err = Build(Spec{Kind: "disc", Rings: 1, Segments: 5, Radius: 2})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(src.VertexCount()).To(Equal(6))

	_, err = Build(Spec{Kind: "torus"})
	g.Expect(err).To(MatchError(ContainSubstring("unknown mesh kind")))
}
