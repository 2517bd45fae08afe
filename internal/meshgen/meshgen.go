// Package meshgen produces triangle meshes for the simulator: procedural
// sheets and discs, and meshes stored as YAML or JSON documents.
package meshgen

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is a mesh as the controller consumes it.
type Source struct {
	Positions []float32 `yaml:"positions" json:"positions"`
	Indices   []uint32  `yaml:"indices" json:"indices"`
	Pins      []uint32  `yaml:"pins,omitempty" json:"pins,omitempty"`
}

func (s Source) VertexCount() int   { return len(s.Positions) / 3 }
func (s Source) TriangleCount() int { return len(s.Indices) / 3 }

// Grid builds a rows x cols sheet of vertices in the XY plane, centred on the
// origin horizontally and hanging down from y=0. Each cell is split into two
// triangles.
func Grid(rows, cols int, spacing float32) (Source, error) {
	if rows < 2 || cols < 2 {
		return Source{}, fmt.Errorf("grid needs at least 2x2 vertices, got %dx%d", rows, cols)
	}
	if spacing <= 0 {
		return Source{}, fmt.Errorf("grid spacing must be positive, got %f", spacing)
	}

	src := Source{
		Positions: make([]float32, 0, rows*cols*3),
		Indices:   make([]uint32, 0, (rows-1)*(cols-1)*6),
	}
	halfW := float32(cols-1) * spacing / 2
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			src.Positions = append(src.Positions, float32(c)*spacing-halfW, -float32(r)*spacing, 0)
		}
	}

	id := func(r, c int) uint32 { return uint32(r*cols + c) }
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			tl, tr := id(r, c), id(r, c+1)
			bl, br := id(r+1, c), id(r+1, c+1)
			src.Indices = append(src.Indices, tl, bl, tr, tr, bl, br)
		}
	}
	return src, nil
}

// TopRow returns the ids of the first row of a Grid.
func TopRow(cols int) []uint32 {
	ids := make([]uint32, cols)
	for c := range ids {
		ids[c] = uint32(c)
	}
	return ids
}

// Disc builds a face-like ellipse: a centre vertex and rings of segments
// vertices, the outermost ring bulging back in z. Outer-ring ids are returned
// as pins so the rim holds while the centre wobbles.
func Disc(rings, segments int, radius float32) (Source, error) {
	if rings < 1 || segments < 3 {
		return Source{}, fmt.Errorf("disc needs at least 1 ring and 3 segments, got %d/%d", rings, segments)
	}
	if radius <= 0 {
		return Source{}, fmt.Errorf("disc radius must be positive, got %f", radius)
	}

	src := Source{Positions: []float32{0, 0, radius * 0.25}}
	for r := 1; r <= rings; r++ {
		frac := float64(r) / float64(rings)
		rad := float64(radius) * frac
		z := float64(radius) * 0.25 * (1 - frac*frac)
		for s := 0; s < segments; s++ {
			a := 2 * math.Pi * float64(s) / float64(segments)
			src.Positions = append(src.Positions,
				float32(rad*math.Cos(a)*0.8),
				float32(rad*math.Sin(a)),
				float32(z))
		}
	}

	ring := func(r, s int) uint32 { return uint32(1 + (r-1)*segments + s%segments) }
	for s := 0; s < segments; s++ {
		src.Indices = append(src.Indices, 0, ring(1, s), ring(1, s+1))
	}
	for r := 1; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a, b := ring(r, s), ring(r, s+1)
			c, d := ring(r+1, s), ring(r+1, s+1)
			src.Indices = append(src.Indices, a, c, b, b, c, d)
		}
	}
	for s := 0; s < segments; s++ {
		src.Pins = append(src.Pins, ring(rings, s))
	}
	return src, nil
}

// LoadFile reads a mesh document. JSON is valid YAML, so one decoder serves
// .yaml, .yml and .json files.
func LoadFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, err
	}
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return Source{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return src, nil
}

// Save writes src as YAML.
func Save(path string, src Source) error {
	data, err := yaml.Marshal(src)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Spec selects and parameterises a producer.
type Spec struct {
	Kind     string  `yaml:"kind"`
	Rows     int     `yaml:"rows"`
	Cols     int     `yaml:"cols"`
	Spacing  float32 `yaml:"spacing"`
	Rings    int     `yaml:"rings"`
	Segments int     `yaml:"segments"`
	Radius   float32 `yaml:"radius"`
	Path     string  `yaml:"path"`
	PinTop   bool    `yaml:"pin_top"`
}

// Build runs the producer named by spec.Kind.
func Build(spec Spec) (Source, error) {
	switch spec.Kind {
	case "grid", "":
		src, err := Grid(spec.Rows, spec.Cols, spec.Spacing)
		if err != nil {
			return Source{}, err
		}
		if spec.PinTop {
			src.Pins = TopRow(spec.Cols)
		}
		return src, nil
	case "disc":
		return Disc(spec.Rings, spec.Segments, spec.Radius)
	case "file":
		return LoadFile(spec.Path)
	default:
		return Source{}, fmt.Errorf("unknown mesh kind: %s", spec.Kind)
	}
}
