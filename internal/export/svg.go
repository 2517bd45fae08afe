// Package export renders recorded frames as standalone SVG documents.
package export

import (
	"fmt"
	"strings"
)

type Point struct{ X, Y float64 }

// bounds is an XY box padded by 10% on each side.
type bounds struct {
	minX, minY     float64
	rangeX, rangeY float64
}

func fitBounds(points []Point) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return bounds{
		minX:   minX - rangeX*0.1,
		minY:   minY - rangeY*0.1,
		rangeX: rangeX * 1.2,
		rangeY: rangeY * 1.2,
	}
}

// place maps p into a width x height viewport with y pointing up.
func (b bounds) place(p Point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / b.rangeX * float64(width)
	y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// WireframeSVG draws one line per edge over the XY projection of a flat
// x,y,z position buffer. Edges referencing missing vertices are skipped.
func WireframeSVG(positions []float32, edges [][2]int, width, height int, stroke string) string {
	n := len(positions) / 3
	if n == 0 {
		return ""
	}

	points := make([]Point, n)
	for i := range points {
		points[i] = Point{X: float64(positions[3*i]), Y: float64(positions[3*i+1])}
	}
	b := fitBounds(points)

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, "<g stroke=%q stroke-width=\"1\" stroke-linecap=\"round\">\n", stroke)
	for _, e := range edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			continue
		}
		x1, y1 := b.place(points[e[0]], width, height)
		x2, y2 := b.place(points[e[1]], width, height)
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws points as a single polyline.
func TrajectoryToSVG(points []Point, width, height int, stroke string) string {
	if len(points) < 2 {
		return ""
	}
	b := fitBounds(points)

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke=%q stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x, y := b.place(p, width, height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
