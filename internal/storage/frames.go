package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/meshsim/internal/sim"
)

// WriteFrames writes frames as CSV with the header frame,time,x0,y0,z0,...
func WriteFrames(w io.Writer, frames []sim.Frame) error {
	cw := csv.NewWriter(w)

	if len(frames) == 0 {
		cw.Flush()
		return cw.Error()
	}

	n := len(frames[0].Positions) / 3
	header := make([]string, 0, 2+3*n)
	header = append(header, "frame", "time")
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for _, f := range frames {
		row = append(row[:0], strconv.Itoa(f.Index), strconv.FormatFloat(f.Time, 'f', 6, 64))
		for _, p := range f.Positions {
			row = append(row, strconv.FormatFloat(float64(p), 'g', -1, 32))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadFrames parses the output of WriteFrames.
func ReadFrames(r io.Reader) ([]sim.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		idx, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: frame: %w", line+2, err)
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: time: %w", line+2, err)
		}

		pos := make([]float32, 0, len(record)-2)
		for _, field := range record[2:] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: position: %w", line+2, err)
			}
			pos = append(pos, float32(v))
		}
		frames = append(frames, sim.Frame{Index: idx, Time: t, Positions: pos})
	}
	return frames, nil
}

// Vertex extracts one coordinate (0=x, 1=y, 2=z) of one vertex across frames.
func Vertex(frames []sim.Frame, id, axis int) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		i := id*3 + axis
		if i < len(f.Positions) {
			out = append(out, float64(f.Positions[i]))
		}
	}
	return out
}

type exportData struct {
	RunMetadata
	Frames []sim.Frame `json:"frames"`
}

// ExportJSON writes the metadata and frames of a run as one JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, frames []sim.Frame) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{RunMetadata: meta, Frames: frames})
}
