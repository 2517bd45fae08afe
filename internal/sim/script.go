package sim

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/meshsim/internal/controller"
)

type EventKind string

const (
	EventStart EventKind = "start"
	EventMove  EventKind = "move"
	EventEnd   EventKind = "end"
)

// Event is a drag input applied just before the tick of Frame.
type Event struct {
	Frame  int       `yaml:"frame"`
	Kind   EventKind `yaml:"kind"`
	Vertex uint32    `yaml:"vertex,omitempty"`
	X      float32   `yaml:"x,omitempty"`
	Y      float32   `yaml:"y,omitempty"`
	Z      float32   `yaml:"z,omitempty"`
}

func (e Event) apply(c *controller.Controller) error {
	switch e.Kind {
	case EventStart:
		return c.DragStart(e.Vertex, e.X, e.Y, e.Z)
	case EventMove:
		c.DragMove(e.X, e.Y, e.Z)
	case EventEnd:
		c.DragEnd()
	}
	return nil
}

// Script is a list of drag events ordered by frame. Events sharing a frame
// keep their listed order.
type Script struct {
	Events []Event `yaml:"events"`
}

func (s Script) Validate() error {
	for i, e := range s.Events {
		switch e.Kind {
		case EventStart, EventMove, EventEnd:
		default:
			return fmt.Errorf("%w: event %d has unknown kind %q", ErrInvalidScript, i, e.Kind)
		}
		if e.Frame < 0 {
			return fmt.Errorf("%w: event %d has negative frame", ErrInvalidScript, i)
		}
	}
	return nil
}

func (s Script) sorted() []Event {
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Frame < events[j].Frame })
	return events
}

func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, s.Validate()
}

// Pull builds a script that grabs vertex at frame start, drags it in a
// straight line from `from` to `to` over steps frames and lets go.
func Pull(vertex uint32, from, to [3]float32, start, steps int) Script {
	s := Script{Events: []Event{{Frame: start, Kind: EventStart, Vertex: vertex, X: from[0], Y: from[1], Z: from[2]}}}
	for i := 1; i <= steps; i++ {
		f := float32(i) / float32(steps)
		s.Events = append(s.Events, Event{
			Frame: start + i,
			Kind:  EventMove,
			X:     from[0] + (to[0]-from[0])*f,
			Y:     from[1] + (to[1]-from[1])*f,
			Z:     from[2] + (to[2]-from[2])*f,
		})
	}
	s.Events = append(s.Events, Event{Frame: start + steps + 1, Kind: EventEnd})
	return s
}
