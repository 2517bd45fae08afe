package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/meshsim/internal/controller"
	"github.com/san-kum/meshsim/internal/physics"
)

// Runner drives a controller headlessly through a fixed number of frames.
type Runner struct {
	ctrl      *controller.Controller
	metrics   []Metric
	observers []Observer
	log       *zap.Logger
}

func New(ctrl *controller.Controller, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		ctrl:      ctrl,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log,
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Controller() *controller.Controller { return r.ctrl }

// Run ticks the controller cfg.Frames times, applying script events before
// the tick of their frame. On a non-finite position it stops and returns the
// partial result with a *StepError wrapping ErrUnstable.
func (r *Runner) Run(ctx context.Context, cfg RunConfig, script Script) (*Result, error) {
	if err := validateRun(cfg); err != nil {
		return nil, err
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Frames:  make([]Frame, 0, expectedFrames(cfg)),
		Energy:  make([]float64, 0, cfg.Frames),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	events := script.sorted()
	next := 0
	t := 0.0
	dt := float64(cfg.Dt)

	result.Frames = append(result.Frames, r.snapshot(0, t))
	r.log.Debug("run started",
		zap.Int("frames", cfg.Frames),
		zap.Float32("dt", cfg.Dt),
		zap.Int("events", len(events)),
	)

	for f := 0; f < cfg.Frames; f++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			return result, ctx.Err()
		default:
		}

		for next < len(events) && events[next].Frame == f {
			if err := events[next].apply(r.ctrl); err != nil {
				r.collect(result)
				return result, &StepError{Frame: f, Time: t, Wrapped: err}
			}
			next++
		}

		r.ctrl.Tick(cfg.Dt)
		t += dt
		frame := f + 1
		result.StepsTaken++

		if !physics.Valid(r.ctrl.Mesh()) {
			r.log.Warn("simulation diverged", zap.Int("frame", frame), zap.Float64("t", t))
			r.collect(result)
			return result, &StepError{Frame: frame, Time: t, Wrapped: ErrUnstable}
		}

		result.Energy = append(result.Energy, r.ctrl.Energy().Total)
		for _, m := range r.metrics {
			m.Observe(r.ctrl, t)
		}
		positions := r.ctrl.Positions()
		for _, obs := range r.observers {
			obs.OnFrame(frame, t, positions)
		}

		if cfg.RecordEvery > 0 && frame%cfg.RecordEvery == 0 || frame == cfg.Frames {
			result.Frames = append(result.Frames, r.snapshot(frame, t))
		}
	}

	if dropped := len(events) - next; dropped > 0 {
		r.log.Debug("script events after the last frame ignored",
			zap.Int("events", dropped),
			zap.Int("first_frame", events[next].Frame),
			zap.Int("frames", cfg.Frames),
		)
	}

	r.collect(result)
	r.log.Debug("run finished", zap.Int("steps", result.StepsTaken), zap.Int("recorded", len(result.Frames)))
	return result, nil
}

func (r *Runner) snapshot(frame int, t float64) Frame {
	src := r.ctrl.Positions()
	pos := make([]float32, len(src))
	copy(pos, src)
	return Frame{Index: frame, Time: t, Positions: pos}
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateRun(cfg RunConfig) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidRun, cfg.Dt)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidRun, cfg.Frames)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("%w: record interval must not be negative", ErrInvalidRun)
	}
	return nil
}

func expectedFrames(cfg RunConfig) int {
	if cfg.RecordEvery == 0 {
		return 2
	}
	return cfg.Frames/cfg.RecordEvery + 2
}
