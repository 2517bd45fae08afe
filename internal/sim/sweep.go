package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/meshsim/internal/controller"
)

// Sweep runs one independent session per parameter value. Each session owns
// its controller, so runs proceed in parallel without sharing state.
type Sweep struct {
	// Build returns a fresh controller for one run.
	Build func() (*controller.Controller, error)
	// NewMetrics returns fresh metrics for one run. May be nil.
	NewMetrics func() []Metric
	// Workers caps concurrent runs; zero means GOMAXPROCS.
	Workers int
	Log     *zap.Logger
}

type SweepResult struct {
	Value  float64
	Result *Result
	Err    error
}

// Run sets param to each value on a new controller's engine and runs it.
// Results keep the order of values. The returned error combines the errors
// of every failed run; results of successful runs are still filled in.
func (s *Sweep) Run(ctx context.Context, param string, values []float64, cfg RunConfig, script Script) ([]SweepResult, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]SweepResult, len(values))
	var (
		mu   sync.Mutex
		errs error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			res, err := s.runOne(ctx, param, v, cfg, script, log)
			results[i] = SweepResult{Value: v, Result: res, Err: err}
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s=%g: %w", param, v, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

func (s *Sweep) runOne(ctx context.Context, param string, v float64, cfg RunConfig, script Script, log *zap.Logger) (*Result, error) {
	ctrl, err := s.Build()
	if err != nil {
		return nil, err
	}
	if err := ctrl.Engine().SetParam(param, v); err != nil {
		return nil, err
	}
	// Tick takes its step from the run config, so a swept dt must go there
	if param == "dt" {
		cfg.Dt = ctrl.Engine().TimeStep
	}

	r := New(ctrl, log.With(zap.String("param", param), zap.Float64("value", v)))
	if s.NewMetrics != nil {
		for _, m := range s.NewMetrics() {
			r.AddMetric(m)
		}
	}
	return r.Run(ctx, cfg, script)
}
