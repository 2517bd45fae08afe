package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/meshsim/internal/config"
	"github.com/san-kum/meshsim/internal/controller"
	"github.com/san-kum/meshsim/internal/logger"
	"github.com/san-kum/meshsim/internal/metrics"
	"github.com/san-kum/meshsim/internal/sim"
	"github.com/san-kum/meshsim/internal/storage"
	"github.com/san-kum/meshsim/internal/viz"
)

func runConfig(cfg *config.Config) sim.RunConfig {
	return sim.RunConfig{
		Dt:          cfg.Physics.Dt,
		Frames:      cfg.Run.Frames,
		RecordEvery: cfg.Run.RecordEvery,
	}
}

// loadScript returns the configured drag script, or a pull of --pull-vertex
// out of plane when no script file is set.
func loadScript(cfg *config.Config, ctrl *controller.Controller) (sim.Script, error) {
	if cfg.Run.Script != "" {
		return sim.LoadScript(cfg.Run.Script)
	}
	if pullVertex < 0 {
		return sim.Script{}, nil
	}
	v, err := ctrl.Mesh().Vertex(pullVertex)
	if err != nil {
		return sim.Script{}, fmt.Errorf("pull-vertex: %w", err)
	}
	min, max := ctrl.Mesh().Bounds()
	depth := max.Sub(min).Len() / 4
	from := [3]float32{v.Position.X(), v.Position.Y(), v.Position.Z()}
	to := [3]float32{from[0], from[1], from[2] + depth}
	return sim.Pull(uint32(pullVertex), from, to, 10, 30), nil
}

func newMetrics(ctrl *controller.Controller) []sim.Metric {
	min, max := ctrl.Mesh().Bounds()
	return []sim.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewStretch(),
		metrics.NewDisplacement(),
		metrics.NewStability(max.Sub(min).Len()),
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctrl, src, err := buildController(cfg, logger.Named("controller"))
	if err != nil {
		return err
	}
	script, err := loadScript(cfg, ctrl)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner := sim.New(ctrl, logger.Named("sim"))
	for _, m := range newMetrics(ctrl) {
		runner.AddMetric(m)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Log.Info("running session",
		zap.String("mesh", meshName(cfg)),
		zap.Int("vertices", ctrl.VertexCount()),
		zap.Int("springs", ctrl.SpringCount()),
		zap.Int("frames", cfg.Run.Frames),
	)
	start := time.Now()
	result, runErr := runner.Run(ctx, runConfig(cfg), script)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Mesh:      meshName(cfg),
		Preset:    preset,
		Vertices:  ctrl.VertexCount(),
		Springs:   ctrl.SpringCount(),
		Dt:        cfg.Physics.Dt,
		Frames:    cfg.Run.Frames,
		Release:   cfg.Drag.Release,
		Stiffness: cfg.Physics.Stiffness,
		Damping:   cfg.Physics.Damping,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	if err := st.SaveMesh(runID, src); err != nil {
		logger.Log.Warn("mesh not saved", zap.String("run", runID), zap.Error(err))
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	if errors.Is(runErr, sim.ErrUnstable) {
		return fmt.Errorf("%w (try a smaller --dt or lower --stiffness)", runErr)
	}
	return runErr
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctrl, _, err := buildController(cfg, logger.Named("controller"))
	if err != nil {
		return err
	}
	title := meshName(cfg)
	if preset != "" {
		title = preset
	}
	return viz.Run(ctrl, viz.Options{
		Title: title,
		Dt:    cfg.Physics.Dt,
		Theme: theme,
		Log:   logger.Named("viz"),
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	param := args[0]
	values := make([]float64, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("value %q: %w", a, err)
		}
		values = append(values, v)
	}

	// probe build for the script and metric bounds
	probe, _, err := buildController(cfg, logger.Named("controller"))
	if err != nil {
		return err
	}
	script, err := loadScript(cfg, probe)
	if err != nil {
		return err
	}

	sweep := &sim.Sweep{
		Build: func() (*controller.Controller, error) {
			ctrl, _, err := buildController(cfg, logger.Named("controller"))
			return ctrl, err
		},
		NewMetrics: func() []sim.Metric { return newMetrics(probe) },
		Log:        logger.Named("sweep"),
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, sweepErr := sweep.Run(ctx, param, values, runConfig(cfg), script)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tENERGY\tMAX_STRETCH\tSTABILITY\tERROR\n", param)
	for _, r := range results {
		if r.Result == nil {
			fmt.Fprintf(w, "%g\t-\t-\t-\t-\t%v\n", r.Value, r.Err)
			continue
		}
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		m := r.Result.Metrics
		fmt.Fprintf(w, "%g\t%d\t%.4f\t%.4f\t%.3f\t%s\n",
			r.Value, r.Result.StepsTaken, m["energy"], m["max_stretch"], m["stability"], errText)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if sweepErr != nil {
		logger.Log.Warn("some runs failed", zap.Error(sweepErr))
	}
	return nil
}
