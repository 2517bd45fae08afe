package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/meshsim/internal/config"
	"github.com/san-kum/meshsim/internal/controller"
	"github.com/san-kum/meshsim/internal/logger"
	"github.com/san-kum/meshsim/internal/meshgen"
)

var (
	dataDir    string
	logLevel   string
	logFile    string
	configFile string
	preset     string

	dt          float32
	frames      int
	recordEvery int
	stiffness   float32
	damping     float32
	gravity     float32
	release     string
	meshKind    string
	rows        int
	cols        int
	meshFile    string
	scriptFile  string
	pullVertex  int
	theme       string
)

// main registers the commands and runs the live viewer when no subcommand
// is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "meshsim",
		Short:         "deformable mesh simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		RunE: runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".meshsim", "data directory")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "also log to this file, rotated")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration (group/name)")
	addSimFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless session and save it",
		Args:  cobra.NoArgs,
		RunE:  runSession,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&pullVertex, "pull-vertex", -1, "drag this vertex out of plane and release it")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [values...]",
		Short: "run one session per parameter value in parallel",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&pullVertex, "pull-vertex", -1, "drag this vertex out of plane and release it")

	meshCmd := &cobra.Command{
		Use:   "mesh [out.yaml]",
		Short: "write the configured mesh to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  writeMesh,
	}
	addSimFlags(meshCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, meshCmd, presetsCmd)
	rootCmd.AddCommand(runsCommands()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		logger.Sync()
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float32Var(&dt, "dt", 0, "timestep")
	f.IntVar(&frames, "frames", 0, "frames to simulate")
	f.IntVar(&recordEvery, "record-every", 0, "record every n-th frame")
	f.Float32Var(&stiffness, "stiffness", 0, "spring stiffness")
	f.Float32Var(&damping, "damping", 0, "spring damping")
	f.Float32Var(&gravity, "gravity", 0, "gravity along y")
	f.StringVar(&release, "release", "", "drag release mode (hold, throw)")
	f.StringVar(&meshKind, "mesh", "", "mesh kind (grid, disc, file)")
	f.IntVar(&rows, "rows", 0, "grid rows / disc rings")
	f.IntVar(&cols, "cols", 0, "grid columns / disc segments")
	f.StringVar(&meshFile, "mesh-file", "", "mesh document (yaml or json)")
	f.StringVar(&scriptFile, "script", "", "drag script (yaml)")
	f.StringVar(&theme, "theme", "cyberpunk", "viewer color theme")
}

func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "live" || !cmd.HasParent()
}

func initLogging(cmd *cobra.Command) error {
	fileCfg := logger.FileConfig{}
	if logFile != "" {
		fileCfg = logger.DefaultFileConfig(logFile)
	}
	// the viewer owns the terminal, so it only logs to the file
	return logger.InitWithFileConfig(logLevel, fileCfg, !interactive(cmd))
}

// loadConfig layers defaults, the preset, the config file and changed flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		group, name, _ := strings.Cut(preset, "/")
		p := config.GetPreset(group, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, allPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Physics.Dt = dt
	}
	if f.Changed("frames") {
		cfg.Run.Frames = frames
	}
	if f.Changed("record-every") {
		cfg.Run.RecordEvery = recordEvery
	}
	if f.Changed("stiffness") {
		cfg.Physics.Stiffness = stiffness
	}
	if f.Changed("damping") {
		cfg.Physics.Damping = damping
	}
	if f.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if f.Changed("release") {
		cfg.Drag.Release = release
	}
	if f.Changed("mesh") {
		cfg.Mesh.Kind = meshKind
	}
	if f.Changed("rows") {
		cfg.Mesh.Rows, cfg.Mesh.Rings = rows, rows
	}
	if f.Changed("cols") {
		cfg.Mesh.Cols, cfg.Mesh.Segments = cols, cols
	}
	if f.Changed("mesh-file") {
		cfg.Mesh.Kind, cfg.Mesh.Path = "file", meshFile
	}
	if f.Changed("script") {
		cfg.Run.Script = scriptFile
	}
	if cfg.Mesh.Kind == "disc" && cfg.Mesh.Radius == 0 {
		cfg.Mesh.Radius = 1.5
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildController turns a config into a ready controller.
func buildController(cfg *config.Config, log *zap.Logger) (*controller.Controller, meshgen.Source, error) {
	src, err := meshgen.Build(cfg.Mesh)
	if err != nil {
		return nil, meshgen.Source{}, err
	}
	opts, err := cfg.ControllerOptions(src.Pins)
	if err != nil {
		return nil, meshgen.Source{}, err
	}
	opts = append(opts, controller.WithLogger(log))

	ctrl, err := controller.New(src.Positions, src.Indices, opts...)
	if err != nil {
		return nil, meshgen.Source{}, fmt.Errorf("build mesh: %w", err)
	}
	return ctrl, src, nil
}

func meshName(cfg *config.Config) string {
	if cfg.Mesh.Kind == "" {
		return "grid"
	}
	return cfg.Mesh.Kind
}

func allPresets() []string {
	var out []string
	for _, g := range config.ListGroups() {
		for _, n := range config.ListPresets(g) {
			out = append(out, g+"/"+n)
		}
	}
	return out
}

func listPresets(cmd *cobra.Command, args []string) error {
	groups := config.ListGroups()
	if len(args) == 1 {
		groups = args
	}
	for _, g := range groups {
		names := config.ListPresets(g)
		if len(names) == 0 {
			fmt.Printf("no presets for group: %s\n", g)
			continue
		}
		fmt.Printf("presets for %s:\n", g)
		for _, n := range names {
			p := config.GetPreset(g, n)
			fmt.Printf("  %-8s mesh=%-5s k=%-5.0f c=%-4.1f release=%s\n",
				n, p.Mesh.Kind, p.Physics.Stiffness, p.Physics.Damping, p.Drag.Release)
		}
	}
	return nil
}

func writeMesh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := meshgen.Build(cfg.Mesh)
	if err != nil {
		return err
	}
	if err := meshgen.Save(args[0], src); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d vertices, %d triangles, %d pins\n",
		args[0], src.VertexCount(), src.TriangleCount(), len(src.Pins))
	return nil
}
