package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/meshsim/internal/analysis"
	"github.com/san-kum/meshsim/internal/controller"
	"github.com/san-kum/meshsim/internal/export"
	"github.com/san-kum/meshsim/internal/sim"
	"github.com/san-kum/meshsim/internal/storage"
)

var (
	plotVertex int
	plotAxis   string
	settleTol  float64
	svgFrame   int
	svgSize    int
	svgStroke  string
)

func runsCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one vertex coordinate of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotVertex, "vertex", 0, "vertex id")
	plotCmd.Flags().StringVar(&plotAxis, "axis", "y", "coordinate (x, y, z)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export recorded frames as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export metadata and frames as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "report oscillation frequency and settle time of one vertex",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&plotVertex, "vertex", 0, "vertex id")
	analyzeCmd.Flags().StringVar(&plotAxis, "axis", "y", "coordinate (x, y, z)")
	analyzeCmd.Flags().Float64Var(&settleTol, "tol", 0.01, "settle tolerance in world units")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export one recorded frame as an SVG wireframe",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgFrame, "frame", -1, "recorded frame index (-1 for the last)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image width and height in pixels")
	exportSVGCmd.Flags().StringVar(&svgStroke, "stroke", "#00ff88", "line colour")

	return []*cobra.Command{listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMESH\tTIME\tVERTS\tSPRINGS\tDT\tSTEPS\tRELEASE\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%d/%d\t%s\t%s\n",
			run.ID,
			run.Mesh,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Vertices,
			run.Springs,
			run.Dt,
			run.Steps,
			run.Frames,
			run.Release,
			status,
		)
	}

	return w.Flush()
}

func axisIndex(axis string) (int, error) {
	switch axis {
	case "x":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	default:
		return 0, fmt.Errorf("unknown axis: %s", axis)
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	axis, err := axisIndex(plotAxis)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	series := storage.Vertex(frames, plotVertex, axis)
	if len(series) < 2 {
		return fmt.Errorf("not enough samples to plot vertex %d", plotVertex)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mesh: %s (%d vertices)\n", meta.Mesh, meta.Vertices)
	fmt.Printf("samples: %d\n\n", len(series))

	caption := fmt.Sprintf("vertex %d %s vs frame", plotVertex, plotAxis)
	fmt.Println(asciigraph.Plot(series, asciigraph.Height(12), asciigraph.Width(70), asciigraph.Caption(caption)))

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		printMetrics(meta.Metrics)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	frames, err := storage.New(dataDir).LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteFrames(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, frames)
}

// uniformSpacing returns the time between recorded frames and how many
// leading frames share it. The final frame is always recorded, so it may sit
// closer to its predecessor than the rest.
func uniformSpacing(frames []sim.Frame) (float64, int) {
	if len(frames) < 2 {
		return 0, len(frames)
	}
	dt := frames[1].Time - frames[0].Time
	n := len(frames)
	last := frames[n-1].Time - frames[n-2].Time
	if math.Abs(last-dt) > 1e-3*dt {
		n--
	}
	return dt, n
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	axis, err := axisIndex(plotAxis)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	sampleDt, n := uniformSpacing(frames)
	series := storage.Vertex(frames[:n], plotVertex, axis)
	if len(series) < 4 {
		return fmt.Errorf("need at least 4 samples of vertex %d, have %d", plotVertex, len(series))
	}

	fmt.Printf("vertex %d %s, %d samples every %.4fs\n", plotVertex, plotAxis, len(series), sampleDt)

	freq := analysis.DominantFrequency(series, sampleDt)
	nyquist := 1 / (2 * sampleDt)
	fmt.Printf("  dominant frequency: %.3f Hz (nyquist %.1f Hz)\n", freq, nyquist)
	if freq > 0.8*nyquist {
		fmt.Println("  warning: close to nyquist, lower --record-every or --dt")
	}

	if idx := analysis.SettleTime(series, settleTol); idx >= 0 {
		fmt.Printf("  settles within %g after %.3fs\n", settleTol, frames[idx].Time)
	} else {
		fmt.Printf("  does not settle within %g\n", settleTol)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	src, err := st.LoadMesh(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to export")
	}

	idx := svgFrame
	if idx < 0 {
		idx = len(frames) - 1
	}
	if idx >= len(frames) {
		return fmt.Errorf("frame %d out of range (%d recorded)", idx, len(frames))
	}
	if len(frames[idx].Positions) != len(src.Positions) {
		return fmt.Errorf("frame has %d coordinates, mesh has %d", len(frames[idx].Positions), len(src.Positions))
	}

	// rebuilding the controller derives the same spring set the run used
	ctrl, err := controller.New(src.Positions, src.Indices)
	if err != nil {
		return err
	}
	springs := ctrl.Engine().Springs
	edges := make([][2]int, len(springs))
	for i, sp := range springs {
		edges[i] = [2]int{sp.A, sp.B}
	}

	fmt.Println(export.WireframeSVG(frames[idx].Positions, edges, svgSize, svgSize, svgStroke))
	return nil
}
