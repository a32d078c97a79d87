package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/jmarren/fluxion/internal/analysis"
	"github.com/jmarren/fluxion/internal/bench"
	"github.com/jmarren/fluxion/internal/config"
	"github.com/jmarren/fluxion/internal/device"
	"github.com/jmarren/fluxion/internal/export"
	"github.com/jmarren/fluxion/internal/host"
	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/problems"
	"github.com/jmarren/fluxion/internal/solver"
	"github.com/jmarren/fluxion/internal/steppers"
	"github.com/jmarren/fluxion/internal/tui"
)

var (
	dt         float64
	duration   float64
	backend    string
	stepper    string
	csvOut     string
	jsonOut    string
	svgOut     string
	xAxis      int
	yAxis      int
	configFile string
	preset     string
	withGPU    bool
	reportOut  string
	dtSweep    []float64
)

var headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fluxion",
		Short: "fixed-step ODE integration on GPU and host",
	}

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "integrate a problem and plot the trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runProblem,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", 0, "integration time (default: problem's own)")
	runCmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, "backend (host, gpu)")
	runCmd.Flags().StringVar(&stepper, "stepper", config.DefaultStepper, "host stepper (euler, rk45)")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "write trajectory to CSV file")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write trajectory to JSON file")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write trajectory plot to SVG file")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	compareCmd := &cobra.Command{
		Use:   "compare [problem]",
		Short: "compare backends on the same problem",
		Args:  cobra.ExactArgs(1),
		RunE:  compareBackends,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	compareCmd.Flags().Float64Var(&duration, "time", 0, "integration time")
	compareCmd.Flags().BoolVar(&withGPU, "gpu", false, "include the GPU backend")

	benchCmd := &cobra.Command{
		Use:   "bench [problem]",
		Short: "benchmark backends over a timestep sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  benchProblem,
	}
	benchCmd.Flags().Float64SliceVar(&dtSweep, "dt", []float64{0.1, 0.01, 0.001}, "timesteps to sweep")
	benchCmd.Flags().BoolVar(&withGPU, "gpu", false, "include the GPU backend")
	benchCmd.Flags().StringVar(&reportOut, "out", "", "write report CSV to file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list problems, steppers and device kernels",
		RunE:  listAll,
	}

	kernelCmd := &cobra.Command{
		Use:   "kernel [name]",
		Short: "print the generated compute shader for a registered system",
		Args:  cobra.ExactArgs(1),
		RunE:  showKernel,
	}

	liveCmd := &cobra.Command{
		Use:   "live [problem]",
		Short: "integrate with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	liveCmd.Flags().StringVar(&stepper, "stepper", "rk45", "host stepper")

	phaseCmd := &cobra.Command{
		Use:   "phase [problem]",
		Short: "plot two state components against each other",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	phaseCmd.Flags().Float64Var(&duration, "time", 0, "integration time")
	phaseCmd.Flags().StringVar(&stepper, "stepper", "rk45", "host stepper")
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [problem]",
		Short: "frequency and chaos analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeProblem,
	}
	analyzeCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	analyzeCmd.Flags().Float64Var(&duration, "time", 0, "integration time")

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list available presets for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for problem: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, compareCmd, benchCmd, listCmd, kernelCmd, liveCmd, phaseCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newBackend builds the requested backend. The returned cleanup releases
// GPU resources and is a no-op for host backends.
func newBackend(name, stepperName string) (solver.Backend, func(), error) {
	switch name {
	case "host":
		st, err := steppers.New(stepperName)
		if err != nil {
			return nil, nil, err
		}
		return host.New(st), func() {}, nil
	case "gpu":
		ctx := device.NewContext()
		b, err := device.NewBackend(ctx)
		if err != nil {
			return nil, nil, err
		}
		return b, ctx.Destroy, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s (available: host, gpu)", name)
	}
}

func runProblem(cmd *cobra.Command, args []string) error {
	problem := args[0]

	if preset != "" {
		cfg := config.GetPreset(problem, preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(problem))
		}
		dt = cfg.Dt
		duration = cfg.Duration
		backend = cfg.Backend
		stepper = cfg.Stepper
	}

	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		problem = cfg.Problem
		if !cmd.Flags().Changed("dt") {
			dt = cfg.Dt
		}
		if !cmd.Flags().Changed("time") {
			duration = cfg.Duration
		}
		if !cmd.Flags().Changed("backend") {
			backend = cfg.Backend
		}
		if !cmd.Flags().Changed("stepper") {
			stepper = cfg.Stepper
		}
		if csvOut == "" {
			csvOut = cfg.Output
		}
	}

	sys, err := problems.Get(problem)
	if err != nil {
		return err
	}
	tf := sys.TEnd
	if duration > 0 {
		tf = sys.TStart + duration
	}

	b, cleanup, err := newBackend(backend, stepper)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("integrating %s with %s (dt=%g, t=[%g, %g])...\n", sys.Name, b.Name(), dt, sys.TStart, tf)
	start := time.Now()
	sol, err := b.Solve(sys, sys.TStart, tf, dt, sys.Initial)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("rows: %d\n\n", sol.Len())

	plotSolution(sys, sol)

	if csvOut != "" {
		if err := export.WriteCSV(csvOut, sol); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvOut)
	}
	if jsonOut != "" {
		data := export.NewRunData(sys.Name, b.Name(), dt, sol)
		if err := export.WriteJSON(jsonOut, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonOut)
	}
	if svgOut != "" {
		if err := export.WriteSVG(svgOut, sol); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	sys, err := problems.Get(args[0])
	if err != nil {
		return err
	}
	tf := sys.TEnd
	if duration > 0 {
		tf = sys.TStart + duration
	}
	st, err := steppers.New(stepper)
	if err != nil {
		return err
	}
	sol, err := host.New(st).Solve(sys, sys.TStart, tf, dt, sys.Initial)
	if err != nil {
		return err
	}

	plot, err := analysis.PhaseScatter(sol, xAxis, yAxis, 70, 25)
	if err != nil {
		return err
	}
	fmt.Printf("phase space: %s (y%d vs y%d)\n\n", sys.Name, yAxis, xAxis)
	fmt.Print(plot)
	return nil
}

func analyzeProblem(cmd *cobra.Command, args []string) error {
	sys, err := problems.Get(args[0])
	if err != nil {
		return err
	}
	tf := sys.TEnd
	if duration > 0 {
		tf = sys.TStart + duration
	}
	span := tf - sys.TStart

	sol, err := host.New(steppers.NewRK45()).Solve(sys, sys.TStart, tf, dt, sys.Initial)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s (dt=%g, t=[%g, %g])\n\n", sys.Name, dt, sys.TStart, tf)

	data := make([]float64, sol.Len())
	for i, row := range sol.States {
		data[i] = row[0]
	}
	ps := analysis.PowerSpectrum(data)
	graph := asciigraph.Plot(ps[:len(ps)/4],
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption("power spectrum (y0)"),
	)
	fmt.Println(graph)
	fmt.Println()

	if freq := analysis.DominantFrequency(data, dt); freq > 0 {
		fmt.Printf("dominant frequency: %.3f hz (period %.3f s)\n", freq, 1.0/freq)
	}

	lambda := analysis.MaxLyapunov(sys, steppers.NewRK45(), dt, span, 1e-8)
	fmt.Printf("largest lyapunov exponent: %.4f", lambda)
	if lambda > 0.01 {
		fmt.Print("  (chaotic)")
	}
	fmt.Println()
	return nil
}

func plotSolution(sys *ode.System, sol *ode.Solution) {
	maxPlots := 4
	n := sys.Dimension
	if n > maxPlots {
		n = maxPlots
	}
	for c := 0; c < n; c++ {
		data := make([]float64, sol.Len())
		for i, row := range sol.States {
			data[i] = row[c]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("y%d vs time", c)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
}

func compareBackends(cmd *cobra.Command, args []string) error {
	sys, err := problems.Get(args[0])
	if err != nil {
		return err
	}
	if duration > 0 {
		sys.TEnd = sys.TStart + duration
	}

	// RK45 serves as the reference trajectory for divergence.
	ref := host.New(steppers.NewRK45())
	refSol, err := ref.Solve(sys, sys.TStart, sys.TEnd, dt, sys.Initial)
	if err != nil {
		return err
	}

	type candidate struct {
		backend solver.Backend
		cleanup func()
	}
	candidates := []candidate{
		{host.New(steppers.NewEuler()), func() {}},
		{ref, func() {}},
	}
	if withGPU {
		gpu, cleanup, err := newBackend("gpu", "")
		if err != nil {
			return err
		}
		candidates = append(candidates, candidate{gpu, cleanup})
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("comparing backends for %s (dt=%g)", sys.Name, dt)))
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tROWS\tFINAL_Y0\tVS_RK45\tMAX_ERR\tTIME")
	for _, c := range candidates {
		res := bench.Run(c.backend, sys, dt)
		c.cleanup()
		if res.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", c.backend.Name(), res.Err)
			continue
		}
		div := bench.MaxDivergence(refSol, res.Solution)
		fmt.Fprintf(w, "%s\t%d\t%.6f\t%.2e\t%s\t%v\n",
			res.Backend, res.Steps, res.Solution.Final()[0], div, formatErr(res.MaxError), res.Elapsed)
	}
	return w.Flush()
}

func formatErr(v float64) string {
	if v != v {
		return "n/a"
	}
	return fmt.Sprintf("%.2e", v)
}

func benchProblem(cmd *cobra.Command, args []string) error {
	sys, err := problems.Get(args[0])
	if err != nil {
		return err
	}

	backends := []solver.Backend{
		host.New(steppers.NewEuler()),
		host.New(steppers.NewRK45()),
	}
	var cleanup func()
	if withGPU {
		gpu, c, err := newBackend("gpu", "")
		if err != nil {
			return err
		}
		cleanup = c
		backends = append(backends, gpu)
	}
	if cleanup != nil {
		defer cleanup()
	}

	fmt.Printf("benchmarking %s\n\n", sys.Name)
	var results []bench.Result
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tDT\tROWS\tTIME\tROWS/SEC\tMAX_ERR")
	for _, b := range backends {
		for _, step := range dtSweep {
			res := bench.Run(b, sys, step)
			if res.Err != nil {
				fmt.Fprintf(w, "%s\t%.4g\terror: %v\n", b.Name(), step, res.Err)
				continue
			}
			results = append(results, res)
			fmt.Fprintf(w, "%s\t%.4g\t%d\t%v\t%.0f\t%s\n",
				res.Backend, res.Dt, res.Steps, res.Elapsed, res.Throughput(), formatErr(res.MaxError))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if reportOut != "" {
		if err := bench.WriteReport(reportOut, results); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", reportOut)
	}
	return nil
}

func listAll(cmd *cobra.Command, args []string) error {
	fmt.Println(headerStyle.Render("PROBLEMS"))
	for _, name := range problems.Names() {
		sys, _ := problems.Get(name)
		gpuMark := ""
		if sys.HasDevice() {
			gpuMark = "  [gpu]"
		}
		fmt.Printf("  %-14s dim=%d%s\n", name, sys.Dimension, gpuMark)
	}
	fmt.Println()
	fmt.Println(headerStyle.Render("STEPPERS"))
	for _, name := range steppers.Names() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println()
	fmt.Println(headerStyle.Render("DEVICE KERNELS"))
	for _, name := range device.Names() {
		def, _ := device.Lookup(name)
		fmt.Printf("  %-14s uniforms: %s\n", name, strings.Join(def.Uniforms, ", "))
	}
	return nil
}

func showKernel(cmd *cobra.Command, args []string) error {
	def, err := device.Lookup(args[0])
	if err != nil {
		return err
	}
	gen, err := device.NewGenerator()
	if err != nil {
		return err
	}
	src, err := gen.Generate(def)
	if err != nil {
		return err
	}
	fmt.Print(src)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sys, err := problems.Get(args[0])
	if err != nil {
		return err
	}
	st, err := steppers.New(stepper)
	if err != nil {
		return err
	}
	return tui.Run(sys, st, dt)
}
