package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/skalor/trajlab/internal/config"
	"github.com/skalor/trajlab/internal/control"
	"github.com/skalor/trajlab/internal/dyn"
	"github.com/skalor/trajlab/internal/integrators"
	"github.com/skalor/trajlab/internal/metrics"
	"github.com/skalor/trajlab/internal/model"
	"github.com/skalor/trajlab/internal/physics"
	"github.com/skalor/trajlab/internal/sim"
	"github.com/skalor/trajlab/internal/storage"
	"github.com/skalor/trajlab/internal/trajectory"
	"github.com/skalor/trajlab/internal/tui"
	"github.com/skalor/trajlab/internal/viz"
)

var (
	dataDir    string
	configFile string

	links        int
	dt           float64
	duration     float64
	seed         int64
	integrator   string
	controller   string
	kp           float64
	ki           float64
	kd           float64
	target       float64
	adaptive     bool
	tolerance    float64
	initSets     []string
	paramSets    []string
	savePath     string
	weldJoints   []string
	reserves     float64
	skipActuated bool
	channels     []string
	outPath      string
	// Number of multipliers when splitting a grid's adjunct block
	numMultipliers int
	sweepCount     int
	sweepFrom      float64
	sweepTo        float64
	sweepJitter    float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trajlab",
		Short: "model construction and trajectory lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	buildCmd := &cobra.Command{
		Use:   "build [model]",
		Short: "construct a model and print its structure",
		Args:  cobra.ExactArgs(1),
		RunE:  buildModelCmd,
	}
	buildCmd.Flags().IntVar(&links, "links", 1, "number of links (nlink)")
	buildCmd.Flags().StringVar(&savePath, "save", "", "write the model to a yaml file")
	buildCmd.Flags().StringArrayVar(&weldJoints, "weld", nil, "replace the named joint with a weld")
	buildCmd.Flags().Float64Var(&reserves, "reserves", 0, "add reserve actuators with this optimal force")
	buildCmd.Flags().BoolVar(&skipActuated, "skip-actuated", true, "skip coordinates that already have an actuator")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate a model and persist the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringArrayVar(&weldJoints, "weld", nil, "replace the named joint with a weld")
	runCmd.Flags().Float64Var(&reserves, "reserves", 0, "add reserve actuators with this optimal force")
	runCmd.Flags().BoolVar(&skipActuated, "skip-actuated", true, "skip coordinates that already have an actuator")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored channels in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&channels, "channels", nil, "channels to plot (default: all states)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to csv or an image",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (.csv, .svg, .png, .pdf)")
	exportCmd.Flags().StringSliceVar(&channels, "channels", nil, "channels to include in image output")
	exportCmd.MarkFlagRequired("out")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "simulate with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	convertCmd := &cobra.Command{
		Use:   "convert [trajectory.csv]",
		Short: "round-trip a trajectory through the solver grid layout",
		Args:  cobra.ExactArgs(1),
		RunE:  convertTrajectory,
	}
	convertCmd.Flags().IntVar(&numMultipliers, "multipliers", -1, "multiplier rows in the adjunct block (default: keep original split)")
	convertCmd.Flags().StringVar(&outPath, "out", "", "write the round-tripped trajectory to a csv file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "simulate a range of initial angles in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepCount, "count", 8, "number of starts")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.1, "first initial value for the first state")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 3.0, "last initial value for the first state")
	sweepCmd.Flags().Float64Var(&sweepJitter, "jitter", 0, "seeded uniform perturbation applied to every start")

	rootCmd.AddCommand(buildCmd, runCmd, listCmd, plotCmd, exportCmd, liveCmd, convertCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&links, "links", 1, "number of links (nlink)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = wall clock)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4, rk45)")
	cmd.Flags().StringVar(&controller, "controller", "none", "controller (none, pid)")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&target, "target", 0.0, "pid target")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive stepping")
	cmd.Flags().Float64Var(&tolerance, "tol", 1e-6, "adaptive step tolerance")
	cmd.Flags().StringArrayVar(&initSets, "set", nil, "initial state override, e.g. --set j0/q0/value=0.5")
	cmd.Flags().StringArrayVar(&paramSets, "param", nil, "system parameter override, e.g. --param length=2")
}

// loadConfig layers defaults, an optional config file, environment
// overrides, and finally CLI flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if len(args) > 0 {
		cfg.Model = args[0]
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	flagOverride := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	flagOverride("links", func() { cfg.Links = links })
	flagOverride("dt", func() { cfg.Dt = dt })
	flagOverride("time", func() { cfg.Duration = duration })
	flagOverride("seed", func() { cfg.Seed = seed })
	flagOverride("integrator", func() { cfg.Integrator = integrator })
	flagOverride("controller", func() { cfg.Controller = controller })
	flagOverride("kp", func() { cfg.Gains.Kp = kp })
	flagOverride("ki", func() { cfg.Gains.Ki = ki })
	flagOverride("kd", func() { cfg.Gains.Kd = kd })
	flagOverride("target", func() { cfg.Gains.Target = target })
	if reserves > 0 {
		cfg.Reserves.Enabled = true
		cfg.Reserves.OptimalForce = reserves
		cfg.Reserves.SkipActuated = skipActuated
	}

	for _, kv := range initSets {
		name, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad --set %q, want name=value", kv)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("bad --set %q: %w", kv, err)
		}
		if cfg.InitState == nil {
			cfg.InitState = make(map[string]float64)
		}
		cfg.InitState[name] = f
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildModel(cfg *config.Config) (*model.Model, error) {
	var m *model.Model
	var err error
	switch cfg.Model {
	case "pendulum":
		m = model.Pendulum()
	case "double_pendulum":
		m = model.DoublePendulum()
	case "nlink":
		m, err = model.NLinkPendulum(cfg.Links)
	case "point_mass":
		m = model.PlanarPointMass()
	case "brachistochrone":
		m = model.Brachistochrone()
	default:
		return nil, fmt.Errorf("unknown model: %s (want pendulum, double_pendulum, nlink, point_mass, brachistochrone)", cfg.Model)
	}
	if err != nil {
		return nil, err
	}

	for _, joint := range weldJoints {
		if err := model.ReplaceJointWithWeld(m, joint); err != nil {
			return nil, err
		}
	}
	if cfg.Reserves.Enabled {
		if err := model.CreateReserveActuators(m, cfg.Reserves.OptimalForce, cfg.Reserves.SkipActuated); err != nil {
			return nil, err
		}
	}
	return m, m.Validate()
}

func pickIntegrator(name string) (dyn.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	}
	return nil, fmt.Errorf("unknown integrator: %s", name)
}

func pickController(cfg *config.Config, dim int) (dyn.Controller, error) {
	switch cfg.Controller {
	case "none", "":
		return control.NewNone(dim), nil
	case "pid":
		return control.NewPID(cfg.Gains.Kp, cfg.Gains.Ki, cfg.Gains.Kd, cfg.Gains.Target, dim), nil
	}
	return nil, fmt.Errorf("unknown controller: %s", cfg.Controller)
}

// initialState starts from the model's coordinate defaults and applies
// named overrides from the config.
func initialState(m *model.Model, cfg *config.Config) dyn.State {
	names := m.StateChannels()
	x0 := dyn.State(cfg.BuildInitState(names))
	for i, name := range names {
		if _, ok := cfg.InitState[name]; ok {
			continue
		}
		path, found := strings.CutSuffix(name, "/value")
		if !found {
			continue
		}
		if v, ok := m.CoordinateDefault(path); ok {
			x0[i] = v
		}
	}
	return x0
}

// applyParams writes --param overrides into the system, which must expose
// its parameters through the Configurable interface when any are given.
func applyParams(sys dyn.System) error {
	if len(paramSets) == 0 {
		return nil
	}
	c, ok := sys.(dyn.Configurable)
	if !ok {
		return fmt.Errorf("model %T has no tunable parameters", sys)
	}
	for _, kv := range paramSets {
		name, val, found := strings.Cut(kv, "=")
		if !found {
			return fmt.Errorf("bad --param %q, want name=value", kv)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("bad --param %q: %w", kv, err)
		}
		if err := c.SetParam(name, f); err != nil {
			return err
		}
	}
	return nil
}

func simConfig(cfg *config.Config) dyn.Config {
	sc := dyn.DefaultConfig()
	sc.Dt = cfg.Dt
	sc.Duration = cfg.Duration
	sc.Seed = cfg.Seed
	if sc.Seed == 0 {
		sc.Seed = time.Now().UnixNano()
	}
	sc.Adaptive = adaptive
	sc.Tolerance = tolerance
	return sc
}

func buildModelCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	fmt.Print(m.Summary())
	if savePath != "" {
		if err := model.Save(savePath, m); err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", savePath)
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	sys, err := physics.FromModel(m)
	if err != nil {
		return err
	}
	if err := applyParams(sys); err != nil {
		return err
	}
	integ, err := pickIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	ctrl, err := pickController(cfg, sys.ControlDim())
	if err != nil {
		return err
	}

	s := sim.New(sys, integ, ctrl)
	s.AddMetric(metrics.NewControlEffort())
	if _, ok := sys.(dyn.Hamiltonian); ok {
		s.AddMetric(metrics.NewEnergyDrift(sys))
	}

	fmt.Printf("running %s...\n", cfg.Model)
	start := time.Now()
	result, err := s.Run(context.Background(), initialState(m, cfg), simConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	traj, err := trajectory.FromResult(result)
	if err != nil {
		return err
	}

	st, err := storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runID, err := st.Save(storage.RunMetadata{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Seed:       cfg.Seed,
		Metrics:    result.Metrics,
	}, traj)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if len(result.Errors) > 0 {
		fmt.Printf("errors: %d (first: %v)\n", len(result.Errors), result.Errors[0])
	}
	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	st, err := storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tCREATED\tDURATION\tDT\tINTEG\tCTRL\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Created.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	st, err := storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.LoadMetadata(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if traj.Empty() {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", traj.NumTimes())

	names := channels
	if len(names) == 0 {
		names = traj.StateNames
		if len(names) > 6 {
			names = names[:6]
		}
	}
	for _, name := range names {
		out, err := viz.Channel(traj, name, 70, 12)
		if err != nil {
			return err
		}
		fmt.Println(out)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	st, err := storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if traj.Empty() && !strings.HasSuffix(outPath, ".csv") {
		return fmt.Errorf("no data to export")
	}

	if strings.HasSuffix(outPath, ".csv") {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := traj.WriteCSV(f); err != nil {
			return err
		}
	} else {
		if err := viz.WritePlot(traj, channels, outPath); err != nil {
			return err
		}
	}
	fmt.Printf("exported: %s\n", outPath)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	sys, err := physics.FromModel(m)
	if err != nil {
		return err
	}
	if err := applyParams(sys); err != nil {
		return err
	}
	integ, err := pickIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	ctrl, err := pickController(cfg, sys.ControlDim())
	if err != nil {
		return err
	}
	view := tui.NewLiveView(cfg.Model, sys, integ, ctrl, initialState(m, cfg), cfg.Dt, cfg.Duration)
	return tui.Run(view)
}

func convertTrajectory(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	traj, err := trajectory.ReadCSV(f)
	if err != nil {
		return err
	}
	grid, err := trajectory.ToGrid(traj)
	if err != nil {
		return err
	}

	fmt.Printf("times: %d\n", len(grid.Time))
	fmt.Printf("states: %d\n", len(grid.StateNames))
	fmt.Printf("controls: %d\n", len(grid.ControlNames))
	fmt.Printf("adjuncts: %d (multipliers %d, derivatives %d)\n",
		len(grid.AdjunctNames), len(traj.MultiplierNames), len(traj.DerivativeNames))
	fmt.Printf("parameters: %d\n", len(grid.ParameterNames))

	if outPath == "" {
		return nil
	}
	nm := numMultipliers
	if nm < 0 {
		nm = len(traj.MultiplierNames)
	}
	back, err := trajectory.FromGrid(grid, nm)
	if err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := back.WriteCSV(out); err != nil {
		return err
	}
	fmt.Printf("wrote: %s\n", outPath)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	sys, err := physics.FromModel(m)
	if err != nil {
		return err
	}
	if err := applyParams(sys); err != nil {
		return err
	}
	if sweepCount < 2 {
		return fmt.Errorf("sweep needs at least 2 starts")
	}
	if _, err := pickIntegrator(cfg.Integrator); err != nil {
		return err
	}
	if _, err := pickController(cfg, sys.ControlDim()); err != nil {
		return err
	}

	sc := simConfig(cfg)
	base := initialState(m, cfg)
	var starts []dyn.State
	if sweepJitter > 0 {
		starts = sim.JitterStarts(base, sweepCount, sweepJitter, sc.Seed)
	} else {
		starts = make([]dyn.State, sweepCount)
		for i := range starts {
			x0 := base.Clone()
			x0[0] = sweepFrom + (sweepTo-sweepFrom)*float64(i)/float64(sweepCount-1)
			starts[i] = x0
		}
	}

	sw := sim.NewSweep(sys,
		func() dyn.Integrator {
			integ, _ := pickIntegrator(cfg.Integrator)
			return integ
		},
		func() dyn.Controller {
			ctrl, _ := pickController(cfg, sys.ControlDim())
			return ctrl
		})

	results, err := sw.Run(context.Background(), starts, sc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "START\tSTEPS\tENERGY DRIFT")
	for i, res := range results {
		fmt.Fprintf(w, "%.4f\t%d\t%.6f\n", starts[i][0], res.StepsTaken, res.EnergyDrift)
	}
	return w.Flush()
}
