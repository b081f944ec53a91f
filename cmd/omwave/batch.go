package main

import (
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/omwave/internal/automation"
	"github.com/san-kum/omwave/internal/config"
	"github.com/san-kum/omwave/internal/optim"
	"github.com/san-kum/omwave/internal/storage"
)

var (
	noSave       bool
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepPoints  int
	sweepWorkers int
	fitRanges    []string
	fitTarget    float64
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted batch of simulations from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	return cmd
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one physical parameter and plot the final phase difference",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&sweepParam, "param", "energy", fmt.Sprintf("parameter to sweep %v", config.ParamNames()))
	cmd.Flags().Float64Var(&sweepMin, "min", 5, "first value")
	cmd.Flags().Float64Var(&sweepMax, "max", 100, "last value")
	cmd.Flags().IntVar(&sweepPoints, "points", 20, "number of values")
	cmd.Flags().IntVar(&sweepWorkers, "workers", runtime.NumCPU(), "concurrent runs")
	return cmd
}

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fit",
		Short:   "grid-search parameters that reproduce a target phase difference",
		Example: "  omwave fit --target -3.5 --range energy=10:50:9 --range mass_number=16:208:7",
		Args:    cobra.NoArgs,
		RunE:    runFit,
	}
	addSimFlags(cmd)
	cmd.Flags().StringArrayVar(&fitRanges, "range", nil, "parameter grid as name=min:max:n (repeatable)")
	cmd.Flags().Float64Var(&fitTarget, "target", 0, "target phase difference in the configured unit")
	_ = cmd.MarkFlagRequired("range")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	fmt.Printf("scenario %s: %d runs\n", scenario.Name, len(scenario.Runs))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	fmt.Println()

	outcomes, err := automation.RunScenario(cmd.Context(), scenario, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMEDIUM\tSTEPS\tPHASE\tRUN ID")
	for _, out := range outcomes {
		id := out.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.5f %s\t%s\n",
			out.Name,
			out.Metadata.Medium,
			out.Result.Clock.Steps,
			out.Result.Clock.PhaseDifference,
			out.Metadata.PhaseUnit,
			id,
		)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s over [%g, %g] (%d points, %d steps each)...\n\n", sweepParam, sweepMin, sweepMax, sweepPoints, cfg.Steps)
	points, err := automation.RunSweep(cmd.Context(), automation.Sweep{
		Base:    cfg,
		Param:   sweepParam,
		Min:     sweepMin,
		Max:     sweepMax,
		Points:  sweepPoints,
		Workers: sweepWorkers,
	}, logger)
	if err != nil {
		return err
	}

	phases := make([]float64, len(points))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPHASE (%s)\tWAVELENGTH\tSPEED\n", sweepParam, cfg.PhaseUnit)
	for i, p := range points {
		phases[i] = p.Phase
		fmt.Fprintf(w, "%g\t%.6f\t%.4f fm\t%.4f c\n", p.Value, p.Phase, p.Wavelength, p.Speed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(phases) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(phases,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("final phase difference vs %s", sweepParam)),
		))
	}
	return nil
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(fitRanges))
	ranges := make([][]float64, 0, len(fitRanges))
	for _, spec := range fitRanges {
		name, values, err := optim.ParseRange(spec)
		if err != nil {
			return err
		}
		if _, err := cfg.Param(name); err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	fmt.Printf("searching %d grid points for phase difference %g %s...\n", gs.Size(), fitTarget, cfg.PhaseUnit)
	best, objective, err := gs.Search(cmd.Context(), optim.FromConfig(cfg), optim.PhaseTarget(fitTarget))
	if err != nil {
		return err
	}

	fmt.Printf("best: %s\n", optim.SortedParams(best))

	exp, err := optim.FromConfig(cfg)(best)
	if err != nil {
		return err
	}
	if err := exp.Setup(); err != nil {
		return err
	}
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("phase difference: %.6f %s (|Δ| = %.2e)\n", result.Clock.PhaseDifference, cfg.PhaseUnit, objective)
	return nil
}
