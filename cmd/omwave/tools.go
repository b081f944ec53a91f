package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/omwave/internal/analysis"
	"github.com/san-kum/omwave/internal/config"
	"github.com/san-kum/omwave/internal/experiment"
	"github.com/san-kum/omwave/internal/physics"
	"github.com/san-kum/omwave/internal/tof"
)

var (
	mapY        float64
	mapPoints   int
	flightPath  float64
	neutronMass float64
)

func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "plot the potential and refractive index along a horizontal cut",
		Args:  cobra.NoArgs,
		RunE:  mapMedium,
	}
	addSimFlags(cmd)
	cmd.Flags().Float64Var(&mapY, "y", 0, "transverse coordinate of the cut (fm)")
	cmd.Flags().IntVar(&mapPoints, "points", 80, "samples along the cut")
	return cmd
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same configuration",
		Long:  "Runs the configured simulation once per integrator (all registered ones by default)\nand reports the final phase, the step-halving error and the observed order.",
		RunE:  compareIntegrators,
	}
	addSimFlags(cmd)
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, config.Presets[name].Description)
			}
		},
	}
}

func newTOF2ECmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tof2e [tof_ns]",
		Short: "convert neutron time of flight (ns) to kinetic energy (MeV)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid time of flight %q: %w", args[0], err)
			}
			e, err := beamline().EnergyFromTOF(t)
			if err != nil {
				return err
			}
			fmt.Printf("%.4f MeV\n", e)
			return nil
		},
	}
	addBeamlineFlags(cmd)
	return cmd
}

func newE2TOFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "e2tof [energy_mev]",
		Short: "convert neutron kinetic energy (MeV) to time of flight (ns)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid energy %q: %w", args[0], err)
			}
			t, err := beamline().TOFFromEnergy(e)
			if err != nil {
				return err
			}
			fmt.Printf("%.4f ns\n", t)
			return nil
		},
	}
	addBeamlineFlags(cmd)
	return cmd
}

func addBeamlineFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&flightPath, "distance", tof.DefaultDistance, "flight path (cm)")
	cmd.Flags().Float64Var(&neutronMass, "mass", tof.DefaultNeutronMass, "particle mass (MeV/c²)")
}

func beamline() tof.Beamline {
	return tof.Beamline{Distance: flightPath, Mass: neutronMass}
}

func mapMedium(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	m, err := experiment.NewRegistry().GetMedium(cfg.Medium, cfg.PhysicsConstants())
	if err != nil {
		return err
	}
	xs, err := physics.Samples(cfg.Domain.XMin, cfg.Domain.XMax, mapPoints)
	if err != nil {
		return err
	}

	potential := make([]float64, len(xs))
	index := make([]float64, len(xs))
	for i, x := range xs {
		potential[i] = m.PotentialAt(x, mapY)
		n, err := physics.MediumIndexAt(m, x, mapY, cfg.Constants.ReferenceEnergy)
		if err != nil {
			return err
		}
		index[i] = n
	}

	c := cfg.PhysicsConstants()
	fmt.Printf("medium: %s  depth %.2f MeV  radius %.3f fm  diffuseness %.3f fm\n",
		m.Shape(), m.Depth(), c.Radius(), c.SurfaceWidth())
	fmt.Printf("cut: y = %.2f fm, x in [%.1f, %.1f] fm\n\n", mapY, cfg.Domain.XMin, cfg.Domain.XMax)
	fmt.Println(asciigraph.Plot(potential,
		asciigraph.Height(10),
		asciigraph.Width(mapPoints),
		asciigraph.Caption("potential U (MeV)"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(index,
		asciigraph.Height(10),
		asciigraph.Width(mapPoints),
		asciigraph.Caption(fmt.Sprintf("refractive index n at E=%g MeV", cfg.Constants.ReferenceEnergy)),
	))
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}
	dt, err := cfg.TimeStep()
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators on %s medium (dt=%.4f, steps=%d)\n\n", cfg.Medium, dt, cfg.Steps)
	fmt.Printf("%-10s  %14s  %12s  %8s  %10s\n", "integrator", "final_phase", "halving_err", "order", "time_ms")
	fmt.Println(strings.Repeat("-", 62))

	for _, name := range names {
		factory, err := registry.IntegratorFactory(name)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		run := cfg.Clone()
		run.Integrator = name
		exp := experiment.New(run, preset, logger)
		if err := exp.Setup(); err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}

		waves, err := run.BuildWavefronts()
		if err != nil {
			return err
		}
		conv, err := analysis.StepConvergence(waves[0], factory, dt)
		if err != nil {
			return err
		}
		order, err := analysis.ObservedOrder(waves[0], factory, dt)
		if err != nil {
			order = math.NaN()
		}

		fmt.Printf("%-10s  %14.6f  %12.2e  %8.2f  %10.2f\n",
			name, result.Clock.PhaseDifference, conv.MaxAbsErr, order, float64(elapsed.Microseconds())/1000)
	}

	return nil
}
