package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/omwave/internal/config"
	"github.com/san-kum/omwave/internal/logging"
	"github.com/san-kum/omwave/internal/physics"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	logger    = logging.Noop()

	// simulation flags, shared by every command that builds an engine
	configFile string
	preset     string
	medium     string
	steps      int
	integrator string
	phaseUnit  string
	parallel   bool
)

// main registers the omwave commands and executes the root command. It exits
// with status 1 when a command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "omwave",
		Short:         "wavefront propagation through a nuclear optical potential",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, logFormat, os.Stderr)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".omwave", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newGUICmd(),
		newFramesCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newMapCmd(),
		newCompareCmd(),
		newSweepCmd(),
		newFitCmd(),
		newScenarioCmd(),
		newPresetsCmd(),
		newTOF2ECmd(),
		newE2TOFCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&medium, "medium", string(physics.ShapeWoodsSaxon), "medium shape")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().StringVar(&phaseUnit, "phase-unit", config.DefaultPhaseUnit, "phase difference unit (radians, fm)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "integrate wavefronts concurrently")
}

// resolveConfig layers preset, config file and explicitly set flags, in that
// order, and validates the result.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("medium") {
		cfg.Medium = medium
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("phase-unit") {
		cfg.PhaseUnit = phaseUnit
	}
	if flags.Changed("parallel") {
		cfg.Parallel = parallel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
