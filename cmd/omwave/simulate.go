package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/omwave/internal/experiment"
	"github.com/san-kum/omwave/internal/export"
	"github.com/san-kum/omwave/internal/gui"
	"github.com/san-kum/omwave/internal/logging"
	"github.com/san-kum/omwave/internal/metrics"
	"github.com/san-kum/omwave/internal/render"
	"github.com/san-kum/omwave/internal/sim"
	"github.com/san-kum/omwave/internal/storage"
	"github.com/san-kum/omwave/internal/viz"
)

var (
	metricsAddr  string
	stepsPerTick int
	gifPath      string
	theme        string
	framesOut    string
	framesEvery  int
	framesRun    string
	frameWidth   int
	frameHeight  int
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address during the run")
	return cmd
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&stepsPerTick, "steps-per-tick", 2, "engine steps per frame")
	cmd.Flags().StringVar(&gifPath, "gif", "wavefronts.gif", "GIF path for recordings")
	cmd.Flags().StringVar(&theme, "theme", "ember", "colour theme")
	return cmd
}

func newGUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "run a simulation in a desktop window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addSimFlags(cmd)
	return cmd
}

func newFramesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frames",
		Short: "render a simulation to GIF or SVG",
		Long: "Runs a simulation and writes an animated GIF (one frame every --every steps)\n" +
			"or an SVG of the final frame, chosen by the --out extension. With --run the\n" +
			"final fronts of a stored run are rendered instead.",
		Args: cobra.NoArgs,
		RunE: exportFrames,
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&framesOut, "out", "wavefronts.gif", "output file (.gif or .svg)")
	cmd.Flags().IntVar(&framesEvery, "every", 10, "steps between captured frames")
	cmd.Flags().StringVar(&framesRun, "run", "", "render a stored run instead of simulating")
	cmd.Flags().IntVar(&frameWidth, "width", 640, "frame width in pixels")
	cmd.Flags().IntVar(&frameHeight, "height", 360, "frame height in pixels")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if metricsAddr != "" {
		srv := serveMetrics(ctx, metricsAddr, collector)
		defer srv.Shutdown(context.Background())
	}

	exp := experiment.New(cfg, preset, logger)
	if err := exp.Setup(collector); err != nil {
		return err
	}

	fmt.Printf("running %s medium (%d wavefronts, %d steps, dt=%.4f)...\n",
		cfg.Medium, cfg.Wavefronts.Count, cfg.Steps, exp.TimeStep())
	start := time.Now()

	result, err := exp.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Println("interrupted, saving partial run")
		result.Stopped = true
	} else if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(exp.Metadata(), result)
	if err != nil {
		return err
	}

	engine := exp.Engine()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Clock.Steps)
	fmt.Printf("elapsed time: %.4f\n", result.Clock.Elapsed)
	fmt.Printf("phase difference: %.6f %s\n", result.Clock.PhaseDifference, engine.PhaseUnit())
	fmt.Printf("wavelength: %.4f fm\n", engine.Wavelength())
	fmt.Printf("speed: %.4f c\n", engine.Speed())
	return nil
}

func serveMetrics(ctx context.Context, addr string, collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info(ctx, "serving metrics", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server failed", logging.Err(err))
		}
	}()
	return srv
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, preset, logging.Noop())
	newEngine, err := exp.EngineFactory()
	if err != nil {
		return err
	}
	renderer, err := exp.Renderer(640, 360)
	if err != nil {
		return err
	}
	dt, err := cfg.TimeStep()
	if err != nil {
		return err
	}

	return viz.Run(viz.Options{
		NewEngine:    newEngine,
		Renderer:     renderer,
		Dt:           dt,
		StepsPerTick: stepsPerTick,
		MaxSteps:     cfg.Steps,
		GIFPath:      gifPath,
		Theme:        theme,
	})
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, preset, logger)
	newEngine, err := exp.EngineFactory()
	if err != nil {
		return err
	}
	w, h := gui.WindowSize()
	renderer, err := exp.Renderer(w, h)
	if err != nil {
		return err
	}
	dt, err := cfg.TimeStep()
	if err != nil {
		return err
	}

	return gui.Run(gui.Config{
		Title:     fmt.Sprintf("omwave: %s medium", cfg.Medium),
		NewEngine: newEngine,
		Renderer:  renderer,
		Dt:        dt,
		MaxSteps:  cfg.Steps,
	})
}

func exportFrames(cmd *cobra.Command, args []string) error {
	if framesEvery < 1 {
		return fmt.Errorf("--every must be at least 1, got %d", framesEvery)
	}
	ext := strings.ToLower(filepath.Ext(framesOut))
	if ext != ".gif" && ext != ".svg" {
		return fmt.Errorf("unsupported frame format %q (want .gif or .svg)", ext)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var (
		renderer *render.Renderer
		fronts   []sim.Positions
		caption  string
		frames   []*image.Paletted
	)

	if framesRun != "" {
		st := storage.New(dataDir)
		meta, err := loadRun(st, framesRun)
		if err != nil {
			return err
		}
		fronts, err = st.LoadWavefronts(meta.ID)
		if err != nil {
			return err
		}
		// the stored constants describe the medium; the domain comes from flags
		cfg.Medium = meta.Medium
		cfg.Constants.WellDepth = meta.Constants.WellDepth
		cfg.Constants.MassNumber = meta.Constants.MassNumber
		cfg.Constants.RadiusConstant = meta.Constants.RadiusConstant
		cfg.Constants.Diffuseness = meta.Constants.Diffuseness
		renderer, err = experiment.New(cfg, meta.Preset, logger).Renderer(frameWidth, frameHeight)
		if err != nil {
			return err
		}
		caption = fmt.Sprintf("%s  t=%.2f  phase=%.4f %s", meta.ID, meta.Elapsed, meta.FinalPhase, meta.PhaseUnit)
		frames = append(frames, renderer.Frame(fronts))
	} else {
		exp := experiment.New(cfg, preset, logger)
		renderer, err = exp.Renderer(frameWidth, frameHeight)
		if err != nil {
			return err
		}
		rec := render.NewRecorder(renderer)
		var engine *sim.Engine
		capture := sim.ObserverFunc(func(clk sim.Clock) {
			if clk.Steps%framesEvery == 0 {
				rec.Capture(engine.Positions())
			}
		})
		if err := exp.Setup(capture); err != nil {
			return err
		}
		engine = exp.Engine()
		rec.Capture(engine.Positions())

		result, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		fronts = result.Positions
		frames = rec.Frames()
		caption = fmt.Sprintf("%s  t=%.2f  phase=%.4f %s", cfg.Medium, result.Clock.Elapsed, result.Clock.PhaseDifference, engine.PhaseUnit())
	}

	f, err := os.Create(framesOut)
	if err != nil {
		return err
	}
	defer f.Close()

	if ext == ".gif" {
		err = render.WriteGIF(f, frames, 4)
	} else {
		err = export.FrameSVG(f, renderer.Grid(), fronts, frameWidth, frameHeight, caption)
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d frame(s) to %s\n", len(frames), framesOut)
	return nil
}
