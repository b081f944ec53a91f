package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/omwave/internal/analysis"
	"github.com/san-kum/omwave/internal/storage"
)

var exportFronts bool

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id|latest]",
		Short: "plot the phase history and reference front of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
}

func newExportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-csv [run_id|latest]",
		Short: "export run diagnostics to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	cmd.Flags().BoolVar(&exportFronts, "wavefronts", false, "export final wavefront positions instead")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id|latest]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
}

// loadRun resolves a run id, where "latest" names the newest run.
func loadRun(st *storage.Store, id string) (*storage.RunMetadata, error) {
	if id == "latest" {
		return st.Latest()
	}
	return st.Load(id)
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
	fmt.Fprintln(w, "ID\tMEDIUM\tTIME\tSTEPS\tDT\tINTEG\tPHASE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%s\t%.5f %s\n",
			run.ID,
			run.Medium,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Integrator,
			run.FinalPhase,
			run.PhaseUnit,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := loadRun(st, args[0])
	if err != nil {
		return err
	}

	times, phases, err := st.LoadDiagnostics(meta.ID)
	if err != nil {
		return err
	}
	if len(phases) == 0 {
		return fmt.Errorf("no data to plot")
	}
	fronts, err := st.LoadWavefronts(meta.ID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("medium: %s (A=%g, E=%g MeV)\n", meta.Medium, meta.Constants.MassNumber, meta.Constants.ReferenceEnergy)
	fmt.Printf("samples: %d\n\n", len(phases))

	fmt.Println(asciigraph.Plot(phases,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("phase difference (%s) vs step", meta.PhaseUnit)),
	))
	fmt.Println()

	if rate, err := analysis.PhaseRate(times, phases); err == nil {
		fmt.Printf("phase rate: %.6f %s per unit time\n\n", rate, meta.PhaseUnit)
	}

	if len(fronts) == 0 {
		return nil
	}
	ref := fronts[0]
	aberration := analysis.Aberration(ref.Xs)
	fmt.Println(asciigraph.Plot(aberration,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("reference front offset from its edge (fm) vs sample"),
	))
	fmt.Println()

	stats := analysis.Summarize(aberration)
	fmt.Printf("offset: mean %.4f  std %.4f  peak-to-valley %.4f fm\n", stats.Mean, stats.StdDev, stats.PeakToValley)
	if fit, err := analysis.FitCurvature(ref.Ys, ref.Xs); err == nil {
		fmt.Printf("curvature: %.6f 1/fm  focal length %.2f fm  residual %.4f\n", fit.Curvature, fit.FocalLength, fit.Residual)
	}
	spectrum := analysis.Spectrum(aberration)
	if bin := analysis.DominantBin(spectrum); bin > 0 {
		fmt.Printf("dominant spatial frequency: bin %d\n", bin)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := loadRun(st, args[0])
	if err != nil {
		return err
	}

	if exportFronts {
		fronts, err := st.LoadWavefronts(meta.ID)
		if err != nil {
			return err
		}
		return storage.WriteWavefrontsCSV(os.Stdout, fronts)
	}

	times, phases, err := st.LoadDiagnostics(meta.ID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteDiagnosticsCSV(os.Stdout, times, phases)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	data, err := st.Export(meta.ID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, data)
}
