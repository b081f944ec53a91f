package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/omwave/internal/config"
	"github.com/san-kum/omwave/internal/storage"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Steps = 20
	cfg.Wavefronts.Count = 2
	cfg.Wavefronts.Points = 21
	return cfg
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const scenarioYAML = `name: energies
description: two energies on oxygen
runs:
  - name: low
    preset: oxygen
    config: small.yaml
    params:
      energy: 10
  - preset: oxygen
    config: small.yaml
    integrator: euler
    phase_unit: fm
`

const smallYAML = `steps: 15
wavefronts:
  count: 2
  points: 21
`

func TestLoadScenario(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	writeFile(t, dir, "small.yaml", smallYAML)
	path := writeFile(t, dir, "scenario.yaml", scenarioYAML)

	sc, err := LoadScenario(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sc.Name).To(Equal("energies"))
	g.Expect(sc.Runs).To(HaveLen(2))
	g.Expect(sc.Runs[1].Name).To(Equal("run-2"))
	g.Expect(sc.Runs[0].Config).To(Equal(filepath.Join(dir, "small.yaml")))

	cfg, err := sc.Runs[0].Build()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Constants.MassNumber).To(Equal(16.0))
	g.Expect(cfg.Constants.ReferenceEnergy).To(Equal(10.0))
	g.Expect(cfg.Steps).To(Equal(15))
}

func TestLoadScenarioErrors(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()

	_, err := LoadScenario(filepath.Join(dir, "missing.yaml"))
	g.Expect(err).To(HaveOccurred())

	_, err = LoadScenario(writeFile(t, dir, "empty.yaml", "name: nothing\n"))
	g.Expect(err).To(MatchError(ContainSubstring("no runs")))

	_, err = LoadScenario(writeFile(t, dir, "bad.yaml", "runs: [\n"))
	g.Expect(err).To(HaveOccurred())
}

func TestBuildRejectsBadRuns(t *testing.T) {
	g := NewWithT(t)

	_, err := ScenarioRun{Preset: "nope"}.Build()
	g.Expect(err).To(HaveOccurred())

	_, err = ScenarioRun{Params: map[string]float64{"gravity": 1}}.Build()
	g.Expect(err).To(HaveOccurred())

	_, err = ScenarioRun{Params: map[string]float64{"energy": -1}}.Build()
	g.Expect(err).To(HaveOccurred())
}

func TestRunScenarioStoresRuns(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	writeFile(t, dir, "small.yaml", smallYAML)
	sc, err := LoadScenario(writeFile(t, dir, "scenario.yaml", scenarioYAML))
	g.Expect(err).NotTo(HaveOccurred())

	st := storage.New(filepath.Join(dir, "data"))
	g.Expect(st.Init()).To(Succeed())

	outcomes, err := RunScenario(context.Background(), sc, st, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcomes).To(HaveLen(2))
	g.Expect(outcomes[0].Result.Clock.Steps).To(Equal(15))
	g.Expect(outcomes[1].Metadata.Integrator).To(Equal("euler"))
	g.Expect(outcomes[1].Metadata.PhaseUnit).To(Equal("fm"))

	runs, err := st.List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runs).To(HaveLen(2))
}

func TestRunScenarioWithoutStore(t *testing.T) {
	g := NewWithT(t)
	sc := &Scenario{Name: "one", Runs: []ScenarioRun{{Name: "a", Steps: 5}}}
	sc.Runs[0].Params = map[string]float64{"energy": 30}

	outcomes, err := RunScenario(context.Background(), sc, nil, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcomes).To(HaveLen(1))
	g.Expect(outcomes[0].RunID).To(BeEmpty())
	g.Expect(outcomes[0].Metadata.Constants.ReferenceEnergy).To(Equal(30.0))
}

func TestRunSweepOrderedAndDeterministic(t *testing.T) {
	g := NewWithT(t)
	sweep := Sweep{Base: smallConfig(), Param: "energy", Min: 10, Max: 40, Points: 4}

	serial, err := RunSweep(context.Background(), sweep, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(serial).To(HaveLen(4))
	for i, want := range []float64{10, 20, 30, 40} {
		g.Expect(serial[i].Value).To(BeNumerically("~", want, 1e-12))
	}
	g.Expect(serial[3].Speed).To(BeNumerically(">", serial[0].Speed))
	g.Expect(serial[3].Wavelength).To(BeNumerically("<", serial[0].Wavelength))

	sweep.Workers = 3
	parallel, err := RunSweep(context.Background(), sweep, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(parallel).To(Equal(serial))
}

func TestRunSweepErrors(t *testing.T) {
	g := NewWithT(t)

	_, err := RunSweep(context.Background(), Sweep{Param: "energy", Min: 1, Max: 2, Points: 2}, nil)
	g.Expect(err).To(HaveOccurred())

	_, err = RunSweep(context.Background(), Sweep{Base: smallConfig(), Param: "gravity", Min: 1, Max: 2, Points: 2}, nil)
	g.Expect(err).To(HaveOccurred())

	_, err = RunSweep(context.Background(), Sweep{Base: smallConfig(), Param: "energy", Min: 1, Max: 2, Points: 1}, nil)
	g.Expect(err).To(HaveOccurred())

	_, err = RunSweep(context.Background(), Sweep{Base: smallConfig(), Param: "energy", Min: -5, Max: 5, Points: 3}, nil)
	g.Expect(err).To(HaveOccurred())
}
