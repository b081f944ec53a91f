package viz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"

	"github.com/san-kum/omwave/internal/config"
	"github.com/san-kum/omwave/internal/render"
	"github.com/san-kum/omwave/internal/sim"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	cfg := config.DefaultConfig()
	medium, err := cfg.MediumModel()
	if err != nil {
		t.Fatal(err)
	}
	renderer, err := render.NewRenderer(medium, render.Domain(cfg.Domain), 64, 36)
	if err != nil {
		t.Fatal(err)
	}
	dt, err := cfg.TimeStep()
	if err != nil {
		t.Fatal(err)
	}
	return Options{
		NewEngine: func() (*sim.Engine, error) {
			waves, err := cfg.BuildWavefronts()
			if err != nil {
				return nil, err
			}
			return sim.New(waves, sim.Options{})
		},
		Renderer:     renderer,
		Dt:           dt,
		StepsPerTick: 2,
		GIFPath:      filepath.Join(t.TempDir(), "out.gif"),
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModelValidates(t *testing.T) {
	g := NewWithT(t)
	opts := testOptions(t)

	bad := opts
	bad.NewEngine = nil
	_, err := NewModel(bad)
	g.Expect(err).To(HaveOccurred())

	bad = opts
	bad.Renderer = nil
	_, err = NewModel(bad)
	g.Expect(err).To(HaveOccurred())

	bad = opts
	bad.Dt = 0
	_, err = NewModel(bad)
	g.Expect(err).To(HaveOccurred())
}

func TestTickStepsEngine(t *testing.T) {
	g := NewWithT(t)
	m, err := NewModel(testOptions(t))
	g.Expect(err).NotTo(HaveOccurred())

	m = update(m, TickMsg{})
	g.Expect(m.engine.Clock().Steps).To(Equal(2))
	g.Expect(m.phases).To(HaveLen(2))

	m = update(m, key(" "))
	m = update(m, TickMsg{})
	g.Expect(m.engine.Clock().Steps).To(Equal(2))

	m = update(m, key("+"))
	g.Expect(m.stepsPerTick).To(Equal(4))
	m = update(m, key("-"))
	m = update(m, key("-"))
	m = update(m, key("-"))
	g.Expect(m.stepsPerTick).To(Equal(1))
}

func TestResetRestoresInitialFronts(t *testing.T) {
	g := NewWithT(t)
	m, err := NewModel(testOptions(t))
	g.Expect(err).NotTo(HaveOccurred())
	initial := m.engine.Positions()

	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	g.Expect(m.engine.Clock().Steps).To(Equal(4))

	m = update(m, key("r"))
	g.Expect(m.engine.Clock().Steps).To(BeZero())
	g.Expect(m.engine.Positions()).To(Equal(initial))
	g.Expect(m.phases).To(HaveLen(1))
}

func TestMaxStepsPauses(t *testing.T) {
	g := NewWithT(t)
	opts := testOptions(t)
	opts.MaxSteps = 3
	m, err := NewModel(opts)
	g.Expect(err).NotTo(HaveOccurred())

	for range 4 {
		m = update(m, TickMsg{})
	}
	g.Expect(m.engine.Clock().Steps).To(Equal(3))
	g.Expect(m.running).To(BeFalse())
	g.Expect(m.status()).To(Equal("DONE"))
}

func TestRecordingWritesGIF(t *testing.T) {
	g := NewWithT(t)
	opts := testOptions(t)
	m, err := NewModel(opts)
	g.Expect(err).NotTo(HaveOccurred())

	m = update(m, key("g"))
	g.Expect(m.recording).To(BeTrue())
	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	g.Expect(m.recorder.Len()).To(Equal(3))

	m = update(m, key("g"))
	g.Expect(m.recording).To(BeFalse())
	g.Expect(m.err).NotTo(HaveOccurred())
	g.Expect(m.saved).To(Equal(opts.GIFPath))

	data, err := os.ReadFile(opts.GIFPath)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(data[:6])).To(Equal("GIF89a"))
}

func TestViewShowsTelemetry(t *testing.T) {
	g := NewWithT(t)
	m, err := NewModel(testOptions(t))
	g.Expect(err).NotTo(HaveOccurred())
	m = update(m, TickMsg{})

	view := m.View()
	g.Expect(view).To(ContainSubstring("Phase"))
	g.Expect(view).To(ContainSubstring("radians"))
	g.Expect(view).To(ContainSubstring("Wavelength"))
	g.Expect(view).To(ContainSubstring("Core index"))
	g.Expect(view).To(ContainSubstring("MeV"))
	g.Expect(view).To(ContainSubstring("RUNNING"))

	m = update(m, key("?"))
	g.Expect(m.View()).To(ContainSubstring("KEYBOARD SHORTCUTS"))

	m = update(m, key("t"))
	g.Expect(m.theme.Name).To(Equal("ocean"))
}

func TestQuit(t *testing.T) {
	g := NewWithT(t)
	m, err := NewModel(testOptions(t))
	g.Expect(err).NotTo(HaveOccurred())

	_, cmd := m.Update(key("q"))
	g.Expect(cmd).NotTo(BeNil())
	g.Expect(cmd()).To(Equal(tea.Quit()))
}

func TestCanvasDrawsAndShades(t *testing.T) {
	g := NewWithT(t)
	c := NewCanvas(4, 2)

	c.Set(0, 0)
	c.Set(1, 3)
	g.Expect(c.Grid[0][0]).To(Equal(rune(0x2800 | 0x1 | 0x80)))

	c.Set(-1, 0)
	c.Set(100, 100)
	c.DrawLine(0, 4, 7, 4)
	for col := range 4 {
		g.Expect(c.Grid[1][col]).NotTo(Equal(rune(0x2800)))
	}

	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	g.Expect(lines).To(HaveLen(2))

	c.Shade[0][2] = 1
	out := c.Render(FieldStyles(ThemeMinimal, 2))
	g.Expect(strings.Count(out, "\n")).To(Equal(2))

	c.Clear()
	g.Expect(c.Grid[0][0]).To(Equal(rune(0x2800)))
	g.Expect(c.Shade[0][2]).To(Equal(1))
}

func TestThemes(t *testing.T) {
	g := NewWithT(t)
	g.Expect(GetTheme("nope").Name).To(Equal("ember"))
	g.Expect(nextTheme("minimal").Name).To(Equal("ember"))
	g.Expect(hexColor(255, 0, 16)).To(Equal("#ff0010"))
	r, gg, b := parseHex("#0a0B0c")
	g.Expect([]int{r, gg, b}).To(Equal([]int{10, 11, 12}))
	g.Expect(ProgressBar(0.5, 4)).To(Equal("██░░"))
}
