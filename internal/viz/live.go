package viz

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/omwave/internal/render"
	"github.com/san-kum/omwave/internal/sim"
)

const (
	width           = 72
	height          = 24
	historyCapacity = 600
	shadeLevels     = 8
	maxStepsPerTick = 64
	tickRate        = time.Second / 30
	gifDelay        = 3
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type TickMsg time.Time

// Options configures the live view.
type Options struct {
	// NewEngine builds a fresh engine; it is called again on reset.
	NewEngine func() (*sim.Engine, error)
	// Renderer supplies the domain, the potential samples for shading and
	// the frames written when recording.
	Renderer     *render.Renderer
	Dt           float64
	StepsPerTick int
	// MaxSteps pauses the view once reached. Zero runs until quit.
	MaxSteps int
	GIFPath  string
	Theme    string
}

// Model steps a propagation engine on every tick and draws the fronts over
// the shaded medium.
type Model struct {
	newEngine    func() (*sim.Engine, error)
	engine       *sim.Engine
	renderer     *render.Renderer
	grid         *render.Grid
	dt           float64
	stepsPerTick int
	maxSteps     int
	canvas       *Canvas
	theme        Theme
	shades       []lipgloss.Style
	running      bool
	phases       []float64
	recorder     *render.Recorder
	recording    bool
	gifPath      string
	saved        string
	showHelp     bool
	err          error
}

// NewModel builds the first engine and prepares the canvas.
func NewModel(opts Options) (Model, error) {
	if opts.NewEngine == nil {
		return Model{}, errors.New("viz: engine factory is required")
	}
	if opts.Renderer == nil {
		return Model{}, errors.New("viz: renderer is required")
	}
	if opts.Dt <= 0 {
		return Model{}, fmt.Errorf("viz: time step must be positive, got %g", opts.Dt)
	}
	engine, err := opts.NewEngine()
	if err != nil {
		return Model{}, err
	}
	if opts.StepsPerTick < 1 {
		opts.StepsPerTick = 1
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "wavefronts.gif"
	}

	theme := GetTheme(opts.Theme)
	m := Model{
		newEngine:    opts.NewEngine,
		engine:       engine,
		renderer:     opts.Renderer,
		grid:         opts.Renderer.Grid(),
		dt:           opts.Dt,
		stepsPerTick: opts.StepsPerTick,
		maxSteps:     opts.MaxSteps,
		canvas:       NewCanvas(width, height),
		theme:        theme,
		shades:       FieldStyles(theme, shadeLevels),
		running:      true,
		phases:       make([]float64, 0, historyCapacity),
		recorder:     render.NewRecorder(opts.Renderer),
		gifPath:      opts.GIFPath,
	}
	m.shadeField()
	m.phases = append(m.phases, engine.PhaseDifference())
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the engine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick = min(maxStepsPerTick, m.stepsPerTick*2)
		case "-", "_":
			m.stepsPerTick = max(1, m.stepsPerTick/2)
		case "g":
			m.toggleRecording()
		case "t":
			m.theme = nextTheme(m.theme.Name)
			m.shades = FieldStyles(m.theme, shadeLevels)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	for range m.stepsPerTick {
		if m.maxSteps > 0 && m.engine.Clock().Steps >= m.maxSteps {
			m.running = false
			return
		}
		if err := m.engine.Step(m.dt); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	m.phases = append(m.phases, m.engine.PhaseDifference())
	if len(m.phases) > historyCapacity {
		m.phases = m.phases[1:]
	}
	if m.recording {
		m.recorder.Capture(m.engine.Positions())
	}
}

// reset rebuilds the engine from its initial fronts.
func (m *Model) reset() {
	engine, err := m.newEngine()
	if err != nil {
		m.err = err
		return
	}
	m.engine = engine
	m.err = nil
	m.phases = append(m.phases[:0], engine.PhaseDifference())
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.saved = ""
		m.recorder.Reset()
		m.recorder.Capture(m.engine.Positions())
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.err = err
	}
	m.recorder.Reset()
}

func (m *Model) saveGIF() error {
	if m.recorder.Len() == 0 {
		return nil
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	defer f.Close()
	if err := render.WriteGIF(f, m.recorder.Frames(), gifDelay); err != nil {
		return err
	}
	m.saved = m.gifPath
	return nil
}

// shadeField assigns each canvas cell the potential level at its centre.
func (m *Model) shadeField() {
	d := m.grid.Domain
	for row := range height {
		y := d.YMax - (float64(row)+0.5)/height*(d.YMax-d.YMin)
		for col := range width {
			x := d.XMin + (float64(col)+0.5)/width*(d.XMax-d.XMin)
			level := int(m.grid.Normalized(m.grid.At(x, y)) * (shadeLevels - 1))
			m.canvas.Shade[row][col] = max(0, min(shadeLevels-1, level))
		}
	}
}

// project maps a world point onto canvas sub-pixels.
func (m *Model) project(x, y float64) (int, int) {
	d := m.grid.Domain
	px := (x - d.XMin) / (d.XMax - d.XMin) * float64(width*2-1)
	py := (d.YMax - y) / (d.YMax - d.YMin) * float64(height*4-1)
	return int(px + 0.5), int(py + 0.5)
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, front := range m.engine.Positions() {
		for i := 1; i < len(front.Xs); i++ {
			x0, y0 := m.project(front.Xs[i-1], front.Ys[i-1])
			x1, y1 := m.project(front.Xs[i], front.Ys[i])
			m.canvas.DrawLine(x0, y0, x1, y1)
		}
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return "HALTED"
	case m.recording && m.running:
		return fmt.Sprintf("RECORDING (%d frames)", m.recorder.Len())
	case m.running:
		return "RUNNING"
	case m.maxSteps > 0 && m.engine.Clock().Steps >= m.maxSteps:
		return "DONE"
	default:
		return "PAUSED"
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(m.shades))

	clk := m.engine.Clock()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(string(m.engine.Medium().Shape()))+" MEDIUM") + "\n")
	s.WriteString(m.status() + "\n\n")
	if len(m.phases) > 1 {
		chart := asciigraph.Plot(m.phases, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Phase difference"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", clk.Elapsed)) + "\n")
	s.WriteString(labelStyle.Render("Phase") + valueStyle.Render(fmt.Sprintf("%.5f %s", clk.PhaseDifference, m.engine.PhaseUnit())) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d (x%d/tick)", clk.Steps, m.stepsPerTick)) + "\n")
	if m.maxSteps > 0 {
		s.WriteString(labelStyle.Render("Progress") + valueStyle.Render(ProgressBar(float64(clk.Steps)/float64(m.maxSteps), 20)) + "\n")
	}
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.2f MeV", m.engine.Energy())) + "\n")
	s.WriteString(labelStyle.Render("Core index") + valueStyle.Render(fmt.Sprintf("%.4f", m.engine.CoreIndex())) + "\n")
	s.WriteString(labelStyle.Render("Wavelength") + valueStyle.Render(fmt.Sprintf("%.4f fm", m.engine.Wavelength())) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%.4f c", m.engine.Speed())) + "\n")
	s.WriteString(labelStyle.Render("Fronts") + valueStyle.Render(fmt.Sprintf("%d", m.engine.Count())) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(m.theme.Name) + "\n")
	if m.saved != "" {
		s.WriteString(labelStyle.Render("Saved") + valueStyle.Render(m.saved) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n+/-:Steps per tick"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset to initial fronts  ║
║  Q        - Quit                     ║
║  +/-      - Steps per tick           ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view on the terminal.
func Run(opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
