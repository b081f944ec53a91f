package gui

import (
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/omwave/internal/dynamo"
	"github.com/san-kum/omwave/internal/render"
	"github.com/san-kum/omwave/internal/sim"
)

const (
	screenW      = 1280
	screenH      = 720
	maxTelemetry = 400
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColFront   = rl.NewColor(40, 90, 255, 255)
	ColRef     = rl.NewColor(0, 40, 200, 255)
)

// Config describes what the window shows. NewEngine is called at start and
// on every reset.
type Config struct {
	Title     string
	NewEngine func() (*sim.Engine, error)
	Renderer  *render.Renderer
	Dt        float64
	MaxSteps  int
}

type App struct {
	cfg           Config
	engine        *sim.Engine
	background    rl.Texture2D
	Running       bool
	StepsPerFrame int
	Telemetry     []float64
	err           error
}

func initWindow(title string) {
	rl.InitWindow(screenW, screenH, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed. The renderer must
// produce frames of the window size.
func Run(cfg Config) error {
	if cfg.NewEngine == nil || cfg.Renderer == nil {
		return errors.New("gui: engine factory and renderer are required")
	}
	if cfg.Renderer.Width != screenW || cfg.Renderer.Height != screenH {
		return fmt.Errorf("gui: renderer is %dx%d, window is %dx%d", cfg.Renderer.Width, cfg.Renderer.Height, screenW, screenH)
	}
	if cfg.Title == "" {
		cfg.Title = "omwave"
	}

	initWindow(cfg.Title)
	defer rl.CloseWindow()

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer rl.UnloadTexture(app.background)
	app.RunLoop()
	return app.err
}

func NewApp(cfg Config) (*App, error) {
	engine, err := cfg.NewEngine()
	if err != nil {
		return nil, err
	}
	img := rl.NewImageFromImage(cfg.Renderer.Frame(nil))
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	return &App{
		cfg:           cfg,
		engine:        engine,
		background:    tex,
		Running:       true,
		StepsPerFrame: 1,
		Telemetry:     make([]float64, 0, maxTelemetry),
	}, nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !rl.IsKeyPressed(rl.KeyQ) {
		a.Update()
		a.Draw()
	}
}

func (a *App) reset() {
	engine, err := a.cfg.NewEngine()
	if err != nil {
		a.err = err
		a.Running = false
		return
	}
	a.engine = engine
	a.Telemetry = a.Telemetry[:0]
	a.err = nil
	a.Running = true
}

func (a *App) Update() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		a.reset()
	case rl.IsKeyPressed(rl.KeyUp):
		a.StepsPerFrame = min(a.StepsPerFrame*2, 64)
	case rl.IsKeyPressed(rl.KeyDown):
		a.StepsPerFrame = max(a.StepsPerFrame/2, 1)
	}

	if !a.Running {
		return
	}
	for i := 0; i < a.StepsPerFrame; i++ {
		if a.cfg.MaxSteps > 0 && a.engine.Clock().Steps >= a.cfg.MaxSteps {
			a.Running = false
			return
		}
		if err := a.engine.Step(a.cfg.Dt); err != nil {
			if !errors.Is(err, dynamo.ErrStopped) {
				a.err = err
			}
			a.Running = false
			return
		}
		a.Telemetry = append(a.Telemetry, a.engine.PhaseDifference())
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	rl.DrawTexture(a.background, 0, 0, rl.White)
	a.drawFronts()
	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) drawFronts() {
	r := a.cfg.Renderer
	for i, f := range a.engine.Positions() {
		col, thick := ColFront, float32(1.5)
		if i == 0 {
			col, thick = ColRef, 2.5
		}
		for j := 1; j < len(f.Xs); j++ {
			x0, y0 := r.Project(f.Xs[j-1], f.Ys[j-1])
			x1, y1 := r.Project(f.Xs[j], f.Ys[j])
			rl.DrawLineEx(rl.NewVector2(float32(x0), float32(y0)), rl.NewVector2(float32(x1), float32(y1)), thick, col)
		}
	}
}

func (a *App) DrawHUD() {
	clk := a.engine.Clock()
	rl.DrawRectangle(20, 20, 420, 134, rl.NewColor(10, 10, 10, 200))
	rl.DrawText("omwave", 30, 30, 24, ColSelect)
	rl.DrawText(fmt.Sprintf(":: %s", a.engine.Medium().Shape()), 140, 36, 16, ColText)
	rl.DrawText(fmt.Sprintf("t = %.2f fm/c   steps = %d   x%d", clk.Elapsed, clk.Steps, a.StepsPerFrame), 30, 64, 16, ColAccent)
	rl.DrawText(fmt.Sprintf("phase difference = %.4f [%s]", clk.PhaseDifference, a.engine.PhaseUnit()), 30, 88, 16, ColAccent)
	rl.DrawText(fmt.Sprintf("E = %.2f MeV   index at core = %.4f", a.engine.Energy(), a.engine.CoreIndex()), 30, 112, 16, ColText)

	a.DrawTelemetry()

	status, col := "RUNNING", ColSelect
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	if a.err != nil {
		status, col = "ERROR: "+a.err.Error(), rl.Red
	}
	rl.DrawText(status, 1000, 30, 16, col)
	rl.DrawText("[SPACE] PAUSE  [R] RESET  [UP/DOWN] SPEED  [Q] QUIT", 700, 690, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 690, 14, ColTextDim)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	rl.DrawText(fmt.Sprintf("phase: %.3f", a.Telemetry[len(a.Telemetry)-1]), int32(rectX+width+10), int32(rectY+height-10), 14, ColText)
}

// WindowSize is the frame size a renderer for Run must use.
func WindowSize() (int, int) { return screenW, screenH }
