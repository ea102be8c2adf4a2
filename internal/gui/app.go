package gui

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/metrics"
	"github.com/san-kum/partext/internal/scene"
)

// Theme Colors
var (
	ColBg      = rl.NewColor(0, 0, 0, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

const (
	glowScale     = 6
	maxFrameStep  = 0.1
	telemetrySize = 200
	hudFont       = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

// Builder turns a preset into a ready scene.
type Builder func(cfg *config.Config) (*scene.Scene, error)

type App struct {
	Scene     *scene.Scene
	Name      string
	Window    config.WindowConfig
	Camera    rl.Camera3D
	Time      float64
	Running   bool
	Follow    bool
	Sway      bool
	InMenu    bool
	Presets   []string
	Selected  int
	Telemetry []float64
	Font      rl.Font
	Err       error

	ParticleTex rl.Texture2D

	build    Builder
	residual *metrics.Residual
	quit     bool
}

func initWindow(w config.WindowConfig) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w.Width), int32(w.Height), "partext")
	rl.SetTargetFPS(int32(w.FPS))
	rl.SetExitKey(0)
}

// loadFont prefers Liberation Mono for the HUD and falls back to the
// raylib default font.
func loadFont() rl.Font {
	if !rl.FileExists(hudFont) {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(hudFont, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func newApp(w config.WindowConfig) *App {
	app := &App{
		Window:    w,
		Follow:    true,
		Sway:      true,
		Font:      loadFont(),
		Telemetry: make([]float64, 0, telemetrySize),
		residual:  metrics.NewResidual(),
	}

	img := rl.GenImageGradientRadial(32, 32, 0.0, rl.White, rl.NewColor(0, 0, 0, 0))
	app.ParticleTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	return app
}

// Run opens a window on one scene and blocks until it is closed.
func Run(s *scene.Scene, name string, w config.WindowConfig) {
	initWindow(w)
	defer rl.CloseWindow()
	app := newApp(w)
	defer rl.UnloadTexture(app.ParticleTex)
	app.load(s, name)
	app.RunLoop()
}

// RunInteractive opens a window on the preset menu.
func RunInteractive(build Builder, w config.WindowConfig) {
	initWindow(w)
	defer rl.CloseWindow()
	app := newApp(w)
	defer rl.UnloadTexture(app.ParticleTex)
	app.build = build
	app.InMenu = true
	app.Presets = config.ListPresets()
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !a.quit && !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

func (a *App) load(s *scene.Scene, name string) {
	a.Scene, a.Name = s, name
	a.Time = 0
	a.Running = true
	a.Telemetry = a.Telemetry[:0]
	a.residual.Reset()
	a.Camera = rl.NewCamera3D(
		rl.NewVector3(0, 0, float32(s.Camera.Distance)),
		rl.NewVector3(0, 0, 0),
		rl.NewVector3(0, 1, 0),
		float32(s.Camera.FOV),
		rl.CameraPerspective,
	)
}

func (a *App) focus() *scene.Element {
	for _, e := range a.Scene.Elements {
		if e.Config().Role == config.RoleCountdown {
			return e
		}
	}
	if len(a.Scene.Elements) > 0 {
		return a.Scene.Elements[0]
	}
	return nil
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}

	if a.InMenu {
		a.updateMenu()
		return
	}

	if rl.IsKeyPressed(rl.KeyEscape) && a.build != nil {
		a.InMenu = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.Time = 0
		a.Scene.Countdown.Reset()
		a.Telemetry = a.Telemetry[:0]
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.Follow = !a.Follow
	}
	if rl.IsKeyPressed(rl.KeyS) {
		a.Sway = !a.Sway
	}

	if a.Running {
		a.Time += min(float64(rl.GetFrameTime()), maxFrameStep)
		a.Scene.Tick(a.Time)
		a.observe()
	}

	if a.Follow {
		x, y, z := a.Scene.CameraRig(a.Time)
		a.Camera.Position = rl.NewVector3(float32(x), float32(y), float32(z))
	} else {
		a.Camera.Position = rl.NewVector3(0, 0, float32(a.Scene.Camera.Distance))
	}
}

func (a *App) observe() {
	e := a.focus()
	if e == nil || e.Targets() == nil {
		return
	}
	a.residual.Observe(e.Pool(), e.Targets(), a.Time)
	a.Telemetry = append(a.Telemetry, a.residual.Value())
	if len(a.Telemetry) > telemetrySize {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) updateMenu() {
	if len(a.Presets) == 0 {
		return
	}
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.Selected = (a.Selected + 1) % len(a.Presets)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.Selected = (a.Selected - 1 + len(a.Presets)) % len(a.Presets)
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		name := a.Presets[a.Selected]
		s, err := a.build(config.GetPreset(name))
		if err != nil {
			a.Err = err
			slog.Error("scene build failed", "preset", name, "error", err)
			return
		}
		a.Err = nil
		a.load(s, name)
		a.InMenu = false
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.drawScene()
		a.drawHUD()
	}

	rl.EndDrawing()
}

func (a *App) drawHUD() {
	a.drawText("partext", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Name), 140, 34, 16, ColText)
	a.drawText(a.Scene.Countdown.Format(), 30, 70, 20, ColAccent)

	y := 110
	for _, e := range a.Scene.Elements {
		res := e.LastResult()
		line := fmt.Sprintf("%-8s %7d pts", e.Name(), res.Count)
		if res.Truncated {
			line += "  truncated"
		}
		a.drawText(line, 30, y, 14, ColTextDim)
		y += 20
	}

	a.drawTelemetry()

	status, col := "RUNNING", ColSelect
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	w, h := a.Window.Width, a.Window.Height
	a.drawText(status, w-130, 30, 16, col)
	a.drawText("[SPACE] PAUSE  [R] RESET  [C] CAMERA  [S] SWAY  [ESC] MENU  [Q] QUIT", w-660, h-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, h-40, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func formatResidual(v float64) string { return fmt.Sprintf("residual %.3f", v) }

func (a *App) drawMenu() {
	a.drawText("partext", 50, 50, 40, ColSelect)
	a.drawText("Select Preset", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Presets {
		line := fmt.Sprintf("  %-12s %s", name, config.PresetInfo[name])
		col := ColText
		if i == a.Selected {
			line, col = fmt.Sprintf("> %-12s %s", name, config.PresetInfo[name]), ColSelect
		}
		a.drawText(line, 50, y, 20, col)
		y += 28
	}
	if a.Err != nil {
		a.drawText(a.Err.Error(), 50, y+20, 16, rl.Red)
	}

	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", a.Window.Width-430, a.Window.Height-40, 14, ColTextDim)
}
