package viz

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/metrics"
	"github.com/san-kum/partext/internal/scene"
)

const (
	historyCapacity = 600
	maxFrameStep    = 0.1
	panelWidth      = 46
)

type Options struct {
	Cols, Rows  int // canvas size in terminal cells
	FPS         int
	PointBudget int // points plotted per frame across all elements
	GIFPath     string
}

func DefaultOptions() Options {
	return Options{Cols: 100, Rows: 30, FPS: 60, PointBudget: 30000, GIFPath: "partext.gif"}
}

type TickMsg time.Time

// Model drives a scene from the terminal frame clock and renders it to a
// braille canvas next to a stats panel.
type Model struct {
	scene  *scene.Scene
	name   string
	opts   Options
	canvas *Canvas
	camera *Camera

	running  bool
	follow   bool
	sway     bool
	mono     bool
	showHelp bool
	redraw   bool // view changed without the pools moving

	elapsed float64
	last    time.Time
	frameMs float64

	focus           *scene.Element
	residual        *metrics.Residual
	jitter          *metrics.Jitter
	residualHistory []float64
	jitterHistory   []float64

	recording bool
	frames    []*image.Paletted
	status    string
}

func NewModel(s *scene.Scene, name string, opts Options) Model {
	def := DefaultOptions()
	if opts.Cols <= 0 || opts.Rows <= 0 {
		opts.Cols, opts.Rows = def.Cols, def.Rows
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.PointBudget <= 0 {
		opts.PointBudget = def.PointBudget
	}
	if opts.GIFPath == "" {
		opts.GIFPath = def.GIFPath
	}

	cam := NewCamera()
	if s.Camera.FOV > 0 {
		cam.FOV = s.Camera.FOV * math.Pi / 180
	}
	if s.Camera.FogFar > 0 {
		cam.Far = s.Camera.FogFar
	}

	m := Model{
		scene:    s,
		name:     name,
		opts:     opts,
		canvas:   NewCanvas(opts.Cols, opts.Rows),
		camera:   cam,
		running:  true,
		follow:   true,
		sway:     true,
		residual: metrics.NewResidual(),
		jitter:   metrics.NewJitter(),
	}
	for _, e := range s.Elements {
		if e.Config().Role == config.RoleCountdown {
			m.focus = e
			break
		}
	}
	if m.focus == nil && len(s.Elements) > 0 {
		m.focus = s.Elements[0]
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Elapsed returns scene time in seconds; it stands still while paused.
func (m Model) Elapsed() float64 { return m.elapsed }
func (m Model) Running() bool    { return m.running }
func (m Model) Canvas() *Canvas  { return m.canvas }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.redraw = true
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "c":
			m.follow = !m.follow
		case "s":
			m.sway = !m.sway
		case "m":
			m.mono = !m.mono
		case "t":
			NextTheme()
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "0":
			m.camera.ResetView()
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case tea.WindowSizeMsg:
		cols, rows := msg.Width-panelWidth-4, msg.Height-2
		if cols >= 20 && rows >= 8 {
			m.canvas = NewCanvas(cols, rows)
			m.redraw = true
		}
	case TickMsg:
		m.advance(time.Time(msg))
		if m.poolsMoved() || m.redraw {
			m.draw()
			m.redraw = false
		}
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

// advance moves scene time forward by the wall time since the last frame,
// capped so a stalled terminal does not jump the countdown.
func (m *Model) advance(now time.Time) {
	dt := 1 / float64(m.opts.FPS)
	if !m.last.IsZero() {
		dt = min(max(now.Sub(m.last).Seconds(), 0), maxFrameStep)
	}
	m.last = now
	if !m.running {
		return
	}

	start := time.Now()
	m.elapsed += dt
	m.scene.Tick(m.elapsed)
	m.frameMs = 0.9*m.frameMs + 0.1*float64(time.Since(start).Microseconds())/1000

	if m.focus == nil {
		return
	}
	if targets := m.focus.Targets(); targets != nil {
		m.residual.Observe(m.focus.Pool(), targets, m.elapsed)
		m.jitter.Observe(m.focus.Pool(), targets, m.elapsed)
		m.residualHistory = appendCapped(m.residualHistory, m.residual.Value())
		m.jitterHistory = appendCapped(m.jitterHistory, m.jitter.Value())
	}
}

// poolsMoved consumes every element's update flag and reports whether any
// pool changed since the last frame.
func (m *Model) poolsMoved() bool {
	moved := false
	for _, e := range m.scene.Elements {
		if e.Pool().ConsumeUpdate() {
			moved = true
		}
	}
	return moved
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) reset() {
	m.elapsed = 0
	m.scene.Countdown.Reset()
	m.camera.ResetView()
	m.residual.Reset()
	m.jitter.Reset()
	m.residualHistory = m.residualHistory[:0]
	m.jitterHistory = m.jitterHistory[:0]
}

// draw projects every element's visible particles onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	pw, ph := m.canvas.PixelSize()

	if m.follow {
		x, y, z := m.scene.CameraRig(m.elapsed)
		m.camera.Position = Vec3{x, y, z}
	} else {
		m.camera.Position = Vec3{0, 0, m.scene.Camera.Distance}
	}
	view := m.camera.View(pw, ph)

	var rx, ry float64
	if m.sway {
		rx, ry = scene.Sway(m.elapsed)
	}
	mono, _ := colorful.Hex(string(CurrentTheme.Primary))
	budget := m.opts.PointBudget / max(1, len(m.scene.Elements))

	for _, e := range m.scene.Elements {
		targets := e.Targets()
		if targets == nil {
			continue
		}
		pool, origin := e.Pool(), e.Position()
		stride := max(1, targets.Count/max(1, budget))
		for i := 0; i < targets.Count; i += stride {
			if !pool.Visible(i) {
				continue
			}
			x, y, z := pool.Position(i)
			p := RotateXY(Vec3{float64(x) + origin[0], float64(y) + origin[1], float64(z) + origin[2]}, rx, ry)
			sx, sy, _, ok := view.Project(p)
			if !ok {
				continue
			}
			col := mono
			if !m.mono {
				r, g, b := pool.Color(i)
				col = colorful.Color{R: float64(r), G: float64(g), B: float64(b)}
			}
			m.canvas.Plot(sx, sy, col)
		}
	}
}

func (m Model) View() string {
	th := CurrentTheme
	label := MetricLabel.Width(12)
	value := MetricValue.Foreground(th.Text)

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.name), th.Primary, th.Accent) + "\n")
	switch {
	case m.recording:
		s.WriteString(StatusRecording.Render("● REC") + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	cd := m.scene.Countdown
	s.WriteString(label.Render("Countdown") + value.Render(cd.Format()) + "\n")
	if cd.Initial() > 0 {
		s.WriteString(ProgressBar(float64(cd.Remaining())/float64(cd.Initial()), 28) + "\n")
	}
	s.WriteString(label.Render("Time") + value.Render(fmt.Sprintf("%.1fs", m.elapsed)) + "\n")
	s.WriteString(label.Render("Frame") + value.Render(fmt.Sprintf("%.2fms", m.frameMs)) + "\n")
	s.WriteString(label.Render("Dots") + value.Render(fmt.Sprintf("%d", m.canvas.Dots())) + "\n\n")

	s.WriteString(HeaderStyle.Render("ELEMENTS") + "\n")
	for _, e := range m.scene.Elements {
		pool := e.Pool()
		parked := float64(pool.ParkedCount()) / float64(pool.Capacity()) * 100
		res := e.LastResult()
		line := fmt.Sprintf("%-8s %-10q %6d pts %3.0f%% parked", e.Name(), truncate(e.Text(), 8), res.Count, parked)
		if res.Truncated {
			line += " !"
		}
		s.WriteString(Subtle.Render(line) + "\n")
	}
	s.WriteString("\n")

	if len(m.residualHistory) > 1 {
		chart := asciigraph.Plot(m.residualHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Residual"))
		s.WriteString(lipgloss.NewStyle().Foreground(th.Secondary).Render(chart) + "\n")
	}
	s.WriteString(label.Render("Jitter") + SparklineChart(m.jitterHistory, 28) + "\n")
	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	s.WriteString("\n" + Separator(38) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause R:Reset Q:Quit C:Camera\nS:Sway M:Mono T:Theme G:Record ?:Help"))

	panel := Panel.Width(panelWidth).BorderForeground(th.Muted).Render(s.String())
	canvas := lipgloss.NewStyle().Padding(1, 2).Render(m.canvas.Render())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvas, panel)
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart countdown        ║
║  Q        - Quit                     ║
║  C        - Toggle camera rig        ║
║  S        - Toggle board sway        ║
║  M        - Monochrome points        ║
║  X/Y      - Orbit (shift reverses)   ║
║  +/-      - Zoom, 0 resets view      ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// captureFrame rasterizes the canvas into a GIF frame, one block per dot.
func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	dotW, dotH := charW/2, charH/4
	c := m.canvas
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), palette.Plan9)
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - blank)
			if pattern == 0 {
				continue
			}
			tint := c.Tint[row][col].Clamped()
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.Set(col*charW+dx*dotW+px, row*charH+dy*dotH+py, tint)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	delay := max(1, 100/m.opts.FPS)
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(m.opts.GIFPath)
	if err != nil {
		m.status = "record failed: " + err.Error()
		slog.Error("gif create failed", "path", m.opts.GIFPath, "error", err)
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.status = "record failed: " + err.Error()
		slog.Error("gif encode failed", "path", m.opts.GIFPath, "error", err)
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.opts.GIFPath)
	slog.Info("gif saved", "path", m.opts.GIFPath, "frames", len(m.frames))
}

// Run shows a single scene until the user quits.
func Run(s *scene.Scene, name string, opts Options) error {
	_, err := tea.NewProgram(NewModel(s, name, opts), tea.WithAltScreen()).Run()
	return err
}
