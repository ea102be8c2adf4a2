package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/partext/internal/scene"
)

const (
	radToDeg      = 180 / math.Pi
	particleBlend = rl.BlendAdditive
)

// fogFactor is 0 up to near and 1 from far on, linear in between.
func fogFactor(dist, near, far float64) float64 {
	if far <= near {
		return 0
	}
	f := (dist - near) / (far - near)
	return math.Min(1, math.Max(0, f))
}

// pointColor scales a particle color to 8 bits, fades it toward the
// background by fog and applies the element opacity.
func pointColor(r, g, b float32, opacity, fog float64) rl.Color {
	mix := func(c float32, bg uint8) uint8 {
		v := float64(c)*255*(1-fog) + float64(bg)*fog
		return uint8(math.Min(255, math.Max(0, math.Round(v))))
	}
	return rl.NewColor(mix(r, ColBg.R), mix(g, ColBg.G), mix(b, ColBg.B), uint8(math.Round(opacity*255)))
}

// drawScene renders every element inside the board sway transform.
func (a *App) drawScene() {
	rx, ry := 0.0, 0.0
	if a.Sway {
		rx, ry = scene.Sway(a.Time)
	}

	rl.BeginMode3D(a.Camera)
	rl.PushMatrix()
	rl.Rotatef(float32(rx*radToDeg), 1, 0, 0)
	rl.Rotatef(float32(ry*radToDeg), 0, 1, 0)
	for _, e := range a.Scene.Elements {
		a.drawElement(e)
	}
	rl.PopMatrix()
	rl.EndMode3D()
}

func (a *App) drawElement(e *scene.Element) {
	targets := e.Targets()
	if targets == nil {
		return
	}
	cfg := e.Config()
	pool := e.Pool()
	origin := e.Position()
	cam := a.Scene.Camera
	eye := a.Camera.Position
	size := float32(cfg.ParticleSize)

	// every element blends additively without writing depth; glow only
	// changes the sprite and opacity
	rl.BeginBlendMode(particleBlend)
	rl.DisableDepthMask()
	defer rl.EnableDepthMask()
	defer rl.EndBlendMode()

	for i := 0; i < targets.Count; i++ {
		if !pool.Visible(i) {
			continue
		}
		x, y, z := pool.Position(i)
		pos := rl.NewVector3(x+float32(origin[0]), y+float32(origin[1]), z+float32(origin[2]))
		dist := float64(rl.Vector3Distance(pos, eye))
		fog := fogFactor(dist, cam.FogNear, cam.FogFar)
		if fog >= 1 {
			continue
		}
		r, g, b := pool.Color(i)
		col := pointColor(r, g, b, cfg.Opacity(), fog)
		if cfg.Glow {
			rl.DrawBillboard(a.Camera, a.ParticleTex, pos, size*glowScale, col)
		} else {
			rl.DrawCube(pos, size, size, size, col)
		}
	}
}

// drawTelemetry plots the focus element's residual history as a line strip.
func (a *App) drawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	lo, hi := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - lo) / (hi - lo)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(formatResidual(a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
