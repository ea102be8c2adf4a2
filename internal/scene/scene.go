package scene

import (
	"math"
	"time"

	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/countdown"
	"github.com/san-kum/partext/internal/glyph"
)

const (
	swayYawRate    = 0.15
	swayYawAmp     = 0.15
	swayPitchRate  = 0.2
	swayPitchAmp   = 0.08
	cameraYRate    = 0.8
	cameraDepthAmp = 5
)

// Scene is the board: its elements, the countdown feeding the timer
// elements and the camera setup.
type Scene struct {
	Elements  []*Element
	Countdown *countdown.Countdown
	Camera    config.CameraConfig

	resampler *Resampler
}

// New builds a scene from cfg. Countdown elements take their initial text
// from the countdown.
func New(cfg *config.Config, raster glyph.Rasterizer) (*Scene, error) {
	opts := Options{Capacity: cfg.Capacity, Seed: cfg.Seed, Workers: cfg.Workers}
	s := &Scene{
		Countdown: countdown.New(cfg.CountdownSeconds),
		Camera:    cfg.Camera,
	}
	for i, ec := range cfg.Elements {
		e, err := NewElement(ec, raster, opts, int64(i)*2)
		if err != nil {
			return nil, err
		}
		if e.cfg.Role == config.RoleCountdown {
			e.SetText(s.Countdown.Format())
		}
		s.Elements = append(s.Elements, e)
	}
	s.Countdown.Changed()
	return s, nil
}

// AttachResampler moves sampling passes off the caller's goroutine.
func (s *Scene) AttachResampler(r *Resampler) { s.resampler = r }

// Element returns the element with the given name, or nil.
func (s *Scene) Element(name string) *Element {
	for _, e := range s.Elements {
		if e.cfg.Name == name {
			return e
		}
	}
	return nil
}

// Prime samples every dirty element synchronously and returns the first
// error encountered.
func (s *Scene) Prime() error {
	var first error
	for _, e := range s.Elements {
		if !e.Dirty() {
			continue
		}
		if err := e.Resample(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Tick runs one frame at elapsed seconds since start: the countdown is
// updated, changed elements are resampled and every pool advances.
func (s *Scene) Tick(elapsed float64) {
	s.Countdown.Update(time.Duration(elapsed * float64(time.Second)))
	if s.Countdown.Changed() {
		text := s.Countdown.Format()
		for _, e := range s.Elements {
			if e.cfg.Role == config.RoleCountdown {
				e.SetText(text)
			}
		}
	}
	for _, e := range s.Elements {
		if !e.claim() {
			continue
		}
		if s.resampler != nil {
			s.resampler.Request(e)
		} else {
			_ = e.Resample()
		}
	}
	for _, e := range s.Elements {
		e.Tick(elapsed)
	}
}

// Sway returns the slow group rotation applied to the whole board.
func Sway(elapsed float64) (rx, ry float64) {
	rx = math.Cos(elapsed*swayPitchRate) * swayPitchAmp
	ry = math.Sin(elapsed*swayYawRate) * swayYawAmp
	return rx, ry
}

// CameraRig returns the camera position at elapsed seconds. The camera
// always looks at the origin.
func CameraRig(cam config.CameraConfig, elapsed float64) (x, y, z float64) {
	t := elapsed * cam.SwaySpeed
	x = math.Sin(t) * cam.RangeX
	y = math.Sin(t*cameraYRate) * cam.RangeY
	z = cam.Distance + math.Cos(t)*cameraDepthAmp
	return x, y, z
}

// CameraRig returns the scene camera position at elapsed seconds.
func (s *Scene) CameraRig(elapsed float64) (x, y, z float64) {
	return CameraRig(s.Camera, elapsed)
}
