package glyph

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/partext/internal/particle"
)

const (
	alphaThreshold = 128
	backShade      = 0.4
	minShade       = 0.5
	parkedSpread   = 20
)

// Result describes one sampling pass.
type Result struct {
	Count     int  // slots holding glyph points
	Lit       int  // lit cells found on the stride grid
	Needed    int  // points the text would need without a capacity limit
	Truncated bool // Needed exceeded the buffer capacity
	Width     int  // coverage grid size in reference pixels
	Height    int
}

// Point is one sampled target. Points live only for the duration of a pass.
type Point struct {
	Position [3]float32
	Color    Color
}

// Sampler converts text into particle targets. A Sampler owns its random
// source and is not safe for concurrent use.
type Sampler struct {
	raster   Rasterizer
	capacity int
	rng      *rand.Rand
	cell     []Point
}

// NewSampler returns a sampler producing buffers of the given capacity. A
// nil rng is seeded from the clock.
func NewSampler(r Rasterizer, capacity int, rng *rand.Rand) *Sampler {
	if capacity < 1 {
		capacity = particle.DefaultCapacity
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{raster: r, capacity: capacity, rng: rng}
}

func (s *Sampler) Capacity() int { return s.capacity }

// Sample samples text into a freshly allocated buffer.
func (s *Sampler) Sample(text string, style Style) (*particle.TargetBuffer, Result, error) {
	buf := particle.NewTargetBuffer(s.capacity)
	res, err := s.SampleInto(buf, text, style)
	if err != nil {
		return nil, res, err
	}
	return buf, res, nil
}

// SampleInto overwrites every slot of buf. Lit cells are visited in
// row-major order and each contributes a front point, a back point and its
// interior fill; when the buffer runs out, the remaining cells are dropped
// whole and the pass is marked truncated. Slots past the last point are
// parked. On error buf is left untouched.
func (s *Sampler) SampleInto(buf *particle.TargetBuffer, text string, style Style) (Result, error) {
	if s == nil || s.raster == nil {
		return Result{}, ErrNoRasterizer
	}
	if buf == nil {
		return Result{}, ErrNoBuffer
	}

	var cov *Coverage
	if text != "" {
		var err error
		cov, err = s.raster.Rasterize(text, style.FontFamily, ReferenceSize)
		if err != nil {
			return Result{}, err
		}
	} else {
		cov = &Coverage{}
	}

	res := Result{Width: cov.Width, Height: cov.Height}
	capacity := buf.Capacity()
	step := style.Step()
	scale := style.Scale()
	perCell := style.PointsPerCell()
	internal := style.InternalPoints()
	cx, cy := float64(cov.Width)/2, float64(cov.Height)/2

	n := 0
	for y := 0; y < cov.Height; y += step {
		for x := 0; x < cov.Width; x += step {
			if cov.At(x, y) <= alphaThreshold {
				continue
			}
			res.Lit++
			res.Needed += perCell
			if n+perCell > capacity {
				res.Truncated = true
				continue
			}
			px := float32((float64(x) - cx) * scale)
			py := float32(-(float64(y) - cy) * scale)

			for _, p := range s.column(px, py, style, internal) {
				buf.Set(n, p.Position[0], p.Position[1], p.Position[2], p.Color.R, p.Color.G, p.Color.B)
				n++
			}
		}
	}

	buf.Count = n
	buf.ParkFrom(n, float32(style.Size*parkedSpread), s.rng)
	res.Count = n

	if res.Truncated {
		slog.Warn("particle overflow, text clipped",
			"text", text, "needed", res.Needed, "capacity", capacity)
	}
	return res, nil
}

// column builds the points for one lit cell: front face, back face, then
// the interior fill at random depths.
func (s *Sampler) column(x, y float32, style Style, internal int) []Point {
	half := float32(style.Extrusion / 2)
	s.cell = append(s.cell[:0],
		Point{Position: [3]float32{x, y, half}, Color: style.Color},
		Point{Position: [3]float32{x, y, -half}, Color: style.Color.Scale(backShade)},
	)
	for k := 0; k < internal; k++ {
		z := (s.rng.Float32() - 0.5) * float32(style.Extrusion)
		shade := minShade + s.rng.Float32()*(1-minShade)
		s.cell = append(s.cell, Point{Position: [3]float32{x, y, z}, Color: style.Color.Scale(shade)})
	}
	return s.cell
}
