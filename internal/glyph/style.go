package glyph

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB triple in [0,1] as parsed from hex.
type Color struct {
	R, G, B float32
}

var White = Color{1, 1, 1}

// ParseColor accepts #rgb and #rrggbb hex strings.
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}, nil
}

// MustColor is ParseColor for constant inputs.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) Scale(f float32) Color {
	return Color{c.R * f, c.G * f, c.B * f}
}

func (c Color) Hex() string {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().Hex()
}

const (
	// ReferenceSize is the pixel size every string is rasterized at.
	ReferenceSize = 200.0
	// scaleDivisor maps reference pixels to world units at Size 1.
	scaleDivisor = 0.7
	strideBase   = 6
	// maxStride exceeds any raster, so at most one cell is sampled.
	maxStride = 1 << 20
)

// Style controls how text is sampled into points.
type Style struct {
	Size         float64 // world units per em, roughly
	Density      float64 // higher samples the grid more finely
	ParticleSize float64 // render hint only
	Color        Color
	Extrusion    float64 // depth between front and back faces
	FontFamily   string
}

func DefaultStyle() Style {
	return Style{
		Size:         5,
		Density:      2,
		ParticleSize: 0.1,
		Color:        White,
		Extrusion:    0.5,
		FontFamily:   "Tenor Sans",
	}
}

// Step is the sampling stride in reference pixels. Non-positive densities
// use the coarsest stride.
func (s Style) Step() int {
	if s.Density <= 0 {
		return strideBase
	}
	return max(1, int(math.Min(maxStride, math.Floor(strideBase/s.Density))))
}

// InternalPoints is the number of fill points emitted per lit cell.
func (s Style) InternalPoints() int {
	if s.Density > 4 {
		return 3
	}
	return 2
}

// PointsPerCell counts front, back and interior points for one lit cell.
func (s Style) PointsPerCell() int { return 2 + s.InternalPoints() }

// Scale converts reference pixels to world units.
func (s Style) Scale() float64 { return s.Size / (ReferenceSize * scaleDivisor) }
