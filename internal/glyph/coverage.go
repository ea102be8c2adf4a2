package glyph

// Coverage is an 8-bit alpha grid, row-major, one byte per pixel.
type Coverage struct {
	Width, Height int
	Alpha         []uint8
}

// At returns the alpha at (x, y), or zero outside the grid.
func (c *Coverage) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return 0
	}
	return c.Alpha[y*c.Width+x]
}

// Rasterizer draws text into a coverage grid sized to the text's measured
// advance width and a padded line height. Implementations must not retain
// the returned grid.
type Rasterizer interface {
	Rasterize(text, family string, sizePx float64) (*Coverage, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(text, family string, sizePx float64) (*Coverage, error)

func (f RasterizerFunc) Rasterize(text, family string, sizePx float64) (*Coverage, error) {
	return f(text, family, sizePx)
}
