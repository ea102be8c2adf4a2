package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const blank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid. Each cell keeps the brightest color plotted
// into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Tint          [][]colorful.Color
	lum           [][]float64
	dots          int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h}
	c.Grid = make([][]rune, h)
	c.Tint = make([][]colorful.Color, h)
	c.lum = make([][]float64, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Tint[i] = make([]colorful.Color, w)
		c.lum[i] = make([]float64, w)
	}
	c.Clear()
	return c
}

// PixelSize returns the canvas size in dots.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y) in dot coordinates.
func (c *Canvas) Set(x, y int) {
	c.Plot(x, y, colorful.Color{R: 1, G: 1, B: 1})
}

// Plot lights the dot at (x, y) with a color.
func (c *Canvas) Plot(x, y int, col colorful.Color) {
	if x < 0 || y < 0 {
		return
	}
	cx, cy := x/2, y/4
	if cx >= c.Width || cy >= c.Height {
		return
	}
	bit := rune(pixelMap[y%4][x%2])
	if c.Grid[cy][cx]&bit == 0 {
		c.dots++
	}
	c.Grid[cy][cx] |= bit
	if l := col.R + col.G + col.B; l > c.lum[cy][cx] {
		c.lum[cy][cx] = l
		c.Tint[cy][cx] = col
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Dots returns the number of lit dots.
func (c *Canvas) Dots() int { return c.dots }

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Tint[i][j] = colorful.Color{}
			c.lum[i][j] = 0
		}
	}
	c.dots = 0
}

// String renders the grid without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the grid, coloring runs of cells that share a tint.
func (c *Canvas) Render() string {
	var b strings.Builder
	for y, row := range c.Grid {
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && c.hex(y, x) == c.hex(y, start) {
				continue
			}
			run := string(row[start:x])
			if hex := c.hex(y, start); hex != "" {
				run = lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(run)
			}
			b.WriteString(run)
			start = x
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) hex(y, x int) string {
	if c.Grid[y][x] == blank {
		return ""
	}
	return c.Tint[y][x].Clamped().Hex()
}
