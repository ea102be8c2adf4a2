package export

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/partext/internal/particle"
	"github.com/san-kum/partext/internal/viz"
)

const background = "#0a0a0a"

var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func header(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background)
}

func hex(r, g, b float64) string {
	return colorful.Color{R: r, G: g, B: b}.Clamped().Hex()
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot in
// its cell's tint.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.Width)*scale*2, float64(canvas.Height)*scale*4)

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			tint := canvas.Tint[row][col]
			fill := hex(tint.R, tint.G, tint.B)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, fill)
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CloudToSVG draws the front view of a target cloud, fitted into width x
// height with a margin. Points nearer the viewer are drawn last and larger.
func CloudToSVG(targets *particle.TargetBuffer, width, height int) string {
	if targets == nil || targets.Count == 0 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for i := 0; i < targets.Count; i++ {
		pos, _ := targets.Target(i)
		x, y, z := float64(pos[0]), float64(pos[1]), float64(pos[2])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		minZ, maxZ = math.Min(minZ, z), math.Max(maxZ, z)
	}

	w, h := float64(width), float64(height)
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	k := math.Min(w, h) * 0.9 / span
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	depth := maxZ - minZ
	if depth == 0 {
		depth = 1
	}

	var sb strings.Builder
	header(&sb, w, h)

	// Back faces first.
	order := make([]int, targets.Count)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		pa, _ := targets.Target(a)
		pb, _ := targets.Target(b)
		return cmp.Compare(pa[2], pb[2])
	})

	for _, i := range order {
		pos, col := targets.Target(i)
		near := (float64(pos[2]) - minZ) / depth
		x := w/2 + (float64(pos[0])-cx)*k
		y := h/2 - (float64(pos[1])-cy)*k
		r := 0.6 + 0.6*near
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.2f\" fill=\"%s\"/>\n",
			x, y, r, hex(float64(col[0]), float64(col[1]), float64(col[2])))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots a convergence series as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY, maxY = math.Min(minY, v), math.Max(maxY, v)
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	step := float64(width) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * step
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
