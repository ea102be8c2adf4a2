package export

import (
	"strings"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/partext/internal/particle"
	"github.com/san-kum/partext/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 4) != "" {
		t.Error("nil canvas should give empty output")
	}

	c := viz.NewCanvas(2, 1)
	c.Plot(0, 0, colorful.Color{R: 1})
	c.Plot(3, 3, colorful.Color{B: 1})
	svg := CanvasToSVG(c, 4)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("malformed document")
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("circles = %d, want 2", got)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) || !strings.Contains(svg, `fill="#0000ff"`) {
		t.Error("dot tints missing")
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Error("wrong document size")
	}
}

func TestCloudToSVG(t *testing.T) {
	if CloudToSVG(nil, 100, 100) != "" {
		t.Error("nil buffer should give empty output")
	}

	buf := particle.NewTargetBuffer(8)
	buf.Set(0, -1, 0, 0.5, 1, 1, 1)
	buf.Set(1, 1, 0, -0.5, 0.5, 0.5, 0.5)
	buf.Set(2, 0, 1, 0, 1, 0, 0)
	buf.Count = 3
	svg := CloudToSVG(buf, 100, 100)

	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Fatalf("circles = %d, want 3", got)
	}
	// Back point drawn before the front one.
	back := strings.Index(svg, "#808080")
	front := strings.Index(svg, "#ffffff")
	if back < 0 || front < 0 || back > front {
		t.Errorf("depth order wrong: back=%d front=%d", back, front)
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("single value should give empty output")
	}
	svg := SeriesToSVG([]float64{10, 5, 2, 1}, 300, 50, "#00ffff")
	if !strings.Contains(svg, `stroke="#00ffff"`) {
		t.Error("stroke color missing")
	}
	if got := strings.Count(svg, " L"); got != 3 {
		t.Errorf("segments = %d, want 3", got)
	}
}
