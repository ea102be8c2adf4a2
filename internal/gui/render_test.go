package gui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/partext/internal/config"
)

func TestFogFactor(t *testing.T) {
	tests := []struct {
		dist, near, far float64
		want            float64
	}{
		{10, 30, 90, 0},
		{60, 30, 90, 0.5},
		{120, 30, 90, 1},
		{60, 90, 30, 0},
	}
	for _, tt := range tests {
		if got := fogFactor(tt.dist, tt.near, tt.far); got != tt.want {
			t.Errorf("fogFactor(%v, %v, %v) = %v, want %v", tt.dist, tt.near, tt.far, got, tt.want)
		}
	}
}

func TestPointColorOpacity(t *testing.T) {
	glow := config.ElementConfig{Glow: true}
	plain := config.ElementConfig{}

	c := pointColor(1, 0.5, 0, glow.Opacity(), 0)
	if c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Errorf("glow color = %+v", c)
	}
	c = pointColor(1, 0.5, 0, plain.Opacity(), 0)
	if c.A != 204 {
		t.Errorf("plain alpha = %d, want 204", c.A)
	}
	c = pointColor(1, 1, 1, plain.Opacity(), 1)
	if c.R != ColBg.R || c.G != ColBg.G || c.B != ColBg.B {
		t.Errorf("fully fogged color = %+v, want background", c)
	}
}

func TestParticlesBlendAdditively(t *testing.T) {
	if particleBlend != rl.BlendAdditive {
		t.Errorf("particle blend = %v, want additive", particleBlend)
	}
}
