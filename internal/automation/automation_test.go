package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/glyph"
	"github.com/san-kum/partext/internal/particle"
	"github.com/san-kum/partext/internal/scene"
)

var squares = glyph.RasterizerFunc(func(text, family string, sizePx float64) (*glyph.Coverage, error) {
	w := 2 * len([]rune(text))
	cov := &glyph.Coverage{Width: w, Height: 2, Alpha: make([]uint8, w*2)}
	for i := range cov.Alpha {
		cov.Alpha[i] = 255
	}
	return cov, nil
})

func build(cfg *config.Config) (*scene.Scene, error) {
	cfg.Capacity = 400
	cfg.Seed = 9
	s, err := scene.New(cfg, squares)
	if err != nil {
		return nil, err
	}
	return s, s.Prime()
}

func TestRunScenario(t *testing.T) {
	sc := &Scenario{
		Name:     "swap",
		Preset:   "title",
		Duration: 1,
		FPS:      30,
		Watch:    "title",
		Cues: []Cue{
			{At: 0.9, Element: "title", Text: "LATE"},
			{At: 0.5, Element: "title", Text: "HI"},
		},
	}
	var got *scene.Scene
	samples, err := RunScenario(context.Background(), sc, func(cfg *config.Config) (*scene.Scene, error) {
		s, err := build(cfg)
		got = s
		return s, err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 30 {
		t.Fatalf("samples = %d, want 30", len(samples))
	}
	if _, ok := samples[0].Values["residual"]; !ok {
		t.Error("residual not recorded")
	}
	title := got.Element("title")
	if title.Text() != "LATE" {
		t.Errorf("text = %q, want the last cue", title.Text())
	}
	// "LATE" rasterizes to an 8x2 block.
	step := title.Style().Step()
	want := ((8 + step - 1) / step) * ((2 + step - 1) / step) * title.Style().PointsPerCell()
	if n := title.LastResult().Count; n != want {
		t.Errorf("count = %d after the last cue, want %d", n, want)
	}
}

func TestRunScenarioUnknownElement(t *testing.T) {
	sc := &Scenario{Name: "bad", Duration: 1, Cues: []Cue{{At: 0, Element: "nope", Text: "X"}}}
	if _, err := RunScenario(context.Background(), sc, build); err == nil {
		t.Error("expected error for unknown element")
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sc := &Scenario{Name: "c", Preset: "title", Duration: 1}
	samples, err := RunScenario(ctx, sc, build)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("ran %d frames after cancel", len(samples))
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "show.yaml")
	data := []byte(`name: show
preset: stopwatch
duration: 2.5
cues:
  - at: 1
    element: timer
    text: "00:10"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Duration != 2.5 || len(sc.Cues) != 1 || sc.Cues[0].Text != "00:10" {
		t.Errorf("scenario = %+v", sc)
	}
	if sc.Config().CountdownSeconds != 90 {
		t.Error("preset not applied")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("name: x\npreset: nowhere\nduration: 1\n"), 0o644)
	if _, err := LoadScenario(bad); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("unknown preset: err = %v", err)
	}
	if _, err := LoadScenario(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunSweep(t *testing.T) {
	targets := particle.NewTargetBuffer(300)
	for i := 0; i < 200; i++ {
		targets.Set(i, float32(i%20)-10, float32(i/20)-5, 0, 1, 1, 1)
	}
	targets.Count = 200
	for i := 200; i < 300; i++ {
		targets.Park(i, 0, 0)
	}

	results, err := RunSweep(context.Background(), &ParameterSweep{
		SpeedMin: 0.5, SpeedMax: 3, NumSteps: 2, Frames: 300, Dt: 1.0 / 60, Threshold: 1, Seed: 1,
	}, targets)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	slow, fast := results[0], results[1]
	if slow.SpeedFactor != 0.5 || fast.SpeedFactor != 3 {
		t.Errorf("speed factors %v, %v", slow.SpeedFactor, fast.SpeedFactor)
	}
	if slow.SettleFrame < 0 || fast.SettleFrame < 0 {
		t.Fatalf("did not settle: %+v", results)
	}
	if fast.SettleFrame > slow.SettleFrame {
		t.Errorf("stopwatch speed settled later: %d > %d", fast.SettleFrame, slow.SettleFrame)
	}
}

func TestRunSweepInvalid(t *testing.T) {
	if _, err := RunSweep(context.Background(), &ParameterSweep{NumSteps: 1, Frames: 1, Dt: 1}, nil); !errors.Is(err, particle.ErrNoTargets) {
		t.Errorf("nil targets: %v", err)
	}
	buf := particle.NewTargetBuffer(4)
	if _, err := RunSweep(context.Background(), &ParameterSweep{}, buf); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("empty sweep: %v", err)
	}
}
