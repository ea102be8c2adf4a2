package storage

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/partext/internal/glyph"
	"github.com/san-kum/partext/internal/metrics"
	"github.com/san-kum/partext/internal/particle"
)

func sampleBuffer(t *testing.T) (*particle.TargetBuffer, glyph.Result) {
	t.Helper()
	r := glyph.RasterizerFunc(func(text, family string, size float64) (*glyph.Coverage, error) {
		cov := &glyph.Coverage{Width: 3, Height: 2, Alpha: make([]uint8, 6)}
		for i := range cov.Alpha {
			cov.Alpha[i] = 255
		}
		return cov, nil
	})
	s := glyph.NewSampler(r, 64, rand.New(rand.NewSource(1)))
	style := glyph.DefaultStyle()
	style.Density = 6
	buf, res, err := s.Sample("Hi", style)
	if err != nil {
		t.Fatal(err)
	}
	return buf, res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	buf, res := sampleBuffer(t)
	meta := NewMetadata("Hi there!", glyph.DefaultStyle(), res, buf.Capacity(), 42)
	meta.Metrics = map[string]float64{"residual": 1.5}

	runID, err := st.SaveSample(meta, buf)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Text != "Hi there!" || got.Seed != 42 || got.Count != res.Count {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if got.Color != "#ffffff" || got.Metrics["residual"] != 1.5 {
		t.Errorf("style or metrics lost: %+v", got)
	}

	points, err := st.LoadPoints(runID)
	if err != nil {
		t.Fatalf("load points failed: %v", err)
	}
	if len(points) != res.Count {
		t.Fatalf("expected %d points, got %d", res.Count, len(points))
	}
	for i, p := range points {
		pos, col := buf.Target(i)
		if p.Index != i || p.X != pos[0] || p.Y != pos[1] || p.Z != pos[2] || p.R != col[0] {
			t.Fatalf("point %d mismatch: %+v vs %v %v", i, p, pos, col)
		}
	}
}

func TestLoadTargets(t *testing.T) {
	st := New(t.TempDir())
	buf, res := sampleBuffer(t)
	runID, err := st.SaveSample(SampleMetadata{Text: "Hi"}, buf)
	if err != nil {
		t.Fatal(err)
	}

	restored, err := st.LoadTargets(runID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Count != res.Count {
		t.Fatalf("count = %d, want %d", restored.Count, res.Count)
	}
	for i := restored.Count; i < restored.Capacity(); i++ {
		if !restored.Parked(i) {
			t.Fatalf("slot %d not parked", i)
		}
	}

	small, err := st.LoadTargets(runID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if small.Count != 10 {
		t.Errorf("expected truncation to 10, got %d", small.Count)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: %v %v", runs, err)
	}

	buf, _ := sampleBuffer(t)
	first, _ := st.SaveSample(SampleMetadata{Text: "one"}, buf)
	second, _ := st.SaveSample(SampleMetadata{Text: "two"}, buf)
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}

	if _, err := New(filepath.Join(dir, "missing")).List(); err != nil {
		t.Errorf("missing base dir should list empty: %v", err)
	}
}

func TestSaveConvergence(t *testing.T) {
	st := New(t.TempDir())
	buf, _ := sampleBuffer(t)
	runID, err := st.SaveSample(SampleMetadata{Text: "c"}, buf)
	if err != nil {
		t.Fatal(err)
	}

	pool := particle.NewPool(buf.Capacity(), rand.New(rand.NewSource(2)))
	a := &particle.Animator{Profile: particle.ProfileStopwatch}
	samples := metrics.Converge(a, pool, buf, 30, 1.0/60, metrics.Default()...)
	if err := st.SaveConvergence(runID, samples); err != nil {
		t.Fatal(err)
	}

	records, err := st.LoadConvergence(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 30 {
		t.Fatalf("expected 30 records, got %d", len(records))
	}
	if records[29].Residual >= records[0].Residual {
		t.Errorf("residual did not fall: %f -> %f", records[0].Residual, records[29].Residual)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"NEXT SHOW":  "next-show",
		"05:00":      "05-00",
		"":           "sample",
		"!!!":        "sample",
		"  hi  you ": "hi-you",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExportJSON(t *testing.T) {
	buf, res := sampleBuffer(t)
	var out bytes.Buffer
	if err := ExportJSON(&out, SampleMetadata{Text: "Hi", Count: res.Count}, Points(buf)); err != nil {
		t.Fatal(err)
	}
	var decoded ExportData
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Meta.Text != "Hi" || len(decoded.Points) != res.Count {
		t.Errorf("unexpected export: %+v", decoded.Meta)
	}
}
