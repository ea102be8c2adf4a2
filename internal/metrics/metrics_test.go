package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/partext/internal/particle"
)

func setup(n, active int, red float32) (*particle.Pool, *particle.TargetBuffer) {
	pool := particle.NewPool(n, rand.New(rand.NewSource(5)))
	targets := particle.NewTargetBuffer(n)
	targets.Count = active
	for i := 0; i < active; i++ {
		targets.Set(i, float32(i%7), float32(i/7), 0, red, 0.5, 0.5)
	}
	return pool, targets
}

func TestResidualMatchesDirectComputation(t *testing.T) {
	pool, targets := setup(50, 20, 0)
	r, m := NewResidual(), NewMaxResidual()
	r.Observe(pool, targets, 0)
	m.Observe(pool, targets, 0)

	var sum, max float64
	for i := 0; i < 20; i++ {
		pos, _ := targets.Target(i)
		x, y, z := pool.Position(i)
		d := math.Sqrt(float64((pos[0]-x)*(pos[0]-x) + (pos[1]-y)*(pos[1]-y) + (pos[2]-z)*(pos[2]-z)))
		sum += d
		max = math.Max(max, d)
	}
	if math.Abs(r.Value()-sum/20) > 1e-4 {
		t.Errorf("residual = %f, want %f", r.Value(), sum/20)
	}
	if math.Abs(m.Value()-max) > 1e-4 {
		t.Errorf("max residual = %f, want %f", m.Value(), max)
	}
	if m.Value() < r.Value() {
		t.Error("max below mean")
	}
}

func TestRMSResidual(t *testing.T) {
	pool := particle.NewPool(2, rand.New(rand.NewSource(1)))
	targets := particle.NewTargetBuffer(2)
	targets.Count = 2
	for i := 0; i < 2; i++ {
		x, y, z := pool.Position(i)
		targets.Set(i, x+3, y, z-4, 0, 0, 0)
	}
	m := NewRMSResidual()
	m.Observe(pool, targets, 0)
	// squared errors 9+16 per slot over 6 coordinates
	want := math.Sqrt(50.0 / 6)
	if math.Abs(m.Value()-want) > 1e-4 {
		t.Errorf("rms = %f, want %f", m.Value(), want)
	}
}

func TestEmptyTargets(t *testing.T) {
	pool, targets := setup(10, 0, 0)
	for _, m := range Default() {
		m.Observe(pool, targets, 0)
		if m.Name() == "parked" {
			continue
		}
		if m.Value() != 0 {
			t.Errorf("%s = %f with no active slots", m.Name(), m.Value())
		}
	}
}

func TestConvergeDrivesResidualDown(t *testing.T) {
	pool, targets := setup(200, 150, 0)
	a := &particle.Animator{Profile: particle.ProfileDefault}
	samples := Converge(a, pool, targets, 90, 1.0/60, Default()...)
	if len(samples) != 90 {
		t.Fatalf("got %d samples", len(samples))
	}
	res := Series(samples, "residual")
	for i := 1; i < len(res); i++ {
		if res[i] > res[i-1]+1e-9 {
			t.Fatalf("residual rose at frame %d: %f -> %f", i, res[i-1], res[i])
		}
	}
	if res[len(res)-1] > res[0]*0.01 {
		t.Errorf("residual only fell from %f to %f", res[0], res[len(res)-1])
	}
	if got := samples[len(samples)-1].Values["parked"]; math.Abs(got-0.25) > 1e-9 {
		t.Errorf("parked fraction = %f, want 0.25", got)
	}
	if f := FramesToSettle(samples, "max_residual", 1); f < 0 {
		t.Error("never settled within 1 unit")
	}
	if f := FramesToSettle(samples, "max_residual", -1); f != -1 {
		t.Errorf("settled below zero at frame %d", f)
	}
}

func TestJitterReflectsNoise(t *testing.T) {
	run := func(red float32) float64 {
		pool, targets := setup(100, 100, red)
		a := &particle.Animator{Profile: particle.ProfileDefault}
		samples := Converge(a, pool, targets, 400, 1.0/60, NewJitter())
		return samples[len(samples)-1].Values["jitter"]
	}
	quiet, noisy := run(0), run(1)
	if quiet > 1e-6 {
		t.Errorf("inactive color still jitters: %g", quiet)
	}
	if noisy <= quiet {
		t.Errorf("active color jitter %g not above inactive %g", noisy, quiet)
	}
}

func TestReset(t *testing.T) {
	pool, targets := setup(10, 10, 1)
	for _, m := range Default() {
		m.Observe(pool, targets, 0)
		m.Observe(pool, targets, 0)
		m.Reset()
		if m.Value() != 0 {
			t.Errorf("%s = %f after reset", m.Name(), m.Value())
		}
	}
}
