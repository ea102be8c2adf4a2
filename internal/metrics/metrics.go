// Package metrics observes how a particle pool settles onto its targets.
package metrics

import "github.com/san-kum/partext/internal/particle"

// Metric observes a pool against its targets after each frame.
type Metric interface {
	Name() string
	Observe(pool *particle.Pool, targets *particle.TargetBuffer, t float64)
	Value() float64
	Reset()
}

// Sample holds every metric value recorded after one frame.
type Sample struct {
	Frame  int
	Time   float64
	Values map[string]float64
}

// Converge advances pool toward targets for the given number of frames and
// records each metric after every frame.
func Converge(a *particle.Animator, pool *particle.Pool, targets *particle.TargetBuffer, frames int, dt float64, ms ...Metric) []Sample {
	out := make([]Sample, 0, frames)
	for f := 0; f < frames; f++ {
		t := float64(f) * dt
		a.Advance(pool, targets, t)
		s := Sample{Frame: f, Time: t, Values: make(map[string]float64, len(ms))}
		for _, m := range ms {
			m.Observe(pool, targets, t)
			s.Values[m.Name()] = m.Value()
		}
		out = append(out, s)
	}
	return out
}

// Series extracts one metric's values from a run.
func Series(samples []Sample, name string) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Values[name]
	}
	return out
}

// FramesToSettle returns the first frame at which the named metric drops
// to or below threshold, or -1 if it never does.
func FramesToSettle(samples []Sample, name string, threshold float64) int {
	for _, s := range samples {
		if v, ok := s.Values[name]; ok && v <= threshold {
			return s.Frame
		}
	}
	return -1
}
