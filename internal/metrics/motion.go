package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/partext/internal/particle"
)

// Jitter is the mean frame-to-frame XY displacement of active slots. Once
// a pool has settled it measures the idle noise.
type Jitter struct {
	prev    []float32
	scratch []float64
	value   float64
}

func NewJitter() *Jitter { return &Jitter{} }

func (j *Jitter) Name() string { return "jitter" }

func (j *Jitter) Observe(pool *particle.Pool, targets *particle.TargetBuffer, t float64) {
	n := targets.Count * 3
	if len(j.prev) != n {
		j.prev = append(j.prev[:0], pool.Positions[:n]...)
		j.value = 0
		return
	}
	j.scratch = j.scratch[:0]
	for idx := 0; idx < n; idx += 3 {
		dx := float64(pool.Positions[idx] - j.prev[idx])
		dy := float64(pool.Positions[idx+1] - j.prev[idx+1])
		j.scratch = append(j.scratch, math.Hypot(dx, dy))
	}
	copy(j.prev, pool.Positions[:n])
	if len(j.scratch) == 0 {
		j.value = 0
		return
	}
	j.value = stat.Mean(j.scratch, nil)
}

func (j *Jitter) Value() float64 { return j.value }

func (j *Jitter) Reset() {
	j.prev = j.prev[:0]
	j.value = 0
}

// ParkedFraction is the share of pool slots currently parked.
type ParkedFraction struct {
	value float64
}

func NewParkedFraction() *ParkedFraction { return &ParkedFraction{} }

func (p *ParkedFraction) Name() string { return "parked" }

func (p *ParkedFraction) Observe(pool *particle.Pool, targets *particle.TargetBuffer, t float64) {
	p.value = float64(pool.ParkedCount()) / float64(pool.Capacity())
}

func (p *ParkedFraction) Value() float64 { return p.value }
func (p *ParkedFraction) Reset()         { p.value = 0 }

// Default returns the standard metric set.
func Default() []Metric {
	return []Metric{NewResidual(), NewMaxResidual(), NewRMSResidual(), NewJitter(), NewParkedFraction()}
}
