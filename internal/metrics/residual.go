package metrics

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/partext/internal/particle"
)

func distances(dst []float64, pool *particle.Pool, targets *particle.TargetBuffer) []float64 {
	dst = dst[:0]
	for i := 0; i < targets.Count; i++ {
		idx := i * 3
		dx := float64(targets.Positions[idx] - pool.Positions[idx])
		dy := float64(targets.Positions[idx+1] - pool.Positions[idx+1])
		dz := float64(targets.Positions[idx+2] - pool.Positions[idx+2])
		dst = append(dst, math.Sqrt(dx*dx+dy*dy+dz*dz))
	}
	return dst
}

// Residual is the mean distance between active slots and their targets.
type Residual struct {
	scratch []float64
	value   float64
}

func NewResidual() *Residual { return &Residual{} }

func (r *Residual) Name() string { return "residual" }

func (r *Residual) Observe(pool *particle.Pool, targets *particle.TargetBuffer, t float64) {
	r.scratch = distances(r.scratch, pool, targets)
	if len(r.scratch) == 0 {
		r.value = 0
		return
	}
	r.value = stat.Mean(r.scratch, nil)
}

func (r *Residual) Value() float64 { return r.value }
func (r *Residual) Reset()         { r.value = 0 }

// MaxResidual is the largest distance of any active slot from its target.
type MaxResidual struct {
	scratch []float64
	value   float64
}

func NewMaxResidual() *MaxResidual { return &MaxResidual{} }

func (m *MaxResidual) Name() string { return "max_residual" }

func (m *MaxResidual) Observe(pool *particle.Pool, targets *particle.TargetBuffer, t float64) {
	m.scratch = distances(m.scratch, pool, targets)
	if len(m.scratch) == 0 {
		m.value = 0
		return
	}
	m.value = floats.Max(m.scratch)
}

func (m *MaxResidual) Value() float64 { return m.value }
func (m *MaxResidual) Reset()         { m.value = 0 }

// RMSResidual is the root mean square per-coordinate error over active
// slots, computed on the float32 arrays directly.
type RMSResidual struct {
	diff  []float32
	value float64
}

func NewRMSResidual() *RMSResidual { return &RMSResidual{} }

func (m *RMSResidual) Name() string { return "rms_residual" }

func (m *RMSResidual) Observe(pool *particle.Pool, targets *particle.TargetBuffer, t float64) {
	n := targets.Count * 3
	if n == 0 {
		m.value = 0
		return
	}
	if cap(m.diff) < n {
		m.diff = make([]float32, n)
	}
	m.diff = m.diff[:n]
	d := blas32.Vector{N: n, Inc: 1, Data: m.diff}
	blas32.Copy(blas32.Vector{N: n, Inc: 1, Data: targets.Positions[:n]}, d)
	blas32.Axpy(-1, blas32.Vector{N: n, Inc: 1, Data: pool.Positions[:n]}, d)
	m.value = float64(blas32.Nrm2(d)) / math.Sqrt(float64(n))
}

func (m *RMSResidual) Value() float64 { return m.value }
func (m *RMSResidual) Reset()         { m.value = 0 }
