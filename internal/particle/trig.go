package particle

import "math"

// TrigTable provides precomputed sin/cos values for the per-slot noise.
// Uses linear interpolation between entries.
type TrigTable struct {
	sin  []float32
	cos  []float32
	n    int
	mask int
	step float64 // entries per radian
}

// Default table (4096 entries, ~0.0015 rad resolution)
var DefaultTrigTable = NewTrigTable(4096)

// NewTrigTable builds a table with n entries, rounded up to a power of two.
func NewTrigTable(n int) *TrigTable {
	size := 1
	for size < n {
		size <<= 1
	}
	t := &TrigTable{
		sin:  make([]float32, size),
		cos:  make([]float32, size),
		n:    size,
		mask: size - 1,
		step: float64(size) / (2 * math.Pi),
	}
	for i := 0; i < size; i++ {
		angle := float64(i) * 2 * math.Pi / float64(size)
		t.sin[i] = float32(math.Sin(angle))
		t.cos[i] = float32(math.Cos(angle))
	}
	return t
}

func (t *TrigTable) index(x float64) (int, int, float32) {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	idx := x * t.step
	i := int(idx)
	frac := float32(idx - float64(i))
	return i & t.mask, (i + 1) & t.mask, frac
}

// Sin returns approximate sin using table lookup with interpolation
func (t *TrigTable) Sin(x float64) float32 {
	i0, i1, frac := t.index(x)
	return t.sin[i0]*(1-frac) + t.sin[i1]*frac
}

// Cos returns approximate cos using table lookup with interpolation
func (t *TrigTable) Cos(x float64) float32 {
	i0, i1, frac := t.index(x)
	return t.cos[i0]*(1-frac) + t.cos[i1]*frac
}
