package particle

import (
	"math/rand"
	"time"
)

const (
	// DefaultCapacity is large enough that long footer strings are never clipped.
	DefaultCapacity = 600000

	// ParkedZ is the depth assigned to unused slots.
	ParkedZ float32 = -500

	// ParkedThreshold marks the reserved depth range; anything below is not rendered.
	ParkedThreshold float32 = -400

	initialSpread = 100
)

// Pool is a fixed-capacity arena of particle slots. Positions and Colors are
// flat xyz/rgb arrays that render surfaces may upload as-is.
type Pool struct {
	Positions []float32
	Colors    []float32

	offsets     []float32 // per-slot random triple in [0,1), fixed for the pool's lifetime
	parked      []bool
	capacity    int
	needsUpdate bool
}

// NewPool preallocates capacity slots scattered in a 100-unit cube with zero
// color. A capacity below one falls back to DefaultCapacity; a nil rng is
// seeded from the clock.
func NewPool(capacity int, rng *rand.Rand) *Pool {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	p := &Pool{
		Positions: make([]float32, capacity*3),
		Colors:    make([]float32, capacity*3),
		offsets:   make([]float32, capacity*3),
		parked:    make([]bool, capacity),
		capacity:  capacity,
	}
	for i := range p.Positions {
		p.Positions[i] = (rng.Float32() - 0.5) * initialSpread
		p.offsets[i] = rng.Float32()
	}
	return p
}

// Capacity returns the number of slots.
func (p *Pool) Capacity() int { return p.capacity }

// Offset returns the immutable random triple of slot i.
func (p *Pool) Offset(i int) (x, y, z float32) {
	idx := i * 3
	return p.offsets[idx], p.offsets[idx+1], p.offsets[idx+2]
}

// Position returns the current position of slot i.
func (p *Pool) Position(i int) (x, y, z float32) {
	idx := i * 3
	return p.Positions[idx], p.Positions[idx+1], p.Positions[idx+2]
}

// Color returns the current color of slot i.
func (p *Pool) Color(i int) (r, g, b float32) {
	idx := i * 3
	return p.Colors[idx], p.Colors[idx+1], p.Colors[idx+2]
}

// Parked reports whether slot i has been snapped into the hidden state.
func (p *Pool) Parked(i int) bool { return p.parked[i] }

// Visible reports whether slot i should be drawn.
func (p *Pool) Visible(i int) bool {
	return !p.parked[i] && p.Positions[i*3+2] > ParkedThreshold
}

// ParkedCount returns the number of slots currently parked.
func (p *Pool) ParkedCount() int {
	n := 0
	for _, parked := range p.parked {
		if parked {
			n++
		}
	}
	return n
}

// ConsumeUpdate reports whether the buffers changed since the last call and
// clears the flag. Render surfaces use it to decide when to re-upload.
func (p *Pool) ConsumeUpdate() bool {
	changed := p.needsUpdate
	p.needsUpdate = false
	return changed
}
