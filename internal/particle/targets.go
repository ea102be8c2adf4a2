package particle

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// TargetBuffer holds the destination of every slot in a pool. Slots
// [0, Count) carry sampled glyph points; the rest are parked.
type TargetBuffer struct {
	Positions []float32
	Colors    []float32
	Count     int
}

// NewTargetBuffer allocates a buffer for capacity slots with every slot parked
// at the origin column.
func NewTargetBuffer(capacity int) *TargetBuffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	b := &TargetBuffer{
		Positions: make([]float32, capacity*3),
		Colors:    make([]float32, capacity*3),
	}
	for i := 0; i < capacity; i++ {
		b.Positions[i*3+2] = ParkedZ
	}
	return b
}

// Capacity returns the number of slots the buffer covers.
func (b *TargetBuffer) Capacity() int { return len(b.Positions) / 3 }

// Set writes a visible target into slot i.
func (b *TargetBuffer) Set(i int, x, y, z, r, g, bl float32) {
	idx := i * 3
	b.Positions[idx], b.Positions[idx+1], b.Positions[idx+2] = x, y, z
	b.Colors[idx], b.Colors[idx+1], b.Colors[idx+2] = r, g, bl
}

// Park writes the hidden sentinel into slot i at the given XY.
func (b *TargetBuffer) Park(i int, x, y float32) {
	idx := i * 3
	b.Positions[idx], b.Positions[idx+1], b.Positions[idx+2] = x, y, ParkedZ
	b.Colors[idx], b.Colors[idx+1], b.Colors[idx+2] = 0, 0, 0
}

// ParkFrom parks every slot from start onward, scattering XY uniformly over
// [-spread/2, spread/2).
func (b *TargetBuffer) ParkFrom(start int, spread float32, rng *rand.Rand) {
	n := b.Capacity()
	for i := start; i < n; i++ {
		b.Park(i, (rng.Float32()-0.5)*spread, (rng.Float32()-0.5)*spread)
	}
}

// Parked reports whether slot i holds the hidden sentinel.
func (b *TargetBuffer) Parked(i int) bool {
	return i >= b.Count || b.Positions[i*3+2] < ParkedThreshold
}

// Target returns the position and color of slot i.
func (b *TargetBuffer) Target(i int) (pos, col [3]float32) {
	idx := i * 3
	pos = [3]float32{b.Positions[idx], b.Positions[idx+1], b.Positions[idx+2]}
	col = [3]float32{b.Colors[idx], b.Colors[idx+1], b.Colors[idx+2]}
	return pos, col
}

// BufferPool recycles target buffers of one capacity so resampling does not
// allocate a fresh multi-megabyte buffer on every text change. Buffers come
// back with undefined contents; callers overwrite every slot.
type BufferPool struct {
	pool     sync.Pool
	capacity int
}

func NewBufferPool(capacity int) *BufferPool {
	return &BufferPool{
		capacity: capacity,
		pool: sync.Pool{
			New: func() interface{} {
				return NewTargetBuffer(capacity)
			},
		},
	}
}

func (p *BufferPool) Get() *TargetBuffer {
	return p.pool.Get().(*TargetBuffer)
}

func (p *BufferPool) Put(b *TargetBuffer) {
	if b != nil && b.Capacity() == p.capacity {
		b.Count = 0
		p.pool.Put(b)
	}
}

// Handoff passes fully written target buffers from a sampling goroutine to
// the frame loop. Publish may be called from any goroutine; Acquire and
// Current belong to the frame loop alone.
type Handoff struct {
	next    atomic.Pointer[TargetBuffer]
	current *TargetBuffer
	recycle *BufferPool
}

// NewHandoff returns a handoff that hands retired buffers back to recycle.
// recycle may be nil.
func NewHandoff(recycle *BufferPool) *Handoff {
	return &Handoff{recycle: recycle}
}

// Publish makes b the buffer the next frame will animate toward. b must not
// be written after publishing.
func (h *Handoff) Publish(b *TargetBuffer) {
	h.next.Store(b)
}

// Acquire returns the most recently published buffer, retiring the one the
// frame loop used before. It returns nil until the first publish.
func (h *Handoff) Acquire() *TargetBuffer {
	b := h.next.Load()
	if b != h.current {
		if h.current != nil && h.recycle != nil {
			h.recycle.Put(h.current)
		}
		h.current = b
	}
	return h.current
}

// Current returns the buffer returned by the last Acquire.
func (h *Handoff) Current() *TargetBuffer { return h.current }
