package particle

import (
	"math/rand"
	"sync"
	"testing"
)

func TestNewTargetBufferIsParked(t *testing.T) {
	buf := NewTargetBuffer(50)
	if buf.Capacity() != 50 {
		t.Fatalf("expected capacity 50, got %d", buf.Capacity())
	}
	for i := 0; i < 50; i++ {
		if !buf.Parked(i) {
			t.Fatalf("slot %d should start parked", i)
		}
		pos, col := buf.Target(i)
		if pos[2] != ParkedZ || col != [3]float32{} {
			t.Fatalf("slot %d: expected parked sentinel, got %v %v", i, pos, col)
		}
	}
}

func TestParkFrom(t *testing.T) {
	buf := NewTargetBuffer(20)
	buf.Count = 5
	for i := 0; i < 5; i++ {
		buf.Set(i, 1, 2, 3, 1, 1, 1)
	}
	buf.ParkFrom(5, 40, rand.New(rand.NewSource(1)))

	for i := 0; i < 5; i++ {
		if buf.Parked(i) {
			t.Fatalf("slot %d should be visible", i)
		}
	}
	for i := 5; i < 20; i++ {
		pos, col := buf.Target(i)
		if pos[2] != ParkedZ {
			t.Fatalf("slot %d: expected z=%f, got %f", i, ParkedZ, pos[2])
		}
		if pos[0] < -20 || pos[0] >= 20 || pos[1] < -20 || pos[1] >= 20 {
			t.Fatalf("slot %d: parked XY %v outside spread", i, pos)
		}
		if col != [3]float32{} {
			t.Fatalf("slot %d: parked color should be zero, got %v", i, col)
		}
	}
}

func TestBufferPoolRejectsForeignCapacity(t *testing.T) {
	bp := NewBufferPool(10)
	b := bp.Get()
	if b.Capacity() != 10 {
		t.Fatalf("expected capacity 10, got %d", b.Capacity())
	}
	b.Count = 7
	bp.Put(b)
	bp.Put(NewTargetBuffer(3))
	bp.Put(nil)

	for i := 0; i < 4; i++ {
		if got := bp.Get(); got.Capacity() != 10 {
			t.Fatalf("pool returned buffer of capacity %d", got.Capacity())
		}
	}
}

func TestHandoffAcquire(t *testing.T) {
	h := NewHandoff(nil)
	if h.Acquire() != nil {
		t.Fatal("expected nil before the first publish")
	}

	a := NewTargetBuffer(4)
	h.Publish(a)
	if h.Acquire() != a || h.Current() != a {
		t.Fatal("expected published buffer")
	}

	b := NewTargetBuffer(4)
	c := NewTargetBuffer(4)
	h.Publish(b)
	h.Publish(c)
	if h.Acquire() != c {
		t.Fatal("expected the latest publish to win")
	}
}

func TestHandoffNeverExposesPartialBuffers(t *testing.T) {
	const capacity = 256
	bp := NewBufferPool(capacity)
	h := NewHandoff(bp)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for k := 1; k <= 500; k++ {
			b := bp.Get()
			for i := 0; i < capacity; i++ {
				v := float32(k)
				b.Set(i, v, v, v, v, v, v)
			}
			b.Count = k
			h.Publish(b)
		}
	}()

	for seen := 0; seen < 2000; seen++ {
		b := h.Acquire()
		if b == nil {
			continue
		}
		want := float32(b.Count)
		for i := range b.Positions {
			if b.Positions[i] != want || b.Colors[i] != want {
				t.Fatalf("buffer %d exposed half-written slot %d (%f)", b.Count, i/3, b.Positions[i])
			}
		}
	}
	wg.Wait()
}
