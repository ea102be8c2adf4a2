package particle

import (
	"math/rand"
	"testing"
)

func benchTargets(n int) *TargetBuffer {
	rng := rand.New(rand.NewSource(1))
	buf := NewTargetBuffer(n)
	buf.Count = n / 4
	for i := 0; i < buf.Count; i++ {
		buf.Set(i, rng.Float32()*10, rng.Float32()*4, 0, 1, 1, 1)
	}
	buf.ParkFrom(buf.Count, 100, rng)
	return buf
}

func BenchmarkAdvanceFloat(b *testing.B) {
	pool := NewPool(DefaultCapacity, rand.New(rand.NewSource(1)))
	targets := benchTargets(DefaultCapacity)
	anim := Animator{Profile: ProfileFloat}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		anim.Advance(pool, targets, float64(i)/60)
	}
}

func BenchmarkAdvanceStopwatchParallel(b *testing.B) {
	pool := NewPool(DefaultCapacity, rand.New(rand.NewSource(1)))
	targets := benchTargets(DefaultCapacity)
	anim := Animator{Profile: ProfileStopwatch, Workers: 4}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		anim.Advance(pool, targets, float64(i)/60)
	}
}
