package particle

// parallelMinChunk keeps goroutine overhead well below the per-chunk work.
const parallelMinChunk = 32768

// Animator eases a pool toward its target buffer once per rendered frame.
// The zero value is usable and runs single-threaded with a zero speed factor;
// set Profile before use.
type Animator struct {
	Profile Profile

	// Workers > 1 splits the slot range across goroutines. Slots are
	// independent, so chunks never share writes.
	Workers int

	// Trig overrides the lookup table used for noise; nil uses DefaultTrigTable.
	Trig *TrigTable
}

// Step advances every slot of pool toward targets. elapsed is the render
// clock in seconds and only drives the noise phase. On error the pool is not
// touched.
func (a *Animator) Step(pool *Pool, targets *TargetBuffer, elapsed float64) error {
	if pool == nil || targets == nil {
		return ErrNoTargets
	}
	if targets.Capacity() != pool.capacity {
		return ErrCapacityMismatch
	}

	if a.Workers <= 1 {
		a.advanceRange(pool, targets, elapsed, 0, pool.capacity)
	} else {
		ParallelFor(pool.capacity, a.Workers, parallelMinChunk, func(start, end int) {
			a.advanceRange(pool, targets, elapsed, start, end)
		})
	}

	pool.needsUpdate = true
	return nil
}

// Advance is Step for frame callbacks: it reports whether the frame was applied.
func (a *Animator) Advance(pool *Pool, targets *TargetBuffer, elapsed float64) bool {
	return a.Step(pool, targets, elapsed) == nil
}

func (a *Animator) advanceRange(pool *Pool, targets *TargetBuffer, elapsed float64, start, end int) {
	trig := a.Trig
	if trig == nil {
		trig = DefaultTrigTable
	}

	prof := a.Profile
	base := prof.BaseRate()
	jitter := rateJitter * prof.SpeedFactor
	amp := prof.NoiseAmplitude(true)
	colorRate := prof.ColorRate()
	phaseX := elapsed * 5
	phaseY := elapsed * 4

	pos, col, off, parked := pool.Positions, pool.Colors, pool.offsets, pool.parked
	tp, tc := targets.Positions, targets.Colors
	count := targets.Count

	for i := start; i < end; i++ {
		idx := i * 3
		tx, ty, tz := tp[idx], tp[idx+1], tp[idx+2]

		if i >= count || tz < ParkedThreshold {
			// Snap, never ease: hidden particles must not trail through the scene.
			if !parked[i] {
				pos[idx], pos[idx+1], pos[idx+2] = tx, ty, tz
				col[idx], col[idx+1], col[idx+2] = 0, 0, 0
				parked[i] = true
			}
			continue
		}
		parked[i] = false

		tr := tc[idx]
		speed := base + off[idx]*jitter

		var nx, ny float32
		if IsActiveColor(tr) {
			nx = trig.Sin(phaseX+float64(off[idx+1])*10) * amp
			ny = trig.Cos(phaseY+float64(off[idx+2])*10) * amp
		}

		pos[idx] += (tx-pos[idx])*speed + nx
		pos[idx+1] += (ty-pos[idx+1])*speed + ny
		pos[idx+2] += (tz - pos[idx+2]) * speed

		col[idx] += (tr - col[idx]) * colorRate
		col[idx+1] += (tc[idx+1] - col[idx+1]) * colorRate
		col[idx+2] += (tc[idx+2] - col[idx+2]) * colorRate
	}
}
