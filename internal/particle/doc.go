// Package particle provides the fixed-capacity particle pool and the per-frame
// relaxation animator that eases it toward glyph-derived targets.
//
// The package is organized around three types:
//
//   - [Pool]: preallocated slots with current positions/colors and immutable
//     per-slot random offsets
//   - [TargetBuffer]: the destination positions/colors for every slot, with
//     slots past Count parked off-screen
//   - [Animator]: exponential relaxation of a pool toward a target buffer
//
// # Example
//
//	pool := particle.NewPool(particle.DefaultCapacity, rng)
//	anim := particle.Animator{Profile: particle.ProfileStopwatch}
//	anim.Advance(pool, targets, elapsed)
//
// # Thread Safety
//
// A Pool is owned by a single frame loop and is NOT safe for concurrent use.
// Target buffers cross goroutines only through a [Handoff], which publishes
// fully written buffers atomically.
package particle
