package particle

import "errors"

// Domain errors for the frame update. Neither is fatal: the frame is skipped
// and the pool is left untouched.
var (
	// ErrNoTargets indicates a frame update without a pool or target buffer.
	ErrNoTargets = errors.New("particle: no target buffer available")

	// ErrCapacityMismatch indicates a target buffer sized for a different pool.
	ErrCapacityMismatch = errors.New("particle: target buffer capacity does not match pool")
)
