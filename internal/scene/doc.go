// Package scene composes particle text elements into a board: each element
// owns a pool, a sampler and a handoff, a countdown drives the timer
// element, and a background Resampler keeps sampling off the frame loop.
//
// The frame loop calls Scene.Tick once per frame. Elements whose text changed
// are handed to the Resampler (or sampled inline when none is attached) and
// every element advances toward whichever target buffer was last published.
package scene
