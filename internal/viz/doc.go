// Package viz renders particle text scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one scene with a stats panel
//   - [Canvas]: braille dot canvas that keeps a color per cell
//   - [Camera]: perspective projection looking at the board origin
//   - Theme selection with built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the countdown
//	C     - Toggle the orbiting camera rig
//	S     - Toggle board sway
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// Recordings are written as animated GIFs to the path in [Options].
package viz
