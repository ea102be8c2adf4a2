// Package countdown tracks a whole-second timer that ticks down to zero.
package countdown

import (
	"fmt"
	"time"
)

// DefaultSeconds is five minutes.
const DefaultSeconds = 300

// Countdown is driven by elapsed time rather than its own ticker so it can
// follow a frame clock. It is not safe for concurrent use.
type Countdown struct {
	initial   int
	remaining int
	shown     string
}

func New(initialSeconds int) *Countdown {
	if initialSeconds < 0 {
		initialSeconds = 0
	}
	return &Countdown{initial: initialSeconds, remaining: initialSeconds}
}

// Update sets the remaining time from the elapsed duration since start,
// counting whole seconds and clamping at zero.
func (c *Countdown) Update(elapsed time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	c.remaining = max(0, c.initial-int(elapsed/time.Second))
}

// Reset restarts the timer from its initial value.
func (c *Countdown) Reset() {
	c.remaining = c.initial
}

func (c *Countdown) Initial() int   { return c.initial }
func (c *Countdown) Remaining() int { return c.remaining }
func (c *Countdown) Finished() bool { return c.remaining == 0 }

// Format renders the remaining time as MM:SS. Minutes past 99 keep growing
// in width.
func (c *Countdown) Format() string {
	return Format(c.remaining)
}

// Changed reports whether the formatted text differs from the last call.
// The first call always reports true.
func (c *Countdown) Changed() bool {
	text := c.Format()
	if text == c.shown {
		return false
	}
	c.shown = text
	return true
}

// Format renders seconds as zero padded MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
