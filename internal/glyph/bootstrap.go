package glyph

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultFontTimeout = 3 * time.Second
	DefaultFontPoll    = 50 * time.Millisecond
)

// WaitForFonts blocks until every family is registered in lib, the timeout
// elapses or ctx is done. It reports whether all families arrived; callers
// proceed either way since lookups fall back to the Go fonts.
func WaitForFonts(ctx context.Context, lib *Library, families []string, timeout, interval time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultFontTimeout
	}
	if interval <= 0 {
		interval = DefaultFontPoll
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		missing := lib.missing(families)
		if len(missing) == 0 {
			return true
		}
		select {
		case <-ctx.Done():
			slog.Warn("fonts not ready, rendering with fallback", "missing", missing, "waited", timeout)
			return false
		case <-ticker.C:
		}
	}
}
