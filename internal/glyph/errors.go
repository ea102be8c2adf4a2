package glyph

import "errors"

var (
	// ErrNoRasterizer indicates a sampling pass without a drawing backend.
	ErrNoRasterizer = errors.New("glyph: no rasterizer available")

	// ErrNoBuffer indicates a sampling pass without a destination buffer.
	ErrNoBuffer = errors.New("glyph: nil target buffer")

	// ErrInvalidFont indicates font data that could not be parsed.
	ErrInvalidFont = errors.New("glyph: invalid font data")

	// ErrBadColor indicates an unparseable color string.
	ErrBadColor = errors.New("glyph: invalid color")
)
