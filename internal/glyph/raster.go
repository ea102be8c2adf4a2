package glyph

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// LineHeightFactor pads the coverage grid vertically relative to the font size.
const LineHeightFactor = 1.2

var _ Rasterizer = (*FontRasterizer)(nil)

// FontRasterizer draws text with fonts from a Library. The text is laid out
// on a single line starting at x=0, with its em box centered vertically.
type FontRasterizer struct {
	lib *Library
}

func NewFontRasterizer(lib *Library) *FontRasterizer {
	return &FontRasterizer{lib: lib}
}

type placed struct {
	index sfnt.GlyphIndex
	x     fixed.Int26_6
}

// Measure returns the advance width of text in pixels.
func (r *FontRasterizer) Measure(text, family string, sizePx float64) (float64, error) {
	if r == nil || r.lib == nil {
		return 0, ErrNoRasterizer
	}
	f, _ := r.lib.Lookup(family)
	buf := getBuffer()
	defer putBuffer(buf)
	_, advance, err := layout(f, buf, text, toFixed(sizePx))
	if err != nil {
		return 0, err
	}
	return float64(advance) / 64, nil
}

func (r *FontRasterizer) Rasterize(text, family string, sizePx float64) (*Coverage, error) {
	if r == nil || r.lib == nil {
		return nil, ErrNoRasterizer
	}
	f, exact := r.lib.Lookup(family)
	if !exact && family != "" {
		slog.Debug("font substituted", "family", family)
	}

	buf := getBuffer()
	defer putBuffer(buf)
	ppem := toFixed(sizePx)

	glyphs, advance, err := layout(f, buf, text, ppem)
	if err != nil {
		return nil, err
	}
	width := int(math.Ceil(float64(advance) / 64))
	height := int(math.Ceil(sizePx * LineHeightFactor))
	if width <= 0 || height <= 0 {
		return &Coverage{Width: 0, Height: max(height, 0)}, nil
	}

	metrics, err := f.Metrics(buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("glyph: metrics: %w", err)
	}
	ascent := float32(metrics.Ascent) / 64
	descent := float32(metrics.Descent) / 64
	baseline := float32(height)/2 + (ascent-descent)/2

	rast := vector.NewRasterizer(width, height)
	rast.DrawOp = draw.Src
	for _, g := range glyphs {
		segs, err := f.LoadGlyph(buf, g.index, ppem, nil)
		if err != nil {
			slog.Debug("glyph outline unavailable", "index", g.index, "error", err)
			continue
		}
		ox := float32(g.x) / 64
		for _, seg := range segs {
			a := seg.Args
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				rast.MoveTo(ox+unit(a[0].X), baseline+unit(a[0].Y))
			case sfnt.SegmentOpLineTo:
				rast.LineTo(ox+unit(a[0].X), baseline+unit(a[0].Y))
			case sfnt.SegmentOpQuadTo:
				rast.QuadTo(
					ox+unit(a[0].X), baseline+unit(a[0].Y),
					ox+unit(a[1].X), baseline+unit(a[1].Y))
			case sfnt.SegmentOpCubeTo:
				rast.CubeTo(
					ox+unit(a[0].X), baseline+unit(a[0].Y),
					ox+unit(a[1].X), baseline+unit(a[1].Y),
					ox+unit(a[2].X), baseline+unit(a[2].Y))
			}
		}
		rast.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return &Coverage{Width: width, Height: height, Alpha: mask.Pix}, nil
}

// layout places each rune on the pen line, applying kerning where the font
// provides it.
func layout(f *sfnt.Font, buf *sfnt.Buffer, text string, ppem fixed.Int26_6) ([]placed, fixed.Int26_6, error) {
	var (
		glyphs []placed
		pen    fixed.Int26_6
		prev   sfnt.GlyphIndex
	)
	for i, ch := range []rune(text) {
		index, err := f.GlyphIndex(buf, ch)
		if err != nil {
			return nil, 0, fmt.Errorf("glyph: index %q: %w", ch, err)
		}
		if i > 0 {
			if kern, err := f.Kern(buf, prev, index, ppem, font.HintingNone); err == nil {
				pen += kern
			}
		}
		glyphs = append(glyphs, placed{index: index, x: pen})
		adv, err := f.GlyphAdvance(buf, index, ppem, font.HintingNone)
		if err != nil {
			return nil, 0, fmt.Errorf("glyph: advance %q: %w", ch, err)
		}
		pen += adv
		prev = index
	}
	return glyphs, pen, nil
}

func toFixed(px float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(px * 64)) }

func unit(v fixed.Int26_6) float32 { return float32(v) / 64 }
