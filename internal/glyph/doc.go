// Package glyph turns text into particle targets.
//
// A [Rasterizer] produces an alpha coverage grid for a string; the
// [Sampler] walks that grid on a density-dependent stride and writes front
// face, back face and interior fill points into a particle.TargetBuffer,
// parking every slot it does not use.
//
// [FontRasterizer] is the built-in rasterizer. It draws sfnt outlines with
// golang.org/x/image/vector and resolves font families through a [Library],
// substituting the Go fonts when a family has not been loaded.
package glyph
