package scene

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/glyph"
	"github.com/san-kum/partext/internal/particle"
)

// Options configures pool construction for every element of a scene.
type Options struct {
	Capacity int
	Seed     int64 // zero seeds from the clock
	Workers  int
}

func (o Options) rng(salt int64) *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed + salt))
}

// Element is one text instance on the board.
type Element struct {
	cfg      config.ElementConfig
	style    glyph.Style
	pool     *particle.Pool
	animator particle.Animator
	handoff  *particle.Handoff
	recycle  *particle.BufferPool

	sampleMu sync.Mutex
	sampler  *glyph.Sampler

	mu     sync.Mutex
	text   string
	dirty  bool
	queued bool // a pass for text is already requested
	last   glyph.Result
}

// NewElement builds an element from its config. The first sampling pass is
// deferred until Resample runs.
func NewElement(cfg config.ElementConfig, raster glyph.Rasterizer, opts Options, salt int64) (*Element, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	color, err := glyph.ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}
	pool := particle.NewPool(opts.Capacity, opts.rng(salt))
	recycle := particle.NewBufferPool(pool.Capacity())
	return &Element{
		cfg: cfg,
		style: glyph.Style{
			Size:         cfg.Size,
			Density:      cfg.Density,
			ParticleSize: cfg.ParticleSize,
			Color:        color,
			Extrusion:    cfg.Extrusion,
			FontFamily:   cfg.FontFamily,
		},
		pool: pool,
		animator: particle.Animator{
			Profile: particle.Profile{SpeedFactor: float32(cfg.SpeedFactor)},
			Workers: opts.Workers,
		},
		handoff: particle.NewHandoff(recycle),
		recycle: recycle,
		sampler: glyph.NewSampler(raster, pool.Capacity(), opts.rng(salt+1)),
		text:    cfg.Text,
		dirty:   true,
	}, nil
}

func (e *Element) Name() string                    { return e.cfg.Name }
func (e *Element) Config() config.ElementConfig    { return e.cfg }
func (e *Element) Style() glyph.Style              { return e.style }
func (e *Element) Profile() particle.Profile       { return e.animator.Profile }
func (e *Element) Pool() *particle.Pool            { return e.pool }
func (e *Element) Position() [3]float64            { return e.cfg.Position }
func (e *Element) Targets() *particle.TargetBuffer { return e.handoff.Current() }

// SetText replaces the element's text, marking it for resampling when it
// differs from the current text.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if text == e.text {
		return
	}
	e.text = text
	e.dirty = true
	e.queued = false
}

func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// Dirty reports whether the text changed since the last completed pass.
func (e *Element) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// claim reports whether text needs a pass that has not been requested yet,
// marking it requested. A failed pass is not retried until the text changes.
func (e *Element) claim() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dirty || e.queued {
		return false
	}
	e.queued = true
	return true
}

// Resample runs one sampling pass over the current text and publishes the
// result. On failure the previously published targets stay in place.
func (e *Element) Resample() error {
	e.sampleMu.Lock()
	defer e.sampleMu.Unlock()

	e.mu.Lock()
	text := e.text
	e.mu.Unlock()

	buf := e.recycle.Get()
	res, err := e.sampler.SampleInto(buf, text, e.style)
	if err != nil {
		e.recycle.Put(buf)
		slog.Error("sampling failed, keeping previous targets", "element", e.cfg.Name, "text", text, "error", err)
		return err
	}
	e.handoff.Publish(buf)

	e.mu.Lock()
	e.last = res
	if e.text == text {
		e.dirty = false
	}
	e.mu.Unlock()

	slog.Debug("element sampled", "element", e.cfg.Name, "text", text, "points", res.Count, "lit", res.Lit)
	return nil
}

// LastResult returns the outcome of the most recent successful pass.
func (e *Element) LastResult() glyph.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Tick advances the pool one frame toward the latest published targets.
// It reports false until the first pass has been published.
func (e *Element) Tick(elapsed float64) bool {
	return e.animator.Advance(e.pool, e.handoff.Acquire(), elapsed)
}
