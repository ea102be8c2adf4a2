package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/partext/internal/config"
	"github.com/san-kum/partext/internal/metrics"
	"github.com/san-kum/partext/internal/particle"
	"github.com/san-kum/partext/internal/scene"
)

const defaultFPS = 60

// Scenario is a scripted headless run: a board plus timed text changes.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Duration    float64 `yaml:"duration"`
	FPS         int     `yaml:"fps"`
	Watch       string  `yaml:"watch"` // element whose convergence is recorded
	Cues        []Cue   `yaml:"cues"`
}

// Cue replaces an element's text once the run clock passes At seconds.
type Cue struct {
	At      float64 `yaml:"at"`
	Element string  `yaml:"element"`
	Text    string  `yaml:"text"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("%w: scenario %q: duration must be positive", config.ErrInvalid, s.Name)
	}
	if s.FPS < 0 {
		return fmt.Errorf("%w: scenario %q: negative fps", config.ErrInvalid, s.Name)
	}
	if s.Preset != "" && config.GetPreset(s.Preset) == nil {
		return fmt.Errorf("%w: scenario %q: unknown preset %q", config.ErrInvalid, s.Name, s.Preset)
	}
	return nil
}

// Config returns the board the scenario runs on.
func (s *Scenario) Config() *config.Config {
	if s.Preset == "" {
		cfg := config.DefaultConfig()
		cfg.ApplyDefaults()
		return cfg
	}
	return config.GetPreset(s.Preset)
}

// Builder turns a config into a scene whose elements are sampled.
type Builder func(cfg *config.Config) (*scene.Scene, error)

// RunScenario steps the scene at a fixed frame rate, applying cues in time
// order, and records convergence of the watched element every frame. The
// scene must not have a resampler attached so each cue is sampled before
// the next frame.
func RunScenario(ctx context.Context, scenario *Scenario, build Builder) ([]metrics.Sample, error) {
	s, err := build(scenario.Config())
	if err != nil {
		return nil, err
	}

	watch := s.Element(scenario.Watch)
	if watch == nil && len(s.Elements) > 0 {
		watch = s.Elements[0]
	}
	if watch == nil {
		return nil, fmt.Errorf("scenario %q: board has no elements", scenario.Name)
	}

	cues := append([]Cue(nil), scenario.Cues...)
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].At < cues[j].At })
	for _, c := range cues {
		if s.Element(c.Element) == nil {
			return nil, fmt.Errorf("scenario %q: cue for unknown element %q", scenario.Name, c.Element)
		}
	}

	fps := scenario.FPS
	if fps == 0 {
		fps = defaultFPS
	}
	dt := 1 / float64(fps)
	frames := int(scenario.Duration * float64(fps))
	ms := metrics.Default()
	out := make([]metrics.Sample, 0, frames)

	next := 0
	for f := 0; f < frames; f++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		t := float64(f+1) * dt
		for next < len(cues) && cues[next].At <= t {
			c := cues[next]
			s.Element(c.Element).SetText(c.Text)
			slog.Debug("cue", "scenario", scenario.Name, "t", t, "element", c.Element, "text", c.Text)
			next++
		}
		s.Tick(t)

		sample := metrics.Sample{Frame: f, Time: t, Values: make(map[string]float64, len(ms))}
		if targets := watch.Targets(); targets != nil {
			for _, m := range ms {
				m.Observe(watch.Pool(), targets, t)
				sample.Values[m.Name()] = m.Value()
			}
		}
		out = append(out, sample)
	}

	return out, nil
}

// ParameterSweep runs one target cloud under a range of speed factors.
type ParameterSweep struct {
	SpeedMin, SpeedMax float64
	NumSteps           int
	Frames             int
	Dt                 float64
	Threshold          float64 // residual that counts as settled
	Seed               int64
	Workers            int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	SpeedFactor   float64
	SettleFrame   int // -1 if the residual never reached the threshold
	FinalResidual float64
	MaxJitter     float64
}

// RunSweep settles a fresh pool onto targets once per speed factor.
func RunSweep(ctx context.Context, sweep *ParameterSweep, targets *particle.TargetBuffer) ([]SweepResult, error) {
	if targets == nil {
		return nil, particle.ErrNoTargets
	}
	if sweep.NumSteps < 1 || sweep.Frames < 1 || sweep.Dt <= 0 {
		return nil, fmt.Errorf("%w: sweep needs steps, frames and dt", config.ErrInvalid)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.SpeedMax - sweep.SpeedMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		sf := sweep.SpeedMin + float64(i)*paramStep
		pool := particle.NewPool(targets.Capacity(), rand.New(rand.NewSource(sweep.Seed)))
		a := &particle.Animator{Profile: particle.Profile{SpeedFactor: float32(sf)}, Workers: sweep.Workers}
		samples := metrics.Converge(a, pool, targets, sweep.Frames, sweep.Dt, metrics.NewResidual(), metrics.NewJitter())

		var maxJitter float64
		for _, v := range metrics.Series(samples, "jitter") {
			maxJitter = max(maxJitter, v)
		}
		residual := metrics.Series(samples, "residual")
		results = append(results, SweepResult{
			SpeedFactor:   sf,
			SettleFrame:   metrics.FramesToSettle(samples, "residual", sweep.Threshold),
			FinalResidual: residual[len(residual)-1],
			MaxJitter:     maxJitter,
		})

		slog.Info("sweep step", "step", i+1, "of", sweep.NumSteps, "speed_factor", sf)
	}

	return results, nil
}
