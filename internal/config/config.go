package config

import (
	"errors"
	"fmt"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCountdown   = 300
	DefaultFontTimeout = 3000
	DefaultFontPoll    = 50

	DefaultSize         = 5.0
	DefaultDensity      = 2.0
	DefaultParticleSize = 0.1
	DefaultColor        = "#ffffff"
	DefaultExtrusion    = 0.5
	DefaultFontFamily   = "Tenor Sans"
	DefaultSpeedFactor  = 1.0

	RoleStatic    = "static"
	RoleCountdown = "countdown"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Capacity         int             `yaml:"capacity"`
	Seed             int64           `yaml:"seed"`
	Workers          int             `yaml:"workers"`
	FontDir          string          `yaml:"font_dir"`
	FontTimeoutMs    int             `yaml:"font_timeout_ms"`
	FontPollMs       int             `yaml:"font_poll_ms"`
	CountdownSeconds int             `yaml:"countdown_seconds"`
	Window           WindowConfig    `yaml:"window"`
	Camera           CameraConfig    `yaml:"camera"`
	Elements         []ElementConfig `yaml:"elements"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

type CameraConfig struct {
	SwaySpeed float64 `yaml:"sway_speed"`
	RangeX    float64 `yaml:"range_x"`
	RangeY    float64 `yaml:"range_y"`
	Distance  float64 `yaml:"distance"`
	FOV       float64 `yaml:"fov"`
	FogNear   float64 `yaml:"fog_near"`
	FogFar    float64 `yaml:"fog_far"`
}

// ElementConfig describes one text element. Zero values take the element
// defaults once ApplyDefaults runs, except Extrusion where zero means flat
// text; YAML elements that omit extrusion get DefaultExtrusion.
type ElementConfig struct {
	Name         string     `yaml:"name"`
	Role         string     `yaml:"role,omitempty"`
	Text         string     `yaml:"text"`
	Size         float64    `yaml:"size"`
	Position     [3]float64 `yaml:"position,flow"`
	Density      float64    `yaml:"density"`
	ParticleSize float64    `yaml:"particle_size"`
	Color        string     `yaml:"color"`
	Glow         bool       `yaml:"glow,omitempty"`
	Extrusion    float64    `yaml:"extrusion"`
	FontFamily   string     `yaml:"font_family"`
	SpeedFactor  float64    `yaml:"speed_factor"`
}

// DefaultElement returns an element with every default filled in.
func DefaultElement() ElementConfig {
	e := ElementConfig{Extrusion: DefaultExtrusion}
	e.ApplyDefaults()
	return e
}

// UnmarshalYAML decodes over DefaultElement so keys absent from the file
// keep their defaults and an explicit zero survives.
func (e *ElementConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ElementConfig
	out := plain(DefaultElement())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*e = ElementConfig(out)
	return nil
}

func (e *ElementConfig) ApplyDefaults() {
	if e.Role == "" {
		e.Role = RoleStatic
	}
	if e.Size == 0 {
		e.Size = DefaultSize
	}
	if e.Density == 0 {
		e.Density = DefaultDensity
	}
	if e.ParticleSize == 0 {
		e.ParticleSize = DefaultParticleSize
	}
	if e.Color == "" {
		e.Color = DefaultColor
	}
	if e.FontFamily == "" {
		e.FontFamily = DefaultFontFamily
	}
	if e.SpeedFactor == 0 {
		e.SpeedFactor = DefaultSpeedFactor
	}
}

// Opacity is the point alpha; glowing elements render fully opaque.
func (e *ElementConfig) Opacity() float64 {
	if e.Glow {
		return 1.0
	}
	return 0.8
}

func (e *ElementConfig) Validate() error {
	if e.Size <= 0 {
		return fmt.Errorf("%w: element %q: size must be positive", ErrInvalid, e.Name)
	}
	if e.Density <= 0 {
		return fmt.Errorf("%w: element %q: density must be positive", ErrInvalid, e.Name)
	}
	if e.Extrusion < 0 {
		return fmt.Errorf("%w: element %q: negative extrusion", ErrInvalid, e.Name)
	}
	if e.SpeedFactor <= 0 {
		return fmt.Errorf("%w: element %q: speed_factor must be positive", ErrInvalid, e.Name)
	}
	if _, err := colorful.Hex(e.Color); err != nil {
		return fmt.Errorf("%w: element %q: color %q", ErrInvalid, e.Name, e.Color)
	}
	switch e.Role {
	case RoleStatic, RoleCountdown:
	default:
		return fmt.Errorf("%w: element %q: unknown role %q", ErrInvalid, e.Name, e.Role)
	}
	return nil
}

func DefaultWindow() WindowConfig {
	return WindowConfig{Width: 1280, Height: 720, FPS: 60}
}

func DefaultCamera() CameraConfig {
	return CameraConfig{
		SwaySpeed: 0.25,
		RangeX:    20,
		RangeY:    5,
		Distance:  50,
		FOV:       45,
		FogNear:   30,
		FogFar:    90,
	}
}

// DefaultElements is the countdown board: a title, the timer and a footer.
func DefaultElements() []ElementConfig {
	return []ElementConfig{
		{
			Name: "title", Role: RoleStatic, Text: "NEXT SHOW",
			FontFamily: "Tenor Sans", Size: 2, Position: [3]float64{0, 8, 0},
			Density: 4, ParticleSize: 0.04, Extrusion: 0.5, Color: "#ffffff", SpeedFactor: 0.5,
		},
		{
			Name: "timer", Role: RoleCountdown,
			FontFamily: "Share Tech Mono", Size: 10, Position: [3]float64{0, -1, 0},
			Density: 6, ParticleSize: 0.06, Color: "#E0FFFF", Extrusion: 1.0, Glow: true, SpeedFactor: 3.0,
		},
		{
			Name: "footer", Role: RoleStatic, Text: "MENGTIAN LIVESHOW",
			FontFamily: "Tenor Sans", Size: 1.6, Position: [3]float64{0, -9, 0},
			Density: 4, ParticleSize: 0.04, Color: "#999999", Extrusion: 0.4, SpeedFactor: 0.5,
		},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Workers:          1,
		FontTimeoutMs:    DefaultFontTimeout,
		FontPollMs:       DefaultFontPoll,
		CountdownSeconds: DefaultCountdown,
		Window:           DefaultWindow(),
		Camera:           DefaultCamera(),
		Elements:         DefaultElements(),
	}
}

// Load reads a YAML file over the defaults. An elements list in the file
// replaces the default board.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) ApplyDefaults() {
	if c.FontTimeoutMs <= 0 {
		c.FontTimeoutMs = DefaultFontTimeout
	}
	if c.FontPollMs <= 0 {
		c.FontPollMs = DefaultFontPoll
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Window.FPS <= 0 {
		c.Window.FPS = DefaultWindow().FPS
	}
	for i := range c.Elements {
		c.Elements[i].ApplyDefaults()
	}
}

func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("%w: negative capacity", ErrInvalid)
	}
	if c.CountdownSeconds < 0 {
		return fmt.Errorf("%w: negative countdown_seconds", ErrInvalid)
	}
	if len(c.Elements) == 0 {
		return fmt.Errorf("%w: no elements", ErrInvalid)
	}
	for i := range c.Elements {
		if err := c.Elements[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Families lists the distinct font families the elements use.
func (c *Config) Families() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.Elements {
		if e.FontFamily != "" && !seen[e.FontFamily] {
			seen[e.FontFamily] = true
			out = append(out, e.FontFamily)
		}
	}
	return out
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Elements = append([]ElementConfig(nil), c.Elements...)
	return &out
}
