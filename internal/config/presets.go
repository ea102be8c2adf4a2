package config

import "sort"

var Presets = map[string]*Config{
	"showcase": DefaultConfig(),
	"stopwatch": {
		Workers: 1, CountdownSeconds: 90,
		Window: DefaultWindow(), Camera: DefaultCamera(),
		Elements: []ElementConfig{DefaultElements()[1]},
	},
	"title": {
		Workers: 1, CountdownSeconds: DefaultCountdown,
		Window: DefaultWindow(), Camera: DefaultCamera(),
		Elements: []ElementConfig{
			{
				Name: "title", Text: "NEXT SHOW", FontFamily: "Tenor Sans",
				Size: 6, Density: 3, ParticleSize: 0.05, Color: "#ffffff", Extrusion: 0.8, SpeedFactor: 1,
			},
		},
	},
	"dense": {
		Workers: 4, CountdownSeconds: DefaultCountdown,
		Window: DefaultWindow(), Camera: DefaultCamera(),
		Elements: []ElementConfig{
			{
				Name: "timer", Role: RoleCountdown, FontFamily: "Share Tech Mono",
				Size: 14, Density: 8, ParticleSize: 0.05, Color: "#E0FFFF", Extrusion: 1.5, Glow: true, SpeedFactor: 3,
			},
		},
	},
}

// PresetInfo holds a one-line description per preset.
var PresetInfo = map[string]string{
	"showcase":  "title, countdown and footer",
	"stopwatch": "countdown only, mechanical snap",
	"title":     "one slow static line",
	"dense":     "fine-grained countdown, parallel animator",
}

// GetPreset returns a copy of the named preset with defaults applied, or
// nil if there is none.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	out.ApplyDefaults()
	return out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
