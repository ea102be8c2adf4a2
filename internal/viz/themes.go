package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the stats panel and the monochrome point mode.
type Theme struct {
	Name       string
	Primary    lipgloss.Color // monochrome points, title gradient start
	Secondary  lipgloss.Color // residual chart
	Accent     lipgloss.Color // title gradient end
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color // panel border
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

var (
	// ThemeStage matches the default board: light cyan on black.
	ThemeStage = Theme{
		Name:       "stage",
		Primary:    lipgloss.Color("#e0ffff"),
		Secondary:  lipgloss.Color("#999999"),
		Accent:     lipgloss.Color("#ffffff"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#e0ffff"),
		Muted:      lipgloss.Color("#555555"),
		Success:    lipgloss.Color("#00ff88"),
		Warning:    lipgloss.Color("#ffaa00"),
		Error:      lipgloss.Color("#ff4444"),
	}

	ThemeNeon = Theme{
		Name:       "neon",
		Primary:    lipgloss.Color("#ff2bd6"),
		Secondary:  lipgloss.Color("#2bf0ff"),
		Accent:     lipgloss.Color("#fff03a"),
		Background: lipgloss.Color("#07000d"),
		Text:       lipgloss.Color("#f5e6ff"),
		Muted:      lipgloss.Color("#5a3a6e"),
		Success:    lipgloss.Color("#3aff7a"),
		Warning:    lipgloss.Color("#ff9b2b"),
		Error:      lipgloss.Color("#ff2b4e"),
	}

	ThemeAmber = Theme{
		Name:       "amber",
		Primary:    lipgloss.Color("#ffb000"),
		Secondary:  lipgloss.Color("#cc8400"),
		Accent:     lipgloss.Color("#ffd27a"),
		Background: lipgloss.Color("#100a00"),
		Text:       lipgloss.Color("#ffb000"),
		Muted:      lipgloss.Color("#5c3f00"),
		Success:    lipgloss.Color("#ffd27a"),
		Warning:    lipgloss.Color("#ff7a00"),
		Error:      lipgloss.Color("#ff3300"),
	}

	ThemeIce = Theme{
		Name:       "ice",
		Primary:    lipgloss.Color("#9fd8ff"),
		Secondary:  lipgloss.Color("#5fa8d3"),
		Accent:     lipgloss.Color("#e8f6ff"),
		Background: lipgloss.Color("#020b14"),
		Text:       lipgloss.Color("#cfeaff"),
		Muted:      lipgloss.Color("#2b4a63"),
		Success:    lipgloss.Color("#7fffd4"),
		Warning:    lipgloss.Color("#ffe08a"),
		Error:      lipgloss.Color("#ff7b8a"),
	}

	ThemeMono = Theme{
		Name:       "mono",
		Primary:    lipgloss.Color("#ffffff"),
		Secondary:  lipgloss.Color("#aaaaaa"),
		Accent:     lipgloss.Color("#dddddd"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#eeeeee"),
		Muted:      lipgloss.Color("#444444"),
		Success:    lipgloss.Color("#ffffff"),
		Warning:    lipgloss.Color("#bbbbbb"),
		Error:      lipgloss.Color("#888888"),
	}

	CurrentTheme = ThemeStage

	Themes = []Theme{ThemeStage, ThemeNeon, ThemeAmber, ThemeIce, ThemeMono}
)

// GetTheme returns a theme by name, or ThemeStage.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeStage
}

// NextTheme advances CurrentTheme to the following theme in Themes.
func NextTheme() Theme {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			break
		}
	}
	return CurrentTheme
}

func SetTheme(name string) { CurrentTheme = GetTheme(name) }

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
