package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Canvas colors. Planets draw in their own color.
	Sun       string
	Selection string
	Locked    string
	Trail     string
}

// Available themes
var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ff8800"),
		Error:     lipgloss.Color("#ff0000"),
		Sun:       "#ffcc33",
		Selection: "#00ffff",
		Locked:    "#ff00ff",
		Trail:     "#444466",
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"), // Green phosphor
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
		Sun:       "#ccff66",
		Selection: "#88ff88",
		Locked:    "#ffff00",
		Trail:     "#005500",
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Success:   lipgloss.Color("#00ff00"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
		Sun:       "#ffffff",
		Selection: "#0088ff",
		Locked:    "#ffaa00",
		Trail:     "#444444",
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
		Sun:       "#ffd700",
		Selection: "#00ff88",
		Locked:    "#ff4444",
		Trail:     "#224466",
	}

	// Default theme
	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
