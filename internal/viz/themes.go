package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the TUI color scheme. Particles keep their own colors; the theme
// covers chrome, graphs and the resting node dots.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Node    lipgloss.Color
	Graph   lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeNebula = Theme{
		Name:    "nebula",
		Primary: lipgloss.Color("#c77dff"),
		Accent:  lipgloss.Color("#ffd166"),
		Text:    lipgloss.Color("#f1e9ff"),
		Muted:   lipgloss.Color("#6c5b7b"),
		Node:    lipgloss.Color("#3a2f4a"),
		Graph:   lipgloss.Color("#ff9e00"),
		Warning: lipgloss.Color("#ff5d73"),
	}

	ThemePhosphor = Theme{
		Name:    "phosphor",
		Primary: lipgloss.Color("#00ff66"),
		Accent:  lipgloss.Color("#aaffaa"),
		Text:    lipgloss.Color("#00ee55"),
		Muted:   lipgloss.Color("#006622"),
		Node:    lipgloss.Color("#003311"),
		Graph:   lipgloss.Color("#66ff99"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#bbbbbb"),
		Text:    lipgloss.Color("#eeeeee"),
		Muted:   lipgloss.Color("#777777"),
		Node:    lipgloss.Color("#333333"),
		Graph:   lipgloss.Color("#dddddd"),
		Warning: lipgloss.Color("#ff5555"),
	}

	ThemeDeepSea = Theme{
		Name:    "deepsea",
		Primary: lipgloss.Color("#00b4d8"),
		Accent:  lipgloss.Color("#90e0ef"),
		Text:    lipgloss.Color("#e0f7ff"),
		Muted:   lipgloss.Color("#3d6b85"),
		Node:    lipgloss.Color("#0b2a3d"),
		Graph:   lipgloss.Color("#48cae4"),
		Warning: lipgloss.Color("#ffb703"),
	}

	CurrentTheme = ThemeNebula

	Themes = []Theme{
		ThemeNebula,
		ThemePhosphor,
		ThemeMono,
		ThemeDeepSea,
	}
)

// GetTheme returns the named theme, or nebula.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNebula
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
