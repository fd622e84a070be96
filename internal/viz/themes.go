package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme of the chamber view.
type Theme struct {
	Name    string
	Wall    lipgloss.Color
	Gas     lipgloss.Color
	Cold    lipgloss.Color
	Hot     lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemePlasma = Theme{
		Name:    "plasma",
		Wall:    lipgloss.Color("#444466"),
		Gas:     lipgloss.Color("#00ffff"),
		Cold:    lipgloss.Color("#3a86ff"),
		Hot:     lipgloss.Color("#ff006e"),
		Accent:  lipgloss.Color("#ff00ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	ThemePhosphor = Theme{
		Name:    "phosphor",
		Wall:    lipgloss.Color("#005500"),
		Gas:     lipgloss.Color("#00ff00"),
		Cold:    lipgloss.Color("#00cc00"),
		Hot:     lipgloss.Color("#ccff88"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#007700"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Wall:    lipgloss.Color("#888888"),
		Gas:     lipgloss.Color("#ffffff"),
		Cold:    lipgloss.Color("#aaaaaa"),
		Hot:     lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	ThemeEmber = Theme{
		Name:    "ember",
		Wall:    lipgloss.Color("#8b6b8c"),
		Gas:     lipgloss.Color("#feca57"),
		Cold:    lipgloss.Color("#54a0ff"),
		Hot:     lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Warning: lipgloss.Color("#ffc048"),
	}

	Themes = []Theme{
		ThemePlasma,
		ThemePhosphor,
		ThemeMono,
		ThemeEmber,
	}
)

// GetTheme returns a theme by name, falling back to the first.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after name, wrapping.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
