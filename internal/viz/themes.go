package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Front     lipgloss.Color
	FieldLow  lipgloss.Color
	FieldHigh lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

// Available themes
var (
	ThemeEmber = Theme{
		Name:      "ember",
		Primary:   lipgloss.Color("#ff5533"),
		Front:     lipgloss.Color("#0033ff"),
		FieldLow:  lipgloss.Color("#ffffff"),
		FieldHigh: lipgloss.Color("#ff0000"),
		Text:      lipgloss.Color("#eeeeee"),
		Muted:     lipgloss.Color("#777777"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Front:     lipgloss.Color("#ffd700"),
		FieldLow:  lipgloss.Color("#001a33"),
		FieldHigh: lipgloss.Color("#00a8cc"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Front:     lipgloss.Color("#ffffff"),
		FieldLow:  lipgloss.Color("#000000"),
		FieldHigh: lipgloss.Color("#555555"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeEmber, ThemeOcean, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to ember.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeEmber
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(current string) Theme {
	names := ThemeNames()
	for i, name := range names {
		if name == current {
			return GetTheme(names[(i+1)%len(names)])
		}
	}
	return Themes[0]
}
