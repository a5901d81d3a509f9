package render

import "github.com/charmbracelet/lipgloss"

// Theme is a color scheme for terminal output.
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// Dark is the default theme.
var Dark = Theme{
	Name: "dark",

	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
}

// Light suits terminals with a pale background.
var Light = Theme{
	Name: "light",

	Foreground:    lipgloss.Color("#3760bf"),
	ForegroundDim: lipgloss.Color("#848cb5"),

	Primary:   lipgloss.Color("#2e7de9"),
	Secondary: lipgloss.Color("#9854f1"),

	Success: lipgloss.Color("#587539"),
	Warning: lipgloss.Color("#8c6c3e"),
	Error:   lipgloss.Color("#f52a65"),
}

// ThemeFor returns the theme with the given name, falling back to Dark.
func ThemeFor(name string) Theme {
	if name == Light.Name {
		return Light
	}
	return Dark
}

// Styles holds the pre-computed styles for a theme.
type Styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Item     lipgloss.Style
	ID       lipgloss.Style
	Done     lipgloss.Style
	Priority lipgloss.Style
	Overdue  lipgloss.Style
	Key      lipgloss.Style
}

// NewStyles creates styles for t.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Item: lipgloss.NewStyle().
			Foreground(t.Foreground),

		ID: lipgloss.NewStyle().
			Foreground(t.Secondary),

		Done: lipgloss.NewStyle().
			Foreground(t.Success),

		Priority: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),

		Overdue: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Key: lipgloss.NewStyle().
			Foreground(t.Primary),
	}
}
