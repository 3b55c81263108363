package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/driftfield/internal/surface"
)

// Theme defines the colour scheme for the terminal view.
type Theme struct {
	Name      string
	Primary   string // particles and bright links
	Secondary string
	Accent    string
	Text      string
	Muted     string
	Warning   string
}

var (
	ThemeMidnight = Theme{
		Name:      "midnight",
		Primary:   "#ffffff",
		Secondary: "#8899bb",
		Accent:    "#66ccff",
		Text:      "#e6e6e6",
		Muted:     "#555566",
		Warning:   "#ff5555",
	}

	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   "#ff00ff", // Magenta
		Secondary: "#00ffff", // Cyan
		Accent:    "#ffff00",
		Text:      "#ffffff",
		Muted:     "#666666",
		Warning:   "#ff0000",
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   "#00ff00", // Green phosphor
		Secondary: "#00cc00",
		Accent:    "#88ff88",
		Text:      "#00ff00",
		Muted:     "#005500",
		Warning:   "#ffff00",
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   "#e0f0ff",
		Secondary: "#00a8cc",
		Accent:    "#ffd700",
		Text:      "#e0f0ff",
		Muted:     "#4488aa",
		Warning:   "#ff4444",
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   "#ff6b6b", // Coral
		Secondary: "#feca57",
		Accent:    "#ff9ff3",
		Text:      "#fff5f5",
		Muted:     "#8b6b8c",
		Warning:   "#ff4757",
	}

	Themes = []Theme{
		ThemeMidnight,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// ThemeIndex returns the position of the named theme, or 0.
func ThemeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Palette shades canvas cells from the muted colour up to the primary one.
// full is the opacity that maps to the brightest shade.
func (t Theme) Palette(full float64) surface.Palette {
	lo := surface.MustColor(t.Muted, 1)
	hi := surface.MustColor(t.Primary, 1)
	return surface.NewPalette(surface.Blend(lo, hi, 0.15), hi, 6, full)
}

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
	border  lipgloss.Style
	panel   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	rec     lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Accent)),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		value:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Text)),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		border:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t.Muted)),
		panel:   lipgloss.NewStyle().Padding(0, 1),
		running: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Secondary)),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Accent)),
		rec:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Warning)),
	}
}
