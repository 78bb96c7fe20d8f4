package ui

import (
	"sort"

	gloss "github.com/charmbracelet/lipgloss"

	"epub_reader/utils"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	ListMaxWidth = 60
)

// Theme is a named colour set. Every style the program draws with is
// derived from the active theme.
type Theme struct {
	Name       string
	Foreground gloss.Color
	Background gloss.Color
	Accent     gloss.Color
	Muted      gloss.Color
}

var builtinThemes = map[string]Theme{
	ThemeLight: {
		Name:       ThemeLight,
		Foreground: gloss.Color("#4c4f69"),
		Background: gloss.Color("#eff1f5"),
		Accent:     gloss.Color("#1e66f5"),
		Muted:      gloss.Color("#9ca0b0"),
	},
	ThemeDark: {
		Name:       ThemeDark,
		Foreground: gloss.Color("#cdd6f4"),
		Background: gloss.Color("#1e1e2e"),
		Accent:     gloss.Color("#89b4fa"),
		Muted:      gloss.Color("#585b70"),
	},
}

// ThemeRegistry maps theme names to colours.
type ThemeRegistry struct {
	themes map[string]Theme
}

// NewThemeRegistry starts from the built-in light and dark themes and applies
// the overrides from the config file. An override of an unknown name adds a
// theme based on light.
func NewThemeRegistry(overrides map[string]utils.ThemeConfig) *ThemeRegistry {
	r := &ThemeRegistry{themes: make(map[string]Theme, len(builtinThemes)+len(overrides))}
	for name, t := range builtinThemes {
		r.themes[name] = t
	}
	for name, o := range overrides {
		t, ok := r.themes[name]
		if !ok {
			t = builtinThemes[ThemeLight]
			t.Name = name
		}
		if o.Foreground != "" {
			t.Foreground = gloss.Color(o.Foreground)
		}
		if o.Background != "" {
			t.Background = gloss.Color(o.Background)
		}
		if o.Accent != "" {
			t.Accent = gloss.Color(o.Accent)
		}
		if o.Muted != "" {
			t.Muted = gloss.Color(o.Muted)
		}
		r.themes[name] = t
	}
	return r
}

// Get returns the named theme, or light when the name is unknown.
func (r *ThemeRegistry) Get(name string) Theme {
	if t, ok := r.themes[name]; ok {
		return t
	}
	return r.themes[ThemeLight]
}

func (r *ThemeRegistry) Has(name string) bool {
	_, ok := r.themes[name]
	return ok
}

func (r *ThemeRegistry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ---------------- Styles ----------------

func (t Theme) Page() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Foreground).
		Background(t.Background)
}

func (t Theme) Reader(width, vpad, hpad int) gloss.Style {
	return t.Page().
		Width(width).
		Padding(vpad, hpad)
}

func (t Theme) Loading() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Accent).
		Padding(2).
		Align(gloss.Center)
}

func (t Theme) StatusBar() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Muted).
		Background(t.Background).
		PaddingLeft(2).
		PaddingRight(2)
}

func (t Theme) StatusAccent() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Background).
		Bold(true)
}

func (t Theme) Status() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Accent).
		PaddingLeft(4).
		PaddingRight(4).
		PaddingTop(1).
		Align(gloss.Center)
}

func (t Theme) StatusMuted() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Muted).
		PaddingLeft(4).
		PaddingTop(1).
		Align(gloss.Center)
}

func (t Theme) Header() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Accent).
		Align(gloss.Center).
		Bold(true)
}

func (t Theme) Underline() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Muted).
		Align(gloss.Center)
}

// List container style
func (t Theme) List() gloss.Style {
	return gloss.NewStyle().
		Align(gloss.Left).
		Padding(1, 4)
}

func (t Theme) SelectedTitle() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Accent).
		BorderLeft(true).
		BorderStyle(gloss.NormalBorder()).
		BorderForeground(t.Accent).
		PaddingLeft(1).
		Bold(true)
}

func (t Theme) SelectedDesc() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Foreground).
		BorderLeft(true).
		BorderStyle(gloss.NormalBorder()).
		BorderForeground(t.Accent).
		PaddingLeft(1)
}

func (t Theme) NormalTitle() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Foreground).
		PaddingLeft(2)
}

func (t Theme) NormalDesc() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Muted).
		PaddingLeft(2)
}

// ActiveMarker paints the TOC entry of the chapter being read.
func (t Theme) ActiveMarker() gloss.Style {
	return gloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)
}

func (t Theme) Prompt() gloss.Style {
	return gloss.NewStyle().Foreground(t.Accent)
}

func (t Theme) PromptText() gloss.Style {
	return gloss.NewStyle().Foreground(t.Foreground)
}
