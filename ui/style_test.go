package ui

import (
	"reflect"
	"testing"

	gloss "github.com/charmbracelet/lipgloss"

	"epub_reader/utils"
)

func TestThemeRegistry(t *testing.T) {
	r := NewThemeRegistry(map[string]utils.ThemeConfig{
		ThemeDark: {Accent: "#ff0000"},
		"sepia":   {Foreground: "#5b4636", Background: "#f4ecd8"},
	})

	if got := r.Names(); !reflect.DeepEqual(got, []string{"dark", "light", "sepia"}) {
		t.Errorf("Names() = %v", got)
	}

	dark := r.Get(ThemeDark)
	if dark.Accent != gloss.Color("#ff0000") {
		t.Errorf("dark accent = %v, want override", dark.Accent)
	}
	if dark.Background != builtinThemes[ThemeDark].Background {
		t.Errorf("dark background = %v, want built-in", dark.Background)
	}

	sepia := r.Get("sepia")
	if sepia.Name != "sepia" || sepia.Background != gloss.Color("#f4ecd8") {
		t.Errorf("sepia = %+v", sepia)
	}
	if sepia.Accent != builtinThemes[ThemeLight].Accent {
		t.Errorf("sepia accent = %v, want light's", sepia.Accent)
	}

	if got := r.Get("missing"); got.Name != ThemeLight {
		t.Errorf("Get(missing) = %q, want light", got.Name)
	}
	if r.Has("missing") || !r.Has("sepia") {
		t.Error("Has() disagrees with the registry")
	}
}
