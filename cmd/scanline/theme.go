package main

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/BurntSushi/toml"
)

// Theme represents a theme.toml color configuration file.
type Theme struct {
	// Prompt is the color of the input prompt.
	Prompt string `toml:"prompt,omitempty"`

	// Spinner is the color of the spinner glyph.
	Spinner string `toml:"spinner,omitempty"`

	// Status is the foreground color of the status bar.
	Status string `toml:"status,omitempty"`

	// Border is the color of editor and overlay borders.
	Border string `toml:"border,omitempty"`

	// Dim is the color used for secondary text such as suggestions.
	Dim string `toml:"dim,omitempty"`
}

// defaultTheme matches the colors used when no theme file is given.
func defaultTheme() *Theme {
	return &Theme{
		Prompt:  "63",
		Spinner: "205",
		Status:  "252",
		Border:  "63",
		Dim:     "241",
	}
}

// LoadTheme loads a theme.toml file, filling unset fields with defaults.
func LoadTheme(path string) (*Theme, error) {
	theme := defaultTheme()
	if path == "" {
		return theme, nil
	}
	if _, err := toml.DecodeFile(path, theme); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return theme, nil
}

// style returns a render func for the given color, suitable for component
// Style hooks.
func style(color string) func(string) string {
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	return func(s string) string { return st.Render(s) }
}
