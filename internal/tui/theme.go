package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The board must stay readable on light and dark terminal backgrounds, so colors are
// adaptive and "faint" is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      = ac("240", "243")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorSurfaceFg  = ac("235", "252")
	colorControlBg  = ac("252", "235")
	colorAccent     = ac("27", "62")
	colorAccentFg   = ac("255", "235")
	colorError      = ac("160", "203")
	colorCardMetaFg = ac("238", "250")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts TERM/COLORTERM over
// termenv's probe, which under-reports on some terminals.
func applyColorProfilePreference() {
	lipgloss.SetColorProfile(colorProfile(os.Getenv))
}

func colorProfile(getenv func(string) string) termenv.Profile {
	if strings.TrimSpace(getenv("NO_COLOR")) != "" {
		return termenv.Ascii
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	return profile
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) JOBTRACK_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg", last segment is the background)
func applyThemePreference() {
	if dark, ok := themeIsDark(os.Getenv); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}

func themeIsDark(getenv func(string) string) (dark bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(getenv("JOBTRACK_TUI_THEME"))) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	if v := strings.TrimSpace(getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	return false, false
}

func markdownStyle() string {
	if dark, ok := themeIsDark(os.Getenv); ok {
		if dark {
			return "dark"
		}
		return "light"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
