package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/nstil/pkg/theme"
)

const (
	marqueeTickDuration    = time.Second / 20
	bordersAndPaddingWidth = 4
)

// styles is derived from the active theme. It is rebuilt whenever the theme
// store publishes a change.
type styles struct {
	palette theme.Palette

	title          lipgloss.Style
	subtitle       lipgloss.Style
	selected       lipgloss.Style
	dangerSelected lipgloss.Style
	inactive       lipgloss.Style
	text           lipgloss.Style
	muted          lipgloss.Style
	label          lipgloss.Style
	tag            lipgloss.Style
	errorText      lipgloss.Style
	warning        lipgloss.Style
	pin            lipgloss.Style
	footer         lipgloss.Style
	border         lipgloss.Color
	focusBorder    lipgloss.Color
}

func newStyles(r theme.Resolved) styles {
	p := r.Palette.Terminal()
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }

	return styles{
		palette: p,
		title: lipgloss.NewStyle().Bold(true).
			Foreground(c(p.AccentLight)).
			Background(c(p.SurfaceElevated)).
			Padding(0, 2).Align(lipgloss.Center),
		subtitle: lipgloss.NewStyle().Bold(true).Foreground(c(p.AccentLight)),
		selected: lipgloss.NewStyle().
			Foreground(c(p.Background)).
			Background(c(p.Accent)),
		dangerSelected: lipgloss.NewStyle().
			Foreground(c(p.Background)).
			Background(c(p.Error)),
		inactive:    lipgloss.NewStyle().Foreground(c(p.TextSecondary)),
		text:        lipgloss.NewStyle().Foreground(c(p.TextPrimary)),
		muted:       lipgloss.NewStyle().Foreground(c(p.TextTertiary)),
		label:       lipgloss.NewStyle().Foreground(c(p.AccentLight)),
		tag:         lipgloss.NewStyle().Foreground(c(p.Success)),
		errorText:   lipgloss.NewStyle().Foreground(c(p.Error)),
		warning:     lipgloss.NewStyle().Foreground(c(p.Warning)),
		pin:         lipgloss.NewStyle().Foreground(c(p.Warning)).Bold(true),
		footer:      lipgloss.NewStyle().Foreground(c(p.TextTertiary)),
		border:      c(p.Border),
		focusBorder: c(p.BorderFocused),
	}
}

// statusColorize renders text green when ok and grey otherwise.
func (s styles) statusColorize(text string, ok bool) string {
	if ok {
		return s.tag.Render(text)
	}
	return s.muted.Render(text)
}

// Generates pointer symbol when line in focus
func generateLinePointer(isPoint bool, length int) string {
	if isPoint {
		return ">" + strings.Repeat(" ", length-1)
	}
	return strings.Repeat(" ", length)
}

// truncate shortens text to width runes, marking the cut with "..".
func truncate(text string, width int) string {
	r := []rune(text)
	if len(r) <= width {
		return text
	}
	if width <= 3 {
		return string(r[:max(width, 0)])
	}
	return string(r[:width-2]) + ".."
}

// marquee scrolls text that does not fit into width by offset.
func marquee(text string, width, offset int) string {
	r := []rune(text)
	if len(r) <= width {
		return text
	}
	padded := append(append(append([]rune{}, r...), []rune("    ")...), r...)
	start := offset % (len(r) + 4)
	return string(padded[start : start+width])
}

// firstLine returns the first non-blank line of s, for entry list previews.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
