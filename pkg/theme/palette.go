package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is a set of named colors. Values are either "#RRGGBB" or
// "rgba(r, g, b, a)".
type Palette struct {
	Background      string `json:"background" yaml:"background"`
	Surface         string `json:"surface" yaml:"surface"`
	SurfaceElevated string `json:"surface_elevated" yaml:"surface_elevated"`

	Glass       string `json:"glass" yaml:"glass"`
	GlassBorder string `json:"glass_border" yaml:"glass_border"`
	GlassHover  string `json:"glass_hover" yaml:"glass_hover"`

	TextPrimary   string `json:"text_primary" yaml:"text_primary"`
	TextSecondary string `json:"text_secondary" yaml:"text_secondary"`
	TextTertiary  string `json:"text_tertiary" yaml:"text_tertiary"`

	Accent      string `json:"accent" yaml:"accent"`
	AccentLight string `json:"accent_light" yaml:"accent_light"`
	AccentMuted string `json:"accent_muted" yaml:"accent_muted"`

	Success      string `json:"success" yaml:"success"`
	SuccessMuted string `json:"success_muted" yaml:"success_muted"`
	Warning      string `json:"warning" yaml:"warning"`
	WarningMuted string `json:"warning_muted" yaml:"warning_muted"`
	Error        string `json:"error" yaml:"error"`
	ErrorMuted   string `json:"error_muted" yaml:"error_muted"`

	Border        string `json:"border" yaml:"border"`
	BorderFocused string `json:"border_focused" yaml:"border_focused"`
}

var darkPalette = Palette{
	Background:      "#0A0A0F",
	Surface:         "#12121A",
	SurfaceElevated: "#1A1A24",

	Glass:       "rgba(255, 255, 255, 0.05)",
	GlassBorder: "rgba(255, 255, 255, 0.08)",
	GlassHover:  "rgba(255, 255, 255, 0.10)",

	TextPrimary:   "#FFFFFF",
	TextSecondary: "rgba(255, 255, 255, 0.70)",
	TextTertiary:  "rgba(255, 255, 255, 0.40)",

	Accent:      "#7C5CFC",
	AccentLight: "#9B82FC",
	AccentMuted: "rgba(124, 92, 252, 0.15)",

	Success:      "#34D399",
	SuccessMuted: "rgba(52, 211, 153, 0.10)",
	Warning:      "#FBBF24",
	WarningMuted: "rgba(251, 191, 36, 0.10)",
	Error:        "#F87171",
	ErrorMuted:   "rgba(248, 113, 113, 0.10)",

	Border:        "rgba(255, 255, 255, 0.06)",
	BorderFocused: "rgba(124, 92, 252, 0.40)",
}

var lightPalette = Palette{
	Background:      "#F9E4D4",
	Surface:         "#FFF0E6",
	SurfaceElevated: "#F0D8C8",

	Glass:       "rgba(255, 240, 230, 0.70)",
	GlassBorder: "rgba(0, 0, 0, 0.06)",
	GlassHover:  "rgba(255, 240, 230, 0.85)",

	TextPrimary:   "#1A1A2E",
	TextSecondary: "rgba(26, 26, 46, 0.65)",
	TextTertiary:  "rgba(26, 26, 46, 0.40)",

	Accent:      "#6B4CE6",
	AccentLight: "#8B6FF0",
	AccentMuted: "rgba(107, 76, 230, 0.10)",

	Success:      "#059669",
	SuccessMuted: "rgba(5, 150, 105, 0.08)",
	Warning:      "#D97706",
	WarningMuted: "rgba(217, 119, 6, 0.08)",
	Error:        "#DC2626",
	ErrorMuted:   "rgba(220, 38, 38, 0.08)",

	Border:        "rgba(0, 0, 0, 0.08)",
	BorderFocused: "rgba(107, 76, 230, 0.40)",
}

// oledPalette is the pure-black variant of darkPalette.
var oledPalette = Palette{
	Background:      "#000000",
	Surface:         "#0A0A0A",
	SurfaceElevated: "#141414",

	Glass:       "rgba(255, 255, 255, 0.03)",
	GlassBorder: "rgba(255, 255, 255, 0.10)",
	GlassHover:  "rgba(255, 255, 255, 0.06)",

	TextPrimary:   "#F0F0F0",
	TextSecondary: "rgba(240, 240, 240, 0.70)",
	TextTertiary:  "rgba(240, 240, 240, 0.40)",

	Accent:      "#8B6FF0",
	AccentLight: "#A78BFA",
	AccentMuted: "rgba(139, 111, 240, 0.12)",

	Success:      "#34D399",
	SuccessMuted: "rgba(52, 211, 153, 0.08)",
	Warning:      "#FBBF24",
	WarningMuted: "rgba(251, 191, 36, 0.08)",
	Error:        "#F87171",
	ErrorMuted:   "rgba(248, 113, 113, 0.08)",

	Border:        "rgba(255, 255, 255, 0.08)",
	BorderFocused: "rgba(139, 111, 240, 0.40)",
}

// Dark, Light and OLED return copies of the fixed palettes.
func Dark() Palette { return darkPalette }

func Light() Palette { return lightPalette }

func OLED() Palette { return oledPalette }

// ParseColor parses a palette value into an RGB color and its alpha.
func ParseColor(s string) (colorful.Color, float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("theme: parse %q: %w", s, err)
		}
		return c, 1, nil
	}

	inner, ok := strings.CutPrefix(s, "rgba(")
	if !ok {
		return colorful.Color{}, 0, fmt.Errorf("theme: unsupported color %q", s)
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return colorful.Color{}, 0, fmt.Errorf("theme: unterminated color %q", s)
	}
	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return colorful.Color{}, 0, fmt.Errorf("theme: expected 4 components in %q", s)
	}
	var rgb [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return colorful.Color{}, 0, fmt.Errorf("theme: bad channel %q in %q", parts[i], s)
		}
		rgb[i] = float64(v) / 255
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || a < 0 || a > 1 {
		return colorful.Color{}, 0, fmt.Errorf("theme: bad alpha %q in %q", parts[3], s)
	}
	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, a, nil
}

// Terminal returns a copy of p where every translucent color has been
// composited over Background, so each value is an opaque "#rrggbb" that a
// terminal can render.
func (p Palette) Terminal() Palette {
	bg, _, err := ParseColor(p.Background)
	if err != nil {
		bg = colorful.Color{}
	}
	flat := func(s string) string {
		c, a, err := ParseColor(s)
		if err != nil {
			return s
		}
		if a >= 1 {
			return c.Clamped().Hex()
		}
		return bg.BlendRgb(c, a).Clamped().Hex()
	}
	return Palette{
		Background:      flat(p.Background),
		Surface:         flat(p.Surface),
		SurfaceElevated: flat(p.SurfaceElevated),
		Glass:           flat(p.Glass),
		GlassBorder:     flat(p.GlassBorder),
		GlassHover:      flat(p.GlassHover),
		TextPrimary:     flat(p.TextPrimary),
		TextSecondary:   flat(p.TextSecondary),
		TextTertiary:    flat(p.TextTertiary),
		Accent:          flat(p.Accent),
		AccentLight:     flat(p.AccentLight),
		AccentMuted:     flat(p.AccentMuted),
		Success:         flat(p.Success),
		SuccessMuted:    flat(p.SuccessMuted),
		Warning:         flat(p.Warning),
		WarningMuted:    flat(p.WarningMuted),
		Error:           flat(p.Error),
		ErrorMuted:      flat(p.ErrorMuted),
		Border:          flat(p.Border),
		BorderFocused:   flat(p.BorderFocused),
	}
}
