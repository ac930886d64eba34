package theme

import (
	"errors"
	"fmt"
)

// Mode is the user's persisted appearance preference.
type Mode string

const (
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
	ModeOLED  Mode = "oled"
	ModeAuto  Mode = "auto"
)

// Modes lists every mode in cycling order.
var Modes = []Mode{ModeDark, ModeLight, ModeOLED, ModeAuto}

// DefaultMode applies when nothing valid has been persisted.
const DefaultMode = ModeDark

var ErrInvalidMode = errors.New("invalid theme mode")

func (m Mode) Valid() bool {
	switch m {
	case ModeDark, ModeLight, ModeOLED, ModeAuto:
		return true
	}
	return false
}

// Next returns the mode after m in Modes, wrapping around.
func (m Mode) Next() Mode {
	for i, v := range Modes {
		if v == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return DefaultMode
}

func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Scheme is the appearance reported by the operating system or terminal.
// Anything other than SchemeLight, including "", counts as dark.
type Scheme string

const (
	SchemeLight Scheme = "light"
	SchemeDark  Scheme = "dark"
)

// Resolved is everything a renderer needs to know about the active theme.
type Resolved struct {
	Mode               Mode    `json:"mode" yaml:"mode"`
	Effective          Mode    `json:"effective" yaml:"effective"`
	Palette            Palette `json:"palette" yaml:"palette"`
	IsDark             bool    `json:"is_dark" yaml:"is_dark"`
	KeyboardAppearance string  `json:"keyboard_appearance" yaml:"keyboard_appearance"`
}

// Effective maps auto onto light or dark using the OS scheme. Unknown modes
// resolve to DefaultMode.
func Effective(mode Mode, scheme Scheme) Mode {
	switch mode {
	case ModeAuto:
		if scheme == SchemeLight {
			return ModeLight
		}
		return ModeDark
	case ModeDark, ModeLight, ModeOLED:
		return mode
	default:
		return DefaultMode
	}
}

// Resolve derives the palette and flags for mode under the given OS scheme.
func Resolve(mode Mode, scheme Scheme) Resolved {
	if !mode.Valid() {
		mode = DefaultMode
	}
	eff := Effective(mode, scheme)

	r := Resolved{
		Mode:               mode,
		Effective:          eff,
		IsDark:             eff != ModeLight,
		KeyboardAppearance: "dark",
	}
	switch eff {
	case ModeLight:
		r.Palette = lightPalette
		r.KeyboardAppearance = "light"
	case ModeOLED:
		r.Palette = oledPalette
	default:
		r.Palette = darkPalette
	}
	return r
}
