package render

import (
	"fmt"
	"image/color"
)

// Color is an opaque-by-default sRGB color.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 0xff} }

// String returns the #rrggbb form, with an alpha byte appended when the
// color is not opaque.
func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// NRGBA converts to the image/color representation.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// Lighten mixes c toward white by f in [0,1].
func (c Color) Lighten(f float64) Color {
	mix := func(v uint8) uint8 { return uint8(float64(v) + (255-float64(v))*f) }
	return Color{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// Palette.
var (
	Black     = RGB(0x21, 0x21, 0x21)
	White     = RGB(0xfa, 0xfa, 0xfa)
	Pink      = RGB(0xf4, 0x8f, 0xb1)
	Orange    = RGB(0xfb, 0x8c, 0x00)
	Yellow    = RGB(0xfd, 0xd8, 0x35)
	Tan       = RGB(0xd7, 0xb8, 0x8f)
	Blue      = RGB(0x42, 0x7f, 0xc8)
	SkyBlue   = RGB(0x90, 0xca, 0xf9)
	NavyBlue  = RGB(0x1a, 0x3e, 0x72)
	Charcoal  = RGB(0x37, 0x3a, 0x3f)
	Wool      = RGB(0xf2, 0xef, 0xe6)
	Brown     = RGB(0x8d, 0x6e, 0x63)
	Green     = RGB(0x66, 0xbb, 0x6a)
	Gray      = RGB(0x9e, 0x9e, 0x9e)
	Gold      = RGB(0xe0, 0xa2, 0x3c)
	Ginger    = RGB(0xf0, 0xa0, 0x4b)
	Coral     = RGB(0xff, 0x8a, 0x65)
	Lavender  = RGB(0xce, 0xcb, 0xe0)
	Chestnut  = RGB(0xa1, 0x88, 0x7f)
	LightPink = RGB(0xf8, 0xbb, 0xd0)
)

// baseColors is the main body color of each known animal.
var baseColors = map[string]Color{
	"cat":      Ginger,
	"dog":      Chestnut,
	"fish":     Coral,
	"duck":     Yellow,
	"pig":      LightPink,
	"rabbit":   Lavender,
	"fox":      Orange,
	"penguin":  Charcoal,
	"sheep":    Wool,
	"cow":      White,
	"owl":      Brown,
	"turtle":   Green,
	"panda":    White,
	"whale":    Blue,
	"elephant": Gray,
	"lion":     Gold,
}

// BaseColor returns the body color for an animal, Brown when unknown.
func BaseColor(animal string) Color {
	if c, ok := baseColors[animal]; ok {
		return c
	}
	return Brown
}

// Scheme selects the surface background and monochrome ink.
type Scheme int

const (
	SchemeDark Scheme = iota
	SchemeLight
)

// String returns the flag name of the scheme.
func (s Scheme) String() string {
	if s == SchemeLight {
		return "light"
	}
	return "dark"
}

// ParseScheme accepts "dark" or "light".
func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "dark":
		return SchemeDark, nil
	case "light":
		return SchemeLight, nil
	}
	return SchemeDark, fmt.Errorf("unknown color scheme %q", s)
}

// Background is the surface color.
func (s Scheme) Background() Color {
	if s == SchemeLight {
		return RGB(0xff, 0xff, 0xff)
	}
	return RGB(0x12, 0x12, 0x12)
}

// Foreground is the monochrome ink that contrasts with Background.
func (s Scheme) Foreground() Color {
	if s == SchemeLight {
		return Black
	}
	return RGB(0xee, 0xee, 0xee)
}

// Ink is the detail-line color used by color mode.
func (s Scheme) Ink() Color {
	if s == SchemeLight {
		return RGB(0x5d, 0x40, 0x37)
	}
	return RGB(0xbc, 0xaa, 0xa4)
}
