package surface

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor turns a "#rrggbb" hex string and an opacity in [0, 1] into a
// straight-alpha colour.
func ParseColor(hex string, alpha float64) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse colour %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alphaByte(alpha)}, nil
}

// MustColor is ParseColor for compile-time constants.
func MustColor(hex string, alpha float64) color.NRGBA {
	c, err := ParseColor(hex, alpha)
	if err != nil {
		panic(err)
	}
	return c
}

// Blend interpolates two colours in CIE-L*a*b* space; alpha is interpolated
// linearly.
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendLab(cb, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(math.Round(float64(a.A) + (float64(b.A)-float64(a.A))*t))}
}

// Hex formats the colour channels as "#rrggbb", dropping alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opacity returns the alpha channel in [0, 1].
func Opacity(c color.NRGBA) float64 {
	return float64(c.A) / 255
}

func alphaByte(a float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
}
