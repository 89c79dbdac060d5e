package domain

import (
	"fmt"
	"math"
)

// Fallback styling when no variable is selected.
const (
	NeutralColor  = "#94a3b8"
	DefaultRadius = 5.0
)

const (
	minRadius  = 3.0
	radiusSpan = 7.0
	minAlpha   = 0.3
	alphaSpan  = 0.7
)

// Color is a base "#rrggbb" color with an alpha channel in [0, 1].
type Color struct {
	Hex   string  `json:"hex"`
	Alpha float64 `json:"alpha"`
}

// String encodes the color as "#rrggbbaa", the alpha byte being floor(alpha*255).
func (c Color) String() string {
	a := int(math.Floor(clamp01(c.Alpha) * 255))
	return fmt.Sprintf("%s%02x", c.Hex, a)
}

// Normalize maps value into [0, 1] over the variable's domain. A zero-width or
// non-finite domain yields 0.
func Normalize(value float64, v Variable) float64 {
	span := v.Max - v.Min
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0
	}
	t := (value - v.Min) / span
	if math.IsNaN(t) {
		return 0
	}
	return clamp01(t)
}

// ColorFor returns the variable's base color with alpha 0.3 + 0.7t.
// A nil variable yields the neutral color at full opacity.
func ColorFor(value float64, v *Variable) Color {
	if v == nil {
		return Color{Hex: NeutralColor, Alpha: 1}
	}
	return Color{Hex: v.Color, Alpha: minAlpha + Normalize(value, *v)*alphaSpan}
}

// RadiusFor returns a marker radius in [3, 10]. A nil variable yields 5.
func RadiusFor(value float64, v *Variable) float64 {
	if v == nil {
		return DefaultRadius
	}
	return minRadius + Normalize(value, *v)*radiusSpan
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
