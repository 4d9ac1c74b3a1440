package easing

import (
	"math"
	"strings"
)

// Curve maps normalized progress in [0,1] to eased progress
type Curve func(t float64) float64

// Built-in curve names accepted in transition.easing
const (
	Linear    = "linear"
	EaseIn    = "ease_in"
	EaseOut   = "ease_out"
	EaseInOut = "ease_in_out"
	Sine      = "sine"
	Smooth    = "smooth"
	Smoother  = "smoother"
)

var curves = map[string]Curve{
	Linear:    linear,
	EaseIn:    easeIn,
	EaseOut:   easeOut,
	EaseInOut: easeInOut,
	Sine:      sine,
	Smooth:    smooth,
	Smoother:  smoother,
}

// Names returns the built-in curve names in a stable order
func Names() []string {
	return []string{Linear, EaseIn, EaseOut, EaseInOut, Sine, Smooth, Smoother}
}

// Apply evaluates the named curve at progress t.
// Unknown or malformed names behave as linear.
func Apply(t float64, name string) float64 {
	return Parse(name)(t)
}

// Parse resolves a curve name or a cubic_bezier(x1,y1,x2,y2) descriptor.
// Anything it cannot recognise resolves to linear.
func Parse(name string) Curve {
	c, _ := lookup(name)
	return c
}

// Known reports whether name resolves to something other than the linear fallback
func Known(name string) bool {
	_, ok := lookup(name)
	return ok
}

func lookup(name string) (Curve, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := curves[key]; ok {
		return clamped(c), true
	}
	if b, ok := parseBezier(key); ok {
		return clamped(b.At), true
	}
	return clamped(linear), false
}

func clamped(c Curve) Curve {
	return func(t float64) float64 {
		return c(clamp01(t))
	}
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func linear(t float64) float64 { return t }

func easeIn(t float64) float64 { return t * t }

func easeOut(t float64) float64 { return t * (2 - t) }

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func sine(t float64) float64 { return (1 - math.Cos(math.Pi*t)) / 2 }

// smoothstep
func smooth(t float64) float64 { return t * t * (3 - 2*t) }

// quintic smootherstep
func smoother(t float64) float64 { return t * t * t * (t*(6*t-15) + 10) }
