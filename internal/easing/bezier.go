package easing

import (
	"math"
	"strconv"
	"strings"
)

const (
	bezierPrefix     = "cubic_bezier("
	newtonIterations = 8
	newtonEpsilon    = 1e-6
)

// Bezier is a cubic Bezier timing curve anchored at (0,0) and (1,1)
type Bezier struct {
	X1, Y1, X2, Y2 float64
}

// At solves Bx(u) = t with Newton-Raphson and returns By(u)
func (b Bezier) At(t float64) float64 {
	u := t
	for i := 0; i < newtonIterations; i++ {
		x := bezierComponent(u, b.X1, b.X2) - t
		if math.Abs(x) < newtonEpsilon {
			break
		}
		d := bezierDerivative(u, b.X1, b.X2)
		if math.Abs(d) < newtonEpsilon {
			break
		}
		u = clamp01(u - x/d)
	}
	return bezierComponent(u, b.Y1, b.Y2)
}

// bezierComponent evaluates one axis of the curve with P0=0 and P3=1
func bezierComponent(u, p1, p2 float64) float64 {
	inv := 1 - u
	return 3*inv*inv*u*p1 + 3*inv*u*u*p2 + u*u*u
}

func bezierDerivative(u, p1, p2 float64) float64 {
	inv := 1 - u
	return 3*inv*inv*p1 + 6*inv*u*(p2-p1) + 3*u*u*(1-p2)
}

// parseBezier expects an already lower-cased, trimmed descriptor
func parseBezier(s string) (Bezier, bool) {
	if !strings.HasPrefix(s, bezierPrefix) || !strings.HasSuffix(s, ")") {
		return Bezier{}, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, bezierPrefix), ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return Bezier{}, false
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Bezier{}, false
		}
		v[i] = f
	}

	return Bezier{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, true
}
