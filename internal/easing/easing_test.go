package easing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply_Endpoints(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0.0, Apply(0, name), 1e-9)
			assert.InDelta(t, 1.0, Apply(1, name), 1e-9)
		})
	}
}

func TestApply_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		curve    string
		progress float64
		expected float64
	}{
		{"linear midpoint", Linear, 0.5, 0.5},
		{"ease_in quarter", EaseIn, 0.25, 0.0625},
		{"ease_out midpoint", EaseOut, 0.5, 0.75},
		{"ease_in_out midpoint", EaseInOut, 0.5, 0.5},
		{"ease_in_out first half", EaseInOut, 0.25, 0.125},
		{"ease_in_out second half", EaseInOut, 0.75, 0.875},
		{"sine midpoint", Sine, 0.5, 0.5},
		{"smooth midpoint", Smooth, 0.5, 0.5},
		{"smooth quarter", Smooth, 0.25, 0.15625},
		{"smoother midpoint", Smoother, 0.5, 0.5},
		{"smoother quarter", Smoother, 0.25, 0.103515625},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Apply(tt.progress, tt.curve), 1e-9)
		})
	}
}

func TestApply_Monotonic(t *testing.T) {
	for _, name := range append(Names(), "cubic_bezier(0.42,0,0.58,1)") {
		prev := Apply(0, name)
		for i := 1; i <= 100; i++ {
			v := Apply(float64(i)/100, name)
			if v+1e-9 < prev {
				t.Errorf("%s not monotonic at %d: %f < %f", name, i, v, prev)
			}
			prev = v
		}
	}
}

func TestApply_UnknownFallsBackToLinear(t *testing.T) {
	for _, name := range []string{"", "bounce", "EASE_IN_SIDEWAYS"} {
		assert.Equal(t, 0.3, Apply(0.3, name), name)
		assert.False(t, Known(name), name)
	}
}

func TestApply_NameNormalisation(t *testing.T) {
	assert.InDelta(t, 0.0625, Apply(0.25, "  Ease_In "), 1e-9)
	assert.True(t, Known("SMOOTHER"))
}

func TestApply_ClampsProgress(t *testing.T) {
	assert.Equal(t, 0.0, Apply(-0.5, EaseIn))
	assert.Equal(t, 1.0, Apply(1.5, EaseOut))
}

func TestBezier_Endpoints(t *testing.T) {
	descriptors := []string{
		"cubic_bezier(0.25,0.1,0.25,1)",
		"cubic_bezier(0.42, 0, 0.58, 1)",
		"cubic_bezier(0.68,-0.55,0.27,1.55)",
		"cubic_bezier(0,0,1,1)",
	}

	for _, d := range descriptors {
		t.Run(d, func(t *testing.T) {
			assert.True(t, Known(d))
			assert.InDelta(t, 0.0, Apply(0, d), 1e-2)
			assert.InDelta(t, 1.0, Apply(1, d), 1e-2)
		})
	}
}

func TestBezier_DiagonalIsLinear(t *testing.T) {
	for _, p := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		assert.InDelta(t, p, Apply(p, "cubic_bezier(0.3,0.3,0.7,0.7)"), 1e-2)
	}
}

func TestBezier_EaseMidpoint(t *testing.T) {
	// CSS "ease" evaluates to roughly 0.802 at half time
	assert.InDelta(t, 0.802, Apply(0.5, "cubic_bezier(0.25,0.1,0.25,1)"), 1e-2)
}

func TestBezier_Malformed(t *testing.T) {
	tests := []string{
		"cubic_bezier(0.1,0.2,0.3)",
		"cubic_bezier(0.1,0.2,0.3,0.4,0.5)",
		"cubic_bezier(a,0.2,0.3,0.4)",
		"cubic_bezier 0.1,0.2,0.3,0.4",
		"cubic_bezier(0.1,0.2,0.3,0.4",
		"cubic_bezier(0.1,NaN,0.3,0.4)",
	}

	for _, d := range tests {
		t.Run(d, func(t *testing.T) {
			assert.False(t, Known(d))
			assert.Equal(t, 0.4, Apply(0.4, d))
		})
	}
}
