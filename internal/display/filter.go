package display

// UpdateFilter suppresses applying the same temperature twice in a row
type UpdateFilter struct {
	enabled  bool
	last     int
	hasValue bool
}

// NewUpdateFilter creates a filter. When enabled is false every value is applied.
func NewUpdateFilter(enabled bool) *UpdateFilter {
	return &UpdateFilter{enabled: enabled}
}

// ShouldApply reports whether kelvin differs from the last applied value
func (f *UpdateFilter) ShouldApply(kelvin int) bool {
	if !f.enabled || !f.hasValue {
		return true
	}
	return f.last != kelvin
}

// Record marks kelvin as successfully applied
func (f *UpdateFilter) Record(kelvin int) {
	f.last = kelvin
	f.hasValue = true
}

// LastApplied returns the last recorded temperature
func (f *UpdateFilter) LastApplied() (int, bool) {
	return f.last, f.hasValue
}
