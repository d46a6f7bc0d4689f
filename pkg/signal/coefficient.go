package signal

import "github.com/webrank/rankcore/pkg/schema"

// SignalCoefficient is a dense, per-signal override table (section 3:
// "Lifecycle: built once per query from the parsed query alterations;
// immutable thereafter"). Unset positions fall back to the signal's
// default coefficient.
type SignalCoefficient struct {
	overrides [numSignals]*float64
}

// NewSignalCoefficients builds a coefficient table from a set of
// (signal, value) overrides, in the style of the Rust SignalCoefficient::new.
func NewSignalCoefficients(overrides map[Signal]float64) SignalCoefficient {
	var sc SignalCoefficient
	for s, v := range overrides {
		if int(s) < 0 || int(s) >= numSignals {
			continue
		}
		v := v
		sc.overrides[s] = &v
	}
	return sc
}

// Get returns the coefficient for a signal: the override if set, else the
// signal's default.
func (sc SignalCoefficient) Get(s Signal) float64 {
	if int(s) >= 0 && int(s) < numSignals {
		if v := sc.overrides[s]; v != nil {
			return *v
		}
	}
	return s.DefaultCoefficient()
}

// FieldBoost is a dense, per-text-field override table for BM25 field
// weighting (section 4.2, "Field boosts").
type FieldBoost struct {
	overrides [schema.NumTextFields]*float64
}

// NewFieldBoosts builds a field-boost table from a set of (field, value)
// overrides.
func NewFieldBoosts(overrides map[schema.TextField]float64) FieldBoost {
	var fb FieldBoost
	for f, v := range overrides {
		if int(f) < 0 || int(f) >= schema.NumTextFields {
			continue
		}
		v := v
		fb.overrides[f] = &v
	}
	return fb
}

// Get returns the boost for a text field: the override if set, else the
// field's static default boost (or 1.0 if the field has none).
func (fb FieldBoost) Get(f schema.TextField) float64 {
	if int(f) >= 0 && int(f) < schema.NumTextFields {
		if v := fb.overrides[f]; v != nil {
			return *v
		}
	}
	return schema.DefaultBoost(f)
}
