package signal

import (
	"strconv"

	"github.com/webrank/rankcore/pkg/schema"
)

// Target names what a query-side alteration overrides: either a named
// signal or a named text field (section 6, "Query-side alteration
// interface").
type Target struct {
	Signal string // set when the alteration targets a signal
	Field  string // set when the alteration targets a text field
}

// RawAlteration is the parsed-alteration interface consumed from the
// query DSL ("goggles") layer, which this package treats as an external
// collaborator (spec.md section 1).
type RawAlteration struct {
	Target Target
	Score  string
}

// NewAggregatorFromAlterations builds an Aggregator from a list of raw
// alterations. Unknown signal/field names are silently skipped (section
// 7: UnknownSignalName/UnknownFieldName); a malformed score string
// surfaces a *ScoreError that must reject the whole query before any
// index work starts (section 7's recovery policy).
func NewAggregatorFromAlterations(alterations []RawAlteration) (*Aggregator, error) {
	coefficients := make(map[Signal]float64)
	boosts := make(map[schema.TextField]float64)

	for _, raw := range alterations {
		score, err := strconv.ParseFloat(raw.Score, 64)
		if err != nil {
			target := raw.Target.Signal
			if target == "" {
				target = raw.Target.Field
			}
			return nil, &ScoreError{Target: target, Raw: raw.Score, Err: err}
		}

		switch {
		case raw.Target.Signal != "":
			if s, ok := SignalFromName(raw.Target.Signal); ok {
				coefficients[s] = score
			}
		case raw.Target.Field != "":
			if f, ok := schema.TextFieldFromName(raw.Target.Field); ok {
				boosts[f] = score
			}
		}
	}

	return NewAggregator(NewSignalCoefficients(coefficients), NewFieldBoosts(boosts)), nil
}
