package model

import (
	"fmt"
	"maps"
	"sort"
)

// Trait names read by the deliberation engine.
const (
	TraitCuriosity     = "curiosity"
	TraitEmpathy       = "empathy"
	TraitSkepticism    = "skepticism"
	TraitCreativity    = "creativity"
	TraitIntrospection = "introspection"
)

// Traits maps trait name to a weight in [0, 1].
type Traits map[string]float64

// DefaultTraits returns the stock trait profile.
func DefaultTraits() Traits {
	return Traits{
		TraitCuriosity:     0.8,
		TraitEmpathy:       0.7,
		TraitSkepticism:    0.6,
		TraitCreativity:    0.5,
		TraitIntrospection: 0.9,
	}
}

// Clone returns an independent copy.
func (t Traits) Clone() Traits {
	return maps.Clone(t)
}

// Merge returns a copy of t with every entry of o applied on top.
func (t Traits) Merge(o Traits) Traits {
	out := t.Clone()
	if out == nil {
		out = Traits{}
	}
	maps.Copy(out, o)
	return out
}

// Validate reports the first trait whose weight is outside [0, 1].
func (t Traits) Validate() error {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if w := t[name]; w < 0 || w > 1 {
			return fmt.Errorf("trait %q: weight %v outside [0, 1]", name, w)
		}
	}
	return nil
}

// Dispositions are coarse agent-level personality flags reported in the
// personality snapshot.
type Dispositions map[string]bool

// DefaultDispositions returns the stock disposition flags.
func DefaultDispositions() Dispositions {
	return Dispositions{
		"introspective": true,
		"curious":       true,
		"empathetic":    true,
		"analytical":    true,
	}
}

// Clone returns an independent copy.
func (d Dispositions) Clone() Dispositions {
	return maps.Clone(d)
}
