package reconcile

import (
	"skyline/opsboard/internal/matching"
	gormModels "skyline/opsboard/internal/models/gorm"
)

type Summary struct {
	Total            int  `json:"total"`
	ToAdd            int  `json:"toAdd"`
	ToUpdate         int  `json:"toUpdate"`
	Conflicts        int  `json:"conflicts"`
	Unchanged        int  `json:"unchanged"`
	Skipped          int  `json:"skipped"`
	InvalidOperators *int `json:"invalidOperators,omitempty"`
}

// Update pairs a stored entity with the row it would become. Existing and
// New always share the store id.
type Update[E any] struct {
	Row      int  `json:"row"`
	Existing E    `json:"existing"`
	New      E    `json:"new"`
	Conflict bool `json:"conflict"`
}

// FuzzyMatch records one operator resolution attempt.
type FuzzyMatch struct {
	Row          int    `json:"row"`
	Registration string `json:"registration"`
	Raw          string `json:"raw"`
	matching.Result
}

type Details[E any] struct {
	Add    []E         `json:"add"`
	Update []Update[E] `json:"update"`
	// Conflicts holds updates rejected by the conflict policy. They are
	// re-admitted only when the commit overrides conflicts.
	Conflicts    []Update[E]  `json:"conflicts,omitempty"`
	Warnings     []string     `json:"warnings"`
	Errors       []string     `json:"errors"`
	FuzzyMatches []FuzzyMatch `json:"fuzzyMatches,omitempty"`
}

// ValidationResult is the transient outcome of a validate run. It is never
// persisted.
type ValidationResult[E any] struct {
	Valid   bool       `json:"valid"`
	Summary Summary    `json:"summary"`
	Details Details[E] `json:"details"`
}

type CustomerResult = ValidationResult[gormModels.Customer]

type AircraftResult = ValidationResult[gormModels.Aircraft]

func newResult[E any](parseErrors, parseWarnings []string, total int) ValidationResult[E] {
	r := ValidationResult[E]{
		Details: Details[E]{
			Add:      []E{},
			Update:   []Update[E]{},
			Warnings: append([]string{}, parseWarnings...),
			Errors:   append([]string{}, parseErrors...),
		},
	}
	r.Summary.Total = total
	return r
}

func (r *ValidationResult[E]) finish() {
	r.Summary.ToAdd = len(r.Details.Add)
	r.Summary.ToUpdate = len(r.Details.Update)
	r.Summary.Skipped = r.Summary.Total - r.Summary.ToAdd - r.Summary.ToUpdate -
		len(r.Details.Conflicts) - r.Summary.Unchanged
	if r.Summary.Skipped < 0 {
		r.Summary.Skipped = 0
	}
	r.Valid = len(r.Details.Errors) == 0
}

// Writes returns what a commit applies: every add plus every admitted
// update, with rejected conflicts re-admitted when override is set.
func (r *ValidationResult[E]) Writes(override bool) ([]E, []Update[E]) {
	updates := append([]Update[E]{}, r.Details.Update...)
	if override {
		updates = append(updates, r.Details.Conflicts...)
	}
	return r.Details.Add, updates
}
