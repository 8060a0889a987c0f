package parsers

import (
	"fmt"

	"skyline/opsboard/internal/constants"
)

// CustomerRecord is one normalized customer row, whatever format it came in.
type CustomerRecord struct {
	Row       int                   `json:"row"`
	Name      string                `json:"name"`
	ShortName string                `json:"shortName,omitempty"`
	Color     string                `json:"color,omitempty"`
	SPID      *int                  `json:"spId,omitempty"`
	GUID      *string               `json:"guid,omitempty"`
	Source    constants.TrustSource `json:"source"`
}

// AircraftRecord is one normalized aircraft row. AircraftType falls back to
// Model when the payload carries no separate type column.
type AircraftRecord struct {
	Row          int                   `json:"row"`
	Registration string                `json:"registration"`
	Model        string                `json:"model,omitempty"`
	AircraftType string                `json:"aircraftType,omitempty"`
	Operator     string                `json:"operator,omitempty"`
	Manufacturer string                `json:"manufacturer,omitempty"`
	SerialNumber string                `json:"serialNumber,omitempty"`
	EngineType   string                `json:"engineType,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	SPID         *int                  `json:"spId,omitempty"`
	GUID         *string               `json:"guid,omitempty"`
	Source       constants.TrustSource `json:"source"`
}

// ParseResult carries the records that parsed plus every row-level problem.
// Total counts the non-empty data rows seen, parsed or not.
type ParseResult[T any] struct {
	Valid    bool     `json:"valid"`
	Data     []T      `json:"data"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Total    int      `json:"total"`
	Dialect  Dialect  `json:"dialect,omitempty"`
}

func (r *ParseResult[T]) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ParseResult[T]) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Options tune a parse run.
type Options struct {
	// DefaultSource applies to rows without a source cell. Defaults to imported.
	DefaultSource constants.TrustSource
}

func (o Options) defaultSource() constants.TrustSource {
	if o.DefaultSource.Importable() {
		return o.DefaultSource
	}
	return constants.SourceImported
}
