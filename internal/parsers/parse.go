package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	"skyline/opsboard/internal/constants"
)

// Dialect is the JSON record shape a payload was recognised as.
type Dialect string

const (
	DialectUnknown    Dialect = ""
	DialectLegacy     Dialect = "legacy"
	DialectSimplified Dialect = "simplified"
)

type alias struct {
	key   string
	field string
}

// kindSpec describes how raw rows map onto one entity kind.
type kindSpec struct {
	kind       constants.EntityKind
	naturalKey string
	required   []string
	headers    map[string]string // fieldKey(header) -> canonical field
	legacy     []alias           // exact legacy key -> canonical field, first present wins
}

var customerSpec = kindSpec{
	kind:       constants.KindCustomer,
	naturalKey: fieldName,
	required:   []string{fieldName},
	headers: map[string]string{
		"name":      fieldName,
		"shortname": fieldShortName,
		"color":     fieldColor,
		"colour":    fieldColor,
		"spid":      fieldSPID,
		"guid":      fieldGUID,
		"source":    fieldSource,
	},
	legacy: []alias{
		{"Title", fieldName},
		{"id", fieldSPID},
		{"ID", fieldSPID},
		{"guid", fieldGUID},
		{"GUID", fieldGUID},
		{"color", fieldColor},
		{"shortname", fieldShortName},
		{"source", fieldSource},
	},
}

var aircraftSpec = kindSpec{
	kind:       constants.KindAircraft,
	naturalKey: fieldRegistration,
	required:   []string{fieldRegistration, fieldModel, fieldOperator},
	headers: map[string]string{
		"registration": fieldRegistration,
		"reg":          fieldRegistration,
		"tailnumber":   fieldRegistration,
		"model":        fieldModel,
		"aircrafttype": fieldAircraftType,
		"type":         fieldAircraftType,
		"operator":     fieldOperator,
		"manufacturer": fieldManufacturer,
		"serialnumber": fieldSerialNumber,
		"serial":       fieldSerialNumber,
		"msn":          fieldSerialNumber,
		"enginetype":   fieldEngineType,
		"engine":       fieldEngineType,
		"notes":        fieldNotes,
		"spid":         fieldSPID,
		"guid":         fieldGUID,
		"source":       fieldSource,
	},
	legacy: []alias{
		{"Title", fieldRegistration},
		{"field_1", fieldModel},
		{"field_2", fieldOperator},
		{"field_3", fieldManufacturer},
		{"field_4", fieldSerialNumber},
		{"field_5", fieldEngineType},
		{"field_6", fieldNotes},
		{"id", fieldSPID},
		{"ID", fieldSPID},
		{"guid", fieldGUID},
		{"GUID", fieldGUID},
		{"source", fieldSource},
	},
}

func specFor(kind constants.EntityKind) kindSpec {
	if kind == constants.KindAircraft {
		return aircraftSpec
	}
	return customerSpec
}

// ParseCustomers parses a customer payload. It never fails outright: a
// payload-level problem is reported as the only error with no data.
func ParseCustomers(raw []byte, format constants.Format, opts Options) ParseResult[CustomerRecord] {
	return parse(raw, format, customerSpec, opts, buildCustomer)
}

// ParseAircraft parses an aircraft payload.
func ParseAircraft(raw []byte, format constants.Format, opts Options) ParseResult[AircraftRecord] {
	return parse(raw, format, aircraftSpec, opts, buildAircraft)
}

type buildFunc[T any] func(f fields, opts Options, res *ParseResult[T]) (T, bool)

func parse[T any](raw []byte, format constants.Format, spec kindSpec, opts Options, build buildFunc[T]) ParseResult[T] {
	res := ParseResult[T]{Data: []T{}, Errors: []string{}, Warnings: []string{}}

	var (
		rows    []fields
		dialect Dialect
		err     error
	)
	raw = stripBOM(raw)
	switch format {
	case constants.FormatCSV:
		rows, err = readCSV(raw, spec)
	case constants.FormatXLSX:
		rows, err = readXLSX(raw, spec)
	case constants.FormatJSON:
		rows, dialect, err = readJSON(raw, spec)
	default:
		err = fmt.Errorf(constants.MsgUnsupportedFormat, format)
	}
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	res.Dialect = dialect
	res.Total = len(rows)
	for _, row := range rows {
		if row.problem != "" {
			res.Errors = append(res.Errors, row.problem)
			continue
		}
		if rec, ok := build(row, opts, &res); ok {
			res.Data = append(res.Data, rec)
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// FormatFromFileName guesses the payload format from a file extension.
func FormatFromFileName(name string) (constants.Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return constants.FormatCSV, true
	case ".json":
		return constants.FormatJSON, true
	case ".xlsx":
		return constants.FormatXLSX, true
	}
	return "", false
}
