package parsers

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"skyline/opsboard/internal/constants"
)

// Canonical field names. Every format is aliased onto these before a record
// is built.
const (
	fieldName         = "name"
	fieldShortName    = "shortName"
	fieldColor        = "color"
	fieldSPID         = "spId"
	fieldGUID         = "guid"
	fieldSource       = "source"
	fieldRegistration = "registration"
	fieldModel        = "model"
	fieldAircraftType = "aircraftType"
	fieldOperator     = "operator"
	fieldManufacturer = "manufacturer"
	fieldSerialNumber = "serialNumber"
	fieldEngineType   = "engineType"
	fieldNotes        = "notes"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)
	reColor  = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// fieldKey folds a header or JSON key so snake_case, camelCase and spaced
// spellings compare equal.
func fieldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

func clean(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte("\ufeff"))
}

// parseSource reads a source cell. Empty means the batch default; inferred
// is never accepted from outside.
func parseSource(raw string, def constants.TrustSource) (constants.TrustSource, bool) {
	switch strings.ToLower(clean(raw)) {
	case "":
		return def, true
	case "imported", "false", "no", "n", "0":
		return constants.SourceImported, true
	case "confirmed", "true", "yes", "y", "1":
		return constants.SourceConfirmed, true
	}
	return "", false
}

// maxSPID keeps float conversion exact.
const maxSPID = 1 << 53

// parseSPID accepts a positive integer given as a number or a base-10
// string. Fractional numbers are rejected, never truncated.
func parseSPID(raw interface{}) (*int, bool) {
	var n int
	switch v := raw.(type) {
	case nil:
		return nil, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, true
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		n = i
	case float64:
		if math.Trunc(v) != v || v > maxSPID {
			return nil, false
		}
		n = int(v)
	case float32:
		return parseSPID(float64(v))
	case bool:
		return nil, false
	default:
		i, err := cast.ToIntE(v)
		if err != nil {
			return nil, false
		}
		n = i
	}
	if n <= 0 {
		return nil, false
	}
	return &n, true
}

func optionalString(s string) *string {
	s = clean(s)
	if s == "" {
		return nil
	}
	return &s
}

// fields is one raw row keyed by canonical field name. typed keeps the
// untyped JSON values so numbers are not round-tripped through strings.
type fields struct {
	row     int
	values  map[string]string
	typed   map[string]interface{}
	problem string // set when the row was rejected before field mapping
}

func (f fields) get(name string) string {
	return clean(f.values[name])
}

func buildCustomer(f fields, opts Options, res *ParseResult[CustomerRecord]) (CustomerRecord, bool) {
	rec := CustomerRecord{Row: f.row}
	rec.Name = f.get(fieldName)
	if rec.Name == "" {
		res.errorf(constants.MsgRowRequiredEmpty, f.row, fieldName)
		return rec, false
	}

	ok := true
	rec.ShortName = f.get(fieldShortName)
	rec.GUID = optionalString(f.values[fieldGUID])

	if color := f.get(fieldColor); color != "" {
		if reColor.MatchString(color) {
			rec.Color = strings.ToUpper(color)
		} else {
			res.warnf(constants.MsgRowInvalidColor, f.row, color)
		}
	}

	if spID, valid := parseSPID(f.rawValue(fieldSPID)); valid {
		rec.SPID = spID
	} else {
		res.errorf(constants.MsgRowInvalidSpID, f.row, cast.ToString(f.rawValue(fieldSPID)))
		ok = false
	}

	if src, valid := parseSource(f.values[fieldSource], opts.defaultSource()); valid {
		rec.Source = src
	} else {
		res.errorf(constants.MsgRowInvalidSource, f.row, f.get(fieldSource))
		ok = false
	}
	return rec, ok
}

func buildAircraft(f fields, opts Options, res *ParseResult[AircraftRecord]) (AircraftRecord, bool) {
	rec := AircraftRecord{Row: f.row}
	rec.Registration = strings.ToUpper(f.get(fieldRegistration))
	if rec.Registration == "" {
		res.errorf(constants.MsgRowRequiredEmpty, f.row, fieldRegistration)
		return rec, false
	}

	ok := true
	rec.Model = f.get(fieldModel)
	rec.AircraftType = f.get(fieldAircraftType)
	if rec.AircraftType == "" {
		rec.AircraftType = rec.Model
	}
	rec.Operator = f.get(fieldOperator)
	rec.Manufacturer = f.get(fieldManufacturer)
	rec.SerialNumber = f.get(fieldSerialNumber)
	rec.EngineType = f.get(fieldEngineType)
	rec.Notes = strings.TrimSpace(f.values[fieldNotes])
	rec.GUID = optionalString(f.values[fieldGUID])

	if spID, valid := parseSPID(f.rawValue(fieldSPID)); valid {
		rec.SPID = spID
	} else {
		res.errorf(constants.MsgRowInvalidSpID, f.row, cast.ToString(f.rawValue(fieldSPID)))
		ok = false
	}

	if src, valid := parseSource(f.values[fieldSource], opts.defaultSource()); valid {
		rec.Source = src
	} else {
		res.errorf(constants.MsgRowInvalidSource, f.row, f.get(fieldSource))
		ok = false
	}
	return rec, ok
}

func (f fields) rawValue(name string) interface{} {
	if v, ok := f.typed[name]; ok {
		return v
	}
	return f.values[name]
}
