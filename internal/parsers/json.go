package parsers

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"skyline/opsboard/internal/constants"
)

// readJSON accepts a top-level array or an object wrapping the array under
// "value" (OData exports) or "data". The first recognised record fixes the
// dialect for the rest of the payload.
func readJSON(raw []byte, spec kindSpec) ([]fields, Dialect, error) {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, DialectUnknown, fmt.Errorf(constants.MsgMalformedJSON, err)
	}

	items, ok := unwrapRecords(payload)
	if !ok {
		return nil, DialectUnknown, errors.New(constants.MsgJSONNotArray)
	}

	payloadDialect := DialectUnknown
	rows := make([]fields, 0, len(items))
	for i, item := range items {
		row := i + 1
		obj, ok := item.(map[string]interface{})
		if !ok {
			rows = append(rows, fields{row: row, problem: fmt.Sprintf(constants.MsgRowNotObject, row)})
			continue
		}

		dialect := detectDialect(obj, spec)
		switch {
		case dialect == DialectUnknown:
			rows = append(rows, fields{row: row, problem: fmt.Sprintf(constants.MsgRowUnknownDialect, row)})
			continue
		case payloadDialect == DialectUnknown:
			payloadDialect = dialect
		case dialect != payloadDialect:
			rows = append(rows, fields{row: row, problem: fmt.Sprintf(constants.MsgRowMixedDialect, row, dialect, payloadDialect)})
			continue
		}

		if dialect == DialectLegacy {
			rows = append(rows, fromLegacy(row, obj, spec))
		} else {
			rows = append(rows, fromSimplified(row, obj, spec))
		}
	}
	return rows, payloadDialect, nil
}

func unwrapRecords(payload interface{}) ([]interface{}, bool) {
	switch v := payload.(type) {
	case []interface{}:
		return v, true
	case map[string]interface{}:
		for _, key := range []string{"value", "data"} {
			if inner, ok := v[key].([]interface{}); ok {
				return inner, true
			}
		}
	}
	return nil, false
}

// DetectDialect classifies one JSON record for the given kind: legacy
// exports carry Title, simplified records carry the natural key itself.
func DetectDialect(obj map[string]interface{}, kind constants.EntityKind) Dialect {
	return detectDialect(obj, specFor(kind))
}

func detectDialect(obj map[string]interface{}, spec kindSpec) Dialect {
	if _, ok := obj["Title"]; ok {
		return DialectLegacy
	}
	for k := range obj {
		if spec.headers[fieldKey(k)] == spec.naturalKey {
			return DialectSimplified
		}
	}
	return DialectUnknown
}

func fromLegacy(row int, obj map[string]interface{}, spec kindSpec) fields {
	f := fields{row: row, values: map[string]string{}, typed: map[string]interface{}{}}
	for _, a := range spec.legacy {
		if _, taken := f.typed[a.field]; taken {
			continue
		}
		if v, ok := obj[a.key]; ok && v != nil {
			f.set(a.field, v)
		}
	}
	return f
}

func fromSimplified(row int, obj map[string]interface{}, spec kindSpec) fields {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := fields{row: row, values: map[string]string{}, typed: map[string]interface{}{}}
	for _, k := range keys {
		field, ok := spec.headers[fieldKey(k)]
		if !ok || obj[k] == nil {
			continue
		}
		if _, taken := f.typed[field]; taken {
			continue
		}
		f.set(field, obj[k])
	}
	return f
}

func (f fields) set(field string, v interface{}) {
	v = flatten(v)
	f.typed[field] = v
	f.values[field] = cast.ToString(v)
}

// flatten reduces legacy lookup objects ({"Title": ...} or {"Value": ...})
// and multi-value arrays to their first scalar.
func flatten(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for _, key := range []string{"Title", "Value", "title", "value"} {
			if inner, ok := t[key]; ok {
				return flatten(inner)
			}
		}
		return nil
	case []interface{}:
		if len(t) == 0 {
			return nil
		}
		return flatten(t[0])
	}
	return v
}
