package constants

// Row-level messages. Formatted with the row number first.
const (
	MsgRowRequiredEmpty   = "row %d: required field %q is empty"
	MsgRowInvalidSource   = "row %d: invalid source %q (expected imported or confirmed)"
	MsgRowInvalidSpID     = "row %d: invalid spId %q"
	MsgRowInvalidColor    = "row %d: ignoring invalid color %q"
	MsgRowUnknownDialect  = "row %d: unrecognized record format"
	MsgRowMixedDialect    = "row %d: %s record in a %s payload (mixed dialects)"
	MsgRowNotObject       = "row %d: expected a JSON object"
	MsgRowDuplicateRecord = "row %d: duplicate of row %d in this batch, skipped"
)

// Validation messages.
const (
	MsgRenamed            = "row %d: %s renamed from %q to %q"
	MsgRenameSuppressed   = "row %d: rename of %q to %q suppressed, name already used by another record"
	MsgExternalIDChanged  = "row %d: %s of %q changed from %q to %q"
	MsgConflictDowngrade  = "row %d: %q is confirmed, update downgrades it to %s"
	MsgConflictRejected   = "row %d: %q is confirmed, update from %s source rejected"
	MsgFuzzyPartial       = "row %d: operator %q matched %q with %d%% confidence"
	MsgFuzzyNoMatch       = "row %d: operator %q did not match any customer"
	MsgModelNotFound      = "row %d: aircraft model %q not found"
	MsgEngineTypeNotFound = "row %d: engine type %q not found"
	MsgCommitBlocked      = "validation has blocking errors; resubmit with overrideConflicts to apply"
)

// Payload-level messages. A payload that hits one of these yields no records.
const (
	MsgEmptyPayload      = "payload is empty: a header row is required"
	MsgMissingHeaders    = "missing required columns: %s"
	MsgMalformedCSV      = "malformed CSV: %v"
	MsgMalformedXLSX     = "malformed XLSX workbook: %v"
	MsgMalformedJSON     = "malformed JSON: %v"
	MsgJSONNotArray      = "JSON payload must be an array of records, or an object wrapping one under \"value\" or \"data\""
	MsgUnsupportedFormat = "unsupported format %q"
)
