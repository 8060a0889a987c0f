package constants

// Import error codes. Surfaced in API error bodies so support can grep logs.
const (
	ErrCodeUnknownKind       = "IMP001"
	ErrCodeUnsupportedFormat = "IMP002"
	ErrCodeCommitBlocked     = "IMP003"
	ErrCodeMalformedPayload  = "IMP004"
	ErrCodePayloadTooLarge   = "IMP005"
	ErrCodeMissingUser       = "IMP006"
	ErrCodeCommitFailed      = "IMP007"

	ErrCodeRuleNotFound = "MAP001"
	ErrCodeInvalidRule  = "MAP002"
)

var ImportErrorMessages = map[string]string{
	ErrCodeUnknownKind:       "Unknown entity kind. Use customer or aircraft",
	ErrCodeUnsupportedFormat: "Unsupported format. Use csv, json or xlsx",
	ErrCodeCommitBlocked:     "The import has blocking validation errors",
	ErrCodeMalformedPayload:  "The payload could not be parsed",
	ErrCodePayloadTooLarge:   "The payload exceeds the maximum upload size",
	ErrCodeMissingUser:       "The request carries no user identity",
	ErrCodeCommitFailed:      "The import could not be written to the database",

	ErrCodeRuleNotFound: "The mapping rule does not exist",
	ErrCodeInvalidRule:  "The mapping rule is invalid",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ImportErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
