package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixMappingRules CachePrefix = "AIRCRAFT_TYPE_RULES"
)

// EntityKind names the reference table an import batch targets.
type EntityKind string

const (
	KindCustomer EntityKind = "customer"
	KindAircraft EntityKind = "aircraft"
)

// ParseEntityKind accepts the singular and plural spellings used in URLs.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch s {
	case "customer", "customers", "operator", "operators":
		return KindCustomer, true
	case "aircraft":
		return KindAircraft, true
	}
	return "", false
}

// Format is the wire format of an import payload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatXLSX:
		return Format(s), true
	}
	return "", false
}

// ImportChannel records how the payload reached the service.
type ImportChannel string

const (
	ChannelFile  ImportChannel = "file"
	ChannelPaste ImportChannel = "paste"
	ChannelAPI   ImportChannel = "api"
)

func ParseImportChannel(s string) (ImportChannel, bool) {
	switch ImportChannel(s) {
	case ChannelFile, ChannelPaste, ChannelAPI:
		return ImportChannel(s), true
	}
	return "", false
}

// ImportStatus is the outcome written to the audit log.
type ImportStatus string

const (
	ImportStatusSuccess ImportStatus = "success"
	ImportStatusFailed  ImportStatus = "failed"
)
