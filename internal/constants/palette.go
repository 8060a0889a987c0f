package constants

// CustomerPalette is the fixed set of colours handed out to new customers
// that arrive without one. Order matters: assignment walks it front to back.
var CustomerPalette = []string{
	"#1F77B4",
	"#FF7F0E",
	"#2CA02C",
	"#D62728",
	"#9467BD",
	"#8C564B",
	"#E377C2",
	"#7F7F7F",
	"#BCBD22",
	"#17BECF",
	"#393B79",
	"#637939",
}

// CanonicalType is one of the aircraft families the dashboard groups by.
type CanonicalType string

const (
	TypeA220    CanonicalType = "A220"
	TypeA320    CanonicalType = "A320"
	TypeA330    CanonicalType = "A330"
	TypeA340    CanonicalType = "A340"
	TypeA350    CanonicalType = "A350"
	TypeA380    CanonicalType = "A380"
	TypeB737    CanonicalType = "B737"
	TypeB747    CanonicalType = "B747"
	TypeB757    CanonicalType = "B757"
	TypeB767    CanonicalType = "B767"
	TypeB777    CanonicalType = "B777"
	TypeB787    CanonicalType = "B787"
	TypeEJet    CanonicalType = "E-Jet"
	TypeCRJ     CanonicalType = "CRJ"
	TypeATR     CanonicalType = "ATR"
	TypeDash8   CanonicalType = "Dash 8"
	TypeUnknown CanonicalType = "Unknown"
)

var canonicalTypes = map[CanonicalType]struct{}{
	TypeA220: {}, TypeA320: {}, TypeA330: {}, TypeA340: {}, TypeA350: {}, TypeA380: {},
	TypeB737: {}, TypeB747: {}, TypeB757: {}, TypeB767: {}, TypeB777: {}, TypeB787: {},
	TypeEJet: {}, TypeCRJ: {}, TypeATR: {}, TypeDash8: {}, TypeUnknown: {},
}

// IsCanonicalType reports whether s names a known family.
func IsCanonicalType(s string) bool {
	_, ok := canonicalTypes[CanonicalType(s)]
	return ok
}
