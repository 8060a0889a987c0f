package constants

import (
	"database/sql/driver"
	"fmt"
)

// TrustSource mirrors the `source` column of reference tables: the trust
// level of the last write. Ordered inferred < imported < confirmed.
type TrustSource string

const (
	SourceInferred  TrustSource = "inferred"
	SourceImported  TrustSource = "imported"
	SourceConfirmed TrustSource = "confirmed"
)

var trustRank = map[TrustSource]int{
	SourceInferred:  0,
	SourceImported:  1,
	SourceConfirmed: 2,
}

func (s TrustSource) String() string { return string(s) }

// Rank returns the position of s in the trust order, -1 for unknown values.
func (s TrustSource) Rank() int {
	if r, ok := trustRank[s]; ok {
		return r
	}
	return -1
}

// Importable reports whether a batch may declare this tier. Inferred is
// store-only.
func (s TrustSource) Importable() bool {
	return s == SourceImported || s == SourceConfirmed
}

// Scan implements the sql.Scanner interface
func (s *TrustSource) Scan(src interface{}) error {
	if src == nil {
		*s = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*s = TrustSource(v)
	case []byte:
		*s = TrustSource(v)
	default:
		return fmt.Errorf("TrustSource: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (s TrustSource) Value() (driver.Value, error) { return string(s), nil }

// ConflictMode decides what happens when an import would downgrade a
// confirmed record.
type ConflictMode string

const (
	ConflictAllow  ConflictMode = "allow"
	ConflictWarn   ConflictMode = "warn"
	ConflictReject ConflictMode = "reject"
)

func ParseConflictMode(s string) (ConflictMode, bool) {
	switch ConflictMode(s) {
	case ConflictAllow, ConflictWarn, ConflictReject:
		return ConflictMode(s), true
	}
	return "", false
}
