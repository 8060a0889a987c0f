package reconcile

import "skyline/opsboard/internal/constants"

// Decision is the conflict policy outcome for one update.
type Decision struct {
	Conflict bool // the write would lower a confirmed entity
	Warn     bool // admitted, but the caller must be told
	Blocking bool // excluded from the update set unless overridden
}

// ResolveConflict applies the conflict mode to a single write. Only a
// confirmed entity receiving a non-confirmed write is a conflict.
func ResolveConflict(existing, incoming constants.TrustSource, mode constants.ConflictMode) Decision {
	if existing != constants.SourceConfirmed || incoming == constants.SourceConfirmed {
		return Decision{}
	}
	switch mode {
	case constants.ConflictAllow:
		return Decision{Conflict: true}
	case constants.ConflictReject:
		return Decision{Conflict: true, Blocking: true}
	default:
		return Decision{Conflict: true, Warn: true}
	}
}
