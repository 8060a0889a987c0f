package reconcile

import (
	"skyline/opsboard/internal/matching"
	gormModels "skyline/opsboard/internal/models/gorm"
	"skyline/opsboard/internal/parsers"
)

// Customer merge precedence:
//
//	field      | value written
//	-----------+--------------------------------------------
//	name       | rename outcome decided by the resolver
//	shortName  | incoming if non-empty, else existing
//	color      | incoming if non-empty, else existing
//	spId, guid | incoming if set, else existing
//	source     | incoming
//	isActive   | existing (imports never toggle it)
func MergeCustomer(existing gormModels.Customer, rec parsers.CustomerRecord, name string) gormModels.Customer {
	merged := existing
	merged.Name = name
	merged.ShortName = firstString(rec.ShortName, existing.ShortName)
	merged.Color = firstString(rec.Color, existing.Color)
	merged.SPID = firstIntPtr(rec.SPID, existing.SPID)
	merged.GUID = firstStringPtr(rec.GUID, existing.GUID)
	merged.Source = rec.Source
	return merged
}

// NewCustomer builds the row inserted for an unmatched record. Colour stays
// empty when absent; the committer assigns one.
func NewCustomer(rec parsers.CustomerRecord) gormModels.Customer {
	return gormModels.Customer{
		Name:      rec.Name,
		ShortName: rec.ShortName,
		Color:     rec.Color,
		SPID:      rec.SPID,
		GUID:      rec.GUID,
		Source:    rec.Source,
		IsActive:  true,
	}
}

func customersEqual(a, b gormModels.Customer) bool {
	return a.Name == b.Name &&
		a.ShortName == b.ShortName &&
		a.Color == b.Color &&
		equalIntPtr(a.SPID, b.SPID) &&
		equalStringPtr(a.GUID, b.GUID) &&
		a.Source == b.Source &&
		a.IsActive == b.IsActive
}

// AircraftLinks carries everything the validator resolved for one aircraft
// record before merging.
type AircraftLinks struct {
	Registration string
	ModelID      *uint
	EngineTypeID *uint
	// Operator is nil when the record has no operator text.
	Operator *matching.Result
}

// Aircraft merge precedence:
//
//	field                  | value written
//	-----------------------+---------------------------------------------
//	registration           | rename outcome decided by the resolver
//	aircraftType           | incoming if non-empty, else existing
//	canonicalType          | recomputed from the merged type by the caller
//	modelId, engineTypeId  | resolved lookup if found, else existing
//	serialNumber, notes    | incoming if non-empty, else existing
//	operatorId             | matched customer, nil on a failed match,
//	                       | existing when the record has no operator
//	operatorRaw/Confidence | last attempt, existing when no operator
//	spId, guid             | incoming if set, else existing
//	source                 | incoming
//	isActive               | existing
func MergeAircraft(existing gormModels.Aircraft, rec parsers.AircraftRecord, links AircraftLinks) gormModels.Aircraft {
	merged := existing
	merged.Registration = links.Registration
	merged.AircraftType = firstString(rec.AircraftType, existing.AircraftType)
	merged.ModelID = firstUintPtr(links.ModelID, existing.ModelID)
	merged.EngineTypeID = firstUintPtr(links.EngineTypeID, existing.EngineTypeID)
	merged.SerialNumber = firstString(rec.SerialNumber, existing.SerialNumber)
	merged.Notes = firstString(rec.Notes, existing.Notes)
	if links.Operator != nil {
		applyOperator(&merged, rec.Operator, *links.Operator)
	}
	merged.SPID = firstIntPtr(rec.SPID, existing.SPID)
	merged.GUID = firstStringPtr(rec.GUID, existing.GUID)
	merged.Source = rec.Source
	merged.Operator = nil
	return merged
}

func NewAircraft(rec parsers.AircraftRecord, links AircraftLinks) gormModels.Aircraft {
	a := gormModels.Aircraft{
		Registration: links.Registration,
		AircraftType: rec.AircraftType,
		ModelID:      links.ModelID,
		EngineTypeID: links.EngineTypeID,
		SerialNumber: rec.SerialNumber,
		Notes:        rec.Notes,
		SPID:         rec.SPID,
		GUID:         rec.GUID,
		Source:       rec.Source,
		IsActive:     true,
	}
	if links.Operator != nil {
		applyOperator(&a, rec.Operator, *links.Operator)
	}
	return a
}

func applyOperator(a *gormModels.Aircraft, raw string, m matching.Result) {
	a.OperatorRaw = raw
	a.OperatorMatchConfidence = m.Confidence
	a.OperatorID = nil
	if m.Matched {
		id := m.EntityID
		a.OperatorID = &id
	}
}

func aircraftEqual(a, b gormModels.Aircraft) bool {
	return a.Registration == b.Registration &&
		a.AircraftType == b.AircraftType &&
		a.CanonicalType == b.CanonicalType &&
		equalUintPtr(a.ModelID, b.ModelID) &&
		equalUintPtr(a.EngineTypeID, b.EngineTypeID) &&
		a.SerialNumber == b.SerialNumber &&
		equalUintPtr(a.OperatorID, b.OperatorID) &&
		a.OperatorRaw == b.OperatorRaw &&
		a.OperatorMatchConfidence == b.OperatorMatchConfidence &&
		equalIntPtr(a.SPID, b.SPID) &&
		equalStringPtr(a.GUID, b.GUID) &&
		a.Source == b.Source &&
		a.IsActive == b.IsActive &&
		a.Notes == b.Notes
}

func firstString(incoming, existing string) string {
	if incoming != "" {
		return incoming
	}
	return existing
}

func firstIntPtr(incoming, existing *int) *int {
	if incoming != nil {
		return incoming
	}
	return existing
}

func firstUintPtr(incoming, existing *uint) *uint {
	if incoming != nil {
		return incoming
	}
	return existing
}

func firstStringPtr(incoming, existing *string) *string {
	if incoming != nil && *incoming != "" {
		return incoming
	}
	return existing
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalUintPtr(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
