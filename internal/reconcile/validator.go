package reconcile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"skyline/opsboard/internal/canonical"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/matching"
	gormModels "skyline/opsboard/internal/models/gorm"
	"skyline/opsboard/internal/parsers"
)

// CustomerSnapshot is the store state a customer batch is validated against.
type CustomerSnapshot struct {
	Customers []gormModels.Customer
}

// AircraftSnapshot is the store state an aircraft batch is validated
// against, including the lookup tables.
type AircraftSnapshot struct {
	Aircraft    []gormModels.Aircraft
	Customers   []gormModels.Customer
	Models      []gormModels.AircraftModel
	EngineTypes []gormModels.EngineType
}

// Validator runs parsed batches through identity resolution, operator
// matching, type canonicalization and the conflict policy. It never touches
// the store.
type Validator struct {
	matcher *matching.Matcher
	canon   *canonical.Canonicalizer
}

func NewValidator(matcher *matching.Matcher, canon *canonical.Canonicalizer) *Validator {
	return &Validator{matcher: matcher, canon: canon}
}

// batchClaims tracks which entities and natural keys earlier rows of the
// batch already took. released maps a natural key an earlier row renamed an
// entity away from to that entity's id.
type batchClaims struct {
	ids      map[uint]int
	keys     map[string]int
	released map[string]uint
}

func newBatchClaims() *batchClaims {
	return &batchClaims{ids: map[uint]int{}, keys: map[string]int{}, released: map[string]uint{}}
}

// vacated reports whether a natural-key hit points at an entity an earlier
// row renamed away from that key. Such a record is new, not a duplicate.
func (c *batchClaims) vacated(key string, path Path, id uint) bool {
	owner, ok := c.released[key]
	return ok && path == PathNaturalKey && owner == id
}

func (v *Validator) ValidateCustomers(parsed parsers.ParseResult[parsers.CustomerRecord], snap CustomerSnapshot, mode constants.ConflictMode) CustomerResult {
	res := newResult[gormModels.Customer](parsed.Errors, parsed.Warnings, parsed.Total)
	ix := NewCustomerIndex(snap.Customers)
	claims := newBatchClaims()

	for _, rec := range parsed.Data {
		existing, path := FindExistingCustomer(rec, ix)
		if existing != nil && claims.vacated(CustomerKey(rec.Name), path, existing.ID) {
			existing = nil
		}
		if existing == nil {
			key := CustomerKey(rec.Name)
			if first, dup := claims.keys[key]; dup {
				res.warnf(constants.MsgRowDuplicateRecord, rec.Row, first)
				continue
			}
			claims.keys[key] = rec.Row
			res.Details.Add = append(res.Details.Add, NewCustomer(rec))
			continue
		}
		if first, dup := claims.ids[existing.ID]; dup {
			res.warnf(constants.MsgRowDuplicateRecord, rec.Row, first)
			continue
		}
		claims.ids[existing.ID] = rec.Row

		name := resolveRename(&res, ix, claims, rename{
			row: rec.Row, kind: "customer", path: path, id: existing.ID,
			current: existing.Name, incoming: rec.Name, keyOf: CustomerKey,
		})
		merged := MergeCustomer(*existing, rec, name)
		externalIDChanges(&res, rec.Row, existing.Name, existing.GUID, merged.GUID, existing.SPID, merged.SPID)
		if customersEqual(*existing, merged) {
			res.Summary.Unchanged++
			continue
		}
		applyPolicy(&res, Update[gormModels.Customer]{Row: rec.Row, Existing: *existing, New: merged},
			existing.Name, existing.Source, rec.Source, mode)
	}

	res.finish()
	return res
}

func (v *Validator) ValidateAircraft(parsed parsers.ParseResult[parsers.AircraftRecord], snap AircraftSnapshot, mode constants.ConflictMode) AircraftResult {
	res := newResult[gormModels.Aircraft](parsed.Errors, parsed.Warnings, parsed.Total)
	ix := NewAircraftIndex(snap.Aircraft)
	claims := newBatchClaims()
	lookups := newLookups(snap)
	invalidOperators := 0

	for _, rec := range parsed.Data {
		existing, path := FindExistingAircraft(rec, ix)
		if existing != nil && claims.vacated(AircraftKey(rec.Registration), path, existing.ID) {
			existing = nil
		}
		if existing == nil {
			key := AircraftKey(rec.Registration)
			if first, dup := claims.keys[key]; dup {
				res.warnf(constants.MsgRowDuplicateRecord, rec.Row, first)
				continue
			}
			claims.keys[key] = rec.Row
		} else {
			if first, dup := claims.ids[existing.ID]; dup {
				res.warnf(constants.MsgRowDuplicateRecord, rec.Row, first)
				continue
			}
			claims.ids[existing.ID] = rec.Row
		}

		links := AircraftLinks{Registration: rec.Registration}
		links.ModelID = lookups.model(&res, rec)
		links.EngineTypeID = lookups.engineType(&res, rec)
		if rec.Operator != "" {
			m := v.matcher.Match(rec.Operator, lookups.candidates)
			links.Operator = &m
			res.Details.FuzzyMatches = append(res.Details.FuzzyMatches, FuzzyMatch{
				Row: rec.Row, Registration: rec.Registration, Raw: rec.Operator, Result: m,
			})
			switch {
			case !m.Matched:
				invalidOperators++
				res.warnf(constants.MsgFuzzyNoMatch, rec.Row, rec.Operator)
			case m.Confidence < matching.ScoreExact:
				res.warnf(constants.MsgFuzzyPartial, rec.Row, rec.Operator, m.EntityName, m.Confidence)
			}
		}

		if existing == nil {
			a := NewAircraft(rec, links)
			a.CanonicalType = v.canon.Canonicalize(a.AircraftType, a.Registration).Canonical
			res.Details.Add = append(res.Details.Add, a)
			continue
		}

		links.Registration = resolveRename(&res, ix, claims, rename{
			row: rec.Row, kind: "aircraft", path: path, id: existing.ID,
			current: existing.Registration, incoming: rec.Registration, keyOf: AircraftKey,
		})
		merged := MergeAircraft(*existing, rec, links)
		externalIDChanges(&res, rec.Row, existing.Registration, existing.GUID, merged.GUID, existing.SPID, merged.SPID)
		merged.CanonicalType = v.canon.Canonicalize(merged.AircraftType, merged.Registration).Canonical
		current := *existing
		current.Operator = nil
		if aircraftEqual(current, merged) {
			res.Summary.Unchanged++
			continue
		}
		applyPolicy(&res, Update[gormModels.Aircraft]{Row: rec.Row, Existing: current, New: merged},
			existing.Registration, existing.Source, rec.Source, mode)
	}

	res.Summary.InvalidOperators = &invalidOperators
	res.finish()
	return res
}

type rename struct {
	row      int
	kind     string
	path     Path
	id       uint
	current  string
	incoming string
	keyOf    func(string) string
}

// resolveRename decides the natural key written for a matched record. Only
// a GUID or spId match can rename; the rename is suppressed when the new key
// belongs to another stored entity (active or not) or to an earlier row. A
// key an earlier row renamed its owner away from counts as free.
func resolveRename[E any](res *ValidationResult[E], ix *Index[E], claims *batchClaims, rn rename) string {
	if rn.path == PathNaturalKey || rn.keyOf(rn.current) == rn.keyOf(rn.incoming) {
		return rn.current
	}
	newKey := rn.keyOf(rn.incoming)
	owner, taken := ix.OwnerOf(newKey)
	if taken && claims.vacated(newKey, PathNaturalKey, owner) {
		taken = false
	}
	_, claimed := claims.keys[newKey]
	if (taken && owner != rn.id) || claimed {
		res.warnf(constants.MsgRenameSuppressed, rn.row, rn.current, rn.incoming)
		return rn.current
	}
	claims.keys[newKey] = rn.row
	claims.released[rn.keyOf(rn.current)] = rn.id
	res.warnf(constants.MsgRenamed, rn.row, rn.kind, rn.current, rn.incoming)
	return rn.incoming
}

// externalIDChanges warns when a match overwrites a stored GUID or spId with
// a different value.
func externalIDChanges[E any](res *ValidationResult[E], row int, label string, oldGUID, newGUID *string, oldSPID, newSPID *int) {
	if oldGUID != nil && newGUID != nil && guidKey(oldGUID) != guidKey(newGUID) {
		res.warnf(constants.MsgExternalIDChanged, row, "guid", label, *oldGUID, *newGUID)
	}
	if oldSPID != nil && newSPID != nil && *oldSPID != *newSPID {
		res.warnf(constants.MsgExternalIDChanged, row, "spId", label, strconv.Itoa(*oldSPID), strconv.Itoa(*newSPID))
	}
}

func applyPolicy[E any](res *ValidationResult[E], upd Update[E], label string, existing, incoming constants.TrustSource, mode constants.ConflictMode) {
	d := ResolveConflict(existing, incoming, mode)
	upd.Conflict = d.Conflict
	if d.Conflict {
		res.Summary.Conflicts++
	}
	switch {
	case d.Blocking:
		res.errorf(constants.MsgConflictRejected, upd.Row, label, incoming)
		res.Details.Conflicts = append(res.Details.Conflicts, upd)
	case d.Warn:
		res.warnf(constants.MsgConflictDowngrade, upd.Row, label, incoming)
		res.Details.Update = append(res.Details.Update, upd)
	default:
		res.Details.Update = append(res.Details.Update, upd)
	}
}

func (r *ValidationResult[E]) warnf(format string, args ...interface{}) {
	r.Details.Warnings = append(r.Details.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationResult[E]) errorf(format string, args ...interface{}) {
	r.Details.Errors = append(r.Details.Errors, fmt.Sprintf(format, args...))
}

type aircraftLookups struct {
	models      map[string]uint
	engineTypes map[string]uint
	candidates  []matching.Candidate
}

func newLookups(snap AircraftSnapshot) aircraftLookups {
	l := aircraftLookups{
		models:      make(map[string]uint, len(snap.Models)),
		engineTypes: make(map[string]uint, len(snap.EngineTypes)),
	}
	for _, m := range snap.Models {
		l.models[nameKey(m.Name)] = m.ID
	}
	for _, e := range snap.EngineTypes {
		l.engineTypes[nameKey(e.Name)] = e.ID
	}

	active := make([]gormModels.Customer, 0, len(snap.Customers))
	for _, c := range snap.Customers {
		if c.IsActive {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	l.candidates = make([]matching.Candidate, 0, len(active))
	for _, c := range active {
		l.candidates = append(l.candidates, matching.Candidate{ID: c.ID, Name: c.Name, ShortName: c.ShortName})
	}
	return l
}

func (l aircraftLookups) model(res *AircraftResult, rec parsers.AircraftRecord) *uint {
	if strings.TrimSpace(rec.Model) == "" {
		return nil
	}
	id, ok := l.models[nameKey(rec.Model)]
	if !ok {
		res.warnf(constants.MsgModelNotFound, rec.Row, rec.Model)
		return nil
	}
	return &id
}

func (l aircraftLookups) engineType(res *AircraftResult, rec parsers.AircraftRecord) *uint {
	if strings.TrimSpace(rec.EngineType) == "" {
		return nil
	}
	id, ok := l.engineTypes[nameKey(rec.EngineType)]
	if !ok {
		res.warnf(constants.MsgEngineTypeNotFound, rec.Row, rec.EngineType)
		return nil
	}
	return &id
}
