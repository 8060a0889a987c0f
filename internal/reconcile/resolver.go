package reconcile

import (
	"regexp"
	"strings"

	gormModels "skyline/opsboard/internal/models/gorm"
	"skyline/opsboard/internal/parsers"
)

// Path names the identity key that matched a record to a stored entity.
type Path string

const (
	PathNone       Path = ""
	PathGUID       Path = "guid"
	PathSPID       Path = "spId"
	PathNaturalKey Path = "naturalKey"
)

// Identity is the set of keys the resolver cascades through. ID is the
// store id and is zero for records not yet persisted.
type Identity struct {
	ID   uint
	GUID *string
	SPID *int
	Key  string
}

var reSpaces = regexp.MustCompile(`\s+`)

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(reSpaces.ReplaceAllString(s, " ")))
}

// CustomerKey is the natural key of a customer: name, case-folded with
// whitespace collapsed.
func CustomerKey(name string) string {
	return nameKey(name)
}

// AircraftKey is the natural key of an aircraft: the upper-cased registration.
func AircraftKey(registration string) string {
	return strings.ToUpper(strings.TrimSpace(reSpaces.ReplaceAllString(registration, "")))
}

func guidKey(g *string) string {
	if g == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*g))
}

// Index is a read-only lookup over a store snapshot. Inactive rows are
// indexed too: they still own their natural key.
type Index[E any] struct {
	entities []E
	ids      []uint
	byGUID   map[string]int
	bySPID   map[int]int
	byKey    map[string]int
}

func NewIndex[E any](entities []E, identify func(E) Identity) *Index[E] {
	ix := &Index[E]{
		entities: entities,
		ids:      make([]uint, len(entities)),
		byGUID:   make(map[string]int, len(entities)),
		bySPID:   make(map[int]int, len(entities)),
		byKey:    make(map[string]int, len(entities)),
	}
	for i, e := range entities {
		id := identify(e)
		ix.ids[i] = id.ID
		if g := guidKey(id.GUID); g != "" {
			if _, dup := ix.byGUID[g]; !dup {
				ix.byGUID[g] = i
			}
		}
		if id.SPID != nil {
			if _, dup := ix.bySPID[*id.SPID]; !dup {
				ix.bySPID[*id.SPID] = i
			}
		}
		if id.Key != "" {
			if _, dup := ix.byKey[id.Key]; !dup {
				ix.byKey[id.Key] = i
			}
		}
	}
	return ix
}

// Find cascades GUID, then spId, then natural key. At most one entity is
// returned.
func (ix *Index[E]) Find(id Identity) (*E, Path) {
	if g := guidKey(id.GUID); g != "" {
		if i, ok := ix.byGUID[g]; ok {
			return ix.at(i), PathGUID
		}
	}
	if id.SPID != nil {
		if i, ok := ix.bySPID[*id.SPID]; ok {
			return ix.at(i), PathSPID
		}
	}
	if id.Key != "" {
		if i, ok := ix.byKey[id.Key]; ok {
			return ix.at(i), PathNaturalKey
		}
	}
	return nil, PathNone
}

// ByKey returns the entity owning a natural key.
func (ix *Index[E]) ByKey(key string) (*E, bool) {
	i, ok := ix.byKey[key]
	if !ok {
		return nil, false
	}
	return ix.at(i), true
}

// OwnerOf returns the store id of the entity owning a natural key.
func (ix *Index[E]) OwnerOf(key string) (uint, bool) {
	i, ok := ix.byKey[key]
	if !ok {
		return 0, false
	}
	return ix.ids[i], true
}

func (ix *Index[E]) at(i int) *E {
	e := ix.entities[i]
	return &e
}

func customerIdentity(c gormModels.Customer) Identity {
	return Identity{ID: c.ID, GUID: c.GUID, SPID: c.SPID, Key: CustomerKey(c.Name)}
}

func aircraftIdentity(a gormModels.Aircraft) Identity {
	return Identity{ID: a.ID, GUID: a.GUID, SPID: a.SPID, Key: AircraftKey(a.Registration)}
}

func NewCustomerIndex(customers []gormModels.Customer) *Index[gormModels.Customer] {
	return NewIndex(customers, customerIdentity)
}

func NewAircraftIndex(aircraft []gormModels.Aircraft) *Index[gormModels.Aircraft] {
	return NewIndex(aircraft, aircraftIdentity)
}

// FindExistingCustomer resolves a parsed customer against the snapshot.
func FindExistingCustomer(rec parsers.CustomerRecord, ix *Index[gormModels.Customer]) (*gormModels.Customer, Path) {
	return ix.Find(Identity{GUID: rec.GUID, SPID: rec.SPID, Key: CustomerKey(rec.Name)})
}

// FindExistingAircraft resolves a parsed aircraft against the snapshot.
func FindExistingAircraft(rec parsers.AircraftRecord, ix *Index[gormModels.Aircraft]) (*gormModels.Aircraft, Path) {
	return ix.Find(Identity{GUID: rec.GUID, SPID: rec.SPID, Key: AircraftKey(rec.Registration)})
}
