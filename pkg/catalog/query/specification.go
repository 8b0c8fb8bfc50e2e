// Package query provides the store-agnostic building blocks used to select
// and modify catalog records: specifications, updaters and column paths.
//
// Every value carries the models.Kind it targets. Stores compare that kind
// against their own and answer TypeMismatch when they differ, which is what
// the dual-store manager routes on.
package query

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/marmos91/mdcatalog/pkg/catalog/models"
)

// Specification selects a subset of the records held by one store.
//
// Scope narrows a GORM query for SQL-backed stores. Matches evaluates the
// same predicate in memory for key-value stores. Both must agree.
type Specification interface {
	Kind() models.Kind
	Scope(db *gorm.DB) *gorm.DB
	Matches(record models.Record) bool
	String() string
}

type predicate struct {
	clause string
	args   []any
	match  func(*models.Entry) bool
	desc   string
}

// Spec is the Specification built by Metadata and Drafts.
//
// Spec values are immutable: every predicate method returns a copy, so a
// base spec can be shared and extended freely.
type Spec struct {
	kind  models.Kind
	preds []predicate
}

var _ Specification = Spec{}

// Metadata starts a specification over published records. With no
// predicates it matches every record.
func Metadata() Spec {
	return Spec{kind: models.KindMetadata}
}

// Drafts starts a specification over draft records. With no predicates it
// matches every record.
func Drafts() Spec {
	return Spec{kind: models.KindDraft}
}

// Kind implements Specification.
func (s Spec) Kind() models.Kind {
	return s.kind
}

// Scope implements Specification.
func (s Spec) Scope(db *gorm.DB) *gorm.DB {
	for _, p := range s.preds {
		db = db.Where(p.clause, p.args...)
	}
	return db
}

// Matches implements Specification.
func (s Spec) Matches(record models.Record) bool {
	if record == nil || record.RecordKind() != s.kind {
		return false
	}
	entry := record.GetEntry()
	for _, p := range s.preds {
		if !p.match(entry) {
			return false
		}
	}
	return true
}

// String implements Specification.
func (s Spec) String() string {
	if len(s.preds) == 0 {
		return s.kind.String() + "(*)"
	}
	parts := make([]string, len(s.preds))
	for i, p := range s.preds {
		parts[i] = p.desc
	}
	return fmt.Sprintf("%s(%s)", s.kind, strings.Join(parts, " AND "))
}

func (s Spec) with(p predicate) Spec {
	preds := make([]predicate, len(s.preds), len(s.preds)+1)
	copy(preds, s.preds)
	return Spec{kind: s.kind, preds: append(preds, p)}
}

// HasOwner matches records owned by the given user.
func (s Spec) HasOwner(owner int) Spec {
	return s.with(predicate{
		clause: "owner = ?",
		args:   []any{owner},
		match:  func(e *models.Entry) bool { return e.SourceInfo.Owner == owner },
		desc:   fmt.Sprintf("owner=%d", owner),
	})
}

// HasGroupOwner matches records whose group owner is the given group.
func (s Spec) HasGroupOwner(group int) Spec {
	return s.with(predicate{
		clause: "group_owner = ?",
		args:   []any{group},
		match: func(e *models.Entry) bool {
			return e.SourceInfo.GroupOwner != nil && *e.SourceInfo.GroupOwner == group
		},
		desc: fmt.Sprintf("group_owner=%d", group),
	})
}

// HasSource matches records originating from the given source (catalog node).
func (s Spec) HasSource(sourceID string) Spec {
	return s.with(predicate{
		clause: "source_id = ?",
		args:   []any{sourceID},
		match:  func(e *models.Entry) bool { return e.SourceInfo.SourceID == sourceID },
		desc:   fmt.Sprintf("source_id=%q", sourceID),
	})
}

// HasUUID matches the record with the given uuid.
func (s Spec) HasUUID(uuid string) Spec {
	return s.with(predicate{
		clause: "uuid = ?",
		args:   []any{uuid},
		match:  func(e *models.Entry) bool { return e.UUID == uuid },
		desc:   fmt.Sprintf("uuid=%q", uuid),
	})
}

// HasIDs matches records whose id is in ids. An empty list matches nothing.
func (s Spec) HasIDs(ids ...int) Spec {
	set := slices.Clone(ids)
	if len(set) == 0 {
		return s.with(predicate{
			clause: "1 = 0",
			match:  func(*models.Entry) bool { return false },
			desc:   "id IN ()",
		})
	}
	return s.with(predicate{
		clause: "id IN ?",
		args:   []any{set},
		match:  func(e *models.Entry) bool { return slices.Contains(set, e.ID) },
		desc:   fmt.Sprintf("id IN %v", set),
	})
}

// IsHarvested matches records by their harvested flag.
func (s Spec) IsHarvested(harvested bool) Spec {
	return s.with(predicate{
		clause: "is_harvested = ?",
		args:   []any{harvested},
		match:  func(e *models.Entry) bool { return e.HarvestInfo.Harvested == harvested },
		desc:   fmt.Sprintf("harvested=%t", harvested),
	})
}

// HasHarvestUUID matches records pulled in by the given harvester.
func (s Spec) HasHarvestUUID(harvesterUUID string) Spec {
	return s.with(predicate{
		clause: "harvest_uuid = ?",
		args:   []any{harvesterUUID},
		match:  func(e *models.Entry) bool { return e.HarvestInfo.UUID == harvesterUUID },
		desc:   fmt.Sprintf("harvest_uuid=%q", harvesterUUID),
	})
}

// HasSchema matches records written in the given schema.
func (s Spec) HasSchema(schemaID string) Spec {
	return s.with(predicate{
		clause: "schema_id = ?",
		args:   []any{schemaID},
		match:  func(e *models.Entry) bool { return e.DataInfo.SchemaID == schemaID },
		desc:   fmt.Sprintf("schema_id=%q", schemaID),
	})
}

// IsType matches records of the given data type (models.TypeMetadata, ...).
func (s Spec) IsType(dataType string) Spec {
	return s.with(predicate{
		clause: "data_type = ?",
		args:   []any{dataType},
		match:  func(e *models.Entry) bool { return e.DataInfo.Type == dataType },
		desc:   fmt.Sprintf("type=%q", dataType),
	})
}
