// Package models defines the catalog record types shared by the published
// and draft stores.
//
// Both record kinds embed Entry and share a single id space: a given id is
// held by at most one store at any time.
package models

import "time"

// Kind identifies which store a record, updater, specification or path
// targets.
type Kind string

const (
	// KindMetadata targets the published store.
	KindMetadata Kind = "metadata"

	// KindDraft targets the draft store.
	KindDraft Kind = "metadata_draft"
)

// String returns the kind name. It doubles as the table name of the store.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindMetadata || k == KindDraft
}

// Record types as stored in DataInfo.Type.
const (
	TypeMetadata    = "METADATA"
	TypeTemplate    = "TEMPLATE"
	TypeSubTemplate = "SUB_TEMPLATE"
)

// SourceInfo holds the ownership and origin attributes of a record.
type SourceInfo struct {
	Owner      int    `gorm:"column:owner;not null;index" json:"owner"`
	GroupOwner *int   `gorm:"column:group_owner" json:"group_owner,omitempty"`
	SourceID   string `gorm:"column:source_id;size:255;index" json:"source_id"`
}

// HarvestInfo describes whether a record was pulled in by a harvester and
// from where.
type HarvestInfo struct {
	Harvested bool   `gorm:"column:is_harvested;not null;default:false" json:"harvested"`
	UUID      string `gorm:"column:harvest_uuid;size:255;index" json:"harvest_uuid,omitempty"`
	URI       string `gorm:"column:harvest_uri;size:512" json:"harvest_uri,omitempty"`
}

// DataInfo holds schema and lifecycle attributes of a record.
type DataInfo struct {
	SchemaID   string    `gorm:"column:schema_id;size:64;not null" json:"schema_id"`
	Type       string    `gorm:"column:data_type;size:32;not null;default:METADATA" json:"type"`
	Root       string    `gorm:"column:root;size:255" json:"root,omitempty"`
	CreateDate time.Time `gorm:"column:create_date" json:"create_date"`
	ChangeDate time.Time `gorm:"column:change_date" json:"change_date"`
}

// Entry is the shape shared by published and draft records.
type Entry struct {
	ID          int         `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UUID        string      `gorm:"column:uuid;size:255;not null;uniqueIndex" json:"uuid"`
	Data        string      `gorm:"column:data;type:text" json:"data"`
	DataInfo    DataInfo    `gorm:"embedded" json:"data_info"`
	SourceInfo  SourceInfo  `gorm:"embedded" json:"source_info"`
	HarvestInfo HarvestInfo `gorm:"embedded" json:"harvest_info"`
}

// Record is implemented by every storable record kind.
type Record interface {
	RecordKind() Kind
	GetID() int
	GetEntry() *Entry
}

// Metadata is a published catalog record.
type Metadata struct {
	Entry
}

// TableName returns the table name for published records.
func (Metadata) TableName() string {
	return string(KindMetadata)
}

// RecordKind implements Record.
func (*Metadata) RecordKind() Kind { return KindMetadata }

// GetID implements Record.
func (m *Metadata) GetID() int { return m.ID }

// GetEntry implements Record.
func (m *Metadata) GetEntry() *Entry { return &m.Entry }

// MetadataDraft is an in-progress edit of a record.
type MetadataDraft struct {
	Entry
}

// TableName returns the table name for draft records.
func (MetadataDraft) TableName() string {
	return string(KindDraft)
}

// RecordKind implements Record.
func (*MetadataDraft) RecordKind() Kind { return KindDraft }

// GetID implements Record.
func (d *MetadataDraft) GetID() int { return d.ID }

// GetEntry implements Record.
func (d *MetadataDraft) GetEntry() *Entry { return &d.Entry }

// AllModels returns all models for auto-migration.
func AllModels() []any {
	return []any{
		&Metadata{},
		&MetadataDraft{},
	}
}

// NewRecord returns an empty record of the given kind, or nil for an
// unknown kind.
func NewRecord(kind Kind) Record {
	switch kind {
	case KindMetadata:
		return &Metadata{}
	case KindDraft:
		return &MetadataDraft{}
	default:
		return nil
	}
}
