package query

import (
	"fmt"
	"strings"

	"github.com/marmos91/mdcatalog/pkg/catalog/models"
)

// Field is a record attribute that can be rewritten in bulk.
type Field int

const (
	FieldHarvestUUID Field = iota + 1
	FieldHarvestURI
	FieldSourceID
	FieldUUID
	FieldSchemaID
)

var fieldNames = map[Field]string{
	FieldHarvestUUID: "harvest_uuid",
	FieldHarvestURI:  "harvest_uri",
	FieldSourceID:    "source_id",
	FieldUUID:        "uuid",
	FieldSchemaID:    "schema_id",
}

// String returns the column the field is stored in.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField resolves a column name to a Field.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// PathSpec names a single column of one store for a batch update.
//
// Column is used by SQL stores. Set applies the same assignment to an entry
// for key-value stores.
type PathSpec interface {
	Kind() models.Kind
	Column() string
	Set(entry *models.Entry, value string)
}

type path struct {
	kind  models.Kind
	field Field
}

// MetadataPath returns a path to field on published records.
func MetadataPath(field Field) PathSpec {
	return path{kind: models.KindMetadata, field: field}
}

// DraftPath returns a path to field on draft records.
func DraftPath(field Field) PathSpec {
	return path{kind: models.KindDraft, field: field}
}

func (p path) Kind() models.Kind { return p.kind }

func (p path) Column() string { return p.field.String() }

func (p path) Set(entry *models.Entry, value string) {
	switch p.field {
	case FieldHarvestUUID:
		entry.HarvestInfo.UUID = value
	case FieldHarvestURI:
		entry.HarvestInfo.URI = value
	case FieldSourceID:
		entry.SourceInfo.SourceID = value
	case FieldUUID:
		entry.UUID = value
	case FieldSchemaID:
		entry.DataInfo.SchemaID = value
	}
}

func (p path) String() string {
	return fmt.Sprintf("%s.%s", p.kind, p.field)
}
