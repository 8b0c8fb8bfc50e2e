package query

import (
	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
)

// Updater mutates a loaded record before it is persisted again.
//
// Kind names the store the updater is meant for. Apply returns a
// TypeMismatch error when handed a record of another kind.
type Updater interface {
	Kind() models.Kind
	Apply(record models.Record) error
}

type metadataUpdater struct {
	fn func(*models.Metadata)
}

// UpdateMetadata returns an updater for published records.
func UpdateMetadata(fn func(*models.Metadata)) Updater {
	return &metadataUpdater{fn: fn}
}

func (u *metadataUpdater) Kind() models.Kind { return models.KindMetadata }

func (u *metadataUpdater) Apply(record models.Record) error {
	md, ok := record.(*models.Metadata)
	if !ok {
		return catalogerrors.NewTypeMismatchError(record.RecordKind().String(), u)
	}
	u.fn(md)
	return nil
}

type draftUpdater struct {
	fn func(*models.MetadataDraft)
}

// UpdateDraft returns an updater for draft records.
func UpdateDraft(fn func(*models.MetadataDraft)) Updater {
	return &draftUpdater{fn: fn}
}

func (u *draftUpdater) Kind() models.Kind { return models.KindDraft }

func (u *draftUpdater) Apply(record models.Record) error {
	draft, ok := record.(*models.MetadataDraft)
	if !ok {
		return catalogerrors.NewTypeMismatchError(record.RecordKind().String(), u)
	}
	u.fn(draft)
	return nil
}

type ownerUpdater struct {
	kind       models.Kind
	owner      int
	groupOwner *int
}

// SetOwner returns an updater that replaces the owner and group owner of a
// record of the given kind. A nil groupOwner clears the group.
func SetOwner(kind models.Kind, owner int, groupOwner *int) Updater {
	return &ownerUpdater{kind: kind, owner: owner, groupOwner: groupOwner}
}

func (u *ownerUpdater) Kind() models.Kind { return u.kind }

func (u *ownerUpdater) Apply(record models.Record) error {
	if record.RecordKind() != u.kind {
		return catalogerrors.NewTypeMismatchError(record.RecordKind().String(), u)
	}
	entry := record.GetEntry()
	entry.SourceInfo.Owner = u.owner
	if u.groupOwner != nil {
		group := *u.groupOwner
		entry.SourceInfo.GroupOwner = &group
	} else {
		entry.SourceInfo.GroupOwner = nil
	}
	return nil
}
