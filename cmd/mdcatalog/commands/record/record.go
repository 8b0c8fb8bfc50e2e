// Package record implements the record subcommands.
package record

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
)

// Cmd is the parent command for record operations.
var Cmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"records"},
	Short:   "Read and modify catalog records",
	Long: `Read and modify catalog records.

Every subcommand goes through the draft-aware manager: lookups try the
published store first and fall back to drafts, writes go to whichever
store holds the record.

Subcommands:
  get               Show a record
  save              Insert or replace a record from a JSON file
  set-owner         Change the owner of a record
  delete            Delete a record
  source-info       List ownership and origin of matching records
  rename-harvester  Move records from one harvester uuid to another
  purge             Delete every record of a harvester`,
}

func init() {
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(saveCmd)
	Cmd.AddCommand(setOwnerCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(sourceInfoCmd)
	Cmd.AddCommand(renameHarvesterCmd)
	Cmd.AddCommand(purgeCmd)
}

// specFor returns the base specification of kind.
func specFor(kind models.Kind) query.Spec {
	if kind == models.KindDraft {
		return query.Drafts()
	}
	return query.Metadata()
}

// pathFor returns the path to field on records of kind.
func pathFor(kind models.Kind, field query.Field) query.PathSpec {
	if kind == models.KindDraft {
		return query.DraftPath(field)
	}
	return query.MetadataPath(field)
}
