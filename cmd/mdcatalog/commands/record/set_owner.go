package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/internal/cli/output"
)

var (
	setOwnerOwner int
	setOwnerGroup int
)

var setOwnerCmd = &cobra.Command{
	Use:   "set-owner <id>",
	Short: "Change the owner of a record",
	Long: `Replace the owner and group owner of a record.

The draft is updated when one exists for the id, otherwise the published
record.

Examples:
  # Give record 42 to user 7 in group 3
  mdcatalog record set-owner 42 --owner 7 --group 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSetOwner,
}

func init() {
	setOwnerCmd.Flags().IntVar(&setOwnerOwner, "owner", 0, "New owner user id (required)")
	setOwnerCmd.Flags().IntVar(&setOwnerGroup, "group", 0, "New group owner id (required)")
	_ = setOwnerCmd.MarkFlagRequired("owner")
	_ = setOwnerCmd.MarkFlagRequired("group")
}

func runSetOwner(cmd *cobra.Command, args []string) error {
	id, err := cmdutil.ParseID(args[0])
	if err != nil {
		return err
	}

	ctx, cat, err := cmdutil.OpenCatalog(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	if err := cat.Manager.UpdateOwner(ctx, id, setOwnerOwner, setOwnerGroup); err != nil {
		return err
	}

	rec, err := cat.Manager.Get(ctx, id)
	if err != nil {
		return err
	}

	return cmdutil.PrintResult(cmd, output.NewRecordView(rec),
		fmt.Sprintf("Record %d (%s) now owned by %d, group %d", id, rec.RecordKind(), setOwnerOwner, setOwnerGroup))
}
