package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record",
	Long: `Delete the record with the given id.

The published record is deleted first, then any draft holding the same
id. Deleting an id that only exists as a draft succeeds.

Examples:
  # Delete with confirmation
  mdcatalog record delete 42

  # Delete without confirmation
  mdcatalog record delete 42 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := cmdutil.ParseID(args[0])
	if err != nil {
		return err
	}

	label := fmt.Sprintf("Delete record %d", id)
	return cmdutil.RunWithConfirmation(cmd.OutOrStdout(), label, deleteForce, func() error {
		ctx, cat, err := cmdutil.OpenCatalog(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = cat.Close() }()

		if err := cat.Manager.Delete(ctx, id); err != nil {
			return err
		}
		return cmdutil.PrintResult(cmd, map[string]int{"deleted": id}, fmt.Sprintf("Record %d deleted", id))
	})
}
