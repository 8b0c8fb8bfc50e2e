package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/internal/cli/output"
)

var reconcileForce bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove drafts that shadow published records",
	Long: `Remove every draft whose id is also held by the published store.

Operations spanning both stores are not atomic. A crash between the two
halves of such an operation can leave the same id in both stores; this
command restores the one-store-per-id rule by dropping the draft copy.

Examples:
  # Reconcile with confirmation
  mdcatalog reconcile

  # Reconcile without confirmation and list the removed ids as JSON
  mdcatalog reconcile --force -o json`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVarP(&reconcileForce, "force", "f", false, "Skip confirmation prompt")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	return cmdutil.RunWithConfirmation(cmd.OutOrStdout(), "Remove drafts shadowing published records", reconcileForce, func() error {
		ctx, cat, err := cmdutil.OpenCatalog(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = cat.Close() }()

		removed, err := cat.Manager.Reconcile(ctx)
		if err != nil {
			return fmt.Errorf("reconcile failed after removing %d drafts: %w", len(removed), err)
		}

		p, err := cmdutil.Printer(cmd)
		if err != nil {
			return err
		}
		if len(removed) == 0 && p.Format() == output.FormatTable {
			p.Success("Stores are consistent, no drafts removed")
			return nil
		}
		return p.Print(output.IDList(removed))
	})
}
