package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/pkg/catalog/backup"
)

var (
	restoreInput string
	restoreForce bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the catalog from a snapshot",
	Long: `Save every record of a snapshot written by "mdcatalog backup".

Records with an id already present are replaced. Drafts whose id is also
published in the snapshot are skipped.

Examples:
  # Restore from a local file
  mdcatalog restore --from /var/backups/catalog.json

  # Restore from S3 without confirmation
  mdcatalog restore --from s3://catalog-backups/daily/catalog.json.gz --force`,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVar(&restoreInput, "from", "", "Source file or s3://bucket/key (required)")
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "Skip confirmation prompt")
	_ = restoreCmd.MarkFlagRequired("from")
}

func runRestore(cmd *cobra.Command, args []string) error {
	label := fmt.Sprintf("Restore catalog records from %s", restoreInput)
	return cmdutil.RunWithConfirmation(cmd.OutOrStdout(), label, restoreForce, func() error {
		ctx, cat, err := cmdutil.OpenCatalog(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = cat.Close() }()

		target, err := backup.Open(ctx, restoreInput, cat.Config.Backup.S3)
		if err != nil {
			return err
		}

		snap, err := backup.Read(ctx, target)
		if err != nil {
			return err
		}

		result, err := backup.Restore(ctx, cat.Manager, snap)
		if err != nil {
			return err
		}

		return cmdutil.PrintResult(cmd, result,
			fmt.Sprintf("Restored %d published records and %d drafts (%d skipped)", result.Metadata, result.Drafts, result.Skipped))
	})
}
