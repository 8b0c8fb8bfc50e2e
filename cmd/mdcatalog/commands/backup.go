package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/pkg/catalog/backup"
)

var backupOutput string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the catalog to a snapshot",
	Long: `Export every published and draft record to a JSON snapshot.

The destination is a local file or an s3://bucket/key URL. S3 access is
configured under backup.s3. Locations ending in .gz are gzip-compressed.

Examples:
  # Backup to a local file
  mdcatalog backup --to /var/backups/catalog.json

  # Backup to S3, compressed
  mdcatalog backup --to s3://catalog-backups/daily/catalog.json.gz`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupOutput, "to", "", "Destination file or s3://bucket/key (required)")
	_ = backupCmd.MarkFlagRequired("to")
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx, cat, err := cmdutil.OpenCatalog(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	target, err := backup.Open(ctx, backupOutput, cat.Config.Backup.S3)
	if err != nil {
		return err
	}

	snap, err := backup.Export(ctx, cat.Manager.Published(), cat.Manager.Drafts())
	if err != nil {
		return err
	}
	if err := backup.Write(ctx, target, snap); err != nil {
		return err
	}

	result := backup.Result{Metadata: len(snap.Metadata), Drafts: len(snap.Drafts)}
	return cmdutil.PrintResult(cmd, result,
		fmt.Sprintf("Backed up %d published records and %d drafts to %s", result.Metadata, result.Drafts, target))
}
