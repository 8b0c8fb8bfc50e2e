package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/internal/cli/prompt"
)

var (
	purgeHarvestUUID string
	purgeStore       string
	purgeForce       bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every record of a harvester",
	Long: `Delete every record harvested by the given harvester uuid.

Without --force the harvester uuid must be typed back to confirm.

Examples:
  # Purge a harvester from both stores
  mdcatalog record purge --harvest-uuid h-1

  # Purge drafts only, without confirmation
  mdcatalog record purge --harvest-uuid h-1 --store draft --force`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeHarvestUUID, "harvest-uuid", "", "Harvester uuid (required)")
	purgeCmd.Flags().StringVar(&purgeStore, "store", "all", "Store to purge (all|metadata|draft)")
	purgeCmd.Flags().BoolVarP(&purgeForce, "force", "f", false, "Skip confirmation prompt")
	_ = purgeCmd.MarkFlagRequired("harvest-uuid")
}

func runPurge(cmd *cobra.Command, args []string) error {
	kinds, err := cmdutil.ParseKinds(purgeStore)
	if err != nil {
		return err
	}

	if !purgeForce {
		label := fmt.Sprintf("Delete every %s record of harvester %s", purgeStore, purgeHarvestUUID)
		confirmed, err := prompt.ConfirmDanger(label, purgeHarvestUUID)
		if err != nil {
			if prompt.IsAborted(err) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nAborted.")
				return nil
			}
			return err
		}
		if !confirmed {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	ctx, cat, err := cmdutil.OpenCatalog(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	var (
		counts []storeCount
		total  int64
	)
	for _, kind := range kinds {
		n, err := cat.Manager.DeleteAll(ctx, specFor(kind).HasHarvestUUID(purgeHarvestUUID))
		if err != nil {
			return fmt.Errorf("purge of %s failed: %w", kind, err)
		}
		counts = append(counts, storeCount{Store: kind.String(), Count: n})
		total += n
	}

	return cmdutil.PrintResult(cmd, counts,
		fmt.Sprintf("Deleted %d records of harvester %s", total, purgeHarvestUUID))
}
