package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/pkg/catalog/query"
)

var (
	renameFrom  string
	renameTo    string
	renameStore string
)

var renameHarvesterCmd = &cobra.Command{
	Use:   "rename-harvester",
	Short: "Move records from one harvester uuid to another",
	Long: `Set the harvest uuid of every record harvested by --from to --to.

Each selected store is updated with a single batch update.

Examples:
  # Rename in both stores
  mdcatalog record rename-harvester --from h-old --to h-new

  # Rename published records only
  mdcatalog record rename-harvester --from h-old --to h-new --store metadata`,
	RunE: runRenameHarvester,
}

func init() {
	renameHarvesterCmd.Flags().StringVar(&renameFrom, "from", "", "Current harvester uuid (required)")
	renameHarvesterCmd.Flags().StringVar(&renameTo, "to", "", "New harvester uuid (required)")
	renameHarvesterCmd.Flags().StringVar(&renameStore, "store", "all", "Store to update (all|metadata|draft)")
	_ = renameHarvesterCmd.MarkFlagRequired("from")
	_ = renameHarvesterCmd.MarkFlagRequired("to")
}

type storeCount struct {
	Store string `json:"store" yaml:"store"`
	Count int64  `json:"count" yaml:"count"`
}

func runRenameHarvester(cmd *cobra.Command, args []string) error {
	kinds, err := cmdutil.ParseKinds(renameStore)
	if err != nil {
		return err
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
		n, err := cat.Manager.BatchUpdate(ctx,
			pathFor(kind, query.FieldHarvestUUID), renameTo,
			specFor(kind).HasHarvestUUID(renameFrom))
		if err != nil {
			return fmt.Errorf("rename in %s failed: %w", kind, err)
		}
		counts = append(counts, storeCount{Store: kind.String(), Count: n})
		total += n
	}

	return cmdutil.PrintResult(cmd, counts,
		fmt.Sprintf("Moved %d records from harvester %s to %s", total, renameFrom, renameTo))
}
