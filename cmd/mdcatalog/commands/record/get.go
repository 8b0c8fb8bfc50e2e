package record

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/internal/cli/output"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a record",
	Long: `Show the record with the given id, whichever store holds it.

Examples:
  # Show record 42
  mdcatalog record get 42

  # Show as JSON
  mdcatalog record get 42 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := cmdutil.ParseID(args[0])
	if err != nil {
		return err
	}

	ctx, cat, err := cmdutil.OpenCatalog(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	rec, err := cat.Manager.Get(ctx, id)
	if err != nil {
		return err
	}

	p, err := cmdutil.Printer(cmd)
	if err != nil {
		return err
	}
	return p.Print(output.NewRecordView(rec))
}
