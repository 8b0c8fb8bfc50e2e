package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/internal/cli/output"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
)

var (
	saveFile  string
	saveDraft bool
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Insert or replace a record from a JSON file",
	Long: `Insert or replace a record read from a JSON file.

The file holds a single record in the same shape "record get -o json"
prints under "record". Published records go to the published store,
records saved with --draft go to the draft store.

Examples:
  # Save a published record
  mdcatalog record save -f record.json

  # Save a draft read from stdin
  cat record.json | mdcatalog record save -f - --draft`,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "", "JSON file holding the record (- for stdin)")
	saveCmd.Flags().BoolVar(&saveDraft, "draft", false, "Save the record as a draft")
	_ = saveCmd.MarkFlagRequired("file")
}

func runSave(cmd *cobra.Command, args []string) error {
	entry, err := readEntry(cmd.InOrStdin(), saveFile)
	if err != nil {
		return err
	}

	var record models.Record = &models.Metadata{Entry: entry}
	if saveDraft {
		record = &models.MetadataDraft{Entry: entry}
	}

	ctx, cat, err := cmdutil.OpenCatalog(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	saved, err := cat.Manager.Save(ctx, record)
	if err != nil {
		return err
	}

	return cmdutil.PrintResult(cmd, output.NewRecordView(saved),
		fmt.Sprintf("Record %d saved to %s", saved.GetID(), saved.RecordKind()))
}

func readEntry(stdin io.Reader, path string) (models.Entry, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return models.Entry{}, fmt.Errorf("failed to open record file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var entry models.Entry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entry); err != nil {
		return models.Entry{}, fmt.Errorf("failed to parse record: %w", err)
	}
	return entry, nil
}
