// Package cmdutil provides shared utilities for mdcatalog commands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/internal/bootstrap"
	"github.com/marmos91/mdcatalog/internal/cli/output"
	"github.com/marmos91/mdcatalog/internal/cli/prompt"
	"github.com/marmos91/mdcatalog/internal/logger"
	"github.com/marmos91/mdcatalog/pkg/catalog/models"
	"github.com/marmos91/mdcatalog/pkg/config"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	NoColor    bool
}

// LoadConfig loads the configuration named by --config. Without --config a
// missing default file yields the built-in defaults.
func LoadConfig() (*config.Config, error) {
	if Flags.ConfigFile != "" {
		return config.MustLoad(Flags.ConfigFile)
	}
	return config.Load("")
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// OpenCatalog loads configuration, initializes logging and opens the
// catalog. It returns a context carrying a fresh log context for the
// invocation. The caller must Close the catalog.
func OpenCatalog(cmd *cobra.Command) (context.Context, *bootstrap.Catalog, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, nil, err
	}

	ctx := logger.EnsureContext(cmd.Context())
	cat, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return ctx, cat, nil
}

// Printer returns a printer for the --output and --no-color flags that
// writes to the command's stdout.
func Printer(cmd *cobra.Command) (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format, !Flags.NoColor), nil
}

// PrintResult prints data in JSON/YAML, or msg as a success line in table
// mode.
func PrintResult(cmd *cobra.Command, data any, msg string) error {
	p, err := Printer(cmd)
	if err != nil {
		return err
	}
	if p.Format() == output.FormatTable {
		p.Success(msg)
		return nil
	}
	return p.Print(data)
}

// ParseID parses a positional record id.
func ParseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid record id %q: must be a positive integer", arg)
	}
	return id, nil
}

// ParseKinds maps the --store flag to the record kinds it selects.
func ParseKinds(store string) ([]models.Kind, error) {
	switch store {
	case "all", "":
		return []models.Kind{models.KindMetadata, models.KindDraft}, nil
	case "metadata", "published":
		return []models.Kind{models.KindMetadata}, nil
	case "draft", "drafts", "metadata_draft":
		return []models.Kind{models.KindDraft}, nil
	default:
		return nil, fmt.Errorf("invalid store %q (valid: all, metadata, draft)", store)
	}
}

// RunWithConfirmation prompts (unless force is set) and then runs fn.
// Aborting is not an error.
func RunWithConfirmation(w io.Writer, label string, force bool, fn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(label, force)
	if err != nil {
		if prompt.IsAborted(err) {
			_, _ = fmt.Fprintln(w, "\nAborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		_, _ = fmt.Fprintln(w, "Aborted.")
		return nil
	}
	return fn()
}
