package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/docimport/internal/catalog"
	"github.com/JonMunkholm/docimport/internal/core"
	"github.com/JonMunkholm/docimport/internal/database"
	"github.com/JonMunkholm/docimport/internal/logging"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

// errHasWarnings makes check exit non-zero in strict mode.
var errHasWarnings = errors.New("import has warnings")

var errNoDatabaseURL = errors.New("no database url: set --database-url or DATABASE_URL")

type checkOptions struct {
	catalogPath string
	sheetName   string
	lenient     bool
	jsonOut     bool
	strict      bool
	maxRows     int
	logLevel    string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docimport",
		Short:         "Check discipline and document-type sheets against a catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd(), newSeedCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "docimport", version)
		},
	}
}

func newCheckCmd() *cobra.Command {
	opts := checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Reconcile a spreadsheet against a catalog file",
		Long: `Reconcile an .xlsx or .csv sheet against a YAML or JSON catalog.

The sheet needs discipline_code, document_type_code and document_type_name
columns; drs is optional. Matches and warnings are printed; nothing is stored.`,
		Example: `  docimport check types.xlsx --catalog catalog.yaml
  docimport check export.csv --catalog catalog.json --lenient --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.catalogPath, "catalog", "c", "", "catalog file (YAML or JSON)")
	f.StringVar(&opts.sheetName, "sheet", "", "worksheet name (default: first sheet)")
	f.BoolVar(&opts.lenient, "lenient", false, "fuzzy column header matching")
	f.BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	f.BoolVar(&opts.strict, "strict", false, "exit non-zero when there are warnings")
	f.IntVar(&opts.maxRows, "max-rows", 0, "reject sheets with more data rows (0 = no limit)")
	f.StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "log level: debug, info, warn, error")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func runCheck(ctx context.Context, stdout, stderr io.Writer, path string, opts checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(stderr, opts.logLevel, envOr("LOG_FORMAT", "text"))
	ctx = logging.WithLogger(ctx, logger)

	snap, err := catalog.ReadFile(opts.catalogPath)
	if err != nil {
		return err
	}
	logger.Debug("catalog loaded",
		"disciplines", len(snap.Disciplines),
		"document_types", len(snap.DocumentTypes),
	)

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	svc := core.NewService(catalog.NewStatic(snap), nil, core.Options{
		MaxRows:        opts.maxRows,
		LenientHeaders: opts.lenient,
		RequireColumns: true,
		MaxConcurrent:  1,
	})

	res, err := svc.Preview(ctx, core.ImportRequest{
		FileName:  filepath.Base(path),
		Reader:    file,
		Size:      -1,
		SheetName: opts.sheetName,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if err := printResult(stdout, res); err != nil {
		return err
	}

	if opts.strict && len(res.Warnings) > 0 {
		return errHasWarnings
	}
	return nil
}

func printResult(w io.Writer, res *core.ImportResult) error {
	fmt.Fprintf(w, "File:      %s (%s)\n", res.FileName, res.Format)
	if res.Sheet != "" {
		fmt.Fprintf(w, "Sheet:     %s\n", res.Sheet)
	}
	fmt.Fprintf(w, "Rows:      %d\n", res.RowCount)
	fmt.Fprintf(w, "Processed: %d\n", res.Processed)
	fmt.Fprintf(w, "Matched:   %d\n", res.Matched)

	if len(res.Matches) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DISCIPLINE\tTYPE\tNAME\tDRS")
		for _, m := range res.Matches {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				m.Discipline.Code, m.DocumentType.Code, m.DocumentType.DisplayName(), m.DRS)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warnings:")
		for _, line := range res.Warnings {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}
	return nil
}

type seedOptions struct {
	databaseURL string
	migrate     bool
}

func newSeedCmd() *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed <catalog>",
		Short: "Load a catalog file into the database",
		Long: `Insert the disciplines and document types of a YAML or JSON catalog
into PostgreSQL in a single transaction. Ids in the file are ignored.`,
		Example: `  docimport seed catalog.yaml --migrate`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.databaseURL, "database-url", envOr("DATABASE_URL", os.Getenv("DB_URL")), "PostgreSQL connection string")
	f.BoolVar(&opts.migrate, "migrate", false, "create missing tables first")

	return cmd
}

func runSeed(ctx context.Context, stdout io.Writer, path string, opts seedOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.databaseURL == "" {
		return errNoDatabaseURL
	}

	snap, err := catalog.ReadFile(path)
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, opts.databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if opts.migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	var seeded catalog.Snapshot
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		seeded, err = catalog.Seed(ctx, tx, snap)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Seeded %d disciplines and %d document types\n",
		len(seeded.Disciplines), len(seeded.DocumentTypes))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
