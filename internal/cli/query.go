package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/specq/internal/compiler"
	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DB     string // SQLite database path
	Entity string // entity the filter is bound to
	Filter string // filter file, "-" for stdin
	Init   bool   // create the model's tables when missing
}

// QueryResult holds the rows a specification selected.
type QueryResult struct {
	Entity string        `json:"entity"`
	SQL    string        `json:"sql"`
	Count  int           `json:"count"`
	Rows   []ir.IRObject `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <model-dir>",
		Short: "Run a filter against a SQLite database",
		Long: `Compile a YAML filter against one entity of a CUE model and run it
against a SQLite database. Rows are returned ordered by key, with every
fetched association attached under its name.

The database path may also come from SPECQ_DB or the db key of specq.yaml.

Exit codes:
  0 - Query ran
  2 - Command error (bad model, bad filter, database error)

Examples:
  specq query ./model --db shop.db --entity Order --filter paid.yaml
  SPECQ_DB=shop.db specq query ./model --entity Order --filter paid.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity the filter applies to (required)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter file, - for stdin (required)")
	cmd.Flags().BoolVar(&opts.Init, "init", false, "create the model's tables if the database is new")

	return cmd
}

func runQuery(opts *QueryOptions, modelDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger().With("trace_id", formatter.TraceID, "command", "query")

	dbPath := opts.setting("db", opts.DB)
	entity := opts.setting("entity", opts.Entity)
	filter := opts.setting("filter", opts.Filter)
	if dbPath == "" || entity == "" || filter == "" {
		return outputCompileError(formatter, ErrCodeGeneric, "--db, --entity and --filter are required", nil)
	}
	if !opts.Init {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return outputCompileError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
		}
	}

	steps, err := LoadFilter(filter, cmd.InOrStdin())
	if err != nil {
		return outputCompileErrors(formatter, []error{err})
	}
	spec, errs := BuildSpecification(modelDir, entity, steps, logger)
	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return outputCompileError(formatter, ErrCodeQueryFailed, err.Error(), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Init {
		if err := st.Migrate(ctx, strings.Join(compiler.DDL(spec.Model), ";\n")); err != nil {
			return outputCompileError(formatter, ErrCodeQueryFailed, err.Error(), nil)
		}
		formatter.VerboseLog("Schema initialized in %s", dbPath)
	}

	result, err := compileSpecification(spec, false)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	for _, warning := range result.Warnings {
		logger.Warn("lint", "warning", warning)
	}

	rows, err := store.Find(ctx, st, spec.Binding.Entity, spec.Predicate)
	if err != nil {
		return outputCompileError(formatter, ErrCodeQueryFailed, err.Error(), nil)
	}
	logger.Debug("query ran", "sql", result.SQL, "rows", len(rows))

	return outputQueryResult(formatter, QueryResult{
		Entity: result.Entity,
		SQL:    result.SQL,
		Count:  len(rows),
		Rows:   rows,
	})
}

// outputQueryResult prints the selected rows: one canonical JSON line per
// row in text format.
func outputQueryResult(formatter *OutputFormatter, result QueryResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.VerboseLog("SQL: %s", result.SQL)
	for _, row := range result.Rows {
		line, err := ir.MarshalCanonical(row)
		if err != nil {
			return fmt.Errorf("encoding row: %w", err)
		}
		fmt.Fprintln(formatter.Writer, string(line))
	}
	fmt.Fprintf(formatter.Writer, "(%d %s row%s)\n", result.Count, result.Entity, plural(result.Count, "", "s"))
	return nil
}
