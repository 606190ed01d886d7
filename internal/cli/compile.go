package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/specq/internal/compiler"
	"github.com/roach88/specq/internal/predicate"
	"github.com/roach88/specq/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Entity string // entity the filter is bound to
	Filter string // filter file, "-" for stdin
	DDL    bool   // include the model's CREATE TABLE statements
	Output string // output file path
}

// CompilationResult is a specification compiled for one entity.
type CompilationResult struct {
	Entity      string          `json:"entity"`
	Predicate   string          `json:"predicate"`
	Canonical   json.RawMessage `json:"canonical"`
	Fingerprint string          `json:"fingerprint"`
	SQL         string          `json:"sql"`
	Params      []any           `json:"params"`
	Fetches     []FetchSummary  `json:"fetches"`
	Warnings    []string        `json:"warnings"`
	DDL         []string        `json:"ddl,omitempty"`
}

// FetchSummary describes one eager load of a compiled specification.
type FetchSummary struct {
	Association string `json:"association"`
	Table       string `json:"table"`
	Plural      bool   `json:"plural"`
	KeyColumn   string `json:"key_column"`
	MatchColumn string `json:"match_column"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <model-dir>",
		Short: "Compile a filter to a specification and SQL",
		Long: `Compile a YAML filter against one entity of a CUE model.

Prints the specification, its canonical JSON and fingerprint, the SELECT it
compiles to, the eager loads requested by fetch steps, and lint warnings.

Examples:
  specq compile ./model --entity Order --filter paid.yaml
  specq compile ./model --entity Order --filter - < paid.yaml
  specq compile ./model --entity Order --filter paid.yaml --ddl --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity the filter applies to (required)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter file, - for stdin (required)")
	cmd.Flags().BoolVar(&opts.DDL, "ddl", false, "include CREATE TABLE statements")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, modelDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger().With("trace_id", formatter.TraceID, "command", "compile")

	entity := opts.setting("entity", opts.Entity)
	filter := opts.setting("filter", opts.Filter)
	if entity == "" || filter == "" {
		return outputCompileError(formatter, ErrCodeGeneric, "--entity and --filter are required", nil)
	}

	steps, err := LoadFilter(filter, cmd.InOrStdin())
	if err != nil {
		return outputCompileErrors(formatter, []error{err})
	}

	spec, errs := BuildSpecification(modelDir, entity, steps, logger)
	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", spec.FileCount, modelDir)
	formatter.VerboseLog("Compiled %d filter step(s) for %s", len(steps), spec.Binding.Spec.Name)

	result, err := compileSpecification(spec, opts.DDL)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	logger.Debug("specification compiled", "fingerprint", result.Fingerprint, "sql", result.SQL)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// compileSpecification renders spec in every form the command reports.
func compileSpecification(spec *Specification, ddl bool) (*CompilationResult, error) {
	p := spec.Predicate

	canonical, err := predicate.Canonical(p)
	if err != nil {
		return nil, fmt.Errorf("encoding specification: %w", err)
	}
	fingerprint, err := predicate.Fingerprint(p)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting specification: %w", err)
	}

	sqlCompiler := querysql.NewSQLCompiler(spec.Binding.Entity)
	query, params, err := sqlCompiler.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("compiling SQL: %w", err)
	}
	if params == nil {
		params = []any{}
	}
	plans, err := sqlCompiler.Plan(p)
	if err != nil {
		return nil, fmt.Errorf("planning fetches: %w", err)
	}

	result := &CompilationResult{
		Entity:      spec.Binding.Spec.Name,
		Predicate:   predicate.String(p),
		Canonical:   canonical,
		Fingerprint: fingerprint,
		SQL:         query,
		Params:      params,
		Fetches:     make([]FetchSummary, len(plans)),
		Warnings:    predicate.Lint(p).Warnings,
	}
	for i, plan := range plans {
		result.Fetches[i] = FetchSummary{
			Association: plan.Association.Name,
			Table:       plan.Association.Target,
			Plural:      plan.Association.Plural,
			KeyColumn:   plan.KeyColumn,
			MatchColumn: plan.MatchColumn,
		}
	}
	if ddl {
		result.DDL = compiler.DDL(spec.Model)
	}
	return result, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled specification for %s\n\n", result.Entity)
	fmt.Fprintf(w, "Predicate:   %s\n", result.Predicate)
	fmt.Fprintf(w, "Canonical:   %s\n", result.Canonical)
	fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
	fmt.Fprintf(w, "SQL:         %s\n", result.SQL)
	fmt.Fprintf(w, "Params:      %v\n", result.Params)

	if len(result.Fetches) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fetches:")
		for _, f := range result.Fetches {
			fmt.Fprintf(w, "  %s: %s.%s = %s\n", f.Association, f.Table, f.MatchColumn, f.KeyColumn)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "⚠ %s\n", warning)
		}
	}

	if len(result.DDL) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.Join(result.DDL, ";\n")+";")
	}

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote compiled specification to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		// JSON format - use CLIResponse with first error
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status:  "error",
			Error:   &cliErrors[0],
			Data:    cliErrors, // Include all errors in data
			TraceID: formatter.traceID(),
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeResultToFile writes the compilation result to a file as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	// Indented for readability; the canonical form is embedded as-is
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
