package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/specq/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                      `json:"valid"`
	Entities []string                  `json:"entities,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning   `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model-dir>",
		Short: "Validate an entity model",
		Long: `Validate a CUE entity model without compiling any filter.

Checks identifiers, attribute types, keys and association targets, and
reports reference cycles between tables as warnings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, modelDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := opts.logger().With("trace_id", formatter.TraceID, "command", "validate")

	loaded, err := LoadModel(modelDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, modelDir)
	for _, spec := range loaded.Model.Entities {
		formatter.VerboseLog("Validating entity: %s (table %s)", spec.Name, spec.Table)
	}

	validationErrors := compiler.Validate(loaded.Model)
	warnings := compiler.AnalyzeReferences(loaded.Model)
	logger.Debug("model validated",
		"entities", len(loaded.Model.Entities),
		"errors", len(validationErrors),
		"warnings", len(warnings))

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, loaded.Model, warnings)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, model *compiler.Model, warnings []compiler.CycleWarning) error {
	names := make([]string, len(model.Entities))
	for i, spec := range model.Entities {
		names[i] = spec.Name
	}

	if formatter.Format == "json" {
		result := ValidationResult{Valid: true, Entities: names, Warnings: warnings}
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Model valid: %d entit%s (%s)\n",
		len(names), plural(len(names), "y", "ies"), strings.Join(names, ", "))
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "⚠ %s\n", w.Message)
	}
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
			TraceID: formatter.traceID(),
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateModelDir validates the model in a directory.
// This is a helper function for external callers.
func ValidateModelDir(modelDir string) ([]compiler.ValidationError, error) {
	loaded, err := LoadModel(modelDir)
	if err != nil {
		return nil, err
	}
	return compiler.Validate(loaded.Model), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
