package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/specq/internal/builder"
	"github.com/roach88/specq/internal/compiler"
	"github.com/roach88/specq/internal/predicate"
)

// LoadResult contains a model loaded from a directory.
type LoadResult struct {
	Model     *compiler.Model
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred while loading a model or a
// filter.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadModel loads and compiles the CUE model in dir. The model is not
// validated. Every error returned is a *LoadError.
func LoadModel(dir string) (*LoadResult, error) {
	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing model directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	model, err := compiler.LoadModel(dir)
	if err != nil {
		return nil, convertCompileError(err, ErrCodeLoadFailed)
	}

	return &LoadResult{Model: model, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// LoadFilter reads filter steps from path, or from stdin when path is "-".
func LoadFilter(path string, stdin io.Reader) ([]compiler.Step, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading filter: %v", err)}
	}

	steps, err := compiler.ParseSteps(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidStep, Message: err.Error()}
	}
	return steps, nil
}

// Specification is a filter compiled against one entity of a model.
type Specification struct {
	Model     *compiler.Model
	Binding   *compiler.Binding
	Predicate predicate.Predicate[compiler.Row]
	FileCount int
}

// BuildSpecification loads the model in modelDir, binds entity and folds
// steps into its specification. Every error returned is a *LoadError;
// filterErrors expands the ones collected from rejected operands.
func BuildSpecification(modelDir, entity string, steps []compiler.Step, logger *slog.Logger) (*Specification, []error) {
	loaded, err := LoadModel(modelDir)
	if err != nil {
		return nil, []error{err}
	}

	if verrs := compiler.Validate(loaded.Model); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = &LoadError{Code: v.Code, Message: fmt.Sprintf("%s: %s", v.Field, v.Message)}
		}
		return nil, errs
	}

	binding, err := compiler.Bind(loaded.Model, entity)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeUnknownEntity, Message: err.Error()}}
	}

	p, err := compiler.CompileFilter(binding, steps, builder.WithLogger(logger))
	if err != nil {
		return nil, filterErrors(err)
	}

	return &Specification{
		Model:     loaded.Model,
		Binding:   binding,
		Predicate: p,
		FileCount: loaded.FileCount,
	}, nil
}

// filterErrors flattens a CompileFilter error into one *LoadError per
// failed step.
func filterErrors(err error) []error {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return []error{convertCompileError(err, ErrCodeInvalidStep)}
	}

	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	out := make([]error, len(errs))
	for i, e := range errs {
		if predicate.IsInvalidArgument(e) {
			out[i] = &LoadError{Code: ErrCodeInvalidArgument, Message: e.Error()}
			continue
		}
		out[i] = &LoadError{Code: ErrCodeGeneric, Message: e.Error()}
	}
	return out
}

// convertCompileError converts a compiler error to a LoadError with
// position info. Errors without a field get fallback as their code.
func convertCompileError(err error, fallback string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := MapFieldToErrorCode(compileErr.Field)
		if code == ErrCodeGeneric {
			code = fallback
		}
		return &LoadError{
			Code:    code,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: fallback, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeQueryFailed = "E008" // Database query failed

	// Filter errors
	ErrCodeUnknownEntity   = "E200" // Entity not declared in the model
	ErrCodeUnknownAttr     = "E201" // Attribute not declared on the entity
	ErrCodeUnknownOp       = "E202" // Operator name not recognized
	ErrCodeUnknownFetch    = "E203" // Fetch names neither attribute nor association
	ErrCodeInvalidStep     = "E204" // Malformed filter step
	ErrCodeInvalidArgument = "E205" // Operand rejected by the predicate factory
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "entity":
		return compiler.ErrNoEntities
	case field == "type":
		return compiler.ErrInvalidFieldType
	case field == "target":
		return compiler.ErrUnknownTarget
	case field == "cue":
		return ErrCodeBuildFailed
	case strings.HasSuffix(field, ".attr"):
		return ErrCodeUnknownAttr
	case strings.HasSuffix(field, ".op"):
		return ErrCodeUnknownOp
	case strings.HasSuffix(field, ".fetch"):
		return ErrCodeUnknownFetch
	case strings.HasPrefix(field, "filter["):
		return ErrCodeInvalidStep
	default:
		return ErrCodeGeneric
	}
}
