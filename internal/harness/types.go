package harness

import "github.com/roach88/specq/internal/ir"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if both engines agree, the selected keys match and every
	// assertion holds.
	Pass bool `json:"pass"`

	// Predicate is the canonical encoding of the built specification.
	Predicate ir.IRValue `json:"predicate"`

	// SQL and Params are the compiled query.
	SQL    string `json:"sql"`
	Params []any  `json:"params"`

	// IDs are the keys of the rows the SQL query selected, ascending.
	IDs []int64 `json:"ids"`

	// Rows are the selected rows with fetched associations attached.
	Rows []ir.IRObject `json:"-"`

	// Warnings are lint findings on the specification.
	Warnings []string `json:"warnings,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Params:   []any{},
		IDs:      []int64{},
		Warnings: []string{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
