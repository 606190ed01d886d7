package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/specq/internal/builder"
	"github.com/roach88/specq/internal/compiler"
	"github.com/roach88/specq/internal/engine"
	"github.com/roach88/specq/internal/predicate"
	"github.com/roach88/specq/internal/querysql"
	"github.com/roach88/specq/internal/store"
)

// Harness is the test execution engine.
// It runs one scenario against a fresh in-memory database.
type Harness struct {
	store   *store.Store
	model   *compiler.Model
	binding *compiler.Binding
	logger  *slog.Logger

	// rows holds the fixture rows of the scenario's entity table, in
	// fixture order, for the in-memory evaluation.
	rows []compiler.Row
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load, validate and bind the CUE model
// 2. Create the tables and insert fixtures, parents first
// 3. Build the specification from the filter steps
// 4. Select rows through SQLite and through the in-memory evaluator
// 5. Compare both against expect.ids and evaluate assertions
//
// An error is returned when the scenario cannot be executed at all (bad
// model, bad fixture); failed expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	model, err := compiler.LoadModel(scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	if errs := compiler.Validate(model); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid model: %s", strings.Join(msgs, "; "))
	}

	binding, err := compiler.Bind(model, scenario.Entity)
	if err != nil {
		return nil, fmt.Errorf("failed to bind entity: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:   st,
		model:   model,
		binding: binding,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	if err := h.setup(ctx, scenario.Fixtures); err != nil {
		return nil, err
	}

	return h.execute(ctx, scenario)
}

// setup creates every table of the model and inserts the fixtures in load
// order so that references resolve.
func (h *Harness) setup(ctx context.Context, fixtures map[string][]map[string]any) error {
	if err := h.store.Migrate(ctx, strings.Join(compiler.DDL(h.model), ";\n")); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	for table := range fixtures {
		if _, ok := h.model.Table(table); !ok {
			return fmt.Errorf("fixtures: unknown table %q", table)
		}
	}

	for _, table := range compiler.LoadOrder(h.model) {
		spec, _ := h.model.Table(table)
		for i, raw := range fixtures[table] {
			row, err := compiler.CompileRow(h.model, spec, raw)
			if err != nil {
				return fmt.Errorf("fixtures.%s[%d]: %w", table, i, err)
			}
			if err := h.store.Insert(ctx, table, row); err != nil {
				return fmt.Errorf("fixtures.%s[%d]: %w", table, i, err)
			}
			if table == h.binding.Spec.Table {
				h.rows = append(h.rows, row)
			}
		}
		h.logger.Info("fixtures inserted", "table", table, "rows", len(fixtures[table]))
	}
	return nil
}

// execute builds the specification and runs it through both engines.
func (h *Harness) execute(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	spec, err := compiler.CompileFilter(h.binding, scenario.Filter, builder.WithLogger(h.logger))
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		// Lookup failures abort the filter; nothing was built
		checkError(result, scenario.Expect.Error, err)
		return result, nil
	}
	if err != nil || scenario.Expect.Error != "" {
		checkError(result, scenario.Expect.Error, err)
	}

	if result.Predicate, err = predicate.Encode(spec); err != nil {
		return nil, fmt.Errorf("encode specification: %w", err)
	}
	result.Warnings = append(result.Warnings, predicate.Lint(spec).Warnings...)

	result.SQL, result.Params, err = querysql.NewSQLCompiler(h.binding.Entity).Compile(spec)
	if err != nil {
		result.AddError(fmt.Sprintf("compile SQL: %v", err))
		return result, nil
	}
	if result.Params == nil {
		result.Params = []any{}
	}

	rows, err := store.Find(ctx, h.store, h.binding.Entity, spec)
	if err != nil {
		result.AddError(fmt.Sprintf("sql: %v", err))
		return result, nil
	}
	result.Rows = rows
	result.IDs = h.keys(rows)

	matched, err := engine.Filter(spec, h.rows)
	if err != nil {
		result.AddError(fmt.Sprintf("evaluate: %v", err))
		return result, nil
	}
	inMemory := h.keys(matched)

	if !slices.Equal(result.IDs, inMemory) {
		result.AddError(fmt.Sprintf("engines disagree: sql selected %v, in-memory matched %v", result.IDs, inMemory))
	}

	expected := slices.Clone(scenario.Expect.IDs)
	if expected == nil {
		expected = []int64{}
	}
	slices.Sort(expected)
	if !slices.Equal(result.IDs, expected) {
		result.AddError(fmt.Sprintf("expected ids %v, got %v", expected, result.IDs))
	}

	actx := &AssertionContext{Binding: h.binding}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario executed",
		"scenario", scenario.Name,
		"sql", result.SQL,
		"ids", result.IDs,
		"pass", result.Pass,
	)
	return result, nil
}

// checkError compares the error building the specification with want.
func checkError(result *Result, want string, err error) {
	switch {
	case err == nil:
		result.AddError(fmt.Sprintf("expected error containing %q, got none", want))
	case want == "":
		result.AddError(fmt.Sprintf("build specification: %v", err))
	case !strings.Contains(err.Error(), want):
		result.AddError(fmt.Sprintf("expected error containing %q, got %q", want, err.Error()))
	}
}

// keys returns the sorted keys of rows.
func (h *Harness) keys(rows []compiler.Row) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		if k, ok := h.binding.Key(r); ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
