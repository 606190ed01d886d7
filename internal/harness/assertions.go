package harness

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/specq/internal/compiler"
	"github.com/roach88/specq/internal/ir"
)

// AssertionError represents a failed assertion with context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed (%s): expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Binding *compiler.Binding
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter identifies rows by key for row and fetch_count.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRow, AssertFetchCount:
			if actx == nil || actx.Binding == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a bound entity", i, assertion.Type)
			} else if assertion.Type == AssertRow {
				err = assertRow(result, actx.Binding, assertion)
			} else {
				err = assertFetchCount(result, actx.Binding, assertion)
			}
		case AssertMatchCount:
			err = assertMatchCount(result, assertion)
		case AssertLintWarning:
			err = assertLintWarning(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertRow checks the selected row with the assertion's key against the
// expected column values, using subset semantics.
func assertRow(result *Result, b *compiler.Binding, assertion Assertion) error {
	row, err := selectedRow(result, b, assertion)
	if err != nil {
		return err
	}

	// Sort keys for deterministic error messages
	columns := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	for _, column := range columns {
		expectedValue := assertion.Expect[column]
		actualValue, exists := row[column]
		if !exists {
			return &AssertionError{
				Type:     AssertRow,
				Expected: fmt.Sprintf("column %q to exist", column),
				Actual:   fmt.Sprintf("column %q not present in row %d", column, *assertion.Key),
			}
		}
		if !stateValuesEqual(expectedValue, actualValue) {
			return &AssertionError{
				Type:     AssertRow,
				Expected: fmt.Sprintf("column %q = %v (type %T)", column, expectedValue, expectedValue),
				Actual:   fmt.Sprintf("column %q = %v (type %T)", column, actualValue, actualValue),
			}
		}
	}
	return nil
}

// assertFetchCount checks how many rows a fetch hint attached to the
// selected row. A to-one association counts one row unless it is NULL.
func assertFetchCount(result *Result, b *compiler.Binding, assertion Assertion) error {
	row, err := selectedRow(result, b, assertion)
	if err != nil {
		return err
	}

	attached, ok := row[assertion.Fetch]
	if !ok {
		return &AssertionError{
			Type:     AssertFetchCount,
			Expected: fmt.Sprintf("%s fetched into row %d", assertion.Fetch, *assertion.Key),
			Actual:   "association not fetched",
		}
	}

	var count int
	switch v := attached.(type) {
	case ir.IRArray:
		count = len(v)
	case ir.IRObject:
		count = 1
	case ir.IRNull:
		count = 0
	default:
		return &AssertionError{
			Type:     AssertFetchCount,
			Expected: fmt.Sprintf("rows fetched for %s", assertion.Fetch),
			Actual:   fmt.Sprintf("column value %v", v),
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertFetchCount,
			Expected: fmt.Sprintf("%d %s rows for row %d", assertion.Count, assertion.Fetch, *assertion.Key),
			Actual:   fmt.Sprintf("%d rows", count),
		}
	}
	return nil
}

// assertMatchCount checks the number of selected rows.
func assertMatchCount(result *Result, assertion Assertion) error {
	if len(result.IDs) != assertion.Count {
		return &AssertionError{
			Type:     AssertMatchCount,
			Expected: fmt.Sprintf("%d rows", assertion.Count),
			Actual:   fmt.Sprintf("%d rows %v", len(result.IDs), result.IDs),
		}
	}
	return nil
}

// assertLintWarning checks that some lint warning contains the expected text.
func assertLintWarning(result *Result, assertion Assertion) error {
	for _, w := range result.Warnings {
		if strings.Contains(w, assertion.Contains) {
			return nil
		}
	}
	actual := "no warnings"
	if len(result.Warnings) > 0 {
		actual = strings.Join(result.Warnings, "; ")
	}
	return &AssertionError{
		Type:     AssertLintWarning,
		Expected: fmt.Sprintf("warning containing %q", assertion.Contains),
		Actual:   actual,
	}
}

// selectedRow finds the selected row with the assertion's key.
func selectedRow(result *Result, b *compiler.Binding, assertion Assertion) (ir.IRObject, error) {
	for _, row := range result.Rows {
		if k, ok := b.Key(row); ok && k == *assertion.Key {
			return row, nil
		}
	}
	return nil, &AssertionError{
		Type:     assertion.Type,
		Expected: fmt.Sprintf("row %d among the selected rows", *assertion.Key),
		Actual:   fmt.Sprintf("selected %v", result.IDs),
	}
}

// stateValuesEqual compares an expected YAML value with a column value read
// back from SQLite. Integral numbers compare equal across int and float
// columns.
func stateValuesEqual(expected any, actual ir.IRValue) bool {
	if expected == nil {
		_, null := actual.(ir.IRNull)
		return null || actual == nil
	}
	if actual == nil {
		return false
	}

	exp, err := ir.FromGo(expected)
	if err != nil {
		return false
	}

	switch e := exp.(type) {
	case ir.IRInt:
		switch a := actual.(type) {
		case ir.IRInt:
			return e == a
		case ir.IRFloat:
			return float64(e) == float64(a)
		}
		return false
	case ir.IRFloat:
		switch a := actual.(type) {
		case ir.IRFloat:
			return floatEqual(float64(e), float64(a))
		case ir.IRInt:
			return float64(e) == float64(a)
		}
		return false
	case ir.IRBool:
		switch a := actual.(type) {
		case ir.IRBool:
			return e == a
		case ir.IRInt:
			// SQLite stores booleans as integers (0/1)
			return bool(e) == (a != 0)
		}
		return false
	}

	return valuesEqual(actual, exp)
}

// floatEqual tolerates the rounding of REAL round trips.
func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// valuesEqual compares two values for equality.
// Handles nested maps and slices.
func valuesEqual(actual, expected any) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	return reflect.DeepEqual(actual, expected)
}
