package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/specq/internal/ir"
)

// QuerySnapshot captures what a scenario's specification compiled to.
// All fields use canonical JSON serialization for deterministic comparison.
type QuerySnapshot struct {
	ScenarioName string
	Predicate    ir.IRValue
	SQL          string
	Params       []any
	IDs          []int64
}

// toCanonicalMap converts a QuerySnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *QuerySnapshot) toCanonicalMap() map[string]any {
	predicate := s.Predicate
	if predicate == nil {
		predicate = ir.IRNull{}
	}
	params := s.Params
	if params == nil {
		params = []any{}
	}
	ids := s.IDs
	if ids == nil {
		ids = []int64{}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"predicate":     predicate,
		"sql":           s.SQL,
		"params":        params,
		"ids":           ids,
	}
}

// Snapshot returns the canonical JSON snapshot of result.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := QuerySnapshot{
		ScenarioName: scenarioName,
		Predicate:    result.Predicate,
		SQL:          result.SQL,
		Params:       result.Params,
		IDs:          result.IDs,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the compiled query against
// a golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's snapshot against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshotJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshotJSON)

	return nil
}
