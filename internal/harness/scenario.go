package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/specq/internal/compiler"
)

// Scenario defines a conformance test scenario.
// Scenarios load fixture rows into a fresh database, build a specification
// from filter steps and assert on the rows it selects.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the directory of the CUE entity model.
	// Relative paths are resolved against the scenario file location.
	Model string `yaml:"model"`

	// Entity is the model entity the filter selects.
	Entity string `yaml:"entity"`

	// Fixtures lists the rows to insert, keyed by table name.
	// Tables are filled parents first, whatever the order in the file.
	Fixtures map[string][]map[string]any `yaml:"fixtures,omitempty"`

	// Filter is the list of builder steps (where, and, or, fetch).
	Filter []compiler.Step `yaml:"filter"`

	// Expect holds the expected outcome of the filter.
	Expect Expect `yaml:"expect"`

	// Assertions validate the selected rows and the specification.
	// Supported types: row, fetch_count, match_count, lint_warning
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect specifies the expected outcome of a scenario.
type Expect struct {
	// IDs are the keys of the selected rows. Order does not matter.
	IDs []int64 `yaml:"ids"`

	// Error, when set, is a substring of the error building the
	// specification must report. IDs are still checked against the rows
	// matched by the accepted steps.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the selected rows or the specification.
type Assertion struct {
	// Type specifies the assertion type:
	// - "row": Check columns of the selected row with Key
	// - "fetch_count": Check how many rows Fetch attached to the row with Key
	// - "match_count": Check the number of selected rows
	// - "lint_warning": Check a lint warning contains Contains
	Type string `yaml:"type"`

	// Key selects a row (used by row and fetch_count).
	Key *int64 `yaml:"key,omitempty"`

	// Expect contains expected column values (used by row).
	// Subset match - only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Fetch names the fetched association (used by fetch_count).
	Fetch string `yaml:"fetch,omitempty"`

	// Count is the expected number of rows (used by fetch_count and match_count).
	Count int `yaml:"count,omitempty"`

	// Contains is the expected warning text (used by lint_warning).
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertRow         = "row"
	AssertFetchCount  = "fetch_count"
	AssertMatchCount  = "match_count"
	AssertLintWarning = "lint_warning"
)

// LoadScenario reads and parses a scenario YAML file, resolving the model
// directory relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the model path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the model path BEFORE validation
	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) && basePath != "" {
		scenario.Model = filepath.Join(basePath, scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Model == "" {
		return fmt.Errorf("model is required")
	}

	if s.Entity == "" {
		return fmt.Errorf("entity is required")
	}

	if info, err := os.Stat(s.Model); err != nil || !info.IsDir() {
		return fmt.Errorf("model directory not found: %s", s.Model)
	}

	for table, rows := range s.Fixtures {
		for i, row := range rows {
			if len(row) == 0 {
				return fmt.Errorf("fixtures.%s[%d]: row is empty", table, i)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRow:
		if a.Key == nil {
			return fmt.Errorf("assertions[%d]: key is required for row", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for row", index)
		}
	case AssertFetchCount:
		if a.Key == nil {
			return fmt.Errorf("assertions[%d]: key is required for fetch_count", index)
		}
		if a.Fetch == "" {
			return fmt.Errorf("assertions[%d]: fetch is required for fetch_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for fetch_count", index)
		}
	case AssertMatchCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for match_count", index)
		}
	case AssertLintWarning:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for lint_warning", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
