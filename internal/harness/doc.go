// Package harness provides conformance testing for specifications built
// from filter steps.
//
// A scenario names a CUE entity model, fixture rows and a list of filter
// steps. The harness loads the fixtures into a fresh in-memory SQLite
// database, builds the specification, and selects rows twice: once through
// the compiled SQL query and once through the in-memory evaluator. Both
// must select the same keys, and those keys must equal expect.ids.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: paid_orders_in_range
//	description: "Paid orders with a total between 10 and 100"
//	model: ../model
//	entity: Order
//	fixtures:
//	  customers:
//	    - {id: 1, name: Ada}
//	  orders:
//	    - {id: 1, status: PAID, total: 55, paid: true, customer_id: 1}
//	filter:
//	  - where: {attr: status, op: equal, value: PAID}
//	  - and:   {attr: total, op: between, values: [10, 100]}
//	  - fetch: items
//	expect:
//	  ids: [1]
//	assertions:
//	  - type: row
//	    key: 1
//	    expect: {status: PAID}
//	  - type: fetch_count
//	    key: 1
//	    fetch: items
//	    count: 0
//
// Fixtures are inserted parents first (see compiler.LoadOrder), so the
// order of tables in the file does not matter.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - row: Verifies column values of a selected row (subset match)
//   - fetch_count: Verifies how many rows a fetch hint attached to a row
//   - match_count: Verifies the number of selected rows
//   - lint_warning: Verifies the specification drew a lint warning
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/paid_orders.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
