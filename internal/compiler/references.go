package compiler

import (
	"fmt"
	"strings"
)

// CycleWarning represents a reference cycle between tables.
//
// Cycles are warnings, not errors: the model is usable, but the columns on
// the cycle are created without a foreign key and fixture rows on the cycle
// have no parent-first load order.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["orders", "customers", "orders"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeReferences performs static cycle analysis on the model's
// associations.
//
// The algorithm:
//  1. Build table → referenced tables graph from associations
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle warning
//
// A DAG (no cycles) returns an empty warning list.
func AnalyzeReferences(model *Model) []CycleWarning {
	graph, nodes := buildReferenceGraph(model)

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph, nodes) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// LoadOrder returns the model's tables with every referenced table before
// the tables referencing it. Tables on a cycle keep declaration order
// relative to each other.
func LoadOrder(model *Model) []string {
	graph, nodes := buildReferenceGraph(model)

	var order []string
	visited := make(map[string]bool)
	var visit func(string)
	visit = func(table string) {
		visited[table] = true
		for _, parent := range graph[table] {
			if !visited[parent] {
				visit(parent)
			}
		}
		order = append(order, table)
	}
	for _, table := range nodes {
		if !visited[table] {
			visit(table)
		}
	}
	return order
}

// dependencyGraph maps table → tables it references.
type dependencyGraph map[string][]string

// buildReferenceGraph constructs the table reference graph.
//
// For each association:
//   - to-one: the owner's table references the target table
//   - to-many: the target table references the owner's table
//
// Edges to undeclared tables are dropped. Nodes are returned in
// declaration order so the analysis is deterministic.
func buildReferenceGraph(model *Model) (dependencyGraph, []string) {
	graph := make(dependencyGraph)
	var nodes []string
	for _, spec := range model.Entities {
		if _, seen := graph[spec.Table]; !seen {
			// Initialize with empty slice (ensures node exists in graph)
			graph[spec.Table] = []string{}
			nodes = append(nodes, spec.Table)
		}
	}

	for _, spec := range model.Entities {
		for _, assoc := range spec.Associations {
			if _, ok := graph[assoc.Target]; !ok {
				continue
			}
			if assoc.Plural {
				graph[assoc.Target] = appendUnique(graph[assoc.Target], spec.Table)
			} else {
				graph[spec.Table] = appendUnique(graph[spec.Table], assoc.Target)
			}
		}
	}
	return graph, nodes
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// cyclicEdge reports whether the reference from → to lies on a cycle.
func cyclicEdge(model *Model, from, to string) bool {
	graph, nodes := buildReferenceGraph(model)
	for _, scc := range tarjanSCC(graph, nodes) {
		var hasFrom, hasTo bool
		for _, table := range scc {
			hasFrom = hasFrom || table == from
			hasTo = hasTo || table == to
		}
		if hasFrom && hasTo {
			return len(scc) > 1 || hasSelfLoop(from, graph)
		}
	}
	return false
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of tables.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph, nodes []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		// Set the depth index for v
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		// Consider successors of v
		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				// Successor w has not yet been visited; recurse on it
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				// Successor w is on stack and hence in the current SCC
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
//
// For self-loops, the path is [table, table].
// For multi-node cycles, the path shows a cycle traversal.
func cycleSCCToWarning(scc []string, graph dependencyGraph) CycleWarning {
	if len(scc) == 1 {
		table := scc[0]
		return CycleWarning{
			Path:    []string{table, table},
			Message: fmt.Sprintf("Self-referencing table: %s → %s", table, table),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)

	pathStr := strings.Join(path, " → ")
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Reference cycle: %s", pathStr),
		Level:   "warning",
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at first node in SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
