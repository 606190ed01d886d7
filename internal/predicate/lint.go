package predicate

import (
	"fmt"
	"strings"

	"github.com/roach88/specq/internal/ir"
)

// LintResult contains non-fatal findings about a predicate tree.
//
// Every finding describes a tree that is valid and will execute, but
// probably does not do what its author meant or will be slow.
type LintResult struct {
	// Clean is true when there are no warnings.
	Clean bool

	// Warnings lists the findings in tree order.
	Warnings []string
}

// Lint inspects p for suspicious constructs:
//  1. In with no members (matches nothing)
//  2. Fetch hints on attributes that are not associations
//  3. The same association fetched more than once
//  4. Like patterns starting with a wildcard (defeat column indexes)
//  5. And or Or nodes with no restricting operand
//
// Lint is a pure function with no side effects.
func Lint[E any](p Predicate[E]) LintResult {
	l := &linter[E]{
		warnings: []string{},
		fetched:  make(map[string]bool),
	}
	if IsNilPredicate(p) {
		l.addWarning("nil predicate - matches every entity")
	} else {
		l.lintPredicate(p)
	}

	return LintResult{
		Clean:    len(l.warnings) == 0,
		Warnings: l.warnings,
	}
}

// linter accumulates warnings during traversal.
type linter[E any] struct {
	warnings []string
	fetched  map[string]bool
}

// addWarning appends a warning message.
func (l *linter[E]) addWarning(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

// lintPredicate recursively inspects a predicate node.
func (l *linter[E]) lintPredicate(p Predicate[E]) {
	if IsNilPredicate(p) {
		l.addWarning("nil operand - ignored by engines")
		return
	}

	switch pred := p.(type) {
	case Comparison[E]:
		l.lintComparison(pred)
	case *Comparison[E]:
		l.lintComparison(*pred)
	case In[E]:
		l.lintIn(pred)
	case *In[E]:
		l.lintIn(*pred)
	case Fetch[E]:
		l.lintFetch(pred)
	case *Fetch[E]:
		l.lintFetch(*pred)
	case And[E], *And[E], Or[E], *Or[E]:
		l.lintComposite(p)
	case Between[E], *Between[E], Null[E], *Null[E]:
		// Always meaningful
	default:
		l.addWarning("Unknown predicate type: %T", p)
	}
}

func (l *linter[E]) lintComparison(c Comparison[E]) {
	if c.Op != OpLike && c.Op != OpNotLike {
		return
	}
	if s, ok := c.Value.(ir.IRString); ok && (strings.HasPrefix(string(s), "%") || strings.HasPrefix(string(s), "_")) {
		l.addWarning("Pattern %q on '%s' starts with a wildcard - full scan", string(s), c.Attr.Name())
	}
}

func (l *linter[E]) lintIn(in In[E]) {
	if len(in.Values) == 0 {
		l.addWarning("Empty IN on '%s' - matches nothing", in.Attr.Name())
	}
}

func (l *linter[E]) lintFetch(f Fetch[E]) {
	name := f.Target.Name()
	if _, ok := f.Target.Association(); !ok {
		l.addWarning("Fetch of '%s' - not an association, nothing to load", name)
	}
	if l.fetched[name] {
		l.addWarning("Duplicate fetch of '%s'", name)
	}
	l.fetched[name] = true
}

func (l *linter[E]) lintComposite(p Predicate[E]) {
	children := Children(p)
	if !Restricts(p) && !allFetches(children) {
		l.addWarning("%s with no restricting operand - matches every entity", compositeName(p))
	}
	for _, child := range children {
		l.lintPredicate(child)
	}
}

// allFetches reports whether children is a non-empty list of fetch hints,
// the shape a builder produces from With alone.
func allFetches[E any](children []Predicate[E]) bool {
	if len(children) == 0 {
		return false
	}
	for _, child := range children {
		if !IsFetch(child) && !allFetches(Children(child)) {
			return false
		}
	}
	return true
}

func compositeName[E any](p Predicate[E]) string {
	switch p.(type) {
	case Or[E], *Or[E]:
		return "OR"
	}
	return "AND"
}
