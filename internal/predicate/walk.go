package predicate

import "github.com/roach88/specq/internal/metamodel"

// Walk visits p and its descendants in pre-order. If fn returns false the
// children of the current node are skipped. Nil nodes are not visited.
func Walk[E any](p Predicate[E], fn func(Predicate[E]) bool) {
	if IsNilPredicate(p) {
		return
	}
	if !fn(p) {
		return
	}
	for _, child := range Children(p) {
		Walk(child, fn)
	}
}

// Children returns the operands of an And or Or node, and nil for every
// other node.
func Children[E any](p Predicate[E]) []Predicate[E] {
	switch node := p.(type) {
	case And[E]:
		return node.Predicates
	case *And[E]:
		return node.Predicates
	case Or[E]:
		return node.Predicates
	case *Or[E]:
		return node.Predicates
	}
	return nil
}

// IsFetch reports whether p is a fetch hint.
func IsFetch[E any](p Predicate[E]) bool {
	switch p.(type) {
	case Fetch[E], *Fetch[E]:
		return true
	}
	return false
}

// Fetches returns the fetch hints in p in first-seen order, one per
// association name. This is the eager-load plan of p.
func Fetches[E any](p Predicate[E]) []metamodel.Fetchable[E] {
	var out []metamodel.Fetchable[E]
	seen := make(map[string]bool)
	Walk(p, func(n Predicate[E]) bool {
		target := fetchTarget(n)
		if target != nil && !seen[target.Name()] {
			seen[target.Name()] = true
			out = append(out, target)
		}
		return true
	})
	return out
}

func fetchTarget[E any](p Predicate[E]) metamodel.Fetchable[E] {
	switch node := p.(type) {
	case Fetch[E]:
		return node.Target
	case *Fetch[E]:
		return node.Target
	}
	return nil
}

// Restricts reports whether p can exclude any entity: false for nil, for a
// fetch hint and for an And or Or made only of such nodes.
func Restricts[E any](p Predicate[E]) bool {
	if IsNilPredicate(p) || IsFetch(p) {
		return false
	}
	children := Children(p)
	if children == nil {
		switch p.(type) {
		case And[E], *And[E], Or[E], *Or[E]:
			return false
		}
		return true
	}
	for _, child := range children {
		if Restricts(child) {
			return true
		}
	}
	return false
}
