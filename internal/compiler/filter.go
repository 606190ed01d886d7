package compiler

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/specq/internal/builder"
	"github.com/roach88/specq/internal/predicate"
)

// Step is one filter step. Exactly one of Where, And, Or and Fetch is set.
//
//	- where: {attr: status, op: equal, value: PAID}
//	- or:    {attr: note, op: is_null}
//	- fetch: items
type Step struct {
	Where *Condition `yaml:"where,omitempty" json:"where,omitempty"`
	And   *Condition `yaml:"and,omitempty" json:"and,omitempty"`
	Or    *Condition `yaml:"or,omitempty" json:"or,omitempty"`
	Fetch string     `yaml:"fetch,omitempty" json:"fetch,omitempty"`
}

// Condition names an attribute, an operator and its operands. Unary
// operators take no operand, between takes two Values, in takes any number
// of Values and every other operator takes Value.
type Condition struct {
	Attr   string `yaml:"attr" json:"attr"`
	Op     string `yaml:"op" json:"op"`
	Value  any    `yaml:"value,omitempty" json:"value,omitempty"`
	Values []any  `yaml:"values,omitempty" json:"values,omitempty"`
}

// ParseSteps decodes a YAML list of filter steps.
func ParseSteps(data []byte) ([]Step, error) {
	var steps []Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	return steps, nil
}

// CompileFilter folds steps into a builder bound to b.Entity and returns the
// resulting specification. Steps that name unknown attributes or operators
// fail immediately with a *CompileError; rejected operands are collected by
// the builder and returned joined, alongside the predicate built from the
// accepted steps.
func CompileFilter(b *Binding, steps []Step, opts ...builder.Option) (predicate.Predicate[Row], error) {
	spec := builder.From(b.Entity, opts...)

	for i, step := range steps {
		field := fmt.Sprintf("filter[%d]", i)

		kind, cond, err := stepKind(step)
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error()}
		}

		if kind == "fetch" {
			target, ok := b.Fetchable(step.Fetch)
			if !ok {
				return nil, &CompileError{
					Field:   field + ".fetch",
					Message: fmt.Sprintf("%s has no attribute or association %q", b.Spec.Name, step.Fetch),
				}
			}
			spec.With(target)
			continue
		}

		p, err := compileCondition(b, field+"."+kind, cond)
		if err != nil {
			var compileErr *CompileError
			if errors.As(err, &compileErr) {
				return nil, err
			}
			spec.Is(nil, err)
			continue
		}

		switch kind {
		case "where":
			spec.Where(p)
		case "and":
			spec.And(p)
		case "or":
			spec.Or(p)
		}
	}

	return spec.ToSpecification()
}

func stepKind(step Step) (string, *Condition, error) {
	var kind string
	var cond *Condition
	set := 0
	if step.Where != nil {
		kind, cond = "where", step.Where
		set++
	}
	if step.And != nil {
		kind, cond = "and", step.And
		set++
	}
	if step.Or != nil {
		kind, cond = "or", step.Or
		set++
	}
	if step.Fetch != "" {
		kind = "fetch"
		set++
	}
	if set != 1 {
		return "", nil, fmt.Errorf("step must set exactly one of where, and, or, fetch")
	}
	return kind, cond, nil
}

// compileCondition builds the predicate for cond. Lookup failures are
// *CompileError; operand failures are the factory's *predicate.ArgumentError.
func compileCondition(b *Binding, field string, cond *Condition) (predicate.Predicate[Row], error) {
	attr, ok := b.Attr(cond.Attr)
	if !ok {
		return nil, &CompileError{
			Field:   field + ".attr",
			Message: fmt.Sprintf("%s has no attribute %q", b.Spec.Name, cond.Attr),
		}
	}
	op, err := predicate.ParseOp(cond.Op)
	if err != nil {
		return nil, &CompileError{Field: field + ".op", Message: err.Error()}
	}

	var operands []any
	switch op.Arity() {
	case 0:
	case 1:
		operands = []any{cond.Value}
	default:
		operands = cond.Values
	}
	if op == predicate.OpIn {
		// Values are the members; never re-spread a single list member
		return predicate.InCollection(attr, operands)
	}
	return predicate.New(op, attr, operands...)
}
