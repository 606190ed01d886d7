package predicate

import (
	"fmt"
	"strings"

	"github.com/roach88/specq/internal/ir"
	"github.com/roach88/specq/internal/metamodel"
)

// Encode renders p as an ir.IRValue tree:
//
//	{"op": "equal", "attr": "Order.status", "value": "PAID"}
//	{"op": "between", "attr": "Order.total", "lower": 10, "upper": 100}
//	{"op": "in", "attr": "Order.status", "values": ["PAID", "PENDING"]}
//	{"op": "is_null", "attr": "Order.note"}
//	{"op": "and", "of": [...]}
//	{"op": "fetch", "attr": "Order.items"}
//
// A nil predicate encodes as IRNull.
func Encode[E any](p Predicate[E]) (ir.IRValue, error) {
	if IsNilPredicate(p) {
		return ir.IRNull{}, nil
	}

	switch node := p.(type) {
	case Comparison[E]:
		return encodeComparison(node), nil
	case *Comparison[E]:
		return encodeComparison(*node), nil
	case Between[E]:
		return encodeBetween(node), nil
	case *Between[E]:
		return encodeBetween(*node), nil
	case In[E]:
		return encodeIn(node), nil
	case *In[E]:
		return encodeIn(*node), nil
	case Null[E]:
		return encodeNull(node), nil
	case *Null[E]:
		return encodeNull(*node), nil
	case Fetch[E]:
		return encodeFetch(node), nil
	case *Fetch[E]:
		return encodeFetch(*node), nil
	case And[E], *And[E]:
		return encodeComposite(opAnd, Children(p))
	case Or[E], *Or[E]:
		return encodeComposite(opOr, Children(p))
	default:
		return nil, fmt.Errorf("unknown predicate type: %T", p)
	}
}

func encodeComparison[E any](c Comparison[E]) ir.IRValue {
	return ir.IRObject{
		"op":    ir.IRString(c.Op),
		"attr":  ir.IRString(QualifiedName(c.Attr)),
		"value": orNull(c.Value),
	}
}

func encodeBetween[E any](b Between[E]) ir.IRValue {
	return ir.IRObject{
		"op":    ir.IRString(OpBetween),
		"attr":  ir.IRString(QualifiedName(b.Attr)),
		"lower": orNull(b.Lower),
		"upper": orNull(b.Upper),
	}
}

func encodeIn[E any](in In[E]) ir.IRValue {
	values := make(ir.IRArray, len(in.Values))
	for i, v := range in.Values {
		values[i] = orNull(v)
	}
	return ir.IRObject{
		"op":     ir.IRString(OpIn),
		"attr":   ir.IRString(QualifiedName(in.Attr)),
		"values": values,
	}
}

func encodeNull[E any](n Null[E]) ir.IRValue {
	op := OpIsNull
	if n.Negated {
		op = OpIsNotNull
	}
	return ir.IRObject{
		"op":   ir.IRString(op),
		"attr": ir.IRString(QualifiedName(n.Attr)),
	}
}

func encodeFetch[E any](f Fetch[E]) ir.IRValue {
	return ir.IRObject{
		"op":   ir.IRString(opFetch),
		"attr": ir.IRString(qualify(f.Target.Owner(), f.Target.Name())),
	}
}

func encodeComposite[E any](op Op, children []Predicate[E]) (ir.IRValue, error) {
	of := make(ir.IRArray, len(children))
	for i, child := range children {
		v, err := Encode(child)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", op, i, err)
		}
		of[i] = v
	}
	return ir.IRObject{
		"op": ir.IRString(op),
		"of": of,
	}, nil
}

func orNull(v ir.IRValue) ir.IRValue {
	if v == nil {
		return ir.IRNull{}
	}
	return v
}

// Canonical returns the RFC 8785 canonical JSON encoding of p.
// Structurally equal trees have byte-identical encodings.
func Canonical[E any](p Predicate[E]) ([]byte, error) {
	v, err := Encode(p)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(v)
}

// Fingerprint returns the content-addressed identity of p: the SHA-256 of
// its canonical encoding under ir.DomainPredicate.
func Fingerprint[E any](p Predicate[E]) (string, error) {
	v, err := Encode(p)
	if err != nil {
		return "", err
	}
	return ir.Fingerprint(ir.DomainPredicate, v)
}

// QualifiedName returns "Owner.name" for attr, or just the name when the
// attribute has no owner.
func QualifiedName[E any](attr metamodel.Attr[E]) string {
	if metamodel.IsNil(attr) {
		return "<nil>"
	}
	return qualify(attr.Owner(), attr.Name())
}

func qualify(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "." + name
}

// String renders p in a SQL-like form for logs and error messages:
//
//	(Order.status = "PAID" AND Order.total BETWEEN 10 AND 100)
func String[E any](p Predicate[E]) string {
	var sb strings.Builder
	writeString(&sb, p)
	return sb.String()
}

func writeString[E any](sb *strings.Builder, p Predicate[E]) {
	if IsNilPredicate(p) {
		sb.WriteString("<none>")
		return
	}

	switch node := p.(type) {
	case Comparison[E]:
		fmt.Fprintf(sb, "%s %s %s", QualifiedName(node.Attr), node.Op.symbol(), literalString(node.Value))
	case *Comparison[E]:
		writeString(sb, Predicate[E](*node))
	case Between[E]:
		fmt.Fprintf(sb, "%s BETWEEN %s AND %s", QualifiedName(node.Attr), literalString(node.Lower), literalString(node.Upper))
	case *Between[E]:
		writeString(sb, Predicate[E](*node))
	case In[E]:
		items := make([]string, len(node.Values))
		for i, v := range node.Values {
			items[i] = literalString(v)
		}
		fmt.Fprintf(sb, "%s IN (%s)", QualifiedName(node.Attr), strings.Join(items, ", "))
	case *In[E]:
		writeString(sb, Predicate[E](*node))
	case Null[E]:
		if node.Negated {
			fmt.Fprintf(sb, "%s IS NOT NULL", QualifiedName(node.Attr))
		} else {
			fmt.Fprintf(sb, "%s IS NULL", QualifiedName(node.Attr))
		}
	case *Null[E]:
		writeString(sb, Predicate[E](*node))
	case Fetch[E]:
		fmt.Fprintf(sb, "FETCH %s", qualify(node.Target.Owner(), node.Target.Name()))
	case *Fetch[E]:
		writeString(sb, Predicate[E](*node))
	case And[E], *And[E], Or[E], *Or[E]:
		sep := " AND "
		if compositeName(p) == "OR" {
			sep = " OR "
		}
		sb.WriteByte('(')
		for i, child := range Children(p) {
			if i > 0 {
				sb.WriteString(sep)
			}
			writeString(sb, child)
		}
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "<%T>", p)
	}
}

func literalString(v ir.IRValue) string {
	b, err := ir.MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
