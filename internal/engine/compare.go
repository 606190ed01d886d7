package engine

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/roach88/specq/internal/ir"
)

// storage classes in SQLite sort order.
const (
	classNumeric = iota
	classText
	classOther
)

func class(v ir.IRValue) int {
	switch v.(type) {
	case ir.IRInt, ir.IRFloat, ir.IRBool:
		return classNumeric
	case ir.IRString:
		return classText
	}
	return classOther
}

// compare orders two non-null values the way SQLite orders them. ok is
// false for arrays and objects, which have no order.
func compare(a, b ir.IRValue) (order int, ok bool) {
	ca, cb := class(a), class(b)
	if ca == classOther || cb == classOther {
		return 0, false
	}
	if ca != cb {
		return cmp.Compare(ca, cb), true
	}
	if ca == classText {
		return strings.Compare(string(a.(ir.IRString)), string(b.(ir.IRString))), true
	}
	return compareNumbers(a, b), true
}

func compareNumbers(a, b ir.IRValue) int {
	ai, aInt := asInt(a)
	bi, bInt := asInt(b)
	if aInt && bInt {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(asFloat(a), asFloat(b))
}

func asInt(v ir.IRValue) (int64, bool) {
	switch n := v.(type) {
	case ir.IRInt:
		return int64(n), true
	case ir.IRBool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asFloat(v ir.IRValue) float64 {
	if f, ok := v.(ir.IRFloat); ok {
		return float64(f)
	}
	i, _ := asInt(v)
	return float64(i)
}

// asText returns the text form LIKE sees for v.
func asText(v ir.IRValue) (string, bool) {
	switch s := v.(type) {
	case ir.IRString:
		return string(s), true
	case ir.IRInt:
		return strconv.FormatInt(int64(s), 10), true
	}
	return "", false
}
