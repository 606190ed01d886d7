package metamodel

import (
	"reflect"
	"time"
)

// Kind classifies the value type of an attribute.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindTime
)

var timeType = reflect.TypeOf(time.Time{})

// KindOf classifies t by its underlying kind. time.Time is KindTime.
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindOther
	}
	if t == timeType {
		return KindTime
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Bool:
		return KindBool
	default:
		return KindOther
	}
}

// Ordered reports whether values of this kind have a total order.
func (k Kind) Ordered() bool {
	switch k {
	case KindString, KindInt, KindUint, KindFloat, KindTime:
		return true
	default:
		return false
	}
}

// Numeric reports whether the kind is an integer or float kind.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindUint || k == KindFloat
}

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "other"
	}
}
