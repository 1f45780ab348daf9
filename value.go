package expressions

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the dynamic type of a Value.
type Kind int8

const (
	KindNone Kind = iota

	KindInt      // Int
	KindReal     // Real
	KindBool     // Bool
	KindString   // String
	KindDateTime // DateTime
	KindTimeSpan // TimeSpan

	KindPoint       // Point
	KindVector      // Vector
	KindPointVector // PointVector
	KindMatrix      // *Matrix

	KindArray   // *Array, homogeneous
	KindList    // List, heterogeneous
	KindContext // *Context
	KindObject  // user-defined Object
)

var kindNames = [...]string{
	KindNone:        "none",
	KindInt:         "int",
	KindReal:        "double",
	KindBool:        "bool",
	KindString:      "string",
	KindDateTime:    "datetime",
	KindTimeSpan:    "timespan",
	KindPoint:       "point",
	KindVector:      "vector",
	KindPointVector: "pointvector",
	KindMatrix:      "matrix",
	KindArray:       "array",
	KindList:        "list",
	KindContext:     "context",
	KindObject:      "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is a dynamically typed value. The set of kinds is closed except for
// KindObject, which any type implementing Object may claim.
type Value interface {
	Kind() Kind
	// String returns the textual form of the value. Operators fall back to
	// it when concatenating mixed operands.
	String() string
}

type (
	// Int is an integer value.
	Int int64
	// Real is a floating-point value.
	Real float64
	// Bool is a boolean value.
	Bool bool
	// String is a string value.
	String string
	// TimeSpan is a duration value.
	TimeSpan time.Duration
)

// DateTime is a point in time.
type DateTime struct {
	time.Time
}

func (Int) Kind() Kind      { return KindInt }
func (Real) Kind() Kind     { return KindReal }
func (Bool) Kind() Kind     { return KindBool }
func (String) Kind() Kind   { return KindString }
func (DateTime) Kind() Kind { return KindDateTime }
func (TimeSpan) Kind() Kind { return KindTimeSpan }

func (v Int) String() string      { return strconv.FormatInt(int64(v), 10) }
func (v Real) String() string     { return fmtFloat(float64(v)) }
func (v Bool) String() string     { return strconv.FormatBool(bool(v)) }
func (v String) String() string   { return string(v) }
func (v DateTime) String() string { return v.Time.Format(time.RFC3339Nano) }
func (v TimeSpan) String() string { return time.Duration(v).String() }

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// TypeName returns the name of the concrete type of v as used in error
// messages: the kind name, or the tag of an Object.
func TypeName(v Value) string {
	if v == nil {
		return "null"
	}
	if obj, ok := v.(Object); ok {
		return obj.Tag()
	}
	return v.Kind().String()
}

// Equal reports whether a and b are the same value. Values of different kinds
// are never equal; in particular Int(1) and Real(1) differ.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case Int, Real, Bool, String, TimeSpan, Point:
		return a == b
	case DateTime:
		return a.Equal(b.(DateTime).Time)
	case Vector:
		return floatsEqual(a, b.(Vector))
	case PointVector:
		b := b.(PointVector)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case *Matrix:
		b := b.(*Matrix)
		return a.rows == b.rows && a.cols == b.cols && floatsEqual(a.data, b.data)
	case *Array:
		b := b.(*Array)
		return a.elem == b.elem && valuesEqual(a.items, b.items)
	case List:
		return valuesEqual(a, b.(List))
	case *Context:
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// joinValues formats values separated by commas.
func joinValues(b *strings.Builder, vals []Value) {
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		if s, ok := v.(String); ok {
			b.WriteString(strconv.Quote(string(s)))
			continue
		}
		b.WriteString(v.String())
	}
}
