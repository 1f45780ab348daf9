package expressions

import "strings"

// Array is a homogeneous sequence: every item has the array's element kind.
type Array struct {
	elem  Kind
	items []Value
}

// List is a heterogeneous sequence of values.
type List []Value

func (*Array) Kind() Kind { return KindArray }
func (List) Kind() Kind   { return KindList }

func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	joinValues(&b, a.items)
	b.WriteByte(']')
	return b.String()
}

func (l List) String() string {
	var b strings.Builder
	b.WriteByte('{')
	joinValues(&b, l)
	b.WriteByte('}')
	return b.String()
}

// NewArray creates an array of the given element kind. Items of any other
// kind are rejected with a KindError.
func NewArray(elem Kind, items ...Value) (*Array, error) {
	for i, v := range items {
		if v == nil || v.Kind() != elem {
			return nil, &KindError{Want: elem, Got: TypeName(v), Index: i}
		}
	}
	return &Array{elem: elem, items: items}, nil
}

// ArrayOf creates an array whose element kind is the kind of the first item.
// An empty ArrayOf has element kind KindInt.
func ArrayOf(items ...Value) (*Array, error) {
	elem := KindInt
	if len(items) > 0 && items[0] != nil {
		elem = items[0].Kind()
	}
	return NewArray(elem, items...)
}

// collect builds an Array when all values share a kind and a List otherwise.
func collect(vals []Value) Value {
	if len(vals) == 0 {
		return &Array{elem: KindInt}
	}
	k := vals[0].Kind()
	for _, v := range vals[1:] {
		if v.Kind() != k {
			return List(vals)
		}
	}
	return &Array{elem: k, items: vals}
}

// Elem returns the element kind.
func (a *Array) Elem() Kind {
	return a.elem
}

// Len returns the number of items.
func (a *Array) Len() int {
	return len(a.items)
}

// Index returns the i-th item.
func (a *Array) Index(i int) Value {
	return a.items[i]
}

// Items returns a copy of the items.
func (a *Array) Items() []Value {
	return append([]Value(nil), a.items...)
}

// promote wraps a scalar in a one-element array. Arrays are returned as is.
func promote(v Value) *Array {
	if a, ok := v.(*Array); ok {
		return a
	}
	return &Array{elem: v.Kind(), items: []Value{v}}
}

// sequence returns the items of an Array or List.
func sequence(v Value) ([]Value, bool) {
	switch v := v.(type) {
	case *Array:
		return v.items, true
	case List:
		return v, true
	}
	return nil, false
}
