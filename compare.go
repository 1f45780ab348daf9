package expressions

import "strings"

// equatable reports whether == and != have a kernel for two values of the
// same kind.
func equatable(k Kind) bool {
	switch k {
	case KindInt, KindReal, KindBool, KindString, KindDateTime, KindTimeSpan,
		KindPoint, KindVector, KindPointVector, KindMatrix:
		return true
	}
	return false
}

func equals(l, r Value) (Value, error) {
	if l.Kind() != r.Kind() || !equatable(l.Kind()) {
		return nil, errNoKernel
	}
	return Bool(Equal(l, r)), nil
}

func notEquals(l, r Value) (Value, error) {
	if l.Kind() != r.Kind() || !equatable(l.Kind()) {
		return nil, errNoKernel
	}
	return Bool(!Equal(l, r)), nil
}

// order compares two values of an ordered kind, returning -1, 0 or +1.
// ok is false when the pair has no ordering.
func order(l, r Value) (c int, ok bool) {
	switch l := l.(type) {
	case Int:
		if r, ok := r.(Int); ok {
			return cmp3(l < r, l > r), true
		}
	case Real:
		if r, ok := r.(Real); ok {
			return cmp3(l < r, l > r), true
		}
	case String:
		if r, ok := r.(String); ok {
			return strings.Compare(string(l), string(r)), true
		}
	case DateTime:
		if r, ok := r.(DateTime); ok {
			return l.Compare(r.Time), true
		}
	case TimeSpan:
		if r, ok := r.(TimeSpan); ok {
			return cmp3(l < r, l > r), true
		}
	}
	return 0, false
}

func cmp3(lt, gt bool) int {
	switch {
	case lt:
		return -1
	case gt:
		return 1
	}
	return 0
}

// ordered builds a comparison kernel from a predicate on order's result.
// NaN compares false under every predicate.
func ordered(pred func(c int) bool) func(l, r Value) (Value, error) {
	return func(l, r Value) (Value, error) {
		c, ok := order(l, r)
		if !ok {
			return nil, errNoKernel
		}
		if isNaN(l) || isNaN(r) {
			return Bool(false), nil
		}
		return Bool(pred(c)), nil
	}
}

func isNaN(v Value) bool {
	x, ok := v.(Real)
	return ok && x != x
}

var (
	less         = ordered(func(c int) bool { return c < 0 })
	greater      = ordered(func(c int) bool { return c > 0 })
	lessEqual    = ordered(func(c int) bool { return c <= 0 })
	greaterEqual = ordered(func(c int) bool { return c >= 0 })
)

func and(l, r Value) (Value, error) {
	if l, ok := l.(Bool); ok {
		if r, ok := r.(Bool); ok {
			return l && r, nil
		}
	}
	return nil, errNoKernel
}

func or(l, r Value) (Value, error) {
	if l, ok := l.(Bool); ok {
		if r, ok := r.(Bool); ok {
			return l || r, nil
		}
	}
	return nil, errNoKernel
}
