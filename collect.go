package expressions

// Collection constructors.

// MaxCollectionLen bounds the length of what #, ... and string repetition
// build. Longer requests are a DomainError.
const MaxCollectionLen = 1 << 24

// generate replicates the left value count times.
func generate(l, r Value) (Value, error) {
	n, ok := r.(Int)
	if !ok {
		return nil, errNoKernel
	}
	if n < 0 || n > MaxCollectionLen {
		return nil, &DomainError{X: n, Arg: 2, Func: "#"}
	}
	items := make([]Value, n)
	for i := range items {
		items[i] = l
	}
	return &Array{elem: l.Kind(), items: items}, nil
}

// interval builds the inclusive integer range from a to b, descending when
// b < a.
func interval(l, r Value) (Value, error) {
	a, ok := l.(Int)
	if !ok {
		return nil, errNoKernel
	}
	b, ok := r.(Int)
	if !ok {
		return nil, errNoKernel
	}
	step := Int(1)
	span := uint64(b) - uint64(a)
	if b < a {
		step, span = -1, uint64(a)-uint64(b)
	}
	if span >= MaxCollectionLen {
		return nil, &DomainError{X: b, Arg: 2, Func: "..."}
	}
	items := make([]Value, 0, span+1)
	for x := a; ; x += step {
		items = append(items, x)
		if x == b {
			break
		}
	}
	return &Array{elem: KindInt, items: items}, nil
}
