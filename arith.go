package expressions

import (
	"math"
	"strings"
	"time"
)

// Arithmetic kernels. Each operator switches on the left operand to an entry
// function for that kind, which switches on the right operand.

func plus(l, r Value) (Value, error) {
	switch l := l.(type) {
	case Int:
		if r, ok := r.(Int); ok {
			return plusInt(l, r)
		}
	case Real:
		return plusReal(l, r)
	case String:
		if r, ok := r.(String); ok {
			return l + r, nil
		}
	case Point:
		if r, ok := r.(Point); ok {
			return Point{l.X + r.X, l.Y + r.Y}, nil
		}
	case Vector:
		return plusVector(l, r)
	case PointVector:
		if r, ok := r.(Point); ok {
			return translate(l, r, 1), nil
		}
	case *Matrix:
		return plusMatrix(l, r)
	case DateTime:
		if r, ok := r.(TimeSpan); ok {
			return DateTime{l.Add(time.Duration(r))}, nil
		}
	case TimeSpan:
		switch r := r.(type) {
		case TimeSpan:
			return l + r, nil
		case DateTime:
			return DateTime{r.Add(time.Duration(l))}, nil
		}
	}
	return nil, errNoKernel
}

func plusReal(l Real, r Value) (Value, error) {
	x := float64(l)
	switch r := r.(type) {
	case Real:
		return l + r, nil
	case Vector:
		return mapVector(r, func(y float64) float64 { return x + y }), nil
	case *Matrix:
		return mapMatrix(r, func(y float64) float64 { return x + y }), nil
	}
	return nil, errNoKernel
}

func plusVector(l Vector, r Value) (Value, error) {
	switch r := r.(type) {
	case Real:
		y := float64(r)
		return mapVector(l, func(x float64) float64 { return x + y }), nil
	case Vector:
		return zipVector("+", l, r, func(x, y float64) float64 { return x + y })
	}
	return nil, errNoKernel
}

func plusMatrix(l *Matrix, r Value) (Value, error) {
	switch r := r.(type) {
	case Real:
		y := float64(r)
		return mapMatrix(l, func(x float64) float64 { return x + y }), nil
	case *Matrix:
		return zipMatrix("+", l, r, func(x, y float64) float64 { return x + y })
	}
	return nil, errNoKernel
}

func minus(l, r Value) (Value, error) {
	switch l := l.(type) {
	case Int:
		if r, ok := r.(Int); ok {
			return minusInt(l, r)
		}
	case Real:
		return minusReal(l, r)
	case Point:
		if r, ok := r.(Point); ok {
			return Point{l.X - r.X, l.Y - r.Y}, nil
		}
	case Vector:
		return minusVector(l, r)
	case PointVector:
		if r, ok := r.(Point); ok {
			return translate(l, r, -1), nil
		}
	case *Matrix:
		return minusMatrix(l, r)
	case DateTime:
		switch r := r.(type) {
		case TimeSpan:
			return DateTime{l.Add(-time.Duration(r))}, nil
		case DateTime:
			return TimeSpan(l.Sub(r.Time)), nil
		}
	case TimeSpan:
		if r, ok := r.(TimeSpan); ok {
			return l - r, nil
		}
	}
	return nil, errNoKernel
}

func minusReal(l Real, r Value) (Value, error) {
	x := float64(l)
	switch r := r.(type) {
	case Real:
		return l - r, nil
	case Vector:
		return mapVector(r, func(y float64) float64 { return x - y }), nil
	case *Matrix:
		return mapMatrix(r, func(y float64) float64 { return x - y }), nil
	}
	return nil, errNoKernel
}

func minusVector(l Vector, r Value) (Value, error) {
	switch r := r.(type) {
	case Real:
		y := float64(r)
		return mapVector(l, func(x float64) float64 { return x - y }), nil
	case Vector:
		return zipVector("-", l, r, func(x, y float64) float64 { return x - y })
	}
	return nil, errNoKernel
}

func minusMatrix(l *Matrix, r Value) (Value, error) {
	switch r := r.(type) {
	case Real:
		y := float64(r)
		return mapMatrix(l, func(x float64) float64 { return x - y }), nil
	case *Matrix:
		return zipMatrix("-", l, r, func(x, y float64) float64 { return x - y })
	}
	return nil, errNoKernel
}

// translate shifts every point of v by sign·d.
func translate(v PointVector, d Point, sign float64) PointVector {
	r := make(PointVector, len(v))
	for i, p := range v {
		r[i] = Point{p.X + sign*d.X, p.Y + sign*d.Y}
	}
	return r
}

func times(l, r Value) (Value, error) {
	switch l := l.(type) {
	case Int:
		if r, ok := r.(Int); ok {
			return timesInt(l, r)
		}
	case Real:
		return timesReal(l, r)
	case String:
		if r, ok := r.(Int); ok {
			if r < 0 || len(l) > 0 && int64(r) > MaxCollectionLen/int64(len(l)) {
				return nil, &DomainError{X: r, Arg: 2, Func: "*"}
			}
			return String(strings.Repeat(string(l), int(r))), nil
		}
	case Point:
		if r, ok := r.(Real); ok {
			return Point{l.X * float64(r), l.Y * float64(r)}, nil
		}
	case Vector:
		return timesVector(l, r)
	case *Matrix:
		return timesMatrix(l, r)
	case TimeSpan:
		if r, ok := r.(Real); ok {
			return TimeSpan(float64(l) * float64(r)), nil
		}
	}
	return nil, errNoKernel
}

func timesReal(l Real, r Value) (Value, error) {
	x := float64(l)
	switch r := r.(type) {
	case Real:
		return l * r, nil
	case Point:
		return Point{x * r.X, x * r.Y}, nil
	case Vector:
		return mapVector(r, func(y float64) float64 { return x * y }), nil
	case *Matrix:
		return mapMatrix(r, func(y float64) float64 { return x * y }), nil
	case TimeSpan:
		return TimeSpan(x * float64(r)), nil
	}
	return nil, errNoKernel
}

func timesVector(l Vector, r Value) (Value, error) {
	switch r := r.(type) {
	case Real:
		y := float64(r)
		return mapVector(l, func(x float64) float64 { return x * y }), nil
	case Vector:
		if len(l) != len(r) {
			return nil, &ShapeError{Op: "*", Left: shapeOf(l), Right: shapeOf(r)}
		}
		var dot float64
		for i := range l {
			dot += l[i] * r[i]
		}
		return Real(dot), nil
	case *Matrix:
		return vecMat("*", l, r)
	}
	return nil, errNoKernel
}

func timesMatrix(l *Matrix, r Value) (Value, error) {
	switch r := r.(type) {
	case Real:
		y := float64(r)
		return mapMatrix(l, func(x float64) float64 { return x * y }), nil
	case Vector:
		return matVec("*", l, r)
	case *Matrix:
		return matMul("*", l, r)
	}
	return nil, errNoKernel
}

func divide(l, r Value) (Value, error) {
	switch l := l.(type) {
	case Int:
		if r, ok := r.(Int); ok {
			if r == 0 {
				return nil, &DomainError{X: r, Arg: 2, Func: "/"}
			}
			// Go integer division truncates toward zero.
			return l / r, nil
		}
	case Real:
		if r, ok := r.(Real); ok {
			return divideReal(l, r)
		}
	case Point:
		if r, ok := r.(Real); ok {
			return Point{l.X / float64(r), l.Y / float64(r)}, nil
		}
	case Vector:
		return divideVector(l, r)
	case *Matrix:
		return divideMatrix(l, r)
	case TimeSpan:
		switch r := r.(type) {
		case Real:
			return TimeSpan(float64(l) / float64(r)), nil
		case TimeSpan:
			if r == 0 {
				return nil, &DomainError{X: r, Arg: 2, Func: "/"}
			}
			return Real(float64(l) / float64(r)), nil
		}
	}
	return nil, errNoKernel
}

func divideReal(l, r Real) (Value, error) {
	if l == 0 && r == 0 {
		return nil, &DomainError{X: r, Arg: 2, Func: "/"}
	}
	if math.IsInf(float64(l), 0) && math.IsInf(float64(r), 0) {
		return nil, &DomainError{X: l, Arg: 1, Func: "/"}
	}
	return l / r, nil
}

func divideVector(l Vector, r Value) (Value, error) {
	switch r := r.(type) {
	case Real:
		y := float64(r)
		return mapVector(l, func(x float64) float64 { return x / y }), nil
	case *Matrix:
		inv, err := r.Inverse()
		if err != nil {
			return nil, err
		}
		return vecMat("/", l, inv)
	}
	return nil, errNoKernel
}

func divideMatrix(l *Matrix, r Value) (Value, error) {
	switch r := r.(type) {
	case Real:
		y := float64(r)
		return mapMatrix(l, func(x float64) float64 { return x / y }), nil
	case *Matrix:
		inv, err := r.Inverse()
		if err != nil {
			return nil, err
		}
		return matMul("/", l, inv)
	}
	return nil, errNoKernel
}

func modulo(l, r Value) (Value, error) {
	switch l := l.(type) {
	case Int:
		if r, ok := r.(Int); ok {
			if r == 0 {
				return nil, &DomainError{X: r, Arg: 2, Func: "%"}
			}
			return l % r, nil
		}
	case Real:
		if r, ok := r.(Real); ok {
			if r == 0 {
				return nil, &DomainError{X: r, Arg: 2, Func: "%"}
			}
			return Real(math.Mod(float64(l), float64(r))), nil
		}
	}
	return nil, errNoKernel
}

func power(l, r Value) (Value, error) {
	switch l := l.(type) {
	case Int:
		if r, ok := r.(Int); ok {
			return powerInt(l, r)
		}
	case Real:
		if r, ok := r.(Real); ok {
			return powerReal(l, r)
		}
	case Vector:
		switch r := r.(type) {
		case Real:
			y := float64(r)
			return mapVector(l, func(x float64) float64 { return math.Pow(x, y) }), nil
		case Vector:
			return zipVector("^", l, r, math.Pow)
		}
	case *Matrix:
		switch r := r.(type) {
		case Real:
			y := float64(r)
			return mapMatrix(l, func(x float64) float64 { return math.Pow(x, y) }), nil
		case *Matrix:
			return zipMatrix("^", l, r, math.Pow)
		}
	}
	return nil, errNoKernel
}

// Integer kernels report a result that does not fit in 64 bits as a
// DomainError on the right operand.

func plusInt(l, r Int) (Value, error) {
	s := l + r
	if (l >= 0) == (r >= 0) && (s >= 0) != (l >= 0) {
		return nil, &DomainError{X: r, Arg: 2, Func: "+"}
	}
	return s, nil
}

func minusInt(l, r Int) (Value, error) {
	d := l - r
	if (l >= 0) != (r >= 0) && (d >= 0) != (l >= 0) {
		return nil, &DomainError{X: r, Arg: 2, Func: "-"}
	}
	return d, nil
}

func timesInt(l, r Int) (Value, error) {
	p, ok := mulInt(l, r)
	if !ok {
		return nil, &DomainError{X: r, Arg: 2, Func: "*"}
	}
	return p, nil
}

// mulInt multiplies and reports whether the product fits.
func mulInt(x, y Int) (Int, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	if x == -1 && y == math.MinInt64 || y == -1 && x == math.MinInt64 {
		return 0, false
	}
	p := x * y
	return p, p/y == x
}

// powerInt computes x^y by squaring. Negative exponents give a Real.
func powerInt(x, y Int) (Value, error) {
	if y < 0 {
		return Real(math.Pow(float64(x), float64(y))), nil
	}
	exp := y
	r := Int(1)
	for y > 0 {
		var ok bool
		if y&1 != 0 {
			if r, ok = mulInt(r, x); !ok {
				return nil, &DomainError{X: exp, Arg: 2, Func: "^"}
			}
		}
		y >>= 1
		if y == 0 {
			break
		}
		if x, ok = mulInt(x, x); !ok {
			return nil, &DomainError{X: exp, Arg: 2, Func: "^"}
		}
	}
	return r, nil
}

func powerReal(l, r Real) (Value, error) {
	x, y := float64(l), float64(r)
	z := math.Pow(x, y)
	if math.IsNaN(z) && !math.IsNaN(x) && !math.IsNaN(y) {
		// Negative base with a non-integer exponent.
		return nil, &DomainError{X: l, Arg: 1, Func: "^"}
	}
	return Real(z), nil
}
