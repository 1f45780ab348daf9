package expressions

import (
	"fmt"
	"time"

	"github.com/PavelStransky/expressions/ie"
)

// Object is a user-defined value that persists itself through the record
// stream. Domain types register their tags with a registry chained to
// Factory.
type Object interface {
	Value
	ie.Object
}

// Tags of the composite values.
const (
	TagPoint       = "point"
	TagVector      = "vector"
	TagPointVector = "pointvector"
	TagMatrix      = "matrix"
	TagArray       = "array"
	TagList        = "list"
	TagContext     = "context"
)

var factory = ie.NewRegistry(nil).
	Register(TagPoint, 1, func() ie.Object { return new(Point) }).
	Register(TagVector, 1, func() ie.Object { return new(Vector) }).
	Register(TagPointVector, 1, func() ie.Object { return new(PointVector) }).
	Register(TagMatrix, 1, func() ie.Object { return new(Matrix) }).
	Register(TagArray, 1, func() ie.Object { return new(Array) }).
	Register(TagList, 1, func() ie.Object { return new(List) }).
	Register(TagContext, 1, func() ie.Object { return NewContext() })

// Factory returns the factory for every value kind. Subsystems with their
// own objects chain to it:
//
//	f := ie.NewRegistry(expressions.Factory()).Register("system", 1, newSystem)
func Factory() ie.Factory {
	return factory
}

// WriteValue writes a value as one record, with nested records for its
// parts.
func WriteValue(e *ie.Export, v Value) error {
	x, err := native(v)
	if err != nil {
		return err
	}
	return e.Write(x)
}

// ReadValue reads the next record as a value. At the end of the input, the
// result is nil with no error.
func ReadValue(i *ie.Import) (Value, error) {
	x, err := i.Read()
	if err != nil || x == nil {
		return nil, err
	}
	return fromNative(x)
}

// native converts a value to what Export.Write accepts.
func native(v Value) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, &ie.TypeError{Type: "null"}
	case Int:
		return int64(v), nil
	case Real:
		return float64(v), nil
	case Bool:
		return bool(v), nil
	case String:
		return string(v), nil
	case DateTime:
		return v.Time, nil
	case TimeSpan:
		return time.Duration(v), nil
	case Point:
		return &v, nil
	case Vector:
		return &v, nil
	case PointVector:
		return &v, nil
	case List:
		return &v, nil
	case Object:
		return v, nil
	}
	return nil, &ie.TypeError{Type: TypeName(v)}
}

// fromNative converts what Import.Read returns to a value.
func fromNative(x any) (Value, error) {
	switch x := x.(type) {
	case int64:
		return Int(x), nil
	case float64:
		return Real(x), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case time.Time:
		return DateTime{x}, nil
	case time.Duration:
		return TimeSpan(x), nil
	case *Point:
		return *x, nil
	case *Vector:
		return *x, nil
	case *PointVector:
		return *x, nil
	case *List:
		return *x, nil
	case Value:
		return x, nil
	}
	return nil, &ie.FormatError{Msg: fmt.Sprintf("record of type %T is not a value", x)}
}

// readFloat reads a nested float record.
func readFloat(i *ie.Import, what string) (float64, error) {
	x, err := i.Read()
	if err != nil {
		return 0, err
	}
	f, ok := x.(float64)
	if !ok {
		return 0, &ie.FormatError{Msg: fmt.Sprintf("%s is %T, want float64", what, x)}
	}
	return f, nil
}

// readLength reads the leading Param of a sequence holding its length.
func readLength(i *ie.Import, what string) (int, error) {
	var p ie.Param
	if err := p.Import(i); err != nil {
		return 0, err
	}
	n, err := ie.As(&p, 0)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &ie.FormatError{Msg: fmt.Sprintf("%s length %d", what, n)}
	}
	return n, nil
}

func (Point) Tag() string { return TagPoint }

func (p Point) Export(e *ie.Export) error {
	var q ie.Param
	q.Add(p.X, "x", "").Add(p.Y, "y", "")
	return q.Export(e)
}

func (p *Point) Import(i *ie.Import) error {
	var q ie.Param
	if err := q.Import(i); err != nil {
		return err
	}
	var err error
	if p.X, err = ie.As(&q, 0.0); err != nil {
		return err
	}
	p.Y, err = ie.As(&q, 0.0)
	return err
}

func (Vector) Tag() string { return TagVector }

func (v Vector) Export(e *ie.Export) error {
	var p ie.Param
	if err := p.Add(len(v), "length", "").Export(e); err != nil {
		return err
	}
	for _, x := range v {
		if err := e.Write(x); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vector) Import(i *ie.Import) error {
	n, err := readLength(i, "vector")
	if err != nil {
		return err
	}
	r := make(Vector, 0, min(n, 1<<16))
	for k := 0; k < n; k++ {
		x, err := readFloat(i, "vector element")
		if err != nil {
			return err
		}
		r = append(r, x)
	}
	*v = r
	return nil
}

func (PointVector) Tag() string { return TagPointVector }

func (v PointVector) Export(e *ie.Export) error {
	var p ie.Param
	if err := p.Add(len(v), "length", "").Export(e); err != nil {
		return err
	}
	for _, q := range v {
		if err := e.Write(q.X); err != nil {
			return err
		}
		if err := e.Write(q.Y); err != nil {
			return err
		}
	}
	return nil
}

func (v *PointVector) Import(i *ie.Import) error {
	n, err := readLength(i, "pointvector")
	if err != nil {
		return err
	}
	r := make(PointVector, 0, min(n, 1<<16))
	for k := 0; k < n; k++ {
		x, err := readFloat(i, "point x")
		if err != nil {
			return err
		}
		y, err := readFloat(i, "point y")
		if err != nil {
			return err
		}
		r = append(r, Point{x, y})
	}
	*v = r
	return nil
}

func (*Matrix) Tag() string { return TagMatrix }

func (m *Matrix) Export(e *ie.Export) error {
	var p ie.Param
	if err := p.Add(m.rows, "rows", "").Add(m.cols, "cols", "").Export(e); err != nil {
		return err
	}
	for _, x := range m.data {
		if err := e.Write(x); err != nil {
			return err
		}
	}
	return nil
}

func (m *Matrix) Import(i *ie.Import) error {
	var p ie.Param
	if err := p.Import(i); err != nil {
		return err
	}
	rows, err := ie.As(&p, 0)
	if err != nil {
		return err
	}
	cols, err := ie.As(&p, 0)
	if err != nil {
		return err
	}
	if rows <= 0 || cols <= 0 || rows > 1<<24/cols {
		return &ie.FormatError{Msg: fmt.Sprintf("matrix dimensions %dx%d", rows, cols)}
	}
	data := make([]float64, rows*cols)
	for k := range data {
		if data[k], err = readFloat(i, "matrix element"); err != nil {
			return err
		}
	}
	*m = Matrix{rows: rows, cols: cols, data: data}
	return nil
}

func (*Array) Tag() string { return TagArray }

func (a *Array) Export(e *ie.Export) error {
	var p ie.Param
	if err := p.Add(a.elem.String(), "elem", "element kind").Add(len(a.items), "length", "").Export(e); err != nil {
		return err
	}
	for _, v := range a.items {
		if err := WriteValue(e, v); err != nil {
			return err
		}
	}
	return nil
}

func (a *Array) Import(i *ie.Import) error {
	var p ie.Param
	if err := p.Import(i); err != nil {
		return err
	}
	name, err := ie.As(&p, "")
	if err != nil {
		return err
	}
	elem, ok := kindByName(name)
	if !ok {
		return &ie.FormatError{Msg: "unknown array element kind " + name}
	}
	n, err := ie.As(&p, 0)
	if err != nil {
		return err
	}
	items, err := readValues(i, n)
	if err != nil {
		return err
	}
	r, err := NewArray(elem, items...)
	if err != nil {
		return &ie.FormatError{Msg: "array items", Err: err}
	}
	*a = *r
	return nil
}

func (List) Tag() string { return TagList }

func (l List) Export(e *ie.Export) error {
	var p ie.Param
	if err := p.Add(len(l), "length", "").Export(e); err != nil {
		return err
	}
	for _, v := range l {
		if err := WriteValue(e, v); err != nil {
			return err
		}
	}
	return nil
}

func (l *List) Import(i *ie.Import) error {
	n, err := readLength(i, "list")
	if err != nil {
		return err
	}
	items, err := readValues(i, n)
	if err != nil {
		return err
	}
	*l = items
	return nil
}

func readValues(i *ie.Import, n int) ([]Value, error) {
	if n < 0 {
		return nil, &ie.FormatError{Msg: fmt.Sprintf("sequence length %d", n)}
	}
	items := make([]Value, 0, min(n, 1<<16))
	for k := 0; k < n; k++ {
		v, err := ReadValue(i)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, &ie.FormatError{Msg: fmt.Sprintf("sequence ends after %d of %d items", k, n)}
		}
		items = append(items, v)
	}
	return items, nil
}

func kindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && Kind(k) != KindNone {
			return Kind(k), true
		}
	}
	return KindNone, false
}

var (
	_ Object = (*Point)(nil)
	_ Object = (*Vector)(nil)
	_ Object = (*PointVector)(nil)
	_ Object = (*Matrix)(nil)
	_ Object = (*Array)(nil)
	_ Object = (*List)(nil)
	_ Object = (*Context)(nil)
)
