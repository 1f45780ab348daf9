package expressions

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Point is a point in the plane.
type Point struct {
	X, Y float64
}

// Vector is a real vector.
type Vector []float64

// PointVector is a sequence of points, e.g. a trajectory.
type PointVector []Point

// Matrix is a dense real matrix stored in row-major order. Matrices always
// have at least one row and one column.
type Matrix struct {
	rows, cols int
	data       []float64
}

func (Point) Kind() Kind       { return KindPoint }
func (Vector) Kind() Kind      { return KindVector }
func (PointVector) Kind() Kind { return KindPointVector }
func (*Matrix) Kind() Kind     { return KindMatrix }

func (p Point) String() string {
	return "(" + fmtFloat(p.X) + ", " + fmtFloat(p.Y) + ")"
}

func (v Vector) String() string {
	var b strings.Builder
	b.WriteString("vector(")
	for i, x := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmtFloat(x))
	}
	b.WriteByte(')')
	return b.String()
}

func (v PointVector) String() string {
	var b strings.Builder
	b.WriteString("pointvector(")
	for i, p := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (m *Matrix) String() string {
	var b strings.Builder
	b.WriteString("matrix(")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmtFloat(m.data[i*m.cols+j]))
		}
	}
	b.WriteByte(')')
	return b.String()
}

// NewMatrix creates a rows×cols matrix. If data is nil, the matrix is zero;
// otherwise data holds the elements in row-major order and is used directly.
func NewMatrix(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.New("expressions: matrix dimensions " + strconv.Itoa(rows) + "x" + strconv.Itoa(cols) + " must be positive")
	}
	if data == nil {
		data = make([]float64, rows*cols)
	}
	if len(data) != rows*cols {
		return nil, errors.New("expressions: " + strconv.Itoa(len(data)) + " elements for a " + strconv.Itoa(rows) + "x" + strconv.Itoa(cols) + " matrix")
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Matrix, error) {
	m, err := NewMatrix(n, n, nil)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m, nil
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// At returns the element in row i and column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Data returns a copy of the elements in row-major order.
func (m *Matrix) Data() []float64 {
	return append([]float64(nil), m.data...)
}

// Inverse returns the inverse of a square matrix.
func (m *Matrix) Inverse() (*Matrix, error) {
	if m.rows != m.cols {
		return nil, &ShapeError{Op: "inverse", Left: shapeOf(m)}
	}
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, &SingularError{Rows: m.rows}
		}
		// Ill-conditioned but invertible; the result stands.
	}
	return fromDense(&inv), nil
}

// dense wraps the matrix without copying.
func (m *Matrix) dense() *mat.Dense {
	return mat.NewDense(m.rows, m.cols, m.data)
}

func fromDense(d *mat.Dense) *Matrix {
	r, c := d.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, d.At(i, j))
		}
	}
	return &Matrix{rows: r, cols: c, data: data}
}

// mapMatrix applies f to every element of m.
func mapMatrix(m *Matrix, f func(float64) float64) *Matrix {
	data := make([]float64, len(m.data))
	for i, x := range m.data {
		data[i] = f(x)
	}
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

func mapVector(v Vector, f func(float64) float64) Vector {
	r := make(Vector, len(v))
	for i, x := range v {
		r[i] = f(x)
	}
	return r
}

// zipVector combines two vectors of equal length element-wise.
func zipVector(op string, a, b Vector, f func(x, y float64) float64) (Value, error) {
	if len(a) != len(b) {
		return nil, &ShapeError{Op: op, Left: shapeOf(a), Right: shapeOf(b)}
	}
	r := make(Vector, len(a))
	for i := range a {
		r[i] = f(a[i], b[i])
	}
	return r, nil
}

// zipMatrix combines two matrices of equal shape element-wise.
func zipMatrix(op string, a, b *Matrix, f func(x, y float64) float64) (Value, error) {
	if a.rows != b.rows || a.cols != b.cols {
		return nil, &ShapeError{Op: op, Left: shapeOf(a), Right: shapeOf(b)}
	}
	data := make([]float64, len(a.data))
	for i := range a.data {
		data[i] = f(a.data[i], b.data[i])
	}
	return &Matrix{rows: a.rows, cols: a.cols, data: data}, nil
}

// matMul computes a·b.
func matMul(op string, a, b *Matrix) (Value, error) {
	if a.cols != b.rows {
		return nil, &ShapeError{Op: op, Left: shapeOf(a), Right: shapeOf(b)}
	}
	var r mat.Dense
	r.Mul(a.dense(), b.dense())
	return fromDense(&r), nil
}

// matVec computes m·v with v as a column.
func matVec(op string, m *Matrix, v Vector) (Value, error) {
	if m.cols != len(v) {
		return nil, &ShapeError{Op: op, Left: shapeOf(m), Right: shapeOf(v)}
	}
	var r mat.VecDense
	r.MulVec(m.dense(), mat.NewVecDense(len(v), v))
	return vecFromDense(&r), nil
}

// vecMat computes v·m with v as a row.
func vecMat(op string, v Vector, m *Matrix) (Value, error) {
	if len(v) != m.rows {
		return nil, &ShapeError{Op: op, Left: shapeOf(v), Right: shapeOf(m)}
	}
	var r mat.VecDense
	r.MulVec(m.dense().T(), mat.NewVecDense(len(v), v))
	return vecFromDense(&r), nil
}

func vecFromDense(d *mat.VecDense) Vector {
	r := make(Vector, d.Len())
	for i := range r {
		r[i] = d.AtVec(i)
	}
	return r
}

// shapeOf describes the shape of a vector-like value for errors.
func shapeOf(v Value) string {
	switch v := v.(type) {
	case Vector:
		return "vector[" + strconv.Itoa(len(v)) + "]"
	case PointVector:
		return "pointvector[" + strconv.Itoa(len(v)) + "]"
	case *Matrix:
		return "matrix[" + strconv.Itoa(v.rows) + "x" + strconv.Itoa(v.cols) + "]"
	}
	return TypeName(v)
}
