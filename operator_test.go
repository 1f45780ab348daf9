package expressions_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavelStransky/expressions"
)

func array(elem expressions.Kind, items ...expressions.Value) *expressions.Array {
	a, err := expressions.NewArray(elem, items...)
	if err != nil {
		panic(err)
	}
	return a
}

func ints(xs ...int64) *expressions.Array {
	items := make([]expressions.Value, len(xs))
	for i, x := range xs {
		items[i] = expressions.Int(x)
	}
	return array(expressions.KindInt, items...)
}

func reals(xs ...float64) *expressions.Array {
	items := make([]expressions.Value, len(xs))
	for i, x := range xs {
		items[i] = expressions.Real(x)
	}
	return array(expressions.KindReal, items...)
}

func matrix(rows, cols int, data ...float64) *expressions.Matrix {
	m, err := expressions.NewMatrix(rows, cols, data)
	if err != nil {
		panic(err)
	}
	return m
}

func TestEvaluate(t *testing.T) {
	type (
		I = expressions.Int
		R = expressions.Real
		S = expressions.String
		B = expressions.Bool
		P = expressions.Point
		V = expressions.Vector
	)
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		op   *expressions.Operator
		l, r expressions.Value
		want expressions.Value
	}{
		{"int-plus", expressions.Plus, I(2), I(3), I(5)},
		{"int-divide", expressions.Divide, I(7), I(2), I(3)},
		{"int-divide-neg", expressions.Divide, I(-7), I(2), I(-3)},
		{"real-divide", expressions.Divide, R(7), R(2), R(3.5)},
		{"int-modulo", expressions.Modulo, I(7), I(3), I(1)},
		{"real-power", expressions.Power, R(2), R(3), R(8)},
		{"int-power", expressions.Power, I(3), I(4), I(81)},
		{"int-power-neg", expressions.Power, I(2), I(-1), R(0.5)},
		{"widen-left", expressions.Plus, I(1), R(0.5), R(1.5)},
		{"widen-right", expressions.Times, R(1.5), I(2), R(3)},
		{"widen-divide", expressions.Divide, I(1), R(4), R(0.25)},
		{"concat", expressions.Plus, S("a"), S("b"), S("ab")},
		{"stringify-right", expressions.Plus, S("a"), I(1), S("a1")},
		{"stringify-left", expressions.Plus, R(1.5), S("x"), S("1.5x")},
		{"repeat", expressions.Times, S("ab"), I(3), S("ababab")},
		{"equals", expressions.Equals, I(1), I(1), B(true)},
		{"equals-strings", expressions.Equals, S("a"), S("b"), B(false)},
		{"not-equals", expressions.NotEquals, I(1), I(2), B(true)},
		{"less", expressions.Less, I(1), I(2), B(true)},
		{"less-widened", expressions.Less, I(1), R(0.5), B(false)},
		{"greater-equal", expressions.GreaterEqual, S("b"), S("a"), B(true)},
		{"less-nan", expressions.Less, R(math.NaN()), R(1), B(false)},
		{"and", expressions.And, B(true), B(false), B(false)},
		{"or", expressions.Or, B(true), B(false), B(true)},
		{"point-plus", expressions.Plus, P{1, 2}, P{3, 4}, P{4, 6}},
		{"point-scale", expressions.Times, R(2), P{1, 2}, P{2, 4}},
		{"vector-plus", expressions.Plus, V{1, 2}, V{3, 4}, V{4, 6}},
		{"vector-dot", expressions.Times, V{1, 2}, V{3, 4}, R(11)},
		{"vector-scale", expressions.Times, V{1, 2}, I(3), V{3, 6}},
		{"matrix-vector", expressions.Times, matrix(2, 2, 1, 2, 3, 4), V{1, 1}, V{3, 7}},
		{"matrix-matrix", expressions.Times, matrix(2, 2, 1, 2, 3, 4), matrix(2, 1, 1, 1), matrix(2, 1, 3, 7)},
		{"vector-over-matrix", expressions.Divide, V{2, 4}, matrix(2, 2, 2, 0, 0, 4), V{1, 1}},
		{"matrix-over-matrix", expressions.Divide, matrix(1, 2, 2, 8), matrix(2, 2, 2, 0, 0, 4), matrix(1, 2, 1, 2)},
		{"datetime-plus", expressions.Plus, expressions.DateTime{Time: day}, expressions.TimeSpan(time.Hour), expressions.DateTime{Time: day.Add(time.Hour)}},
		{"datetime-minus", expressions.Minus, expressions.DateTime{Time: day.Add(time.Hour)}, expressions.DateTime{Time: day}, expressions.TimeSpan(time.Hour)},
		{"interval", expressions.Interval, I(1), I(5), ints(1, 2, 3, 4, 5)},
		{"interval-descending", expressions.Interval, I(5), I(1), ints(5, 4, 3, 2, 1)},
		{"interval-single", expressions.Interval, I(3), I(3), ints(3)},
		{"generate", expressions.Generate, I(7), I(3), ints(7, 7, 7)},
		{"generate-empty", expressions.Generate, I(7), I(0), ints()},
		{"broadcast-right", expressions.Plus, ints(1, 2, 3), I(10), ints(11, 12, 13)},
		{"broadcast-left", expressions.Minus, I(10), ints(1, 2), ints(9, 8)},
		{"broadcast-pair", expressions.Times, ints(1, 2), ints(3, 4), ints(3, 8)},
		{"broadcast-widen", expressions.Times, ints(1, 2), R(0.5), reals(0.5, 1)},
		{"broadcast-compare", expressions.Less, ints(1, 5), I(3), array(expressions.KindBool, B(true), B(false))},
		{"broadcast-nested", expressions.Plus, expressions.List{I(1), ints(1, 2)}, I(1), expressions.List{I(2), ints(2, 3)}},
		{"broadcast-interval", expressions.Interval, I(1), ints(2, 3), array(expressions.KindArray, ints(1, 2), ints(1, 2, 3))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.op.Evaluate(c.l, c.r)
			require.NoError(t, err)
			assert.Truef(t, expressions.Equal(c.want, got), "want %v (%s), got %v (%s)",
				c.want, expressions.TypeName(c.want), got, expressions.TypeName(got))
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	cases := []struct {
		name   string
		op     *expressions.Operator
		l, r   expressions.Value
		target any
	}{
		{"no-kernel", expressions.Minus, expressions.String("a"), expressions.Int(1), new(*expressions.OperandError)},
		{"bool-plus", expressions.Plus, expressions.Bool(true), expressions.Bool(true), new(*expressions.OperandError)},
		{"nil", expressions.Plus, nil, expressions.Int(1), new(*expressions.OperandError)},
		{"length", expressions.Plus, ints(1, 2), ints(1, 2, 3), new(*expressions.LengthError)},
		{"int-divide-zero", expressions.Divide, expressions.Int(1), expressions.Int(0), new(*expressions.DomainError)},
		{"real-zero-over-zero", expressions.Divide, expressions.Real(0), expressions.Real(0), new(*expressions.DomainError)},
		{"negative-repeat", expressions.Times, expressions.String("a"), expressions.Int(-1), new(*expressions.DomainError)},
		{"negative-generate", expressions.Generate, expressions.Int(1), expressions.Int(-1), new(*expressions.DomainError)},
		{"negative-root", expressions.Power, expressions.Real(-8), expressions.Real(1.0 / 3), new(*expressions.DomainError)},
		{"dot-shape", expressions.Times, expressions.Vector{1, 2}, expressions.Vector{1}, new(*expressions.ShapeError)},
		{"matmul-shape", expressions.Times, matrix(2, 2, 1, 2, 3, 4), matrix(1, 2, 1, 2), new(*expressions.ShapeError)},
		{"inverse-shape", expressions.Divide, expressions.Vector{1, 2}, matrix(1, 2, 1, 2), new(*expressions.ShapeError)},
		{"singular", expressions.Divide, expressions.Vector{1, 2}, matrix(2, 2, 1, 2, 2, 4), new(*expressions.SingularError)},
		{"broadcast-inner", expressions.Minus, ints(1, 2), expressions.String("a"), new(*expressions.OperandError)},
		{"power-shape", expressions.Power, expressions.Vector{1, 2}, expressions.Vector{1}, new(*expressions.ShapeError)},
		{"matrix-power-shape", expressions.Power, matrix(2, 2, 1, 2, 3, 4), matrix(1, 2, 1, 2), new(*expressions.ShapeError)},
		{"huge-generate", expressions.Generate, expressions.Int(1), expressions.Int(math.MaxInt64), new(*expressions.DomainError)},
		{"long-generate", expressions.Generate, expressions.Int(1), expressions.Int(expressions.MaxCollectionLen + 1), new(*expressions.DomainError)},
		{"wide-interval", expressions.Interval, expressions.Int(-1), expressions.Int(math.MaxInt64), new(*expressions.DomainError)},
		{"wide-interval-down", expressions.Interval, expressions.Int(math.MaxInt64), expressions.Int(math.MinInt64), new(*expressions.DomainError)},
		{"long-interval", expressions.Interval, expressions.Int(0), expressions.Int(expressions.MaxCollectionLen), new(*expressions.DomainError)},
		{"long-repeat", expressions.Times, expressions.String("ab"), expressions.Int(math.MaxInt64), new(*expressions.DomainError)},
		{"int-plus-overflow", expressions.Plus, expressions.Int(math.MaxInt64), expressions.Int(1), new(*expressions.DomainError)},
		{"int-minus-overflow", expressions.Minus, expressions.Int(math.MinInt64), expressions.Int(1), new(*expressions.DomainError)},
		{"int-times-overflow", expressions.Times, expressions.Int(1 << 32), expressions.Int(1 << 32), new(*expressions.DomainError)},
		{"int-times-min", expressions.Times, expressions.Int(math.MinInt64), expressions.Int(-1), new(*expressions.DomainError)},
		{"int-power-overflow", expressions.Power, expressions.Int(10), expressions.Int(30), new(*expressions.DomainError)},
		{"int-power-huge", expressions.Power, expressions.Int(2), expressions.Int(math.MaxInt64), new(*expressions.DomainError)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := c.op.Evaluate(c.l, c.r)
			assert.Nil(t, v)
			assert.ErrorAs(t, err, c.target)
		})
	}
}

func TestIntLimits(t *testing.T) {
	cases := []struct {
		name string
		op   *expressions.Operator
		l, r expressions.Int
		want expressions.Value
	}{
		{"plus-max", expressions.Plus, math.MaxInt64 - 1, 1, expressions.Int(math.MaxInt64)},
		{"minus-min", expressions.Minus, math.MinInt64 + 1, 1, expressions.Int(math.MinInt64)},
		{"times-min", expressions.Times, math.MinInt64 / 2, 2, expressions.Int(math.MinInt64)},
		{"times-zero", expressions.Times, math.MinInt64, 0, expressions.Int(0)},
		{"power-62", expressions.Power, 2, 62, expressions.Int(1 << 62)},
		{"power-18", expressions.Power, 10, 18, expressions.Int(1e18)},
		{"power-neg-one", expressions.Power, -1, math.MaxInt64, expressions.Int(-1)},
		{"power-min", expressions.Power, -2, 63, expressions.Int(math.MinInt64)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := c.op.Evaluate(c.l, c.r)
			require.NoError(t, err)
			assert.Equal(t, c.want, v)
		})
	}
}

func TestIntervalEdges(t *testing.T) {
	v, err := expressions.Interval.Evaluate(expressions.Int(math.MaxInt64-1), expressions.Int(math.MaxInt64))
	require.NoError(t, err)
	assert.Equal(t, ints(math.MaxInt64-1, math.MaxInt64), v)
	v, err = expressions.Interval.Evaluate(expressions.Int(math.MinInt64+1), expressions.Int(math.MinInt64))
	require.NoError(t, err)
	assert.Equal(t, ints(math.MinInt64+1, math.MinInt64), v)
}

func TestOperandErrorDetail(t *testing.T) {
	_, err := expressions.Minus.Evaluate(expressions.String("abc"), expressions.Bool(true))
	var oe *expressions.OperandError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "-", oe.Op)
	assert.Equal(t, "string", oe.Left)
	assert.Equal(t, "bool", oe.Right)
	assert.Equal(t, "left operand: abc\nright operand: true", oe.Detail())
}

func TestLengthError(t *testing.T) {
	_, err := expressions.Plus.Evaluate(ints(1, 2), ints(1, 2, 3))
	var le *expressions.LengthError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 2, le.Left)
	assert.Equal(t, 3, le.Right)
	assert.Equal(t, "array lengths differ for +: 2 and 3", err.Error())
}

func TestOperators(t *testing.T) {
	seen := make(map[string]bool)
	for _, op := range expressions.Operators() {
		assert.False(t, seen[op.Symbol()], "duplicate operator %s", op)
		seen[op.Symbol()] = true
		assert.Same(t, op, expressions.LookupOperator(op.Symbol()))
	}
	assert.Nil(t, expressions.LookupOperator("$"))
	assert.Less(t, expressions.Or.Priority(), expressions.And.Priority())
	assert.Less(t, expressions.And.Priority(), expressions.Equals.Priority())
	assert.Less(t, expressions.Equals.Priority(), expressions.Interval.Priority())
	assert.Less(t, expressions.Plus.Priority(), expressions.Times.Priority())
	assert.Less(t, expressions.Times.Priority(), expressions.Power.Priority())
	assert.Equal(t, expressions.Plus.Priority(), expressions.Minus.Priority())
}
