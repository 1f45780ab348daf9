package expressions_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavelStransky/expressions"
)

// pairFunc has one required numeric parameter and one optional string one.
func pairFunc() *expressions.FunctionDefinition {
	return expressions.NewFunction("pair", "Test function.", func(g *expressions.Guider, args *expressions.Arguments) (expressions.Value, error) {
		return expressions.List(args.Values(0)), nil
	}).CreateParameters(
		expressions.ParameterSpec{Name: "x", Required: true, Types: []expressions.Kind{expressions.KindInt, expressions.KindReal}},
		expressions.ParameterSpec{Name: "label", Types: []expressions.Kind{expressions.KindString}, Default: expressions.String("none")},
	)
}

func TestCheckArguments(t *testing.T) {
	f := pairFunc()
	cases := []struct {
		name  string
		args  []expressions.Value
		count bool
		index int
	}{
		{"ok-one", []expressions.Value{expressions.Int(1)}, false, -1},
		{"ok-two", []expressions.Value{expressions.Real(1), expressions.String("a")}, false, -1},
		{"none", nil, true, -1},
		{"three", []expressions.Value{expressions.Int(1), expressions.String("a"), expressions.String("b")}, true, -1},
		{"first-type", []expressions.Value{expressions.String("a")}, false, 0},
		{"second-type", []expressions.Value{expressions.Int(1), expressions.Int(2)}, false, 1},
		{"nil-skipped", []expressions.Value{nil}, false, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := f.CheckArguments(c.args)
			switch {
			case c.count:
				var ce *expressions.ArgumentCountError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, 1, ce.Min)
				assert.Equal(t, 2, ce.Max)
				assert.Equal(t, len(c.args), ce.Got)
				assert.Equal(t, "pair(x: int or double, [label: string])", ce.Detail())
			case c.index >= 0:
				var te *expressions.ArgumentTypeError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, c.index, te.Index)
				assert.Equal(t, expressions.TypeName(c.args[c.index]), te.Actual)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestArgumentTypeErrorMessage(t *testing.T) {
	err := pairFunc().CheckArguments([]expressions.Value{expressions.String("a")})
	assert.EqualError(t, err, "argument 0 of pair has type string, want int or double")
}

func TestCreateParametersOrder(t *testing.T) {
	assert.Panics(t, func() {
		expressions.NewFunction("bad", "", nil).CreateParameters(
			expressions.ParameterSpec{Name: "a"},
			expressions.ParameterSpec{Name: "b", Required: true},
		)
	})
}

func TestDefaults(t *testing.T) {
	g := expressions.NewGuider(nil)
	v, err := pairFunc().Invoke(g, expressions.Int(1))
	require.NoError(t, err)
	assert.True(t, expressions.Equal(expressions.List{expressions.Int(1), expressions.String("none")}, v), "got %v", v)

	v, err = pairFunc().Invoke(g, expressions.Int(1), expressions.String("a"))
	require.NoError(t, err)
	assert.True(t, expressions.Equal(expressions.List{expressions.Int(1), expressions.String("a")}, v), "got %v", v)
}

func TestVariadic(t *testing.T) {
	sum := expressions.NewFunction("sum", "", func(g *expressions.Guider, args *expressions.Arguments) (expressions.Value, error) {
		var s int64
		for i := 0; i < args.Len(); i++ {
			x, err := args.Int(i)
			if err != nil {
				return nil, err
			}
			s += x
		}
		return expressions.Int(s), nil
	}).Variadic().CreateParameters(
		expressions.ParameterSpec{Name: "x", Required: true, Types: []expressions.Kind{expressions.KindInt}},
	)
	assert.Equal(t, "sum(x: int, ...)", sum.Usage())
	g := expressions.NewGuider(nil)
	v, err := sum.Invoke(g, expressions.Int(1), expressions.Int(2), expressions.Int(3))
	require.NoError(t, err)
	assert.Equal(t, expressions.Int(6), v)

	_, err = sum.Invoke(g)
	assert.EqualError(t, err, "cannot call sum with 0 arguments, want at least 1")

	var te *expressions.ArgumentTypeError
	_, err = sum.Invoke(g, expressions.Int(1), expressions.Real(2))
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Index)
}

func TestToArray(t *testing.T) {
	total := expressions.NewFunction("total", "", func(g *expressions.Guider, args *expressions.Arguments) (expressions.Value, error) {
		a := args.Value(0).(*expressions.Array)
		return expressions.Int(a.Len()), nil
	}).CreateParameters(
		expressions.ParameterSpec{Name: "items", Required: true, ToArray: true, Types: []expressions.Kind{expressions.KindArray}},
	)
	g := expressions.NewGuider(nil)
	v, err := total.Invoke(g, expressions.Int(5))
	require.NoError(t, err)
	assert.Equal(t, expressions.Int(1), v)

	v, err = total.Invoke(g, ints(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, expressions.Int(3), v)
}

func TestLazy(t *testing.T) {
	evaluated := false
	probe := expressions.NewFunction("probe", "", func(g *expressions.Guider, args *expressions.Arguments) (expressions.Value, error) {
		evaluated = true
		return expressions.Int(1), nil
	})
	reg := expressions.Builtins().Register(probe)
	quote := expressions.NewFunction("quote", "", func(g *expressions.Guider, args *expressions.Arguments) (expressions.Value, error) {
		assert.Nil(t, args.Value(0))
		return expressions.String(args.Expr(0).String()), nil
	}).CreateParameters(expressions.ParameterSpec{Name: "e", Required: true, Lazy: true})
	reg.Register(quote)

	g := expressions.NewGuider(nil, expressions.UseFunctions(reg))
	v, err := expressions.Call("quote", expressions.Call("probe")).Eval(g)
	require.NoError(t, err)
	assert.Equal(t, expressions.String("probe()"), v)
	assert.False(t, evaluated)
}

func TestArguments(t *testing.T) {
	f := expressions.NewFunction("args", "", func(g *expressions.Guider, args *expressions.Arguments) (expressions.Value, error) {
		x, err := args.Real(0)
		require.NoError(t, err)
		assert.Equal(t, 2.0, x)
		_, err = args.Int(1)
		var te *expressions.ArgumentTypeError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 1, te.Index)
		s, err := args.Text(1)
		require.NoError(t, err)
		assert.Equal(t, "s", s)
		_, err = args.Context(1)
		assert.Error(t, err)
		assert.Nil(t, args.Value(5))
		assert.Nil(t, args.Expr(5))
		return nil, nil
	}).CreateParameters(
		expressions.ParameterSpec{Name: "x", Required: true},
		expressions.ParameterSpec{Name: "s", Required: true},
	)
	v, err := f.Invoke(expressions.NewGuider(nil), expressions.Int(2), expressions.String("s"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRegistry(t *testing.T) {
	r := expressions.NewRegistry(pairFunc())
	assert.NotNil(t, r.Lookup("PAIR"))
	assert.Nil(t, r.Lookup("missing"))
	replacement := expressions.NewFunction("Pair", "Replacement.", nil)
	r.Register(replacement)
	assert.Same(t, replacement, r.Lookup("pair"))
	assert.Equal(t, []string{"Pair"}, r.Names())
}

func TestBuiltins(t *testing.T) {
	cases := []struct {
		name string
		call *expressions.Expr
		want expressions.Value
	}{
		{"sqrt", expressions.Call("sqrt", expressions.Const(expressions.Int(16))), expressions.Real(4)},
		{"exp-zero", expressions.Call("exp", expressions.Const(expressions.Real(0))), expressions.Real(1)},
		{"log", expressions.Call("log", expressions.Const(expressions.Int(1000))), expressions.Real(3)},
		{"pi", expressions.Call("pi"), expressions.Real(math.Pi)},
		{"e", expressions.Call("e"), expressions.Real(math.E)},
		{"type", expressions.Call("type", expressions.Const(expressions.Real(1))), expressions.String("double")},
		{"type-point", expressions.Call("type", expressions.Const(expressions.Point{})), expressions.String("point")},
		{"length-array", expressions.Call("length", expressions.Const(ints(1, 2, 3))), expressions.Int(3)},
		{"length-string", expressions.Call("length", expressions.Const(expressions.String("héllo"))), expressions.Int(5)},
		{"array", expressions.Call("array", expressions.Const(expressions.Int(1)), expressions.Const(expressions.Int(2))), ints(1, 2)},
		{"list", expressions.Call("list", expressions.Const(expressions.Int(1)), expressions.Const(expressions.String("a"))), expressions.List{expressions.Int(1), expressions.String("a")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := c.call.Eval(expressions.NewGuider(nil))
			require.NoError(t, err)
			assert.Truef(t, expressions.Equal(c.want, v), "want %v, got %v", c.want, v)
		})
	}
}

func TestBuiltinErrors(t *testing.T) {
	cases := []struct {
		name   string
		call   *expressions.Expr
		target any
	}{
		{"ln-zero", expressions.Call("ln", expressions.Const(expressions.Int(0))), new(*expressions.DomainError)},
		{"sqrt-negative", expressions.Call("sqrt", expressions.Const(expressions.Real(-1))), new(*expressions.DomainError)},
		{"log-base-one", expressions.Call("log", expressions.Const(expressions.Int(8)), expressions.Const(expressions.Int(1))), new(*expressions.DomainError)},
		{"sqrt-string", expressions.Call("sqrt", expressions.Const(expressions.String("x"))), new(*expressions.ArgumentTypeError)},
		{"sqrt-count", expressions.Call("sqrt"), new(*expressions.ArgumentCountError)},
		{"array-mixed", expressions.Call("array", expressions.Const(expressions.Int(1)), expressions.Const(expressions.String("a"))), new(*expressions.KindError)},
		{"unknown", expressions.Call("nope"), new(*expressions.UnknownFunctionError)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.call.Eval(expressions.NewGuider(nil))
			assert.ErrorAs(t, err, c.target)
		})
	}
	_, err := expressions.Call("getglobal", expressions.Const(expressions.String("x"))).Eval(expressions.NewGuider(nil))
	assert.ErrorIs(t, err, expressions.ErrNoGlobal)
}

func TestPrint(t *testing.T) {
	var b bytes.Buffer
	w := expressions.NewTextWriter(&b)
	g := expressions.NewGuider(nil, expressions.Output(w))
	w.WriteLine("start")
	w.Indent(1)
	v, err := expressions.Call("print", expressions.Const(expressions.Int(1)), expressions.Const(expressions.String("a"))).Eval(g)
	require.NoError(t, err)
	assert.Nil(t, v)
	w.Clear()
	w.Write("end")
	require.NoError(t, w.Err())
	assert.Equal(t, "start\n  1 a\nend", b.String())
}
