package expressions

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/bigfloat"

	"github.com/PavelStransky/expressions/ie"
)

// ErrNoGlobal is returned by functions using the Global Context when the
// Guider has no Global store.
var ErrNoGlobal = errors.New("expressions: no global context")

// Builtins returns a new registry holding the builtin functions. Callers may
// register more functions in it.
func Builtins() *Registry {
	return NewRegistry(
		Monadic("exp", "Exponential function.", bigfloat.Exp),
		Monadic("ln", "Natural logarithm.", positive(bigfloat.Log)),
		logFunc,
		Monadic("sqrt", "Square root.", (*big.Float).Sqrt),
		Niladic("pi", "The constant π.", bigfloat.Pi),
		Niladic("e", "Euler's number.", func(out *big.Float) *big.Float {
			var one big.Float
			one.SetFloat64(1)
			return bigfloat.Exp(out, &one)
		}),

		typeFunc, lengthFunc, arrayFunc, listFunc, printFunc,
		clearFunc, newContextFunc, setContextFunc, useFunc,
		setGlobalFunc, getGlobalFunc, clearGlobalFunc,
		saveFunc, loadFunc,
	)
}

// positive guards a logarithm against non-positive arguments.
func positive(f func(out, in *big.Float) *big.Float) func(out, in *big.Float) *big.Float {
	return func(out, in *big.Float) *big.Float {
		if in.Sign() <= 0 {
			panic(big.ErrNaN{})
		}
		return f(out, in)
	}
}

var logFunc = NewFunction("log", "Logarithm to base 10 or to the given base.", func(g *Guider, args *Arguments) (Value, error) {
	x, err := args.Real(0)
	if err != nil {
		return nil, err
	}
	base, err := args.Real(1)
	if err != nil {
		return nil, err
	}
	if !(x > 0) || x > maxFinite {
		return nil, &DomainError{X: args.Value(0), Arg: 1, Func: "log"}
	}
	if !(base > 0) || base == 1 || base > maxFinite {
		return nil, &DomainError{X: args.Value(1), Arg: 2, Func: "log"}
	}
	return callBig("log", g.Prec(), func(out *big.Float) {
		in := new(big.Float).SetPrec(g.Prec()).SetFloat64(x)
		b := new(big.Float).SetPrec(g.Prec()).SetFloat64(base)
		bigfloat.Log(out, in)
		bigfloat.Log(b, b)
		out.Quo(out, b)
	})
}).CreateParameters(
	ParameterSpec{Name: "x", Required: true, Types: numeric},
	ParameterSpec{Name: "base", Types: numeric, Default: Real(10)},
)

const maxFinite = 1.7976931348623157e308

var typeFunc = NewFunction("type", "Returns the type name of a value.", func(g *Guider, args *Arguments) (Value, error) {
	return String(TypeName(args.Value(0))), nil
}).CreateParameters(ParameterSpec{Name: "value", Required: true})

var lengthFunc = NewFunction("length", "Returns the number of items of a sequence.", func(g *Guider, args *Arguments) (Value, error) {
	switch v := args.Value(0).(type) {
	case *Array:
		return Int(v.Len()), nil
	case List:
		return Int(len(v)), nil
	case String:
		return Int(utf8.RuneCountInString(string(v))), nil
	case Vector:
		return Int(len(v)), nil
	case PointVector:
		return Int(len(v)), nil
	case *Matrix:
		return Int(len(v.data)), nil
	case *Context:
		return Int(v.Len()), nil
	}
	return nil, args.typeErr(0, sized...)
}).CreateParameters(ParameterSpec{Name: "value", Required: true, Types: sized})

var sized = []Kind{KindArray, KindList, KindString, KindVector, KindPointVector, KindMatrix, KindContext}

var arrayFunc = NewFunction("array", "Creates an array of items of one type.", func(g *Guider, args *Arguments) (Value, error) {
	return ArrayOf(args.Values(0)...)
}).Variadic().CreateParameters(ParameterSpec{Name: "item"})

var listFunc = NewFunction("list", "Creates a list of items of any types.", func(g *Guider, args *Arguments) (Value, error) {
	items := append([]Value(nil), args.Values(0)...)
	for i, v := range items {
		if v == nil {
			return nil, &NoValueError{Expr: "item " + strconv.Itoa(i) + " of list"}
		}
	}
	return List(items), nil
}).Variadic().CreateParameters(ParameterSpec{Name: "item"})

var printFunc = NewFunction("print", "Writes values to the output.", func(g *Guider, args *Arguments) (Value, error) {
	s := make([]string, 0, args.Len())
	for _, v := range args.Values(0) {
		if v == nil {
			s = append(s, "null")
			continue
		}
		s = append(s, v.String())
	}
	g.Writer().WriteLine(strings.Join(s, " "))
	return nil, nil
}).Variadic().CreateParameters(ParameterSpec{Name: "value"})

var clearFunc = NewFunction("clear", "Removes the named variables, or all of them, from the current context.", func(g *Guider, args *Arguments) (Value, error) {
	if args.Len() == 0 {
		g.Context().Clear()
		return nil, nil
	}
	for i := 0; i < args.Len(); i++ {
		name, ok := args.Expr(i).VarName()
		if !ok {
			return nil, &ArgumentTypeError{Func: "clear", Index: i, Actual: "expression", Usage: "clear([variable], ...)"}
		}
		g.Context().ClearVar(name)
	}
	return nil, nil
}).Variadic().CreateParameters(ParameterSpec{Name: "variable", Lazy: true})

var newContextFunc = NewFunction("newcontext", "Creates a new context, evaluating the body in it, and asks the host to adopt it.", func(g *Guider, args *Arguments) (Value, error) {
	ctx := NewContext()
	if body := args.Expr(0); body != nil {
		if _, err := body.Eval(g.With(ctx)); err != nil {
			return nil, err
		}
	}
	g.Context().RequestNew(ctx)
	return ctx, nil
}).CreateParameters(ParameterSpec{Name: "body", Lazy: true})

var setContextFunc = NewFunction("setcontext", "Asks the host to switch to a context.", func(g *Guider, args *Arguments) (Value, error) {
	ctx, err := args.Context(0)
	if err != nil {
		return nil, err
	}
	g.Context().RequestSet(ctx)
	return ctx, nil
}).CreateParameters(ParameterSpec{Name: "context", Required: true, Types: []Kind{KindContext}})

var useFunc = NewFunction("use", "Evaluates an expression in another context.", func(g *Guider, args *Arguments) (Value, error) {
	ctx, err := args.Context(0)
	if err != nil {
		return nil, err
	}
	return args.Expr(1).Eval(g.With(ctx))
}).CreateParameters(
	ParameterSpec{Name: "context", Required: true, Types: []Kind{KindContext}},
	ParameterSpec{Name: "expression", Required: true, Lazy: true},
)

func globalStore(g *Guider) (*Global, error) {
	if g.Global() == nil {
		return nil, ErrNoGlobal
	}
	return g.Global(), nil
}

var setGlobalFunc = NewFunction("setglobal", "Sets a variable of the global context.", func(g *Guider, args *Arguments) (Value, error) {
	gl, err := globalStore(g)
	if err != nil {
		return nil, err
	}
	name, err := args.Text(0)
	if err != nil {
		return nil, err
	}
	v := args.Value(1)
	if v == nil {
		return nil, &NoValueError{Expr: "value of " + name}
	}
	if err := gl.SetVariable(name, v); err != nil {
		return nil, err
	}
	return v, nil
}).CreateParameters(
	ParameterSpec{Name: "name", Required: true, Types: []Kind{KindString}},
	ParameterSpec{Name: "value", Required: true},
)

var getGlobalFunc = NewFunction("getglobal", "Returns a variable of the global context.", func(g *Guider, args *Arguments) (Value, error) {
	gl, err := globalStore(g)
	if err != nil {
		return nil, err
	}
	name, err := args.Text(0)
	if err != nil {
		return nil, err
	}
	return gl.Variable(name)
}).CreateParameters(ParameterSpec{Name: "name", Required: true, Types: []Kind{KindString}})

var clearGlobalFunc = NewFunction("clearglobal", "Removes the named variables, or all of them, from the global context.", func(g *Guider, args *Arguments) (Value, error) {
	gl, err := globalStore(g)
	if err != nil {
		return nil, err
	}
	names := make([]string, args.Len())
	for i := range names {
		if names[i], err = args.Text(i); err != nil {
			return nil, err
		}
	}
	return nil, gl.Clear(names...)
}).Variadic().CreateParameters(ParameterSpec{Name: "name", Types: []Kind{KindString}})

var saveFunc = NewFunction("save", "Writes a value to a file.", func(g *Guider, args *Arguments) (v Value, err error) {
	path, err := args.Text(0)
	if err != nil {
		return nil, err
	}
	name, err := args.Text(2)
	if err != nil {
		return nil, err
	}
	mode, err := ie.ParseMode(name)
	if err != nil {
		return nil, &DomainError{X: args.Value(2), Arg: 3, Func: "save"}
	}
	e, err := ie.Create(path, mode)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := e.Close(); err == nil {
			err = cerr
		}
	}()
	return nil, WriteValue(e, args.Value(1))
}).CreateParameters(
	ParameterSpec{Name: "path", Required: true, Types: []Kind{KindString}},
	ParameterSpec{Name: "value", Required: true},
	ParameterSpec{Name: "mode", Types: []Kind{KindString}, Default: String("compressed")},
)

var loadFunc = NewFunction("load", "Reads the first value of a file.", func(g *Guider, args *Arguments) (Value, error) {
	path, err := args.Text(0)
	if err != nil {
		return nil, err
	}
	i, err := ie.Open(path, Factory())
	if err != nil {
		return nil, err
	}
	defer i.Close()
	return ReadValue(i)
}).CreateParameters(ParameterSpec{Name: "path", Required: true, Types: []Kind{KindString}})
