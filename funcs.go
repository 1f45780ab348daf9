package expressions

import (
	"errors"
	"math"
	"math/big"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Function is a callable registered under a name. Call receives the argument
// expressions unevaluated; most functions are FunctionDefinitions, which
// evaluate and check them according to their parameter contract.
type Function interface {
	Name() string
	Help() string
	Call(g *Guider, args []*Expr) (Value, error)
}

// EvaluateFunc is the function-specific logic of a FunctionDefinition. It runs
// only after the arguments have been bound and checked. A nil result means
// the function produces no value.
type EvaluateFunc func(g *Guider, args *Arguments) (Value, error)

// ParameterSpec is the contract of one parameter.
type ParameterSpec struct {
	// Name describes the parameter in usage text.
	Name string
	// Required parameters must be passed. All required parameters precede
	// the optional ones.
	Required bool
	// Lazy parameters are passed as unevaluated expressions.
	Lazy bool
	// ToArray promotes a scalar argument to a one-element array before the
	// type check.
	ToArray bool
	// Types is the set of kinds the argument may have. Empty means any.
	Types []Kind
	// Default is the value of an omitted optional parameter.
	Default Value
}

func (p *ParameterSpec) allows(k Kind) bool {
	if len(p.Types) == 0 {
		return true
	}
	for _, t := range p.Types {
		if t == k {
			return true
		}
	}
	return false
}

// FunctionDefinition is a Function with a declared parameter contract.
type FunctionDefinition struct {
	name, help string
	params     []ParameterSpec
	variadic   bool
	fn         EvaluateFunc
}

// NewFunction creates a function with no parameters. Use CreateParameters to
// declare them.
func NewFunction(name, help string, fn EvaluateFunc) *FunctionDefinition {
	return &FunctionDefinition{name: name, help: help, fn: fn}
}

// CreateParameters declares the parameters by position, replacing any
// previous declaration. It returns f for chaining. It panics if a required
// parameter follows an optional one.
func (f *FunctionDefinition) CreateParameters(specs ...ParameterSpec) *FunctionDefinition {
	optional := false
	for _, p := range specs {
		if p.Required && optional {
			panic("expressions: required parameter " + p.Name + " of " + f.name + " follows an optional one")
		}
		optional = optional || !p.Required
	}
	f.params = specs
	return f
}

// Variadic allows any number of arguments past the declared parameters. The
// extra arguments follow the contract of the last parameter. It returns f for
// chaining.
func (f *FunctionDefinition) Variadic() *FunctionDefinition {
	f.variadic = true
	return f
}

func (f *FunctionDefinition) Name() string { return f.name }
func (f *FunctionDefinition) Help() string { return f.help }

// Parameters returns the declared parameters.
func (f *FunctionDefinition) Parameters() []ParameterSpec {
	return append([]ParameterSpec(nil), f.params...)
}

// bounds returns the accepted argument count. max is -1 for variadic
// functions.
func (f *FunctionDefinition) bounds() (min, max int) {
	for _, p := range f.params {
		if p.Required {
			min++
		}
	}
	if f.variadic {
		return min, -1
	}
	return min, len(f.params)
}

// spec returns the contract of the i-th argument.
func (f *FunctionDefinition) spec(i int) *ParameterSpec {
	if i >= len(f.params) {
		if len(f.params) == 0 {
			return &ParameterSpec{}
		}
		return &f.params[len(f.params)-1]
	}
	return &f.params[i]
}

// Usage describes the parameters, e.g. "log(x, [base])".
func (f *FunctionDefinition) Usage() string {
	var b strings.Builder
	b.WriteString(f.name)
	b.WriteByte('(')
	for i, p := range f.params {
		if i > 0 {
			b.WriteString(", ")
		}
		name := p.Name
		if len(p.Types) > 0 {
			name += ": " + kindList(p.Types)
		}
		if p.Required {
			b.WriteString(name)
		} else {
			b.WriteString("[" + name + "]")
		}
	}
	if f.variadic {
		b.WriteString(", ...")
	}
	b.WriteByte(')')
	return b.String()
}

func (f *FunctionDefinition) checkCount(n int) error {
	min, max := f.bounds()
	if n < min || max >= 0 && n > max {
		return &ArgumentCountError{Func: f.name, Min: min, Max: max, Got: n, Usage: f.Usage()}
	}
	return nil
}

// CheckArguments validates evaluated arguments against the contract: the
// count must be in range and each argument's kind, after promotion for
// ToArray parameters, must be allowed by its parameter. Nil arguments and
// lazy parameters are not type checked.
func (f *FunctionDefinition) CheckArguments(args []Value) error {
	if err := f.checkCount(len(args)); err != nil {
		return err
	}
	for i, v := range args {
		p := f.spec(i)
		if p.Lazy || v == nil {
			continue
		}
		k := v.Kind()
		if p.ToArray {
			k = promote(v).Kind()
		}
		if !p.allows(k) {
			return &ArgumentTypeError{Func: f.name, Index: i, Expected: p.Types, Actual: TypeName(v), Usage: f.Usage()}
		}
	}
	return nil
}

// Call binds the argument expressions and runs the function. Eager
// parameters are evaluated through g in order; lazy ones are passed as is.
func (f *FunctionDefinition) Call(g *Guider, exprs []*Expr) (Value, error) {
	if err := f.checkCount(len(exprs)); err != nil {
		return nil, err
	}
	args := &Arguments{fn: f.name, vals: make([]Value, len(exprs)), exprs: make([]*Expr, len(exprs))}
	for i, e := range exprs {
		if f.spec(i).Lazy {
			args.exprs[i] = e
			continue
		}
		v, err := e.Eval(g)
		if err != nil {
			return nil, err
		}
		args.vals[i] = v
	}
	return f.run(g, args)
}

// Invoke runs the function with arguments that are already evaluated. Lazy
// parameters receive the values as constant expressions.
func (f *FunctionDefinition) Invoke(g *Guider, values ...Value) (Value, error) {
	args := &Arguments{fn: f.name, vals: make([]Value, len(values)), exprs: make([]*Expr, len(values))}
	for i, v := range values {
		if f.spec(i).Lazy {
			args.exprs[i] = Const(v)
			continue
		}
		args.vals[i] = v
	}
	return f.run(g, args)
}

func (f *FunctionDefinition) run(g *Guider, args *Arguments) (Value, error) {
	if err := f.CheckArguments(args.vals); err != nil {
		return nil, err
	}
	last := len(f.params) - 1
	for last >= len(args.vals) && f.params[last].Default == nil {
		last--
	}
	for i := len(args.vals); i <= last; i++ {
		args.vals = append(args.vals, f.params[i].Default)
		args.exprs = append(args.exprs, nil)
	}
	for i, v := range args.vals {
		if v != nil && f.spec(i).ToArray {
			args.vals[i] = promote(v)
		}
	}
	g.Logger().Debug("call", zap.String("func", f.name), zap.Int("args", len(args.vals)))
	return f.fn(g, args)
}

// Arguments is the bound argument list of a call. Omitted optional parameters
// hold their defaults; those without defaults are absent unless a later
// parameter has one, in which case they are nil.
type Arguments struct {
	fn    string
	vals  []Value
	exprs []*Expr
}

// Len returns the number of arguments, including defaults.
func (a *Arguments) Len() int {
	return len(a.vals)
}

// Value returns the i-th argument, or nil if it is lazy or absent.
func (a *Arguments) Value(i int) Value {
	if i >= len(a.vals) {
		return nil
	}
	return a.vals[i]
}

// Values returns the evaluated arguments from i on.
func (a *Arguments) Values(i int) []Value {
	if i >= len(a.vals) {
		return nil
	}
	return a.vals[i:]
}

// Expr returns the unevaluated expression of a lazy argument, or nil.
func (a *Arguments) Expr(i int) *Expr {
	if i >= len(a.exprs) {
		return nil
	}
	return a.exprs[i]
}

// Int returns the i-th argument as an integer.
func (a *Arguments) Int(i int) (int64, error) {
	if v, ok := a.Value(i).(Int); ok {
		return int64(v), nil
	}
	return 0, a.typeErr(i, KindInt)
}

// Real returns the i-th argument as a float, widening integers.
func (a *Arguments) Real(i int) (float64, error) {
	switch v := a.Value(i).(type) {
	case Real:
		return float64(v), nil
	case Int:
		return float64(v), nil
	}
	return 0, a.typeErr(i, KindInt, KindReal)
}

// Text returns the i-th argument as a string.
func (a *Arguments) Text(i int) (string, error) {
	if v, ok := a.Value(i).(String); ok {
		return string(v), nil
	}
	return "", a.typeErr(i, KindString)
}

// Context returns the i-th argument as a context.
func (a *Arguments) Context(i int) (*Context, error) {
	if v, ok := a.Value(i).(*Context); ok {
		return v, nil
	}
	return nil, a.typeErr(i, KindContext)
}

func (a *Arguments) typeErr(i int, want ...Kind) error {
	return &ArgumentTypeError{Func: a.fn, Index: i, Expected: want, Actual: TypeName(a.Value(i))}
}

// Registry is a set of functions addressed by case-insensitive name.
type Registry struct {
	funcs map[string]Function
}

// NewRegistry creates a registry holding fns.
func NewRegistry(fns ...Function) *Registry {
	r := &Registry{funcs: make(map[string]Function, len(fns))}
	for _, f := range fns {
		r.Register(f)
	}
	return r
}

// Register adds a function and returns r for chaining. A function with the
// same name is replaced.
func (r *Registry) Register(f Function) *Registry {
	r.funcs[strings.ToLower(f.Name())] = f
	return r
}

// Lookup returns the function with the given name, or nil.
func (r *Registry) Lookup(name string) Function {
	return r.funcs[strings.ToLower(name)]
}

// Names returns the names of all functions in sorted order.
func (r *Registry) Names() []string {
	s := make([]string, 0, len(r.funcs))
	for _, f := range r.funcs {
		s = append(s, f.Name())
	}
	sort.Strings(s)
	return s
}

var numeric = []Kind{KindInt, KindReal}

// Monadic wraps an arbitrary-precision function of one variable into a
// function of one numeric argument. f must set out to its result, to the
// precision of in; its return value is always ignored. If f is called on an
// argument outside its domain, it should panic with an error of type
// big.ErrNaN, or that unwraps to it.
func Monadic(name, help string, f func(out, in *big.Float) *big.Float) *FunctionDefinition {
	fn := func(g *Guider, args *Arguments) (Value, error) {
		x, err := args.Real(0)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &DomainError{X: Real(x), Arg: 1, Func: name}
		}
		in := new(big.Float).SetPrec(g.Prec()).SetFloat64(x)
		return callBig(name, g.Prec(), func(out *big.Float) { f(out, in) })
	}
	return NewFunction(name, help, fn).
		CreateParameters(ParameterSpec{Name: "x", Required: true, Types: numeric})
}

// Niladic wraps an arbitrary-precision function of zero variables, generally
// one which computes a constant. f must set out to its result; its return
// value is always ignored.
func Niladic(name, help string, f func(out *big.Float) *big.Float) *FunctionDefinition {
	fn := func(g *Guider, args *Arguments) (Value, error) {
		return callBig(name, g.Prec(), func(out *big.Float) { f(out) })
	}
	return NewFunction(name, help, fn)
}

// callBig runs f at the given precision and rounds the result to a Real.
// A big.ErrNaN panic from f becomes a DomainError.
func callBig(name string, prec uint, f func(out *big.Float)) (v Value, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e := r.(error) // panic if not error
		if !errors.As(e, &big.ErrNaN{}) {
			panic(e)
		}
		v, err = nil, &DomainError{Arg: 1, Func: name}
	}()
	out := new(big.Float).SetPrec(prec)
	f(out)
	x, _ := out.Float64()
	return Real(x), nil
}

var _ Function = (*FunctionDefinition)(nil)
