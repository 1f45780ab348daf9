package expressions

import (
	"sort"
	"strings"

	"github.com/PavelStransky/expressions/ie"
)

// Variable is a named value owned by the Context that created it.
type Variable struct {
	name  string
	value Value
}

// Name returns the name of the variable.
func (v *Variable) Name() string { return v.name }

// Value returns the value of the variable.
func (v *Variable) Value() Value { return v.value }

// Context is a scope of named variables. Names are unique within a context
// and keep the order in which they were first set. A context may have a
// parent scope which Lookup falls back to. It is not safe to use a Context
// concurrently.
type Context struct {
	parent    *Context
	vars      map[string]*Variable
	order     []string
	listeners []ContextListener
	// exporting is set while Export runs.
	exporting bool
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Value
	}
	varsopt   map[string]Value
	parentopt struct{ p *Context }
)

func (varopt) ctxOption()    {}
func (varsopt) ctxOption()   {}
func (parentopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val Value) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context, in
// sorted order of their names.
func SetVars(vars map[string]Value) ContextOption {
	return varsopt(vars)
}

// Parent sets the enclosing scope.
func Parent(p *Context) ContextOption {
	return parentopt{p}
}

// NewContext creates a new context.
func NewContext(opts ...ContextOption) *Context {
	ctx := &Context{vars: make(map[string]*Variable)}
	ctx.apply(opts)
	return ctx
}

func (ctx *Context) apply(opts []ContextOption) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			ctx.SetVariable(opt.name, opt.val)
		case varsopt:
			names := make([]string, 0, len(opt))
			for k := range opt {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				ctx.SetVariable(k, opt[k])
			}
		case parentopt:
			ctx.parent = opt.p
		default:
			panic("expressions: unknown option type")
		}
	}
}

func (*Context) Kind() Kind { return KindContext }

func (ctx *Context) String() string {
	return "context(" + strings.Join(ctx.order, ", ") + ")"
}

// Clear removes all variables.
func (ctx *Context) Clear() {
	clear(ctx.vars)
	ctx.order = ctx.order[:0]
}

// ClearVar removes one variable and reports whether it existed. Variables of
// the parent scope are never affected.
func (ctx *Context) ClearVar(name string) bool {
	if _, ok := ctx.vars[name]; !ok {
		return false
	}
	delete(ctx.vars, name)
	for i, n := range ctx.order {
		if n == name {
			ctx.order = append(ctx.order[:i], ctx.order[i+1:]...)
			break
		}
	}
	return true
}

// SetVariable sets a variable in this context, creating it if needed, and
// returns it. It panics if val is nil.
func (ctx *Context) SetVariable(name string, val Value) *Variable {
	if val == nil {
		panic("expressions: nil value for variable " + name)
	}
	if v := ctx.vars[name]; v != nil {
		v.value = val
		return v
	}
	v := &Variable{name: name, value: val}
	ctx.vars[name] = v
	ctx.order = append(ctx.order, name)
	return v
}

// Variable returns the variable of this context with the given name, or nil.
// The parent scope is not searched.
func (ctx *Context) Variable(name string) *Variable {
	return ctx.vars[name]
}

// Lookup returns the value of a variable, searching enclosing scopes. If
// there is no such variable, the result is nil.
func (ctx *Context) Lookup(name string) Value {
	for c := ctx; c != nil; c = c.parent {
		if v := c.vars[name]; v != nil {
			return v.value
		}
	}
	return nil
}

// Names returns the names of the variables of this context in the order they
// were first set.
func (ctx *Context) Names() []string {
	return append([]string(nil), ctx.order...)
}

// Len returns the number of variables of this context.
func (ctx *Context) Len() int {
	return len(ctx.order)
}

// Parent returns the enclosing scope, or nil.
func (ctx *Context) Parent() *Context {
	return ctx.parent
}

// Child creates an empty context enclosed by ctx.
func (ctx *Context) Child(opts ...ContextOption) *Context {
	return NewContext(append([]ContextOption{Parent(ctx)}, opts...)...)
}

// Clone creates a copy of the variables of a context and applies options to
// it. Values are shared; listeners are not copied.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := &Context{
		parent: ctx.parent,
		vars:   make(map[string]*Variable, len(ctx.vars)),
		order:  append([]string(nil), ctx.order...),
	}
	for k, v := range ctx.vars {
		n.vars[k] = &Variable{name: k, value: v.value}
	}
	n.apply(opts)
	return n
}

// ContextEventKind distinguishes context replacement requests.
type ContextEventKind int8

const (
	// ContextCreated asks the host to adopt a newly created context.
	ContextCreated ContextEventKind = iota + 1
	// ContextSwapped asks the host to switch to an existing context.
	ContextSwapped
)

// ContextEvent is a request from an evaluation to replace the host's current
// context.
type ContextEvent struct {
	Kind    ContextEventKind
	Context *Context
}

// ContextListener receives context replacement requests.
type ContextListener func(ContextEvent)

// OnReplace registers a listener for replacement requests made through ctx
// or any context enclosed by it.
func (ctx *Context) OnReplace(l ContextListener) {
	ctx.listeners = append(ctx.listeners, l)
}

// RequestNew notifies listeners that an evaluation created next.
func (ctx *Context) RequestNew(next *Context) {
	ctx.emit(ContextEvent{Kind: ContextCreated, Context: next})
}

// RequestSet notifies listeners that an evaluation wants to switch to next.
func (ctx *Context) RequestSet(next *Context) {
	ctx.emit(ContextEvent{Kind: ContextSwapped, Context: next})
}

func (ctx *Context) emit(ev ContextEvent) {
	for c := ctx; c != nil; c = c.parent {
		for _, l := range c.listeners {
			l(ev)
		}
	}
}

// Tag implements ie.Object.
func (*Context) Tag() string { return "context" }

// Export writes one field per variable, named after it. A context that
// contains itself, directly or through nested contexts, is a CycleError.
func (ctx *Context) Export(e *ie.Export) error {
	if ctx.exporting {
		return &CycleError{}
	}
	ctx.exporting = true
	defer func() { ctx.exporting = false }()
	var p ie.Param
	for _, name := range ctx.order {
		v := ctx.vars[name].value
		if in, ok := v.(*Context); ok && in.exporting {
			return &CycleError{Name: name}
		}
		x, err := native(v)
		if err != nil {
			return err
		}
		p.Add(x, name, "")
	}
	return p.Export(e)
}

// Import replaces the variables of ctx with those read from i.
func (ctx *Context) Import(i *ie.Import) error {
	var p ie.Param
	if err := p.Import(i); err != nil {
		return err
	}
	if ctx.vars == nil {
		ctx.vars = make(map[string]*Variable, p.Len())
	}
	ctx.Clear()
	for k := 0; k < p.Len(); k++ {
		it := p.Item(k)
		v, err := fromNative(it.Value)
		if err != nil {
			return err
		}
		ctx.SetVariable(it.Name, v)
	}
	return nil
}

var (
	_ Value     = (*Context)(nil)
	_ ie.Object = (*Context)(nil)
)
