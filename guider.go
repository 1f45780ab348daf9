package expressions

import (
	"io"
	"strings"

	"go.uber.org/zap"
)

// Guider carries the state of an evaluation through recursive calls: the
// current Context, the diagnostic sink, the Global Context store, the
// function registry, the precision of arbitrary-precision functions and a
// logger. A Guider is not safe for concurrent use.
type Guider struct {
	ctx    *Context
	out    Writer
	global *Global
	funcs  *Registry
	prec   uint
	log    *zap.Logger
}

// GuiderOption is an option used when creating a Guider.
type GuiderOption interface {
	guiderOption()
}

type (
	outopt    struct{ w Writer }
	globalopt struct{ g *Global }
	funcsopt  struct{ r *Registry }
	precopt   uint
	logopt    struct{ l *zap.Logger }
)

func (outopt) guiderOption()    {}
func (globalopt) guiderOption() {}
func (funcsopt) guiderOption()  {}
func (precopt) guiderOption()   {}
func (logopt) guiderOption()    {}

// Output sets the diagnostic sink. The default discards everything.
func Output(w Writer) GuiderOption {
	return outopt{w}
}

// UseGlobal sets the Global Context store.
func UseGlobal(g *Global) GuiderOption {
	return globalopt{g}
}

// UseFunctions sets the function registry. The default is Builtins().
func UseFunctions(r *Registry) GuiderOption {
	return funcsopt{r}
}

// Prec sets the precision of arbitrary-precision functions. The default is
// 64.
func Prec(prec uint) GuiderOption {
	return precopt(prec)
}

// Logger sets the logger. The default is the package logger.
func Logger(l *zap.Logger) GuiderOption {
	return logopt{l}
}

// NewGuider creates a Guider evaluating against ctx. A nil ctx is replaced by
// a new empty context.
func NewGuider(ctx *Context, opts ...GuiderOption) *Guider {
	if ctx == nil {
		ctx = NewContext()
	}
	g := Guider{ctx: ctx, out: Discard, prec: 64}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case outopt:
			g.out = opt.w
		case globalopt:
			g.global = opt.g
		case funcsopt:
			g.funcs = opt.r
		case precopt:
			g.prec = uint(opt)
		case logopt:
			g.log = opt.l
		default:
			panic("expressions: unknown option type")
		}
	}
	if g.funcs == nil {
		g.funcs = Builtins()
	}
	return &g
}

// Context returns the context names are resolved in.
func (g *Guider) Context() *Context { return g.ctx }

// Writer returns the diagnostic sink.
func (g *Guider) Writer() Writer { return g.out }

// Global returns the Global Context store, or nil if there is none.
func (g *Guider) Global() *Global { return g.global }

// Functions returns the function registry.
func (g *Guider) Functions() *Registry { return g.funcs }

// Prec returns the precision of arbitrary-precision functions.
func (g *Guider) Prec() uint { return g.prec }

// Logger returns the logger of the Guider, or the package logger.
func (g *Guider) Logger() *zap.Logger {
	if g.log == nil {
		return logger
	}
	return g.log
}

// With returns a Guider identical to g except that it evaluates against ctx.
// g itself is unchanged, so the substitution ends when the caller goes back
// to using g.
func (g *Guider) With(ctx *Context) *Guider {
	n := *g
	n.ctx = ctx
	return &n
}

// Eval evaluates an expression.
func (g *Guider) Eval(e *Expr) (Value, error) {
	return e.Eval(g)
}

// Writer is a diagnostic sink for progress reports of long-running
// functions.
type Writer interface {
	// Write writes text at the current indentation.
	Write(s string)
	// WriteLine writes text followed by a line break.
	WriteLine(s string)
	// Indent changes the indentation by n levels. Negative n dedents.
	Indent(n int)
	// Clear discards whatever the sink has shown so far.
	Clear()
}

// TextWriter is a Writer over an io.Writer. Each indentation level is two
// spaces. Clear only resets the indentation, as written text cannot be taken
// back.
type TextWriter struct {
	w     io.Writer
	depth int
	bol   bool
	err   error
}

// NewTextWriter creates a TextWriter writing to w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w, bol: true}
}

func (t *TextWriter) Write(s string) {
	for s != "" {
		if t.bol {
			t.put(strings.Repeat("  ", t.depth))
			t.bol = false
		}
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			t.put(s)
			return
		}
		t.put(s[:i+1])
		t.bol = true
		s = s[i+1:]
	}
}

func (t *TextWriter) WriteLine(s string) {
	t.Write(s + "\n")
}

func (t *TextWriter) Indent(n int) {
	t.depth += n
	if t.depth < 0 {
		t.depth = 0
	}
}

func (t *TextWriter) Clear() {
	t.depth = 0
}

// Err returns the first error from the underlying writer.
func (t *TextWriter) Err() error {
	return t.err
}

func (t *TextWriter) put(s string) {
	if t.err != nil || s == "" {
		return
	}
	_, t.err = io.WriteString(t.w, s)
}

type discard struct{}

func (discard) Write(string)     {}
func (discard) WriteLine(string) {}
func (discard) Indent(int)       {}
func (discard) Clear()           {}

// Discard is a Writer that ignores everything.
var Discard Writer = discard{}

var (
	_ Writer = (*TextWriter)(nil)
	_ Writer = discard{}
)
