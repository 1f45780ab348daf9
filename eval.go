package expressions

// Eval evaluates the expression against the Guider's context. Names resolve
// through the context and its parents; calls resolve through the Guider's
// function registry. A call to a function that produces no value evaluates
// to nil.
func (e *Expr) Eval(g *Guider) (Value, error) {
	return e.n.eval(g)
}

// eval computes the node's value.
func (n *node) eval(g *Guider) (Value, error) {
	switch n.kind {
	case nodeConst:
		return n.val, nil
	case nodeName:
		v := g.ctx.Lookup(n.name)
		if v == nil {
			return nil, &NameError{Name: n.name}
		}
		return v, nil
	case nodeBinary:
		l, err := n.left.eval(g)
		if err != nil {
			return nil, err
		}
		r, err := n.right.eval(g)
		if err != nil {
			return nil, err
		}
		return n.op.Evaluate(l, r)
	case nodeCall:
		f := g.funcs.Lookup(n.name)
		if f == nil {
			return nil, &UnknownFunctionError{Name: n.name}
		}
		return f.Call(g, exprs(n.list))
	case nodeArray:
		items := make([]Value, len(n.list))
		for i, c := range n.list {
			v, err := c.eval(g)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, &NoValueError{Expr: (&Expr{c}).String()}
			}
			items[i] = v
		}
		return collect(items), nil
	case nodeAssign:
		v, err := n.left.eval(g)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, &NoValueError{Expr: (&Expr{n.left}).String()}
		}
		g.ctx.SetVariable(n.name, v)
		return v, nil
	case nodeSeq:
		var v Value
		for _, c := range n.list {
			var err error
			if v, err = c.eval(g); err != nil {
				return nil, err
			}
		}
		return v, nil
	default:
		panic("expressions: invalid AST node " + n.kind.String())
	}
}

// Eval is a shortcut to evaluate an expression against ctx with a new
// Guider.
func Eval(e *Expr, ctx *Context, opts ...GuiderOption) (Value, error) {
	return e.Eval(NewGuider(ctx, opts...))
}
