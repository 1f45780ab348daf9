package expressions

import (
	"strconv"
	"strings"
)

// Expr is an expression tree that can be evaluated with a Guider. Trees are
// built with Const, Name, Binary, Call, ArrayExpr, Assign and Sequence.
type Expr struct {
	// n is the root node of the expression.
	n *node
}

// node is a node in the tree of an expression.
type node struct {
	kind nodeKind

	name string
	val  Value
	op   *Operator

	left  *node
	right *node
	list  []*node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeConst  // val
	nodeName   // lookup(name)
	nodeBinary // op(left, right)
	nodeCall   // name is Function to call, list is the arguments
	nodeArray  // list is the items
	nodeAssign // set name to left
	nodeSeq    // evaluate list in order, result is the last
)

var nodeNames = [...]string{
	nodeNone:   "None",
	nodeConst:  "Const",
	nodeName:   "Name",
	nodeBinary: "Binary",
	nodeCall:   "Call",
	nodeArray:  "Array",
	nodeAssign: "Assign",
	nodeSeq:    "Seq",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

// Const is an expression evaluating to v.
func Const(v Value) *Expr {
	return &Expr{&node{kind: nodeConst, val: v}}
}

// Name is an expression evaluating to the value of a variable.
func Name(name string) *Expr {
	return &Expr{&node{kind: nodeName, name: name}}
}

// Binary is an expression applying op to two operands.
func Binary(op *Operator, l, r *Expr) *Expr {
	return &Expr{&node{kind: nodeBinary, op: op, left: l.n, right: r.n}}
}

// Call is an expression calling a function by name. The function is looked
// up in the Guider's registry when the expression is evaluated.
func Call(name string, args ...*Expr) *Expr {
	return &Expr{&node{kind: nodeCall, name: name, list: nodes(args)}}
}

// ArrayExpr is an expression collecting its items into an Array, or into a
// List if their kinds differ.
func ArrayExpr(items ...*Expr) *Expr {
	return &Expr{&node{kind: nodeArray, list: nodes(items)}}
}

// Assign is an expression setting a variable of the current context. Its
// value is the assigned value.
func Assign(name string, v *Expr) *Expr {
	return &Expr{&node{kind: nodeAssign, name: name, left: v.n}}
}

// Sequence is an expression evaluating each of es in order. Its value is the
// value of the last one.
func Sequence(es ...*Expr) *Expr {
	return &Expr{&node{kind: nodeSeq, list: nodes(es)}}
}

func nodes(es []*Expr) []*node {
	r := make([]*node, len(es))
	for i, e := range es {
		r[i] = e.n
	}
	return r
}

func exprs(ns []*node) []*Expr {
	r := make([]*Expr, len(ns))
	for i, n := range ns {
		r[i] = &Expr{n}
	}
	return r
}

// VarName returns the name of a variable reference. ok is false if the
// expression is anything else.
func (e *Expr) VarName() (name string, ok bool) {
	if e == nil || e.n.kind != nodeName {
		return "", false
	}
	return e.n.name, true
}

// Vars returns the names of the variables the expression reads or assigns,
// in order of first appearance.
func (e *Expr) Vars() []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if (n.kind == nodeName || n.kind == nodeAssign) && !seen[n.name] {
			seen[n.name] = true
			names = append(names, n.name)
		}
		walk(n.left)
		walk(n.right)
		for _, c := range n.list {
			walk(c)
		}
	}
	walk(e.n)
	return names
}

func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b)
	return b.String()
}

func (n *node) fmt(b *strings.Builder) {
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteString("$$")
	case nodeConst:
		if s, ok := n.val.(String); ok {
			b.WriteString(strconv.Quote(string(s)))
			return
		}
		b.WriteString(n.val.String())
	case nodeName:
		b.WriteString(n.name)
	case nodeBinary:
		b.WriteByte('(')
		n.left.fmt(b)
		b.WriteString(" " + n.op.symbol + " ")
		n.right.fmt(b)
		b.WriteByte(')')
	case nodeCall:
		b.WriteString(n.name)
		n.fmtlist(b, '(', ')', ", ")
	case nodeArray:
		n.fmtlist(b, '[', ']', ", ")
	case nodeAssign:
		b.WriteString(n.name + " = ")
		n.left.fmt(b)
	case nodeSeq:
		n.fmtlist(b, '{', '}', "; ")
	default:
		panic("expressions: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtlist(b *strings.Builder, l, r byte, sep string) {
	b.WriteByte(l)
	defer b.WriteByte(r)
	for i, c := range n.list {
		if i > 0 {
			b.WriteString(sep)
		}
		c.fmt(b)
	}
}
