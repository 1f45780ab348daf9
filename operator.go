package expressions

import (
	"errors"

	"go.uber.org/zap"
)

// Operator is a stateless binary operator over dynamically typed values.
//
// Evaluate picks the computation for a pair of operands in a fixed order:
//
//  1. The exact kernel for the operand types, found by switching on the left
//     operand's kind and then on the right operand's kind.
//  2. If exactly one operand is an Int, the exact kernel after widening that
//     operand to Real.
//  3. For operators with a string kernel, when one operand is a String and
//     neither is an Array or List, the string kernel applied to the textual
//     forms of both operands.
//  4. If either operand is an Array or List, the operator applied element by
//     element. A sequence combined with a scalar keeps its order and length;
//     two sequences must have equal lengths.
//
// Anything else is an OperandError. No step ever coerces an operand silently
// to make a numeric kernel apply.
type Operator struct {
	symbol   string
	priority int
	// kernel returns errNoKernel when there is no kernel for the operand
	// types.
	kernel func(l, r Value) (Value, error)
	// text is whether kernel has a String×String case.
	text bool
}

// errNoKernel is the sentinel kernels return for unsupported type pairs.
var errNoKernel = errors.New("expressions: no kernel")

// Symbol returns the operator's symbol.
func (op *Operator) Symbol() string {
	return op.symbol
}

// Priority returns the binding priority of the operator; higher binds
// tighter. Evaluation does not use it.
func (op *Operator) Priority() int {
	return op.priority
}

func (op *Operator) String() string {
	return op.symbol
}

// Evaluate applies the operator to two operands.
func (op *Operator) Evaluate(l, r Value) (Value, error) {
	if l == nil || r == nil {
		return nil, op.unsupported(l, r)
	}
	v, err := op.kernel(l, r)
	if err != errNoKernel {
		return v, err
	}
	if wl, wr, ok := widen(l, r); ok {
		v, err := op.kernel(wl, wr)
		if err != errNoKernel {
			logger.Debug("widened operands", zap.String("op", op.symbol),
				zap.String("left", TypeName(l)), zap.String("right", TypeName(r)))
			return v, err
		}
	}
	if op.text && textual(l, r) {
		logger.Debug("stringified operands", zap.String("op", op.symbol),
			zap.String("left", TypeName(l)), zap.String("right", TypeName(r)))
		v, err := op.kernel(String(l.String()), String(r.String()))
		if err != errNoKernel {
			return v, err
		}
	}
	if v, ok, err := op.broadcast(l, r); ok {
		return v, err
	}
	return nil, op.unsupported(l, r)
}

func (op *Operator) unsupported(l, r Value) error {
	err := &OperandError{Op: op.symbol, Left: TypeName(l), Right: TypeName(r)}
	if l != nil {
		err.Operands[0] = l.String()
	}
	if r != nil {
		err.Operands[1] = r.String()
	}
	return err
}

// widen converts the Int operand to Real when exactly one operand is an Int.
func widen(l, r Value) (Value, Value, bool) {
	li, lok := l.(Int)
	ri, rok := r.(Int)
	switch {
	case lok && !rok:
		return Real(li), r, true
	case rok && !lok:
		return l, Real(ri), true
	}
	return l, r, false
}

// textual reports whether stringification applies to the operands.
func textual(l, r Value) bool {
	if _, ok := sequence(l); ok {
		return false
	}
	if _, ok := sequence(r); ok {
		return false
	}
	_, ls := l.(String)
	_, rs := r.(String)
	return ls || rs
}

// broadcast applies the operator element-wise when either operand is an
// Array or List. ok is false when neither is.
func (op *Operator) broadcast(l, r Value) (v Value, ok bool, err error) {
	ls, lok := sequence(l)
	rs, rok := sequence(r)
	var out []Value
	switch {
	case lok && rok:
		if len(ls) != len(rs) {
			return nil, true, &LengthError{Op: op.symbol, Left: len(ls), Right: len(rs)}
		}
		out = make([]Value, len(ls))
		for i := range ls {
			if out[i], err = op.Evaluate(ls[i], rs[i]); err != nil {
				return nil, true, err
			}
		}
	case lok:
		out = make([]Value, len(ls))
		for i := range ls {
			if out[i], err = op.Evaluate(ls[i], r); err != nil {
				return nil, true, err
			}
		}
	case rok:
		out = make([]Value, len(rs))
		for i := range rs {
			if out[i], err = op.Evaluate(l, rs[i]); err != nil {
				return nil, true, err
			}
		}
	default:
		return nil, false, nil
	}
	return collect(out), true, nil
}

// The operators of the language.
var (
	Or  = &Operator{symbol: "||", priority: 10, kernel: or}
	And = &Operator{symbol: "&&", priority: 15, kernel: and}

	Equals       = &Operator{symbol: "==", priority: 20, kernel: equals}
	NotEquals    = &Operator{symbol: "!=", priority: 20, kernel: notEquals}
	Less         = &Operator{symbol: "<", priority: 20, kernel: less}
	Greater      = &Operator{symbol: ">", priority: 20, kernel: greater}
	LessEqual    = &Operator{symbol: "<=", priority: 20, kernel: lessEqual}
	GreaterEqual = &Operator{symbol: ">=", priority: 20, kernel: greaterEqual}

	Generate = &Operator{symbol: "#", priority: 30, kernel: generate}
	Interval = &Operator{symbol: "...", priority: 30, kernel: interval}

	Plus  = &Operator{symbol: "+", priority: 40, kernel: plus, text: true}
	Minus = &Operator{symbol: "-", priority: 40, kernel: minus}

	Times  = &Operator{symbol: "*", priority: 50, kernel: times}
	Divide = &Operator{symbol: "/", priority: 50, kernel: divide}
	Modulo = &Operator{symbol: "%", priority: 50, kernel: modulo}

	Power = &Operator{symbol: "^", priority: 60, kernel: power}
)

var operators = []*Operator{
	Or, And,
	Equals, NotEquals, Less, Greater, LessEqual, GreaterEqual,
	Generate, Interval,
	Plus, Minus,
	Times, Divide, Modulo,
	Power,
}

// Operators returns all operators in order of increasing priority.
func Operators() []*Operator {
	return append([]*Operator(nil), operators...)
}

// LookupOperator returns the operator with the given symbol, or nil.
func LookupOperator(symbol string) *Operator {
	for _, op := range operators {
		if op.symbol == symbol {
			return op
		}
	}
	return nil
}
