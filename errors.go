package expressions

import (
	"strconv"
	"strings"
)

// Detailer is implemented by errors carrying a longer explanation in
// addition to their short message. A host reporting an error should show
// both.
type Detailer interface {
	error
	Detail() string
}

// OperandError is an error indicating that an operator has no kernel for the
// types of its operands, even after widening, stringification and
// broadcasting.
type OperandError struct {
	// Op is the operator symbol.
	Op string
	// Left and Right are the type names of the operands.
	Left, Right string
	// Operands is the textual form of the operands, for Detail.
	Operands [2]string
}

func (err *OperandError) Error() string {
	return "unsupported operand types for " + err.Op + ": " + err.Left + " and " + err.Right
}

func (err *OperandError) Detail() string {
	return "left operand: " + clip(err.Operands[0]) + "\nright operand: " + clip(err.Operands[1])
}

// LengthError is an error indicating arrays of different lengths combined
// element-wise.
type LengthError struct {
	Op          string
	Left, Right int
}

func (err *LengthError) Error() string {
	return "array lengths differ for " + err.Op + ": " + strconv.Itoa(err.Left) + " and " + strconv.Itoa(err.Right)
}

// ShapeError is an error indicating vectors or matrices whose shapes do not
// fit an operation.
type ShapeError struct {
	Op string
	// Left and Right describe the shapes, e.g. "matrix[2x3]". Right is empty
	// for operations on a single value.
	Left, Right string
}

func (err *ShapeError) Error() string {
	if err.Right == "" {
		return "invalid shape for " + err.Op + ": " + err.Left
	}
	return "mismatched shapes for " + err.Op + ": " + err.Left + " and " + err.Right
}

// DomainError is an error returned when an operator or function is applied to
// an argument outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X Value
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the operator or function.
	Func string
}

func (err *DomainError) Error() string {
	r := "outside domain"
	if err.X != nil {
		r = err.X.String() + " " + r
	}
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

// SingularError is an error indicating a matrix that cannot be inverted.
type SingularError struct {
	// Rows is the order of the matrix.
	Rows int
}

func (err *SingularError) Error() string {
	return "singular " + strconv.Itoa(err.Rows) + "x" + strconv.Itoa(err.Rows) + " matrix"
}

// ArgumentCountError is an error indicating a function call with the wrong
// number of arguments.
type ArgumentCountError struct {
	// Func is the function name that was called.
	Func string
	// Min and Max bound the accepted count. Max is -1 for variadic functions.
	Min, Max int
	// Got is the number of arguments passed.
	Got int
	// Usage describes the parameters of the function.
	Usage string
}

func (err *ArgumentCountError) Error() string {
	var want string
	switch {
	case err.Max < 0:
		want = "at least " + strconv.Itoa(err.Min)
	case err.Min == err.Max:
		want = strconv.Itoa(err.Min)
	default:
		want = strconv.Itoa(err.Min) + " to " + strconv.Itoa(err.Max)
	}
	return "cannot call " + err.Func + " with " + strconv.Itoa(err.Got) + " arguments, want " + want
}

func (err *ArgumentCountError) Detail() string {
	return err.Usage
}

// ArgumentTypeError is an error indicating an argument whose type is not in
// its parameter's allowed set.
type ArgumentTypeError struct {
	Func string
	// Index is the 0-based position of the argument.
	Index int
	// Expected is the allowed set.
	Expected []Kind
	// Actual is the type name of the argument.
	Actual string
	Usage  string
}

func (err *ArgumentTypeError) Error() string {
	return "argument " + strconv.Itoa(err.Index) + " of " + err.Func + " has type " + err.Actual +
		", want " + kindList(err.Expected)
}

func (err *ArgumentTypeError) Detail() string {
	return err.Usage
}

// KindError is an error indicating an item of the wrong kind put into an
// array.
type KindError struct {
	Want  Kind
	Got   string
	Index int
}

func (err *KindError) Error() string {
	return "array of " + err.Want.String() + " cannot hold " + err.Got + " (item " + strconv.Itoa(err.Index) + ")"
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// UnknownFunctionError is an error from a call to a function that is not
// registered.
type UnknownFunctionError struct {
	Name string
}

func (err *UnknownFunctionError) Error() string {
	return "unknown function: " + strconv.Quote(err.Name)
}

// NoValueError is an error indicating an expression that produced no value
// where one is needed, e.g. a call to print assigned to a variable.
type NoValueError struct {
	// Expr is the text of the expression.
	Expr string
}

func (err *NoValueError) Error() string {
	return "expression has no value: " + clip(err.Expr)
}

func kindList(ks []Kind) string {
	if len(ks) == 0 {
		return "any type"
	}
	s := make([]string, len(ks))
	for i, k := range ks {
		s[i] = k.String()
	}
	return strings.Join(s, " or ")
}

// clip shortens long operand texts in error details.
func clip(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

var (
	_ Detailer = (*OperandError)(nil)
	_ Detailer = (*ArgumentCountError)(nil)
	_ Detailer = (*ArgumentTypeError)(nil)
)

// CycleError is an error returned when exporting a context that contains
// itself.
type CycleError struct {
	// Name is the variable holding the enclosing context, if known.
	Name string
}

func (err *CycleError) Error() string {
	if err.Name == "" {
		return "context contains itself"
	}
	return "context contains itself through variable " + strconv.Quote(err.Name)
}
