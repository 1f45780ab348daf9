// Package expressions implements the evaluation runtime of a small dynamically
// typed expression language for numeric and physics computations.
//
// Values are integers, reals, booleans, strings, times, points, vectors,
// matrices, arrays, lists and contexts. Binary operators pick a kernel for the
// kinds of their operands; when there is none, they widen integers to reals,
// fall back to text for concatenation, or apply element-wise across arrays,
// in that order, and otherwise fail with an OperandError.
//
// Functions declare their parameters once with CreateParameters and have
// their arguments counted and type checked before they run. A Guider carries
// the current Context through evaluation, along with a diagnostic Writer and
// the Global Context store.
//
// Every value persists through the record stream of package ie. The Global
// Context is read and written whole through a Port; there is no locking, so
// the last writer wins.
//
// Expression trees are built with Const, Name, Binary, Call and friends:
//
//	g := expressions.NewGuider(nil)
//	e := expressions.Binary(expressions.Interval, expressions.Const(expressions.Int(1)), expressions.Const(expressions.Int(5)))
//	v, err := e.Eval(g) // [1, 2, 3, 4, 5]
package expressions
