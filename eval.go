package mathtree

import (
	"math"
	"strconv"
)

// Bindings maps variable names to values for evaluation.
type Bindings map[string]float64

// Eval evaluates the tree with IEEE 754 arithmetic. Division by zero and
// arguments outside the domain of a function give infinities or NaN rather
// than errors. It is an error for the tree to use a variable missing from
// vars.
func (t *Tree) Eval(vars Bindings) (float64, error) {
	return t.eval(0, vars)
}

func (t *Tree) eval(id NodeID, vars Bindings) (float64, error) {
	n := &t.nodes[id]
	switch n.kind {
	case KindNum, KindConst:
		return n.val, nil
	case KindVar:
		v, ok := vars[n.text]
		if !ok {
			return 0, &NameError{Name: n.text}
		}
		return v, nil
	case KindRoot, KindOp:
		op := t.opOf(id)
		if len(n.kids) != op.Arity {
			return 0, &CallError{Func: op.Name, Len: len(n.kids)}
		}
		var buf [4]float64
		args := buf[:0]
		for _, k := range n.kids {
			v, err := t.eval(k, vars)
			if err != nil {
				return 0, err
			}
			args = append(args, v)
		}
		return op.Eval(args), nil
	default:
		panic("mathtree: eval on node of kind " + n.kind.String())
	}
}

// EvalString is a shortcut to parse an expression with the default functions
// and evaluate it.
func EvalString(src string, vars Bindings) (float64, error) {
	t, err := Parse(src)
	if err != nil {
		return math.NaN(), err
	}
	return t.Eval(vars)
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation bindings.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}
