package mathtree

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// Context evaluates trees to arbitrary precision. A Context holds variables,
// cached constants, and scratch space for the largest tree it has evaluated.
// It must not be used from multiple goroutines at once, but any number of
// contexts may evaluate the same tree concurrently.
type Context struct {
	prec  uint
	names map[string]*big.Float
	// nums caches parsed numbers and named constants at prec.
	nums map[string]*big.Float
	// vals holds one scratch value per node of the tree being evaluated.
	// Leaves never use theirs.
	vals []*big.Float
	args []*big.Float

	res  *big.Float
	err  error
	busy bool
}

// ctxconf collects options before they are applied to a new context.
type ctxconf struct {
	prec uint
	set  map[string]*big.Float
}

// ContextOption configures a context created by NewContext or Clone.
type ContextOption func(*ctxconf)

// SetVar sets the value of a variable in the context.
func SetVar(name string, val *big.Float) ContextOption {
	return func(c *ctxconf) { c.set[name] = val }
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]*big.Float) ContextOption {
	return func(c *ctxconf) {
		for k, v := range vars {
			c.set[k] = v
		}
	}
}

// Prec sets the precision of calculations in bits. Variables given by other
// options are rounded to it regardless of the order of the options.
func Prec(prec uint) ContextOption {
	return func(c *ctxconf) { c.prec = prec }
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: 64}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context with its variables and applies options
// to it. The returned context has no Result.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	c := ctxconf{prec: ctx.prec, set: make(map[string]*big.Float)}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	n := Context{
		prec:  c.prec,
		names: make(map[string]*big.Float, len(ctx.names)+len(c.set)),
		nums:  make(map[string]*big.Float, len(ctx.nums)),
	}
	// Variables are never modified in place, so they can be shared when the
	// precision is unchanged.
	for k, v := range ctx.names {
		if n.prec != ctx.prec {
			v = new(big.Float).SetPrec(n.prec).Set(v)
		}
		n.names[k] = v
	}
	for k, v := range c.set {
		n.names[k] = new(big.Float).SetPrec(n.prec).Set(v)
	}
	// Cached numbers are only good at no more than the precision they were
	// computed to.
	if n.prec <= ctx.prec {
		for k, v := range ctx.nums {
			if n.prec != ctx.prec {
				v = new(big.Float).SetPrec(n.prec).Set(v)
			}
			n.nums[k] = v
		}
	}
	return &n
}

// Eval evaluates a tree and returns the result. If an error occurs, e.g. a
// missing variable definition or an argument to a function is outside the
// function's domain, then the result is nil and ctx.Err returns the error.
// The result belongs to the caller; later evaluations do not modify it.
//
// Ops without a Precise implementation are evaluated in float64 on their
// rounded operands. If such an op gives NaN, the error is a *DomainError.
func (ctx *Context) Eval(t *Tree) *big.Float {
	if ctx.busy {
		panic("mathtree: Eval during Eval")
	}
	ctx.busy = true
	defer func() { ctx.busy = false }()
	ctx.res, ctx.err = nil, nil
	ctx.args = ctx.args[:0]
	if len(ctx.vals) < len(t.nodes) {
		ctx.vals = append(ctx.vals, make([]*big.Float, len(t.nodes)-len(ctx.vals))...)
	}
	r, err := ctx.eval(t, 0)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.res = new(big.Float).SetPrec(ctx.prec).Set(r)
	return ctx.Result()
}

// Result returns the result obtained after evaluating a tree. Panics if ctx
// has not been used to evaluate a tree. Returns nil if an error occurred
// during evaluation.
func (ctx *Context) Result() *big.Float {
	if ctx.err != nil {
		return nil
	}
	if ctx.res == nil {
		panic("mathtree: Context.Result called before evaluating any tree")
	}
	return ctx.res
}

// Err returns the error that occurred while evaluating the last tree with
// ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of a variable. Returns ctx for chaining. Calling Set
// while the context is being used to evaluate a tree panics.
func (ctx *Context) Set(name string, value *big.Float) *Context {
	if ctx.busy {
		panic("mathtree: Set on in-use context")
	}
	if ctx.names == nil {
		ctx.names = make(map[string]*big.Float)
	}
	ctx.names[name] = new(big.Float).SetPrec(ctx.prec).Set(value)
	return ctx
}

// Lookup returns a copy of the value of a variable. If there is no such
// variable in the context, then the result is nil.
func (ctx *Context) Lookup(name string) *big.Float {
	v := ctx.names[name]
	if v == nil {
		return nil
	}
	return new(big.Float).Copy(v)
}

// Names returns the sorted names of the variables set in the context.
func (ctx *Context) Names() []string {
	return sortedKeys(ctx.names)
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Bindings returns the variables of the context rounded to float64, for
// evaluating trees with Tree.Eval.
func (ctx *Context) Bindings() Bindings {
	b := make(Bindings, len(ctx.names))
	for k, v := range ctx.names {
		b[k], _ = v.Float64()
	}
	return b
}

// scratch returns the scratch value for a node.
func (ctx *Context) scratch(id NodeID) *big.Float {
	z := ctx.vals[id]
	if z == nil {
		z = new(big.Float).SetPrec(ctx.prec)
		ctx.vals[id] = z
	}
	return z
}

// num gets a cached number from its text.
func (ctx *Context) num(s string) *big.Float {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	r, _, err := new(big.Float).SetPrec(ctx.prec).Parse(s, 0)
	switch {
	case err == nil: // do nothing
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// big.Float reports overflow only through the message.
		r = new(big.Float).SetInf(s[0] == '-')
	default:
		panic("mathtree: invalid number: " + s + " (" + err.Error() + ")")
	}
	ctx.nums[s] = r
	return r
}

// constant gets a cached named constant.
func (ctx *Context) constant(name string) *big.Float {
	key := strings.ToLower(name)
	switch key {
	case "π":
		key = "pi"
	case "τ":
		key = "tau"
	}
	// Named constants are identifiers, so they cannot collide with numbers.
	if r := ctx.nums[key]; r != nil {
		return r
	}
	r := new(big.Float).SetPrec(ctx.prec)
	switch key {
	case "pi":
		r = bigfloat.Pi(r)
	case "tau":
		r = bigfloat.Pi(r)
		r.SetMantExp(r, 1)
	case "e":
		r.Set(bigfloat.Exp(new(big.Float).SetPrec(ctx.prec), big.NewFloat(1)))
	default:
		panic("mathtree: unknown constant " + strconv.Quote(name))
	}
	ctx.nums[key] = r
	return r
}

// eval computes the value of a node. Leaves give cached values or variables
// directly, so the result must not be modified.
func (ctx *Context) eval(t *Tree, id NodeID) (*big.Float, error) {
	n := &t.nodes[id]
	switch n.kind {
	case KindNum:
		return ctx.num(n.text), nil
	case KindConst:
		return ctx.constant(n.text), nil
	case KindVar:
		v := ctx.names[n.text]
		if v == nil {
			return nil, &NameError{Name: n.text}
		}
		return v, nil
	case KindRoot, KindOp:
		op := t.opOf(id)
		if len(n.kids) != op.Arity {
			return nil, &CallError{Func: op.Name, Len: len(n.kids)}
		}
		k := len(ctx.args)
		for _, c := range n.kids {
			v, err := ctx.eval(t, c)
			if err != nil {
				return nil, err
			}
			ctx.args = append(ctx.args, v)
		}
		z := ctx.scratch(id)
		err := calc(op, z, ctx.args[k:len(ctx.args):len(ctx.args)])
		ctx.args = ctx.args[:k]
		if err != nil {
			return nil, err
		}
		return z, nil
	default:
		panic("mathtree: eval on node of kind " + n.kind.String())
	}
}

// calc evaluates an op to the precision of z.
func calc(op *Op, z *big.Float, args []*big.Float) (err error) {
	if op.Precise == nil {
		var buf [4]float64
		xs := buf[:0]
		for _, a := range args {
			x, _ := a.Float64()
			xs = append(xs, x)
		}
		v := op.Eval(xs)
		if math.IsNaN(v) {
			return &DomainError{Func: op.Name}
		}
		z.SetFloat64(v)
		return nil
	}
	defer func() {
		// Operations like Inf-Inf panic rather than produce NaN.
		if r := recover(); r != nil {
			if _, ok := r.(big.ErrNaN); !ok {
				panic(r)
			}
			err = &DomainError{Func: op.Name}
		}
	}()
	return op.Precise(z, args)
}

// EvalPrecise evaluates the tree with a context. It is a shortcut for ctx.Eval
// that also returns the error.
func (t *Tree) EvalPrecise(ctx *Context) (*big.Float, error) {
	r := ctx.Eval(t)
	return r, ctx.Err()
}
