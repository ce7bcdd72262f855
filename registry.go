package mathtree

import (
	"errors"
	"math/big"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Precedence classes. Higher binds tighter.
const (
	PrecIdentity int8 = iota
	PrecSum
	PrecProduct
	PrecFunc
)

// Op describes an operator or named function. Ops are plain data; a Registry
// decides which tokens select them.
type Op struct {
	// Token is the text that selects the op: one character for infix
	// operators, or a keyword for named functions.
	Token string
	// Name is the display name.
	Name string
	// Prec is the precedence class.
	Prec int8
	// Arity is the number of operands the op takes.
	Arity int
	// Right marks right-associative infix operators.
	Right bool
	// Named ops render as calls with explicit brackets.
	Named bool
	// Multi marks named ops taking comma-separated operands in one call.
	Multi bool
	// Power marks ops whose second operand is an exponent for polynomial
	// classification.
	Power bool
	// Poly marks ops which keep a polynomial term polynomial.
	Poly bool

	// Eval computes the op's value from its evaluated operands.
	Eval func(args []float64) float64
	// Render builds the op's text from its rendered operands. It is called
	// with placeholders in place of the operands and must place them in its
	// result unchanged, each at most once.
	Render func(args []string) string
	// Precise sets z to the op's value to the precision of z. If Precise is
	// nil, precise evaluation rounds the operands to float64 and uses Eval.
	Precise func(z *big.Float, args []*big.Float) error
}

// OpID is the index of an op in its Registry.
type OpID int16

// noOp is the OpID of nothing.
const noOp OpID = -1

// Registry is an immutable table of ops. The zero Registry is not usable; use
// NewRegistry or DefaultRegistry. A Registry is safe for concurrent use.
type Registry struct {
	ops []Op
	// infix maps ASCII operator characters to ops.
	infix [utf8.RuneSelf]OpID
	// funcs maps keywords to named ops.
	funcs map[string]OpID
	// identity, mul, and neg are the ops the parser synthesizes: the root,
	// implicit multiplication, and unary minus.
	identity, mul, neg OpID
}

// NewRegistry creates a registry of the given ops along with the built-in
// identity and negation ops. There must be an infix "*" op, which the parser
// uses for implicit multiplication. Later ops with the same token replace
// earlier ones.
func NewRegistry(ops ...Op) (*Registry, error) {
	r := Registry{
		ops:   make([]Op, 0, len(ops)+2),
		funcs: make(map[string]OpID, len(ops)),
		mul:   noOp,
	}
	for i := range r.infix {
		r.infix[i] = noOp
	}
	r.identity = r.add(identityOp)
	r.neg = r.add(negOp)
	for _, op := range ops {
		if err := validate(&op); err != nil {
			return nil, err
		}
		if op.Named {
			if k, ok := r.funcs[op.Token]; ok {
				r.ops[k] = op
				continue
			}
			r.funcs[op.Token] = r.add(op)
			continue
		}
		c := op.Token[0]
		if k := r.infix[c]; k != noOp {
			r.ops[k] = op
		} else {
			r.infix[c] = r.add(op)
		}
		if c == '*' {
			r.mul = r.infix[c]
		}
	}
	if r.mul == noOp {
		return nil, errors.New("mathtree: registry needs a * operator")
	}
	return &r, nil
}

func (r *Registry) add(op Op) OpID {
	r.ops = append(r.ops, op)
	return OpID(len(r.ops) - 1)
}

// validate checks that an op can be parsed and evaluated.
func validate(op *Op) error {
	name := strconv.Quote(op.Token)
	switch {
	case op.Token == "":
		return errors.New("mathtree: op with empty token")
	case op.Eval == nil || op.Render == nil:
		return errors.New("mathtree: op " + name + " needs Eval and Render")
	case op.Arity < 0:
		return errors.New("mathtree: op " + name + " has negative arity")
	case op.Multi && (!op.Named || op.Arity < 2):
		return errors.New("mathtree: multi-argument op " + name + " must be a named function of at least two operands")
	}
	if op.Named {
		if !isIdent(op.Token) {
			return errors.New("mathtree: function name " + name + " is not an identifier")
		}
		if isNamedConst(op.Token) {
			return errors.New("mathtree: function name " + name + " is a constant")
		}
		if op.Prec < PrecFunc {
			return errors.New("mathtree: function " + name + " must have function precedence")
		}
		return nil
	}
	if len(op.Token) != 1 || op.Token[0] >= utf8.RuneSelf {
		return errors.New("mathtree: infix operator " + name + " must be one ASCII character")
	}
	c := rune(op.Token[0])
	if unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.IsSpace(c) || c == '_' || c == '.' || c == '(' || c == ')' || c == ',' {
		return errors.New("mathtree: " + name + " cannot be an operator")
	}
	if op.Arity != 2 {
		return errors.New("mathtree: infix operator " + name + " must have two operands")
	}
	if op.Prec <= PrecIdentity {
		return errors.New("mathtree: infix operator " + name + " must have positive precedence")
	}
	return nil
}

// infixOp returns the infix operator selected by c, or noOp.
func (r *Registry) infixOp(c rune) OpID {
	if c < 0 || c >= utf8.RuneSelf {
		return noOp
	}
	return r.infix[c]
}

// funcOp returns the named function selected by a keyword, or noOp.
func (r *Registry) funcOp(tok string) OpID {
	k, ok := r.funcs[tok]
	if !ok {
		return noOp
	}
	return k
}

// op returns the op with the given ID.
func (r *Registry) op(k OpID) *Op {
	return &r.ops[k]
}

// Lookup returns the op selected by a token, either an infix operator
// character or a function keyword.
func (r *Registry) Lookup(token string) (Op, bool) {
	k := r.funcOp(token)
	if k == noOp && len(token) == 1 {
		k = r.infixOp(rune(token[0]))
	}
	if k == noOp {
		return Op{}, false
	}
	return r.ops[k], true
}

// Ops returns the ops in the registry, excluding the built-in identity and
// negation ops.
func (r *Registry) Ops() []Op {
	v := make([]Op, 0, len(r.ops))
	for k, op := range r.ops {
		if OpID(k) == r.identity || OpID(k) == r.neg {
			continue
		}
		v = append(v, op)
	}
	return v
}

// With returns a new registry with ops added or replaced. An op with a nil
// Eval removes the op with the same token, so its keyword parses as a
// variable. It is an error to remove the * operator.
func (r *Registry) With(ops ...Op) (*Registry, error) {
	rm := make(map[string]bool)
	for _, op := range ops {
		if op.Eval == nil {
			rm[op.Token] = true
		} else {
			delete(rm, op.Token)
		}
	}
	all := make([]Op, 0, len(r.ops)+len(ops))
	for _, op := range r.Ops() {
		if !rm[op.Token] {
			all = append(all, op)
		}
	}
	for _, op := range ops {
		if op.Eval != nil {
			all = append(all, op)
		}
	}
	return NewRegistry(all...)
}

// withoutFuncs returns a registry with only the infix operators of r.
func (r *Registry) withoutFuncs() *Registry {
	var ops []Op
	for _, op := range r.Ops() {
		if !op.Named {
			ops = append(ops, op)
		}
	}
	return mustRegistry(ops...)
}

// DefaultRegistry returns the registry of the default operators and
// functions: + - * / ^ and sin, cos, tan, sinh, cosh, tanh, atan, atanh, abs,
// sign, sqrt, exp, pow, log, max, min, clamp, rand.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

var defaultRegistry = mustRegistry(defaultOps()...)

func mustRegistry(ops ...Op) *Registry {
	r, err := NewRegistry(ops...)
	if err != nil {
		panic(err)
	}
	return r
}
