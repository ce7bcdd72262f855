package mathtree

import (
	"math"
	"math/big"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// identityOp is the op of the root of every tree.
var identityOp = Op{
	Name:   "identity",
	Prec:   PrecIdentity,
	Arity:  1,
	Poly:   true,
	Eval:   func(args []float64) float64 { return args[0] },
	Render: func(args []string) string { return args[0] },
	Precise: func(z *big.Float, args []*big.Float) error {
		z.Set(args[0])
		return nil
	},
}

// negOp is unary minus. It binds like a function so that -(2)*3 is (-2)*3.
var negOp = Op{
	Token:  "-",
	Name:   "neg",
	Prec:   PrecFunc,
	Arity:  1,
	Poly:   true,
	Eval:   func(args []float64) float64 { return -args[0] },
	Render: func(args []string) string { return "-" + args[0] },
	Precise: func(z *big.Float, args []*big.Float) error {
		z.Neg(args[0])
		return nil
	},
}

func defaultOps() []Op {
	return []Op{
		infix("+", PrecSum, true,
			func(a, b float64) float64 { return a + b },
			func(z, a, b *big.Float) error { z.Add(a, b); return nil }),
		{
			Token: "-",
			Name:  "-",
			Prec:  PrecSum,
			Arity: 2,
			Poly:  true,
			// A subtraction with one operand is a negation.
			Eval: func(args []float64) float64 {
				if len(args) == 1 {
					return -args[0]
				}
				return args[0] - args[1]
			},
			Render: func(args []string) string {
				if len(args) == 1 {
					return "-" + args[0]
				}
				return args[0] + "-" + args[1]
			},
			Precise: func(z *big.Float, args []*big.Float) error {
				if len(args) == 1 {
					z.Neg(args[0])
					return nil
				}
				z.Sub(args[0], args[1])
				return nil
			},
		},
		infix("*", PrecProduct, true,
			func(a, b float64) float64 { return a * b },
			func(z, a, b *big.Float) error { z.Mul(a, b); return nil }),
		infix("/", PrecProduct, false,
			func(a, b float64) float64 { return a / b },
			preciseQuo),
		{
			Token:   "^",
			Name:    "^",
			Prec:    PrecFunc,
			Arity:   2,
			Right:   true,
			Power:   true,
			Poly:    true,
			Eval:    func(args []float64) float64 { return math.Pow(args[0], args[1]) },
			Render:  func(args []string) string { return args[0] + "^" + args[1] },
			Precise: func(z *big.Float, args []*big.Float) error { return precisePow(z, args[0], args[1], "^") },
		},

		monadic("sin", math.Sin, nil),
		monadic("cos", math.Cos, nil),
		monadic("tan", math.Tan, nil),
		monadic("sinh", math.Sinh, nil),
		monadic("cosh", math.Cosh, nil),
		monadic("tanh", math.Tanh, nil),
		monadic("atan", math.Atan, nil),
		monadic("atanh", math.Atanh, nil),
		poly(monadic("abs", math.Abs, func(z *big.Float, args []*big.Float) error {
			z.Abs(args[0])
			return nil
		})),
		monadic("sign", sign, func(z *big.Float, args []*big.Float) error {
			z.SetInt64(int64(args[0].Sign()))
			return nil
		}),
		monadic("sqrt", math.Sqrt, func(z *big.Float, args []*big.Float) error {
			if args[0].Sign() < 0 {
				return &DomainError{X: args[0], Arg: 1, Func: "sqrt"}
			}
			z.Sqrt(args[0])
			return nil
		}),
		monadic("exp", math.Exp, preciseExp),
		power(multi("pow", 2,
			func(args []float64) float64 { return math.Pow(args[0], args[1]) },
			func(z *big.Float, args []*big.Float) error { return precisePow(z, args[0], args[1], "pow") })),
		multi("log", 2,
			func(args []float64) float64 { return math.Log(args[0]) / math.Log(args[1]) },
			preciseLog),
		multi("max", 2,
			func(args []float64) float64 { return math.Max(args[0], args[1]) },
			func(z *big.Float, args []*big.Float) error {
				if args[0].Cmp(args[1]) >= 0 {
					z.Set(args[0])
				} else {
					z.Set(args[1])
				}
				return nil
			}),
		multi("min", 2,
			func(args []float64) float64 { return math.Min(args[0], args[1]) },
			func(z *big.Float, args []*big.Float) error {
				if args[0].Cmp(args[1]) <= 0 {
					z.Set(args[0])
				} else {
					z.Set(args[1])
				}
				return nil
			}),
		multi("clamp", 3,
			func(args []float64) float64 { return math.Min(math.Max(args[0], args[1]), args[2]) },
			func(z *big.Float, args []*big.Float) error {
				x, lo, hi := args[0], args[1], args[2]
				switch {
				case x.Cmp(lo) < 0:
					z.Set(lo)
				case x.Cmp(hi) > 0:
					z.Set(hi)
				default:
					z.Set(x)
				}
				if z.Cmp(hi) > 0 {
					z.Set(hi)
				}
				return nil
			}),
		{
			Token:  "rand",
			Name:   "rand",
			Prec:   PrecFunc,
			Arity:  0,
			Named:  true,
			Eval:   func([]float64) float64 { return rand.Float64() },
			Render: func([]string) string { return "rand()" },
		},
	}
}

// infix creates a left-associative binary operator.
func infix(tok string, prec int8, poly bool, f func(a, b float64) float64, pf func(z, a, b *big.Float) error) Op {
	return Op{
		Token:   tok,
		Name:    tok,
		Prec:    prec,
		Arity:   2,
		Poly:    poly,
		Eval:    func(args []float64) float64 { return f(args[0], args[1]) },
		Render:  func(args []string) string { return args[0] + tok + args[1] },
		Precise: func(z *big.Float, args []*big.Float) error { return pf(z, args[0], args[1]) },
	}
}

// monadic creates a named function of one operand.
func monadic(name string, f func(float64) float64, pf func(z *big.Float, args []*big.Float) error) Op {
	return Op{
		Token:   name,
		Name:    name,
		Prec:    PrecFunc,
		Arity:   1,
		Named:   true,
		Eval:    func(args []float64) float64 { return f(args[0]) },
		Render:  call(name),
		Precise: pf,
	}
}

// multi creates a named function of n comma-separated operands.
func multi(name string, n int, f func([]float64) float64, pf func(z *big.Float, args []*big.Float) error) Op {
	return Op{
		Token:   name,
		Name:    name,
		Prec:    PrecFunc,
		Arity:   n,
		Named:   true,
		Multi:   true,
		Eval:    f,
		Render:  call(name),
		Precise: pf,
	}
}

func poly(op Op) Op {
	op.Poly = true
	return op
}

func power(op Op) Op {
	op.Power = true
	op.Poly = true
	return op
}

// call renders a function call.
func call(name string) func([]string) string {
	return func(args []string) string {
		return name + "(" + strings.Join(args, ",") + ")"
	}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	// 0, -0, or NaN
	return x
}

func preciseQuo(z, a, b *big.Float) error {
	// Guard against invalid divisions, 0/0 or inf/inf.
	if a.Sign() == 0 && b.Sign() == 0 || a.IsInf() && b.IsInf() {
		return &DomainError{X: b, Arg: 2, Func: "/"}
	}
	z.Quo(a, b)
	return nil
}

func preciseExp(z *big.Float, args []*big.Float) error {
	x := args[0]
	if x.IsInf() {
		if x.Signbit() {
			z.SetInt64(0)
		} else {
			z.SetInf(false)
		}
		return nil
	}
	z.Set(bigfloat.Exp(new(big.Float).SetPrec(z.Prec()), x))
	return nil
}

func preciseLog(z *big.Float, args []*big.Float) error {
	x, b := args[0], args[1]
	if x.Sign() <= 0 {
		return &DomainError{X: x, Arg: 1, Func: "log"}
	}
	if b.Sign() <= 0 || b.IsInf() || b.Cmp(big.NewFloat(1)) == 0 {
		return &DomainError{X: b, Arg: 2, Func: "log"}
	}
	if x.IsInf() {
		z.SetInf(b.Cmp(big.NewFloat(1)) < 0)
		return nil
	}
	d := bigfloat.Log(new(big.Float).SetPrec(z.Prec()), b)
	z.Quo(bigfloat.Log(new(big.Float).SetPrec(z.Prec()), x), d)
	return nil
}

// precisePow sets z to x^y. A negative base needs an integer exponent.
func precisePow(z, x, y *big.Float, name string) error {
	switch {
	case y.Sign() == 0:
		z.SetInt64(1)
	case x.Sign() == 0:
		if y.Signbit() {
			z.SetInf(false)
		} else {
			z.SetInt64(0)
		}
	case x.Signbit():
		if !y.IsInt() {
			return &DomainError{X: x, Arg: 1, Func: name}
		}
		ax := new(big.Float).SetPrec(z.Prec()).Neg(x)
		if err := precisePow(z, ax, y, name); err != nil {
			return err
		}
		i, _ := y.Int(nil)
		if i.Bit(0) == 1 {
			z.Neg(z)
		}
	case y.IsInf():
		switch c := x.Cmp(big.NewFloat(1)); {
		case c == 0:
			z.SetInt64(1)
		case (c > 0) == !y.Signbit():
			z.SetInf(false)
		default:
			z.SetInt64(0)
		}
	case x.IsInf():
		if y.Signbit() {
			z.SetInt64(0)
		} else {
			z.SetInf(false)
		}
	default:
		// Pow may leave its result somewhere other than its first argument.
		z.Set(bigfloat.Pow(new(big.Float).SetPrec(z.Prec()), x, y))
	}
	return nil
}

// DomainError is an error returned when a function is evaluated to
// arbitrary precision on arguments outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
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
