package mathtree

import (
	"math"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

// diff finds the first pre-order pair of nodes of the subtrees at n in a and
// m in b that differ in anything but depth, or NoNode, NoNode if the two
// subtrees have the same shape.
func diff(a *Tree, n NodeID, b *Tree, m NodeID) (NodeID, NodeID) {
	x, y := &a.nodes[n], &b.nodes[m]
	if x.kind == KindNone || y.kind == KindNone || x.kind != y.kind {
		return n, m
	}
	switch x.kind {
	case KindNum, KindConst:
		if x.val != y.val && !(math.IsNaN(x.val) && math.IsNaN(y.val)) {
			return n, m
		}
	case KindVar:
		if x.text != y.text {
			return n, m
		}
	case KindRoot, KindOp:
		if a.opOf(n).Name != b.opOf(m).Name || len(x.kids) != len(y.kids) {
			return n, m
		}
		for i := range x.kids {
			if d, e := diff(a, x.kids[i], b, y.kids[i]); d != NoNode || e != NoNode {
				return d, e
			}
		}
	default:
		panic("invalid node kind " + x.kind.String())
	}
	return NoNode, NoNode
}

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(x)", "x"},
		{"multi", "((((x))))", "x"},
		{"space", " 1 +  2 ", "1+2"},
		{"plus", "+x", "x"},

		{"neg", "-x", "-(x)"},
		{"negneg", "--x", "-(-x)"},
		{"negcall", "-sin(x)", "-(sin(x))"},
		{"negpow", "-x^2", "(-x)^2"},
		{"powneg", "x^-y", "x^(-y)"},
		{"negmul", "-(2)*3", "(-(2))*3"},

		{"add", "x+y", "(x)+(y)"},
		{"add4", "w+x+y+z", "((w+x)+y)+z"},
		{"sub4", "w-x-y-z", "((w-x)-y)-z"},
		{"mul4", "w*x*y*z", "((w*x)*y)*z"},
		{"div4", "w/x/y/z", "((w/x)/y)/z"},
		{"pow4", "w^x^y^z", "w^(x^(y^z))"},
		{"desc", "w^x*y+z", "((w^x)*y)+z"},
		{"asc", "w+x*y^z", "w+(x*(y^z))"},
		{"descasc", "w^x*y+z+a*b^c", "(((w^x)*y)+z)+a*(b^c)"},
		{"ascdesc", "w+x*y^z^a*b+c", "w+((x*(y^(z^a)))*b)+c"},
		{"groups", "(1+2)*(3-1)+1", "((1+2)*(3-1))+1"},

		{"implicit", "5(1+2)", "5*(1+2)"},
		{"implicit-close", "(1+2)x", "(1+2)*x"},
		{"implicit-groups", "(a)(b)", "a*b"},
		{"implicit-call", "(2)sin(1)", "2*sin(1)"},
		{"implicit-name", "x(y+1)", "x*(y+1)"},
		{"implicit-negnum", "-5(1+2)", "(-5)*(1+2)"},

		{"powcall", "2^sin(x)", "2^(sin(x))"},
		{"callpow", "sin(x)^2", "(sin(x))^2"},
		{"callmul", "2*sin(x)+3", "(2*(sin(x)))+3"},
		{"multi-add", "max(a,b)+c", "(max(a,b))+c"},
		{"multi-nested", "max(min(a,b),c)", "max((min(a,b)),c)"},
		{"multi-expr", "max(1+2,3*4)", "max((1+2),(3*4))"},
		{"multi-unary", "max(sin(a),b)", "max((sin(a)),b)"},
		{"sci", "1e-5*x", "(1e-5)*x"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.a, CheckTree())
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.a, err)
			}
			b, err := Parse(c.b, CheckTree())
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.b, err)
			}
			d, e := diff(a, a.Root(), b, b.Root())
			if d != NoNode || e != NoNode {
				t.Errorf("mismatched trees:\n\t%q parses %s has node %d\n\t%q parses %s has node %d", c.a, a.BuildExpression(), d, c.b, b.BuildExpression(), e)
			}
		})
	}
}

func TestParseExact(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"num", "1", "1"},
		{"negnum", "-5", "-5"},
		{"paren", "(x)", "x"},
		{"const", "PI*2", "(PI*2)"},
		{"prec", "4 + 5 * 6", "(4+(5*6))"},
		{"left", "4 + 5 - 6", "((4+5)-6)"},
		{"right", "2^3^4", "(2^(3^4))"},
		{"multi", "max(min(max(min(1,2),3),4),5)", "(max((min((max((min(1,2)),3)),4)),5))"},
		{"neg", "-x", "(-x)"},
		{"neggroup", "-(5 * 2)", "(-(5*2))"},
		{"negcall", "-sin(1)", "(-(sin(1)))"},
		{"negconst", "-(5)", "(-(5))"},
		{"negneg", "--1", "(-(-1))"},
		{"implicit", "5(1+2)", "(5*(1+2))"},
		{"niladic", "rand()", "(rand())"},
		{"clamp", "clamp(x, 0, 1)", "(clamp(x,0,1))"},
		{"sci", "1e-5", "1e-5"},
		{"climb", "2*3^4^5-6", "((2*(3^(4^5)))-6)"},
		{"climbdepth", "(2^3*4)-5", "(((2^3)*4)-5)"},
		{"climbcall", "max(1,2)^2*3+4", "((((max(1,2))^2)*3)+4)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.src)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.src, err)
			}
			if s := a.BuildExpression(); s != c.want {
				t.Errorf("%q has wrong canonical form: want %q, got %q", c.src, c.want, s)
			}
			// The canonical form is a fixed point.
			b, err := Parse(c.want)
			if err != nil {
				t.Fatalf("failed to parse canonical %q: %v", c.want, err)
			}
			if s := b.BuildExpression(); s != c.want {
				t.Errorf("canonical %q reparsed to %q", c.want, s)
			}
			d, e := diff(a, a.Root(), b, b.Root())
			if d != NoNode || e != NoNode {
				t.Errorf("canonical %q parses to a different tree at nodes %d, %d", c.want, d, e)
			}
		})
	}
}

func TestTreeString(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"flat", "1+2*3", "1+2*3"},
		{"group", "(1+2)*3", "(1+2)*3"},
		{"redundant", "((1+2))", "1+2"},
		{"right", "2*(3*4)", "2*(3*4)"},
		{"args", "max((1+2),3)", "max(1+2,3)"},
		{"neg", "-(5*2)", "-(5*2)"},
		{"pow", "(2^3)^4", "(2^3)^4"},
		{"call", "sin(cos(x))", "sin(cos(x))"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.src)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.src, err)
			}
			if s := a.String(); s != c.want {
				t.Errorf("%q has wrong minimal form: want %q, got %q", c.src, c.want, s)
			}
		})
	}
}

func TestParseDepths(t *testing.T) {
	a, err := Parse("(1+2)*3")
	if err != nil {
		t.Fatal(err)
	}
	mul := a.Children(a.Root())[0]
	if d := a.Depth(mul); d != 0 {
		t.Errorf("* has depth %d, want 0", d)
	}
	add := a.Children(mul)[0]
	if d := a.Depth(add); d != 1 {
		t.Errorf("+ has depth %d, want 1", d)
	}
	if p := a.Parent(add); p != mul {
		t.Errorf("+ has parent %d, want %d", p, mul)
	}
	if d := a.Depth(a.Root()); d != -1 {
		t.Errorf("root has depth %d, want -1", d)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  InputError
		res  []string
	}{
		{"empty", "", new(EmptyExpressionError), []string{`(?i)\bno expression\b`}},
		{"blank", "   ", new(EmptyExpressionError), []string{`(?i)\bno expression\b`}},
		{"emptyparen", "()", new(EmptyExpressionError), []string{`(?i)\bno expression\b`, `\)`}},
		{"emptyoperand", "(1+)", new(EmptyExpressionError), []string{`\)`}},
		{"emptyneg", "(-)", new(EmptyExpressionError), []string{`\)`}},
		{"right", "x)", new(BracketError), []string{`(?i)\bbracket\b`, `\)`}},
		{"nonunary", "*x", new(OperatorError), []string{`(?i)\bop`, `\*`, `(?i)\bno left operand\b`}},
		{"double", "1+*2", new(OperatorError), []string{`\*`}},
		{"plusminus", "-+1", new(OperatorError), []string{`\+`}},
		{"sep", "1, 2", new(SeparatorError), []string{`","`}},
		{"sepbrackets", "(1, 2)", new(SeparatorError), []string{`","`}},
		{"sepinner", "max(1+(2,3),4)", new(SeparatorError), []string{`","`}},
		{"call1-2", "sin(1, 2)", new(CallError), []string{`(?i)\bcall\b`, `\bsin\b`, `\b2\b`}},
		{"call2-3", "max(1, 2, 3)", new(CallError), []string{`\bmax\b`, `\b3\b`}},
		{"call2-1", "max(1)", new(CallError), []string{`\bmax\b`, `\b1\b`}},
		{"call1-bare", "sin", new(CallError), []string{`\bsin\b`, `\b0\b`}},
		{"call1-bareadd", "sin+1", new(CallError), []string{`\bsin\b`}},
		{"call1-0", "sin()", new(EmptyExpressionError), []string{`\)`}},
		{"call0-1", "rand(1)", new(CallError), []string{`\brand\b`, `\b1\b`}},
		{"emptyarg", "max(,1)", new(EmptyExpressionError), []string{`","`}},
		{"emptylast", "max(1,)", new(EmptyExpressionError), []string{`"\)"`}},
		{"juxtaposed", "2x", new(TokenError), []string{`(?i)\bnumber\b`, `"2x"`}},
		{"badexp", "1e", new(TokenError), []string{`(?i)\bnumber\b`}},
		{"badname", "x$", new(TokenError), []string{`(?i)\bidentifier\b`, `\$`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.src)
			if a != nil {
				t.Errorf("%q parsed non-nil to %v", c.src, a)
			}
			if reflect.TypeOf(err) != reflect.TypeOf(c.err) {
				t.Errorf("wrong error type from %q: want %T, got %T (%v)", c.src, c.err, err, err)
			}
			if err == nil {
				return
			}
			msg := err.Error()
			for _, re := range c.res {
				if !regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q does not match %s", msg, re)
				}
			}
		})
	}
}

func TestParseErrorPos(t *testing.T) {
	cases := []struct {
		src string
		pos int
	}{
		{"1+*2", 3},
		{"x)", 2},
		{"1, 2", 2},
		{"sin(1, 2)", 6},
		{"1 + 2x", 5},
	}
	for _, c := range cases {
		_, err := Parse(c.src)
		e, ok := err.(InputError)
		if !ok {
			t.Errorf("%q gave non-input error %v", c.src, err)
			continue
		}
		if p := e.Pos(); p != c.pos {
			t.Errorf("%q gave error at %d, want %d: %v", c.src, p, c.pos, err)
		}
	}
}

func TestParseIncomplete(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		op       string
		depth    int
		leftover string
		last     string
	}{
		{"trailing", "1+", "+", 0, "", "+"},
		{"open", "(1+2", "", 1, "2", "+"},
		{"bracket", "(", "", 1, "", "identity"},
		{"call", "sin(", "sin", 1, "", "sin"},
		{"arg", "max(1, x", "", 1, "x", "max"},
		{"neg", "2*-", "neg", 0, "-", "*"},
		{"nested", "sin(cos(x", "", 2, "x", "cos"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.src, CheckTree())
			if !IsIncomplete(err) {
				t.Fatalf("%q gave %v, not incomplete", c.src, err)
			}
			if a == nil {
				t.Fatalf("%q gave no partial tree", c.src)
			}
			e := err.(*IncompleteError)
			if e.Op != c.op {
				t.Errorf("%q incomplete at op %q, want %q", c.src, e.Op, c.op)
			}
			if e.Depth != c.depth || a.OpenDepth() != c.depth {
				t.Errorf("%q has depth %d/%d, want %d", c.src, e.Depth, a.OpenDepth(), c.depth)
			}
			if l := a.Leftover(); l != c.leftover {
				t.Errorf("%q has leftover %q, want %q", c.src, l, c.leftover)
			}
			if n := a.Name(a.LastOp()); n != c.last {
				t.Errorf("%q last touched %q, want %q", c.src, n, c.last)
			}
			if c.op == "" {
				return
			}
			if _, err := a.Eval(Bindings{"x": 1}); err == nil {
				t.Errorf("%q evaluated without error", c.src)
			}
		})
	}
}

func TestLimit(t *testing.T) {
	const src = "1+2*3"
	cases := []struct {
		n    int
		want float64
		inc  bool
	}{
		{1, 1, false},
		{2, 0, true},
		{3, 3, false},
		{4, 0, true},
		{5, 7, false},
		{100, 7, false},
		{-1, 7, false},
	}
	for _, c := range cases {
		a, err := Parse(src, Limit(c.n))
		if c.inc {
			if !IsIncomplete(err) {
				t.Errorf("%q limited to %d gave %v, not incomplete", src, c.n, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q limited to %d failed: %v", src, c.n, err)
			continue
		}
		r, err := a.Eval(nil)
		if err != nil {
			t.Errorf("%q limited to %d failed to evaluate: %v", src, c.n, err)
		}
		if r != c.want {
			t.Errorf("%q limited to %d gave %g, want %g", src, c.n, r, c.want)
		}
	}
}

func TestDisableDefaultFuncs(t *testing.T) {
	a, err := Parse("sin(x)", DisableDefaultFuncs())
	if err != nil {
		t.Fatal(err)
	}
	if v := a.DependsOn(); !reflect.DeepEqual(v, []string{"sin", "x"}) {
		t.Errorf("wrong variables %q", v)
	}
	if s := a.BuildExpression(); s != "(sin*x)" {
		t.Errorf("wrong tree %s", s)
	}
	// Functions added explicitly are kept.
	a, err = Parse("sin(x)", DisableDefaultFuncs(), ParseFunc(defaultRegistry.ops[defaultRegistry.funcOp("sin")]))
	if err != nil {
		t.Fatal(err)
	}
	if s := a.BuildExpression(); s != "(sin(x))" {
		t.Errorf("wrong tree %s", s)
	}
}

func TestParsingPreset(t *testing.T) {
	sq := Op{
		Token:  "sq",
		Name:   "sq",
		Prec:   PrecFunc,
		Arity:  1,
		Named:  true,
		Poly:   true,
		Eval:   func(args []float64) float64 { return args[0] * args[0] },
		Render: func(args []string) string { return "sq(" + args[0] + ")" },
	}
	preset := ParsingPreset(ParseFunc(sq))
	a, err := Parse("sq(3)+1", preset, Limit(5))
	if err != nil {
		t.Fatal(err)
	}
	if r, err := a.Eval(nil); r != 9 || err != nil {
		t.Errorf("wrong result %g, %v", r, err)
	}
	defer func() {
		if recover() == nil {
			t.Error("preset after other options did not panic")
		}
	}()
	Parse("1", CheckTree(), preset)
}

func TestParseCheck(t *testing.T) {
	srcs := []string{
		"(1+2)*(3-1)+1",
		"max(min(max(min(1,2),3),4),5)",
		"-sin(x)^2*--y",
		"2^3^4/5(6)(7)",
		"clamp(x, -1, 1) + rand()",
	}
	for _, src := range srcs {
		a, err := Parse(src)
		if err != nil {
			t.Errorf("%q failed to parse: %v", src, err)
			continue
		}
		if err := a.Check(); err != nil {
			t.Errorf("%q: %v", src, err)
		}
	}
	// Break a tree and make sure Check notices.
	a := MustParse("1+2")
	add := a.nodes[0].kids[0]
	a.nodes[a.nodes[add].kids[0]].parent = 0
	if err := a.Check(); err == nil {
		t.Error("no error from tree with wrong parent")
	}
}

func TestParseLongRuns(t *testing.T) {
	const n = 1 << 16
	cases := []struct {
		name string
		src  string
		want float64
	}{
		{"minus", strings.Repeat("-", n) + "x", 3},
		{"minus-odd", strings.Repeat("-", n+1) + "x", -3},
		{"minus-call", strings.Repeat("-", n+1) + "abs(x)", -3},
		{"minus-group", strings.Repeat("-", n) + "(x)", 3},
		{"minus-num", "1" + strings.Repeat("-", n) + "2", 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.src)
			if err != nil {
				t.Fatalf("failed to parse: %v", err)
			}
			v, err := a.Eval(Bindings{"x": 3})
			if err != nil {
				t.Fatal(err)
			}
			if v != c.want {
				t.Errorf("wrong result: want %g, got %g", c.want, v)
			}
			// The canonical form keeps every minus sign.
			if got := strings.Count(a.BuildExpression(), "-"); got != strings.Count(c.src, "-") {
				t.Errorf("canonical form has %d minus signs, want %d", got, strings.Count(c.src, "-"))
			}
		})
	}
}

func TestRenderLong(t *testing.T) {
	const n = 50000
	a, err := Parse(strings.Repeat("1+", n) + "1")
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Repeat("(", n) + "1" + strings.Repeat("+1)", n)
	if s := a.BuildExpression(); s != want {
		t.Errorf("wrong canonical form of length %d, want length %d", len(s), len(want))
	}
	want = strings.Repeat("1+", n) + "1"
	if s := a.String(); s != want {
		t.Errorf("wrong minimal form of length %d, want length %d", len(s), len(want))
	}
}

func TestRenderOperandOrder(t *testing.T) {
	flip := Op{
		Token:  "flip",
		Name:   "flip",
		Prec:   PrecFunc,
		Arity:  2,
		Named:  true,
		Multi:  true,
		Eval:   func(args []float64) float64 { return args[1] - args[0] },
		Render: func(args []string) string { return "flip(" + args[1] + "," + args[0] + ")" },
	}
	cases := []struct {
		src   string
		canon string
		min   string
	}{
		{"flip(x, y+1)", "(flip((y+1),x))", "flip(y+1,x)"},
		{"flip(flip(1,2),3)*2", "((flip(3,(flip(2,1))))*2)", "flip(3,flip(2,1))*2"},
		{"flip(-2, -x)", "(flip((-x),-2))", "flip(-x,-2)"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			a, err := Parse(c.src, ParseFunc(flip))
			if err != nil {
				t.Fatalf("failed to parse: %v", err)
			}
			if s := a.BuildExpression(); s != c.canon {
				t.Errorf("wrong canonical form: want %q, got %q", c.canon, s)
			}
			if s := a.String(); s != c.min {
				t.Errorf("wrong minimal form: want %q, got %q", c.min, s)
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	cases := []struct {
		name string
		src  string
	}{
		{"descasc", "w^x*y+z+a*b^c"},
		{"descasc-parens", "(((w^x)*y)+z)+a*(b^c)"},
		{"ascdesc", "w+x*y^z^a*b+c"},
		{"ascdesc-parens", "w+((x*(y^(z^a)))*b)+c"},
		{"nums", "1^1.1*1.1e1+1.1e-1+.1*2^3"},
		{"calls", "max(min(max(min(1,2),3),4),5)"},
		{"long", strings.Repeat("x*sin(y)+", 50) + "1"},
		{"minus", strings.Repeat("-", 1000) + "x"},
	}
	preset := ParsingPreset()
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Parse(c.src, preset)
			}
		})
	}
}
