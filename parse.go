package mathtree

import (
	"strconv"
	"strings"
	"unicode"
)

// Parse builds the tree of an expression in one pass over src.
//
// Each operator is inserted as soon as it is read. An operator that binds
// more loosely than the operators before it rises above them. Brackets only
// change the depth recorded on the nodes created inside them, and a deeper
// node always binds more tightly than a shallower one.
//
// If the input ends before the expression is complete, Parse returns the
// partial tree along with an *IncompleteError. For any other error, the tree
// is nil.
func Parse(src string, opts ...ParseOption) (*Tree, error) {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	reg, err := p.registry()
	if err != nil {
		return nil, err
	}
	b := builder{t: newTree(reg), reg: reg}
	n := 0
	for _, r := range src {
		if p.limited && n >= p.limit {
			break
		}
		n++
		b.col = n
		if err := b.next(r); err != nil {
			return nil, err
		}
	}
	t, err := b.finish()
	if err != nil && !IsIncomplete(err) {
		return nil, err
	}
	if p.check {
		if err := t.Check(); err != nil {
			return nil, err
		}
	}
	return t, err
}

// MustParse is like Parse but panics on any error.
func MustParse(src string, opts ...ParseOption) *Tree {
	t, err := Parse(src, opts...)
	if err != nil {
		panic("mathtree: " + strconv.Quote(src) + ": " + err.Error())
	}
	return t
}

// builder holds the state of one parse.
type builder struct {
	t   *Tree
	reg *Registry
	// cur is the operator most recently inserted. Its last operand is the
	// one being read.
	cur NodeID
	// depth is the number of open brackets.
	depth int
	// col is the column of the current rune.
	col int

	// tok is the pending operand text. tokCol and tokDepth are the column and
	// depth where it started.
	tok      strings.Builder
	tokCol   int
	tokDepth int
	// minus is the number of minus signs that tok starts with.
	minus int

	// closed is set by a close bracket and cleared by anything else but
	// whitespace. A value or bracket after a closed group multiplies it.
	closed bool
	// prev is the last rune that was not whitespace.
	prev rune
}

func (b *builder) next(r rune) error {
	if unicode.IsSpace(r) {
		return nil
	}
	defer func() { b.prev = r }()
	switch r {
	case ',':
		return b.comma()
	case '(':
		return b.open()
	case ')':
		return b.close()
	}
	if k := b.reg.infixOp(r); k != noOp {
		return b.infix(k, r)
	}
	if b.closed {
		if err := b.implicit(); err != nil {
			return err
		}
	}
	b.push(r)
	return nil
}

// push appends a rune to the pending operand.
func (b *builder) push(r rune) {
	if b.tok.Len() == 0 {
		b.tokCol = b.col
		b.tokDepth = b.depth
	}
	if r == '-' && b.minus == b.tok.Len() {
		b.minus++
	}
	b.tok.WriteRune(r)
}

// reset discards the pending operand.
func (b *builder) reset() {
	b.tok.Reset()
	b.minus = 0
}

// signs reports whether the pending operand is nothing but minus signs.
func (b *builder) signs() bool {
	return b.minus == b.tok.Len()
}

// infix handles an infix operator character.
func (b *builder) infix(k OpID, r rune) error {
	if !b.closed && (r == '-' || r == '+') && b.exponent() {
		b.push(r)
		return nil
	}
	if !b.closed && b.signs() {
		switch r {
		case '-':
			b.push(r)
			return nil
		case '+':
			if b.tok.Len() == 0 {
				return nil
			}
		}
		return &OperatorError{Col: b.col, Operator: string(r)}
	}
	b.closed = false
	return b.addOp(b.t.newOp(k, b.depth))
}

// exponent reports whether the pending operand is a number waiting for the
// sign of its exponent, as in 1e-5.
func (b *builder) exponent() bool {
	tok := strings.TrimPrefix(b.tok.String(), "-")
	if !isNumber(tok) {
		return false
	}
	last := tok[len(tok)-1]
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		return last == 'p' || last == 'P'
	}
	return last == 'e' || last == 'E'
}

// implicit inserts a multiplication between a closed group and what follows.
func (b *builder) implicit() error {
	b.closed = false
	return b.addOp(b.t.newOp(b.reg.mul, b.depth))
}

func (b *builder) open() error {
	if b.closed {
		if err := b.implicit(); err != nil {
			return err
		}
	}
	tok := b.tok.String()
	col := b.tokCol
	// A name or non-number after minus signs is negated as a whole, so the
	// signs become prefix negations.
	for strings.HasPrefix(tok, "-") && !isNumber(tok) {
		if err := b.prefix(b.reg.neg, col); err != nil {
			return err
		}
		tok = tok[1:]
		col++
	}
	switch k := b.reg.funcOp(tok); {
	case tok == "":
		b.reset()
	case k != noOp:
		b.reset()
		if err := b.prefix(k, col); err != nil {
			return err
		}
	default:
		// Leave the rest as the pending operand of the multiplication.
		b.reset()
		b.tok.WriteString(tok)
		b.minus = len(tok) - len(strings.TrimLeft(tok, "-"))
		b.tokCol = col
		if err := b.addOp(b.t.newOp(b.reg.mul, b.depth)); err != nil {
			return err
		}
	}
	b.depth++
	return nil
}

func (b *builder) close() error {
	if b.depth == 0 {
		return &BracketError{Col: b.col, Right: ")"}
	}
	if !b.closed && b.signs() {
		// Nothing since the last open bracket, separator, or operator. That is
		// fine only for a call of a function that takes no operands.
		n := &b.t.nodes[b.cur]
		if b.tok.Len() != 0 || b.prev != '(' || n.kind != KindOp || b.t.arity(b.cur) != 0 {
			return &EmptyExpressionError{Col: b.col, End: ")"}
		}
	}
	b.depth--
	b.closed = true
	return nil
}

func (b *builder) comma() error {
	if !b.closed && b.signs() {
		return &EmptyExpressionError{Col: b.col, End: ","}
	}
	if err := b.flush(b.cur); err != nil {
		return err
	}
	t := b.t
	for h := b.cur; ; h = t.nodes[h].parent {
		n := &t.nodes[h]
		if n.kind == KindRoot {
			return &SeparatorError{Col: b.col, Sep: ","}
		}
		if n.depth != b.depth-1 {
			continue
		}
		op := t.opOf(h)
		if !op.Named {
			continue
		}
		// h is the innermost open call.
		if !op.Multi || t.full(h) {
			return &CallError{Col: b.col, Func: op.Name, Len: len(n.kids) + 1}
		}
		b.cur = h
		t.last = h
		b.closed = false
		return nil
	}
}

// moreImportant reports whether n binds more tightly than h.
func (b *builder) moreImportant(n, h NodeID) bool {
	x, y := &b.t.nodes[n], &b.t.nodes[h]
	if x.depth != y.depth {
		return x.depth > y.depth
	}
	p, q := b.reg.op(x.op), b.reg.op(y.op)
	if p.Prec != q.Prec {
		return p.Prec > q.Prec
	}
	return p.Right && x.op == y.op
}

// addOp inserts an infix operator whose left operand is the pending operand.
func (b *builder) addOp(n NodeID) error {
	t := b.t
	if b.moreImportant(n, b.cur) {
		if !t.attach(b.cur, n) {
			return b.callError(b.cur, b.col)
		}
		if err := b.flush(n); err != nil {
			return err
		}
	} else {
		if err := b.flush(b.cur); err != nil {
			return err
		}
		// The root is at depth -1, so every op is more important than it and
		// the walk ends there at the latest. An operator without a left
		// operand is rejected by infix before it gets here, and one without a
		// right operand is left for finish to report.
		head := b.cur
		var old NodeID
		for {
			old = head
			head = t.nodes[head].parent
			if b.moreImportant(n, head) {
				break
			}
		}
		t.replace(head, old, n)
		t.attach(n, old)
	}
	b.cur = n
	t.last = n
	return nil
}

// prefix inserts a function call or negation into the operand slot of the
// cursor.
func (b *builder) prefix(k OpID, col int) error {
	n := b.t.newOp(k, b.depth)
	if !b.t.attach(b.cur, n) {
		return b.callError(b.cur, col)
	}
	b.cur = n
	b.t.last = n
	return nil
}

// flush attaches the pending operand, if any, to a node.
func (b *builder) flush(into NodeID) error {
	if b.tok.Len() == 0 {
		return nil
	}
	id, err := b.leaf(b.tok.String(), b.tokCol, b.tokDepth)
	if err != nil {
		return err
	}
	b.reset()
	if !b.t.attach(into, id) {
		return b.callError(into, b.tokCol)
	}
	return nil
}

// leaf creates the node of an operand.
func (b *builder) leaf(tok string, col, depth int) (NodeID, error) {
	t := b.t
	if strings.HasPrefix(tok, "-") && !isNumber(tok) {
		n := t.newOp(b.reg.neg, depth)
		if len(tok) == 1 {
			// Missing operand, which finish reports.
			return n, nil
		}
		x, err := b.leaf(tok[1:], col+1, depth)
		if err != nil {
			return NoNode, err
		}
		t.attach(n, x)
		return n, nil
	}
	if isNumber(tok) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil && !isRange(err) {
			return NoNode, &TokenError{Col: col, Text: tok, Kind: "number"}
		}
		return t.newNode(node{kind: KindNum, depth: depth, text: tok, val: v, op: noOp}), nil
	}
	if !isIdent(tok) {
		return NoNode, &TokenError{Col: col, Text: tok, Kind: "identifier"}
	}
	if v, ok := namedConst(tok); ok {
		return t.newNode(node{kind: KindConst, depth: depth, text: tok, val: v, op: noOp}), nil
	}
	if k := b.reg.funcOp(tok); k != noOp {
		return NoNode, &CallError{Col: col, Func: b.reg.op(k).Name, Len: 0}
	}
	id := t.newNode(node{kind: KindVar, depth: depth, text: tok, op: noOp})
	t.vars = append(t.vars, id)
	return id, nil
}

func (b *builder) callError(id NodeID, col int) error {
	return &CallError{Col: col, Func: b.t.Name(id), Len: len(b.t.nodes[id].kids) + 1}
}

// finish flushes the last operand and checks that the tree is complete.
func (b *builder) finish() (*Tree, error) {
	t := b.t
	t.leftover = b.tok.String()
	t.open = b.depth
	end := b.col + 1
	if err := b.flush(b.cur); err != nil {
		return nil, err
	}
	t.propagate()
	if len(t.nodes[0].kids) == 0 {
		if b.depth > 0 {
			return t, &IncompleteError{Col: end, Depth: b.depth}
		}
		return nil, &EmptyExpressionError{Col: end}
	}
	for id := range t.nodes {
		n := &t.nodes[id]
		if n.kind != KindOp || len(n.kids) >= t.arity(NodeID(id)) {
			continue
		}
		op := t.opOf(NodeID(id))
		if op.Named && b.depth <= n.depth {
			// The call's brackets are closed, so no more operands can come.
			return nil, &CallError{Col: end, Func: op.Name, Len: len(n.kids)}
		}
		return t, &IncompleteError{Col: end, Depth: b.depth, Op: op.Name, Len: len(n.kids), Want: op.Arity}
	}
	if b.depth > 0 {
		return t, &IncompleteError{Col: end, Depth: b.depth}
	}
	return t, nil
}

// isNumber reports whether tok, after at most one minus sign, starts with a
// digit or decimal point.
func isNumber(tok string) bool {
	tok = strings.TrimPrefix(tok, "-")
	return tok != "" && (tok[0] == '.' || '0' <= tok[0] && tok[0] <= '9')
}

func isRange(err error) bool {
	e, ok := err.(*strconv.NumError)
	return ok && e.Err == strconv.ErrRange
}
