package mathtree

import (
	"strconv"
	"strings"
)

// BuildExpression renders the tree in canonical form. Every operator is
// wrapped in exactly one pair of brackets, so the form shows the shape of the
// tree regardless of the brackets in the original text. Parsing the canonical
// form gives a tree with the same canonical form.
func (t *Tree) BuildExpression() string {
	return t.format(true)
}

// String renders the tree with as few brackets as the depths of its nodes
// allow. An operator is bracketed when it was created deeper than its parent,
// unless the parent is a named function, which brings its own brackets.
func (t *Tree) String() string {
	return t.format(false)
}

func (t *Tree) format(canon bool) string {
	kids := t.nodes[0].kids
	if len(kids) == 0 {
		return ""
	}
	w := writer{t: t, canon: canon}
	w.node(kids[0])
	return w.b.String()
}

// slot marks where an operand goes in the text an op renders.
const slot = "\x00"

// writer renders a tree into one buffer. Each op is rendered once per arity
// with numbered slots for its operands, and the operands are written into
// the slots.
type writer struct {
	t     *Tree
	canon bool
	b     strings.Builder
	// forms caches the slotted text of ops by op and operand count.
	forms map[[2]int]string
}

func (w *writer) node(id NodeID) {
	t := w.t
	n := &t.nodes[id]
	if n.kind != KindOp {
		// Leaves are rendered as written. The root is never rendered itself.
		w.b.WriteString(n.text)
		return
	}
	br := w.canon || t.bracketed(id)
	if br {
		w.b.WriteByte('(')
	}
	if n.op == t.reg.neg && len(n.kids) == 1 && t.nodes[n.kids[0]].kind == KindNum {
		// -5 would read back as a number.
		w.b.WriteString("-(")
		w.b.WriteString(t.nodes[n.kids[0]].text)
		w.b.WriteByte(')')
	} else {
		w.op(id)
	}
	if br {
		w.b.WriteByte(')')
	}
}

func (w *writer) op(id NodeID) {
	n := &w.t.nodes[id]
	form := w.form(n.op, len(n.kids))
	for {
		i := strings.Index(form, slot)
		if i < 0 {
			break
		}
		w.b.WriteString(form[:i])
		form = form[i+len(slot):]
		j := strings.Index(form, slot)
		if j < 0 {
			break
		}
		k, _ := strconv.Atoi(form[:j])
		form = form[j+len(slot):]
		if k < len(n.kids) {
			w.node(n.kids[k])
		}
	}
	w.b.WriteString(form)
}

// form returns the text of an op with n operands, with each operand replaced
// by its index between slot marks.
func (w *writer) form(k OpID, n int) string {
	key := [2]int{int(k), n}
	if s, ok := w.forms[key]; ok {
		return s
	}
	op := w.t.reg.op(k)
	args := make([]string, max(op.Arity, n))
	for i := range args {
		args[i] = slot + strconv.Itoa(i) + slot
	}
	s := op.Render(args)
	if w.forms == nil {
		w.forms = make(map[[2]int]string)
	}
	w.forms[key] = s
	return s
}

// bracketed reports whether an op needs brackets in minimal form.
func (t *Tree) bracketed(id NodeID) bool {
	n := &t.nodes[id]
	p := &t.nodes[n.parent]
	if p.kind == KindRoot || t.reg.op(p.op).Named {
		return false
	}
	return n.depth > p.depth
}
