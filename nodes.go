package mathtree

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NodeID is a handle to a node in a Tree.
type NodeID int32

// NoNode is the NodeID of nothing, e.g. the parent of the root.
const NoNode NodeID = -1

// Kind is the kind of a node.
type Kind int8

const (
	KindNone Kind = iota

	KindRoot  // identity over the single top-level node
	KindOp    // operator or function call
	KindVar   // free variable
	KindNum   // number written in the expression
	KindConst // named constant like pi
)

var kindNames = [...]string{"None", "Root", "Op", "Var", "Num", "Const"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// node is a node in the arena of a Tree. Children are owned by their node;
// parent is a back link for walking upward.
type node struct {
	kind   Kind
	depth  int
	parent NodeID
	kids   []NodeID
	// op is the op of root and op nodes, otherwise noOp.
	op OpID
	// text is the source text of a leaf.
	text string
	// val is the value of a number or named constant.
	val float64
	// deps is the set of variables in the subtree of an op or root node.
	deps map[string]struct{}
}

// Tree is a parsed expression. Nodes live in an arena addressed by NodeID.
// Once Parse returns, a Tree is not modified, so it is safe to evaluate and
// inspect concurrently.
type Tree struct {
	reg   *Registry
	nodes []node
	// vars is the list of variable nodes in order of creation.
	vars []NodeID
	// names is the sorted list of variable names.
	names []string

	leftover string
	open     int
	last     NodeID
	poly     bool
}

func newTree(reg *Registry) *Tree {
	t := &Tree{reg: reg, last: 0}
	t.nodes = append(t.nodes, node{kind: KindRoot, depth: -1, parent: NoNode, op: reg.identity})
	return t
}

// newNode adds a detached node to the arena.
func (t *Tree) newNode(n node) NodeID {
	n.parent = NoNode
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) newOp(k OpID, depth int) NodeID {
	return t.newNode(node{kind: KindOp, depth: depth, op: k})
}

// arity returns the number of children node id may have.
func (t *Tree) arity(id NodeID) int {
	n := &t.nodes[id]
	switch n.kind {
	case KindRoot, KindOp:
		return t.reg.op(n.op).Arity
	default:
		return 0
	}
}

// full reports whether a node has all its operands.
func (t *Tree) full(id NodeID) bool {
	return len(t.nodes[id].kids) >= t.arity(id)
}

// attach appends child to the children of parent. It reports false without
// modifying the tree if parent already has all its operands.
func (t *Tree) attach(parent, child NodeID) bool {
	if t.full(parent) {
		return false
	}
	p := &t.nodes[parent]
	p.kids = append(p.kids, child)
	t.nodes[child].parent = parent
	return true
}

// replace puts repl in the place of old among the children of parent. old is
// left detached.
func (t *Tree) replace(parent, old, repl NodeID) {
	kids := t.nodes[parent].kids
	for i, k := range kids {
		if k == old {
			kids[i] = repl
			t.nodes[repl].parent = parent
			t.nodes[old].parent = NoNode
			return
		}
	}
	panic("mathtree: replacing node " + strconv.Itoa(int(old)) + " which is not a child of " + strconv.Itoa(int(parent)))
}

// opOf returns the op of an op or root node.
func (t *Tree) opOf(id NodeID) *Op {
	return t.reg.op(t.nodes[id].op)
}

// Root returns the root node. The root is an identity over the expression.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of nodes in the tree, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Kind returns the kind of a node.
func (t *Tree) Kind(id NodeID) Kind {
	return t.nodes[id].kind
}

// Parent returns the parent of a node, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns a copy of the children of a node in operand order.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.nodes[id].kids...)
}

// Depth returns the bracket nesting depth at which a node was created. The
// root has depth -1.
func (t *Tree) Depth(id NodeID) int {
	return t.nodes[id].depth
}

// Op returns the op of an op or root node.
func (t *Tree) Op(id NodeID) (Op, bool) {
	switch t.nodes[id].kind {
	case KindRoot, KindOp:
		return *t.opOf(id), true
	default:
		return Op{}, false
	}
}

// Name returns the name of an op, or the text of a leaf as written.
func (t *Tree) Name(id NodeID) string {
	n := &t.nodes[id]
	switch n.kind {
	case KindRoot, KindOp:
		return t.opOf(id).Name
	default:
		return n.text
	}
}

// Value returns the value of a number or named constant leaf. The result is
// NaN for other nodes.
func (t *Tree) Value(id NodeID) float64 {
	n := &t.nodes[id]
	switch n.kind {
	case KindNum, KindConst:
		return n.val
	default:
		return math.NaN()
	}
}

// Registry returns the registry the tree was parsed with.
func (t *Tree) Registry() *Registry {
	return t.reg
}

// Leftover returns the operand text that was pending when the input ended.
// It is the partly typed operand of an unfinished expression, but a complete
// expression that ends in an operand has one too.
func (t *Tree) Leftover() string {
	return t.leftover
}

// OpenDepth returns the number of brackets left open at the end of the input.
func (t *Tree) OpenDepth() int {
	return t.open
}

// LastOp returns the operator node most recently inserted or selected by the
// parser, or the root if there was none.
func (t *Tree) LastOp() NodeID {
	return t.last
}

// Check verifies the links of the tree: every node but the root has exactly
// one parent, which lists it exactly once among its children; no node has
// more children than its arity; and every node is reachable from the root.
func (t *Tree) Check() error {
	if len(t.nodes) == 0 || t.nodes[0].kind != KindRoot {
		return &TreeError{Node: 0, Msg: "missing root"}
	}
	if p := t.nodes[0].parent; p != NoNode {
		return &TreeError{Node: 0, Msg: "root has parent " + strconv.Itoa(int(p))}
	}
	seen := make([]bool, len(t.nodes))
	seen[0] = true
	stack := []NodeID{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]
		if len(n.kids) > t.arity(id) {
			return &TreeError{Node: id, Msg: strconv.Itoa(len(n.kids)) + " children exceed arity " + strconv.Itoa(t.arity(id))}
		}
		for _, k := range n.kids {
			if k < 0 || int(k) >= len(t.nodes) {
				return &TreeError{Node: id, Msg: "child handle " + strconv.Itoa(int(k)) + " out of range"}
			}
			if seen[k] {
				return &TreeError{Node: k, Msg: "owned more than once"}
			}
			if p := t.nodes[k].parent; p != id {
				return &TreeError{Node: k, Msg: "parent is " + strconv.Itoa(int(p)) + ", owner is " + strconv.Itoa(int(id))}
			}
			seen[k] = true
			stack = append(stack, k)
		}
	}
	for id, ok := range seen {
		if !ok {
			return &TreeError{Node: NodeID(id), Msg: "unreachable from root"}
		}
	}
	return nil
}

// TreeError is an error describing an inconsistent tree. It indicates a bug
// in the parser, not in its input.
type TreeError struct {
	Node NodeID
	Msg  string
}

func (err *TreeError) Error() string {
	return "mathtree: inconsistent tree at node " + strconv.Itoa(int(err.Node)) + ": " + err.Msg
}

// namedConsts are the named constants, keyed by lower case name.
var namedConsts = map[string]float64{
	"pi":  math.Pi,
	"π":   math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"τ":   2 * math.Pi,
}

// namedConst returns the value of a named constant. Names are not case
// sensitive.
func namedConst(s string) (float64, bool) {
	v, ok := namedConsts[strings.ToLower(s)]
	return v, ok
}

func isNamedConst(s string) bool {
	_, ok := namedConst(s)
	return ok
}

// isIdent reports whether s is a letter or underscore followed by letters,
// digits, and underscores.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
