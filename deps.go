package mathtree

import "math"

// propagate records the variables of every subtree and classifies the tree.
func (t *Tree) propagate() {
	for _, v := range t.vars {
		name := t.nodes[v].text
		for p := t.nodes[v].parent; p != NoNode; p = t.nodes[p].parent {
			n := &t.nodes[p]
			if _, ok := n.deps[name]; ok {
				// Everything above already has it.
				break
			}
			if n.deps == nil {
				n.deps = make(map[string]struct{})
			}
			n.deps[name] = struct{}{}
		}
	}
	t.names = sortedKeys(t.nodes[0].deps)
	t.poly = t.polynomial()
}

// DependsOn returns the sorted names of the variables used in the tree.
func (t *Tree) DependsOn() []string {
	return append([]string(nil), t.names...)
}

// NodeDependsOn returns the sorted names of the variables used in the subtree
// of a node.
func (t *Tree) NodeDependsOn(id NodeID) []string {
	n := &t.nodes[id]
	switch n.kind {
	case KindVar:
		return []string{n.text}
	case KindRoot, KindOp:
		return sortedKeys(n.deps)
	default:
		return nil
	}
}

// VariableNodes returns the variable leaves of the tree in the order they
// appear in the input. A variable used twice appears twice.
func (t *Tree) VariableNodes() []NodeID {
	return append([]NodeID(nil), t.vars...)
}

// IsPolynomial reports whether the tree is a polynomial in its variables:
// every variable is reached only through ops that keep polynomials, and every
// power above a variable has a constant non-negative integer exponent.
func (t *Tree) IsPolynomial() bool {
	return t.poly
}

func (t *Tree) polynomial() bool {
	for _, v := range t.vars {
		child := v
		for p := t.nodes[v].parent; p != NoNode; child, p = p, t.nodes[p].parent {
			op := t.opOf(p)
			if !op.Poly {
				return false
			}
			if !op.Power {
				continue
			}
			kids := t.nodes[p].kids
			if len(kids) < 2 || kids[1] == child || !t.natural(kids[1]) {
				return false
			}
		}
	}
	return true
}

// natural reports whether a subtree is a constant non-negative integer.
func (t *Tree) natural(id NodeID) bool {
	switch t.nodes[id].kind {
	case KindVar:
		return false
	case KindOp:
		if len(t.nodes[id].deps) != 0 {
			return false
		}
	}
	x, err := t.eval(id, nil)
	if err != nil || x < 0 || math.IsInf(x, 0) {
		return false
	}
	return x == math.Trunc(x)
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	v := make([]string, 0, len(m))
	for k := range m {
		v = append(v, k)
	}
	sortstrs(v)
	return v
}

// sortstrs sorts a slice of strings. Sets of variables are small, so an
// insertion sort is plenty.
func sortstrs(v []string) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}
