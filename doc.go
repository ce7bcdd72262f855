// Package mathtree builds evaluable syntax trees from arithmetic and
// trigonometric expressions in a single left-to-right pass.
//
// There is no separate lexer and no operator stack. Each operator is inserted
// into the tree as soon as it is seen, and operators that bind more loosely
// than what has been built so far rise above it by reparenting. Parentheses
// only change the scope depth recorded on each node; "(1+2)*3" and "1+2*3"
// differ in the depths of their + nodes, and that is enough to shape them.
//
// After parsing, a tree knows the free variables of every subtree and whether
// it is a polynomial in its variables. Trees can be evaluated with float64
// bindings, or to arbitrary precision with a Context.
//
// Named functions like "max(a, b)" take comma-separated arguments. A value
// followed by a bracket is an implicit multiplication, so "5(1+2)" is 15.
// "-" at the start of an operand is part of the operand: "-2^2" is 4, not -4.
package mathtree
