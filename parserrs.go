package mathtree

import (
	"errors"
	"strconv"
)

// OperatorError is an error indicating an infix operator where an operand
// was expected. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the operator token.
	Operator string
}

func (err *OperatorError) Error() string {
	return errpos(err.Col, "operator "+strconv.Quote(err.Operator)+" with no left operand")
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the bracket.
	Col int
	// Left is the opening bracket.
	Left string
	// Right is the mismatched closing bracket.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError is an error indicating a comma outside the argument list of
// a function that takes several arguments. It implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function call with the wrong number of
// arguments. It implements InputError.
type CallError struct {
	// Col is the position of the token that made the call invalid.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments the function call tried to imply.
	Len int
}

func (err *CallError) Error() string {
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments")
}

func (err *CallError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// TokenError indicates an operand that is neither a number nor a name. It
// implements InputError.
type TokenError struct {
	// Col is the position of the start of the token.
	Col int
	// Text is the token.
	Text string
	// Kind is the type of token that was expected, "number" if the token
	// starts with a digit or decimal point and "identifier" otherwise.
	Kind string
}

func (err *TokenError) Error() string {
	return errpos(err.Col, "invalid "+err.Kind+" "+strconv.Quote(err.Text))
}

func (err *TokenError) Pos() int {
	return err.Col
}

// IncompleteError indicates that the input ended before the expression was
// complete. Parse returns the partial tree along with an IncompleteError so
// that callers can inspect input that is still being typed. It implements
// InputError.
type IncompleteError struct {
	// Col is the position of the end of the input.
	Col int
	// Depth is the number of brackets left open.
	Depth int
	// Op is the name of the operator missing operands, if any.
	Op string
	// Len is the number of operands Op has.
	Len int
	// Want is the number of operands Op needs.
	Want int
}

func (err *IncompleteError) Error() string {
	if err.Op != "" {
		return errpos(err.Col, "incomplete expression: "+err.Op+" has "+strconv.Itoa(err.Len)+" of "+strconv.Itoa(err.Want)+" operands")
	}
	return errpos(err.Col, "incomplete expression: "+strconv.Itoa(err.Depth)+" unclosed brackets")
}

func (err *IncompleteError) Pos() int {
	return err.Col
}

// IsIncomplete reports whether err indicates that more input could complete
// the expression.
func IsIncomplete(err error) bool {
	var e *IncompleteError
	return errors.As(err, &e)
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*TokenError)(nil)
	_ InputError = (*IncompleteError)(nil)
)
