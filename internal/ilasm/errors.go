package ilasm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode means the mnemonic is not in the opcode table.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrUnexpectedOperand means an operand was given to an opcode that takes none.
	ErrUnexpectedOperand = errors.New("unexpected operand")
	// ErrInvalidOperandSyntax means the operand text does not fit its kind.
	ErrInvalidOperandSyntax = errors.New("invalid operand syntax")
	// ErrMemberResolution means a member descriptor is malformed or names the
	// wrong kind of member. Names that are merely unknown never produce it.
	ErrMemberResolution = errors.New("member resolution failure")
)

// ParseError reports the line an instruction failed on.
type ParseError struct {
	Line int // 1-based, 0 when parsing a single line
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("%q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// KindOf names the error kind of err, or returns "" for foreign errors.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrUnknownOpcode):
		return "UnknownOpcode"
	case errors.Is(err, ErrUnexpectedOperand):
		return "UnexpectedOperand"
	case errors.Is(err, ErrInvalidOperandSyntax):
		return "InvalidOperandSyntax"
	case errors.Is(err, ErrMemberResolution):
		return "MemberResolutionFailure"
	}
	return ""
}

func syntaxErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidOperandSyntax}, args...)...)
}

func memberErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMemberResolution}, args...)...)
}
