package ilasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"ilreverse/internal/cil"
)

// decimalFloat matches the float literals ldc.r4 and ldc.r8 take. Infinity,
// NaN and hex forms are rejected.
var decimalFloat = regexp2.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?\z`, regexp2.None)

func isDecimalFloat(text string) bool {
	ok, err := decimalFloat.MatchString(text)
	return err == nil && ok
}

// ParseOperand converts operand text according to the opcode's operand kind.
func (p *Parser) ParseOperand(op *cil.OpCode, text string) (cil.Operand, error) {
	switch op.Operand {
	case cil.OperandNone:
		if text != "" {
			return nil, fmt.Errorf("%w: %s takes no operand, got %q", ErrUnexpectedOperand, op.Name, text)
		}
		return nil, nil

	case cil.OperandInt8, cil.OperandInt32:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, syntaxErr("integer operand %q", text)
		}
		return cil.Int32(v), nil

	case cil.OperandInt64:
		if strings.HasSuffix(text, "L") || strings.HasSuffix(text, "l") {
			text = text[:len(text)-1]
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, syntaxErr("long integer operand %q", text)
		}
		return cil.Int64(v), nil

	case cil.OperandFloat64:
		if !isDecimalFloat(text) {
			return nil, syntaxErr("floating point operand %q", text)
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, syntaxErr("floating point operand %q", text)
		}
		return cil.Float64(v), nil

	case cil.OperandFloat32:
		if !isDecimalFloat(text) {
			return nil, syntaxErr("single precision operand %q", text)
		}
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, syntaxErr("single precision operand %q", text)
		}
		return cil.Float32(float32(v)), nil

	case cil.OperandString:
		if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
			return nil, syntaxErr("string operand %s must be quoted", text)
		}
		return cil.String(text[1 : len(text)-1]), nil

	case cil.OperandShortBranchTarget, cil.OperandBranchTarget:
		if _, err := cil.ParseLabel(text); err != nil {
			return nil, syntaxErr("branch target: %v", err)
		}
		return cil.Label(text), nil

	case cil.OperandSwitchTargets:
		return parseSwitch(text)

	case cil.OperandShortVariableIndex, cil.OperandVariableIndex:
		return p.resolveVariable(text), nil

	case cil.OperandTypeRef, cil.OperandMethodRef, cil.OperandFieldRef, cil.OperandTokenRef:
		return p.resolveSymbol(op.Operand, text)
	}
	return cil.Raw(text), nil
}

func parseSwitch(text string) (cil.Operand, error) {
	if len(text) < 2 || text[0] != '(' || text[len(text)-1] != ')' {
		return nil, syntaxErr("switch targets %q must be wrapped in parentheses", text)
	}
	inner := strings.TrimSpace(text[1 : len(text)-1])
	if inner == "" {
		return cil.Labels{}, nil
	}
	parts := strings.Split(inner, ",")
	labels := make(cil.Labels, 0, len(parts))
	for _, part := range parts {
		l := strings.TrimSpace(part)
		if _, err := cil.ParseLabel(l); err != nil {
			return nil, syntaxErr("switch target: %v", err)
		}
		labels = append(labels, cil.Label(l))
	}
	return labels, nil
}

// resolveVariable accepts an index, V_n / A_n, or a local or parameter name.
// Anything else comes back as Raw text for the caller to report.
func (p *Parser) resolveVariable(text string) cil.Operand {
	if n, err := strconv.Atoi(text); err == nil {
		return cil.Index(n)
	}
	for _, prefix := range []string{"V_", "A_"} {
		if len(text) > len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
			if n, err := strconv.Atoi(text[len(prefix):]); err == nil {
				return cil.Index(n)
			}
		}
	}
	if p.method != nil {
		for i, name := range p.method.LocalNames() {
			if name == text {
				return cil.Index(i)
			}
		}
		for i, name := range p.method.ParamNames() {
			if name == text {
				return cil.Index(i)
			}
		}
	}
	return cil.Raw(text)
}
