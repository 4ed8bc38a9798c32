// Package ilasm assembles one-instruction-per-line CIL text into
// instruction records, resolving symbolic operands through a SymbolResolver.
package ilasm

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"ilreverse/internal/cil"
)

// Parser turns assembler text into instructions. A Parser is not safe for
// concurrent use when its resolver is not.
type Parser struct {
	table    *cil.Table
	resolver SymbolResolver
	method   MethodContext
	logger   *slog.Logger
	verbatim bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithResolver sets the symbol universe used for type, method and field operands.
func WithResolver(r SymbolResolver) Option {
	return func(p *Parser) { p.resolver = r }
}

// WithMethod lets variable operands name the locals and parameters of m.
func WithMethod(m MethodContext) Option {
	return func(p *Parser) { p.method = m }
}

// WithTable overrides the opcode table.
func WithTable(t *cil.Table) Option {
	return func(p *Parser) { p.table = t }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// WithVerbatimOperands keeps the operand text exactly as written after the
// mnemonic instead of collapsing runs of whitespace. Listings saved to module
// images are read back this way so string literals survive unchanged.
func WithVerbatimOperands() Option {
	return func(p *Parser) { p.verbatim = true }
}

// New returns a parser over the default opcode table and a detached resolver.
func New(opts ...Option) *Parser {
	p := &Parser{
		table:    cil.Default(),
		resolver: Detached(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses newline-separated text. Blank lines are skipped and the first
// failing line aborts the whole call.
func (p *Parser) Parse(text string) ([]*cil.Instruction, error) {
	return p.ParseLines(splitLines(text))
}

// ParseLines is Parse over lines that are already split, so string literals
// may contain newlines.
func (p *Parser) ParseLines(lines []string) ([]*cil.Instruction, error) {
	var out []*cil.Instruction
	for i, line := range lines {
		in, err := p.parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		if in != nil {
			out = append(out, in)
		}
	}
	p.logger.Debug("parsed instructions", "lines", len(lines), "instructions", len(out))
	return out, nil
}

// ParseLenient keeps going past failing lines. It returns every instruction
// that parsed and one error per line that did not.
func (p *Parser) ParseLenient(text string) ([]*cil.Instruction, []*ParseError) {
	var (
		out  []*cil.Instruction
		errs []*ParseError
	)
	for i, line := range splitLines(text) {
		in, err := p.parseLine(line, i+1)
		if err != nil {
			errs = append(errs, err.(*ParseError))
			continue
		}
		if in != nil {
			out = append(out, in)
		}
	}
	return out, errs
}

// ParseLine parses a single line. A blank line yields (nil, nil).
func (p *Parser) ParseLine(line string) (*cil.Instruction, error) {
	return p.parseLine(line, 0)
}

func (p *Parser) parseLine(line string, n int) (*cil.Instruction, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	mnemonic, operand := splitInstruction(trimmed, p.verbatim)
	op, ok := p.table.Lookup(mnemonic)
	if !ok {
		return nil, &ParseError{Line: n, Text: trimmed, Err: fmt.Errorf("%w: %s", ErrUnknownOpcode, mnemonic)}
	}

	in := &cil.Instruction{OpCode: op, Line: n}
	if operand != "" {
		value, err := p.ParseOperand(op, operand)
		if err != nil {
			return nil, &ParseError{Line: n, Text: trimmed, Err: err}
		}
		in.Operand = value
	}
	return in, nil
}

// splitInstruction separates the mnemonic from the operand text. Operand
// tokens are rejoined with single spaces. A switch keeps the whole remainder
// since "(a,b,c)" may follow the mnemonic without a space.
func splitInstruction(line string, verbatim bool) (mnemonic, operand string) {
	if isSwitch(line) {
		return "switch", strings.TrimSpace(line[len("switch"):])
	}
	if verbatim {
		i := strings.IndexFunc(line, unicode.IsSpace)
		if i < 0 {
			return line, ""
		}
		return line[:i], strings.TrimSpace(line[i:])
	}
	fields := strings.Fields(line)
	return fields[0], strings.Join(fields[1:], " ")
}

func isSwitch(line string) bool {
	const kw = "switch"
	if len(line) < len(kw) || !strings.EqualFold(line[:len(kw)], kw) {
		return false
	}
	if len(line) == len(kw) {
		return true
	}
	c := rune(line[len(kw)])
	return c == '(' || unicode.IsSpace(c)
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
