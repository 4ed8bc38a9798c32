// Package session holds the module a command works on. A Session is not
// safe for concurrent use; one goroutine owns it between Open and Save.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"ilreverse/internal/cil"
	"ilreverse/internal/ilasm"
	"ilreverse/internal/metadata"
	"ilreverse/internal/patch"
)

// ErrAmbiguousMethod means a method name selects more than one method.
var ErrAmbiguousMethod = errors.New("ambiguous method name")

// ErrNoBody means the selected method has no body to patch.
var ErrNoBody = errors.New("method has no body")

// Session is an open module plus the state of edits made to it.
type Session struct {
	Path   string
	Module *metadata.Module

	logger  *slog.Logger
	patcher *patch.Patcher
	dirty   bool
}

// Open loads the module image at path.
func Open(path string, logger *slog.Logger, opts ...metadata.OpenOption) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := metadata.Open(path, logger, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("module loaded", "path", path, "types", len(m.Types), "methods", len(m.Methods()))
	s := New(m, logger)
	s.Path = path
	return s, nil
}

// New wraps an already built module.
func New(m *metadata.Module, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		Path:    m.Path,
		Module:  m,
		logger:  logger,
		patcher: &patch.Patcher{Logger: logger},
	}
}

// Dirty reports whether the module changed since it was loaded or saved.
func (s *Session) Dirty() bool { return s.dirty }

// Parser returns an instruction parser that resolves against the module.
// When md is not nil, variable operands may name its locals and parameters.
func (s *Session) Parser(md *metadata.MethodDef, opts ...ilasm.Option) *ilasm.Parser {
	base := []ilasm.Option{ilasm.WithResolver(s.Module), ilasm.WithLogger(s.logger)}
	if md != nil {
		base = append(base, ilasm.WithMethod(md))
	}
	return ilasm.New(append(base, opts...)...)
}

// Method selects one method by token, exact full name or a unique
// case-insensitive fragment of its full name.
func (s *Session) Method(name string) (*metadata.MethodDef, error) {
	found := metadata.FindMethods(s.Module, name)
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", metadata.ErrMethodNotFound, name)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %q matches %d methods", ErrAmbiguousMethod, name, len(found))
}

// Patch parses text in the context of the method and splices it into the
// body at offset.
func (s *Session) Patch(method string, offset uint32, text string) (*patch.Result, error) {
	md, err := s.Method(method)
	if err != nil {
		return nil, err
	}
	if md.Body == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBody, md.FullName())
	}
	mark := s.Module.Mark()
	repl, err := s.Parser(md).Parse(text)
	if err != nil {
		s.Module.Rollback(mark)
		return nil, err
	}
	res, err := s.patcher.Apply(patch.Target{Method: md.FullName(), Body: md.Body}, offset, repl)
	if err != nil {
		s.Module.Rollback(mark)
		return res, err
	}
	s.dirty = true
	return res, nil
}

// Check parses a listing in the context of md without stopping at the first
// bad line.
func (s *Session) Check(md *metadata.MethodDef, text string) ([]*cil.Instruction, []*ilasm.ParseError) {
	return s.Parser(md).ParseLenient(text)
}

// Problem is an instruction that does not fit its opcode or jumps outside
// its method.
type Problem struct {
	Method string
	Offset uint32
	Err    error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %s: %v", p.Method, cil.FormatLabel(p.Offset), p.Err)
}

// Verify checks every instruction of every body.
func (s *Session) Verify() []Problem {
	var out []Problem
	for _, md := range s.Module.Methods() {
		if md.Body == nil {
			continue
		}
		in := make(map[*cil.Instruction]bool, md.Body.Len())
		for _, ins := range md.Body.Instructions {
			in[ins] = true
		}
		for _, ins := range md.Body.Instructions {
			report := func(err error) {
				out = append(out, Problem{Method: md.FullName(), Offset: ins.Offset, Err: err})
			}
			if err := ins.Validate(); err != nil {
				report(err)
				continue
			}
			switch v := ins.Operand.(type) {
			case cil.Target:
				if !in[v.Instruction] {
					report(errors.New("branch target is outside the method"))
				}
			case cil.Targets:
				for _, t := range v {
					if !in[t] {
						report(errors.New("switch target is outside the method"))
						break
					}
				}
			case cil.Label, cil.Labels:
				report(errors.New("branch target is not linked"))
			}
		}
	}
	s.logger.Debug("module verified", "problems", len(out))
	return out
}

// Save writes the module to path, or back to where it was loaded from when
// path is empty.
func (s *Session) Save(path string) error {
	if path == "" {
		path = s.Path
	}
	if path == "" {
		return errors.New("no path to save the module to")
	}
	if err := metadata.Save(s.Module, path); err != nil {
		return err
	}
	s.Path = path
	s.dirty = false
	s.logger.Info("module saved", "path", path)
	return nil
}
