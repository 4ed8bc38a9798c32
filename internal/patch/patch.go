// Package patch splices parsed instructions into an existing method body.
package patch

import (
	"errors"
	"fmt"
	"log/slog"

	"ilreverse/internal/cil"
)

var (
	// ErrOffsetNotFound means no instruction starts at the requested offset.
	ErrOffsetNotFound = errors.New("offset not found")
	// ErrTargetNotFound means a branch label in the replacement names an
	// offset the body does not have.
	ErrTargetNotFound = errors.New("branch target not found")
)

// Outcome is the terminal state of a patch.
type Outcome int

const (
	Applied Outcome = iota
	Rejected
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "rejected"
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Strategy is how the replacement was spliced in.
type Strategy int

const (
	// Replace discards the whole body in favour of the replacement.
	Replace Strategy = iota
	// Overwrite rewrites instructions in place from the insertion index.
	Overwrite
	// Extend appends nop placeholders before overwriting.
	Extend
)

func (s Strategy) String() string {
	switch s {
	case Replace:
		return "replace"
	case Overwrite:
		return "overwrite"
	case Extend:
		return "extend"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Target is the method body being patched.
type Target struct {
	Method string
	Body   *cil.Body
}

// Result describes a patch.
type Result struct {
	Method   string   `json:"method"`
	Outcome  Outcome  `json:"outcome"`
	Strategy Strategy `json:"strategy"`
	// Index is the position of the instruction at the requested offset.
	Index int `json:"index"`
	// Padded is the number of nop placeholders appended.
	Padded int `json:"padded"`
	// Count is the number of instructions after the patch.
	Count int `json:"count"`
	// Size is the encoded size of the body after the patch.
	Size uint32 `json:"size"`
}

// RejectedError wraps the reason a patch was not applied. The body is
// unchanged whenever it is returned.
type RejectedError struct {
	Method string
	Offset uint32
	Err    error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("patch %s at %s rejected: %v", e.Method, cil.FormatLabel(e.Offset), e.Err)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Patcher applies replacements. The zero value uses cil.EncodedLength and
// the default logger.
type Patcher struct {
	EncodedLength func(*cil.Instruction) int
	Logger        *slog.Logger
}

// Apply splices repl into t.Body starting at offset. Labels in repl are
// resolved against the body as it was before the call. On error the body
// is left exactly as it was.
func (p *Patcher) Apply(t Target, offset uint32, repl []*cil.Instruction) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	body := t.Body
	reject := func(err error) (*Result, error) {
		logger.Debug("patch rejected", "method", t.Method, "offset", cil.FormatLabel(offset), "err", err)
		return &Result{Method: t.Method, Outcome: Rejected, Index: -1, Count: body.Len()},
			&RejectedError{Method: t.Method, Offset: offset, Err: err}
	}

	idx, ok := body.IndexOfOffset(offset)
	if !ok {
		return reject(fmt.Errorf("%w: %s", ErrOffsetNotFound, cil.FormatLabel(offset)))
	}

	operands, err := link(body.Instructions, repl)
	if err != nil {
		return reject(err)
	}

	res := &Result{Method: t.Method, Outcome: Applied, Index: idx}
	old := body.Instructions
	switch {
	case len(repl) >= len(old):
		res.Strategy = Replace
		body.Instructions = replaceAll(old, repl, operands)
	default:
		res.Strategy = Overwrite
		if tail := len(old) - idx; len(repl) > tail {
			res.Strategy = Extend
			res.Padded = len(repl) - tail
			for range res.Padded {
				body.Instructions = append(body.Instructions, cil.Nop())
			}
		}
		// The replacement's own objects never enter the body, so references
		// between them move to the slots they are copied into.
		slots := make(map[*cil.Instruction]*cil.Instruction, len(repl))
		for i, in := range repl {
			slots[in] = body.Instructions[idx+i]
		}
		for i, in := range repl {
			dst := body.Instructions[idx+i]
			dst.OpCode = in.OpCode
			dst.Operand = remap(operands[i], slots)
			dst.Line = in.Line
		}
	}

	res.Size = body.UpdateOffsets(p.EncodedLength)
	res.Count = body.Len()
	logger.Debug("patch applied",
		"method", t.Method,
		"offset", cil.FormatLabel(offset),
		"strategy", res.Strategy,
		"padded", res.Padded,
		"count", res.Count,
	)
	return res, nil
}

// link resolves every label in repl against the pre-edit stream. It builds
// new operands and leaves repl untouched, so a failure has no side effects.
func link(stream, repl []*cil.Instruction) ([]cil.Operand, error) {
	at := make(map[uint32]*cil.Instruction, len(stream))
	for _, in := range stream {
		at[in.Offset] = in
	}
	find := func(l cil.Label) (*cil.Instruction, error) {
		off, err := l.Offset()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTargetNotFound, err)
		}
		in, ok := at[off]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, l)
		}
		return in, nil
	}

	out := make([]cil.Operand, len(repl))
	for i, in := range repl {
		switch v := in.Operand.(type) {
		case cil.Label:
			target, err := find(v)
			if err != nil {
				return nil, err
			}
			out[i] = cil.Target{Instruction: target}
		case cil.Labels:
			targets := make(cil.Targets, len(v))
			for j, l := range v {
				target, err := find(l)
				if err != nil {
					return nil, err
				}
				targets[j] = target
			}
			out[i] = targets
		default:
			out[i] = in.Operand
		}
	}
	return out, nil
}

// replaceAll makes repl the new body. Branches that pointed at the k-th old
// instruction now point at the k-th new one, since the old objects leave the
// stream.
func replaceAll(old, repl []*cil.Instruction, operands []cil.Operand) []*cil.Instruction {
	moved := make(map[*cil.Instruction]*cil.Instruction, len(old))
	for k, in := range old {
		moved[in] = repl[k]
	}
	for i, in := range repl {
		in.Operand = remap(operands[i], moved)
	}
	return repl
}

// remap returns op with every instruction reference found in moved replaced
// by its new instruction.
func remap(op cil.Operand, moved map[*cil.Instruction]*cil.Instruction) cil.Operand {
	to := func(in *cil.Instruction) *cil.Instruction {
		if n, ok := moved[in]; ok {
			return n
		}
		return in
	}
	switch v := op.(type) {
	case cil.Target:
		return cil.Target{Instruction: to(v.Instruction)}
	case cil.Targets:
		out := make(cil.Targets, len(v))
		for j, in := range v {
			out[j] = to(in)
		}
		return out
	}
	return op
}
