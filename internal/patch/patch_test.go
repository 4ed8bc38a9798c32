package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilreverse/internal/cil"
	"ilreverse/internal/ilasm"
)

func body(t *testing.T, text string) *cil.Body {
	t.Helper()
	list, err := ilasm.New().Parse(text)
	require.NoError(t, err)
	b := &cil.Body{Instructions: list}
	b.UpdateOffsets(nil)
	require.NoError(t, b.Link())
	return b
}

func parse(t *testing.T, text string) []*cil.Instruction {
	t.Helper()
	list, err := ilasm.New().Parse(text)
	require.NoError(t, err)
	return list
}

type row struct {
	Name    string
	Offset  uint32
	Operand cil.Operand
}

// snapshot captures a body by value, following branch targets by offset.
func snapshot(b *cil.Body) []row {
	out := make([]row, len(b.Instructions))
	for i, in := range b.Instructions {
		op := in.Operand
		switch v := op.(type) {
		case cil.Target:
			op = cil.Label(cil.FormatLabel(v.Instruction.Offset))
		case cil.Targets:
			ls := make(cil.Labels, len(v))
			for j, t := range v {
				ls[j] = cil.Label(cil.FormatLabel(t.Offset))
			}
			op = ls
		}
		out[i] = row{in.OpCode.Name, in.Offset, op}
	}
	return out
}

func names(b *cil.Body) []string {
	out := make([]string, len(b.Instructions))
	for i, in := range b.Instructions {
		out[i] = in.OpCode.Name
	}
	return out
}

func requireContiguous(t *testing.T, b *cil.Body) {
	t.Helper()
	var off uint32
	for _, in := range b.Instructions {
		require.Equal(t, off, in.Offset)
		off += uint32(cil.EncodedLength(in))
	}
}

func TestApplyOverwritesInPlace(t *testing.T) {
	// ldc.i4.0 @0, ldc.i4.1 @1, ret @2
	b := body(t, "ldc.i4.0\nldc.i4.1\nret")
	second := b.Instructions[1]
	tail := b.Instructions[2]

	var p Patcher
	res, err := p.Apply(Target{Method: "Demo::Run", Body: b}, 1, parse(t, "ldc.i4 5\nnop"))
	require.NoError(t, err)

	assert.Equal(t, Applied, res.Outcome)
	assert.Equal(t, Overwrite, res.Strategy)
	assert.Equal(t, "Demo::Run", res.Method)
	assert.Equal(t, 1, res.Index)
	assert.Zero(t, res.Padded)

	assert.Equal(t, []string{"ldc.i4.0", "ldc.i4", "nop"}, names(b))
	assert.Same(t, second, b.Instructions[1], "overwrite keeps instruction identity")
	assert.Same(t, tail, b.Instructions[2])
	assert.Equal(t, cil.Int32(5), b.Instructions[1].Operand)
	requireContiguous(t, b)
	assert.Equal(t, []uint32{0, 1, 6}, []uint32{b.Instructions[0].Offset, b.Instructions[1].Offset, b.Instructions[2].Offset})
	assert.Equal(t, uint32(7), res.Size)
}

func TestApplyShrinkLeavesTail(t *testing.T) {
	b := body(t, "nop\nldc.i4.1\nldc.i4.2\nadd\npop\nret")

	var p Patcher
	res, err := p.Apply(Target{Body: b}, 1, parse(t, "ldc.i4.3"))
	require.NoError(t, err)
	assert.Equal(t, Overwrite, res.Strategy)
	assert.Equal(t, []string{"nop", "ldc.i4.3", "ldc.i4.2", "add", "pop", "ret"}, names(b))
	requireContiguous(t, b)
}

func TestApplyExtendsWithPlaceholders(t *testing.T) {
	b := body(t, "nop\nnop\nldc.i4.1\nret")

	var p Patcher
	res, err := p.Apply(Target{Body: b}, 2, parse(t, "ldc.i4.2\nldc.i4.3\nadd"))
	require.NoError(t, err)

	assert.Equal(t, Extend, res.Strategy)
	assert.Equal(t, 1, res.Padded)
	assert.Equal(t, 5, res.Count)
	assert.Equal(t, []string{"nop", "nop", "ldc.i4.2", "ldc.i4.3", "add"}, names(b))
	requireContiguous(t, b)
}

func TestApplyReplacesWholeBody(t *testing.T) {
	b := body(t, "ldc.i4.1\nret")
	repl := parse(t, "ldstr \"x\"\npop\nret")

	var p Patcher
	res, err := p.Apply(Target{Body: b}, 0, repl)
	require.NoError(t, err)

	assert.Equal(t, Replace, res.Strategy)
	require.Len(t, b.Instructions, 3)
	for i := range repl {
		assert.Same(t, repl[i], b.Instructions[i])
	}
	assert.Equal(t, []uint32{0, 5, 6}, []uint32{b.Instructions[0].Offset, b.Instructions[1].Offset, b.Instructions[2].Offset})
}

func TestApplyReplaceEqualLengthFromLaterOffset(t *testing.T) {
	b := body(t, "nop\nret")
	repl := parse(t, "ldc.i4.0\nret")

	var p Patcher
	res, err := p.Apply(Target{Body: b}, 1, repl)
	require.NoError(t, err)
	assert.Equal(t, Replace, res.Strategy)
	assert.Equal(t, []string{"ldc.i4.0", "ret"}, names(b))
}

func TestApplyResolvesLabelsAgainstOldStream(t *testing.T) {
	// br.s @0 (2 bytes), nop @2, ldc.i4.1 @3, ret @4
	b := body(t, "br.s IL_0004\nnop\nldc.i4.1\nret")
	ret := b.Instructions[3]

	var p Patcher
	_, err := p.Apply(Target{Body: b}, 2, parse(t, "ldc.i4 100\nbr IL_0004"))
	require.NoError(t, err)

	assert.Equal(t, []string{"br.s", "ldc.i4", "br", "ret"}, names(b))
	jump := b.Instructions[2].Operand.(cil.Target)
	assert.Same(t, ret, jump.Instruction)

	// The existing br.s still follows ret to its new offset.
	first := b.Instructions[0].Operand.(cil.Target)
	assert.Same(t, ret, first.Instruction)
	assert.Equal(t, uint32(12), ret.Offset)
	requireContiguous(t, b)
}

func TestApplySwitchLabels(t *testing.T) {
	b := body(t, "ldarg.0\nnop\nldc.i4.1\nret\nldc.i4.2\nret")
	one, two := b.Instructions[2], b.Instructions[4]

	var p Patcher
	_, err := p.Apply(Target{Body: b}, 1, parse(t, "switch(IL_0002,IL_0004)"))
	require.NoError(t, err)

	targets := b.Instructions[1].Operand.(cil.Targets)
	require.Len(t, targets, 2)
	assert.Same(t, one, targets[0])
	assert.Same(t, two, targets[1])
	requireContiguous(t, b)
}

func TestApplyReplaceRemapsBranches(t *testing.T) {
	b := body(t, "br.s IL_0002\nret")
	repl := parse(t, "nop\nbr.s IL_0000\nret")

	var p Patcher
	_, err := p.Apply(Target{Body: b}, 0, repl)
	require.NoError(t, err)

	// IL_0000 named the old br.s, which is gone; it now names its slot.
	jump := b.Instructions[1].Operand.(cil.Target)
	assert.Same(t, b.Instructions[0], jump.Instruction)
}

func TestApplyOverwriteRemapsReplacementBranches(t *testing.T) {
	b := body(t, "nop\nnop\nnop\nret")
	repl := parse(t, "ldc.i4.0\nbr IL_0000")
	repl[1].Operand = cil.Target{Instruction: repl[0]}

	var p Patcher
	res, err := p.Apply(Target{Body: b}, 1, repl)
	require.NoError(t, err)
	assert.Equal(t, Overwrite, res.Strategy)

	jump := b.Instructions[2].Operand.(cil.Target)
	assert.Same(t, b.Instructions[1], jump.Instruction)
	assert.Equal(t, "IL_0001", cil.FormatLabel(jump.Instruction.Offset))
	assert.Equal(t, cil.Target{Instruction: repl[0]}, repl[1].Operand, "replacement is not modified")
}

func TestApplyExtendRemapsReplacementSwitch(t *testing.T) {
	b := body(t, "nop\nnop\nnop\nret")
	repl := parse(t, "ldc.i4.0\nswitch(IL_0000)\nnop")
	repl[1].Operand = cil.Targets{repl[2], b.Instructions[0]}

	var p Patcher
	res, err := p.Apply(Target{Body: b}, 2, repl)
	require.NoError(t, err)
	assert.Equal(t, Extend, res.Strategy)
	assert.Equal(t, 1, res.Padded)
	requireContiguous(t, b)

	table := b.Instructions[3].Operand.(cil.Targets)
	require.Len(t, table, 2)
	assert.Same(t, b.Instructions[4], table[0])
	assert.Same(t, b.Instructions[0], table[1])
}

func TestApplyRejectsMissingLabel(t *testing.T) {
	b := body(t, "ldc.i4.0\nbrtrue.s IL_0004\nldc.i4.1\nret")
	before := snapshot(b)
	repl := parse(t, "nop\nbr IL_0099")

	var p Patcher
	res, err := p.Apply(Target{Method: "Demo::Run", Body: b}, 1, repl)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "Demo::Run", rej.Method)
	assert.Equal(t, Rejected, res.Outcome)

	assert.Equal(t, before, snapshot(b))
	assert.Equal(t, cil.Label("IL_0099"), repl[1].Operand, "replacement is not modified")
}

func TestApplyRejectsMissingSwitchLabel(t *testing.T) {
	b := body(t, "nop\nnop\nret")
	before := snapshot(b)

	var p Patcher
	_, err := p.Apply(Target{Body: b}, 0, parse(t, "switch(IL_0001,IL_0005)"))
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.Equal(t, before, snapshot(b))
}

func TestApplyRejectsUnknownOffset(t *testing.T) {
	b := body(t, "ldc.i4 7\nret")
	before := snapshot(b)

	var p Patcher
	res, err := p.Apply(Target{Body: b}, 3, parse(t, "nop"))
	assert.ErrorIs(t, err, ErrOffsetNotFound)
	assert.Equal(t, Rejected, res.Outcome)
	assert.Contains(t, err.Error(), "IL_0003")
	assert.Equal(t, before, snapshot(b))
}

func TestApplyCustomLength(t *testing.T) {
	b := body(t, "nop\nnop\nnop")
	p := Patcher{EncodedLength: func(*cil.Instruction) int { return 4 }}

	res, err := p.Apply(Target{Body: b}, 0, parse(t, "ret"))
	require.NoError(t, err)
	assert.Equal(t, uint32(12), res.Size)
	assert.Equal(t, uint32(8), b.Instructions[2].Offset)
}
