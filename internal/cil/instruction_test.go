package cil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedLength(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		operand Operand
		want    int
	}{
		{"no operand", "nop", nil, 1},
		{"short int", "ldc.i4.s", Int32(5), 2},
		{"int32", "ldc.i4", Int32(42), 5},
		{"int64", "ldc.i8", Int64(1), 9},
		{"float32", "ldc.r4", Float32(1), 5},
		{"float64", "ldc.r8", Float64(1), 9},
		{"string token", "ldstr", String("x"), 5},
		{"short branch", "br.s", Label("IL_0000"), 2},
		{"long branch", "br", Label("IL_0000"), 5},
		{"switch", "switch", Labels{"IL_0000", "IL_0001", "IL_0002"}, 17},
		{"short var", "ldloc.s", Index(4), 2},
		{"long var", "ldloc", Index(4), 4},
		{"two byte no operand", "ceq", nil, 2},
		{"two byte method", "ldftn", Handle{&Unresolved{Reference{Kind: MethodSymbol}}}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInstruction(MustLookup(tt.op), tt.operand)
			assert.Equal(t, tt.want, EncodedLength(in))
		})
	}
}

func TestUpdateOffsets(t *testing.T) {
	b := &Body{Instructions: []*Instruction{
		NewInstruction(MustLookup("ldstr"), String("hi")),
		NewInstruction(MustLookup("call"), Handle{&Unresolved{Reference{Kind: MethodSymbol}}}),
		NewInstruction(MustLookup("ret"), nil),
	}}
	size := b.UpdateOffsets(nil)

	assert.Equal(t, uint32(11), size)
	assert.Equal(t, uint32(0), b.Instructions[0].Offset)
	assert.Equal(t, uint32(5), b.Instructions[1].Offset)
	assert.Equal(t, uint32(10), b.Instructions[2].Offset)

	idx, ok := b.IndexOfOffset(10)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = b.IndexOfOffset(3)
	assert.False(t, ok)
}

func TestParseLabel(t *testing.T) {
	off, err := ParseLabel("IL_0010")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10), off)

	off, err = ParseLabel("il_002a")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2A), off)

	for _, bad := range []string{"IL_", "IL_zz", "0010", "L_0010", ""} {
		_, err := ParseLabel(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "IL_001F", FormatLabel(0x1F))
}

func TestLinkResolvesLabelsByOffset(t *testing.T) {
	b := &Body{Instructions: []*Instruction{
		NewInstruction(MustLookup("br.s"), Label("IL_0003")),
		NewInstruction(MustLookup("nop"), nil),
		NewInstruction(MustLookup("switch"), Labels{"IL_0000", "IL_0002"}),
		NewInstruction(MustLookup("ret"), nil),
	}}
	b.UpdateOffsets(nil)
	// br.s(2) nop(1) -> switch at 3, ret at 3+1+4+8 = 16
	require.NoError(t, b.Link())

	tgt, ok := b.Instructions[0].Operand.(Target)
	require.True(t, ok)
	assert.Same(t, b.Instructions[2], tgt.Instruction)

	tbl, ok := b.Instructions[2].Operand.(Targets)
	require.True(t, ok)
	require.Len(t, tbl, 2)
	assert.Same(t, b.Instructions[0], tbl[0])
	assert.Same(t, b.Instructions[1], tbl[1])
}

func TestLinkMissingTarget(t *testing.T) {
	b := &Body{Instructions: []*Instruction{
		NewInstruction(MustLookup("br"), Label("IL_0099")),
	}}
	b.UpdateOffsets(nil)
	assert.ErrorContains(t, b.Link(), "IL_0099")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewInstruction(MustLookup("ldc.i4"), Int32(1)).Validate())
	assert.NoError(t, NewInstruction(MustLookup("ret"), nil).Validate())
	assert.Error(t, NewInstruction(MustLookup("ldc.i4"), String("1")).Validate())
	assert.Error(t, NewInstruction(MustLookup("ldc.i4"), nil).Validate())
	assert.Error(t, NewInstruction(MustLookup("ret"), Int32(1)).Validate())

	field := Handle{&Unresolved{Reference{Kind: FieldSymbol}}}
	assert.Error(t, NewInstruction(MustLookup("call"), field).Validate())
	assert.NoError(t, NewInstruction(MustLookup("ldtoken"), field).Validate())
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "System.String[]", CanonicalTypeName("string[]"))
	assert.Equal(t, "System.Int32&", CanonicalTypeName("INT32&"))
	assert.Equal(t, "Foo.Bar", CanonicalTypeName("Foo.Bar"))
	assert.Equal(t, "int32[]", ILTypeName("System.Int32[]"))
	assert.Equal(t, "Foo.Bar", ILTypeName("Foo.Bar"))

	ns, name := SplitTypeName("System.Collections.Hashtable")
	assert.Equal(t, "System.Collections", ns)
	assert.Equal(t, "Hashtable", name)
}

func TestReferenceString(t *testing.T) {
	ref := Reference{
		Kind:      MethodSymbol,
		Instance:  true,
		Assembly:  "System.Runtime",
		Type:      "System.DateTime",
		Name:      ".ctor",
		Signature: "System.Void",
		Params:    []string{"System.Int32", "System.Int32", "System.Int32"},
	}
	assert.Equal(t, "instance void [System.Runtime]System.DateTime::.ctor(int32, int32, int32)", ref.String())
	assert.Equal(t, "System.Void System.DateTime::.ctor(System.Int32,System.Int32,System.Int32)", ref.FullName())
}
