package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilreverse/internal/cil"
	"ilreverse/internal/ilasm"
)

func TestListingRoundTrips(t *testing.T) {
	src := []string{
		"ldarg.0",
		"ldc.i4 42",
		"ldc.i8 -7",
		"ldc.r8 2.5",
		`ldstr "Hello, world"`,
		"stloc.s V_1",
		"ldarg.s A_2",
		"call void [System.Console]System.Console::WriteLine(string)",
		"switch (IL_0000,IL_0001)",
		"brtrue.s IL_0000",
		"ret",
	}
	list, err := ilasm.New().ParseLines(src)
	require.NoError(t, err)

	b := &cil.Body{Instructions: list}
	b.UpdateOffsets(nil)
	require.NoError(t, b.Link())

	listing := Body(b)
	require.Len(t, listing, len(src))
	assert.Equal(t, "IL_0000: ldarg.0", listing[0].Text)
	assert.Equal(t, "ldc.i4", listing[1].Op)
	assert.Equal(t, "42", listing[1].Operand)
	assert.Equal(t, `IL_0018: ldstr "Hello, world"`, listing[4].Text)
	assert.Equal(t, "(IL_0000,IL_0001)", listing[8].Operand)
	assert.Equal(t, "IL_0000", listing[9].Operand)

	var text []string
	for _, l := range listing.Lines() {
		text = append(text, StripLabel(l))
	}
	again, err := ilasm.New().ParseLines(text)
	require.NoError(t, err)
	b2 := &cil.Body{Instructions: again}
	b2.UpdateOffsets(nil)
	require.NoError(t, b2.Link())
	assert.Equal(t, listing, Body(b2))
}

func TestStripLabel(t *testing.T) {
	tests := map[string]string{
		"IL_0010: nop":       "nop",
		"  il_0a:   ret ":    "ret",
		"nop":                "nop",
		"call void A::B()":   "call void A::B()",
		"IL_zz: nop":         "IL_zz: nop",
		`ldstr "IL_0000: x"`: `ldstr "IL_0000: x"`,
	}
	for in, want := range tests {
		assert.Equal(t, want, StripLabel(in), in)
	}
}

func TestFormat(t *testing.T) {
	in := cil.NewInstruction(cil.MustLookup("ldc.r4"), cil.Float32(0.1))
	assert.Equal(t, "ldc.r4 0.1", Format(in))
	assert.Equal(t, "ret", Format(cil.NewInstruction(cil.MustLookup("ret"), nil)))
	assert.Nil(t, Body(nil))
}
