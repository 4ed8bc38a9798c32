package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilreverse/internal/metadata"
)

func openDemo(t *testing.T) *metadata.Module {
	t.Helper()
	m, err := metadata.Open("../metadata/testdata/demo.yaml", nil)
	require.NoError(t, err)
	return m
}

const mainName = "System.Void Demo.Program::Main(System.String[])"

func TestEscapeUnprintable(t *testing.T) {
	assert.Equal(t, `a\u0001\xFFé`, EscapeUnprintable([]byte("a\x01\xffé")))
	assert.Equal(t, "", EscapeUnprintable(nil))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, `tab\u0009`, Preview("tab\t"))
	long := Preview(strings.Repeat("x", MaxStringLength+10))
	assert.Len(t, long, MaxStringLength+3)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestFormatData(t *testing.T) {
	text, dump := FormatData([]byte("Hi\x00"))
	assert.Equal(t, `Hi\u0000`, text)
	assert.Contains(t, dump, "48 69 00")
}

func TestScan(t *testing.T) {
	m := openDemo(t)
	findings := Scan(m)
	require.Len(t, findings, 14)

	first := findings[0]
	assert.Equal(t, KindCall, first.Kind)
	assert.Equal(t, "call", first.OpCode)
	assert.Equal(t, "System.Void System.Object::.ctor()", first.Target)
	assert.Equal(t, metadata.Token(0x0A000001), first.Token)
	assert.Equal(t, "IL_0001", first.Location())

	var kinds []FindingKind
	for _, f := range ScanMethod(m.EntryPoint) {
		kinds = append(kinds, f.Kind)
	}
	assert.Equal(t, []FindingKind{KindString, KindCall, KindCall, KindCall, KindString, KindCall}, kinds)

	iface, _ := m.FindType("Demo.IGreeter")
	assert.Empty(t, ScanMethod(iface.Methods[0]))
}

func TestFindStringLiterals(t *testing.T) {
	lits := FindStringLiterals(openDemo(t))
	require.Len(t, lits, 3)
	assert.Equal(t, StringLiteral{
		MethodName:    "Greet",
		FullName:      "System.String Demo.Greeter::Greet()",
		Token:         0x06000004,
		StringLiteral: "hello  world",
		InstrOffset:   6,
	}, lits[0])
	assert.Equal(t, mainName+` IL_001E: "Demo.Greeter"`, lits[2].String())
}

func TestFindStringReferences(t *testing.T) {
	m := openDemo(t)
	rows, err := FindStringReferences(m, `^Demo\.`)
	require.NoError(t, err)
	assert.Equal(t, []string{mainName + `: "Demo.Greeter" at IL_001E`}, rows)

	rows, err = FindStringReferences(m, `nothing`)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = FindStringReferences(m, `[`)
	assert.Error(t, err)
}

func TestFindMethodUsages(t *testing.T) {
	m := openDemo(t)
	assert.Equal(t,
		[]string{mainName + " calls System.String Demo.IGreeter::Greet() at IL_0012"},
		FindMethodUsages(m, "igreeter::GREET"))

	ctors := FindMethodUsages(m, "::.ctor(")
	require.Len(t, ctors, 2)
	assert.Equal(t, "System.Void Demo.Greeter::.ctor(System.String) calls System.Void System.Object::.ctor() at IL_0001", ctors[0])
	assert.Empty(t, FindMethodUsages(m, "Missing"))
}

func TestFindMethodReferences(t *testing.T) {
	m := openDemo(t)
	rows := FindMethodReferences(m, metadata.NewToken(metadata.TableField, 1))
	require.Len(t, rows, 3)
	assert.Equal(t, "System.Void Demo.Greeter::.ctor(System.String): stfld System.String Demo.Greeter::prefix at IL_0008", rows[0])

	rows = FindMethodReferences(m, metadata.NewToken(metadata.TableMethod, 2))
	assert.Equal(t, []string{mainName + ": newobj System.Void Demo.Greeter::.ctor(System.String) at IL_0005"}, rows)

	assert.Empty(t, FindMethodReferences(m, 0))
}

func TestTypeDependencies(t *testing.T) {
	m := openDemo(t)
	rows, err := TypeDependencies(m, "Demo.Greeter")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Inherits: System.Object",
		"Implements: Demo.IGreeter",
		"Calls: System.Void System.Object::.ctor()",
		"Uses Field: System.String Demo.Greeter::prefix",
		"Uses Field: System.Int32 Demo.Greeter::instances",
		"Calls: System.String System.String::Concat(System.String,System.String)",
	}, rows)

	_, err = TypeDependencies(m, "Demo.Nope")
	assert.ErrorIs(t, err, metadata.ErrTypeNotFound)
}

func TestControlFlow(t *testing.T) {
	m := openDemo(t)

	rows := ControlFlow(m, "dispatch")
	require.Len(t, rows, 12)
	assert.Equal(t, []string{
		"Control flow graph for System.Int32 Demo.Program::Dispatch(System.Int32):",
		"IL_0000: ldarg.0",
		"IL_0001: switch (IL_0010,IL_0012)",
		"  -> Jumps to IL_0010",
		"  -> Jumps to IL_0012",
		"IL_000E: ldc.i4.m1",
	}, rows[:6])

	rows = ControlFlow(m, "::Main(")
	assert.Contains(t, rows, "  -> Jumps to IL_001E")
	assert.Contains(t, rows, "  -> Jumps to IL_0029")

	assert.Equal(t, []string{"Method System.String Demo.IGreeter::Greet() has no body"}, ControlFlow(m, "IGreeter::Greet"))
	assert.Empty(t, ControlFlow(m, "Nothing"))
}

func TestMethodIL(t *testing.T) {
	m := openDemo(t)

	rows, err := MethodILByRID(m, 6)
	require.NoError(t, err)
	require.Len(t, rows, 15)
	assert.Equal(t, "IL code for "+mainName+":", rows[0])
	assert.Equal(t, `IL_0000: ldstr "> "`, rows[1])

	assert.Equal(t, rows, MethodIL(m, "Program::Main"))

	_, err = MethodILByRID(m, 99)
	assert.ErrorIs(t, err, metadata.ErrMethodNotFound)
}

func TestConstructors(t *testing.T) {
	m := openDemo(t)
	rows, err := Constructors(m, "Demo.Greeter")
	require.NoError(t, err)
	require.Len(t, rows, 11)
	assert.Equal(t, "System.Void Demo.Greeter::.ctor(System.String), IsStatic: false, Parameters: 1", rows[0])
	assert.Equal(t, "  IL_0000: ldarg.0", rows[1])
	assert.Equal(t, "System.Void Demo.Greeter::.cctor(), IsStatic: true, Parameters: 0", rows[7])

	rows, err = Constructors(m, "Demo.IGreeter")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = Constructors(m, "Nope")
	assert.ErrorIs(t, err, metadata.ErrTypeNotFound)
}

type dropStrings struct{}

func (dropStrings) Detect(in []CallFinding) []CallFinding {
	var out []CallFinding
	for _, f := range in {
		if f.Kind != KindString {
			out = append(out, f)
		}
	}
	return out
}

func TestDetectorChain(t *testing.T) {
	findings := Scan(openDemo(t))
	chain := NewDetectorChain(dropStrings{}, dropStrings{})
	assert.Len(t, chain.Detect(findings), 11)
	assert.Len(t, NewDetectorChain().Detect(findings), 14)
}
