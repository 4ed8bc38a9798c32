package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilreverse/internal/cil"
	"ilreverse/internal/metadata"
	"ilreverse/internal/patch"
)

const demoImage = "../../metadata/testdata/demo.yaml"

const mainName = "System.Void Demo.Program::Main(System.String[])"

// execute runs the command line with a scratch data directory and returns
// what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ILREVERSE_DATA_DIR", t.TempDir())
	t.Setenv("ILREVERSE_LOG_LEVEL", "error")
	t.Setenv("ILREVERSE_NO_COLOR", "1")

	rootCmd := NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	require.NoError(t, err)
	return out
}

func copyDemo(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(demoImage)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRootSummary(t *testing.T) {
	for _, args := range [][]string{{demoImage, "--no-tui"}, {"run", demoImage}} {
		out := run(t, args...)
		assert.Contains(t, out, "# Demo")
		assert.Contains(t, out, "* Entry point: `"+mainName+"`")
		assert.Contains(t, out, "* Types: 4, Methods: 7, Fields: 4, Properties: 1, Events: 1, Resources: 1")
		assert.Contains(t, out, "* String literals: 3")
		assert.Contains(t, out, "* `Demo.Point` 0x02000004")
		assert.Contains(t, out, "## Reflection")
		assert.Contains(t, out, "; sha256 ")
	}
}

func TestRootJSONSummary(t *testing.T) {
	out := run(t, demoImage, "--json")

	var s Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "Demo", s.Name)
	assert.Equal(t, mainName, s.EntryPoint)
	assert.Equal(t, 7, s.Methods)
	assert.Len(t, s.Digest, 64)
	require.Len(t, s.Reflection, 1)
	assert.Contains(t, s.Reflection[0], "GetType")
}

func TestRootWithoutImagePrintsHelp(t *testing.T) {
	out := run(t)
	assert.Contains(t, out, "ilreverse [image]")
}

func TestMissingImage(t *testing.T) {
	_, err := execute(t, "", "types", "nope.yaml")
	assert.EqualError(t, err, "file not found: nope.yaml")
}

func TestTypes(t *testing.T) {
	assert.Equal(t, "0x02000001  Demo.IGreeter\n0x02000002  Demo.Greeter\n0x02000003  Demo.Program\n0x02000004  Demo.Point\n",
		run(t, "types", demoImage))

	assert.Equal(t, "0x02000002  Demo.Greeter\n0x02000003  Demo.Program\n(items 2-3 of 4)\n",
		run(t, "types", demoImage, "--offset", "1", "--limit", "2"))

	assert.Equal(t, "(no items at offset 10 of 4)\n", run(t, "types", demoImage, "--offset", "10"))
	assert.Equal(t, "No types found\n", run(t, "types", demoImage, "--search", "nothing"))
	assert.Equal(t, "0x02000002  Demo.Greeter\n(items 2-2 of 2)\n", run(t, "types", demoImage, "-s", "greeter", "--offset", "1"))

	var rows []metadata.TypeRow
	require.NoError(t, json.Unmarshal([]byte(run(t, "types", demoImage, "--regex", `^Demo\.I`, "--json")), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Demo.IGreeter", rows[0].FullName)

	_, err := execute(t, "", "types", demoImage, "--regex", "(")
	assert.ErrorContains(t, err, "invalid pattern")
}

func TestTypesJSONPageIsEmptyArray(t *testing.T) {
	assert.Equal(t, "[]\n", run(t, "types", demoImage, "--search", "nothing", "--json"))
}

func TestMethods(t *testing.T) {
	out := run(t, "methods", demoImage, "Demo.Greeter")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "0x06000002  System.Void Demo.Greeter::.ctor(System.String)", lines[0])

	assert.Equal(t, "0x06000005  System.String Demo.Greeter::get_Prefix()\n", run(t, "methods", demoImage, "--regex", "^get_"))
	assert.Len(t, strings.Split(strings.TrimSpace(run(t, "methods", demoImage)), "\n"), 7)

	_, err := execute(t, "", "methods", demoImage, "Demo.Nope")
	assert.ErrorIs(t, err, metadata.ErrTypeNotFound)
}

func TestMembers(t *testing.T) {
	assert.Contains(t, run(t, "fields", demoImage), "0x04000002  System.Int32 Demo.Greeter::instances\n")
	assert.Equal(t, "0x17000001  System.String Demo.Greeter::Prefix()\n", run(t, "properties", demoImage))
	assert.Equal(t, "0x14000001  System.EventHandler Demo.Greeter::Greeted\n", run(t, "events", demoImage))
	assert.Equal(t, "0x28000001  Demo.Resources.strings (Embedded, 5 bytes)\n", run(t, "resources", demoImage))
}

func TestTypeInfo(t *testing.T) {
	out := run(t, "type-info", demoImage, "Demo.Point")
	assert.Contains(t, out, "## Demo.Point")
	assert.Contains(t, out, "Is ValueType: true")
	assert.Contains(t, out, "### Fields")
	assert.Contains(t, out, "* `System.Int32 Demo.Point::X` 0x04000003")

	var info metadata.TypeInfo
	require.NoError(t, json.Unmarshal([]byte(run(t, "type-info", demoImage, "Demo.IGreeter", "--json")), &info))
	assert.True(t, info.IsInterface)

	_, err := execute(t, "", "type-info", demoImage, "Point")
	assert.ErrorIs(t, err, metadata.ErrTypeNotFound)
}

func TestEntryPoint(t *testing.T) {
	assert.Equal(t, "0x06000006  "+mainName+"\n", run(t, "entrypoint", demoImage))
}

func TestRead(t *testing.T) {
	out := run(t, "read", demoImage, "0x2004", "2")
	assert.True(t, strings.HasPrefix(out, `\xCA\xFE`+"\n\n"), out)
	assert.Contains(t, out, "ca fe")

	var dump DataDump
	require.NoError(t, json.Unmarshal([]byte(run(t, "read", demoImage, "8192", "4", "--json")), &dump))
	assert.Equal(t, uint32(0x2000), dump.RVA)
	assert.Contains(t, dump.Hex, "de ad be ef")

	_, err := execute(t, "", "read", demoImage, "0x3000", "1")
	assert.ErrorIs(t, err, metadata.ErrNoData)
	_, err = execute(t, "", "read", demoImage, "x", "1")
	assert.ErrorContains(t, err, "invalid rva")
}

func TestStrings(t *testing.T) {
	out := run(t, "strings", demoImage)
	assert.Contains(t, out, mainName+` IL_001E: "Demo.Greeter"`)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	assert.Equal(t, mainName+`: "Demo.Greeter" at IL_001E`+"\n", run(t, "strings", demoImage, "--pattern", `^Demo\.`))
	assert.Equal(t, "No string references found\n", run(t, "strings", demoImage, "-p", "zzz"))
}

func TestReferences(t *testing.T) {
	assert.Equal(t,
		"System.Void Demo.Greeter::.ctor(System.String) calls System.Void System.Object::.ctor() at IL_0001\n",
		run(t, "usages", demoImage, "Object::.ctor"))
	assert.Equal(t, "No usages found\n", run(t, "usages", demoImage, "Nothing::Here"))

	assert.Equal(t,
		mainName+": call System.Void System.Console::WriteLine(System.String) at IL_0017\n",
		run(t, "refs", demoImage, "0x0A000003"))

	_, err := execute(t, "", "refs", demoImage, "zz")
	assert.ErrorContains(t, err, "invalid token")
}

func TestDeps(t *testing.T) {
	out := run(t, "deps", demoImage, "Demo.Greeter")
	assert.True(t, strings.HasPrefix(out, "Inherits: System.Object\nImplements: Demo.IGreeter\n"), out)
	assert.Contains(t, out, "Uses Field: System.String Demo.Greeter::prefix\n")
}

func TestReflection(t *testing.T) {
	assert.Equal(t, mainName+": System.Type System.Type::GetType(System.String) at IL_0023\n", run(t, "reflection", demoImage))
	assert.Equal(t, "No reflection usage found\n", run(t, "reflection", demoImage, "--pattern", "Activator"))

	var rows []ReflectionRow
	require.NoError(t, json.Unmarshal([]byte(run(t, "reflection", demoImage, "--json")), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "GetType", rows[0].Pattern)
	assert.Equal(t, uint32(0x23), rows[0].Offset)
	assert.Equal(t, "call", rows[0].OpCode)
}

func TestCtorsAndFlow(t *testing.T) {
	out := run(t, "ctors", demoImage, "Demo.Greeter")
	assert.True(t, strings.HasPrefix(out, "System.Void Demo.Greeter::.ctor(System.String), IsStatic: false, Parameters: 1\n  IL_0000: ldarg.0\n"), out)

	out = run(t, "cfg", demoImage, "Program::Main")
	assert.True(t, strings.HasPrefix(out, "Control flow graph for "+mainName+":\n"), out)
	assert.Contains(t, out, "  -> Jumps to IL_001E\n")
	assert.Contains(t, out, "  -> Jumps to IL_0029\n")
}

func TestIL(t *testing.T) {
	out := run(t, "il", demoImage, "--rid", "6")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 15)
	assert.Equal(t, "IL code for "+mainName+":", lines[0])
	assert.Equal(t, `IL_0000: ldstr "> "`, lines[1])
	assert.Equal(t, "IL_0029: ret", lines[14])

	assert.Equal(t, out, run(t, "il", demoImage, "Program::Main"))
	assert.Equal(t, "IL code for "+mainName+":\nIL_0000: ldstr \"> \"\n(items 1-2 of 15)\n",
		run(t, "il", demoImage, "Program::Main", "--limit", "2"))

	_, err := execute(t, "", "il", demoImage, "--rid", "99")
	assert.ErrorIs(t, err, metadata.ErrMethodNotFound)
	_, err = execute(t, "", "il", demoImage)
	assert.ErrorContains(t, err, "method name or --rid")
}

func TestParse(t *testing.T) {
	assert.Equal(t, "ldc.i4 42\nret\n", run(t, "parse", demoImage, "ldc.i4 42\nret"))

	out := run(t, "parse", demoImage, "--lenient", "ldc.i4 42\nbogus")
	assert.True(t, strings.HasPrefix(out, "ldc.i4 42\nerror: line 2: "), out)

	var rows []ParsedLine
	require.NoError(t, json.Unmarshal([]byte(run(t, "parse", demoImage, "-l", "bogus", "--json")), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "UnknownOpcode", rows[0].Kind)
	assert.Equal(t, 1, rows[0].Line)

	_, err := execute(t, "", "parse", demoImage, "ldc.i4 42\nbogus")
	assert.ErrorContains(t, err, "unknown opcode")
}

func TestParseFromStdinWithMethod(t *testing.T) {
	out, err := execute(t, "ldloc.s greeter\nret\n", "parse", demoImage, "--method", "Program::Main", "-")
	require.NoError(t, err)
	assert.Equal(t, "ldloc.s V_0\nret\n", out)

	_, err = execute(t, "", "parse", demoImage, "--method", "Nothing", "nop")
	assert.ErrorIs(t, err, metadata.ErrMethodNotFound)
}

func TestPatchSavesCopy(t *testing.T) {
	src := copyDemo(t)
	before, err := os.ReadFile(src)
	require.NoError(t, err)
	dst := filepath.Join(t.TempDir(), "patched.yaml")

	out := run(t, "patch", src, "Program::Main", `ldstr "patched"`, "--out", dst)
	assert.Equal(t, "Patched "+mainName+" at index 0: applied, overwrite, 14 instructions (0 padded), size 0x2A\nSaved to "+dst+"\n", out)

	m, err := metadata.Open(dst, nil)
	require.NoError(t, err)
	assert.Equal(t, cil.String("patched"), m.EntryPoint.Body.Instructions[0].Operand)

	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPatchInPlaceFromStdin(t *testing.T) {
	src := copyDemo(t)
	_, err := execute(t, "ldc.i4.2\nldc.i4.3\nadd\n", "patch", src, "Program::Dispatch", "--offset", "0x17", "-")
	require.NoError(t, err)

	m, err := metadata.Open(src, nil)
	require.NoError(t, err)
	md := metadata.FindMethods(m, "Program::Dispatch")
	require.Len(t, md, 1)
	assert.Equal(t, 10, md[0].Body.Len())
}

func TestPatchDryRun(t *testing.T) {
	src := copyDemo(t)
	before, err := os.ReadFile(src)
	require.NoError(t, err)

	out := run(t, "patch", src, "Program::Main", "--dry-run", "--offset", "0x1E", "br IL_0029")
	assert.Contains(t, out, "applied, overwrite")
	assert.Contains(t, out, "IL_001E: br IL_0029\n")

	var res patch.Result
	require.NoError(t, json.Unmarshal([]byte(run(t, "patch", src, "Program::Main", "--dry-run", "--json", "nop")), &res))
	assert.Equal(t, 14, res.Count)

	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPatchRejected(t *testing.T) {
	src := copyDemo(t)

	out, err := execute(t, "", "patch", src, "Program::Main", "--offset", "3", "--json", "nop")
	assert.ErrorIs(t, err, patch.ErrOffsetNotFound)
	assert.Contains(t, out, `"outcome": "rejected"`)

	_, err = execute(t, "", "patch", src, "Program::Main", "br IL_0100")
	assert.ErrorIs(t, err, patch.ErrTargetNotFound)

	_, err = execute(t, "", "patch", src, "Greet", "nop")
	assert.ErrorContains(t, err, "ambiguous method name")
}

func TestValidate(t *testing.T) {
	assert.Equal(t, "No problems found\n", run(t, "validate", demoImage))

	listing := filepath.Join(t.TempDir(), "main.il")
	require.NoError(t, os.WriteFile(listing, []byte("ldloc.s greeter\nbogus\nldc.i4 x\n"), 0o644))
	out := run(t, "validate", demoImage, "--method", "Program::Main", "--listing", listing)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "UnknownOpcode")
	assert.Contains(t, lines[1], "InvalidOperandSyntax")

	_, err := execute(t, "", "validate", demoImage, "--listing", listing)
	assert.ErrorContains(t, err, "--listing needs --method")
}

func TestRunSections(t *testing.T) {
	out := run(t, "run", "-q", demoImage, "entrypoint", "reflection")
	assert.Equal(t, "## entrypoint\n0x06000006  "+mainName+"\n\n## reflection\n"+
		mainName+": System.Type System.Type::GetType(System.String) at IL_0023\n", out)

	var sections map[string][]string
	require.NoError(t, json.Unmarshal([]byte(run(t, "run", demoImage, "types", "--json")), &sections))
	assert.Len(t, sections["types"], 4)

	_, err := execute(t, "", "run", demoImage, "nope")
	assert.ErrorContains(t, err, `unknown analysis "nope"`)
}

func TestSchema(t *testing.T) {
	assert.Contains(t, run(t, "schema"), `"pageSize"`)
	assert.Contains(t, run(t, "schema", "--image"), `"entryPoint"`)
}

func TestLogs(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "logs", "--data-dir", dir)
	assert.Equal(t, "No log file at "+filepath.Join(dir, "logs", "ilreverse.log")+"\n", out)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "ilreverse.log"), []byte("one\ntwo\nthree\n"), 0o644))
	assert.Equal(t, "two\nthree\n", run(t, "logs", "--data-dir", dir, "--tail", "2"))
	assert.Equal(t, "one\ntwo\nthree\n", run(t, "logs", "--data-dir", dir, "-t", "0"))
}

func TestCwdFlag(t *testing.T) {
	abs, err := filepath.Abs(demoImage)
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Chdir(wd)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.yaml"), mustRead(t, abs), 0o644))
	out := run(t, "--cwd", dir, "entrypoint", "demo.yaml")
	assert.Equal(t, "0x06000006  "+mainName+"\n", out)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestConfigPageSize(t *testing.T) {
	t.Setenv("ILREVERSE_PAGE_SIZE", "1")
	rootCmd := NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"types", demoImage, "--data-dir", t.TempDir()})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "0x02000001  Demo.IGreeter\n(items 1-1 of 4)\n", out.String())
}
