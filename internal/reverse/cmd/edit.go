package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ilreverse/internal/cil"
	"ilreverse/internal/disasm"
	"ilreverse/internal/ilasm"
	"ilreverse/internal/metadata"
	"ilreverse/internal/patch"
	"ilreverse/internal/session"
)

// readInput returns arg, or standard input when arg is "-".
func readInput(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	bts, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(bts), nil
}

// ParsedLine is the JSON form of one line of parse output.
type ParsedLine struct {
	Line  int    `json:"line"`
	Text  string `json:"text,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

func (l ParsedLine) String() string {
	if l.Error != "" {
		return "error: " + l.Error
	}
	return l.Text
}

func parsedLines(ins []*cil.Instruction, errs []*ilasm.ParseError) []ParsedLine {
	out := make([]ParsedLine, 0, len(ins)+len(errs))
	for _, in := range ins {
		out = append(out, ParsedLine{Line: in.Line, Text: disasm.Format(in)})
	}
	for _, e := range errs {
		out = append(out, ParsedLine{Line: e.Line, Kind: ilasm.KindOf(e), Error: e.Error()})
	}
	return out
}

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <image> <text|->",
		Short: "Parse IL assembler text against a module",
		Long: `Parse IL assembler text, one instruction per line, resolving type and
member references against the module. With --method, variable operands may
name the locals and parameters of that method. "-" reads the text from stdin.`,
		Example: `
ilreverse parse app.yaml 'call void [System.Console]System.Console::WriteLine(string)'
ilreverse parse app.yaml --method Program::Main --lenient - < body.il
  `,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			s, err := a.open(args[0])
			if err != nil {
				return err
			}

			var md *metadata.MethodDef
			if name, _ := cmd.Flags().GetString("method"); name != "" {
				if md, err = s.Method(name); err != nil {
					return err
				}
			}
			var opts []ilasm.Option
			if verbatim, _ := cmd.Flags().GetBool("verbatim"); verbatim {
				opts = append(opts, ilasm.WithVerbatimOperands())
			}
			p := s.Parser(md, opts...)

			var rows []ParsedLine
			if lenient, _ := cmd.Flags().GetBool("lenient"); lenient {
				rows = parsedLines(p.ParseLenient(text))
			} else {
				ins, err := p.Parse(text)
				if err != nil {
					return err
				}
				rows = parsedLines(ins, nil)
			}
			return printRows(cmd, a, rows, "No instructions found", func(l ParsedLine) string {
				return a.hl.Listing(l.String())
			})
		},
	}
	cmd.Flags().StringP("method", "m", "", "Method whose locals and parameters variable operands may name")
	cmd.Flags().BoolP("lenient", "l", false, "Report every bad line instead of stopping at the first")
	cmd.Flags().Bool("verbatim", false, "Keep operand text exactly as written")
	return cmd
}

func newPatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch <image> <method> <text|->",
		Short: "Splice IL into a method body and save the module",
		Long: `Parse IL assembler text in the context of a method and splice it into the
body at --offset. Without --out the image is written back in place; with
--dry-run nothing is written and the patched body is printed instead.`,
		Example: `
ilreverse patch app.yaml Program::Main 'ldstr "patched"' --out patched.yaml
ilreverse patch app.yaml Program::Dispatch --offset 0x17 --dry-run - < tail.il
  `,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[2])
			if err != nil {
				return err
			}
			offset, _ := cmd.Flags().GetUint32("offset")
			out, _ := cmd.Flags().GetString("out")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			res, err := s.Patch(args[1], offset, text)
			if err != nil {
				var rejected *patch.RejectedError
				if errors.As(err, &rejected) && wantJSON(cmd) {
					_ = writeJSON(cmd.OutOrStdout(), res)
				}
				return err
			}

			w := cmd.OutOrStdout()
			if dryRun {
				if wantJSON(cmd) {
					return writeJSON(w, res)
				}
				md, err := s.Method(args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(w, patchSummary(res))
				return a.listing(cmd, disasm.Body(md.Body).Lines(), "")
			}

			if err := s.Save(out); err != nil {
				return err
			}
			if wantJSON(cmd) {
				return writeJSON(w, res)
			}
			fmt.Fprintln(w, patchSummary(res))
			fmt.Fprintf(w, "Saved to %s\n", s.Path)
			return nil
		},
	}
	cmd.Flags().Uint32P("offset", "o", 0, "Byte offset of the first instruction to replace")
	cmd.Flags().String("out", "", "Write the patched module here instead of over the image")
	cmd.Flags().Bool("dry-run", false, "Print the patched body without saving")
	return cmd
}

func patchSummary(res *patch.Result) string {
	return fmt.Sprintf("Patched %s at index %d: %s, %s, %d instructions (%d padded), size 0x%X",
		res.Method, res.Index, res.Outcome, res.Strategy, res.Count, res.Padded, res.Size)
}

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <image>",
		Short: "Check every method body for bad operands and dangling branches",
		Long: `Check every instruction of every method body. With --listing and --method
a listing file is also parsed leniently against that method and each bad line
is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			var rows []string
			for _, p := range s.Verify() {
				rows = append(rows, p.String())
			}

			listing, _ := cmd.Flags().GetString("listing")
			if listing != "" {
				name, _ := cmd.Flags().GetString("method")
				if name == "" {
					return errors.New("--listing needs --method")
				}
				rows, err = checkListing(s, name, listing, rows)
				if err != nil {
					return err
				}
			}
			return printRows(cmd, a, rows, "No problems found", plain)
		},
	}
	cmd.Flags().String("listing", "", "IL listing file to check")
	cmd.Flags().StringP("method", "m", "", "Method the listing belongs to")
	return cmd
}

func checkListing(s *session.Session, method, path string, rows []string) ([]string, error) {
	md, err := s.Method(method)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing: %w", err)
	}
	_, errs := s.Check(md, string(data))
	for _, e := range errs {
		rows = append(rows, fmt.Sprintf("%s: %s: %v", path, ilasm.KindOf(e), e))
	}
	return rows, nil
}
