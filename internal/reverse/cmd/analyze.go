package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"ilreverse/internal/analysis"
	"ilreverse/internal/detectors"
	"ilreverse/internal/metadata"
)

func newStringsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strings <image>",
		Short: "List string literals loaded by method bodies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			pattern, _ := cmd.Flags().GetString("pattern")
			if pattern == "" {
				return printRows(cmd, a, analysis.FindStringLiterals(s.Module), "No string literals found", stringer)
			}
			rows, err := analysis.FindStringReferences(s.Module, pattern)
			if err != nil {
				return err
			}
			return printRows(cmd, a, rows, "No string references found", plain)
		},
	}
	cmd.Flags().StringP("pattern", "p", "", "Only literals matching this .NET regular expression")
	return cmd
}

func newCtorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ctors <image> <type>",
		Short: "Show the constructors of a type with their IL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			rows, err := analysis.Constructors(s.Module, args[1])
			if err != nil {
				return err
			}
			return printRows(cmd, a, rows, "No constructors found", a.hl.Listing)
		},
	}
}

func newDepsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deps <image> <type>",
		Short: "List what a type depends on",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			rows, err := analysis.TypeDependencies(s.Module, args[1])
			if err != nil {
				return err
			}
			return printRows(cmd, a, rows, "No dependencies found", plain)
		},
	}
}

func newUsagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "usages <image> <method>",
		Short: "List call sites of methods whose name contains the text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			return printRows(cmd, a, analysis.FindMethodUsages(s.Module, args[1]), "No usages found", plain)
		},
	}
}

func newRefsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refs <image> <token>",
		Short: "List instructions that refer to a metadata token",
		Example: `
ilreverse refs app.yaml 0x0A000003
  `,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := metadata.ParseToken(args[1])
			if err != nil {
				return err
			}
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			return printRows(cmd, a, analysis.FindMethodReferences(s.Module, tok), "No references found", plain)
		},
	}
}

// ReflectionRow is the JSON form of one reflection finding.
type ReflectionRow struct {
	Method  string `json:"method"`
	Offset  uint32 `json:"offset"`
	OpCode  string `json:"opcode"`
	Target  string `json:"target"`
	Pattern string `json:"pattern"`
	Comment string `json:"comment"`
}

func newReflectionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reflection <image>",
		Short: "Find calls and strings that suggest reflection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			patterns, _ := cmd.Flags().GetStringSlice("pattern")
			chain := analysis.NewDetectorChain(detectors.NewReflectionDetector(patterns...))
			found := chain.Detect(analysis.Scan(s.Module))

			rows := make([]ReflectionRow, 0, len(found))
			for _, f := range found {
				pattern, _ := f.Metadata["pattern"].(string)
				rows = append(rows, ReflectionRow{
					Method:  f.Method.FullName(),
					Offset:  f.Offset,
					OpCode:  f.OpCode,
					Target:  f.Target,
					Pattern: pattern,
					Comment: f.Comment,
				})
			}
			return printRows(cmd, a, rows, "No reflection usage found", func(r ReflectionRow) string { return r.Comment })
		},
	}
	cmd.Flags().StringSliceP("pattern", "p", nil, "Name fragments to look for (default: common reflection APIs)")
	return cmd
}

func newCFGCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cfg <image> <method>",
		Short: "List method bodies with their jump targets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			return printRows(cmd, a, analysis.ControlFlow(s.Module, args[1]), "No methods found", a.hl.Listing)
		},
	}
}

func newILCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "il <image> [method]",
		Short: "Show the IL of methods by name or by row id",
		Example: `
ilreverse il app.yaml Program::Main
ilreverse il app.yaml --rid 6
  `,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(args[0])
			if err != nil {
				return err
			}
			var rows []string
			if cmd.Flags().Changed("rid") {
				rid, _ := cmd.Flags().GetUint32("rid")
				if rows, err = analysis.MethodILByRID(s.Module, rid); err != nil {
					return err
				}
			} else {
				if len(args) < 2 {
					return errors.New("il needs a method name or --rid")
				}
				rows = analysis.MethodIL(s.Module, args[1])
			}
			return printRows(cmd, a, rows, "No methods found", a.hl.Listing)
		},
	}
	cmd.Flags().Uint32("rid", 0, "Method row id")
	return cmd
}
