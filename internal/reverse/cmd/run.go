package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"ilreverse/internal/analysis"
	"ilreverse/internal/detectors"
	"ilreverse/internal/metadata"
)

// analyses are the sections run can print, in the order they are listed.
var analyses = map[string]func(m *metadata.Module) []string{
	"types": func(m *metadata.Module) []string {
		return rowStrings(metadata.ListTypes(m))
	},
	"methods": func(m *metadata.Module) []string {
		rows, _ := metadata.FindMethodsRegex(m, "")
		return rowStrings(rows)
	},
	"strings": func(m *metadata.Module) []string {
		return rowStrings(analysis.FindStringLiterals(m))
	},
	"reflection": func(m *metadata.Module) []string {
		return detectors.Comments(detectors.NewReflectionDetector().Detect(analysis.Scan(m)))
	},
	"entrypoint": func(m *metadata.Module) []string {
		row, err := metadata.EntryPoint(m)
		if err != nil {
			return nil
		}
		return []string{row.String()}
	},
}

var analysisOrder = []string{"entrypoint", "types", "methods", "strings", "reflection"}

func rowStrings[T fmt.Stringer](rows []T) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String()
	}
	return out
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <image> [analysis...]",
		Short: "Run a single non-interactive analysis",
		Long: `Run analyses in non-interactive mode and exit. Each named analysis prints
one section; with no names the module summary is printed.
Analyses: ` + strings.Join(analysisOrder, ", ") + ".",
		Example: `
# Print the summary
ilreverse run app.yaml

# Print entry point and string literals quietly
ilreverse run -q app.yaml entrypoint strings
  `,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")
			path, names := args[0], args[1:]
			for _, name := range names {
				if _, ok := analyses[name]; !ok {
					return fmt.Errorf("unknown analysis %q (want one of %s)", name, strings.Join(analysisOrder, ", "))
				}
			}

			if !quiet {
				slog.Info("Running analysis", "file", path, "args", names)
			}
			s, err := a.open(path)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(names) == 0 {
				if wantJSON(cmd) {
					return writeJSON(w, newSummary(s.Module))
				}
				fmt.Fprintln(w, a.markdown(summaryMarkdown(s.Module), 80))
				return nil
			}

			sections := make(map[string][]string, len(names))
			for i, name := range names {
				rows := analyses[name](s.Module)
				if rows == nil {
					rows = []string{}
				}
				sections[name] = rows
				if wantJSON(cmd) {
					continue
				}
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "## %s\n", name)
				for _, row := range rows {
					fmt.Fprintln(w, row)
				}
			}
			if wantJSON(cmd) {
				return writeJSON(w, sections)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("quiet", "q", false, "Do not log progress")
	return cmd
}
