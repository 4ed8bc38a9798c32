package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ilreverse/internal/paginate"
	"ilreverse/internal/reverse/styles"
)

func (a *app) pageFlags(cmd *cobra.Command) (offset, limit int) {
	offset, _ = cmd.Flags().GetInt("offset")
	limit, _ = cmd.Flags().GetInt("limit")
	if limit < 0 {
		limit = a.cfg.PageSize
	}
	return offset, limit
}

func wantJSON(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

// printRows prints one page of rows, or the page as a JSON array with
// --json. empty is printed when there are no rows at all.
func printRows[T any](cmd *cobra.Command, a *app, rows []T, empty string, text func(T) string) error {
	offset, limit := a.pageFlags(cmd)
	page := paginate.Page(rows, offset, limit)
	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return writeJSON(out, page)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, empty)
		return nil
	}
	for _, row := range page {
		fmt.Fprintln(out, text(row))
	}
	if footer := paginate.Footer(len(rows), max(offset, 0), len(page)); footer != "" {
		fmt.Fprintln(out, footer)
	}
	return nil
}

func stringer[T fmt.Stringer](v T) string { return v.String() }

func plain(s string) string { return s }

// listing prints IL lines unpaginated, highlighted on a terminal.
func (a *app) listing(cmd *cobra.Command, lines []string, empty string) error {
	out := cmd.OutOrStdout()
	if wantJSON(cmd) {
		return writeJSON(out, lines)
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, empty)
		return nil
	}
	for _, line := range a.hl.Lines(lines) {
		fmt.Fprintln(out, line)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// markdown renders md on a styled terminal and leaves it as is otherwise.
func (a *app) markdown(md string, width int) string {
	if !a.styled {
		return md
	}
	return styles.RenderMarkdown(md, width, false)
}
