package cmd

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"

	"ilreverse/internal/analysis"
	"ilreverse/internal/detectors"
	"ilreverse/internal/metadata"
)

// Summary is the overview printed by the root command and by run.
type Summary struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	Digest     string   `json:"digest,omitempty"`
	CorLib     string   `json:"corLib"`
	EntryPoint string   `json:"entryPoint,omitempty"`
	Types      int      `json:"types"`
	Methods    int      `json:"methods"`
	Fields     int      `json:"fields"`
	Properties int      `json:"properties"`
	Events     int      `json:"events"`
	Resources  int      `json:"resources"`
	Strings    int      `json:"strings"`
	Reflection []string `json:"reflection"`
}

func newSummary(m *metadata.Module) Summary {
	s := Summary{
		Name:       m.Name,
		Path:       m.Path,
		Digest:     fileDigest(m.Path),
		CorLib:     m.CorLib,
		Types:      len(m.Types),
		Methods:    len(m.Methods()),
		Fields:     len(m.Fields()),
		Properties: len(m.Properties()),
		Events:     len(m.Events()),
		Resources:  len(m.Resources),
		Strings:    len(analysis.FindStringLiterals(m)),
		Reflection: detectors.Comments(detectors.NewReflectionDetector().Detect(analysis.Scan(m))),
	}
	if ep, err := metadata.EntryPoint(m); err == nil {
		s.EntryPoint = ep.FullName
	}
	if s.Reflection == nil {
		s.Reflection = []string{}
	}
	return s
}

func fileDigest(path string) string {
	if path == "" {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func summaryMarkdown(m *metadata.Module) string {
	s := newSummary(m)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n```\n; %s\n", s.Name, s.Path)
	if s.Digest != "" {
		fmt.Fprintf(&b, "; sha256 %s\n", s.Digest)
	}
	b.WriteString("```\n\n")

	entry := "none"
	if s.EntryPoint != "" {
		entry = "`" + s.EntryPoint + "`"
	}
	fmt.Fprintf(&b, "* Core library: `%s`\n", s.CorLib)
	fmt.Fprintf(&b, "* Entry point: %s\n", entry)
	fmt.Fprintf(&b, "* Types: %d, Methods: %d, Fields: %d, Properties: %d, Events: %d, Resources: %d\n",
		s.Types, s.Methods, s.Fields, s.Properties, s.Events, s.Resources)
	fmt.Fprintf(&b, "* String literals: %d\n", s.Strings)

	b.WriteString("\n## Types\n\n")
	for _, row := range metadata.ListTypes(m) {
		fmt.Fprintf(&b, "* `%s` %s\n", row.FullName, row.Token)
	}

	if len(s.Reflection) > 0 {
		b.WriteString("\n## Reflection\n\n")
		for _, c := range s.Reflection {
			fmt.Fprintf(&b, "* %s\n", c)
		}
	}
	return b.String()
}

// typeInfoMarkdown renders the type info page shown by type-info and the
// browser.
func typeInfoMarkdown(info metadata.TypeInfo, t *metadata.TypeDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n```\n%s\n```\n", t.FullName(), info)
	if len(t.Methods) > 0 {
		b.WriteString("\n### Methods\n\n")
		for _, md := range t.Methods {
			fmt.Fprintf(&b, "* `%s` %s\n", md.FullName(), md.Token())
		}
	}
	if len(t.Fields) > 0 {
		b.WriteString("\n### Fields\n\n")
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "* `%s` %s\n", f.FullName(), f.Token())
		}
	}
	return b.String()
}
