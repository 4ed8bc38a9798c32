// Package detectors recognizes patterns in the call and string findings of
// a module scan.
package detectors

import (
	"fmt"
	"strings"

	"ilreverse/internal/analysis"
)

// ReflectionPatterns are the name fragments that suggest a method resolves
// or invokes members at run time.
var ReflectionPatterns = []string{
	"System.Reflection",
	"GetType",
	"InvokeMember",
	"Invoke",
	"Assembly.Load",
	"GetMethod",
	"GetField",
	"GetProperty",
}

// ReflectionDetector keeps calls and string literals that mention a
// reflection API. Matching is case-sensitive.
type ReflectionDetector struct {
	patterns []string
}

// NewReflectionDetector returns a detector for patterns, or for
// ReflectionPatterns when none are given.
func NewReflectionDetector(patterns ...string) *ReflectionDetector {
	if len(patterns) == 0 {
		patterns = ReflectionPatterns
	}
	return &ReflectionDetector{patterns: patterns}
}

func (d *ReflectionDetector) Detect(findings []analysis.CallFinding) []analysis.CallFinding {
	var result []analysis.CallFinding
	for _, finding := range findings {
		if finding.Kind != analysis.KindCall && finding.Kind != analysis.KindString {
			continue
		}
		pattern, ok := d.match(finding.Target)
		if !ok {
			continue
		}
		if finding.Metadata == nil {
			finding.Metadata = make(map[string]any)
		}
		finding.Metadata["pattern"] = pattern
		finding.Comment = comment(finding)
		result = append(result, finding)
	}
	return result
}

func (d *ReflectionDetector) match(s string) (string, bool) {
	for _, p := range d.patterns {
		if strings.Contains(s, p) {
			return p, true
		}
	}
	return "", false
}

func comment(f analysis.CallFinding) string {
	caller := f.Method.FullName()
	if f.Kind == analysis.KindString {
		return fmt.Sprintf("%s: String literal \"%s\" at %s", caller, analysis.Preview(f.Target), f.Location())
	}
	return fmt.Sprintf("%s: %s at %s", caller, f.Target, f.Location())
}

// Comments returns the Comment of each finding.
func Comments(findings []analysis.CallFinding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Comment
	}
	return out
}
