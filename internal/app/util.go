package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/uxaudit/uxaudit/internal/analyzers/runner"
)

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// buildSpecs selects the rule specs to run. A non-empty includeCSV runs only
// those rule IDs; otherwise every catalog rule runs except the ones disabled.
func buildSpecs(includeCSV, disableCSV string) []runner.Spec {
	catalog := runner.Catalog()
	if strings.TrimSpace(includeCSV) != "" {
		wanted := map[string]struct{}{}
		for _, id := range splitAndTrim(includeCSV) {
			wanted[strings.ToUpper(id)] = struct{}{}
		}
		var out []runner.Spec
		for _, spec := range catalog {
			if _, ok := wanted[spec.RuleID]; ok {
				out = append(out, spec)
			}
		}
		return out
	}
	disabled := map[string]struct{}{}
	for _, id := range splitAndTrim(disableCSV) {
		disabled[strings.ToUpper(id)] = struct{}{}
	}
	var out []runner.Spec
	for _, spec := range catalog {
		if _, off := disabled[spec.RuleID]; off {
			continue
		}
		out = append(out, spec)
	}
	return out
}

// writeReport renders findings grouped by file. Rule-0 diagnostics are shown
// last and never affect the verdict.
func writeReport(out io.Writer, findings, diags []runner.Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(out, "uxaudit: all checked files pass")
	} else {
		var lastFile string
		for _, f := range findings {
			if f.Filename != lastFile {
				fmt.Fprintf(out, "\n%s\n", f.Filename)
				lastFile = f.Filename
			}
			fmt.Fprintf(out, "  %s:%d [%s] %s\n", f.Filename, f.Line, f.RuleID, f.Message)
			fmt.Fprintf(out, "      %s: %s\n", f.Title, f.Suggestion)
		}
		fmt.Fprintf(out, "\nuxaudit: %d violation(s); commit blocked\n", len(findings))
	}
	for _, d := range diags {
		fmt.Fprintf(out, "uxaudit: warning: rule %s crashed on %s: %s\n", d.RuleID, d.Filename, d.Message)
	}
}
