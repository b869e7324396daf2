// Package report renders compliance reports. Renderers are purely
// presentational: they never mutate the report, and identical reports render
// to byte-identical output.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"checkdoc/internal/checker"
	"checkdoc/internal/score"
)

// Supported output formats.
const (
	FormatChecklist = "checklist"
	FormatTable     = "table"
	FormatDiff      = "diff"
	FormatJSON      = "json"
)

// Formats returns the supported format names, sorted.
func Formats() []string {
	return []string{FormatChecklist, FormatDiff, FormatJSON, FormatTable}
}

// Render serializes the report in the requested format.
func Render(rep *score.ComplianceReport, format string) (string, error) {
	switch format {
	case FormatChecklist:
		return renderChecklist(rep), nil
	case FormatTable:
		return renderTable(rep), nil
	case FormatDiff:
		return renderDiff(rep), nil
	case FormatJSON:
		return renderJSON(rep)
	default:
		return "", fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
}

func renderChecklist(rep *score.ComplianceReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Compliance report for %s (ruleset %s", rep.DocumentPath, rep.RuleSetName)
	if rep.RuleSetVersion != "" {
		fmt.Fprintf(&sb, " v%s", rep.RuleSetVersion)
	}
	sb.WriteString(")\n\n")

	byRule := violationsByRule(rep.Violations)
	for _, rule := range rep.Rules {
		switch rule.Status {
		case "pass":
			fmt.Fprintf(&sb, "- [x] %s (%s)\n", rule.ID, rule.Severity)
		case "n/a":
			fmt.Fprintf(&sb, "- [-] %s (%s) — not applicable\n", rule.ID, rule.Severity)
		default:
			fmt.Fprintf(&sb, "- [ ] %s (%s) — %d violation(s)\n", rule.ID, rule.Severity, rule.Violations)
			for _, v := range byRule[rule.ID] {
				fmt.Fprintf(&sb, "      line %d: %s\n", v.StartLine, v.Message)
			}
		}
	}

	sb.WriteString("\n")
	sb.WriteString(summaryLine(rep))
	sb.WriteString("\n")
	return sb.String()
}

func renderTable(rep *score.ComplianceReport) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RULE\tSEVERITY\tSTATUS\tFINDING")

	byRule := violationsByRule(rep.Violations)
	for _, rule := range rep.Rules {
		finding := "-"
		if vs := byRule[rule.ID]; len(vs) > 0 {
			finding = fmt.Sprintf("line %d: %s", vs[0].StartLine, vs[0].Message)
			if len(vs) > 1 {
				finding += fmt.Sprintf(" (+%d more)", len(vs)-1)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rule.ID, rule.Severity, rule.Status, finding)
	}
	w.Flush()

	sb.WriteString("\n")
	sb.WriteString(summaryLine(rep))
	sb.WriteString("\n")
	return sb.String()
}

func summaryLine(rep *score.ComplianceReport) string {
	if rep.NoApplicableRules {
		return fmt.Sprintf("Summary: no applicable MUST rules (compliance %.1f%% by default)", rep.Percentage)
	}
	return fmt.Sprintf("Summary: %d/%d applicable MUST rules passed (%.1f%%)",
		rep.PassedMust, rep.ApplicableMust, rep.Percentage)
}

// violationsByRule groups violations per rule, preserving their order.
func violationsByRule(violations []checker.Violation) map[string][]checker.Violation {
	out := make(map[string][]checker.Violation)
	for _, v := range violations {
		out[v.RuleID] = append(out[v.RuleID], v)
	}
	return out
}
