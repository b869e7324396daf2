package report

import (
	"fmt"
	"strings"

	"checkdoc/internal/score"

	"github.com/pmezard/go-difflib/difflib"
)

// renderDiff emits unified-diff suggested rewrites for every violation whose
// rule carries a fix template. Violations without a rewrite are listed below
// the diffs so nothing is silently dropped.
func renderDiff(rep *score.ComplianceReport) string {
	var sb strings.Builder
	var unfixed int

	for _, v := range rep.Violations {
		if v.Fix == "" || v.Unit == nil || v.Matched == "" {
			unfixed++
			continue
		}

		original := v.Unit.Text
		patched := strings.ReplaceAll(original, v.Matched, v.Fix)
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(original),
			B:        difflib.SplitLines(patched),
			FromFile: fmt.Sprintf("%s:%d", rep.DocumentPath, v.Unit.StartLine),
			ToFile:   "suggested",
			Context:  2,
		})
		if err != nil || diff == "" {
			unfixed++
			continue
		}
		fmt.Fprintf(&sb, "# %s (%s): %s\n", v.RuleID, v.Severity, v.Message)
		sb.WriteString(diff)
		sb.WriteString("\n")
	}

	if unfixed > 0 {
		fmt.Fprintf(&sb, "# %d violation(s) without a suggested fix:\n", unfixed)
		for _, v := range rep.Violations {
			if v.Fix == "" || v.Unit == nil || v.Matched == "" {
				fmt.Fprintf(&sb, "#   %s line %d: %s\n", v.RuleID, v.StartLine, v.Message)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(summaryLine(rep))
	sb.WriteString("\n")
	return sb.String()
}
