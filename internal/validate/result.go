package validate

import (
	"fmt"
	"strings"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// Issue codes reported by the engine.
const (
	CodeFieldRange   = "FIELD_RANGE"
	CodeResetWidth   = "RESET_WIDTH"
	CodeFieldOverlap = "FIELD_OVERLAP"
)

// Issue is a single validation finding. Context names the offending
// entity path ("block.reg.field" or "block.reg").
type Issue struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Context  string `json:"context"`
	Message  string `json:"message"`
}

// Result holds the ordered issue list from one validation run.
// Issues are grouped by block name, then register name, then field lsb.
type Result struct {
	Issues []Issue `json:"issues"`
}

// ErrorCount returns the number of ERROR-severity issues. Callers use it
// to decide exit status.
func (r *Result) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if strings.EqualFold(issue.Severity, ir.SeverityError) {
			n++
		}
	}
	return n
}

// Summary returns the one-line total/error count.
func (r *Result) Summary() string {
	return fmt.Sprintf("Validation: %d issues (%d errors)", len(r.Issues), r.ErrorCount())
}

// Markdown renders the full report: header, summary, and an issue table,
// or an explicit no-issues marker when the run was clean.
func (r *Result) Markdown() string {
	var b strings.Builder
	b.WriteString("# Register Spec Validation Report\n\n")
	b.WriteString(r.Summary())
	b.WriteString("\n\n")

	if len(r.Issues) == 0 {
		b.WriteString("✅ No issues found.\n")
		return b.String()
	}

	b.WriteString("| Severity | Code | Context | Message |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, issue := range r.Issues {
		ctx := strings.ReplaceAll(issue.Context, "\n", " ")
		msg := strings.ReplaceAll(issue.Message, "\n", " ")
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", issue.Severity, issue.Code, ctx, msg)
	}
	return b.String()
}
