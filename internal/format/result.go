package format

import (
	"fmt"
	"strings"

	"github.com/worklens/git-worklens/internal/index"
)

// FormatResult renders one classified line for terminal output.
//
// Default form:
//
//	src/parser.go:42   Churn        alice (c1a2b3c) 5.2d ago
//	    + added content
//
// Verbose adds the hunk type and the full previous commit SHA.
func FormatResult(r *index.ResultRow, verbose bool) string {
	var b strings.Builder

	loc := fmt.Sprintf("%s:%d", r.File, r.Line)
	fmt.Fprintf(&b, "%s%-36s%s %s%-12s%s",
		Bold, loc, Reset, CategoryColor(r.Category), r.Category, Reset)

	if evidence := formatEvidence(r, verbose); evidence != "" {
		fmt.Fprintf(&b, " %s", evidence)
	}
	b.WriteString("\n")

	content := strings.TrimRight(r.Content, "\n")
	fmt.Fprintf(&b, "    %s+ %s%s\n", Dim, content, Reset)

	if verbose {
		fmt.Fprintf(&b, "    %shunk: %s%s\n", Dim, r.HunkType, Reset)
	}

	return b.String()
}

// formatEvidence renders the blame evidence trail, or "" when the line
// classified without history.
func formatEvidence(r *index.ResultRow, verbose bool) string {
	if r.PrevAuthor == "" && r.PrevCommit == "" {
		return ""
	}

	author := r.PrevAuthor
	if author == "" {
		author = "?"
	}
	commit := r.PrevCommit
	if !verbose {
		commit = shortSHA(commit)
	}

	s := author
	if commit != "" {
		s += fmt.Sprintf(" (%s)", commit)
	}
	if r.DeltaDays != nil {
		s += fmt.Sprintf(" %.1fd ago", *r.DeltaDays)
	}
	return Dim + s + Reset
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
