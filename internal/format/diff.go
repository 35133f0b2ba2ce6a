package format

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// FormatSideBySideDiff renders the removed and added content of a hunk
// side by side with box-drawing borders. Used by --explain to show what
// a replace hunk actually replaced.
func FormatSideBySideDiff(removedText, addedText string) string {
	termWidth := TermWidth()
	colW := (termWidth - 7) / 2
	if colW < 20 {
		colW = 20
	}

	removedLines := expandTabs(removedText)
	addedLines := expandTabs(addedText)

	if len(removedLines) == 0 {
		removedLines = []string{""}
	}
	if len(addedLines) == 0 {
		addedLines = []string{""}
	}

	// Compute line-level diff using diffmatchpatch on joined text
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(strings.Join(removedLines, "\n"), strings.Join(addedLines, "\n"), true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	type diffRow struct {
		tag   string // "equal", "delete", "insert", "replace"
		left  *string
		right *string
	}

	// Convert character diffs to line-level rows
	var rows []diffRow
	var leftBuf, rightBuf []string

	flushBuf := func() {
		maxLen := len(leftBuf)
		if len(rightBuf) > maxLen {
			maxLen = len(rightBuf)
		}
		for i := 0; i < maxLen; i++ {
			var l, r *string
			tag := "replace"
			if i < len(leftBuf) {
				l = &leftBuf[i]
			}
			if i < len(rightBuf) {
				r = &rightBuf[i]
			}
			if l == nil {
				tag = "insert"
			} else if r == nil {
				tag = "delete"
			}
			rows = append(rows, diffRow{tag: tag, left: l, right: r})
		}
		leftBuf = nil
		rightBuf = nil
	}

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flushBuf()
			for _, l := range lines {
				lCopy := l
				rows = append(rows, diffRow{tag: "equal", left: &lCopy, right: &lCopy})
			}
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				lCopy := l
				leftBuf = append(leftBuf, lCopy)
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				lCopy := l
				rightBuf = append(rightBuf, lCopy)
			}
		}
	}
	flushBuf()

	totalRows := len(rows)
	maxDisplay := 40
	truncated := totalRows > maxDisplay
	if truncated {
		rows = rows[:maxDisplay]
	}

	var output []string

	// Top border with labels
	lblL := "─ Removed "
	lblR := "─ Added "
	output = append(output, fmt.Sprintf("┌%s%s┬%s%s┐",
		lblL, strings.Repeat("─", colW+2-runeLen(lblL)),
		lblR, strings.Repeat("─", colW+2-runeLen(lblR))))

	for _, r := range rows {
		left := padOrTrunc("", colW)
		right := padOrTrunc("", colW)
		if r.left != nil {
			left = padOrTrunc(*r.left, colW)
		}
		if r.right != nil {
			right = padOrTrunc(*r.right, colW)
		}

		switch r.tag {
		case "equal":
			output = append(output, fmt.Sprintf("│ %s%s%s │ %s%s%s │",
				Dim, left, Reset, Dim, right, Reset))
		case "delete":
			output = append(output, fmt.Sprintf("│ %s%s%s │ %s │",
				Red, left, Reset, strings.Repeat(" ", colW)))
		case "insert":
			output = append(output, fmt.Sprintf("│ %s │ %s%s%s │",
				strings.Repeat(" ", colW), Green, right, Reset))
		case "replace":
			l := strings.Repeat(" ", colW)
			r2 := strings.Repeat(" ", colW)
			if r.left != nil {
				l = Red + left + Reset
			}
			if r.right != nil {
				r2 = Green + right + Reset
			}
			output = append(output, fmt.Sprintf("│ %s │ %s │", l, r2))
		}
	}

	// Bottom border
	output = append(output, fmt.Sprintf("└%s┴%s┘",
		strings.Repeat("─", colW+2), strings.Repeat("─", colW+2)))

	if truncated {
		output = append(output, fmt.Sprintf("  %s… %d more lines not shown%s",
			Dim, totalRows-maxDisplay, Reset))
	}

	return strings.Join(output, "\n")
}

func expandTabs(text string) []string {
	if text == "" {
		return nil
	}
	expanded := strings.ReplaceAll(text, "\t", "    ")
	return strings.Split(expanded, "\n")
}

func padOrTrunc(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}

func runeLen(s string) int {
	return len([]rune(s))
}
