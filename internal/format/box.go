package format

import "strings"

// FormatBorderedText renders text inside a box sized to the terminal,
// wrapping long lines at word boundaries.
func FormatBorderedText(text, title string) string {
	innerW := TermWidth() - 4
	switch {
	case innerW < 30:
		innerW = 30
	case innerW > 76:
		innerW = 76
	}

	var rows []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			rows = append(rows, "")
			continue
		}
		rows = append(rows, wordWrap(para, innerW)...)
	}

	top := "┌" + strings.Repeat("─", innerW+2) + "┐"
	if title != "" {
		label := "─ " + title + " "
		top = "┌" + label + strings.Repeat("─", innerW+2-runeLen(label)) + "┐"
	}

	out := []string{top}
	for _, row := range rows {
		out = append(out, "│ "+padOrTrunc(row, innerW)+" │")
	}
	out = append(out, "└"+strings.Repeat("─", innerW+2)+"┘")
	return strings.Join(out, "\n")
}

// wordWrap breaks text at word boundaries. Words longer than width get
// a line of their own.
func wordWrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if runeLen(line)+runeLen(w)+1 > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
