package patch

import (
	"regexp"
	"strconv"
	"strings"
)

// HunkType describes the change shape of the hunk an added line belongs to.
type HunkType string

const (
	HunkAdd     HunkType = "add"
	HunkDelete  HunkType = "delete"
	HunkReplace HunkType = "replace"
)

// AddedLine is a single line added by a patch, tagged with the change
// shape of the hunk that introduced it.
type AddedLine struct {
	Content      string
	Number       int // 1-based position in the new file
	HunkType     HunkType
	RemovedLines []string // raw removed lines of the hunk; non-empty only for HunkReplace
}

var (
	// Matches: @@ -42,10 +42,15 @@ optional section heading
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
	blankRe      = regexp.MustCompile(`^\s*$`)
)

// hunkHeader is the parsed form of a recognized @@ line.
type hunkHeader struct {
	oldStart int
	newStart int
}

// parseHunkHeader parses an @@ line into its starting positions.
// ok=false means the header did not match the unified-diff pattern;
// callers reset both counters to zero and keep going, which degrades
// downstream line numbers instead of failing the whole file.
func parseHunkHeader(line string) (h hunkHeader, ok bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return hunkHeader{}, false
	}
	oldStart, _ := strconv.Atoi(m[1])
	newStart, _ := strconv.Atoi(m[3])
	return hunkHeader{oldStart: oldStart, newStart: newStart}, true
}

type addedEntry struct {
	content string
	number  int
}

// hunkBuffer accumulates one hunk's removed and added lines until a
// context line, the next hunk header, or end of input closes it.
type hunkBuffer struct {
	removed []string
	added   []addedEntry
}

func (h *hunkBuffer) empty() bool {
	return len(h.removed) == 0 && len(h.added) == 0
}

// finalize determines the hunk's change shape and emits one AddedLine
// per raw added line, then resets the buffer.
//
// Blank lines are excluded when deciding the shape so a whitespace-only
// deletion cannot turn genuinely new code into a replace, but every
// added line is still emitted so added-line totals stay accurate.
func (h *hunkBuffer) finalize() []AddedLine {
	if h.empty() {
		return nil
	}

	removedNonBlank := 0
	for _, r := range h.removed {
		if !blankRe.MatchString(r) {
			removedNonBlank++
		}
	}
	addedNonBlank := 0
	for _, a := range h.added {
		if !blankRe.MatchString(a.content) {
			addedNonBlank++
		}
	}

	var typ HunkType
	switch {
	case removedNonBlank == 0 && addedNonBlank > 0:
		typ = HunkAdd
	case removedNonBlank > 0 && addedNonBlank == 0:
		typ = HunkDelete
	case removedNonBlank > 0 && addedNonBlank > 0:
		typ = HunkReplace
	case len(h.added) > 0:
		// Only blank lines on both sides.
		typ = HunkAdd
	default:
		typ = HunkDelete
	}

	var removed []string
	if typ == HunkReplace {
		removed = append([]string(nil), h.removed...)
	}

	lines := make([]AddedLine, 0, len(h.added))
	for _, a := range h.added {
		lines = append(lines, AddedLine{
			Content:      a.content,
			Number:       a.number,
			HunkType:     typ,
			RemovedLines: removed,
		})
	}

	h.removed = nil
	h.added = nil
	return lines
}

// ParseFilePatch parses the unified-diff text of a single file into the
// ordered list of its added lines. It never fails: malformed hunk
// headers reset line tracking to zero and parsing continues.
func ParseFilePatch(patch string) []AddedLine {
	var (
		out     []AddedLine
		oldLine int
		newLine int
		hunk    hunkBuffer
	)

	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			out = append(out, hunk.finalize()...)
			if h, ok := parseHunkHeader(line); ok {
				oldLine = h.oldStart
				newLine = h.newStart
			} else {
				oldLine = 0
				newLine = 0
			}
		case strings.HasPrefix(line, "+"):
			hunk.added = append(hunk.added, addedEntry{content: line[1:], number: newLine})
			newLine++
		case strings.HasPrefix(line, "-"):
			hunk.removed = append(hunk.removed, line[1:])
			oldLine++
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file" and friends: no-op.
		default:
			// Context line closes the current hunk.
			out = append(out, hunk.finalize()...)
			oldLine++
			newLine++
		}
	}

	return append(out, hunk.finalize()...)
}
