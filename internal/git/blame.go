package git

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/worklens/git-worklens/internal/classify"
)

// BlameRanges runs git blame against a file at the given ref and folds
// the per-line attribution into inclusive line ranges, ordered by
// starting line. Blame the PR base (or the old side of a commit range)
// so the reviewed change's own commits never appear in the result.
func BlameRanges(root, ref, file string) ([]classify.BlameRange, error) {
	cmd := exec.Command("git", "blame", "--porcelain", ref, "--", file)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git blame %s at %s: %w", file, ref, err)
	}
	return parsePorcelainRanges(out), nil
}

// commitMeta holds per-commit header data from porcelain output.
type commitMeta struct {
	author     string
	authorTime string
}

// parsePorcelainRanges parses git blame --porcelain output.
//
// Porcelain format:
//
//	<40-byte SHA> <orig-line> <final-line> [<num-lines>]
//	header lines (author, author-time, ...) on the SHA's first occurrence
//	\t<actual line content>
//
// Each line of the file gets its own SHA line; commit headers appear
// only the first time a SHA shows up, so metadata is cached per SHA.
func parsePorcelainRanges(out []byte) []classify.BlameRange {
	var (
		meta       = make(map[string]*commitMeta)
		lineSHA    = make(map[int]string)
		currentSHA string
	)

	for _, line := range strings.Split(string(out), "\n") {
		if line == "" || strings.HasPrefix(line, "\t") {
			continue
		}

		if strings.HasPrefix(line, "author ") {
			if m := meta[currentSHA]; m != nil && m.author == "" {
				m.author = line[len("author "):]
			}
			continue
		}
		if strings.HasPrefix(line, "author-time ") {
			if m := meta[currentSHA]; m != nil && m.authorTime == "" {
				m.authorTime = line[len("author-time "):]
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) >= 3 && len(fields[0]) == 40 {
			var origLine, finalLine int
			_, _ = fmt.Sscanf(fields[1], "%d", &origLine)
			_, _ = fmt.Sscanf(fields[2], "%d", &finalLine)
			if finalLine > 0 {
				currentSHA = fields[0]
				lineSHA[finalLine] = currentSHA
				if meta[currentSHA] == nil {
					meta[currentSHA] = &commitMeta{}
				}
			}
		}
	}

	return foldRanges(lineSHA, meta)
}

// foldRanges merges consecutive lines attributed to the same commit
// into inclusive ranges.
func foldRanges(lineSHA map[int]string, meta map[string]*commitMeta) []classify.BlameRange {
	if len(lineSHA) == 0 {
		return nil
	}

	lines := make([]int, 0, len(lineSHA))
	for n := range lineSHA {
		lines = append(lines, n)
	}
	sort.Ints(lines)

	var ranges []classify.BlameRange
	start := lines[0]
	prev := lines[0]
	sha := lineSHA[start]

	emit := func(start, end int, sha string) {
		r := classify.BlameRange{
			StartingLine:  start,
			EndingLine:    end,
			CommitID:      sha,
			CommittedDate: classify.MissingCommitTime(),
		}
		if m := meta[sha]; m != nil {
			r.Author = m.author
			r.CommittedDate = classify.ParseCommitTime(m.authorTime)
		}
		ranges = append(ranges, r)
	}

	for _, n := range lines[1:] {
		if n == prev+1 && lineSHA[n] == sha {
			prev = n
			continue
		}
		emit(start, prev, sha)
		start, prev, sha = n, n, lineSHA[n]
	}
	emit(start, prev, sha)

	return ranges
}
