package classify

import (
	"strconv"
	"strings"
	"time"

	"github.com/worklens/git-worklens/internal/patch"
)

// Category is the work category assigned to an added line.
type Category string

const (
	NewWork    Category = "New Work"
	Churn      Category = "Churn"
	Rework     Category = "Rework"
	HelpOthers Category = "Help Others"
)

// DefaultThresholdDays separates Churn from Rework for same-author edits.
const DefaultThresholdDays = 21.0

// CommitTime is a three-state timestamp. Blame data can omit the commit
// date entirely, carry one that does not parse, or carry a valid one.
// Invalid behaves like Missing during classification: a line whose
// history has an unreadable date is under-attributed to NewWork rather
// than routed to Rework by a failed comparison.
type CommitTime struct {
	valid   bool
	invalid bool
	t       time.Time
}

// MissingCommitTime is the absent timestamp.
func MissingCommitTime() CommitTime { return CommitTime{} }

// InvalidCommitTime marks a present-but-unparseable timestamp.
func InvalidCommitTime() CommitTime { return CommitTime{invalid: true} }

// ValidCommitTime wraps a parsed timestamp.
func ValidCommitTime(t time.Time) CommitTime { return CommitTime{valid: true, t: t} }

// Time returns the parsed timestamp; ok is false for Missing and Invalid.
func (c CommitTime) Time() (t time.Time, ok bool) { return c.t, c.valid }

// IsInvalid reports whether a timestamp was present but unparseable.
func (c CommitTime) IsInvalid() bool { return c.invalid }

// commitTimeLayouts are tried in order when parsing blame timestamps.
var commitTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCommitTime converts a blame timestamp string into a CommitTime.
// Empty or whitespace-only input is Missing; unix epoch seconds and the
// common ISO layouts parse to Valid; anything else is Invalid.
func ParseCommitTime(s string) CommitTime {
	s = strings.TrimSpace(s)
	if s == "" {
		return MissingCommitTime()
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ValidCommitTime(time.Unix(epoch, 0).UTC())
	}
	for _, layout := range commitTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ValidCommitTime(t)
		}
	}
	return InvalidCommitTime()
}

// BlameRange attributes an inclusive span of historical file lines to a
// commit. Any field except the bounds may be absent.
type BlameRange struct {
	StartingLine  int
	EndingLine    int
	CommitID      string
	Author        string
	CommittedDate CommitTime
}

// Result is the classification of one added line with its evidence.
// PreviousAuthor, PreviousCommit, and DeltaDays are present only when
// blame history contributed to the decision.
type Result struct {
	Category       Category
	PreviousAuthor string
	PreviousCommit string
	DeltaDays      *float64
}

// Classify maps one added line, its file's blame ranges, and the change
// under review (author identity plus timestamp) to a work category.
//
// Pure and total: ambiguous or missing history resolves to NewWork
// rather than mis-attributing churn to the wrong person, and no input
// can make it fail.
func Classify(line patch.AddedLine, ranges []BlameRange, author string, now time.Time, thresholdDays float64) Result {
	// Add-only hunks are new code by definition; blame is ignored even
	// if supplied. Delete-only is a safety fallback: the parser emits
	// added lines for such hunks only when every added line is blank.
	if line.HunkType != patch.HunkReplace {
		return Result{Category: NewWork}
	}

	match, ok := firstMatch(ranges, line.Number)
	if !ok {
		return Result{Category: NewWork}
	}

	res := Result{
		Category:       NewWork,
		PreviousAuthor: match.Author,
		PreviousCommit: match.CommitID,
	}

	prev, ok := match.CommittedDate.Time()
	if !ok {
		return res
	}

	delta := now.Sub(prev).Hours() / 24
	res.DeltaDays = &delta

	// Exact, case-sensitive author comparison; no trimming.
	if match.Author != author {
		res.Category = HelpOthers
		return res
	}
	if delta <= thresholdDays {
		res.Category = Churn
	} else {
		res.Category = Rework
	}
	return res
}

// firstMatch returns the first range covering line n, in supplied order.
// Ranges are expected not to overlap; when they do, the earliest entry
// in the slice wins.
func firstMatch(ranges []BlameRange, n int) (BlameRange, bool) {
	for _, r := range ranges {
		if r.StartingLine <= n && n <= r.EndingLine {
			return r, true
		}
	}
	return BlameRange{}, false
}
