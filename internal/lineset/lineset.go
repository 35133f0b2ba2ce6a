package lineset

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// LineSet is a set of 1-based line numbers, stored as a sorted,
// deduplicated slice. It serializes to compact notation like "5,7-8,12".
type LineSet struct {
	lines []int
}

// New creates a LineSet from individual line numbers.
func New(lines ...int) LineSet {
	return LineSet{lines: normalize(slices.Clone(lines))}
}

// FromString parses compact notation like "5", "5-7", or "5,7-8,12".
func FromString(s string) (LineSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LineSet{}, nil
	}

	var lines []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return LineSet{}, fmt.Errorf("invalid line number %q: %w", lo, err)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return LineSet{}, fmt.Errorf("invalid range end %q: %w", hi, err)
			}
			if end < start {
				return LineSet{}, fmt.Errorf("invalid range %d-%d", start, end)
			}
		}
		for n := start; n <= end; n++ {
			lines = append(lines, n)
		}
	}

	return LineSet{lines: normalize(lines)}, nil
}

// String returns the compact notation: "5,7-8,12".
func (ls LineSet) String() string {
	var b strings.Builder
	for i := 0; i < len(ls.lines); {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		start := ls.lines[i]
		j := i + 1
		for j < len(ls.lines) && ls.lines[j] == ls.lines[j-1]+1 {
			j++
		}
		b.WriteString(strconv.Itoa(start))
		if end := ls.lines[j-1]; end > start {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(end))
		}
		i = j
	}
	return b.String()
}

// Add returns a new set with the given line included.
func (ls LineSet) Add(line int) LineSet {
	if ls.Contains(line) {
		return ls
	}
	return LineSet{lines: normalize(append(slices.Clone(ls.lines), line))}
}

// IsEmpty reports whether the set contains no lines.
func (ls LineSet) IsEmpty() bool {
	return len(ls.lines) == 0
}

// Lines returns the sorted line numbers.
func (ls LineSet) Lines() []int {
	return ls.lines
}

// Len returns the number of lines in the set.
func (ls LineSet) Len() int {
	return len(ls.lines)
}

// Contains reports whether the given line number is in the set.
func (ls LineSet) Contains(line int) bool {
	_, found := slices.BinarySearch(ls.lines, line)
	return found
}

// MarshalJSON serializes as a JSON string in compact notation.
func (ls LineSet) MarshalJSON() ([]byte, error) {
	if ls.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(ls.String())
}

// UnmarshalJSON parses the compact string notation.
func (ls *LineSet) UnmarshalJSON(data []byte) error {
	if s := strings.TrimSpace(string(data)); s == "null" || s == "" {
		ls.lines = nil
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := FromString(str)
	if err != nil {
		return err
	}
	ls.lines = parsed.lines
	return nil
}

func normalize(nums []int) []int {
	if len(nums) == 0 {
		return nil
	}
	slices.Sort(nums)
	return slices.Compact(nums)
}
