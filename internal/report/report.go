package report

import (
	"sort"
	"time"

	"github.com/worklens/git-worklens/internal/classify"
	"github.com/worklens/git-worklens/internal/lineset"
	"github.com/worklens/git-worklens/internal/patch"
)

// LineResult pairs one added line with its classification.
type LineResult struct {
	Line   patch.AddedLine
	Result classify.Result
}

// AnalyzeFile parses one file's patch text and classifies every added
// line against the file's blame ranges. Pure function: safe to call
// for many files in parallel.
func AnalyzeFile(patchText string, ranges []classify.BlameRange, author string, now time.Time, thresholdDays float64) []LineResult {
	added := patch.ParseFilePatch(patchText)
	results := make([]LineResult, 0, len(added))
	for _, line := range added {
		results = append(results, LineResult{
			Line:   line,
			Result: classify.Classify(line, ranges, author, now, thresholdDays),
		})
	}
	return results
}

// Categories lists the work categories in display order.
var Categories = []classify.Category{
	classify.NewWork,
	classify.Churn,
	classify.Rework,
	classify.HelpOthers,
}

// FileSummary aggregates one file's classified lines per category.
type FileSummary struct {
	File  string                                `json:"file"`
	Lines map[classify.Category]lineset.LineSet `json:"lines"`
}

// Count returns the number of lines in a category for this file.
func (fs FileSummary) Count(c classify.Category) int {
	return fs.Lines[c].Len()
}

// Summary aggregates a whole analysis run.
type Summary struct {
	TotalAdded int
	Counts     map[classify.Category]int
	Helped     map[string]int // previous authors whose code was modified
	Files      []FileSummary
}

// Summarize folds per-file results into a run summary, files ordered
// by path.
func Summarize(byFile map[string][]LineResult) *Summary {
	s := &Summary{
		Counts: make(map[classify.Category]int),
		Helped: make(map[string]int),
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		fs := FileSummary{
			File:  f,
			Lines: make(map[classify.Category]lineset.LineSet),
		}
		for _, lr := range byFile[f] {
			cat := lr.Result.Category
			s.TotalAdded++
			s.Counts[cat]++
			fs.Lines[cat] = fs.Lines[cat].Add(lr.Line.Number)
			if cat == classify.HelpOthers && lr.Result.PreviousAuthor != "" {
				s.Helped[lr.Result.PreviousAuthor]++
			}
		}
		s.Files = append(s.Files, fs)
	}

	return s
}

// Percent returns a category's share of all added lines, 0-100.
func (s *Summary) Percent(c classify.Category) float64 {
	if s.TotalAdded == 0 {
		return 0
	}
	return float64(s.Counts[c]) * 100 / float64(s.TotalAdded)
}
