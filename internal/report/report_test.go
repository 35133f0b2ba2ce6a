package report

import (
	"testing"
	"time"

	"github.com/worklens/git-worklens/internal/classify"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAnalyzeFile(t *testing.T) {
	t.Run("addition_and_replace", func(t *testing.T) {
		diff := "@@ -1,2 +1,3 @@\n-old\n+new\n ctx\n+extra\n"
		ranges := []classify.BlameRange{{
			StartingLine:  1,
			EndingLine:    5,
			CommitID:      "c1",
			Author:        "alice",
			CommittedDate: classify.ValidCommitTime(now.Add(-48 * time.Hour)),
		}}

		results := AnalyzeFile(diff, ranges, "alice", now, classify.DefaultThresholdDays)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Result.Category != classify.Churn {
			t.Errorf("replace of own recent code should be Churn, got %s", results[0].Result.Category)
		}
		if results[1].Result.Category != classify.NewWork {
			t.Errorf("pure addition should be NewWork, got %s", results[1].Result.Category)
		}
	})

	t.Run("empty_patch", func(t *testing.T) {
		if results := AnalyzeFile("", nil, "alice", now, 21); len(results) != 0 {
			t.Fatalf("expected no results, got %d", len(results))
		}
	})
}

func TestSummarize(t *testing.T) {
	byFile := map[string][]LineResult{
		"b.go": AnalyzeFile("@@ -1,0 +1,2 @@\n+x\n+y\n", nil, "alice", now, 21),
		"a.go": AnalyzeFile("@@ -3,1 +3,1 @@\n-p\n+q\n", []classify.BlameRange{{
			StartingLine:  1,
			EndingLine:    9,
			CommitID:      "c9",
			Author:        "bob",
			CommittedDate: classify.ValidCommitTime(now.Add(-24 * time.Hour)),
		}}, "alice", now, 21),
	}

	s := Summarize(byFile)

	if s.TotalAdded != 3 {
		t.Errorf("expected 3 added lines, got %d", s.TotalAdded)
	}
	if s.Counts[classify.NewWork] != 2 || s.Counts[classify.HelpOthers] != 1 {
		t.Errorf("unexpected counts: %v", s.Counts)
	}
	if s.Helped["bob"] != 1 {
		t.Errorf("expected bob helped once, got %v", s.Helped)
	}
	if len(s.Files) != 2 || s.Files[0].File != "a.go" || s.Files[1].File != "b.go" {
		t.Errorf("files should be sorted by path: %+v", s.Files)
	}
	if s.Files[1].Lines[classify.NewWork].String() != "1-2" {
		t.Errorf("expected compact lines 1-2, got %q", s.Files[1].Lines[classify.NewWork].String())
	}
	if pct := s.Percent(classify.NewWork); pct < 66 || pct > 67 {
		t.Errorf("expected about 66.7%%, got %f", pct)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalAdded != 0 || s.Percent(classify.Churn) != 0 {
		t.Errorf("empty summary should be all zeros: %+v", s)
	}
}
