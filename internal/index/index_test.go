package index

import (
	"database/sql"
	"testing"
	"time"

	"github.com/worklens/git-worklens/internal/classify"
	"github.com/worklens/git-worklens/internal/patch"
	"github.com/worklens/git-worklens/internal/project"
	"github.com/worklens/git-worklens/internal/report"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	paths := project.NewPaths(t.TempDir())
	db, err := Open(paths)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResults() []report.LineResult {
	delta := 5.0
	return []report.LineResult{
		{
			Line:   patch.AddedLine{Content: "x := 1", Number: 3, HunkType: patch.HunkAdd},
			Result: classify.Result{Category: classify.NewWork},
		},
		{
			Line:   patch.AddedLine{Content: "y := 2", Number: 9, HunkType: patch.HunkReplace, RemovedLines: []string{"y := 0", "y++"}},
			Result: classify.Result{Category: classify.Churn, PreviousAuthor: "alice", PreviousCommit: "c1", DeltaDays: &delta},
		},
	}
}

func TestSaveAndQuery(t *testing.T) {
	db := openTestDB(t)

	run := NewRun("range", "abc", "def", "alice", 21)
	if run.ID == "" || run.Ts == "" {
		t.Fatalf("NewRun left fields empty: %+v", run)
	}
	if err := SaveRun(db, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := SaveResults(db, run.ID, "a.go", sampleResults()); err != nil {
		t.Fatalf("SaveResults: %v", err)
	}

	rows, err := db.Query("SELECT " + SelectColumns + " FROM results ORDER BY line")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	var results []*ResultRow
	for rows.Next() {
		r, err := ScanRow(rows)
		if err != nil {
			t.Fatalf("ScanRow: %v", err)
		}
		results = append(results, r)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(results))
	}

	first := results[0]
	if first.File != "a.go" || first.Line != 3 || first.Category != "New Work" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.DeltaDays != nil {
		t.Errorf("new work row should have no delta, got %v", *first.DeltaDays)
	}

	second := results[1]
	if second.Category != "Churn" || second.PrevAuthor != "alice" || second.PrevCommit != "c1" {
		t.Errorf("unexpected second row: %+v", second)
	}
	if second.Removed != "y := 0\ny++" {
		t.Errorf("expected joined removed lines, got %q", second.Removed)
	}
	if second.DeltaDays == nil || *second.DeltaDays != 5.0 {
		t.Errorf("expected delta 5.0, got %v", second.DeltaDays)
	}
}

func TestLatestRunID(t *testing.T) {
	db := openTestDB(t)

	t.Run("empty_db", func(t *testing.T) {
		id, err := LatestRunID(db)
		if err != nil {
			t.Fatalf("LatestRunID: %v", err)
		}
		if id != "" {
			t.Errorf("expected empty id, got %q", id)
		}
	})

	t.Run("returns_most_recent", func(t *testing.T) {
		older := NewRun("range", "a", "b", "alice", 21)
		older.Ts = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
		newer := NewRun("pr", "c", "d", "bob", 21)

		if err := SaveRun(db, older); err != nil {
			t.Fatal(err)
		}
		if err := SaveRun(db, newer); err != nil {
			t.Fatal(err)
		}

		id, err := LatestRunID(db)
		if err != nil {
			t.Fatalf("LatestRunID: %v", err)
		}
		if id != newer.ID {
			t.Errorf("expected %s, got %s", newer.ID, id)
		}
	})
}

func TestGetRun(t *testing.T) {
	db := openTestDB(t)

	run := NewRun("pr", "base", "head", "alice", 30)
	if err := SaveRun(db, run); err != nil {
		t.Fatal(err)
	}

	got, err := GetRun(db, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Source != "pr" || got.Author != "alice" || got.ThresholdDays != 30 {
		t.Errorf("unexpected run: %+v", got)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	paths := project.NewPaths(t.TempDir())

	db, err := Open(paths)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	db.Close()

	db, err = Open(paths)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	db.Close()
}
