package index

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/worklens/git-worklens/internal/project"
	"github.com/worklens/git-worklens/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	base_ref TEXT,
	head_ref TEXT,
	author TEXT,
	ts TEXT NOT NULL,
	threshold_days REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id),
	file TEXT NOT NULL,
	line INTEGER NOT NULL,
	content TEXT,
	removed TEXT,
	hunk_type TEXT NOT NULL,
	category TEXT NOT NULL,
	prev_author TEXT,
	prev_commit TEXT,
	delta_days REAL
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
CREATE INDEX IF NOT EXISTS idx_results_file ON results(file);
CREATE INDEX IF NOT EXISTS idx_results_category ON results(category);
CREATE INDEX IF NOT EXISTS idx_results_prev_author ON results(prev_author);
`

// Open opens the results database, creating the schema if needed.
func Open(paths project.Paths) (*sql.DB, error) {
	if err := os.MkdirAll(paths.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", paths.ResultsDB)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// Run describes one analysis run.
type Run struct {
	ID            string  `json:"id"`
	Source        string  `json:"source"` // "pr" or "range"
	BaseRef       string  `json:"base_ref"`
	HeadRef       string  `json:"head_ref"`
	Author        string  `json:"author"`
	Ts            string  `json:"ts"`
	ThresholdDays float64 `json:"threshold_days"`
}

// NewRun creates a Run with a fresh ID and the current timestamp.
func NewRun(source, baseRef, headRef, author string, thresholdDays float64) Run {
	return Run{
		ID:            uuid.NewString(),
		Source:        source,
		BaseRef:       baseRef,
		HeadRef:       headRef,
		Author:        author,
		Ts:            time.Now().UTC().Format(time.RFC3339),
		ThresholdDays: thresholdDays,
	}
}

// SaveRun inserts the run row.
func SaveRun(db *sql.DB, run Run) error {
	_, err := db.Exec(
		"INSERT INTO runs (id, source, base_ref, head_ref, author, ts, threshold_days) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Source, run.BaseRef, run.HeadRef, run.Author, run.Ts, run.ThresholdDays,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// SaveResults inserts one file's classified lines in a transaction.
func SaveResults(db *sql.DB, runID, file string, results []report.LineResult) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO results (run_id, file, line, content, removed, hunk_type, category, prev_author, prev_commit, delta_days) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, lr := range results {
		_, err := stmt.Exec(
			runID, file, lr.Line.Number, lr.Line.Content,
			strings.Join(lr.Line.RemovedLines, "\n"), string(lr.Line.HunkType),
			string(lr.Result.Category), lr.Result.PreviousAuthor, lr.Result.PreviousCommit,
			lr.Result.DeltaDays,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert result %s:%d: %w", file, lr.Line.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ResultRow mirrors a row from the results table.
type ResultRow struct {
	ID         int      `json:"id"`
	RunID      string   `json:"run_id"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Content    string   `json:"content"`
	Removed    string   `json:"removed,omitempty"` // newline-joined removed lines of a replace hunk
	HunkType   string   `json:"hunk_type"`
	Category   string   `json:"category"`
	PrevAuthor string   `json:"prev_author,omitempty"`
	PrevCommit string   `json:"prev_commit,omitempty"`
	DeltaDays  *float64 `json:"delta_days,omitempty"`
}

// SelectColumns is the column list ScanRow expects, for callers
// building their own queries.
const SelectColumns = "id, run_id, file, line, content, removed, hunk_type, category, prev_author, prev_commit, delta_days"

// ScanRow scans a *sql.Rows positioned on a results row.
func ScanRow(rows *sql.Rows) (*ResultRow, error) {
	r := &ResultRow{}
	err := rows.Scan(
		&r.ID, &r.RunID, &r.File, &r.Line, &r.Content, &r.Removed,
		&r.HunkType, &r.Category, &r.PrevAuthor, &r.PrevCommit, &r.DeltaDays,
	)
	return r, err
}

// LatestRunID returns the most recent run's ID, or "" when the database
// holds no runs yet.
func LatestRunID(db *sql.DB) (string, error) {
	var id string
	err := db.QueryRow("SELECT id FROM runs ORDER BY ts DESC, rowid DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return id, nil
}

// GetRun loads one run by ID.
func GetRun(db *sql.DB, id string) (*Run, error) {
	r := &Run{}
	err := db.QueryRow(
		"SELECT id, source, base_ref, head_ref, author, ts, threshold_days FROM runs WHERE id = ?", id,
	).Scan(&r.ID, &r.Source, &r.BaseRef, &r.HeadRef, &r.Author, &r.Ts, &r.ThresholdDays)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}
