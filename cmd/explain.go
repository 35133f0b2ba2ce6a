package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/worklens/git-worklens/internal/format"
	"github.com/worklens/git-worklens/internal/index"
)

// cmdExplain shows what a replaced line replaced: the removed side of
// its hunk next to the added side, plus the classification evidence.
func cmdExplain(db *sql.DB, runID, file, lineStr string) {
	if file == "" || lineStr == "" {
		fmt.Fprintln(os.Stderr, "Usage: git-worklens --explain <file> -L <line>")
		os.Exit(1)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -L expects a line number, got %q\n", lineStr)
		os.Exit(1)
	}

	query := "SELECT " + index.SelectColumns + " FROM results WHERE run_id = ? AND file = ? AND line = ?"
	rows, err := queryRows(db, query, runID, file, line)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Printf("No classified line at %s:%d in run %s.\n", file, line, runID)
		return
	}

	r := rows[0]
	fmt.Print(format.FormatResult(r, true))

	if r.HunkType != "replace" {
		fmt.Printf("\n  %s hunk: this line replaced nothing.\n", r.HunkType)
		return
	}

	fmt.Println()
	fmt.Println(format.FormatSideBySideDiff(r.Removed, r.Content))
}
