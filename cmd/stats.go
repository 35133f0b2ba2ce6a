package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/worklens/git-worklens/internal/format"
	"github.com/worklens/git-worklens/internal/index"
)

func cmdStats(db *sql.DB, runID string, jsonOutput bool) {
	run, err := index.GetRun(db, runID)
	if err != nil {
		fmt.Println("No such run:", runID)
		return
	}

	var total int
	db.QueryRow("SELECT COUNT(*) FROM results WHERE run_id = ?", runID).Scan(&total)

	counts := map[string]int{}
	rows, _ := db.Query("SELECT category, COUNT(*) FROM results WHERE run_id = ? GROUP BY category", runID)
	if rows != nil {
		for rows.Next() {
			var cat string
			var n int
			rows.Scan(&cat, &n)
			counts[cat] = n
		}
		rows.Close()
	}

	type authorCount struct {
		Author string
		Count  int
	}
	var helped []authorCount
	rows2, _ := db.Query(
		"SELECT prev_author, COUNT(*) as cnt FROM results WHERE run_id = ? AND category = 'Help Others' AND prev_author != '' GROUP BY prev_author ORDER BY cnt DESC LIMIT 5",
		runID)
	if rows2 != nil {
		for rows2.Next() {
			var ac authorCount
			rows2.Scan(&ac.Author, &ac.Count)
			helped = append(helped, ac)
		}
		rows2.Close()
	}

	type fileCount struct {
		File  string
		Count int
	}
	var topFiles []fileCount
	rows3, _ := db.Query(
		"SELECT file, COUNT(*) as cnt FROM results WHERE run_id = ? GROUP BY file ORDER BY cnt DESC LIMIT 5", runID)
	if rows3 != nil {
		for rows3.Next() {
			var fc fileCount
			rows3.Scan(&fc.File, &fc.Count)
			topFiles = append(topFiles, fc)
		}
		rows3.Close()
	}

	if jsonOutput {
		helpedJSON := make([]map[string]interface{}, len(helped))
		for i, a := range helped {
			helpedJSON[i] = map[string]interface{}{"author": a.Author, "count": a.Count}
		}
		topFilesJSON := make([]map[string]interface{}, len(topFiles))
		for i, f := range topFiles {
			topFilesJSON[i] = map[string]interface{}{"file": f.File, "count": f.Count}
		}
		b, _ := json.MarshalIndent(map[string]interface{}{
			"run":         run,
			"total_lines": total,
			"categories":  counts,
			"helped":      helpedJSON,
			"top_files":   topFilesJSON,
		}, "", "  ")
		fmt.Println(string(b))
		return
	}

	fmt.Printf("%sworklens statistics%s\n\n", format.Bold, format.Reset)
	fmt.Printf("  Run:            %s\n", run.ID)
	fmt.Printf("  Source:         %s (%s → %s)\n", run.Source, shortRef(run.BaseRef), shortRef(run.HeadRef))
	fmt.Printf("  Author:         %s\n", run.Author)
	fmt.Printf("  Threshold:      %.0f days\n", run.ThresholdDays)
	fmt.Printf("  Added lines:    %d\n", total)

	fmt.Printf("\n  %sBy category:%s\n", format.Bold, format.Reset)
	for _, cat := range []string{"New Work", "Churn", "Rework", "Help Others"} {
		n := counts[cat]
		pct := 0.0
		if total > 0 {
			pct = float64(n) * 100 / float64(total)
		}
		fmt.Printf("    %s%-12s%s %5d  (%.1f%%)\n",
			format.CategoryColor(cat), cat, format.Reset, n, pct)
	}

	if len(helped) > 0 {
		fmt.Printf("\n  %sHelped:%s\n", format.Bold, format.Reset)
		for _, a := range helped {
			fmt.Printf("    %4d  %s\n", a.Count, a.Author)
		}
	}

	if len(topFiles) > 0 {
		fmt.Printf("\n  %sMost changed files:%s\n", format.Bold, format.Reset)
		for _, f := range topFiles {
			fmt.Printf("    %4d  %s\n", f.Count, f.File)
		}
	}
}
