package cmd

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/worklens/git-worklens/internal/format"
	"github.com/worklens/git-worklens/internal/index"
	"github.com/worklens/git-worklens/internal/project"
)

// RunQuery handles the default query mode (no subcommand).
func RunQuery(args []string) {
	fs := flag.NewFlagSet("git-worklens", flag.ExitOnError)

	category := fs.String("category", "", "Filter by category (new-work|churn|rework|help-others)")
	author := fs.String("author", "", "Filter by previous author name")
	runID := fs.String("run", "", "Query a specific run ID (default: latest)")
	line := fs.String("L", "", "Line number, for --explain")
	stats := fs.Bool("stats", false, "Summary statistics")
	explain := fs.Bool("explain", false, "Show what a replaced line replaced")
	showLog := fs.Bool("log", false, "Show debug logs")
	verbose := fs.Bool("v", false, "Show full SHAs and hunk types")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `git-worklens: attribute added lines to New Work, Churn, Rework, or Help Others.

Usage:
    git-worklens analyze --pr <n> --repo <owner/name>  # analyze a pull request
    git-worklens analyze --range <base..head>          # analyze a local commit range
    git-worklens [<file>]                              # classified lines of the latest run
    git-worklens --category churn [<file>]             # filter by category
    git-worklens --author <name>                       # lines that touched someone's code
    git-worklens --run <id>                            # query a specific run
    git-worklens --explain <file> -L <line>            # show what a line replaced
    git-worklens --stats                               # per-category statistics
    git-worklens --json                                # machine-readable output
    git-worklens --log                                 # show debug logs
`)
	}

	// Go's flag package stops at the first non-flag arg.
	// Reorder so flags come before positional args, allowing
	// both "git worklens -L 42 file" and "git worklens file -L 42".
	fs.Parse(reorderArgs(args))

	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)

	if *showLog {
		cmdLog(paths)
		return
	}

	db, err := index.Open(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results db at %s: %v\n", paths.ResultsDB, err)
		os.Exit(1)
	}
	defer db.Close()

	run := *runID
	if run == "" {
		run, err = index.LatestRunID(db)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		if run == "" {
			fmt.Fprintln(os.Stderr, "No analysis runs recorded yet.")
			fmt.Fprintln(os.Stderr, "Run 'git-worklens analyze' in this repo first.")
			os.Exit(1)
		}
	}

	file := fs.Arg(0)

	switch {
	case *stats:
		cmdStats(db, run, *jsonOutput)
	case *explain:
		cmdExplain(db, run, file, *line)
	default:
		cmdResults(db, run, file, normalizeCategory(*category), *author, *verbose, *jsonOutput)
	}
}

// cmdResults prints the classified lines of a run, optionally filtered.
func cmdResults(db *sql.DB, runID, file, category, author string, verbose, jsonOutput bool) {
	query := "SELECT " + index.SelectColumns + " FROM results WHERE run_id = ?"
	qargs := []interface{}{runID}
	if file != "" {
		query += " AND file = ?"
		qargs = append(qargs, file)
	}
	if category != "" {
		query += " AND category = ?"
		qargs = append(qargs, category)
	}
	if author != "" {
		query += " AND prev_author = ?"
		qargs = append(qargs, author)
	}
	query += " ORDER BY file, line"

	rows, err := queryRows(db, query, qargs...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if jsonOutput {
		b, _ := json.MarshalIndent(rows, "", "  ")
		fmt.Println(string(b))
		return
	}

	if len(rows) == 0 {
		fmt.Println("No matching lines.")
		return
	}
	for _, r := range rows {
		fmt.Print(format.FormatResult(r, verbose))
	}
}

// normalizeCategory maps CLI spellings to stored category names.
// Unknown input passes through so exact names also work.
func normalizeCategory(s string) string {
	switch s {
	case "new-work", "new":
		return "New Work"
	case "churn":
		return "Churn"
	case "rework":
		return "Rework"
	case "help-others", "help":
		return "Help Others"
	}
	return s
}

// queryRows executes a query and collects ResultRows.
func queryRows(db *sql.DB, query string, args ...interface{}) ([]*index.ResultRow, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*index.ResultRow
	for rows.Next() {
		row, err := index.ScanRow(rows)
		if err != nil {
			continue
		}
		results = append(results, row)
	}
	return results, nil
}

// reorderArgs moves flags before positional args so flag.Parse works
// regardless of argument order (e.g. "file -L 42" → "-L 42 file").
func reorderArgs(args []string) []string {
	var flags, positional []string
	i := 0
	for i < len(args) {
		a := args[i]
		if len(a) > 0 && a[0] == '-' {
			flags = append(flags, a)
			// Check if this flag takes a value (next arg is not a flag)
			if i+1 < len(args) && (len(args[i+1]) == 0 || args[i+1][0] != '-') {
				// Known boolean flags that don't take a value
				switch a {
				case "--stats", "--explain", "--log", "--json", "-v":
					// no value
				default:
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, a)
		}
		i++
	}
	return append(flags, positional...)
}
