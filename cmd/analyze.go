package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/worklens/git-worklens/internal/classify"
	"github.com/worklens/git-worklens/internal/debug"
	"github.com/worklens/git-worklens/internal/format"
	"github.com/worklens/git-worklens/internal/git"
	"github.com/worklens/git-worklens/internal/hosting"
	"github.com/worklens/git-worklens/internal/index"
	"github.com/worklens/git-worklens/internal/project"
	"github.com/worklens/git-worklens/internal/report"
)

// RunAnalyze handles the analyze subcommand.
func RunAnalyze(args []string) {
	fs := flag.NewFlagSet("git-worklens analyze", flag.ExitOnError)

	pr := fs.Int("pr", 0, "Pull request number")
	repo := fs.String("repo", "", "GitHub repository as owner/name (with --pr)")
	rangeSpec := fs.String("range", "", "Local commit range base..head")
	threshold := fs.Float64("threshold", classify.DefaultThresholdDays, "Churn/rework boundary in days")
	verbose := fs.Bool("v", false, "Print every classified line")
	jsonOutput := fs.Bool("json", false, "Output the summary as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage:
    git-worklens analyze --pr <n> --repo <owner/name>
    git-worklens analyze --range <base..head>

Pull request analysis blames files at the PR base commit, so the local
clone must contain that commit (git fetch first if needed).
`)
	}

	fs.Parse(reorderArgs(args))

	root, err := project.FindRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	paths := project.NewPaths(root)

	switch {
	case *pr > 0:
		analyzePR(paths, *repo, *pr, *threshold, *jsonOutput, *verbose)
	case *rangeSpec != "":
		analyzeRange(paths, *rangeSpec, *threshold, *jsonOutput, *verbose)
	default:
		fs.Usage()
		os.Exit(1)
	}
}

// filePatch pairs a changed file with its unified patch text.
type filePatch struct {
	path string
	text string
}

// analyzeRange classifies the added lines of a local commit range.
func analyzeRange(paths project.Paths, rangeSpec string, threshold float64, jsonOutput, verbose bool) {
	base, head, ok := splitRange(rangeSpec)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: --range expects <base>..<head>")
		os.Exit(1)
	}
	root := paths.Root

	// Diff and blame against the merge base so commits unique to the
	// head side are never part of their own history.
	mergeBase, err := git.MergeBase(root, base, head)
	if err != nil {
		mergeBase = base
	}

	// Pin symbolic head refs to a SHA so the run record stays meaningful
	// after the branch moves.
	if head == "HEAD" {
		if sha := git.HeadSHA(root); sha != "" {
			head = sha
		}
	}

	author, when, err := git.CommitMeta(root, head)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if author == "" {
		author = git.Author()
	}

	files, err := git.ChangedFiles(root, mergeBase, head)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var patches []filePatch
	for _, f := range files {
		text, err := git.FilePatch(root, mergeBase, head, f)
		if err != nil {
			debug.Log(paths.CacheDir, "analyze.log", "patch failed for "+f, err.Error())
			continue
		}
		patches = append(patches, filePatch{path: f, text: text})
	}

	byFile := classifyFiles(root, mergeBase, patches, author, when, threshold)
	run := index.NewRun("range", mergeBase, head, author, threshold)
	persistAndPrint(paths, run, byFile, jsonOutput, verbose)
}

// analyzePR classifies the added lines of a GitHub pull request.
func analyzePR(paths project.Paths, repoSpec string, number int, threshold float64, jsonOutput, verbose bool) {
	owner, name, ok := strings.Cut(repoSpec, "/")
	if !ok || owner == "" || name == "" {
		fmt.Fprintln(os.Stderr, "Error: --pr requires --repo <owner/name>")
		os.Exit(1)
	}

	client := hosting.NewClient(hosting.LoadToken(), 5)
	ctx := context.Background()

	pull, err := client.FetchPullRequest(ctx, owner, name, number)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	files, err := client.FetchPullRequestFiles(ctx, owner, name, number)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	patches := make([]filePatch, 0, len(files))
	for _, f := range files {
		patches = append(patches, filePatch{path: f.Path, text: f.Patch})
	}

	byFile := classifyFiles(paths.Root, pull.BaseSHA, patches, pull.Author, pull.Timestamp, threshold)
	run := index.NewRun("pr", pull.BaseSHA, pull.HeadSHA, pull.Author, threshold)
	persistAndPrint(paths, run, byFile, jsonOutput, verbose)
}

// classifyFiles classifies every added line of every patch, blaming
// each file at blameRef. Files run in parallel; classification itself
// is a pure function, so no coordination beyond the result map is
// needed.
func classifyFiles(root, blameRef string, patches []filePatch, author string, when time.Time, threshold float64) map[string][]report.LineResult {
	var (
		mu     sync.Mutex
		byFile = make(map[string][]report.LineResult)
	)

	g := new(errgroup.Group)
	g.SetLimit(8)

	for _, fp := range patches {
		fp := fp
		g.Go(func() error {
			if fp.text == "" {
				return nil
			}
			ranges, err := git.BlameRanges(root, blameRef, fp.path)
			if err != nil {
				// Files new at the base ref have no blame history.
				ranges = nil
			}
			results := report.AnalyzeFile(fp.text, ranges, author, when, threshold)
			mu.Lock()
			byFile[fp.path] = results
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return byFile
}

// persistAndPrint saves the run plus its results and prints the summary.
func persistAndPrint(paths project.Paths, run index.Run, byFile map[string][]report.LineResult, jsonOutput, verbose bool) {
	db, err := index.Open(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results db at %s: %v\n", paths.ResultsDB, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := index.SaveRun(db, run); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	for file, results := range byFile {
		if err := index.SaveResults(db, run.ID, file, results); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	s := report.Summarize(byFile)
	debug.Log(paths.CacheDir, "analyze.log", "run "+run.ID, map[string]interface{}{
		"source": run.Source,
		"files":  len(byFile),
		"added":  s.TotalAdded,
	})

	if jsonOutput {
		b, _ := json.MarshalIndent(map[string]interface{}{
			"run":     run,
			"total":   s.TotalAdded,
			"counts":  s.Counts,
			"helped":  s.Helped,
			"files":   s.Files,
		}, "", "  ")
		fmt.Println(string(b))
		return
	}

	printSummary(run, s, byFile, verbose)
}

func printSummary(run index.Run, s *report.Summary, byFile map[string][]report.LineResult, verbose bool) {
	header := fmt.Sprintf("Analyzed %s %s → %s: %d added lines in %d files. Run %s.",
		run.Source, shortRef(run.BaseRef), shortRef(run.HeadRef), s.TotalAdded, len(s.Files), run.ID)
	fmt.Println(format.FormatBorderedText(header, "git-worklens"))
	fmt.Println()

	for _, cat := range report.Categories {
		fmt.Printf("  %s%-12s%s %5d  (%.1f%%)\n",
			format.CategoryColor(string(cat)), cat, format.Reset, s.Counts[cat], s.Percent(cat))
	}

	if len(s.Helped) > 0 {
		fmt.Printf("\n  %sHelped:%s\n", format.Bold, format.Reset)
		for author, count := range s.Helped {
			fmt.Printf("    %4d  %s\n", count, author)
		}
	}

	if verbose {
		fmt.Println()
		for _, fsum := range s.Files {
			for _, lr := range byFile[fsum.File] {
				fmt.Print(format.FormatResult(toRow(fsum.File, lr), false))
			}
		}
	}
}

// toRow converts an in-memory result to the row shape the formatter
// expects, without a round trip through the database.
func toRow(file string, lr report.LineResult) *index.ResultRow {
	return &index.ResultRow{
		File:       file,
		Line:       lr.Line.Number,
		Content:    lr.Line.Content,
		Removed:    strings.Join(lr.Line.RemovedLines, "\n"),
		HunkType:   string(lr.Line.HunkType),
		Category:   string(lr.Result.Category),
		PrevAuthor: lr.Result.PreviousAuthor,
		PrevCommit: lr.Result.PreviousCommit,
		DeltaDays:  lr.Result.DeltaDays,
	}
}

// splitRange parses "base..head" or "base...head".
func splitRange(spec string) (base, head string, ok bool) {
	if base, head, ok = strings.Cut(spec, "..."); ok {
		return base, head, base != "" && head != ""
	}
	if base, head, ok = strings.Cut(spec, ".."); ok {
		return base, head, base != "" && head != ""
	}
	return "", "", false
}

func shortRef(ref string) string {
	if len(ref) == 40 {
		return ref[:7]
	}
	return ref
}
