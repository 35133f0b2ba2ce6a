package project

import (
	"os"
	"path/filepath"

	"github.com/worklens/git-worklens/internal/git"
)

// Paths holds the locations worklens uses inside a repo.
type Paths struct {
	Root      string // git repo root
	CacheDir  string // .git/worklens/
	ResultsDB string // .git/worklens/results.db
}

// FindRoot returns the git project root, preferring WORKLENS_PROJECT_DIR
// if set.
func FindRoot() (string, error) {
	if dir := os.Getenv("WORKLENS_PROJECT_DIR"); dir != "" {
		return dir, nil
	}
	return git.RevParseTopLevel()
}

// NewPaths constructs all path constants from a project root.
func NewPaths(root string) Paths {
	return Paths{
		Root:      root,
		CacheDir:  filepath.Join(root, ".git", "worklens"),
		ResultsDB: filepath.Join(root, ".git", "worklens", "results.db"),
	}
}
