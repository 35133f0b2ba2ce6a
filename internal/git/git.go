package git

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Author returns the git user.name config value.
func Author() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err != nil {
		return "unknown"
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return "unknown"
	}
	return name
}

// RevParseTopLevel returns the git repo root.
func RevParseTopLevel() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}

// HeadSHA returns the current HEAD commit SHA.
func HeadSHA(root string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// MergeBase returns the merge base of two refs.
func MergeBase(root, a, b string) (string, error) {
	cmd := exec.Command("git", "merge-base", a, b)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git merge-base %s %s: %w", a, b, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ChangedFiles lists the files that differ between two refs.
func ChangedFiles(root, base, head string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-only", base, head)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff --name-only %s %s: %w", base, head, err)
	}

	var files []string
	for _, f := range strings.Split(string(out), "\n") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// FilePatch returns one file's unified-diff text between two refs, with
// the diff/index/---/+++ preamble stripped so the text starts at the
// first hunk header. The --- and +++ lines would otherwise read as
// removed and added content.
func FilePatch(root, base, head, file string) (string, error) {
	cmd := exec.Command("git", "diff", base, head, "--", file)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git diff %s %s -- %s: %w", base, head, file, err)
	}

	text := string(out)
	if strings.HasPrefix(text, "@@") {
		return text, nil
	}
	if idx := strings.Index(text, "\n@@"); idx >= 0 {
		return text[idx+1:], nil
	}
	// No hunks: binary file or mode-only change.
	return "", nil
}

// CommitMeta returns the author name and author date of a commit.
func CommitMeta(root, sha string) (author string, when time.Time, err error) {
	cmd := exec.Command("git", "show", "-s", "--format=%an%n%aI", sha)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("git show %s: %w", sha, err)
	}

	parts := strings.SplitN(strings.TrimSpace(string(out)), "\n", 2)
	author = parts[0]
	if len(parts) == 2 {
		when, err = time.Parse(time.RFC3339, strings.TrimSpace(parts[1]))
		if err != nil {
			return author, time.Time{}, fmt.Errorf("parse author date of %s: %w", sha, err)
		}
	}
	return author, when, nil
}
