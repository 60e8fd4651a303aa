// Package gitblame acquires blame porcelain traces by invoking the git
// binary. The parser never runs git itself; it consumes the lines this
// package returns.
package gitblame

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// defaultGitPath is the git executable resolved from PATH.
	defaultGitPath = "git"

	// initialLineBytes is the scanner's initial buffer size.
	initialLineBytes = 64 * 1024

	// maxLineBytes bounds a single trace line. Porcelain code lines carry
	// whole source lines, so the default bufio limit is too small.
	maxLineBytes = 1 << 20

	// stderrExcerptLimit bounds how much of git's stderr lands in errors.
	stderrExcerptLimit = 512
)

// Runner invokes git blame in a fixed repository working directory.
type Runner struct {
	// RepoDir is the working directory git runs in.
	RepoDir string

	// GitPath overrides the git executable. Empty means "git" from PATH.
	GitPath string
}

// NewRunner creates a Runner for the given repository directory.
func NewRunner(repoDir string) *Runner {
	return &Runner{RepoDir: repoDir}
}

// Trace runs `git blame --porcelain <rev> -- <path>` and returns the raw
// trace as ordered lines. The returned lines include headers, metadata,
// and tab-prefixed code lines exactly as git emitted them.
func (r *Runner) Trace(ctx context.Context, rev, path string) ([]string, error) {
	gitPath := r.GitPath
	if gitPath == "" {
		gitPath = defaultGitPath
	}

	cmd := exec.CommandContext(ctx, gitPath, "blame", "--porcelain", rev, "--", path)
	cmd.Dir = r.RepoDir

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("git blame %s: stdout pipe: %w", path, err)
	}

	err = cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("git blame %s: start: %w", path, err)
	}

	var lines []string

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, initialLineBytes), maxLineBytes)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if waitErr != nil {
		return nil, fmt.Errorf("git blame %s: %w: %s", path, waitErr, stderrExcerpt(&stderr))
	}

	if scanErr != nil {
		return nil, fmt.Errorf("git blame %s: read trace: %w", path, scanErr)
	}

	return lines, nil
}

// stderrExcerpt returns a single-line, length-bounded view of git's stderr.
func stderrExcerpt(buf *bytes.Buffer) string {
	excerpt := strings.TrimSpace(buf.String())
	excerpt = strings.ReplaceAll(excerpt, "\n", "; ")

	if len(excerpt) > stderrExcerptLimit {
		excerpt = excerpt[:stderrExcerptLimit] + "..."
	}

	if excerpt == "" {
		return "(no stderr output)"
	}

	return excerpt
}
