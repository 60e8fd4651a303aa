package gitblame

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()

	_, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git binary not available")
	}
}

// initRepo builds a one-commit repository with the git CLI so blame has
// something to trace.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()

		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(cmd.Environ(),
			"GIT_AUTHOR_NAME=Test User",
			"GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test User",
			"GIT_COMMITTER_EMAIL=test@example.com",
		)

		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("init", "--initial-branch=main", ".")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")

	writeErr := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("alpha\nbeta\ngamma\n"), 0o644)
	require.NoError(t, writeErr)

	run("add", ".")
	run("commit", "-m", "initial")

	return dir
}

func TestTrace_ReturnsPorcelainLines(t *testing.T) {
	requireGit(t)

	dir := initRepo(t)

	lines, err := NewRunner(dir).Trace(context.Background(), "HEAD", "hello.txt")
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	// First line is a hunk header: <commit> <orig> <final> <len>.
	fields := strings.Fields(lines[0])
	require.GreaterOrEqual(t, len(fields), 3)
	assert.Len(t, fields[0], 40)

	// The code lines arrive tab-prefixed in file order.
	var code []string

	for _, line := range lines {
		if strings.HasPrefix(line, "\t") {
			code = append(code, strings.TrimPrefix(line, "\t"))
		}
	}

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, code)
}

func TestTrace_MetadataPresent(t *testing.T) {
	requireGit(t)

	dir := initRepo(t)

	lines, err := NewRunner(dir).Trace(context.Background(), "HEAD", "hello.txt")
	require.NoError(t, err)

	joined := strings.Join(lines, "\n")

	assert.Contains(t, joined, "author Test User")
	assert.Contains(t, joined, "author-mail <test@example.com>")
	assert.Contains(t, joined, "summary initial")
}

func TestTrace_UnknownPath(t *testing.T) {
	requireGit(t)

	dir := initRepo(t)

	lines, err := NewRunner(dir).Trace(context.Background(), "HEAD", "missing.txt")

	assert.Nil(t, lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestTrace_UnknownRevision(t *testing.T) {
	requireGit(t)

	dir := initRepo(t)

	_, err := NewRunner(dir).Trace(context.Background(), "not-a-rev", "hello.txt")

	require.Error(t, err)
}

func TestTrace_CanceledContext(t *testing.T) {
	requireGit(t)

	dir := initRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(dir).Trace(ctx, "HEAD", "hello.txt")

	require.Error(t, err)
}

func TestTrace_MissingGitBinary(t *testing.T) {
	t.Parallel()

	runner := &Runner{RepoDir: t.TempDir(), GitPath: "/nonexistent/git"}

	_, err := runner.Trace(context.Background(), "HEAD", "x")

	require.Error(t, err)
}

func TestStderrExcerpt_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(no stderr output)", stderrExcerpt(&bytes.Buffer{}))
}

func TestStderrExcerpt_MultilineFlattened(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBufferString("fatal: no such path\nhint: try again\n")

	assert.Equal(t, "fatal: no such path; hint: try again", stderrExcerpt(buf))
}

func TestStderrExcerpt_Truncated(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBufferString(strings.Repeat("e", stderrExcerptLimit+100))

	excerpt := stderrExcerpt(buf)

	assert.Len(t, excerpt, stderrExcerptLimit+len("..."))
	assert.True(t, strings.HasSuffix(excerpt, "..."))
}
