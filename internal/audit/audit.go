// Package audit orchestrates a karma audit run: enumerate the files of a
// revision, skip what cannot be attributed, blame and parse the rest in
// parallel, and fold the per-worker statistics into one finalized result.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/gitkarma/internal/observability"
	"github.com/Sumatoshi-tech/gitkarma/pkg/blame"
	"github.com/Sumatoshi-tech/gitkarma/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitkarma/pkg/karma"
	"github.com/Sumatoshi-tech/gitkarma/pkg/stats"
	"github.com/Sumatoshi-tech/gitkarma/pkg/textutil"
)

// Skip reasons recorded on the files-skipped metric.
const (
	skipReasonBinary   = "binary"
	skipReasonVendored = "vendored"
	skipReasonPattern  = "pattern"
	skipReasonEmpty    = "empty"
)

// TraceRunner produces the raw blame porcelain trace for one file.
type TraceRunner interface {
	Trace(ctx context.Context, rev, path string) ([]string, error)
}

// Options configures a single audit run.
type Options struct {
	// Rev is the revision to audit. Empty means HEAD.
	Rev string

	// Workers is the blame worker count. Zero or negative means NumCPU.
	Workers int

	// AuthorKarma maps author identities to karma values.
	AuthorKarma map[string]int

	// SkipPatterns are glob patterns matched against the repo-relative
	// path and its base name.
	SkipPatterns []string

	// SkipVendored excludes paths enry classifies as vendored.
	SkipVendored bool

	// CollectBlocks keeps per-file blocks for the HTML renderer.
	CollectBlocks bool
}

// FileResult is one audited file with its attribution blocks, kept only
// when Options.CollectBlocks is set.
type FileResult struct {
	Path     string
	Language string
	Blocks   []blame.Block
}

// Result is the outcome of a finished audit run.
type Result struct {
	// CommitID is the full hex id of the audited commit.
	CommitID string

	// Stats holds the finalized statistics.
	Stats *stats.Stats

	// Files holds per-file blocks sorted by path when collection was on.
	Files []FileResult
}

// Engine runs audits against one repository.
type Engine struct {
	repo   *gitlib.Repository
	runner TraceRunner

	// Logger receives progress output. Defaults to slog.Default().
	Logger *slog.Logger

	// Tracer emits one span per run and one per file. Defaults to no-op.
	Tracer trace.Tracer

	// Metrics records audit instruments. Nil disables recording.
	Metrics *observability.AuditMetrics
}

// NewEngine creates an audit engine over an open repository and a blame
// trace source.
func NewEngine(repo *gitlib.Repository, runner TraceRunner) *Engine {
	return &Engine{
		repo:   repo,
		runner: runner,
		Logger: slog.Default(),
		Tracer: nooptrace.NewTracerProvider().Tracer("audit"),
	}
}

// fileTask is one file handed to a blame worker.
type fileTask struct {
	path     string
	language string

	// lines is the blob's line count, used to cross-check trace coverage.
	lines int
}

// Run audits the configured revision. A trace parse failure is fatal and
// aborts the run with the file path wrapped in the error.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	ctx, span := e.Tracer.Start(ctx, "audit.run")
	defer span.End()

	rev := opts.Rev
	if rev == "" {
		rev = "HEAD"
	}

	commit, err := e.repo.ResolveRevision(ctx, rev)
	if err != nil {
		return nil, err
	}
	defer commit.Free()

	commitID := commit.Hash().String()

	tasks, err := e.enumerate(ctx, commit, opts)
	if err != nil {
		return nil, err
	}

	e.Logger.Info("auditing", "rev", rev, "commit", commitID, "files", len(tasks))

	partials, files, err := e.runWorkers(ctx, commitID, tasks, opts)
	if err != nil {
		return nil, err
	}

	merged := stats.New()
	for _, partial := range partials {
		merged.Merge(partial)
	}

	err = merged.Finalize()
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &Result{CommitID: commitID, Stats: merged, Files: files}, nil
}

// enumerate walks the commit tree and returns the tasks that survive the
// skip rules. Blob contents are read here, on the calling goroutine, so
// all libgit2 access stays single-threaded.
func (e *Engine) enumerate(ctx context.Context, commit *gitlib.Commit, opts Options) ([]fileTask, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	defer tree.Free()

	entries, err := gitlib.TreeFiles(e.repo, tree)
	if err != nil {
		return nil, err
	}

	tasks := make([]fileTask, 0, len(entries))

	for _, entry := range entries {
		if matchesAny(opts.SkipPatterns, entry.Path) {
			e.recordSkip(ctx, entry.Path, skipReasonPattern)

			continue
		}

		if opts.SkipVendored && enry.IsVendor(entry.Path) {
			e.recordSkip(ctx, entry.Path, skipReasonVendored)

			continue
		}

		contents, readErr := entry.Contents(ctx)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Path, readErr)
		}

		if textutil.IsBinary(contents) {
			e.recordSkip(ctx, entry.Path, skipReasonBinary)

			continue
		}

		// An empty blob has no lines to attribute; blame emits nothing
		// for it, so it would otherwise count as fully attributed.
		lineCount := textutil.CountLines(contents)
		if lineCount == 0 {
			e.recordSkip(ctx, entry.Path, skipReasonEmpty)

			continue
		}

		tasks = append(tasks, fileTask{
			path:     entry.Path,
			language: enry.GetLanguage(path.Base(entry.Path), contents),
			lines:    lineCount,
		})
	}

	return tasks, nil
}

func (e *Engine) recordSkip(ctx context.Context, filePath, reason string) {
	e.Logger.Debug("skipping file", "path", filePath, "reason", reason)
	e.Metrics.RecordSkip(ctx, reason)
}

// runWorkers fans the tasks out over a bounded pool. Each worker owns a
// private accumulator; partials are merged by the caller so no Stats value
// is ever shared between goroutines.
func (e *Engine) runWorkers(
	ctx context.Context, commitID string, tasks []fileTask, opts Options,
) ([]*stats.Stats, []FileResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskCh := make(chan fileTask)
	errCh := make(chan error, workers)
	partials := make([]*stats.Stats, workers)
	collected := make([][]FileResult, workers)

	var wg sync.WaitGroup

	for w := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			acc := stats.NewAccumulator(
				func(b *blame.Block) int { return karma.Resolve(b, opts.AuthorKarma) },
				func(b *blame.Block) string { return karma.Identity(b.Meta) },
			)

			for task := range taskCh {
				result, workerErr := e.auditFile(ctx, commitID, task, acc, opts.CollectBlocks)
				if workerErr != nil {
					errCh <- workerErr

					cancel()

					return
				}

				if result != nil {
					collected[w] = append(collected[w], *result)
				}
			}

			partials[w] = acc.Stats()
		}()
	}

	feed := func() {
		defer close(taskCh)

		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}

	feed()
	wg.Wait()

	select {
	case workerErr := <-errCh:
		return nil, nil, workerErr
	default:
	}

	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	result := make([]*stats.Stats, 0, workers)
	for _, partial := range partials {
		if partial != nil {
			result = append(result, partial)
		}
	}

	var files []FileResult
	for _, chunk := range collected {
		files = append(files, chunk...)
	}

	return result, files, nil
}

// auditFile blames and parses one file into the worker's accumulator.
func (e *Engine) auditFile(
	ctx context.Context, commitID string, task fileTask, acc *stats.Accumulator, collect bool,
) (*FileResult, error) {
	ctx, span := e.Tracer.Start(ctx, "audit.file")
	defer span.End()

	started := time.Now()

	traceLines, err := e.runner.Trace(ctx, commitID, task.path)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", task.path, err)
	}

	blocks, err := blame.ParseFile(traceLines)
	if err != nil {
		e.Metrics.RecordParseFailure(ctx)

		return nil, fmt.Errorf("audit %s: %w", task.path, err)
	}

	acc.AddFile(blocks)

	lines := 0
	for i := range blocks {
		lines += len(blocks[i].Lines)
	}

	if lines != task.lines {
		e.Logger.Warn("line coverage mismatch",
			"path", task.path, "blob_lines", task.lines, "trace_lines", lines)
	}

	e.Metrics.RecordFile(ctx, lines, time.Since(started))

	if !collect {
		return nil, nil
	}

	return &FileResult{Path: task.path, Language: task.language, Blocks: blocks}, nil
}

// matchesAny reports whether the repo path or its base name matches one of
// the glob patterns. Invalid patterns never match.
func matchesAny(patterns []string, filePath string) bool {
	for _, pattern := range patterns {
		full, err := path.Match(pattern, filePath)
		if err != nil {
			continue
		}

		base, _ := path.Match(pattern, path.Base(filePath))

		if full || base {
			return true
		}
	}

	return false
}
