// Package stats aggregates per-file blame blocks into process-wide karma
// statistics: a same-commit block-length histogram, a cross-commit positive
// karma run-length histogram, and running totals. The two histograms
// partition the same set of karma-bearing lines two different ways, which
// Finalize cross-checks.
package stats

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/gitkarma/pkg/blame"
)

// ErrInvariantViolation indicates the two histograms' weighted sums
// disagree after a run. This is a logic defect in block/run accounting,
// never a recoverable input condition.
var ErrInvariantViolation = errors.New("histogram invariant violation")

// Histogram counts occurrences per group length.
type Histogram map[int]int

// Add records one group of the given length.
func (h Histogram) Add(length int) {
	h[length]++
}

// Merge folds another histogram into this one.
func (h Histogram) Merge(other Histogram) {
	for length, count := range other {
		h[length] += count
	}
}

// Groups returns the total number of recorded groups.
func (h Histogram) Groups() int {
	total := 0
	for _, count := range h {
		total += count
	}

	return total
}

// WeightedSum returns the total line count across all groups.
func (h Histogram) WeightedSum() int {
	total := 0
	for length, count := range h {
		total += length * count
	}

	return total
}

// Stats is the process-wide accumulator of karma attribution.
type Stats struct {
	// FilesTotal is the number of files contributing to the statistics.
	FilesTotal int `json:"files_total" yaml:"files_total"`

	// FilesWithFullKarma counts files where every line has positive karma.
	FilesWithFullKarma int `json:"files_with_full_karma" yaml:"files_with_full_karma"`

	// TotalLines is the line count over all contributing files.
	TotalLines int `json:"total_lines" yaml:"total_lines"`

	// TotalKarmaLines is the count of karma-bearing lines, set by Finalize.
	TotalKarmaLines int `json:"total_karma_lines" yaml:"total_karma_lines"`

	// BlockLengths counts karma-positive blocks by length: contiguous
	// same-commit spans, recorded once per block regardless of adjacency.
	BlockLengths Histogram `json:"block_lengths" yaml:"block_lengths"`

	// KarmaRuns counts maximal positive-karma runs by length: contiguous
	// spans possibly crossing commit boundaries.
	KarmaRuns Histogram `json:"karma_runs" yaml:"karma_runs"`

	// AuthorLines counts attributed lines per author identity.
	AuthorLines map[string]int `json:"author_lines" yaml:"author_lines"`
}

// New returns an empty Stats value with initialized histograms.
func New() *Stats {
	return &Stats{
		BlockLengths: make(Histogram),
		KarmaRuns:    make(Histogram),
		AuthorLines:  make(map[string]int),
	}
}

// Merge folds another Stats into this one. Merging is commutative and
// associative, so partial results from parallel workers can be combined in
// any order.
func (s *Stats) Merge(other *Stats) {
	s.FilesTotal += other.FilesTotal
	s.FilesWithFullKarma += other.FilesWithFullKarma
	s.TotalLines += other.TotalLines
	s.BlockLengths.Merge(other.BlockLengths)
	s.KarmaRuns.Merge(other.KarmaRuns)

	for identity, lines := range other.AuthorLines {
		s.AuthorLines[identity] += lines
	}
}

// Finalize computes TotalKarmaLines and validates that both histograms
// account for the same number of karma-bearing lines.
func (s *Stats) Finalize() error {
	blockSum := s.BlockLengths.WeightedSum()
	runSum := s.KarmaRuns.WeightedSum()

	if blockSum != runSum {
		return fmt.Errorf("%w: block lines %d != run lines %d", ErrInvariantViolation, blockSum, runSum)
	}

	s.TotalKarmaLines = runSum

	return nil
}

// Resolver returns the karma value for a block.
type Resolver func(*blame.Block) int

// IdentityFunc returns the author identity of a block for per-author rollup.
type IdentityFunc func(*blame.Block) string

// Accumulator feeds per-file blocks into a Stats value.
type Accumulator struct {
	resolve  Resolver
	identity IdentityFunc
	stats    *Stats
}

// NewAccumulator creates an accumulator over a fresh Stats value.
// The identity function may be nil to skip the per-author rollup.
func NewAccumulator(resolve Resolver, identity IdentityFunc) *Accumulator {
	return &Accumulator{
		resolve:  resolve,
		identity: identity,
		stats:    New(),
	}
}

// AddFile records one file's ordered blocks. A karma-positive block extends
// the current run and records its own length; a zero-karma block terminates
// the run. A run still open at end of file is flushed.
func (a *Accumulator) AddFile(blocks []blame.Block) {
	total := 0
	withKarma := 0
	runLength := 0

	for i := range blocks {
		block := &blocks[i]
		n := len(block.Lines)
		total += n

		if a.identity != nil {
			a.stats.AuthorLines[a.identity(block)] += n
		}

		if a.resolve(block) > 0 {
			withKarma += n
			runLength += n
			a.stats.BlockLengths.Add(n)

			continue
		}

		if runLength > 0 {
			a.stats.KarmaRuns.Add(runLength)
			runLength = 0
		}
	}

	if runLength > 0 {
		a.stats.KarmaRuns.Add(runLength)
	}

	if total == withKarma {
		a.stats.FilesWithFullKarma++
	}

	a.stats.FilesTotal++
	a.stats.TotalLines += total
}

// Stats returns the accumulated statistics.
func (a *Accumulator) Stats() *Stats {
	return a.stats
}
