package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesScanned   = "gitkarma.audit.files.scanned.total"
	metricFilesSkipped   = "gitkarma.audit.files.skipped.total"
	metricLinesAttribute = "gitkarma.audit.lines.attributed.total"
	metricParseFailures  = "gitkarma.audit.parse.failures.total"
	metricFileDuration   = "gitkarma.audit.file.duration.seconds"

	attrSkipReason = "reason"
)

// durationBucketBoundaries covers 10ms to 60s; a single blame+parse pass
// ranges from milliseconds for small files to tens of seconds for
// pathological histories.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// AuditMetrics holds OTel instruments for the audit run.
type AuditMetrics struct {
	filesScanned    metric.Int64Counter
	filesSkipped    metric.Int64Counter
	linesAttributed metric.Int64Counter
	parseFailures   metric.Int64Counter
	fileDuration    metric.Float64Histogram
}

// NewAuditMetrics creates audit metric instruments from the given meter.
func NewAuditMetrics(mt metric.Meter) (*AuditMetrics, error) {
	b := newMetricBuilder(mt)

	am := &AuditMetrics{
		filesScanned:    b.counter(metricFilesScanned, "Files audited", "{file}"),
		filesSkipped:    b.counter(metricFilesSkipped, "Files skipped by reason", "{file}"),
		linesAttributed: b.counter(metricLinesAttribute, "Lines attributed to blocks", "{line}"),
		parseFailures:   b.counter(metricParseFailures, "Fatal blame trace parse failures", "{failure}"),
		fileDuration:    b.histogram(metricFileDuration, "Per-file blame and parse duration in seconds", "s", durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return am, nil
}

// RecordFile records one audited file. Safe to call on a nil receiver (no-op).
func (am *AuditMetrics) RecordFile(ctx context.Context, lines int, elapsed time.Duration) {
	if am == nil {
		return
	}

	am.filesScanned.Add(ctx, 1)
	am.linesAttributed.Add(ctx, int64(lines))
	am.fileDuration.Record(ctx, elapsed.Seconds())
}

// RecordSkip records a skipped file with its reason ("binary", "vendored",
// "pattern"). Safe to call on a nil receiver (no-op).
func (am *AuditMetrics) RecordSkip(ctx context.Context, reason string) {
	if am == nil {
		return
	}

	am.filesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String(attrSkipReason, reason)))
}

// RecordParseFailure records a fatal trace parse error.
// Safe to call on a nil receiver (no-op).
func (am *AuditMetrics) RecordParseFailure(ctx context.Context) {
	if am == nil {
		return
	}

	am.parseFailures.Add(ctx, 1)
}
