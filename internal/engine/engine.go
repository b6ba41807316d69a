// Package engine runs the scoring and bucketing pass for one catalog.
package engine

import (
	"fmt"
	"time"

	"github.com/peekknuf/metastats/internal/bucket"
	"github.com/peekknuf/metastats/internal/catalog"
	"github.com/peekknuf/metastats/internal/profiler"
	"github.com/peekknuf/metastats/internal/score"
)

// Engine runs one statistics pass over a catalog: score every record, count
// scores into buckets and profile field population.
type Engine struct {
	Policy  score.Policy
	Buckets *bucket.Set
	Config  profiler.ProfilerConfig

	progress profiler.ProgressCallback
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress reports progress after every scored record.
func WithProgress(fn func(processed, total int)) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithProfilerConfig overrides the profiler settings.
func WithProfilerConfig(c profiler.ProfilerConfig) Option {
	return func(e *Engine) { e.Config = c }
}

// New creates an engine. The policy is validated here so that configuration
// problems surface before any record is read; the bucket set is validated
// by bucket.New.
func New(policy score.Policy, buckets *bucket.Set, opts ...Option) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if buckets == nil {
		return nil, &bucket.ConfigError{Index: -1, Reason: "no bucket set"}
	}
	e := &Engine{
		Policy:  policy,
		Buckets: buckets,
		Config:  profiler.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Warning identifies a record excluded from the bucket counts.
type Warning struct {
	DatasetID string
	Index     int
	Score     int
}

// DescribeResult contains the complete analysis results
type DescribeResult struct {
	Source         string
	RecordCount    int
	Scores         []int
	Counts         *bucket.Counts
	Excluded       []Warning
	Profile        *profiler.Profiler
	Quality        profiler.QualityMetrics
	ProcessingTime time.Duration
	Error          error
}

// Unbounded returns the aggregated exclusion error, or nil.
func (r *DescribeResult) Unbounded() error {
	if len(r.Excluded) == 0 {
		return nil
	}
	ex := make([]bucket.Exclusion, len(r.Excluded))
	for i, w := range r.Excluded {
		ex[i] = bucket.Exclusion{Index: w.Index, Score: w.Score}
	}
	return &bucket.UnboundedError{Exclusions: ex}
}

// Describe scores and counts records in a single pass.
func (e *Engine) Describe(source string, records []catalog.Metadata) *DescribeResult {
	startTime := time.Now()

	recs := make([]score.Record, len(records))
	for i := range records {
		recs[i] = records[i]
	}

	prof := profiler.NewProfilerWithConfig(e.Policy, e.Config)
	prof.Progress = e.progress
	scores := prof.Profile(recs)

	res := e.Buckets.Bucketize(scores)
	var warnings []Warning
	for _, x := range res.Excluded {
		warnings = append(warnings, Warning{
			DatasetID: records[x.Index].DatasetID,
			Index:     x.Index,
			Score:     x.Score,
		})
	}

	return &DescribeResult{
		Source:         source,
		RecordCount:    len(records),
		Scores:         scores,
		Counts:         res.Counts,
		Excluded:       warnings,
		Profile:        prof,
		Quality:        prof.CalculateQuality(),
		ProcessingTime: time.Since(startTime),
	}
}

// DescribeFile loads a CSV metadata export and describes it. Read failures
// are reported on the result.
func (e *Engine) DescribeFile(path string) *DescribeResult {
	startTime := time.Now()
	records, err := catalog.ReadCSV(path)
	if err != nil {
		return &DescribeResult{
			Source:         path,
			Error:          fmt.Errorf("failed to load %s: %w", path, err),
			ProcessingTime: time.Since(startTime),
		}
	}
	result := e.Describe(path, records)
	result.ProcessingTime = time.Since(startTime)
	return result
}
