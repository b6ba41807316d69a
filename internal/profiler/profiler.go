// Package profiler computes population statistics for catalog fields: how
// many records fill each field, how many distinct categories and tags exist,
// and how annotation scores are distributed.
package profiler

import (
	"math"

	"github.com/peekknuf/metastats/internal/score"
)

// ProfilerConfig tunes the profiler.
type ProfilerConfig struct {
	MaxSampleValues int // Sample values kept per field
}

// DefaultConfig keeps 5 sample values per field.
func DefaultConfig() ProfilerConfig {
	return ProfilerConfig{MaxSampleValues: 5}
}

// ProgressCallback is invoked after every processed record.
type ProgressCallback func(processed, total int)

// ScoreStats summarizes the distribution of annotation scores.
type ScoreStats struct {
	Count int
	Min   int
	Max   int
	Mean  float64
	Std   float64
	Zero  int

	sum   float64
	sumSq float64
}

// Update adds one score.
func (s *ScoreStats) Update(v int) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	if v == 0 {
		s.Zero++
	}
	s.Count++
	f := float64(v)
	s.sum += f
	s.sumSq += f * f
}

func (s *ScoreStats) finalize() {
	if s.Count == 0 {
		return
	}
	s.Mean = s.sum / float64(s.Count)
	if s.Count > 1 {
		variance := (s.sumSq - (s.sum * s.sum / float64(s.Count))) / float64(s.Count-1)
		if variance < 0 {
			variance = 0
		}
		s.Std = math.Sqrt(variance)
	}
}

// Profiler accumulates field and score statistics for one policy.
type Profiler struct {
	Policy      score.Policy
	Config      ProfilerConfig
	FieldStats  []*FieldStats
	Scores      ScoreStats
	RecordCount int
	Progress    ProgressCallback

	byName map[string]*FieldStats
}

// NewProfiler creates a profiler with one FieldStats per policy field, in
// policy order.
func NewProfiler(policy score.Policy) *Profiler {
	return NewProfilerWithConfig(policy, DefaultConfig())
}

// NewProfilerWithConfig is NewProfiler with explicit settings.
func NewProfilerWithConfig(policy score.Policy, config ProfilerConfig) *Profiler {
	p := &Profiler{
		Policy: policy,
		Config: config,
		byName: make(map[string]*FieldStats),
	}
	for _, name := range policy.Scalar {
		p.addField(name, false)
	}
	for _, name := range policy.Multi {
		p.addField(name, true)
	}
	return p
}

func (p *Profiler) addField(name string, multi bool) {
	fs := NewFieldStats(name, multi, p.Config.MaxSampleValues)
	p.FieldStats = append(p.FieldStats, fs)
	p.byName[name] = fs
}

// Add profiles one record and returns its score.
func (p *Profiler) Add(r score.Record) int {
	p.RecordCount++
	for _, fs := range p.FieldStats {
		var value string
		if r != nil {
			value = r.Field(fs.Name)
		}
		if fs.Multi {
			items := p.Policy.SplitField(r, fs.Name)
			fs.Update(len(items) > 0, value, items)
			continue
		}
		fs.Update(score.Populated(value), value, nil)
	}
	s := score.Score(r, p.Policy)
	p.Scores.Update(s)
	return s
}

// Profile adds every record and finalizes the statistics. It returns the
// per-record scores in input order.
func (p *Profiler) Profile(records []score.Record) []int {
	scores := make([]int, len(records))
	for i, r := range records {
		scores[i] = p.Add(r)
		if p.Progress != nil {
			p.Progress(i+1, len(records))
		}
	}
	p.Finalize()
	return scores
}

// Finalize computes derived statistics. Call it after the last Add.
func (p *Profiler) Finalize() {
	for _, fs := range p.FieldStats {
		fs.finalize()
	}
	p.Scores.finalize()
}

// Field returns the statistics for the named policy field.
func (p *Profiler) Field(name string) (*FieldStats, bool) {
	fs, ok := p.byName[name]
	return fs, ok
}
