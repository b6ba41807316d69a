package profiler

import (
	"sort"

	"github.com/axiomhq/hyperloglog"
	"github.com/peekknuf/metastats/internal/score"
)

// FieldStats tracks how often one policy field is populated.
type FieldStats struct {
	Name  string
	Multi bool

	Populated int
	Empty     int

	// Items is the total item count of a multi-value field.
	Items int
	// Distinct is the exact number of distinct non-empty items (multi-value)
	// or values (scalar).
	Distinct int
	// DistinctEstimate is the HyperLogLog estimate of Distinct.
	DistinctEstimate uint64

	SampleValues []string

	maxSamples  int
	valueCounts map[string]int
	sketch      *hyperloglog.Sketch
}

// NewFieldStats creates a tracker keeping up to maxSamples sample values.
func NewFieldStats(name string, multi bool, maxSamples int) *FieldStats {
	return &FieldStats{
		Name:         name,
		Multi:        multi,
		SampleValues: make([]string, 0, maxSamples),
		maxSamples:   maxSamples,
		valueCounts:  make(map[string]int),
		sketch:       hyperloglog.New(),
	}
}

// Update records one field value. For multi-value fields, items holds the
// value already split under the scoring policy.
func (s *FieldStats) Update(populated bool, value string, items []string) {
	if !populated {
		s.Empty++
		return
	}
	s.Populated++

	if len(s.SampleValues) < s.maxSamples {
		s.SampleValues = append(s.SampleValues, value)
	}

	if !s.Multi {
		s.observe(value)
		return
	}
	s.Items += len(items)
	for _, item := range items {
		if item != "" {
			s.observe(item)
		}
	}
}

func (s *FieldStats) observe(v string) {
	s.valueCounts[v]++
	s.Distinct = len(s.valueCounts)
	s.sketch.Insert([]byte(v))
}

// ValueCount is one value with its frequency.
type ValueCount struct {
	Value string
	Count int
}

// Top returns the n most frequent values (items for multi-value fields),
// most frequent first, ties broken alphabetically.
func (s *FieldStats) Top(n int) []ValueCount {
	all := make([]ValueCount, 0, len(s.valueCounts))
	for v, c := range s.valueCounts {
		all = append(all, ValueCount{Value: v, Count: c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Value < all[j].Value
	})
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// finalize fills the derived fields.
func (s *FieldStats) finalize() {
	s.DistinctEstimate = s.sketch.Estimate()
}

// Total is the number of records seen.
func (s *FieldStats) Total() int {
	return s.Populated + s.Empty
}

// Ratio is the share of records with this field populated.
func (s *FieldStats) Ratio() Ratio {
	return Ratio{Count: s.Populated, Total: s.Total()}
}

// DistinctItems profiles a single multi-value field across records, trimming
// items and dropping empty ones regardless of the scoring policy.
func DistinctItems(records []score.Record, field, delim string) *FieldStats {
	fs := NewFieldStats(field, true, 0)
	for _, r := range records {
		var value string
		if r != nil {
			value = r.Field(field)
		}
		items := score.Split(value, delim, score.ItemsNonEmpty)
		fs.Update(len(items) > 0, value, items)
	}
	fs.finalize()
	return fs
}
