package profiler

import "github.com/peekknuf/metastats/internal/score"

// Ratio is a count out of a total.
type Ratio struct {
	Count int
	Total int
}

// Percent returns Count/Total as a percentage, or 0 for an empty total.
func (r Ratio) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Count) / float64(r.Total) * 100
}

// Predicate is a boolean test over a record.
type Predicate func(score.Record) bool

// HasField is true when the named field is populated.
func HasField(name string) Predicate {
	return func(r score.Record) bool {
		return r != nil && score.Populated(r.Field(name))
	}
}

// HasAny is true when at least one named field is populated.
func HasAny(names ...string) Predicate {
	return func(r score.Record) bool {
		for _, n := range names {
			if HasField(n)(r) {
				return true
			}
		}
		return false
	}
}

// HasAll is true when every named field is populated.
func HasAll(names ...string) Predicate {
	return func(r score.Record) bool {
		for _, n := range names {
			if !HasField(n)(r) {
				return false
			}
		}
		return len(names) > 0
	}
}

// CountWhere returns how many records satisfy pred.
func CountWhere(records []score.Record, pred Predicate) Ratio {
	r := Ratio{Total: len(records)}
	for _, rec := range records {
		if pred(rec) {
			r.Count++
		}
	}
	return r
}
