package bucket

import "fmt"

// Set is a validated, ordered list of buckets.
type Set struct {
	specs []Spec
	names []string
}

// New validates specs and returns the set.
//
// Specs must be declared in ascending order. The first one starts at 0 and
// each following spec starts exactly one past the end of its predecessor. An
// overflow spec may only appear last. A set without an overflow spec is
// bounded: larger scores are excluded when counting.
func New(specs ...Spec) (*Set, error) {
	if len(specs) == 0 {
		return nil, &ConfigError{Index: -1, Reason: "no buckets declared"}
	}

	seen := make(map[string]int, len(specs))
	next := 0
	for i, s := range specs {
		if err := checkShape(i, s); err != nil {
			return nil, err
		}
		name := s.DisplayName()
		if j, dup := seen[name]; dup {
			return nil, &ConfigError{Index: i, Spec: s, Reason: fmt.Sprintf("name %q already used by bucket %d", name, j)}
		}
		seen[name] = i

		if i > 0 && specs[i-1].Kind == KindOverflow {
			return nil, &ConfigError{Index: i, Spec: s, Reason: "declared after overflow bucket " + specs[i-1].DisplayName()}
		}
		switch start := s.start(); {
		case start > next:
			return nil, &ConfigError{Index: i, Spec: s, Reason: fmt.Sprintf("gap: scores %s are not covered", span(next, start-1))}
		case start < next:
			return nil, &ConfigError{Index: i, Spec: s, Reason: fmt.Sprintf("overlap: scores %s already covered", span(start, next-1))}
		}
		if end, bounded := s.end(); bounded {
			next = end + 1
		}
	}

	set := &Set{specs: append([]Spec(nil), specs...)}
	set.names = make([]string, len(specs))
	for i, s := range specs {
		set.names[i] = s.DisplayName()
	}
	return set, nil
}

// MustNew is like New but panics on an invalid layout. Use it for literals.
func MustNew(specs ...Spec) *Set {
	s, err := New(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

func checkShape(i int, s Spec) error {
	switch s.Kind {
	case KindExact, KindRange, KindOverflow:
	default:
		return &ConfigError{Index: i, Spec: s, Reason: "unknown bucket kind"}
	}
	if s.Lo < 0 || (s.Kind == KindRange && s.Hi < 0) {
		return &ConfigError{Index: i, Spec: s, Reason: "negative bound"}
	}
	if s.Kind == KindRange && s.Lo > s.Hi {
		return &ConfigError{Index: i, Spec: s, Reason: fmt.Sprintf("reversed bounds %d > %d", s.Lo, s.Hi)}
	}
	return nil
}

func span(lo, hi int) string {
	if lo == hi {
		return fmt.Sprint(lo)
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}

// Specs returns a copy of the declared specs.
func (s *Set) Specs() []Spec {
	return append([]Spec(nil), s.specs...)
}

// Names returns the bucket names in declaration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of buckets.
func (s *Set) Len() int { return len(s.specs) }

// Bounded reports whether the set lacks an overflow bucket.
func (s *Set) Bounded() bool {
	return s.specs[len(s.specs)-1].Kind != KindOverflow
}

// Index returns the position of the first bucket matching score.
func (s *Set) Index(score int) (int, bool) {
	for i, spec := range s.specs {
		if spec.Match(score) {
			return i, true
		}
	}
	return -1, false
}

// Result is the outcome of one counting pass.
type Result struct {
	Counts   *Counts
	Excluded []Exclusion
}

// Err returns an *UnboundedError when any score was excluded.
func (r *Result) Err() error {
	if len(r.Excluded) == 0 {
		return nil
	}
	return &UnboundedError{Exclusions: append([]Exclusion(nil), r.Excluded...)}
}

// Bucketize counts scores in a single pass. Every bucket appears in the
// result, in declaration order, whatever the order of scores.
func (s *Set) Bucketize(scores []int) *Result {
	counts := make([]int, len(s.specs))
	var excluded []Exclusion
	for i, score := range scores {
		j, ok := s.Index(score)
		if !ok {
			excluded = append(excluded, Exclusion{Index: i, Score: score})
			continue
		}
		counts[j]++
	}
	return &Result{
		Counts:   &Counts{names: s.names, counts: counts},
		Excluded: excluded,
	}
}

// Bucketize validates specs and counts scores against them. The error is
// always a configuration error; exclusions are reported on the Result.
func Bucketize(scores []int, specs []Spec) (*Result, error) {
	set, err := New(specs...)
	if err != nil {
		return nil, err
	}
	return set.Bucketize(scores), nil
}
