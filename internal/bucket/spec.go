// Package bucket partitions annotation scores into named, ordered buckets.
//
// A bucket set is validated once when it is built: declared in ascending
// order, the buckets must cover every score from 0 upwards with no gap and no
// overlap. Counting never drops a score silently; scores outside the set are
// returned as exclusions.
package bucket

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the shape of a bucket.
type Kind int

const (
	// KindExact matches score == Lo.
	KindExact Kind = iota
	// KindRange matches Lo <= score <= Hi.
	KindRange
	// KindOverflow matches score > Lo.
	KindOverflow
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindRange:
		return "range"
	case KindOverflow:
		return "overflow"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec describes one bucket.
type Spec struct {
	Kind Kind
	Lo   int
	Hi   int
	// Name labels the bucket in reports. DisplayName falls back to the
	// canonical form when it is empty.
	Name string
}

// Exact returns a bucket matching exactly v.
func Exact(v int) Spec {
	return Spec{Kind: KindExact, Lo: v, Hi: v}
}

// Between returns a bucket matching lo through hi inclusive.
func Between(lo, hi int) Spec {
	return Spec{Kind: KindRange, Lo: lo, Hi: hi}
}

// Above returns an overflow bucket matching every score greater than lo.
func Above(lo int) Spec {
	return Spec{Kind: KindOverflow, Lo: lo}
}

// Named returns a copy of s labelled name.
func (s Spec) Named(name string) Spec {
	s.Name = name
	return s
}

// Canonical returns the default label: "v", "lo-hi" or ">lo".
func (s Spec) Canonical() string {
	switch s.Kind {
	case KindExact:
		return strconv.Itoa(s.Lo)
	case KindRange:
		return fmt.Sprintf("%d-%d", s.Lo, s.Hi)
	case KindOverflow:
		return ">" + strconv.Itoa(s.Lo)
	}
	return fmt.Sprintf("invalid(%d)", int(s.Kind))
}

// DisplayName returns Name, or Canonical when Name is empty.
func (s Spec) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Canonical()
}

func (s Spec) String() string {
	if s.Name != "" && s.Name != s.Canonical() {
		return s.Name + "=" + s.Canonical()
	}
	return s.Canonical()
}

// Match reports whether score falls in s.
func (s Spec) Match(score int) bool {
	switch s.Kind {
	case KindExact:
		return score == s.Lo
	case KindRange:
		return score >= s.Lo && score <= s.Hi
	case KindOverflow:
		return score > s.Lo
	}
	return false
}

// start is the smallest score s matches.
func (s Spec) start() int {
	if s.Kind == KindOverflow {
		return s.Lo + 1
	}
	return s.Lo
}

// end is the largest score s matches; bounded is false for overflow buckets.
func (s Spec) end() (end int, bounded bool) {
	switch s.Kind {
	case KindExact:
		return s.Lo, true
	case KindRange:
		return s.Hi, true
	}
	return 0, false
}

// Parse reads a bucket from its textual form: "3", "3-5" or ">10",
// optionally prefixed with "name=".
func Parse(text string) (Spec, error) {
	var name string
	body := strings.TrimSpace(text)
	if i := strings.LastIndex(body, "="); i >= 0 {
		name = strings.TrimSpace(body[:i])
		body = strings.TrimSpace(body[i+1:])
		if name == "" {
			return Spec{}, fmt.Errorf("bucket %q: empty name", text)
		}
	}
	if body == "" {
		return Spec{}, fmt.Errorf("bucket %q: empty", text)
	}

	var s Spec
	switch {
	case strings.HasPrefix(body, ">"):
		lo, err := parseBound(text, body[1:])
		if err != nil {
			return Spec{}, err
		}
		s = Above(lo)
	case strings.Contains(body[1:], "-"):
		// body[1:] so a leading minus reads as a sign, not a separator.
		i := strings.Index(body[1:], "-") + 1
		lo, err := parseBound(text, body[:i])
		if err != nil {
			return Spec{}, err
		}
		hi, err := parseBound(text, body[i+1:])
		if err != nil {
			return Spec{}, err
		}
		s = Between(lo, hi)
	default:
		v, err := parseBound(text, body)
		if err != nil {
			return Spec{}, err
		}
		s = Exact(v)
	}
	s.Name = name
	return s, nil
}

func parseBound(text, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("bucket %q: bad bound %q", text, v)
	}
	return n, nil
}

// ParseAll parses each element with Parse.
func ParseAll(texts []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(texts))
	for _, t := range texts {
		s, err := Parse(t)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// Default returns the historical layout used for the tag histogram: one
// bucket per score from 0 to 10 and an overflow bucket above 10.
func Default() []Spec {
	specs := make([]Spec, 0, 12)
	for v := 0; v <= 10; v++ {
		specs = append(specs, Exact(v))
	}
	return append(specs, Above(10))
}
