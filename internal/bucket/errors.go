package bucket

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is wrapped by every bucket set validation failure.
	ErrConfiguration = errors.New("invalid bucket configuration")
	// ErrUnboundedScore is wrapped when scores fall outside every bucket.
	ErrUnboundedScore = errors.New("score outside all buckets")
)

// ConfigError describes why a bucket set does not partition the score domain.
type ConfigError struct {
	// Index of the offending spec, or -1 for set-level problems.
	Index  int
	Spec   Spec
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%v: bucket %d (%s): %s", ErrConfiguration, e.Index, e.Spec, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Exclusion is a score that matched no bucket. Index is its position in the
// input sequence.
type Exclusion struct {
	Index int
	Score int
}

// UnboundedError aggregates every exclusion of one counting pass.
type UnboundedError struct {
	Exclusions []Exclusion
}

func (e *UnboundedError) Error() string {
	const show = 10
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %d excluded", ErrUnboundedScore, len(e.Exclusions))
	for i, x := range e.Exclusions {
		if i == show {
			fmt.Fprintf(&b, ", ... (%d more)", len(e.Exclusions)-show)
			break
		}
		sep := ", "
		if i == 0 {
			sep = " ["
		}
		fmt.Fprintf(&b, "%s#%d=%d", sep, x.Index, x.Score)
	}
	if len(e.Exclusions) > 0 {
		b.WriteString("]")
	}
	return b.String()
}

func (e *UnboundedError) Unwrap() error { return ErrUnboundedScore }
