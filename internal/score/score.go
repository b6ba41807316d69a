// Package score computes the annotation score of a catalog record: how many
// of its descriptive fields are filled in, plus how many categories and tags
// it carries.
package score

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultDelimiter separates items of a multi-value field.
const DefaultDelimiter = ","

// Record gives read-only access to the named fields of one dataset entry.
// Absent fields must be reported as the empty string.
type Record interface {
	Field(name string) string
}

// Fields is a map-backed Record. A nil Fields is an empty record.
type Fields map[string]string

func (f Fields) Field(name string) string {
	return f[name]
}

// ItemMode selects how malformed multi-value fields are counted.
type ItemMode int

const (
	// ItemsRaw counts delimiter occurrences plus one. Empty items produced by
	// leading, trailing or doubled delimiters are counted.
	ItemsRaw ItemMode = iota
	// ItemsNonEmpty trims every item and drops the ones left empty.
	ItemsNonEmpty
)

func (m ItemMode) String() string {
	switch m {
	case ItemsRaw:
		return "raw"
	case ItemsNonEmpty:
		return "non-empty"
	default:
		return fmt.Sprintf("ItemMode(%d)", int(m))
	}
}

// ParseItemMode accepts "raw" or "non-empty".
func ParseItemMode(s string) (ItemMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return ItemsRaw, nil
	case "non-empty", "nonempty":
		return ItemsNonEmpty, nil
	}
	return ItemsRaw, fmt.Errorf("unknown item mode %q", s)
}

// Policy declares which fields count towards the score.
type Policy struct {
	// Scalar fields add 1 each when populated.
	Scalar []string
	// Multi fields add their item count.
	Multi []string
	// Delimiter defaults to DefaultDelimiter when empty.
	Delimiter string
	Items     ItemMode
}

// TagPolicy counts categories and tags only.
func TagPolicy() Policy {
	return Policy{Multi: []string{"categories", "tags"}}
}

// DescriptivePolicy counts every free-text column of the metadata table plus
// categories and tags.
func DescriptivePolicy() Policy {
	return Policy{
		Scalar: []string{"name", "description", "attribution", "contact_email", "updated_at", "permalink"},
		Multi:  []string{"categories", "tags"},
	}
}

// ScalarPolicy counts populated scalar fields only.
func ScalarPolicy(fields ...string) Policy {
	return Policy{Scalar: fields}
}

// PolicyByName resolves the presets accepted on the command line.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "tags":
		return TagPolicy(), nil
	case "descriptive":
		return DescriptivePolicy(), nil
	case "scalar":
		return ScalarPolicy(DescriptivePolicy().Scalar...), nil
	}
	return Policy{}, fmt.Errorf("unknown scoring policy %q (want tags, descriptive or scalar)", name)
}

// Delim returns the delimiter in force.
func (p Policy) Delim() string {
	if p.Delimiter == "" {
		return DefaultDelimiter
	}
	return p.Delimiter
}

// Fields returns the scalar fields followed by the multi-value fields.
func (p Policy) Fields() []string {
	all := make([]string, 0, len(p.Scalar)+len(p.Multi))
	all = append(all, p.Scalar...)
	return append(all, p.Multi...)
}

// IsMulti reports whether name is declared as a multi-value field.
func (p Policy) IsMulti(name string) bool {
	for _, m := range p.Multi {
		if m == name {
			return true
		}
	}
	return false
}

// Validate rejects blank and duplicate field names.
func (p Policy) Validate() error {
	if len(p.Scalar) == 0 && len(p.Multi) == 0 {
		return errors.New("policy declares no fields")
	}
	if p.Items != ItemsRaw && p.Items != ItemsNonEmpty {
		return fmt.Errorf("invalid item mode %d", int(p.Items))
	}
	seen := make(map[string]struct{})
	for _, name := range p.Fields() {
		if strings.TrimSpace(name) == "" {
			return errors.New("policy contains a blank field name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("field %q declared twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Populated reports whether a scalar value is non-empty after trimming.
func Populated(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Items returns the number of items in a multi-value field. The empty string
// has zero items, not one.
func Items(value, delim string, mode ItemMode) int {
	if value == "" {
		return 0
	}
	if mode == ItemsRaw {
		return strings.Count(value, delim) + 1
	}
	return len(Split(value, delim, mode))
}

// Split returns the items of a multi-value field under the given mode.
func Split(value, delim string, mode ItemMode) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, delim)
	if mode == ItemsRaw {
		return parts
	}
	items := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// Score returns the annotation score of r under p.
func Score(r Record, p Policy) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, name := range p.Scalar {
		if Populated(r.Field(name)) {
			n++
		}
	}
	delim := p.Delim()
	for _, name := range p.Multi {
		n += Items(r.Field(name), delim, p.Items)
	}
	return n
}

// SplitField splits the named multi-value field of r using p's delimiter and
// item mode.
func (p Policy) SplitField(r Record, name string) []string {
	if r == nil {
		return nil
	}
	return Split(r.Field(name), p.Delim(), p.Items)
}
