package score

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScoreEmptyRecord(t *testing.T) {
	policies := map[string]Policy{
		"tags":        TagPolicy(),
		"descriptive": DescriptivePolicy(),
		"scalar":      ScalarPolicy("name", "description"),
	}
	records := []Record{
		nil,
		Fields(nil),
		Fields{},
		Fields{"name": "", "description": "   ", "categories": "", "tags": ""},
	}
	for name, p := range policies {
		for i, r := range records {
			if got := Score(r, p); got != 0 {
				t.Errorf("%s: record %d: expected score 0, got %d", name, i, got)
			}
		}
	}
}

func TestScoreMixedFields(t *testing.T) {
	p := Policy{
		Scalar: []string{"a", "b", "c"},
		Multi:  []string{"categories", "tags"},
	}
	r := Fields{"a": "", "b": "desc", "c": "", "categories": "a,b,c", "tags": ""}
	if got := Score(r, p); got != 4 {
		t.Errorf("Expected score 4, got %d", got)
	}
}

func TestScoreScalarIncrement(t *testing.T) {
	p := DescriptivePolicy()
	base := Fields{"categories": "x,y", "tags": "t"}
	before := Score(base, p)
	for _, field := range p.Scalar {
		r := Fields{}
		for k, v := range base {
			r[k] = v
		}
		r[field] = "value"
		if got := Score(r, p); got != before+1 {
			t.Errorf("populating %s: expected %d, got %d", field, before+1, got)
		}
	}
}

func TestScoreMissingFieldsDegrade(t *testing.T) {
	p := DescriptivePolicy()
	r := Fields{"unrelated": "x"}
	if got := Score(r, p); got != 0 {
		t.Errorf("Expected 0 for record without declared fields, got %d", got)
	}
}

func TestItems(t *testing.T) {
	tests := []struct {
		value string
		mode  ItemMode
		want  int
	}{
		{"", ItemsRaw, 0},
		{"", ItemsNonEmpty, 0},
		{"a", ItemsRaw, 1},
		{"a,b,c", ItemsRaw, 3},
		{"a,b,c", ItemsNonEmpty, 3},
		{"a,b,", ItemsRaw, 3},
		{"a,b,", ItemsNonEmpty, 2},
		{",a,,b", ItemsRaw, 4},
		{",a,,b", ItemsNonEmpty, 2},
		{" , ", ItemsNonEmpty, 0},
		{",", ItemsRaw, 2},
	}
	for _, tt := range tests {
		if got := Items(tt.value, ",", tt.mode); got != tt.want {
			t.Errorf("Items(%q, %v) = %d, want %d", tt.value, tt.mode, got, tt.want)
		}
	}
}

func TestItemsCountsWellFormedList(t *testing.T) {
	value := "health"
	for n := 1; n <= 20; n++ {
		if got := Items(value, ",", ItemsRaw); got != n {
			t.Fatalf("%d items: got %d", n, got)
		}
		value += ",item"
	}
}

func TestSplit(t *testing.T) {
	got := Split(" a , ,b,", ",", ItemsNonEmpty)
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("Split mismatch (-want +got):\n%s", diff)
	}
	got = Split("a;b", ";", ItemsRaw)
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("Split mismatch (-want +got):\n%s", diff)
	}
	if got := Split("", ",", ItemsRaw); got != nil {
		t.Errorf("Expected nil for empty value, got %v", got)
	}
}

func TestCustomDelimiter(t *testing.T) {
	p := Policy{Multi: []string{"tags"}, Delimiter: "|"}
	if got := Score(Fields{"tags": "a|b|c,d"}, p); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"tags", TagPolicy(), false},
		{"descriptive", DescriptivePolicy(), false},
		{"empty", Policy{}, true},
		{"blank name", Policy{Scalar: []string{" "}}, true},
		{"duplicate across kinds", Policy{Scalar: []string{"tags"}, Multi: []string{"tags"}}, true},
		{"bad mode", Policy{Scalar: []string{"a"}, Items: ItemMode(7)}, true},
	}
	for _, tt := range tests {
		err := tt.policy.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestPolicyByName(t *testing.T) {
	for _, name := range []string{"tags", "descriptive", "scalar"} {
		p, err := PolicyByName(name)
		if err != nil {
			t.Fatalf("PolicyByName(%q): %v", name, err)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
	if _, err := PolicyByName("everything"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestParseItemMode(t *testing.T) {
	for in, want := range map[string]ItemMode{"": ItemsRaw, "raw": ItemsRaw, "Non-Empty": ItemsNonEmpty} {
		got, err := ParseItemMode(in)
		if err != nil || got != want {
			t.Errorf("ParseItemMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseItemMode("dedup"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
