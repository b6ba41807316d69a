package profiler

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peekknuf/metastats/internal/score"
)

func testRecords() []score.Record {
	return []score.Record{
		score.Fields{"description": "Crime incidents", "categories": "Public Safety,Police", "tags": "crime"},
		score.Fields{"description": "", "categories": "Public Safety", "tags": ""},
		score.Fields{"description": "  ", "categories": "", "tags": "parks,,trees"},
		score.Fields{},
	}
}

func TestProfiler(t *testing.T) {
	policy := score.Policy{
		Scalar: []string{"description"},
		Multi:  []string{"categories", "tags"},
	}
	p := NewProfiler(policy)
	scores := p.Profile(testRecords())

	if diff := cmp.Diff([]int{4, 1, 3, 0}, scores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
	if p.RecordCount != 4 {
		t.Errorf("Expected 4 records, got %d", p.RecordCount)
	}

	desc, ok := p.Field("description")
	if !ok {
		t.Fatal("description stats missing")
	}
	if desc.Populated != 1 || desc.Empty != 3 {
		t.Errorf("description: expected 1 populated 3 empty, got %d %d", desc.Populated, desc.Empty)
	}

	cats, _ := p.Field("categories")
	if cats.Populated != 2 || cats.Items != 3 || cats.Distinct != 2 {
		t.Errorf("categories: expected populated 2 items 3 distinct 2, got %d %d %d",
			cats.Populated, cats.Items, cats.Distinct)
	}
	if cats.DistinctEstimate != 2 {
		t.Errorf("categories: expected estimate 2, got %d", cats.DistinctEstimate)
	}

	tags, _ := p.Field("tags")
	// Raw mode counts the empty item but it is not a distinct tag.
	if tags.Items != 4 || tags.Distinct != 3 {
		t.Errorf("tags: expected items 4 distinct 3, got %d %d", tags.Items, tags.Distinct)
	}

	wantTop := []ValueCount{{"Public Safety", 2}, {"Police", 1}}
	if diff := cmp.Diff(wantTop, cats.Top(5)); diff != "" {
		t.Errorf("top categories mismatch (-want +got):\n%s", diff)
	}
	if got := cats.Top(1); len(got) != 1 || got[0].Value != "Public Safety" {
		t.Errorf("Top(1) = %v", got)
	}

	names := make([]string, len(p.FieldStats))
	for i, fs := range p.FieldStats {
		names[i] = fs.Name
	}
	if diff := cmp.Diff(policy.Fields(), names); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreStats(t *testing.T) {
	p := NewProfiler(score.TagPolicy())
	p.Profile(testRecords())

	s := p.Scores
	if s.Count != 4 || s.Min != 0 || s.Max != 3 || s.Zero != 1 {
		t.Errorf("unexpected score stats %+v", s)
	}
	if math.Abs(s.Mean-1.75) > 1e-9 {
		t.Errorf("Expected mean 1.75, got %f", s.Mean)
	}
	// scores 3,1,3,0: sample variance = 2.25
	if math.Abs(s.Std-1.5) > 1e-9 {
		t.Errorf("Expected std 1.5, got %f", s.Std)
	}
}

func TestProgressCallback(t *testing.T) {
	p := NewProfiler(score.TagPolicy())
	var calls []int
	p.Progress = func(done, total int) {
		if total != 4 {
			t.Errorf("Expected total 4, got %d", total)
		}
		calls = append(calls, done)
	}
	p.Profile(testRecords())
	if diff := cmp.Diff([]int{1, 2, 3, 4}, calls); diff != "" {
		t.Errorf("progress mismatch:\n%s", diff)
	}
}

func TestCalculateQuality(t *testing.T) {
	p := NewProfiler(score.Policy{Scalar: []string{"description"}, Multi: []string{"categories"}})
	p.Profile(testRecords())
	metrics := p.CalculateQuality()

	if metrics.TotalRecords != 4 {
		t.Errorf("Expected 4 records, got %d", metrics.TotalRecords)
	}
	// 3 empty descriptions + 2 empty categories out of 8 values.
	if math.Abs(metrics.EmptyPercentage-62.5) > 0.01 {
		t.Errorf("Expected empty percentage 62.5, got %f", metrics.EmptyPercentage)
	}
	if math.Abs(metrics.DistinctRatio-2.0/3.0) > 0.01 {
		t.Errorf("Expected distinct ratio ~0.667, got %f", metrics.DistinctRatio)
	}

	empty := NewProfiler(score.TagPolicy()).CalculateQuality()
	if empty.EmptyPercentage != 0 || empty.TotalRecords != 0 {
		t.Errorf("Expected zero metrics for no records, got %+v", empty)
	}
}

func TestPredicates(t *testing.T) {
	records := testRecords()
	tests := []struct {
		name string
		pred Predicate
		want Ratio
	}{
		{"description", HasField("description"), Ratio{1, 4}},
		{"categories or tags", HasAny("categories", "tags"), Ratio{3, 4}},
		{"categories and tags", HasAll("categories", "tags"), Ratio{1, 4}},
		{"nothing", HasAll(), Ratio{0, 4}},
	}
	for _, tt := range tests {
		if got := CountWhere(records, tt.pred); got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
	if got := HasField("x")(nil); got {
		t.Error("nil record should not have fields")
	}
}

func TestRatioPercent(t *testing.T) {
	if got := (Ratio{Count: 1, Total: 4}).Percent(); got != 25 {
		t.Errorf("Expected 25, got %f", got)
	}
	if got := (Ratio{}).Percent(); got != 0 {
		t.Errorf("Expected 0 for empty total, got %f", got)
	}
}

func TestDistinctItems(t *testing.T) {
	records := []score.Record{
		score.Fields{"categories": "Health,Education"},
		score.Fields{"categories": ""},
		score.Fields{"categories": "Health, ,"},
		nil,
	}
	fs := DistinctItems(records, "categories", ",")
	if fs.Distinct != 2 {
		t.Errorf("Expected 2 distinct categories, got %d", fs.Distinct)
	}
	if fs.Populated != 2 || fs.Empty != 2 {
		t.Errorf("Expected 2 populated 2 empty, got %d %d", fs.Populated, fs.Empty)
	}
	if fs.Items != 3 {
		t.Errorf("Expected 3 items, got %d", fs.Items)
	}
}
