package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peekknuf/metastats/internal/bucket"
	"github.com/peekknuf/metastats/internal/score"
)

func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadErr(t, content)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func loadErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metastats.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return Load(path)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(DatabaseEnv, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Database != "opendatalink.sqlite" {
		t.Errorf("database: got %q", cfg.Database)
	}
	if cfg.Output.Plot != DefaultPlot || cfg.Output.Top != DefaultTop {
		t.Errorf("output defaults: got %+v", cfg.Output)
	}
	p, err := cfg.ScoringPolicy()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(score.TagPolicy(), p); diff != "" {
		t.Errorf("default policy mismatch (-want +got):\n%s", diff)
	}
	specs, err := cfg.BucketSpecs()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(bucket.Default(), specs); diff != "" {
		t.Errorf("default buckets mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Ratios) != 2 {
		t.Errorf("Expected 2 default ratios, got %d", len(cfg.Ratios))
	}
}

func TestLoad_Valid(t *testing.T) {
	t.Setenv(DatabaseEnv, "")
	cfg := loadFromString(t, `
database: /data/odl.sqlite
policy:
  scalar: [description]
  multi: [categories, tags]
  items: non-empty
buckets: ["0", "1", "2", "3-5", ">5"]
ratios:
  - label: Fully annotated
    all_of: [description, categories]
output:
  plot: "-"
  markdown: true
  top: 3
`)
	if cfg.Database != "/data/odl.sqlite" {
		t.Errorf("database: got %q", cfg.Database)
	}
	p, err := cfg.ScoringPolicy()
	if err != nil {
		t.Fatal(err)
	}
	want := score.Policy{
		Scalar: []string{"description"},
		Multi:  []string{"categories", "tags"},
		Items:  score.ItemsNonEmpty,
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("policy mismatch (-want +got):\n%s", diff)
	}
	specs, err := cfg.BucketSpecs()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bucket.New(specs...); err != nil {
		t.Errorf("configured buckets should validate: %v", err)
	}
	if len(cfg.Ratios) != 1 || cfg.Ratios[0].Label != "Fully annotated" {
		t.Fatalf("ratios: got %+v", cfg.Ratios)
	}
	pred := cfg.Ratios[0].Predicate()
	if pred(score.Fields{"description": "x"}) || !pred(score.Fields{"description": "x", "categories": "c"}) {
		t.Error("all_of predicate misbehaves")
	}
	if !cfg.Output.Markdown || cfg.Output.Top != 3 || cfg.Output.Plot != "-" {
		t.Errorf("output: got %+v", cfg.Output)
	}
}

func TestLoad_EnvOverridesDatabase(t *testing.T) {
	t.Setenv(DatabaseEnv, "/env/odl.sqlite")
	cfg := loadFromString(t, "database: /file/odl.sqlite\n")
	if cfg.Database != "/env/odl.sqlite" {
		t.Errorf("database: got %q, want env value", cfg.Database)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(DatabaseEnv, "")
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "buckets: [", "parse yaml"},
		{"unknown preset", "policy: {preset: everything}", "unknown scoring policy"},
		{"bad item mode", "policy: {items: dedup}", "unknown item mode"},
		{"duplicate field", "policy: {scalar: [tags], multi: [tags]}", "declared twice"},
		{"bad bucket", `buckets: ["0", "x"]`, "bad bound"},
		{"ratio without label", "ratios: [{any_of: [tags]}]", "label is required"},
		{"ratio with both", "ratios: [{label: x, any_of: [a], all_of: [b]}]", "exactly one"},
		{"negative top", "output: {top: -1}", "top"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadErr(t, tt.content)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
