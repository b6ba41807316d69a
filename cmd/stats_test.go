package cmd

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peekknuf/metastats/internal/bucket"
)

func createCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opendatalink.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, s := range []string{
		`CREATE TABLE metadata (dataset_id TEXT, name TEXT, description TEXT, attribution TEXT,
			contact_email TEXT, updated_at TEXT, categories TEXT, tags TEXT, permalink TEXT)`,
		`CREATE TABLE column_sketches (column_id TEXT, dataset_id TEXT, column_name TEXT,
			distinct_count INTEGER, minhash BLOB, sample BLOB)`,
		`INSERT INTO metadata VALUES
			('a', 'A', 'desc', '', '', '', 'Health,Education', 'covid', ''),
			('b', 'B', '', '', '', '', '', '', ''),
			('c', 'C', 'desc', '', '', '', 'Health', 'x,y,z,w,v,u,t,s,r,q', '')`,
		`INSERT INTO column_sketches VALUES ('a-0', 'a', 'id', 3, x'', '[]')`,
	} {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	return path
}

func TestStatsCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENDATALINK_DB", "")
	dir := t.TempDir()
	out := filepath.Join(dir, "report.txt")
	png := filepath.Join(dir, "tagcounts.png")

	rootCmd.SetArgs([]string{"stats",
		"--db", createCatalog(t),
		"--output", out,
		"--plot", png,
		"--progress=false",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)
	for _, want := range []string{
		"Number of datasets: 3",
		"Number of columns: 1",
		"Total number of categories: 2",
		"Datasets with description: 2 of 3 (66.67%)",
		"Datasets with categories or tags: 2 of 3 (66.67%)",
		"Most common categories:\n  Health (2)",
		">10",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if _, err := os.Stat(png); err != nil {
		t.Errorf("bar chart not written: %v", err)
	}
}

func TestStatsRejectsBucketLayoutBeforeOpening(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	missing := filepath.Join(t.TempDir(), "absent.sqlite")
	rootCmd.SetArgs([]string{"stats", "--db", missing, "--bucket", "1", "--bucket", ">1"})
	err := rootCmd.Execute()
	if !errors.Is(err, bucket.ErrConfiguration) {
		t.Fatalf("Expected configuration error, got %v", err)
	}
	if _, statErr := os.Stat(missing); !os.IsNotExist(statErr) {
		t.Error("database should not be opened for an invalid layout")
	}
}
