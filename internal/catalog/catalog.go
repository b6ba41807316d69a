// Package catalog reads dataset metadata from an Open Data Link database or
// from CSV exports of its metadata table.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultPath is the database file used when nothing else is configured.
const DefaultPath = "opendatalink.sqlite"

// Columns lists the metadata table columns in table order.
var Columns = []string{
	"dataset_id",
	"name",
	"description",
	"attribution",
	"contact_email",
	"updated_at",
	"categories",
	"tags",
	"permalink",
}

// Metadata is a row of the metadata table. Categories and Tags keep their
// raw comma-delimited form.
type Metadata struct {
	DatasetID    string
	Name         string
	Description  string
	Attribution  string
	ContactEmail string
	UpdatedAt    string
	Categories   string
	Tags         string
	Permalink    string
}

// Field returns the value of a metadata column by name, or "" for unknown
// columns.
func (m Metadata) Field(name string) string {
	switch name {
	case "dataset_id":
		return m.DatasetID
	case "name":
		return m.Name
	case "description":
		return m.Description
	case "attribution":
		return m.Attribution
	case "contact_email":
		return m.ContactEmail
	case "updated_at":
		return m.UpdatedAt
	case "categories":
		return m.Categories
	case "tags":
		return m.Tags
	case "permalink":
		return m.Permalink
	}
	return ""
}

// set assigns a column by name and reports whether it is known.
func (m *Metadata) set(name, value string) bool {
	switch name {
	case "dataset_id":
		m.DatasetID = value
	case "name":
		m.Name = value
	case "description":
		m.Description = value
	case "attribution":
		m.Attribution = value
	case "contact_email":
		m.ContactEmail = value
	case "updated_at":
		m.UpdatedAt = value
	case "categories":
		m.Categories = value
	case "tags":
		m.Tags = value
	case "permalink":
		m.Permalink = value
	default:
		return false
	}
	return true
}

// DB is a read-only handle on the catalog database.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens the database at path read-only and checks that it is reachable.
// The caller must Close it.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}
	dsn := "file:" + path + "?" + url.Values{"mode": {"ro"}}.Encode()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &DB{db: db, path: path}, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close releases the handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// Metadata returns every row of the metadata table ordered by dataset ID.
// NULL columns read as "".
func (db *DB) Metadata(ctx context.Context) ([]Metadata, error) {
	rows, err := db.db.QueryContext(ctx, `
	SELECT
		dataset_id,
		IFNULL(name, ''),
		IFNULL(description, ''),
		IFNULL(attribution, ''),
		IFNULL(contact_email, ''),
		IFNULL(updated_at, ''),
		IFNULL(categories, ''),
		IFNULL(tags, ''),
		IFNULL(permalink, '')
	FROM metadata
	ORDER BY dataset_id`)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	var out []Metadata
	for rows.Next() {
		var m Metadata
		err := rows.Scan(
			&m.DatasetID,
			&m.Name,
			&m.Description,
			&m.Attribution,
			&m.ContactEmail,
			&m.UpdatedAt,
			&m.Categories,
			&m.Tags,
			&m.Permalink)
		if err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return out, nil
}

// CountDatasets returns the number of rows in the metadata table.
func (db *DB) CountDatasets(ctx context.Context) (int, error) {
	return db.count(ctx, "metadata")
}

// CountColumns returns the number of rows in the column_sketches table.
func (db *DB) CountColumns(ctx context.Context) (int, error) {
	return db.count(ctx, "column_sketches")
}

func (db *DB) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := db.db.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// ColumnSummary describes the column_sketches table.
type ColumnSummary struct {
	Columns          int
	Datasets         int
	MeanDistinct     float64
	MaxDistinct      int
	EmptyColumnNames int
}

// ColumnSummary aggregates the column sketches.
func (db *DB) ColumnSummary(ctx context.Context) (ColumnSummary, error) {
	var s ColumnSummary
	err := db.db.QueryRowContext(ctx, `
	SELECT
		count(*),
		count(DISTINCT dataset_id),
		IFNULL(avg(distinct_count), 0),
		IFNULL(max(distinct_count), 0),
		IFNULL(sum(CASE WHEN trim(IFNULL(column_name, '')) = '' THEN 1 ELSE 0 END), 0)
	FROM column_sketches`).Scan(
		&s.Columns,
		&s.Datasets,
		&s.MeanDistinct,
		&s.MaxDistinct,
		&s.EmptyColumnNames)
	if err != nil {
		return ColumnSummary{}, fmt.Errorf("summarize column_sketches: %w", err)
	}
	return s, nil
}

// HasTable reports whether the database contains the named table.
func (db *DB) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := db.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		strings.TrimSpace(name)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", name, err)
	}
	return n > 0, nil
}
