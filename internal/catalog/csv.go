package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoHeader is returned for CSV exports without a header row.
var ErrNoHeader = errors.New("missing header row")

// ReadCSV loads metadata rows from a CSV export of the metadata table. The
// header names the columns; unknown columns are ignored and missing ones read
// as "".
func ReadCSV(path string) ([]Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows, err := DecodeCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// DecodeCSV reads metadata rows from r.
func DecodeCSV(r io.Reader) ([]Metadata, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}
	for i, h := range headers {
		h = strings.TrimPrefix(h, "\ufeff")
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []Metadata
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		var m Metadata
		for i, value := range record {
			if i >= len(headers) {
				break
			}
			m.set(headers[i], value)
		}
		out = append(out, m)
	}
	return out, nil
}
