// Package dataset loads the historical candidate dataset used by the
// analytics aggregator.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Unknown replaces every missing cell so that groups keep their full
// denominators.
const Unknown = "Unknown"

var missingTokens = map[string]struct{}{
	"":      {},
	"na":    {},
	"n/a":   {},
	"nan":   {},
	"null":  {},
	"none":  {},
	"<na>":  {},
	"#n/a":  {},
	"nil":   {},
	"-nan":  {},
	"<nil>": {},
}

// Dataset is an immutable table of string cells keyed by column name.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a dataset from a header and rows, applying the same cleaning
// as ReadCSV.
func New(columns []string, rows [][]string) (*Dataset, error) {
	keep := make([]int, 0, len(columns))
	kept := make([]string, 0, len(columns))
	index := make(map[string]int, len(columns))

	for i, name := range columns {
		name = strings.TrimSpace(name)
		if isIdentifier(name) {
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("column %d has no name", i+1)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = len(kept)
		kept = append(kept, name)
		keep = append(keep, i)
	}

	cleaned := make([][]string, 0, len(rows))
	for n, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", n+1, len(row), len(columns))
		}
		out := make([]string, len(keep))
		for j, i := range keep {
			out[j] = clean(row[i])
		}
		cleaned = append(cleaned, out)
	}

	return &Dataset{columns: kept, index: index, rows: cleaned}, nil
}

// ReadCSV reads a CSV document with a header row.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("dataset has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	return New(header, rows)
}

// LoadCSV reads the CSV file at path.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column's cells.
func (d *Dataset) Column(name string) ([]string, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(d.rows))
	for n, row := range d.rows {
		out[n] = row[i]
	}
	return out, true
}

func (d *Dataset) Len() int { return len(d.rows) }

// isIdentifier matches identifier-like columns such as enrollee_id.
func isIdentifier(name string) bool {
	return strings.Contains(strings.ToLower(name), "id")
}

func clean(cell string) string {
	cell = strings.TrimSpace(cell)
	if _, missing := missingTokens[strings.ToLower(cell)]; missing {
		return Unknown
	}
	return cell
}
