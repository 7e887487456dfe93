package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
)

type csvWriter struct{}

func (csvWriter) Format() Format { return CSV }

// Write emits a header row of column names followed by one record per row.
// Missing cells are empty fields.
func (csvWriter) Write(w io.Writer, t *dataset.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.Rows; i++ {
		if err := cw.Write(t.Record(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a CSV with a header row into a table. Empty fields become
// missing cells. A column is numeric when it has at least one value and every
// non-empty value parses as a float.
func ReadCSV(r io.Reader) (*dataset.Table, error) {
	return ReadDelimited(r, ',')
}

// ReadDelimited is ReadCSV with a custom field separator such as ';' or '\t'.
func ReadDelimited(r io.Reader, comma rune) (*dataset.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.New(0), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return fromRecords(header, rows)
}

// fromRecords builds a table from a header and ragged rows, inferring each
// column's kind. Short rows are padded with missing cells and cells beyond the
// header are dropped.
func fromRecords(header []string, rows [][]string) (*dataset.Table, error) {
	t := dataset.New(len(rows))
	cols := make([]dataset.Column, 0, len(header))
	seen := map[string]int{}
	for j, h := range header {
		raw := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				raw[i] = rec[j]
			}
		}
		cols = append(cols, inferColumn(headerName(h, j, seen), raw))
	}
	if err := t.Append(cols...); err != nil {
		return nil, err
	}
	return t, nil
}

// headerName trims h, names blank headers column_N and suffixes repeats
// until the name is unused.
func headerName(h string, j int, seen map[string]int) string {
	base := strings.TrimSpace(h)
	if base == "" {
		base = "column_" + strconv.Itoa(j+1)
	}
	name := base
	for n := seen[base] + 1; seen[name] > 0; n++ {
		name = base + "_" + strconv.Itoa(n)
	}
	seen[base]++
	if name != base {
		seen[name]++
	}
	return name
}

func inferColumn(name string, raw []string) dataset.Column {
	nums := make([]float64, len(raw))
	numeric, seen := true, false
	for i, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen = true
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = x
	}
	var c dataset.Column
	if numeric && seen {
		c = dataset.NewNumericColumn(name, nums)
	} else {
		c = dataset.NewTextColumn(name, raw)
	}
	for i, v := range raw {
		if strings.TrimSpace(v) == "" {
			c.SetNull(i)
		}
	}
	return c
}
