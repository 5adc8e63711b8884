package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// FromRecords builds a table from string records. The first record is the
// header; every following record must parse as float64 values. Non-numeric
// cells are rejected with a ValueError naming the offending column and row.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, scierr.NewValueError("dataset.FromRecords", "no header record")
	}

	header := records[0]
	index, err := newIndex(header, "dataset.FromRecords")
	if err != nil {
		return nil, err
	}

	n := len(records) - 1
	cols := make([][]float64, len(header))
	for j := range cols {
		cols[j] = make([]float64, n)
	}

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, scierr.NewDimensionError("dataset.FromRecords", len(header), len(record), 1)
		}
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, scierr.NewValueError("dataset.FromRecords",
					fmt.Sprintf("column %q row %d: cannot parse %q as a number", header[j], i, cell))
			}
			cols[j][i] = v
		}
	}

	return &Table{names: append([]string(nil), header...), index: index, cols: cols, n: n}, nil
}

// ReadCSV reads a comma-separated table with a header row from r.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, scierr.Wrap(err, "dataset.ReadCSV: malformed csv input")
	}
	return FromRecords(records)
}

// WriteCSV writes the table to w as comma-separated values with a header
// row. Values are formatted with strconv.FormatFloat 'g'.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.names); err != nil {
		return scierr.Wrap(err, "dataset.WriteCSV: writing header")
	}

	record := make([]string, len(t.cols))
	for i := 0; i < t.n; i++ {
		for j, col := range t.cols {
			record[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return scierr.Wrap(err, "dataset.WriteCSV: writing record")
		}
	}

	cw.Flush()
	return cw.Error()
}
