// Package dataset provides a small named-column table of float64 values,
// the input format consumed by the survival regression fitters.
//
// A Table is immutable from the caller's point of view: accessors return
// copies, and the mutation helpers (WithColumn, SortBy, Select, Drop)
// return new tables instead of modifying the receiver.
package dataset

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// Table is a rectangular collection of float64 columns identified by name.
// Column order is preserved from construction.
type Table struct {
	names []string
	index map[string]int
	cols  [][]float64
	n     int
}

func newIndex(names []string, op string) (map[string]int, error) {
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, scierr.NewValueError(op, fmt.Sprintf("duplicate column name %q", name))
		}
		index[name] = i
	}
	return index, nil
}

// NewTable builds a table from row-major data. Every row must have one
// value per column name.
func NewTable(names []string, rows [][]float64) (*Table, error) {
	index, err := newIndex(names, "dataset.NewTable")
	if err != nil {
		return nil, err
	}

	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, scierr.NewDimensionError("dataset.NewTable", len(names), len(row), 1)
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}

	return &Table{names: append([]string(nil), names...), index: index, cols: cols, n: len(rows)}, nil
}

// FromColumns builds a table from column-major data. All columns must have
// the same length.
func FromColumns(names []string, columns [][]float64) (*Table, error) {
	if len(names) != len(columns) {
		return nil, scierr.NewDimensionError("dataset.FromColumns", len(names), len(columns), 1)
	}
	index, err := newIndex(names, "dataset.FromColumns")
	if err != nil {
		return nil, err
	}

	n := 0
	if len(columns) > 0 {
		n = len(columns[0])
	}
	cols := make([][]float64, len(columns))
	for j, col := range columns {
		if len(col) != n {
			return nil, scierr.NewDimensionError("dataset.FromColumns", n, len(col), 0)
		}
		cols[j] = append([]float64(nil), col...)
	}

	return &Table{names: append([]string(nil), names...), index: index, cols: cols, n: n}, nil
}

// FromMatrix builds a table from a gonum matrix, one name per column.
func FromMatrix(names []string, m mat.Matrix) (*Table, error) {
	r, c := m.Dims()
	if len(names) != c {
		return nil, scierr.NewDimensionError("dataset.FromMatrix", c, len(names), 1)
	}
	index, err := newIndex(names, "dataset.FromMatrix")
	if err != nil {
		return nil, err
	}

	cols := make([][]float64, c)
	for j := 0; j < c; j++ {
		cols[j] = make([]float64, r)
		for i := 0; i < r; i++ {
			cols[j][i] = m.At(i, j)
		}
	}

	return &Table{names: append([]string(nil), names...), index: index, cols: cols, n: r}, nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.n
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Col returns a copy of the named column.
func (t *Table) Col(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, scierr.NewValueError("Table.Col", fmt.Sprintf("unknown column %q", name))
	}
	return append([]float64(nil), t.cols[j]...), nil
}

// Row returns a copy of row i in column order.
func (t *Table) Row(i int) ([]float64, error) {
	if i < 0 || i >= t.n {
		return nil, scierr.NewValueError("Table.Row", fmt.Sprintf("row index %d out of range [0, %d)", i, t.n))
	}
	row := make([]float64, len(t.cols))
	for j, col := range t.cols {
		row[j] = col[i]
	}
	return row, nil
}

// Matrix returns the table contents as a dense rows-by-columns matrix,
// or nil when the table has no rows or no columns.
func (t *Table) Matrix() *mat.Dense {
	if t.n == 0 || len(t.cols) == 0 {
		return nil
	}
	m := mat.NewDense(t.n, len(t.cols), nil)
	for j, col := range t.cols {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}

// Select returns a new table holding only the named columns, in the order
// given.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([][]float64, len(names))
	for k, name := range names {
		j, ok := t.index[name]
		if !ok {
			return nil, scierr.NewValueError("Table.Select", fmt.Sprintf("unknown column %q", name))
		}
		cols[k] = append([]float64(nil), t.cols[j]...)
	}
	index, err := newIndex(names, "Table.Select")
	if err != nil {
		return nil, err
	}
	return &Table{names: append([]string(nil), names...), index: index, cols: cols, n: t.n}, nil
}

// Drop returns a new table without the named columns.
func (t *Table) Drop(names ...string) (*Table, error) {
	dropped := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := t.index[name]; !ok {
			return nil, scierr.NewValueError("Table.Drop", fmt.Sprintf("unknown column %q", name))
		}
		dropped[name] = true
	}

	kept := make([]string, 0, len(t.names))
	for _, name := range t.names {
		if !dropped[name] {
			kept = append(kept, name)
		}
	}
	return t.Select(kept...)
}

// WithColumn returns a new table with the named column replaced, or
// appended as the last column if no column with that name exists.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if len(values) != t.n {
		return nil, scierr.NewDimensionError("Table.WithColumn", t.n, len(values), 0)
	}

	names := append([]string(nil), t.names...)
	cols := make([][]float64, len(t.cols))
	for j, col := range t.cols {
		cols[j] = append([]float64(nil), col...)
	}

	if j, ok := t.index[name]; ok {
		cols[j] = append([]float64(nil), values...)
	} else {
		names = append(names, name)
		cols = append(cols, append([]float64(nil), values...))
	}

	index, err := newIndex(names, "Table.WithColumn")
	if err != nil {
		return nil, err
	}
	return &Table{names: names, index: index, cols: cols, n: t.n}, nil
}

// SortBy returns a new table with rows sorted by the named column in
// ascending order. The sort is stable: rows with equal keys keep their
// relative order.
func (t *Table) SortBy(name string) (*Table, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, scierr.NewValueError("Table.SortBy", fmt.Sprintf("unknown column %q", name))
	}

	key := t.cols[j]
	perm := make([]int, t.n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return key[perm[a]] < key[perm[b]]
	})

	cols := make([][]float64, len(t.cols))
	for c, col := range t.cols {
		sorted := make([]float64, t.n)
		for i, p := range perm {
			sorted[i] = col[p]
		}
		cols[c] = sorted
	}

	index, err := newIndex(t.names, "Table.SortBy")
	if err != nil {
		return nil, err
	}
	return &Table{names: append([]string(nil), t.names...), index: index, cols: cols, n: t.n}, nil
}
