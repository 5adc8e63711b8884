package dataset_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OasisYE/lifelines/dataset"
	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// TestNewTable_Basic verifies row-major construction and the inspection
// accessors.
func TestNewTable_Basic(t *testing.T) {
	tbl, err := dataset.NewTable([]string{"T", "E", "x"}, [][]float64{
		{5, 1, 0.2},
		{3, 1, -1.0},
		{9, 0, 4.5},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"T", "E", "x"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.True(t, tbl.HasColumn("E"))
	assert.False(t, tbl.HasColumn("missing"))

	col, err := tbl.Col("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, -1.0, 4.5}, col)

	row, err := tbl.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, -1.0}, row)
}

// TestNewTable_Errors verifies duplicate names and ragged rows are rejected.
func TestNewTable_Errors(t *testing.T) {
	_, err := dataset.NewTable([]string{"a", "a"}, nil)
	var ve *scierr.ValueError
	require.True(t, scierr.As(err, &ve), "duplicate names must yield ValueError")
	assert.Contains(t, ve.Error(), "duplicate column")

	_, err = dataset.NewTable([]string{"a", "b"}, [][]float64{{1, 2}, {3}})
	var de *scierr.DimensionError
	require.True(t, scierr.As(err, &de), "ragged rows must yield DimensionError")
}

// TestFromColumns verifies column-major construction and length checking.
func TestFromColumns(t *testing.T) {
	tbl, err := dataset.FromColumns([]string{"T", "E"}, [][]float64{
		{2, 4, 6},
		{1, 0, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	durations, err := tbl.Col("T")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6}, durations)

	_, err = dataset.FromColumns([]string{"T", "E"}, [][]float64{{1, 2}, {3}})
	var de *scierr.DimensionError
	require.True(t, scierr.As(err, &de), "uneven columns must yield DimensionError")
}

// TestFromMatrix verifies matrix construction and the Matrix round trip.
func TestFromMatrix(t *testing.T) {
	src, err := dataset.NewTable([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	tbl, err := dataset.FromMatrix([]string{"a", "b"}, src.Matrix())
	require.NoError(t, err)

	m := tbl.Matrix()
	require.NotNil(t, m)
	assert.Equal(t, 2.0, m.At(0, 1))
	assert.Equal(t, 3.0, m.At(1, 0))

	_, err = dataset.FromMatrix([]string{"only"}, src.Matrix())
	var de *scierr.DimensionError
	require.True(t, scierr.As(err, &de), "name/width mismatch must yield DimensionError")
}

// TestTable_SelectDrop verifies projection by name in both directions.
func TestTable_SelectDrop(t *testing.T) {
	tbl, err := dataset.NewTable([]string{"T", "E", "x1", "x2"}, [][]float64{
		{5, 1, 0.1, 0.2},
		{3, 0, 0.3, 0.4},
	})
	require.NoError(t, err)

	sel, err := tbl.Select("x2", "x1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x2", "x1"}, sel.Columns(), "Select must preserve requested order")

	dropped, err := tbl.Drop("T", "E")
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2"}, dropped.Columns())

	_, err = tbl.Select("nope")
	assert.Error(t, err)
	_, err = tbl.Drop("nope")
	assert.Error(t, err)
}

// TestTable_WithColumn verifies replace, append and length validation.
func TestTable_WithColumn(t *testing.T) {
	tbl, err := dataset.NewTable([]string{"a"}, [][]float64{{1}, {2}})
	require.NoError(t, err)

	replaced, err := tbl.WithColumn("a", []float64{10, 20})
	require.NoError(t, err)
	col, _ := replaced.Col("a")
	assert.Equal(t, []float64{10, 20}, col)

	appended, err := tbl.WithColumn("b", []float64{7, 8})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, appended.Columns())

	// Receiver untouched.
	orig, _ := tbl.Col("a")
	assert.Equal(t, []float64{1, 2}, orig)
	assert.False(t, tbl.HasColumn("b"))

	_, err = tbl.WithColumn("c", []float64{1})
	var de *scierr.DimensionError
	require.True(t, scierr.As(err, &de), "short column must yield DimensionError")
}

// TestTable_SortByStable verifies ascending order and that ties keep their
// original relative order.
func TestTable_SortByStable(t *testing.T) {
	tbl, err := dataset.NewTable([]string{"T", "tag"}, [][]float64{
		{4, 0},
		{2, 1},
		{4, 2},
		{1, 3},
		{4, 4},
	})
	require.NoError(t, err)

	sorted, err := tbl.SortBy("T")
	require.NoError(t, err)

	durations, _ := sorted.Col("T")
	assert.Equal(t, []float64{1, 2, 4, 4, 4}, durations)

	tags, _ := sorted.Col("tag")
	assert.Equal(t, []float64{3, 1, 0, 2, 4}, tags, "equal keys must keep input order")

	// Original order is untouched.
	original, _ := tbl.Col("T")
	assert.Equal(t, []float64{4, 2, 4, 1, 4}, original)
}

// TestTable_AccessorsCopy verifies that mutating returned slices does not
// leak into the table.
func TestTable_AccessorsCopy(t *testing.T) {
	tbl, err := dataset.NewTable([]string{"a"}, [][]float64{{1}, {2}})
	require.NoError(t, err)

	col, _ := tbl.Col("a")
	col[0] = 99
	again, _ := tbl.Col("a")
	assert.Equal(t, 1.0, again[0])

	names := tbl.Columns()
	names[0] = "hacked"
	assert.Equal(t, "a", tbl.Columns()[0])
}

// TestFromRecords verifies header parsing and the non-numeric cell error.
func TestFromRecords(t *testing.T) {
	tbl, err := dataset.FromRecords([][]string{
		{"T", "E"},
		{"5", "1"},
		{"3.5", "0"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	durations, _ := tbl.Col("T")
	assert.Equal(t, []float64{5, 3.5}, durations)

	_, err = dataset.FromRecords([][]string{
		{"T", "E"},
		{"5", "yes"},
	})
	var ve *scierr.ValueError
	require.True(t, scierr.As(err, &ve), "non-numeric cell must yield ValueError")
	assert.Contains(t, ve.Error(), `"E"`)

	_, err = dataset.FromRecords(nil)
	assert.Error(t, err, "missing header must error")
}

// TestCSVRoundTrip verifies ReadCSV/WriteCSV against each other.
func TestCSVRoundTrip(t *testing.T) {
	src := "T,E,x\n5,1,0.25\n3,0,-1\n"
	tbl, err := dataset.ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"T", "E", "x"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())

	var out strings.Builder
	require.NoError(t, tbl.WriteCSV(&out))

	back, err := dataset.ReadCSV(strings.NewReader(out.String()))
	require.NoError(t, err)
	xs, _ := back.Col("x")
	assert.Equal(t, []float64{0.25, -1}, xs)
}

// TestCheckValues verifies the NaN/Inf scan names the offending column.
func TestCheckValues(t *testing.T) {
	clean, err := dataset.NewTable([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.NoError(t, clean.CheckValues())

	dirty, err := dataset.NewTable([]string{"a", "b"}, [][]float64{{1, math.NaN()}, {3, 4}})
	require.NoError(t, err)
	err = dirty.CheckValues()
	var ve *scierr.ValueError
	require.True(t, scierr.As(err, &ve))
	assert.Contains(t, ve.Error(), `"b"`)

	infinite, err := dataset.NewTable([]string{"a"}, [][]float64{{math.Inf(1)}})
	require.NoError(t, err)
	assert.Error(t, infinite.CheckValues())
}
