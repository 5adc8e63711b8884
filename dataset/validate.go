package dataset

import (
	"fmt"
	"math"

	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// CheckValues scans every cell for NaN or infinite values and returns a
// ValueError naming the first offending column and row. Models call this
// before any numeric work so bad inputs fail loudly instead of propagating
// through matrix algebra.
func (t *Table) CheckValues() error {
	for j, col := range t.cols {
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return scierr.NewValueError("Table.CheckValues",
					fmt.Sprintf("column %q contains a non-finite value (%v) at row %d", t.names[j], v, i))
			}
		}
	}
	return nil
}
