package survival

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/OasisYE/lifelines/dataset"
)

// Example demonstrates fitting an additive hazard model to a small
// single-covariate cohort and reading predictions back out.
func ExampleAalenAdditiveFitter() {
	// Six subjects under constant unit exposure, one death per week
	tbl, err := dataset.FromColumns(
		[]string{"exposure", "week"},
		[][]float64{
			{1, 1, 1, 1, 1, 1},
			{1, 2, 3, 4, 5, 6},
		},
	)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	// The exposure column already plays the role of a baseline, so the
	// implicit intercept is turned off
	aaf, err := NewAalenAdditiveFitter(WithFitIntercept(false))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	// Without an event column every duration counts as an observed death
	if err := aaf.Fit(tbl, "week"); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	times, err := aaf.EventTimes()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("event times:", times)

	// Median survival time for a subject under unit exposure
	median, err := aaf.PredictMedian(mat.NewDense(1, 1, []float64{1}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("median survival time: %.0f\n", median.AtVec(0))

	// Output:
	// event times: [1 2 3 4 5 6]
	// median survival time: 4
}
