// Package lifelines provides survival analysis ("time-to-event" regression)
// for Go, built around Aalen's additive hazards model.
//
// The additive model expresses the hazard of an individual with covariates
// x_1...x_N as a sum of time-varying coefficient curves
//
//	h(t|x) = b_0(t) + b_1(t)·x_1 + ... + b_N(t)·x_N
//
// so the effect of every covariate is allowed to grow, shrink or change
// sign over time instead of being a single proportional constant.
//
// # Features
//
// - Right-censored durations with optional per-subject weights
// - Cumulative coefficient curves with pointwise confidence intervals
// - Survival, median, percentile and expectation predictions per subject
// - Kernel-smoothed hazard estimates and plotting to PNG/SVG/PDF
// - Concordance index scoring and versioned JSON model snapshots
// - CPU-parallel prediction paths for large inputs
//
// # Installation
//
// Install using go get:
//
//	go get github.com/OasisYE/lifelines
//
// # Quick Start
//
// Fit a model on a small table and predict median survival times:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "gonum.org/v1/gonum/mat"
//
//	    "github.com/OasisYE/lifelines/dataset"
//	    "github.com/OasisYE/lifelines/survival"
//	)
//
//	func main() {
//	    tbl, err := dataset.FromColumns(
//	        []string{"age", "duration", "observed"},
//	        [][]float64{
//	            {50, 61, 48, 70},
//	            {5, 3, 9, 8},
//	            {1, 1, 1, 0},
//	        },
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    aaf, err := survival.NewAalenAdditiveFitter()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := aaf.Fit(tbl, "duration", survival.WithEventColumn("observed")); err != nil {
//	        log.Fatal(err)
//	    }
//	    aaf.PrintSummary(os.Stdout, 3)
//
//	    median, err := aaf.PredictMedian(mat.NewDense(1, 1, []float64{55}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("median survival:", median.AtVec(0))
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - survival: the Aalen additive fitter, prediction, smoothing, plotting
//   - dataset: named-column numeric tables, CSV input and validation
//   - metrics: survival evaluation metrics (concordance index)
//   - core/model: fitted-state management, estimator interfaces, persistence
//   - core/parallel: parallel processing utilities
//   - pkg/errors: the library's error taxonomy and warning channel
//   - pkg/log: structured logging setup and helpers
//
// # Performance
//
// Fitting solves one small penalized regression per unique death time, so
// cost grows with the number of distinct event times rather than raw rows.
// Prediction and normalization paths parallelize automatically across CPU
// cores once inputs are large enough to pay for the goroutines.
//
// # License
//
// Released under the MIT License.
package lifelines
