package survival

import (
	"fmt"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/OasisYE/lifelines/dataset"
)

// createBenchmarkCohort builds a synthetic cohort with discrete durations
// so the number of regression steps stays bounded regardless of size.
func createBenchmarkCohort(b *testing.B, subjects, covariates int) *dataset.Table {
	b.Helper()
	rng := rand.New(rand.NewSource(42))

	names := make([]string, 0, covariates+2)
	cols := make([][]float64, 0, covariates+2)
	for j := 0; j < covariates; j++ {
		col := make([]float64, subjects)
		for i := range col {
			col[i] = rng.Float64()*2.0 - 1.0
		}
		names = append(names, fmt.Sprintf("x%d", j))
		cols = append(cols, col)
	}

	durations := make([]float64, subjects)
	events := make([]float64, subjects)
	for i := 0; i < subjects; i++ {
		durations[i] = float64(rng.Intn(20) + 1)
		if rng.Float64() < 0.8 {
			events[i] = 1
		}
	}
	names = append(names, "T", "E")
	cols = append(cols, durations, events)

	tbl, err := dataset.FromColumns(names, cols)
	if err != nil {
		b.Fatal(err)
	}
	return tbl
}

func BenchmarkAalenAdditiveFitterFit(b *testing.B) {
	sizes := []struct {
		name       string
		subjects   int
		covariates int
	}{
		{"Small_100x3", 100, 3},
		{"Medium_1000x5", 1000, 5},
		{"Large_5000x10", 5000, 10},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			tbl := createBenchmarkCohort(b, size.subjects, size.covariates)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				aaf, err := NewAalenAdditiveFitter(WithCoefPenalizer(0.5))
				if err != nil {
					b.Fatal(err)
				}
				if err := aaf.Fit(tbl, "T", WithEventColumn("E")); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPredictCumulativeHazard(b *testing.B) {
	tbl := createBenchmarkCohort(b, 1000, 5)
	aaf, err := NewAalenAdditiveFitter(WithCoefPenalizer(0.5))
	if err != nil {
		b.Fatal(err)
	}
	if err := aaf.Fit(tbl, "T", WithEventColumn("E")); err != nil {
		b.Fatal(err)
	}

	rng := rand.New(rand.NewSource(7))
	X := mat.NewDense(100, 5, nil)
	for i := 0; i < 100; i++ {
		for j := 0; j < 5; j++ {
			X.Set(i, j, rng.Float64()*2.0-1.0)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := aaf.PredictCumulativeHazard(X); err != nil {
			b.Fatal(err)
		}
	}
}
