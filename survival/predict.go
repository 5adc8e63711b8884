package survival

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"

	"github.com/OasisYE/lifelines/core/parallel"
	"github.com/OasisYE/lifelines/dataset"
	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// PredictCumulativeHazard returns one cumulative-hazard curve per subject,
// indexed by the training time index: a steps×m matrix for m input rows.
//
// The matrix variant is positional: X must carry the covariates in training
// order, without the intercept column (it is appended automatically when
// the model was fitted with one). Width mismatches yield a DimensionError.
// The result is nil when the model's time index is empty.
func (f *AalenAdditiveFitter) PredictCumulativeHazard(X mat.Matrix) (*mat.Dense, error) {
	if err := f.checkFitted("PredictCumulativeHazard"); err != nil {
		return nil, err
	}
	design, err := f.buildDesign(X, "PredictCumulativeHazard")
	if err != nil {
		return nil, err
	}
	return f.hazardCurves(design), nil
}

// PredictCumulativeHazardTable is the name-matched variant of
// PredictCumulativeHazard: columns are looked up by training name, extra
// columns (including a stray intercept column) are ignored, and order does
// not matter. Missing columns yield a ValueError.
func (f *AalenAdditiveFitter) PredictCumulativeHazardTable(t *dataset.Table) (*mat.Dense, error) {
	if err := f.checkFitted("PredictCumulativeHazardTable"); err != nil {
		return nil, err
	}
	design, err := f.tableDesign(t, "PredictCumulativeHazardTable")
	if err != nil {
		return nil, err
	}
	return f.hazardCurves(design), nil
}

// PredictSurvivalFunction returns exp(-H) of the predicted cumulative
// hazard: one survival curve per subject over the training time index.
// Curves are non-increasing within [0, 1]; steps where the estimated
// hazard dips are held flat rather than letting survival rise.
func (f *AalenAdditiveFitter) PredictSurvivalFunction(X mat.Matrix) (*mat.Dense, error) {
	cum, err := f.PredictCumulativeHazard(X)
	if err != nil {
		return nil, err
	}
	return survivalFromHazard(cum), nil
}

// PredictSurvivalFunctionTable is the name-matched variant of
// PredictSurvivalFunction.
func (f *AalenAdditiveFitter) PredictSurvivalFunctionTable(t *dataset.Table) (*mat.Dense, error) {
	cum, err := f.PredictCumulativeHazardTable(t)
	if err != nil {
		return nil, err
	}
	return survivalFromHazard(cum), nil
}

// PredictPercentile returns, per subject, the earliest time at which the
// predicted survival function drops to p or below. Curves that never reach
// p map to the last time of the index; an empty time index maps every
// subject to NaN.
func (f *AalenAdditiveFitter) PredictPercentile(X mat.Matrix, p float64) (*mat.VecDense, error) {
	if err := f.checkFitted("PredictPercentile"); err != nil {
		return nil, err
	}
	if p <= 0 || p >= 1 {
		return nil, scierr.NewValueError("AalenAdditiveFitter.PredictPercentile",
			fmt.Sprintf("percentile must be in (0, 1), got %v", p))
	}
	surv, err := f.PredictSurvivalFunction(X)
	if err != nil {
		return nil, err
	}
	m, _ := X.Dims()
	return f.percentileTimes(surv, m, p), nil
}

// PredictPercentileTable is the name-matched variant of PredictPercentile.
func (f *AalenAdditiveFitter) PredictPercentileTable(t *dataset.Table, p float64) (*mat.VecDense, error) {
	if err := f.checkFitted("PredictPercentileTable"); err != nil {
		return nil, err
	}
	if p <= 0 || p >= 1 {
		return nil, scierr.NewValueError("AalenAdditiveFitter.PredictPercentileTable",
			fmt.Sprintf("percentile must be in (0, 1), got %v", p))
	}
	surv, err := f.PredictSurvivalFunctionTable(t)
	if err != nil {
		return nil, err
	}
	return f.percentileTimes(surv, t.Len(), p), nil
}

// PredictMedian returns the median predicted survival time per subject.
func (f *AalenAdditiveFitter) PredictMedian(X mat.Matrix) (*mat.VecDense, error) {
	return f.PredictPercentile(X, 0.5)
}

// PredictMedianTable is the name-matched variant of PredictMedian.
func (f *AalenAdditiveFitter) PredictMedianTable(t *dataset.Table) (*mat.VecDense, error) {
	return f.PredictPercentileTable(t, 0.5)
}

// PredictExpectation returns the expected survival time per subject: the
// trapezoidal integral of the predicted survival curve over the time index.
// Curves that have not reached zero by the last observed time make this an
// underestimate of the true expectation.
func (f *AalenAdditiveFitter) PredictExpectation(X mat.Matrix) (*mat.VecDense, error) {
	if err := f.checkFitted("PredictExpectation"); err != nil {
		return nil, err
	}
	surv, err := f.PredictSurvivalFunction(X)
	if err != nil {
		return nil, err
	}
	m, _ := X.Dims()
	return f.expectationTimes(surv, m), nil
}

// PredictExpectationTable is the name-matched variant of PredictExpectation.
func (f *AalenAdditiveFitter) PredictExpectationTable(t *dataset.Table) (*mat.VecDense, error) {
	if err := f.checkFitted("PredictExpectationTable"); err != nil {
		return nil, err
	}
	surv, err := f.PredictSurvivalFunctionTable(t)
	if err != nil {
		return nil, err
	}
	return f.expectationTimes(surv, t.Len()), nil
}

// buildDesign widens a positional covariate matrix into the full design
// matrix used during fitting, appending the constant intercept column when
// the model carries one.
func (f *AalenAdditiveFitter) buildDesign(X mat.Matrix, method string) (*mat.Dense, error) {
	op := "AalenAdditiveFitter." + method
	if X == nil {
		return nil, scierr.NewModelError(op, "empty data", scierr.ErrEmptyData)
	}

	m, c := X.Dims()
	want := len(f.columns_)
	if f.fitIntercept {
		want--
	}
	if c != want {
		return nil, scierr.NewDimensionError(op, want, c, 1)
	}

	d := len(f.columns_)
	design := mat.NewDense(m, d, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < want; j++ {
			design.Set(i, j, X.At(i, j))
		}
		if f.fitIntercept {
			design.Set(i, d-1, 1)
		}
	}
	return design, nil
}

// tableDesign selects the training covariates from t by name, in training
// order, and widens them into the full design matrix.
func (f *AalenAdditiveFitter) tableDesign(t *dataset.Table, method string) (*mat.Dense, error) {
	op := "AalenAdditiveFitter." + method
	if t == nil || t.Len() == 0 {
		return nil, scierr.NewModelError(op, "empty data", scierr.ErrEmptyData)
	}

	names := make([]string, 0, len(f.columns_))
	for _, name := range f.columns_ {
		if f.fitIntercept && name == interceptColumn {
			continue
		}
		names = append(names, name)
	}

	sub, err := t.Select(names...)
	if err != nil {
		return nil, err
	}
	return f.buildDesign(sub.Matrix(), method)
}

// hazardCurves multiplies the fitted cumulative coefficients with the
// design matrix, giving one curve per subject.
func (f *AalenAdditiveFitter) hazardCurves(design *mat.Dense) *mat.Dense {
	if f.cumHazards_ == nil {
		return nil
	}
	var out mat.Dense
	out.Mul(f.cumHazards_, design.T())
	return &out
}

func survivalFromHazard(cum *mat.Dense) *mat.Dense {
	if cum == nil {
		return nil
	}
	r, c := cum.Dims()
	out := mat.NewDense(r, c, nil)
	parallel.ParallelizeWithThreshold(c, fitParallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			// Each curve is evaluated at the running maximum of its hazard,
			// floored at zero: negative increments cannot push survival
			// above one or make it rise over time.
			peak := 0.0
			for i := 0; i < r; i++ {
				if h := cum.At(i, j); h > peak {
					peak = h
				}
				out.Set(i, j, scierr.StabilizeExp(-peak))
			}
		}
	})
	return out
}

func (f *AalenAdditiveFitter) percentileTimes(surv *mat.Dense, m int, p float64) *mat.VecDense {
	out := mat.NewVecDense(m, nil)
	if surv == nil {
		for i := 0; i < m; i++ {
			out.SetVec(i, math.NaN())
		}
		return out
	}

	steps, _ := surv.Dims()
	for j := 0; j < m; j++ {
		t := f.eventTimes_[steps-1]
		for i := 0; i < steps; i++ {
			if surv.At(i, j) <= p {
				t = f.eventTimes_[i]
				break
			}
		}
		out.SetVec(j, t)
	}
	return out
}

func (f *AalenAdditiveFitter) expectationTimes(surv *mat.Dense, m int) *mat.VecDense {
	out := mat.NewVecDense(m, nil)
	if surv == nil {
		for i := 0; i < m; i++ {
			out.SetVec(i, math.NaN())
		}
		return out
	}

	steps, _ := surv.Dims()
	if steps < 2 {
		// A single support point integrates to zero.
		return out
	}

	col := make([]float64, steps)
	for j := 0; j < m; j++ {
		mat.Col(col, j, surv)
		out.SetVec(j, integrate.Trapezoidal(f.eventTimes_, col))
	}
	return out
}
