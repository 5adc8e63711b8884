package survival

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/OasisYE/lifelines/core/model"
	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// interceptColumn is the reserved name of the constant column appended when
// an intercept is requested. Input tables must not use it.
const interceptColumn = "baseline"

// AalenAdditiveFitter fits Aalen's additive hazards regression model
//
//	h(t|x) = b_0(t) + b_1(t)·x_1 + ... + b_N(t)·x_N
//
// where the coefficients b_j(t) vary over time. Fit estimates the
// cumulative coefficient curves B_j(t) = ∫b_j(s)ds at every observed death
// time by solving one penalized least squares problem per event time over
// the shrinking risk set.
//
// The zero value is not usable; construct with NewAalenAdditiveFitter.
// A fitted instance is safe for concurrent readers. Fit itself must not be
// called concurrently on one instance.
type AalenAdditiveFitter struct {
	state *model.StateManager

	fitIntercept       bool
	alpha              float64
	coefPenalizer      float64
	smoothingPenalizer float64

	// Populated by Fit. The trailing underscore marks estimated state,
	// following the convention of the reference library this implements.
	cumHazards_       *mat.Dense
	cumVariance_      *mat.Dense
	hazardIncrements_ *mat.Dense
	ciLower_          *mat.Dense
	ciUpper_          *mat.Dense
	normStd_          []float64
	eventTimes_       []float64
	columns_          []string
	durations_        []float64
	eventObserved_    []bool
	weights_          []float64
	durationCol_      string
	eventCol_         string
	weightsCol_       string
	nExamples_        int
	timeFitWasCalled_ string
	concordance_      float64
	report_           *FitReport
}

// Option configures an AalenAdditiveFitter at construction time.
type Option func(*AalenAdditiveFitter)

// WithFitIntercept controls whether a constant baseline-hazard column is
// appended to the covariates. Defaults to true. When false the caller is
// expected to supply their own baseline column.
func WithFitIntercept(fit bool) Option {
	return func(f *AalenAdditiveFitter) { f.fitIntercept = fit }
}

// WithAlpha sets the confidence level of the fitted coefficient intervals.
// Defaults to 0.95.
func WithAlpha(alpha float64) Option {
	return func(f *AalenAdditiveFitter) { f.alpha = alpha }
}

// WithCoefPenalizer sets the ridge penalty applied to the per-step
// coefficients. Defaults to 0. Raising it stabilizes fits on thin risk
// sets.
func WithCoefPenalizer(c float64) Option {
	return func(f *AalenAdditiveFitter) { f.coefPenalizer = c }
}

// WithSmoothingPenalizer sets the penalty pulling each step's coefficients
// toward the previous step's estimate. Defaults to 0.
func WithSmoothingPenalizer(c float64) Option {
	return func(f *AalenAdditiveFitter) { f.smoothingPenalizer = c }
}

// NewAalenAdditiveFitter creates a fitter with the given options.
func NewAalenAdditiveFitter(opts ...Option) (*AalenAdditiveFitter, error) {
	f := &AalenAdditiveFitter{
		state:        model.NewStateManager(),
		fitIntercept: true,
		alpha:        0.95,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.validateParams("NewAalenAdditiveFitter"); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *AalenAdditiveFitter) validateParams(op string) error {
	if f.alpha <= 0 || f.alpha > 1 {
		return scierr.NewValueError(op, fmt.Sprintf("alpha must be in (0, 1], got %v", f.alpha))
	}
	if f.coefPenalizer < 0 {
		return scierr.NewValueError(op, fmt.Sprintf("coef penalizer must be non-negative, got %v", f.coefPenalizer))
	}
	if f.smoothingPenalizer < 0 {
		return scierr.NewValueError(op, fmt.Sprintf("smoothing penalizer must be non-negative, got %v", f.smoothingPenalizer))
	}
	return nil
}

// FitIntercept reports whether an intercept column is added during fitting.
func (f *AalenAdditiveFitter) FitIntercept() bool { return f.fitIntercept }

// Alpha returns the confidence level used for the coefficient intervals.
func (f *AalenAdditiveFitter) Alpha() float64 { return f.alpha }

// CoefPenalizer returns the coefficient ridge penalty.
func (f *AalenAdditiveFitter) CoefPenalizer() float64 { return f.coefPenalizer }

// SmoothingPenalizer returns the smoothing penalty.
func (f *AalenAdditiveFitter) SmoothingPenalizer() float64 { return f.smoothingPenalizer }

// GetParams returns the fitter's hyperparameters.
func (f *AalenAdditiveFitter) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept":       f.fitIntercept,
		"alpha":               f.alpha,
		"coef_penalizer":      f.coefPenalizer,
		"smoothing_penalizer": f.smoothingPenalizer,
	}
}

// IsFitted reports whether Fit has completed on this instance.
func (f *AalenAdditiveFitter) IsFitted() bool { return f.state.IsFitted() }

func (f *AalenAdditiveFitter) checkFitted(method string) error {
	if !f.state.IsFitted() {
		return scierr.NewNotFittedError("AalenAdditiveFitter", method)
	}
	return nil
}

// EventTimes returns the time index: the sorted unique death times the
// model stepped through, truncated when the loop stopped early.
func (f *AalenAdditiveFitter) EventTimes() ([]float64, error) {
	if err := f.checkFitted("EventTimes"); err != nil {
		return nil, err
	}
	return append([]float64(nil), f.eventTimes_...), nil
}

// Columns returns the covariate names in fitting order, including the
// intercept column when one was added.
func (f *AalenAdditiveFitter) Columns() ([]string, error) {
	if err := f.checkFitted("Columns"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.columns_...), nil
}

// CumulativeHazards returns the fitted cumulative coefficient curves, one
// row per event time, one column per covariate. The result is nil when the
// training data contained no observed deaths (empty time index).
func (f *AalenAdditiveFitter) CumulativeHazards() (*mat.Dense, error) {
	if err := f.checkFitted("CumulativeHazards"); err != nil {
		return nil, err
	}
	return cloneDense(f.cumHazards_), nil
}

// CumulativeVariance returns the cumulative variance of the coefficient
// estimates, same shape as CumulativeHazards.
func (f *AalenAdditiveFitter) CumulativeVariance() (*mat.Dense, error) {
	if err := f.checkFitted("CumulativeVariance"); err != nil {
		return nil, err
	}
	return cloneDense(f.cumVariance_), nil
}

// HazardIncrements returns the raw per-step coefficient increments before
// cumulative summation, the input to kernel smoothing.
func (f *AalenAdditiveFitter) HazardIncrements() (*mat.Dense, error) {
	if err := f.checkFitted("HazardIncrements"); err != nil {
		return nil, err
	}
	return cloneDense(f.hazardIncrements_), nil
}

// ConfidenceIntervals returns the lower and upper confidence bounds of the
// cumulative coefficient curves at the fitter's alpha level.
func (f *AalenAdditiveFitter) ConfidenceIntervals() (lower, upper *mat.Dense, err error) {
	if err := f.checkFitted("ConfidenceIntervals"); err != nil {
		return nil, nil, err
	}
	return cloneDense(f.ciLower_), cloneDense(f.ciUpper_), nil
}

// Durations returns the subject durations in fitting order.
func (f *AalenAdditiveFitter) Durations() ([]float64, error) {
	if err := f.checkFitted("Durations"); err != nil {
		return nil, err
	}
	return append([]float64(nil), f.durations_...), nil
}

// EventObserved returns the per-subject event flags in fitting order.
func (f *AalenAdditiveFitter) EventObserved() ([]bool, error) {
	if err := f.checkFitted("EventObserved"); err != nil {
		return nil, err
	}
	return append([]bool(nil), f.eventObserved_...), nil
}

// Weights returns the per-subject weights in fitting order.
func (f *AalenAdditiveFitter) Weights() ([]float64, error) {
	if err := f.checkFitted("Weights"); err != nil {
		return nil, err
	}
	return append([]float64(nil), f.weights_...), nil
}

// Report returns the structured per-step record of the last Fit call.
// Reports are transient diagnostics: a model restored from disk has none
// and Report returns nil.
func (f *AalenAdditiveFitter) Report() (*FitReport, error) {
	if err := f.checkFitted("Report"); err != nil {
		return nil, err
	}
	return f.report_, nil
}

// Score returns the concordance index finalized during Fit: the fraction
// of admissible subject pairs whose predicted total hazards order with the
// observed survival times. NaN when the training data had no admissible
// pairs.
func (f *AalenAdditiveFitter) Score() (float64, error) {
	if err := f.checkFitted("Score"); err != nil {
		return 0, err
	}
	return f.concordance_, nil
}

// String describes the fitter in one line.
func (f *AalenAdditiveFitter) String() string {
	if !f.state.IsFitted() {
		return "AalenAdditiveFitter"
	}
	censored := 0
	for _, e := range f.eventObserved_ {
		if !e {
			censored++
		}
	}
	return fmt.Sprintf("AalenAdditiveFitter: fitted with %d total observations, %d right-censored observations",
		f.nExamples_, censored)
}

func cloneDense(m *mat.Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	return mat.DenseCopyOf(m)
}
