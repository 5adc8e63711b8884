package survival

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/OasisYE/lifelines/core/parallel"
	"github.com/OasisYE/lifelines/dataset"
	"github.com/OasisYE/lifelines/metrics"
	scierr "github.com/OasisYE/lifelines/pkg/errors"
	"github.com/OasisYE/lifelines/pkg/log"
)

// Element-wise passes over the subjects are chunked above this row count.
const fitParallelThreshold = 1000

// FitOption configures a single Fit call.
type FitOption func(*fitConfig)

type fitConfig struct {
	eventCol     string
	weightsCol   string
	showProgress bool
}

// WithEventColumn names the 0/1 column marking whether each subject's event
// was observed (1) or censored (0). Without it every subject is treated as
// observed.
func WithEventColumn(name string) FitOption {
	return func(c *fitConfig) { c.eventCol = name }
}

// WithWeightsColumn names a strictly positive per-subject weight column.
// Weights are validated and retained for reporting; the default is uniform
// weight 1.
func WithWeightsColumn(name string) FitOption {
	return func(c *fitConfig) { c.weightsCol = name }
}

// WithShowProgress enables per-step progress logging through pkg/log.
func WithShowProgress(show bool) FitOption {
	return func(c *fitConfig) { c.showProgress = show }
}

// fitData carries the validated, sorted, intercept-augmented inputs from
// preprocessing into the fitting loop.
type fitData struct {
	durations  []float64
	events     []bool
	weights    []float64
	columns    []string
	X          *mat.Dense // n×d covariates in original scale, sorted by duration
	normStd    []float64
	deathTimes []float64 // full unique death times, ascending
}

// Fit estimates the cumulative hazard coefficient curves from the given
// table. durationCol names the duration column; the remaining columns are
// covariates except those claimed by fit options. The receiver is only
// mutated once every validation has passed and the loop has finished, so a
// failed Fit leaves previously fitted state untouched.
func (f *AalenAdditiveFitter) Fit(data *dataset.Table, durationCol string, opts ...FitOption) error {
	cfg := fitConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := log.GetLoggerWithName("survival.aalen")
	calledAt := time.Now().UTC().Format("2006-01-02 15:04:05") + " UTC"

	pre, err := f.preprocess(data, durationCol, cfg)
	if err != nil {
		return err
	}

	n, d := pre.X.Dims()
	logger.Debug("fitting additive hazards model",
		log.ModelNameKey, "AalenAdditiveFitter",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.CovariatesKey, d,
	)

	res := f.runFittingLoop(pre, cfg.showProgress, logger)
	steps := len(res.eventTimes)

	// Rescale back to the original covariate scale, then accumulate over
	// the time index. The variance is divided by std rather than std²,
	// replicating the reference library.
	var increments, cumHaz, cumVar, ciLower, ciUpper *mat.Dense
	if steps > 0 {
		increments = res.increments
		rescaleColumns(increments, pre.normStd)
		rescaleColumns(res.variances, pre.normStd)
		cumHaz = cumulativeSum(increments)
		cumVar = cumulativeSum(res.variances)
		ciLower, ciUpper = confidenceBounds(cumHaz, cumVar, f.alpha)
	}

	concordance := f.finalizeScore(pre, cumHaz)

	events := 0
	for _, e := range pre.events {
		if e {
			events++
		}
	}

	f.state.Reset()
	f.cumHazards_ = cumHaz
	f.cumVariance_ = cumVar
	f.hazardIncrements_ = increments
	f.ciLower_ = ciLower
	f.ciUpper_ = ciUpper
	f.normStd_ = pre.normStd
	f.eventTimes_ = res.eventTimes
	f.columns_ = pre.columns
	f.durations_ = pre.durations
	f.eventObserved_ = pre.events
	f.weights_ = pre.weights
	f.durationCol_ = durationCol
	f.eventCol_ = cfg.eventCol
	f.weightsCol_ = cfg.weightsCol
	f.nExamples_ = n
	f.timeFitWasCalled_ = calledAt
	f.concordance_ = concordance
	f.report_ = res.report
	f.state.SetDimensions(d, n)
	f.state.SetFitted()

	logger.Info("fit complete",
		log.ModelNameKey, "AalenAdditiveFitter",
		log.SamplesKey, n,
		log.EventsKey, events,
		log.CensoredKey, n-events,
		log.StepsKey, steps,
		log.ConcordanceKey, concordance,
	)
	return nil
}

func (f *AalenAdditiveFitter) preprocess(data *dataset.Table, durationCol string, cfg fitConfig) (*fitData, error) {
	const op = "AalenAdditiveFitter.Fit"

	if data == nil || data.Len() == 0 {
		return nil, scierr.NewModelError(op, "empty data", scierr.ErrEmptyData)
	}
	if !data.HasColumn(durationCol) {
		return nil, scierr.NewValueError(op, fmt.Sprintf("unknown duration column %q", durationCol))
	}
	if cfg.eventCol != "" && !data.HasColumn(cfg.eventCol) {
		return nil, scierr.NewValueError(op, fmt.Sprintf("unknown event column %q", cfg.eventCol))
	}
	if cfg.weightsCol != "" && !data.HasColumn(cfg.weightsCol) {
		return nil, scierr.NewValueError(op, fmt.Sprintf("unknown weights column %q", cfg.weightsCol))
	}

	sorted, err := data.SortBy(durationCol)
	if err != nil {
		return nil, err
	}
	n := sorted.Len()

	durations, err := sorted.Col(durationCol)
	if err != nil {
		return nil, err
	}

	events := make([]bool, n)
	if cfg.eventCol != "" {
		raw, err := sorted.Col(cfg.eventCol)
		if err != nil {
			return nil, err
		}
		for i, v := range raw {
			switch v {
			case 0:
			case 1:
				events[i] = true
			default:
				return nil, scierr.NewValueError(op,
					fmt.Sprintf("event column %q must contain only 0 or 1, found %v at row %d", cfg.eventCol, v, i))
			}
		}
	} else {
		for i := range events {
			events[i] = true
		}
	}

	weights, err := extractWeights(sorted, cfg.weightsCol, n)
	if err != nil {
		return nil, err
	}

	// NaN/Inf scan over duration, event and covariate columns. Weights
	// were already validated by the positivity check.
	checked := sorted
	if cfg.weightsCol != "" {
		if checked, err = checked.Drop(cfg.weightsCol); err != nil {
			return nil, err
		}
	}
	if err := checked.CheckValues(); err != nil {
		return nil, err
	}

	claimed := []string{durationCol}
	if cfg.eventCol != "" {
		claimed = append(claimed, cfg.eventCol)
	}
	if cfg.weightsCol != "" {
		claimed = append(claimed, cfg.weightsCol)
	}
	covariates, err := sorted.Drop(claimed...)
	if err != nil {
		return nil, err
	}

	if f.fitIntercept {
		if covariates.HasColumn(interceptColumn) {
			return nil, scierr.NewValueError(op,
				fmt.Sprintf("%q is an internal column name used for the intercept, please rename your column first", interceptColumn))
		}
		ones := make([]float64, n)
		for i := range ones {
			ones[i] = 1
		}
		if covariates, err = covariates.WithColumn(interceptColumn, ones); err != nil {
			return nil, err
		}
	}

	columns := covariates.Columns()
	if len(columns) == 0 {
		return nil, scierr.NewValueError(op, "no covariate columns remain after removing the duration/event/weights columns")
	}
	X := covariates.Matrix()
	d := len(columns)

	// Per-covariate sample standard deviation (denominator n-1). The
	// intercept column keeps std 1; without an intercept, near-constant
	// columns are clamped to 1 to avoid dividing by zero.
	normStd := make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, X)
		normStd[j] = stat.StdDev(col, nil)
	}
	if f.fitIntercept {
		normStd[d-1] = 1 // the intercept column was appended last
	} else {
		for j := range normStd {
			if normStd[j] < 1e-8 {
				normStd[j] = 1
			}
		}
	}

	// Durations arrive sorted, so unique death times fall out of one scan.
	var deathTimes []float64
	for i, t := range durations {
		if !events[i] {
			continue
		}
		if len(deathTimes) == 0 || deathTimes[len(deathTimes)-1] != t {
			deathTimes = append(deathTimes, t)
		}
	}

	return &fitData{
		durations:  durations,
		events:     events,
		weights:    weights,
		columns:    columns,
		X:          X,
		normStd:    normStd,
		deathTimes: deathTimes,
	}, nil
}

func extractWeights(sorted *dataset.Table, weightsCol string, n int) ([]float64, error) {
	const op = "AalenAdditiveFitter.Fit"

	weights := make([]float64, n)
	if weightsCol == "" {
		for i := range weights {
			weights[i] = 1
		}
		return weights, nil
	}

	raw, err := sorted.Col(weightsCol)
	if err != nil {
		return nil, err
	}
	copy(weights, raw)

	for _, w := range weights {
		if w != math.Trunc(w) {
			scierr.Warn(scierr.NewStatisticalWarning(op,
				"weights are not integers, possibly propensity or sampling scores? The naive variance estimates of the coefficients are biased"))
			break
		}
	}
	for _, w := range weights {
		if w <= 0 || math.IsNaN(w) {
			return nil, scierr.NewValueError(op, fmt.Sprintf("values in weight column %s must be positive", weightsCol))
		}
	}
	return weights, nil
}

type loopResult struct {
	increments *mat.Dense // stepsCompleted×d, nil when no steps ran
	variances  *mat.Dense
	eventTimes []float64
	report     *FitReport
}

// runFittingLoop walks the unique death times in order, solving one
// penalized regression per step over the shrinking risk set. Subjects
// exiting at a death time have their rows zeroed in a private working copy
// afterward; the fitter's own matrices are never touched.
func (f *AalenAdditiveFitter) runFittingLoop(pre *fitData, showProgress bool, logger log.Logger) *loopResult {
	n, d := pre.X.Dims()
	nDeaths := len(pre.deathTimes)

	report := &FitReport{TotalDeathTimes: nDeaths, StoppedAtStep: -1}
	if nDeaths == 0 {
		return &loopResult{report: report}
	}

	// Normalized private working copy.
	Xw := mat.NewDense(n, d, nil)
	parallel.ParallelizeWithThreshold(n, fitParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < d; j++ {
				Xw.Set(i, j, pre.X.At(i, j)/pre.normStd[j])
			}
		}
	})

	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}

	increments := mat.NewDense(nDeaths, d, nil)
	variances := mat.NewDense(nDeaths, d, nil)

	offset := mat.NewVecDense(d, nil) // previous step's coefficients
	y := mat.NewVecDense(n, nil)
	varRow := make([]float64, d)
	zeroRow := make([]float64, d)

	totalObservedExits := 0
	stepsCompleted := 0
	start := time.Now()

	for i, t := range pre.deathTimes {
		var deathRows []int
		exits := 0
		for r := 0; r < n; r++ {
			y.SetVec(r, 0)
		}
		for r := 0; r < n; r++ {
			if !active[r] || pre.durations[r] != t {
				continue
			}
			exits++
			if pre.events[r] {
				y.SetVec(r, 1)
				deathRows = append(deathRows, r)
			}
		}

		result := StepResult{Step: i, Time: t, Deaths: len(deathRows), Exits: exits}

		V2, beta, err := ridgeStep(Xw, y, f.coefPenalizer, f.smoothingPenalizer, offset)
		if err != nil {
			// Fall back to zero coefficients and zero variance for this
			// step, warn, and keep going.
			scierr.Warn(scierr.NewConvergenceWarning("AalenAdditiveFitter.Fit", i, t, ""))
			offset = mat.NewVecDense(d, nil)
			for j := range varRow {
				varRow[j] = 0
			}
			result.Outcome = StepSolverFailed
			result.Err = err
			report.FailedSteps++
		} else {
			offset = beta
			for j := 0; j < d; j++ {
				sum := 0.0
				for _, r := range deathRows {
					v := V2.At(j, r)
					sum += v * v
				}
				varRow[j] = sum
			}
		}

		for j := 0; j < d; j++ {
			increments.Set(i, j, offset.AtVec(j))
			variances.Set(i, j, varRow[j])
		}
		report.Steps = append(report.Steps, result)
		stepsCompleted = i + 1

		// Exiting subjects took part in this step's regression; they
		// leave the risk set for the following steps.
		for r := 0; r < n; r++ {
			if active[r] && pre.durations[r] == t {
				active[r] = false
				Xw.SetRow(r, zeroRow)
			}
		}

		if showProgress {
			logger.Info("fit progress",
				log.IterationKey, i+1,
				log.StepsKey, nDeaths,
				log.DurationMsKey, time.Since(start).Milliseconds(),
			)
		}

		// Too few subjects left to estimate d coefficients; the constant 3
		// follows the R survival library. The exit accumulation below runs
		// only when the step survives the check, so the count trails by
		// one step.
		if 3*(d-1) >= n-totalObservedExits {
			report.EarlyStopped = true
			report.StoppedAtStep = i
			if showProgress {
				logger.Info("terminating early due to too few subjects in the tail",
					log.IterationKey, i+1,
					log.StepsKey, nDeaths,
				)
			}
			break
		}
		totalObservedExits += exits
	}

	eventTimes := append([]float64(nil), pre.deathTimes[:stepsCompleted]...)
	res := &loopResult{eventTimes: eventTimes, report: report}
	if stepsCompleted > 0 {
		res.increments = mat.DenseCopyOf(increments.Slice(0, stepsCompleted, 0, d))
		res.variances = mat.DenseCopyOf(variances.Slice(0, stepsCompleted, 0, d))
	}
	return res
}

// finalizeScore computes the concordance between observed survival and each
// training subject's predicted total hazard, negated so that higher scores
// mean longer predicted survival. Datasets without admissible pairs score
// NaN and emit a warning.
func (f *AalenAdditiveFitter) finalizeScore(pre *fitData, cumHaz *mat.Dense) float64 {
	n, d := pre.X.Dims()

	scores := make([]float64, n)
	if cumHaz != nil {
		steps, _ := cumHaz.Dims()
		last := cumHaz.RawRowView(steps - 1)
		parallel.ParallelizeWithThreshold(n, fitParallelThreshold, func(startRow, endRow int) {
			for r := startRow; r < endRow; r++ {
				total := 0.0
				for j := 0; j < d; j++ {
					total += last[j] * pre.X.At(r, j)
				}
				scores[r] = -total
			}
		})
	}

	concordance, err := metrics.ConcordanceIndex(pre.durations, scores, pre.events)
	if err != nil {
		scierr.Warn(scierr.NewUndefinedMetricWarning("concordance_index", "no admissible pairs", math.NaN()))
		return math.NaN()
	}
	return concordance
}

// rescaleColumns divides every column by its entry in std, in place.
func rescaleColumns(m *mat.Dense, std []float64) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, m.At(i, j)/std[j])
		}
	}
}

// cumulativeSum returns the column-wise running sums of m over its rows.
func cumulativeSum(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		floats.CumSum(col, col)
		out.SetCol(j, col)
	}
	return out
}

// confidenceBounds computes the normal-approximation interval around the
// cumulative coefficients at confidence level alpha.
func confidenceBounds(cumHaz, cumVar *mat.Dense, alpha float64) (lower, upper *mat.Dense) {
	alpha2 := distuv.UnitNormal.Quantile(1 - (1-alpha)/2)
	r, c := cumHaz.Dims()
	lower = mat.NewDense(r, c, nil)
	upper = mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			se := math.Sqrt(cumVar.At(i, j))
			lower.Set(i, j, cumHaz.At(i, j)-alpha2*se)
			upper.Set(i, j, cumHaz.At(i, j)+alpha2*se)
		}
	}
	return lower, upper
}
