package survival

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/OasisYE/lifelines/dataset"
	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// threeGroupTable builds twelve subjects in three covariate groups with a
// mix of deaths and censorings. The set is small enough that every fitted
// quantity can be checked against hand-worked least squares.
func threeGroupTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromColumns(
		[]string{"var", "T", "E"},
		[][]float64{
			{0, 0, 0, 0, 1, 1, 1, 1, 1, 2, 2, 2},
			{5, 3, 9, 8, 7, 4, 4, 3, 2, 5, 6, 7},
			{1, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1, 0},
		},
	)
	if err != nil {
		t.Fatalf("FromColumns() unexpected error: %v", err)
	}
	return tbl
}

func fitThreeGroup(t *testing.T) *AalenAdditiveFitter {
	t.Helper()
	silenceWarnings(t)

	aaf, err := NewAalenAdditiveFitter()
	if err != nil {
		t.Fatalf("NewAalenAdditiveFitter() unexpected error: %v", err)
	}
	if err := aaf.Fit(threeGroupTable(t), "T", WithEventColumn("E")); err != nil {
		t.Fatalf("Fit() unexpected error: %v", err)
	}
	return aaf
}

// lifeTable builds six subjects with one death at each of the times 1..6
// and a constant covariate. Fitted without an intercept the model collapses
// to the classical life-table estimator: every hazard increment is deaths
// over number at risk, so all expectations have closed forms.
func lifeTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromColumns(
		[]string{"exposure", "T"},
		[][]float64{
			{1, 1, 1, 1, 1, 1},
			{1, 2, 3, 4, 5, 6},
		},
	)
	if err != nil {
		t.Fatalf("FromColumns() unexpected error: %v", err)
	}
	return tbl
}

func fitLifeTable(t *testing.T) *AalenAdditiveFitter {
	t.Helper()
	silenceWarnings(t)

	aaf, err := NewAalenAdditiveFitter(WithFitIntercept(false))
	if err != nil {
		t.Fatalf("NewAalenAdditiveFitter() unexpected error: %v", err)
	}
	if err := aaf.Fit(lifeTable(t), "T"); err != nil {
		t.Fatalf("Fit() unexpected error: %v", err)
	}
	return aaf
}

// fitAllCensored fits three subjects none of whom had an observed event,
// leaving the model fitted but with an empty time index.
func fitAllCensored(t *testing.T) *AalenAdditiveFitter {
	t.Helper()
	silenceWarnings(t)

	tbl, err := dataset.FromColumns(
		[]string{"x", "T", "E"},
		[][]float64{
			{1, 2, 3},
			{1, 2, 3},
			{0, 0, 0},
		},
	)
	if err != nil {
		t.Fatalf("FromColumns() unexpected error: %v", err)
	}
	aaf, err := NewAalenAdditiveFitter()
	if err != nil {
		t.Fatalf("NewAalenAdditiveFitter() unexpected error: %v", err)
	}
	if err := aaf.Fit(tbl, "T", WithEventColumn("E")); err != nil {
		t.Fatalf("Fit() unexpected error: %v", err)
	}
	return aaf
}

func silenceWarnings(t *testing.T) {
	t.Helper()
	scierr.SetWarningHandler(func(error) {})
	t.Cleanup(func() { scierr.SetWarningHandler(func(error) {}) })
}

func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var captured []error
	scierr.SetWarningHandler(func(w error) { captured = append(captured, w) })
	t.Cleanup(func() { scierr.SetWarningHandler(func(error) {}) })
	return &captured
}

func TestNewAalenAdditiveFitterDefaults(t *testing.T) {
	aaf, err := NewAalenAdditiveFitter()
	if err != nil {
		t.Fatalf("NewAalenAdditiveFitter() unexpected error: %v", err)
	}

	if !aaf.FitIntercept() {
		t.Error("FitIntercept() = false, want true by default")
	}
	if got := aaf.Alpha(); got != 0.95 {
		t.Errorf("Alpha() = %v, want 0.95", got)
	}
	if got := aaf.CoefPenalizer(); got != 0 {
		t.Errorf("CoefPenalizer() = %v, want 0", got)
	}
	if got := aaf.SmoothingPenalizer(); got != 0 {
		t.Errorf("SmoothingPenalizer() = %v, want 0", got)
	}
	if aaf.IsFitted() {
		t.Error("IsFitted() = true before Fit")
	}
}

func TestNewAalenAdditiveFitterRejectsBadParams(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"alpha zero", []Option{WithAlpha(0)}},
		{"alpha negative", []Option{WithAlpha(-0.5)}},
		{"alpha above one", []Option{WithAlpha(1.2)}},
		{"negative coef penalizer", []Option{WithCoefPenalizer(-1)}},
		{"negative smoothing penalizer", []Option{WithSmoothingPenalizer(-0.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAalenAdditiveFitter(tt.opts...)
			if err == nil {
				t.Fatal("NewAalenAdditiveFitter() expected an error")
			}
			var ve *scierr.ValueError
			if !scierr.As(err, &ve) {
				t.Errorf("error = %v (%T), want a ValueError", err, err)
			}
		})
	}
}

func TestGetParams(t *testing.T) {
	aaf, err := NewAalenAdditiveFitter(
		WithFitIntercept(false),
		WithAlpha(0.9),
		WithCoefPenalizer(2),
		WithSmoothingPenalizer(0.5),
	)
	if err != nil {
		t.Fatalf("NewAalenAdditiveFitter() unexpected error: %v", err)
	}

	params := aaf.GetParams()
	want := map[string]interface{}{
		"fit_intercept":       false,
		"alpha":               0.9,
		"coef_penalizer":      2.0,
		"smoothing_penalizer": 0.5,
	}
	for key, w := range want {
		if got, ok := params[key]; !ok || got != w {
			t.Errorf("GetParams()[%q] = %v, want %v", key, got, w)
		}
	}
}

func TestStringBeforeAndAfterFit(t *testing.T) {
	aaf, err := NewAalenAdditiveFitter()
	if err != nil {
		t.Fatalf("NewAalenAdditiveFitter() unexpected error: %v", err)
	}
	if got := aaf.String(); got != "AalenAdditiveFitter" {
		t.Errorf("String() = %q, want %q", got, "AalenAdditiveFitter")
	}

	fitted := fitThreeGroup(t)
	want := "AalenAdditiveFitter: fitted with 12 total observations, 3 right-censored observations"
	if got := fitted.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMethodsRequireFit(t *testing.T) {
	aaf, err := NewAalenAdditiveFitter()
	if err != nil {
		t.Fatalf("NewAalenAdditiveFitter() unexpected error: %v", err)
	}
	X := mat.NewDense(1, 1, []float64{0.5})
	tbl, err := dataset.FromColumns([]string{"var"}, [][]float64{{0.5}})
	if err != nil {
		t.Fatalf("FromColumns() unexpected error: %v", err)
	}

	methods := []struct {
		name string
		call func() error
	}{
		{"EventTimes", func() error { _, err := aaf.EventTimes(); return err }},
		{"Columns", func() error { _, err := aaf.Columns(); return err }},
		{"CumulativeHazards", func() error { _, err := aaf.CumulativeHazards(); return err }},
		{"CumulativeVariance", func() error { _, err := aaf.CumulativeVariance(); return err }},
		{"HazardIncrements", func() error { _, err := aaf.HazardIncrements(); return err }},
		{"ConfidenceIntervals", func() error { _, _, err := aaf.ConfidenceIntervals(); return err }},
		{"Durations", func() error { _, err := aaf.Durations(); return err }},
		{"EventObserved", func() error { _, err := aaf.EventObserved(); return err }},
		{"Weights", func() error { _, err := aaf.Weights(); return err }},
		{"Report", func() error { _, err := aaf.Report(); return err }},
		{"Score", func() error { _, err := aaf.Score(); return err }},
		{"Summary", func() error { _, err := aaf.Summary(); return err }},
		{"PrintSummary", func() error { return aaf.PrintSummary(io.Discard, 3) }},
		{"SmoothedHazards", func() error { _, err := aaf.SmoothedHazards(1); return err }},
		{"PredictCumulativeHazard", func() error { _, err := aaf.PredictCumulativeHazard(X); return err }},
		{"PredictCumulativeHazardTable", func() error { _, err := aaf.PredictCumulativeHazardTable(tbl); return err }},
		{"PredictSurvivalFunction", func() error { _, err := aaf.PredictSurvivalFunction(X); return err }},
		{"PredictSurvivalFunctionTable", func() error { _, err := aaf.PredictSurvivalFunctionTable(tbl); return err }},
		{"PredictPercentile", func() error { _, err := aaf.PredictPercentile(X, 0.5); return err }},
		{"PredictPercentileTable", func() error { _, err := aaf.PredictPercentileTable(tbl, 0.5); return err }},
		{"PredictMedian", func() error { _, err := aaf.PredictMedian(X); return err }},
		{"PredictMedianTable", func() error { _, err := aaf.PredictMedianTable(tbl); return err }},
		{"PredictExpectation", func() error { _, err := aaf.PredictExpectation(X); return err }},
		{"PredictExpectationTable", func() error { _, err := aaf.PredictExpectationTable(tbl); return err }},
		{"PlotCumulativeHazards", func() error { _, err := aaf.PlotCumulativeHazards(); return err }},
		{"SavePlot", func() error { return aaf.SavePlot(filepath.Join(t.TempDir(), "h.png"), 0, 0) }},
		{"ExportJSON", func() error { return aaf.ExportJSON(io.Discard) }},
		{"Save", func() error { return aaf.Save(filepath.Join(t.TempDir(), "m.json")) }},
		{"GobEncode", func() error { _, err := aaf.GobEncode(); return err }},
	}

	for _, m := range methods {
		t.Run(m.name, func(t *testing.T) {
			err := m.call()
			if err == nil {
				t.Fatal("expected an error before Fit")
			}
			var nf *scierr.NotFittedError
			if !scierr.As(err, &nf) {
				t.Errorf("error = %v (%T), want a NotFittedError", err, err)
			}
		})
	}
}

// Accessors hand out copies so callers cannot corrupt the fitted state.
func TestAccessorsReturnCopies(t *testing.T) {
	aaf := fitThreeGroup(t)

	times, err := aaf.EventTimes()
	if err != nil {
		t.Fatalf("EventTimes() unexpected error: %v", err)
	}
	times[0] = -99
	times, err = aaf.EventTimes()
	if err != nil {
		t.Fatalf("EventTimes() unexpected error: %v", err)
	}
	if times[0] != 2 {
		t.Errorf("EventTimes()[0] = %v after mutating a previous copy, want 2", times[0])
	}

	cols, err := aaf.Columns()
	if err != nil {
		t.Fatalf("Columns() unexpected error: %v", err)
	}
	cols[0] = "mutated"
	cols, err = aaf.Columns()
	if err != nil {
		t.Fatalf("Columns() unexpected error: %v", err)
	}
	if cols[0] != "var" {
		t.Errorf("Columns()[0] = %q after mutating a previous copy, want %q", cols[0], "var")
	}

	cum, err := aaf.CumulativeHazards()
	if err != nil {
		t.Fatalf("CumulativeHazards() unexpected error: %v", err)
	}
	orig := cum.At(0, 0)
	cum.Set(0, 0, 99)
	cum, err = aaf.CumulativeHazards()
	if err != nil {
		t.Fatalf("CumulativeHazards() unexpected error: %v", err)
	}
	if cum.At(0, 0) != orig {
		t.Errorf("CumulativeHazards().At(0,0) = %v after mutating a previous copy, want %v", cum.At(0, 0), orig)
	}
}

func TestReportIsSharedSnapshot(t *testing.T) {
	aaf := fitThreeGroup(t)

	report, err := aaf.Report()
	if err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}
	if report == nil {
		t.Fatal("Report() = nil for a fitted model")
	}
	if got := report.StepsCompleted(); got != len(report.Steps) {
		t.Errorf("StepsCompleted() = %d, want %d", got, len(report.Steps))
	}
}

func TestPrintSummaryContainsFitDescription(t *testing.T) {
	aaf := fitThreeGroup(t)

	var b strings.Builder
	if err := aaf.PrintSummary(&b, 2); err != nil {
		t.Fatalf("PrintSummary() unexpected error: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"AalenAdditiveFitter: fitted with 12 total observations, 3 right-censored observations",
		"duration col       = 'T'",
		"event col          = 'E'",
		"number of subjects = 12",
		"number of events   = 9",
		"avg(coef)",
		"avg(lower 0.95)",
		"avg(upper 0.95)",
		"var",
		"baseline",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintSummary() output missing %q:\n%s", want, out)
		}
	}
}
