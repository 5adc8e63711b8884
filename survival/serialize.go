package survival

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/OasisYE/lifelines/core/model"
	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

const (
	aalenModelType = "AalenAdditiveFitter"

	// aalenSnapshotVersion is bumped whenever the serialized layout
	// changes. Import rejects snapshots written under another version.
	aalenSnapshotVersion = "1.0.0"
)

// fitterParams is the serialized form of the constructor parameters.
type fitterParams struct {
	FitIntercept       bool    `json:"fit_intercept"`
	Alpha              float64 `json:"alpha"`
	CoefPenalizer      float64 `json:"coef_penalizer"`
	SmoothingPenalizer float64 `json:"smoothing_penalizer"`
}

// fitterState is the serialized form of the fitted state. Matrices are
// stored row by row, one row per event time. Concordance is a pointer so
// an undefined score (NaN, which JSON cannot carry) round-trips as null.
type fitterState struct {
	Columns            []string    `json:"columns"`
	EventTimes         []float64   `json:"event_times"`
	CumulativeHazards  [][]float64 `json:"cumulative_hazards,omitempty"`
	CumulativeVariance [][]float64 `json:"cumulative_variance,omitempty"`
	HazardIncrements   [][]float64 `json:"hazard_increments,omitempty"`
	ConfidenceLower    [][]float64 `json:"confidence_lower,omitempty"`
	ConfidenceUpper    [][]float64 `json:"confidence_upper,omitempty"`
	NormStd            []float64   `json:"norm_std"`
	Durations          []float64   `json:"durations"`
	EventObserved      []bool      `json:"event_observed"`
	Weights            []float64   `json:"weights"`
	DurationCol        string      `json:"duration_col"`
	EventCol           string      `json:"event_col,omitempty"`
	WeightsCol         string      `json:"weights_col,omitempty"`
	NExamples          int         `json:"n_examples"`
	TimeFitWasCalled   string      `json:"time_fit_was_called"`
	Concordance        *float64    `json:"concordance,omitempty"`
}

// gobSnapshot is the payload behind GobEncode/GobDecode.
type gobSnapshot struct {
	Version string
	Params  fitterParams
	State   fitterState
}

// ExportJSON writes the fitted model to w as a versioned JSON snapshot.
// The per-step fit report is transient and not part of the snapshot.
func (f *AalenAdditiveFitter) ExportJSON(w io.Writer) error {
	if err := f.checkFitted("ExportJSON"); err != nil {
		return err
	}

	params, err := json.Marshal(f.snapshotParams())
	if err != nil {
		return scierr.NewModelError("AalenAdditiveFitter.ExportJSON", "failed to marshal params", err)
	}
	state, err := json.Marshal(f.snapshotState())
	if err != nil {
		return scierr.NewModelError("AalenAdditiveFitter.ExportJSON", "failed to marshal state", err)
	}

	env := &model.Snapshot{
		ModelType: aalenModelType,
		Version:   aalenSnapshotVersion,
		Params:    params,
		State:     state,
	}
	if err := env.Encode(w); err != nil {
		return scierr.NewModelError("AalenAdditiveFitter.ExportJSON", "failed to write snapshot", err)
	}
	return nil
}

// ImportJSON restores a model previously written by ExportJSON, replacing
// any state the receiver holds. The restored instance is marked fitted and
// predicts exactly as the exported one did; Report returns nil.
func (f *AalenAdditiveFitter) ImportJSON(r io.Reader) error {
	const op = "AalenAdditiveFitter.ImportJSON"

	env, err := model.DecodeSnapshot(r, aalenModelType)
	if err != nil {
		return scierr.NewValueError(op, err.Error())
	}
	if env.Version != aalenSnapshotVersion {
		return scierr.NewValueError(op, fmt.Sprintf("unsupported snapshot version %q, want %q", env.Version, aalenSnapshotVersion))
	}

	var params fitterParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		return scierr.NewValueError(op, fmt.Sprintf("malformed params: %v", err))
	}
	var state fitterState
	if err := json.Unmarshal(env.State, &state); err != nil {
		return scierr.NewValueError(op, fmt.Sprintf("malformed state: %v", err))
	}

	return f.restore(op, &params, &state)
}

// Save writes the fitted model to path as a JSON snapshot.
func (f *AalenAdditiveFitter) Save(path string) error {
	if err := f.checkFitted("Save"); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return scierr.NewModelError("AalenAdditiveFitter.Save", "failed to create file", err)
	}
	defer file.Close()

	return f.ExportJSON(file)
}

// Load restores a model previously written by Save.
func (f *AalenAdditiveFitter) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return scierr.NewModelError("AalenAdditiveFitter.Load", "failed to open file", err)
	}
	defer file.Close()

	return f.ImportJSON(file)
}

// GobEncode implements gob.GobEncoder so fitted instances, whose state is
// unexported, work with model.SaveModel and model.SaveModelToWriter.
func (f *AalenAdditiveFitter) GobEncode() ([]byte, error) {
	if err := f.checkFitted("GobEncode"); err != nil {
		return nil, err
	}

	snap := gobSnapshot{
		Version: aalenSnapshotVersion,
		Params:  f.snapshotParams(),
		State:   f.snapshotState(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder, the counterpart of GobEncode.
func (f *AalenAdditiveFitter) GobDecode(data []byte) error {
	const op = "AalenAdditiveFitter.GobDecode"

	var snap gobSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return scierr.NewValueError(op, fmt.Sprintf("malformed snapshot: %v", err))
	}
	if snap.Version != aalenSnapshotVersion {
		return scierr.NewValueError(op, fmt.Sprintf("unsupported snapshot version %q, want %q", snap.Version, aalenSnapshotVersion))
	}

	return f.restore(op, &snap.Params, &snap.State)
}

func (f *AalenAdditiveFitter) snapshotParams() fitterParams {
	return fitterParams{
		FitIntercept:       f.fitIntercept,
		Alpha:              f.alpha,
		CoefPenalizer:      f.coefPenalizer,
		SmoothingPenalizer: f.smoothingPenalizer,
	}
}

func (f *AalenAdditiveFitter) snapshotState() fitterState {
	snap := fitterState{
		Columns:            f.columns_,
		EventTimes:         f.eventTimes_,
		CumulativeHazards:  matrixRows(f.cumHazards_),
		CumulativeVariance: matrixRows(f.cumVariance_),
		HazardIncrements:   matrixRows(f.hazardIncrements_),
		ConfidenceLower:    matrixRows(f.ciLower_),
		ConfidenceUpper:    matrixRows(f.ciUpper_),
		NormStd:            f.normStd_,
		Durations:          f.durations_,
		EventObserved:      f.eventObserved_,
		Weights:            f.weights_,
		DurationCol:        f.durationCol_,
		EventCol:           f.eventCol_,
		WeightsCol:         f.weightsCol_,
		NExamples:          f.nExamples_,
		TimeFitWasCalled:   f.timeFitWasCalled_,
	}
	if !math.IsNaN(f.concordance_) {
		c := f.concordance_
		snap.Concordance = &c
	}
	return snap
}

// restore validates a decoded snapshot and replaces the receiver's state
// with it.
func (f *AalenAdditiveFitter) restore(op string, params *fitterParams, snap *fitterState) error {
	restored := &AalenAdditiveFitter{
		state:              model.NewStateManager(),
		fitIntercept:       params.FitIntercept,
		alpha:              params.Alpha,
		coefPenalizer:      params.CoefPenalizer,
		smoothingPenalizer: params.SmoothingPenalizer,
	}
	if err := restored.validateParams(op); err != nil {
		return err
	}

	d := len(snap.Columns)
	if d == 0 {
		return scierr.NewValueError(op, "snapshot has no covariate columns")
	}
	if len(snap.NormStd) != d {
		return scierr.NewValueError(op, fmt.Sprintf("norm_std has %d entries, want %d", len(snap.NormStd), d))
	}
	if snap.NExamples <= 0 {
		return scierr.NewValueError(op, fmt.Sprintf("n_examples must be positive, got %d", snap.NExamples))
	}
	if len(snap.Durations) != snap.NExamples || len(snap.EventObserved) != snap.NExamples || len(snap.Weights) != snap.NExamples {
		return scierr.NewValueError(op, "durations, event_observed and weights must all have n_examples entries")
	}
	if snap.DurationCol == "" {
		return scierr.NewValueError(op, "duration_col is required")
	}

	steps := len(snap.EventTimes)
	matrices := []struct {
		name string
		rows [][]float64
		dst  **mat.Dense
	}{
		{"cumulative_hazards", snap.CumulativeHazards, &restored.cumHazards_},
		{"cumulative_variance", snap.CumulativeVariance, &restored.cumVariance_},
		{"hazard_increments", snap.HazardIncrements, &restored.hazardIncrements_},
		{"confidence_lower", snap.ConfidenceLower, &restored.ciLower_},
		{"confidence_upper", snap.ConfidenceUpper, &restored.ciUpper_},
	}
	for _, m := range matrices {
		if len(m.rows) != steps {
			return scierr.NewValueError(op, fmt.Sprintf("%s has %d rows, want %d", m.name, len(m.rows), steps))
		}
		dense, err := denseFromRows(m.rows, d)
		if err != nil {
			return scierr.NewValueError(op, fmt.Sprintf("%s: %v", m.name, err))
		}
		*m.dst = dense
	}

	restored.columns_ = snap.Columns
	restored.eventTimes_ = snap.EventTimes
	restored.normStd_ = snap.NormStd
	restored.durations_ = snap.Durations
	restored.eventObserved_ = snap.EventObserved
	restored.weights_ = snap.Weights
	restored.durationCol_ = snap.DurationCol
	restored.eventCol_ = snap.EventCol
	restored.weightsCol_ = snap.WeightsCol
	restored.nExamples_ = snap.NExamples
	restored.timeFitWasCalled_ = snap.TimeFitWasCalled
	restored.concordance_ = math.NaN()
	if snap.Concordance != nil {
		restored.concordance_ = *snap.Concordance
	}

	restored.state.SetDimensions(d, snap.NExamples)
	restored.state.SetFitted()

	*f = *restored
	return nil
}

func matrixRows(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		copy(rows[i], m.RawRowView(i))
	}
	return rows
}

func denseFromRows(rows [][]float64, cols int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := mat.NewDense(len(rows), cols, nil)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d entries, want %d", i, len(row), cols)
		}
		out.SetRow(i, row)
	}
	return out, nil
}
