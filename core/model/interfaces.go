// Package model provides additional interfaces and types for statistical models.
// This file complements the state management in state_manager.go
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that expose a goodness-of-fit score.
type Scorer interface {
	// Score returns the score finalized during fitting.
	Score() (float64, error)
}

// HazardPredictor is the interface for fitted models that predict hazard
// curves for new subjects. Rows of X are subjects, columns are the
// covariates in training order.
type HazardPredictor interface {
	// PredictCumulativeHazard returns one cumulative-hazard curve per
	// subject, indexed by the training event times.
	PredictCumulativeHazard(X mat.Matrix) (*mat.Dense, error)

	// PredictSurvivalFunction returns exp(-H) of the predicted
	// cumulative hazard, one survival curve per subject.
	PredictSurvivalFunction(X mat.Matrix) (*mat.Dense, error)
}

// TimeToEventPredictor is the interface for fitted models that reduce
// survival curves to per-subject time summaries.
type TimeToEventPredictor interface {
	// PredictMedian returns the median survival time per subject.
	PredictMedian(X mat.Matrix) (*mat.VecDense, error)

	// PredictExpectation returns the expected survival time per subject.
	PredictExpectation(X mat.Matrix) (*mat.VecDense, error)
}

// SurvivalEstimator combines the prediction surface of a fitted
// survival regression model.
type SurvivalEstimator interface {
	HazardPredictor
	TimeToEventPredictor
	Scorer
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
