// Package log defines standard attribute keys for model operations.
//
// Using these keys keeps log output consistent across the library and makes
// fit/predict telemetry filterable. The keys follow a hierarchical naming
// convention ("model.name", "data.samples") so structured log pipelines can
// group them.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "AalenAdditiveFitter".
	ModelNameKey = "model.name"

	// OperationKey names the operation being performed.
	// Standard values: "fit", "predict", "score".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation,
	// e.g. "survival", "dataset", "metrics".
	ComponentKey = "ml.component"

	// LoggerNameKey tags loggers created by GetLoggerWithName.
	LoggerNameKey = "logger.name"
)

// Data shape and characteristics.
const (
	// SamplesKey is the number of subjects (rows) in the dataset.
	SamplesKey = "data.samples"

	// CovariatesKey is the number of covariate columns, including the
	// intercept column when one was added.
	CovariatesKey = "data.covariates"

	// EventsKey is the number of observed (uncensored) events.
	EventsKey = "data.events"

	// CensoredKey is the number of right-censored subjects.
	CensoredKey = "data.censored"
)

// Fit progress and metrics.
const (
	// DurationMsKey records elapsed time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey is the current step of the event-time loop.
	IterationKey = "training.iteration"

	// StepsKey is the total number of steps (unique death times).
	StepsKey = "training.steps"

	// ConcordanceKey records the concordance index of a fit.
	ConcordanceKey = "metrics.concordance"
)

// Error and warning context.
const (
	// ErrorCodeKey carries a structured error code for programmatic
	// handling, e.g. "NOT_FITTED", "SINGULAR_MATRIX".
	ErrorCodeKey = "error.code"

	// SuggestionKey carries a remediation hint,
	// e.g. "Try increasing the coef penalizer value".
	SuggestionKey = "error.suggestion"
)

// Hyperparameters.
const (
	// AlphaKey is the confidence level of the interval estimates.
	AlphaKey = "hyperparams.alpha"

	// CoefPenalizerKey is the L2 penalty on coefficient magnitude.
	CoefPenalizerKey = "hyperparams.coef_penalizer"

	// SmoothingPenalizerKey is the L2 penalty on coefficient change
	// between adjacent steps.
	SmoothingPenalizerKey = "hyperparams.smoothing_penalizer"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
