package survival

import "fmt"

// StepOutcome tags how one event-time step of the fitting loop ended.
type StepOutcome int

const (
	// StepOK means the penalized regression produced a coefficient set.
	StepOK StepOutcome = iota
	// StepSolverFailed means the regression was singular and the step fell
	// back to zero coefficients and zero variance.
	StepSolverFailed
)

// String returns a short tag for the outcome.
func (o StepOutcome) String() string {
	switch o {
	case StepOK:
		return "ok"
	case StepSolverFailed:
		return "solver_failed"
	default:
		return fmt.Sprintf("StepOutcome(%d)", int(o))
	}
}

// StepResult records what happened at one event time during fitting.
type StepResult struct {
	// Step is the zero-based index into the time index.
	Step int
	// Time is the event time the step processed.
	Time float64
	// Deaths is the number of subjects whose event occurred at Time.
	Deaths int
	// Exits is the number of subjects leaving the risk set at Time,
	// deaths and censorings both.
	Exits int
	// Outcome tags the solver result.
	Outcome StepOutcome
	// Err holds the solver error for StepSolverFailed steps, nil otherwise.
	Err error
}

// FitReport collects the per-step results of one Fit call. It replaces
// warning inspection as the way to find out which steps fell back: warnings
// remain as telemetry, the report is the queryable record.
type FitReport struct {
	// Steps holds one entry per completed step, in time order. When the
	// loop stops early the discarded tail has no entries.
	Steps []StepResult
	// TotalDeathTimes is the full length of the time index before any
	// early stop.
	TotalDeathTimes int
	// FailedSteps counts entries with Outcome == StepSolverFailed.
	FailedSteps int
	// EarlyStopped reports whether the too-few-subjects rule halted the
	// loop before all death times were processed.
	EarlyStopped bool
	// StoppedAtStep is the zero-based index of the last completed step
	// when EarlyStopped, -1 otherwise.
	StoppedAtStep int
}

// StepsCompleted returns how many event times were actually processed.
func (r *FitReport) StepsCompleted() int {
	return len(r.Steps)
}

// Failed returns the results of the steps that fell back to zero
// coefficients.
func (r *FitReport) Failed() []StepResult {
	if r.FailedSteps == 0 {
		return nil
	}
	failed := make([]StepResult, 0, r.FailedSteps)
	for _, s := range r.Steps {
		if s.Outcome == StepSolverFailed {
			failed = append(failed, s)
		}
	}
	return failed
}
