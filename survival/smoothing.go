package survival

import (
	"gonum.org/v1/gonum/mat"

	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// epanechnikovKernel evaluates K(u) = 0.75*(1 - u^2) for |u| < 1 and 0
// outside that support, with u = (t - s) / bandwidth.
func epanechnikovKernel(t, s, bandwidth float64) float64 {
	u := (t - s) / bandwidth
	if u <= -1 || u >= 1 {
		return 0
	}
	return 0.75 * (1 - u*u)
}

// SmoothedHazards smooths the per-step hazard increments with an
// Epanechnikov kernel over the event-time index, returning one row per
// event time and one column per covariate. Larger bandwidths average over
// more neighbouring steps. Returns nil when the training data contained no
// observed deaths.
func (f *AalenAdditiveFitter) SmoothedHazards(bandwidth float64) (*mat.Dense, error) {
	const op = "AalenAdditiveFitter.SmoothedHazards"

	if err := f.checkFitted("SmoothedHazards"); err != nil {
		return nil, err
	}
	if err := scierr.CheckScalar(op, bandwidth, 0); err != nil {
		return nil, err
	}
	if bandwidth <= 0 {
		return nil, scierr.NewValueError(op, "bandwidth must be positive")
	}
	if f.hazardIncrements_ == nil {
		return nil, nil
	}

	steps, d := f.hazardIncrements_.Dims()
	smoothed := mat.NewDense(steps, d, nil)
	for i := 0; i < steps; i++ {
		row := smoothed.RawRowView(i)
		for s := 0; s < steps; s++ {
			k := epanechnikovKernel(f.eventTimes_[i], f.eventTimes_[s], bandwidth)
			if k == 0 {
				continue
			}
			for j := 0; j < d; j++ {
				row[j] += k * f.hazardIncrements_.At(s, j)
			}
		}
	}
	return smoothed, nil
}
