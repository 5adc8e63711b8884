package survival

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

func TestRidgeStepUnpenalizedClosedForm(t *testing.T) {
	// Four at-risk subjects, constant design, one death: the coefficient
	// is the death count over the risk-set size, and every subject carries
	// the same leverage.
	X := mat.NewDense(4, 1, []float64{1, 1, 1, 1})
	y := mat.NewVecDense(4, []float64{1, 0, 0, 0})

	V2, beta, err := ridgeStep(X, y, 0, 0, mat.NewVecDense(1, nil))
	if err != nil {
		t.Fatalf("ridgeStep() unexpected error: %v", err)
	}

	if got := beta.AtVec(0); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("beta[0] = %v, want 0.25", got)
	}
	r, c := V2.Dims()
	if r != 1 || c != 4 {
		t.Fatalf("V2 dims = %dx%d, want 1x4", r, c)
	}
	for j := 0; j < c; j++ {
		if got := V2.At(0, j); math.Abs(got-0.25) > 1e-12 {
			t.Errorf("V2[0,%d] = %v, want 0.25", j, got)
		}
	}
}

func TestRidgeStepRidgePenalty(t *testing.T) {
	// XᵀX = 5, so the unit ridge penalty moves the solution from 1/5 to 1/6.
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewVecDense(2, []float64{1, 0})

	V2, beta, err := ridgeStep(X, y, 1, 0, mat.NewVecDense(1, nil))
	if err != nil {
		t.Fatalf("ridgeStep() unexpected error: %v", err)
	}

	if got := beta.AtVec(0); math.Abs(got-1.0/6) > 1e-12 {
		t.Errorf("beta[0] = %v, want %v", got, 1.0/6)
	}
	wantV2 := []float64{1.0 / 6, 1.0 / 3}
	for j, want := range wantV2 {
		if got := V2.At(0, j); math.Abs(got-want) > 1e-12 {
			t.Errorf("V2[0,%d] = %v, want %v", j, got, want)
		}
	}
}

func TestRidgeStepSingularWithoutPenalty(t *testing.T) {
	// Identical columns make the Gram matrix rank one.
	X := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	y := mat.NewVecDense(2, []float64{1, 0})

	_, _, err := ridgeStep(X, y, 0, 0, mat.NewVecDense(2, nil))
	if err == nil {
		t.Fatal("ridgeStep() expected an error for a singular system")
	}
	if !scierr.Is(err, scierr.ErrSingularMatrix) {
		t.Errorf("error = %v, want ErrSingularMatrix in the chain", err)
	}
	var me *scierr.ModelError
	if !scierr.As(err, &me) {
		t.Errorf("error = %v (%T), want a ModelError", err, err)
	}
}

func TestRidgeStepPenaltyRescuesSingularSystem(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	y := mat.NewVecDense(2, []float64{1, 0})

	_, beta, err := ridgeStep(X, y, 0.5, 0, mat.NewVecDense(2, nil))
	if err != nil {
		t.Fatalf("ridgeStep() unexpected error: %v", err)
	}
	// (XᵀX + I/2)⁻¹Xᵀy with XᵀX = [[2,2],[2,2]] gives 2/9 per coefficient.
	for j := 0; j < 2; j++ {
		if got := beta.AtVec(j); math.Abs(got-2.0/9) > 1e-12 {
			t.Errorf("beta[%d] = %v, want %v", j, got, 2.0/9)
		}
	}
}

func TestRidgeStepSmoothingPullsTowardOffset(t *testing.T) {
	// No deaths, only the smoothing penalty: beta = c2·V1·offset.
	X := mat.NewDense(2, 1, []float64{1, 1})
	y := mat.NewVecDense(2, nil)
	offset := mat.NewVecDense(1, []float64{3})

	_, beta, err := ridgeStep(X, y, 0, 2, offset)
	if err != nil {
		t.Fatalf("ridgeStep() unexpected error: %v", err)
	}
	// XᵀX + 2 = 4, so beta = 2·(1/4)·3 = 1.5.
	if got := beta.AtVec(0); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("beta[0] = %v, want 1.5", got)
	}
}
