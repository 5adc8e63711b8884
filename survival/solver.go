package survival

import (
	"gonum.org/v1/gonum/mat"

	scierr "github.com/OasisYE/lifelines/pkg/errors"
)

// ridgeStep solves the penalized least squares problem for a single event
// time:
//
//	V1   = (XᵀX + (c1+c2)·I)⁻¹
//	V2   = V1·Xᵀ
//	beta = V2·y + c2·V1·offset
//
// X is the n×d working design matrix with exited rows zeroed, y the death
// indicator vector, c1 the coefficient ridge penalty, c2 the smoothing
// penalty pulling beta toward the previous step's estimate carried in
// offset. It returns the per-subject leverage matrix V2 (d×n), which the
// caller needs for the variance contributions, and the new coefficient
// vector beta (d).
//
// With c1+c2 > 0 the system is always invertible. With both penalties zero
// a singular XᵀX surfaces as a ModelError wrapping ErrSingularMatrix.
// Panics out of the underlying BLAS/LAPACK calls are converted to errors.
func ridgeStep(X *mat.Dense, y *mat.VecDense, c1, c2 float64, offset *mat.VecDense) (V2 *mat.Dense, beta *mat.VecDense, err error) {
	err = scierr.SafeExecute("survival.ridgeStep", func() error {
		n, d := X.Dims()

		var gram mat.Dense
		gram.Mul(X.T(), X)
		penalty := c1 + c2
		for j := 0; j < d; j++ {
			gram.Set(j, j, gram.At(j, j)+penalty)
		}

		var v1 mat.Dense
		if invErr := v1.Inverse(&gram); invErr != nil {
			return scierr.NewModelError("survival.ridgeStep", "singular system", scierr.ErrSingularMatrix)
		}

		V2 = mat.NewDense(d, n, nil)
		V2.Mul(&v1, X.T())

		beta = mat.NewVecDense(d, nil)
		beta.MulVec(V2, y)

		if c2 != 0 && offset != nil {
			shrink := mat.NewVecDense(d, nil)
			shrink.MulVec(&v1, offset)
			beta.AddScaledVec(beta, c2, shrink)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return V2, beta, nil
}
