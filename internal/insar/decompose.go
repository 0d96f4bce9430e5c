package insar

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for the decomposer. Callers should test with errors.Is.
var (
	// ErrInsufficientGeometry indicates fewer than two LOS vectors were
	// supplied; two unknowns need at least two observations.
	ErrInsufficientGeometry = errors.New("insufficient viewing geometries")

	// ErrDegenerateGeometry indicates the supplied LOS directions are
	// collinear in the east/up plane, so the normal equations are singular.
	ErrDegenerateGeometry = errors.New("degenerate viewing geometry")

	// ErrDimensionMismatch indicates the observation vector length does not
	// match the number of design matrix rows.
	ErrDimensionMismatch = errors.New("observation dimension mismatch")
)

// maxConditionNumber is the threshold above which the normal-equations
// matrix is treated as numerically singular. LOS pairs from real ascending
// and descending tracks sit far below this.
const maxConditionNumber = 1e12

// DecomposedVelocity is the least-squares ground velocity for one target:
// East is the horizontal (eastward) component, Up the vertical component,
// in the same units as the supplied range-change observations.
type DecomposedVelocity struct {
	East float64
	Up   float64
}

// DesignMatrix relates the unknown [east, up] ground velocity to the
// observed LOS velocities of N viewing geometries. Row i holds the east and
// up components of geometry i's LOS vector. The generalized inverse
// (PᵗP)⁻¹Pᵗ is factored once at construction and shared by every Decompose
// call, so a matrix built for one scene pair can be reused across all
// targets in the scene.
type DesignMatrix struct {
	rows   int
	p      *mat.Dense
	solver *mat.Dense // (PᵗP)⁻¹Pᵗ, 2×N
}

// NewDesignMatrix builds the N×2 design matrix from the east and up
// components of the supplied LOS vectors and precomputes its least-squares
// solver factor.
//
// Returns ErrInsufficientGeometry for fewer than two vectors and
// ErrDegenerateGeometry when the directions are collinear in the east/up
// plane (for example two looks from the same track), which would make the
// normal equations singular. The check runs before any inversion so a
// degenerate system can never produce silent garbage.
func NewDesignMatrix(vectors []LOSVector) (*DesignMatrix, error) {
	n := len(vectors)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d LOS vectors, need at least 2", ErrInsufficientGeometry, n)
	}

	p := mat.NewDense(n, 2, nil)
	for i, v := range vectors {
		p.Set(i, 0, v.East)
		p.Set(i, 1, v.Up)
	}

	// Normal-equations matrix PᵗP (2×2).
	var ptp mat.Dense
	ptp.Mul(p.T(), p)

	if cond := mat.Cond(&ptp, 2); cond > maxConditionNumber {
		return nil, fmt.Errorf("%w: normal equations condition number %.3g", ErrDegenerateGeometry, cond)
	}

	var inv mat.Dense
	if err := inv.Inverse(&ptp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
	}

	var solver mat.Dense
	solver.Mul(&inv, p.T())

	return &DesignMatrix{rows: n, p: p, solver: &solver}, nil
}

// Rows returns the number of viewing geometries in the matrix.
func (d *DesignMatrix) Rows() int { return d.rows }

// Decompose solves the ordinary least-squares system m = (PᵗP)⁻¹Pᵗr for one
// target's range-change observations r, one value per viewing geometry in
// row order. With exactly two well-conditioned geometries the fit is exact;
// with more it minimizes the sum of squared residuals.
func (d *DesignMatrix) Decompose(observations []float64) (DecomposedVelocity, error) {
	if len(observations) != d.rows {
		return DecomposedVelocity{}, fmt.Errorf("%w: got %d observations for %d geometries",
			ErrDimensionMismatch, len(observations), d.rows)
	}

	r := mat.NewVecDense(d.rows, observations)
	var m mat.VecDense
	m.MulVec(d.solver, r)

	return DecomposedVelocity{East: m.AtVec(0), Up: m.AtVec(1)}, nil
}

// DecomposeMany decomposes a batch of targets against the same geometry,
// reusing the precomputed solver factor. Output order matches input order.
// The first malformed observation vector aborts the batch with its index in
// the error.
func (d *DesignMatrix) DecomposeMany(observations [][]float64) ([]DecomposedVelocity, error) {
	out := make([]DecomposedVelocity, len(observations))
	for i, obs := range observations {
		v, err := d.Decompose(obs)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Residuals returns Pm − r for one target, the per-geometry misfit of a
// decomposed velocity against its observations. Useful when N > 2 to judge
// the quality of an overdetermined fit.
func (d *DesignMatrix) Residuals(m DecomposedVelocity, observations []float64) ([]float64, error) {
	if len(observations) != d.rows {
		return nil, fmt.Errorf("%w: got %d observations for %d geometries",
			ErrDimensionMismatch, len(observations), d.rows)
	}

	res := make([]float64, d.rows)
	for i := range res {
		predicted := d.p.At(i, 0)*m.East + d.p.At(i, 1)*m.Up
		res[i] = predicted - observations[i]
	}
	return res, nil
}
