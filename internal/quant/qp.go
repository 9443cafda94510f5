package quant

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// qpProblem is min ½xᵀQx + cᵀx subject to aᵀx = 1 and x ≥ 0.
// Q must be positive definite on every face of the feasible set.
type qpProblem struct {
	Q mat.Symmetric
	c []float64
	a []float64
}

// solve runs a primal active-set method from the feasible point x0.
// Coordinates of x0 that are exactly zero start in the working set.
func (p qpProblem) solve(x0 []float64) ([]float64, error) {
	n := len(x0)
	if n != len(p.a) || n != len(p.c) {
		return nil, fmt.Errorf("%w: qp with %d variables, %d costs, %d constraint weights", ErrDimensionMismatch, n, len(p.c), len(p.a))
	}

	x := make([]float64, n)
	copy(x, x0)
	atBound := make([]bool, n)
	for i, v := range x {
		atBound[i] = v == 0
	}

	q := mat.DenseCopyOf(p.Q)
	grad := make([]float64, n)
	maxIter := 100 + 20*n

	for iter := 0; iter < maxIter; iter++ {
		// g = Qx + c
		gv := mat.NewVecDense(n, grad)
		gv.MulVec(q, mat.NewVecDense(n, x))
		floats.Add(grad, p.c)

		var free []int
		for i := 0; i < n; i++ {
			if !atBound[i] {
				free = append(free, i)
			}
		}
		if len(free) == 0 {
			return nil, fmt.Errorf("%w: empty free set in active-set solver", ErrDegenerateCovariance)
		}

		step, mult, err := p.equalityStep(q, grad, free)
		if err != nil {
			return nil, err
		}

		scale := 1 + floats.Norm(x, math.Inf(1))
		if floats.Norm(step, math.Inf(1)) <= 1e-12*scale {
			// Stationary on this face: release the bound with the most negative multiplier
			release, worst := -1, -1e-12*(1+floats.Norm(grad, math.Inf(1)))
			for i := 0; i < n; i++ {
				if !atBound[i] {
					continue
				}
				lambda := grad[i] + mult*p.a[i]
				if lambda < worst {
					release, worst = i, lambda
				}
			}
			if release < 0 {
				return x, nil
			}
			atBound[release] = false
			continue
		}

		alpha, blocking := 1.0, -1
		for j, i := range free {
			if step[j] < 0 {
				if r := -x[i] / step[j]; r < alpha {
					alpha, blocking = r, i
				}
			}
		}
		for j, i := range free {
			x[i] += alpha * step[j]
			if x[i] < 0 {
				x[i] = 0
			}
		}
		if blocking >= 0 {
			x[blocking] = 0
			atBound[blocking] = true
		}
	}
	return nil, fmt.Errorf("%w: active-set solver did not converge after %d iterations", ErrDegenerateCovariance, maxIter)
}

// equalityStep solves the KKT system of the face defined by free:
//
//	[Q_FF  a_F] [p]   [-g_F]
//	[a_Fᵀ   0 ] [m] = [  0 ]
//
// and returns the step p over the free coordinates and the multiplier m.
func (p qpProblem) equalityStep(q *mat.Dense, grad []float64, free []int) ([]float64, float64, error) {
	m := len(free)
	kkt := mat.NewDense(m+1, m+1, nil)
	rhs := mat.NewVecDense(m+1, nil)
	for r, i := range free {
		for c, j := range free {
			kkt.Set(r, c, q.At(i, j))
		}
		kkt.Set(r, m, p.a[i])
		kkt.Set(m, r, p.a[i])
		rhs.SetVec(r, -grad[i])
	}

	var sol mat.VecDense
	if err := sol.SolveVec(kkt, rhs); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDegenerateCovariance, err)
	}

	step := make([]float64, m)
	for r := range step {
		step[r] = sol.AtVec(r)
	}
	mult := sol.AtVec(m)
	if math.IsNaN(mult) || floats.HasNaN(step) {
		return nil, 0, fmt.Errorf("%w: solver produced NaN", ErrDegenerateCovariance)
	}
	return step, mult, nil
}
