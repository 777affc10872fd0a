package analyze

import (
	"fmt"
	"math"

	"github.com/nomen-research/nomen/internal/domain"
)

const pivotEpsilon = 1e-12

// fitOLS solves ordinary least squares via the normal equations with an
// intercept column. rows[i] is the feature row for observation i. Returns
// the intercept followed by one coefficient per feature column.
func fitOLS(rows [][]float64, y []float64) ([]float64, error) {
	n := len(rows)
	if n == 0 {
		return nil, domain.NewInsufficientSample(0, minSample)
	}
	p := len(rows[0]) + 1 // +1 intercept

	// Normal equations: (XᵀX) β = Xᵀy.
	a := make([][]float64, p)
	for i := range a {
		a[i] = make([]float64, p+1)
	}
	for i := range n {
		row := make([]float64, p)
		row[0] = 1
		copy(row[1:], rows[i])
		for j := range p {
			for k := range p {
				a[j][k] += row[j] * row[k]
			}
			a[j][p] += row[j] * y[i]
		}
	}

	return solveGauss(a)
}

// solveGauss runs Gaussian elimination with partial pivoting over an
// augmented matrix.
func solveGauss(a [][]float64) ([]float64, error) {
	p := len(a)
	for col := range p {
		pivot := col
		for row := col + 1; row < p; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < pivotEpsilon {
			return nil, fmt.Errorf("column %d: %w", col, domain.ErrSingularMatrix)
		}
		a[col], a[pivot] = a[pivot], a[col]

		for row := col + 1; row < p; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k <= p; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	beta := make([]float64, p)
	for i := p - 1; i >= 0; i-- {
		sum := a[i][p]
		for j := i + 1; j < p; j++ {
			sum -= a[i][j] * beta[j]
		}
		beta[i] = sum / a[i][i]
	}
	return beta, nil
}

func predict(beta, row []float64) float64 {
	out := beta[0]
	for j, v := range row {
		out += beta[j+1] * v
	}
	return out
}

// rSquared computes 1 - SSres/SStot for predictions against observations.
// A zero-variance outcome yields NaN.
func rSquared(y, preds []float64) float64 {
	ssTot := variance(y)
	if ssTot == 0 {
		return math.NaN()
	}
	var ssRes float64
	for i := range y {
		d := y[i] - preds[i]
		ssRes += d * d
	}
	return 1 - ssRes/ssTot
}

// crossValidateR2 computes the k-fold cross-validated R². Fold assignment
// is deterministic: observation i belongs to fold i mod k. Each fold's
// held-out points are predicted by a model fit on the remaining folds;
// SSres accumulates over all held-out predictions against the full-sample
// outcome variance. Folds whose training fit is singular are skipped; if
// every fold is skipped the result is NaN.
func crossValidateR2(rows [][]float64, y []float64, k int) float64 {
	n := len(rows)
	if k > n {
		k = n
	}
	if k < 2 {
		return math.NaN()
	}

	ssTot := variance(y)
	if ssTot == 0 {
		return math.NaN()
	}

	var ssRes float64
	anyFold := false
	for fold := range k {
		var trainRows [][]float64
		var trainY []float64
		var testIdx []int
		for i := range n {
			if i%k == fold {
				testIdx = append(testIdx, i)
			} else {
				trainRows = append(trainRows, rows[i])
				trainY = append(trainY, y[i])
			}
		}
		if len(testIdx) == 0 {
			continue
		}
		beta, err := fitOLS(trainRows, trainY)
		if err != nil {
			continue
		}
		anyFold = true
		for _, i := range testIdx {
			d := y[i] - predict(beta, rows[i])
			ssRes += d * d
		}
	}
	if !anyFold {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}
