// Package reduction projects embedding vectors onto their principal components.
package reduction

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/objones25/vectrend/internal/similarity"
)

// Model is a fitted PCA projection.
type Model struct {
	// Means holds the per-column mean used to center the data
	Means []float64
	// Components holds one unit-length principal axis per row, strongest first
	Components [][]float64
	// Variances holds every non-negative eigenvalue of the covariance, descending
	Variances []float64
}

// Reduce fits a PCA model on vectors and returns them projected onto the top
// components.
func Reduce(vectors [][]float64, components int) ([][]float64, error) {
	model, err := Fit(vectors, components)
	if err != nil {
		return nil, err
	}
	return model.Transform(vectors)
}

// Fit computes the top principal components of vectors.
func Fit(vectors [][]float64, components int) (*Model, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}
	cols, err := similarity.CheckDimensions(vectors)
	if err != nil {
		return nil, err
	}
	rows := len(vectors)
	if cols == 0 {
		return nil, fmt.Errorf("%w: vectors have no components", ErrEmptyInput)
	}
	if components < 1 || components > cols || components > rows {
		return nil, fmt.Errorf("%w: requested %d components from %d samples of dimension %d",
			ErrDimensionality, components, rows, cols)
	}

	data := make([]float64, rows*cols)
	for i, vec := range vectors {
		copy(data[i*cols:], vec)
	}
	X := mat.NewDense(rows, cols, data)

	// Center the data
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		var mean float64
		for i := 0; i < rows; i++ {
			mean += X.At(i, j)
		}
		mean /= float64(rows)
		means[j] = mean
		for i := 0; i < rows; i++ {
			X.Set(i, j, X.At(i, j)-mean)
		}
	}

	denom := float64(rows - 1)
	if denom < 1 {
		denom = 1
	}

	var axes *mat.Dense
	var variances []float64
	if cols <= rows {
		axes, variances, err = covarianceEigen(X, cols, denom)
	} else {
		// Wide data: the thin SVD of X avoids a cols x cols covariance.
		axes, variances, err = thinSVD(X, denom)
	}
	if err != nil {
		return nil, err
	}

	model := &Model{
		Means:      means,
		Components: make([][]float64, components),
		Variances:  variances,
	}
	for c := 0; c < components; c++ {
		axis := mat.Col(nil, c, axes)
		normalizeSign(axis)
		model.Components[c] = axis
	}
	return model, nil
}

// covarianceEigen returns the eigenvectors of the covariance of X as columns,
// ordered by eigenvalue descending.
func covarianceEigen(X *mat.Dense, cols int, denom float64) (*mat.Dense, []float64, error) {
	cov := mat.NewSymDense(cols, nil)
	cov.SymOuterK(1/denom, X.T())

	var eigen mat.EigenSym
	if ok := eigen.Factorize(cov, true); !ok {
		return nil, nil, fmt.Errorf("%w: eigendecomposition did not converge", ErrFactorization)
	}
	values := eigen.Values(nil)
	var vectors mat.Dense
	eigen.VectorsTo(&vectors)

	indices := make([]int, len(values))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return values[indices[i]] > values[indices[j]]
	})

	sorted := mat.NewDense(cols, len(indices), nil)
	variances := make([]float64, len(indices))
	for i, idx := range indices {
		sorted.SetCol(i, mat.Col(nil, idx, &vectors))
		variances[i] = math.Max(values[idx], 0)
	}
	return sorted, variances, nil
}

// thinSVD returns the right singular vectors of X as columns and the matching
// covariance eigenvalues. Singular values come back in descending order.
func thinSVD(X *mat.Dense, denom float64) (*mat.Dense, []float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return nil, nil, fmt.Errorf("%w: singular value decomposition did not converge", ErrFactorization)
	}
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	variances := make([]float64, len(values))
	for i, s := range values {
		variances[i] = s * s / denom
	}
	return &v, variances, nil
}

// normalizeSign flips axis so its largest-magnitude loading is positive. The sign
// of an eigenvector is arbitrary; fixing it keeps projections reproducible.
func normalizeSign(axis []float64) {
	maxAbs, idx := 0.0, 0
	for i, v := range axis {
		if a := math.Abs(v); a > maxAbs {
			maxAbs, idx = a, i
		}
	}
	if axis[idx] < 0 {
		for i := range axis {
			axis[i] = -axis[i]
		}
	}
}

// Dimension returns the number of components kept by the model.
func (m *Model) Dimension() int {
	return len(m.Components)
}

// Transform projects every vector onto the model's components.
func (m *Model) Transform(vectors [][]float64) ([][]float64, error) {
	out := make([][]float64, len(vectors))
	for i, vec := range vectors {
		projected, err := m.Project(vec)
		if err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		out[i] = projected
	}
	return out, nil
}

// Project centers vector and projects it onto the model's components.
func (m *Model) Project(vector []float64) ([]float64, error) {
	if len(vector) != len(m.Means) {
		return nil, fmt.Errorf("%w: got %d, want %d",
			similarity.ErrDimensionMismatch, len(vector), len(m.Means))
	}

	result := make([]float64, len(m.Components))
	for i, axis := range m.Components {
		var sum float64
		for j, w := range axis {
			sum += w * (vector[j] - m.Means[j])
		}
		result[i] = sum
	}
	return result, nil
}

// Reconstruct maps a projected vector back into the original space.
func (m *Model) Reconstruct(projected []float64) ([]float64, error) {
	if len(projected) != len(m.Components) {
		return nil, fmt.Errorf("%w: got %d, want %d",
			similarity.ErrDimensionMismatch, len(projected), len(m.Components))
	}

	result := make([]float64, len(m.Means))
	copy(result, m.Means)
	for c, axis := range m.Components {
		for j, w := range axis {
			result[j] += w * projected[c]
		}
	}
	return result, nil
}

// ExplainedVarianceRatio returns the share of total variance captured by each
// kept component.
func (m *Model) ExplainedVarianceRatio() []float64 {
	var total float64
	for _, v := range m.Variances {
		total += v
	}
	ratios := make([]float64, len(m.Components))
	if total == 0 {
		return ratios
	}
	for i := range ratios {
		ratios[i] = m.Variances[i] / total
	}
	return ratios
}
