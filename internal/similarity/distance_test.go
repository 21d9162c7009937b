package similarity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/vectrend/internal/similarity"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float64
		want    float64
		wantErr error
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 0},
		{name: "3-4-5", a: []float64{0, 0}, b: []float64{3, 4}, want: 5},
		{name: "empty", a: []float64{}, b: []float64{}, want: 0},
		{name: "mismatch", a: []float64{1, 2}, b: []float64{1}, wantErr: similarity.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := similarity.Euclidean(tt.a, tt.b)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestSquaredEuclidean(t *testing.T) {
	got, err := similarity.SquaredEuclidean([]float64{1, 1}, []float64{4, 5})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got, 1e-12)
}

func TestSquaredL2MatchesChecked(t *testing.T) {
	pairs := [][2][]float64{
		{{1, 1}, {4, 5}},
		{{0, 0, 0}, {0, 0, 0}},
		{{-2.5, 3, 7}, {1, -1, 0.5}},
	}
	for _, p := range pairs {
		want, err := similarity.SquaredEuclidean(p[0], p[1])
		require.NoError(t, err)
		assert.Equal(t, want, similarity.SquaredL2(p[0], p[1]))
	}
}

func TestAverageDistance(t *testing.T) {
	point := []float64{0, 0}
	points := [][]float64{{3, 4}, {0, 1}, {0, 0}}

	got, err := similarity.AverageDistance(point, points)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-12)

	_, err = similarity.AverageDistance(point, nil)
	assert.ErrorIs(t, err, similarity.ErrEmptySet)

	_, err = similarity.AverageDistance(point, [][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, similarity.ErrDimensionMismatch)
}

func TestCheckDimensions(t *testing.T) {
	dim, err := similarity.CheckDimensions([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, dim)

	_, err = similarity.CheckDimensions([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, similarity.ErrDimensionMismatch)

	dim, err = similarity.CheckDimensions(nil)
	require.NoError(t, err)
	assert.Zero(t, dim)
}

func TestEuclideanSymmetric(t *testing.T) {
	a := []float64{0.3, -1.2, 7}
	b := []float64{2.5, 0.1, -3}

	ab, err := similarity.Euclidean(a, b)
	require.NoError(t, err)
	ba, err := similarity.Euclidean(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.False(t, math.IsNaN(ab))
}
