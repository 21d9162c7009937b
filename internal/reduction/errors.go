package reduction

import "errors"

var (
	// ErrEmptyInput is returned when there are no vectors to reduce
	ErrEmptyInput = errors.New("empty input vectors")

	// ErrDimensionality is returned when more components are requested than the
	// sample count or the original dimensionality allows
	ErrDimensionality = errors.New("requested components exceed what PCA can produce")

	// ErrFactorization is returned when the decomposition does not converge
	ErrFactorization = errors.New("decomposition failed")
)
