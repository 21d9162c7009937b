package similarity

import "errors"

var (
	// ErrDimensionMismatch is returned when vectors have different dimensions
	ErrDimensionMismatch = errors.New("input vectors must have the same dimension")

	// ErrEmptySet is returned when an average is requested over no points
	ErrEmptySet = errors.New("cannot average distance over an empty set of points")
)
