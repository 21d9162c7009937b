package trends

import (
	"errors"
	"fmt"

	"github.com/objones25/vectrend/internal/reduction"
	"github.com/objones25/vectrend/internal/similarity"
)

var (
	// ErrInsufficientData is returned when there are fewer records than PCA dimensions
	ErrInsufficientData = errors.New("not enough valid vectors to run clustering")

	// ErrUnsupportedAlgorithm is returned for any algorithm other than KMeans
	ErrUnsupportedAlgorithm = errors.New("unsupported clustering algorithm")

	// ErrDimensionality is returned when PCA cannot produce the requested width
	ErrDimensionality = reduction.ErrDimensionality

	// ErrDimensionMismatch is returned when two compared vectors differ in length
	ErrDimensionMismatch = similarity.ErrDimensionMismatch
)

// ClusterError represents a pipeline failure with the stage it happened in
type ClusterError struct {
	Op      string // Stage that failed
	Err     error  // Underlying error
	Context string // Additional context
}

func (e *ClusterError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Context)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ClusterError) Unwrap() error {
	return e.Err
}

// NewClusterError creates a new ClusterError
func NewClusterError(op string, err error, context string) error {
	return &ClusterError{
		Op:      op,
		Err:     err,
		Context: context,
	}
}

// IsInsufficientData checks if an error is an "insufficient data" error
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

// IsDimensionality checks if an error is a "dimensionality" error
func IsDimensionality(err error) bool {
	return errors.Is(err, ErrDimensionality)
}

// IsDimensionMismatch checks if an error is a "dimension mismatch" error
func IsDimensionMismatch(err error) bool {
	return errors.Is(err, ErrDimensionMismatch)
}

// errorType maps an error to a low-cardinality metric label.
func errorType(err error) string {
	switch {
	case IsInsufficientData(err):
		return "insufficient_data"
	case IsDimensionality(err):
		return "dimensionality"
	case IsDimensionMismatch(err):
		return "dimension_mismatch"
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return "unsupported_algorithm"
	default:
		return "other"
	}
}
