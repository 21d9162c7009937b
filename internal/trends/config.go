package trends

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Algorithm names a clustering algorithm.
type Algorithm string

const (
	// KMeans is seeded k-means++ with Lloyd iterations
	KMeans Algorithm = "kmeans"
)

// Config holds clustering configuration
type Config struct {
	// Dimension is the embedding width the caller expects. It is carried for
	// reporting only and is not checked against the record vectors.
	Dimension int
	// PCADimensions is the width vectors are reduced to before clustering
	PCADimensions int
	// Algorithm selects the partitioning algorithm; only KMeans is supported
	Algorithm Algorithm
	// MaxIterations bounds the k-means refinement loop
	MaxIterations int
	// Seed fixes k-means++ initialization
	Seed int64
}

// DefaultConfig returns default clustering configuration
func DefaultConfig() Config {
	return Config{
		Dimension:     1536,
		PCADimensions: 20,
		Algorithm:     KMeans,
		MaxIterations: 100,
		Seed:          42,
	}
}

func (c Config) validate() error {
	if c.PCADimensions < 1 {
		return fmt.Errorf("%w: pca dimensions must be positive, got %d", ErrDimensionality, c.PCADimensions)
	}
	switch c.Algorithm {
	case KMeans, "":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, c.Algorithm)
	}
	return nil
}

type options struct {
	logger  zerolog.Logger
	metrics bool
}

// Option configures a Cluster call.
type Option func(*options)

// WithLogger routes pipeline debug output to logger. The default discards it.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records stage durations and outcomes in the package's Prometheus
// collectors.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.metrics = enabled
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
