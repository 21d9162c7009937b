package partition

// Config holds k-means configuration
type Config struct {
	K             int   // Number of clusters
	MaxIterations int   // Upper bound on Lloyd iterations
	Seed          int64 // Seed for k-means++ initialization
}

// DefaultConfig returns the default k-means configuration. K is left unset;
// callers derive it with ClusterCount.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 100,
		Seed:          42,
	}
}

// ClusterCount returns the number of clusters used for n records: ceil(n/4) + 1.
func ClusterCount(n int) int {
	return (n+3)/4 + 1
}
