// Package trends turns a batch of embedded feedback records into ranked
// clusters: PCA reduction, k-means partitioning, silhouette scoring and
// density ranking.
//
// The pipeline is synchronous and deterministic for a fixed seed. Its result is
// a plain value that callers may hand to slower consumers such as labeling.
package trends

import (
	"fmt"
	"time"

	"github.com/objones25/vectrend/internal/cohesion"
	"github.com/objones25/vectrend/internal/partition"
	"github.com/objones25/vectrend/internal/ranking"
	"github.com/objones25/vectrend/internal/record"
	"github.com/objones25/vectrend/internal/reduction"
)

// Result is the output of a clustering run.
type Result struct {
	// Rankings holds every cluster, best first by CustomDensity
	Rankings []ranking.Group `json:"rankings"`
	// Assignments holds the cluster id of each input record, in input order
	Assignments []int `json:"assignments"`
	// K is the number of clusters k-means was asked for
	K          int  `json:"k"`
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

// Cluster reduces, partitions, scores and ranks records.
func Cluster(records []record.Record, cfg Config, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	start := time.Now()

	res, err := run(records, cfg, o)
	if o.metrics {
		status := "success"
		if err != nil {
			status = "error"
		}
		ClusterRunsTotal.WithLabelValues(status).Inc()
		StageDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	}
	return res, err
}

func run(records []record.Record, cfg Config, o options) (*Result, error) {
	log := o.logger.With().Str("component", "trends").Logger()

	if err := cfg.validate(); err != nil {
		return nil, o.fail("validate", err, "")
	}
	if len(records) < cfg.PCADimensions {
		log.Debug().
			Int("records", len(records)).
			Int("pca_dimensions", cfg.PCADimensions).
			Msg("Not enough valid vectors to run kmeans")
		return nil, o.fail("validate", ErrInsufficientData,
			fmt.Sprintf("%d records, %d pca dimensions", len(records), cfg.PCADimensions))
	}
	if o.metrics {
		RecordsPerRun.Observe(float64(len(records)))
	}

	// Reduce
	var reduced [][]float64
	err := o.stage("reduce", func() error {
		var err error
		reduced, err = reduction.Reduce(record.Vectors(records), cfg.PCADimensions)
		return err
	})
	if err != nil {
		return nil, o.fail("reduce", err, fmt.Sprintf("%d records to %d dimensions", len(records), cfg.PCADimensions))
	}

	reducedRecords := make([]record.Record, len(records))
	for i, r := range records {
		reducedRecords[i] = r.WithVector(reduced[i])
	}
	log.Debug().Int("records", len(records)).Int("dimensions", cfg.PCADimensions).Msg("Reduced vectors")

	// Partition
	kcfg := partition.DefaultConfig()
	kcfg.K = partition.ClusterCount(len(records))
	kcfg.Seed = cfg.Seed
	if cfg.MaxIterations > 0 {
		kcfg.MaxIterations = cfg.MaxIterations
	}
	var km *partition.Result
	err = o.stage("partition", func() error {
		var err error
		km, err = partition.KMeans(reduced, kcfg)
		return err
	})
	if err != nil {
		return nil, o.fail("partition", err, fmt.Sprintf("k=%d", kcfg.K))
	}
	log.Debug().
		Int("k", kcfg.K).
		Int("iterations", km.Iterations).
		Bool("converged", km.Converged).
		Msg("Partitioned vectors")

	// Score
	var scores []float64
	err = o.stage("score", func() error {
		var err error
		scores, err = cohesion.Silhouette(reduced, km.Assignments)
		return err
	})
	if err != nil {
		return nil, o.fail("score", err, "")
	}
	meanScore := cohesion.Mean(scores)
	log.Debug().Float64("mean_silhouette", meanScore).Msg("Scored cohesion")

	// Rank
	var groups []ranking.Group
	err = o.stage("rank", func() error {
		var err error
		groups, err = ranking.Rank(km.Assignments, scores, reducedRecords)
		return err
	})
	if err != nil {
		return nil, o.fail("rank", err, "")
	}

	if o.metrics {
		ClustersPerRun.Observe(float64(len(groups)))
		MeanSilhouette.Set(meanScore)
	}
	log.Debug().Int("clusters", len(groups)).Msg("Ranked clusters")

	return &Result{
		Rankings:    groups,
		Assignments: km.Assignments,
		K:           kcfg.K,
		Iterations:  km.Iterations,
		Converged:   km.Converged,
	}, nil
}

// stage runs fn and records its duration when metrics are enabled.
func (o options) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if o.metrics {
		StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	return err
}

// fail wraps err for the caller and counts it.
func (o options) fail(op string, err error, context string) error {
	if o.metrics {
		ClusterErrors.WithLabelValues(op, errorType(err)).Inc()
	}
	o.logger.Debug().Err(err).Str("stage", op).Msg("Clustering failed")
	return NewClusterError(op, err, context)
}
