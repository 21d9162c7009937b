// Package labeling names the top-ranked clusters through a language model.
//
// The clustering result is never modified here; when the model cannot produce
// usable labels the clusters are still returned with a placeholder name.
package labeling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/objones25/vectrend/internal/record"
	"github.com/objones25/vectrend/internal/trends"
)

const (
	// PlaceholderLabel names a cluster the model did not label
	PlaceholderLabel = "N/A"

	// DefaultTopics is the number of clusters labeled when Options.NTopics is unset
	DefaultTopics = 10

	// DefaultElementsPerGroup caps how many texts per cluster are sent to the model
	DefaultElementsPerGroup = 10
)

var (
	// ErrTooManyTopics is returned when more topics are requested than clusters exist
	ErrTooManyTopics = errors.New("number of topics cannot exceed number of clustering results")

	// ErrNilResult is returned when there is no clustering result to label
	ErrNilResult = errors.New("clustering result is nil")
)

// Labeler produces one short label per group of texts, in group order.
type Labeler interface {
	Label(ctx context.Context, groups [][]string) ([]string, error)
}

// Options controls which clusters are labeled.
type Options struct {
	NTopics          int // defaults to DefaultTopics
	ElementsPerGroup int // defaults to DefaultElementsPerGroup
}

func (o Options) withDefaults() Options {
	if o.NTopics <= 0 {
		o.NTopics = DefaultTopics
	}
	if o.ElementsPerGroup <= 0 {
		o.ElementsPerGroup = DefaultElementsPerGroup
	}
	return o
}

// ClassifiedCluster is a ranked cluster with its generated name.
type ClassifiedCluster struct {
	// Score is the cluster's density score
	Score     float64         `json:"score"`
	ClusterID int             `json:"clusterId"`
	Count     int             `json:"count"`
	Records   []record.Record `json:"records"`
	Name      string          `json:"name"`
}

// Classifier labels clustering results.
type Classifier struct {
	labeler Labeler
	logger  zerolog.Logger
}

// NewClassifier creates a classifier backed by labeler.
func NewClassifier(labeler Labeler, logger zerolog.Logger) *Classifier {
	return &Classifier{labeler: labeler, logger: logger}
}

// Classify labels the first opts.NTopics clusters of result. Rankings are
// assumed to be sorted best first.
func (c *Classifier) Classify(ctx context.Context, result *trends.Result, opts Options) ([]ClassifiedCluster, error) {
	if result == nil {
		return nil, ErrNilResult
	}
	opts = opts.withDefaults()
	if opts.NTopics > len(result.Rankings) {
		return nil, fmt.Errorf("%w: nTopics=%d, clusters=%d", ErrTooManyTopics, opts.NTopics, len(result.Rankings))
	}

	top := result.Rankings[:opts.NTopics]
	groups := make([][]string, len(top))
	for i, g := range top {
		records := g.Records
		if len(records) > opts.ElementsPerGroup {
			records = records[:opts.ElementsPerGroup]
		}
		groups[i] = record.Texts(records)
	}

	labels, err := c.labeler.Label(ctx, groups)
	if err != nil {
		c.logger.Warn().Err(err).Int("topics", len(top)).Msg("Labeling failed, using placeholder names")
		labels = nil
	} else if len(labels) != len(top) {
		c.logger.Debug().
			Int("labels", len(labels)).
			Int("topics", len(top)).
			Msg("Label count does not match topic count")
	}

	out := make([]ClassifiedCluster, len(top))
	for i, g := range top {
		name := PlaceholderLabel
		if i < len(labels) {
			if l := strings.TrimSpace(labels[i]); l != "" {
				name = l
			}
		}
		out[i] = ClassifiedCluster{
			Score:     g.CustomDensity,
			ClusterID: g.ClusterID,
			Count:     g.Count,
			Records:   g.Records,
			Name:      name,
		}
	}
	return out, nil
}
