// Command vectrend clusters embedded feedback records and prints the ranked
// clusters as JSON, optionally naming the top clusters with a language model.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/objones25/vectrend/internal/config"
	"github.com/objones25/vectrend/internal/labeling"
	"github.com/objones25/vectrend/internal/labeling/cache"
	"github.com/objones25/vectrend/internal/record"
	"github.com/objones25/vectrend/internal/trends"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "vectrend: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath  string
	label       bool
	topics      int
	metricsAddr string
	inputs      []string
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	fs := flag.NewFlagSet("vectrend", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &flags{}
	fs.StringVar(&f.configPath, "config", "config.yaml", "Path to YAML config file (defaults apply when missing)")
	fs.BoolVar(&f.label, "label", false, "Name the top clusters through the configured chat model")
	fs.IntVar(&f.topics, "topics", 0, "Number of clusters to name (overrides labeling.n_topics); must not exceed the cluster count")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: vectrend [-config path] [-label] [-topics n] [-metrics-addr :9090] records.json")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.inputs = fs.Args()
	if len(f.inputs) != 1 {
		fs.Usage()
		return nil, errors.New("exactly one records file is required")
	}
	return f, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if f.label {
		cfg.Labeling.Enabled = true
	}
	if f.topics > 0 {
		cfg.Labeling.NTopics = f.topics
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Addr = f.metricsAddr
	}

	logger := newLogger(cfg.Log, stderr)

	g, gctx := errgroup.WithContext(ctx)

	var srv *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info().Str("addr", srv.Addr).Msg("Serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if srv != nil {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}
		out, err := pipeline(gctx, cfg, f.inputs[0], logger)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	})

	return g.Wait()
}

func pipeline(ctx context.Context, cfg *config.AppConfig, path string, logger zerolog.Logger) (any, error) {
	records, err := record.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := record.Validate(records); err != nil {
		return nil, fmt.Errorf("invalid records in %s: %w", path, err)
	}
	logger.Info().Int("records", len(records)).Str("file", path).Msg("Loaded records")

	result, err := trends.Cluster(records, cfg.Trends(),
		trends.WithLogger(logger),
		trends.WithMetrics(true),
	)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("clusters", len(result.Rankings)).
		Int("iterations", result.Iterations).
		Bool("converged", result.Converged).
		Msg("Clustering complete")

	if !cfg.Labeling.Enabled {
		return result.Rankings, nil
	}

	labeler, closeCache, err := newLabeler(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeCache()

	// An explicit n_topics (flag or config) larger than the cluster count is
	// an error from Classify; only the implicit default shrinks to fit.
	opts := cfg.ClassifyOptions()
	if opts.NTopics == 0 {
		opts.NTopics = min(labeling.DefaultTopics, len(result.Rankings))
		logger.Debug().
			Int("topics", opts.NTopics).
			Int("clusters", len(result.Rankings)).
			Msg("Using default topic count")
	}
	return labeling.NewClassifier(labeler, logger).Classify(ctx, result, opts)
}

func newLabeler(cfg *config.AppConfig, logger zerolog.Logger) (labeling.Labeler, func(), error) {
	chat, err := labeling.NewChatLabeler(cfg.Chat(), logger)
	if err != nil {
		return nil, nil, err
	}

	var c cache.Cache
	switch cfg.Cache.Type {
	case config.CacheMemory:
		c, err = cache.NewMemoryCache(cfg.Cache.Size)
	case config.CacheRedis:
		c, err = cache.NewRedisCache(cfg.RedisCache(), logger)
	default:
		return chat, func() {}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s cache: %w", cfg.Cache.Type, err)
	}

	closeCache := func() {
		if err := c.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close label cache")
		}
	}
	return labeling.NewCachedLabeler(chat, c, chat.Model(), logger), closeCache, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
