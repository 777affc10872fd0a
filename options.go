package nomen

import (
	"go.uber.org/zap"

	"github.com/nomen-research/nomen/internal/usecase/pipeline"
)

// Option configures an Analyzer.
type Option func(*analyzerConfig)

// WithDatasetDir serves domain context from a directory of YAML dataset
// files.
func WithDatasetDir(dir string) Option {
	return func(c *analyzerConfig) { c.datasetDir = dir }
}

// WithRedis serves domain context from Redis.
func WithRedis(addrs []string, password string) Option {
	return func(c *analyzerConfig) {
		c.redisAddrs = addrs
		c.redisPassword = password
	}
}

// WithAdapter plugs in a custom domain context adapter. It takes priority
// over WithDatasetDir and WithRedis.
func WithAdapter(adapter pipeline.ContextAdapter) Option {
	return func(c *analyzerConfig) { c.adapter = adapter }
}

// WithBootstrapResamples sets the bootstrap resample count (default 1000).
func WithBootstrapResamples(n int) Option {
	return func(c *analyzerConfig) {
		if n > 0 {
			c.resamples = n
		}
	}
}

// WithBootstrapSeed sets the bootstrap seed. The default is a fixed
// constant, so runs are reproducible out of the box.
func WithBootstrapSeed(seed int64) Option {
	return func(c *analyzerConfig) { c.seed = seed }
}

// WithCVFolds sets the cross-validation fold count (default 5).
func WithCVFolds(k int) Option {
	return func(c *analyzerConfig) {
		if k > 1 {
			c.folds = k
		}
	}
}

// WithStrictMode makes per-entity failures abort the run instead of being
// skipped with a warning.
func WithStrictMode(strict bool) Option {
	return func(c *analyzerConfig) { c.strict = strict }
}

// WithRegression enables the multivariate OLS fit with cross-validation.
func WithRegression(enabled bool) Option {
	return func(c *analyzerConfig) { c.regression = enabled }
}

// WithParallelism sets the worker count for per-entity feature
// computation.
func WithParallelism(workers int) Option {
	return func(c *analyzerConfig) {
		if workers > 0 {
			c.parallelism = workers
		}
	}
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *analyzerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
