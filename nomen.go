// Package nomen is an embeddable engine that scores how strongly the sound
// of names tracks real-world outcomes: it derives phonetic features from
// name strings, joins them with domain context, and runs correlation and
// regression statistics with bootstrap confidence intervals.
package nomen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nomen-research/nomen/internal/db"
	dbRedis "github.com/nomen-research/nomen/internal/db/redis"
	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/report"
	"github.com/nomen-research/nomen/internal/repository/datafile"
	"github.com/nomen-research/nomen/internal/repository/dataredis"
	"github.com/nomen-research/nomen/internal/usecase/analyze"
	"github.com/nomen-research/nomen/internal/usecase/compose"
	"github.com/nomen-research/nomen/internal/usecase/extract"
	"github.com/nomen-research/nomen/internal/usecase/pipeline"
)

const defaultReadinessTimeout = 10 * time.Second

// Result types, re-exported for callers.
type (
	// Report is the full output of one analysis run.
	Report = report.Report
	// Result is the correlation outcome for one feature.
	Result = report.Result
	// Regression is the multivariate fit summary.
	Regression = report.Regression
	// Diagnostics describes skips and counts for one run.
	Diagnostics = report.Diagnostics
)

// Sentinel errors, re-exported for callers.
var (
	ErrInvalidInput       = domain.ErrInvalidInput
	ErrDomainNotFound     = domain.ErrDomainNotFound
	ErrEntityNotFound     = domain.ErrEntityNotFound
	ErrSchemaCollision    = domain.ErrSchemaCollision
	ErrSchemaMismatch     = domain.ErrSchemaMismatch
	ErrInsufficientSample = domain.ErrInsufficientSample
)

// Entity is one named subject with its externally observed outcome.
type Entity struct {
	Name    string
	ID      string // optional; defaults to Name
	Outcome float64
}

// Analyzer is the nomen SDK entry point.
type Analyzer struct {
	cfg     *analyzerConfig
	adapter pipeline.ContextAdapter
	store   db.Store // non-nil only for the redis backend
}

// New creates an Analyzer. A context backend (dataset directory, Redis, or
// a custom adapter) is only required for domain-tag analysis; the typed
// RowSet API carries its context inline.
func New(opts ...Option) (*Analyzer, error) {
	cfg := newAnalyzerConfig()
	for _, o := range opts {
		o(cfg)
	}

	a := &Analyzer{cfg: cfg, adapter: cfg.adapter}
	if err := a.connectBackend(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Analyzer) connectBackend() error {
	cfg := a.cfg
	switch {
	case cfg.adapter != nil:
		// Custom adapter wins over backend options.
		return nil
	case cfg.datasetDir != "":
		repo, err := datafile.New(cfg.datasetDir)
		if err != nil {
			return fmt.Errorf("nomen: load datasets: %w", err)
		}
		a.adapter = repo
		return nil
	case len(cfg.redisAddrs) > 0:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return fmt.Errorf("nomen: create redis store: %w", err)
		}
		if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			store.Close()
			return fmt.Errorf("nomen: database not ready: %w", err)
		}
		a.store = store
		a.adapter = dataredis.New(store)
		return nil
	default:
		return nil
	}
}

// Close releases the backing store, if any.
func (a *Analyzer) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// Analyze runs the full pipeline for a batch of entities in one domain,
// pulling domain features from the configured context backend.
func (a *Analyzer) Analyze(ctx context.Context, domainTag string, entities []Entity) (Report, error) {
	if a.adapter == nil {
		return Report{}, errors.New("nomen: no context backend configured (use WithDatasetDir, WithRedis, or WithAdapter)")
	}

	inputs := make([]pipeline.Input, len(entities))
	for i, e := range entities {
		entity, err := domain.NewEntity(e.Name, domainTag, e.ID)
		if err != nil {
			return Report{}, fmt.Errorf("entity %d: %w", i, err)
		}
		inputs[i] = pipeline.Input{Entity: entity, Outcome: e.Outcome}
	}
	return a.runner(a.adapter).Run(ctx, domainTag, inputs)
}

// runner wires a pipeline service around the given adapter with the
// analyzer's settings.
func (a *Analyzer) runner(adapter pipeline.ContextAdapter) *pipeline.Service {
	cfg := a.cfg
	engine := analyze.New().
		WithResamples(cfg.resamples).
		WithSeed(cfg.seed).
		WithCVFolds(cfg.folds).
		WithRegression(cfg.regression)

	return pipeline.New(extract.New(), compose.New(), engine, adapter, cfg.logger).
		WithStrictMode(cfg.strict).
		WithParallelism(cfg.parallelism)
}

// analyzerConfig is built by Options.
type analyzerConfig struct {
	datasetDir    string
	redisAddrs    []string
	redisPassword string
	adapter       pipeline.ContextAdapter

	resamples   int
	seed        int64
	folds       int
	strict      bool
	regression  bool
	parallelism int
	logger      *zap.Logger
}

func newAnalyzerConfig() *analyzerConfig {
	return &analyzerConfig{
		resamples:   analyze.DefaultResamples,
		seed:        analyze.DefaultSeed,
		folds:       analyze.DefaultCVFolds,
		parallelism: 1,
		logger:      zap.NewNop(),
	}
}
