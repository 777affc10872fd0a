// Package pipeline orchestrates one analysis run: extract phonetic features,
// fetch domain context, compose vectors, then hand the aligned batch to the
// correlation engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/report"
	"github.com/nomen-research/nomen/internal/domain/vector"
)

// Skip reasons recorded in run diagnostics.
const (
	SkipInvalidName    = "invalid_name"
	SkipEntityNotFound = "entity_not_found"
	SkipAdapterError   = "adapter_error"
)

// Input is one entity plus its externally supplied outcome value.
type Input struct {
	Entity  domain.Entity
	Outcome float64
}

// Service runs the batch pipeline. Per-entity failures are skipped with a
// warning by default and escalated in strict mode; schema and sample-size
// violations always abort the run.
type Service struct {
	extractor Extractor
	composer  Composer
	engine    Engine
	adapter   ContextAdapter
	logger    *zap.Logger

	strict      bool
	parallelism int
}

// New creates a pipeline service.
func New(
	extractor Extractor, composer Composer, engine Engine,
	adapter ContextAdapter, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor, composer: composer, engine: engine,
		adapter: adapter, logger: logger,
		parallelism: 1,
	}
}

// WithStrictMode makes per-entity failures abort the run.
func (s *Service) WithStrictMode(strict bool) *Service {
	s.strict = strict
	return s
}

// WithParallelism sets the worker count for per-entity feature computation.
// Extraction and composition are pure and independent per entity; the
// engine still runs only after the whole batch is materialized.
func (s *Service) WithParallelism(workers int) *Service {
	if workers > 0 {
		s.parallelism = workers
	}
	return s
}

// entityResult is the outcome of processing a single input.
type entityResult struct {
	vec        vector.Vector
	outcome    float64
	defaulted  []string // schema fields filled from fallbacks
	skipReason string
	err        error // batch-level violation, aborts the run
}

// Run executes one full analysis over the batch.
func (s *Service) Run(ctx context.Context, domainTag string, inputs []Input) (report.Report, error) {
	if len(inputs) == 0 {
		return report.Report{}, domain.NewInsufficientSample(0, 3)
	}

	results := make([]entityResult, len(inputs))
	if s.parallelism > 1 {
		s.runParallel(ctx, domainTag, inputs, results)
	} else {
		for i, in := range inputs {
			results[i] = s.processEntity(ctx, domainTag, in)
		}
	}

	vectors := make([]vector.Vector, 0, len(inputs))
	outcomes := make([]float64, 0, len(inputs))
	diag := report.Diagnostics{Entities: len(inputs), SkipReasons: map[string]int{}}

	for i, res := range results {
		if res.err != nil {
			return report.Report{}, res.err
		}
		if res.skipReason != "" {
			diag.Skipped++
			diag.SkipReasons[res.skipReason]++
			s.logger.Warn("skipping entity",
				zap.String("domain", domainTag),
				zap.String("entity", inputs[i].Entity.ID()),
				zap.String("reason", res.skipReason),
			)
			continue
		}
		if len(res.defaulted) > 0 {
			if diag.DefaultedFields == nil {
				diag.DefaultedFields = map[string]int{}
			}
			for _, field := range res.defaulted {
				diag.DefaultedFields[field]++
			}
			s.logger.Debug("fallback values applied",
				zap.String("domain", domainTag),
				zap.String("entity", inputs[i].Entity.ID()),
				zap.Strings("fields", res.defaulted),
			)
		}
		vectors = append(vectors, res.vec)
		outcomes = append(outcomes, res.outcome)
	}
	diag.Analyzed = len(vectors)
	if len(diag.SkipReasons) == 0 {
		diag.SkipReasons = nil
	}

	if err := s.composer.Align(vectors); err != nil {
		return report.Report{}, err
	}

	rep, err := s.engine.Analyze(vectors, outcomes)
	if err != nil {
		return report.Report{}, err
	}
	rep.Domain = domainTag
	rep.Diagnostics = diag

	s.logger.Info("analysis run complete",
		zap.String("domain", domainTag),
		zap.Int("entities", diag.Entities),
		zap.Int("analyzed", diag.Analyzed),
		zap.Int("skipped", diag.Skipped),
	)
	return rep, nil
}

func (s *Service) runParallel(
	ctx context.Context, domainTag string, inputs []Input, results []entityResult,
) {
	indices := make(chan int)
	var wg sync.WaitGroup

	workers := s.parallelism
	if workers > len(inputs) {
		workers = len(inputs)
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = s.processEntity(ctx, domainTag, inputs[i])
			}
		}()
	}
	for i := range inputs {
		indices <- i
	}
	close(indices)
	wg.Wait()
}

// processEntity runs extract → fetch → compose for one input. Lookup and
// input failures become skips (or batch errors in strict mode); schema
// violations are always batch errors.
func (s *Service) processEntity(ctx context.Context, domainTag string, in Input) entityResult {
	ph, err := s.extractor.Extract(in.Entity.Name())
	if err != nil {
		return s.entityFailure(in, SkipInvalidName, err)
	}
	if ph.Invalid {
		return s.entityFailure(in, SkipInvalidName, fmt.Errorf("entity %q: empty name: %w", in.Entity.ID(), domain.ErrInvalidInput))
	}

	df, err := s.adapter.Fetch(ctx, domainTag, in.Entity.ID())
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDomainNotFound):
		// An unknown domain tag dooms every entity in the batch alike.
		return entityResult{err: err}
	case errors.Is(err, domain.ErrEntityNotFound):
		return s.entityFailure(in, SkipEntityNotFound, err)
	default:
		return s.entityFailure(in, SkipAdapterError, err)
	}

	vec, err := s.composer.Compose(in.Entity.ID(), ph, df)
	if err != nil {
		// Collisions indicate a broken domain declaration, not bad data.
		return entityResult{err: err}
	}
	return entityResult{vec: vec, outcome: in.Outcome, defaulted: df.Defaulted}
}

func (s *Service) entityFailure(in Input, reason string, err error) entityResult {
	if s.strict {
		return entityResult{err: fmt.Errorf("strict mode: entity %q: %w", in.Entity.ID(), err)}
	}
	return entityResult{skipReason: reason}
}
