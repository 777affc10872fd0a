package pipeline

import (
	"context"
	"time"

	"github.com/nomen-research/nomen/internal/domain/report"
	"github.com/nomen-research/nomen/internal/metrics"
)

// Runner executes one analysis run over a batch.
type Runner interface {
	Run(ctx context.Context, domainTag string, inputs []Input) (report.Report, error)
}

// Instrumented decorates a Runner with prometheus metrics.
type Instrumented struct {
	inner Runner
}

// NewInstrumented wraps a runner with run metrics.
func NewInstrumented(inner Runner) *Instrumented {
	return &Instrumented{inner: inner}
}

// Run delegates and records duration, analyzed and skipped counts.
func (i *Instrumented) Run(ctx context.Context, domainTag string, inputs []Input) (report.Report, error) {
	start := time.Now()
	rep, err := i.inner.Run(ctx, domainTag, inputs)
	if err != nil {
		return rep, err
	}
	metrics.ObserveRun(domainTag, rep.Diagnostics.Analyzed, rep.Diagnostics.SkipReasons, time.Since(start))
	return rep, nil
}
