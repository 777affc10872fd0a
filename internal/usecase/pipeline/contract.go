package pipeline

import (
	"context"

	"github.com/nomen-research/nomen/internal/domain/phonetic"
	"github.com/nomen-research/nomen/internal/domain/report"
	"github.com/nomen-research/nomen/internal/domain/schema"
	"github.com/nomen-research/nomen/internal/domain/vector"
)

// Extractor derives phonetic features from a name.
type Extractor interface {
	Extract(name string) (phonetic.Features, error)
}

// Composer merges feature records and validates batch alignment.
type Composer interface {
	Compose(entityID string, ph phonetic.Features, df schema.Features) (vector.Vector, error)
	Align(vectors []vector.Vector) error
}

// Engine runs the correlation statistics over a materialized batch.
type Engine interface {
	Analyze(vectors []vector.Vector, outcomes []float64) (report.Report, error)
}

// ContextAdapter supplies domain-specific features for an entity. It is the
// only pipeline collaborator allowed to touch external state.
type ContextAdapter interface {
	Fetch(ctx context.Context, domainTag, entityID string) (schema.Features, error)
}
