// Package compose merges phonetic and domain feature records into composed
// vectors and enforces schema alignment across a batch.
package compose

import (
	"fmt"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/phonetic"
	"github.com/nomen-research/nomen/internal/domain/schema"
	"github.com/nomen-research/nomen/internal/domain/vector"
)

// Service merges feature records and validates batch schemas.
type Service struct{}

// New creates a composer service.
func New() *Service { return &Service{} }

// Compose merges one entity's phonetic and domain features into a single
// vector. A domain field named after a reserved phonetic key is a caller
// bug, not data absence, and fails the call.
func (s *Service) Compose(
	entityID string, ph phonetic.Features, df schema.Features,
) (vector.Vector, error) {
	values := ph.Map()
	for k, v := range df.Values {
		if phonetic.Reserved(k) {
			return vector.Vector{}, fmt.Errorf(
				"domain field %q shadows a phonetic feature: %w", k, domain.ErrSchemaCollision)
		}
		if _, ok := values[k]; ok {
			return vector.Vector{}, fmt.Errorf(
				"duplicate field %q: %w", k, domain.ErrSchemaCollision)
		}
		values[k] = v
	}
	return vector.New(entityID, values), nil
}

// Align verifies that every vector in the batch exposes the identical key
// set. The first vector's keys are the reference; the first divergence is
// reported with the offending entity and the exact missing/extra keys.
// Alignment never pads.
func (s *Service) Align(vectors []vector.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	reference := vectors[0].Keys()
	for _, v := range vectors[1:] {
		missing, extra := v.Diff(reference)
		if len(missing) > 0 || len(extra) > 0 {
			return domain.NewSchemaMismatch(v.EntityID(), missing, extra)
		}
	}
	return nil
}
