// Package dataredis is the Redis-backed domain context adapter. Domain
// schemas live in one hash per domain, entity feature records in one hash
// per entity.
package dataredis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/schema"
)

// DefaultKeyPrefix namespaces every key written by the repository.
const DefaultKeyPrefix = "nomen:"

// store is the consumer interface for the repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the pipeline's ContextAdapter over a Redis hash layout.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a Redis-backed domain context repository.
func New(s store) *Repo {
	return &Repo{store: s, keyPrefix: DefaultKeyPrefix}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.keyPrefix = prefix
	}
	return r
}

func (r *Repo) schemaKey(tag string) string {
	return r.keyPrefix + "domain:" + tag
}

func (r *Repo) entityKey(tag, id string) string {
	return r.keyPrefix + "feat:" + tag + ":" + id
}

// SaveSchema stores a domain's declared schema.
func (r *Repo) SaveSchema(ctx context.Context, sch schema.Schema) error {
	data, err := schemaToHash(sch)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.schemaKey(sch.Tag()), data); err != nil {
		return fmt.Errorf("save schema %q: %w", sch.Tag(), err)
	}
	return nil
}

// SaveEntity stores one entity's raw feature values.
func (r *Repo) SaveEntity(ctx context.Context, domainTag, entityID string, values map[string]float64) error {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		fields[k] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if err := r.store.HSet(ctx, r.entityKey(domainTag, entityID), fields); err != nil {
		return fmt.Errorf("save entity %q/%q: %w", domainTag, entityID, err)
	}
	return nil
}

// Schema loads a domain's declared schema.
func (r *Repo) Schema(ctx context.Context, domainTag string) (schema.Schema, error) {
	data, err := r.store.HGetAll(ctx, r.schemaKey(domainTag))
	if err != nil {
		return schema.Schema{}, fmt.Errorf("load schema %q: %w", domainTag, err)
	}
	if len(data) == 0 {
		return schema.Schema{}, fmt.Errorf("domain %q: %w", domainTag, domain.ErrDomainNotFound)
	}
	return schemaFromHash(domainTag, data)
}

// Fetch resolves one entity's domain features against the domain's declared
// schema, filling missing fields from the fallbacks.
func (r *Repo) Fetch(ctx context.Context, domainTag, entityID string) (schema.Features, error) {
	sch, err := r.Schema(ctx, domainTag)
	if err != nil {
		return schema.Features{}, err
	}

	key := r.entityKey(domainTag, entityID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return schema.Features{}, fmt.Errorf("check entity %q/%q: %w", domainTag, entityID, err)
	}
	if !exists {
		return schema.Features{}, fmt.Errorf("domain %q entity %q: %w", domainTag, entityID, domain.ErrEntityNotFound)
	}

	raw, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return schema.Features{}, fmt.Errorf("load entity %q/%q: %w", domainTag, entityID, err)
	}

	source := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return schema.Features{}, fmt.Errorf("entity %q/%q field %q: %w", domainTag, entityID, k, err)
		}
		source[k] = f
	}
	return sch.Resolve(source), nil
}

// Domains lists all stored domain tags, sorted.
func (r *Repo) Domains(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.keyPrefix+"domain:*")
	if err != nil {
		return nil, fmt.Errorf("scan domains: %w", err)
	}
	tags := make([]string, 0, len(keys))
	for _, key := range keys {
		tags = append(tags, strings.TrimPrefix(key, r.keyPrefix+"domain:"))
	}
	sort.Strings(tags)
	return tags, nil
}
