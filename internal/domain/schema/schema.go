// Package schema declares per-domain feature schemas: the ordered, named
// numeric fields a domain contributes to every composed vector, each with an
// explicit fallback value.
package schema

import (
	"fmt"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/phonetic"
)

const maxFieldNameLen = 64

// Field is one declared numeric domain feature.
type Field struct {
	name     string
	fallback float64
}

// NewField validates and creates a Field. Name must be non-empty, max 64
// chars, and must not shadow a reserved phonetic key.
func NewField(name string, fallback float64) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required: %w", domain.ErrInvalidSchema)
	}
	if len(name) > maxFieldNameLen {
		return Field{}, fmt.Errorf("field name %q too long (max %d): %w", name, maxFieldNameLen, domain.ErrInvalidSchema)
	}
	if phonetic.Reserved(name) {
		return Field{}, fmt.Errorf("field name %q is reserved: %w", name, domain.ErrSchemaCollision)
	}
	return Field{name: name, fallback: fallback}, nil
}

// ReconstructField creates a Field without validation (storage hydration).
func ReconstructField(name string, fallback float64) Field {
	return Field{name: name, fallback: fallback}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Fallback returns the value used when the source lacks this field.
func (f Field) Fallback() float64 { return f.fallback }

// Schema is the immutable feature declaration of one domain.
type Schema struct {
	tag    string
	fields []Field
}

// New validates and creates a Schema. Field names must be unique.
func New(tag string, fields []Field) (Schema, error) {
	if tag == "" {
		return Schema{}, fmt.Errorf("domain tag is required: %w", domain.ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.name] {
			return Schema{}, fmt.Errorf("duplicate field %q in domain %q: %w", f.name, tag, domain.ErrInvalidSchema)
		}
		seen[f.name] = true
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return Schema{tag: tag, fields: out}, nil
}

// Tag returns the domain tag.
func (s Schema) Tag() string { return s.tag }

// Fields returns the declared fields in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Resolve builds a Features record from raw source values, filling any
// missing field from its declared fallback and recording which ones were
// defaulted. Source keys outside the schema are ignored.
func (s Schema) Resolve(source map[string]float64) Features {
	values := make(map[string]float64, len(s.fields))
	var defaulted []string
	for _, f := range s.fields {
		if v, ok := source[f.name]; ok {
			values[f.name] = v
			continue
		}
		values[f.name] = f.fallback
		defaulted = append(defaulted, f.name)
	}
	return Features{Values: values, Defaulted: defaulted}
}

// Features is one entity's resolved domain feature record.
type Features struct {
	Values    map[string]float64
	Defaulted []string
}
