package dataredis

import (
	"encoding/json"
	"fmt"

	"github.com/nomen-research/nomen/internal/domain/schema"
)

// fieldDTO is the stored shape of one schema field.
type fieldDTO struct {
	Name     string  `json:"name"`
	Fallback float64 `json:"fallback"`
}

// schemaToHash serializes a schema into hash fields. Field order matters
// for the declaration, so the list is stored as one JSON value rather than
// as unordered hash entries.
func schemaToHash(sch schema.Schema) (map[string]string, error) {
	fields := sch.Fields()
	dtos := make([]fieldDTO, len(fields))
	for i, f := range fields {
		dtos[i] = fieldDTO{Name: f.Name(), Fallback: f.Fallback()}
	}
	data, err := json.Marshal(dtos)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", sch.Tag(), err)
	}
	return map[string]string{
		"tag":    sch.Tag(),
		"fields": string(data),
	}, nil
}

// schemaFromHash rebuilds a validated schema from stored hash fields.
func schemaFromHash(tag string, data map[string]string) (schema.Schema, error) {
	var dtos []fieldDTO
	if err := json.Unmarshal([]byte(data["fields"]), &dtos); err != nil {
		return schema.Schema{}, fmt.Errorf("unmarshal schema %q: %w", tag, err)
	}
	fields := make([]schema.Field, len(dtos))
	for i, d := range dtos {
		fields[i] = schema.ReconstructField(d.Name, d.Fallback)
	}
	sch, err := schema.New(tag, fields)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("stored schema %q: %w", tag, err)
	}
	return sch, nil
}
