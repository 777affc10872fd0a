package nomen

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/schema"
	"github.com/nomen-research/nomen/internal/usecase/pipeline"
)

const tagKey = "nomen"

// rowMeta holds parsed struct tag metadata, cached per RowSet.
type rowMeta struct {
	typ reflect.Type

	// Field index in the struct for each role.
	nameIdx    int
	idIdx      int // -1 if not present
	outcomeIdx int

	// Mapping from struct field index → domain feature name.
	features []rowFieldMapping
}

type rowFieldMapping struct {
	structIdx int
	name      string
}

// parseRowSchema reflects on T and extracts nomen struct tag metadata.
func parseRowSchema[T any]() (*rowMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("nomen: type %v is not a struct", t)
	}

	meta := &rowMeta{typ: t, nameIdx: -1, idIdx: -1, outcomeIdx: -1}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyRowTag(meta, i, f.Name, tag); err != nil {
			return nil, err
		}
	}

	if meta.nameIdx == -1 {
		return nil, fmt.Errorf("nomen: no field with `nomen:\"...,name\"` tag in %s", t)
	}
	if meta.outcomeIdx == -1 {
		return nil, fmt.Errorf("nomen: no field with `nomen:\"...,outcome\"` tag in %s", t)
	}
	return meta, nil
}

// applyRowTag processes a single struct field's nomen tag.
func applyRowTag(meta *rowMeta, idx int, fieldName, tag string) error {
	parts := strings.SplitN(tag, ",", 2)
	name := parts[0]
	role := ""
	if len(parts) == 2 {
		role = parts[1]
	}

	switch role {
	case "name":
		if meta.nameIdx != -1 {
			return fmt.Errorf("nomen: duplicate name tag on field %s", fieldName)
		}
		meta.nameIdx = idx
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("nomen: duplicate id tag on field %s", fieldName)
		}
		meta.idIdx = idx
	case "outcome":
		if meta.outcomeIdx != -1 {
			return fmt.Errorf("nomen: duplicate outcome tag on field %s", fieldName)
		}
		meta.outcomeIdx = idx
	case "feature":
		if name == "" {
			return fmt.Errorf("nomen: feature tag on field %s needs a name", fieldName)
		}
		meta.features = append(meta.features, rowFieldMapping{structIdx: idx, name: name})
	default:
		return fmt.Errorf("nomen: unknown role %q on field %s", role, fieldName)
	}
	return nil
}

// RowSet is a typed, schema-first batch API: callers describe entity rows
// as Go structs with nomen tags and the domain feature schema is inferred
// once at construction.
type RowSet[T any] struct {
	analyzer  *Analyzer
	domainTag string
	meta      *rowMeta
	schema    schema.Schema
}

// NewRowSet creates a typed row batch handle. T must be a struct with
// nomen tags: one `,name` field, one `,outcome` field, optionally `,id`
// and any number of numeric `,feature` fields.
func NewRowSet[T any](a *Analyzer, domainTag string) (*RowSet[T], error) {
	meta, err := parseRowSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new row set %q: %w", domainTag, err)
	}

	fields := make([]schema.Field, len(meta.features))
	for i, fm := range meta.features {
		fields[i], err = schema.NewField(fm.name, 0)
		if err != nil {
			return nil, fmt.Errorf("new row set %q: %w", domainTag, err)
		}
	}
	sch, err := schema.New(domainTag, fields)
	if err != nil {
		return nil, fmt.Errorf("new row set %q: %w", domainTag, err)
	}

	return &RowSet[T]{analyzer: a, domainTag: domainTag, meta: meta, schema: sch}, nil
}

// Analyze runs the pipeline over the typed rows. Domain features travel
// inline with each row, so no external context backend is consulted.
func (rs *RowSet[T]) Analyze(ctx context.Context, rows []T) (Report, error) {
	adapter := &rowAdapter{
		schema: rs.schema,
		values: make(map[string]map[string]float64, len(rows)),
	}

	inputs := make([]pipeline.Input, len(rows))
	for i, row := range rows {
		name, id, outcome, features := rs.meta.read(row)
		entity, err := domain.NewEntity(name, rs.domainTag, id)
		if err != nil {
			return Report{}, fmt.Errorf("row %d: %w", i, err)
		}
		if _, exists := adapter.values[entity.ID()]; exists {
			return Report{}, fmt.Errorf("row %d: duplicate entity id %q (add an `,id` tag to disambiguate): %w",
				i, entity.ID(), domain.ErrInvalidInput)
		}
		adapter.values[entity.ID()] = features
		inputs[i] = pipeline.Input{Entity: entity, Outcome: outcome}
	}

	return rs.analyzer.runner(adapter).Run(ctx, rs.domainTag, inputs)
}

// read extracts the tagged values from one row.
func (m *rowMeta) read(row any) (name, id string, outcome float64, features map[string]float64) {
	v := reflect.ValueOf(row)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	name = fmt.Sprint(v.Field(m.nameIdx).Interface())
	if m.idIdx != -1 {
		id = fmt.Sprint(v.Field(m.idIdx).Interface())
	}
	outcome = toFloat64(v.Field(m.outcomeIdx))

	features = make(map[string]float64, len(m.features))
	for _, fm := range m.features {
		features[fm.name] = toFloat64(v.Field(fm.structIdx))
	}
	return name, id, outcome, features
}

// rowAdapter serves domain features captured from the rows themselves.
type rowAdapter struct {
	schema schema.Schema
	values map[string]map[string]float64
}

func (a *rowAdapter) Fetch(_ context.Context, _, entityID string) (schema.Features, error) {
	source, ok := a.values[entityID]
	if !ok {
		return schema.Features{}, fmt.Errorf("row %q: %w", entityID, domain.ErrEntityNotFound)
	}
	return a.schema.Resolve(source), nil
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return 0
	}
}
