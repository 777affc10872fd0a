// Package datafile is the YAML-backed domain context adapter: one dataset
// file per domain, holding the declared feature schema and per-entity
// records.
package datafile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/schema"
)

// domainFile is the on-disk shape of one domain dataset.
type domainFile struct {
	Domain string `yaml:"domain"`
	Fields []struct {
		Name     string  `yaml:"name"`
		Fallback float64 `yaml:"fallback"`
	} `yaml:"fields"`
	Entities map[string]map[string]float64 `yaml:"entities"`
}

// loadedDomain is one parsed and validated dataset.
type loadedDomain struct {
	schema   schema.Schema
	entities map[string]map[string]float64
}

// Repo serves domain features from a directory of YAML dataset files. All
// files are parsed and their schemas validated at construction; lookups
// afterwards touch no external state.
type Repo struct {
	domains map[string]loadedDomain
}

// New loads every *.yaml file under dir. Schema declarations are validated
// here, at construction, so a broken dataset fails fast rather than mid-run.
func New(dir string) (*Repo, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files under %s", dir)
	}

	repo := &Repo{domains: make(map[string]loadedDomain, len(paths))}
	for _, path := range paths {
		if err := repo.loadFile(path); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *Repo) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read dataset %s: %w", path, err)
	}

	var df domainFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if df.Domain == "" {
		df.Domain = strings.TrimSuffix(filepath.Base(path), ".yaml")
	}

	fields := make([]schema.Field, 0, len(df.Fields))
	for _, f := range df.Fields {
		field, err := schema.NewField(f.Name, f.Fallback)
		if err != nil {
			return fmt.Errorf("dataset %s: %w", path, err)
		}
		fields = append(fields, field)
	}
	sch, err := schema.New(df.Domain, fields)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", path, err)
	}

	if _, ok := r.domains[df.Domain]; ok {
		return fmt.Errorf("dataset %s: duplicate domain %q: %w", path, df.Domain, domain.ErrInvalidSchema)
	}
	r.domains[df.Domain] = loadedDomain{schema: sch, entities: df.Entities}
	return nil
}

// Fetch resolves one entity's domain features, filling missing fields from
// the declared fallbacks.
func (r *Repo) Fetch(_ context.Context, domainTag, entityID string) (schema.Features, error) {
	d, ok := r.domains[domainTag]
	if !ok {
		return schema.Features{}, fmt.Errorf("domain %q: %w", domainTag, domain.ErrDomainNotFound)
	}
	source, ok := d.entities[entityID]
	if !ok {
		return schema.Features{}, fmt.Errorf("domain %q entity %q: %w", domainTag, entityID, domain.ErrEntityNotFound)
	}
	return d.schema.Resolve(source), nil
}

// Schema returns a domain's declared schema.
func (r *Repo) Schema(_ context.Context, domainTag string) (schema.Schema, error) {
	d, ok := r.domains[domainTag]
	if !ok {
		return schema.Schema{}, fmt.Errorf("domain %q: %w", domainTag, domain.ErrDomainNotFound)
	}
	return d.schema, nil
}

// Domains lists the loaded domain tags, sorted.
func (r *Repo) Domains(_ context.Context) ([]string, error) {
	tags := make([]string, 0, len(r.domains))
	for tag := range r.domains {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}
