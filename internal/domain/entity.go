package domain

import "fmt"

// Entity is an immutable named subject of an analysis run, identified by
// (name, domain tag, optional external id).
type Entity struct {
	name      string
	domainTag string
	id        string
}

// NewEntity validates and creates an Entity. The domain tag is required;
// id falls back to the name when empty. An empty name is allowed here: name
// validity is a per-entity concern decided by the run's skip policy, not a
// construction failure that would doom the rest of the batch.
func NewEntity(name, domainTag, id string) (Entity, error) {
	if domainTag == "" {
		return Entity{}, fmt.Errorf("entity domain tag is required: %w", ErrInvalidInput)
	}
	if id == "" {
		id = name
	}
	return Entity{name: name, domainTag: domainTag, id: id}, nil
}

// Name returns the entity name.
func (e Entity) Name() string { return e.name }

// DomainTag returns the domain the entity belongs to.
func (e Entity) DomainTag() string { return e.domainTag }

// ID returns the external identifier.
func (e Entity) ID() string { return e.id }
