// Package vector defines the composed per-entity feature vector consumed by
// the correlation engine.
package vector

import "sort"

// Vector is one entity's composed feature record: phonetic and domain
// features merged under a single key set.
type Vector struct {
	entityID string
	values   map[string]float64
	keys     []string // sorted, cached
}

// New creates a Vector over a copy of the given values.
func New(entityID string, values map[string]float64) Vector {
	vals := make(map[string]float64, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		vals[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Vector{entityID: entityID, values: vals, keys: keys}
}

// EntityID returns the owning entity's identifier.
func (v Vector) EntityID() string { return v.entityID }

// Keys returns the feature keys in sorted order. The caller must not mutate
// the returned slice.
func (v Vector) Keys() []string { return v.keys }

// Value returns the value for a feature key.
func (v Vector) Value(key string) (float64, bool) {
	val, ok := v.values[key]
	return val, ok
}

// Len returns the number of features.
func (v Vector) Len() int { return len(v.keys) }

// Diff compares v's key set against a reference key set and returns the keys
// missing from v and the keys v has beyond the reference.
func (v Vector) Diff(reference []string) (missing, extra []string) {
	for _, k := range reference {
		if _, ok := v.values[k]; !ok {
			missing = append(missing, k)
		}
	}
	ref := make(map[string]bool, len(reference))
	for _, k := range reference {
		ref[k] = true
	}
	for _, k := range v.keys {
		if !ref[k] {
			extra = append(extra, k)
		}
	}
	return missing, extra
}
