package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput signals a name with no usable alphabetic content.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDomainNotFound signals an unrecognized domain tag.
	ErrDomainNotFound = errors.New("domain not found")
	// ErrEntityNotFound signals a missing entity within a known domain.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrSchemaCollision signals a domain field shadowing a reserved phonetic key.
	ErrSchemaCollision = errors.New("schema collision")
	// ErrSchemaMismatch signals diverging feature key sets within one batch.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrInsufficientSample signals a batch below the statistical floor.
	ErrInsufficientSample = errors.New("insufficient sample")
	// ErrInvalidSchema signals an invalid domain schema declaration.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrSingularMatrix signals a design matrix that cannot be solved.
	ErrSingularMatrix = errors.New("singular design matrix")
)

// SchemaMismatchError wraps ErrSchemaMismatch with the offending entity and
// the exact key divergence against the batch reference schema.
type SchemaMismatchError struct {
	EntityID string
	Missing  []string
	Extra    []string
}

func (e *SchemaMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: entity %q", ErrSchemaMismatch.Error(), e.EntityID)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " missing keys [%s]", strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		fmt.Fprintf(&b, " extra keys [%s]", strings.Join(e.Extra, ", "))
	}
	return b.String()
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// NewSchemaMismatch creates a schema mismatch error for one entity.
func NewSchemaMismatch(entityID string, missing, extra []string) error {
	return &SchemaMismatchError{EntityID: entityID, Missing: missing, Extra: extra}
}

// InsufficientSampleError wraps ErrInsufficientSample with the observed and
// required sample sizes.
type InsufficientSampleError struct {
	Got  int
	Need int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf("%s: got %d entities, need at least %d", ErrInsufficientSample.Error(), e.Got, e.Need)
}

func (e *InsufficientSampleError) Unwrap() error { return ErrInsufficientSample }

// NewInsufficientSample creates an insufficient sample error.
func NewInsufficientSample(got, need int) error {
	return &InsufficientSampleError{Got: got, Need: need}
}
