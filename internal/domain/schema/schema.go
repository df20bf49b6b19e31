package schema

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const maxFields = 256

// Schema is the read-only set of field descriptors of one index.
// It is built once at startup and shared by reference.
type Schema struct {
	name   string
	fields []field.Field
	byName map[string]int
}

// New validates and creates a Schema.
// Every problem is reported, not just the first one; the result wraps ErrInvalidSchema.
func New(name string, fields []field.Field) (*Schema, error) {
	var errs error
	switch {
	case name == "":
		errs = multierr.Append(errs, fmt.Errorf("schema name is required"))
	case len(name) > 64:
		errs = multierr.Append(errs, fmt.Errorf("schema name too long (max 64)"))
	case !nameRegex.MatchString(name):
		errs = multierr.Append(errs, fmt.Errorf("schema name must be alphanumeric with underscores and hyphens"))
	}
	if len(fields) > maxFields {
		errs = multierr.Append(errs, fmt.Errorf("too many fields (max %d)", maxFields))
	}

	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := byName[f.Name()]; dup {
			errs = multierr.Append(errs, fmt.Errorf("duplicate field name: %s", f.Name()))
			continue
		}
		byName[f.Name()] = i
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, errs)
	}

	return &Schema{name: name, fields: fields, byName: byName}, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the field descriptors in declaration order.
func (s *Schema) Fields() []field.Field {
	out := make([]field.Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (field.Field, error) {
	i, ok := s.byName[name]
	if !ok {
		return field.Field{}, domain.NewFieldError(name, domain.ErrFieldNotFound)
	}
	return s.fields[i], nil
}

// Validate runs check against every field and reports all failures at once.
func (s *Schema) Validate(check func(field.Field) error) error {
	var errs error
	for _, f := range s.fields {
		if err := check(f); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("field %q: %w", f.Name(), err))
		}
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSchema, errs)
	}
	return nil
}
