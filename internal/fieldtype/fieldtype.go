// Package fieldtype defines the contract between a field type and the index:
// how one logical value becomes stored, indexed and column representations,
// how the field sorts, how scoring reads it, how it is rendered in responses,
// and how its sort keys cross shard boundaries.
//
// Implementations are stateless and safe for concurrent use.
package fieldtype

import (
	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
)

// Type is the capability set every field type variant provides.
type Type interface {
	// Name is the schema type name this codec handles.
	Name() field.Type
	// CheckField rejects descriptors the type cannot serve.
	CheckField(f field.Field) error
	// CreateFields builds the physical representations of one value. The boost is
	// carried through untouched.
	CreateFields(f field.Field, value string, boost float32) ([]Representation, error)
	// SortField returns the sort descriptor for f.
	SortField(f field.Field, reverse bool) (SortField, error)
	// ValueSource returns a per-document accessor over f's column, bound to qctx.
	ValueSource(f field.Field, qctx QueryContext) (ValueSource, error)
	// Write renders a stored value into the response.
	Write(w ResponseWriter, name string, v StoredValue) error
	// MarshalSortValue converts a sort key to its transport token.
	MarshalSortValue(v SortValue) (Token, error)
	// UnmarshalSortValue converts a transport token back to a sort key.
	UnmarshalSortValue(t Token) (SortValue, error)
	// ToObject converts an indexed term back to its external value.
	ToObject(f field.Field, term []byte) (string, error)
}

// Registry resolves field types by name. It is filled at construction and
// read-only afterwards.
type Registry struct {
	types map[field.Type]Type
}

// NewRegistry creates a Registry holding the string type plus any extra variants.
// A later variant with the same name replaces an earlier one.
func NewRegistry(extra ...Type) *Registry {
	r := &Registry{types: make(map[field.Type]Type, 1+len(extra))}
	str := Str{}
	r.types[str.Name()] = str
	for _, t := range extra {
		r.types[t.Name()] = t
	}
	return r
}

// Lookup returns the codec registered for ft.
func (r *Registry) Lookup(ft field.Type) (Type, error) {
	t, ok := r.types[ft]
	if !ok {
		return nil, domain.NewFieldError(string(ft), domain.ErrUnknownFieldType)
	}
	return t, nil
}

// For returns the codec for f and checks that it accepts f.
func (r *Registry) For(f field.Field) (Type, error) {
	t, err := r.Lookup(f.FieldType())
	if err != nil {
		return nil, err
	}
	if err := t.CheckField(f); err != nil {
		return nil, err
	}
	return t, nil
}

// CheckField reports whether f can be served by a registered codec.
func (r *Registry) CheckField(f field.Field) error {
	_, err := r.For(f)
	return err
}
