package field

import (
	"fmt"
	"regexp"
)

// Type names the field type codec a field is encoded with.
type Type string

// String is the exact-match string type: one untokenized value per entry.
const String Type = "string"

var (
	nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	typeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

var reservedFieldNames = map[string]bool{
	"_id": true, "_score": true,
}

// Field is an immutable value object describing one schema field.
type Field struct {
	name             string
	fieldType        Type
	indexed          bool
	stored           bool
	docValues        bool
	multiValued      bool
	sortMissingFirst bool
	sortMissingLast  bool
}

// Option sets a property on a Field under construction.
type Option func(*Field)

// Indexed marks the field as searchable by exact term.
func Indexed() Option { return func(f *Field) { f.indexed = true } }

// Stored keeps the raw value for retrieval.
func Stored() Option { return func(f *Field) { f.stored = true } }

// DocValues enables the column-oriented representation used for sorting and scoring.
func DocValues() Option { return func(f *Field) { f.docValues = true } }

// MultiValued allows more than one value per document.
func MultiValued() Option { return func(f *Field) { f.multiValued = true } }

// SortMissingFirst sorts documents without a value before all others, in both directions.
func SortMissingFirst() Option { return func(f *Field) { f.sortMissingFirst = true } }

// SortMissingLast sorts documents without a value after all others, in both directions.
func SortMissingLast() Option { return func(f *Field) { f.sortMissingLast = true } }

// New validates and creates a Field.
// Name must be non-empty, max 64 chars of [a-zA-Z0-9_.-], and not reserved.
// The type must be a lowercase identifier; whether a codec exists for it is
// checked by the field type registry, not here.
func New(name string, ft Type, opts ...Option) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if !nameRegex.MatchString(name) {
		return Field{}, fmt.Errorf("field name %q contains invalid characters", name)
	}
	if reservedFieldNames[name] {
		return Field{}, fmt.Errorf("field name %q is reserved", name)
	}
	if !typeRegex.MatchString(string(ft)) {
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}

	f := Reconstruct(name, ft, opts...)
	if f.sortMissingFirst && f.sortMissingLast {
		return Field{}, fmt.Errorf("field %q cannot sort missing values both first and last", name)
	}
	return f, nil
}

// Reconstruct creates a Field without validation (storage hydration).
func Reconstruct(name string, ft Type, opts ...Option) Field {
	f := Field{name: name, fieldType: ft}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the name of the field's type codec.
func (f Field) FieldType() Type { return f.fieldType }

// Indexed reports whether the value is indexed as a term.
func (f Field) Indexed() bool { return f.indexed }

// Stored reports whether the raw value is kept for retrieval.
func (f Field) Stored() bool { return f.stored }

// HasDocValues reports whether the column-oriented representation is enabled.
func (f Field) HasDocValues() bool { return f.docValues }

// MultiValued reports whether a document may carry several values.
func (f Field) MultiValued() bool { return f.multiValued }

// SortMissingFirst reports whether documents without a value always sort first.
func (f Field) SortMissingFirst() bool { return f.sortMissingFirst }

// SortMissingLast reports whether documents without a value always sort last.
func (f Field) SortMissingLast() bool { return f.sortMissingLast }
