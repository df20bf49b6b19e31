package fieldtype

import "github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"

// Str is the exact-match string type. Values are opaque: no tokenization and no
// normalization. The UTF-8 bytes of the value serve as term, column value and sort key.
type Str struct{}

var _ Type = Str{}

// Name implements Type.
func (Str) Name() field.Type { return field.String }

// CheckField implements Type. Every flag combination is valid for strings.
func (Str) CheckField(field.Field) error { return nil }

// CreateFields implements Type.
func (Str) CreateFields(f field.Field, value string, boost float32) ([]Representation, error) {
	return buildRepresentations(f, value, boost, Encode), nil
}

// SortField implements Type.
func (Str) SortField(f field.Field, reverse bool) (SortField, error) {
	return newStringSort(f, reverse)
}

// ValueSource implements Type.
func (Str) ValueSource(f field.Field, qctx QueryContext) (ValueSource, error) {
	return newStrValueSource(f, qctx)
}

// Write implements Type.
func (Str) Write(w ResponseWriter, name string, v StoredValue) error {
	s, ok := v.Get()
	if !ok {
		return w.WriteNull(name)
	}
	return w.WriteStr(name, s, true)
}

// MarshalSortValue implements Type.
func (Str) MarshalSortValue(v SortValue) (Token, error) {
	return marshalSortValue(v)
}

// UnmarshalSortValue implements Type.
func (Str) UnmarshalSortValue(t Token) (SortValue, error) {
	return unmarshalSortValue(t)
}

// ToObject implements Type.
func (Str) ToObject(_ field.Field, term []byte) (string, error) {
	return Decode(term)
}
