package fieldtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
)

// --- helpers ---

func mustField(t *testing.T, name string, opts ...field.Option) field.Field {
	t.Helper()
	f, err := field.New(name, field.String, opts...)
	require.NoError(t, err)
	return f
}

type mapDocValues struct {
	single map[uint32][]byte
	multi  map[uint32][][]byte
}

func (m mapDocValues) Value(doc uint32) ([]byte, bool) {
	b, ok := m.single[doc]
	return b, ok
}

func (m mapDocValues) Values(doc uint32) [][]byte { return m.multi[doc] }

type mapQueryContext map[string]DocValues

func (m mapQueryContext) DocValues(name string) (DocValues, bool) {
	dv, ok := m[name]
	return dv, ok
}

type entry struct {
	name  string
	value string
	exact bool
	null  bool
}

type recordingWriter struct {
	entries []entry
}

func (w *recordingWriter) WriteStr(name, value string, exact bool) error {
	w.entries = append(w.entries, entry{name: name, value: value, exact: exact})
	return nil
}

func (w *recordingWriter) WriteNull(name string) error {
	w.entries = append(w.entries, entry{name: name, null: true})
	return nil
}

// --- registry ---

func TestRegistry_LookupString(t *testing.T) {
	r := NewRegistry()
	typ, err := r.Lookup(field.String)
	require.NoError(t, err)
	assert.Equal(t, field.String, typ.Name())
}

func TestRegistry_UnknownType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("numeric")
	require.ErrorIs(t, err, domain.ErrUnknownFieldType)

	f := field.Reconstruct("price", "numeric")
	require.ErrorIs(t, r.CheckField(f), domain.ErrUnknownFieldType)
}

type stubType struct{ Str }

func (stubType) Name() field.Type { return "stub" }

func TestRegistry_ExtraVariants(t *testing.T) {
	r := NewRegistry(stubType{})

	typ, err := r.For(field.Reconstruct("x", "stub"))
	require.NoError(t, err)
	assert.Equal(t, field.Type("stub"), typ.Name())

	_, err = r.Lookup(field.String)
	require.NoError(t, err, "string type stays registered")
}
