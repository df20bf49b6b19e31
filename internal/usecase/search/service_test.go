package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fieldcodec/internal/db/memory"
	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/index/docvalues"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	fields := []field.Field{
		mustField(t, "name", field.Stored(), field.Indexed(), field.DocValues()),
		mustField(t, "tags", field.Stored(), field.DocValues(), field.MultiValued()),
		mustField(t, "notes", field.Stored()),
		mustField(t, "rank", field.DocValues(), field.SortMissingLast()),
	}
	s, err := schema.New("catalog", fields)
	require.NoError(t, err)
	return s
}

func mustField(t *testing.T, name string, opts ...field.Option) field.Field {
	t.Helper()
	f, err := field.New(name, field.String, opts...)
	require.NoError(t, err)
	return f
}

// seed indexes docs through the field types, the same way the indexing service does.
func seed(t *testing.T, s *schema.Schema, docs map[uint32]map[string][]string) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for doc, values := range docs {
		var reps []fieldtype.Representation
		for name, vals := range values {
			f, err := s.Field(name)
			require.NoError(t, err)
			for _, v := range vals {
				built, err := fieldtype.Str{}.CreateFields(f, v, 1)
				require.NoError(t, err)
				reps = append(reps, built...)
			}
		}
		require.NoError(t, store.WriteDocument(context.Background(), doc, reps))
	}
	return store
}

func newTestService(t *testing.T, docs map[uint32]map[string][]string) *Service {
	t.Helper()
	s := testSchema(t)
	return New(s, fieldtype.NewRegistry(), seed(t, s, docs), zap.NewNop())
}

func hitDocs(hits []Hit) []uint32 {
	out := make([]uint32, len(hits))
	for i, h := range hits {
		out[i] = h.Doc
	}
	return out
}

func TestSort_Ascending(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"name": {"pear"}},
		2: {"name": {"apple"}},
		3: {"name": {"fig"}},
		4: {"notes": {"no name"}},
	})

	res, err := svc.Sort(context.Background(), SortRequest{Field: "name"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	// absent sorts lowest: first ascending
	assert.Equal(t, []uint32{4, 2, 3, 1}, hitDocs(res.Hits))
	assert.True(t, res.Hits[0].Sort.IsAbsent())
	assert.Equal(t, "apple", res.Hits[1].Sort.Text())
	assert.Equal(t, "name asc", res.Sort.String())
}

func TestSort_DescendingWithTiesByDoc(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		5: {"name": {"same"}},
		2: {"name": {"same"}},
		9: {"name": {"zzz"}},
		1: {},
	})

	res, err := svc.Sort(context.Background(), SortRequest{Field: "name", Reverse: true})
	require.NoError(t, err)
	assert.Equal(t, []uint32{9, 2, 5, 1}, hitDocs(res.Hits))
}

func TestSort_MissingLast(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"notes": {"x"}},
		2: {"rank": {"b"}},
		3: {"rank": {"a"}},
	})

	asc, err := svc.Sort(context.Background(), SortRequest{Field: "rank"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 2, 1}, hitDocs(asc.Hits))

	desc, err := svc.Sort(context.Background(), SortRequest{Field: "rank", Reverse: true})
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 3, 1}, hitDocs(desc.Hits))
}

func TestSort_MultiValuedUsesMin(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"tags": {"m", "z"}},
		2: {"tags": {"y", "b"}},
	})

	res, err := svc.Sort(context.Background(), SortRequest{Field: "tags"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 1}, hitDocs(res.Hits))
	assert.Equal(t, "b", res.Hits[0].Sort.Text())
}

func TestSort_MultiValuedDescendingUsesMax(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"tags": {"a", "z"}},
		2: {"tags": {"m"}},
	})

	res, err := svc.Sort(context.Background(), SortRequest{Field: "tags", Reverse: true})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, hitDocs(res.Hits))
	assert.Equal(t, "z", res.Hits[0].Sort.Text())
}

func TestSort_SupplementaryCharacters(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"name": {"\U0001F600"}},
		2: {"name": {"\uFF5E"}},
		3: {"name": {"z"}},
	})

	res, err := svc.Sort(context.Background(), SortRequest{Field: "name"})
	require.NoError(t, err)
	// code point order, same as UTF-8 byte order
	assert.Equal(t, []uint32{3, 2, 1}, hitDocs(res.Hits))
}

func TestSort_Limit(t *testing.T) {
	docs := make(map[uint32]map[string][]string)
	for i := range uint32(30) {
		docs[i] = map[string][]string{"name": {string(rune('a' + i%26))}}
	}
	svc := newTestService(t, docs).WithLimits(5, 20)

	res, err := svc.Sort(context.Background(), SortRequest{Field: "name"})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 5)
	assert.Equal(t, 30, res.Total)

	res, err = svc.Sort(context.Background(), SortRequest{Field: "name", Limit: 100})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 20)
}

func TestSort_RendersStoredFields(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"name": {"<b>Widget</b>"}, "tags": {"x"}},
	})

	res, err := svc.Sort(context.Background(), SortRequest{Field: "name"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)

	b, err := res.Hits[0].Fields.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"<b>Widget</b>","tags":["x"],"notes":null}`, string(b))
}

func TestSort_Errors(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Sort(context.Background(), SortRequest{Field: "notes"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedSort)

	_, err = svc.Sort(context.Background(), SortRequest{Field: "nope"})
	assert.ErrorIs(t, err, domain.ErrFieldNotFound)
}

type corruptStore struct {
	Store
	col *docvalues.Column
}

func (c corruptStore) LoadColumn(context.Context, string, bool) (*docvalues.Column, error) {
	return c.col, nil
}

func (c corruptStore) Documents(context.Context) (*roaring.Bitmap, error) {
	return c.col.Docs(), nil
}

func TestSort_MalformedColumn(t *testing.T) {
	col := docvalues.NewColumn("name", false)
	require.NoError(t, col.Set(1, []byte{0xff}))
	svc := New(testSchema(t), fieldtype.NewRegistry(), corruptStore{col: col}, zap.NewNop())

	_, err := svc.Sort(context.Background(), SortRequest{Field: "name"})
	assert.ErrorIs(t, err, domain.ErrMalformedEncoding)
}

func TestValues(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"name": {"alpha"}},
		2: {"notes": {"x"}},
	})

	res, err := svc.Values(context.Background(), "name", []uint32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "str(name)", res.Source)
	assert.Equal(t, []DocValue{
		{Doc: 1, Value: "alpha", Exists: true},
		{Doc: 2},
	}, res.Values)

	_, err = svc.Values(context.Background(), "notes", []uint32{2})
	assert.ErrorIs(t, err, domain.ErrUnsupportedAccess)
}

func TestLookup(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"name": {"Alpha"}},
		2: {"name": {"alpha"}},
		3: {"name": {"Alpha"}},
	})

	res, err := svc.Lookup(context.Background(), "name", "Alpha")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", res.Term)
	assert.Equal(t, []uint32{1, 3}, res.Docs, "exact match, no case folding")

	_, err = svc.Lookup(context.Background(), "tags", "x")
	assert.ErrorIs(t, err, domain.ErrUnsupportedAccess)
}

func TestSortTokens_RoundTripThroughJSON(t *testing.T) {
	svc := newTestService(t, map[uint32]map[string][]string{
		1: {"name": {"café"}},
		2: {},
	})

	res, err := svc.Sort(context.Background(), SortRequest{Field: "name"})
	require.NoError(t, err)

	b, err := json.Marshal([]fieldtype.Token{res.Hits[0].Sort, res.Hits[1].Sort})
	require.NoError(t, err)
	assert.Equal(t, `[null,"café"]`, string(b))

	var back []fieldtype.Token
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back[0].IsAbsent())
	assert.Equal(t, "café", back[1].Text())
}

func TestRender_DocumentVanished(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.render(context.Background(), 42)
	assert.True(t, errors.Is(err, domain.ErrDocumentNotFound))
}
