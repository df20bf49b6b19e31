package indexing

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema"
	"github.com/kailas-cloud/fieldcodec/internal/domain/schema/field"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
)

// --- Mocks ---

type mockStore struct {
	written   map[uint32][]fieldtype.Representation
	writeErr  error
	deleteErr error
	deleted   []uint32
}

func (m *mockStore) WriteDocument(_ context.Context, doc uint32, reps []fieldtype.Representation) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.written == nil {
		m.written = make(map[uint32][]fieldtype.Representation)
	}
	m.written[doc] = reps
	return nil
}

func (m *mockStore) DeleteDocument(_ context.Context, doc uint32) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, doc)
	return nil
}

func makeField(t *testing.T, name string, ft field.Type, opts ...field.Option) field.Field {
	t.Helper()
	f, err := field.New(name, ft, opts...)
	if err != nil {
		t.Fatalf("field.New: %v", err)
	}
	return f
}

func newService(t *testing.T, store Store) *Service {
	t.Helper()
	s, err := schema.New("products", []field.Field{
		makeField(t, "name", field.String, field.Stored(), field.Indexed(), field.DocValues()),
		makeField(t, "tags", field.String, field.Stored(), field.DocValues(), field.MultiValued()),
		makeField(t, "notes", field.String, field.Stored()),
		makeField(t, "location", "geo_point", field.Stored()),
	})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return New(s, fieldtype.NewRegistry(), store, zap.NewNop())
}

// --- Tests ---

func TestIndex_Success(t *testing.T) {
	store := &mockStore{}
	svc := newService(t, store)

	err := svc.Index(context.Background(), 7, map[string][]string{
		"tags": {"b", "a"},
		"name": {"Widget"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reps := store.written[7]
	// name: stored+sorted, tags: 2x (stored+sorted_set)
	if len(reps) != 6 {
		t.Fatalf("expected 6 representations, got %d", len(reps))
	}
	if reps[0].Field != "name" || reps[0].Kind != fieldtype.KindStored {
		t.Errorf("expected name first (fields in name order), got %s/%s", reps[0].Field, reps[0].Kind)
	}
	if reps[1].Kind != fieldtype.KindSorted || string(reps[1].Bytes) != "Widget" {
		t.Errorf("unexpected column entry: %+v", reps[1])
	}
	for _, r := range reps[2:] {
		if r.Field != "tags" {
			t.Errorf("expected tags, got %s", r.Field)
		}
		if r.Kind == fieldtype.KindSorted {
			t.Error("multi-valued field must not produce a single-value column entry")
		}
	}
}

func TestIndex_SingleValuedRejectsMany(t *testing.T) {
	store := &mockStore{}
	svc := newService(t, store)

	err := svc.Index(context.Background(), 1, map[string][]string{"name": {"a", "b"}})
	if !errors.Is(err, domain.ErrCardinalityViolation) {
		t.Fatalf("expected ErrCardinalityViolation, got %v", err)
	}
	if len(store.written) != 0 {
		t.Error("nothing should be written")
	}
}

func TestIndex_UnknownField(t *testing.T) {
	svc := newService(t, &mockStore{})

	err := svc.Index(context.Background(), 1, map[string][]string{"color": {"red"}})
	if !errors.Is(err, domain.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestIndex_UnknownFieldType(t *testing.T) {
	svc := newService(t, &mockStore{})

	err := svc.Index(context.Background(), 1, map[string][]string{"location": {"1,2"}})
	if !errors.Is(err, domain.ErrUnknownFieldType) {
		t.Fatalf("expected ErrUnknownFieldType, got %v", err)
	}
}

func TestIndex_StoreError(t *testing.T) {
	store := &mockStore{writeErr: &db.Error{Op: db.OpWrite, Err: errors.New("connection reset")}}
	svc := newService(t, store)

	err := svc.Index(context.Background(), 1, map[string][]string{"notes": {"x"}})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected wrapped *db.Error, got %v", err)
	}
}

func TestIndex_EmptyDocument(t *testing.T) {
	store := &mockStore{}
	svc := newService(t, store)

	if err := svc.Index(context.Background(), 3, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reps, ok := store.written[3]; !ok || len(reps) != 0 {
		t.Errorf("expected an empty document to be written, got %v", reps)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"success", nil, nil},
		{"not found", db.ErrDocumentNotFound, domain.ErrDocumentNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{deleteErr: tc.err}
			svc := newService(t, store)

			err := svc.Delete(context.Background(), 5)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(store.deleted) != 1 || store.deleted[0] != 5 {
					t.Errorf("expected doc 5 deleted, got %v", store.deleted)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	svc := newService(t, &mockStore{})

	reps, err := svc.Build("name", "Widget", 2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reps) != 2 {
		t.Fatalf("expected 2 representations, got %d", len(reps))
	}
	if reps[0].Boost != 2.5 {
		t.Errorf("expected boost carried through, got %v", reps[0].Boost)
	}

	if _, err := svc.Build("missing", "x", 1); !errors.Is(err, domain.ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}
}
