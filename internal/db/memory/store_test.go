package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/fieldcodec/internal/db"
	"github.com/kailas-cloud/fieldcodec/internal/domain"
	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
)

func nameReps(value string) []fieldtype.Representation {
	return []fieldtype.Representation{
		{Kind: fieldtype.KindStored, Field: "name", Value: value, Stored: true, Indexed: true, Term: []byte(value)},
		{Kind: fieldtype.KindSorted, Field: "name", Bytes: []byte(value)},
	}
}

func TestWriteAndRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	reps := append(nameReps("alpha"),
		fieldtype.Representation{Kind: fieldtype.KindStored, Field: "tags", Value: "x", Stored: true},
		fieldtype.Representation{Kind: fieldtype.KindSortedSet, Field: "tags", Bytes: []byte("x")},
		fieldtype.Representation{Kind: fieldtype.KindStored, Field: "tags", Value: "y", Stored: true},
		fieldtype.Representation{Kind: fieldtype.KindSortedSet, Field: "tags", Bytes: []byte("y")},
	)
	if err := s.WriteDocument(ctx, 1, reps); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	docs, err := s.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if !docs.Contains(1) || docs.GetCardinality() != 1 {
		t.Errorf("Documents = %v, want [1]", docs.ToArray())
	}

	fields, err := s.StoredFields(ctx, 1)
	if err != nil {
		t.Fatalf("StoredFields: %v", err)
	}
	if got := fields["name"]; len(got) != 1 || got[0] != "alpha" {
		t.Errorf("name = %v, want [alpha]", got)
	}
	if got := fields["tags"]; len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("tags = %v, want [x y]", got)
	}

	col, err := s.LoadColumn(ctx, "tags", true)
	if err != nil {
		t.Fatalf("LoadColumn: %v", err)
	}
	if n := len(col.Values(1)); n != 2 {
		t.Errorf("tags column has %d values, want 2", n)
	}

	hits, err := s.TermDocs(ctx, "name", []byte("alpha"))
	if err != nil {
		t.Fatalf("TermDocs: %v", err)
	}
	if !hits.Contains(1) {
		t.Error("expected term hit for doc 1")
	}
}

func TestWriteDocument_Replaces(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.WriteDocument(ctx, 1, nameReps("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := s.WriteDocument(ctx, 1, nameReps("new")); err != nil {
		t.Fatalf("second write must replace, got %v", err)
	}

	col, _ := s.LoadColumn(ctx, "name", false)
	v, ok := col.Value(1)
	if !ok || string(v) != "new" {
		t.Errorf("column value = %q, want %q", v, "new")
	}
	old, _ := s.TermDocs(ctx, "name", []byte("old"))
	if !old.IsEmpty() {
		t.Error("stale term still indexed")
	}
}

func TestWriteDocument_CardinalityViolation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	reps := append(nameReps("a"), nameReps("b")...)
	err := s.WriteDocument(ctx, 1, reps)
	if !errors.Is(err, domain.ErrCardinalityViolation) {
		t.Fatalf("expected ErrCardinalityViolation, got %v", err)
	}
	if _, err := s.StoredFields(ctx, 1); !errors.Is(err, db.ErrDocumentNotFound) {
		t.Errorf("nothing should be written, StoredFields err = %v", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.DeleteDocument(ctx, 9); !errors.Is(err, db.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	if err := s.WriteDocument(ctx, 9, nameReps("gone")); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	if err := s.DeleteDocument(ctx, 9); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	docs, _ := s.Documents(ctx)
	if !docs.IsEmpty() {
		t.Errorf("expected no documents, got %v", docs.ToArray())
	}
	col, _ := s.LoadColumn(ctx, "name", false)
	if col.Has(9) {
		t.Error("column still has deleted doc")
	}
}

func TestLoadColumn_IsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if err := s.WriteDocument(ctx, 1, nameReps("a")); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	col, _ := s.LoadColumn(ctx, "name", false)
	if err := s.WriteDocument(ctx, 2, nameReps("b")); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	if col.Has(2) {
		t.Error("snapshot observed a later write")
	}

	empty, err := s.LoadColumn(ctx, "unknown", true)
	if err != nil {
		t.Fatalf("LoadColumn: %v", err)
	}
	if empty.Len() != 0 || !empty.MultiValued() {
		t.Errorf("expected empty multi-valued column, got len=%d multi=%v", empty.Len(), empty.MultiValued())
	}
}

func TestConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(doc uint32) {
			defer wg.Done()
			if err := s.WriteDocument(ctx, doc, nameReps("v")); err != nil {
				t.Errorf("WriteDocument(%d): %v", doc, err)
			}
			_, _ = s.LoadColumn(ctx, "name", false)
		}(uint32(i))
	}
	wg.Wait()

	docs, _ := s.Documents(ctx)
	if docs.GetCardinality() != 50 {
		t.Errorf("expected 50 docs, got %d", docs.GetCardinality())
	}
}
