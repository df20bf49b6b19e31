package fieldcodec

import (
	"context"
	"errors"
	"testing"
)

type catalogItem struct {
	SKU   string   `fieldcodec:"sku,indexed,stored,docvalues"`
	Color *string  `fieldcodec:"color,stored,docvalues,missing_last"`
	Tags  []string `fieldcodec:"tags,stored,docvalues"`
}

func newCatalog(t *testing.T) *TypedIndex[catalogItem] {
	t.Helper()
	c, err := New(context.Background(), WithSchemaOf[catalogItem]("catalog"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)

	idx, err := NewIndex[catalogItem](c)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return idx
}

func TestNewIndex_NilClient(t *testing.T) {
	idx, err := NewIndex[catalogItem](nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.meta.fields) != 3 {
		t.Errorf("len(fields) = %d, want 3", len(idx.meta.fields))
	}
}

func TestNewIndex_FieldMissingFromSchema(t *testing.T) {
	c := newMemoryClient(t)
	_, err := NewIndex[catalogItem](c)
	if !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestWithSchemaOf_Invalid(t *testing.T) {
	_, err := New(context.Background(), WithSchemaOf[badType]("bad"))
	if err == nil {
		t.Fatal("expected error for unsupported field type")
	}
}

func TestTypedIndex_PutSortFind(t *testing.T) {
	ctx := context.Background()
	idx := newCatalog(t)
	red := "red"

	items := map[uint32]catalogItem{
		1: {SKU: "b-2", Color: &red, Tags: []string{"sale"}},
		2: {SKU: "a-1"},
		3: {SKU: "c-3", Tags: []string{"new", "sale"}},
	}
	for doc, item := range items {
		if err := idx.Put(ctx, doc, item); err != nil {
			t.Fatalf("Put(%d): %v", doc, err)
		}
	}

	hits, total, err := idx.Sort(ctx, "color", false, 10)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if total != 3 || len(hits) != 3 {
		t.Fatalf("total=%d hits=%d", total, len(hits))
	}
	if hits[0].Doc != 1 || hits[0].Item.Color == nil || *hits[0].Item.Color != "red" {
		t.Errorf("first hit = %+v, want doc 1 with color red", hits[0])
	}
	// missing_last: colorless items follow, tied by doc id
	if hits[1].Doc != 2 || hits[2].Doc != 3 || hits[1].Sort != nil {
		t.Errorf("tail = %d, %d (sort %v)", hits[1].Doc, hits[2].Doc, hits[1].Sort)
	}
	if hits[2].Item.SKU != "c-3" || len(hits[2].Item.Tags) != 2 {
		t.Errorf("item not rebuilt from stored fields: %+v", hits[2].Item)
	}

	docs, err := idx.Find(ctx, "sku", "a-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 1 || docs[0] != 2 {
		t.Errorf("Find = %v, want [2]", docs)
	}

	if err := idx.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, total, _ = idx.Sort(ctx, "sku", true, 1); total != 2 {
		t.Errorf("total after delete = %d, want 2", total)
	}
}
