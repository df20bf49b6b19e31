package fieldcodec

import (
	"context"
	"fmt"
)

// TypedIndex is a generic, schema-first view of a Client.
// Field mapping is inferred from T's struct tags at construction time.
type TypedIndex[T any] struct {
	client *Client
	meta   *schemaMeta
}

// TypedHit is a typed sorted result. Item holds the stored fields only.
type TypedHit[T any] struct {
	Doc  uint32
	Item T
	Sort *string
}

// NewIndex creates a typed index handle. Every tagged field must exist in the
// client's schema.
func NewIndex[T any](client *Client) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index: %w", err)
	}
	if client != nil && client.schema != nil {
		for _, f := range meta.fields {
			if _, err := client.schema.Field(f.def.Name); err != nil {
				return nil, fmt.Errorf("new index: %w", err)
			}
		}
	}
	return &TypedIndex[T]{client: client, meta: meta}, nil
}

// Put indexes item as document doc, replacing any previous version.
func (idx *TypedIndex[T]) Put(ctx context.Context, doc uint32, item T) error {
	return idx.client.Index(ctx, doc, idx.meta.toValues(item))
}

// Delete removes document doc.
func (idx *TypedIndex[T]) Delete(ctx context.Context, doc uint32) error {
	return idx.client.Delete(ctx, doc)
}

// Sort returns up to limit items ordered by field, plus the number of live documents.
func (idx *TypedIndex[T]) Sort(ctx context.Context, field string, desc bool, limit int) ([]TypedHit[T], int, error) {
	res, err := idx.client.Sort(ctx, field, desc, limit)
	if err != nil {
		return nil, 0, err
	}
	hits := make([]TypedHit[T], len(res.Hits))
	for i, h := range res.Hits {
		item, ok := idx.meta.fromFields(h.Fields).(T)
		if !ok {
			return nil, 0, fmt.Errorf("sort: type assertion failed")
		}
		hits[i] = TypedHit[T]{Doc: h.Doc, Item: item, Sort: h.Sort}
	}
	return hits, res.Total, nil
}

// Find returns the documents whose field was indexed with exactly value.
func (idx *TypedIndex[T]) Find(ctx context.Context, field, value string) ([]uint32, error) {
	return idx.client.Terms(ctx, field, value)
}
