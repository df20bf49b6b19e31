package search

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/fieldcodec/internal/index/docvalues"
)

// Store is the read side of the document store.
type Store interface {
	Documents(ctx context.Context) (*roaring.Bitmap, error)
	StoredFields(ctx context.Context, doc uint32) (map[string][]string, error)
	TermDocs(ctx context.Context, field string, term []byte) (*roaring.Bitmap, error)
	LoadColumn(ctx context.Context, field string, multi bool) (*docvalues.Column, error)
}
