package db

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
	"github.com/kailas-cloud/fieldcodec/internal/index/docvalues"
)

// Store is the shard storage facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	DocumentWriter
	DocumentReader
	ColumnLoader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks storage availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentWriter persists the representations of whole documents.
type DocumentWriter interface {
	// WriteDocument replaces doc with the given representations.
	WriteDocument(ctx context.Context, doc uint32, reps []fieldtype.Representation) error
	// DeleteDocument removes doc. Returns ErrDocumentNotFound if it does not exist.
	DeleteDocument(ctx context.Context, doc uint32) error
}

// DocumentReader reads documents back.
type DocumentReader interface {
	// Documents returns the ids of all live documents.
	Documents(ctx context.Context) (*roaring.Bitmap, error)
	// StoredFields returns the stored values of doc, by field, in indexing order.
	StoredFields(ctx context.Context, doc uint32) (map[string][]string, error)
	// TermDocs returns the documents whose field was indexed with term.
	TermDocs(ctx context.Context, field string, term []byte) (*roaring.Bitmap, error)
}

// ColumnLoader loads a snapshot of one field's doc values.
type ColumnLoader interface {
	LoadColumn(ctx context.Context, field string, multi bool) (*docvalues.Column, error)
}
