package indexing

import (
	"context"

	"github.com/kailas-cloud/fieldcodec/internal/fieldtype"
)

// Store persists documents as representations.
type Store interface {
	WriteDocument(ctx context.Context, doc uint32, reps []fieldtype.Representation) error
	DeleteDocument(ctx context.Context, doc uint32) error
}
