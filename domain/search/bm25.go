package search

import (
	"context"

	"github.com/beaconsh/beacon/domain/repository"
)

// BM25Store defines operations for BM25 full-text search indexing.
// Find and DeleteBy take repository.Option so callers can attach a query
// string (WithQuery), snippet ID filters, and search.Filters uniformly
// across the BM25 and vector stores.
type BM25Store interface {
	// Index adds documents to the BM25 index.
	Index(ctx context.Context, request IndexRequest) error

	// Find performs BM25 keyword search. The query text is carried via WithQuery.
	Find(ctx context.Context, options ...repository.Option) ([]Result, error)

	// DeleteBy removes documents matching the given options.
	DeleteBy(ctx context.Context, options ...repository.Option) error
}
