package enrichment

import (
	"context"

	"github.com/beaconsh/beacon/domain/repository"
)

// EnrichmentStore defines operations for persisting and retrieving enrichments.
// Commit SHA filtering is supported via WithCommitSHA / WithCommitSHAs options
// passed to Find and Count.
type EnrichmentStore interface {
	repository.Store[Enrichment]
	DeleteBy(ctx context.Context, options ...repository.Option) error
	FindByCommitSHA(ctx context.Context, commitSHA string, options ...repository.Option) ([]Enrichment, error)
}

// AssociationStore defines operations for persisting and retrieving enrichment associations.
type AssociationStore interface {
	repository.Store[Association]
	DeleteBy(ctx context.Context, options ...repository.Option) error
}
