package enrichment

import "github.com/beaconsh/beacon/domain/repository"

// WithType filters by the "type" column.
func WithType(typ Type) repository.Option {
	return repository.WithCondition("type", string(typ))
}

// WithSubtype filters by the "subtype" column.
func WithSubtype(subtype Subtype) repository.Option {
	return repository.WithCondition("subtype", string(subtype))
}

// WithEnrichmentID filters by the "enrichment_id" column.
func WithEnrichmentID(id int64) repository.Option {
	return repository.WithCondition("enrichment_id", id)
}

// WithEntityID filters by the "entity_id" column.
func WithEntityID(entityID string) repository.Option {
	return repository.WithCondition("entity_id", entityID)
}

// WithEntityType filters by the "entity_type" column.
func WithEntityType(entityType EntityTypeKey) repository.Option {
	return repository.WithCondition("entity_type", string(entityType))
}

// WithEntityIDIn filters by multiple entity IDs.
func WithEntityIDIn(entityIDs []string) repository.Option {
	return repository.WithConditionIn("entity_id", entityIDs)
}

// WithEnrichmentIDIn filters by multiple enrichment IDs.
func WithEnrichmentIDIn(ids []int64) repository.Option {
	return repository.WithConditionIn("enrichment_id", ids)
}

const (
	paramCommitSHA  = "enrichment.commit_sha"
	paramCommitSHAs = "enrichment.commit_shas"
)

// WithCommitSHA filters enrichments associated (via enrichment_associations)
// with the given commit SHA. Implemented as a store-level JOIN rather than a
// plain condition since the commit SHA lives on the association, not the
// enrichment row itself.
func WithCommitSHA(sha string) repository.Option {
	return repository.WithParam(paramCommitSHA, sha)
}

// WithCommitSHAs filters enrichments associated with any of the given commit SHAs.
func WithCommitSHAs(shas []string) repository.Option {
	return repository.WithParam(paramCommitSHAs, shas)
}

// CommitSHAFrom extracts a single commit SHA filter from a built query, if present.
func CommitSHAFrom(q repository.Query) (string, bool) {
	v, ok := q.Param(paramCommitSHA)
	if !ok {
		return "", false
	}
	sha, ok := v.(string)
	return sha, ok
}

// CommitSHAsFrom extracts a multi commit SHA filter from a built query, if present.
func CommitSHAsFrom(q repository.Query) ([]string, bool) {
	v, ok := q.Param(paramCommitSHAs)
	if !ok {
		return nil, false
	}
	shas, ok := v.([]string)
	return shas, ok
}
