package handler

import (
	"log/slog"

	"github.com/beaconsh/beacon/application/service"
	"github.com/beaconsh/beacon/domain/enrichment"
	"github.com/beaconsh/beacon/domain/repository"
	"github.com/beaconsh/beacon/domain/search"
	domainservice "github.com/beaconsh/beacon/domain/service"
	"github.com/beaconsh/beacon/infrastructure/git"
)

// EnrichmentContext bundles the stores and collaborators shared by the
// enrichment handlers (commit descriptions, summaries, cookbooks, wikis,
// architecture discovery, and friends). Grouping them avoids an
// ever-growing constructor argument list as new enrichment kinds are added.
type EnrichmentContext struct {
	Enrichments  enrichment.EnrichmentStore
	Associations enrichment.AssociationStore
	Query        *service.Enrichment
	Enricher     domainservice.Enricher
	Tracker      TrackerFactory
	Logger       *slog.Logger
}

// VectorIndex pairs an embedding service with the store it indexes into.
// Code and text embeddings each get their own VectorIndex so handlers can
// be wired to either without caring which physical store backs it.
type VectorIndex struct {
	Embedding domainservice.Embedding
	Store     search.EmbeddingStore
}

// RepositoryStores bundles the repository-scoped stores (repositories,
// commits, branches, tags, files) that most repository and commit
// handlers need together.
type RepositoryStores struct {
	Repositories repository.RepositoryStore
	Commits      repository.CommitStore
	Branches     repository.BranchStore
	Tags         repository.TagStore
	Files        repository.FileStore
}

// GitInfrastructure bundles the git-backed collaborators (the low-level
// adapter, the clone orchestrator, and the branch/commit scanner) used by
// repository lifecycle and commit handlers.
type GitInfrastructure struct {
	Adapter git.Adapter
	Cloner  domainservice.Cloner
	Scanner domainservice.Scanner
}
