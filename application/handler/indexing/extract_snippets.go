package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/beaconsh/beacon/application/handler"
	"github.com/beaconsh/beacon/domain/enrichment"
	"github.com/beaconsh/beacon/domain/repository"
	"github.com/beaconsh/beacon/domain/snippet"
	"github.com/beaconsh/beacon/domain/task"
	"github.com/beaconsh/beacon/infrastructure/git"
	"github.com/beaconsh/beacon/infrastructure/slicing"
)

// ExtractSnippets extracts code snippets from commit files by parsing each
// file's AST and slicing out its top-level declarations (see
// infrastructure/slicing), rather than chunking raw text at fixed line
// boundaries.
type ExtractSnippets struct {
	repoStore        repository.RepositoryStore
	fileStore        repository.FileStore
	enrichmentStore  enrichment.EnrichmentStore
	associationStore enrichment.AssociationStore
	snippetStore     snippet.SnippetStore
	gitAdapter       git.Adapter
	slicer           *slicing.Slicer
	trackerFactory   handler.TrackerFactory
	logger           *slog.Logger
}

// NewExtractSnippets creates a new ExtractSnippets handler.
func NewExtractSnippets(
	repoStore repository.RepositoryStore,
	fileStore repository.FileStore,
	enrichmentStore enrichment.EnrichmentStore,
	associationStore enrichment.AssociationStore,
	snippetStore snippet.SnippetStore,
	gitAdapter git.Adapter,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) *ExtractSnippets {
	factory := slicing.NewFactory(slicing.NewRegistry())
	return &ExtractSnippets{
		repoStore:        repoStore,
		fileStore:        fileStore,
		enrichmentStore:  enrichmentStore,
		associationStore: associationStore,
		snippetStore:     snippetStore,
		gitAdapter:       gitAdapter,
		slicer:           slicing.NewSlicer(factory),
		trackerFactory:   trackerFactory,
		logger:           logger,
	}
}

// Execute processes the EXTRACT_SNIPPETS_FOR_COMMIT task.
func (h *ExtractSnippets) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationExtractSnippetsForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)

	existing, err := h.snippetStore.CountForCommit(ctx, cp.CommitSHA())
	if err != nil {
		return fmt.Errorf("check existing snippets: %w", err)
	}
	if existing > 0 {
		tracker.Skip(ctx, "Snippets already extracted for commit")
		return nil
	}

	repo, err := h.repoStore.FindOne(ctx, repository.WithID(cp.RepoID()))
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}

	clonedPath := repo.WorkingCopy().Path()
	if clonedPath == "" {
		return fmt.Errorf("repository %d has never been cloned", cp.RepoID())
	}

	files, err := h.fileStore.Find(ctx, repository.WithCommitSHA(cp.CommitSHA()))
	if err != nil {
		return fmt.Errorf("get commit files: %w", err)
	}

	if len(files) == 0 {
		tracker.Skip(ctx, "No files found for commit")
		return nil
	}

	tracker.SetTotal(ctx, len(files))

	sources := make(map[string][]byte, len(files))
	for i, f := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tracker.SetCurrent(ctx, i, "Reading "+f.Path())

		content, err := h.gitAdapter.FileContent(ctx, clonedPath, cp.CommitSHA(), f.Path())
		if err != nil {
			h.logger.Warn("failed to read file content",
				slog.String("path", f.Path()),
				slog.String("error", err.Error()),
			)
			continue
		}
		sources[f.Path()] = content
	}

	result, err := h.slicer.Slice(ctx, files, sources, slicing.DefaultSliceConfig())
	if err != nil {
		return fmt.Errorf("slice commit files: %w", err)
	}

	snippets := dedupeBySHA(result.Snippets())

	if err := h.snippetStore.Save(ctx, cp.CommitSHA(), snippets); err != nil {
		return fmt.Errorf("save snippets: %w", err)
	}

	for _, snip := range snippets {
		if err := h.saveSnippetEnrichment(ctx, snip, cp.CommitSHA()); err != nil {
			return err
		}
	}

	h.logger.Info("extracted snippets",
		slog.Int("snippets", len(snippets)),
		slog.Int("files", len(files)),
		slog.String("commit", handler.ShortSHA(cp.CommitSHA())),
	)

	return nil
}

// saveSnippetEnrichment mirrors each content-addressed snippet into the
// enrichment store as a TypeDevelopment/SubtypeSnippet row, associated with
// the commit and with the files the snippet derives from. Downstream handlers
// (summaries, BM25, code embeddings) read their input from the enrichment
// store rather than SnippetStore, so this keeps them working unmodified while SnippetStore
// itself holds the live, content-addressed representation.
func (h *ExtractSnippets) saveSnippetEnrichment(ctx context.Context, snip snippet.Snippet, commitSHA string) error {
	e := enrichment.NewSnippetEnrichmentWithLanguage(snip.Content(), snip.Extension())
	saved, err := h.enrichmentStore.Save(ctx, e)
	if err != nil {
		return fmt.Errorf("save snippet enrichment: %w", err)
	}

	if _, err := h.associationStore.Save(ctx, enrichment.CommitAssociation(saved.ID(), commitSHA)); err != nil {
		return fmt.Errorf("save commit association: %w", err)
	}

	for _, f := range snip.DerivesFrom() {
		if f.ID() == 0 {
			continue
		}
		if _, err := h.associationStore.Save(ctx, enrichment.FileAssociation(saved.ID(), strconv.FormatInt(f.ID(), 10))); err != nil {
			return fmt.Errorf("save file association: %w", err)
		}
	}

	return nil
}

// dedupeBySHA keeps one snippet per content SHA. The same function or type
// can surface more than once as a dependency/example body of other
// snippets, so without this the same content would be persisted twice.
func dedupeBySHA(snippets []snippet.Snippet) []snippet.Snippet {
	seen := make(map[string]struct{}, len(snippets))
	result := make([]snippet.Snippet, 0, len(snippets))
	for _, s := range snippets {
		if _, ok := seen[s.SHA()]; ok {
			continue
		}
		seen[s.SHA()] = struct{}{}
		result = append(result, s)
	}
	return result
}
