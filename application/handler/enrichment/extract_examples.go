package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/beaconsh/beacon/application/handler"
	"github.com/beaconsh/beacon/application/service"
	"github.com/beaconsh/beacon/domain/enrichment"
	"github.com/beaconsh/beacon/domain/repository"
	"github.com/beaconsh/beacon/domain/snippet"
	"github.com/beaconsh/beacon/domain/task"
	infraGit "github.com/beaconsh/beacon/infrastructure/git"
	"github.com/beaconsh/beacon/infrastructure/enricher/example"
)

// ExampleDiscoverer determines whether a file is a candidate for example
// extraction, and whether it is a documentation file (fenced code blocks)
// rather than a standalone source file (extracted whole).
type ExampleDiscoverer interface {
	IsExampleCandidate(path string) bool
	IsDocumentationFile(path string) bool
}

// ExtractExamples handles the EXTRACT_EXAMPLES_FOR_COMMIT operation. It walks
// the files touched by a commit, pulls fenced code blocks out of
// documentation and keeps whole files out of example/sample directories,
// then records each as a development/example enrichment.
type ExtractExamples struct {
	repoStore   repository.RepositoryStore
	commitStore repository.CommitStore
	adapter     infraGit.Adapter
	enrichCtx   handler.EnrichmentContext
	discoverer  ExampleDiscoverer
}

// NewExtractExamples creates a new ExtractExamples handler.
func NewExtractExamples(
	repoStore repository.RepositoryStore,
	commitStore repository.CommitStore,
	adapter infraGit.Adapter,
	enrichCtx handler.EnrichmentContext,
	discoverer ExampleDiscoverer,
) *ExtractExamples {
	return &ExtractExamples{
		repoStore:   repoStore,
		commitStore: commitStore,
		adapter:     adapter,
		enrichCtx:   enrichCtx,
		discoverer:  discoverer,
	}
}

// Execute processes the EXTRACT_EXAMPLES_FOR_COMMIT task.
func (h *ExtractExamples) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.enrichCtx.Tracker.ForOperation(
		task.OperationExtractExamplesForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)

	exists, err := h.enrichCtx.Query.Exists(ctx, &service.EnrichmentExistsParams{
		CommitSHA: cp.CommitSHA(),
		Type:      enrichment.TypeDevelopment,
		Subtype:   enrichment.SubtypeExample,
	})
	if err != nil {
		h.enrichCtx.Logger.Error("failed to check existing examples", slog.String("error", err.Error()))
		return err
	}

	if exists {
		tracker.Skip(ctx, "Examples already extracted for commit")
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

	files, err := h.adapter.CommitFiles(ctx, clonedPath, cp.CommitSHA())
	if err != nil {
		return fmt.Errorf("get commit files: %w", err)
	}

	var candidates []infraGit.FileInfo
	for _, f := range files {
		if h.discoverer.IsExampleCandidate(f.Path) {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		tracker.Skip(ctx, "No example candidates found for commit")
		return nil
	}

	tracker.SetTotal(ctx, len(candidates))

	var examples []string
	for i, file := range candidates {
		tracker.SetCurrent(ctx, i, fmt.Sprintf("Processing %s", filepath.Base(file.Path)))

		content, err := h.adapter.FileContent(ctx, clonedPath, cp.CommitSHA(), file.Path)
		if err != nil {
			h.enrichCtx.Logger.Warn("failed to read example candidate",
				slog.String("path", file.Path), slog.String("error", err.Error()))
			continue
		}

		if h.discoverer.IsDocumentationFile(file.Path) {
			examples = append(examples, extractFromDocumentation(file.Path, string(content))...)
			continue
		}

		if extracted := extractFullFile(file.Path, string(content)); extracted != "" {
			examples = append(examples, extracted)
		}
	}

	unique := deduplicateExamples(examples)

	h.enrichCtx.Logger.Info("extracted examples",
		slog.Int("total", len(examples)),
		slog.Int("unique", len(unique)),
		slog.String("commit", handler.ShortSHA(cp.CommitSHA())),
	)

	for _, content := range unique {
		exampleEnrichment := enrichment.NewEnrichment(
			enrichment.TypeDevelopment,
			enrichment.SubtypeExample,
			enrichment.EntityTypeCommit,
			sanitizeContent(content),
		)

		saved, err := h.enrichCtx.Enrichments.Save(ctx, exampleEnrichment)
		if err != nil {
			return fmt.Errorf("save example enrichment: %w", err)
		}

		commitAssoc := enrichment.CommitAssociation(saved.ID(), cp.CommitSHA())
		if _, err := h.enrichCtx.Associations.Save(ctx, commitAssoc); err != nil {
			return fmt.Errorf("save commit association: %w", err)
		}
	}

	return nil
}

// extractFromDocumentation pulls fenced code blocks, along with their
// surrounding heading or paragraph, out of a Markdown or RST file.
func extractFromDocumentation(path, content string) []string {
	parser := example.ParserForFile(path)
	if parser == nil {
		return nil
	}

	blocks := parser.Parse(content)
	if len(blocks) == 0 {
		return nil
	}

	result := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.HasContext() {
			result = append(result, b.Context()+"\n\n"+b.Content())
			continue
		}
		result = append(result, b.Content())
	}
	return result
}

// extractFullFile keeps a whole source file as an example when its
// extension maps to a known language; unrecognized extensions are skipped.
func extractFullFile(path, content string) string {
	lang := snippet.Language{}
	if _, err := lang.LanguageForExtension(filepath.Ext(path)); err != nil {
		return ""
	}
	return content
}

func deduplicateExamples(examples []string) []string {
	seen := make(map[string]bool, len(examples))
	result := make([]string, 0, len(examples))
	for _, e := range examples {
		if !seen[e] {
			seen[e] = true
			result = append(result, e)
		}
	}
	return result
}

func sanitizeContent(content string) string {
	return strings.ReplaceAll(content, "\x00", "")
}

// Ensure ExtractExamples implements handler.Handler.
var _ handler.Handler = (*ExtractExamples)(nil)
