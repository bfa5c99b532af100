package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beaconsh/beacon/domain/repository"
	"github.com/beaconsh/beacon/domain/snippet"
	"github.com/beaconsh/beacon/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// saveAllBatchSize caps the number of rows written per INSERT statement in
// batched upserts, keeping a single statement well under typical driver
// parameter limits (SQLite's default is 999 bound parameters).
const saveAllBatchSize = 100

// SnippetStore implements snippet.SnippetStore using GORM. Snippets are
// content-addressed (keyed by SHA256 of their text) so identical code
// appearing in multiple commits or files is stored once; kodit_snippet_files
// records which commit/file each snippet was derived from.
type SnippetStore struct {
	db database.Database
}

// NewSnippetStore creates a new SnippetStore.
func NewSnippetStore(db database.Database) SnippetStore {
	return SnippetStore{db: db}
}

// Save persists the snippets derived from a commit's files, skipping
// snippets whose content SHA already exists.
func (s SnippetStore) Save(ctx context.Context, commitSHA string, snippets []snippet.Snippet) error {
	if len(snippets) == 0 {
		return nil
	}

	now := time.Now()
	models := make([]SnippetModel, len(snippets))
	for i, sn := range snippets {
		models[i] = SnippetModel{
			SHA:       sn.SHA(),
			Content:   sn.Content(),
			Extension: sn.Extension(),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	var links []SnippetFileModel
	for _, sn := range snippets {
		for _, f := range sn.DerivesFrom() {
			links = append(links, SnippetFileModel{
				SnippetSHA: sn.SHA(),
				CommitSHA:  commitSHA,
				FilePath:   f.Path(),
				CreatedAt:  now,
			})
		}
	}

	return s.db.Session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(models, saveAllBatchSize).Error; err != nil {
			return fmt.Errorf("save snippets: %w", err)
		}
		if len(links) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(links, saveAllBatchSize).Error; err != nil {
			return fmt.Errorf("save snippet files: %w", err)
		}
		return nil
	})
}

// SnippetsForCommit returns the snippets derived from files at the given commit.
func (s SnippetStore) SnippetsForCommit(ctx context.Context, commitSHA string, options ...repository.Option) ([]snippet.Snippet, error) {
	var links []SnippetFileModel
	db := database.ApplyOptions(s.db.Session(ctx).Where("commit_sha = ?", commitSHA), options...)
	if err := db.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("find snippet files: %w", err)
	}
	if len(links) == 0 {
		return []snippet.Snippet{}, nil
	}

	shas := make([]string, len(links))
	filesBySHA := make(map[string][]string, len(links))
	for i, l := range links {
		shas[i] = l.SnippetSHA
		filesBySHA[l.SnippetSHA] = append(filesBySHA[l.SnippetSHA], l.FilePath)
	}

	var models []SnippetModel
	if err := s.db.Session(ctx).Where("sha IN ?", shas).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("find snippets: %w", err)
	}

	result := make([]snippet.Snippet, len(models))
	for i, m := range models {
		paths := filesBySHA[m.SHA]
		derives := make([]repository.File, len(paths))
		for j, path := range paths {
			derives[j] = repository.ReconstructFile(0, commitSHA, path, "", "", m.Extension, m.Extension, 0, m.CreatedAt)
		}
		result[i] = snippet.ReconstructSnippet(m.SHA, m.Content, m.Extension, derives, nil, m.CreatedAt, m.UpdatedAt)
	}
	return result, nil
}

// CountForCommit returns the total number of distinct snippets derived from the given commit.
func (s SnippetStore) CountForCommit(ctx context.Context, commitSHA string) (int64, error) {
	var count int64
	err := s.db.Session(ctx).Model(&SnippetFileModel{}).
		Where("commit_sha = ?", commitSHA).
		Distinct("snippet_sha").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count snippets for commit: %w", err)
	}
	return count, nil
}

// ByIDs returns the snippets with the given content SHAs.
func (s SnippetStore) ByIDs(ctx context.Context, shas []string) ([]snippet.Snippet, error) {
	if len(shas) == 0 {
		return []snippet.Snippet{}, nil
	}
	var models []SnippetModel
	if err := s.db.Session(ctx).Where("sha IN ?", shas).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("find snippets: %w", err)
	}
	result := make([]snippet.Snippet, len(models))
	for i, m := range models {
		result[i] = snippet.ReconstructSnippet(m.SHA, m.Content, m.Extension, nil, nil, m.CreatedAt, m.UpdatedAt)
	}
	return result, nil
}

// BySHA returns a single snippet by its content SHA.
func (s SnippetStore) BySHA(ctx context.Context, sha string) (snippet.Snippet, error) {
	var model SnippetModel
	err := s.db.Session(ctx).Where("sha = ?", sha).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snippet.Snippet{}, fmt.Errorf("%w: snippet %s", database.ErrNotFound, sha)
		}
		return snippet.Snippet{}, err
	}
	return snippet.ReconstructSnippet(model.SHA, model.Content, model.Extension, nil, nil, model.CreatedAt, model.UpdatedAt), nil
}

// CommitIndexStore implements snippet.CommitIndexStore using GORM.
type CommitIndexStore struct {
	db     database.Database
	mapper CommitIndexMapper
}

// NewCommitIndexStore creates a new CommitIndexStore.
func NewCommitIndexStore(db database.Database) CommitIndexStore {
	return CommitIndexStore{
		db:     db,
		mapper: CommitIndexMapper{},
	}
}

// Get returns a commit index by SHA.
func (s CommitIndexStore) Get(ctx context.Context, commitSHA string) (snippet.CommitIndex, error) {
	var model CommitIndexModel
	err := s.db.Session(ctx).Where("commit_sha = ?", commitSHA).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snippet.CommitIndex{}, fmt.Errorf("%w: commit index %s", database.ErrNotFound, commitSHA)
		}
		return snippet.CommitIndex{}, err
	}
	return s.mapper.ToDomain(model), nil
}

// Save persists a commit index.
func (s CommitIndexStore) Save(ctx context.Context, index snippet.CommitIndex) error {
	model := s.mapper.ToModel(index)
	return s.db.Session(ctx).Save(&model).Error
}

// Delete removes a commit index.
func (s CommitIndexStore) Delete(ctx context.Context, commitSHA string) error {
	return s.db.Session(ctx).Where("commit_sha = ?", commitSHA).Delete(&CommitIndexModel{}).Error
}

// Exists checks if a commit index exists.
func (s CommitIndexStore) Exists(ctx context.Context, commitSHA string) (bool, error) {
	var count int64
	err := s.db.Session(ctx).Model(&CommitIndexModel{}).Where("commit_sha = ?", commitSHA).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
