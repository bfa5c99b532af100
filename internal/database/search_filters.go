package database

import (
	"fmt"

	"github.com/beaconsh/beacon/domain/search"
	"gorm.io/gorm"
)

// ApplySearchFilters adds JOINs and WHERE clauses narrowing a BM25/vector
// search query by language, author, commit, repository, file path, and
// enrichment metadata. The calling table must expose a snippet_id column
// that stores enrichments_v2 IDs as strings; JOINs cast snippet_id to the
// dialect's integer type.
func ApplySearchFilters(db *gorm.DB, filters search.Filters) *gorm.DB {
	if filters.IsEmpty() {
		return db
	}

	castType := "bigint"
	if db.Name() == "sqlite" {
		castType = "INTEGER"
	}

	if filters.Language() != "" || len(filters.EnrichmentTypes()) > 0 || len(filters.EnrichmentSubtypes()) > 0 {
		db = db.Joins(fmt.Sprintf(
			"JOIN enrichments_v2 ON enrichments_v2.id = CAST(snippet_id AS %s)", castType))
		if lang := filters.Language(); lang != "" {
			db = db.Where("enrichments_v2.language = ?", lang)
		}
		if types := filters.EnrichmentTypes(); len(types) > 0 {
			db = db.Where("enrichments_v2.type IN ?", types)
		}
		if subtypes := filters.EnrichmentSubtypes(); len(subtypes) > 0 {
			db = db.Where("enrichments_v2.subtype IN ?", subtypes)
		}
	}

	if len(filters.CommitSHAs()) > 0 || filters.SourceRepo() != 0 || filters.Author() != "" ||
		!filters.CreatedAfter().IsZero() || !filters.CreatedBefore().IsZero() {
		db = db.Joins(fmt.Sprintf(
			"JOIN enrichment_associations ea_commit ON ea_commit.enrichment_id = CAST(snippet_id AS %s) AND ea_commit.entity_type = ?",
			castType), "git_commits")
		db = db.Joins("JOIN git_commits ON git_commits.commit_sha = ea_commit.entity_id")

		if shas := filters.CommitSHAs(); len(shas) > 0 {
			db = db.Where("git_commits.commit_sha IN ?", shas)
		}
		if repo := filters.SourceRepo(); repo != 0 {
			db = db.Where("git_commits.repo_id = ?", repo)
		}
		if author := filters.Author(); author != "" {
			db = db.Where("git_commits.author LIKE ?", "%"+author+"%")
		}
		if !filters.CreatedAfter().IsZero() {
			db = db.Where("git_commits.date >= ?", filters.CreatedAfter())
		}
		if !filters.CreatedBefore().IsZero() {
			db = db.Where("git_commits.date <= ?", filters.CreatedBefore())
		}
	}

	if path := filters.FilePath(); path != "" {
		db = db.Joins(fmt.Sprintf(
			"JOIN enrichment_associations ea_file ON ea_file.enrichment_id = CAST(snippet_id AS %s) AND ea_file.entity_type = ?",
			castType), "git_commit_files")
		db = db.Joins("JOIN git_commit_files ON git_commit_files.id = CAST(ea_file.entity_id AS INTEGER)")
		db = db.Where("git_commit_files.path LIKE ?", "%"+path+"%")
	}

	return db
}
