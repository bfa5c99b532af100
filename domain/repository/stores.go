package repository

import "context"

// RepositoryStore persists tracked Git repositories.
type RepositoryStore interface {
	Store[Repository]
}

// CommitStore persists Git commits.
type CommitStore interface {
	Store[Commit]

	// SaveAll creates or updates multiple commits in one call.
	SaveAll(ctx context.Context, commits []Commit) ([]Commit, error)
}

// BranchStore persists Git branches.
type BranchStore interface {
	Store[Branch]

	// SaveAll creates or updates multiple branches in one call.
	SaveAll(ctx context.Context, branches []Branch) ([]Branch, error)
}

// TagStore persists Git tags.
type TagStore interface {
	Store[Tag]

	// SaveAll creates or updates multiple tags in one call.
	SaveAll(ctx context.Context, tags []Tag) ([]Tag, error)
}

// FileStore persists file snapshots at a commit.
type FileStore interface {
	Store[File]

	// SaveAll creates or updates multiple files in one call.
	SaveAll(ctx context.Context, files []File) ([]File, error)
}
