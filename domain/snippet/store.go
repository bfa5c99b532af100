package snippet

import (
	"context"

	"github.com/beaconsh/beacon/domain/repository"
)

// SnippetStore defines operations for content-addressed snippet persistence.
type SnippetStore interface {
	// SnippetsForCommit returns the snippets derived from files at the given commit.
	SnippetsForCommit(ctx context.Context, commitSHA string, options ...repository.Option) ([]Snippet, error)

	// CountForCommit returns the total number of snippets derived from the given commit.
	CountForCommit(ctx context.Context, commitSHA string) (int64, error)

	// Save persists the snippets derived from the given commit, deduplicating
	// by content SHA so identical snippets across commits share one row.
	Save(ctx context.Context, commitSHA string, snippets []Snippet) error

	// ByIDs returns the snippets with the given content SHAs.
	ByIDs(ctx context.Context, shas []string) ([]Snippet, error)

	// BySHA returns a single snippet by its content SHA.
	BySHA(ctx context.Context, sha string) (Snippet, error)
}

// CommitIndexStore defines operations for commit index persistence.
type CommitIndexStore interface {
	// Get returns a commit index by SHA.
	Get(ctx context.Context, commitSHA string) (CommitIndex, error)

	// Save persists a commit index.
	Save(ctx context.Context, index CommitIndex) error

	// Delete removes a commit index.
	Delete(ctx context.Context, commitSHA string) error

	// Exists checks if a commit index exists.
	Exists(ctx context.Context, commitSHA string) (bool, error)
}
