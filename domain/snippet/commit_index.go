package snippet

import "time"

// IndexStatus represents the indexing state of a single commit.
type IndexStatus string

// IndexStatus values.
const (
	IndexStatusPending              IndexStatus = "pending"
	IndexStatusInProgress           IndexStatus = "in_progress"
	IndexStatusCompleted            IndexStatus = "completed"
	IndexStatusCompletedWithErrors  IndexStatus = "completed_with_errors"
	IndexStatusFailed               IndexStatus = "failed"
)

// CommitIndex tracks the indexing progress and outcome for one commit.
type CommitIndex struct {
	commitSHA             string
	snippets               []Snippet
	status                 IndexStatus
	indexedAt              time.Time
	errorMessage           string
	filesProcessed         int
	processingTimeSeconds  float64
	createdAt              time.Time
	updatedAt              time.Time
}

// NewCommitIndex creates a CommitIndex in the pending state for a commit
// that has not yet been scanned.
func NewCommitIndex(commitSHA string) CommitIndex {
	now := time.Now()
	return CommitIndex{
		commitSHA: commitSHA,
		snippets:  []Snippet{},
		status:    IndexStatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructCommitIndex recreates a CommitIndex from persistence.
func ReconstructCommitIndex(
	commitSHA string,
	snippets []Snippet,
	status IndexStatus,
	indexedAt time.Time,
	errorMessage string,
	filesProcessed int,
	processingTimeSeconds float64,
	createdAt, updatedAt time.Time,
) CommitIndex {
	var snaps []Snippet
	if snippets != nil {
		snaps = make([]Snippet, len(snippets))
		copy(snaps, snippets)
	}

	return CommitIndex{
		commitSHA:             commitSHA,
		snippets:              snaps,
		status:                status,
		indexedAt:             indexedAt,
		errorMessage:          errorMessage,
		filesProcessed:        filesProcessed,
		processingTimeSeconds: processingTimeSeconds,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// CommitSHA returns the indexed commit's SHA.
func (c CommitIndex) CommitSHA() string { return c.commitSHA }

// Snippets returns the snippets extracted for this commit, when loaded.
func (c CommitIndex) Snippets() []Snippet {
	if c.snippets == nil {
		return nil
	}
	result := make([]Snippet, len(c.snippets))
	copy(result, c.snippets)
	return result
}

// Status returns the current indexing status.
func (c CommitIndex) Status() IndexStatus { return c.status }

// IndexedAt returns when indexing finished, or the zero time if still pending.
func (c CommitIndex) IndexedAt() time.Time { return c.indexedAt }

// ErrorMessage returns the failure reason, if any.
func (c CommitIndex) ErrorMessage() string { return c.errorMessage }

// FilesProcessed returns the number of files scanned.
func (c CommitIndex) FilesProcessed() int { return c.filesProcessed }

// ProcessingTimeSeconds returns how long indexing took.
func (c CommitIndex) ProcessingTimeSeconds() float64 { return c.processingTimeSeconds }

// CreatedAt returns the creation timestamp.
func (c CommitIndex) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last update timestamp.
func (c CommitIndex) UpdatedAt() time.Time { return c.updatedAt }

// WithResult returns a copy of c marked complete (or failed) with the given
// outcome recorded.
func (c CommitIndex) WithResult(status IndexStatus, filesProcessed int, processingTimeSeconds float64, errorMessage string) CommitIndex {
	c.status = status
	c.indexedAt = time.Now()
	c.filesProcessed = filesProcessed
	c.processingTimeSeconds = processingTimeSeconds
	c.errorMessage = errorMessage
	c.updatedAt = c.indexedAt
	return c
}

// IsTerminal returns true if indexing has finished, successfully or not.
func (c CommitIndex) IsTerminal() bool {
	switch c.status {
	case IndexStatusCompleted, IndexStatusCompletedWithErrors, IndexStatusFailed:
		return true
	default:
		return false
	}
}
