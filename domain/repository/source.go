package repository

// SourceStatus represents the lifecycle state of a tracked repository source.
type SourceStatus string

// SourceStatus values.
const (
	SourceStatusPending  SourceStatus = "pending"
	SourceStatusCloning  SourceStatus = "cloning"
	SourceStatusCloned   SourceStatus = "cloned"
	SourceStatusSyncing  SourceStatus = "syncing"
	SourceStatusFailed   SourceStatus = "failed"
	SourceStatusDeleting SourceStatus = "deleting"
)

// String returns the string representation of the status.
func (s SourceStatus) String() string { return string(s) }

// IsTerminal returns true if the status will not transition on its own.
func (s SourceStatus) IsTerminal() bool {
	return s == SourceStatusCloned || s == SourceStatusFailed
}

// Source wraps a Repository with its current lifecycle status, giving
// callers a view of a tracked repository that also reports what the
// indexing pipeline is doing with it right now.
type Source struct {
	repo      Repository
	status    SourceStatus
	lastError string
}

// NewSource derives a Source from a Repository, inferring status from
// whether it has been cloned.
func NewSource(repo Repository) Source {
	status := SourceStatusPending
	if repo.HasWorkingCopy() {
		status = SourceStatusCloned
	}
	return Source{repo: repo, status: status}
}

// ReconstructSource recreates a Source with an explicit status and error.
func ReconstructSource(repo Repository, status SourceStatus, lastError string) Source {
	return Source{repo: repo, status: status, lastError: lastError}
}

// ID returns the underlying repository's ID.
func (s Source) ID() int64 { return s.repo.ID() }

// RemoteURL returns the underlying repository's remote URL.
func (s Source) RemoteURL() string { return s.repo.RemoteURL() }

// WorkingCopy returns the underlying repository's working copy.
func (s Source) WorkingCopy() WorkingCopy { return s.repo.WorkingCopy() }

// TrackingConfig returns the underlying repository's tracking configuration.
func (s Source) TrackingConfig() TrackingConfig { return s.repo.TrackingConfig() }

// Repository returns the underlying Repository.
func (s Source) Repository() Repository { return s.repo }

// Status returns the current lifecycle status.
func (s Source) Status() SourceStatus { return s.status }

// LastError returns the last recorded error message, if any.
func (s Source) LastError() string { return s.lastError }

// IsCloned returns true if the repository has a working copy.
func (s Source) IsCloned() bool { return s.repo.HasWorkingCopy() }

// ClonedPath returns the local filesystem path, or "" if not cloned.
func (s Source) ClonedPath() string {
	if !s.IsCloned() {
		return ""
	}
	return s.repo.WorkingCopy().Path()
}

// WithStatus returns a copy of s with the given status.
func (s Source) WithStatus(status SourceStatus) Source {
	s.status = status
	return s
}

// WithError returns a copy of s marked failed with the given error recorded.
func (s Source) WithError(err error) Source {
	s.status = SourceStatusFailed
	if err != nil {
		s.lastError = err.Error()
	}
	return s
}

// CanSync returns true if the source is cloned and not mid-transition.
func (s Source) CanSync() bool {
	return s.IsCloned() && s.status != SourceStatusSyncing && s.status != SourceStatusDeleting
}

// CanDelete returns true if the source is not already being deleted.
func (s Source) CanDelete() bool {
	return s.status != SourceStatusDeleting
}
