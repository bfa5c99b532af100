package persistence

import (
	"database/sql"
	"time"
)

// RepositoryModel is the GORM model for a tracked Git repository.
type RepositoryModel struct {
	ID                 int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RemoteURI          string     `gorm:"column:remote_uri;uniqueIndex"`
	SanitizedRemoteURI string     `gorm:"column:sanitized_remote_uri"`
	ClonedPath         *string    `gorm:"column:cloned_path"`
	LastScannedAt      *time.Time `gorm:"column:last_scanned_at"`
	TrackingType       string     `gorm:"column:tracking_type"`
	TrackingName       string     `gorm:"column:tracking_name"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (RepositoryModel) TableName() string { return "git_repos" }

// CommitModel is the GORM model for a Git commit.
type CommitModel struct {
	CommitSHA       string    `gorm:"column:commit_sha;primaryKey"`
	RepoID          int64     `gorm:"column:repo_id;index"`
	Date            time.Time `gorm:"column:date"`
	Message         string    `gorm:"column:message"`
	Author          string    `gorm:"column:author"`
	ParentCommitSHA *string   `gorm:"column:parent_commit_sha"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (CommitModel) TableName() string { return "git_commits" }

// BranchModel is the GORM model for a Git branch.
type BranchModel struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RepoID        int64     `gorm:"column:repo_id;uniqueIndex:idx_branch_repo_name"`
	Name          string    `gorm:"column:name;uniqueIndex:idx_branch_repo_name"`
	HeadCommitSHA string    `gorm:"column:head_commit_sha"`
	IsDefault     bool      `gorm:"column:is_default"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (BranchModel) TableName() string { return "git_branches" }

// TagModel is the GORM model for a Git tag.
type TagModel struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RepoID          int64      `gorm:"column:repo_id;uniqueIndex:idx_tag_repo_name"`
	Name            string     `gorm:"column:name;uniqueIndex:idx_tag_repo_name"`
	TargetCommitSHA string     `gorm:"column:target_commit_sha"`
	Message         *string    `gorm:"column:message"`
	TaggerName      *string    `gorm:"column:tagger_name"`
	TaggerEmail     *string    `gorm:"column:tagger_email"`
	TaggedAt        *time.Time `gorm:"column:tagged_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (TagModel) TableName() string { return "git_tags" }

// FileModel is the GORM model for a file snapshot at a commit.
type FileModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CommitSHA string    `gorm:"column:commit_sha;uniqueIndex:idx_file_commit_path;index"`
	Path      string    `gorm:"column:path;uniqueIndex:idx_file_commit_path"`
	BlobSHA   string    `gorm:"column:blob_sha"`
	MimeType  string    `gorm:"column:mime_type"`
	Extension string    `gorm:"column:extension"`
	Size      int64     `gorm:"column:size"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the default pluralization.
func (FileModel) TableName() string { return "git_commit_files" }

// CommitIndexModel tracks the indexing progress of a single commit.
type CommitIndexModel struct {
	CommitSHA             string         `gorm:"column:commit_sha;primaryKey"`
	Status                string         `gorm:"column:status"`
	IndexedAt              sql.NullTime   `gorm:"column:indexed_at"`
	ErrorMessage          sql.NullString `gorm:"column:error_message"`
	FilesProcessed        int            `gorm:"column:files_processed"`
	ProcessingTimeSeconds float64        `gorm:"column:processing_time_seconds"`
	CreatedAt             time.Time      `gorm:"column:created_at"`
	UpdatedAt             time.Time      `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (CommitIndexModel) TableName() string { return "commit_indexes" }

// EnrichmentModel is the GORM model for an LLM-produced enrichment.
type EnrichmentModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Type      string    `gorm:"column:type;index"`
	Subtype   string    `gorm:"column:subtype;index"`
	Content   string    `gorm:"column:content"`
	Language  string    `gorm:"column:language"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
// Named enrichments_v2 to distinguish from the Python-era enrichments table.
func (EnrichmentModel) TableName() string { return "enrichments_v2" }

// EnrichmentAssociationModel links an enrichment to the entity it describes.
type EnrichmentAssociationModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	EnrichmentID int64     `gorm:"column:enrichment_id;index;constraint:-"`
	EntityType   string    `gorm:"column:entity_type;index:idx_association_entity"`
	EntityID     string    `gorm:"column:entity_id;index:idx_association_entity"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (EnrichmentAssociationModel) TableName() string { return "enrichment_associations" }

// TaskModel is the GORM model for a queued task.
type TaskModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	DedupKey  string     `gorm:"column:dedup_key;uniqueIndex:idx_tasks_dedup_key"`
	Type      string    `gorm:"column:type;index"`
	Payload   []byte    `gorm:"column:payload;type:json"`
	Priority  int       `gorm:"column:priority;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (TaskModel) TableName() string { return "tasks" }

// TaskStatusModel is the GORM model for a task progress report.
type TaskStatusModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	ParentID      *string   `gorm:"column:parent_id;index"`
	Operation     string    `gorm:"column:operation"`
	State         string    `gorm:"column:state"`
	Message       string    `gorm:"column:message"`
	Error         string    `gorm:"column:error"`
	Total         int       `gorm:"column:total"`
	Current       int       `gorm:"column:current"`
	TrackableID   *int64    `gorm:"column:trackable_id;index:idx_task_status_trackable"`
	TrackableType *string   `gorm:"column:trackable_type;index:idx_task_status_trackable"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (TaskStatusModel) TableName() string { return "task_status" }

// ChunkLineRangeModel is the GORM model for the line range an enrichment covers.
type ChunkLineRangeModel struct {
	ID           int64 `gorm:"column:id;primaryKey;autoIncrement"`
	EnrichmentID int64 `gorm:"column:enrichment_id;uniqueIndex;constraint:-"`
	StartLine    int   `gorm:"column:start_line"`
	EndLine      int   `gorm:"column:end_line"`
}

// TableName overrides the default pluralization.
func (ChunkLineRangeModel) TableName() string { return "chunk_line_ranges" }

// SnippetModel is the GORM model for a content-addressed code snippet.
// Snippets are keyed by the SHA256 of their content so identical code
// appearing across commits or files is stored once.
type SnippetModel struct {
	SHA       string    `gorm:"column:sha;primaryKey"`
	Content   string    `gorm:"column:content"`
	Extension string    `gorm:"column:extension;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default pluralization.
func (SnippetModel) TableName() string { return "kodit_snippets" }

// SnippetFileModel links a snippet to the commit/file it was derived from.
type SnippetFileModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SnippetSHA string    `gorm:"column:snippet_sha;uniqueIndex:idx_snippet_file;constraint:-"`
	CommitSHA  string    `gorm:"column:commit_sha;uniqueIndex:idx_snippet_file;index"`
	FilePath   string    `gorm:"column:file_path;uniqueIndex:idx_snippet_file"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

// TableName overrides the default pluralization.
func (SnippetFileModel) TableName() string { return "kodit_snippet_files" }
