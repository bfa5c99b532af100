package git

import (
	"context"
	"time"
)

// Adapter abstracts git operations over a local working copy. GiteaAdapter
// shells out to the git binary via Gitea's git module; GoGitAdapter uses the
// pure-Go go-git implementation. Both satisfy this interface.
type Adapter interface {
	CloneRepository(ctx context.Context, remoteURI string, localPath string) error
	CheckoutCommit(ctx context.Context, localPath string, commitSHA string) error
	CheckoutBranch(ctx context.Context, localPath string, branchName string) error
	FetchRepository(ctx context.Context, localPath string) error
	PullRepository(ctx context.Context, localPath string) error
	EnsureRepository(ctx context.Context, remoteURI string, localPath string) error
	RepositoryExists(ctx context.Context, localPath string) (bool, error)

	AllBranches(ctx context.Context, localPath string) ([]BranchInfo, error)
	DefaultBranch(ctx context.Context, localPath string) (string, error)
	LatestCommitSHA(ctx context.Context, localPath string, branchName string) (string, error)
	BranchCommitSHAs(ctx context.Context, localPath string, branchName string) ([]string, error)
	AllBranchHeadSHAs(ctx context.Context, localPath string, branchNames []string) (map[string]string, error)

	BranchCommits(ctx context.Context, localPath string, branchName string) ([]CommitInfo, error)
	AllCommitsBulk(ctx context.Context, localPath string, since *time.Time) (map[string]CommitInfo, error)
	CommitDetails(ctx context.Context, localPath string, commitSHA string) (CommitInfo, error)
	CommitDiff(ctx context.Context, localPath string, commitSHA string) (string, error)

	CommitFiles(ctx context.Context, localPath string, commitSHA string) ([]FileInfo, error)
	FileContent(ctx context.Context, localPath string, commitSHA string, filePath string) ([]byte, error)

	AllTags(ctx context.Context, localPath string) ([]TagInfo, error)
}

// BranchInfo describes a branch head as reported by the adapter.
type BranchInfo struct {
	Name      string
	HeadSHA   string
	IsDefault bool
}

// CommitInfo describes a commit as reported by the adapter.
type CommitInfo struct {
	SHA            string
	ParentSHA      string
	Message        string
	AuthorName     string
	AuthorEmail    string
	AuthoredAt     time.Time
	CommitterName  string
	CommitterEmail string
	CommittedAt    time.Time
}

// FileInfo describes a file entry at a given commit as reported by the adapter.
type FileInfo struct {
	Path     string
	BlobSHA  string
	Size     int64
	MimeType string
}

// TagInfo describes a tag as reported by the adapter. Message, TaggerName,
// TaggerEmail, and TaggedAt are only populated for annotated tags.
type TagInfo struct {
	Name            string
	TargetCommitSHA string
	Message         string
	TaggerName      string
	TaggerEmail     string
	TaggedAt        time.Time
}
