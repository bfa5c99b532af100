package repository

import (
	"path/filepath"
	"strings"
	"time"
)

// File represents a single file as it existed at a specific commit.
type File struct {
	id        int64
	commitSHA string
	path      string
	blobSHA   string
	mimeType  string
	extension string
	language  string
	size      int64
	createdAt time.Time
}

// NewFile creates a File not yet attached to a commit, identified by its
// blob SHA. Used by callers (e.g. the AST slicer) that derive a File purely
// from content and later attach it to a commit via WithCommitSHA.
func NewFile(blobSHA, path, language string, size int64) File {
	return File{
		blobSHA:   blobSHA,
		path:      path,
		language:  language,
		extension: strings.TrimPrefix(filepath.Ext(path), "."),
		size:      size,
		createdAt: time.Now(),
	}
}

// NewFileWithDetails creates a File scoped to a commit with full metadata.
func NewFileWithDetails(commitSHA, path, blobSHA, mimeType, extension string, size int64) File {
	return File{
		commitSHA: commitSHA,
		path:      path,
		blobSHA:   blobSHA,
		mimeType:  mimeType,
		extension: extension,
		size:      size,
		createdAt: time.Now(),
	}
}

// ReconstructFile recreates a File from persistence.
func ReconstructFile(id int64, commitSHA, path, blobSHA, mimeType, extension, language string, size int64, createdAt time.Time) File {
	return File{
		id:        id,
		commitSHA: commitSHA,
		path:      path,
		blobSHA:   blobSHA,
		mimeType:  mimeType,
		extension: extension,
		language:  language,
		size:      size,
		createdAt: createdAt,
	}
}

// ID returns the file's persistence identifier.
func (f File) ID() int64 { return f.id }

// CommitSHA returns the SHA of the commit this file snapshot belongs to.
func (f File) CommitSHA() string { return f.commitSHA }

// Path returns the file's path within the repository.
func (f File) Path() string { return f.path }

// BlobSHA returns the Git blob SHA of the file's content.
func (f File) BlobSHA() string { return f.blobSHA }

// MimeType returns the detected MIME type.
func (f File) MimeType() string { return f.mimeType }

// Extension returns the file extension, without the leading dot.
func (f File) Extension() string { return f.extension }

// Language returns the detected programming language, if any.
func (f File) Language() string { return f.language }

// Size returns the file size in bytes.
func (f File) Size() int64 { return f.size }

// CreatedAt returns when this file snapshot was first persisted.
func (f File) CreatedAt() time.Time { return f.createdAt }

// WithCommitSHA returns a copy of f attached to the given commit.
func (f File) WithCommitSHA(commitSHA string) File {
	f.commitSHA = commitSHA
	return f
}

// WithID returns a copy of f with the given persistence identifier.
func (f File) WithID(id int64) File {
	f.id = id
	return f
}
