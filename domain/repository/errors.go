package repository

import "errors"

// ErrEmptyRemoteURL indicates a repository was created with an empty remote URL.
var ErrEmptyRemoteURL = errors.New("remote URL cannot be empty")

// ErrNotCloned indicates an operation requiring a working copy was attempted
// on a repository that has not yet been cloned.
var ErrNotCloned = errors.New("repository has not been cloned")
