package task

import (
	"context"

	"github.com/beaconsh/beacon/domain/repository"
)

// TaskStore defines persistence operations for queued tasks.
type TaskStore interface {
	// Get retrieves a task by ID.
	Get(ctx context.Context, id int64) (Task, error)

	// FindAll retrieves every task currently in the queue.
	FindAll(ctx context.Context) ([]Task, error)

	// FindPending retrieves pending tasks, highest priority first.
	FindPending(ctx context.Context, options ...repository.Option) ([]Task, error)

	// Save creates a new task or returns the existing one if its dedup key
	// already matches a task in the queue.
	Save(ctx context.Context, t Task) (Task, error)

	// Delete removes a task from the queue.
	Delete(ctx context.Context, t Task) error

	// CountPending returns the number of pending tasks.
	CountPending(ctx context.Context) (int64, error)

	// Dequeue atomically claims and removes the highest priority task.
	// Returns false if the queue is empty.
	Dequeue(ctx context.Context) (Task, bool, error)
}

// StatusStore defines persistence operations for task progress reports.
type StatusStore interface {
	// Get retrieves a status by ID.
	Get(ctx context.Context, id string) (Status, error)

	// Save creates or updates a status. If the status has a parent, the
	// parent is saved first so the hierarchy stays consistent.
	Save(ctx context.Context, status Status) (Status, error)

	// FindByTrackable retrieves all statuses recorded against a trackable
	// entity, most recent first.
	FindByTrackable(ctx context.Context, trackableType TrackableType, trackableID int64) ([]Status, error)

	// LoadWithHierarchy retrieves statuses for a trackable entity with
	// parent-child relationships reconstructed.
	LoadWithHierarchy(ctx context.Context, trackableType TrackableType, trackableID int64) ([]Status, error)

	// DeleteByTrackable removes every status recorded against a trackable entity.
	DeleteByTrackable(ctx context.Context, trackableType TrackableType, trackableID int64) error
}
