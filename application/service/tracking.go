package service

import (
	"context"

	"github.com/beaconsh/beacon/domain/task"
	"github.com/beaconsh/beacon/domain/tracking"
)

// Tracking provides read-only access to task progress and queue state.
type Tracking struct {
	statusStore task.StatusStore
	taskStore   task.TaskStore
}

// NewTracking creates a new Tracking service.
func NewTracking(statusStore task.StatusStore, taskStore task.TaskStore) *Tracking {
	return &Tracking{
		statusStore: statusStore,
		taskStore:   taskStore,
	}
}

// StatusesForRepository returns all recorded task statuses for a repository.
func (s *Tracking) StatusesForRepository(ctx context.Context, repoID int64) ([]task.Status, error) {
	return s.statusStore.LoadWithHierarchy(ctx, task.TrackableTypeRepository, repoID)
}

// PendingTaskCount returns the number of tasks waiting in the queue.
func (s *Tracking) PendingTaskCount(ctx context.Context) (int, error) {
	if s.taskStore == nil {
		return 0, nil
	}
	count, err := s.taskStore.CountPending(ctx)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// SummaryForRepository returns an aggregated indexing status summary for a repository.
func (s *Tracking) SummaryForRepository(ctx context.Context, repoID int64) (tracking.RepositoryStatusSummary, error) {
	statuses, err := s.StatusesForRepository(ctx, repoID)
	if err != nil {
		return tracking.RepositoryStatusSummary{}, err
	}

	pending, err := s.PendingTaskCount(ctx)
	if err != nil {
		return tracking.RepositoryStatusSummary{}, err
	}

	return tracking.StatusSummaryFromTasks(statuses, pending), nil
}
