package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/beaconsh/beacon/domain/task"
	"github.com/beaconsh/beacon/internal/database"
	"gorm.io/gorm"
)

// StatusStore implements task.StatusStore using GORM.
type StatusStore struct {
	db     database.Database
	mapper TaskStatusMapper
}

// NewStatusStore creates a new StatusStore.
func NewStatusStore(db database.Database) StatusStore {
	return StatusStore{
		db:     db,
		mapper: TaskStatusMapper{},
	}
}

// Get retrieves a status by ID.
func (s StatusStore) Get(ctx context.Context, id string) (task.Status, error) {
	var model TaskStatusModel
	result := s.db.Session(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return task.Status{}, fmt.Errorf("%w: status id %s", database.ErrNotFound, id)
		}
		return task.Status{}, fmt.Errorf("get status: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// Save creates or updates a status. If the status has a parent, the parent
// is saved first so the hierarchy stays consistent.
func (s StatusStore) Save(ctx context.Context, status task.Status) (task.Status, error) {
	if status.Parent() != nil {
		if _, err := s.Save(ctx, *status.Parent()); err != nil {
			return task.Status{}, fmt.Errorf("save parent status: %w", err)
		}
	}

	model := s.mapper.ToModel(status)
	result := s.db.Session(ctx).Save(&model)
	if result.Error != nil {
		return task.Status{}, fmt.Errorf("save status: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// FindByTrackable retrieves all statuses recorded against a trackable entity.
func (s StatusStore) FindByTrackable(ctx context.Context, trackableType task.TrackableType, trackableID int64) ([]task.Status, error) {
	var models []TaskStatusModel
	result := s.db.Session(ctx).
		Where("trackable_type = ? AND trackable_id = ?", string(trackableType), trackableID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find statuses: %w", result.Error)
	}
	return s.toDomainSlice(models), nil
}

// LoadWithHierarchy retrieves statuses for a trackable entity with
// parent-child relationships reconstructed.
func (s StatusStore) LoadWithHierarchy(ctx context.Context, trackableType task.TrackableType, trackableID int64) ([]task.Status, error) {
	var models []TaskStatusModel
	result := s.db.Session(ctx).
		Where("trackable_type = ? AND trackable_id = ?", string(trackableType), trackableID).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("load statuses with hierarchy: %w", result.Error)
	}

	byID := make(map[string]*task.Status, len(models))
	for i := range models {
		status := s.mapper.ToDomain(models[i])
		byID[models[i].ID] = &status
	}

	statuses := make([]task.Status, 0, len(models))
	for _, model := range models {
		var parent *task.Status
		if model.ParentID != nil {
			parent = byID[*model.ParentID]
		}

		var trackableIDVal int64
		var trackableTypeVal task.TrackableType
		if model.TrackableID != nil {
			trackableIDVal = *model.TrackableID
		}
		if model.TrackableType != nil {
			trackableTypeVal = task.TrackableType(*model.TrackableType)
		}

		statuses = append(statuses, task.NewStatusFull(
			model.ID,
			task.ReportingState(model.State),
			task.Operation(model.Operation),
			model.Message,
			model.CreatedAt,
			model.UpdatedAt,
			model.Total,
			model.Current,
			model.Error,
			parent,
			trackableIDVal,
			trackableTypeVal,
		))
	}

	return statuses, nil
}

// DeleteByTrackable removes every status recorded against a trackable entity.
func (s StatusStore) DeleteByTrackable(ctx context.Context, trackableType task.TrackableType, trackableID int64) error {
	result := s.db.Session(ctx).
		Where("trackable_type = ? AND trackable_id = ?", string(trackableType), trackableID).
		Delete(&TaskStatusModel{})
	if result.Error != nil {
		return fmt.Errorf("delete statuses: %w", result.Error)
	}
	return nil
}

func (s StatusStore) toDomainSlice(models []TaskStatusModel) []task.Status {
	statuses := make([]task.Status, len(models))
	for i, model := range models {
		statuses[i] = s.mapper.ToDomain(model)
	}
	return statuses
}
