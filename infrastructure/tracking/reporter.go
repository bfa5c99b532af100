package tracking

import (
	"context"

	"github.com/beaconsh/beacon/domain/task"
)

// Reporter receives notifications when a tracked task's status changes.
type Reporter interface {
	OnChange(ctx context.Context, status task.Status) error
}
