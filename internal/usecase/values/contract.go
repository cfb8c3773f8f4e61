package values

import (
	"context"

	"github.com/corvusec/newsdex/internal/domain/snapshot"
)

// SnapshotProvider serves the current article snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*snapshot.Snapshot, error)
}
