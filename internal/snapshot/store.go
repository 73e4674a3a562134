package snapshot

import "context"

// Store persists snapshots under monotonically increasing versions.
type Store interface {
	// Put assigns the next version to snap and stores a copy of it.
	Put(ctx context.Context, snap *Snapshot) (*Snapshot, error)
	// Latest returns the newest snapshot or ErrNoSnapshot.
	Latest(ctx context.Context) (*Snapshot, error)
	// Get returns a specific version or ErrNotFound.
	Get(ctx context.Context, version int64) (*Snapshot, error)
}
