package dedup

import "context"

// Store holds the fingerprints served to each user.
type Store interface {
	// Add inserts fp into the user's set. It reports false when fp was
	// already present. The check and insert are atomic per user.
	Add(ctx context.Context, userID int64, fp string) (bool, error)

	// Clear discards every fingerprint of the user.
	Clear(ctx context.Context, userID int64) error

	Close() error
}
