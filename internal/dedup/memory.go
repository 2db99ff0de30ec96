package dedup

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultCapacity = 500
	DefaultIdleTTL  = 6 * time.Hour

	sweepInterval = time.Minute
)

// MemoryOptions configures a MemoryStore. Zero values take the defaults.
type MemoryOptions struct {
	// Capacity bounds the fingerprints kept per user. The oldest is
	// evicted first.
	Capacity int

	// IdleTTL drops a user's whole set after this long without an Add.
	IdleTTL time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

type userSet struct {
	order    []string
	members  map[string]struct{}
	lastSeen time.Time
}

// MemoryStore keeps fingerprints in process memory behind one mutex.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[int64]*userSet
	capacity  int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MemoryStore{
		users:    map[int64]*userSet{},
		capacity: opts.Capacity,
		idleTTL:  opts.IdleTTL,
		now:      opts.Now,
	}
}

func (s *MemoryStore) Add(_ context.Context, userID int64, fp string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
	}

	u, ok := s.users[userID]
	if !ok || now.Sub(u.lastSeen) >= s.idleTTL {
		u = &userSet{members: map[string]struct{}{}}
		s.users[userID] = u
	}
	u.lastSeen = now
	if _, dup := u.members[fp]; dup {
		return false, nil
	}
	if len(u.order) >= s.capacity {
		oldest := u.order[0]
		u.order = u.order[1:]
		delete(u.members, oldest)
	}
	u.order = append(u.order, fp)
	u.members[fp] = struct{}{}
	return true, nil
}

func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of fingerprints held for the user.
func (s *MemoryStore) Len(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return len(u.order)
	}
	return 0
}

// Users returns the number of users with a live set.
func (s *MemoryStore) Users() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// sweep drops idle users. Caller holds mu.
func (s *MemoryStore) sweep(now time.Time) {
	for id, u := range s.users {
		if now.Sub(u.lastSeen) >= s.idleTTL {
			delete(s.users, id)
		}
	}
	s.lastSweep = now
}
