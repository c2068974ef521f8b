package memory

import (
	"sync"
	"time"

	"councellorx-be/pkg/intake"

	"github.com/patrickmn/go-cache"
)

// IntakeRecord is the wizard state of one chat session. Mutate it only while
// holding the lock returned by IntakeRepository.Lock.
type IntakeRecord struct {
	mu        sync.Mutex
	State     intake.State
	UpdatedAt time.Time
}

// IntakeRepository keeps wizard state in an expiring in-memory cache keyed by
// session id. State is never persisted.
type IntakeRepository struct {
	cache *cache.Cache
}

func NewIntakeRepository(ttl time.Duration) *IntakeRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &IntakeRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *IntakeRepository) record(sessionID string) *IntakeRecord {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*IntakeRecord)
	}
	rec := &IntakeRecord{State: intake.Idle{}, UpdatedAt: time.Now()}
	// Add fails if another goroutine won the race; use theirs.
	if err := r.cache.Add(sessionID, rec, cache.DefaultExpiration); err != nil {
		if x, found := r.cache.Get(sessionID); found {
			return x.(*IntakeRecord)
		}
	}
	return rec
}

// Lock returns the session's record with its lock held. The release func
// refreshes the TTL and unlocks. A record deleted while locked stays deleted.
func (r *IntakeRepository) Lock(sessionID string) (*IntakeRecord, func()) {
	rec := r.record(sessionID)
	rec.mu.Lock()
	return rec, func() {
		rec.UpdatedAt = time.Now()
		_ = r.cache.Replace(sessionID, rec, cache.DefaultExpiration)
		rec.mu.Unlock()
	}
}

func (r *IntakeRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// Current reads the session's state without creating a record. ok is false
// once the session was deleted or its state expired.
func (r *IntakeRepository) Current(sessionID string) (intake.State, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	rec := x.(*IntakeRecord)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.State, true
}
