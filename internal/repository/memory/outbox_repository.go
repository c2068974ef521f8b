package memory

import (
	"sort"
	"sync"
	"time"

	"councellorx-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PendingMessage is a chat message accepted by the API but not yet committed
// to the database.
type PendingMessage struct {
	Message   entity.ChatMessage
	UserId    uuid.UUID
	Attempts  int
	LastError string
	StagedAt  time.Time
}

// OutboxRepository holds staged messages until they are persisted or given
// up on. Entries never expire on their own.
type OutboxRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (r *OutboxRepository) Put(p *PendingMessage) {
	r.cache.Set(p.Message.Id.String(), p, cache.NoExpiration)
}

func (r *OutboxRepository) Get(id uuid.UUID) (*PendingMessage, bool) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*PendingMessage), true
	}
	return nil, false
}

// RecordAttempt bumps the attempt counter and returns the new count.
func (r *OutboxRepository) RecordAttempt(id uuid.UUID, err error) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Get(id)
	if !ok {
		return 0
	}
	p.Attempts++
	if err != nil {
		p.LastError = err.Error()
	}
	return p.Attempts
}

func (r *OutboxRepository) Remove(id uuid.UUID) {
	r.cache.Delete(id.String())
}

// ListBySession returns copies of the session's staged messages, oldest first.
func (r *OutboxRepository) ListBySession(sessionID uuid.UUID) []entity.ChatMessage {
	var out []entity.ChatMessage
	for _, item := range r.cache.Items() {
		p := item.Object.(*PendingMessage)
		if p.Message.ChatSessionId == sessionID {
			out = append(out, p.Message)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// RemoveBySession drops every staged message of a deleted session.
func (r *OutboxRepository) RemoveBySession(sessionID uuid.UUID) {
	for key, item := range r.cache.Items() {
		if item.Object.(*PendingMessage).Message.ChatSessionId == sessionID {
			r.cache.Delete(key)
		}
	}
}
