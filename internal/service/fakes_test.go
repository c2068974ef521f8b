package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"councellorx-be/internal/entity"
	"councellorx-be/internal/repository/contract"
	"councellorx-be/internal/repository/specification"
	"councellorx-be/internal/repository/unitofwork"
	"councellorx-be/pkg/chatsession"
	"councellorx-be/pkg/events"
	"councellorx-be/pkg/llm"

	"github.com/google/uuid"
)

var errDBDown = errors.New("connection refused")

// fakeStore is an in-memory stand-in for postgres. Writes are applied
// immediately; Rollback does not undo them.
type fakeStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entity.User
	usernames map[string]*entity.Username
	tokens    map[uuid.UUID]*entity.PasswordResetToken
	sessions  map[uuid.UUID]*entity.ChatSession
	messages  map[uuid.UUID]*entity.ChatMessage

	// failMessageCreates makes the next N message inserts fail.
	failMessageCreates int
	commits            int

	// vanishingSession is removed once vanishAfter more messages were stored.
	vanishingSession uuid.UUID
	vanishAfter      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[uuid.UUID]*entity.User{},
		usernames: map[string]*entity.Username{},
		tokens:    map[uuid.UUID]*entity.PasswordResetToken{},
		sessions:  map[uuid.UUID]*entity.ChatSession{},
		messages:  map[uuid.UUID]*entity.ChatMessage{},
	}
}

func (s *fakeStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: s}
}

func (s *fakeStore) failNextMessageCreates(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMessageCreates = n
}

// deleteSessionAfterMessages drops the session row right after the next n
// message inserts, as a concurrent delete would.
func (s *fakeStore) deleteSessionAfterMessages(id uuid.UUID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vanishingSession = id
	s.vanishAfter = n
}

func (s *fakeStore) messageCount(sessionID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.ChatSessionId == sessionID {
			n++
		}
	}
	return n
}

func (s *fakeStore) session(id uuid.UUID) *entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		cp := *sess
		return &cp
	}
	return nil
}

func (s *fakeStore) seedSession(userID uuid.UUID) *entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	sess := &entity.ChatSession{Id: uuid.New(), UserId: userID, Title: chatsession.DefaultTitle, CreatedAt: now, UpdatedAt: now}
	s.sessions[sess.Id] = sess
	cp := *sess
	return &cp
}

type fakeUoW struct {
	store *fakeStore
	inTx  bool
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	u.inTx = true
	return nil
}

func (u *fakeUoW) Commit() error {
	u.store.mu.Lock()
	u.store.commits++
	u.store.mu.Unlock()
	u.inTx = false
	return nil
}

func (u *fakeUoW) Rollback() error {
	u.inTx = false
	return nil
}

func (u *fakeUoW) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUoW) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}

func (u *fakeUoW) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}

// Users

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *user
	r.store.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if matchUser(u, specs) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != strings.ToLower(strings.TrimSpace(s.Email)) {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[userId]; ok {
		u.PasswordHash = &hash
	}
	return nil
}

func (r *fakeUserRepo) CreateUsername(ctx context.Context, username *entity.Username) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.usernames[username.Lower]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	cp := *username
	r.store.usernames[username.Lower] = &cp
	return nil
}

func (r *fakeUserRepo) FindUsername(ctx context.Context, lower string) (*entity.Username, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.usernames[lower]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *token
	r.store.tokens[token.Id] = &cp
	return nil
}

func (r *fakeUserRepo) FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
outer:
	for _, t := range r.store.tokens {
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByTokenHash:
				if t.TokenHash != s.Hash {
					continue outer
				}
			case specification.UnusedToken:
				if t.Used {
					continue outer
				}
			}
		}
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) MarkTokenUsed(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if t, ok := r.store.tokens[id]; ok {
		t.Used = true
	}
	return nil
}

// Sessions

type fakeSessionRepo struct{ store *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

// Update leaves a deleted row deleted.
func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sessions[session.Id]; !ok {
		return nil
	}
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatSession
outer:
	for _, sess := range r.store.sessions {
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				if sess.Id != s.ID {
					continue outer
				}
			case specification.UserOwnedBy:
				if sess.UserId != s.UserID {
					continue outer
				}
			}
		}
		cp := *sess
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			out = page(out, p)
		}
	}
	return out, nil
}

func page[T any](items []T, p specification.Pagination) []T {
	if p.Offset >= len(items) {
		return nil
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

// Messages

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failMessageCreates > 0 {
		r.store.failMessageCreates--
		return errDBDown
	}
	if _, ok := r.store.messages[message.Id]; ok {
		return nil
	}
	cp := *message
	r.store.messages[message.Id] = &cp
	if r.store.vanishAfter > 0 && message.ChatSessionId == r.store.vanishingSession {
		r.store.vanishAfter--
		if r.store.vanishAfter == 0 {
			delete(r.store.sessions, message.ChatSessionId)
		}
	}
	return nil
}

func (r *fakeMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, m := range r.store.messages {
		if m.ChatSessionId == sessionId {
			delete(r.store.messages, id)
		}
	}
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatMessage
outer:
	for _, m := range r.store.messages {
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				if m.Id != s.ID {
					continue outer
				}
			case specification.ByChatSessionID:
				if m.ChatSessionId != s.ChatSessionID {
					continue outer
				}
			case specification.ByRole:
				if m.Role != s.Role {
					continue outer
				}
			}
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// Collaborators

type feedCall struct {
	UserID    uuid.UUID
	EventType string
	Data      interface{}
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []feedCall
}

func (n *fakeNotifier) Notify(userID uuid.UUID, eventType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, feedCall{UserID: userID, EventType: eventType, Data: data})
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.calls))
	for _, c := range n.calls {
		out = append(out, c.EventType)
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fakeScheduler struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (s *fakeScheduler) Schedule(ctx context.Context, messageID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, messageID)
	return nil
}

// fakeLLM answers Generate calls in order from generations and Chat calls
// with chat. A non-nil err fails every call.
type fakeLLM struct {
	mu          sync.Mutex
	generations []string
	chat        string
	err         error
	chatErr     error
	prompts     []string
	chatCalls   int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.generations) == 0 {
		return "", nil
	}
	out := f.generations[0]
	f.generations = f.generations[1:]
	return out, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatCalls++
	if f.err != nil {
		return "", f.err
	}
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.chat, nil
}

type sentEmail struct {
	To    string
	Token string
}

type fakeMailer struct {
	sent chan sentEmail
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentEmail, 4)}
}

func (m *fakeMailer) SendResetToken(toEmail, token string, expiresIn time.Duration) error {
	m.sent <- sentEmail{To: toEmail, Token: token}
	return nil
}
