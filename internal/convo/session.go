package convo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned when a chat has no flow in progress.
var ErrNoSession = errors.New("no active session")

// Session is the accumulating state of one flow in progress. Exactly one
// session exists per chat: starting a new flow replaces any previous one.
type Session struct {
	ID        string            `json:"id"`
	ChatID    int64             `json:"chat_id"`
	Flow      FlowKind          `json:"flow"`
	State     State             `json:"state"`
	Fields    map[string]string `json:"fields"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func newSession(chatID int64, flow FlowKind) *Session {
	return &Session{
		ID:     uuid.NewString(),
		ChatID: chatID,
		Flow:   flow,
		Fields: make(map[string]string),
	}
}

// Set stores a collected field value.
func (s *Session) Set(key, value string) { s.Fields[key] = value }

// Get returns a collected field value, empty when unset.
func (s *Session) Get(key string) string { return s.Fields[key] }

// Has reports whether a field has been collected.
func (s *Session) Has(key string) bool {
	_, ok := s.Fields[key]
	return ok
}

// Float returns a field parsed as float64, 0 when unset or malformed.
func (s *Session) Float(key string) float64 {
	f, _ := strconv.ParseFloat(s.Fields[key], 64)
	return f
}

// Int returns a field parsed as int, 0 when unset or malformed.
func (s *Session) Int(key string) int {
	n, _ := strconv.Atoi(s.Fields[key])
	return n
}

// SessionStore persists in-progress sessions keyed by chat id. Sessions
// expire after the store's TTL; every Put refreshes it.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, chatID int64) error
}

// MemorySessionStore is an in-process SessionStore used in tests and
// single-node deployments without Redis.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]*Session
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, sessions: make(map[int64]*Session)}
}

// Get returns the chat's session, expiring stale ones lazily.
func (m *MemorySessionStore) Get(ctx context.Context, chatID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return nil, ErrNoSession
	}
	if m.ttl > 0 && time.Since(s.UpdatedAt) > m.ttl {
		delete(m.sessions, chatID)
		return nil, ErrNoSession
	}
	return s, nil
}

// Put stores the session, refreshing its expiry.
func (m *MemorySessionStore) Put(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now()
	m.sessions[s.ChatID] = s
	return nil
}

// Delete discards the chat's session, if any.
func (m *MemorySessionStore) Delete(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}
