package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"customer_insight_chatbot/pkg"
)

// SessionTTL is the default idle lifetime of a conversation (40 minutes)
const SessionTTL = 40 * time.Minute

// ErrSessionNotFound is returned for unknown or expired conversations
var ErrSessionNotFound = errors.New("session not found")

// SessionManager persists one session per conversation id
type SessionManager interface {
	GetSession(ctx context.Context, conversationID string) (*pkg.Session, error)
	SaveSession(ctx context.Context, session *pkg.Session) error
	DeleteSession(ctx context.Context, conversationID string) error
	Close() error
}

// MemorySessionManager is an in-process implementation. Sessions idle for
// longer than the TTL are dropped on access.
type MemorySessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*pkg.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionManager creates a new in-memory session manager
func NewMemorySessionManager(ttl time.Duration) *MemorySessionManager {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &MemorySessionManager{
		sessions: make(map[string]*pkg.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetSession returns a copy of the stored session
func (m *MemorySessionManager) GetSession(ctx context.Context, conversationID string) (*pkg.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[conversationID]
	m.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrSessionNotFound)
	}

	if m.expired(session) {
		m.mu.Lock()
		if current, ok := m.sessions[conversationID]; ok && m.expired(current) {
			delete(m.sessions, conversationID)
		}
		m.mu.Unlock()
		return nil, fmt.Errorf("conversation %s expired: %w", conversationID, ErrSessionNotFound)
	}

	return cloneSession(session), nil
}

func (m *MemorySessionManager) expired(session *pkg.Session) bool {
	idle := m.now().Unix() - session.UpdatedAt
	return idle > int64(m.ttl.Seconds())
}

// SaveSession saves or updates a session
func (m *MemorySessionManager) SaveSession(ctx context.Context, session *pkg.Session) error {
	if err := ValidateSession(session); err != nil {
		return err
	}
	touch(session, m.now())

	m.mu.Lock()
	m.sessions[session.ConversationID] = cloneSession(session)
	m.mu.Unlock()
	return nil
}

// DeleteSession removes a session
func (m *MemorySessionManager) DeleteSession(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	delete(m.sessions, conversationID)
	m.mu.Unlock()
	return nil
}

// Close releases nothing; it exists to satisfy SessionManager
func (m *MemorySessionManager) Close() error {
	return nil
}

// NewSession creates an empty session for a conversation
func NewSession(conversationID string) *pkg.Session {
	return &pkg.Session{
		ConversationID: conversationID,
		Memory:         pkg.ResetMemory(),
		Messages:       []pkg.ConversationMessage{},
	}
}

// TrimHistory keeps only the most recent maxMessages messages
func TrimHistory(messages []pkg.ConversationMessage, maxMessages int) []pkg.ConversationMessage {
	if maxMessages <= 0 || len(messages) <= maxMessages {
		return messages
	}
	return slices.Clone(messages[len(messages)-maxMessages:])
}

// ValidateSession checks if a session is valid
func ValidateSession(session *pkg.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if session.ConversationID == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}

	for i, msg := range session.Messages {
		switch msg.Role {
		case "user", "assistant":
		default:
			return fmt.Errorf("message %d has invalid role: %s", i, msg.Role)
		}
	}
	return nil
}

func touch(session *pkg.Session, now time.Time) {
	if session.CreatedAt == 0 {
		session.CreatedAt = now.Unix()
	}
	session.UpdatedAt = now.Unix()
}

func cloneSession(s *pkg.Session) *pkg.Session {
	c := *s
	c.Messages = slices.Clone(s.Messages)
	if s.Memory.LastCluster != nil {
		id := *s.Memory.LastCluster
		c.Memory.LastCluster = &id
	}
	return &c
}
