package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"siteassist/internal/chat"
)

// DefaultMaxHistory bounds conversations when no limit is configured.
const DefaultMaxHistory = 10

// MemoryStore is an in-process chat.HistoryStore with the same TTL and
// truncation semantics as RedisStore. It backs tests and redis-less
// deployments; histories are lost on restart, which the 24h TTL already
// permits.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxHistory int
	now        func() time.Time // stubbed in tests
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore bounded to maxHistory messages.
func NewMemoryStore(maxHistory int) *MemoryStore {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// Load returns the stored conversation, or an empty one when the session is
// unknown or its entry has expired.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (*chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.entries, sessionID)
		return &chat.Conversation{SessionID: sessionID}, nil
	}

	var conv chat.Conversation
	if err := json.Unmarshal(e.raw, &conv); err != nil {
		return &chat.Conversation{SessionID: sessionID}, nil
	}
	conv.SessionID = sessionID
	return &conv, nil
}

// Append adds msgs, truncates to the newest maxHistory entries and persists
// with a refreshed TTL.
func (s *MemoryStore) Append(_ context.Context, conv *chat.Conversation, msgs ...chat.Message) error {
	appendAndTrim(conv, s.maxHistory, msgs)

	raw, err := json.Marshal(conv)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[conv.SessionID] = memoryEntry{raw: raw, expiresAt: s.now().Add(historyTTL)}
	return nil
}

// Clear deletes the session's history immediately.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
