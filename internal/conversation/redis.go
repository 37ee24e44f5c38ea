// Package conversation persists session chat histories in a TTL-backed
// cache. A conversation lives under "chat:history:<sessionID>", expires
// after 24 hours of inactivity, and is bounded to the newest maxHistory
// messages (FIFO eviction, oldest turns drop first).
//
// Writes are last-write-wins with no locking: a session is expected to be
// driven by one browser tab at a time, and two concurrent writers racing on
// the same session may lose an update. That is a documented limitation, not
// an invariant this package defends.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"siteassist/internal/chat"
)

const (
	historyKeyPrefix = "chat:history:"

	// historyTTL is refreshed on every write, so an active session never
	// expires mid-conversation.
	historyTTL = 24 * time.Hour
)

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}

// RedisStore implements chat.HistoryStore on a redis key-value cache.
type RedisStore struct {
	client     *redis.Client
	maxHistory int
}

// NewRedisStore creates a RedisStore bounded to maxHistory messages.
func NewRedisStore(client *redis.Client, maxHistory int) *RedisStore {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &RedisStore{client: client, maxHistory: maxHistory}
}

// Load fetches the conversation for sessionID. A missing or expired key,
// or a payload that no longer decodes, yields a fresh empty conversation
// rather than an error the caller would have to special-case.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*chat.Conversation, error) {
	raw, err := s.client.Get(ctx, historyKey(sessionID)).Result()
	if err == redis.Nil {
		return &chat.Conversation{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("conversation: load %s: %w", sessionID, err)
	}

	var conv chat.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return &chat.Conversation{SessionID: sessionID}, nil
	}
	conv.SessionID = sessionID
	return &conv, nil
}

// Append adds msgs to the conversation, truncates to the newest maxHistory
// entries and persists with a refreshed TTL.
func (s *RedisStore) Append(ctx context.Context, conv *chat.Conversation, msgs ...chat.Message) error {
	appendAndTrim(conv, s.maxHistory, msgs)

	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("conversation: encode %s: %w", conv.SessionID, err)
	}
	if err := s.client.Set(ctx, historyKey(conv.SessionID), raw, historyTTL).Err(); err != nil {
		return fmt.Errorf("conversation: save %s: %w", conv.SessionID, err)
	}
	return nil
}

// Clear deletes the session's history immediately.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("conversation: clear %s: %w", sessionID, err)
	}
	return nil
}

// appendAndTrim applies the shared append semantics: messages that are
// empty after trimming are dropped, then the history is cut down to the
// newest max entries.
func appendAndTrim(conv *chat.Conversation, max int, msgs []chat.Message) {
	for _, m := range msgs {
		if strings.TrimSpace(m.Text()) == "" {
			continue
		}
		conv.Messages = append(conv.Messages, m)
	}
	if len(conv.Messages) > max {
		conv.Messages = conv.Messages[len(conv.Messages)-max:]
	}
}
