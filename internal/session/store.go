// Package session provides per-conversation message storage.
//
// The store owns the ordered message log for every session key. The
// turn orchestrator is the sole writer; appends are strictly ordered
// and nothing is ever edited or removed. Conversations grow without
// bound unless a front end clears them explicitly.
package session

import (
	"sync"
	"time"

	"github.com/dvila/faro/internal/llm"
)

// Conversation holds the state of a single conversation.
type Conversation struct {
	Key       string        `json:"key"`
	Messages  []llm.Message `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store manages conversations keyed by session key.
type Store struct {
	mu            sync.Mutex
	conversations map[string]*entry
}

type entry struct {
	turnMu sync.Mutex // serializes whole turns for one key
	conv   Conversation
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*entry),
	}
}

// get returns the entry for key, creating it on first use.
func (s *Store) get(key string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.conversations[key]
	if !ok {
		e = &entry{
			conv: Conversation{
				Key:       key,
				CreatedAt: time.Now(),
			},
		}
		s.conversations[key] = e
	}
	return e
}

// LockTurn acquires the per-key turn lock and returns its release
// function. Front ends that may deliver concurrent updates for one
// chat hold this for the whole turn so appends from two turns never
// interleave. Turns for different keys proceed in parallel.
func (s *Store) LockTurn(key string) func() {
	e := s.get(key)
	e.turnMu.Lock()
	return e.turnMu.Unlock
}

// Append adds a message to the end of the conversation.
func (s *Store) Append(key string, msg llm.Message) {
	e := s.get(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.conv.Messages = append(e.conv.Messages, msg)
	e.conv.UpdatedAt = time.Now()
}

// Messages returns a copy of the conversation's message log in order.
// Returns an empty slice for unknown keys.
func (s *Store) Messages(key string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.conversations[key]
	if !ok {
		return []llm.Message{}
	}
	msgs := make([]llm.Message, len(e.conv.Messages))
	copy(msgs, e.conv.Messages)
	return msgs
}

// Len returns the number of messages stored for key.
func (s *Store) Len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.conversations[key]
	if !ok {
		return 0
	}
	return len(e.conv.Messages)
}

// Clear removes the conversation for key.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, key)
}

// Stats returns store-wide counters for diagnostics.
func (s *Store) Stats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, e := range s.conversations {
		total += len(e.conv.Messages)
	}
	return map[string]any{
		"conversations":  len(s.conversations),
		"total_messages": total,
	}
}
