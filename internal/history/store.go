// Package history holds per-(chat, user) conversation context in memory.
// Histories live for the process lifetime only and are never persisted.
package history

import (
	"sync"

	"lenabot/internal/model"
)

// MaxTurns caps each history at 5 exchanges; oldest turns are dropped first.
const MaxTurns = 10

type Key struct {
	ChatID int64
	UserID int64
}

type Store struct {
	mu            sync.RWMutex
	conversations map[Key][]model.Turn
}

func New() *Store {
	return &Store{
		conversations: make(map[Key][]model.Turn),
	}
}

func (s *Store) Append(chatID, userID int64, turns ...model.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ChatID: chatID, UserID: userID}
	h := append(s.conversations[key], turns...)
	if len(h) > MaxTurns {
		h = h[len(h)-MaxTurns:]
	}
	s.conversations[key] = h
}

// Get returns a copy of the history; callers may not mutate the store
// through the returned slice.
func (s *Store) Get(chatID, userID int64) []model.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.conversations[Key{ChatID: chatID, UserID: userID}]
	if len(h) == 0 {
		return nil
	}
	out := make([]model.Turn, len(h))
	copy(out, h)
	return out
}

// Clear drops the history for the pair and reports whether one existed.
func (s *Store) Clear(chatID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ChatID: chatID, UserID: userID}
	_, ok := s.conversations[key]
	delete(s.conversations, key)
	return ok
}

// HasUser reports whether the user has a history in any chat.
func (s *Store) HasUser(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key := range s.conversations {
		if key.UserID == userID {
			return true
		}
	}
	return false
}
