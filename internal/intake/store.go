package intake

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultMaxAge is how long an intake state may live before the janitor
// evicts it, measured from StartedAt.
const DefaultMaxAge = 24 * time.Hour

// Store keeps one intake state per conversation id. Different
// conversations never share an entry, but creation and eviction race, so
// the registry itself is lock guarded. States returned to callers are
// copies; all mutation happens inside the store.
type Store struct {
	mu     sync.RWMutex
	states map[string]*State
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		states: make(map[string]*State),
		now:    time.Now,
	}
}

// GetOrCreate returns a snapshot of the conversation's state, creating a
// fresh greeting-state entry on first access.
func (s *Store) GetOrCreate(conversationID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.getOrCreateLocked(conversationID)
}

func (s *Store) getOrCreateLocked(conversationID string) *State {
	st, ok := s.states[conversationID]
	if !ok {
		st = newState(conversationID, s.now())
		s.states[conversationID] = st
		log.Debug().Str("conversation_id", conversationID).Msg("intake state created")
	}
	return st
}

// Advance runs one turn of the conversation through the automaton and
// returns the resulting snapshot plus whether anything changed.
func (s *Store) Advance(conversationID, text string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(conversationID)
	changed := st.advance(text, s.now())
	return *st, changed
}

// Reset unconditionally replaces the conversation's state with a fresh one.
func (s *Store) Reset(conversationID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := newState(conversationID, s.now())
	s.states[conversationID] = st
	log.Info().Str("conversation_id", conversationID).Msg("intake state reset")
	return *st
}

// EvictOlderThan drops every state started before now-maxAge and returns
// how many were removed.
func (s *Store) EvictOlderThan(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, st := range s.states {
		if st.StartedAt.Before(cutoff) {
			delete(s.states, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// Janitor evicts stale states on a ticker until ctx is done. Run it in its
// own goroutine; eviction never happens inline with request handling.
func (s *Store) Janitor(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("intake janitor stopping")
			return
		case <-ticker.C:
			if n := s.EvictOlderThan(maxAge); n > 0 {
				log.Info().Int("evicted", n).Msg("intake janitor run complete")
			}
		}
	}
}
