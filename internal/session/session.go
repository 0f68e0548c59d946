// Package session holds short-lived edit conversations: a user picks an
// alert to edit, then supplies the new value in a follow-up message. The
// pending state lives in memory only; losing it on restart just means the
// user starts the edit again.
package session

import (
	"sync"
	"time"
)

// DefaultTTL is how long a started edit stays valid without completion
const DefaultTTL = 5 * time.Minute

// Clock lets tests control expiry
type Clock func() time.Time

type pendingEdit struct {
	alertID   int64
	startedAt time.Time
}

// Store tracks at most one pending edit per user
type Store struct {
	mu    sync.Mutex
	edits map[int64]pendingEdit
	ttl   time.Duration
	clock Clock
}

// New creates a session store with the given TTL. A nil clock uses
// time.Now.
func New(ttl time.Duration, clock Clock) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		edits: make(map[int64]pendingEdit),
		ttl:   ttl,
		clock: clock,
	}
}

// Begin records that the user is editing the given alert, replacing any
// previous pending edit
func (s *Store) Begin(userID, alertID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits[userID] = pendingEdit{alertID: alertID, startedAt: s.clock()}
}

// Complete returns the alert the user was editing and clears the session.
// An expired or absent session returns ok=false; either way nothing is
// left pending afterwards.
func (s *Store) Complete(userID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edit, ok := s.edits[userID]
	if !ok {
		return 0, false
	}
	delete(s.edits, userID)

	if s.clock().Sub(edit.startedAt) >= s.ttl {
		return 0, false
	}
	return edit.alertID, true
}

// Cancel discards any pending edit for the user
func (s *Store) Cancel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edits, userID)
}

// Active reports whether the user has a live pending edit
func (s *Store) Active(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	edit, ok := s.edits[userID]
	if !ok {
		return false
	}
	if s.clock().Sub(edit.startedAt) >= s.ttl {
		delete(s.edits, userID)
		return false
	}
	return true
}
