package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestBeginComplete(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := New(DefaultTTL, clock.Now)

	s.Begin(7, 42)
	assert.True(t, s.Active(7))

	alertID, ok := s.Complete(7)
	assert.True(t, ok)
	assert.Equal(t, int64(42), alertID)

	// completing consumed the session
	_, ok = s.Complete(7)
	assert.False(t, ok)
}

func TestCompleteWithoutBegin(t *testing.T) {
	s := New(DefaultTTL, nil)
	_, ok := s.Complete(7)
	assert.False(t, ok)
}

func TestExpiredSessionIsDiscarded(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := New(DefaultTTL, clock.Now)

	s.Begin(7, 42)
	clock.Advance(DefaultTTL)

	assert.False(t, s.Active(7))
	_, ok := s.Complete(7)
	assert.False(t, ok)
}

func TestBeginReplacesPendingEdit(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	s := New(DefaultTTL, clock.Now)

	s.Begin(7, 42)
	s.Begin(7, 99)

	alertID, ok := s.Complete(7)
	assert.True(t, ok)
	assert.Equal(t, int64(99), alertID)
}

func TestCancel(t *testing.T) {
	s := New(DefaultTTL, nil)
	s.Begin(7, 42)
	s.Cancel(7)

	_, ok := s.Complete(7)
	assert.False(t, ok)
}

func TestSessionsAreKeyedByUser(t *testing.T) {
	s := New(DefaultTTL, nil)
	s.Begin(1, 10)
	s.Begin(2, 20)

	alertID, ok := s.Complete(1)
	assert.True(t, ok)
	assert.Equal(t, int64(10), alertID)

	alertID, ok = s.Complete(2)
	assert.True(t, ok)
	assert.Equal(t, int64(20), alertID)
}
