package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestShowAndExpire(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSink(WithClock(clock.now))

	_, ok := s.Current()
	assert.False(t, ok)

	s.Show(Success, "Saved", "3 lines")
	n, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, Success, n.Kind)
	assert.Equal(t, "3 lines", n.Message)

	clock.advance(DefaultTimeout - time.Millisecond)
	_, ok = s.Current()
	assert.True(t, ok, "still visible just before timeout")

	clock.advance(time.Millisecond)
	_, ok = s.Current()
	assert.False(t, ok, "expired at timeout")
}

func TestNewNotificationSupersedes(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewSink(WithClock(clock.now), WithTimeout(time.Second))

	s.Show(Warning, "Duplicate", "already added")
	clock.advance(900 * time.Millisecond)
	s.Show(Error, "Load failed", "boom")

	n, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, Error, n.Kind)

	// The replacement gets its own full timeout.
	clock.advance(900 * time.Millisecond)
	_, ok = s.Current()
	assert.True(t, ok)
}

func TestDismiss(t *testing.T) {
	s := NewSink()
	s.Show(Success, "ok", "")
	s.Dismiss()
	_, ok := s.Current()
	assert.False(t, ok)
}
