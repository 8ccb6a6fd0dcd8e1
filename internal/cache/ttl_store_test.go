package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestTTLStore_SetGet(t *testing.T) {
	s := NewTTLStore[string, int](nil)
	s.Set("a", 1, 0)

	v, ok := s.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = s.Get("missing")
	require.False(t, ok)
}

func TestTTLStore_Expiry(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewTTLStore[string, int](clk.Now)

	s.Set("a", 1, time.Minute)
	v, ok := s.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	clk.Advance(2 * time.Minute)
	_, ok = s.Get("a")
	require.False(t, ok)
}

func TestTTLStore_NoTTLNeverExpires(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewTTLStore[string, string](clk.Now)

	s.Set("k", "v", 0)
	clk.Advance(1000 * time.Hour)
	v, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestTTLStore_Delete(t *testing.T) {
	s := NewTTLStore[string, int](nil)
	s.Set("a", 1, 0)
	s.Delete("a")
	_, ok := s.Get("a")
	require.False(t, ok)
}

func TestTTLStore_PurgeExpired(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewTTLStore[string, int](clk.Now)

	s.Set("short", 1, time.Second)
	s.Set("long", 2, time.Hour)
	clk.Advance(time.Minute)
	s.PurgeExpired()

	_, ok := s.Get("short")
	require.False(t, ok)
	v, ok := s.Get("long")
	require.True(t, ok)
	require.Equal(t, 2, v)
}
