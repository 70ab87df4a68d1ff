package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListCache(t *testing.T) {
	t.Parallel()

	t.Run("miss on empty cache", func(t *testing.T) {
		t.Parallel()
		c := newListCache(time.Minute)
		_, ok := c.get(1)
		require.False(t, ok)
	})

	t.Run("hit within the ttl window", func(t *testing.T) {
		t.Parallel()
		c := newListCache(time.Minute)
		c.set(1, []Template{{ID: 10, Name: "welcome"}})

		got, ok := c.get(1)
		require.True(t, ok)
		require.Len(t, got, 1)
		require.Equal(t, "welcome", got[0].Name)
	})

	t.Run("entries are per owner", func(t *testing.T) {
		t.Parallel()
		c := newListCache(time.Minute)
		c.set(1, []Template{{ID: 10}})

		_, ok := c.get(2)
		require.False(t, ok)
	})

	t.Run("expired entry is dropped", func(t *testing.T) {
		t.Parallel()
		c := newListCache(time.Millisecond)
		c.set(1, []Template{{ID: 10}})

		time.Sleep(5 * time.Millisecond)
		_, ok := c.get(1)
		require.False(t, ok)
	})

	t.Run("invalidate drops only the target owner", func(t *testing.T) {
		t.Parallel()
		c := newListCache(time.Minute)
		c.set(1, []Template{{ID: 10}})
		c.set(2, []Template{{ID: 20}})

		c.invalidate(1)

		_, ok := c.get(1)
		require.False(t, ok)
		got, ok := c.get(2)
		require.True(t, ok)
		require.Equal(t, int64(20), got[0].ID)
	})

	t.Run("an empty list is a cacheable result", func(t *testing.T) {
		t.Parallel()
		c := newListCache(time.Minute)
		c.set(1, []Template{})

		got, ok := c.get(1)
		require.True(t, ok)
		require.Empty(t, got)
	})
}
