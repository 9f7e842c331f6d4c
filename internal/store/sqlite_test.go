package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteKeyValue(t *testing.T) {
	s := newTestSQLite(t)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v1"))
	require.NoError(t, s.Set("k", "v2"))

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete("k"))
	_, ok, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileQuota(t *testing.T) {
	backends := map[string]Storage{
		"sqlite": newTestSQLite(t),
		"memory": NewMemoryStorage(),
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			profiles := NewProfiles(backend, 64)
			alice := profiles.For("alice")
			carol := profiles.For("carol")
			// "profile:alice:" is 14 bytes, so each key costs 15 plus its value.

			require.NoError(t, alice.Set("a", "12345"))
			// Overwriting the same key only counts the new value.
			require.NoError(t, alice.Set("a", "1234567890"))
			require.NoError(t, alice.Set("b", "1234567890"))
			assert.ErrorIs(t, alice.Set("c", "1234567890"), ErrQuotaExceeded)

			// Alice being full does not stop carol.
			require.NoError(t, carol.Set("a", "1234567890"))
			require.NoError(t, carol.Set("b", "1234567890"))

			v, _, err := alice.Get("a")
			require.NoError(t, err)
			assert.Equal(t, "1234567890", v)

			require.NoError(t, alice.Delete("b"))
			require.NoError(t, alice.Set("c", "1234567890"))
		})
	}
}

func TestProfileQuotaDisabled(t *testing.T) {
	alice := NewProfiles(NewMemoryStorage(), 0).For("alice")
	require.NoError(t, alice.Set("big", string(make([]byte, 1<<16))))
}

func TestSQLiteLikesAndMatches(t *testing.T) {
	s := newTestSQLite(t)

	require.NoError(t, s.CreateLike("ana", "bea"))
	require.NoError(t, s.CreateLike("ana", "bea")) // idempotent
	require.NoError(t, s.CreateLike("ana", "carla"))

	matches, err := s.GetMatchesByUserID("ana")
	require.NoError(t, err)
	assert.Empty(t, matches)

	require.NoError(t, s.CreateLike("bea", "ana"))

	matches, err = s.GetMatchesByUserID("ana")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ana", matches[0].User1ID)
	assert.Equal(t, "bea", matches[0].User2ID)
	assert.False(t, matches[0].MatchedAt.IsZero())

	matches, err = s.GetMatchesByUserID("bea")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ana", matches[0].User2ID)

	likes, err := s.GetLikesByLiker("ana")
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.ElementsMatch(t, []string{"bea", "carla"}, []string{likes[0].LikedID, likes[1].LikedID})
	assert.Equal(t, "ana", likes[0].LikerID)

	removed, err := s.DeleteLike("ana", "bea")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.DeleteLike("ana", "bea")
	require.NoError(t, err)
	assert.False(t, removed)

	has, err := s.HasLike("bea", "ana")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestNamespaced(t *testing.T) {
	m := NewMemoryStorage()
	a := Namespaced(m, ProfileNamespace("a"))
	b := Namespaced(m, ProfileNamespace("b"))

	require.NoError(t, a.Set("key", "from-a"))
	_, ok, err := b.Get("key")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, ok, err := m.Get("profile:a:key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-a", raw)

	// Escaped ids keep "a:b" from landing under profile "a".
	assert.Equal(t, "profile:a%3Ab:", ProfileNamespace("a:b"))
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r, err := NewRedisStorage(addr, "livix-test:")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Set("k", "v"))
	v, ok, err := r.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	require.NoError(t, r.Delete("k"))
	_, ok, err = r.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
