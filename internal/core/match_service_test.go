package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livix/roommates/internal/chatstore"
	"github.com/livix/roommates/internal/compat"
	"github.com/livix/roommates/internal/logger"
	"github.com/livix/roommates/internal/preferences"
	"github.com/livix/roommates/internal/store"
)

type matchFixture struct {
	svc   *MatchService
	chats *ChatService
	prefs *preferences.Store
}

func newMatchFixture(t *testing.T) matchFixture {
	t.Helper()
	db, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	profiles := store.NewProfiles(db, 0)
	chats := NewChatService(profiles, nil, false, logger.NewNop())
	prefs := preferences.NewStore(profiles)
	svc := NewMatchService(db, prefs, compat.NewScorer(compat.DefaultWeights()), chats, logger.NewNop())
	return matchFixture{svc: svc, chats: chats, prefs: prefs}
}

func TestLikeProfileOpensConversationsOnMatch(t *testing.T) {
	f := newMatchFixture(t)

	matched, err := f.svc.LikeProfile("ana", "bea")
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Empty(t, f.chats.ListConversations("ana"))

	matched, err = f.svc.LikeProfile("bea", "ana")
	require.NoError(t, err)
	assert.True(t, matched)

	anaConv, ok := f.chats.ListConversations("ana")["bea"]
	require.True(t, ok)
	assert.Equal(t, chatstore.TypeRoommate, anaConv.Type)
	_, ok = f.chats.ListConversations("bea")["ana"]
	assert.True(t, ok)

	matches, err := f.svc.Matches("ana")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "bea", matches[0].User2ID)
}

func TestLikeProfileKeepsExistingHistory(t *testing.T) {
	f := newMatchFixture(t)
	_, err := f.chats.SendMessage("ana", "bea", "hola", true, "")
	require.NoError(t, err)

	_, err = f.svc.LikeProfile("ana", "bea")
	require.NoError(t, err)
	_, err = f.svc.LikeProfile("bea", "ana")
	require.NoError(t, err)

	assert.Len(t, f.chats.Messages("ana", "bea"), 1)
}

func TestLikeProfileRejectsSelf(t *testing.T) {
	f := newMatchFixture(t)
	_, err := f.svc.LikeProfile("ana", "ana")
	assert.ErrorIs(t, err, ErrSelfLike)
}

func TestUnlikeProfile(t *testing.T) {
	f := newMatchFixture(t)
	_, err := f.svc.LikeProfile("ana", "bea")
	require.NoError(t, err)
	_, err = f.svc.LikeProfile("bea", "ana")
	require.NoError(t, err)

	likes, err := f.svc.Likes("ana")
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "bea", likes[0].LikedID)

	removed, err := f.svc.UnlikeProfile("ana", "bea")
	require.NoError(t, err)
	assert.True(t, removed)

	likes, err = f.svc.Likes("ana")
	require.NoError(t, err)
	assert.NotNil(t, likes)
	assert.Empty(t, likes)

	matches, err := f.svc.Matches("ana")
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestCompatibility(t *testing.T) {
	f := newMatchFixture(t)

	res, err := f.svc.Compatibility("ana", "bea")
	require.NoError(t, err)
	assert.Equal(t, compat.NeutralScore, res.Score)
	assert.False(t, res.HasPreferences)
	assert.Empty(t, res.Breakdown)
	assert.NotNil(t, res.Tags)
	assert.Empty(t, res.Tags)

	mine := preferences.Defaults()
	mine.Interests = []string{"Cine", "Gym"}
	_, err = f.prefs.Save("ana", mine)
	require.NoError(t, err)
	theirs := preferences.Defaults()
	theirs.Interests = []string{"gym"}
	_, err = f.prefs.Save("bea", theirs)
	require.NoError(t, err)

	res, err = f.svc.Compatibility("ana", "bea")
	require.NoError(t, err)
	assert.Equal(t, 92, res.Score)
	assert.True(t, res.HasPreferences)
	assert.Equal(t, []string{"Gym"}, res.SharedInterests)
	assert.Len(t, res.Breakdown, 9)

	var kinds []compat.TagKind
	for _, tag := range res.Tags {
		kinds = append(kinds, tag.Kind)
	}
	assert.Equal(t, []compat.TagKind{compat.TagBudgetFits, compat.TagSmokingMatches, compat.TagPetsMatch, compat.TagCommonInterests}, kinds)
}

func TestRankCandidates(t *testing.T) {
	f := newMatchFixture(t)
	_, err := f.prefs.Save("ana", preferences.Defaults())
	require.NoError(t, err)

	far := preferences.Defaults()
	far.SleepSchedule = compat.SleepNight
	far.SmokingAllowed = true
	_, err = f.prefs.Save("carla", far)
	require.NoError(t, err)

	ranked, err := f.svc.RankCandidates("ana", []string{"carla", "ana", "bea"}, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "bea", ranked[0].ID)
	assert.Equal(t, 90, ranked[0].Score)
	assert.Equal(t, "carla", ranked[1].ID)
	assert.Less(t, ranked[1].Score, ranked[0].Score)
}
