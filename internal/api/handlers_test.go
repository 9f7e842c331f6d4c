package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livix/roommates/internal/auth"
	"github.com/livix/roommates/internal/chatstore"
	"github.com/livix/roommates/internal/compat"
	"github.com/livix/roommates/internal/core"
	"github.com/livix/roommates/internal/logger"
	"github.com/livix/roommates/internal/preferences"
	"github.com/livix/roommates/internal/realtime"
	"github.com/livix/roommates/internal/store"
)

const testSecret = "handler-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.NewNop()
	hub := realtime.NewHub(log)
	profiles := store.NewProfiles(db, 0)
	chats := core.NewChatService(profiles, hub, false, log)
	prefs := preferences.NewStore(profiles)
	matches := core.NewMatchService(db, prefs, compat.NewScorer(compat.DefaultWeights()), chats, log)
	return NewRouter(NewAPIHandler(chats, matches, prefs, hub, testSecret, log))
}

func do(t *testing.T, h http.Handler, method, path, profile string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if profile != "" {
		token, err := auth.GenerateJWT(profile, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/conversations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConversationFlow(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/conversations/bea/messages", "ana", map[string]any{"text": "hola", "from_me": false})
	require.Equal(t, http.StatusCreated, rec.Code)
	var msg chatstore.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "hola", msg.Text)
	assert.False(t, msg.FromMe)

	rec = do(t, h, http.MethodGet, "/api/conversations/unread", "ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread_conversations":1,"active_conversations":1}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/conversations/bea/read", "ana", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/conversations", "ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all map[string]chatstore.StoredConversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Contains(t, all, "bea")
	assert.Equal(t, 0, all["bea"].UnreadCount)

	rec = do(t, h, http.MethodGet, "/api/conversations/nobody/messages", "ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/conversations/bea/messages", "ana", map[string]any{"text": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/conversations/landlord-1", "ana", map[string]any{"type": "landlord"})
	require.Equal(t, http.StatusOK, rec.Code)
	var conv chatstore.StoredConversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, chatstore.TypeLandlord, conv.Type)

	rec = do(t, h, http.MethodPut, "/api/conversations/x", "ana", map[string]any{"type": "tenant"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/conversations/seed", "ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Contains(t, all, "landlord-carlos-lopez")
}

func TestPreferencesAndCompatibility(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/preferences", "ana", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	bad := preferences.Defaults()
	bad.BudgetMin, bad.BudgetMax = 700, 300
	rec = do(t, h, http.MethodPut, "/api/preferences", "ana", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/preferences", "ana", preferences.Defaults())
	require.Equal(t, http.StatusOK, rec.Code)
	var saved compat.PreferenceVector
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.NotNil(t, saved.CompletedAt)

	rec = do(t, h, http.MethodGet, "/api/compatibility/bea", "ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res core.CompatibilityResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 90, res.Score)
	assert.Len(t, res.Tags, 3)

	rec = do(t, h, http.MethodPost, "/api/compatibility/rank", "ana", map[string]any{"ids": []string{"bea", "carla"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var ranked []compat.Ranked
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
	assert.Len(t, ranked, 2)

	rec = do(t, h, http.MethodPost, "/api/compatibility/lifegraph", "ana", map[string]any{
		"a": compat.LifeGraph{Cleanliness: 3, Party: 3, Study: 3, Visits: 3, Noise: 3},
		"b": compat.LifeGraph{Cleanliness: 3, Party: 3, Study: 3, Visits: 3, Noise: 3},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"score":100}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/preferences", "ana", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/preferences", "ana", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikeFlow(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/roommates/ana/like", "ana", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/roommates/bea/like", "ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"matched":false}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/roommates/ana/like", "bea", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"matched":true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/roommates/matches", "ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var matches []store.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	assert.Len(t, matches, 1)

	rec = do(t, h, http.MethodGet, "/api/roommates/likes", "ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var likes []store.Like
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &likes))
	require.Len(t, likes, 1)
	assert.Equal(t, "bea", likes[0].LikedID)

	rec = do(t, h, http.MethodGet, "/api/conversations", "bea", nil)
	var all map[string]chatstore.StoredConversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Contains(t, all, "ana")

	rec = do(t, h, http.MethodDelete, "/api/roommates/bea/like", "ana", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/roommates/bea/like", "ana", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
