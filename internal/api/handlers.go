package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/livix/roommates/internal/auth"
	"github.com/livix/roommates/internal/chatstore"
	"github.com/livix/roommates/internal/compat"
	"github.com/livix/roommates/internal/core"
	"github.com/livix/roommates/internal/logger"
	"github.com/livix/roommates/internal/preferences"
	"github.com/livix/roommates/internal/realtime"
)

type contextKey string

const profileIDKey contextKey = "profileID"

type APIHandler struct {
	chats     *core.ChatService
	matches   *core.MatchService
	prefs     *preferences.Store
	hub       *realtime.Hub
	jwtSecret string
	log       *logger.Logger
}

func NewAPIHandler(chats *core.ChatService, matches *core.MatchService, prefs *preferences.Store, hub *realtime.Hub, jwtSecret string, log *logger.Logger) *APIHandler {
	return &APIHandler{
		chats:     chats,
		matches:   matches,
		prefs:     prefs,
		hub:       hub,
		jwtSecret: jwtSecret,
		log:       log.With("component", "APIHandler"),
	}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		profileID, err := auth.ValidateJWT(tokenString, h.jwtSecret)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), profileIDKey, profileID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func profileID(r *http.Request) string {
	id, _ := r.Context().Value(profileIDKey).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chats.ListConversations(profileID(r)))
}

func (h *APIHandler) UnreadHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.chats.Unread(profileID(r)))
}

func (h *APIHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "participantID")
	writeJSON(w, http.StatusOK, h.chats.Messages(profileID(r), participantID))
}

type PostMessageRequest struct {
	Text   string                     `json:"text"`
	FromMe *bool                      `json:"from_me,omitempty"`
	Type   chatstore.ConversationType `json:"type,omitempty"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	participantID := chi.URLParam(r, "participantID")

	var req PostMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type != "" && !req.Type.Valid() {
		http.Error(w, "Unknown conversation type", http.StatusBadRequest)
		return
	}
	fromMe := true
	if req.FromMe != nil {
		fromMe = *req.FromMe
	}

	msg, err := h.chats.SendMessage(me, participantID, req.Text, fromMe, req.Type)
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("Failed to post message", "profileID", me, "participantID", participantID, "error", err)
		http.Error(w, "Failed to post message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *APIHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	h.chats.MarkAsRead(profileID(r), chi.URLParam(r, "participantID"))
	w.WriteHeader(http.StatusNoContent)
}

type EnsureConversationRequest struct {
	Type chatstore.ConversationType `json:"type"`
}

func (h *APIHandler) EnsureConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req EnsureConversationRequest
	if r.Body != http.NoBody {
		if !decodeBody(w, r, &req) {
			return
		}
	}
	if req.Type != "" && !req.Type.Valid() {
		http.Error(w, "Unknown conversation type", http.StatusBadRequest)
		return
	}
	me := profileID(r)
	participantID := chi.URLParam(r, "participantID")
	h.chats.EnsureConversation(me, participantID, req.Type)

	conv := h.chats.ListConversations(me)[participantID]
	writeJSON(w, http.StatusOK, conv)
}

func (h *APIHandler) SeedHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	h.chats.SeedDemo(me)
	writeJSON(w, http.StatusOK, h.chats.ListConversations(me))
}

// EventsHandler streams conversation change events for the caller's profile.
func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	client := h.hub.NewClient(me)
	h.hub.AddChannel(client, realtime.ConversationsChannel(me))
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(w, r, client)
}

func (h *APIHandler) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	vec, found, err := h.prefs.Get(me)
	if err != nil {
		h.log.Error("Failed to get preferences", "profileID", me, "error", err)
		http.Error(w, "Failed to get preferences", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Preferences not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, vec)
}

func (h *APIHandler) PutPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	var vec compat.PreferenceVector
	if !decodeBody(w, r, &vec) {
		return
	}
	saved, err := h.prefs.Save(me, vec)
	if err != nil {
		if errors.Is(err, preferences.ErrInvalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("Failed to save preferences", "profileID", me, "error", err)
		http.Error(w, "Failed to save preferences", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *APIHandler) DeletePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	if err := h.prefs.Reset(me); err != nil {
		h.log.Error("Failed to reset preferences", "profileID", me, "error", err)
		http.Error(w, "Failed to reset preferences", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) CompatibilityHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	other := chi.URLParam(r, "userID")
	res, err := h.matches.Compatibility(me, other)
	if err != nil {
		h.log.Error("Failed to compute compatibility", "profileID", me, "other", other, "error", err)
		http.Error(w, "Failed to compute compatibility", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type RankRequest struct {
	IDs   []string `json:"ids"`
	Limit int      `json:"limit,omitempty"`
}

func (h *APIHandler) RankHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	var req RankRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ranked, err := h.matches.RankCandidates(me, req.IDs, req.Limit)
	if err != nil {
		h.log.Error("Failed to rank candidates", "profileID", me, "error", err)
		http.Error(w, "Failed to rank candidates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

type LifeGraphRequest struct {
	A compat.LifeGraph `json:"a"`
	B compat.LifeGraph `json:"b"`
}

func (h *APIHandler) LifeGraphHandler(w http.ResponseWriter, r *http.Request) {
	var req LifeGraphRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"score": compat.LifeGraphScore(req.A, req.B)})
}

func (h *APIHandler) LikeHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	other := chi.URLParam(r, "userID")
	matched, err := h.matches.LikeProfile(me, other)
	if err != nil {
		if errors.Is(err, core.ErrSelfLike) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("Failed to like profile", "profileID", me, "other", other, "error", err)
		http.Error(w, "Failed to like profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"matched": matched})
}

func (h *APIHandler) UnlikeHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	other := chi.URLParam(r, "userID")
	removed, err := h.matches.UnlikeProfile(me, other)
	if err != nil {
		h.log.Error("Failed to unlike profile", "profileID", me, "other", other, "error", err)
		http.Error(w, "Failed to unlike profile", http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "Like not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) MatchesHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	matches, err := h.matches.Matches(me)
	if err != nil {
		h.log.Error("Failed to list matches", "profileID", me, "error", err)
		http.Error(w, "Failed to list matches", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *APIHandler) LikesHandler(w http.ResponseWriter, r *http.Request) {
	me := profileID(r)
	likes, err := h.matches.Likes(me)
	if err != nil {
		h.log.Error("Failed to list likes", "profileID", me, "error", err)
		http.Error(w, "Failed to list likes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}
