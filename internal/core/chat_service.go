package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/livix/roommates/internal/chatstore"
	"github.com/livix/roommates/internal/logger"
	"github.com/livix/roommates/internal/realtime"
	"github.com/livix/roommates/internal/store"
)

var ErrEmptyMessage = errors.New("message text cannot be empty")

const publishTimeout = 5 * time.Second

// UnreadSummary is published on every conversation change.
type UnreadSummary struct {
	UnreadConversations int `json:"unread_conversations"`
	ActiveConversations int `json:"active_conversations"`
}

type openStore struct {
	store       *chatstore.Store
	unsubscribe func()
	lastUsed    time.Time
}

// ChatService owns one conversation store per profile, each kept under the
// profile's storage namespace. Stores left unused are dropped by EvictIdle
// and reloaded from storage on the next request.
type ChatService struct {
	mu        sync.Mutex
	profiles  *store.Profiles
	publisher realtime.Publisher
	seedDemo  bool
	log       *logger.Logger
	stores    map[string]*openStore
	now       func() time.Time
}

func NewChatService(profiles *store.Profiles, publisher realtime.Publisher, seedDemo bool, log *logger.Logger) *ChatService {
	return &ChatService{
		profiles:  profiles,
		publisher: publisher,
		seedDemo:  seedDemo,
		log:       log.With("service", "ChatService"),
		stores:    make(map[string]*openStore),
		now:       time.Now,
	}
}

// Conversations returns profileID's store, opening it on first use.
func (s *ChatService) Conversations(profileID string) *chatstore.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if open, ok := s.stores[profileID]; ok {
		open.lastUsed = s.now()
		return open.store
	}

	cs := chatstore.New(
		s.profiles.For(profileID),
		chatstore.WithLogger(s.log.With("profileID", profileID)),
	)
	if s.seedDemo {
		cs.SeedLandlordConversations()
	}
	s.stores[profileID] = &openStore{
		store:       cs,
		unsubscribe: cs.Subscribe(func() { s.publishChange(profileID, cs) }),
		lastUsed:    s.now(),
	}
	return cs
}

// EvictIdle drops stores not used for longer than maxIdle and returns how
// many were dropped. Changes a store could not persist are lost with it.
func (s *ChatService) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	evicted := 0
	for id, open := range s.stores {
		if open.lastUsed.Before(cutoff) {
			open.unsubscribe()
			delete(s.stores, id)
			evicted++
		}
	}
	return evicted
}

// OpenStores reports how many profile stores are held in memory.
func (s *ChatService) OpenStores() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (s *ChatService) RunEviction(ctx context.Context, maxIdle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(maxIdle); n > 0 {
				s.log.Debug("Evicted idle conversation stores", "count", n)
			}
		}
	}
}

func (s *ChatService) publishChange(profileID string, cs *chatstore.Store) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := realtime.Message{
		Channel: realtime.ConversationsChannel(profileID),
		Event:   realtime.EventConversationsChanged,
		Data:    s.summary(cs),
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.log.Warn("Failed to publish conversation change", "profileID", profileID, "error", err)
	}
}

func (s *ChatService) summary(cs *chatstore.Store) UnreadSummary {
	return UnreadSummary{
		UnreadConversations: cs.TotalUnreadCount(),
		ActiveConversations: cs.ActiveConversationCount(),
	}
}

func (s *ChatService) ListConversations(profileID string) map[string]chatstore.StoredConversation {
	return s.Conversations(profileID).AllConversations()
}

func (s *ChatService) Messages(profileID, participantID string) []chatstore.ChatMessage {
	return s.Conversations(profileID).Messages(participantID)
}

func (s *ChatService) SendMessage(profileID, participantID, text string, fromMe bool, typ chatstore.ConversationType) (chatstore.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return chatstore.ChatMessage{}, ErrEmptyMessage
	}
	return s.Conversations(profileID).AddMessage(participantID, text, fromMe, typ), nil
}

func (s *ChatService) MarkAsRead(profileID, participantID string) {
	s.Conversations(profileID).MarkAsRead(participantID)
}

func (s *ChatService) EnsureConversation(profileID, participantID string, typ chatstore.ConversationType) {
	s.Conversations(profileID).EnsureConversation(participantID, typ)
}

func (s *ChatService) Unread(profileID string) UnreadSummary {
	return s.summary(s.Conversations(profileID))
}

func (s *ChatService) SeedDemo(profileID string) {
	s.Conversations(profileID).SeedLandlordConversations()
}
