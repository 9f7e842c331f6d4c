// Package chatstore keeps a profile's chat conversations in memory, mirrors
// them to a key-value Storage after every change and notifies subscribers.
package chatstore

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/livix/roommates/internal/logger"
	"github.com/livix/roommates/internal/store"
)

const (
	// StorageKey holds the whole registry as one JSON object keyed by participant id.
	StorageKey = "livix_chat_store"
	// SeededKey is set once the demo landlord threads have been injected.
	SeededKey = "livix_chat_seeded"

	seededMarker = "true"
)

// Store is safe for concurrent use. Listeners run after the change has been
// applied and persisted, outside the store lock, so a listener may call back
// into the store; any change it makes triggers another notification round.
type Store struct {
	mu            sync.Mutex
	storage       store.Storage
	conversations map[string]*StoredConversation
	listeners     map[uint64]func()
	nextListener  uint64
	seeded        bool

	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New hydrates a store from storage. A missing or unreadable blob yields an
// empty registry.
func New(storage store.Storage, opts ...Option) *Store {
	s := &Store{
		storage:       storage,
		conversations: make(map[string]*StoredConversation),
		listeners:     make(map[uint64]func()),
		log:           logger.NewNop(),
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.log.Warn("Failed to read conversations, starting empty", "error", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var loaded map[string]*StoredConversation
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		s.log.Warn("Corrupt conversation blob, starting empty", "error", err)
		return
	}
	for id, c := range loaded {
		if c == nil {
			continue
		}
		normalize(id, c)
		s.conversations[id] = c
	}
	s.log.Debug("Loaded conversations", "count", len(s.conversations))
}

// normalize repairs a conversation read from storage so the unread invariant holds.
func normalize(id string, c *StoredConversation) {
	c.ParticipantID = id
	if c.Messages == nil {
		c.Messages = []ChatMessage{}
	}
	if !c.Type.Valid() {
		c.Type = TypeRoommate
	}
	inbound := 0
	for _, m := range c.Messages {
		if !m.FromMe {
			inbound++
		}
	}
	if c.UnreadCount < 0 {
		c.UnreadCount = 0
	}
	if c.UnreadCount > inbound {
		c.UnreadCount = inbound
	}
}

// Subscribe registers listener for change notifications and returns a
// function that removes it. Calling the returned function more than once is
// harmless.
func (s *Store) Subscribe(listener func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		s.callListener(l)
	}
}

func (s *Store) callListener(l func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Conversation listener panicked", "panic", r)
		}
	}()
	l()
}

// persist writes the whole registry under StorageKey. Caller holds s.mu.
func (s *Store) persist() error {
	raw, err := json.Marshal(s.conversations)
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}
	if err := s.storage.Set(StorageKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write conversations: %w", err)
	}
	return nil
}

// bestEffortPersist is the store's write policy: a failed write (quota,
// backend down) is logged and dropped, and the in-memory registry stays
// authoritative for the rest of the session. Caller holds s.mu.
func (s *Store) bestEffortPersist() {
	if err := s.persist(); err != nil {
		s.log.Debug("Conversation persist skipped", "error", err)
	}
}

// AllConversations returns a copy of the registry keyed by participant id.
func (s *Store) AllConversations() map[string]StoredConversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]StoredConversation, len(s.conversations))
	for id, c := range s.conversations {
		out[id] = c.clone()
	}
	return out
}

// Messages returns the history with participantID, or an empty slice.
func (s *Store) Messages(participantID string) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[participantID]
	if !ok {
		return []ChatMessage{}
	}
	return c.clone().Messages
}

// ConversationType reports the type of the conversation with participantID,
// if one exists.
func (s *Store) ConversationType(participantID string) (ConversationType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[participantID]
	if !ok {
		return "", false
	}
	return c.Type, true
}

// AddMessage appends a message, creating the conversation with type typ
// (roommate when empty) if needed. Inbound messages bump the unread count.
func (s *Store) AddMessage(participantID, text string, fromMe bool, typ ConversationType) ChatMessage {
	if typ == "" {
		typ = TypeRoommate
	}
	msg := ChatMessage{
		ID:        s.newID(),
		FromMe:    fromMe,
		Text:      text,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	c, ok := s.conversations[participantID]
	if !ok {
		c = newConversation(participantID, typ)
		s.conversations[participantID] = c
	}
	c.Messages = append(c.Messages, msg)
	if !fromMe {
		c.UnreadCount++
	}
	s.bestEffortPersist()
	s.mu.Unlock()

	s.notify()
	return msg
}

// MarkAsRead clears the unread count. Nothing is written or notified when
// there was nothing to clear.
func (s *Store) MarkAsRead(participantID string) {
	s.mu.Lock()
	c, ok := s.conversations[participantID]
	if !ok || c.UnreadCount == 0 {
		s.mu.Unlock()
		return
	}
	c.UnreadCount = 0
	s.bestEffortPersist()
	s.mu.Unlock()

	s.notify()
}

// TotalUnreadCount is the number of conversations with unread messages, not
// the number of unread messages.
func (s *Store) TotalUnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.conversations {
		if c.UnreadCount > 0 {
			n++
		}
	}
	return n
}

// EnsureConversation creates an empty conversation if none exists.
func (s *Store) EnsureConversation(participantID string, typ ConversationType) {
	if typ == "" {
		typ = TypeRoommate
	}

	s.mu.Lock()
	if _, ok := s.conversations[participantID]; ok {
		s.mu.Unlock()
		return
	}
	s.conversations[participantID] = newConversation(participantID, typ)
	s.bestEffortPersist()
	s.mu.Unlock()

	s.notify()
}

// ActiveConversationCount counts conversations with at least one message.
func (s *Store) ActiveConversationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.conversations {
		if len(c.Messages) > 0 {
			n++
		}
	}
	return n
}

// SeedLandlordConversations injects the demo landlord threads once per
// storage. Later calls are silent no-ops.
func (s *Store) SeedLandlordConversations() {
	s.mu.Lock()
	if s.seeded || s.seedFlagSet() {
		s.seeded = true
		s.mu.Unlock()
		return
	}

	for _, c := range demoLandlordConversations() {
		s.conversations[c.ParticipantID] = &c
	}
	s.bestEffortPersist()
	if err := s.storage.Set(SeededKey, seededMarker); err != nil {
		s.log.Debug("Seed flag persist skipped", "error", err)
	}
	s.seeded = true
	s.mu.Unlock()

	s.log.Info("Seeded demo landlord conversations")
	s.notify()
}

func (s *Store) seedFlagSet() bool {
	v, ok, err := s.storage.Get(SeededKey)
	if err != nil {
		s.log.Warn("Failed to read seed flag", "error", err)
		return false
	}
	return ok && v != ""
}

func newConversation(participantID string, typ ConversationType) *StoredConversation {
	return &StoredConversation{
		ParticipantID: participantID,
		Type:          typ,
		Messages:      []ChatMessage{},
		UnreadCount:   0,
	}
}
