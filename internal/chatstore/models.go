package chatstore

import "time"

type ConversationType string

const (
	TypeRoommate ConversationType = "roommate"
	TypeLandlord ConversationType = "landlord"
)

func (t ConversationType) Valid() bool {
	return t == TypeRoommate || t == TypeLandlord
}

// ChatMessage is immutable once appended.
type ChatMessage struct {
	ID        string    `json:"id"`
	FromMe    bool      `json:"fromMe"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// StoredConversation is the history with one counterpart. UnreadCount never
// exceeds the number of messages with FromMe unset.
type StoredConversation struct {
	ParticipantID string           `json:"participantId"`
	Type          ConversationType `json:"type"`
	Messages      []ChatMessage    `json:"messages"`
	UnreadCount   int              `json:"unreadCount"`
}

func (c *StoredConversation) clone() StoredConversation {
	out := *c
	out.Messages = append([]ChatMessage(nil), c.Messages...)
	if out.Messages == nil {
		out.Messages = []ChatMessage{}
	}
	return out
}
