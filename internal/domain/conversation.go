package domain

import (
	"time"
)

// Conversation is a participant-indexed chat document. LastMessage is a
// denormalized copy of the newest message so conversation lists render
// without fetching the message sub-collection. UnreadCount keys are always
// a subset of Participants.
type Conversation struct {
	ID               string            `json:"id" dynamodbav:"id"`
	Participants     []string          `json:"participants" dynamodbav:"participants"`
	ParticipantRoles map[string]Role   `json:"participantRoles" dynamodbav:"participantRoles"`
	LastMessage      *MessagePreview   `json:"lastMessage,omitempty" dynamodbav:"lastMessage"`
	UnreadCount      map[string]int    `json:"unreadCount" dynamodbav:"unreadCount"`
	CreatedAt        time.Time         `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt" dynamodbav:"updatedAt"`
}

type MessagePreview struct {
	Content  string    `json:"content" dynamodbav:"content"`
	SenderID string    `json:"senderId" dynamodbav:"senderId"`
	At       time.Time `json:"at" dynamodbav:"at"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

type Message struct {
	ID             string    `json:"id" dynamodbav:"id"`
	ConversationID string    `json:"conversationId" dynamodbav:"conversationId"`
	SenderID       string    `json:"senderId" dynamodbav:"senderId"`
	Content        string    `json:"content" dynamodbav:"content"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

type CreateConversationRequest struct {
	Participants []string `json:"participants" binding:"required,min=1"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
