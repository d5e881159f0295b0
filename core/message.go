package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a history message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a session's append-only history. After it is
// appended it should be treated as immutable.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage creates a user-authored history entry.
func NewUserMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// NewAssistantMessage creates an assistant-authored history entry.
func NewAssistantMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleAssistant, Content: content, Timestamp: time.Now().UTC()}
}

// NewID generates a new unique identifier for messages and turns.
func NewID() string { return uuid.NewString() }
