package core

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who produced a message. Worker names are open ended, so
// Sender is a plain string rather than a closed set.
type Sender string

const (
	// SenderUser marks messages that originate from the human or from a
	// transient nudge injected into a worker's local context.
	SenderUser Sender = "User"
	// SenderResearcher marks messages appended by the Researcher worker.
	SenderResearcher Sender = "Researcher"
	// SenderWriter marks messages appended by the Writer worker.
	SenderWriter Sender = "Writer"
	// SenderNone is the empty sender used for supervisor-internal records.
	SenderNone Sender = ""
)

// String returns the sender name.
func (s Sender) String() string { return string(s) }

// IsUser reports whether the sender is the human user.
func (s Sender) IsUser() bool { return s == SenderUser }

// Message is a single entry of the conversation log. After creation it
// should be treated as immutable.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message tagged with sender.
func NewMessage(sender Sender, content string) Message {
	return Message{
		ID:        NewID(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(content string) Message {
	return NewMessage(SenderUser, content)
}

// NewID returns a new random identifier.
func NewID() string { return uuid.NewString() }
