package types

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kolshuk/kolshuk/pkg/assistant"
	"github.com/kolshuk/kolshuk/pkg/intent"
)

// Message is one conversation turn, user or assistant side.
type Message struct {
	Id        uuid.UUID      `json:"id"`
	SessionID uuid.UUID      `json:"session_id"`
	Text      string         `json:"text"`
	Language  string         `json:"language"`
	Intent    intent.Intent  `json:"intent,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	MsgRole   assistant.Role `json:"msg_role"`
}

// NewUserMessage stamps an inbound transcript as a stored turn.
func NewUserMessage(sessionID uuid.UUID, text, language string, in intent.Intent) Message {
	return Message{
		Id:        uuid.New(),
		SessionID: sessionID,
		Text:      text,
		Language:  language,
		Intent:    in,
		Timestamp: time.Now(),
		MsgRole:   assistant.USER,
	}
}

// NewAssistantMessage stamps an outbound reply as a stored turn.
func NewAssistantMessage(sessionID uuid.UUID, text, language string) Message {
	return Message{
		Id:        uuid.New(),
		SessionID: sessionID,
		Text:      text,
		Language:  language,
		Timestamp: time.Now(),
		MsgRole:   assistant.ASSISTANT,
	}
}

func (m *Message) ToAssistantMessage() assistant.Message {
	return assistant.Message{
		Content:   m.Text,
		CreatedAt: m.Timestamp,
		MsgRole:   m.MsgRole,
	}
}

// MessagesToHistory converts stored turns to provider history,
// oldest-first.
func MessagesToHistory(messages []Message) []assistant.Message {
	out := make([]assistant.Message, len(messages))
	for i, m := range messages {
		out[i] = m.ToAssistantMessage()
	}
	return out
}

// ConversationRepository persists turns per session. Fetch is
// oldest-first over the rolling window the store retains.
type ConversationRepository interface {
	CreateMessage(ctx context.Context, sessionID uuid.UUID, msg Message) (*Message, error)
	FetchSessionMessages(ctx context.Context, sessionID uuid.UUID, start, end int64) ([]Message, error)
	FetchMessage(ctx context.Context, msgID uuid.UUID) (*Message, error)
}
