package assistant

import (
	"context"
	"time"
)

type Role string

const (
	USER      Role = "user"
	ASSISTANT Role = "assistant"
	SYSTEM    Role = "system"
)

type Message struct {
	Content   string
	CreatedAt time.Time
	MsgRole   Role
}

// Reply is a single assistant turn. Suggestions are optional short
// follow-up prompts the client may render as quick actions.
type Reply struct {
	Text        string
	Suggestions []string
}

// Assistant answers free-form queries the command layer could not
// classify. history is oldest-first and already trimmed by the caller.
type Assistant interface {
	Respond(ctx context.Context, query, language string, history []Message) (*Reply, error)
}
