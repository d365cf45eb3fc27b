package conversation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kolshuk/kolshuk/internal/types"
	"github.com/kolshuk/kolshuk/pkg/assistant"
	"github.com/kolshuk/kolshuk/pkg/intent"
)

// StateTracker holds the append-only message history for one session
// and owns the greeting/farewell decisions. The greeted flag is set
// once and consulted, never re-derived from message text.
type StateTracker struct {
	mu        sync.RWMutex
	sessionID uuid.UUID
	language  string
	messages  []types.Message
	greeted   bool

	parser *intent.Parser
}

func NewTracker(sessionID uuid.UUID, language string, parser *intent.Parser) *StateTracker {
	return &StateTracker{
		sessionID: sessionID,
		language:  language,
		parser:    parser,
	}
}

func (t *StateTracker) SessionID() uuid.UUID { return t.sessionID }
func (t *StateTracker) Language() string     { return t.language }

// Append records one turn. Appending an assistant message that opens
// with a greeting marks the session as greeted.
func (t *StateTracker) Append(msg types.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	if msg.MsgRole == assistant.ASSISTANT && t.parser.IsGreeting(msg.Text, t.language) {
		t.greeted = true
	}
}

// History returns a copy; callers never see later appends.
func (t *StateTracker) History() []types.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *StateTracker) HasGreeted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.greeted
}

// MarkGreeted sets the flag explicitly, independent of message text.
func (t *StateTracker) MarkGreeted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.greeted = true
}

func (t *StateTracker) IsFarewell(text string) bool {
	return t.parser.IsFarewell(text, t.language)
}

// ScrubGreeting strips a leading greeting from reply text once the
// session has already introduced itself. Before that it passes text
// through untouched.
func (t *StateTracker) ScrubGreeting(text string) string {
	if !t.HasGreeted() {
		return text
	}
	return t.parser.ScrubGreeting(text, t.language)
}
