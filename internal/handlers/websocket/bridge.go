package websocket

import (
	"context"

	"github.com/kolshuk/kolshuk/internal/domains/voice"
	"github.com/kolshuk/kolshuk/pkg/Logger"
)

// EventBridge forwards pipeline output events to the client.
type EventBridge struct {
	logger *Logger.Logger
}

func NewEventBridge(logger *Logger.Logger) *EventBridge {
	return &EventBridge{logger: logger}
}

// Run pumps the session system's output channel onto the socket until
// the channel closes or ctx is done. Run in its own goroutine.
func (b *EventBridge) Run(ctx context.Context, session *Session) {
	if session.System == nil {
		b.logger.Errorf("no session system for %s", session.SessionID)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-session.System.OutputChannel():
			if !ok {
				b.logger.Infof("pipeline closed for session %s", session.SessionID)
				return
			}
			b.forward(session, ev)
		}
	}
}

func (b *EventBridge) forward(session *Session, ev voice.SessionEvent) {
	switch ev.Type {
	case voice.EventTurnDone:
		if ev.Turn == nil {
			return
		}
		err := session.SendMessage(MessageTypeTurn, TurnMessage{
			Text:        ev.Turn.Text,
			Products:    ev.Turn.Products,
			Suggestions: ev.Turn.Suggestions,
			Spoken:      ev.Turn.Spoken,
			Farewell:    ev.Turn.Farewell,
		})
		if err != nil {
			b.logger.Errorf("send turn to %s: %v", session.SessionID, err)
		}

	case voice.EventModality:
		if err := session.SendMessage(MessageTypeEvent, EventMessage{
			Name:     "modality_change",
			Modality: string(ev.Modality),
		}); err != nil {
			b.logger.Errorf("send modality change to %s: %v", session.SessionID, err)
		}

	case voice.EventVoiceErrored:
		msg := "voice output unavailable, continuing in text"
		if err := session.SendMessage(MessageTypeEvent, EventMessage{
			Name:    "voice_errored",
			Message: msg,
		}); err != nil {
			b.logger.Errorf("send voice error to %s: %v", session.SessionID, err)
		}

	default:
		b.logger.Debugf("unhandled pipeline event %s for %s", ev.Type, session.SessionID)
	}
}
