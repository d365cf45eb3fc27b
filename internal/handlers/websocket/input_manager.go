package websocket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kolshuk/kolshuk/internal/domains/voice"
	"github.com/kolshuk/kolshuk/pkg/Logger"
)

// InputManager translates client frames into pipeline events.
type InputManager struct {
	logger *Logger.Logger
}

func NewInputManager(logger *Logger.Logger) *InputManager {
	return &InputManager{logger: logger}
}

// HandleMessage decodes one inbound JSON frame and routes it.
func (im *InputManager) HandleMessage(session *Session, data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		im.logger.Errorf("undecodable message from %s: %v", session.SessionID, err)
		session.SendError("INVALID_MESSAGE", "invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypeTranscript:
		im.handleTranscript(session, msg.Data)
	case MessageTypeText:
		im.handleText(session, msg.Data)
	case MessageTypeControl:
		im.handleControl(session, msg.Data)
	case MessageTypeInit:
		// already initialized on connect; ignore re-inits
		im.logger.Debugf("ignoring late init from %s", session.SessionID)
	default:
		im.logger.Warnf("unknown message type %q from %s", msg.Type, session.SessionID)
		session.SendError("UNKNOWN_MESSAGE_TYPE", fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

// handleTranscript routes recognition results. A final transcript runs
// a turn; a partial one means the user started talking, which is the
// barge-in signal while the assistant is speaking.
func (im *InputManager) handleTranscript(session *Session, data json.RawMessage) {
	var tm TranscriptMessage
	if err := json.Unmarshal(data, &tm); err != nil {
		session.SendError("INVALID_MESSAGE", "invalid transcript payload")
		return
	}

	if !tm.IsFinal {
		if err := session.PushEvent(voice.SessionEvent{
			Type:      voice.EventSpeechStart,
			SessionID: session.SessionID,
			Timestamp: time.Now(),
		}); err != nil {
			im.logger.Debugf("drop speech_start for %s: %v", session.SessionID, err)
		}
		return
	}

	if err := session.PushEvent(voice.SessionEvent{
		Type:      voice.EventTranscriptFinal,
		SessionID: session.SessionID,
		Text:      tm.Text,
		Timestamp: time.Now(),
	}); err != nil {
		im.logger.Warnf("drop transcript for %s: %v", session.SessionID, err)
		session.SendError("BUSY", "could not accept transcript, try again")
	}
}

func (im *InputManager) handleText(session *Session, data json.RawMessage) {
	var tm TextMessage
	if err := json.Unmarshal(data, &tm); err != nil {
		session.SendError("INVALID_MESSAGE", "invalid text payload")
		return
	}
	if strings.TrimSpace(tm.Content) == "" {
		session.SendError("EMPTY_TEXT", "empty text input")
		return
	}

	if err := session.PushEvent(voice.SessionEvent{
		Type:      voice.EventTextInput,
		SessionID: session.SessionID,
		Text:      tm.Content,
		Timestamp: time.Now(),
	}); err != nil {
		im.logger.Warnf("drop text input for %s: %v", session.SessionID, err)
		session.SendError("BUSY", "could not accept message, try again")
	}
}

func (im *InputManager) handleControl(session *Session, data json.RawMessage) {
	var cm ControlMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		session.SendError("INVALID_MESSAGE", "invalid control payload")
		return
	}

	switch cm.Action {
	case ActionSpeechStart:
		if err := session.PushEvent(voice.SessionEvent{
			Type:      voice.EventSpeechStart,
			SessionID: session.SessionID,
			Timestamp: time.Now(),
		}); err != nil {
			im.logger.Debugf("drop speech_start for %s: %v", session.SessionID, err)
		}

	case ActionSetModality:
		target := voice.Modality(cm.Modality)
		if target != voice.ModalityVoice && target != voice.ModalityText {
			session.SendError("INVALID_MODALITY", fmt.Sprintf("unknown modality %q", cm.Modality))
			return
		}
		if err := session.PushEvent(voice.SessionEvent{
			Type:      voice.EventSetModality,
			SessionID: session.SessionID,
			Modality:  target,
			Timestamp: time.Now(),
		}); err != nil {
			im.logger.Warnf("drop modality switch for %s: %v", session.SessionID, err)
			session.SendError("BUSY", "could not switch modality, try again")
		}

	default:
		session.SendError("UNKNOWN_ACTION", fmt.Sprintf("unknown control action %q", cm.Action))
	}
}
