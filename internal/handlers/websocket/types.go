package websocket

import (
	"encoding/json"
	"time"

	"github.com/kolshuk/kolshuk/internal/domains/commerce"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// client -> server
	MessageTypeInit       MessageType = "init"
	MessageTypeTranscript MessageType = "transcript"
	MessageTypeText       MessageType = "text"
	MessageTypeControl    MessageType = "control"

	// server -> client
	MessageTypeConnected   MessageType = "connected"
	MessageTypeTurn        MessageType = "turn"
	MessageTypeEvent       MessageType = "event"
	MessageTypeAudioFormat MessageType = "audio_format"
	MessageTypeError       MessageType = "error"
)

// Control actions accepted in a control frame.
const (
	ActionSpeechStart = "speech_start"
	ActionSetModality = "set_modality"
)

// WSMessage is the envelope for every outbound JSON message.
type WSMessage struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// inboundMessage is the envelope for inbound JSON; Data stays raw so
// each handler decodes its own payload.
type inboundMessage struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// TranscriptMessage carries one recognition result from the client.
// Recognition runs client-side by default; only final transcripts
// start a turn, a non-final one signals the user started talking.
type TranscriptMessage struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// TextMessage contains typed text input
type TextMessage struct {
	Content string `json:"content"`
}

// ControlMessage contains session control commands
type ControlMessage struct {
	Action   string `json:"action"`
	Modality string `json:"modality,omitempty"` // with set_modality: "voice" | "text"
}

// ConnectedMessage acknowledges the connection
type ConnectedMessage struct {
	SessionID string `json:"sessionId"`
	Language  string `json:"language"`
	Modality  string `json:"modality"`
	Voice     bool   `json:"voice"`
}

// TurnMessage is the completed reply for one user turn
type TurnMessage struct {
	Text        string             `json:"text"`
	Products    []commerce.Product `json:"products,omitempty"`
	Suggestions []string           `json:"suggestions,omitempty"`
	Spoken      bool               `json:"spoken"`
	Farewell    bool               `json:"farewell"`
}

// EventMessage carries lifecycle notifications
type EventMessage struct {
	Name     string `json:"name"`
	Modality string `json:"modality,omitempty"`
	Message  string `json:"message,omitempty"`
}

// AudioFormatMessage describes the binary audio frames that follow.
// Each binary frame is seq(8) + timestamp(8) + final(1) + len(4) + data,
// little-endian, matching the chunk wire format.
type AudioFormatMessage struct {
	Encoding   string `json:"encoding"`
	SampleRate int32  `json:"sampleRate"`
	Channels   int16  `json:"channels"`
}

// ErrorMessage contains error information
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
