package synth

// Wire protocol for the synthesis backend: JSON control frames on the
// text channel, optional raw audio on the binary channel.

type FrameType string

const (
	FrameInit          FrameType = "init"
	FrameConnectionAck FrameType = "connection_ack"
	FrameSendText      FrameType = "send_text"
	FrameAudioEvent    FrameType = "audio_event"
	FramePing          FrameType = "ping"
	FramePong          FrameType = "pong"
	FrameCancel        FrameType = "cancel"
	FrameError         FrameType = "error"
)

// VoiceSettings mirrors the synthesis backend's voice tuning knobs.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// VoiceProfile selects the synthesis voice. Immutable for the lifetime
// of a session.
type VoiceProfile struct {
	VoiceID  string        `json:"voice_id"`
	Language string        `json:"language"`
	Settings VoiceSettings `json:"settings"`
}

// Frame is the envelope for every control message in either direction.
// Fields beyond Type are populated per frame type.
type Frame struct {
	Type FrameType `json:"type"`

	// init
	Voice    *VoiceProfile `json:"voice,omitempty"`
	SeedText string        `json:"seed_text,omitempty"`

	// connection_ack
	SessionID string `json:"session_id,omitempty"`

	// send_text; Flush marks the final segment of an utterance
	Text  string `json:"text,omitempty"`
	Flush bool   `json:"flush,omitempty"`

	// audio_event; Audio is base64 on the wire via encoding/json
	Seq   uint64 `json:"seq,omitempty"`
	Audio []byte `json:"audio,omitempty"`
	Final bool   `json:"final,omitempty"`

	// ping/pong
	EventID string `json:"event_id,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
