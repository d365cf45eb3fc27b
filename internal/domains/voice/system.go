package voice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kolshuk/kolshuk/internal/domains/conversation"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/io/synth"
)

// Event types for session system communication
type EventType string

const (
	// Input events (commands to the system)
	EventTranscriptFinal EventType = "TRANSCRIPT_FINAL"
	EventSpeechStart     EventType = "SPEECH_START" // recognition restarted: barge-in
	EventTextInput       EventType = "TEXT_INPUT"
	EventSetModality     EventType = "SET_MODALITY"
	EventClose           EventType = "CLOSE"

	// Output events (from the system)
	EventTurnDone     EventType = "TURN_DONE"
	EventModality     EventType = "MODALITY_CHANGE"
	EventVoiceErrored EventType = "VOICE_ERRORED"
)

// SessionEvent carries one command or notification across the system
// boundary.
type SessionEvent struct {
	Type      EventType          `json:"type"`
	SessionID uuid.UUID          `json:"sessionId"`
	Text      string             `json:"text,omitempty"`
	Modality  Modality           `json:"modality,omitempty"`
	Turn      *conversation.Turn `json:"turn,omitempty"`
	Err       error              `json:"-"`
	Timestamp time.Time          `json:"timestamp"`
}

// System drives one session's pipeline: a single goroutine owns the
// select loop, so handlers never race each other. Sessions share no
// mutable state.
type System struct {
	sessionID uuid.UUID
	logger    *Logger.Logger

	orch  *conversation.Orchestrator
	mode  *ModeController
	voice *synth.Session // nil when voice output is disabled

	voiceUp bool

	// cancels the in-flight reply's background segment feed; only the
	// Run goroutine touches it
	speakCancel context.CancelFunc

	inCh  chan SessionEvent
	outCh chan SessionEvent
}

func NewSystem(
	sessionID uuid.UUID,
	orch *conversation.Orchestrator,
	voice *synth.Session,
	logger *Logger.Logger,
) *System {
	s := &System{
		sessionID: sessionID,
		logger:    logger,
		orch:      orch,
		voice:     voice,
		voiceUp:   voice != nil,
		inCh:      make(chan SessionEvent, 64),
		outCh:     make(chan SessionEvent, 16),
	}
	s.mode = NewModeController(s.cancelVoice, logger)
	return s
}

// InputChannel is where the transport pushes commands.
func (s *System) InputChannel() chan<- SessionEvent {
	return s.inCh
}

// OutputChannel is where the transport receives turns and lifecycle
// notifications.
func (s *System) OutputChannel() <-chan SessionEvent {
	return s.outCh
}

// Mode exposes the controller for transports that need to query the
// flags. All writes still go through this system's loop.
func (s *System) Mode() *ModeController {
	return s.mode
}

// Run drives the session until ctx is done or a close event arrives.
// Always releases the microphone and the synthesis connection on the
// way out.
func (s *System) Run(ctx context.Context) {
	defer s.shutdown()

	var voiceEvents <-chan synth.Event
	if s.voice != nil {
		voiceEvents = s.voice.Events()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event := <-s.inCh:
			if event.Type == EventClose {
				return
			}
			s.handleEvent(ctx, event)

		case ev := <-voiceEvents:
			s.handleVoiceEvent(ev)
		}
	}
}

func (s *System) handleEvent(ctx context.Context, event SessionEvent) {
	switch event.Type {
	case EventTranscriptFinal:
		s.handleTranscript(ctx, event.Text)

	case EventSpeechStart:
		s.handleBargeIn(ctx)

	case EventTextInput:
		s.handleTextInput(ctx, event.Text)

	case EventSetModality:
		s.handleSetModality(ctx, event.Modality)

	default:
		if s.logger != nil {
			s.logger.Warnf("unknown event type %s for session %s", event.Type, s.sessionID)
		}
	}
}

// handleTranscript runs one voice turn. Final transcripts only; the
// transport filters partials.
func (s *System) handleTranscript(ctx context.Context, text string) {
	if s.mode.Modality() != ModalityVoice {
		if s.logger != nil {
			s.logger.Debugf("dropping transcript outside voice modality for %s", s.sessionID)
		}
		return
	}

	s.stopSpeech()
	speaker := s.speaker()
	turnCtx := ctx
	if speaker != nil {
		s.mode.SetSpeaking(true)
		turnCtx, s.speakCancel = context.WithCancel(ctx)
	}

	turn, err := s.orch.HandleTranscript(turnCtx, text, speaker)
	if err != nil {
		if s.logger != nil {
			s.logger.Errorf("turn failed for %s: %v", s.sessionID, err)
		}
		s.stopSpeech()
		s.mode.SetSpeaking(false)
		return
	}
	if !turn.Spoken {
		s.stopSpeech()
		s.mode.SetSpeaking(false)
	}

	s.emit(SessionEvent{Type: EventTurnDone, SessionID: s.sessionID, Turn: turn, Timestamp: time.Now()})
}

// handleBargeIn hard-cancels the current utterance: the segment feed
// stops, playback stops, queued audio is dropped, the backend aborts
// in-flight synthesis.
func (s *System) handleBargeIn(ctx context.Context) {
	if !s.mode.IsSpeaking() {
		return
	}
	s.stopSpeech()
	if s.voice != nil {
		if err := s.voice.Interrupt(ctx); err != nil && s.logger != nil {
			s.logger.Warnf("barge-in interrupt: %v", err)
		}
	}
	s.mode.SetSpeaking(false)
}

func (s *System) handleTextInput(ctx context.Context, text string) {
	if s.mode.Modality() != ModalityText {
		if err := s.mode.SwitchTo(ctx, ModalityText); err != nil {
			if s.logger != nil {
				s.logger.Errorf("switch to text for %s: %v", s.sessionID, err)
			}
			return
		}
		s.emit(SessionEvent{Type: EventModality, SessionID: s.sessionID, Modality: ModalityText, Timestamp: time.Now()})
	}

	// text turns never speak
	turn, err := s.orch.HandleTranscript(ctx, text, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Errorf("text turn failed for %s: %v", s.sessionID, err)
		}
		return
	}
	s.emit(SessionEvent{Type: EventTurnDone, SessionID: s.sessionID, Turn: turn, Timestamp: time.Now()})
}

func (s *System) handleSetModality(ctx context.Context, target Modality) {
	if err := s.mode.SwitchTo(ctx, target); err != nil {
		if s.logger != nil {
			s.logger.Errorf("modality switch for %s: %v", s.sessionID, err)
		}
		return
	}
	if target == ModalityVoice {
		if err := s.mode.StartListening(); err != nil && s.logger != nil {
			s.logger.Warnf("start capture: %v", err)
		}
	}
	s.emit(SessionEvent{Type: EventModality, SessionID: s.sessionID, Modality: target, Timestamp: time.Now()})
}

func (s *System) handleVoiceEvent(ev synth.Event) {
	switch ev.Kind {
	case synth.EventUtteranceDone:
		s.stopSpeech()
		s.mode.SetSpeaking(false)

	case synth.EventErrored:
		// text-only from here; the owner decides whether to reopen
		s.stopSpeech()
		s.voiceUp = false
		s.mode.SetSpeaking(false)
		s.emit(SessionEvent{Type: EventVoiceErrored, SessionID: s.sessionID, Err: ev.Err, Timestamp: time.Now()})
	}
}

// stopSpeech releases the current reply's segment feed, if any.
func (s *System) stopSpeech() {
	if s.speakCancel != nil {
		s.speakCancel()
		s.speakCancel = nil
	}
}

// speaker returns the synthesis session when voice output is usable
// this turn, nil otherwise.
func (s *System) speaker() conversation.Speaker {
	if s.voice == nil || !s.voiceUp {
		return nil
	}
	if s.mode.Modality() != ModalityVoice {
		return nil
	}
	return s.voice
}

// cancelVoice is the ModeController's pre-switch hook.
func (s *System) cancelVoice(ctx context.Context) error {
	if s.voice == nil || !s.voiceUp {
		return nil
	}
	return s.voice.Interrupt(ctx)
}

func (s *System) shutdown() {
	s.stopSpeech()
	s.mode.StopListening()
	if s.voice != nil {
		if err := s.voice.Close(); err != nil && err != synth.ErrSessionClosed && s.logger != nil {
			s.logger.Warnf("close synthesis session: %v", err)
		}
	}
	close(s.outCh)
	if s.logger != nil {
		s.logger.Infof("session system closed for %s", s.sessionID)
	}
}

func (s *System) emit(event SessionEvent) {
	select {
	case s.outCh <- event:
	default:
		if s.logger != nil {
			s.logger.Warnf("output channel full, dropping %s for session %s", event.Type, s.sessionID)
		}
	}
}
