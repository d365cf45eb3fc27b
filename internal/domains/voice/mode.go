package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kolshuk/kolshuk/pkg/Logger"
)

// Modality is the active input channel for a session.
type Modality string

const (
	ModalityNone  Modality = "none"
	ModalityVoice Modality = "voice"
	ModalityText  Modality = "text"
)

var ErrNotVoiceMode = errors.New("voice: capture requires voice modality")

// ModeController is the single owner of the "am I listening" and
// "am I speaking" flags and of the active modality. Exactly one input
// modality is active at a time; every other component queries this
// controller instead of keeping its own copy of the flags.
type ModeController struct {
	mu        sync.Mutex
	modality  Modality
	listening bool // microphone held
	speaking  bool // synthesis playing

	// cancelVoice stops capture and interrupts synthesis; invoked
	// before any switch away from voice.
	cancelVoice func(ctx context.Context) error
	logger      *Logger.Logger
}

func NewModeController(cancelVoice func(ctx context.Context) error, logger *Logger.Logger) *ModeController {
	return &ModeController{
		modality:    ModalityNone,
		cancelVoice: cancelVoice,
		logger:      logger,
	}
}

func (m *ModeController) Modality() Modality {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modality
}

func (m *ModeController) IsListening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listening
}

func (m *ModeController) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// SwitchTo changes the active modality. Switching away from voice
// first cancels synthesis and releases the microphone; new input in
// the other modality is only accepted after that completes.
func (m *ModeController) SwitchTo(ctx context.Context, target Modality) error {
	m.mu.Lock()
	current := m.modality
	leavingVoice := current == ModalityVoice && target != ModalityVoice
	m.mu.Unlock()

	if current == target {
		return nil
	}

	if leavingVoice && m.cancelVoice != nil {
		if err := m.cancelVoice(ctx); err != nil {
			return fmt.Errorf("voice: cancel before switch: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if leavingVoice {
		m.listening = false
		m.speaking = false
	}
	m.modality = target
	if m.logger != nil {
		m.logger.Infof("modality %s -> %s", current, target)
	}
	return nil
}

// StartListening acquires the microphone. Exclusive: a second call
// while already listening is a no-op, and capture is only allowed in
// voice modality.
func (m *ModeController) StartListening() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.modality != ModalityVoice {
		return ErrNotVoiceMode
	}
	m.listening = true
	return nil
}

// StopListening releases the microphone. Callers defer this on every
// exit path so the mic is never leaked.
func (m *ModeController) StopListening() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listening = false
}

func (m *ModeController) SetSpeaking(speaking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speaking = speaking
}
