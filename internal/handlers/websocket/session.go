package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kolshuk/kolshuk/internal/domains/voice"
	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/io/audio"
)

// wsConn is the slice of *websocket.Conn the session uses; tests
// substitute a fake.
type wsConn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Session represents one WebSocket client connection. It is the
// playback sink for synthesized audio: ordered chunks are buffered in
// a ring and a write pump forwards them as binary frames, so a slow
// client drops oldest audio instead of stalling synthesis.
type Session struct {
	SessionID uuid.UUID
	Language  string

	conn   wsConn
	ring   audio.ChunkRing
	wake   chan struct{}
	logger *Logger.Logger

	// System is attached by the handler once the pipeline is built.
	System *voice.System

	ConnectedAt time.Time
	lastActive  time.Time
	active      bool
	mutex       sync.RWMutex
}

// NewSession creates a session over an upgraded connection. ringSize
// is the audio buffer capacity in bytes.
func NewSession(sessionID uuid.UUID, language string, conn wsConn, ringSize int, logger *Logger.Logger) *Session {
	return &Session{
		SessionID:   sessionID,
		Language:    language,
		conn:        conn,
		ring:        audio.New(ringSize),
		wake:        make(chan struct{}, 1),
		logger:      logger,
		ConnectedAt: time.Now(),
		lastActive:  time.Now(),
		active:      true,
	}
}

// Play implements the synthesis sink. Called in playback order, one
// chunk at a time; it must never block on the client, so the chunk
// goes into the ring and the pump is nudged.
func (s *Session) Play(ctx context.Context, c audio.Chunk) error {
	if !s.IsAlive() {
		return fmt.Errorf("session %s not active", s.SessionID)
	}
	if err := s.ring.Enqueue(c); err != nil {
		return fmt.Errorf("buffer audio chunk: %w", err)
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// FlushBuffered drops audio staged for the client but not yet written.
// This is how barge-in reaches the transport: the playback layer calls
// it when it discards an utterance, and without it the write pump
// would keep streaming the interrupted reply.
func (s *Session) FlushBuffered() int {
	dropped := s.ring.Drain()
	if dropped > 0 && s.logger != nil {
		s.logger.Debugf("dropped %d staged chunks for %s", dropped, s.SessionID)
	}
	return dropped
}

// WritePump drains the audio ring onto the socket. Run in its own
// goroutine; exits on ctx or the first write failure.
func (s *Session) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}

		for {
			chunk, ok := s.ring.Dequeue()
			if !ok {
				break
			}
			frame, err := chunk.MarshalBinary()
			if err != nil {
				if s.logger != nil {
					s.logger.Warnf("drop undecodable chunk for %s: %v", s.SessionID, err)
				}
				continue
			}
			if err := s.writeBinary(frame); err != nil {
				if s.logger != nil {
					s.logger.Warnf("audio write failed for %s: %v", s.SessionID, err)
				}
				return
			}
		}
	}
}

func (s *Session) writeBinary(frame []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.active {
		return fmt.Errorf("session not active")
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// SendMessage sends an enveloped JSON message to the client.
func (s *Session) SendMessage(msgType MessageType, data interface{}) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.active {
		return fmt.Errorf("session not active")
	}
	return s.conn.WriteJSON(WSMessage{
		Type:      msgType,
		Data:      data,
		SessionID: s.SessionID.String(),
		Timestamp: time.Now(),
	})
}

// SendError sends an error message to the client
func (s *Session) SendError(code, message string) error {
	return s.SendMessage(MessageTypeError, ErrorMessage{Code: code, Message: message})
}

// PushEvent hands a command to the session's pipeline without
// blocking; a full input channel is backpressure, not a deadlock.
func (s *Session) PushEvent(ev voice.SessionEvent) error {
	if s.System == nil {
		return fmt.Errorf("session system not attached")
	}
	select {
	case s.System.InputChannel() <- ev:
		return nil
	default:
		return fmt.Errorf("session input channel full")
	}
}

// Touch updates the last activity timestamp
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

// IsExpired checks if the session has been idle past timeout
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return time.Since(s.lastActive) > timeout
}

// IsAlive checks if the session is active
func (s *Session) IsAlive() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.active
}

// LastActive returns the last activity timestamp
func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

// Close marks the session inactive, drops buffered audio and closes
// the connection.
func (s *Session) Close() error {
	s.mutex.Lock()
	if !s.active {
		s.mutex.Unlock()
		return nil
	}
	s.active = false
	s.mutex.Unlock()

	s.ring.Drain()
	return s.conn.Close()
}
