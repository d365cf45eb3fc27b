package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/looplab/fsm"

	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/io/audio"
)

// ErrSessionClosed is returned by every operation invoked after Close.
var ErrSessionClosed = errors.New("synth: session closed")

// ErrNotConnected is returned when SendText races ahead of the
// connection handshake.
var ErrNotConnected = errors.New("synth: session not connected")

// Session states.
const (
	StateIdle       = "idle"
	StateConnecting = "connecting"
	StateConnected  = "connected"
	StateStreaming  = "streaming"
	StateClosing    = "closing"
	StateClosed     = "closed"
	StateErrored    = "errored"
)

// fsm event names
const (
	evOpen      = "open"
	evAck       = "ack"
	evSend      = "send"
	evUtterDone = "utterance_done"
	evInterrupt = "interrupt"
	evClose     = "close"
	evClosed    = "closed"
	evFail      = "fail"
)

type EventKind int

const (
	EventConnected EventKind = iota
	EventUtteranceDone
	EventErrored
	EventClosed
)

// Event notifies the session owner of lifecycle changes it must react
// to: reconnect decisions on EventErrored, turn completion on
// EventUtteranceDone.
type Event struct {
	Kind      EventKind
	SessionID string
	Err       error
}

// Options configure one session. Voice is immutable once passed in.
type Options struct {
	URL        string
	APIKey     string
	Voice      VoiceProfile
	SeedText   string
	Keepalive  time.Duration // watchdog window, default 30s
	AckTimeout time.Duration // handshake wait, default 10s
	Dial       Dialer        // default DefaultDialer
}

// Session is the duplex streaming connection to the synthesis backend.
// One per conversation session; never shared.
type Session struct {
	opts   Options
	logger *Logger.Logger

	machine *fsm.FSM
	player  *Player

	mu        sync.Mutex
	conn      Conn
	backendID string
	binarySeq uint64
	lastSeen  time.Time

	ackCh  chan struct{}
	events chan Event
	done   chan struct{}
}

func NewSession(opts Options, sink Sink, logger *Logger.Logger) *Session {
	if opts.Keepalive <= 0 {
		opts.Keepalive = 30 * time.Second
	}
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = 10 * time.Second
	}
	if opts.Dial == nil {
		opts.Dial = DefaultDialer
	}

	s := &Session{
		opts:   opts,
		logger: logger,
		ackCh:  make(chan struct{}),
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	s.player = NewPlayer(sink, s.onUtteranceDone, s.onPlaybackError)
	s.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: evOpen, Src: []string{StateIdle}, Dst: StateConnecting},
			{Name: evAck, Src: []string{StateConnecting}, Dst: StateConnected},
			{Name: evSend, Src: []string{StateConnected, StateStreaming}, Dst: StateStreaming},
			{Name: evUtterDone, Src: []string{StateStreaming}, Dst: StateConnected},
			{Name: evInterrupt, Src: []string{StateStreaming}, Dst: StateConnected},
			{Name: evClose, Src: []string{StateIdle, StateConnecting, StateConnected, StateStreaming, StateErrored}, Dst: StateClosing},
			{Name: evClosed, Src: []string{StateClosing}, Dst: StateClosed},
			{Name: evFail, Src: []string{StateConnecting, StateConnected, StateStreaming}, Dst: StateErrored},
		},
		fsm.Callbacks{},
	)
	return s
}

// State reports the current machine state.
func (s *Session) State() string {
	return s.machine.Current()
}

// Events is the owner-facing notification channel.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Open dials the backend, sends the initialization frame and blocks
// until the connection acknowledgment arrives or the handshake times
// out.
func (s *Session) Open(ctx context.Context) error {
	if s.machine.Is(StateClosed) || s.machine.Is(StateClosing) {
		return ErrSessionClosed
	}
	if err := s.machine.Event(ctx, evOpen); err != nil {
		return fmt.Errorf("synth: open from %s: %w", s.machine.Current(), err)
	}

	header := http.Header{}
	if s.opts.APIKey != "" {
		header.Set("Authorization", "Bearer "+s.opts.APIKey)
	}

	conn, err := s.opts.Dial(ctx, s.opts.URL, header)
	if err != nil {
		s.fail(ctx, fmt.Errorf("dial synthesis backend: %w", err))
		return fmt.Errorf("synth: dial: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.lastSeen = time.Now()
	s.mu.Unlock()

	init := Frame{
		Type:     FrameInit,
		Voice:    &s.opts.Voice,
		SeedText: s.opts.SeedText,
	}
	if err := conn.WriteJSON(init); err != nil {
		s.fail(ctx, err)
		return fmt.Errorf("synth: send init: %w", err)
	}

	go s.readLoop()
	go s.watchdog()

	select {
	case <-s.ackCh:
		return nil
	case <-time.After(s.opts.AckTimeout):
		s.fail(ctx, errors.New("handshake timeout"))
		return errors.New("synth: handshake timeout")
	case <-ctx.Done():
		s.fail(ctx, ctx.Err())
		return ctx.Err()
	}
}

// SendText enqueues one text segment for synthesis. flush marks the
// final segment of the utterance.
func (s *Session) SendText(ctx context.Context, segment string, flush bool) error {
	switch {
	case s.machine.Is(StateClosed) || s.machine.Is(StateClosing):
		return ErrSessionClosed
	case s.machine.Is(StateErrored):
		return fmt.Errorf("synth: session errored")
	}
	if err := s.machine.Event(ctx, evSend); err != nil {
		return fmt.Errorf("%w: state %s", ErrNotConnected, s.machine.Current())
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	frame := Frame{Type: FrameSendText, Text: segment, Flush: flush}
	if err := conn.WriteJSON(frame); err != nil {
		s.fail(ctx, fmt.Errorf("send segment: %w", err))
		return fmt.Errorf("synth: send segment: %w", err)
	}
	return nil
}

// Interrupt is the barge-in path: stop playback, drop everything
// queued, tell the backend to abort in-flight synthesis and fall back
// to connected. Safe to call when nothing is streaming.
func (s *Session) Interrupt(ctx context.Context) error {
	if s.machine.Is(StateClosed) || s.machine.Is(StateClosing) {
		return ErrSessionClosed
	}
	if !s.machine.Is(StateStreaming) {
		return nil
	}

	dropped := s.player.Flush()
	s.rearmBinarySeq()
	if s.logger != nil {
		s.logger.Debugf("barge-in: dropped %d queued chunks", dropped)
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		if err := conn.WriteJSON(Frame{Type: FrameCancel, EventID: NewEventID()}); err != nil && s.logger != nil {
			s.logger.Warnf("cancel frame failed: %v", err)
		}
	}

	if err := s.machine.Event(ctx, evInterrupt); err != nil {
		return fmt.Errorf("synth: interrupt: %w", err)
	}
	return nil
}

// Close tears the session down. Terminal: every later call fails with
// ErrSessionClosed. Closing twice is itself an ErrSessionClosed.
func (s *Session) Close() error {
	ctx := context.Background()
	if s.machine.Is(StateClosed) || s.machine.Is(StateClosing) {
		return ErrSessionClosed
	}
	s.machine.Event(ctx, evClose)

	s.player.Flush()
	close(s.done)

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}

	s.machine.Event(ctx, evClosed)
	s.emit(Event{Kind: EventClosed, SessionID: s.backendID})
	return nil
}

// readLoop owns the inbound side of the connection.
func (s *Session) readLoop() {
	ctx := context.Background()
	for {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}

		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			s.fail(ctx, fmt.Errorf("read: %w", err))
			return
		}

		s.mu.Lock()
		s.lastSeen = time.Now()
		s.mu.Unlock()

		if msgType == websocket.BinaryMessage { // raw audio, next in sequence
			s.mu.Lock()
			s.binarySeq++
			seq := s.binarySeq
			s.mu.Unlock()
			s.player.Submit(ctx, audio.Chunk{Seq: seq, Data: payload, Timestamp: time.Now()})
			continue
		}

		var frame Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			if s.logger != nil {
				s.logger.Warnf("undecodable control frame: %v", err)
			}
			continue
		}
		s.handleFrame(ctx, frame)
	}
}

func (s *Session) handleFrame(ctx context.Context, frame Frame) {
	switch frame.Type {
	case FrameConnectionAck:
		s.mu.Lock()
		s.backendID = frame.SessionID
		s.mu.Unlock()
		if err := s.machine.Event(ctx, evAck); err == nil {
			close(s.ackCh)
			s.emit(Event{Kind: EventConnected, SessionID: frame.SessionID})
		}

	case FramePing:
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			pong := Frame{Type: FramePong, EventID: frame.EventID}
			if err := conn.WriteJSON(pong); err != nil {
				s.fail(ctx, fmt.Errorf("pong: %w", err))
			}
		}

	case FrameAudioEvent:
		s.player.Submit(ctx, audio.Chunk{
			Seq:       frame.Seq,
			Data:      frame.Audio,
			Final:     frame.Final,
			Timestamp: time.Now(),
		})

	case FrameError:
		s.fail(ctx, fmt.Errorf("backend error %s: %s", frame.Code, frame.Message))

	default:
		if s.logger != nil {
			s.logger.Debugf("ignoring frame type %q", frame.Type)
		}
	}
}

// watchdog enforces the keepalive window: a connection with no inbound
// traffic for the whole window is dead.
func (s *Session) watchdog() {
	interval := s.opts.Keepalive / 4
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			idle := time.Since(s.lastSeen)
			s.mu.Unlock()
			if idle > s.opts.Keepalive {
				s.fail(context.Background(), fmt.Errorf("keepalive window exceeded (%s)", s.opts.Keepalive))
				return
			}
		}
	}
}

// rearmBinarySeq restarts raw-audio numbering. Must track the player:
// whenever its cursor resets to 1, the next binary frame is seq 1.
func (s *Session) rearmBinarySeq() {
	s.mu.Lock()
	s.binarySeq = 0
	s.mu.Unlock()
}

// onUtteranceDone is the player callback for the end-of-utterance
// marker.
func (s *Session) onUtteranceDone() {
	ctx := context.Background()
	s.rearmBinarySeq()
	s.machine.Event(ctx, evUtterDone)
	s.emit(Event{Kind: EventUtteranceDone, SessionID: s.backendID})
}

// onPlaybackError drops the utterance and returns to connected; a bad
// chunk must not kill the connection.
func (s *Session) onPlaybackError(err error) {
	s.rearmBinarySeq()
	if errors.Is(err, context.Canceled) {
		return // barge-in cancellation, already handled
	}
	if s.logger != nil {
		s.logger.Warnf("playback error, dropping utterance: %v", err)
	}
	s.machine.Event(context.Background(), evUtterDone)
}

// fail moves the machine to errored (when legal) and notifies the
// owner exactly once per failure.
func (s *Session) fail(ctx context.Context, err error) {
	if s.machine.Is(StateClosed) || s.machine.Is(StateClosing) || s.machine.Is(StateErrored) {
		return
	}
	if ferr := s.machine.Event(ctx, evFail); ferr != nil {
		return
	}
	if s.logger != nil {
		s.logger.Errorf("synthesis session errored: %v", err)
	}
	s.emit(Event{Kind: EventErrored, SessionID: s.backendID, Err: err})
}

func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
		// owner is not draining; drop rather than block the read loop
	}
}

// NewEventID mints ids for outbound frames that need correlation.
func NewEventID() string {
	return uuid.NewString()
}
