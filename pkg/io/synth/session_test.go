package synth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type inboundMsg struct {
	msgType int
	payload []byte
}

// fakeConn scripts the backend side of the protocol.
type fakeConn struct {
	mu      sync.Mutex
	writes  []Frame
	inbound chan inboundMsg
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan inboundMsg, 32)}
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	frame, ok := v.(Frame)
	if !ok {
		return errors.New("unexpected write type")
	}
	f.writes = append(f.writes, frame)
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-f.inbound
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return msg.msgType, msg.payload, nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.inbound) })
	return nil
}

func (f *fakeConn) pushFrame(t *testing.T, frame Frame) {
	t.Helper()
	payload, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	f.inbound <- inboundMsg{msgType: websocket.TextMessage, payload: payload}
}

func (f *fakeConn) framesOfType(ft FrameType) []Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Frame
	for _, fr := range f.writes {
		if fr.Type == ft {
			out = append(out, fr)
		}
	}
	return out
}

func newTestSession(t *testing.T, sink Sink, keepalive time.Duration) (*Session, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	opts := Options{
		URL:       "wss://synth.test/stream",
		Voice:     VoiceProfile{VoiceID: "voice-1", Language: "en"},
		Keepalive: keepalive,
		Dial: func(ctx context.Context, url string, header http.Header) (Conn, error) {
			return conn, nil
		},
	}
	return NewSession(opts, sink, nil), conn
}

func openSession(t *testing.T, s *Session, conn *fakeConn) {
	t.Helper()
	conn.pushFrame(t, Frame{Type: FrameConnectionAck, SessionID: "backend-1"})
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.State() != StateConnected {
		t.Fatalf("expected connected after handshake, got %s", s.State())
	}
}

func waitEvent(t *testing.T, s *Session, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %d", kind)
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestOpenHandshake(t *testing.T) {
	s, conn := newTestSession(t, &recordSink{}, 0)
	openSession(t, s, conn)
	defer s.Close()

	inits := conn.framesOfType(FrameInit)
	if len(inits) != 1 {
		t.Fatalf("expected one init frame, got %d", len(inits))
	}
	if inits[0].Voice == nil || inits[0].Voice.VoiceID != "voice-1" {
		t.Errorf("init frame missing voice profile: %+v", inits[0])
	}

	ev := waitEvent(t, s, EventConnected)
	if ev.SessionID != "backend-1" {
		t.Errorf("expected backend session id, got %q", ev.SessionID)
	}
}

func TestOutOfOrderAudioPlaysInSequence(t *testing.T) {
	sink := &recordSink{}
	s, conn := newTestSession(t, sink, 0)
	openSession(t, s, conn)
	defer s.Close()

	if err := s.SendText(context.Background(), "hello shopper.", true); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if s.State() != StateStreaming {
		t.Fatalf("expected streaming after SendText, got %s", s.State())
	}

	conn.pushFrame(t, Frame{Type: FrameAudioEvent, Seq: 3, Audio: []byte{3}, Final: true})
	conn.pushFrame(t, Frame{Type: FrameAudioEvent, Seq: 1, Audio: []byte{1}})
	conn.pushFrame(t, Frame{Type: FrameAudioEvent, Seq: 2, Audio: []byte{2}})

	waitEvent(t, s, EventUtteranceDone)

	got := sink.seqs()
	want := []uint64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v played, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("playback order mismatch: expected %v, got %v", want, got)
			break
		}
	}
	if s.State() != StateConnected {
		t.Errorf("expected connected after utterance, got %s", s.State())
	}
}

func TestBargeInDropsQueueAndReturnsToConnected(t *testing.T) {
	sink := &recordSink{}
	s, conn := newTestSession(t, sink, 0)
	openSession(t, s, conn)
	defer s.Close()

	if err := s.SendText(context.Background(), "a long product pitch.", true); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	// seq 1 never arrives, so these park in the reorder queue
	conn.pushFrame(t, Frame{Type: FrameAudioEvent, Seq: 2, Audio: []byte{2}})
	conn.pushFrame(t, Frame{Type: FrameAudioEvent, Seq: 3, Audio: []byte{3}})
	waitFor(t, "chunks parked", func() bool { return s.player.QueueLen() == 2 })

	if err := s.Interrupt(context.Background()); err != nil {
		t.Fatalf("Interrupt failed: %v", err)
	}

	if s.State() != StateConnected {
		t.Errorf("expected connected after barge-in, got %s", s.State())
	}
	if got := sink.seqs(); len(got) != 0 {
		t.Errorf("expected zero playback after barge-in, got %v", got)
	}
	if s.player.QueueLen() != 0 {
		t.Errorf("queued chunks should be dropped, got %d", s.player.QueueLen())
	}
	if cancels := conn.framesOfType(FrameCancel); len(cancels) != 1 {
		t.Errorf("expected one cancel frame upstream, got %d", len(cancels))
	}
}

func TestBinaryAudioRestartsNumberingPerUtterance(t *testing.T) {
	sink := &recordSink{}
	s, conn := newTestSession(t, sink, 0)
	openSession(t, s, conn)
	defer s.Close()

	ctx := context.Background()

	// utterance one: a raw binary chunk then a final control frame
	if err := s.SendText(ctx, "first reply.", true); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	conn.inbound <- inboundMsg{msgType: websocket.BinaryMessage, payload: []byte{1}}
	conn.pushFrame(t, Frame{Type: FrameAudioEvent, Seq: 2, Audio: []byte{2}, Final: true})
	waitEvent(t, s, EventUtteranceDone)

	// utterance two: raw audio must play as seq 1 again, not park
	// behind the previous utterance's counter
	if err := s.SendText(ctx, "second reply.", true); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	conn.inbound <- inboundMsg{msgType: websocket.BinaryMessage, payload: []byte{3}}
	waitFor(t, "second utterance's binary chunk", func() bool {
		got := sink.seqs()
		return len(got) == 3 && got[2] == 1
	})

	// barge-in rearms the counter too
	if err := s.Interrupt(ctx); err != nil {
		t.Fatalf("Interrupt failed: %v", err)
	}
	if err := s.SendText(ctx, "third reply.", true); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	conn.inbound <- inboundMsg{msgType: websocket.BinaryMessage, payload: []byte{4}}
	waitFor(t, "post-interrupt binary chunk", func() bool {
		got := sink.seqs()
		return len(got) == 4 && got[3] == 1
	})
}

func TestInterruptWhileIdleIsNoop(t *testing.T) {
	s, conn := newTestSession(t, &recordSink{}, 0)
	openSession(t, s, conn)
	defer s.Close()

	if err := s.Interrupt(context.Background()); err != nil {
		t.Errorf("Interrupt on connected session should be a no-op, got %v", err)
	}
	if cancels := conn.framesOfType(FrameCancel); len(cancels) != 0 {
		t.Errorf("no cancel frame expected, got %d", len(cancels))
	}
}

func TestPingAnsweredWithEchoedEventID(t *testing.T) {
	s, conn := newTestSession(t, &recordSink{}, 0)
	openSession(t, s, conn)
	defer s.Close()

	conn.pushFrame(t, Frame{Type: FramePing, EventID: "ev-7"})

	waitFor(t, "pong reply", func() bool { return len(conn.framesOfType(FramePong)) == 1 })
	pong := conn.framesOfType(FramePong)[0]
	if pong.EventID != "ev-7" {
		t.Errorf("pong must echo the ping event id, got %q", pong.EventID)
	}
}

func TestClosedSessionRejectsEverything(t *testing.T) {
	s, conn := newTestSession(t, &recordSink{}, 0)
	openSession(t, s, conn)

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if s.State() != StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}

	if err := s.SendText(context.Background(), "too late", true); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed from SendText, got %v", err)
	}
	if err := s.Interrupt(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed from Interrupt, got %v", err)
	}
	if err := s.Close(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed from second Close, got %v", err)
	}
}

func TestSendTextBeforeOpenFails(t *testing.T) {
	s, _ := newTestSession(t, &recordSink{}, 0)

	if err := s.SendText(context.Background(), "early", false); err == nil {
		t.Error("expected error sending on an idle session")
	}
}

func TestKeepaliveWindowExpiryErrorsSession(t *testing.T) {
	s, conn := newTestSession(t, &recordSink{}, 80*time.Millisecond)
	openSession(t, s, conn)
	defer s.Close()

	ev := waitEvent(t, s, EventErrored)
	if ev.Err == nil {
		t.Error("errored event should carry the cause")
	}
	if s.State() != StateErrored {
		t.Errorf("expected errored state, got %s", s.State())
	}

	if err := s.SendText(context.Background(), "anyone there?", false); err == nil {
		t.Error("expected error sending on an errored session")
	}
}

func TestBackendErrorFrameErrorsSession(t *testing.T) {
	s, conn := newTestSession(t, &recordSink{}, 0)
	openSession(t, s, conn)
	defer s.Close()

	conn.pushFrame(t, Frame{Type: FrameError, Code: "quota", Message: "character limit reached"})

	ev := waitEvent(t, s, EventErrored)
	if ev.Err == nil {
		t.Error("expected cause on errored event")
	}
}
