package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"github.com/kolshuk/kolshuk/pkg/io/audio"
	"github.com/kolshuk/kolshuk/pkg/io/synth"
)

// the session is the playback sink, including the barge-in discard
var (
	_ synth.Sink    = (*Session)(nil)
	_ synth.Flusher = (*Session)(nil)
)

type fakeConn struct {
	mu     sync.Mutex
	json   []WSMessage
	binary [][]byte
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := v.(WSMessage); ok {
		f.json = append(f.json, msg)
	}
	return nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == ws.BinaryMessage {
		buf := make([]byte, len(data))
		copy(buf, data)
		f.binary = append(f.binary, buf)
	}
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {} // tests drive the session directly
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) binaryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.binary)
}

func (f *fakeConn) messagesOfType(t MessageType) []WSMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []WSMessage
	for _, m := range f.json {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool, what string) {
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

func TestWritePumpForwardsChunksInOrder(t *testing.T) {
	conn := &fakeConn{}
	session := NewSession(uuid.New(), "en", conn, 64*1024, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.WritePump(ctx)

	for seq := uint64(1); seq <= 3; seq++ {
		if err := session.Play(ctx, audio.Chunk{Seq: seq, Data: []byte{byte(seq)}, Timestamp: time.Now()}); err != nil {
			t.Fatalf("play seq %d: %v", seq, err)
		}
	}

	waitFor(t, func() bool { return conn.binaryCount() == 3 }, "3 binary frames")

	conn.mu.Lock()
	defer conn.mu.Unlock()
	for i, frame := range conn.binary {
		var c audio.Chunk
		if err := c.UnmarshalBinary(frame); err != nil {
			t.Fatalf("frame %d does not decode: %v", i, err)
		}
		if c.Seq != uint64(i+1) {
			t.Fatalf("frame %d carries seq %d", i, c.Seq)
		}
	}
}

func TestFlushBufferedStopsInterruptedAudio(t *testing.T) {
	conn := &fakeConn{}
	session := NewSession(uuid.New(), "en", conn, 64*1024, nil)

	// stage an utterance while the pump is not draining, as with a
	// slow client
	for seq := uint64(1); seq <= 3; seq++ {
		if err := session.Play(context.Background(), audio.Chunk{Seq: seq, Data: []byte{byte(seq)}, Timestamp: time.Now()}); err != nil {
			t.Fatalf("play seq %d: %v", seq, err)
		}
	}
	if dropped := session.FlushBuffered(); dropped != 3 {
		t.Fatalf("expected 3 staged chunks dropped, got %d", dropped)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.WritePump(ctx)

	// only the fresh utterance reaches the client
	if err := session.Play(ctx, audio.Chunk{Seq: 1, Data: []byte{9}, Timestamp: time.Now()}); err != nil {
		t.Fatalf("play after flush: %v", err)
	}
	waitFor(t, func() bool { return conn.binaryCount() == 1 }, "one binary frame")
	time.Sleep(20 * time.Millisecond)
	if got := conn.binaryCount(); got != 1 {
		t.Fatalf("interrupted audio leaked to the client, %d frames written", got)
	}

	var c audio.Chunk
	conn.mu.Lock()
	frame := conn.binary[0]
	conn.mu.Unlock()
	if err := c.UnmarshalBinary(frame); err != nil {
		t.Fatalf("frame does not decode: %v", err)
	}
	if c.Seq != 1 || len(c.Data) != 1 || c.Data[0] != 9 {
		t.Fatalf("expected the fresh chunk on the wire, got seq %d data %v", c.Seq, c.Data)
	}
}

func TestPlayAfterCloseFails(t *testing.T) {
	conn := &fakeConn{}
	session := NewSession(uuid.New(), "en", conn, 64*1024, nil)

	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !conn.closed {
		t.Fatal("underlying connection not closed")
	}
	if err := session.Play(context.Background(), audio.Chunk{Seq: 1, Data: []byte{1}}); err == nil {
		t.Fatal("expected Play on closed session to fail")
	}
	if err := session.SendMessage(MessageTypeEvent, nil); err == nil {
		t.Fatal("expected SendMessage on closed session to fail")
	}
}

func TestSessionExpiry(t *testing.T) {
	conn := &fakeConn{}
	session := NewSession(uuid.New(), "en", conn, 1024, nil)

	if session.IsExpired(time.Minute) {
		t.Fatal("fresh session must not be expired")
	}
	time.Sleep(15 * time.Millisecond)
	if !session.IsExpired(10 * time.Millisecond) {
		t.Fatal("idle session past timeout must be expired")
	}
	session.Touch()
	if session.IsExpired(10 * time.Millisecond) {
		t.Fatal("touched session must not be expired")
	}
}
