package synth

import (
	"context"
	"sync"

	"github.com/kolshuk/kolshuk/pkg/io/audio"
)

// Sink plays one chunk to completion. Play blocks for the chunk's
// duration; the player never calls it concurrently.
type Sink interface {
	Play(ctx context.Context, chunk audio.Chunk) error
}

// Flusher is implemented by sinks that buffer audio downstream of
// Play. Flush propagates into that buffer too, so chunks the sink has
// already accepted are discarded along with the parked ones.
type Flusher interface {
	FlushBuffered() int
}

// Player enforces the playback discipline: chunks play strictly in
// sequence order, one at a time, regardless of arrival order. Sequence
// numbers restart at 1 for each utterance.
type Player struct {
	mu      sync.Mutex
	sink    Sink
	next    uint64
	gen     uint64 // bumped by Flush; stale drain iterations abandon their cursor
	pending map[uint64]audio.Chunk
	playing bool

	onDone  func()      // end-of-utterance marker consumed
	onError func(error) // playback failed, queue dropped
}

func NewPlayer(sink Sink, onDone func(), onError func(error)) *Player {
	return &Player{
		sink:    sink,
		next:    1,
		pending: make(map[uint64]audio.Chunk),
		onDone:  onDone,
		onError: onError,
	}
}

// Submit hands the player one chunk. Out-of-order chunks are parked
// until the gap fills; in-order chunks play immediately in the calling
// goroutine. A chunk never interrupts one already playing.
func (p *Player) Submit(ctx context.Context, c audio.Chunk) {
	p.mu.Lock()
	p.pending[c.Seq] = c
	if p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.drain(ctx)
}

// drain plays every consecutive chunk starting at next. Caller holds
// the lock; drain releases it around Play calls and before returning.
func (p *Player) drain(ctx context.Context) {
	for {
		c, ok := p.pending[p.next]
		if !ok {
			p.playing = false
			p.mu.Unlock()
			return
		}
		delete(p.pending, p.next)
		gen := p.gen
		p.mu.Unlock()

		err := p.sink.Play(ctx, c)

		p.mu.Lock()
		if p.gen != gen {
			// Flush raced the Play call: the utterance this chunk
			// belonged to is gone and next already points at the fresh
			// one. Restart the loop on the reset cursor.
			continue
		}
		if err != nil {
			// corrupt or unplayable chunk: discard the rest of the
			// utterance rather than retrying
			p.pending = make(map[uint64]audio.Chunk)
			p.next = 1
			p.playing = false
			p.mu.Unlock()
			if p.onError != nil {
				p.onError(err)
			}
			return
		}
		if c.Final {
			p.pending = make(map[uint64]audio.Chunk)
			p.next = 1
			p.playing = false
			p.mu.Unlock()
			if p.onDone != nil {
				p.onDone()
			}
			return
		}
		p.next++
	}
}

// Flush drops everything queued and rearms for a fresh utterance,
// including audio the sink has buffered but not yet played. Returns
// the number of chunks discarded. Used on barge-in.
func (p *Player) Flush() int {
	p.mu.Lock()
	dropped := len(p.pending)
	p.pending = make(map[uint64]audio.Chunk)
	p.next = 1
	p.gen++
	p.mu.Unlock()

	if f, ok := p.sink.(Flusher); ok {
		dropped += f.FlushBuffered()
	}
	return dropped
}

// QueueLen reports how many chunks are parked waiting for their turn.
func (p *Player) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
