package audio

import (
	"testing"
	"time"
)

func TestChunkRingRoundTrip(t *testing.T) {
	ring := New(1024)

	if ring.Capacity() != 1024 {
		t.Errorf("Expected capacity 1024, got %d", ring.Capacity())
	}
	if ring.Len() != 0 {
		t.Errorf("Expected empty ring, got length %d", ring.Len())
	}

	chunk := Chunk{
		Seq:       1,
		Data:      []byte{1, 2, 3, 4, 5},
		Final:     true,
		Timestamp: time.Now(),
	}

	if err := ring.Enqueue(chunk); err != nil {
		t.Fatalf("Failed to enqueue: %v", err)
	}
	if ring.Len() == 0 {
		t.Error("Ring should not be empty after enqueue")
	}

	got, ok := ring.Dequeue()
	if !ok {
		t.Fatal("Failed to dequeue")
	}
	if got.Seq != chunk.Seq {
		t.Errorf("Expected seq %d, got %d", chunk.Seq, got.Seq)
	}
	if !got.Final {
		t.Error("Final flag lost in round trip")
	}
	if len(got.Data) != len(chunk.Data) {
		t.Fatalf("Expected data length %d, got %d", len(chunk.Data), len(got.Data))
	}
	for i, b := range got.Data {
		if b != chunk.Data[i] {
			t.Errorf("Data mismatch at index %d: expected %d, got %d", i, chunk.Data[i], b)
		}
	}
}

func TestChunkRingOrderPreserved(t *testing.T) {
	ring := New(1024)

	for i := 0; i < 3; i++ {
		err := ring.Enqueue(Chunk{
			Seq:       uint64(i + 1),
			Data:      []byte{byte(i)},
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("Failed to enqueue chunk %d: %v", i, err)
		}
	}

	for i := 0; i < 3; i++ {
		c, ok := ring.Dequeue()
		if !ok {
			t.Fatalf("Failed to dequeue chunk %d", i)
		}
		if c.Seq != uint64(i+1) {
			t.Errorf("Expected seq %d, got %d", i+1, c.Seq)
		}
	}
}

func TestChunkRingOverflowDropsOldest(t *testing.T) {
	// Room for roughly two chunks; a third evicts the first.
	ring := New(96)

	for i := 1; i <= 3; i++ {
		err := ring.Enqueue(Chunk{
			Seq:       uint64(i),
			Data:      make([]byte, 8),
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("Failed to enqueue chunk %d: %v", i, err)
		}
	}

	c, ok := ring.Dequeue()
	if !ok {
		t.Fatal("Expected a chunk after overflow")
	}
	if c.Seq == 1 {
		t.Error("Oldest chunk should have been evicted on overflow")
	}
}

func TestChunkRingDrain(t *testing.T) {
	ring := New(1024)

	for i := 0; i < 4; i++ {
		if err := ring.Enqueue(Chunk{Seq: uint64(i), Data: []byte{0xAB}, Timestamp: time.Now()}); err != nil {
			t.Fatalf("Failed to enqueue: %v", err)
		}
	}

	if dropped := ring.Drain(); dropped != 4 {
		t.Errorf("Expected 4 dropped chunks, got %d", dropped)
	}
	if ring.Len() != 0 {
		t.Errorf("Ring should be empty after drain, got length %d", ring.Len())
	}
	if _, ok := ring.Dequeue(); ok {
		t.Error("Dequeue should fail on drained ring")
	}
}

func TestChunkTooLarge(t *testing.T) {
	ring := New(32)

	err := ring.Enqueue(Chunk{Seq: 1, Data: make([]byte, 64), Timestamp: time.Now()})
	if err == nil {
		t.Error("Expected error for oversized chunk")
	}
}
