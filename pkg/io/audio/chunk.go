package audio

import (
	"encoding/binary"
	"errors"
	"time"
)

// Chunk is one synthesized audio fragment on its way to the client.
// Seq orders chunks within an utterance; Final marks the last one.
type Chunk struct {
	Seq       uint64
	Data      []byte
	Final     bool
	Timestamp time.Time
}

var errShortFrame = errors.New("audio frame truncated")

// Format: seq(8) + timestamp(8) + final(1) + dataLen(4) + data
func (c *Chunk) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8+8+1+4+len(c.Data))

	offset := 0
	binary.LittleEndian.PutUint64(buf[offset:], c.Seq)
	offset += 8

	binary.LittleEndian.PutUint64(buf[offset:], uint64(c.Timestamp.UnixNano()))
	offset += 8

	if c.Final {
		buf[offset] = 1
	}
	offset++

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(c.Data)))
	offset += 4

	copy(buf[offset:], c.Data)
	return buf, nil
}

func (c *Chunk) UnmarshalBinary(data []byte) error {
	if len(data) < 21 {
		return errShortFrame
	}

	offset := 0
	c.Seq = binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	c.Timestamp = time.Unix(0, int64(binary.LittleEndian.Uint64(data[offset:])))
	offset += 8

	c.Final = data[offset] == 1
	offset++

	dataLen := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	if len(data[offset:]) < int(dataLen) {
		return errShortFrame
	}
	c.Data = make([]byte, dataLen)
	copy(c.Data, data[offset:offset+int(dataLen)])
	return nil
}

// ChunkRing stages outbound chunks between the synthesis stream and
// the transport write loop. Overflow drops the oldest chunk first.
type ChunkRing interface {
	Enqueue(c Chunk) error
	Dequeue() (Chunk, bool)
	Len() int
	Capacity() int
	// Drain discards everything buffered and reports how many chunks
	// were dropped. Used on barge-in.
	Drain() int
}
