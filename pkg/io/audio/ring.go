package audio

import (
	"errors"

	"github.com/smallnest/ringbuffer"
)

type rb_impl struct {
	size int
	rb   *ringbuffer.RingBuffer
}

func New(size int) ChunkRing {
	return &rb_impl{
		size: size,
		rb:   ringbuffer.New(size).SetBlocking(false),
	}
}

// Capacity implements ChunkRing.
func (r *rb_impl) Capacity() int {
	return r.size
}

// Len implements ChunkRing.
func (r *rb_impl) Len() int {
	return r.rb.Length()
}

// Enqueue implements ChunkRing. Chunks are stored length-prefixed;
// when the buffer is full the oldest complete chunk is evicted so the
// stream always makes forward progress.
func (r *rb_impl) Enqueue(c Chunk) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}

	requiredSpace := len(data) + 4
	if requiredSpace > r.rb.Capacity() {
		return errors.New("audio chunk too large for buffer")
	}

	for r.rb.Free() < requiredSpace {
		if !r.skipOldest() {
			r.rb.Reset()
			break
		}
	}

	sizeBytes := make([]byte, 4)
	sizeBytes[0] = byte(len(data))
	sizeBytes[1] = byte(len(data) >> 8)
	sizeBytes[2] = byte(len(data) >> 16)
	sizeBytes[3] = byte(len(data) >> 24)

	if _, err := r.rb.Write(sizeBytes); err != nil {
		return err
	}
	_, err = r.rb.Write(data)
	return err
}

// Dequeue implements ChunkRing.
func (r *rb_impl) Dequeue() (Chunk, bool) {
	if r.rb.IsEmpty() {
		return Chunk{}, false
	}

	sizeBytes := make([]byte, 4)
	n, err := r.rb.Read(sizeBytes)
	if err != nil || n != 4 {
		return Chunk{}, false
	}
	size := int(sizeBytes[0]) | int(sizeBytes[1])<<8 | int(sizeBytes[2])<<16 | int(sizeBytes[3])<<24

	data := make([]byte, size)
	n, err = r.rb.Read(data)
	if err != nil || n != size {
		return Chunk{}, false
	}

	var c Chunk
	if err := c.UnmarshalBinary(data); err != nil {
		return Chunk{}, false
	}
	return c, true
}

// Drain implements ChunkRing.
func (r *rb_impl) Drain() int {
	dropped := 0
	for !r.rb.IsEmpty() {
		if !r.skipOldest() {
			r.rb.Reset()
			break
		}
		dropped++
	}
	return dropped
}

// skipOldest discards the frontmost chunk without decoding it.
func (r *rb_impl) skipOldest() bool {
	if r.rb.IsEmpty() {
		return false
	}

	sizeBytes := make([]byte, 4)
	n, err := r.rb.Read(sizeBytes)
	if err != nil || n != 4 {
		return false
	}
	size := int(sizeBytes[0]) | int(sizeBytes[1])<<8 | int(sizeBytes[2])<<16 | int(sizeBytes[3])<<24

	if size > 0 {
		skip := make([]byte, size)
		n, err := r.rb.Read(skip)
		if err != nil || n != size {
			return false
		}
	}
	return true
}
