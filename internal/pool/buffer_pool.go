// Package pool provides small sync.Pool wrappers reused across the stream
// processors.
package pool

import (
	"bytes"
	"sync"
)

// BufferPool hands out bytes.Buffers for per-record encoding so a long
// batch run does not allocate one buffer per record.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a pool whose buffers start at the given capacity.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, size))
			},
		},
	}
}

// Get retrieves a buffer from the pool or creates a new one.
func (bp *BufferPool) Get() *bytes.Buffer {
	return bp.pool.Get().(*bytes.Buffer)
}

// Put resets a buffer and returns it to the pool for reuse.
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	buf.Reset()
	bp.pool.Put(buf)
}
