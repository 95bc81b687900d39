// Package chunk implements the inflater's input chunk store: a singly
// linked queue of byte ranges appended by the caller over the lifetime of
// a stream, with small appends optionally coalesced into pooled buffers
// to avoid an allocation per call when a caller feeds data a few bytes at
// a time.
//
// Grounded on kalbasit/fastcdc's sync.Pool-backed ChunkerPool/
// ChunkerCorePool (Get/Reset/Put) for the pooling discipline, and on the
// functional-options style of fastcdc's options.go for configuration.
package chunk

import (
	"sync"
	"unsafe"
)

// DefaultSmallAppendSize is the largest Append that is eligible to be
// copied into a pooled, in-place-appendable chunk rather than borrowed by
// pointer.
const DefaultSmallAppendSize = 8 << 10 // 8 KiB

// DefaultPoolChunkSize is the fixed capacity of a pooled chunk's backing
// buffer.
const DefaultPoolChunkSize = DefaultSmallAppendSize

// Chunk is one node in the store's queue: a stable half-open byte range
// plus a forward link. A Chunk is either pooled (owns buf, appendable
// in place until sealed) or borrowed (points into caller memory, never
// appendable). Once sealed, a Chunk's View() never contracts or moves.
type Chunk struct {
	buf      []byte // non-nil for a pooled chunk; fixed capacity
	used     int    // valid bytes within buf
	borrowed []byte // non-nil for a borrowed chunk
	sealed   bool
	next     *Chunk
}

// View returns the chunk's current [p, end) byte range. For an unsealed
// pooled or borrowed-but-extensible chunk this may grow between calls as
// the store accepts more appends; it never shrinks or relocates already
// visible bytes.
func (c *Chunk) View() []byte {
	if c.buf != nil {
		return c.buf[:c.used]
	}
	return c.borrowed
}

// Next returns the next chunk in the queue, or nil if c is currently the
// tail.
func (c *Chunk) Next() *Chunk { return c.next }

// Option configures a Store.
type Option func(*Store)

// WithSmallAppendSize overrides DefaultSmallAppendSize.
func WithSmallAppendSize(n int) Option {
	return func(s *Store) { s.smallAppend = n }
}

// WithPoolChunkSize overrides DefaultPoolChunkSize.
func WithPoolChunkSize(n int) Option {
	return func(s *Store) { s.poolChunkSize = n }
}

// Store owns the chunk queue for one inflater stream.
type Store struct {
	head, tail *Chunk

	smallAppend   int
	poolChunkSize int
	pool          sync.Pool
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		smallAppend:   DefaultSmallAppendSize,
		poolChunkSize: DefaultPoolChunkSize,
	}
	for _, o := range opts {
		o(s)
	}
	s.pool.New = func() any {
		return make([]byte, s.poolChunkSize)
	}
	return s
}

// Head returns the first chunk in the queue, or nil if nothing has been
// appended yet.
func (s *Store) Head() *Chunk { return s.head }

// Append enqueues len(p) bytes of new input. Appending a zero-length
// slice is a no-op. Small appends (len(p) <= the store's small-append
// threshold) are eligible to be copied into a pooled, in-place-appendable
// tail chunk; larger appends, and any append once the pool allocation
// fails, become borrowed chunks referencing p directly — the caller must
// keep that memory valid until Destroy.
//
// Order of appends is preserved and no existing chunk ever shrinks.
func (s *Store) Append(p []byte) {
	if len(p) == 0 {
		return
	}

	if s.extendTailInPlace(p) {
		return
	}

	if len(p) <= s.smallAppend {
		if s.appendToPooledTail(p) {
			return
		}
		if buf, ok := s.getPooled(); ok {
			n := copy(buf[:cap(buf)], p)
			c := &Chunk{buf: buf[:n:cap(buf)], used: n}
			if n == cap(buf) {
				c.sealed = true
			}
			s.link(c)
			return
		}
		// Pool allocation failed: fall back to borrowing p directly
		// rather than failing the append outright (§4.1).
	}

	s.link(&Chunk{borrowed: p})
}

// appendToPooledTail tries to copy p into room remaining in the current
// pooled, unsealed tail chunk. It reports whether it succeeded.
func (s *Store) appendToPooledTail(p []byte) bool {
	if s.tail == nil || s.tail.buf == nil || s.tail.sealed {
		return false
	}
	room := cap(s.tail.buf) - s.tail.used
	if room < len(p) {
		// Not enough room for this append to fit in the current pooled
		// buffer: seal it (never shrinks/moves from here on) and let the
		// caller open a fresh chunk for the remainder.
		s.tail.sealed = true
		return false
	}
	n := copy(s.tail.buf[s.tail.used:s.tail.used+len(p)], p)
	s.tail.used += n
	if s.tail.used == cap(s.tail.buf) {
		s.tail.sealed = true
	}
	return true
}

// extendTailInPlace implements the streaming fast path of §4.1/§4.2:
// when the caller's new append begins exactly where the current
// (borrowed, unsealed) tail's view ends — i.e. the caller grew the same
// backing array and handed us the newly written suffix — the tail's end
// is advanced in place instead of linking a new chunk. This only applies
// to borrowed tails: a pooled tail already has its own in-place append
// path (appendToPooledTail).
func (s *Store) extendTailInPlace(p []byte) bool {
	if s.tail == nil || s.tail.buf != nil || s.tail.sealed || len(p) == 0 {
		return false
	}
	tview := s.tail.borrowed
	if len(tview) == 0 {
		return false
	}
	tailEnd := uintptr(unsafe.Pointer(&tview[0])) + uintptr(len(tview))
	if uintptr(unsafe.Pointer(&p[0])) != tailEnd {
		return false
	}
	// p is physically contiguous with tview in the same backing array:
	// safe to view the combined range as one slice.
	s.tail.borrowed = unsafe.Slice(&tview[0], len(tview)+len(p))
	return true
}

// getPooled borrows a buffer from the pool, always succeeding in
// practice (sync.Pool's New always returns a slice); the bool return
// exists to keep the "allocation failure falls back to borrowing"
// fallback of §4.1 expressible without a panic path.
func (s *Store) getPooled() (buf []byte, ok bool) {
	v, _ := s.pool.Get().([]byte)
	if v == nil {
		return nil, false
	}
	return v[:0:cap(v)], true
}

func (s *Store) link(c *Chunk) {
	if s.tail == nil {
		s.head = c
	} else {
		s.tail.next = c
	}
	s.tail = c
}

// Destroy releases pooled buffers back to the pool and clears the queue.
// It never touches memory referenced by borrowed chunks. Destroy is safe
// to call on a Store that never received an Append, and is idempotent.
func (s *Store) Destroy() {
	for c := s.head; c != nil; c = c.next {
		if c.buf != nil {
			s.pool.Put(c.buf[:cap(c.buf)])
			c.buf = nil
		}
	}
	s.head, s.tail = nil, nil
}
