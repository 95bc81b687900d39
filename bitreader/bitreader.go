// Package bitreader implements the two-register (front/back) LSB-first bit
// buffer that sits between the chunk store and the inflater's block engine.
// It refills from a *chunk.Store on demand and can operate in either fatal
// (one-shot) or soft (streaming) exhaustion mode.
//
// Grounded on the REFILL_STREAM family of macros in the original library's
// stream driver: two 64-bit shift registers, front (bits/nbits) and back
// (pbits/npbits), with back drained into front a chunk at a time and
// refilled from the byte stream only once fully drained.
package bitreader

import (
	"errors"

	"github.com/coreos/inflate/chunk"
)

// ErrExhausted is returned by Ensure/CopyBytes in fatal mode when the chunk
// store cannot supply enough bits/bytes to satisfy the request and no more
// input is coming.
var ErrExhausted = errors.New("bitreader: input exhausted")

// Mode selects how a Reader behaves when it cannot satisfy a request.
type Mode int

const (
	// ModeFatal treats exhaustion as a terminal error (one-shot Run).
	ModeFatal Mode = iota
	// ModeSoft treats exhaustion as "not yet" (streaming Feed): the
	// caller is expected to save state and retry after the next append.
	ModeSoft
)

// Reader is a bit buffer layered over a *chunk.Store. The zero Reader is
// not usable; construct with New.
type Reader struct {
	src *chunk.Store

	front  uint64
	nfront uint
	back   uint64
	nback  uint

	cur     *chunk.Chunk
	started bool
	pos     int
}

// New creates a Reader that pulls bytes from src as needed. src's chunk
// queue may still be empty at this point; the reader always consults it
// lazily.
func New(src *chunk.Store) *Reader {
	return &Reader{src: src}
}

// Ensure guarantees at least n bits (n <= 57, leaving headroom so a caller
// can always ask for one more byte's worth without overflowing 64 bits) are
// available via Peek, refilling from back and then from the underlying
// chunk source as needed.
//
// In ModeFatal, failing to reach n bits because input is exhausted returns
// ErrExhausted. In ModeSoft it returns (false, nil): the caller must save
// its own state and report *unfinished* upstream.
func (r *Reader) Ensure(n uint, mode Mode) (ok bool, err error) {
	if n > 57 {
		panic("bitreader: Ensure request exceeds 57 bits")
	}
	for r.nfront < n {
		if r.nback > 0 {
			room := 64 - r.nfront
			take := r.nback
			if take > room {
				// Move whole bytes only, so back never holds a partial
				// byte and AlignByte's front-only alignment stays exact.
				take = room &^ 7
			}
			mask := (uint64(1) << take) - 1
			r.front |= (r.back & mask) << r.nfront
			r.nfront += take
			r.back >>= take
			r.nback -= take
			continue
		}
		r.fillBack()
		if r.nback == 0 {
			if mode == ModeFatal {
				return false, ErrExhausted
			}
			return false, nil
		}
	}
	return true, nil
}

// fillBack tops up the back register with whole bytes pulled from the
// chunk source, stopping once it holds 56-64 bits or input runs out.
func (r *Reader) fillBack() {
	for r.nback <= 56 {
		b, ok := r.nextByte()
		if !ok {
			return
		}
		r.back |= uint64(b) << r.nback
		r.nback += 8
	}
}

// nextByte pulls the next raw input byte, advancing across chunk links (and
// picking up in-place tail growth transparently, since View() always
// reflects the chunk's current extent).
func (r *Reader) nextByte() (byte, bool) {
	for {
		if !r.started {
			head := r.src.Head()
			if head == nil {
				return 0, false
			}
			r.cur = head
			r.pos = 0
			r.started = true
		}
		if r.cur == nil {
			return 0, false
		}
		view := r.cur.View()
		if r.pos < len(view) {
			b := view[r.pos]
			r.pos++
			return b, true
		}
		next := r.cur.Next()
		if next == nil {
			return 0, false
		}
		r.cur = next
		r.pos = 0
	}
}

// Peek returns the low n bits of front (n <= nfront required by the
// caller's prior successful Ensure).
func (r *Reader) Peek(n uint) uint64 {
	if n == 0 {
		return 0
	}
	return r.front & ((uint64(1) << n) - 1)
}

// Consume discards the low n bits of front. n must not exceed the front
// bits currently available.
func (r *Reader) Consume(n uint) {
	r.front >>= n
	r.nfront -= n
}

// AlignByte discards whatever sub-byte residue is in front, leaving nfront
// a multiple of 8. Bytes already resident in front or back are not
// discarded by this call; see DrainFrontBytes/DrainBackBytes.
func (r *Reader) AlignByte() {
	r.Consume(r.nfront % 8)
}

// DrainFrontBytes copies whole bytes currently resident in front into dst,
// consuming them from front, stopping when dst is full or front no longer
// holds a whole byte. It reports the number of bytes copied.
func (r *Reader) DrainFrontBytes(dst []byte) int {
	n := 0
	for n < len(dst) && r.nfront >= 8 {
		dst[n] = byte(r.front)
		r.front >>= 8
		r.nfront -= 8
		n++
	}
	return n
}

// DrainBackBytes copies whole bytes currently resident in back into dst,
// the same way DrainFrontBytes does for front. Used once front has been
// fully drained during a stored-block copy.
func (r *Reader) DrainBackBytes(dst []byte) int {
	n := 0
	for n < len(dst) && r.nback >= 8 {
		dst[n] = byte(r.back)
		r.back >>= 8
		r.nback -= 8
		n++
	}
	return n
}

// CopyBytes copies raw bytes directly from the chunk cursor (bypassing
// front/back, which a stored-block copy has already drained), crossing
// chunk links as needed. It returns the number of bytes copied and ok=false
// if input ran out before dst was filled — in ModeSoft that means "save
// state and retry later"; in ModeFatal it additionally returns
// ErrExhausted.
func (r *Reader) CopyBytes(dst []byte, mode Mode) (n int, ok bool, err error) {
	for n < len(dst) {
		b, have := r.nextByte()
		if !have {
			if mode == ModeFatal {
				return n, false, ErrExhausted
			}
			return n, false, nil
		}
		dst[n] = b
		n++
	}
	return n, true, nil
}

// Available reports the number of bits currently buffered in front, for
// callers (tests, diagnostics) that want to inspect reader state without
// triggering a refill.
func (r *Reader) Available() uint { return r.nfront }
