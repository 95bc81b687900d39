// Package inflate implements a resumable DEFLATE (RFC 1951) decompressor
// with optional ZLIB (RFC 1950) framing. It decodes stored, fixed-Huffman,
// and dynamic-Huffman blocks into a caller-provided, fixed-capacity
// destination buffer, and can suspend between arbitrary input chunks and
// resume without re-reading consumed bits.
//
// Grounded on coreos/pkg's zran/flate package: the block-decode algorithms
// (readHuffman, huffmanBlock, dataBlock) come from there, restructured
// around an explicit tagged state machine instead of zran/flate's
// goto-driven Step chain.
package inflate

import (
	"errors"

	"github.com/coreos/inflate/bitreader"
	"github.com/coreos/inflate/capnslog"
	"github.com/coreos/inflate/chunk"
	"github.com/coreos/inflate/confutil"
	"github.com/coreos/inflate/huffman"
)

var log = capnslog.NewPackageLogger("github.com/coreos/inflate", "inflate")

// errUnfinished is this package's internal control-flow signal: a phase
// handler could not complete because the bit reader ran dry in soft mode.
// It never escapes the package; Feed/Run translate it into StatusUnfinished
// or, in Run's fatal mode, it never occurs at all (bitreader.Ensure reports
// a real error instead).
var errUnfinished = errors.New("inflate: unfinished")

// Status is the outcome of a streaming Feed call.
type Status int

const (
	// StatusOK means the stream reached DONE during this call (it may
	// have already been done before the call, too).
	StatusOK Status = iota
	// StatusUnfinished means more input is needed before progress can
	// continue; the caller should call Feed again once more data is
	// available.
	StatusUnfinished
	// StatusNoop means nothing happened: Feed was called with no new
	// bytes before any input had ever been appended.
	StatusNoop
)

// Flag bits for New.
const (
	// FlagZLIB selects the ZLIB (RFC 1950) wrapper: a 2-byte header is
	// read and validated before the first DEFLATE block.
	FlagZLIB = 1 << 0
)

type state int

const (
	stNone state = iota
	stHeader
	stBlockHeader
	stRaw
	stFixed
	stDynHeader
	stDynCodelen
	stDynBlock
	stDone
)

type blkSub int

const (
	blkNone blkSub = iota
	blkDist
)

type blkState struct {
	sub    blkSub
	length int
}

type dynState struct {
	hlit, hdist, hclen int
	n                  int
	codeLenCursor      int
	codelens           [19]int
	lens               []int
	i                  int
	pendingRepeatSym   int
	tclen              *huffman.Table
}

// Stream is one inflater instance: a destination buffer, an input chunk
// store, a bit reader over it, and the state machine's current phase and
// sub-state. A Stream is owned by one caller at a time; see SPEC_FULL.md
// §5 for the concurrency model (distinct Streams are independent).
type Stream struct {
	dst  []byte
	dpos int

	zlib bool

	cstore *chunk.Store
	br     *bitreader.Reader

	state state

	bfinal bool

	rawLen       int
	rawRemaining int
	rawResuming  bool

	dyn dynState
	blk blkState

	tlit, tdist *huffman.Table

	appended bool
}

// New creates a Stream that decodes into dst (whose length is the fixed
// output capacity) according to flags, using the chunk store's built-in
// pooling defaults.
func New(dst []byte, flags int) *Stream {
	return newStream(dst, flags, chunk.New())
}

// NewTuned is New, but applies the pool-sizing knobs loaded via
// confutil.Load instead of the chunk package's defaults. A zero field in
// tuning leaves the corresponding default in place.
func NewTuned(dst []byte, flags int, tuning confutil.Tuning) *Stream {
	var opts []chunk.Option
	if tuning.SmallAppendBytes > 0 {
		opts = append(opts, chunk.WithSmallAppendSize(tuning.SmallAppendBytes))
	}
	if tuning.ChunkPoolSize > 0 {
		opts = append(opts, chunk.WithPoolChunkSize(tuning.ChunkPoolSize))
	}
	return newStream(dst, flags, chunk.New(opts...))
}

func newStream(dst []byte, flags int, store *chunk.Store) *Stream {
	return &Stream{
		dst:    dst,
		zlib:   flags&FlagZLIB != 0,
		cstore: store,
		br:     bitreader.New(store),
	}
}

// Include appends a new input chunk without driving the state machine.
// Large appends borrow the caller's memory (it must remain valid until
// Destroy); small appends may be copied into a pooled buffer. See
// chunk.Store.Append.
func (s *Stream) Include(p []byte) {
	if len(p) == 0 {
		return
	}
	s.cstore.Append(p)
	s.appended = true
}

// Run drives the state machine to completion in fatal (one-shot) mode
// over whatever input has been Included so far, failing if the stream
// exhausts before DONE is reached. It returns the number of bytes written
// to dst so far (valid even on error, per §7).
func (s *Stream) Run() (int, error) {
	status, err := s.advance(bitreader.ModeFatal)
	if err != nil {
		return s.dpos, err
	}
	if status != StatusOK {
		return s.dpos, InternalError("advance returned a non-OK status in fatal mode")
	}
	return s.dpos, nil
}

// Feed appends p (if non-empty) and drives the state machine in streaming
// mode. final signals that no further bytes will ever be appended: with
// final set, a request that would otherwise yield StatusUnfinished instead
// fails with CorruptInputError (input exhaustion, §7), matching Run's
// fatal behavior. See SPEC_FULL.md §15.
func (s *Stream) Feed(p []byte, final bool) (Status, error) {
	if s.state == stDone {
		return StatusOK, nil
	}
	if len(p) == 0 && !s.appended && !final {
		return StatusNoop, nil
	}
	if len(p) > 0 {
		s.cstore.Append(p)
		s.appended = true
	}

	mode := bitreader.ModeSoft
	if final {
		mode = bitreader.ModeFatal
	}
	status, err := s.advance(mode)
	if err != nil {
		return 0, err
	}
	return status, nil
}

// Pos reports the number of bytes written to dst so far.
func (s *Stream) Pos() int { return s.dpos }

// Destroy releases resources owned by the stream. It is idempotent and
// safe to call on a stream that was never fed.
func (s *Stream) Destroy() {
	if s.cstore != nil {
		s.cstore.Destroy()
	}
	s.cstore = nil
}

// Run is the one-shot convenience entry point: decode p (which must be
// the entire compressed input) into dst and report the number of bytes
// written. It is equivalent to New(dst, flags), Include(p), then Run, then
// Destroy.
func Run(dst []byte, flags int, p []byte) (int, error) {
	s := New(dst, flags)
	defer s.Destroy()
	s.Include(p)
	return s.Run()
}

// advance runs the dispatch loop until DONE, a yield, or a fatal error.
func (s *Stream) advance(mode bitreader.Mode) (Status, error) {
	for s.state != stDone {
		err := s.step(mode)
		if err == nil {
			continue
		}
		if err == errUnfinished {
			log.Debugf("inflate: suspending at state %d, dpos=%d", s.state, s.dpos)
			return StatusUnfinished, nil
		}
		return 0, err
	}
	return StatusOK, nil
}

func (s *Stream) step(mode bitreader.Mode) error {
	log.Debugf("inflate: dispatching state %d", s.state)
	switch s.state {
	case stNone:
		if s.zlib {
			s.state = stHeader
		} else {
			s.state = stBlockHeader
		}
		return nil
	case stHeader:
		return s.stepHeader(mode)
	case stBlockHeader:
		return s.stepBlockHeader(mode)
	case stRaw:
		return s.stepRaw(mode)
	case stFixed, stDynBlock:
		return s.stepBlockBody(mode)
	case stDynHeader:
		return s.stepDynHeader(mode)
	case stDynCodelen:
		return s.stepDynCodelen(mode)
	default:
		return InternalError("unreachable state in dispatch")
	}
}
