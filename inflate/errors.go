package inflate

import "fmt"

// CorruptInputError reports a malformed DEFLATE/ZLIB stream: bad framing,
// an invalid Huffman code-length distribution, an out-of-range symbol, or
// a back-reference that reaches before the start of the output.
type CorruptInputError string

func (e CorruptInputError) Error() string {
	return fmt.Sprintf("inflate: corrupt input: %s", string(e))
}

// InternalError reports a condition this package's own invariants should
// have prevented; seeing one means a bug in this package, not in the input.
type InternalError string

func (e InternalError) Error() string { return "inflate: internal error: " + string(e) }

// capacityError gives ErrFull and ErrNoMem a type distinct from
// CorruptInputError, so a caller can tell "malformed stream" apart from
// "ran out of room/memory" with a type switch.
type capacityError string

func (e capacityError) Error() string { return "inflate: " + string(e) }

// ErrFull is returned when decoding would write past the destination
// buffer's capacity: a literal, a stored-block copy, or a back-reference
// would carry dpos beyond cap.
var ErrFull = capacityError("destination buffer exhausted")

// ErrNoMem is returned when the process-wide fixed literal/length Huffman
// table cannot be constructed. The chunk store never reports it: a failed
// pool allocation falls back to borrowing the caller's memory.
var ErrNoMem = capacityError("allocation failed")

// ErrFDICT is returned when a ZLIB header requests a preset dictionary;
// this package never accepts one (see SPEC_FULL.md's Open Question
// decisions).
var ErrFDICT = CorruptInputError("FDICT preset dictionary is not supported")
