package inflate

import (
	"math/bits"

	"github.com/coreos/inflate/bitreader"
	"github.com/coreos/inflate/huffman"
)

// stepRaw handles a stored (BTYPE=00) block: align to a byte boundary,
// read and validate the LEN/NLEN header, then copy LEN bytes straight
// through to dst.
//
// Grounded on original_source/src/infl/stream.c's infl_strm_raw: align the
// front register only (never the back register directly), refill for the
// 32-bit LEN/NLEN header, then drain whole bytes already resident in
// front, then back, before falling through to a direct byte-for-byte copy
// from the chunk cursor. That ordering is preserved here exactly, via
// DrainFrontBytes/DrainBackBytes/CopyBytes, rather than re-derived.
func (s *Stream) stepRaw(mode bitreader.Mode) error {
	if !s.rawResuming {
		s.br.AlignByte()
		ok, err := s.br.Ensure(32, mode)
		if err != nil {
			return CorruptInputError("truncated stored-block header")
		}
		if !ok {
			return errUnfinished
		}
		header := s.br.Peek(32)
		s.br.Consume(32)

		length := uint16(header)
		nlen := uint16(header >> 16)
		if length != ^nlen {
			return CorruptInputError("stored block LEN/NLEN mismatch")
		}
		if s.dpos+int(length) > len(s.dst) {
			log.Warningf("inflate: stored block of %d bytes exceeds remaining capacity", length)
			return ErrFull
		}
		s.rawLen = int(length)
		s.rawRemaining = int(length)
		s.rawResuming = true
	}

	for s.rawRemaining > 0 {
		n := s.br.DrainFrontBytes(s.dst[s.dpos : s.dpos+s.rawRemaining])
		s.dpos += n
		s.rawRemaining -= n
		if s.rawRemaining == 0 {
			break
		}
		n = s.br.DrainBackBytes(s.dst[s.dpos : s.dpos+s.rawRemaining])
		s.dpos += n
		s.rawRemaining -= n
		if s.rawRemaining == 0 {
			break
		}
		n, ok, err := s.br.CopyBytes(s.dst[s.dpos:s.dpos+s.rawRemaining], mode)
		s.dpos += n
		s.rawRemaining -= n
		if err != nil {
			return CorruptInputError("truncated stored block")
		}
		if !ok {
			return errUnfinished
		}
	}

	s.rawResuming = false
	if s.bfinal {
		s.state = stDone
	} else {
		s.state = stBlockHeader
	}
	return nil
}

// stepBlockBody decodes the shared literal/length + distance body used by
// both fixed and dynamic Huffman blocks (s.tlit/s.tdist are set by whichever
// phase dispatched here). Suspension happens only at the two points named
// in spec.md §4.5(d): right after a literal/length decode that turned out
// to need a distance, and right after that distance decode — s.blk.sub
// records which of the two s.step will resume into.
//
// Grounded on zran/flate/inflate.go's huffmanBlock, restructured so each
// decode attempt is itself resumable (decodeExtSym) rather than assuming a
// fixed moreBits() retry loop inline.
func (s *Stream) stepBlockBody(mode bitreader.Mode) error {
	for {
		switch s.blk.sub {
		case blkNone:
			sym, val, err := s.decodeExtSym(s.tlit, 21, mode, "literal/length")
			if err != nil {
				return err
			}
			if sym < 256 {
				if s.dpos >= len(s.dst) {
					return ErrFull
				}
				s.dst[s.dpos] = byte(sym)
				s.dpos++
				continue
			}
			if sym == 256 {
				s.blk = blkState{}
				if s.bfinal {
					s.state = stDone
				} else {
					s.state = stBlockHeader
				}
				return nil
			}
			if sym > 285 {
				return CorruptInputError("literal/length symbol out of range")
			}
			s.blk.length = val
			s.blk.sub = blkDist

		case blkDist:
			var dist int
			var err error
			if s.tdist == nil {
				dist, err = s.decodeFixedDist(mode)
			} else {
				_, dist, err = s.decodeExtSym(s.tdist, 29, mode, "distance")
			}
			if err != nil {
				return err
			}
			if dist < 1 || dist > s.dpos {
				return CorruptInputError("back-reference distance out of range")
			}
			if s.dpos+s.blk.length > len(s.dst) {
				return ErrFull
			}
			s.copyBackref(dist, s.blk.length)
			s.blk.sub = blkNone
		}
	}
}

// copyBackref replicates length bytes from dist bytes behind the write
// cursor. The byte-by-byte forward copy is deliberate: when dist < length
// the source range overlaps the destination range currently being written,
// and RFC 1951 defines that case as repeating the overlap (a degenerate
// run-length fill when dist == 1).
func (s *Stream) copyBackref(dist, length int) {
	dpos := s.dpos
	if dist == 1 {
		b := s.dst[dpos-1]
		for i := 0; i < length; i++ {
			s.dst[dpos+i] = b
		}
	} else {
		src := dpos - dist
		for i := 0; i < length; i++ {
			s.dst[dpos+i] = s.dst[src+i]
		}
	}
	s.dpos += length
}

// stepDynHeader reads HLIT/HDIST/HCLEN and the HCLEN code-length-code
// triplets, then builds the 19-symbol code-length table. codeLenCursor lets
// this resume mid-triplet-read without re-reading earlier ones.
func (s *Stream) stepDynHeader(mode bitreader.Mode) error {
	if s.dyn.lens == nil {
		ok, err := s.br.Ensure(14, mode)
		if err != nil {
			return CorruptInputError("truncated dynamic block header")
		}
		if !ok {
			return errUnfinished
		}
		word := s.br.Peek(14)
		s.br.Consume(14)

		hlit := int(word&0x1F) + 257
		hdist := int((word>>5)&0x1F) + 1
		hclen := int((word>>10)&0xF) + 4
		if hlit > 286 || hdist > 30 {
			return CorruptInputError("invalid HLIT/HDIST count")
		}
		s.dyn.hlit, s.dyn.hdist, s.dyn.hclen = hlit, hdist, hclen
		s.dyn.n = hlit + hdist
		s.dyn.lens = make([]int, s.dyn.n)
	}

	for s.dyn.codeLenCursor < s.dyn.hclen {
		ok, err := s.br.Ensure(3, mode)
		if err != nil {
			return CorruptInputError("truncated code-length header")
		}
		if !ok {
			return errUnfinished
		}
		v := int(s.br.Peek(3))
		s.br.Consume(3)
		s.dyn.codelens[codeLenOrder[s.dyn.codeLenCursor]] = v
		s.dyn.codeLenCursor++
	}

	tclen, err := huffman.Build(s.dyn.codelens[:])
	if err != nil {
		return CorruptInputError("invalid code-length distribution")
	}
	s.dyn.tclen = tclen
	s.state = stDynCodelen
	return nil
}

// stepDynCodelen decodes the hlit+hdist code lengths via the code-length
// table built by stepDynHeader, expanding the three repeat codes (16, 17,
// 18), then builds the literal/length and distance tables for the block
// body. pendingRepeatSym persists a decoded-but-not-yet-applied repeat
// symbol across a suspension that happens while reading its extra count
// bits.
func (s *Stream) stepDynCodelen(mode bitreader.Mode) error {
	for s.dyn.i < s.dyn.n {
		if s.dyn.pendingRepeatSym == 0 {
			sym, err := s.decodePlainSym(s.dyn.tclen, 21, mode, "code-length")
			if err != nil {
				return err
			}
			if sym <= 15 {
				s.dyn.lens[s.dyn.i] = sym
				s.dyn.i++
				continue
			}
			if sym > 18 {
				return CorruptInputError("invalid code-length symbol")
			}
			s.dyn.pendingRepeatSym = sym
		}

		var need uint
		switch s.dyn.pendingRepeatSym {
		case 16:
			need = 2
		case 17:
			need = 3
		case 18:
			need = 7
		}
		ok, err := s.br.Ensure(need, mode)
		if err != nil {
			return CorruptInputError("truncated repeat count")
		}
		if !ok {
			return errUnfinished
		}
		extra := int(s.br.Peek(need))
		s.br.Consume(need)

		var repeat, value int
		switch s.dyn.pendingRepeatSym {
		case 16:
			if s.dyn.i == 0 {
				return CorruptInputError("repeat code 16 with no preceding length")
			}
			repeat = 3 + extra
			value = s.dyn.lens[s.dyn.i-1]
		case 17:
			repeat = 3 + extra
		case 18:
			repeat = 11 + extra
		}
		if s.dyn.i+repeat > s.dyn.n {
			return CorruptInputError("repeat expands past the code-length array")
		}
		for k := 0; k < repeat; k++ {
			s.dyn.lens[s.dyn.i] = value
			s.dyn.i++
		}
		s.dyn.pendingRepeatSym = 0
	}

	tlit, err := huffman.BuildExt(s.dyn.lens[:s.dyn.hlit], lengthExtra[:s.dyn.hlit-257], 257)
	if err != nil {
		return CorruptInputError("invalid literal/length code-length distribution")
	}
	tdist, err := huffman.BuildExt(s.dyn.lens[s.dyn.hlit:], distExtra[:s.dyn.hdist], 0)
	if err != nil {
		return CorruptInputError("invalid distance code-length distribution")
	}
	s.tlit, s.tdist = tlit, tdist
	s.blk = blkState{}
	s.state = stDynBlock
	return nil
}

// decodeFixedDist decodes a fixed-block distance code directly, without a
// huffman.Table: all 30 codes are 5 bits wide, assigned in order, so the
// code read LSB-first is simply the symbol's bits in reverse. Grounded on
// zran/flate/inflate.go's huffmanBlock, `f.Hd == nil` branch
// (`dist = int(reverseByte[(f.B&0x1F)<<3])`); bits.Reverse16 stands in for
// the teacher's reverseByte lookup table, matching this module's huffman
// package's own use of bits.Reverse16 elsewhere.
//
// Like decodeExtSym/decodePlainSym, this only ever consumes bits once it
// has the complete value (code plus its extra bits) in hand, so a
// suspension here leaves nothing to unwind on resume.
func (s *Stream) decodeFixedDist(mode bitreader.Mode) (int, error) {
	const maxWindow = 5 + 13 // 5-bit code + the longest distance extra count

	ensured := false
	for {
		avail := s.br.Available()
		if avail >= 5 {
			sym := int(bits.Reverse16(uint16(s.br.Peek(5))) >> 11)
			if sym >= len(distExtra) {
				return 0, CorruptInputError("invalid fixed distance code")
			}
			e := distExtra[sym]
			need := uint(5) + uint(e.Nbits)
			if avail >= need {
				s.br.Consume(5)
				extra := s.br.Peek(uint(e.Nbits))
				s.br.Consume(uint(e.Nbits))
				return e.Base + int(extra), nil
			}
		}
		if ensured {
			if mode == bitreader.ModeFatal {
				return 0, CorruptInputError("truncated fixed distance code")
			}
			return 0, errUnfinished
		}
		ensured = true
		s.br.Ensure(maxWindow, mode)
	}
}

// decodeExtSym decodes one symbol from t (a BuildExt table), retrying with
// a progressively refilled window. It mirrors the teacher's moreBits()
// retry loop, but delegates the actual bit supply to bitreader.Ensure
// instead of a hand-rolled byte puller: try with whatever is already
// buffered, and only ask the bit reader for more once. A second failure
// after that Ensure call means either the code is genuinely invalid (a full
// window was available and no code matched) or, if the bit reader ran dry,
// that decoding must suspend (soft mode) or fail (fatal mode).
func (s *Stream) decodeExtSym(t *huffman.Table, window uint, mode bitreader.Mode, what string) (symbol, value int, err error) {
	ensured := false
	for {
		avail := s.br.Available()
		n := avail
		if n > window {
			n = window
		}
		word := s.br.Peek(n)
		sym, val, used := t.DecodeExt(word, n)
		if used > 0 {
			s.br.Consume(used)
			return sym, val, nil
		}
		if avail >= window {
			return 0, 0, CorruptInputError("invalid " + what + " code")
		}
		if ensured {
			if mode == bitreader.ModeFatal {
				return 0, 0, CorruptInputError("truncated " + what + " code")
			}
			return 0, 0, errUnfinished
		}
		ensured = true
		s.br.Ensure(window, mode)
	}
}

// decodePlainSym is decodeExtSym's twin for the plain (Build, not BuildExt)
// code-length table.
func (s *Stream) decodePlainSym(t *huffman.Table, window uint, mode bitreader.Mode, what string) (int, error) {
	ensured := false
	for {
		avail := s.br.Available()
		n := avail
		if n > window {
			n = window
		}
		word := s.br.Peek(n)
		sym, used := t.Decode(word, n)
		if used > 0 {
			s.br.Consume(used)
			return sym, nil
		}
		if avail >= window {
			return 0, CorruptInputError("invalid " + what + " code")
		}
		if ensured {
			if mode == bitreader.ModeFatal {
				return 0, CorruptInputError("truncated " + what + " code")
			}
			return 0, errUnfinished
		}
		ensured = true
		s.br.Ensure(window, mode)
	}
}
