package inflate

import "github.com/coreos/inflate/bitreader"

// stepHeader validates the 2-byte ZLIB header (RFC 1950 §2.2): CMF's low
// nibble must select the deflate method, the 16-bit CMF||FLG value must be
// a multiple of 31, and FDICT must be unset (this package never accepts a
// preset dictionary). Grounded on gzran/gzip/gunzip.go's readHeader, which
// performs the analogous GZIP magic/method/flag validation up front before
// falling through to the shared deflate body.
func (s *Stream) stepHeader(mode bitreader.Mode) error {
	ok, err := s.br.Ensure(16, mode)
	if err != nil {
		return CorruptInputError("truncated zlib header")
	}
	if !ok {
		return errUnfinished
	}
	word := s.br.Peek(16)
	s.br.Consume(16)

	cmf := byte(word)
	flg := byte(word >> 8)

	if cmf&0x0F != 8 {
		return CorruptInputError("unsupported zlib compression method")
	}
	if (uint16(cmf)*256+uint16(flg))%31 != 0 {
		return CorruptInputError("invalid zlib header check bits")
	}
	if flg&0x20 != 0 {
		log.Warningf("inflate: rejecting zlib stream with FDICT set")
		return ErrFDICT
	}

	s.state = stBlockHeader
	return nil
}

// stepBlockHeader reads the 3-bit block header (BFINAL, BTYPE) that
// precedes every DEFLATE block and dispatches to the matching phase.
func (s *Stream) stepBlockHeader(mode bitreader.Mode) error {
	ok, err := s.br.Ensure(3, mode)
	if err != nil {
		return CorruptInputError("truncated block header")
	}
	if !ok {
		return errUnfinished
	}
	word := s.br.Peek(3)
	s.br.Consume(3)

	s.bfinal = word&1 != 0
	btype := (word >> 1) & 3

	switch btype {
	case 0:
		s.rawResuming = false
		s.state = stRaw
	case 1:
		tlit, err := fixedLitTable()
		if err != nil {
			return ErrNoMem
		}
		// s.tdist == nil is this package's sentinel for "fixed block,
		// decode the distance code directly" — see decodeFixedDist.
		s.tlit, s.tdist = tlit, nil
		s.blk = blkState{}
		s.state = stFixed
	case 2:
		s.dyn = dynState{}
		s.state = stDynHeader
	default:
		return CorruptInputError("reserved block type 3")
	}
	return nil
}
