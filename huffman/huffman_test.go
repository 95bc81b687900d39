package huffman

import "testing"

// fixedLitLenLengths mirrors RFC 1951 §3.2.6's fixed literal/length code.
func fixedLitLenLengths() []int {
	lens := make([]int, 288)
	for i := 0; i < 144; i++ {
		lens[i] = 8
	}
	for i := 144; i < 256; i++ {
		lens[i] = 9
	}
	for i := 256; i < 280; i++ {
		lens[i] = 7
	}
	for i := 280; i < 288; i++ {
		lens[i] = 8
	}
	return lens
}

func TestBuildFixedAndDecodeRoundTrip(t *testing.T) {
	tbl, err := Build(fixedLitLenLengths())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Encode symbol 0 (8-bit code, value 0x30 per RFC 1951 fixed table)
	// by constructing its code directly: codes for 0..143 start at
	// 0b00110000 (0x30) and increase in value order, MSB-first, then are
	// bit-reversed to match LSB-first transmission order.
	// Rather than hand-deriving every code, round-trip via an encoder-free
	// check: decode must resolve *some* valid symbol for every 9-bit
	// window when min==7 and nbits>=9 (the longest fixed code is 9 bits).
	var sawSymbols = map[int]bool{}
	for w := 0; w < 1<<9; w++ {
		sym, used := tbl.Decode(uint64(w), 9)
		if used == 0 {
			t.Fatalf("window %09b: decode failed to resolve any code (min=%d)", w, tbl.Min())
		}
		if sym < 0 || sym > 287 {
			t.Fatalf("window %09b: symbol %d out of range", w, sym)
		}
		sawSymbols[sym] = true
	}
	if len(sawSymbols) != 288 {
		t.Fatalf("expected to observe all 288 symbols across the space, saw %d", len(sawSymbols))
	}
}

func TestDecodeInsufficientBits(t *testing.T) {
	tbl, err := Build(fixedLitLenLengths())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, used := tbl.Decode(0, 0); used != 0 {
		t.Fatalf("expected used == 0 with no buffered bits")
	}
	// Min is 7, so fewer than 7 available bits can never resolve.
	if _, used := tbl.Decode(0x7F, 6); used != 0 {
		t.Fatalf("expected used == 0 with fewer bits than the shortest code")
	}
}

func TestBuildExtFoldsLengthExtra(t *testing.T) {
	// A minimal 2-symbol alphabet over {257, 258}: symbol 257 (code "0")
	// has base length 3 with 0 extra bits; symbol 258 (code "1") has base
	// length 4 with 1 extra bit, matching RFC 1951's length table shape.
	lengths := make([]int, 259)
	lengths[257] = 1
	lengths[258] = 1
	extras := []Extra{
		{Base: 3, Nbits: 0},
		{Base: 4, Nbits: 1},
	}
	tbl, err := BuildExt(lengths, extras, 257)
	if err != nil {
		t.Fatalf("BuildExt: %v", err)
	}

	if sym, v, used := tbl.DecodeExt(0b0, 1); used != 1 || v != 3 || sym != 257 {
		t.Fatalf("symbol 257: got sym=%d value=%d used=%d, want 257,3,1", sym, v, used)
	}
	// code "1" then one extra bit "1" -> base 4 + 1 = 5, 2 bits consumed.
	if sym, v, used := tbl.DecodeExt(0b11, 2); used != 2 || v != 5 || sym != 258 {
		t.Fatalf("symbol 258 extra=1: got sym=%d value=%d used=%d, want 258,5,2", sym, v, used)
	}
	// Not enough bits for the extra bit that symbol 258 requires.
	if _, _, used := tbl.DecodeExt(0b1, 1); used != 0 {
		t.Fatalf("expected used == 0 when extra bits aren't available yet")
	}
}

func TestBuildRejectsIncompleteCode(t *testing.T) {
	// A single length-2 code can never be complete on its own (needs 4
	// leaves at depth 2, or a mix that sums to 1<<2).
	if _, err := Build([]int{2}); err != ErrIncompleteCode {
		t.Fatalf("expected ErrIncompleteCode, got %v", err)
	}
}

func TestBuildEmptyTreeIsLegalButNeverDecodes(t *testing.T) {
	tbl, err := Build(make([]int, 30))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tbl.Min() != 0 {
		t.Fatalf("expected Min()==0 for an empty tree")
	}
	if _, used := tbl.Decode(0xFFFF, 15); used != 0 {
		t.Fatalf("empty tree must never resolve a symbol")
	}
}
