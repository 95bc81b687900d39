package inflate

import (
	"sync"

	"github.com/coreos/inflate/huffman"
)

// lengthExtra is RFC 1951 §3.2.5's length table: base value and extra bit
// count for literal/length symbols 257..285. Dynamic blocks never declare
// more than 286 literal/length symbols (HLIT maxes out at hlit == 286, see
// §4.4.3), so this 29-entry table covers them exactly. The fixed table
// additionally declares symbols 286 and 287 to complete its 288-symbol
// code space even though RFC 1951 never emits them; two trailing
// placeholder entries cover that case, and inflate always range-checks a
// decoded symbol against 285 before trusting a folded value (see
// stepBlockBody in block.go).
var lengthExtra = [31]huffman.Extra{
	{Base: 3, Nbits: 0}, {Base: 4, Nbits: 0}, {Base: 5, Nbits: 0}, {Base: 6, Nbits: 0},
	{Base: 7, Nbits: 0}, {Base: 8, Nbits: 0}, {Base: 9, Nbits: 0}, {Base: 10, Nbits: 0},
	{Base: 11, Nbits: 1}, {Base: 13, Nbits: 1}, {Base: 15, Nbits: 1}, {Base: 17, Nbits: 1},
	{Base: 19, Nbits: 2}, {Base: 23, Nbits: 2}, {Base: 27, Nbits: 2}, {Base: 31, Nbits: 2},
	{Base: 35, Nbits: 3}, {Base: 43, Nbits: 3}, {Base: 51, Nbits: 3}, {Base: 59, Nbits: 3},
	{Base: 67, Nbits: 4}, {Base: 83, Nbits: 4}, {Base: 99, Nbits: 4}, {Base: 115, Nbits: 4},
	{Base: 131, Nbits: 5}, {Base: 163, Nbits: 5}, {Base: 195, Nbits: 5}, {Base: 227, Nbits: 5},
	{Base: 258, Nbits: 0},
	{Base: 0, Nbits: 0}, {Base: 0, Nbits: 0}, // unused placeholders for symbols 286, 287
}

// distExtra is RFC 1951 §3.2.5's distance table: base value and extra bit
// count for distance symbols 0..29.
var distExtra = [30]huffman.Extra{
	{Base: 1, Nbits: 0}, {Base: 2, Nbits: 0}, {Base: 3, Nbits: 0}, {Base: 4, Nbits: 0},
	{Base: 5, Nbits: 1}, {Base: 7, Nbits: 1}, {Base: 9, Nbits: 2}, {Base: 13, Nbits: 2},
	{Base: 17, Nbits: 3}, {Base: 25, Nbits: 3}, {Base: 33, Nbits: 4}, {Base: 49, Nbits: 4},
	{Base: 65, Nbits: 5}, {Base: 97, Nbits: 5}, {Base: 129, Nbits: 6}, {Base: 193, Nbits: 6},
	{Base: 257, Nbits: 7}, {Base: 385, Nbits: 7}, {Base: 513, Nbits: 8}, {Base: 769, Nbits: 8},
	{Base: 1025, Nbits: 9}, {Base: 1537, Nbits: 9}, {Base: 2049, Nbits: 10}, {Base: 3073, Nbits: 10},
	{Base: 4097, Nbits: 11}, {Base: 6145, Nbits: 11}, {Base: 8193, Nbits: 12}, {Base: 12289, Nbits: 12},
	{Base: 16385, Nbits: 13}, {Base: 24577, Nbits: 13},
}

// codeLenOrder permutes the HCLEN code-length values onto their actual
// symbol positions, per RFC 1951 §3.2.7.
var codeLenOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

var (
	fixedOnce      sync.Once
	fixedLit       *huffman.Table
	fixedTableFail error
)

// fixedLitTable builds (once, process-wide) the static literal/length
// table RFC 1951 defines for BTYPE=01 blocks. Per spec.md §5, any
// process-wide once-mechanism is acceptable; sync.Once is the stdlib one,
// and is what the teacher's own code reaches for whenever it needs
// build-once global state.
//
// There is no matching fixedDistTable: the fixed distance alphabet is 30
// equal-length-5 codes, which is an *incomplete* canonical code (32
// possible 5-bit patterns, only 30 assigned) — huffman.build's
// completeness check rejects it, exactly as it should for any alphabet
// actually built from a declared length vector. The teacher's own
// zran/flate/inflate.go never builds a table for it either: huffmanBlock
// special-cases `f.Hd == nil` and decodes the fixed distance code as a
// direct 5-bit reversed read (see decodeFixedDist in block.go). This
// package follows the same route rather than force the incomplete code
// through BuildExt.
func fixedLitTable() (*huffman.Table, error) {
	fixedOnce.Do(func() {
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
		fixedLit, fixedTableFail = huffman.BuildExt(lens, lengthExtra[:], 257)
	})
	return fixedLit, fixedTableFail
}
