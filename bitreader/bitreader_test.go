package bitreader

import (
	"testing"

	"github.com/coreos/inflate/chunk"
)

func storeOf(parts ...[]byte) *chunk.Store {
	s := chunk.New()
	for _, p := range parts {
		s.Append(p)
	}
	return s
}

func TestEnsureAndPeekAcrossChunks(t *testing.T) {
	// 0x01 then 0x80: bit 0 of the first byte, LSB-first, is the very
	// first bit a reader should see.
	// One-byte pooled chunks seal on their first append, so the two bytes
	// land in two separate chunks.
	s := chunk.New(chunk.WithSmallAppendSize(1), chunk.WithPoolChunkSize(1))
	s.Append([]byte{0x01})
	s.Append([]byte{0x80})
	r := New(s)

	ok, err := r.Ensure(9, ModeFatal)
	if err != nil || !ok {
		t.Fatalf("Ensure(9): ok=%v err=%v", ok, err)
	}
	if got := r.Peek(1); got != 1 {
		t.Fatalf("Peek(1) = %d, want 1", got)
	}
	r.Consume(1)
	if got := r.Peek(8); got != 0 {
		t.Fatalf("Peek(8) after consuming bit 0 = %d, want 0 (the next 7 zero bits of byte0 plus bit0 of byte1)", got)
	}
}

func TestEnsureSoftModeYieldsThenSucceedsAfterMoreInput(t *testing.T) {
	s := chunk.New()
	r := New(s)

	ok, err := r.Ensure(16, ModeSoft)
	if err != nil {
		t.Fatalf("unexpected error in soft mode: %v", err)
	}
	if ok {
		t.Fatalf("expected Ensure to fail (no input yet)")
	}

	s.Append([]byte{0xAA, 0xBB})
	ok, err = r.Ensure(16, ModeSoft)
	if err != nil || !ok {
		t.Fatalf("Ensure(16) after append: ok=%v err=%v", ok, err)
	}
}

func TestEnsureFatalModeReturnsErrExhausted(t *testing.T) {
	s := storeOf([]byte{0x01})
	r := New(s)
	_, err := r.Ensure(32, ModeFatal)
	if err != ErrExhausted {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestAlignByteConsumesOnlySubByteResidue(t *testing.T) {
	s := storeOf([]byte{0xFF, 0xFF, 0xFF})
	r := New(s)
	if _, err := r.Ensure(24, ModeFatal); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	r.Consume(3)
	if r.Available() != 21 {
		t.Fatalf("Available() = %d, want 21", r.Available())
	}
	r.AlignByte()
	if r.Available()%8 != 0 {
		t.Fatalf("AlignByte left %d bits buffered, not a multiple of 8", r.Available())
	}
}

func TestDrainFrontAndBackBytes(t *testing.T) {
	s := storeOf([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	r := New(s)
	if _, err := r.Ensure(57, ModeFatal); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	var out []byte
	buf := make([]byte, 16)
	n := r.DrainFrontBytes(buf)
	out = append(out, buf[:n]...)
	n = r.DrainBackBytes(buf)
	out = append(out, buf[:n]...)
	n, ok, err := r.CopyBytes(buf[:10-len(out)], ModeFatal)
	if err != nil {
		t.Fatalf("CopyBytes: %v", err)
	}
	out = append(out, buf[:n]...)
	_ = ok

	for i, b := range out {
		if b != byte(i+1) {
			t.Fatalf("byte %d = %d, want %d (drained bytes must stay in stream order)", i, b, i+1)
		}
	}
	if len(out) != 10 {
		t.Fatalf("drained %d bytes total, want 10", len(out))
	}
}

func TestCopyBytesSoftModeReportsShortfall(t *testing.T) {
	s := storeOf([]byte{1, 2})
	r := New(s)
	buf := make([]byte, 5)
	n, ok, err := r.CopyBytes(buf, ModeSoft)
	if err != nil {
		t.Fatalf("unexpected error in soft mode: %v", err)
	}
	if ok || n != 2 {
		t.Fatalf("CopyBytes: n=%d ok=%v, want n=2 ok=false", n, ok)
	}
}
