package inflate

import (
	"bytes"
	"compress/flate"
	"fmt"
	"testing"

	"github.com/coreos/inflate/stop"
)

// TestConcurrentStreamsAreIndependent drives many independent Streams to
// completion in parallel, using stop.Group the way a long-running decoder
// pool would: each worker's "stop" channel actually signals "this stream's
// decode finished", and the test waits on the whole group at once.
func TestConcurrentStreamsAreIndependent(t *testing.T) {
	const workers = 32

	type result struct {
		want []byte
		got  []byte
		err  error
	}
	results := make([]result, workers)

	g := stop.NewGroup()
	for i := 0; i < workers; i++ {
		i := i
		want := repeat(fmt.Sprintf("worker-%d-payload ", i), 40+i)
		compressed := deflateRaw(t, want, flate.DefaultCompression)

		done := make(chan struct{})
		g.AddFunc(func() <-chan struct{} {
			go func() {
				defer close(done)
				dst := make([]byte, len(want))
				_, err := Run(dst, 0, compressed)
				results[i] = result{want: want, got: dst, err: err}
			}()
			return done
		})
	}

	<-g.Stop()

	for i, r := range results {
		if r.err != nil {
			t.Fatalf("worker %d: %v", i, r.err)
		}
		if !bytes.Equal(r.got, r.want) {
			t.Fatalf("worker %d: output mismatch", i)
		}
	}
}
