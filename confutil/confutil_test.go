package confutil

import "testing"

func TestLoadAppliesDocumentFields(t *testing.T) {
	doc := []byte("small_append_bytes: 4096\nchunk_pool_size: 65536\n")
	tuning, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tuning.SmallAppendBytes != 4096 || tuning.ChunkPoolSize != 65536 {
		t.Fatalf("got %+v, want SmallAppendBytes=4096 ChunkPoolSize=65536", tuning)
	}
}

func TestLoadEmptyDocumentYieldsZeroTuning(t *testing.T) {
	tuning, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tuning != (Tuning{}) {
		t.Fatalf("got %+v, want the zero value", tuning)
	}
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	if _, err := Load([]byte("small_append_bytes: [unterminated")); err == nil {
		t.Fatalf("expected an error decoding malformed YAML")
	}
}
