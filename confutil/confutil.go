// Package confutil loads the decoder's tunable, non-functional knobs —
// the chunk store's pooling parameters — from a YAML document.
//
// Grounded on yamlutil/yaml.go's SetFlagsFromYaml: read raw bytes, hand
// them to yaml.Unmarshal, apply only what the document actually sets.
// That file imports gopkg.in/yaml.v1 while go.mod has always required
// yaml.v2; this package imports the version go.mod actually declares.
package confutil

import "gopkg.in/yaml.v2"

// Tuning holds the pool-sizing knobs chunk.Store accepts as functional
// options. Zero values mean "leave the chunk package default in place."
type Tuning struct {
	SmallAppendBytes int `yaml:"small_append_bytes"`
	ChunkPoolSize    int `yaml:"chunk_pool_size"`
}

// Load unmarshals rawYaml into a Tuning. A missing or empty document
// yields a zero Tuning, which the caller applies as "use the defaults."
func Load(rawYaml []byte) (Tuning, error) {
	var t Tuning
	if len(rawYaml) == 0 {
		return t, nil
	}
	if err := yaml.Unmarshal(rawYaml, &t); err != nil {
		return Tuning{}, err
	}
	return t, nil
}
