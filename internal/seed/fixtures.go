// Package seed loads, generates and exports the data a Store starts from.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"sublet/internal/store"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yaml
var demoFixture []byte

// Decode reads a YAML seed document. Unknown keys are rejected.
func Decode(r io.Reader) (store.Seed, error) {
	var s store.Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return store.Seed{}, nil
		}
		return store.Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return s, nil
}

// Encode writes s as a YAML seed document.
func Encode(w io.Writer, s store.Seed) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	return enc.Close()
}

// LoadDemo returns the built-in demo data.
func LoadDemo() (store.Seed, error) {
	return Decode(bytes.NewReader(demoFixture))
}

// LoadFile reads a seed from path.
func LoadFile(path string) (store.Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Load reads path, or the demo data when path is empty.
func Load(path string) (store.Seed, error) {
	if path == "" {
		return LoadDemo()
	}
	return LoadFile(path)
}
