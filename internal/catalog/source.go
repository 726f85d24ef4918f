package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
)

//go:embed seed.json
var seedJSON []byte

// Source loads the catalog once at start-up.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// EmbeddedSource serves the directory compiled into the binary.
type EmbeddedSource struct{}

// Load decodes the embedded seed document.
func (EmbeddedSource) Load(_ context.Context) (*Catalog, error) {
	return Decode(bytes.NewReader(seedJSON))
}

// Seed returns the embedded directory. It panics if the embedded data is invalid,
// which is a build defect.
func Seed() *Catalog {
	c, err := EmbeddedSource{}.Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed invalid: %v", err))
	}
	return c
}

// FileSource reads a JSON document from disk.
type FileSource struct {
	Path string
}

// Load reads and decodes the file.
func (s FileSource) Load(_ context.Context) (*Catalog, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("catalog: file source requires a path")
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", s.Path, err)
	}
	defer f.Close()
	return Decode(f)
}
