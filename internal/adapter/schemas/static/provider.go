// Package staticschemas serves the wire schemas from a directory on disk.
package staticschemas

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const schemaSuffix = ".schema.json"

type Provider struct {
	Root string
}

type index struct {
	Schemas []string `json:"schemas"`
}

// Index lists every *.schema.json file under Root.
func (p Provider) Index(_ context.Context) ([]byte, error) {
	ents, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, err
	}
	out := index{Schemas: []string{}}
	for _, e := range ents {
		if !e.IsDir() && strings.HasSuffix(e.Name(), schemaSuffix) {
			out.Schemas = append(out.Schemas, e.Name())
		}
	}
	sort.Strings(out.Schemas)
	return json.Marshal(out)
}

func (p Provider) File(_ context.Context, path string) ([]byte, error) {
	safePath, err := secureJoin(p.Root, path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(safePath)
}

var ErrInvalidSchemaPath = errors.New("invalid schema filepath")

func secureJoin(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || filepath.IsAbs(rel) || !strings.HasSuffix(rel, schemaSuffix) {
		return "", ErrInvalidSchemaPath
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(rootAbs, rel))
	prefix := rootAbs + string(filepath.Separator)
	if !strings.HasPrefix(target, prefix) {
		return "", ErrInvalidSchemaPath
	}
	return target, nil
}
