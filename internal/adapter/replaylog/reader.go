package replaylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"skirmish/internal/app/ports"
)

// Scan decodes r and calls fn for every entry in file order.
func Scan(r io.Reader, fn func(ports.ReplayEntry) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var entry ports.ReplayEntry
		if err := json.Unmarshal(b, &entry); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return sc.Err()
}

func ReadFile(path string) ([]ports.ReplayEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []ports.ReplayEntry
	err = Scan(f, func(e ports.ReplayEntry) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// ListGames returns the ids of every archived game under dir, sorted.
func ListGames(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(name, fileSuffix) {
			ids = append(ids, strings.TrimSuffix(name, fileSuffix))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func PathFor(dir, gameID string) string {
	return filepath.Join(dir, gameID+fileSuffix)
}
