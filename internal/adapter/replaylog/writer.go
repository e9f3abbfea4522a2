// Package replaylog archives every committed submission as zstd-compressed
// JSON lines, one file per game.
package replaylog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"skirmish/internal/app/ports"
)

const fileSuffix = ".jsonl.zst"

var ErrInvalidGameID = errors.New("invalid game id for replay archive")

type gameFile struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Writer implements ports.ReplayArchive. Reopening an existing archive
// appends a new zstd frame, which readers decode transparently.
type Writer struct {
	baseDir string

	mu    sync.Mutex
	files map[string]*gameFile
}

func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, files: map[string]*gameFile{}}
}

func (w *Writer) Append(_ context.Context, entry ports.ReplayEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal replay entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	gf, err := w.openLocked(entry.GameID)
	if err != nil {
		return err
	}
	if _, err := gf.w.Write(b); err != nil {
		return err
	}
	if err := gf.w.WriteByte('\n'); err != nil {
		return err
	}
	return gf.w.Flush()
}

// Sync pushes everything buffered for gameID to disk as a complete block.
func (w *Writer) Sync(gameID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	gf, ok := w.files[gameID]
	if !ok {
		return nil
	}
	if err := gf.w.Flush(); err != nil {
		return err
	}
	return gf.enc.Flush()
}

// CloseGame finishes the archive of one game.
func (w *Writer) CloseGame(gameID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	gf, ok := w.files[gameID]
	if !ok {
		return nil
	}
	delete(w.files, gameID)
	return gf.close()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for id, gf := range w.files {
		if err := gf.close(); err != nil {
			errs = append(errs, fmt.Errorf("close replay %s: %w", id, err))
		}
		delete(w.files, id)
	}
	return errors.Join(errs...)
}

func (w *Writer) Path(gameID string) string {
	return PathFor(w.baseDir, gameID)
}

func (w *Writer) openLocked(gameID string) (*gameFile, error) {
	if gf, ok := w.files[gameID]; ok {
		return gf, nil
	}
	if gameID == "" || strings.ContainsAny(gameID, `/\`) || strings.HasPrefix(gameID, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameID, gameID)
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(w.Path(gameID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	gf := &gameFile{f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}
	w.files[gameID] = gf
	return gf, nil
}

func (gf *gameFile) close() error {
	_ = gf.w.Flush()
	err := gf.enc.Close()
	if cerr := gf.f.Close(); err == nil {
		err = cerr
	}
	return err
}
