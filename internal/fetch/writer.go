package fetch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"gamecache/pkg/models"
)

// ArrayWriter appends games one at a time to a growing JSON array on
// disk, so the full catalog never has to sit in memory during a fetch.
// Entries are compact; the separator is decided by a first-entry flag.
//
// The output is only valid JSON after Close writes the closing bracket.
type ArrayWriter struct {
	f     *os.File
	buf   *bufio.Writer
	first bool
	count int
}

// NewArrayWriter creates (truncating) the staging file and writes the
// opening bracket.
func NewArrayWriter(path string) (*ArrayWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	buf := bufio.NewWriter(f)
	if _, err := buf.WriteString("[\n"); err != nil {
		f.Close()
		return nil, fmt.Errorf("write array open: %w", err)
	}
	return &ArrayWriter{f: f, buf: buf, first: true}, nil
}

// Append serializes one game as a compact JSON object and appends it.
func (w *ArrayWriter) Append(g models.Game) error {
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game %d: %w", g.IGDBID, err)
	}
	if !w.first {
		if _, err := w.buf.WriteString(",\n"); err != nil {
			return fmt.Errorf("write separator: %w", err)
		}
	}
	if _, err := w.buf.Write(b); err != nil {
		return fmt.Errorf("write game %d: %w", g.IGDBID, err)
	}
	w.first = false
	w.count++
	return nil
}

// Count reports how many games have been appended so far.
func (w *ArrayWriter) Count() int { return w.count }

// Close writes the closing bracket, flushes, and syncs the file.
func (w *ArrayWriter) Close() error {
	if _, err := w.buf.WriteString("\n]"); err != nil {
		w.f.Close()
		return fmt.Errorf("write array close: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush staging file: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("sync staging file: %w", err)
	}
	return w.f.Close()
}
