package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer stores rendered reports as one CSV file per day. A later report on
// the same day replaces the earlier one.
type Writer struct {
	dir    string
	prefix string
	now    func() time.Time
}

func NewWriter(dir, prefix string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &Writer{dir: dir, prefix: prefix, now: time.Now}, nil
}

// Path returns the file today's report is written to.
func (w *Writer) Path() string {
	day := w.now().Format("2006-01-02")
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.csv", w.prefix, day))
}

// Write replaces today's report atomically and returns its path.
func (w *Writer) Write(text string) (string, error) {
	path := w.Path()
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("replacing report: %w", err)
	}
	return path, nil
}
