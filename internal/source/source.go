// Package source locates broker exports on disk and reads them into rows.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gw/tvtrades/internal/records"
)

var (
	ErrNotFound = errors.New("no matching export found")
	// ErrUnreadable marks an export that could not be opened, typically
	// because another program holds it locked.
	ErrUnreadable = errors.New("export could not be opened")
)

// Export file names embed their creation time, e.g.
// paper-trading-history-all-2024-03-01T18_05_42.123Z.csv
var stampPattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})T(\d{2})_(\d{2})_(\d{2})`)

// File is a discovered export.
type File struct {
	Name string
	Path string
	Time time.Time
}

// Files holds the newest export of each kind. Journal is nil when no
// journal export exists.
type Files struct {
	History   File
	Positions File
	Journal   *File
}

type Keywords struct {
	History   string
	Positions string
	Journal   string
}

// FileTime extracts the timestamp embedded in an export file name.
func FileTime(name string) (time.Time, bool) {
	m := stampPattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02 15:04:05", fmt.Sprintf("%s %s:%s:%s", m[1], m[2], m[3], m[4]))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Newest returns the csv export in dir whose name contains keyword and
// carries the latest embedded timestamp.
func Newest(dir, keyword string) (*File, error) {
	files, err := list(dir)
	if err != nil {
		return nil, err
	}
	var best *File
	for _, f := range files {
		if strings.Contains(f.Name, keyword) {
			best = newer(best, f)
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, keyword, dir)
	}
	return best, nil
}

// Discover picks the newest history, positions and journal exports in dir.
// A name matching several keywords counts for the first of history,
// positions, journal.
func Discover(dir string, kw Keywords) (*Files, error) {
	files, err := list(dir)
	if err != nil {
		return nil, err
	}

	var history, positions, journal *File
	for _, f := range files {
		name := f.Name
		switch {
		case kw.History != "" && strings.Contains(name, kw.History):
			history = newer(history, f)
		case kw.Positions != "" && strings.Contains(name, kw.Positions):
			positions = newer(positions, f)
		case kw.Journal != "" && strings.Contains(name, kw.Journal):
			journal = newer(journal, f)
		}
	}

	if history == nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, kw.History, dir)
	}
	if positions == nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, kw.Positions, dir)
	}

	return &Files{History: *history, Positions: *positions, Journal: journal}, nil
}

// list returns the timestamped csv files in dir.
func list(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder: %w", err)
	}

	var files []*File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		t, ok := FileTime(name)
		if !ok {
			slog.Debug("skipping export without timestamp", "file", name)
			continue
		}
		files = append(files, &File{Name: name, Path: filepath.Join(dir, name), Time: t})
	}
	return files, nil
}

func newer(cur, f *File) *File {
	if cur == nil || f.Time.After(cur.Time) {
		return f
	}
	return cur
}

// ReadRows reads a CSV export with a header row.
func ReadRows(path string) ([]records.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", filepath.Base(path), ErrUnreadable, err)
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// ParseRows maps each CSV record to its header names. Short records get
// empty values for the missing trailing columns. The result is never nil.
func ParseRows(r io.Reader) ([]records.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []records.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	rows := []records.Row{}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(records.Row, len(header))
		for i, h := range header {
			if i < len(fields) {
				row[h] = fields[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
