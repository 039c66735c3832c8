package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keywords = Keywords{History: "history-all", Positions: "positions", Journal: "journal"}

func touch(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestFileTime(t *testing.T) {
	got, ok := FileTime("paper-trading-history-all-2024-03-01T18_05_42.123Z.csv")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 18, 5, 42, 0, time.UTC), got)

	_, ok = FileTime("history-all.csv")
	assert.False(t, ok)
}

func TestDiscover_PicksNewestPerKind(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "paper-history-all-2024-03-01T10_00_00.csv", "")
	touch(t, dir, "paper-history-all-2024-03-02T09_00_00.csv", "")
	touch(t, dir, "paper-history-all-2024-02-28T23_59_59.csv", "")
	touch(t, dir, "paper-positions-2024-03-01T10_00_00.csv", "")
	touch(t, dir, "paper-positions-2024-03-01T11_00_00.csv", "")
	touch(t, dir, "paper-positions-latest.csv", "")
	touch(t, dir, "paper-history-all-2024-03-09T00_00_00.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "paper-positions-2024-09-01T00_00_00.csv"), 0755))

	files, err := Discover(dir, keywords)
	require.NoError(t, err)
	assert.Equal(t, "paper-history-all-2024-03-02T09_00_00.csv", files.History.Name)
	assert.Equal(t, filepath.Join(dir, files.History.Name), files.History.Path)
	assert.Equal(t, "paper-positions-2024-03-01T11_00_00.csv", files.Positions.Name)
	assert.Nil(t, files.Journal)
}

func TestNewest(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "journal-2024-03-01T10_00_00.csv", "")
	touch(t, dir, "journal-2024-03-03T08_00_00.csv", "")
	touch(t, dir, "journal-2024-03-02T10_00_00.csv", "")
	touch(t, dir, "journal.csv", "")

	f, err := Newest(dir, "journal")
	require.NoError(t, err)
	assert.Equal(t, "journal-2024-03-03T08_00_00.csv", f.Name)

	_, err = Newest(dir, "positions")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscover_HistoryKeywordWins(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "history-all-positions-2024-03-05T10_00_00.csv", "")
	touch(t, dir, "positions-2024-03-01T10_00_00.csv", "")

	files, err := Discover(dir, keywords)
	require.NoError(t, err)
	assert.Equal(t, "history-all-positions-2024-03-05T10_00_00.csv", files.History.Name)
	assert.Equal(t, "positions-2024-03-01T10_00_00.csv", files.Positions.Name)
}

func TestDiscover_Journal(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "history-all-2024-03-01T10_00_00.csv", "")
	touch(t, dir, "positions-2024-03-01T10_00_00.csv", "")
	touch(t, dir, "journal-2024-03-01T10_00_00.csv", "")

	files, err := Discover(dir, keywords)
	require.NoError(t, err)
	require.NotNil(t, files.Journal)
	assert.Equal(t, "journal-2024-03-01T10_00_00.csv", files.Journal.Name)
}

func TestDiscover_MissingKind(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "history-all-2024-03-01T10_00_00.csv", "")

	_, err := Discover(dir, keywords)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Discover(filepath.Join(dir, "missing"), keywords)
	assert.Error(t, err)
}

func TestParseRows(t *testing.T) {
	in := "\ufeffSymbol,Side, Qty ,Price\n" +
		"NASDAQ:AAPL,Buy,1 200,\"1 050.5\"\n" +
		"NASDAQ:MSFT,Sell\n"

	rows, err := ParseRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "NASDAQ:AAPL", rows[0]["Symbol"])
	assert.Equal(t, "1 200", rows[0]["Qty"])
	assert.Equal(t, "1 050.5", rows[0]["Price"])

	v, ok := rows[1]["Price"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseRows_HeaderOnly(t *testing.T) {
	rows, err := ParseRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	rows, err = ParseRows(strings.NewReader("Text,Time\n"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestReadRows(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv", "Text,Time\nhello,2024-03-01 10:00:00\n")

	rows, err := ReadRows(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "hello", rows[0]["Text"])

	_, err = ReadRows(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
