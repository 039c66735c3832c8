package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gw/tvtrades/internal/records"
	"github.com/gw/tvtrades/internal/source"
)

var keywords = source.Keywords{History: "history-all", Positions: "positions", Journal: "journal"}

const historyCSV = `Symbol,Side,Type,Qty,Price,Fill Price,Status,Placing Time,Closing Time,Order id
NASDAQ:AAPL,Buy,Market,10,,100,Filled,2024-03-01 10:00:00,2024-03-01 10:00:00,1
NASDAQ:AAPL,Sell,Stop Loss,10,95,,Cancelled,2024-03-01 10:00:05,2024-03-01 10:30:00,2
NASDAQ:AAPL,Sell,Market,10,,110,Filled,2024-03-01 10:30:00,2024-03-01 10:30:00,3
NASDAQ:MSFT,Sell,Limit,5,400,400,Filled,2024-03-01 11:00:00,2024-03-01 11:00:00,4
NASDAQ:MSFT,Buy,Limit,5,380,,Rejected,2024-03-01 11:01:00,2024-03-01 11:01:00,5
`

const positionsCSV = `Symbol,Side,Qty,Avg Fill Price,Take Profit,Stop Loss
NASDAQ:MSFT,Short,5,400,350,420
`

func writeExports(t *testing.T, history string) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("paper-history-all-2024-03-01T18_00_00.csv", history)
	write("paper-positions-2024-03-01T18_00_00.csv", positionsCSV)
	return dir
}

func TestConvert_Folder(t *testing.T) {
	dir := writeExports(t, historyCSV)

	conv, err := convert(dir, "", keywords)
	require.NoError(t, err)
	assert.Equal(t, "", conv.journal)
	require.Len(t, conv.result.Trades, 2)

	assert.Equal(t, ""+
		"Symbol,Side,StartTime,AvgEntryPrice,TotalEntryAmount,LastStopLoss,LastPriceTarget,EndTime,AvgExitPrice,TotalExitAmount,EntryCount,ExitCount\n"+
		"MSFT,Short,2024-03-01 11:00:00,400.00,5,420.00,350.00,,,0,1,0\n"+
		"AAPL,Long,2024-03-01 10:00:00,100.00,10,95.00,,2024-03-01 10:30:00,110.00,10,1,1\n",
		conv.text)
}

func TestConvert_ExplicitJournal(t *testing.T) {
	dir := writeExports(t, historyCSV)
	journal := filepath.Join(t.TempDir(), "mine.csv")
	require.NoError(t, os.WriteFile(journal, []byte("Time,Text\n"), 0644))

	conv, err := convert(dir, journal, keywords)
	require.NoError(t, err)
	assert.Equal(t, journal, conv.journal)
}

func TestConvert_MalformedHistory(t *testing.T) {
	dir := writeExports(t, historyCSV+"NASDAQ:AAPL,Buy,Market,ten,,100,Filled,2024-03-01 12:00:00,2024-03-01 12:00:00,6\n")

	_, err := convert(dir, "", keywords)
	assert.ErrorIs(t, err, records.ErrMalformedRecord)
}

func TestConvert_MissingExports(t *testing.T) {
	_, err := convert(t.TempDir(), "", keywords)
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestConvert_UnreadableJournal(t *testing.T) {
	dir := writeExports(t, historyCSV)

	_, err := convert(dir, filepath.Join(dir, "gone.csv"), keywords)
	require.ErrorIs(t, err, source.ErrUnreadable)
	assert.Contains(t, failureMessage(err), "Close the CSV files")
}

func TestFailureMessage(t *testing.T) {
	_, err := convert(t.TempDir(), "", keywords)
	assert.Contains(t, failureMessage(err), "Missing export")

	dir := writeExports(t, historyCSV+"NASDAQ:AAPL,Buy,Market,ten,,100,Filled,2024-03-01 12:00:00,2024-03-01 12:00:00,6\n")
	_, err = convert(dir, "", keywords)
	assert.Contains(t, failureMessage(err), "could not be parsed")

	assert.Equal(t, "", failureMessage(errors.New("disk on fire")))
}
