package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gw/tvtrades/internal/assembler"
	"github.com/gw/tvtrades/internal/records"
)

func order(minute int, price, amount string) records.Order {
	return records.Order{
		Time:   time.Date(2024, 3, 1, 10, minute, 0, 0, time.UTC),
		Price:  decimal.RequireFromString(price),
		Amount: decimal.RequireFromString(amount),
	}
}

func TestPrice(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "0", want: ""},
		{in: "0.00", want: ""},
		{in: "1.005", want: "1.01"},
		{in: "-1.005", want: "-1.01"},
		{in: "1.004", want: "1.00"},
		{in: "103.3333333", want: "103.33"},
		{in: "120", want: "120.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Price(decimal.RequireFromString(tc.in)))
		})
	}
}

func TestFormat_OpenAndClosedTrades(t *testing.T) {
	open := &assembler.Trade{
		Symbol:  "X",
		Side:    records.SideLong,
		Entries: []records.Order{order(0, "100", "10"), order(5, "110", "5")},
	}
	closed := &assembler.Trade{
		Symbol:       "Y",
		Side:         records.SideShort,
		Entries:      []records.Order{order(1, "50", "2")},
		StopLosses:   []records.Order{order(2, "55", "2")},
		PriceTargets: []records.Order{order(2, "45", "2")},
		Exits:        []records.Order{order(7, "45", "2")},
	}

	text, err := Format([]*assembler.Trade{open, closed})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Symbol,Side,StartTime,AvgEntryPrice,TotalEntryAmount,LastStopLoss,LastPriceTarget,EndTime,AvgExitPrice,TotalExitAmount,EntryCount,ExitCount", lines[0])
	assert.Equal(t, "X,Long,2024-03-01 10:00:00,103.33,15,,,,,0,2,0", lines[1])
	assert.Equal(t, "Y,Short,2024-03-01 10:01:00,50.00,2,55.00,45.00,2024-03-01 10:07:00,45.00,2,1,1", lines[2])
}

func TestFormat_Empty(t *testing.T) {
	text, err := Format(nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Header, ",")+"\n", text)
}

func TestFormat_Idempotent(t *testing.T) {
	in := assembler.Input{
		History: []records.Row{
			{records.ColSymbol: "A", records.ColSide: "Buy", records.ColType: "Market", records.ColQty: "1", records.ColPrice: "10", records.ColFillPrice: "", records.ColStatus: "Filled", records.ColTime: "2024-03-01 10:00:00", records.ColOrderID: "1"},
			{records.ColSymbol: "B", records.ColSide: "Sell", records.ColType: "Market", records.ColQty: "2", records.ColPrice: "20", records.ColFillPrice: "", records.ColStatus: "Filled", records.ColTime: "2024-03-01 10:00:00", records.ColOrderID: "2"},
			{records.ColSymbol: "A", records.ColSide: "Sell", records.ColType: "Market", records.ColQty: "1", records.ColPrice: "12", records.ColFillPrice: "", records.ColStatus: "Filled", records.ColTime: "2024-03-01 11:00:00", records.ColOrderID: "3"},
		},
	}

	render := func() string {
		res, err := assembler.Convert(in)
		require.NoError(t, err)
		text, err := Format(res.Trades)
		require.NoError(t, err)
		return text
	}

	first := render()
	assert.Equal(t, first, render())
	assert.Contains(t, first, "A,Long,2024-03-01 10:00:00,10.00,1,,,2024-03-01 11:00:00,12.00,1,1,1")
}

func TestWriter_ReplacesDailyReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w, err := NewWriter(dir, "trades")
	require.NoError(t, err)
	w.now = func() time.Time { return time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC) }

	path, err := w.Write("first\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "trades-2024-03-01.csv"), path)

	_, err = w.Write("second\n")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
