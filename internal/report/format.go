// Package report renders assembled trades as comma-separated text.
package report

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gw/tvtrades/internal/assembler"
	"github.com/gw/tvtrades/internal/records"
)

// Header lists the report columns in order.
var Header = []string{
	"Symbol",
	"Side",
	"StartTime",
	"AvgEntryPrice",
	"TotalEntryAmount",
	"LastStopLoss",
	"LastPriceTarget",
	"EndTime",
	"AvgExitPrice",
	"TotalExitAmount",
	"EntryCount",
	"ExitCount",
}

// Format renders one header row and one row per trade, in the given order.
func Format(trades []*assembler.Trade) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	for _, t := range trades {
		if err := w.Write(Row(t)); err != nil {
			return "", fmt.Errorf("writing %s trade: %w", t.Symbol, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing report: %w", err)
	}
	return sb.String(), nil
}

// Row renders a single trade in Header order.
func Row(t *assembler.Trade) []string {
	end := ""
	if e, ok := t.EndTime(); ok {
		end = e.Format(records.TimeLayout)
	}

	return []string{
		t.Symbol,
		string(t.Side),
		t.StartTime().Format(records.TimeLayout),
		Price(t.AvgEntryPrice()),
		t.TotalEntryAmount().String(),
		Price(t.LastStopLoss()),
		Price(t.LastPriceTarget()),
		end,
		Price(t.AvgExitPrice()),
		t.TotalExitAmount().String(),
		strconv.Itoa(len(t.Entries)),
		strconv.Itoa(len(t.Exits)),
	}
}

// Price renders a price with two decimals, rounding half away from zero.
// Zero renders empty.
func Price(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}
