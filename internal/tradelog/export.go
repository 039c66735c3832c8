package tradelog

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gw/tvtrades/internal/assembler"
	"github.com/gw/tvtrades/internal/report"
)

// Sources names the export files a report was built from.
type Sources struct {
	History   string
	Positions string
	Journal   string
}

// NewExport snapshots trades and their rendered report under a fresh id.
func NewExport(src Sources, trades []*assembler.Trade, text string, now time.Time) *Export {
	e := &Export{
		ExportID:      uuid.NewString(),
		HistoryFile:   filepath.Base(src.History),
		PositionsFile: filepath.Base(src.Positions),
		Report:        text,
		CreatedTime:   now.UTC(),
		Trades:        make([]TradeRow, 0, len(trades)),
	}
	if src.Journal != "" {
		e.JournalFile = filepath.Base(src.Journal)
	}

	for i, t := range trades {
		e.Trades = append(e.Trades, tradeToRow(i, t))
	}
	return e
}

func tradeToRow(seq int, t *assembler.Trade) TradeRow {
	cols := report.Row(t)

	return TradeRow{
		Seq:              seq,
		Symbol:           cols[0],
		Side:             cols[1],
		StartTime:        cols[2],
		AvgEntryPrice:    cols[3],
		TotalEntryAmount: cols[4],
		LastStopLoss:     cols[5],
		LastPriceTarget:  cols[6],
		EndTime:          cols[7],
		AvgExitPrice:     cols[8],
		TotalExitAmount:  cols[9],
		EntryCount:       len(t.Entries),
		ExitCount:        len(t.Exits),
		Completed:        t.Completed(),
	}
}
