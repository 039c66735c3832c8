package tradelog

import "time"

// Export is one conversion run: the files it read and the report it produced.
type Export struct {
	ExportID      string
	HistoryFile   string
	PositionsFile string
	JournalFile   string // empty when no journal was used
	Report        string
	CreatedTime   time.Time
	Trades        []TradeRow
}

// TradeRow is a report row as stored. Prices and amounts keep their
// rendered text so the stored snapshot matches the report exactly.
type TradeRow struct {
	Seq              int
	Symbol           string
	Side             string
	StartTime        string
	AvgEntryPrice    string
	TotalEntryAmount string
	LastStopLoss     string
	LastPriceTarget  string
	EndTime          string // empty while the trade is open
	AvgExitPrice     string
	TotalExitAmount  string
	EntryCount       int
	ExitCount        int
	Completed        bool
}
