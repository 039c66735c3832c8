package records

import (
	"log/slog"
	"regexp"
	"sort"
)

// Execution notifications look like
//
//	Order 123456 for symbol NASDAQ:AAPL has been executed at price 185.50 for 10 units
//
// Every other journal line is informational and ignored.
var (
	executionPattern = regexp.MustCompile(`(?i)\border\s+([0-9][A-Za-z0-9_-]*)\b.*?\bhas been executed at price\s+([0-9][0-9\s\p{Zs}]*(?:\.[0-9]+)?).*?\bfor\s+([0-9][0-9\s\p{Zs}]*(?:\.[0-9]+)?)`)
	symbolPattern    = regexp.MustCompile(`(?i)\bsymbol\s+([^\s,]+)`)
)

// ParseJournal extracts execution notifications from journal rows and
// returns them sorted by time. Non-execution rows are dropped.
func ParseJournal(rows []Row) ([]JournalEntry, error) {
	var entries []JournalEntry
	skipped := 0

	for i, row := range rows {
		r := rowReader{source: SourceJournal, index: i + 1, row: row}

		text, err := r.text(ColText)
		if err != nil {
			return nil, err
		}
		m := executionPattern.FindStringSubmatch(text)
		if m == nil {
			skipped++
			continue
		}

		t, err := r.timestamp(ColTime)
		if err != nil {
			return nil, err
		}
		price, err := ParseNumber(m[2])
		if err != nil {
			return nil, r.fail(ColText, text, err)
		}
		amount, err := ParseNumber(m[3])
		if err != nil {
			return nil, r.fail(ColText, text, err)
		}

		var symbol string
		if sm := symbolPattern.FindStringSubmatch(text); sm != nil {
			symbol = NormalizeSymbol(sm[1])
		}

		entries = append(entries, JournalEntry{
			OrderID: m[1],
			Symbol:  symbol,
			Time:    t,
			Price:   price,
			Amount:  amount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})

	slog.Debug("parsed journal", "rows", len(rows), "executions", len(entries), "skipped", skipped)
	return entries, nil
}
