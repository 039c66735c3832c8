package assembler

import (
	"fmt"

	"github.com/gw/tvtrades/internal/records"
)

// Input holds the raw rows of one conversion. Journal is optional; a nil
// Journal means no journal was supplied.
type Input struct {
	History   []records.Row
	Positions []records.Row
	Journal   []records.Row
}

type Result struct {
	Trades   []*Trade
	Warnings []Warning
}

// Convert parses the sources and assembles trades. Any malformed record
// aborts the conversion.
func Convert(in Input) (*Result, error) {
	history, err := records.ParseHistory(in.History)
	if err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	positions, err := records.ParsePositions(in.Positions)
	if err != nil {
		return nil, fmt.Errorf("parsing positions: %w", err)
	}

	var resolver OrderResolver = HistoryResolver{}
	if in.Journal != nil {
		journal, err := records.ParseJournal(in.Journal)
		if err != nil {
			return nil, fmt.Errorf("parsing journal: %w", err)
		}
		resolver = NewJournalResolver(journal)
	}

	a := New(resolver)
	trades := a.Assemble(history, positions)

	return &Result{Trades: trades, Warnings: a.Warnings()}, nil
}
