// Package assembler rebuilds trade lifecycles from order-history fills.
package assembler

import (
	"log/slog"
	"sort"
	"time"

	"github.com/gw/tvtrades/internal/records"
)

type Assembler struct {
	resolver OrderResolver
}

// New returns an assembler using resolver for filled orders. A nil resolver
// means history data is used as is.
func New(resolver OrderResolver) *Assembler {
	if resolver == nil {
		resolver = HistoryResolver{}
	}
	return &Assembler{resolver: resolver}
}

// Assemble consumes history entries in time order and returns the surviving
// trades, most recently started first. positions supplies live stop-loss and
// take-profit levels for trades still open; it is not modified.
func (a *Assembler) Assemble(history []records.HistoryEntry, positions []records.PositionEntry) []*Trade {
	a.resolver.Reset()

	var trades []*Trade
	open := make(map[string]*Trade)

	for _, e := range history {
		trade, ok := open[e.Symbol]
		if !ok {
			trade = &Trade{Symbol: e.Symbol}
			open[e.Symbol] = trade
			trades = append(trades, trade)
		}

		a.apply(trade, e)

		if trade.Completed() {
			delete(open, e.Symbol)
		}
	}

	var firstHistory time.Time
	if len(history) > 0 {
		firstHistory = history[0].PlacingTime
	}
	a.resolver.Finish(firstHistory)

	trades = withEntries(trades)
	sortByStartDesc(trades)
	attachLiveOrders(trades, positions)

	trades = exitedSince(trades, a.resolver.ReliableSince(firstHistory))
	sortByStartDesc(trades)

	slog.Debug("assembled trades", "history", len(history), "trades", len(trades))
	return trades
}

// Warnings returns data-quality findings from the last Assemble call.
func (a *Assembler) Warnings() []Warning {
	return a.resolver.Warnings()
}

func (a *Assembler) apply(t *Trade, e records.HistoryEntry) {
	switch {
	case e.Type == records.OrderTypeStopLoss:
		t.Side = e.Side.Inverted()
		t.StopLosses = append(t.StopLosses, e.Order())
		if e.IsFilled() {
			t.Exits = append(t.Exits, a.resolver.Resolve(e))
		}

	case e.Type == records.OrderTypeTakeProfit:
		t.Side = e.Side.Inverted()
		t.PriceTargets = append(t.PriceTargets, e.Order())
		if e.IsFilled() {
			t.Exits = append(t.Exits, a.resolver.Resolve(e))
		}

	case t.FirstBuyIn():
		if e.IsFilled() {
			t.Side = e.Side
			t.Entries = append(t.Entries, a.resolver.Resolve(e))
		}

	case e.Side == t.Side:
		if !e.IsFilled() {
			return
		}
		t.Entries = append(t.Entries, a.resolver.Resolve(e))

		// Exits recorded before the first known entry belong to an older
		// trade whose entries are outside the history.
		if len(t.Entries) == 1 && len(t.Exits) > 0 {
			t.dropBefore(t.StartTime())
		}

	default:
		if e.IsFilled() {
			t.Exits = append(t.Exits, a.resolver.Resolve(e))
		}
	}
}

func withEntries(trades []*Trade) []*Trade {
	kept := trades[:0]
	for _, t := range trades {
		if len(t.Entries) > 0 {
			kept = append(kept, t)
		}
	}
	return kept
}

// attachLiveOrders adds the snapshot's stop-loss and take-profit to open
// trades. A position is used by at most one trade.
func attachLiveOrders(trades []*Trade, positions []records.PositionEntry) {
	claimed := make([]bool, len(positions))

	for _, t := range trades {
		if t.Completed() {
			continue
		}
		for i, p := range positions {
			if claimed[i] || p.Symbol != t.Symbol {
				continue
			}
			claimed[i] = true
			if p.StopLoss.IsPositive() {
				t.StopLosses = append(t.StopLosses, records.Order{Price: p.StopLoss, Amount: p.Amount})
			}
			if p.PriceTarget.IsPositive() {
				t.PriceTargets = append(t.PriceTargets, records.Order{Price: p.PriceTarget, Amount: p.Amount})
			}
			break
		}
	}
}

// exitedSince drops trades whose first exit predates since.
func exitedSince(trades []*Trade, since time.Time) []*Trade {
	kept := trades[:0]
	for _, t := range trades {
		if len(t.Exits) > 0 && earliest(t.Exits).Before(since) {
			slog.Debug("dropping trade exited before reliable window",
				"symbol", t.Symbol,
				"start", t.StartTime().Format(records.TimeLayout),
				"since", since.Format(records.TimeLayout),
			)
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func sortByStartDesc(trades []*Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].StartTime().After(trades[j].StartTime())
	})
}
