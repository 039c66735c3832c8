package assembler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gw/tvtrades/internal/records"
)

// Trade is one open-to-close position lifecycle for a symbol.
type Trade struct {
	Symbol       string
	Side         records.Side
	Entries      []records.Order
	StopLosses   []records.Order
	PriceTargets []records.Order
	Exits        []records.Order
}

// FirstBuyIn reports whether nothing has been recorded on the trade yet.
func (t *Trade) FirstBuyIn() bool {
	return len(t.Entries) == 0 && len(t.Exits) == 0 &&
		len(t.StopLosses) == 0 && len(t.PriceTargets) == 0
}

// Completed reports whether every entered unit has been exited. Amounts are
// exact decimals, so equality is safe.
func (t *Trade) Completed() bool {
	return len(t.Entries) > 0 && len(t.Exits) > 0 &&
		t.TotalEntryAmount().Equal(t.TotalExitAmount())
}

// StartTime is the earliest entry time. Zero if there are no entries.
func (t *Trade) StartTime() time.Time {
	return earliest(t.Entries)
}

// EndTime is the latest exit time; ok is false while there are no exits.
func (t *Trade) EndTime() (end time.Time, ok bool) {
	if len(t.Exits) == 0 {
		return time.Time{}, false
	}
	end = t.Exits[0].Time
	for _, o := range t.Exits[1:] {
		if o.Time.After(end) {
			end = o.Time
		}
	}
	return end, true
}

func (t *Trade) TotalEntryAmount() decimal.Decimal { return totalAmount(t.Entries) }

func (t *Trade) TotalExitAmount() decimal.Decimal { return totalAmount(t.Exits) }

func (t *Trade) AvgEntryPrice() decimal.Decimal { return avgPrice(t.Entries) }

func (t *Trade) AvgExitPrice() decimal.Decimal { return avgPrice(t.Exits) }

// LastStopLoss is the price of the latest stop-loss by time, zero if none.
func (t *Trade) LastStopLoss() decimal.Decimal { return latestPrice(t.StopLosses) }

// LastPriceTarget is the price of the latest take-profit by time, zero if none.
func (t *Trade) LastPriceTarget() decimal.Decimal { return latestPrice(t.PriceTargets) }

// dropBefore removes exits, stops and targets placed before cutoff.
func (t *Trade) dropBefore(cutoff time.Time) {
	t.Exits = keepFrom(t.Exits, cutoff)
	t.StopLosses = keepFrom(t.StopLosses, cutoff)
	t.PriceTargets = keepFrom(t.PriceTargets, cutoff)
}

func keepFrom(orders []records.Order, cutoff time.Time) []records.Order {
	kept := orders[:0]
	for _, o := range orders {
		if !o.Time.Before(cutoff) {
			kept = append(kept, o)
		}
	}
	return kept
}

func earliest(orders []records.Order) time.Time {
	if len(orders) == 0 {
		return time.Time{}
	}
	first := orders[0].Time
	for _, o := range orders[1:] {
		if o.Time.Before(first) {
			first = o.Time
		}
	}
	return first
}

func totalAmount(orders []records.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Amount)
	}
	return total
}

func avgPrice(orders []records.Order) decimal.Decimal {
	total := totalAmount(orders)
	if !total.IsPositive() {
		return decimal.Zero
	}
	weighted := decimal.Zero
	for _, o := range orders {
		weighted = weighted.Add(o.Price.Mul(o.Amount))
	}
	return weighted.Div(total)
}

// latestPrice picks the most recent order; ties go to the earliest listed.
func latestPrice(orders []records.Order) decimal.Decimal {
	if len(orders) == 0 {
		return decimal.Zero
	}
	latest := orders[0]
	for _, o := range orders[1:] {
		if o.Time.After(latest.Time) {
			latest = o
		}
	}
	return latest.Price
}
