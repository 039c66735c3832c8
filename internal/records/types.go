package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one CSV row keyed by header name.
type Row map[string]string

type Side string

const (
	SideUnknown Side = ""
	SideLong    Side = "Long"
	SideShort   Side = "Short"
)

// Inverted returns the opposite side. Unknown stays unknown.
func (s Side) Inverted() Side {
	switch s {
	case SideLong:
		return SideShort
	case SideShort:
		return SideLong
	default:
		return SideUnknown
	}
}

type OrderType string

const (
	OrderTypeMarket     OrderType = "Market"
	OrderTypeLimit      OrderType = "Limit"
	OrderTypeStop       OrderType = "Stop"
	OrderTypeTakeProfit OrderType = "TakeProfit"
	OrderTypeStopLoss   OrderType = "StopLoss"
)

type OrderStatus string

const (
	OrderStatusFilled    OrderStatus = "Filled"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusRejected  OrderStatus = "Rejected"
)

// Order is a normalized fill. Synthetic orders built from the positions
// snapshot carry a zero Time.
type Order struct {
	Time    time.Time
	Price   decimal.Decimal
	Amount  decimal.Decimal
	OrderID string
}

// HistoryEntry is one non-rejected row of the order-history export.
type HistoryEntry struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Amount      decimal.Decimal
	Price       decimal.Decimal // rounded to 2 places
	Status      OrderStatus
	PlacingTime time.Time
	ClosingTime time.Time
	OrderID     string
}

// Order returns the history-derived fill, timed at the closing time.
func (h HistoryEntry) Order() Order {
	return Order{
		Time:    h.ClosingTime,
		Price:   h.Price,
		Amount:  h.Amount,
		OrderID: h.OrderID,
	}
}

func (h HistoryEntry) IsFilled() bool {
	return h.Status == OrderStatusFilled
}

// PositionEntry is one row of the current-positions snapshot. Zero
// PriceTarget or StopLoss means none is set.
type PositionEntry struct {
	Symbol       string
	Side         Side
	AvgFillPrice decimal.Decimal
	PriceTarget  decimal.Decimal
	StopLoss     decimal.Decimal
	Amount       decimal.Decimal
}

// JournalEntry is an execution notification extracted from the journal.
type JournalEntry struct {
	OrderID string
	Symbol  string
	Time    time.Time
	Price   decimal.Decimal
	Amount  decimal.Decimal
}

func (j JournalEntry) Order() Order {
	return Order{
		Time:    j.Time,
		Price:   j.Price,
		Amount:  j.Amount,
		OrderID: j.OrderID,
	}
}
