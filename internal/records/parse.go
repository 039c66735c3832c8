package records

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Source kinds, used in errors and logs.
const (
	SourceHistory   = "history"
	SourcePositions = "positions"
	SourceJournal   = "journal"
)

// History columns. Exports come either with a single "Time" column or with
// separate placing/closing times.
const (
	ColSymbol      = "Symbol"
	ColSide        = "Side"
	ColType        = "Type"
	ColQty         = "Qty"
	ColPrice       = "Price"
	ColFillPrice   = "Fill Price"
	ColStatus      = "Status"
	ColTime        = "Time"
	ColPlacingTime = "Placing Time"
	ColClosingTime = "Closing Time"
	ColOrderID     = "Order id"
)

// Positions columns.
const (
	ColAvgFillPrice = "Avg Fill Price"
	ColTakeProfit   = "Take Profit"
	ColStopLoss     = "Stop Loss"
)

// Journal columns.
const (
	ColText = "Text"
)

// TimeLayout is the canonical rendering of record times.
const TimeLayout = "2006-01-02 15:04:05"

var timeLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseHistory converts order-history rows, dropping rejected orders, and
// returns them sorted by placing time. Ties keep input order.
func ParseHistory(rows []Row) ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, 0, len(rows))

	for i, row := range rows {
		r := rowReader{source: SourceHistory, index: i + 1, row: row}

		status, err := r.status(ColStatus)
		if err != nil {
			return nil, err
		}
		if status == OrderStatusRejected {
			continue
		}

		symbol, err := r.text(ColSymbol)
		if err != nil {
			return nil, err
		}
		side, err := r.tradeSide(ColSide)
		if err != nil {
			return nil, err
		}
		typ, err := r.orderType(ColType)
		if err != nil {
			return nil, err
		}
		amount, err := r.decimal(ColQty)
		if err != nil {
			return nil, err
		}
		price, err := r.fillPrice()
		if err != nil {
			return nil, err
		}
		placing, closing, err := r.orderTimes()
		if err != nil {
			return nil, err
		}
		orderID, err := r.text(ColOrderID)
		if err != nil {
			return nil, err
		}
		if orderID == "" {
			return nil, r.fail(ColOrderID, orderID, errors.New("empty order id"))
		}

		entries = append(entries, HistoryEntry{
			Symbol:      NormalizeSymbol(symbol),
			Side:        side,
			Type:        typ,
			Amount:      amount,
			Price:       price,
			Status:      status,
			PlacingTime: placing,
			ClosingTime: closing,
			OrderID:     orderID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PlacingTime.Before(entries[j].PlacingTime)
	})

	for _, e := range entries {
		slog.Debug("history entry",
			"symbol", e.Symbol,
			"side", e.Side,
			"type", e.Type,
			"amount", e.Amount,
			"price", e.Price,
			"status", e.Status,
			"placing", e.PlacingTime.Format(TimeLayout),
			"closing", e.ClosingTime.Format(TimeLayout),
			"order_id", e.OrderID,
		)
	}
	slog.Debug("parsed history", "rows", len(rows), "entries", len(entries))

	return entries, nil
}

// ParsePositions converts positions-snapshot rows in input order. Empty or
// unparsable take-profit and stop-loss cells mean "not set"; the columns
// themselves are required.
func ParsePositions(rows []Row) ([]PositionEntry, error) {
	entries := make([]PositionEntry, 0, len(rows))

	for i, row := range rows {
		r := rowReader{source: SourcePositions, index: i + 1, row: row}

		symbol, err := r.text(ColSymbol)
		if err != nil {
			return nil, err
		}
		side, err := r.positionSide(ColSide)
		if err != nil {
			return nil, err
		}
		avg, err := r.decimal(ColAvgFillPrice)
		if err != nil {
			return nil, err
		}
		amount, err := r.decimal(ColQty)
		if err != nil {
			return nil, err
		}
		target, err := r.optionalDecimal(ColTakeProfit)
		if err != nil {
			return nil, err
		}
		stop, err := r.optionalDecimal(ColStopLoss)
		if err != nil {
			return nil, err
		}

		e := PositionEntry{
			Symbol:       NormalizeSymbol(symbol),
			Side:         side,
			AvgFillPrice: avg,
			PriceTarget:  target,
			StopLoss:     stop,
			Amount:       amount,
		}
		entries = append(entries, e)

		slog.Debug("position entry",
			"symbol", e.Symbol,
			"side", e.Side,
			"entry", e.AvgFillPrice.StringFixed(2),
			"target", e.PriceTarget.StringFixed(2),
			"stop", e.StopLoss.StringFixed(2),
			"amount", e.Amount,
		)
	}

	return entries, nil
}

// NormalizeSymbol strips an exchange prefix: "NASDAQ:AAPL" becomes "AAPL".
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	return s[strings.LastIndex(s, ":")+1:]
}

// ParseNumber parses a decimal written with '.' as separator. Embedded
// whitespace (TradingView's thousands separator) is ignored.
func ParseNumber(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return decimal.Zero, errors.New("empty number")
	}
	return decimal.NewFromString(cleaned)
}

// ParseTime accepts the timestamp layouts seen in exports. Times without a
// zone are read as UTC wall clock.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

type rowReader struct {
	source string
	index  int
	row    Row
}

func (r rowReader) fail(col, value string, err error) error {
	return &MalformedRecordError{Source: r.source, Row: r.index, Column: col, Value: value, Err: err}
}

func (r rowReader) has(col string) bool {
	_, ok := r.row[col]
	return ok
}

func (r rowReader) text(col string) (string, error) {
	v, ok := r.row[col]
	if !ok {
		return "", r.fail(col, "", errMissingColumn)
	}
	return strings.TrimSpace(v), nil
}

func (r rowReader) decimal(col string) (decimal.Decimal, error) {
	v, err := r.text(col)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := ParseNumber(v)
	if err != nil {
		return decimal.Zero, r.fail(col, v, err)
	}
	return d, nil
}

// optionalDecimal requires the column but reads an empty or unparsable cell
// as zero.
func (r rowReader) optionalDecimal(col string) (decimal.Decimal, error) {
	v, err := r.text(col)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := ParseNumber(v)
	if err != nil {
		return decimal.Zero, nil
	}
	return d, nil
}

func (r rowReader) timestamp(col string) (time.Time, error) {
	v, err := r.text(col)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ParseTime(v)
	if err != nil {
		return time.Time{}, r.fail(col, v, err)
	}
	return t, nil
}

// fillPrice prefers the fill price and falls back to the order price.
func (r rowReader) fillPrice() (decimal.Decimal, error) {
	col := ColPrice
	if v, ok := r.row[ColFillPrice]; ok && strings.TrimSpace(v) != "" {
		col = ColFillPrice
	}
	p, err := r.decimal(col)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Round(2), nil
}

func (r rowReader) orderTimes() (placing, closing time.Time, err error) {
	if r.has(ColTime) && !r.has(ColPlacingTime) {
		t, err := r.timestamp(ColTime)
		return t, t, err
	}
	placing, err = r.timestamp(ColPlacingTime)
	if err != nil {
		return placing, closing, err
	}
	closing, err = r.timestamp(ColClosingTime)
	return placing, closing, err
}

func (r rowReader) status(col string) (OrderStatus, error) {
	v, err := r.text(col)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(v) {
	case "filled":
		return OrderStatusFilled, nil
	case "cancelled", "canceled":
		return OrderStatusCancelled, nil
	case "rejected":
		return OrderStatusRejected, nil
	}
	return "", r.fail(col, v, errors.New("unknown order status"))
}

func (r rowReader) tradeSide(col string) (Side, error) {
	v, err := r.text(col)
	if err != nil {
		return SideUnknown, err
	}
	switch strings.ToLower(v) {
	case "buy":
		return SideLong, nil
	case "sell":
		return SideShort, nil
	}
	return SideUnknown, r.fail(col, v, errors.New("side must be Buy or Sell"))
}

func (r rowReader) positionSide(col string) (Side, error) {
	v, err := r.text(col)
	if err != nil {
		return SideUnknown, err
	}
	switch strings.ToLower(v) {
	case "long":
		return SideLong, nil
	case "short":
		return SideShort, nil
	}
	return SideUnknown, r.fail(col, v, errors.New("side must be Long or Short"))
}

var orderTypes = []OrderType{
	OrderTypeMarket,
	OrderTypeLimit,
	OrderTypeStop,
	OrderTypeTakeProfit,
	OrderTypeStopLoss,
}

func (r rowReader) orderType(col string) (OrderType, error) {
	v, err := r.text(col)
	if err != nil {
		return "", err
	}
	compact := strings.ReplaceAll(v, " ", "")
	for _, t := range orderTypes {
		if strings.EqualFold(compact, string(t)) {
			return t, nil
		}
	}
	return "", r.fail(col, v, errors.New("unknown order type"))
}
