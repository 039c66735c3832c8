package assembler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gw/tvtrades/internal/records"
)

// OrderResolver turns a filled history entry into the order recorded on a
// trade. Implementations may consult a higher-fidelity source.
type OrderResolver interface {
	// Reset forgets matches and warnings from a previous run.
	Reset()
	Resolve(e records.HistoryEntry) records.Order
	// ReliableSince is the earliest time the active sources are trusted
	// from, given the time of the first history entry.
	ReliableSince(firstHistory time.Time) time.Time
	// Finish reports what the resolver left unmatched.
	Finish(firstHistory time.Time)
	Warnings() []Warning
}

// WarningKind classifies non-fatal data-quality findings.
type WarningKind string

const (
	WarnMissingJournalEntry WarningKind = "missing_journal_entry"
	WarnUnmatchedJournal    WarningKind = "unmatched_journal_entries"
)

type Warning struct {
	Kind    WarningKind
	OrderID string
	Symbol  string
	Time    time.Time
	Count   int
	Message string
}

// HistoryResolver passes history data through unchanged.
type HistoryResolver struct{}

func (HistoryResolver) Reset() {}

func (HistoryResolver) Resolve(e records.HistoryEntry) records.Order { return e.Order() }

func (HistoryResolver) ReliableSince(firstHistory time.Time) time.Time { return firstHistory }

func (HistoryResolver) Finish(time.Time) {}

func (HistoryResolver) Warnings() []Warning { return nil }

// JournalResolver overrides history fills with matching journal executions.
// Each journal entry is matched at most once.
type JournalResolver struct {
	entries  []records.JournalEntry
	claimed  []bool
	byID     map[string][]int
	warnings []Warning
}

// NewJournalResolver expects entries sorted by time, as returned by
// records.ParseJournal. The slice is not modified.
func NewJournalResolver(entries []records.JournalEntry) *JournalResolver {
	byID := make(map[string][]int, len(entries))
	for i, e := range entries {
		byID[e.OrderID] = append(byID[e.OrderID], i)
	}
	return &JournalResolver{
		entries: entries,
		claimed: make([]bool, len(entries)),
		byID:    byID,
	}
}

func (r *JournalResolver) Reset() {
	clear(r.claimed)
	r.warnings = nil
}

func (r *JournalResolver) Resolve(e records.HistoryEntry) records.Order {
	for _, idx := range r.byID[e.OrderID] {
		if r.claimed[idx] {
			continue
		}
		r.claimed[idx] = true
		return r.entries[idx].Order()
	}

	fallback := e.Order()
	if start, ok := r.coverageStart(); ok && !fallback.Time.Before(start) {
		w := Warning{
			Kind:    WarnMissingJournalEntry,
			OrderID: e.OrderID,
			Symbol:  e.Symbol,
			Time:    fallback.Time,
			Message: fmt.Sprintf("no journal execution for order %s (%s) at %s, using order history", e.OrderID, e.Symbol, fallback.Time.Format(records.TimeLayout)),
		}
		r.warnings = append(r.warnings, w)
		slog.Warn("journal entry missing",
			"order_id", e.OrderID,
			"symbol", e.Symbol,
			"time", fallback.Time.Format(records.TimeLayout),
		)
	}
	return fallback
}

func (r *JournalResolver) ReliableSince(firstHistory time.Time) time.Time {
	if start, ok := r.coverageStart(); ok {
		return start
	}
	return firstHistory
}

func (r *JournalResolver) Finish(firstHistory time.Time) {
	var before, within int
	for i, e := range r.entries {
		if r.claimed[i] {
			continue
		}
		if e.Time.Before(firstHistory) {
			before++
		} else {
			within++
		}
	}

	if before > 0 {
		slog.Info("journal entries before order history ignored", "count", before)
	}
	if within > 0 {
		r.warnings = append(r.warnings, Warning{
			Kind:    WarnUnmatchedJournal,
			Count:   within,
			Message: fmt.Sprintf("%d journal executions were not matched to any order", within),
		})
		slog.Warn("journal entries left unmatched", "count", within)
	}
}

func (r *JournalResolver) Warnings() []Warning { return r.warnings }

// Remaining returns the journal entries not yet matched, in time order.
func (r *JournalResolver) Remaining() []records.JournalEntry {
	var out []records.JournalEntry
	for i, e := range r.entries {
		if !r.claimed[i] {
			out = append(out, e)
		}
	}
	return out
}

func (r *JournalResolver) coverageStart() (time.Time, bool) {
	if len(r.entries) == 0 {
		return time.Time{}, false
	}
	return r.entries[0].Time, true
}
