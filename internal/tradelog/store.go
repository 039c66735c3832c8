package tradelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

var ErrNoExport = errors.New("no export stored")

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	// WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Run schema migration
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveExport replaces the stored snapshot with e.
func (s *Store) SaveExport(ctx context.Context, e *Export) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trades`); err != nil {
		return fmt.Errorf("clearing trades: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exports`); err != nil {
		return fmt.Errorf("clearing exports: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO exports (export_id, history_file, positions_file, journal_file,
			report, trade_count, created_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ExportID, e.HistoryFile, e.PositionsFile, e.JournalFile,
		e.Report, len(e.Trades), e.CreatedTime,
	)
	if err != nil {
		return fmt.Errorf("inserting export: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (export_id, seq, symbol, side, start_time, avg_entry_price,
			total_entry_amount, last_stop_loss, last_price_target, end_time,
			avg_exit_price, total_exit_amount, entry_count, exit_count, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing trade insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range e.Trades {
		_, err := stmt.ExecContext(ctx,
			e.ExportID, t.Seq, t.Symbol, t.Side, t.StartTime, t.AvgEntryPrice,
			t.TotalEntryAmount, t.LastStopLoss, t.LastPriceTarget, t.EndTime,
			t.AvgExitPrice, t.TotalExitAmount, t.EntryCount, t.ExitCount, t.Completed,
		)
		if err != nil {
			return fmt.Errorf("inserting %s trade: %w", t.Symbol, err)
		}
	}

	return tx.Commit()
}

// LastExport returns the stored snapshot, or ErrNoExport if nothing was saved.
func (s *Store) LastExport(ctx context.Context) (*Export, error) {
	var e Export
	err := s.db.QueryRowContext(ctx, `
		SELECT export_id, history_file, positions_file, journal_file, report, created_time
		FROM exports ORDER BY created_time DESC LIMIT 1`,
	).Scan(&e.ExportID, &e.HistoryFile, &e.PositionsFile, &e.JournalFile, &e.Report, &e.CreatedTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoExport
	}
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, tradeColumns+` FROM trades WHERE export_id = ? ORDER BY seq`, e.ExportID)
	if err != nil {
		return nil, fmt.Errorf("reading trades: %w", err)
	}
	e.Trades, err = scanTrades(rows)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// OpenTrades returns the trades of the stored snapshot that are still open.
func (s *Store) OpenTrades(ctx context.Context) ([]TradeRow, error) {
	rows, err := s.db.QueryContext(ctx, tradeColumns+` FROM v_open_trades ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("reading open trades: %w", err)
	}
	return scanTrades(rows)
}

const tradeColumns = `
	SELECT seq, symbol, side, start_time, avg_entry_price, total_entry_amount,
		last_stop_loss, last_price_target, end_time, avg_exit_price,
		total_exit_amount, entry_count, exit_count, completed`

func scanTrades(rows *sql.Rows) ([]TradeRow, error) {
	defer rows.Close()

	results := []TradeRow{}
	for rows.Next() {
		var t TradeRow
		if err := rows.Scan(&t.Seq, &t.Symbol, &t.Side, &t.StartTime, &t.AvgEntryPrice,
			&t.TotalEntryAmount, &t.LastStopLoss, &t.LastPriceTarget, &t.EndTime,
			&t.AvgExitPrice, &t.TotalExitAmount, &t.EntryCount, &t.ExitCount, &t.Completed); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}
