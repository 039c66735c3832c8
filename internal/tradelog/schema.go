package tradelog

const schemaDDL = `
CREATE TABLE IF NOT EXISTS exports (
	export_id      TEXT PRIMARY KEY,
	history_file   TEXT NOT NULL,
	positions_file TEXT NOT NULL,
	journal_file   TEXT NOT NULL DEFAULT '',
	report         TEXT NOT NULL,
	trade_count    INTEGER NOT NULL DEFAULT 0,
	created_time   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	export_id          TEXT NOT NULL REFERENCES exports(export_id),
	seq                INTEGER NOT NULL,
	symbol             TEXT NOT NULL,
	side               TEXT NOT NULL,
	start_time         TEXT NOT NULL,
	avg_entry_price    TEXT NOT NULL DEFAULT '',
	total_entry_amount TEXT NOT NULL DEFAULT '',
	last_stop_loss     TEXT NOT NULL DEFAULT '',
	last_price_target  TEXT NOT NULL DEFAULT '',
	end_time           TEXT NOT NULL DEFAULT '',
	avg_exit_price     TEXT NOT NULL DEFAULT '',
	total_exit_amount  TEXT NOT NULL DEFAULT '',
	entry_count        INTEGER NOT NULL DEFAULT 0,
	exit_count         INTEGER NOT NULL DEFAULT 0,
	completed          BOOLEAN NOT NULL DEFAULT 0,
	PRIMARY KEY (export_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);

CREATE VIEW IF NOT EXISTS v_open_trades AS
SELECT export_id, seq, symbol, side, start_time, avg_entry_price, total_entry_amount,
	last_stop_loss, last_price_target, end_time, avg_exit_price, total_exit_amount,
	entry_count, exit_count, completed
FROM trades
WHERE completed = 0;
`
