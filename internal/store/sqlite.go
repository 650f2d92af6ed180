package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"meridian/internal/domain"
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore archives backtest runs in a SQLite database. Safe for
// concurrent use through database/sql's pooling.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol          TEXT NOT NULL,
	start_time      INTEGER NOT NULL,
	end_time        INTEGER NOT NULL,
	timeframe       TEXT NOT NULL,
	initial_capital REAL NOT NULL,
	status          TEXT NOT NULL,
	final_pnl       REAL NOT NULL,
	created_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_trades (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	seq    INTEGER NOT NULL,
	time   INTEGER NOT NULL,
	side   TEXT NOT NULL,
	price  REAL NOT NULL,
	shares REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS run_equity (
	run_id         INTEGER NOT NULL REFERENCES runs(id),
	seq            INTEGER NOT NULL,
	time           INTEGER NOT NULL,
	cash           REAL NOT NULL,
	position_value REAL NOT NULL,
	total_value    REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// NewSQLiteStore opens (creating if needed) the SQLite database at path
// and ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists a run with its trades and equity curve in one
// transaction and returns the assigned run ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (symbol, start_time, end_time, timeframe, initial_capital, status, final_pnl, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Symbol, run.Start.UnixMilli(), run.End.UnixMilli(), run.Timeframe,
		run.InitialCapital, string(run.Status), run.FinalPnL, createdAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, tr := range run.Trades {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_trades (run_id, seq, time, side, price, shares) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, tr.Time.UnixMilli(), string(tr.Side), tr.Price, tr.Shares); err != nil {
			return 0, fmt.Errorf("inserting trade %d: %w", i, err)
		}
	}

	for i, ep := range run.Equity {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_equity (run_id, seq, time, cash, position_value, total_value) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, ep.Time.UnixMilli(), ep.Cash, ep.PositionValue, ep.TotalValue); err != nil {
			return 0, fmt.Errorf("inserting equity point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetRun loads a run with full trade and equity detail.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	run := &RunRecord{ID: id}
	var startMs, endMs, createdMs int64
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT symbol, start_time, end_time, timeframe, initial_capital, status, final_pnl, created_at
		 FROM runs WHERE id = ?`, id).
		Scan(&run.Symbol, &startMs, &endMs, &run.Timeframe, &run.InitialCapital, &status, &run.FinalPnL, &createdMs)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %d not found", id)
		}
		return nil, err
	}
	run.Start = time.UnixMilli(startMs).UTC()
	run.End = time.UnixMilli(endMs).UTC()
	run.Status = domain.RunStatus(status)
	run.CreatedAt = time.UnixMilli(createdMs).UTC()

	trades, err := s.loadTrades(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Trades = trades

	equity, err := s.loadEquity(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Equity = equity

	return run, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.symbol, r.start_time, r.end_time, r.timeframe, r.initial_capital, r.status, r.final_pnl, r.created_at,
		        (SELECT COUNT(*) FROM run_trades t WHERE t.run_id = r.id)
		 FROM runs r ORDER BY r.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var sum RunSummary
		var startMs, endMs, createdMs int64
		var status string
		if err := rows.Scan(&sum.ID, &sum.Symbol, &startMs, &endMs, &sum.Timeframe,
			&sum.InitialCapital, &status, &sum.FinalPnL, &createdMs, &sum.TradeCount); err != nil {
			return nil, err
		}
		sum.Start = time.UnixMilli(startMs).UTC()
		sum.End = time.UnixMilli(endMs).UTC()
		sum.Status = domain.RunStatus(status)
		sum.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadTrades(ctx context.Context, id int64) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time, side, price, shares FROM run_trades WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var tr domain.Trade
		var ms int64
		var side string
		if err := rows.Scan(&ms, &side, &tr.Price, &tr.Shares); err != nil {
			return nil, err
		}
		tr.Time = time.UnixMilli(ms).UTC()
		tr.Side = domain.Side(side)
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}

func (s *SQLiteStore) loadEquity(ctx context.Context, id int64) ([]domain.EquityPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time, cash, position_value, total_value FROM run_equity WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var equity []domain.EquityPoint
	for rows.Next() {
		var ep domain.EquityPoint
		var ms int64
		if err := rows.Scan(&ms, &ep.Cash, &ep.PositionValue, &ep.TotalValue); err != nil {
			return nil, err
		}
		ep.Time = time.UnixMilli(ms).UTC()
		equity = append(equity, ep)
	}
	return equity, rows.Err()
}
