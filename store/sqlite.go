package store

import (
	"context"
	"database/sql"
	"fmt"

	varlik "github.com/gurbeyk/Varlik-takip-programi-sub000"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

// Numeric columns are TEXT holding full-precision decimals: SQLite REAL is a
// binary float and would corrupt the cost basis on round trip.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS positions (
	class    TEXT NOT NULL,
	symbol   TEXT NOT NULL,
	platform TEXT NOT NULL,
	quantity TEXT NOT NULL,
	avg_cost TEXT NOT NULL,
	currency TEXT NOT NULL,
	PRIMARY KEY (class, symbol, platform)
);
CREATE TABLE IF NOT EXISTS transactions (
	id       TEXT PRIMARY KEY,
	class    TEXT NOT NULL,
	symbol   TEXT NOT NULL,
	platform TEXT NOT NULL,
	kind     TEXT NOT NULL,
	quantity TEXT NOT NULL,
	price    TEXT NOT NULL,
	amount   TEXT NOT NULL,
	realized TEXT NOT NULL DEFAULT '0',
	currency TEXT NOT NULL,
	date     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_key
	ON transactions (class, symbol, platform, date);
`

// SQLite is a Store backed by a single-file SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database and ensures the schema.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database %q: %w", path, err)
	}
	// one writer avoids SQLITE_BUSY under concurrent settlements.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database %q: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) LoadPosition(ctx context.Context, key varlik.PositionKey) (*varlik.Position, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT quantity, avg_cost, currency FROM positions WHERE class=? AND symbol=? AND platform=?`,
		key.Class, key.Symbol, key.Platform)

	var quantity, avgCost, currency string
	if err := row.Scan(&quantity, &avgCost, &currency); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("could not load position %s: %w", key, err)
	}
	p, err := scanPosition(key, quantity, avgCost, currency)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLite) SavePosition(ctx context.Context, p varlik.Position) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (class, symbol, platform, quantity, avg_cost, currency)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (class, symbol, platform)
		DO UPDATE SET quantity=excluded.quantity, avg_cost=excluded.avg_cost, currency=excluded.currency`,
		p.Key.Class, p.Key.Symbol, p.Key.Platform,
		p.Quantity.Decimal().String(), p.AverageCost.Decimal().String(), p.Currency())
	if err != nil {
		return fmt.Errorf("could not save position %s: %w", p.Key, err)
	}
	return nil
}

func (s *SQLite) DeletePosition(ctx context.Context, key varlik.PositionKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM positions WHERE class=? AND symbol=? AND platform=?`,
		key.Class, key.Symbol, key.Platform)
	if err != nil {
		return fmt.Errorf("could not delete position %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) ListPositions(ctx context.Context) ([]varlik.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT class, symbol, platform, quantity, avg_cost, currency
		FROM positions ORDER BY class, symbol, platform`)
	if err != nil {
		return nil, fmt.Errorf("could not list positions: %w", err)
	}
	defer rows.Close()

	var out []varlik.Position
	for rows.Next() {
		var key varlik.PositionKey
		var quantity, avgCost, currency string
		if err := rows.Scan(&key.Class, &key.Symbol, &key.Platform, &quantity, &avgCost, &currency); err != nil {
			return nil, err
		}
		p, err := scanPosition(key, quantity, avgCost, currency)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) Transactions(ctx context.Context, key varlik.PositionKey) ([]varlik.TransactionRecord, error) {
	return s.queryTransactions(ctx, `
		SELECT id, class, symbol, platform, kind, quantity, price, amount, realized, currency, date
		FROM transactions WHERE class=? AND symbol=? AND platform=?
		ORDER BY date, rowid`,
		key.Class, key.Symbol, key.Platform)
}

func (s *SQLite) AllTransactions(ctx context.Context) ([]varlik.TransactionRecord, error) {
	return s.queryTransactions(ctx, `
		SELECT id, class, symbol, platform, kind, quantity, price, amount, realized, currency, date
		FROM transactions ORDER BY date, rowid`)
}

func (s *SQLite) queryTransactions(ctx context.Context, query string, args ...any) ([]varlik.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query transactions: %w", err)
	}
	defer rows.Close()

	var out []varlik.TransactionRecord
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) AppendTransaction(ctx context.Context, t varlik.TransactionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, class, symbol, platform, kind, quantity, price, amount, realized, currency, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Key.Class, t.Key.Symbol, t.Key.Platform, string(t.Kind),
		t.Quantity.Decimal().String(), t.Price.Decimal().String(), t.Amount.Decimal().String(),
		t.RealizedPnL.Decimal().String(), t.Price.Currency(), t.Date.String())
	if err != nil {
		return fmt.Errorf("could not append transaction %s: %w", t.ID, err)
	}
	return nil
}

func (s *SQLite) UpdateTransaction(ctx context.Context, t varlik.TransactionRecord) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET class=?, symbol=?, platform=?, kind=?, quantity=?, price=?, amount=?, realized=?, currency=?, date=?
		WHERE id=?`,
		t.Key.Class, t.Key.Symbol, t.Key.Platform, string(t.Kind),
		t.Quantity.Decimal().String(), t.Price.Decimal().String(), t.Amount.Decimal().String(),
		t.RealizedPnL.Decimal().String(), t.Price.Currency(), t.Date.String(), t.ID)
	if err != nil {
		return fmt.Errorf("could not update transaction %s: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{ID: t.ID}
	}
	return nil
}

func (s *SQLite) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("could not delete transaction %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

func scanPosition(key varlik.PositionKey, quantity, avgCost, currency string) (varlik.Position, error) {
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return varlik.Position{}, fmt.Errorf("corrupt quantity %q for %s: %w", quantity, key, err)
	}
	c, err := decimal.NewFromString(avgCost)
	if err != nil {
		return varlik.Position{}, fmt.Errorf("corrupt avg_cost %q for %s: %w", avgCost, key, err)
	}
	return varlik.Position{Key: key, Quantity: varlik.Q(q), AverageCost: varlik.M(c, currency)}, nil
}

func scanTransaction(rows *sql.Rows) (varlik.TransactionRecord, error) {
	var t varlik.TransactionRecord
	var kind, quantity, price, amount, realized, currency, date string
	if err := rows.Scan(&t.ID, &t.Key.Class, &t.Key.Symbol, &t.Key.Platform,
		&kind, &quantity, &price, &amount, &realized, &currency, &date); err != nil {
		return varlik.TransactionRecord{}, err
	}
	t.Kind = varlik.Kind(kind)

	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return varlik.TransactionRecord{}, fmt.Errorf("corrupt quantity %q in %s: %w", quantity, t.ID, err)
	}
	t.Quantity = varlik.Q(q)

	for _, col := range []struct {
		raw  string
		dest *varlik.Money
	}{
		{price, &t.Price},
		{amount, &t.Amount},
	} {
		d, err := decimal.NewFromString(col.raw)
		if err != nil {
			return varlik.TransactionRecord{}, fmt.Errorf("corrupt amount %q in %s: %w", col.raw, t.ID, err)
		}
		*col.dest = varlik.M(d, currency)
	}
	if t.Kind == varlik.KindSell {
		d, err := decimal.NewFromString(realized)
		if err != nil {
			return varlik.TransactionRecord{}, fmt.Errorf("corrupt realized %q in %s: %w", realized, t.ID, err)
		}
		t.RealizedPnL = varlik.M(d, currency)
	}

	on, err := varlik.ParseDate(date)
	if err != nil {
		return varlik.TransactionRecord{}, fmt.Errorf("corrupt date in %s: %w", t.ID, err)
	}
	t.Date = on
	return t, nil
}

var _ varlik.Store = (*SQLite)(nil)
