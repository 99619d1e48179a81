package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/etnz/gestor"
	"github.com/etnz/gestor/date"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// SQLite stores a ledger in the operations table of a SQLite database.
// Numbers are stored as text to keep them exact.
type SQLite struct {
	db       *sql.DB
	currency string
}

// OpenSQLite opens, and creates if needed, the database at path.
func OpenSQLite(path, currency string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db, currency: currency}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		security_id TEXT NOT NULL,
		quantity TEXT NOT NULL,
		amount TEXT NOT NULL,
		kind TEXT NOT NULL,
		commission TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT ''
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Load reads all operations in insertion order.
func (s *SQLite) Load(ctx context.Context) (gestor.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, security_id, quantity, amount, kind, commission, currency
		FROM operations ORDER BY id ASC`)
	if err != nil {
		return gestor.Ledger{}, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var txs []gestor.Transaction
	for rows.Next() {
		var id int64
		var day, security, quantity, amount, kind, commission, currency string
		if err := rows.Scan(&id, &day, &security, &quantity, &amount, &kind, &commission, &currency); err != nil {
			return gestor.Ledger{}, fmt.Errorf("scan operation: %w", err)
		}
		tx, err := s.parse(day, security, quantity, amount, kind, commission, currency)
		if err != nil {
			return gestor.Ledger{}, fmt.Errorf("operation %d: %w", id, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return gestor.Ledger{}, fmt.Errorf("iterate operations: %w", err)
	}
	return gestor.NewLedgerIn(s.currency, txs...)
}

func (s *SQLite) parse(day, security, quantity, amount, kind, commission, currency string) (gestor.Transaction, error) {
	if currency == "" {
		currency = s.currency
	}
	on, err := date.Parse(day)
	if err != nil {
		return gestor.Transaction{}, err
	}
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return gestor.Transaction{}, fmt.Errorf("quantity: %w", err)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return gestor.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	c, err := decimal.NewFromString(commission)
	if err != nil {
		return gestor.Transaction{}, fmt.Errorf("commission: %w", err)
	}
	k, err := gestor.ParseKind(kind)
	if err != nil {
		return gestor.Transaction{}, err
	}
	return gestor.Transaction{
		Date:       on,
		Security:   gestor.NormalizeSecurity(security),
		Quantity:   gestor.Q(q),
		Amount:     gestor.M(a, currency),
		Kind:       k,
		Commission: gestor.M(c, currency),
	}, nil
}

// Save replaces all operations inside a single SQL transaction.
func (s *SQLite) Save(ctx context.Context, l gestor.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM operations`); err != nil {
		return fmt.Errorf("clear operations: %w", err)
	}
	// Restart ids so that they keep matching ledger indexes.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'operations'`); err != nil {
		return fmt.Errorf("reset operations sequence: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO operations(date, security_id, quantity, amount, kind, commission, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert operation: %w", err)
	}
	defer stmt.Close()

	for _, op := range l.Transactions() {
		_, err := stmt.ExecContext(ctx,
			op.Date.String(),
			op.Security,
			op.Quantity.Decimal().String(),
			op.Amount.Decimal().String(),
			op.Kind.String(),
			op.Commission.Decimal().String(),
			op.Amount.Currency(),
		)
		if err != nil {
			return fmt.Errorf("insert operation %s: %w", op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit operations: %w", err)
	}
	return nil
}
