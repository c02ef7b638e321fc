package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so lexical order on the column equals
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository is the ledger store. Every mutation runs in its own
// transaction under writeMu, and the pool holds a single connection, so
// readers never observe a half-applied operation.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	writeMu sync.Mutex
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

// WithTx runs fn inside one write transaction. Any error or panic rolls the
// whole unit back.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(q *Queries) error) (err error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storageErr("commit", err)
	}
	return nil
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	params, err := transactionParams(t)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.WithTx(ctx, func(q *Queries) error {
		var err error
		id, err = q.CreateTransaction(ctx, params)
		if err != nil {
			return storageErr("create transaction", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"description", t.Description,
		"amount_cents", params.AmountCents,
		"kind", t.Kind)
	return id, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(q *Queries) error {
		n, err := q.DeleteTransaction(ctx, id)
		if err != nil {
			return storageErr("delete transaction", err)
		}
		if n == 0 {
			return &core.NotFoundError{Entity: "transaction", Key: strconv.FormatInt(id, 10)}
		}
		return nil
	})
}

// DeleteTransactionsInRange removes every transaction dated within
// [start, end], both bounds inclusive.
func (r *SQLiteRepository) DeleteTransactionsInRange(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.WithTx(ctx, func(q *Queries) error {
		var err error
		n, err = q.DeleteTransactionsInRange(ctx, formatTime(start), formatTime(end))
		if err != nil {
			return storageErr("delete transactions in range", err)
		}
		return nil
	})
	return n, err
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	return toTransactions(rows)
}

// SumByKind totals the amounts of the given kinds. It is zero when nothing
// matches.
func (r *SQLiteRepository) SumByKind(ctx context.Context, kinds ...core.Kind) (decimal.Decimal, error) {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if !k.Valid() {
			return decimal.Zero, core.ErrInvalidKind
		}
		names = append(names, string(k))
	}
	cents, err := r.queries.SumAmountByKinds(ctx, names)
	if err != nil {
		return decimal.Zero, storageErr("sum by kind", err)
	}
	return core.FromCents(cents), nil
}

// Summary reads both totals in a single statement.
func (r *SQLiteRepository) Summary(ctx context.Context) (core.Summary, error) {
	t, err := r.queries.GetTotals(ctx)
	if err != nil {
		return core.Summary{}, storageErr("totals", err)
	}
	return core.NewSummary(core.FromCents(t.IncomeCents), core.FromCents(t.OutflowCents)), nil
}

func (r *SQLiteRepository) AddShoppingItem(ctx context.Context, item core.ShoppingItem) (int64, error) {
	if err := item.Validate(); err != nil {
		return 0, err
	}
	cents, err := core.ToCents(item.Price)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.WithTx(ctx, func(q *Queries) error {
		if _, err := q.GetShoppingItem(ctx, item.Name); err == nil {
			return core.Invalid("name", fmt.Sprintf("%q is already on the shopping list", item.Name))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return storageErr("get shopping item", err)
		}
		var err error
		id, err = q.CreateShoppingItem(ctx, item.Name, cents)
		if err != nil {
			return storageErr("create shopping item", err)
		}
		return nil
	})
	return id, err
}

func (r *SQLiteRepository) RemoveShoppingItem(ctx context.Context, name string) error {
	return r.WithTx(ctx, func(q *Queries) error {
		n, err := q.DeleteShoppingItem(ctx, name)
		if err != nil {
			return storageErr("delete shopping item", err)
		}
		if n == 0 {
			return &core.NotFoundError{Entity: "shopping item", Key: name}
		}
		return nil
	})
}

func (r *SQLiteRepository) ListShoppingItems(ctx context.Context) ([]core.ShoppingItem, error) {
	rows, err := r.queries.ListShoppingItems(ctx)
	if err != nil {
		return nil, storageErr("list shopping items", err)
	}
	items := make([]core.ShoppingItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toShoppingItem(row))
	}
	return items, nil
}

// FindShoppingItem returns nil without error when name is not on the list.
func (r *SQLiteRepository) FindShoppingItem(ctx context.Context, name string) (*core.ShoppingItem, error) {
	row, err := r.queries.GetShoppingItem(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get shopping item", err)
	}
	item := toShoppingItem(row)
	return &item, nil
}

func (r *SQLiteRepository) UpdateShoppingPrice(ctx context.Context, name string, price decimal.Decimal) error {
	if err := core.CheckAmount("price", price); err != nil {
		return err
	}
	cents, err := core.ToCents(price)
	if err != nil {
		return err
	}
	return r.WithTx(ctx, func(q *Queries) error {
		n, err := q.UpdateShoppingItemPrice(ctx, name, cents)
		if err != nil {
			return storageErr("update shopping price", err)
		}
		if n == 0 {
			return &core.NotFoundError{Entity: "shopping item", Key: name}
		}
		return nil
	})
}

func (r *SQLiteRepository) UpsertSetting(ctx context.Context, name, value string) error {
	if err := core.ValidateSetting(name, value); err != nil {
		return err
	}
	return r.WithTx(ctx, func(q *Queries) error {
		if err := q.UpsertSetting(ctx, name, value); err != nil {
			return storageErr("upsert setting", err)
		}
		return nil
	})
}

// EnsureSetting stores value only when name has no value yet. It reports
// whether it wrote anything.
func (r *SQLiteRepository) EnsureSetting(ctx context.Context, name, value string) (bool, error) {
	if err := core.ValidateSetting(name, value); err != nil {
		return false, err
	}
	var n int64
	err := r.WithTx(ctx, func(q *Queries) error {
		var err error
		n, err = q.InsertSettingIfAbsent(ctx, name, value)
		if err != nil {
			return storageErr("insert setting", err)
		}
		return nil
	})
	return n > 0, err
}

// GetSetting returns ok=false when the setting has never been stored.
func (r *SQLiteRepository) GetSetting(ctx context.Context, name string) (string, bool, error) {
	s, err := r.queries.GetSetting(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("get setting", err)
	}
	return s.Value, true, nil
}

func (r *SQLiteRepository) DeleteSetting(ctx context.Context, name string) error {
	return r.WithTx(ctx, func(q *Queries) error {
		n, err := q.DeleteSetting(ctx, name)
		if err != nil {
			return storageErr("delete setting", err)
		}
		if n == 0 {
			return &core.NotFoundError{Entity: "setting", Key: name}
		}
		return nil
	})
}

func transactionParams(t core.Transaction) (CreateTransactionParams, error) {
	cents, err := core.ToCents(t.Amount)
	if err != nil {
		return CreateTransactionParams{}, err
	}
	return CreateTransactionParams{
		OccurredAt:  formatTime(t.Date),
		Description: t.Description,
		AmountCents: cents,
		Kind:        string(t.Kind),
	}, nil
}

func toTransactions(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func toTransaction(row Transaction) (core.Transaction, error) {
	date, err := time.Parse(timeLayout, row.OccurredAt)
	if err != nil {
		return core.Transaction{}, storageErr("parse date", fmt.Errorf("transaction %d: %w", row.ID, err))
	}
	return core.Transaction{
		ID:          row.ID,
		Date:        date,
		Description: row.Description,
		Amount:      core.FromCents(row.AmountCents),
		Kind:        core.Kind(row.Kind),
	}, nil
}

func toShoppingItem(row ShoppingItem) core.ShoppingItem {
	return core.ShoppingItem{
		ID:    row.ID,
		Name:  row.Name,
		Price: core.FromCents(row.PriceCents),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func storageErr(op string, err error) error {
	var se *core.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &core.StorageError{Op: op, Err: err}
}
