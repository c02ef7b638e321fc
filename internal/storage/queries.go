package storage

import (
	"context"
	"strings"
)

const createTransaction = `
INSERT INTO transactions (occurred_at, description, amount_cents, kind)
VALUES (?, ?, ?, ?)
`

type CreateTransactionParams struct {
	OccurredAt  string
	Description string
	AmountCents int64
	Kind        string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction,
		arg.OccurredAt,
		arg.Description,
		arg.AmountCents,
		arg.Kind,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransactionsInRange = `
DELETE FROM transactions WHERE occurred_at BETWEEN ? AND ?
`

func (q *Queries) DeleteTransactionsInRange(ctx context.Context, start, end string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransactionsInRange, start, end)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listTransactions = `
SELECT id, occurred_at, description, amount_cents, kind
FROM transactions
ORDER BY occurred_at, id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return q.queryTransactions(ctx, listTransactions)
}

const listTransactionsInRange = `
SELECT id, occurred_at, description, amount_cents, kind
FROM transactions
WHERE occurred_at BETWEEN ? AND ?
ORDER BY occurred_at, id
`

func (q *Queries) ListTransactionsInRange(ctx context.Context, start, end string) ([]Transaction, error) {
	return q.queryTransactions(ctx, listTransactionsInRange, start, end)
}

func (q *Queries) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.OccurredAt,
			&i.Description,
			&i.AmountCents,
			&i.Kind,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SumAmountByKinds expands one placeholder per kind.
func (q *Queries) SumAmountByKinds(ctx context.Context, kinds []string) (int64, error) {
	if len(kinds) == 0 {
		return 0, nil
	}
	args := make([]interface{}, len(kinds))
	for i, k := range kinds {
		args[i] = k
	}
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE kind IN (?` +
		strings.Repeat(", ?", len(kinds)-1) + `)`
	var total int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

const getTotals = `
SELECT
    COALESCE(SUM(CASE WHEN kind = 'Income' THEN amount_cents END), 0),
    COALESCE(SUM(CASE WHEN kind IN ('Expense', 'Shopping') THEN amount_cents END), 0)
FROM transactions
`

func (q *Queries) GetTotals(ctx context.Context) (Totals, error) {
	var t Totals
	err := q.db.QueryRowContext(ctx, getTotals).Scan(&t.IncomeCents, &t.OutflowCents)
	return t, err
}

const countShoppingTransactions = `
SELECT COUNT(*) FROM transactions WHERE kind = 'Shopping' AND description = ?
`

func (q *Queries) CountShoppingTransactions(ctx context.Context, description string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countShoppingTransactions, description).Scan(&n)
	return n, err
}

const createShoppingItem = `INSERT INTO shopping_list (name, price_cents) VALUES (?, ?)`

func (q *Queries) CreateShoppingItem(ctx context.Context, name string, priceCents int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, createShoppingItem, name, priceCents)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getShoppingItem = `SELECT id, name, price_cents FROM shopping_list WHERE name = ?`

func (q *Queries) GetShoppingItem(ctx context.Context, name string) (ShoppingItem, error) {
	var i ShoppingItem
	err := q.db.QueryRowContext(ctx, getShoppingItem, name).Scan(&i.ID, &i.Name, &i.PriceCents)
	return i, err
}

const listShoppingItems = `SELECT id, name, price_cents FROM shopping_list ORDER BY id`

func (q *Queries) ListShoppingItems(ctx context.Context) ([]ShoppingItem, error) {
	rows, err := q.db.QueryContext(ctx, listShoppingItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ShoppingItem
	for rows.Next() {
		var i ShoppingItem
		if err := rows.Scan(&i.ID, &i.Name, &i.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateShoppingItemPrice = `UPDATE shopping_list SET price_cents = ? WHERE name = ?`

func (q *Queries) UpdateShoppingItemPrice(ctx context.Context, name string, priceCents int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateShoppingItemPrice, priceCents, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteShoppingItem = `DELETE FROM shopping_list WHERE name = ?`

func (q *Queries) DeleteShoppingItem(ctx context.Context, name string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteShoppingItem, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertSetting = `
INSERT INTO settings (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value
`

func (q *Queries) UpsertSetting(ctx context.Context, name, value string) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, name, value)
	return err
}

const insertSettingIfAbsent = `
INSERT INTO settings (name, value) VALUES (?, ?)
ON CONFLICT(name) DO NOTHING
`

func (q *Queries) InsertSettingIfAbsent(ctx context.Context, name, value string) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertSettingIfAbsent, name, value)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getSetting = `SELECT name, value FROM settings WHERE name = ?`

func (q *Queries) GetSetting(ctx context.Context, name string) (Setting, error) {
	var s Setting
	err := q.db.QueryRowContext(ctx, getSetting, name).Scan(&s.Name, &s.Value)
	return s, err
}

const deleteSetting = `DELETE FROM settings WHERE name = ?`

func (q *Queries) DeleteSetting(ctx context.Context, name string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSetting, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getResetLog = `
SELECT id, reset_date, net_worth_cents, removed_count, applied_at
FROM reset_log WHERE reset_date = ?
`

func (q *Queries) GetResetLog(ctx context.Context, resetDate string) (ResetLog, error) {
	var r ResetLog
	err := q.db.QueryRowContext(ctx, getResetLog, resetDate).Scan(
		&r.ID,
		&r.ResetDate,
		&r.NetWorthCents,
		&r.RemovedCount,
		&r.AppliedAt,
	)
	return r, err
}

const createResetLog = `
INSERT INTO reset_log (reset_date, net_worth_cents, removed_count, applied_at)
VALUES (?, ?, ?, ?)
`

type CreateResetLogParams struct {
	ResetDate     string
	NetWorthCents int64
	RemovedCount  int64
	AppliedAt     string
}

func (q *Queries) CreateResetLog(ctx context.Context, arg CreateResetLogParams) error {
	_, err := q.db.ExecContext(ctx, createResetLog,
		arg.ResetDate,
		arg.NetWorthCents,
		arg.RemovedCount,
		arg.AppliedAt,
	)
	return err
}
