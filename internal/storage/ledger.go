package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/core"
)

// MarkPurchased converts a pending shopping item into a Shopping
// transaction dated at. Both writes commit together or not at all.
func (r *SQLiteRepository) MarkPurchased(ctx context.Context, name string, at time.Time) (core.Transaction, error) {
	var tx core.Transaction
	err := r.WithTx(ctx, func(q *Queries) error {
		item, err := q.GetShoppingItem(ctx, name)
		if errors.Is(err, sql.ErrNoRows) {
			return &core.NotFoundError{Entity: "shopping item", Key: name}
		}
		if err != nil {
			return storageErr("get shopping item", err)
		}
		if _, err := q.DeleteShoppingItem(ctx, name); err != nil {
			return storageErr("delete shopping item", err)
		}

		tx = core.Transaction{
			Date:        at,
			Description: item.Name,
			Amount:      core.FromCents(item.PriceCents),
			Kind:        core.Shopping,
		}
		params, err := transactionParams(tx)
		if err != nil {
			return err
		}
		id, err := q.CreateTransaction(ctx, params)
		if err != nil {
			return storageErr("create transaction", err)
		}
		tx.ID = id
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Shopping item purchased",
		"name", tx.Description,
		"transaction_id", tx.ID,
		"amount", core.FormatAmount(tx.Amount))
	return tx, nil
}

// ResetParams describes one monthly reset.
type ResetParams struct {
	// Day is the calendar-day key guarding against a second reset.
	Day string
	// Start and End bound the transactions removed, inclusive.
	Start, End time.Time
	// At dates the opening balance.
	At time.Time
}

// ResetOutcome reports what ApplyReset did. Applied is false when a reset
// for the same day is already recorded.
type ResetOutcome struct {
	Applied  bool
	NetWorth decimal.Decimal
	Removed  []core.Transaction
	Opening  core.Transaction
}

// ApplyReset computes net worth over all transactions, removes those dated
// in [Start, End] and inserts the opening balance, recording the day in
// reset_log. Everything happens in one transaction.
func (r *SQLiteRepository) ApplyReset(ctx context.Context, p ResetParams) (ResetOutcome, error) {
	var out ResetOutcome
	err := r.WithTx(ctx, func(q *Queries) error {
		if _, err := q.GetResetLog(ctx, p.Day); err == nil {
			return nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return storageErr("get reset log", err)
		}

		totals, err := q.GetTotals(ctx)
		if err != nil {
			return storageErr("totals", err)
		}
		netCents := totals.IncomeCents - totals.OutflowCents

		start, end := formatTime(p.Start), formatTime(p.End)
		rows, err := q.ListTransactionsInRange(ctx, start, end)
		if err != nil {
			return storageErr("list transactions in range", err)
		}
		removed, err := toTransactions(rows)
		if err != nil {
			return err
		}
		if _, err := q.DeleteTransactionsInRange(ctx, start, end); err != nil {
			return storageErr("delete transactions in range", err)
		}

		opening := OpeningBalance(core.FromCents(netCents), p.At)
		params, err := transactionParams(opening)
		if err != nil {
			return err
		}
		id, err := q.CreateTransaction(ctx, params)
		if err != nil {
			return storageErr("create opening balance", err)
		}
		opening.ID = id

		if err := q.CreateResetLog(ctx, CreateResetLogParams{
			ResetDate:     p.Day,
			NetWorthCents: netCents,
			RemovedCount:  int64(len(removed)),
			AppliedAt:     formatTime(p.At),
		}); err != nil {
			return storageErr("create reset log", err)
		}

		out = ResetOutcome{
			Applied:  true,
			NetWorth: core.FromCents(netCents),
			Removed:  removed,
			Opening:  opening,
		}
		return nil
	})
	if err != nil {
		return ResetOutcome{}, err
	}
	return out, nil
}

// ResetApplied reports whether a reset is recorded for the day key.
func (r *SQLiteRepository) ResetApplied(ctx context.Context, day string) (bool, error) {
	_, err := r.queries.GetResetLog(ctx, day)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("get reset log", err)
	}
	return true, nil
}

// OpeningBalance builds the carry-forward entry for a net worth. A negative
// net worth is carried as an Expense of the absolute value so amounts stay
// non-negative.
func OpeningBalance(netWorth decimal.Decimal, at time.Time) core.Transaction {
	t := core.Transaction{
		Date:        at,
		Description: core.OpeningBalanceDescription,
		Amount:      netWorth,
		Kind:        core.Income,
	}
	if netWorth.IsNegative() {
		t.Amount = netWorth.Abs()
		t.Kind = core.Expense
	}
	return t
}

// MergeWishlist folds a batch of items into the shopping list in one
// transaction. A pending item gets its price updated; a name already bought
// as a Shopping transaction is skipped; anything else is inserted.
func (r *SQLiteRepository) MergeWishlist(ctx context.Context, items []core.ShoppingItem) (core.MergeResult, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return core.MergeResult{}, err
		}
	}

	var res core.MergeResult
	err := r.WithTx(ctx, func(q *Queries) error {
		res = core.MergeResult{}
		for _, item := range items {
			cents, err := core.ToCents(item.Price)
			if err != nil {
				return err
			}

			n, err := q.UpdateShoppingItemPrice(ctx, item.Name, cents)
			if err != nil {
				return storageErr("update shopping price", err)
			}
			if n > 0 {
				res.Updated++
				continue
			}

			bought, err := q.CountShoppingTransactions(ctx, item.Name)
			if err != nil {
				return storageErr("count purchases", err)
			}
			if bought > 0 {
				res.Skipped++
				continue
			}

			if _, err := q.CreateShoppingItem(ctx, item.Name, cents); err != nil {
				return storageErr("create shopping item", err)
			}
			res.Inserted++
		}
		return nil
	})
	if err != nil {
		return core.MergeResult{}, err
	}

	slog.InfoContext(ctx, "Wishlist merged",
		"inserted", res.Inserted,
		"updated", res.Updated,
		"skipped", res.Skipped)
	return res, nil
}
