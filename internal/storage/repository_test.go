package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"accounting/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func addTx(t *testing.T, repo *SQLiteRepository, date time.Time, desc, amount string, kind core.Kind) int64 {
	t.Helper()
	id, err := repo.AddTransaction(context.Background(), core.Transaction{
		Date: date, Description: desc, Amount: dec(amount), Kind: kind,
	})
	require.NoError(t, err)
	return id
}

func TestAddTransactionListedOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	id := addTx(t, repo, date, "Groceries", "42.10", core.Expense)

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, id, txs[0].ID)
	require.True(t, txs[0].Date.Equal(date))
	require.Equal(t, "Groceries", txs[0].Description)
	require.True(t, txs[0].Amount.Equal(dec("42.10")))
	require.Equal(t, core.Expense, txs[0].Kind)
}

func TestAddTransactionValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddTransaction(ctx, core.Transaction{Date: time.Now(), Description: "", Amount: dec("1"), Kind: core.Income})
	require.ErrorIs(t, err, core.ErrValidation)

	_, err = repo.AddTransaction(ctx, core.Transaction{Date: time.Now(), Description: "x", Amount: dec("-1"), Kind: core.Income})
	require.ErrorIs(t, err, core.ErrValidation)

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestAmountsOutOfRangeAreRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	date := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		amount string
	}{
		{"just above maximum", "10000000000000.01"},
		{"wraps to one cent", "184467440737095516.17"},
		{"far beyond int64", "100000000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.AddTransaction(ctx, core.Transaction{
				Date: date, Description: "Lottery", Amount: dec(tt.amount), Kind: core.Income,
			})
			require.ErrorIs(t, err, core.ErrValidation)

			_, err = repo.AddShoppingItem(ctx, core.ShoppingItem{Name: "Yacht", Price: dec(tt.amount)})
			require.ErrorIs(t, err, core.ErrValidation)

			_, err = repo.MergeWishlist(ctx, []core.ShoppingItem{{Name: "Yacht", Price: dec(tt.amount)}})
			require.ErrorIs(t, err, core.ErrValidation)
		})
	}

	_, err := repo.AddShoppingItem(ctx, core.ShoppingItem{Name: "Boat", Price: dec("5")})
	require.NoError(t, err)
	require.ErrorIs(t, repo.UpdateShoppingPrice(ctx, "Boat", dec("100000000000000000000")), core.ErrValidation)

	// The largest accepted amount round-trips exactly and aggregates agree.
	addTx(t, repo, date, "Inheritance", "10000000000000", core.Income)
	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.True(t, txs[0].Amount.Equal(core.MaxAmount))

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	require.True(t, summary.NetWorth.Equal(core.MaxAmount), "net worth = %s", summary.NetWorth)

	items, err := repo.ListShoppingItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Price.Equal(dec("5")))
}

func TestDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id := addTx(t, repo, time.Now(), "Coffee", "3", core.Expense)

	require.NoError(t, repo.DeleteTransaction(ctx, id))
	require.ErrorIs(t, repo.DeleteTransaction(ctx, id), core.ErrNotFound)
}

func TestDeleteTransactionsInRangeInclusive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC)

	addTx(t, repo, start, "first", "1", core.Income)
	addTx(t, repo, end, "last", "1", core.Income)
	addTx(t, repo, start.Add(-time.Nanosecond), "before", "1", core.Income)
	addTx(t, repo, end.Add(time.Nanosecond), "after", "1", core.Income)

	n, err := repo.DeleteTransactionsInRange(ctx, start, end)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, "before", txs[0].Description)
	require.Equal(t, "after", txs[1].Description)
}

func TestSumByKindAndNetWorth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	zero, err := repo.SumByKind(ctx, core.Income)
	require.NoError(t, err)
	require.True(t, zero.IsZero())

	now := time.Now()
	addTx(t, repo, now, "Salary", "1000.00", core.Income)
	addTx(t, repo, now, "Bonus", "250.50", core.Income)
	addTx(t, repo, now, "Rent", "600.00", core.Expense)
	addTx(t, repo, now, "Lamp", "45.25", core.Shopping)

	income, err := repo.SumByKind(ctx, core.Income)
	require.NoError(t, err)
	out, err := repo.SumByKind(ctx, core.Expense, core.Shopping)
	require.NoError(t, err)

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	signed := decimal.Zero
	for _, tx := range txs {
		signed = signed.Add(tx.Signed())
	}
	require.True(t, income.Sub(out).Equal(signed))
	require.True(t, signed.Equal(dec("605.25")))

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	require.True(t, summary.Income.Equal(dec("1250.50")))
	require.True(t, summary.Expense.Equal(dec("645.25")))
	require.True(t, summary.NetWorth.Equal(signed))

	_, err = repo.SumByKind(ctx, core.Kind("Gift"))
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestShoppingItems(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddShoppingItem(ctx, core.ShoppingItem{Name: "Book", Price: dec("12.50")})
	require.NoError(t, err)
	_, err = repo.AddShoppingItem(ctx, core.ShoppingItem{Name: "Book", Price: dec("1")})
	require.ErrorIs(t, err, core.ErrValidation)

	item, err := repo.FindShoppingItem(ctx, "Book")
	require.NoError(t, err)
	require.NotNil(t, item)
	require.True(t, item.Price.Equal(dec("12.5")))

	missing, err := repo.FindShoppingItem(ctx, "Pen")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, repo.UpdateShoppingPrice(ctx, "Book", dec("10")))
	require.ErrorIs(t, repo.UpdateShoppingPrice(ctx, "Pen", dec("10")), core.ErrNotFound)

	items, err := repo.ListShoppingItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Price.Equal(dec("10")))

	require.NoError(t, repo.RemoveShoppingItem(ctx, "Book"))
	require.ErrorIs(t, repo.RemoveShoppingItem(ctx, "Book"), core.ErrNotFound)
}

func TestSettings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := repo.GetSetting(ctx, core.SettingResetDay)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.UpsertSetting(ctx, core.SettingResetDay, "15"))
	require.NoError(t, repo.UpsertSetting(ctx, core.SettingResetDay, "1"))
	v, ok, err := repo.GetSetting(ctx, core.SettingResetDay)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)

	require.ErrorIs(t, repo.UpsertSetting(ctx, core.SettingResetDay, "32"), core.ErrValidation)
	v, _, err = repo.GetSetting(ctx, core.SettingResetDay)
	require.NoError(t, err)
	require.Equal(t, "1", v)

	require.NoError(t, repo.DeleteSetting(ctx, core.SettingResetDay))
	require.ErrorIs(t, repo.DeleteSetting(ctx, core.SettingResetDay), core.ErrNotFound)
}

func TestEnsureSettingDoesNotOverwrite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	wrote, err := repo.EnsureSetting(ctx, core.SettingResetDay, "9")
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = repo.EnsureSetting(ctx, core.SettingResetDay, "20")
	require.NoError(t, err)
	require.False(t, wrote)
	v, _, err := repo.GetSetting(ctx, core.SettingResetDay)
	require.NoError(t, err)
	require.Equal(t, "9", v)

	_, err = repo.EnsureSetting(ctx, core.SettingResetDay, "40")
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithTx(ctx, func(q *Queries) error {
		_, err := q.CreateShoppingItem(ctx, "Ghost", 100)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	item, err := repo.FindShoppingItem(ctx, "Ghost")
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	addTx(t, repo, time.Now(), "Salary", "10", core.Income)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	txs, err := repo.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
}
