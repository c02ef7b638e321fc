package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"accounting/internal/amqp"
	"accounting/internal/core"
	"accounting/internal/storage"
)

// NewTransaction is user input for AddTransaction. Amount and Kind are raw
// text as typed; a zero Date means now.
type NewTransaction struct {
	Date        time.Time
	Description string
	Amount      string
	Kind        string
}

// LedgerService is the entry point for interactive callers. It parses and
// validates input, delegates to the store and announces committed changes.
type LedgerService struct {
	store     *storage.SQLiteRepository
	publisher EventPublisher
	clock     func() time.Time
}

func NewLedgerService(store *storage.SQLiteRepository, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		clock:     time.Now,
	}
}

func (s *LedgerService) AddTransaction(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(in.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	date := in.Date
	if date.IsZero() {
		date = s.clock()
	}

	t := core.Transaction{
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Kind:        kind,
	}
	id, err := s.store.AddTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	t.ID = id

	publishEvent(ctx, s.publisher, amqp.NewTransactionEvent(amqp.TypeTransactionCreated, t))
	return t, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	publishEvent(ctx, s.publisher, &amqp.LedgerEventMessage{
		Type:      amqp.TypeTransactionDeleted,
		EntityID:  id,
		Timestamp: s.clock(),
	})
	return nil
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *LedgerService) Summary(ctx context.Context) (core.Summary, error) {
	return s.store.Summary(ctx)
}

// AddShoppingItem capitalizes the name and accepts the price in any format
// NormalizePrice understands, so manual and imported prices agree.
func (s *LedgerService) AddShoppingItem(ctx context.Context, name, price string) (core.ShoppingItem, error) {
	if strings.TrimSpace(price) == "" {
		return core.ShoppingItem{}, core.Invalid("price", "cannot be empty")
	}
	p, err := core.NormalizePrice(price)
	if err != nil {
		return core.ShoppingItem{}, err
	}
	item := core.ShoppingItem{Name: core.Capitalize(name), Price: p}
	id, err := s.store.AddShoppingItem(ctx, item)
	if err != nil {
		return core.ShoppingItem{}, fmt.Errorf("save shopping item: %w", err)
	}
	item.ID = id
	return item, nil
}

func (s *LedgerService) RemoveShoppingItem(ctx context.Context, name string) error {
	if err := s.store.RemoveShoppingItem(ctx, name); err != nil {
		return fmt.Errorf("remove shopping item: %w", err)
	}
	return nil
}

func (s *LedgerService) ListShoppingItems(ctx context.Context) ([]core.ShoppingItem, error) {
	return s.store.ListShoppingItems(ctx)
}

// MarkPurchased turns the pending item into a Shopping transaction dated now.
func (s *LedgerService) MarkPurchased(ctx context.Context, name string) (core.Transaction, error) {
	t, err := s.store.MarkPurchased(ctx, name, s.clock())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("mark purchased: %w", err)
	}
	publishEvent(ctx, s.publisher, amqp.NewTransactionEvent(amqp.TypeShoppingPurchased, t))
	return t, nil
}

// errCredentialsSetting keeps the wishlist credentials out of the generic
// settings calls; they are managed through LinkWishlistAccount.
var errCredentialsSetting = core.Invalid("name", core.SettingWishlistAccount+" is managed through the wishlist account")

// GetSetting returns a NotFoundError for settings never stored. The stored
// wishlist credentials are never returned.
func (s *LedgerService) GetSetting(ctx context.Context, name string) (string, error) {
	if name == core.SettingWishlistAccount {
		return "", &core.NotFoundError{Entity: "setting", Key: name}
	}
	v, ok, err := s.store.GetSetting(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &core.NotFoundError{Entity: "setting", Key: name}
	}
	return v, nil
}

func (s *LedgerService) UpsertSetting(ctx context.Context, name, value string) error {
	if name == core.SettingWishlistAccount {
		return errCredentialsSetting
	}
	return s.store.UpsertSetting(ctx, name, strings.TrimSpace(value))
}

func (s *LedgerService) LinkWishlistAccount(ctx context.Context, creds core.Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)
	raw, err := core.EncodeCredentials(creds)
	if err != nil {
		return err
	}
	return s.store.UpsertSetting(ctx, core.SettingWishlistAccount, raw)
}

// UnlinkWishlistAccount is a no-op when no account is linked.
func (s *LedgerService) UnlinkWishlistAccount(ctx context.Context) error {
	err := s.store.DeleteSetting(ctx, core.SettingWishlistAccount)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return err
}

// WishlistLinked reports whether credentials are stored, without exposing them.
func (s *LedgerService) WishlistLinked(ctx context.Context) (string, bool, error) {
	raw, ok, err := s.store.GetSetting(ctx, core.SettingWishlistAccount)
	if err != nil || !ok {
		return "", false, err
	}
	creds, err := core.DecodeCredentials(raw)
	if err != nil {
		return "", false, err
	}
	return creds.Email, true, nil
}
