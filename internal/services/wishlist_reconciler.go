package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"accounting/internal/amqp"
	"accounting/internal/core"
	"accounting/internal/wishlist"
)

const DefaultFetchTimeout = 30 * time.Second

// WishlistStore is the part of the ledger store the reconciler needs.
type WishlistStore interface {
	GetSetting(ctx context.Context, name string) (string, bool, error)
	MergeWishlist(ctx context.Context, items []core.ShoppingItem) (core.MergeResult, error)
}

// WishlistReconciler merges externally fetched wishlist items into the
// shopping list. Fetching happens outside the store's write lock; only the
// final merge serializes with other mutations.
type WishlistReconciler struct {
	store     WishlistStore
	fetcher   wishlist.Fetcher
	publisher EventPublisher
	timeout   time.Duration
	source    string

	group singleflight.Group
	loop  loop
}

func NewWishlistReconciler(store WishlistStore, fetcher wishlist.Fetcher, publisher EventPublisher, timeout time.Duration) *WishlistReconciler {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &WishlistReconciler{
		store:     store,
		fetcher:   fetcher,
		publisher: publisher,
		timeout:   timeout,
		source:    "wishlist",
		loop:      loop{name: "wishlist refresher"},
	}
}

// Merge normalizes prices and folds the batch into the shopping list in one
// transaction. Items without a name or with an unreadable price are counted
// as invalid and left out.
func (r *WishlistReconciler) Merge(ctx context.Context, items []core.WishlistItem) (core.MergeResult, error) {
	valid := make([]core.ShoppingItem, 0, len(items))
	invalid := 0
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		price, err := core.NormalizePrice(it.Price)
		if name == "" || err != nil {
			invalid++
			slog.WarnContext(ctx, "Skipping malformed wishlist item", "name", it.Name, "price", it.Price, "error", err)
			continue
		}
		valid = append(valid, core.ShoppingItem{Name: name, Price: price})
	}

	res, err := r.store.MergeWishlist(ctx, valid)
	if err != nil {
		return core.MergeResult{}, err
	}
	res.Invalid = invalid

	publishEvent(ctx, r.publisher, amqp.NewMergeEvent(res))
	return res, nil
}

// Refresh fetches the linked account's wishlist and merges it. An unlinked
// account is a no-op. Any fetch failure, timeout included, is returned as a
// *core.FetchError and nothing is written. Concurrent calls share one fetch.
func (r *WishlistReconciler) Refresh(ctx context.Context) (core.MergeResult, error) {
	v, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.refresh(ctx)
	})
	if shared {
		slog.DebugContext(ctx, "Joined in-flight wishlist refresh")
	}
	res, _ := v.(core.MergeResult)
	return res, err
}

func (r *WishlistReconciler) refresh(ctx context.Context) (core.MergeResult, error) {
	raw, ok, err := r.store.GetSetting(ctx, core.SettingWishlistAccount)
	if err != nil {
		return core.MergeResult{}, err
	}
	if !ok {
		slog.DebugContext(ctx, "No wishlist account linked, skipping refresh")
		return core.MergeResult{}, nil
	}
	creds, err := core.DecodeCredentials(raw)
	if err != nil {
		return core.MergeResult{}, err
	}
	if r.fetcher == nil {
		return core.MergeResult{}, &core.FetchError{Source: r.source, Err: errors.New("no wishlist source configured")}
	}

	started := time.Now()
	items, err := r.fetch(ctx, creds)
	if err != nil {
		slog.WarnContext(ctx, "Wishlist fetch failed", "error", err, "elapsed", time.Since(started))
		return core.MergeResult{}, &core.FetchError{Source: r.source, Err: err}
	}

	res, err := r.Merge(ctx, items)
	if err != nil {
		return core.MergeResult{}, err
	}
	slog.InfoContext(ctx, "Wishlist refreshed",
		"fetched", len(items),
		"inserted", res.Inserted,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"invalid", res.Invalid,
		"elapsed", time.Since(started))
	return res, nil
}

// fetch bounds the fetcher by the timeout even when it ignores its context.
func (r *WishlistReconciler) fetch(ctx context.Context, creds core.Credentials) ([]core.WishlistItem, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		items []core.WishlistItem
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		items, err := r.fetcher.FetchWishlist(ctx, creds)
		ch <- result{items, err}
	}()

	select {
	case res := <-ch:
		return res.items, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RefreshAsync runs Refresh in the background so the caller never waits on
// the network. The refresh outlives a cancelled ctx.
func (r *WishlistReconciler) RefreshAsync(ctx context.Context, onDone func(core.MergeResult, error)) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		res, err := r.Refresh(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Background wishlist refresh failed", "error", err)
		}
		if onDone != nil {
			onDone(res, err)
		}
	}()
}

// Start refreshes immediately, then on every interval tick.
func (r *WishlistReconciler) Start(ctx context.Context, interval time.Duration) error {
	return r.loop.start(ctx, interval, func(ctx context.Context) {
		if _, err := r.Refresh(ctx); err != nil {
			slog.ErrorContext(ctx, "Periodic wishlist refresh failed", "error", err)
		}
	})
}

func (r *WishlistReconciler) Stop(ctx context.Context) error {
	return r.loop.stop(ctx)
}

func (r *WishlistReconciler) IsRunning() bool {
	return r.loop.isRunning()
}
