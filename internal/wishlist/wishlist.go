// Package wishlist provides sources of wishlist items. A source fetches
// raw name/price pairs for a linked account; merging them into the
// shopping list is the reconciler's job.
package wishlist

import (
	"context"

	"accounting/internal/core"
)

// Fetcher retrieves the wishlist of the account identified by creds.
// Implementations must honor ctx cancellation.
type Fetcher interface {
	FetchWishlist(ctx context.Context, creds core.Credentials) ([]core.WishlistItem, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, creds core.Credentials) ([]core.WishlistItem, error)

func (f FetcherFunc) FetchWishlist(ctx context.Context, creds core.Credentials) ([]core.WishlistItem, error) {
	return f(ctx, creds)
}
