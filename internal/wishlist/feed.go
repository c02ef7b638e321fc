package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"accounting/internal/core"
)

const maxFeedBytes = 4 << 20

// FeedFetcher GETs a JSON array of {"name", "price"} objects, authenticating
// with HTTP basic auth from the linked credentials.
type FeedFetcher struct {
	URL    string
	Client *http.Client
}

func NewFeedFetcher(url string, timeout time.Duration) *FeedFetcher {
	return &FeedFetcher{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (f *FeedFetcher) FetchWishlist(ctx context.Context, creds core.Credentials) ([]core.WishlistItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build wishlist request: %w", err)
	}
	req.SetBasicAuth(creds.Email, creds.Password)
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request wishlist: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("wishlist login rejected: %s", resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("wishlist feed returned %s", resp.Status)
	}

	var items []core.WishlistItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode wishlist feed: %w", err)
	}
	return items, nil
}
