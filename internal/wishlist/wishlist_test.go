package wishlist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"accounting/internal/core"
)

var creds = core.Credentials{Email: "me@example.com", Password: "hunter2"}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wishlist.txt")
	content := "# exported wishlist\nBook;₺120,50\n\n Lamp ; 1.299 TL \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := NewFileFetcher(path).FetchWishlist(context.Background(), creds)
	if err != nil {
		t.Fatalf("FetchWishlist: %v", err)
	}
	want := []core.WishlistItem{{Name: "Book", Price: "₺120,50"}, {Name: "Lamp", Price: "1.299 TL"}}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestFileFetcherErrors(t *testing.T) {
	if _, err := NewFileFetcher(filepath.Join(t.TempDir(), "missing.txt")).FetchWishlist(context.Background(), creds); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("no separator here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileFetcher(path).FetchWishlist(context.Background(), creds); err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestFeedFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != creds.Email || pass != creds.Password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]core.WishlistItem{{Name: "Book", Price: "₺120,50"}})
	}))
	defer srv.Close()

	f := NewFeedFetcher(srv.URL, time.Second)

	items, err := f.FetchWishlist(context.Background(), creds)
	if err != nil {
		t.Fatalf("FetchWishlist: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Book" || items[0].Price != "₺120,50" {
		t.Fatalf("unexpected items: %+v", items)
	}

	if _, err := f.FetchWishlist(context.Background(), core.Credentials{Email: "x", Password: "y"}); err == nil {
		t.Fatal("expected login failure")
	}
}

func TestFeedFetcherBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	if _, err := NewFeedFetcher(srv.URL, time.Second).FetchWishlist(context.Background(), creds); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetcherFunc(t *testing.T) {
	var got core.Credentials
	f := FetcherFunc(func(_ context.Context, c core.Credentials) ([]core.WishlistItem, error) {
		got = c
		return nil, nil
	})
	if _, err := f.FetchWishlist(context.Background(), creds); err != nil {
		t.Fatal(err)
	}
	if got != creds {
		t.Fatalf("credentials not passed through: %+v", got)
	}
}
