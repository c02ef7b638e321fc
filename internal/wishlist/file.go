package wishlist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"accounting/internal/core"
)

// FileFetcher reads "name;price" lines from a local file. Blank lines and
// lines starting with '#' are ignored. Credentials are not checked.
type FileFetcher struct {
	Path string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

func (f *FileFetcher) FetchWishlist(ctx context.Context, _ core.Credentials) ([]core.WishlistItem, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open wishlist file: %w", err)
	}
	defer file.Close()

	var items []core.WishlistItem
	sc := bufio.NewScanner(file)
	lineNo := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, price, ok := strings.Cut(line, ";")
		if !ok {
			return nil, fmt.Errorf("wishlist file %s line %d: missing ';' separator", f.Path, lineNo)
		}
		items = append(items, core.WishlistItem{
			Name:  strings.TrimSpace(name),
			Price: strings.TrimSpace(price),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read wishlist file: %w", err)
	}
	return items, nil
}
