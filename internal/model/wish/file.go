package wish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
)

// fileLayout is the on-disk shape of a wish data file.
type fileLayout struct {
	Wishes []Wish `json:"wishes"`
}

// NewFileStore returns a MemoryStore whose initial contents are read from
// path on first access. A missing file falls back to Seed(). Mutations are
// kept in memory and never written back to path.
func NewFileStore(path string, opts ...Option) *MemoryStore {
	return newStore(func(ctx context.Context) ([]Wish, error) {
		return loadFile(ctx, path)
	}, opts...)
}

func loadFile(ctx context.Context, path string) ([]Wish, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[wish] data file %s not found, using seed data", path)
		return Seed(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open wish data file: %w", err)
	}
	defer f.Close()

	items, err := DecodeFile(f)
	if err != nil {
		return nil, fmt.Errorf("load wish data file %s: %w", path, err)
	}
	log.Printf("[wish] loaded %d wishes from %s", len(items), path)
	return items, nil
}

// DecodeFile reads a wish data file. Duplicate identifiers are rejected.
func DecodeFile(r io.Reader) ([]Wish, error) {
	var layout fileLayout
	if err := json.NewDecoder(r).Decode(&layout); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidData, err)
	}

	seen := make(map[string]struct{}, len(layout.Wishes))
	for _, item := range layout.Wishes {
		if item.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidData)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidData, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return layout.Wishes, nil
}

// EncodeFile writes items in the wish data file layout.
func EncodeFile(w io.Writer, items []Wish) error {
	if items == nil {
		items = []Wish{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fileLayout{Wishes: items}); err != nil {
		return fmt.Errorf("encode wishes: %w", err)
	}
	return nil
}
