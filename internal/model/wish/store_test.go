package wish_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/wish-api/backend/internal/model/wish"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
}

func TestMemoryStoreListReturnsSeed(t *testing.T) {
	store := wish.NewMemoryStore(nil)

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wish.Seed(), items)
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	store := wish.NewMemoryStore(nil)
	ctx := context.Background()

	items, err := store.List(ctx)
	require.NoError(t, err)
	items[0].Title = "changed"

	got, ok, err := store.FindByID(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Apple Watch Smartwatch", got.Title)
}

func TestMemoryStoreFindByIDMissing(t *testing.T) {
	store := wish.NewMemoryStore(nil)

	_, ok, err := store.FindByID(context.Background(), "999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreCreateThenFind(t *testing.T) {
	store := wish.NewMemoryStore(nil,
		wish.WithIDGenerator(func() string { return "ab12" }),
		wish.WithClock(fixedClock),
	)
	ctx := context.Background()

	input := wish.Wish{
		Image:       "https://example.com/kindle.png",
		Title:       "Kindle",
		Description: "E-reader",
		Price:       wish.Price(149.5),
	}
	created, err := store.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "ab12", created.ID)
	assert.Equal(t, "2025-03-04T05:06:07.890Z", created.CreatedAt)

	got, ok, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)

	want := input
	want.ID = "ab12"
	want.CreatedAt = "2025-03-04T05:06:07.890Z"
	assert.Equal(t, want, got)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "ab12", items[2].ID)
}

func TestMemoryStoreCreateKeepsSuppliedTimestamp(t *testing.T) {
	store := wish.NewMemoryStore(nil, wish.WithClock(fixedClock))

	created, err := store.Create(context.Background(), wish.Wish{
		Title:     "Bike",
		CreatedAt: "2024-12-24T18:00:00.000Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-12-24T18:00:00.000Z", created.CreatedAt)
}

func TestMemoryStoreCreateGeneratesShortIDs(t *testing.T) {
	store := wish.NewMemoryStore(nil)

	created, err := store.Create(context.Background(), wish.Wish{Title: "Lamp"})
	require.NoError(t, err)
	require.Len(t, created.ID, 4)
	for _, r := range created.ID {
		assert.True(t, strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", r), "unexpected rune %q", r)
	}
}

func TestMemoryStoreUpdateReplacesAllFields(t *testing.T) {
	store := wish.NewMemoryStore(nil)
	ctx := context.Background()

	updated, err := store.Update(ctx, "1", wish.Wish{ID: "ignored", Title: "Pixel Watch"})
	require.NoError(t, err)
	assert.Equal(t, wish.Wish{ID: "1", Title: "Pixel Watch"}, updated)

	got, ok, err := store.FindByID(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, updated, got)

	_, ok, err = store.FindByID(ctx, "ignored")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStorePatchChangesOnlySuppliedFields(t *testing.T) {
	store := wish.NewMemoryStore(nil)
	ctx := context.Background()

	before, _, err := store.FindByID(ctx, "1")
	require.NoError(t, err)

	price := 42.0
	patched, err := store.Patch(ctx, "1", wish.Patch{Price: &price})
	require.NoError(t, err)

	want := before
	want.Price = wish.Price(42)
	assert.Equal(t, want, patched)
}

func TestMemoryStoreMissingIDReturnsNotFound(t *testing.T) {
	store := wish.NewMemoryStore(nil)
	ctx := context.Background()
	title := "x"

	_, err := store.Update(ctx, "999", wish.Wish{Title: title})
	assert.ErrorIs(t, err, wish.ErrNotFound)

	_, err = store.Patch(ctx, "999", wish.Patch{Title: &title})
	assert.ErrorIs(t, err, wish.ErrNotFound)

	err = store.Delete(ctx, "999")
	assert.ErrorIs(t, err, wish.ErrNotFound)
}

func TestMemoryStoreEmptyIDIsInvalid(t *testing.T) {
	store := wish.NewMemoryStore(nil)
	ctx := context.Background()

	_, err := store.Update(ctx, "", wish.Wish{})
	assert.ErrorIs(t, err, wish.ErrInvalidID)

	_, err = store.Patch(ctx, "", wish.Patch{})
	assert.ErrorIs(t, err, wish.ErrInvalidID)

	assert.ErrorIs(t, store.Delete(ctx, ""), wish.ErrInvalidID)
}

func TestMemoryStoreDeleteTwice(t *testing.T) {
	store := wish.NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "2"))
	assert.ErrorIs(t, store.Delete(ctx, "2"), wish.ErrNotFound)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
}

func TestMemoryStoreDeleteAllDoesNotReseed(t *testing.T) {
	store := wish.NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "1"))
	require.NoError(t, store.Delete(ctx, "2"))

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFileStoreEmptyDataFileListsEmptySlice(t *testing.T) {
	store := wish.NewFileStore(writeDataFile(t, `{}`))

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestMemoryStoreUpdateWithoutPriceClearsIt(t *testing.T) {
	store := wish.NewMemoryStore(nil)

	updated, err := store.Update(context.Background(), "1", wish.Wish{})
	require.NoError(t, err)
	assert.Nil(t, updated.Price)
}

func TestMemoryStoreReturnedWishesDoNotAlias(t *testing.T) {
	store := wish.NewMemoryStore(nil)
	ctx := context.Background()

	got, _, err := store.FindByID(ctx, "1")
	require.NoError(t, err)
	*got.Price = 1

	items, err := store.List(ctx)
	require.NoError(t, err)
	*items[0].Price = 2

	again, _, err := store.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1299.99, *again.Price)
}

func TestMemoryStoreUsesSuppliedItems(t *testing.T) {
	store := wish.NewMemoryStore([]wish.Wish{{ID: "x", Title: "Custom"}})

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []wish.Wish{{ID: "x", Title: "Custom"}}, items)
}

func writeDataFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wishes.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestFileStoreLoadsFile(t *testing.T) {
	path := writeDataFile(t, `{"wishes":[{"id":"a","title":"Tent","price":250}]}`)
	store := wish.NewFileStore(path)

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []wish.Wish{{ID: "a", Title: "Tent", Price: wish.Price(250)}}, items)
}

func TestFileStoreMissingFileFallsBackToSeed(t *testing.T) {
	store := wish.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wish.Seed(), items)
}

func TestFileStoreMalformedFileReturnsError(t *testing.T) {
	path := writeDataFile(t, `{"wishes":`)
	store := wish.NewFileStore(path)
	ctx := context.Background()

	_, err := store.List(ctx)
	require.Error(t, err)

	// the load is retried once the file is fixed
	require.NoError(t, os.WriteFile(path, []byte(`{"wishes":[{"id":"b"}]}`), 0o644))
	_, ok, err := store.FindByID(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStoreNeverWritesBack(t *testing.T) {
	original := `{"wishes":[{"id":"a","title":"Tent","price":250}]}`
	path := writeDataFile(t, original)
	store := wish.NewFileStore(path)
	ctx := context.Background()

	_, err := store.Create(ctx, wish.Wish{Title: "Stove"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Persist(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))

	fresh := wish.NewFileStore(path)
	_, ok, err := fresh.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDecodeFileRejectsDuplicateIDs(t *testing.T) {
	_, err := wish.DecodeFile(strings.NewReader(`{"wishes":[{"id":"a"},{"id":"a"}]}`))
	assert.ErrorIs(t, err, wish.ErrInvalidData)
}

func TestFileStoreDuplicateIDsIsNotInvalidID(t *testing.T) {
	path := writeDataFile(t, `{"wishes":[{"id":"a"},{"id":"a"}]}`)
	store := wish.NewFileStore(path)

	_, _, err := store.FindByID(context.Background(), "a")
	require.ErrorIs(t, err, wish.ErrInvalidData)
	assert.NotErrorIs(t, err, wish.ErrInvalidID)
}

func TestEncodeFileRoundTripsSeed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wish.EncodeFile(&buf, wish.Seed()))
	assert.Contains(t, buf.String(), `"wishes"`)

	items, err := wish.DecodeFile(&buf)
	require.NoError(t, err)
	assert.Equal(t, wish.Seed(), items)
}
