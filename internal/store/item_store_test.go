package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stockroom/internal/db"
	"stockroom/internal/domain"
)

func openTestStore(t *testing.T) *ItemStore {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return NewItemStore(d)
}

func strptr(s string) *string { return &s }

func TestItemStoreCreate(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	item, err := items.Create(ctx, "Drill", "cordless")
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "Drill", item.Name)
	assert.Equal(t, "cordless", item.Description)
	assert.Nil(t, item.AttachmentRef)
}

func TestItemStoreCreate_EmptyName(t *testing.T) {
	items := openTestStore(t)

	_, err := items.Create(context.Background(), "", "no name")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = items.Create(context.Background(), "   ", "whitespace name")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestItemStoreCreate_EmptyDescriptionDefaults(t *testing.T) {
	items := openTestStore(t)

	item, err := items.Create(context.Background(), "Hammer", "")
	require.NoError(t, err)
	assert.Equal(t, "", item.Description)
}

func TestItemStoreGetByID_NotFound(t *testing.T) {
	items := openTestStore(t)

	_, err := items.GetByID(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemStoreList_AscendingByID(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	first, err := items.Create(ctx, "Drill", "")
	require.NoError(t, err)
	second, err := items.Create(ctx, "Hammer", "")
	require.NoError(t, err)

	all, err := items.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestItemStoreList_Empty(t *testing.T) {
	items := openTestStore(t)

	all, err := items.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestItemStoreUpdateFields_DescriptionOnly(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	item, err := items.Create(ctx, "Drill", "cordless")
	require.NoError(t, err)

	updated, err := items.UpdateFields(ctx, item.ID, nil, strptr("brushless"))
	require.NoError(t, err)
	assert.Equal(t, "Drill", updated.Name)
	assert.Equal(t, "brushless", updated.Description)
}

func TestItemStoreUpdateFields_NameOnly(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	item, err := items.Create(ctx, "Drill", "cordless")
	require.NoError(t, err)

	updated, err := items.UpdateFields(ctx, item.ID, strptr("Impact Driver"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Impact Driver", updated.Name)
	assert.Equal(t, "cordless", updated.Description)
}

func TestItemStoreUpdateFields_ClearDescription(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	item, err := items.Create(ctx, "Drill", "cordless")
	require.NoError(t, err)

	updated, err := items.UpdateFields(ctx, item.ID, nil, strptr(""))
	require.NoError(t, err)
	assert.Equal(t, "", updated.Description)
}

func TestItemStoreUpdateFields_EmptyNameRejected(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	item, err := items.Create(ctx, "Drill", "cordless")
	require.NoError(t, err)

	_, err = items.UpdateFields(ctx, item.ID, strptr(""), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestItemStoreUpdateFields_NoFieldsIsNoop(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	item, err := items.Create(ctx, "Drill", "cordless")
	require.NoError(t, err)

	same, err := items.UpdateFields(ctx, item.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, item.Name, same.Name)
	assert.Equal(t, item.Description, same.Description)
}

func TestItemStoreUpdateFields_NotFound(t *testing.T) {
	items := openTestStore(t)

	_, err := items.UpdateFields(context.Background(), 99999, strptr("Name"), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemStoreSetAttachmentRef(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	item, err := items.Create(ctx, "Drill", "")
	require.NoError(t, err)

	updated, err := items.SetAttachmentRef(ctx, item.ID, strptr("abc123.jpg"))
	require.NoError(t, err)
	require.NotNil(t, updated.AttachmentRef)
	assert.Equal(t, "abc123.jpg", *updated.AttachmentRef)

	cleared, err := items.SetAttachmentRef(ctx, item.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.AttachmentRef)
}

func TestItemStoreSetAttachmentRef_NotFound(t *testing.T) {
	items := openTestStore(t)

	_, err := items.SetAttachmentRef(context.Background(), 99999, strptr("abc.jpg"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemStoreDelete_ReturnsLastKnownRef(t *testing.T) {
	items := openTestStore(t)
	ctx := context.Background()

	item, err := items.Create(ctx, "Drill", "")
	require.NoError(t, err)
	_, err = items.SetAttachmentRef(ctx, item.ID, strptr("abc123.jpg"))
	require.NoError(t, err)

	deleted, err := items.Delete(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.AttachmentRef)
	assert.Equal(t, "abc123.jpg", *deleted.AttachmentRef)

	_, err = items.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemStoreDelete_NotFound(t *testing.T) {
	items := openTestStore(t)

	_, err := items.Delete(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
