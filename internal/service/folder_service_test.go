package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practicevault/internal/domain"
)

func folderFixture(t *testing.T, public bool) (*fakeStore, *FolderService) {
	t.Helper()

	store := newFakeStore(250)
	svc := NewFolderService(store, itemStoreAdapter{store}, NewAccessGuard(), public)
	return store, svc
}

func TestCreateFolderOwnerIsMember(t *testing.T) {
	ctx := context.Background()
	_, svc := folderFixture(t, true)

	folder, err := svc.CreateFolder(ctx, "  Основы Go  ", "alice")
	require.NoError(t, err)

	assert.Equal(t, "Основы Go", folder.Name)
	assert.Equal(t, "alice", folder.OwnerID)
	assert.True(t, folder.IsPublic)
	assert.Equal(t, []string{"alice"}, folder.MemberIDs)
}

func TestCreateFolderValidation(t *testing.T) {
	ctx := context.Background()
	_, svc := folderFixture(t, true)

	_, err := svc.CreateFolder(ctx, "   ", "alice")
	require.Error(t, err)

	_, err = svc.CreateFolder(ctx, "Папка", "")
	require.Error(t, err)
}

func TestJoinFolderIdempotent(t *testing.T) {
	ctx := context.Background()
	store, svc := folderFixture(t, true)

	folder, err := svc.CreateFolder(ctx, "Сессии", "alice")
	require.NoError(t, err)

	joined, err := svc.JoinFolder(ctx, folder.ID, "bob")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, joined.MemberIDs)

	// Повторное вступление — no-op, не ошибка, состав не меняется
	again, err := svc.JoinFolder(ctx, folder.ID, "bob")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, again.MemberIDs)

	stored, err := store.GetByID(ctx, folder.ID)
	require.NoError(t, err)
	assert.Len(t, stored.MemberIDs, 2)
}

func TestJoinFolderOwnerNoop(t *testing.T) {
	ctx := context.Background()
	store, svc := folderFixture(t, true)

	folder, err := svc.CreateFolder(ctx, "Свои", "alice")
	require.NoError(t, err)

	_, err = svc.JoinFolder(ctx, folder.ID, "alice")
	require.NoError(t, err)

	stored, err := store.GetByID(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, stored.MemberIDs)
}

func TestJoinPrivateFolderDenied(t *testing.T) {
	ctx := context.Background()
	store, svc := folderFixture(t, false)

	folder, err := svc.CreateFolder(ctx, "Закрытая", "alice")
	require.NoError(t, err)

	_, err = svc.JoinFolder(ctx, folder.ID, "bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	stored, err := store.GetByID(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, stored.MemberIDs)
}

func TestJoinFolderMissing(t *testing.T) {
	ctx := context.Background()
	_, svc := folderFixture(t, true)

	_, err := svc.JoinFolder(ctx, 404, "bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenameFolderOwnerOnly(t *testing.T) {
	ctx := context.Background()
	store, svc := folderFixture(t, true)

	folder, err := svc.CreateFolder(ctx, "Старое имя", "alice")
	require.NoError(t, err)
	_, err = svc.JoinFolder(ctx, folder.ID, "bob")
	require.NoError(t, err)

	// Участник, но не владелец — отказ, имя не меняется
	err = svc.RenameFolder(ctx, folder.ID, "Чужое имя", "bob")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	stored, err := store.GetByID(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Старое имя", stored.Name)

	err = svc.RenameFolder(ctx, folder.ID, "Новое имя", "alice")
	require.NoError(t, err)

	stored, err = store.GetByID(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Новое имя", stored.Name)
}

func TestListFoldersNewestFirst(t *testing.T) {
	ctx := context.Background()
	_, svc := folderFixture(t, true)

	first, err := svc.CreateFolder(ctx, "Первая", "alice")
	require.NoError(t, err)
	second, err := svc.CreateFolder(ctx, "Вторая", "alice")
	require.NoError(t, err)

	// Чужая папка в список не попадает
	_, err = svc.CreateFolder(ctx, "Чужая", "bob")
	require.NoError(t, err)

	folders, err := svc.ListFolders(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, second.ID, folders[0].ID)
	assert.Equal(t, first.ID, folders[1].ID)
}

func TestGetFolderContentMembersOnly(t *testing.T) {
	ctx := context.Background()
	store, svc := folderFixture(t, true)

	folder, err := svc.CreateFolder(ctx, "Наполненная", "alice")
	require.NoError(t, err)

	itemSvc := NewItemService(itemStoreAdapter{store}, store, store, newFakeBlob(), NewAccessGuard())
	_, err = itemSvc.AddItem(ctx, folder.ID, "alice", upload(10))
	require.NoError(t, err)

	content, err := svc.GetFolderContent(ctx, folder.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, folder.ID, content.Folder.ID)
	assert.Len(t, content.Items, 1)

	_, err = svc.GetFolderContent(ctx, folder.ID, "mallory")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}
