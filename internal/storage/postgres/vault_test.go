package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcrae/delve/internal/game/storage"
	"github.com/jmcrae/delve/internal/storage/postgres"
	"github.com/jmcrae/delve/internal/testutil"
)

func uniqueSaveID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func setupVaultRepo(t *testing.T) *postgres.VaultRepository {
	t.Helper()
	pool := testutil.NewPool(t)
	return postgres.NewVaultRepository(pool, uniqueSaveID("save"))
}

func TestVaultRepository_GetVaultItems_EmptySave(t *testing.T) {
	repo := setupVaultRepo(t)

	items, err := repo.GetVaultItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestVaultRepository_SetAndGetRoundTrip(t *testing.T) {
	repo := setupVaultRepo(t)
	ctx := context.Background()

	want := []storage.SavedItem{
		{ItemID: "torch", Count: 16},
		{ItemID: "arrow", Count: 32},
		{ItemID: "torch", Count: 4},
	}
	require.NoError(t, repo.SetVaultItems(ctx, want))

	got, err := repo.GetVaultItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got, "position order must survive the round trip")
}

func TestVaultRepository_SetVaultItems_ReplacesExistingList(t *testing.T) {
	repo := setupVaultRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetVaultItems(ctx, []storage.SavedItem{
		{ItemID: "torch", Count: 16},
		{ItemID: "arrow", Count: 32},
	}))
	require.NoError(t, repo.SetVaultItems(ctx, []storage.SavedItem{
		{ItemID: "draught", Count: 3},
	}))

	got, err := repo.GetVaultItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.SavedItem{{ItemID: "draught", Count: 3}}, got)
}

func TestVaultRepository_SavesAreIsolated(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	repoA := postgres.NewVaultRepository(pool, uniqueSaveID("save_a"))
	repoB := postgres.NewVaultRepository(pool, uniqueSaveID("save_b"))

	require.NoError(t, repoA.SetVaultItems(ctx, []storage.SavedItem{{ItemID: "torch", Count: 5}}))
	require.NoError(t, repoB.SetVaultItems(ctx, []storage.SavedItem{{ItemID: "rune", Count: 1}}))

	gotA, err := repoA.GetVaultItems(ctx)
	require.NoError(t, err)
	gotB, err := repoB.GetVaultItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.SavedItem{{ItemID: "torch", Count: 5}}, gotA)
	assert.Equal(t, []storage.SavedItem{{ItemID: "rune", Count: 1}}, gotB)
}

func TestVaultRepository_AddItemToVault_Appends(t *testing.T) {
	repo := setupVaultRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddItemToVault(ctx, "torch", 16))
	require.NoError(t, repo.AddItemToVault(ctx, "arrow", 32))

	got, err := repo.GetVaultItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.SavedItem{
		{ItemID: "torch", Count: 16},
		{ItemID: "arrow", Count: 32},
	}, got)
}

func TestVaultRepository_RemoveItemFromVault_Partial(t *testing.T) {
	repo := setupVaultRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetVaultItems(ctx, []storage.SavedItem{{ItemID: "torch", Count: 16}}))
	require.NoError(t, repo.RemoveItemFromVault(ctx, 0, 6))

	got, err := repo.GetVaultItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.SavedItem{{ItemID: "torch", Count: 10}}, got)
}

func TestVaultRepository_RemoveItemFromVault_WholeStackCompactsPositions(t *testing.T) {
	repo := setupVaultRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetVaultItems(ctx, []storage.SavedItem{
		{ItemID: "torch", Count: 16},
		{ItemID: "arrow", Count: 32},
		{ItemID: "draught", Count: 3},
	}))
	require.NoError(t, repo.RemoveItemFromVault(ctx, 1, -1))

	got, err := repo.GetVaultItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.SavedItem{
		{ItemID: "torch", Count: 16},
		{ItemID: "draught", Count: 3},
	}, got, "later positions must shift down after a deletion")

	// Index 1 now addresses the draught row; remove it too.
	require.NoError(t, repo.RemoveItemFromVault(ctx, 1, -1))
	got, err = repo.GetVaultItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.SavedItem{{ItemID: "torch", Count: 16}}, got)
}

func TestVaultRepository_RemoveItemFromVault_CountAtLeastStackDeletesRow(t *testing.T) {
	repo := setupVaultRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetVaultItems(ctx, []storage.SavedItem{{ItemID: "torch", Count: 5}}))
	require.NoError(t, repo.RemoveItemFromVault(ctx, 0, 9))

	got, err := repo.GetVaultItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVaultRepository_RemoveItemFromVault_IndexOutOfRange(t *testing.T) {
	repo := setupVaultRepo(t)
	ctx := context.Background()

	err := repo.RemoveItemFromVault(ctx, 0, 1)
	assert.ErrorIs(t, err, postgres.ErrVaultIndexOutOfRange)

	require.NoError(t, repo.SetVaultItems(ctx, []storage.SavedItem{{ItemID: "torch", Count: 5}}))
	err = repo.RemoveItemFromVault(ctx, 3, 1)
	assert.ErrorIs(t, err, postgres.ErrVaultIndexOutOfRange)
}

func TestSaveBacking_RoundTripThroughRepository(t *testing.T) {
	repo := setupVaultRepo(t)
	ctx := context.Background()
	backing := storage.NewSaveBacking(repo)

	want := []storage.SavedItem{
		{ItemID: "arrow", Count: 12},
		{ItemID: "torch", Count: 7},
	}
	require.NoError(t, backing.Save(ctx, want))

	got, err := backing.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
