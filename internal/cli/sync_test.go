package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
	assert.NotNil(t, syncCmd.Flags().Lookup("since"))
	assert.NotNil(t, syncCmd.Flags().Lookup("no-invalidate"))
}

func TestSyncCmd_PublishesWhenProductsChanged(t *testing.T) {
	rt := &fakeRuntime{syncCount: 3}
	useFake(t, rt)

	out, err := execute(t, "sync", "--since", "2024-01-01T00:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rt.syncedSince)
	assert.False(t, rt.opts.RunAPI)
	assert.Equal(t, 1, rt.published)
	assert.Equal(t, 1, rt.shutdowns)
	assert.Contains(t, out, "Synced 3 products.")
	assert.Contains(t, out, "Facet invalidation published.")
}

func TestSyncCmd_NothingChanged(t *testing.T) {
	rt := &fakeRuntime{}
	useFake(t, rt)

	out, err := execute(t, "sync", "--since", "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 0, rt.published)
	assert.Contains(t, out, "Synced 0 products.")
}

func TestSyncCmd_NoInvalidate(t *testing.T) {
	rt := &fakeRuntime{syncCount: 2}
	useFake(t, rt)

	_, err := execute(t, "sync", "--since", "2024-01-01T00:00:00Z", "--no-invalidate")
	require.NoError(t, err)
	assert.Equal(t, 0, rt.published)
}

func TestSyncCmd_InvalidSince(t *testing.T) {
	rt := &fakeRuntime{}
	useFake(t, rt)

	_, err := execute(t, "sync", "--since", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --since")
	assert.True(t, rt.syncedSince.IsZero())
}

func TestSyncCmd_PartialFailure(t *testing.T) {
	rt := &fakeRuntime{syncCount: 4, syncErr: errors.New("index unavailable")}
	useFake(t, rt)

	_, err := execute(t, "sync", "--since", "2024-01-01T00:00:00Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync failed after 4 products")
	assert.Equal(t, 0, rt.published)
	assert.Equal(t, 1, rt.shutdowns)
}

func TestSyncCmd_PublishError(t *testing.T) {
	rt := &fakeRuntime{syncCount: 1, publishErr: errors.New("bus closed")}
	useFake(t, rt)

	_, err := execute(t, "sync", "--since", "2024-01-01T00:00:00Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish invalidation")
}
