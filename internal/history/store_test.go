package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/parcel/internal/config"
	"github.com/eliteGoblin/parcel/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()

	store, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAddAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := domain.JobRecord{
		ID:          uuid.NewString(),
		Operation:   domain.OpCompressing,
		Kind:        domain.KindZip,
		SourceCount: 3,
		Destination: "/a/b/out.zip",
		Status:      domain.JobSucceeded,
		Message:     "Files compressed successfully to: /a/b/out.zip",
		StartedAt:   time.Now().Add(-time.Hour),
		DurationMs:  1200,
	}
	newer := domain.JobRecord{
		ID:          uuid.NewString(),
		Operation:   domain.OpExtracting,
		SourceCount: 1,
		Status:      domain.JobFailed,
		Message:     "failed to decompress '/a/x.zip': corrupt header",
		StartedAt:   time.Now(),
		DurationMs:  40,
	}
	require.NoError(t, store.Add(ctx, older))
	require.NoError(t, store.Add(ctx, newer))

	records, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, domain.JobFailed, records[0].Status)
	assert.Equal(t, older.ID, records[1].ID)
	assert.Equal(t, domain.KindZip, records[1].Kind)
	assert.Equal(t, older.StartedAt.Unix(), records[1].StartedAt.Unix())
}

func TestListHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(ctx, domain.JobRecord{
			ID:          uuid.NewString(),
			Operation:   domain.OpCompressing,
			Kind:        domain.KindGz,
			SourceCount: 1,
			Status:      domain.JobSucceeded,
			StartedAt:   time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := store.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestListEmptyStore(t *testing.T) {
	store := openTestStore(t)

	records, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
