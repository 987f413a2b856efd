package sqlrepo_test

import (
	"testing"

	"github.com/storacha/batchmint/pkg/collection/metadata/model"
	"github.com/storacha/batchmint/pkg/collection/sqlrepo"
	"github.com/storacha/batchmint/pkg/collection/testutil"
	"github.com/stretchr/testify/require"
)

func TestBatches(t *testing.T) {
	t.Run("creates and lists batches by start", func(t *testing.T) {
		repo := sqlrepo.New(testutil.CreateTestDB(t))
		second, err := model.NewBatch(5, 8, "ipfs://B/")
		require.NoError(t, err)
		first, err := model.NewBatch(0, 5, "ipfs://A/")
		require.NoError(t, err)
		require.NoError(t, repo.CreateBatch(t.Context(), second))
		require.NoError(t, repo.CreateBatch(t.Context(), first))

		batches, err := repo.ListBatches(t.Context())
		require.NoError(t, err)
		require.Equal(t, []*model.Batch{first, second}, batches)
	})

	t.Run("lists nothing for a new repository", func(t *testing.T) {
		repo := sqlrepo.New(testutil.CreateTestDB(t))
		batches, err := repo.ListBatches(t.Context())
		require.NoError(t, err)
		require.Empty(t, batches)
	})

	t.Run("refuses a second batch with the same end", func(t *testing.T) {
		repo := sqlrepo.New(testutil.CreateTestDB(t))
		b, err := model.NewBatch(0, 5, "ipfs://A/")
		require.NoError(t, err)
		require.NoError(t, repo.CreateBatch(t.Context(), b))
		require.Error(t, repo.CreateBatch(t.Context(), b))
	})

	t.Run("updates the base URI of an existing batch", func(t *testing.T) {
		repo := sqlrepo.New(testutil.CreateTestDB(t))
		b, err := model.NewBatch(0, 5, "ipfs://A/")
		require.NoError(t, err)
		require.NoError(t, repo.CreateBatch(t.Context(), b))

		b.SetBaseURI("ipfs://C/")
		require.NoError(t, repo.UpdateBatch(t.Context(), b))
		batches, err := repo.ListBatches(t.Context())
		require.NoError(t, err)
		require.Len(t, batches, 1)
		require.Equal(t, "ipfs://C/", batches[0].BaseURI())
		require.Equal(t, b.UpdatedAt(), batches[0].UpdatedAt())

		missing, err := model.NewBatch(5, 6, "ipfs://D/")
		require.NoError(t, err)
		require.Error(t, repo.UpdateBatch(t.Context(), missing))
	})
}
