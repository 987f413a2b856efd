package model_test

import (
	"testing"
	"time"

	"github.com/storacha/batchmint/pkg/collection/metadata/model"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	t.Run("describes its range", func(t *testing.T) {
		b, err := model.NewBatch(5, 8, "ipfs://B/")
		require.NoError(t, err)

		require.Equal(t, uint64(8), b.ID())
		require.Equal(t, uint64(5), b.Start())
		require.Equal(t, uint64(7), b.Last())
		require.Equal(t, uint64(3), b.Size())
	})

	t.Run("rejects an empty range", func(t *testing.T) {
		_, err := model.NewBatch(5, 5, "ipfs://B/")
		require.Error(t, err)
		_, err = model.NewBatch(6, 5, "ipfs://B/")
		require.Error(t, err)
	})

	t.Run("clones share no state", func(t *testing.T) {
		b, err := model.NewBatch(0, 1, "ipfs://A/")
		require.NoError(t, err)
		c := b.Clone()
		c.SetBaseURI("ipfs://B/")
		require.Equal(t, "ipfs://A/", b.BaseURI())
		require.Equal(t, "ipfs://B/", c.BaseURI())
	})

	t.Run("round-trips through the database functions", func(t *testing.T) {
		b, err := model.NewBatch(3, 9, "ipfs://C/")
		require.NoError(t, err)

		var (
			start, end           uint64
			baseURI              string
			createdAt, updatedAt time.Time
		)
		require.NoError(t, model.WriteBatchToDatabase(func(s, e uint64, uri string, c, u time.Time) error {
			start, end, baseURI, createdAt, updatedAt = s, e, uri, c, u
			return nil
		}, b))

		read, err := model.ReadBatchFromDatabase(func(s, e *uint64, uri *string, c, u *time.Time) error {
			*s, *e, *uri, *c, *u = start, end, baseURI, createdAt, updatedAt
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, b, read)
	})

	t.Run("rejects an invalid row", func(t *testing.T) {
		_, err := model.ReadBatchFromDatabase(func(s, e *uint64, uri *string, c, u *time.Time) error {
			*s, *e = 4, 4
			return nil
		})
		require.Error(t, err)
	})
}
