package id_test

import (
	"testing"

	"github.com/storacha/batchmint/pkg/collection/testutil"
	"github.com/storacha/batchmint/pkg/collection/types/id"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	t.Run("round-trips through a BLOB column", func(t *testing.T) {
		db := testutil.CreateTestDB(t)
		_, err := db.ExecContext(t.Context(), `CREATE TABLE ids (id BLOB PRIMARY KEY) STRICT`)
		require.NoError(t, err)

		written := id.New()
		_, err = db.ExecContext(t.Context(), `INSERT INTO ids (id) VALUES (?)`, written)
		require.NoError(t, err)

		var read id.ID
		require.NoError(t, db.QueryRowContext(t.Context(), `SELECT id FROM ids WHERE id = ?`, written).Scan(&read))
		require.Equal(t, written, read)
	})

	t.Run("refuses values that are not 16-byte BLOBs", func(t *testing.T) {
		var read id.ID
		require.Error(t, read.Scan("not-a-blob"))
		require.Error(t, read.Scan([]byte{1, 2, 3}))
		require.True(t, read.IsNil())
	})

	t.Run("renders as a UUID string", func(t *testing.T) {
		require.True(t, id.Nil.IsNil())
		require.Equal(t, "00000000-0000-0000-0000-000000000000", id.Nil.String())
		require.False(t, id.New().IsNil())
	})
}
