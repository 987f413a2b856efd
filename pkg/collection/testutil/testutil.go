package testutil

import (
	crand "crypto/rand"
	"database/sql"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	"github.com/storacha/batchmint/pkg/collection/sqlrepo"
	"github.com/storacha/go-ucanto/did"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
	uhelpers "github.com/storacha/go-ucanto/testing/helpers"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// CreateTestDB creates an in-memory SQLite database with the collection schema
// applied. The database is closed when the test ends.
func CreateTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "failed to open in-memory SQLite database")
	// Every connection to ":memory:" opens a fresh database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		db.Close()
	})

	_, err = db.ExecContext(t.Context(), sqlrepo.Schema)
	require.NoError(t, err, "failed to execute schema")

	return db
}

// CreateTestRepo returns a repository over a fresh test database.
func CreateTestRepo(t *testing.T) sqlrepo.Repo {
	return sqlrepo.New(CreateTestDB(t))
}

// RandomCID returns the CID of some random bytes.
func RandomCID(t *testing.T) cid.Cid {
	t.Helper()

	bytes := make([]byte, 10)
	_, err := crand.Read(bytes)
	require.NoError(t, err)

	hash, err := multihash.Sum(bytes, multihash.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(uint64(multicodec.Raw), hash)
}

// RandomDID returns the DID of a freshly generated ed25519 principal.
func RandomDID(t *testing.T) did.DID {
	t.Helper()
	return uhelpers.Must(ed25519.Generate()).DID()
}
