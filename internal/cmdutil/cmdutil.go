// Package cmdutil provides utility functions specifically for the batchmint CLI.
package cmdutil

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path"
	"strconv"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/batchmint/pkg/agentdata"
	"github.com/storacha/batchmint/pkg/collection"
	"github.com/storacha/batchmint/pkg/collection/sqlrepo"
	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/principal"
	"github.com/storacha/go-ucanto/principal/ed25519/signer"
)

var log = logging.Logger("batchmint/cmdutil")

// envSigner returns a principal.Signer from the environment variable
// BATCHMINT_PRIVATE_KEY, if any.
func envSigner() (principal.Signer, error) {
	str := os.Getenv("BATCHMINT_PRIVATE_KEY") // use env var preferably
	if str == "" {
		return nil, nil // no signer in the environment
	}

	return signer.Parse(str)
}

// MustGetDataDir returns the CLI's data directory, creating it if needed.
func MustGetDataDir() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("obtaining user home directory: %s", err)
	}

	datadir := path.Join(homedir, ".batchmint")
	if err := os.MkdirAll(datadir, 0700); err != nil {
		log.Fatalf("creating data directory: %s", err)
	}
	return datadir
}

// MustGetAgent returns the agent the CLI acts as. A principal given in the
// environment takes precedence and is never saved. Otherwise the saved agent
// is used, generating and saving a new one on first use.
func MustGetAgent() agentdata.AgentData {
	datapath := path.Join(MustGetDataDir(), "config.json")

	data, err := agentdata.ReadFromFile(datapath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("reading agent data: %s", err)
	}

	if s, err := envSigner(); err != nil {
		log.Fatalf("parsing BATCHMINT_PRIVATE_KEY: %s", err)
	} else if s != nil {
		data.Principal = s
		return data
	}

	if data.Principal == nil {
		s, err := signer.Generate()
		if err != nil {
			log.Fatalf("generating principal: %s", err)
		}
		data.Principal = s
		if err := data.WriteToFile(datapath); err != nil {
			log.Fatalf("saving agent data: %s", err)
		}
		log.Infow("generated new agent", "did", s.DID())
	}
	return data
}

// MustGetDatabasePath resolves the collection database to use: dbPath if
// given, else the one the agent last used, else collection.db in the data
// directory.
func MustGetDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	if data := MustGetAgent(); data.Database != "" {
		return data.Database
	}
	return path.Join(MustGetDataDir(), "collection.db")
}

// MustRememberDatabase records dbPath as the database later commands use by
// default.
func MustRememberDatabase(dbPath string) {
	datapath := path.Join(MustGetDataDir(), "config.json")
	MustGetAgent()
	data, err := agentdata.ReadFromFile(datapath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warnw("not remembering database, agent comes from the environment", "db", dbPath)
			return
		}
		log.Fatalf("reading agent data: %s", err)
	}
	data.Database = dbPath
	if err := data.WriteToFile(datapath); err != nil {
		log.Fatalf("saving agent data: %s", err)
	}
}

// MustGetCollection opens the collection database at dbPath and loads the
// collection. The returned function closes the database.
func MustGetCollection(ctx context.Context, dbPath string, options ...collection.Option) (*collection.Collection, func()) {
	db, err := sqlrepo.Open(ctx, MustGetDatabasePath(dbPath))
	if err != nil {
		log.Fatalf("opening collection database: %s", err)
	}

	c, err := collection.Load(ctx, sqlrepo.New(db), options...)
	if err != nil {
		closeDB(db)
		log.Fatalf("loading collection: %s", err)
	}

	return c, func() { closeDB(db) }
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Warnw("closing collection database", "err", err)
	}
}

func MustParseDID(str string) did.DID {
	did, err := did.Parse(str)
	if err != nil {
		log.Fatalf("parsing DID: %s", err)
	}
	return did
}

func MustParseUint(name, str string) uint64 {
	n, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		log.Fatalf("parsing %s: %s", name, err)
	}
	return n
}
