package agentdata_test

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/storacha/batchmint/pkg/agentdata"
	"github.com/storacha/go-ucanto/principal/ed25519/signer"
	"github.com/stretchr/testify/require"
)

func TestAgentData(t *testing.T) {
	t.Run("round-trips through a file", func(t *testing.T) {
		s, err := signer.Generate()
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "config.json")
		data := agentdata.AgentData{Principal: s, Database: "/tmp/collection.db"}
		require.NoError(t, data.WriteToFile(path))

		read, err := agentdata.ReadFromFile(path)
		require.NoError(t, err)
		require.Equal(t, s.DID(), read.Principal.DID())
		require.Equal(t, s.Encode(), read.Principal.Encode())
		require.Equal(t, "/tmp/collection.db", read.Database)
	})

	t.Run("reports a missing file", func(t *testing.T) {
		_, err := agentdata.ReadFromFile(filepath.Join(t.TempDir(), "missing.json"))
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("rejects an unknown key codec", func(t *testing.T) {
		b, err := json.Marshal(map[string]any{"Principal": []byte{0x01, 0x02}})
		require.NoError(t, err)

		var data agentdata.AgentData
		err = json.Unmarshal(b, &data)
		require.ErrorContains(t, err, "invalid private key codec")
	})

	t.Run("refuses to encode without a principal", func(t *testing.T) {
		_, err := json.Marshal(agentdata.AgentData{})
		require.Error(t, err)
	})
}
