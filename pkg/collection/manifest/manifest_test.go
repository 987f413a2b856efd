package manifest_test

import (
	"math"
	"testing"

	"github.com/spf13/afero"
	"github.com/storacha/batchmint/pkg/collection/manifest"
	"github.com/storacha/batchmint/pkg/collection/metadata"
	"github.com/storacha/batchmint/pkg/collection/testutil"
	"github.com/stretchr/testify/require"
)

func TestManifest(t *testing.T) {
	t.Run("round-trips the batches of an index", func(t *testing.T) {
		x := metadata.NewIndex()
		_, err := x.Append(5, manifest.CIDBaseURI(testutil.RandomCID(t)))
		require.NoError(t, err)
		_, err = x.Append(3, "https://example.com/meta/")
		require.NoError(t, err)

		memFS := afero.NewMemMapFs()
		m := manifest.FromBatches(x.Batches())
		require.NoError(t, manifest.Write(memFS, "exports/manifest.json", m))

		read, err := manifest.Read(memFS, "exports/manifest.json")
		require.NoError(t, err)
		require.Equal(t, m, read)
		require.Equal(t, []manifest.Entry{
			{Start: 0, End: 4, BaseURI: x.Batches()[0].BaseURI()},
			{Start: 5, End: 7, BaseURI: "https://example.com/meta/"},
		}, read.Batches)
		require.Equal(t, uint64(5), read.Batches[0].Amount())
	})

	t.Run("round-trips any base URI a collection accepts", func(t *testing.T) {
		x := metadata.NewIndex()
		_, err := x.Append(5, "ipfs://A/")
		require.NoError(t, err)
		_, err = x.Append(3, "")
		require.NoError(t, err)

		memFS := afero.NewMemMapFs()
		m := manifest.FromBatches(x.Batches())
		require.NoError(t, manifest.Write(memFS, "manifest.json", m))

		read, err := manifest.Read(memFS, "manifest.json")
		require.NoError(t, err)
		require.Equal(t, []manifest.Entry{
			{Start: 0, End: 4, BaseURI: "ipfs://A/"},
			{Start: 5, End: 7, BaseURI: ""},
		}, read.Batches)

		pending, err := read.Pending(0)
		require.NoError(t, err)
		imported := metadata.NewIndex()
		for _, e := range pending {
			_, err := imported.Append(e.Amount(), e.BaseURI)
			require.NoError(t, err)
		}
		require.Equal(t, x.NextRangeStart(), imported.NextRangeStart())
		uri, err := imported.TokenURI(2)
		require.NoError(t, err)
		require.Equal(t, "ipfs://A/2", uri)
		uri, err = imported.TokenURI(6)
		require.NoError(t, err)
		require.Equal(t, "1", uri)
	})

	t.Run("rejects gaps and bad versions", func(t *testing.T) {
		gap := manifest.Manifest{Version: manifest.Version, Batches: []manifest.Entry{
			{Start: 0, End: 4, BaseURI: "a/"},
			{Start: 6, End: 7, BaseURI: "b/"},
		}}
		require.ErrorIs(t, gap.Validate(), manifest.ErrNotContiguous)

		backwards := manifest.Manifest{Version: manifest.Version, Batches: []manifest.Entry{{Start: 4, End: 3}}}
		require.Error(t, backwards.Validate())

		version := manifest.Manifest{Version: 99}
		require.Error(t, version.Validate())
	})

	t.Run("rejects batches ending at the largest token ID", func(t *testing.T) {
		whole := manifest.Manifest{Version: manifest.Version, Batches: []manifest.Entry{
			{Start: 0, End: math.MaxUint64, BaseURI: "a/"},
		}}
		require.Error(t, whole.Validate())

		wrapping := manifest.Manifest{Version: manifest.Version, Batches: []manifest.Entry{
			{Start: 0, End: math.MaxUint64, BaseURI: "a/"},
			{Start: 0, End: 4, BaseURI: "b/"},
		}}
		require.Error(t, wrapping.Validate())
	})

	t.Run("refuses to read an invalid file", func(t *testing.T) {
		memFS := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(memFS, "manifest.json", []byte(`{"version":1,"batches":[{"start":0,"end":4},{"start":6,"end":7}]}`), 0644))
		_, err := manifest.Read(memFS, "manifest.json")
		require.ErrorIs(t, err, manifest.ErrNotContiguous)

		_, err = manifest.Read(memFS, "missing.json")
		require.Error(t, err)
	})

	t.Run("skips entries that were already imported", func(t *testing.T) {
		m := manifest.Manifest{Version: manifest.Version, Batches: []manifest.Entry{
			{Start: 0, End: 4, BaseURI: "a/"},
			{Start: 5, End: 7, BaseURI: "b/"},
			{Start: 8, End: 8, BaseURI: "c/"},
		}}

		pending, err := m.Pending(0)
		require.NoError(t, err)
		require.Equal(t, m.Batches, pending)

		pending, err = m.Pending(5)
		require.NoError(t, err)
		require.Equal(t, m.Batches[1:], pending)

		pending, err = m.Pending(9)
		require.NoError(t, err)
		require.Empty(t, pending)

		_, err = m.Pending(6)
		require.ErrorIs(t, err, manifest.ErrNotContiguous)
	})
}

func TestCIDBaseURI(t *testing.T) {
	c := testutil.RandomCID(t)
	uri := manifest.CIDBaseURI(c)
	require.Equal(t, "ipfs://"+c.String()+"/", uri)

	parsed, err := manifest.ParseCIDBaseURI(uri)
	require.NoError(t, err)
	require.Equal(t, c, parsed)

	_, err = manifest.ParseCIDBaseURI("https://example.com/")
	require.Error(t, err)
}
