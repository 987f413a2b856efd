// Package manifest reads and writes JSON batch manifests, used to export the
// batches of a collection and to import them into another.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/afero"
	"github.com/storacha/batchmint/pkg/collection/metadata/model"
)

var log = logging.Logger("collection/manifest")

// Version is the manifest format version written by this package.
const Version = 1

const ipfsScheme = "ipfs://"

// ErrNotContiguous indicates a manifest whose batches leave a gap or overlap.
var ErrNotContiguous = errors.New("manifest batches are not contiguous")

// Entry describes one batch. End is inclusive.
type Entry struct {
	Start   uint64 `json:"start"`
	End     uint64 `json:"end"`
	BaseURI string `json:"baseUri"`
}

// Amount returns the number of tokens the entry covers.
func (e Entry) Amount() uint64 {
	return e.End - e.Start + 1
}

type Manifest struct {
	Version int     `json:"version"`
	Batches []Entry `json:"batches"`
}

// FromBatches builds a manifest listing batches in order.
func FromBatches(batches []*model.Batch) Manifest {
	m := Manifest{Version: Version, Batches: make([]Entry, 0, len(batches))}
	for _, b := range batches {
		m.Batches = append(m.Batches, Entry{Start: b.Start(), End: b.Last(), BaseURI: b.BaseURI()})
	}
	return m
}

// Validate checks that the batches are non-empty and contiguous. Any base URI
// a collection accepts is valid here, the empty one included; ipfs base URIs
// that name no valid CID are only logged.
func (m Manifest) Validate() error {
	if m.Version != Version {
		return fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	for i, e := range m.Batches {
		if e.End < e.Start {
			return fmt.Errorf("batch %d: end %d before start %d", i, e.End, e.Start)
		}
		// A batch's exclusive end must itself be a token ID.
		if e.End == math.MaxUint64 {
			return fmt.Errorf("batch %d: end %d leaves no room for the batch ID", i, e.End)
		}
		if i > 0 && e.Start != m.Batches[i-1].End+1 {
			return fmt.Errorf("batch %d starts at %d after %d: %w", i, e.Start, m.Batches[i-1].End, ErrNotContiguous)
		}
		if strings.HasPrefix(e.BaseURI, ipfsScheme) {
			if _, err := ParseCIDBaseURI(e.BaseURI); err != nil {
				log.Warnw("base URI names no valid CID", "batch", i, "uri", e.BaseURI, "err", err)
			}
		}
	}
	return nil
}

// Pending returns the entries still to be uploaded to a collection whose next
// token ID to mint is next. Entries wholly below next are taken as already
// imported. An entry straddling next cannot be imported.
func (m Manifest) Pending(next uint64) ([]Entry, error) {
	var pending []Entry
	for _, e := range m.Batches {
		switch {
		case e.End < next:
			continue
		case e.Start == next || (len(pending) > 0 && e.Start == pending[len(pending)-1].End+1):
			pending = append(pending, e)
		default:
			return nil, fmt.Errorf("batch [%d, %d] does not start at next token ID %d: %w", e.Start, e.End, next, ErrNotContiguous)
		}
	}
	return pending, nil
}

// Read reads and validates the manifest at path.
func Read(fs afero.Fs, path string) (Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decoding manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}

// Write writes m to path, creating parent directories as needed.
func Write(fs afero.Fs, path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating manifest directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// CIDBaseURI returns the base URI of a directory stored on IPFS under c, e.g.
// "ipfs://bafy.../".
func CIDBaseURI(c cid.Cid) string {
	return ipfsScheme + c.String() + "/"
}

// ParseCIDBaseURI returns the CID named by an ipfs base URI.
func ParseCIDBaseURI(uri string) (cid.Cid, error) {
	rest, ok := strings.CutPrefix(uri, ipfsScheme)
	if !ok {
		return cid.Undef, fmt.Errorf("base URI %q does not use the ipfs scheme", uri)
	}
	root, _, _ := strings.Cut(rest, "/")
	c, err := cid.Parse(root)
	if err != nil {
		return cid.Undef, fmt.Errorf("parsing CID in base URI %q: %w", uri, err)
	}
	return c, nil
}
