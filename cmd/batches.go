package main

import (
	"fmt"
	"os"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	"github.com/storacha/batchmint/internal/cmdutil"
	"github.com/storacha/batchmint/pkg/collection/manifest"
	"github.com/urfave/cli/v2"
)

func cidFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "cid",
		Value: "",
		Usage: "CID of the metadata directory on IPFS, used as the base URI ipfs://<cid>/.",
	}
}

// baseURIArg returns the base URI given with --cid, or else the positional
// argument at position i.
func baseURIArg(cCtx *cli.Context, i int) (string, error) {
	if s := cCtx.String("cid"); s != "" {
		c, err := cid.Parse(s)
		if err != nil {
			return "", fmt.Errorf("parsing CID: %w", err)
		}
		return manifest.CIDBaseURI(c), nil
	}
	if cCtx.NArg() <= i {
		return "", fmt.Errorf("base URI or --cid is required")
	}
	return cCtx.Args().Get(i), nil
}

func fileCID(cCtx *cli.Context) error {
	path := cCtx.Args().First()
	if path == "" {
		return fmt.Errorf("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	digest, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	c := cid.NewCidV1(uint64(multicodec.Raw), digest)
	fmt.Println(c)
	fmt.Println(manifest.CIDBaseURI(c))
	return nil
}

func uploadBatch(cCtx *cli.Context) error {
	if cCtx.NArg() < 1 {
		return fmt.Errorf("amount is required")
	}
	amount := cmdutil.MustParseUint("amount", cCtx.Args().Get(0))
	uri, err := baseURIArg(cCtx, 1)
	if err != nil {
		return err
	}

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	batch, err := c.UploadBatch(cCtx.Context, caller, amount, uri)
	if err != nil {
		return fmt.Errorf("uploading batch: %w", err)
	}
	fmt.Printf("batch %d: tokens %d-%d -> %s\n", batch.ID(), batch.Start(), batch.Last(), batch.BaseURI())
	return nil
}

func setBaseURI(cCtx *cli.Context) error {
	if cCtx.NArg() < 1 {
		return fmt.Errorf("batch ID is required")
	}
	batchID := cmdutil.MustParseUint("batch ID", cCtx.Args().Get(0))
	uri, err := baseURIArg(cCtx, 1)
	if err != nil {
		return err
	}

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	if err := c.SetBaseURI(cCtx.Context, caller, batchID, uri); err != nil {
		return fmt.Errorf("setting base URI: %w", err)
	}
	return nil
}

func tokenURI(cCtx *cli.Context) error {
	if cCtx.NArg() < 1 {
		return fmt.Errorf("token ID is required")
	}
	tokenIDs := make([]uint64, 0, cCtx.NArg())
	for _, arg := range cCtx.Args().Slice() {
		tokenIDs = append(tokenIDs, cmdutil.MustParseUint("token ID", arg))
	}

	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	if cCtx.Bool("minted") {
		for _, tokenID := range tokenIDs {
			uri, err := c.TokenURI(cCtx.Context, tokenID)
			if err != nil {
				return err
			}
			fmt.Println(uri)
		}
		return nil
	}

	uris, err := c.ResolveTokenURIs(cCtx.Context, tokenIDs)
	if err != nil {
		return err
	}
	for _, uri := range uris {
		fmt.Println(uri)
	}
	return nil
}

func listBatches(cCtx *cli.Context) error {
	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	for _, b := range c.ListAllBatches() {
		fmt.Printf("%d\t%d-%d\t%s\n", b.ID(), b.Start(), b.Last(), b.BaseURI())
	}
	return nil
}

func batchID(cCtx *cli.Context) error {
	tokenID := cmdutil.MustParseUint("token ID", cCtx.Args().First())

	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	id, index, err := c.GetBatchID(tokenID)
	if err != nil {
		return err
	}
	fmt.Printf("batch %d (index %d)\n", id, index)
	return nil
}

func batchRange(cCtx *cli.Context) error {
	batchID := cmdutil.MustParseUint("batch ID", cCtx.Args().First())

	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	start, end, err := c.GetBatchRange(batchID)
	if err != nil {
		return err
	}
	fmt.Printf("%d-%d\n", start, end)
	return nil
}

func nextTokenID(cCtx *cli.Context) error {
	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	fmt.Println(c.NextTokenIDToMint())
	return nil
}
