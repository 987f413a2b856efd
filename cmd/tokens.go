package main

import (
	"fmt"

	"github.com/storacha/batchmint/internal/cmdutil"
	"github.com/storacha/go-ucanto/did"
	"github.com/urfave/cli/v2"
)

func mint(cCtx *cli.Context) error {
	if cCtx.NArg() < 2 {
		return fmt.Errorf("recipient and quantity are required")
	}
	to := cmdutil.MustParseDID(cCtx.Args().Get(0))
	quantity := cmdutil.MustParseUint("quantity", cCtx.Args().Get(1))
	withURI := cCtx.NArg() > 2 || cCtx.String("cid") != ""

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	var start uint64
	if withURI {
		uri, err := baseURIArg(cCtx, 2)
		if err != nil {
			return err
		}
		start, err = c.MintWithURI(cCtx.Context, caller, to, quantity, uri)
		if err != nil {
			return fmt.Errorf("minting: %w", err)
		}
	} else {
		var err error
		start, err = c.Mint(cCtx.Context, caller, to, quantity)
		if err != nil {
			return fmt.Errorf("minting: %w", err)
		}
	}
	fmt.Printf("minted tokens %d-%d to %s\n", start, start+quantity-1, to)
	return nil
}

func ownerOf(cCtx *cli.Context) error {
	tokenID := cmdutil.MustParseUint("token ID", cCtx.Args().First())

	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	owner, err := c.OwnerOf(cCtx.Context, tokenID)
	if err != nil {
		return err
	}
	fmt.Println(owner)
	return nil
}

func balanceOf(cCtx *cli.Context) error {
	owner := cmdutil.MustParseDID(cCtx.Args().First())

	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	n, err := c.BalanceOf(cCtx.Context, owner)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func totalSupply(cCtx *cli.Context) error {
	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	n, err := c.TotalSupply(cCtx.Context)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func transfer(cCtx *cli.Context) error {
	if cCtx.NArg() < 3 {
		return fmt.Errorf("from, to and token ID are required")
	}
	from := cmdutil.MustParseDID(cCtx.Args().Get(0))
	to := cmdutil.MustParseDID(cCtx.Args().Get(1))
	tokenID := cmdutil.MustParseUint("token ID", cCtx.Args().Get(2))

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	return c.TransferFrom(cCtx.Context, caller, from, to, tokenID)
}

func approve(cCtx *cli.Context) error {
	if cCtx.NArg() < 2 {
		return fmt.Errorf("account and token ID are required")
	}
	var to did.DID
	if s := cCtx.Args().Get(0); s != "" {
		to = cmdutil.MustParseDID(s)
	}
	tokenID := cmdutil.MustParseUint("token ID", cCtx.Args().Get(1))

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	return c.Approve(cCtx.Context, caller, to, tokenID)
}

func approveAll(cCtx *cli.Context) error {
	operator := cmdutil.MustParseDID(cCtx.Args().First())

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	return c.SetApprovalForAll(cCtx.Context, caller, operator, !cCtx.Bool("revoke"))
}

func burn(cCtx *cli.Context) error {
	tokenID := cmdutil.MustParseUint("token ID", cCtx.Args().First())

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	return c.Burn(cCtx.Context, caller, tokenID)
}
