package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/batchmint/internal/cmdutil"
	"github.com/storacha/batchmint/pkg/collection"
	"github.com/storacha/go-ucanto/did"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("batchmint/main")

func main() {
	app := &cli.App{
		Name:  "batchmint",
		Usage: "manage an NFT collection whose metadata is assigned in batches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Value:   "",
				Usage:   "Path to the collection database. Defaults to the last database initialized, or ~/.batchmint/collection.db.",
				EnvVars: []string{"BATCHMINT_DB"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "",
				Usage:   "Log level for every subsystem (debug, info, warn, error).",
				EnvVars: []string{"BATCHMINT_LOG_LEVEL"},
			},
		},
		Before: setLogLevel,
		Commands: []*cli.Command{
			{
				Name:   "whoami",
				Usage:  "Print the DID of the current agent.",
				Action: whoami,
			},
			{
				Name:   "init",
				Usage:  "Create the collection database and grant every role to the current agent.",
				Action: initCollection,
			},
			{
				Name:      "cid",
				Usage:     "Print the raw CID of a file and the base URI of a directory with that CID.",
				UsageText: "cid <path>",
				Action:    fileCID,
			},
			{
				Name:      "upload-batch",
				Usage:     "Append a batch of token IDs sharing one base URI.",
				UsageText: "upload-batch <amount> [base-uri]",
				Flags:     []cli.Flag{cidFlag()},
				Action:    uploadBatch,
			},
			{
				Name:      "set-base-uri",
				Usage:     "Overwrite the base URI of an existing batch.",
				UsageText: "set-base-uri <batch-id> [base-uri]",
				Flags:     []cli.Flag{cidFlag()},
				Action:    setBaseURI,
			},
			{
				Name:      "token-uri",
				Usage:     "Print the metadata URI of one or more token IDs.",
				UsageText: "token-uri <token-id>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "minted",
						Value: false,
						Usage: "Fail for tokens that have not been minted or have been burned.",
					},
				},
				Action: tokenURI,
			},
			{
				Name:    "batches",
				Aliases: []string{"ls"},
				Usage:   "List every batch.",
				Action:  listBatches,
			},
			{
				Name:      "batch-id",
				Usage:     "Print the batch containing a token ID and its position.",
				UsageText: "batch-id <token-id>",
				Action:    batchID,
			},
			{
				Name:      "batch-range",
				Usage:     "Print the first and last token IDs of a batch.",
				UsageText: "batch-range <batch-id>",
				Action:    batchRange,
			},
			{
				Name:   "next-token-id",
				Usage:  "Print the first token ID not covered by any batch.",
				Action: nextTokenID,
			},
			{
				Name:      "mint",
				Usage:     "Mint tokens. With a base URI, a new batch is created for them.",
				UsageText: "mint <to> <quantity> [base-uri]",
				Flags:     []cli.Flag{cidFlag()},
				Action:    mint,
			},
			{
				Name:      "owner-of",
				Usage:     "Print the owner of a token.",
				UsageText: "owner-of <token-id>",
				Action:    ownerOf,
			},
			{
				Name:      "balance-of",
				Usage:     "Print the number of tokens an account owns.",
				UsageText: "balance-of <did>",
				Action:    balanceOf,
			},
			{
				Name:   "total-supply",
				Usage:  "Print the number of tokens minted and not burned.",
				Action: totalSupply,
			},
			{
				Name:      "transfer",
				Usage:     "Transfer a token.",
				UsageText: "transfer <from> <to> <token-id>",
				Action:    transfer,
			},
			{
				Name:      "approve",
				Usage:     "Let an account transfer one token. An empty account clears the approval.",
				UsageText: "approve <to> <token-id>",
				Action:    approve,
			},
			{
				Name:      "approve-all",
				Usage:     "Let an operator manage every token of the current agent.",
				UsageText: "approve-all <operator>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "revoke",
						Value: false,
						Usage: "Revoke the operator instead.",
					},
				},
				Action: approveAll,
			},
			{
				Name:      "burn",
				Usage:     "Destroy a token.",
				UsageText: "burn <token-id>",
				Action:    burn,
			},
			{
				Name:      "grant",
				Usage:     "Grant roles (admin, minter, manager, all) to an account.",
				UsageText: "grant <did> <role>...",
				Action:    grant,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke roles (admin, minter, manager, all) from an account.",
				UsageText: "revoke <did> <role>...",
				Action:    revoke,
			},
			{
				Name:      "roles",
				Usage:     "Print the roles an account holds. Defaults to the current agent.",
				UsageText: "roles [did]",
				Action:    roles,
			},
			{
				Name:  "events",
				Usage: "List the events the collection has emitted.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Value: "",
						Usage: "Only list events of this kind (range_updated, transfer, approval, approval_for_all, roles_updated).",
					},
				},
				Action: listEvents,
			},
			{
				Name:      "export",
				Usage:     "Write every batch to a JSON manifest.",
				UsageText: "export <path>",
				Action:    exportManifest,
			},
			{
				Name:      "import",
				Usage:     "Upload the batches of a JSON manifest that the collection does not have yet.",
				UsageText: "import <path>",
				Action:    importManifest,
			},
			{
				Name:      "call",
				Usage:     "Dispatch an operation by name with JSON arguments.",
				UsageText: "call <operation> [json-args]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "list",
						Value: false,
						Usage: "List the operations that can be called.",
					},
				},
				Action: call,
			},
		},
	}

	// set up a context that is canceled when a command is interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up a signal handler to cancel the context
	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-interrupt:
			fmt.Println()
			log.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}

		// Allow any further SIGTERM or SIGINT to kill process
		signal.Stop(interrupt)
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func setLogLevel(cCtx *cli.Context) error {
	level := cCtx.String("log-level")
	if level == "" {
		return nil
	}
	lvl, err := logging.LevelFromString(level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logging.SetAllLoggers(lvl)
	return nil
}

// mustOpen loads the collection selected by the global flags and returns it
// with the DID of the current agent.
func mustOpen(cCtx *cli.Context) (*collection.Collection, did.DID, func()) {
	agent := cmdutil.MustGetAgent()
	c, closeFn := cmdutil.MustGetCollection(cCtx.Context, cCtx.String("db"))
	return c, agent.Principal.DID(), closeFn
}

func whoami(cCtx *cli.Context) error {
	fmt.Println(cmdutil.MustGetAgent().Principal.DID())
	return nil
}
