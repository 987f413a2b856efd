package main

import (
	"fmt"
	"path/filepath"

	"github.com/storacha/batchmint/internal/cmdutil"
	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/urfave/cli/v2"
)

func initCollection(cCtx *cli.Context) error {
	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	if err := c.Bootstrap(cCtx.Context, caller); err != nil {
		return fmt.Errorf("bootstrapping collection: %w", err)
	}
	if dbPath := cCtx.String("db"); dbPath != "" {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return err
		}
		cmdutil.MustRememberDatabase(abs)
	}
	fmt.Printf("granted %s to %s\n", access.RoleAll, caller)
	return nil
}

func parseRolesArgs(cCtx *cli.Context) (access.Role, error) {
	if cCtx.NArg() < 2 {
		return access.RoleNone, fmt.Errorf("account and at least one role are required")
	}
	return access.ParseRoles(cCtx.Args().Slice()[1:]...)
}

func grant(cCtx *cli.Context) error {
	roles, err := parseRolesArgs(cCtx)
	if err != nil {
		return err
	}
	account := cmdutil.MustParseDID(cCtx.Args().First())

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	return c.GrantRoles(cCtx.Context, caller, account, roles)
}

func revoke(cCtx *cli.Context) error {
	roles, err := parseRolesArgs(cCtx)
	if err != nil {
		return err
	}
	account := cmdutil.MustParseDID(cCtx.Args().First())

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	return c.RevokeRoles(cCtx.Context, caller, account, roles)
}

func roles(cCtx *cli.Context) error {
	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	account := caller
	if cCtx.NArg() > 0 {
		account = cmdutil.MustParseDID(cCtx.Args().First())
	}
	held, err := c.RolesOf(cCtx.Context, account)
	if err != nil {
		return err
	}
	fmt.Println(held)
	return nil
}
