package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/afero"
	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/batchmint/pkg/collection/manifest"
	"github.com/urfave/cli/v2"
)

func listEvents(cCtx *cli.Context) error {
	var kind *events.Kind
	if k := cCtx.String("kind"); k != "" {
		ek := events.Kind(k)
		kind = &ek
	}

	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	list, err := c.Events(cCtx.Context, kind)
	if err != nil {
		return err
	}
	for _, e := range list {
		fmt.Printf("%s\t%s\t%s\t%s\n", e.CreatedAt().Format(time.RFC3339), e.ID(), e.Kind(), e.RawPayload())
	}
	return nil
}

func exportManifest(cCtx *cli.Context) error {
	path := cCtx.Args().First()
	if path == "" {
		return fmt.Errorf("path is required")
	}

	c, _, closeFn := mustOpen(cCtx)
	defer closeFn()

	m := manifest.FromBatches(c.ListAllBatches())
	if err := manifest.Write(afero.NewOsFs(), path, m); err != nil {
		return err
	}
	fmt.Printf("exported %d batches to %s\n", len(m.Batches), path)
	return nil
}

func importManifest(cCtx *cli.Context) error {
	path := cCtx.Args().First()
	if path == "" {
		return fmt.Errorf("path is required")
	}
	m, err := manifest.Read(afero.NewOsFs(), path)
	if err != nil {
		return err
	}

	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	pending, err := m.Pending(c.NextTokenIDToMint())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("nothing to import")
		return nil
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond) // Spinner: ⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏
	s.Writer = os.Stderr
	s.Start()
	for i, e := range pending {
		s.Suffix = fmt.Sprintf(" importing batch %d/%d (tokens %d-%d)", i+1, len(pending), e.Start, e.End)
		if _, err := c.UploadBatch(cCtx.Context, caller, e.Amount(), e.BaseURI); err != nil {
			s.Stop()
			return fmt.Errorf("importing batch %d/%d: %w", i+1, len(pending), err)
		}
	}
	s.Stop()

	fmt.Printf("imported %d batches, next token ID is %d\n", len(pending), c.NextTokenIDToMint())
	return nil
}

func call(cCtx *cli.Context) error {
	c, caller, closeFn := mustOpen(cCtx)
	defer closeFn()

	r, err := c.Router()
	if err != nil {
		return err
	}

	if cCtx.Bool("list") {
		for _, name := range r.Operations() {
			route, _ := r.Route(name)
			fmt.Printf("%s\t%s\n", name, route.Capability)
		}
		return nil
	}

	name := cCtx.Args().First()
	if name == "" {
		return fmt.Errorf("operation is required")
	}
	result, err := r.Dispatch(cCtx.Context, caller, name, json.RawMessage(cCtx.Args().Get(1)))
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
