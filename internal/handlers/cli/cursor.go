package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"

	"github.com/urfave/cli/v3"
)

var (
	ErrUnknownNetwork     = errors.New("network is not configured")
	ErrCursorKindMismatch = errors.New("cursor does not fit the network")
)

// Networks maps every configured network name to the cursor kind it resumes
// from: transaction cursors on Solana, block cursors on EVM and NEAR.
type Networks map[string]cursor.Kind

func networkFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "network",
		Usage:    "Configured network name (e.g., ethereum, solana, near)",
		Required: true,
	}
}

// cursorCommand groups the operator commands acting on committed cursors.
// They must not run while an indexer is running on the same network, since
// its next commit overwrites whatever they wrote.
func cursorCommand(cursors indexer.CursorStorage, networks Networks) *cli.Command {
	network := func(c *cli.Command) (string, error) {
		name := c.String("network")
		if _, ok := networks[name]; !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
		}
		return name, nil
	}

	return &cli.Command{
		Name:  "cursor",
		Usage: "Inspects or overrides the committed cursor of a network.",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Prints the committed cursor of a network.",
				Flags: []cli.Flag{networkFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					name, err := network(c)
					if err != nil {
						return err
					}

					cur, err := cursors.LoadCursor(ctx, name)
					switch {
					case errors.Is(err, indexer.ErrNoCursorFound):
						_, err = fmt.Fprintf(c.Root().Writer, "%s: %s (nothing committed)\n", name, cursor.None())
						return err
					case err != nil:
						return err
					}

					_, err = fmt.Fprintf(c.Root().Writer, "%s: %s\n", name, cur)
					return err
				},
			},
			{
				Name:        "set",
				Usage:       "Overwrites the committed cursor of a network.",
				Description: "The value uses the stored form: none, tx:<signature> or block:<height>.",
				Flags: []cli.Flag{
					networkFlag(),
					&cli.StringFlag{
						Name:     "value",
						Usage:    "Cursor to commit (e.g., block:19000000)",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					name, err := network(c)
					if err != nil {
						return err
					}

					cur, err := cursor.Parse(c.String("value"))
					if err != nil {
						return err
					}

					// A cursor of the wrong kind would stall the network's loop.
					if want := networks[name]; !cur.IsNone() && cur.Kind() != want {
						return fmt.Errorf("%w: %s resumes from %s cursors, got %s", ErrCursorKindMismatch, name, want, cur)
					}

					return cursors.CommitCursor(ctx, name, cur)
				},
			},
			{
				Name:  "reset",
				Usage: "Deletes the committed cursor so the network is indexed from its start.",
				Flags: []cli.Flag{networkFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					name, err := network(c)
					if err != nil {
						return err
					}

					return cursors.ResetCursor(ctx, name)
				},
			},
		},
	}
}
