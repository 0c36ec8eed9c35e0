package cli

import (
	"context"
	"os"

	"github.com/gabapcia/registrywatch/internal/indexer"

	"github.com/urfave/cli/v3"
)

// ServiceFactory builds the indexer on demand. Only the start command calls
// it, so the cursor commands never connect to the RPC providers or the sink.
type ServiceFactory func(ctx context.Context) (indexer.Service, error)

// Run initializes and executes the registrywatch CLI application.
//
// It registers all available commands:
//
//   - `start`: Runs the indexer for every configured network.
//   - `cursor show|set|reset`: Inspects or overrides the committed cursor of a network.
//
// networks lists the configured networks; the cursor commands reject any other.
func Run(ctx context.Context, newService ServiceFactory, cursors indexer.CursorStorage, networks Networks) error {
	return newApp(newService, cursors, networks).Run(ctx, os.Args)
}

func newApp(newService ServiceFactory, cursors indexer.CursorStorage, networks Networks) *cli.Command {
	return &cli.Command{
		EnableShellCompletion: true,
		Name:                  "registrywatch",
		Description:           "Mirrors the registry contract of several networks into one event stream.",
		Usage:                 "registrywatch [command] [flags]",
		Commands: []*cli.Command{
			startCommand(newService),
			cursorCommand(cursors, networks),
		},
	}
}
