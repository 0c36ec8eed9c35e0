package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// startCommand returns a CLI command that runs one indexing loop per
// configured network.
//
// Usage example:
//
//	registrywatch start
//
// The process runs until it receives an interrupt (SIGINT or SIGTERM) or the
// parent context ends.
func startCommand(newService ServiceFactory) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts indexing every configured network and publishing registry events.",
		Usage:       "Runs the indexer. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := newService(ctx)
			if err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Close()

			select {
			case <-quit:
			case <-ctx.Done():
			}

			return nil
		},
	}
}
