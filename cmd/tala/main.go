// Command tala ingests travel documents into a vector store and answers
// questions over them from the command line, over HTTP, over MCP or in a
// terminal UI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/cli"
	"github.com/custodia-labs/tala-knowledge/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBuilder(app.NewBuilder())

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
