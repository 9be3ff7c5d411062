// Command orderops is the operations CLI for the raffle platform's orders.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rafflehq/orderops/internal/cli"
	"github.com/rafflehq/orderops/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and maps the outcome to an exit code. A signal
// cancels the command's context; in-flight approval runs report their
// partial result before the error surfaces here.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
