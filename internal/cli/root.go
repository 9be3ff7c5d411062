// Package cli wires the cobra command tree for the orderops binary.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rafflehq/orderops/internal/config"
	"github.com/rafflehq/orderops/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root Cobra command for the orderops CLI. It wires
// up logging and the subcommands (approve, status, version).
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orderops",
		Short:   "Operations tooling for the raffle platform's orders",
		Long:    "orderops: bulk order-approval batch processing and order queue inspection",
		Version: ver,
		Example: rootCmdExample,
		// Errors are printed once by main with the exit code; usage noise
		// on runtime failures helps nobody.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if !cmd.Flags().Changed("log-level") {
				if envLevel := os.Getenv(config.EnvLogLevel); envLevel != "" {
					level = envLevel
				}
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				level = "debug"
			}

			logger := logging.New(cmd.ErrOrStderr(), level)
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			return nil
		},
	}

	cmd.PersistentFlags().String("log-level", config.DefaultLogLevel,
		"log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(NewApproveCmd(), NewStatusCmd(), newVersionCmd(ver))

	return cmd
}

const rootCmdExample = `  # Approve every order pending approval
  orderops approve

  # Approve in smaller batches with a JSON summary
  orderops approve --batch-size 100 --output json

  # Inspect the order queue without mutating anything
  orderops status

  # Print the version
  orderops version`

func newVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the orderops version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("orderops " + ver)
		},
	}
}
