package cli

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rafflehq/orderops/internal/approval"
	"github.com/rafflehq/orderops/internal/config"
	"github.com/rafflehq/orderops/internal/logging"
	"github.com/rafflehq/orderops/internal/orderapi"
)

// The API client satisfies the driver's store interface; this is the one
// place the two meet.
var _ approval.Store = (*orderapi.Client)(nil)

// approveParams holds the parameters for the approve command execution.
type approveParams struct {
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
	output      string
}

// NewApproveCmd creates the "approve" subcommand that drains the
// pending_approval order population to completed in bounded-size batches.
// Progress goes to stderr as advisory text; the final summary goes to
// stdout as a table or JSON.
func NewApproveCmd() *cobra.Command {
	var params approveParams

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve all orders pending approval",
		Long: `Approve transitions every order currently in pending_approval state to
completed, in bounded-size bulk batches. Each batch commits independently;
there is no dry-run mode and no transaction spanning the run.

A batch that fails after retries is recorded and the run continues. The
final summary always reports approved, failed, skipped, batches, duration,
throughput, and the pending count remaining after the run.`,
		Example: `  # Approve everything pending, batches of 500
  orderops approve

  # Smaller batches, more retry attempts
  orderops approve --batch-size 100 --max-attempts 5

  # Machine-readable summary
  orderops approve --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeApprove(cmd, params)
		},
	}

	cmd.Flags().IntVar(&params.batchSize, "batch-size", config.DefaultBatchSize,
		"orders per bulk transition batch")
	cmd.Flags().IntVar(&params.maxAttempts, "max-attempts", config.DefaultMaxAttempts,
		"transition attempts per batch, including the first")
	cmd.Flags().DurationVar(&params.retryDelay, "retry-delay", config.DefaultRetryDelay,
		"base backoff delay between transition attempts")
	cmd.Flags().StringVar(&params.output, "output", outputTable,
		"summary format: table or json")

	return cmd
}

// executeApprove loads configuration, builds the API client and driver,
// runs the approval loop, and always prints the final summary on any
// non-fatal exit path — including cancellation, where the partial result
// is printed before the context error propagates.
func executeApprove(cmd *cobra.Command, params approveParams) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	if err := validateOutput(params.output); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyApproveFlags(cmd, cfg, params)
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := orderapi.NewClient(orderapi.ClientConfig{
		BaseURL:    cfg.APIURL,
		ServiceKey: cfg.ServiceKey,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     &logger,
	})
	if err != nil {
		return err
	}

	printer := newProgressPrinter(cmd.ErrOrStderr(), isTerminal(os.Stderr))

	driver, err := approval.New(client,
		approval.WithBatchSize(cfg.BatchSize),
		approval.WithMaxAttempts(cfg.MaxAttempts),
		approval.WithRetryBaseDelay(cfg.RetryDelay),
		approval.WithLogger(logging.ComponentLogger(logger, "approval")),
		approval.WithTransientClassifier(orderapi.IsTransient),
		approval.WithOnProgress(func(p approval.Progress) {
			printer.Print(formatProgress(p))
		}),
	)
	if err != nil {
		return err
	}

	result, runErr := driver.Run(ctx)
	printer.Finish()

	if err := renderSummary(cmd.OutOrStdout(), params.output, result); err != nil {
		return err
	}

	return runErr
}

// applyApproveFlags overrides the loaded configuration with any flags the
// user set explicitly. Flag defaults mirror the config defaults, so only
// changed flags win over environment and file settings.
func applyApproveFlags(cmd *cobra.Command, cfg *config.Config, params approveParams) {
	if cmd.Flags().Changed("batch-size") {
		cfg.BatchSize = params.batchSize
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts = params.maxAttempts
	}
	if cmd.Flags().Changed("retry-delay") {
		cfg.RetryDelay = params.retryDelay
	}
}
