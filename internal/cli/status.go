package cli

import (
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rafflehq/orderops/internal/config"
	"github.com/rafflehq/orderops/internal/logging"
	"github.com/rafflehq/orderops/internal/orderapi"
	"github.com/rafflehq/orderops/internal/orders"
)

// statusCountParallelism bounds the concurrent count queries. Five
// statuses hardly need more, and the data service rate-limits aggressive
// clients.
const statusCountParallelism = 4

// statusParams holds the parameters for the status command execution.
type statusParams struct {
	output string
}

// NewStatusCmd creates the "status" subcommand: read-only exact counts for
// every order status. Operations teams run it before and after an approval
// run to see the queue.
func NewStatusCmd() *cobra.Command {
	var params statusParams

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show order counts per status",
		Long: `Status queries the exact order count for every lifecycle status and
renders them as a table or JSON. It never mutates anything.`,
		Example: `  # Table of counts per status
  orderops status

  # JSON for scripting
  orderops status --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeStatus(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.output, "output", outputTable,
		"output format: table or json")

	return cmd
}

func executeStatus(cmd *cobra.Command, params statusParams) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	if err := validateOutput(params.output); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
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

	statuses := orders.AllStatuses()
	counts := make([]int, len(statuses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusCountParallelism)
	for i, status := range statuses {
		i, status := i, status
		g.Go(func() error {
			n, err := client.CountOrders(gctx, status)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rows := make([]statusRow, len(statuses))
	for i, status := range statuses {
		rows[i] = statusRow{Status: status.String(), Count: counts[i]}
	}

	return renderStatus(cmd.OutOrStdout(), params.output, rows)
}
