package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rafflehq/orderops/internal/approval"
)

// Output formats for the final summaries.
const (
	outputTable = "table"
	outputJSON  = "json"
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want %s or %s)",
			format, outputTable, outputJSON)
	}
}

// renderSummary writes the final run accounting. The table form uses
// thousands separators; the JSON form is the approval.Result as-is.
func renderSummary(w io.Writer, format string, result approval.Result) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return renderSummaryTable(w, result)
}

func renderSummaryTable(w io.Writer, result approval.Result) error {
	p := message.NewPrinter(language.English)

	remaining := "unknown"
	if result.Remaining >= 0 {
		remaining = p.Sprintf("%d", result.Remaining)
	}

	_, err := fmt.Fprintf(w,
		"APPROVAL RUN %s\n"+
			"  Pending at start: %s\n"+
			"  Approved:         %s\n"+
			"  Failed:           %s\n"+
			"  Skipped:          %s\n"+
			"  Batches:          %s\n"+
			"  Remaining:        %s\n"+
			"  Duration:         %s\n"+
			"  Throughput:       %.1f orders/sec\n",
		result.RunID,
		p.Sprintf("%d", result.TotalPendingAtStart),
		p.Sprintf("%d", result.Approved),
		p.Sprintf("%d", result.Failed),
		p.Sprintf("%d", result.Skipped),
		p.Sprintf("%d", result.Batches),
		remaining,
		shortDuration(result.Duration),
		result.Throughput,
	)
	return err
}

// statusRow is one line of the status summary.
type statusRow struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func renderStatus(w io.Writer, format string, rows []statusRow) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	p := message.NewPrinter(language.English)
	if _, err := fmt.Fprintf(w, "%-20s %12s\n", "STATUS", "COUNT"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-20s %12s\n", row.Status, p.Sprintf("%d", row.Count)); err != nil {
			return err
		}
	}
	return nil
}

// shortDuration renders a duration for the summary: millisecond precision
// under a second, second precision above.
func shortDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Second).String()
}
