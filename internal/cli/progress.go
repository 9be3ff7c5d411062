package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rafflehq/orderops/internal/approval"
)

// progressPrinter writes advisory progress lines to stderr. On a TTY the
// line repaints in place with a carriage return, padding over the previous
// line's tail; otherwise every update is a plain newline-terminated line.
type progressPrinter struct {
	out   io.Writer
	isTTY bool

	mu      sync.Mutex
	lastLen int
	active  bool
}

func newProgressPrinter(out io.Writer, isTTY bool) *progressPrinter {
	return &progressPrinter{out: out, isTTY: isTTY}
}

// Print writes one progress update.
func (p *progressPrinter) Print(line string) {
	if line == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isTTY {
		fmt.Fprintf(p.out, "%s\n", line)
		return
	}

	padding := ""
	if p.lastLen > len(line) {
		padding = strings.Repeat(" ", p.lastLen-len(line))
	}
	fmt.Fprintf(p.out, "\r%s%s", line, padding)
	p.lastLen = len(line)
	p.active = true
}

// Finish terminates an in-place progress line so the summary starts on a
// fresh line. A no-op when nothing was painted or off a TTY.
func (p *progressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isTTY && p.active {
		fmt.Fprintln(p.out)
		p.active = false
	}
}

func formatProgress(prog approval.Progress) string {
	return fmt.Sprintf("approving... %d%% (%d approved, %d failed, %d skipped, batch %d)",
		prog.Percent, prog.Approved, prog.Failed, prog.Skipped, prog.Batches)
}
