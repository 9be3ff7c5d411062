package approval

import (
	"math"
	"time"
)

const percentScale = 100

// Tally is the run state folded through loop iterations. It is a plain
// value owned by one run; nothing else mutates it.
type Tally struct {
	// Approved counts rows the backend confirmed transitioned.
	Approved int
	// Failed counts rows in batches whose transition errored after retries.
	Failed int
	// Skipped counts rows submitted but not matched by the status-guarded
	// update — another actor had already transitioned them.
	Skipped int
	// Batches counts transition attempts that reached the backend.
	Batches int

	// TotalPendingAtStart is the snapshot count taken before the first
	// iteration. Progress denominator only, not a termination bound.
	TotalPendingAtStart int
	// StartedAt is when the run began.
	StartedAt time.Time
}

// Processed returns how many rows the run has accounted for so far.
func (t Tally) Processed() int {
	return t.Approved + t.Failed + t.Skipped
}

// Percent returns the approved share of the starting pending count,
// rounded to a whole percentage. Zero when nothing was pending.
func (t Tally) Percent() int {
	if t.TotalPendingAtStart == 0 {
		return 0
	}
	return int(math.Round(percentScale * float64(t.Approved) / float64(t.TotalPendingAtStart)))
}

// Progress is the snapshot handed to the OnProgress callback after every
// batch attempt.
type Progress struct {
	Percent  int
	Approved int
	Failed   int
	Skipped  int
	Batches  int
	Total    int
}

func (t Tally) progress() Progress {
	return Progress{
		Percent:  t.Percent(),
		Approved: t.Approved,
		Failed:   t.Failed,
		Skipped:  t.Skipped,
		Batches:  t.Batches,
		Total:    t.TotalPendingAtStart,
	}
}

// Result is the final accounting of one run.
type Result struct {
	// RunID correlates every log line and retry of one invocation.
	RunID string `json:"run_id"`

	Approved            int `json:"approved"`
	Failed              int `json:"failed"`
	Skipped             int `json:"skipped"`
	Batches             int `json:"batches"`
	TotalPendingAtStart int `json:"total_pending_at_start"`

	// Remaining is the pending count re-queried after the loop exits; -1
	// when the re-count itself failed.
	Remaining int `json:"remaining"`

	Duration time.Duration `json:"duration"`
	// Throughput is approved orders per elapsed second. Diagnostic only.
	Throughput float64 `json:"throughput_per_sec"`
}
