package batch

import (
	"time"

	"easel/internal/aspect"
	"easel/internal/assets"
	"easel/internal/positions"
)

// Selection filters which assets join a run. Empty fields select everything
// the library offers.
type Selection struct {
	Formats  []string
	Heroes   []string
	Overlays []string
	Kinds    []string
}

// Item is one planned render: a hero/overlay/format triple plus its resolved
// placement. Position is nil when no stored placement covers the triple, in
// which case the item is skipped at run time.
type Item struct {
	Hero     assets.Hero
	Overlay  assets.Overlay
	Format   aspect.Format
	Position *positions.Record
	OutPath  string
}

// Status is the terminal state of one item.
type Status string

const (
	StatusRendered Status = "rendered"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Result records the outcome of one item.
type Result struct {
	Item    Item
	Status  Status
	Reason  string
	Err     error
	Elapsed time.Duration
}

// Report aggregates the outcomes of a run.
type Report struct {
	RunID     string
	BatchName string
	Started   time.Time
	Finished  time.Time
	Results   []Result
}

// Counts tallies results by terminal state.
func (r *Report) Counts() (rendered, skipped, failed int) {
	for _, result := range r.Results {
		switch result.Status {
		case StatusRendered:
			rendered++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return rendered, skipped, failed
}

// ByStatus returns the results in one terminal state.
func (r *Report) ByStatus(status Status) []Result {
	var out []Result
	for _, result := range r.Results {
		if result.Status == status {
			out = append(out, result)
		}
	}
	return out
}

// Duration returns the wall-clock span of the run.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() || r.Started.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
