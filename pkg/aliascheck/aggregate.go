package aliascheck

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Exit codes of the check run. Per-file errors outrank violations: a file
// that could not be evaluated must never look like a clean pass.
const (
	ExitClean      = 0
	ExitViolations = 1
	ExitError      = 2
)

// Summary is the outcome of one aggregation pass.
type Summary struct {
	Files      int
	Violations int
	Errors     int
	Elapsed    time.Duration
}

// Failed reports whether any file produced at least one violation.
func (s Summary) Failed() bool {
	return s.Violations > 0
}

// ExitCode maps the summary onto the process exit status.
func (s Summary) ExitCode() int {
	switch {
	case s.Errors > 0:
		return ExitError
	case s.Violations > 0:
		return ExitViolations
	default:
		return ExitClean
	}
}

// Aggregator sequentially consumes the ordered per-file results a dispatch
// strategy produced, reports every violation as it is pulled, and computes
// the run's final status. One file's stream is drained completely before
// the next is opened, so output lines from two files never interleave even
// under parallel dispatch.
type Aggregator struct {
	Out    io.Writer
	ErrOut io.Writer
}

// NewAggregator creates an Aggregator writing diagnostics to out and
// per-file failures to errOut.
func NewAggregator(out, errOut io.Writer) *Aggregator {
	return &Aggregator{Out: out, ErrOut: errOut}
}

// Consume drains every result in delivery order. The failing status
// latches on the first violation seen and never resets within a run.
// Per-file errors are reported in position and counted; they do not stop
// consumption of the remaining files.
func (a *Aggregator) Consume(results []*Result) Summary {
	start := time.Now()
	summary := Summary{Files: len(results)}

	for _, result := range results {
		stream, err := result.Open()
		if err != nil {
			summary.Errors++

			fmt.Fprintf(a.ErrOut, "Error: %s: %v\n", result.File, err)

			continue
		}

		for {
			v, ok := stream.Next()
			if !ok {
				break
			}

			summary.Violations++

			fmt.Fprintf(a.Out, "Problem: %s\n", v.Message())
		}
	}

	summary.Elapsed = time.Since(start)

	return summary
}

// RenderSummary writes a one-look run summary table.
func (a *Aggregator) RenderSummary(summary Summary) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(a.Out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Files", "Violations", "Errors", "Elapsed"})
	tbl.AppendRow(table.Row{
		humanize.Comma(int64(summary.Files)),
		humanize.Comma(int64(summary.Violations)),
		humanize.Comma(int64(summary.Errors)),
		summary.Elapsed.Round(time.Millisecond).String(),
	})
	tbl.Render()
}
