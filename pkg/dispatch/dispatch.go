// Package dispatch applies the alias policy evaluator across many files
// under one of three interchangeable execution strategies: serial,
// goroutine pool, or worker processes. Every strategy honors the same
// contract: one result per input file, delivered in input order, no matter
// how execution is scheduled.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/Sumatoshi-tech/aliasfang/pkg/aliascheck"
	"github.com/Sumatoshi-tech/aliasfang/pkg/pyimports"
)

var (
	// ErrBothModes is returned when thread and process parallelism are
	// both requested; exactly one strategy runs per invocation.
	ErrBothModes = errors.New("thread and process parallelism are mutually exclusive")

	// ErrNegativeWorkers is returned for a negative worker count.
	ErrNegativeWorkers = errors.New("worker count must not be negative")
)

// Strategy applies the file evaluator across files and returns one result
// per file, in input order. Results may still be lazy; consuming them is
// the aggregator's job.
type Strategy interface {
	Run(ctx context.Context, allowed map[string][]string, files []string) []*aliascheck.Result
}

// Config selects the execution strategy. A nil count means the mode is
// not requested; zero means "requested with the implementation default".
type Config struct {
	Threads *int
	Procs   *int
	Lazy    bool
}

// Select validates the configuration and returns the strategy to run.
// Validation happens before any file is touched: conflicting modes or a
// negative worker count abort the run with no partial work.
func (c Config) Select() (Strategy, error) {
	if c.Threads != nil && c.Procs != nil {
		return nil, ErrBothModes
	}

	if c.Threads != nil {
		if *c.Threads < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeWorkers, *c.Threads)
		}

		return &Pool{Workers: *c.Threads, Lazy: c.Lazy}, nil
	}

	if c.Procs != nil {
		if *c.Procs < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeWorkers, *c.Procs)
		}

		return &Processes{Workers: *c.Procs, Lazy: c.Lazy}, nil
	}

	return &Serial{Lazy: c.Lazy}, nil
}

// EvaluateFile extracts one file's imports and forwards them to the
// policy evaluator, returning the file's violation stream. An extraction
// failure propagates as this file's fatal error.
func EvaluateFile(ctx context.Context, allowed map[string][]string, file string, lazy bool) (*aliascheck.Stream, error) {
	table, err := pyimports.ExtractFile(ctx, file)
	if err != nil {
		return nil, err
	}

	return aliascheck.Evaluate(allowed, table, file, lazy), nil
}

// normalizeWorkers maps the zero "use a default" count onto the runtime's
// available parallelism.
func normalizeWorkers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}

	return n
}
