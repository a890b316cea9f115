package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/aliasfang/pkg/aliascheck"
)

// outcome is one file's completed evaluation crossing a goroutine (or
// process) boundary.
type outcome struct {
	violations []aliascheck.Violation
	err        error
}

// Pool evaluates files on a bounded pool of goroutines. The read-only
// policy is shared by reference across workers; every other value is
// per-file and exclusively owned by its worker until handed over.
// Workers of zero means the runtime's available parallelism.
type Pool struct {
	Workers int
	Lazy    bool
}

// Run submits every file as an independent unit of work and returns
// immediately with one result handle per file, in input order. Workers
// complete in arbitrary order; each result's stream blocks until its own
// file is done, so delivery order to the consumer matches input order
// regardless of completion order.
func (p *Pool) Run(ctx context.Context, allowed map[string][]string, files []string) []*aliascheck.Result {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(normalizeWorkers(p.Workers))

	results := make([]*aliascheck.Result, len(files))

	for i, file := range files {
		ch := make(chan outcome, 1)

		group.Go(func() error {
			stream, err := EvaluateFile(ctx, allowed, file, p.Lazy)
			if err != nil {
				ch <- outcome{err: err}

				return nil //nolint:nilerr // per-file failures surface through the result, not the group.
			}

			ch <- outcome{violations: stream.Drain()}

			return nil
		})

		results[i] = aliascheck.NewDeferredResult(file, func() (*aliascheck.Stream, error) {
			o := <-ch
			if o.err != nil {
				return nil, o.err
			}

			return aliascheck.NewSliceStream(o.violations), nil
		})
	}

	return results
}
