package dispatch

import (
	"context"

	"github.com/Sumatoshi-tech/aliasfang/pkg/aliascheck"
)

// Serial evaluates files one at a time on the caller's goroutine. It is
// fully lazy: a file is not read until its result's stream is first
// pulled, so a consumer that stops early leaves the remaining files
// untouched.
type Serial struct {
	Lazy bool
}

// Run returns one deferred result per file, in input order.
func (s *Serial) Run(ctx context.Context, allowed map[string][]string, files []string) []*aliascheck.Result {
	results := make([]*aliascheck.Result, len(files))

	for i, file := range files {
		results[i] = aliascheck.NewDeferredResult(file, func() (*aliascheck.Stream, error) {
			return EvaluateFile(ctx, allowed, file, s.Lazy)
		})
	}

	return results
}
