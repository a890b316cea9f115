package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/aliasfang/pkg/aliascheck"
)

// WorkerCommand is the hidden subcommand a worker process runs.
const WorkerCommand = "check-worker"

// WorkerRequest is the unit of work sent to a worker process. Everything
// crossing the boundary is a plain value: the policy and file go in as
// JSON on stdin, violations come back as JSON on stdout.
type WorkerRequest struct {
	Allowed map[string][]string `json:"allowed"`
	File    string              `json:"file"`
	Lazy    bool                `json:"lazy"`
}

// WorkerResponse is a worker process's reply. A per-file evaluation
// failure travels in Error with a zero exit; a non-zero exit means the
// worker itself broke.
type WorkerResponse struct {
	Violations []aliascheck.Violation `json:"violations,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// WorkerMain is the entry point of the check-worker subcommand: it reads
// one request from in, evaluates it, and writes one response to out. Only
// protocol failures return an error.
func WorkerMain(ctx context.Context, in io.Reader, out io.Writer) error {
	var req WorkerRequest

	err := json.NewDecoder(in).Decode(&req)
	if err != nil {
		return fmt.Errorf("decode worker request: %w", err)
	}

	var resp WorkerResponse

	stream, evalErr := EvaluateFile(ctx, req.Allowed, req.File, req.Lazy)
	if evalErr != nil {
		resp.Error = evalErr.Error()
	} else {
		resp.Violations = stream.Drain()
	}

	err = json.NewEncoder(out).Encode(resp)
	if err != nil {
		return fmt.Errorf("encode worker response: %w", err)
	}

	return nil
}

// Processes evaluates each file in an isolated OS process running this
// binary's check-worker subcommand. The contract matches Pool exactly;
// the difference is that no memory is shared, so it also parallelizes
// work a shared runtime could serialize. Workers of zero means the
// runtime's available parallelism.
type Processes struct {
	Workers int
	Lazy    bool
}

// Run submits every file to its own worker process, at most Workers
// concurrently, and returns one result handle per file in input order. A
// crashed worker surfaces as that file's fatal error; it never silently
// drops other files' results.
func (p *Processes) Run(ctx context.Context, allowed map[string][]string, files []string) []*aliascheck.Result {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(normalizeWorkers(p.Workers))

	results := make([]*aliascheck.Result, len(files))

	for i, file := range files {
		ch := make(chan outcome, 1)

		group.Go(func() error {
			violations, err := runWorker(ctx, WorkerRequest{Allowed: allowed, File: file, Lazy: p.Lazy})
			ch <- outcome{violations: violations, err: err}

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

// workerCommand resolves the command line a worker process runs: this
// binary's check-worker subcommand. Tests override it to re-exec the
// test binary.
var workerCommand = func() (string, []string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("locate worker binary: %w", err)
	}

	return exe, []string{WorkerCommand}, nil
}

// runWorker spawns one worker process and shuttles the request/response
// pair across it.
func runWorker(ctx context.Context, req WorkerRequest) ([]aliascheck.Violation, error) {
	exe, args, err := workerCommand()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode worker request: %w", err)
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("worker process for %s: %w: %s", req.File, err, detail)
		}

		return nil, fmt.Errorf("worker process for %s: %w", req.File, err)
	}

	var resp WorkerResponse

	err = json.Unmarshal(stdout.Bytes(), &resp)
	if err != nil {
		return nil, fmt.Errorf("decode worker response for %s: %w", req.File, err)
	}

	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}

	return resp.Violations, nil
}
