package dispatch //nolint:testpackage // testing internal implementation.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/aliasfang/pkg/aliascheck"
)

func intPtr(n int) *int { return &n }

func TestConfig_Select(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  Config
		want    any
		wantErr error
	}{
		{name: "default is serial", config: Config{}, want: &Serial{}},
		{name: "threads", config: Config{Threads: intPtr(4)}, want: &Pool{Workers: 4}},
		{name: "threads zero is default", config: Config{Threads: intPtr(0)}, want: &Pool{}},
		{name: "procs", config: Config{Procs: intPtr(2)}, want: &Processes{Workers: 2}},
		{name: "both modes rejected", config: Config{Threads: intPtr(1), Procs: intPtr(1)}, wantErr: ErrBothModes},
		{name: "negative threads rejected", config: Config{Threads: intPtr(-1)}, wantErr: ErrNegativeWorkers},
		{name: "negative procs rejected", config: Config{Procs: intPtr(-3)}, wantErr: ErrNegativeWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			strategy, err := tt.config.Select()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.want, strategy)
		})
	}
}

func TestNormalizeWorkers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, runtime.GOMAXPROCS(0), normalizeWorkers(0))
	assert.Equal(t, 3, normalizeWorkers(3))
}

// writeFixtures creates n Python files, each with one disallowed pandas
// alias unique to the file, and returns their paths in order.
func writeFixtures(t *testing.T, n int) []string {
	t.Helper()

	dir := t.TempDir()
	files := make([]string, n)

	for i := range n {
		files[i] = filepath.Join(dir, fmt.Sprintf("mod%03d.py", i))
		source := fmt.Sprintf("import pandas as alias%03d\n", i)
		require.NoError(t, os.WriteFile(files[i], []byte(source), 0o600))
	}

	return files
}

// assertOrdered verifies the i-th result belongs to the i-th input file
// and carries that file's unique alias.
func assertOrdered(t *testing.T, files []string, results []*aliascheck.Result) {
	t.Helper()

	require.Len(t, results, len(files))

	for i, result := range results {
		assert.Equal(t, files[i], result.File)

		stream, err := result.Open()
		require.NoError(t, err)

		violations := stream.Drain()
		require.Len(t, violations, 1)
		assert.Equal(t, fmt.Sprintf("alias%03d", i), violations[0].Binding.Alias)
	}
}

func TestSerial_OrderAndContent(t *testing.T) {
	t.Parallel()

	files := writeFixtures(t, 5)
	strategy := &Serial{}

	assertOrdered(t, files, strategy.Run(context.Background(), nil, files))
}

// Serial dispatch must not touch a file until its result is consumed.
func TestSerial_LazyUntilConsumed(t *testing.T) {
	t.Parallel()

	files := writeFixtures(t, 2)
	strategy := &Serial{}

	results := strategy.Run(context.Background(), nil, files)

	// Removing the second file after dispatch but before consumption is
	// only visible because evaluation is deferred.
	require.NoError(t, os.Remove(files[1]))

	_, err := results[0].Open()
	require.NoError(t, err)

	_, err = results[1].Open()
	require.Error(t, err)
}

func TestPool_OrderUnderParallelism(t *testing.T) {
	t.Parallel()

	files := writeFixtures(t, 20)

	for _, workers := range []int{1, 2, 8, 0} {
		strategy := &Pool{Workers: workers}
		assertOrdered(t, files, strategy.Run(context.Background(), nil, files))
	}
}

func TestPool_PerFileErrorIsolated(t *testing.T) {
	t.Parallel()

	files := writeFixtures(t, 3)
	missing := filepath.Join(t.TempDir(), "absent.py")
	files = append(files[:1], append([]string{missing}, files[1:]...)...)

	strategy := &Pool{Workers: 2}
	results := strategy.Run(context.Background(), nil, files)

	require.Len(t, results, 4)

	_, err := results[1].Open()
	require.Error(t, err, "missing file must fail its own result")

	// Remaining files still deliver, in position.
	for _, i := range []int{0, 2, 3} {
		stream, openErr := results[i].Open()
		require.NoError(t, openErr)
		assert.Len(t, stream.Drain(), 1)
	}
}

func TestPool_LazyMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "multi.py")
	require.NoError(t, os.WriteFile(path, []byte("import math as m\nimport pandas as pd\n"), 0o600))

	full := &Pool{Workers: 2}
	stream, err := full.Run(context.Background(), nil, []string{path})[0].Open()
	require.NoError(t, err)
	assert.Len(t, stream.Drain(), 2)

	lazy := &Pool{Workers: 2, Lazy: true}
	stream, err = lazy.Run(context.Background(), nil, []string{path})[0].Open()
	require.NoError(t, err)
	assert.Len(t, stream.Drain(), 1)
}

func TestEvaluateFile_PolicyApplied(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("import pandas as pd\n"), 0o600))

	allowed := map[string][]string{"pandas": {"pd"}}

	stream, err := EvaluateFile(context.Background(), allowed, path, false)
	require.NoError(t, err)
	assert.Empty(t, stream.Drain())
}
