package aliascheck //nolint:testpackage // testing internal implementation.

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTable mirrors a file with `import datetime.datetime as dt`,
// `import math as m`, `import pandas as pd`.
func sampleTable() ImportTable {
	table := make(ImportTable)
	table.Add(Binding{Qualname: "datetime.datetime", Alias: "dt", Line: 1})
	table.Add(Binding{Qualname: "math", Alias: "m", Line: 2})
	table.Add(Binding{Qualname: "pandas", Alias: "pd", Line: 3})

	return table
}

func TestEvaluate_AbsentPolicyEntryFlagsEveryBinding(t *testing.T) {
	t.Parallel()

	table := make(ImportTable)
	table.Add(Binding{Qualname: "pandas", Alias: "pa", Line: 1})
	table.Add(Binding{Qualname: "pandas", Alias: "p", Line: 7})

	violations := Evaluate(nil, table, "f.py", false).Drain()

	require.Len(t, violations, 2)
	assert.Equal(t, "pa", violations[0].Binding.Alias)
	assert.Equal(t, "p", violations[1].Binding.Alias)
	assert.Empty(t, violations[0].Allowed)
}

func TestEvaluate_ExactSetEqualitySkips(t *testing.T) {
	t.Parallel()

	table := make(ImportTable)
	table.Add(Binding{Qualname: "numpy", Alias: "np", Line: 1})
	table.Add(Binding{Qualname: "numpy", Alias: "n", Line: 2})

	allowed := map[string][]string{"numpy": {"n", "np"}}

	violations := Evaluate(allowed, table, "f.py", false).Drain()
	assert.Empty(t, violations)
}

func TestEvaluate_SingleMismatchProducesOneViolation(t *testing.T) {
	t.Parallel()

	table := make(ImportTable)
	table.Add(Binding{Qualname: "pandas", Alias: "pa", Line: 1})

	allowed := map[string][]string{"pandas": {"pd"}}

	violations := Evaluate(allowed, table, "f.py", false).Drain()

	require.Len(t, violations, 1)
	assert.Equal(t, "pandas", violations[0].Qualname)
	assert.Equal(t, "pa", violations[0].Binding.Alias)
	assert.Equal(t, []string{"pd"}, violations[0].Allowed)
}

// A binding matching none of k allowed aliases yields k violations, one
// per non-matching allowed entry. Inherited behavior; the counts are
// contract.
func TestEvaluate_CountFanOutPerAllowedAlias(t *testing.T) {
	t.Parallel()

	table := make(ImportTable)
	table.Add(Binding{Qualname: "numpy", Alias: "nmp", Line: 1})

	allowed := map[string][]string{"numpy": {"np", "n"}}

	violations := Evaluate(allowed, table, "f.py", false).Drain()

	require.Len(t, violations, 2)

	for _, v := range violations {
		assert.Equal(t, "nmp", v.Binding.Alias)
		assert.Equal(t, []string{"np", "n"}, v.Allowed)
	}
}

// Partial overlap is not exact equality, so even the approved binding is
// reported against the allowed aliases it does not match.
func TestEvaluate_PartialOverlapSuppressesNothing(t *testing.T) {
	t.Parallel()

	table := make(ImportTable)
	table.Add(Binding{Qualname: "numpy", Alias: "np", Line: 1})
	table.Add(Binding{Qualname: "numpy", Alias: "bad", Line: 2})

	allowed := map[string][]string{"numpy": {"np"}}

	violations := Evaluate(allowed, table, "f.py", false).Drain()

	// "np" matches the single allowed alias, producing no pair; "bad"
	// pairs with "np".
	require.Len(t, violations, 1)
	assert.Equal(t, "bad", violations[0].Binding.Alias)
}

func TestEvaluate_LazyStopsAfterFirstViolation(t *testing.T) {
	t.Parallel()

	allowed := map[string][]string{"datetime.datetime": {"dt"}}

	full := Evaluate(allowed, sampleTable(), "f.py", false).Drain()
	require.Len(t, full, 2)

	lazy := Evaluate(allowed, sampleTable(), "f.py", true).Drain()
	require.Len(t, lazy, 1)
}

func TestEvaluate_EndToEndScenario(t *testing.T) {
	t.Parallel()

	allowed := map[string][]string{"datetime.datetime": {"dt"}}

	violations := Evaluate(allowed, sampleTable(), "f.py", false).Drain()

	require.Len(t, violations, 2)
	// Sorted qualname order: math before pandas; datetime matched exactly.
	assert.Equal(t, "math", violations[0].Qualname)
	assert.Equal(t, "pandas", violations[1].Qualname)
	assert.Empty(t, violations[0].Allowed)
	assert.Empty(t, violations[1].Allowed)
}

func TestEvaluate_Idempotent(t *testing.T) {
	t.Parallel()

	allowed := map[string][]string{
		"datetime.datetime": {"dt"},
		"numpy":             {"np", "n"},
	}

	table := sampleTable()
	table.Add(Binding{Qualname: "numpy", Alias: "nmp", Line: 4})

	first := Evaluate(allowed, table, "f.py", false).Drain()
	second := Evaluate(allowed, table, "f.py", false).Drain()

	assert.Equal(t, first, second)
}

func TestEvaluate_EmptyTable(t *testing.T) {
	t.Parallel()

	violations := Evaluate(map[string][]string{"pandas": {"pd"}}, make(ImportTable), "f.py", false).Drain()
	assert.Empty(t, violations)
}

func TestStream_SinglePass(t *testing.T) {
	t.Parallel()

	stream := Evaluate(nil, sampleTable(), "f.py", false)

	first := stream.Drain()
	require.Len(t, first, 3)

	// Drained streams stay drained.
	assert.Empty(t, stream.Drain())

	_, ok := stream.Next()
	assert.False(t, ok)
}

func TestNewSliceStream(t *testing.T) {
	t.Parallel()

	vs := []Violation{
		{File: "a.py", Qualname: "math"},
		{File: "a.py", Qualname: "pandas"},
	}

	stream := NewSliceStream(vs)

	v, ok := stream.Next()
	require.True(t, ok)
	assert.Equal(t, "math", v.Qualname)

	v, ok = stream.Next()
	require.True(t, ok)
	assert.Equal(t, "pandas", v.Qualname)

	_, ok = stream.Next()
	assert.False(t, ok)
}

func TestImportTable_AddDeduplicatesByAlias(t *testing.T) {
	t.Parallel()

	table := make(ImportTable)
	table.Add(Binding{Qualname: "pandas", Alias: "pd", Line: 1})
	// Same alias on a different line is the same binding for policy
	// purposes.
	table.Add(Binding{Qualname: "pandas", Alias: "pd", Line: 9})

	require.Len(t, table["pandas"], 1)
	assert.Equal(t, 1, table["pandas"][0].Line)
}

func TestAliasSetEqual(t *testing.T) {
	t.Parallel()

	observed := []Binding{
		{Qualname: "numpy", Alias: "np", Line: 1},
		{Qualname: "numpy", Alias: "n", Line: 2},
	}

	assert.True(t, aliasSetEqual(observed, []string{"n", "np"}))
	assert.False(t, aliasSetEqual(observed, []string{"np"}))
	assert.False(t, aliasSetEqual(observed, []string{"np", "n", "x"}))
	assert.False(t, aliasSetEqual(observed[:1], []string{"n"}))
}
