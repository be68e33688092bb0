package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios. New
// conformance cases are added by dropping a YAML file there.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			sc, err := LoadScenario(path)
			require.NoError(t, err)

			res, err := Run(sc)
			require.NoError(t, err)
			assert.True(t, res.Passed, "failures: %v", res.Failures)
		})
	}
}

func TestRunWithGolden_PushPopBasic(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "push_pop_basic.yaml"))
	require.NoError(t, err)

	res, err := RunWithGolden(t, sc)
	require.NoError(t, err)
	assert.True(t, res.Passed, "failures: %v", res.Failures)
}

func TestRunWithGolden_ResizeThenFull(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "resize_then_full.yaml"))
	require.NoError(t, err)

	res, err := RunWithGolden(t, sc)
	require.NoError(t, err)
	assert.True(t, res.Passed, "failures: %v", res.Failures)
}

func TestRun_ReportsWrongPopValue(t *testing.T) {
	want := int32(99)
	sc := &Scenario{
		Name: "wrong_want",
		Steps: []Step{
			{Op: "push", Value: 1},
			{Op: "pop", Want: &want},
		},
	}

	res, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0], "expected 99")
}

func TestRun_ReportsUnexpectedStatus(t *testing.T) {
	sc := &Scenario{
		Name: "unexpected_full",
		Steps: []Step{
			{Op: "pop"}, // expect defaults to ok, but the stack is empty
		},
	}

	res, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0], "status empty, expected ok")
}

func TestRun_ReportsFinalStateMismatch(t *testing.T) {
	depth := 5
	sc := &Scenario{
		Name:  "final_mismatch",
		Steps: []Step{{Op: "push", Value: 1}},
		Final: &FinalState{Depth: &depth},
	}

	res, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Contains(t, res.Failures[0], "final depth 1, expected 5")
}

func TestRun_DetachProtocolMisuseIsAnError(t *testing.T) {
	sc := &Scenario{
		Name: "double_detach",
		Steps: []Step{
			{Op: "detach"},
			{Op: "detach"},
		},
	}

	_, err := Run(sc)
	assert.ErrorContains(t, err, "detach while not attached")
}

func TestRun_TraceCapturesPostState(t *testing.T) {
	sc := &Scenario{
		Name:            "trace_state",
		InitialCapacity: 4,
		Steps: []Step{
			{Op: "push", Value: 10},
			{Op: "resize", Size: 2},
		},
	}

	res, err := Run(sc)
	require.NoError(t, err)
	require.Len(t, res.Trace, 2)

	assert.Equal(t, int64(1), res.Trace[0].Seq)
	assert.Equal(t, 1, res.Trace[0].Depth)
	assert.Equal(t, 4, res.Trace[0].Capacity)

	assert.Equal(t, int64(2), res.Trace[1].Seq)
	assert.Equal(t, 2, res.Trace[1].Capacity)
	require.NotNil(t, res.Trace[1].Size)
	assert.Equal(t, 2, *res.Trace[1].Size)
}
