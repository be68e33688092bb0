package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its canonical trace
// against testdata/golden/<name>.golden. Regenerate goldens with:
//
//	go test ./internal/harness -update
//
// The scenario's own expectations are still evaluated; callers should
// check the returned Result.Passed as well.
func RunWithGolden(t *testing.T, sc *Scenario) (*Result, error) {
	t.Helper()

	res, err := Run(sc)
	if err != nil {
		return nil, err
	}

	traceJSON, err := marshalCanonical(traceSnapshot(res))
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, res.ScenarioName, traceJSON)
	return res, nil
}

// traceSnapshot converts a result to the map form the canonical
// serializer accepts. Optional fields are omitted, not null.
func traceSnapshot(res *Result) map[string]any {
	trace := make([]any, len(res.Trace))
	for i, ev := range res.Trace {
		m := map[string]any{
			"seq":      ev.Seq,
			"op":       ev.Op,
			"status":   ev.Status,
			"depth":    ev.Depth,
			"capacity": ev.Capacity,
		}
		if ev.Value != nil {
			m["value"] = *ev.Value
		}
		if ev.Size != nil {
			m["size"] = *ev.Size
		}
		trace[i] = m
	}
	return map[string]any{
		"scenario_name": res.ScenarioName,
		"trace":         trace,
	}
}
