package journal

import (
	"context"
	"fmt"
)

// ReplayResult is the outcome of re-executing the journal against a
// simulated stack.
type ReplayResult struct {
	// Events is the number of journal rows examined.
	Events int `json:"events"`

	// Depth and Capacity describe the simulated stack after the last
	// consistent event.
	Depth    int `json:"depth"`
	Capacity int `json:"capacity"`

	// Values is the simulated stack content, bottom first.
	Values []int32 `json:"values"`

	// Consistent is false when the recorded depth/capacity or a popped
	// value contradicts the simulation; Divergence then describes the
	// first contradiction.
	Consistent bool   `json:"consistent"`
	Divergence string `json:"divergence,omitempty"`
}

// Replay walks the journal in order, applies every successful operation
// to a simulated stack, and cross-checks each row's recorded depth and
// capacity (and popped values) against the simulation.
//
// The simulation stops at the first divergence; a journal written by a
// single healthy recorder always replays consistently.
func (j *Journal) Replay(ctx context.Context) (*ReplayResult, error) {
	events, err := j.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	res := &ReplayResult{Consistent: true, Values: []int32{}}
	var attached int

	for _, e := range events {
		res.Events++

		if e.Status == "ok" {
			switch e.Op {
			case OpAttach:
				attached++
				if res.Capacity == 0 {
					// First session: the store allocated. The journal's
					// recorded capacity is the only source for the
					// configured initial size.
					res.Capacity = e.Capacity
					res.Values = res.Values[:0]
				}
			case OpDetach:
				if attached > 0 {
					attached--
				}
				if attached == 0 {
					res.Capacity = 0
					res.Values = res.Values[:0]
				}
			case OpPush:
				if e.Value == nil {
					return diverged(res, e, "push event missing value"), nil
				}
				if len(res.Values) >= res.Capacity {
					return diverged(res, e, "push recorded ok on a full stack"), nil
				}
				res.Values = append(res.Values, *e.Value)
			case OpPop:
				if e.Value == nil {
					return diverged(res, e, "pop event missing value"), nil
				}
				if len(res.Values) == 0 {
					return diverged(res, e, "pop recorded ok on an empty stack"), nil
				}
				top := res.Values[len(res.Values)-1]
				if top != *e.Value {
					return diverged(res, e, fmt.Sprintf("pop returned %d, simulation has %d on top", *e.Value, top)), nil
				}
				res.Values = res.Values[:len(res.Values)-1]
			case OpResize:
				if e.Arg == nil {
					return diverged(res, e, "resize event missing argument"), nil
				}
				res.Capacity = *e.Arg
				if len(res.Values) > res.Capacity {
					res.Values = res.Values[:res.Capacity]
				}
			default:
				return diverged(res, e, fmt.Sprintf("unknown op %q", e.Op)), nil
			}
		}

		if e.Depth != len(res.Values) || e.Capacity != res.Capacity {
			return diverged(res, e, fmt.Sprintf(
				"recorded depth=%d capacity=%d, simulation has depth=%d capacity=%d",
				e.Depth, e.Capacity, len(res.Values), res.Capacity)), nil
		}
	}

	res.Depth = len(res.Values)
	return res, nil
}

func diverged(res *ReplayResult, e Event, msg string) *ReplayResult {
	res.Consistent = false
	res.Divergence = fmt.Sprintf("seq %d (%s): %s", e.Seq, e.Op, msg)
	res.Depth = len(res.Values)
	return res
}
