package harness

import (
	"encoding/binary"
	"fmt"

	"github.com/evgd/stackd/internal/device"
	"github.com/evgd/stackd/internal/stack"
	"github.com/evgd/stackd/internal/testutil"
	"github.com/evgd/stackd/internal/wire"
)

// TraceEvent is one executed step as observed through the device.
// Depth and Capacity are the store's state after the step.
type TraceEvent struct {
	Seq      int64
	Op       string
	Value    *int32 // pushed, or returned by a successful pop
	Size     *int   // requested resize capacity
	Status   string
	Depth    int
	Capacity int
}

// Result is the outcome of running one scenario.
type Result struct {
	ScenarioName string
	Passed       bool
	Failures     []string
	Trace        []TraceEvent
}

// Run executes a scenario against a fresh store through the byte-level
// device boundary. Step expectations and final-state assertions are
// collected into Result.Failures rather than aborting, so one run
// reports everything that diverged.
func Run(sc *Scenario) (*Result, error) {
	store := stack.NewWithLimits(sc.InitialCapacity, stack.MaxCapacity)
	dev := device.New(store)
	clock := testutil.NewDeterministicClock()

	res := &Result{ScenarioName: sc.Name, Passed: true}

	if err := dev.Open(); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	attached := true
	defer func() {
		if attached {
			_ = dev.Close()
		}
	}()

	for i, step := range sc.Steps {
		ev, err := execute(dev, store, step, &attached)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		ev.Seq = clock.Next()
		res.Trace = append(res.Trace, ev)

		expect := step.Expect
		if expect == "" {
			expect = "ok"
		}
		if ev.Status != expect {
			res.fail("step %d (%s): status %s, expected %s", i+1, step.Op, ev.Status, expect)
		}
		if step.Want != nil && ev.Status == "ok" {
			if ev.Value == nil || *ev.Value != *step.Want {
				res.fail("step %d (pop): got %s, expected %d", i+1, formatValue(ev.Value), *step.Want)
			}
		}
	}

	assertFinal(res, sc.Final, store)
	return res, nil
}

// execute performs one step through the device and captures its trace
// event. Only step-level protocol misuse (attach while attached) is an
// error; device failures become trace statuses.
func execute(dev *device.Device, store *stack.Store, step Step, attached *bool) (TraceEvent, error) {
	ev := TraceEvent{Op: step.Op}
	var err error

	switch step.Op {
	case "push":
		var buf [stack.ElemSize]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(step.Value))
		_, err = dev.Write(buf[:])
		if err == nil {
			v := step.Value
			ev.Value = &v
		}
	case "pop":
		var buf [stack.ElemSize]byte
		_, err = dev.Read(buf[:])
		if err == nil {
			v := int32(binary.LittleEndian.Uint32(buf[:]))
			ev.Value = &v
		}
	case "resize":
		size := step.Size
		ev.Size = &size
		err = dev.Control(device.CmdResize, uint32(size))
	case "detach":
		if !*attached {
			return ev, fmt.Errorf("detach while not attached")
		}
		err = dev.Close()
		*attached = false
	case "attach":
		if *attached {
			return ev, fmt.Errorf("attach while already attached")
		}
		err = dev.Open()
		*attached = true
	}

	ev.Status = wire.StatusOf(err).String()
	ev.Depth = store.Depth()
	ev.Capacity = store.Capacity()
	return ev, nil
}

func assertFinal(res *Result, final *FinalState, store *stack.Store) {
	if final == nil {
		return
	}
	if final.Depth != nil && store.Depth() != *final.Depth {
		res.fail("final depth %d, expected %d", store.Depth(), *final.Depth)
	}
	if final.Capacity != nil && store.Capacity() != *final.Capacity {
		res.fail("final capacity %d, expected %d", store.Capacity(), *final.Capacity)
	}
	if len(final.Values) > 0 || final.CheckValues {
		got := store.Snapshot()
		if !equalValues(got, final.Values) {
			res.fail("final values %v, expected %v", got, final.Values)
		}
	}
}

func (r *Result) fail(format string, args ...any) {
	r.Passed = false
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

func equalValues(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func formatValue(v *int32) string {
	if v == nil {
		return "no value"
	}
	return fmt.Sprintf("%d", *v)
}
