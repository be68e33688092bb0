// Package harness is the conformance harness for the stack device.
//
// Scenarios are YAML files describing a sequence of device operations
// with expected outcomes, plus assertions on the final stack state.
// Each scenario runs against a fresh store through the real byte-level
// device boundary, captures a deterministic trace, and can be compared
// against a golden trace file.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance test case.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains the property the scenario validates.
	Description string `yaml:"description,omitempty"`

	// InitialCapacity is the capacity allocated on attach. Zero means
	// the device default (1024).
	InitialCapacity int `yaml:"initial_capacity,omitempty"`

	// Steps are executed in order through the device boundary.
	Steps []Step `yaml:"steps"`

	// Final, if present, is checked after the last step.
	Final *FinalState `yaml:"final,omitempty"`
}

// Step is one device operation with its expected outcome.
type Step struct {
	// Op is push, pop, resize, detach, or attach.
	Op string `yaml:"op"`

	// Value is the element to push.
	Value int32 `yaml:"value,omitempty"`

	// Size is the requested resize capacity.
	Size int `yaml:"size,omitempty"`

	// Expect is the expected status: ok (default when empty), empty,
	// full, invalid, nomem, or fault.
	Expect string `yaml:"expect,omitempty"`

	// Want, for pops, is the element the pop must return.
	Want *int32 `yaml:"want,omitempty"`
}

// FinalState asserts on the stack after the scenario's last step. Nil
// fields are not checked; Values is only checked when non-empty or
// CheckValues is set.
type FinalState struct {
	Depth    *int `yaml:"depth,omitempty"`
	Capacity *int `yaml:"capacity,omitempty"`

	// Values is the full expected content, bottom first.
	Values []int32 `yaml:"values,omitempty"`

	// CheckValues forces the Values comparison even for an expected
	// empty stack (an empty list is indistinguishable from "don't
	// check" in YAML otherwise).
	CheckValues bool `yaml:"check_values,omitempty"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("no steps")
	}
	for i, step := range sc.Steps {
		switch step.Op {
		case "push", "pop", "resize", "detach", "attach":
		default:
			return fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}
		switch step.Expect {
		case "", "ok", "empty", "full", "invalid", "nomem", "fault":
		default:
			return fmt.Errorf("step %d: unknown expect %q", i+1, step.Expect)
		}
		if step.Want != nil && step.Op != "pop" {
			return fmt.Errorf("step %d: want is only valid on pop", i+1)
		}
	}
	return nil
}
