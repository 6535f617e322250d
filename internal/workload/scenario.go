// Package workload replays deque usage scenarios described in TOML or YAML
// files and reports how the chunk storage reacts.
package workload

import (
	"os"

	"github.com/pkg/errors"

	"github.com/lucasgdosr/deque/v2"
)

// Step operations.
const (
	OpPushBack  = "push_back"
	OpPushFront = "push_front"
	OpPopBack   = "pop_back"
	OpPopFront  = "pop_front"
	OpChurn     = "churn"
	OpInsert    = "insert"
	OpRemove    = "remove"
	OpSetCount  = "set_count"
	OpReserve   = "reserve"
	OpClear     = "clear"
	OpCompact   = "compact"
	OpSort      = "sort"
)

var knownOps = map[string]bool{
	OpPushBack: true, OpPushFront: true, OpPopBack: true, OpPopFront: true,
	OpChurn: true, OpInsert: true, OpRemove: true, OpSetCount: true,
	OpReserve: true, OpClear: true, OpCompact: true, OpSort: true,
}

// ErrInvalidScenario is wrapped by every scenario validation error.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a named list of steps run against one deque.
type Scenario struct {
	Name   string       `toml:"name" yaml:"name"`
	Policy deque.Policy `toml:"policy" yaml:"policy"`
	// Budget caps the chunks the allocator hands out at once. 0 means no
	// cap.
	Budget int    `toml:"budget" yaml:"budget"`
	Steps  []Step `toml:"steps" yaml:"steps"`
}

// Step is one operation applied Count times, the whole step being repeated
// Repeat times. For set_count and reserve, Count is the argument.
type Step struct {
	Op     string `toml:"op" yaml:"op"`
	Count  int    `toml:"count" yaml:"count"`
	Repeat int    `toml:"repeat" yaml:"repeat"`
}

// Load reads a scenario file. The format is picked from the extension.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, errors.Wrapf(err, "read scenario %s", path)
	}
	sc, err := Parse(data, deque.FormatOf(path))
	if err != nil {
		return Scenario{}, errors.Wrapf(err, "load scenario %s", path)
	}
	return sc, nil
}

// Parse decodes a scenario on top of the default policy and validates it.
func Parse(data []byte, format string) (Scenario, error) {
	sc := Scenario{Policy: deque.DefaultPolicy()}
	if err := deque.Decode(data, format, &sc); err != nil {
		return Scenario{}, err
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate checks the policy and every step.
func (sc Scenario) Validate() error {
	if sc.Name == "" {
		return errors.Wrap(ErrInvalidScenario, "missing name")
	}
	if err := sc.Policy.Validate(); err != nil {
		return errors.Wrapf(err, "scenario %q", sc.Name)
	}
	if sc.Budget < 0 {
		return errors.Wrapf(ErrInvalidScenario, "scenario %q: budget %d", sc.Name, sc.Budget)
	}
	if len(sc.Steps) == 0 {
		return errors.Wrapf(ErrInvalidScenario, "scenario %q has no steps", sc.Name)
	}
	for i, st := range sc.Steps {
		switch {
		case !knownOps[st.Op]:
			return errors.Wrapf(ErrInvalidScenario, "step %d: unknown op %q", i, st.Op)
		case st.Count < 0:
			return errors.Wrapf(ErrInvalidScenario, "step %d: count %d", i, st.Count)
		case st.Repeat < 0:
			return errors.Wrapf(ErrInvalidScenario, "step %d: repeat %d", i, st.Repeat)
		}
	}
	return nil
}
