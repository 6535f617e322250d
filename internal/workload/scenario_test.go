package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasgdosr/deque/v2"
)

const tomlScenario = `
name = "small"
budget = 3

[policy]
chunk_capacity = 8
reclaim_interval = 32

[[steps]]
op = "push_back"
count = 100

[[steps]]
op = "churn"
count = 32
repeat = 2
`

const yamlScenario = `
name: small
budget: 3
policy:
  chunk_capacity: 8
  reclaim_interval: 32
steps:
  - op: push_back
    count: 100
  - op: churn
    count: 32
    repeat: 2
`

func TestParse(t *testing.T) {
	want := Scenario{
		Name:   "small",
		Budget: 3,
		Policy: deque.Policy{ChunkCapacity: 8, ReclaimInterval: 32, ReclaimSlack: 2, CompactSlack: 1, MinDirectory: 4},
		Steps: []Step{
			{Op: OpPushBack, Count: 100},
			{Op: OpChurn, Count: 32, Repeat: 2},
		},
	}
	for format, data := range map[string]string{"toml": tomlScenario, "yaml": yamlScenario} {
		t.Run(format, func(t *testing.T) {
			sc, err := Parse([]byte(data), format)
			require.NoError(t, err)
			assert.Equal(t, want, sc)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		target error
	}{
		{"missing name", "steps:\n  - op: clear\n", ErrInvalidScenario},
		{"no steps", "name: x\n", ErrInvalidScenario},
		{"unknown op", "name: x\nsteps:\n  - op: shuffle\n", ErrInvalidScenario},
		{"negative count", "name: x\nsteps:\n  - op: push_back\n    count: -1\n", ErrInvalidScenario},
		{"negative repeat", "name: x\nsteps:\n  - op: clear\n    repeat: -2\n", ErrInvalidScenario},
		{"negative budget", "name: x\nbudget: -1\nsteps:\n  - op: clear\n", ErrInvalidScenario},
		{"bad policy", "name: x\npolicy:\n  reclaim_slack: -1\nsteps:\n  - op: clear\n", deque.ErrInvalidPolicy},
		{"unknown key", "name: x\nsteps:\n  - op: clear\n    times: 2\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "yaml")
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlScenario), 0o644))

	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "small", sc.Name)

	_, err = Load(filepath.Join(t.TempDir(), "small.ini"))
	assert.Error(t, err)
}
