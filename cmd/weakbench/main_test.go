package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func TestRunEveryShape(t *testing.T) {
	for _, shape := range []string{shapeWeakKey, shapeWeakValue, shapeWeakWeak, shapeSet} {
		t.Run(shape, func(t *testing.T) {
			s := defaultScenario()
			s.Shape = shape
			s.Keys = 100
			s.DropFraction = 0.5

			r, err := run(s, zap.NewNop())
			require.NoError(t, err)

			assert.Equal(t, 100, r.Inserted)
			assert.Equal(t, 50, r.Dropped)
			assert.Equal(t, 50, r.Hits)
			assert.Equal(t, 50, r.Misses)
			assert.Equal(t, 50, r.Len)
			assert.Equal(t, 50, r.Live)
			assert.GreaterOrEqual(t, r.BucketCount, 100)
			assert.LessOrEqual(t, r.LoadFactor, 1.0)
			assert.EqualValues(t, 100, r.Counters["weakhash.inserts"])
			assert.EqualValues(t, 50, r.Counters["weakhash.purged"])
			assert.Positive(t, r.Counters["weakhash.rehashes"])
		})
	}
}

func TestRunRejectsBadScenario(t *testing.T) {
	s := defaultScenario()
	s.Shape = "ring"
	_, err := run(s, zap.NewNop())
	require.Error(t, err)

	s = defaultScenario()
	s.DropFraction = 2
	_, err = run(s, zap.NewNop())
	require.Error(t, err)

	s = defaultScenario()
	s.MaxLoadFactor = -1
	_, err = run(s, zap.NewNop())
	require.Error(t, err)
}

func TestCommandReadsScenarioAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
shape: set
keys: 40
drop_fraction: 0.25
bucket_count: 4
purge: false
`), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--config", path, "--keys", "20"})
	require.NoError(t, cmd.Execute())

	var r Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &r))
	assert.Equal(t, shapeSet, r.Scenario.Shape)
	assert.Equal(t, 20, r.Scenario.Keys)
	assert.False(t, r.Scenario.Purge)
	assert.Equal(t, 20, r.Inserted)
	assert.Equal(t, 5, r.Dropped)
	assert.Equal(t, 15, r.Hits)
	assert.Equal(t, 15, r.Live)
	assert.Equal(t, 0, r.Purged)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := loadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
