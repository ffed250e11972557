package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Shapes a scenario can drive.
const (
	shapeWeakKey   = "weak-key"
	shapeWeakValue = "weak-value"
	shapeWeakWeak  = "weak-weak"
	shapeSet       = "set"
)

// Scenario describes one run: insert Keys objects, let the owners drop a
// fraction of them, probe every key and optionally purge.
type Scenario struct {
	Shape         string  `yaml:"shape"`
	Keys          int     `yaml:"keys"`
	DropFraction  float64 `yaml:"drop_fraction"`
	BucketCount   int     `yaml:"bucket_count"`
	MaxLoadFactor float64 `yaml:"max_load_factor"`
	Purge         bool    `yaml:"purge"`
}

func defaultScenario() Scenario {
	return Scenario{
		Shape:         shapeWeakKey,
		Keys:          1000,
		DropFraction:  0.5,
		BucketCount:   16,
		MaxLoadFactor: 1.0,
		Purge:         true,
	}
}

// loadScenario reads a YAML scenario on top of the defaults. An empty path
// returns the defaults.
func loadScenario(path string) (Scenario, error) {
	s := defaultScenario()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return s, nil
}

// applyFlags overrides s with every flag the user set explicitly.
func (s *Scenario) applyFlags(fs *pflag.FlagSet, f *scenarioFlags) {
	if fs.Changed("shape") {
		s.Shape = f.shape
	}
	if fs.Changed("keys") {
		s.Keys = f.keys
	}
	if fs.Changed("drop") {
		s.DropFraction = f.drop
	}
	if fs.Changed("buckets") {
		s.BucketCount = f.buckets
	}
	if fs.Changed("max-load") {
		s.MaxLoadFactor = f.maxLoad
	}
	if fs.Changed("purge") {
		s.Purge = f.purge
	}
}

func (s Scenario) validate() error {
	switch s.Shape {
	case shapeWeakKey, shapeWeakValue, shapeWeakWeak, shapeSet:
	default:
		return fmt.Errorf("unknown shape %q", s.Shape)
	}
	if s.Keys < 0 {
		return errors.New("keys must not be negative")
	}
	if s.DropFraction < 0 || s.DropFraction > 1 {
		return errors.New("drop fraction must be within [0, 1]")
	}
	return nil
}

type scenarioFlags struct {
	config  string
	shape   string
	keys    int
	drop    float64
	buckets int
	maxLoad float64
	purge   bool
	verbose bool
}

func (f *scenarioFlags) register(fs *pflag.FlagSet) {
	d := defaultScenario()
	fs.StringVarP(&f.config, "config", "c", "", "YAML scenario file")
	fs.StringVar(&f.shape, "shape", d.Shape, "table shape: weak-key, weak-value, weak-weak or set")
	fs.IntVarP(&f.keys, "keys", "n", d.Keys, "number of objects to insert")
	fs.Float64Var(&f.drop, "drop", d.DropFraction, "fraction of objects whose owner drops them")
	fs.IntVar(&f.buckets, "buckets", d.BucketCount, "initial bucket count")
	fs.Float64Var(&f.maxLoad, "max-load", d.MaxLoadFactor, "maximum load factor")
	fs.BoolVar(&f.purge, "purge", d.Purge, "run an explicit purge after probing")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log table events")
}
