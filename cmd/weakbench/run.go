package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/mcheviron/weakhash"
	"github.com/mcheviron/weakhash/rc"
)

// Report is what a run prints.
type Report struct {
	Scenario       Scenario         `yaml:"scenario"`
	Inserted       int              `yaml:"inserted"`
	Dropped        int              `yaml:"dropped"`
	Hits           int              `yaml:"hits"`
	Misses         int              `yaml:"misses"`
	LenBeforePurge int              `yaml:"len_before_purge"`
	Purged         int              `yaml:"purged"`
	Len            int              `yaml:"len"`
	Live           int              `yaml:"live"`
	BucketCount    int              `yaml:"bucket_count"`
	LoadFactor     float64          `yaml:"load_factor"`
	Counters       map[string]int64 `yaml:"counters"`
}

// subject adapts one table shape to the scenario steps.
type subject interface {
	insert(i int) bool
	probe(i int) bool
	purge() int
	len() int
	live() int
	bucketCount() int
	loadFactor() float64
}

// population is the set of objects a scenario inserts. owners[i] is the only
// strong reference to object i outside the table.
type population struct {
	names  []string
	owners []rc.Ptr[string]
	values []rc.Ptr[string]
}

func newPopulation(n int) *population {
	p := &population{
		names:  make([]string, n),
		owners: make([]rc.Ptr[string], n),
		values: make([]rc.Ptr[string], n),
	}
	for i := range n {
		p.names[i] = uuid.NewString()
		p.owners[i] = rc.New(p.names[i])
		p.values[i] = rc.New(fmt.Sprintf("value-%d", i))
	}
	return p
}

// drop releases the owners of the first n objects. For weak-weak tables only
// the values are dropped, so the keys stay alive.
func (p *population) drop(n int, valuesOnly bool) {
	for i := range n {
		if valuesOnly {
			p.values[i].Release()
			p.values[i] = rc.Ptr[string]{}
			continue
		}
		p.owners[i].Release()
		p.owners[i] = rc.Ptr[string]{}
	}
}

func (p *population) releaseAll() {
	for i := range p.owners {
		p.owners[i].Release()
		p.values[i].Release()
	}
}

func run(s Scenario, logger *zap.Logger) (*Report, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("meter provider shutdown failed", zap.Error(err))
		}
	}()

	cfg := weakhash.NewConfig()
	cfg.Name = s.Shape
	cfg.BucketCount = s.BucketCount
	cfg.MaxLoadFactor = s.MaxLoadFactor
	cfg.Logger = logger
	cfg.Meter = provider.Meter("weakbench")

	pop := newPopulation(s.Keys)
	defer pop.releaseAll()

	sub, err := newSubject(s.Shape, cfg, pop)
	if err != nil {
		return nil, err
	}

	r := &Report{Scenario: s}
	for i := range s.Keys {
		if sub.insert(i) {
			r.Inserted++
		}
	}

	r.Dropped = int(float64(s.Keys) * s.DropFraction)
	pop.drop(r.Dropped, s.Shape == shapeWeakWeak)
	logger.Info("dropped owners", zap.Int("dropped", r.Dropped), zap.Int("len", sub.len()))

	for i := range s.Keys {
		if sub.probe(i) {
			r.Hits++
		} else {
			r.Misses++
		}
	}

	r.LenBeforePurge = sub.len()
	if s.Purge {
		r.Purged = sub.purge()
	}
	r.Len = sub.len()
	r.Live = sub.live()
	r.BucketCount = sub.bucketCount()
	r.LoadFactor = sub.loadFactor()

	r.Counters, err = collectCounters(reader)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// collectCounters sums every int64 counter the tables recorded.
func collectCounters(reader *sdkmetric.ManualReader) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}
	counters := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				counters[m.Name] += dp.Value
			}
		}
	}
	return counters, nil
}

func newSubject(shape string, cfg weakhash.Config, pop *population) (subject, error) {
	switch shape {
	case shapeWeakKey:
		m, err := weakhash.NewWeakKeyMap[rc.Ptr[string], int](
			weakhash.Counted[string](), weakhash.CountedValue[string](), cfg)
		if err != nil {
			return nil, err
		}
		return &weakKeySubject{m: m, pop: pop}, nil
	case shapeWeakValue:
		m, err := weakhash.NewWeakValueMap[string, rc.Ptr[string]](
			weakhash.Counted[string](), weakhash.Comparable[string](), cfg)
		if err != nil {
			return nil, err
		}
		return &weakValueSubject{m: m, pop: pop}, nil
	case shapeWeakWeak:
		m, err := weakhash.NewWeakWeakMap[rc.Ptr[string], rc.Ptr[string]](
			weakhash.Counted[string](), weakhash.Counted[string](), weakhash.CountedValue[string](), cfg)
		if err != nil {
			return nil, err
		}
		return &weakWeakSubject{m: m, pop: pop}, nil
	case shapeSet:
		s, err := weakhash.NewWeakSet(weakhash.Counted[string](), weakhash.CountedValue[string](), cfg)
		if err != nil {
			return nil, err
		}
		return &setSubject{s: s, pop: pop}, nil
	}
	return nil, fmt.Errorf("unknown shape %q", shape)
}

// probeKey builds a fresh object equal to object i, owned by the caller.
func (p *population) probeKey(i int) rc.Ptr[string] {
	return rc.New(p.names[i])
}

type weakKeySubject struct {
	m   *weakhash.WeakKeyMap[rc.Ptr[string], int]
	pop *population
}

func (s *weakKeySubject) insert(i int) bool { return s.m.Insert(s.pop.owners[i], i) }

func (s *weakKeySubject) probe(i int) bool {
	k := s.pop.probeKey(i)
	defer k.Release()
	_, ok := s.m.Get(k)
	return ok
}

func (s *weakKeySubject) purge() int          { return s.m.PurgeExpired() }
func (s *weakKeySubject) len() int            { return s.m.Len() }
func (s *weakKeySubject) bucketCount() int    { return s.m.BucketCount() }
func (s *weakKeySubject) loadFactor() float64 { return s.m.LoadFactor() }

func (s *weakKeySubject) live() int {
	n := 0
	for range s.m.All() {
		n++
	}
	return n
}

type weakValueSubject struct {
	m   *weakhash.WeakValueMap[string, rc.Ptr[string]]
	pop *population
}

func (s *weakValueSubject) insert(i int) bool {
	return s.m.Insert(s.pop.names[i], s.pop.owners[i])
}

func (s *weakValueSubject) probe(i int) bool {
	v, ok := s.m.Get(s.pop.names[i])
	if ok {
		v.Release()
	}
	return ok
}

func (s *weakValueSubject) purge() int          { return s.m.PurgeExpired() }
func (s *weakValueSubject) len() int            { return s.m.Len() }
func (s *weakValueSubject) bucketCount() int    { return s.m.BucketCount() }
func (s *weakValueSubject) loadFactor() float64 { return s.m.LoadFactor() }

func (s *weakValueSubject) live() int {
	n := 0
	for range s.m.All() {
		n++
	}
	return n
}

type weakWeakSubject struct {
	m   *weakhash.WeakWeakMap[rc.Ptr[string], rc.Ptr[string]]
	pop *population
}

func (s *weakWeakSubject) insert(i int) bool {
	return s.m.Insert(s.pop.owners[i], s.pop.values[i])
}

func (s *weakWeakSubject) probe(i int) bool {
	k := s.pop.probeKey(i)
	defer k.Release()
	v, ok := s.m.Get(k)
	if ok {
		v.Release()
	}
	return ok
}

func (s *weakWeakSubject) purge() int          { return s.m.PurgeExpired() }
func (s *weakWeakSubject) len() int            { return s.m.Len() }
func (s *weakWeakSubject) bucketCount() int    { return s.m.BucketCount() }
func (s *weakWeakSubject) loadFactor() float64 { return s.m.LoadFactor() }

func (s *weakWeakSubject) live() int {
	n := 0
	for range s.m.All() {
		n++
	}
	return n
}

type setSubject struct {
	s   *weakhash.WeakSet[rc.Ptr[string]]
	pop *population
}

func (s *setSubject) insert(i int) bool { return s.s.Insert(s.pop.owners[i]) }

func (s *setSubject) probe(i int) bool {
	k := s.pop.probeKey(i)
	defer k.Release()
	found, ok := s.s.Find(k)
	if ok {
		found.Release()
	}
	return ok
}

func (s *setSubject) purge() int          { return s.s.PurgeExpired() }
func (s *setSubject) len() int            { return s.s.Len() }
func (s *setSubject) bucketCount() int    { return s.s.BucketCount() }
func (s *setSubject) loadFactor() float64 { return s.s.LoadFactor() }

func (s *setSubject) live() int {
	n := 0
	for range s.s.All() {
		n++
	}
	return n
}
