package lstore

import (
	"sync"

	"github.com/ValentinKolb/kvgate/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rcrowley/go-metrics"
)

var Logger = logger.GetLogger("store")

type storeImpl struct {
	mu   sync.Mutex
	data map[string]string

	// operation statistics, reported by GetInfo
	registry metrics.Registry
	gets     metrics.Meter
	sets     metrics.Meter
	deletes  metrics.Meter
	keys     metrics.Gauge
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// All data lives in memory and is lost when the process exits.
func NewLocalStore() store.IStore {
	registry := metrics.NewRegistry()
	return &storeImpl{
		data:     make(map[string]string),
		registry: registry,
		gets:     metrics.GetOrRegisterMeter("gets", registry),
		sets:     metrics.GetOrRegisterMeter("sets", registry),
		deletes:  metrics.GetOrRegisterMeter("deletes", registry),
		keys:     metrics.GetOrRegisterGauge("keys", registry),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gets.Mark(1)
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *storeImpl) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets.Mark(1)
	s.data[key] = value
	s.keys.Update(int64(len(s.data)))
	return nil
}

func (s *storeImpl) Delete(keys []string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// the whole batch runs under one lock, so the count reflects a single view of the map
	var count uint64
	for _, key := range keys {
		if _, ok := s.data[key]; ok {
			delete(s.data, key)
			count++
		}
	}

	s.deletes.Mark(int64(count))
	s.keys.Update(int64(len(s.data)))
	Logger.Debugf("deleted %d of %d keys", count, len(keys))
	return count, nil
}

func (s *storeImpl) GetInfo() (store.Info, error) {
	return store.Info{
		Keys:    s.keys.Value(),
		Gets:    s.gets.Count(),
		Sets:    s.sets.Count(),
		Deletes: s.deletes.Count(),
		GetRate: s.gets.Rate1(),
		SetRate: s.sets.Rate1(),
	}, nil
}
