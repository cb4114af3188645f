package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/spektr-org/statboard/catalog"
)

// MemSource is an in-memory dataset source that counts fetches.
type MemSource struct {
	mu    sync.Mutex
	data  map[string][]catalog.Record
	errs  map[string]error
	calls map[string]int
	gates map[string]chan struct{}
}

// NewMemSource returns a source serving data.
func NewMemSource(data map[string][]catalog.Record) *MemSource {
	if data == nil {
		data = make(map[string][]catalog.Record)
	}
	return &MemSource{
		data:  data,
		errs:  make(map[string]error),
		calls: make(map[string]int),
		gates: make(map[string]chan struct{}),
	}
}

// Set replaces one dataset.
func (s *MemSource) Set(name string, records []catalog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = records
}

// Fail makes every fetch of name return err (nil clears it).
func (s *MemSource) Fail(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, name)
		return
	}
	s.errs[name] = err
}

// Hold blocks fetches of name until the returned release func is called.
func (s *MemSource) Hold(name string) (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.gates[name] = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.gates, name)
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many times name was fetched.
func (s *MemSource) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// Records implements the source interface.
func (s *MemSource) Records(ctx context.Context, name string) ([]catalog.Record, error) {
	s.mu.Lock()
	s.calls[name]++
	gate := s.gates[name]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[name]; err != nil {
		return nil, err
	}
	records, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("dataset %q not found", name)
	}
	out := make([]catalog.Record, len(records))
	copy(out, records)
	return out, nil
}
